package model

import "strings"

// Readiness describes whether a job seeker may submit applications and,
// when not, what is missing.
type Readiness struct {
	Complete          bool     `json:"complete"`
	MissingResume     bool     `json:"missing_resume"`
	ProfileIncomplete bool     `json:"profile_incomplete"`
	MissingFields     []string `json:"missing_fields,omitempty"`
}

// Eligible reports whether the evaluated user can apply to a job
func (r Readiness) Eligible() bool {
	return r.Complete && !r.MissingResume
}

// EvaluateReadiness computes profile completeness from the user's fields.
// It never looks at the stored ProfileComplete flag.
func EvaluateReadiness(u User) Readiness {
	var missing []string

	required := []struct {
		name  string
		value string
	}{
		{"username", u.Username},
		{"phone", u.Phone},
		{"location", u.Location},
		{"professional_title", u.ProfessionalTitle},
		{"professional_summary", u.ProfessionalSummary},
	}
	for _, f := range required {
		if strings.TrimSpace(f.value) == "" {
			missing = append(missing, f.name)
		}
	}

	if !hasSkill(u.Skills) {
		missing = append(missing, "skills")
	}

	r := Readiness{
		MissingResume:     u.Resume == nil || strings.TrimSpace(*u.Resume) == "",
		ProfileIncomplete: len(missing) > 0,
		MissingFields:     missing,
	}
	if r.MissingResume {
		r.MissingFields = append(r.MissingFields, "resume")
	}
	r.Complete = !r.ProfileIncomplete && !r.MissingResume
	return r
}

func hasSkill(skills []string) bool {
	for _, s := range skills {
		if strings.TrimSpace(s) != "" {
			return true
		}
	}
	return false
}
