// Package profile manages the job seeker profile and its resume file.
package profile

import (
	"context"
	"encoding/json"
	"io"
	"path/filepath"
	"strings"

	"github.com/google/uuid"
	"github.com/juju/errors"
	"github.com/juju/loggo"

	"github.com/himansu2198/Job-Listing-Portal/internal/apperr"
	"github.com/himansu2198/Job-Listing-Portal/internal/model"
	"github.com/himansu2198/Job-Listing-Portal/internal/storage"
	"github.com/himansu2198/Job-Listing-Portal/internal/utilities"
)

var logger = loggo.GetLogger("jobportal.profile")

// Store is the persistence used by Service
type Store interface {
	FindUserByID(ctx context.Context, id uuid.UUID) (model.User, error)
	SaveUser(ctx context.Context, user *model.User) error
}

// SkillList decode either a JSON array or a comma separated string
type SkillList []string

// UnmarshalJSON implements json.Unmarshaler
func (s *SkillList) UnmarshalJSON(b []byte) error {
	var list []string
	if err := json.Unmarshal(b, &list); err == nil {
		*s = SkillList(list)
		return nil
	}
	var joined string
	if err := json.Unmarshal(b, &joined); err != nil {
		return errors.NotValidf("skills %s", string(b))
	}
	*s = SkillList(utilities.SplitAndTrim(joined, ","))
	return nil
}

// Update is a profile edit. Empty fields keep the stored value.
type Update struct {
	Username            string    `json:"username"`
	Phone               string    `json:"phone"`
	Location            string    `json:"location"`
	ProfessionalTitle   string    `json:"professional_title"`
	ProfessionalSummary string    `json:"professional_summary"`
	Skills              SkillList `json:"skills"`
}

func (u Update) apply(p *model.EditableProfile) {
	setIfPresent(&p.Username, u.Username)
	setIfPresent(&p.Phone, u.Phone)
	setIfPresent(&p.Location, u.Location)
	setIfPresent(&p.ProfessionalTitle, u.ProfessionalTitle)
	setIfPresent(&p.ProfessionalSummary, u.ProfessionalSummary)

	skills := utilities.SplitAndTrim(strings.Join(u.Skills, ","), ",")
	if len(skills) > 0 {
		p.Skills = skills
	}
}

func setIfPresent(dst *string, v string) {
	if v = strings.TrimSpace(v); v != "" {
		*dst = v
	}
}

// View is a profile together with its readiness to apply
type View struct {
	model.User
	Readiness model.Readiness `json:"readiness"`
}

func newView(u model.User) View {
	return View{User: u, Readiness: model.EvaluateReadiness(u)}
}

// Service edits profiles
type Service struct {
	users   Store
	resumes storage.ResumeStore
}

// NewService return Service
func NewService(users Store, resumes storage.ResumeStore) *Service {
	return &Service{users: users, resumes: resumes}
}

func (s *Service) load(ctx context.Context, userID uuid.UUID) (model.User, error) {
	u, err := s.users.FindUserByID(ctx, userID)
	if apperr.KindOf(err) == apperr.NotFound {
		return model.User{}, apperr.New(apperr.NotFound, "User not found")
	}
	return u, err
}

// Get return the profile of userID
func (s *Service) Get(ctx context.Context, userID uuid.UUID) (View, error) {
	u, err := s.load(ctx, userID)
	if err != nil {
		return View{}, err
	}
	return newView(u), nil
}

// Update apply upd to the profile of userID
func (s *Service) Update(ctx context.Context, userID uuid.UUID, upd Update) (View, error) {
	u, err := s.load(ctx, userID)
	if err != nil {
		return View{}, err
	}

	upd.apply(&u.EditableProfile)
	u.RefreshProfileComplete()
	if err := s.users.SaveUser(ctx, &u); err != nil {
		return View{}, err
	}
	return newView(u), nil
}

// UploadResume store a PDF resume and point the profile at it.
// Applications made before keep the reference they were submitted with.
func (s *Service) UploadResume(ctx context.Context, userID uuid.UUID, filename string, r io.Reader) (View, error) {
	extension := strings.ToLower(filepath.Ext(filename))
	if extension != ".pdf" {
		return View{}, apperr.New(apperr.ValidationError, "Only PDF files are allowed")
	}

	u, err := s.load(ctx, userID)
	if err != nil {
		return View{}, err
	}
	if u.Role != model.RoleJobSeeker {
		return View{}, apperr.New(apperr.WrongRole, "Only job seekers can upload a resume")
	}

	ref, err := s.resumes.Save(ctx, userID, extension, r)
	if err != nil {
		return View{}, err
	}

	u.Resume = &ref
	u.RefreshProfileComplete()
	if err := s.users.SaveUser(ctx, &u); err != nil {
		return View{}, err
	}
	logger.Infof("user %s uploaded resume %s, profile complete: %t", userID, ref, u.ProfileComplete)
	return newView(u), nil
}
