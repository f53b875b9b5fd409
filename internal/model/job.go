package model

import (
	"time"

	"github.com/google/uuid"
)

// JobCategories lists the accepted values of Job.Category
var JobCategories = []string{"Technology", "Marketing", "Design", "Finance", "Healthcare", "Education"}

// EditableJobInfo is part of job that employer can edit after posting.
// Edits never touch existing applications since they only reference the job.
type EditableJobInfo struct {
	Title              string `gorm:"type:text;not null" json:"title" binding:"required"`
	Description        string `gorm:"type:text;not null" json:"description" binding:"required"`
	Responsibilities   string `gorm:"type:text" json:"responsibilities"`
	Qualifications     string `gorm:"type:text" json:"qualifications"`
	Location           string `gorm:"type:text;not null" json:"location" binding:"required"`
	JobType            string `gorm:"type:text;not null" json:"job_type" binding:"required,oneof=full-time part-time internship"`
	Category           string `gorm:"type:text;not null;index" json:"category" binding:"required,oneof=Technology Marketing Design Finance Healthcare Education"`
	Role               string `gorm:"type:text" json:"role"`
	ExperienceRequired string `gorm:"type:text" json:"experience_required"`
	Salary             string `gorm:"type:text" json:"salary"`
	SalaryMin          *int   `json:"salary_min,omitempty"`
	SalaryMax          *int   `json:"salary_max,omitempty"`
	CompanyName        string `gorm:"type:text;not null" json:"company_name" binding:"required"`
	CompanyWebsite     string `gorm:"type:text" json:"company_website"`
	CareerPageLink     string `gorm:"type:text" json:"career_page_link"`
}

// Job is gorm model for store job posting in DB
type Job struct {
	ID         uint      `gorm:"primaryKey;autoIncrement" json:"id"`
	EmployerID uuid.UUID `gorm:"type:uuid;not null;index;<-:create" json:"employer_id"`
	Employer   *User     `gorm:"foreignKey:EmployerID;references:ID" json:"-"`
	EditableJobInfo
	CreatedAt time.Time `gorm:"not null;index" json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`

	// ApplicationsCount is filled by listings, never stored
	ApplicationsCount int64 `gorm:"-" json:"applications_count"`
}

// JobUpdate hold optional fields of a job edit request, only non-nil fields are applied
type JobUpdate struct {
	Title            *string `json:"title"`
	Description      *string `json:"description"`
	Responsibilities *string `json:"responsibilities"`
	Qualifications   *string `json:"qualifications"`
	Location         *string `json:"location"`
	JobType          *string `json:"job_type" binding:"omitempty,oneof=full-time part-time internship"`
	Salary           *string `json:"salary"`
	SalaryMin        *int    `json:"salary_min"`
	SalaryMax        *int    `json:"salary_max"`
	CompanyWebsite   *string `json:"company_website"`
	CareerPageLink   *string `json:"career_page_link"`
}

// Apply copies the non-nil fields onto job
func (u JobUpdate) Apply(job *Job) {
	setString(&job.Title, u.Title)
	setString(&job.Description, u.Description)
	setString(&job.Responsibilities, u.Responsibilities)
	setString(&job.Qualifications, u.Qualifications)
	setString(&job.Location, u.Location)
	setString(&job.JobType, u.JobType)
	setString(&job.Salary, u.Salary)
	setString(&job.CompanyWebsite, u.CompanyWebsite)
	setString(&job.CareerPageLink, u.CareerPageLink)
	if u.SalaryMin != nil {
		job.SalaryMin = u.SalaryMin
	}
	if u.SalaryMax != nil {
		job.SalaryMax = u.SalaryMax
	}
}

func setString(dst *string, src *string) {
	if src != nil {
		*dst = *src
	}
}
