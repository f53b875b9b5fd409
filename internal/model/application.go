package model

import (
	"time"

	"github.com/google/uuid"
)

// ApplicationStatus is the lifecycle state of an application
type ApplicationStatus string

const (
	// ApplicationStatusPending indicates that the application is waiting for employer decision
	ApplicationStatusPending ApplicationStatus = "pending"
	// ApplicationStatusShortlisted indicates that the employer shortlisted the applicant
	ApplicationStatusShortlisted ApplicationStatus = "shortlisted"
	// ApplicationStatusRejected indicates that the application has been rejected
	ApplicationStatusRejected ApplicationStatus = "rejected"
)

// IsTerminal reports whether no further transition is allowed from s
func (s ApplicationStatus) IsTerminal() bool {
	return s == ApplicationStatusShortlisted || s == ApplicationStatusRejected
}

// Application represents a job application record.
// At most one application exists per (job, applicant) pair.
type Application struct {
	ID uint `gorm:"primaryKey;autoIncrement" json:"id"`

	JobID uint `gorm:"not null;uniqueIndex:idx_applications_job_applicant;<-:create" json:"job_id"`
	Job   *Job `gorm:"foreignKey:JobID;references:ID;constraint:OnDelete:CASCADE" json:"job,omitempty"`

	ApplicantID uuid.UUID `gorm:"type:uuid;not null;uniqueIndex:idx_applications_job_applicant;index;<-:create" json:"applicant_id"`
	Applicant   *User     `gorm:"foreignKey:ApplicantID;references:ID" json:"applicant,omitempty"`

	// ResumeRef is copied from the applicant profile when applying
	ResumeRef string            `gorm:"type:text;not null;<-:create" json:"resume"`
	Status    ApplicationStatus `gorm:"type:text;not null;default:pending" json:"status"`
	CreatedAt time.Time         `gorm:"not null;index;<-:create" json:"created_at"`
	UpdatedAt time.Time         `json:"updated_at"`
}
