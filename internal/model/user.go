// Package model contain gorm model for recording data to database
package model

import (
	"time"

	"github.com/google/uuid"
	"github.com/lib/pq"
	"gorm.io/gorm"
)

const (
	// RoleJobSeeker is a user that browses and applies to job postings
	RoleJobSeeker = "jobseeker"
	// RoleEmployer is a user that posts jobs and triages applicants
	RoleEmployer = "employer"
)

// EditableProfile is part of job seeker profile that user can edit directly
type EditableProfile struct {
	Username            string         `gorm:"type:text;not null" json:"username"`
	Phone               string         `gorm:"type:text" json:"phone"`
	Location            string         `gorm:"type:text" json:"location"`
	ProfessionalTitle   string         `gorm:"type:text" json:"professional_title"`
	ProfessionalSummary string         `gorm:"type:text" json:"professional_summary"`
	Skills              pq.StringArray `gorm:"type:text[]" json:"skills"`
}

// User is gorm model of both job seeker and employer account.
// ProfileComplete is derived from the profile fields on every save.
type User struct {
	ID       uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	Email    string    `gorm:"type:text;uniqueIndex;not null" json:"email"`
	Password string    `gorm:"type:text;not null" json:"-"`
	Role     string    `gorm:"type:text;not null" check:"role IN ('jobseeker', 'employer')" json:"role"`
	EditableProfile
	Resume          *string   `gorm:"type:text" json:"resume"`
	ProfileComplete bool      `gorm:"type:boolean;not null;default:false" json:"profile_complete"`
	CreatedAt       time.Time `json:"created_at"`
	UpdatedAt       time.Time `json:"updated_at"`
}

// BeforeCreate assign uuid to user that does not have one yet
func (u *User) BeforeCreate(tx *gorm.DB) error {
	if u.ID == uuid.Nil {
		u.ID = uuid.New()
	}
	return nil
}

// BeforeSave keep ProfileComplete in line with the stored profile fields
func (u *User) BeforeSave(tx *gorm.DB) error {
	u.RefreshProfileComplete()
	return nil
}

// RefreshProfileComplete recomputes the derived completeness flag.
func (u *User) RefreshProfileComplete() {
	u.ProfileComplete = EvaluateReadiness(*u).Complete
}

// Identity returns the authorization principal of the user
func (u User) Identity() Identity {
	return Identity{ID: u.ID, Role: u.Role, Email: u.Email}
}

// Identity is the caller resolved by authentication middleware
type Identity struct {
	ID    uuid.UUID `json:"id"`
	Role  string    `json:"role"`
	Email string    `json:"email"`
}

// AuthResponse is returned by login and register
type AuthResponse struct {
	User        User   `json:"user"`
	AccessToken string `json:"access_token"`
}
