package database

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/himansu2198/Job-Listing-Portal/internal/model"
)

// Backend is everything the service needs from persistence.
// Store and MemoryStore both implement it.
type Backend interface {
	CreateUser(ctx context.Context, user *model.User) error
	FindUserByEmail(ctx context.Context, email string) (model.User, error)
	FindUserByID(ctx context.Context, id uuid.UUID) (model.User, error)
	SaveUser(ctx context.Context, user *model.User) error

	CreateJob(ctx context.Context, job *model.Job) error
	FindJobByID(ctx context.Context, id uint) (model.Job, error)
	ListJobs(ctx context.Context, filter JobFilter) ([]model.Job, error)
	SaveJob(ctx context.Context, job *model.Job) error
	CountApplicationsByJob(ctx context.Context, jobIDs []uint) (map[uint]int64, error)

	ApplicationExists(ctx context.Context, jobID uint, applicantID uuid.UUID) (bool, error)
	CreateApplication(ctx context.Context, app *model.Application) error
	FindApplicationByID(ctx context.Context, id uint) (model.Application, error)
	ListApplicationsForEmployer(ctx context.Context, employerID uuid.UUID) ([]model.Application, error)
	ListApplicationsForApplicant(ctx context.Context, applicantID uuid.UUID) ([]model.Application, error)
	TransitionApplication(ctx context.Context, id uint, from, to model.ApplicationStatus, at time.Time) error

	CreateNotification(ctx context.Context, n *model.Notification) error
	FindNotificationByID(ctx context.Context, id uint) (model.Notification, error)
	ListNotificationsForUser(ctx context.Context, userID uuid.UUID) ([]model.Notification, error)
	MarkNotificationRead(ctx context.Context, id uint) error
	CountUnreadNotifications(ctx context.Context, userID uuid.UUID) (int64, error)

	Health() map[string]string
	Close() error
}

var (
	_ Backend = (*Store)(nil)
	_ Backend = (*MemoryStore)(nil)
)
