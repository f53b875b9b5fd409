package database

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/juju/errors"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/himansu2198/Job-Listing-Portal/internal/apperr"
	"github.com/himansu2198/Job-Listing-Portal/internal/model"
)

const (
	pgUniqueViolation     = "23505"
	pgForeignKeyViolation = "23503"
)

// JobFilter narrow down job listing, zero fields are ignored
type JobFilter struct {
	Category   string
	EmployerID uuid.UUID
}

// Store is the postgres implementation of every persistence port of the service
type Store struct {
	db *DBinstanceStruct
}

// NewStore wrap connected database instance
func NewStore(db *DBinstanceStruct) *Store {
	return &Store{db: db}
}

// Health report database statistic
func (s *Store) Health() map[string]string {
	return s.db.Health()
}

// Close release database connection
func (s *Store) Close() error {
	return s.db.Close()
}

// translateError map gorm and postgres errors onto apperr kinds
func translateError(err error, action string) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return apperr.Wrap(err, apperr.NotFound)
	}
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		switch pgErr.Code {
		case pgUniqueViolation:
			return apperr.Wrap(err, apperr.Conflict)
		case pgForeignKeyViolation:
			return apperr.Wrap(err, apperr.NotFound)
		}
	}
	return apperr.Storage(err, action)
}

// CreateUser insert new user, duplicate email is Conflict
func (s *Store) CreateUser(ctx context.Context, user *model.User) error {
	err := s.db.WithContext(ctx).Omit(clause.Associations).Create(user).Error
	return translateError(err, "create user")
}

// FindUserByEmail return user by email
func (s *Store) FindUserByEmail(ctx context.Context, email string) (model.User, error) {
	var user model.User
	err := s.db.WithContext(ctx).Where("email = ?", email).First(&user).Error
	return user, translateError(err, "retrieve user")
}

// FindUserByID return user by id
func (s *Store) FindUserByID(ctx context.Context, id uuid.UUID) (model.User, error) {
	var user model.User
	err := s.db.WithContext(ctx).Where("id = ?", id).First(&user).Error
	return user, translateError(err, "retrieve user")
}

// SaveUser update every column of user, ProfileComplete is recomputed by the model hook
func (s *Store) SaveUser(ctx context.Context, user *model.User) error {
	err := s.db.WithContext(ctx).Omit(clause.Associations).Save(user).Error
	return translateError(err, "save user")
}

// CreateJob insert new job posting
func (s *Store) CreateJob(ctx context.Context, job *model.Job) error {
	err := s.db.WithContext(ctx).Omit(clause.Associations).Create(job).Error
	return translateError(err, "create job")
}

// FindJobByID return job by id
func (s *Store) FindJobByID(ctx context.Context, id uint) (model.Job, error) {
	var job model.Job
	err := s.db.WithContext(ctx).First(&job, id).Error
	return job, translateError(err, "retrieve job")
}

// ListJobs return jobs matching filter, newest first
func (s *Store) ListJobs(ctx context.Context, filter JobFilter) ([]model.Job, error) {
	q := s.db.WithContext(ctx).Model(&model.Job{})
	if filter.Category != "" {
		q = q.Where("category = ?", filter.Category)
	}
	if filter.EmployerID != uuid.Nil {
		q = q.Where("employer_id = ?", filter.EmployerID)
	}

	jobs := []model.Job{}
	err := q.Order("created_at DESC").Order("id DESC").Find(&jobs).Error
	return jobs, translateError(err, "list jobs")
}

// SaveJob update editable columns of job
func (s *Store) SaveJob(ctx context.Context, job *model.Job) error {
	err := s.db.WithContext(ctx).Omit(clause.Associations).Save(job).Error
	return translateError(err, "save job")
}

// CountApplicationsByJob return number of applications per job id,
// jobs without application are absent from the map
func (s *Store) CountApplicationsByJob(ctx context.Context, jobIDs []uint) (map[uint]int64, error) {
	counts := make(map[uint]int64, len(jobIDs))
	if len(jobIDs) == 0 {
		return counts, nil
	}

	var rows []struct {
		JobID uint
		Total int64
	}
	err := s.db.WithContext(ctx).
		Model(&model.Application{}).
		Select("job_id, count(*) AS total").
		Where("job_id IN ?", jobIDs).
		Group("job_id").
		Scan(&rows).Error
	if err != nil {
		return nil, translateError(err, "count applications")
	}
	for _, r := range rows {
		counts[r.JobID] = r.Total
	}
	return counts, nil
}

// ApplicationExists reports whether applicant already applied to job
func (s *Store) ApplicationExists(ctx context.Context, jobID uint, applicantID uuid.UUID) (bool, error) {
	var count int64
	err := s.db.WithContext(ctx).
		Model(&model.Application{}).
		Where("job_id = ? AND applicant_id = ?", jobID, applicantID).
		Count(&count).Error
	if err != nil {
		return false, translateError(err, "check existing application")
	}
	return count > 0, nil
}

// CreateApplication insert new application.
// The unique index on (job_id, applicant_id) turns a duplicate into Conflict.
func (s *Store) CreateApplication(ctx context.Context, app *model.Application) error {
	err := s.db.WithContext(ctx).Omit(clause.Associations).Create(app).Error
	return translateError(err, "create application")
}

// FindApplicationByID return application with its job attached
func (s *Store) FindApplicationByID(ctx context.Context, id uint) (model.Application, error) {
	var app model.Application
	err := s.db.WithContext(ctx).Joins("Job").First(&app, "applications.id = ?", id).Error
	return app, translateError(err, "retrieve application")
}

// ListApplicationsForEmployer return applications to jobs owned by employer,
// newest first with job and applicant attached
func (s *Store) ListApplicationsForEmployer(ctx context.Context, employerID uuid.UUID) ([]model.Application, error) {
	apps := []model.Application{}
	err := s.db.WithContext(ctx).
		Joins("Job").
		Preload("Applicant").
		Where(`"Job"."employer_id" = ?`, employerID).
		Order("applications.created_at DESC").
		Order("applications.id DESC").
		Find(&apps).Error
	return apps, translateError(err, "list applications")
}

// ListApplicationsForApplicant return applications of applicant, newest first with job attached
func (s *Store) ListApplicationsForApplicant(ctx context.Context, applicantID uuid.UUID) ([]model.Application, error) {
	apps := []model.Application{}
	err := s.db.WithContext(ctx).
		Joins("Job").
		Where("applications.applicant_id = ?", applicantID).
		Order("applications.created_at DESC").
		Order("applications.id DESC").
		Find(&apps).Error
	return apps, translateError(err, "list applications")
}

// TransitionApplication move application from one status to another.
// It is Conflict when the application is no longer in status from.
func (s *Store) TransitionApplication(ctx context.Context, id uint, from, to model.ApplicationStatus, at time.Time) error {
	res := s.db.WithContext(ctx).
		Model(&model.Application{}).
		Where("id = ? AND status = ?", id, from).
		Updates(map[string]interface{}{"status": to, "updated_at": at})
	if res.Error != nil {
		return translateError(res.Error, "update application status")
	}
	if res.RowsAffected == 0 {
		return apperr.New(apperr.Conflict, "Application has already been %s", to)
	}
	return nil
}

// CreateNotification insert new notification
func (s *Store) CreateNotification(ctx context.Context, n *model.Notification) error {
	err := s.db.WithContext(ctx).Omit(clause.Associations).Create(n).Error
	return translateError(err, "create notification")
}

// FindNotificationByID return notification by id
func (s *Store) FindNotificationByID(ctx context.Context, id uint) (model.Notification, error) {
	var n model.Notification
	err := s.db.WithContext(ctx).First(&n, id).Error
	return n, translateError(err, "retrieve notification")
}

// ListNotificationsForUser return notifications of user, newest first
func (s *Store) ListNotificationsForUser(ctx context.Context, userID uuid.UUID) ([]model.Notification, error) {
	ns := []model.Notification{}
	err := s.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("created_at DESC").
		Order("id DESC").
		Find(&ns).Error
	return ns, translateError(err, "list notifications")
}

// MarkNotificationRead set is_read of notification
func (s *Store) MarkNotificationRead(ctx context.Context, id uint) error {
	res := s.db.WithContext(ctx).
		Model(&model.Notification{}).
		Where("id = ?", id).
		Update("is_read", true)
	if res.Error != nil {
		return translateError(res.Error, "mark notification read")
	}
	if res.RowsAffected == 0 {
		return apperr.New(apperr.NotFound, "Notification not found")
	}
	return nil
}

// CountUnreadNotifications return number of unread notifications of user
func (s *Store) CountUnreadNotifications(ctx context.Context, userID uuid.UUID) (int64, error) {
	var count int64
	err := s.db.WithContext(ctx).
		Model(&model.Notification{}).
		Where("user_id = ? AND is_read = ?", userID, false).
		Count(&count).Error
	return count, translateError(err, "count notifications")
}
