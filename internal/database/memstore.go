package database

import (
	"context"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/juju/clock"

	"github.com/himansu2198/Job-Listing-Portal/internal/apperr"
	"github.com/himansu2198/Job-Listing-Portal/internal/model"
)

type appKey struct {
	jobID       uint
	applicantID uuid.UUID
}

// MemoryStore keeps everything in process memory. It enforces the same
// uniqueness and ownership rules as Store and is used by the memory backend and tests.
type MemoryStore struct {
	mu    sync.RWMutex
	clock clock.Clock

	users         map[uuid.UUID]model.User
	emails        map[string]uuid.UUID
	jobs          map[uint]model.Job
	applications  map[uint]model.Application
	appByPair     map[appKey]uint
	notifications map[uint]model.Notification

	nextJobID          uint
	nextApplicationID  uint
	nextNotificationID uint
}

// NewMemoryStore return empty store. clk may be nil, wall clock is used then.
func NewMemoryStore(clk clock.Clock) *MemoryStore {
	if clk == nil {
		clk = clock.WallClock
	}
	return &MemoryStore{
		clock:         clk,
		users:         make(map[uuid.UUID]model.User),
		emails:        make(map[string]uuid.UUID),
		jobs:          make(map[uint]model.Job),
		applications:  make(map[uint]model.Application),
		appByPair:     make(map[appKey]uint),
		notifications: make(map[uint]model.Notification),
	}
}

// Health always report up
func (s *MemoryStore) Health() map[string]string {
	return map[string]string{"status": "up", "message": "in-memory store"}
}

// Close does nothing
func (s *MemoryStore) Close() error {
	return nil
}

func (s *MemoryStore) stamp(created *time.Time, updated *time.Time) {
	now := s.clock.Now()
	if created != nil && created.IsZero() {
		*created = now
	}
	if updated != nil {
		*updated = now
	}
}

// CreateUser implements Store.CreateUser
func (s *MemoryStore) CreateUser(_ context.Context, user *model.User) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	email := strings.ToLower(user.Email)
	if _, taken := s.emails[email]; taken {
		return apperr.New(apperr.Conflict, "duplicate key value violates unique constraint on email")
	}
	if user.ID == uuid.Nil {
		user.ID = uuid.New()
	}
	if _, taken := s.users[user.ID]; taken {
		return apperr.New(apperr.Conflict, "duplicate user id %s", user.ID)
	}
	user.RefreshProfileComplete()
	s.stamp(&user.CreatedAt, &user.UpdatedAt)

	s.users[user.ID] = *user
	s.emails[email] = user.ID
	return nil
}

// FindUserByEmail implements Store.FindUserByEmail
func (s *MemoryStore) FindUserByEmail(_ context.Context, email string) (model.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	id, ok := s.emails[strings.ToLower(email)]
	if !ok {
		return model.User{}, apperr.New(apperr.NotFound, "record not found")
	}
	return s.users[id], nil
}

// FindUserByID implements Store.FindUserByID
func (s *MemoryStore) FindUserByID(_ context.Context, id uuid.UUID) (model.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	u, ok := s.users[id]
	if !ok {
		return model.User{}, apperr.New(apperr.NotFound, "record not found")
	}
	return u, nil
}

// SaveUser implements Store.SaveUser
func (s *MemoryStore) SaveUser(_ context.Context, user *model.User) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	old, ok := s.users[user.ID]
	if !ok {
		return apperr.New(apperr.NotFound, "record not found")
	}
	if !strings.EqualFold(old.Email, user.Email) {
		if _, taken := s.emails[strings.ToLower(user.Email)]; taken {
			return apperr.New(apperr.Conflict, "duplicate key value violates unique constraint on email")
		}
		delete(s.emails, strings.ToLower(old.Email))
		s.emails[strings.ToLower(user.Email)] = user.ID
	}
	user.RefreshProfileComplete()
	user.CreatedAt = old.CreatedAt
	s.stamp(nil, &user.UpdatedAt)
	s.users[user.ID] = *user
	return nil
}

// CreateJob implements Store.CreateJob
func (s *MemoryStore) CreateJob(_ context.Context, job *model.Job) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.users[job.EmployerID]; !ok {
		return apperr.New(apperr.NotFound, "employer %s not found", job.EmployerID)
	}
	s.nextJobID++
	job.ID = s.nextJobID
	job.Employer = nil
	s.stamp(&job.CreatedAt, &job.UpdatedAt)
	s.jobs[job.ID] = *job
	return nil
}

// FindJobByID implements Store.FindJobByID
func (s *MemoryStore) FindJobByID(_ context.Context, id uint) (model.Job, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	job, ok := s.jobs[id]
	if !ok {
		return model.Job{}, apperr.New(apperr.NotFound, "record not found")
	}
	return job, nil
}

// ListJobs implements Store.ListJobs
func (s *MemoryStore) ListJobs(_ context.Context, filter JobFilter) ([]model.Job, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	jobs := []model.Job{}
	for _, j := range s.jobs {
		if filter.Category != "" && j.Category != filter.Category {
			continue
		}
		if filter.EmployerID != uuid.Nil && j.EmployerID != filter.EmployerID {
			continue
		}
		jobs = append(jobs, j)
	}
	sort.Slice(jobs, func(a, b int) bool {
		if !jobs[a].CreatedAt.Equal(jobs[b].CreatedAt) {
			return jobs[a].CreatedAt.After(jobs[b].CreatedAt)
		}
		return jobs[a].ID > jobs[b].ID
	})
	return jobs, nil
}

// SaveJob implements Store.SaveJob. Employer and creation time never change.
func (s *MemoryStore) SaveJob(_ context.Context, job *model.Job) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	old, ok := s.jobs[job.ID]
	if !ok {
		return apperr.New(apperr.NotFound, "record not found")
	}
	job.EmployerID = old.EmployerID
	job.CreatedAt = old.CreatedAt
	job.Employer = nil
	s.stamp(nil, &job.UpdatedAt)
	s.jobs[job.ID] = *job
	return nil
}

// CountApplicationsByJob implements Store.CountApplicationsByJob
func (s *MemoryStore) CountApplicationsByJob(_ context.Context, jobIDs []uint) (map[uint]int64, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	wanted := make(map[uint]bool, len(jobIDs))
	for _, id := range jobIDs {
		wanted[id] = true
	}
	counts := make(map[uint]int64, len(jobIDs))
	for _, app := range s.applications {
		if wanted[app.JobID] {
			counts[app.JobID]++
		}
	}
	return counts, nil
}

// ApplicationExists implements Store.ApplicationExists
func (s *MemoryStore) ApplicationExists(_ context.Context, jobID uint, applicantID uuid.UUID) (bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	_, ok := s.appByPair[appKey{jobID, applicantID}]
	return ok, nil
}

// CreateApplication implements Store.CreateApplication
func (s *MemoryStore) CreateApplication(_ context.Context, app *model.Application) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	key := appKey{app.JobID, app.ApplicantID}
	if _, dup := s.appByPair[key]; dup {
		return apperr.New(apperr.Conflict, "duplicate key value violates unique constraint idx_applications_job_applicant")
	}
	if _, ok := s.jobs[app.JobID]; !ok {
		return apperr.New(apperr.NotFound, "job %d not found", app.JobID)
	}
	if _, ok := s.users[app.ApplicantID]; !ok {
		return apperr.New(apperr.NotFound, "applicant %s not found", app.ApplicantID)
	}

	s.nextApplicationID++
	app.ID = s.nextApplicationID
	if app.Status == "" {
		app.Status = model.ApplicationStatusPending
	}
	s.stamp(&app.CreatedAt, &app.UpdatedAt)

	stored := *app
	stored.Job = nil
	stored.Applicant = nil
	s.applications[app.ID] = stored
	s.appByPair[key] = app.ID
	return nil
}

// attach copy job and applicant onto app, caller must hold the lock
func (s *MemoryStore) attach(app model.Application, withApplicant bool) model.Application {
	if job, ok := s.jobs[app.JobID]; ok {
		app.Job = &job
	}
	if withApplicant {
		if u, ok := s.users[app.ApplicantID]; ok {
			app.Applicant = &u
		}
	}
	return app
}

// FindApplicationByID implements Store.FindApplicationByID
func (s *MemoryStore) FindApplicationByID(_ context.Context, id uint) (model.Application, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	app, ok := s.applications[id]
	if !ok {
		return model.Application{}, apperr.New(apperr.NotFound, "record not found")
	}
	return s.attach(app, false), nil
}

// ListApplicationsForEmployer implements Store.ListApplicationsForEmployer
func (s *MemoryStore) ListApplicationsForEmployer(_ context.Context, employerID uuid.UUID) ([]model.Application, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	apps := []model.Application{}
	for _, a := range s.applications {
		if job, ok := s.jobs[a.JobID]; ok && job.EmployerID == employerID {
			apps = append(apps, s.attach(a, true))
		}
	}
	sortApplications(apps)
	return apps, nil
}

// ListApplicationsForApplicant implements Store.ListApplicationsForApplicant
func (s *MemoryStore) ListApplicationsForApplicant(_ context.Context, applicantID uuid.UUID) ([]model.Application, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	apps := []model.Application{}
	for _, a := range s.applications {
		if a.ApplicantID == applicantID {
			apps = append(apps, s.attach(a, false))
		}
	}
	sortApplications(apps)
	return apps, nil
}

// TransitionApplication implements Store.TransitionApplication
func (s *MemoryStore) TransitionApplication(_ context.Context, id uint, from, to model.ApplicationStatus, at time.Time) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	app, ok := s.applications[id]
	if !ok || app.Status != from {
		return apperr.New(apperr.Conflict, "Application has already been %s", to)
	}
	app.Status = to
	app.UpdatedAt = at
	s.applications[id] = app
	return nil
}

// CreateNotification implements Store.CreateNotification
func (s *MemoryStore) CreateNotification(_ context.Context, n *model.Notification) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.users[n.UserID]; !ok {
		return apperr.New(apperr.NotFound, "user %s not found", n.UserID)
	}
	s.nextNotificationID++
	n.ID = s.nextNotificationID
	s.stamp(&n.CreatedAt, nil)
	stored := *n
	stored.User = nil
	s.notifications[n.ID] = stored
	return nil
}

// FindNotificationByID implements Store.FindNotificationByID
func (s *MemoryStore) FindNotificationByID(_ context.Context, id uint) (model.Notification, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	n, ok := s.notifications[id]
	if !ok {
		return model.Notification{}, apperr.New(apperr.NotFound, "record not found")
	}
	return n, nil
}

// ListNotificationsForUser implements Store.ListNotificationsForUser
func (s *MemoryStore) ListNotificationsForUser(_ context.Context, userID uuid.UUID) ([]model.Notification, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	ns := []model.Notification{}
	for _, n := range s.notifications {
		if n.UserID == userID {
			ns = append(ns, n)
		}
	}
	sort.Slice(ns, func(a, b int) bool {
		if !ns[a].CreatedAt.Equal(ns[b].CreatedAt) {
			return ns[a].CreatedAt.After(ns[b].CreatedAt)
		}
		return ns[a].ID > ns[b].ID
	})
	return ns, nil
}

// MarkNotificationRead implements Store.MarkNotificationRead
func (s *MemoryStore) MarkNotificationRead(_ context.Context, id uint) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	n, ok := s.notifications[id]
	if !ok {
		return apperr.New(apperr.NotFound, "Notification not found")
	}
	n.IsRead = true
	s.notifications[id] = n
	return nil
}

// CountUnreadNotifications implements Store.CountUnreadNotifications
func (s *MemoryStore) CountUnreadNotifications(_ context.Context, userID uuid.UUID) (int64, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var count int64
	for _, n := range s.notifications {
		if n.UserID == userID && !n.IsRead {
			count++
		}
	}
	return count, nil
}

func sortApplications(apps []model.Application) {
	sort.Slice(apps, func(a, b int) bool {
		if !apps[a].CreatedAt.Equal(apps[b].CreatedAt) {
			return apps[a].CreatedAt.After(apps[b].CreatedAt)
		}
		return apps[a].ID > apps[b].ID
	})
}
