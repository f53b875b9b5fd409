// Package application implements the job application lifecycle:
// submitting, listing by role and the employer's shortlist/reject decision.
package application

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/juju/clock"
	"github.com/juju/errors"
	"github.com/juju/loggo"

	"github.com/himansu2198/Job-Listing-Portal/internal/apperr"
	"github.com/himansu2198/Job-Listing-Portal/internal/live"
	"github.com/himansu2198/Job-Listing-Portal/internal/metrics"
	"github.com/himansu2198/Job-Listing-Portal/internal/model"
)

var logger = loggo.GetLogger("jobportal.application")

const defaultSideEffectTimeout = 5 * time.Second

// Store is the persistence used by Manager
type Store interface {
	FindUserByID(ctx context.Context, id uuid.UUID) (model.User, error)
	FindJobByID(ctx context.Context, id uint) (model.Job, error)
	ApplicationExists(ctx context.Context, jobID uint, applicantID uuid.UUID) (bool, error)
	CreateApplication(ctx context.Context, app *model.Application) error
	FindApplicationByID(ctx context.Context, id uint) (model.Application, error)
	ListApplicationsForEmployer(ctx context.Context, employerID uuid.UUID) ([]model.Application, error)
	ListApplicationsForApplicant(ctx context.Context, applicantID uuid.UUID) ([]model.Application, error)
	TransitionApplication(ctx context.Context, id uint, from, to model.ApplicationStatus, at time.Time) error
}

// Notifier records a notification for a user
type Notifier interface {
	Create(ctx context.Context, userID uuid.UUID, message string) (model.Notification, error)
}

// ManagerConfig holds the dependencies of Manager
type ManagerConfig struct {
	Store  Store
	Ledger Notifier
	Events live.EventPublisher
	Clock  clock.Clock
	// Metrics is optional
	Metrics *metrics.Collector
	// SideEffectTimeout bounds the ledger write and live push after a
	// successful state change. Defaults to 5s.
	SideEffectTimeout time.Duration
}

// Validate check that required dependencies are set
func (c ManagerConfig) Validate() error {
	if c.Store == nil {
		return errors.NotValidf("nil Store")
	}
	if c.Ledger == nil {
		return errors.NotValidf("nil Ledger")
	}
	if c.Events == nil {
		return errors.NotValidf("nil Events")
	}
	if c.Clock == nil {
		return errors.NotValidf("nil Clock")
	}
	return nil
}

// Manager owns every state change of an Application
type Manager struct {
	config ManagerConfig
}

// NewManager return Manager after validating config
func NewManager(config ManagerConfig) (*Manager, error) {
	if err := config.Validate(); err != nil {
		return nil, errors.Trace(err)
	}
	if config.SideEffectTimeout <= 0 {
		config.SideEffectTimeout = defaultSideEffectTimeout
	}
	return &Manager{config: config}, nil
}

// Submit create a pending application of callerID to jobID.
// Eligibility is evaluated on the freshly loaded user, never on token claims
// or the stored ProfileComplete flag.
func (m *Manager) Submit(ctx context.Context, jobID uint, callerID uuid.UUID) (model.Application, error) {
	store := m.config.Store

	user, err := store.FindUserByID(ctx, callerID)
	if err != nil {
		if apperr.KindOf(err) == apperr.NotFound {
			return model.Application{}, apperr.New(apperr.Unauthenticated, "User not found")
		}
		return model.Application{}, err
	}

	if user.Role != model.RoleJobSeeker {
		return model.Application{}, apperr.New(apperr.WrongRole, "Only job seekers can apply for jobs")
	}

	if jobID == 0 {
		return model.Application{}, apperr.New(apperr.ValidationError, "Job ID is required")
	}

	readiness := model.EvaluateReadiness(user)
	if readiness.MissingResume {
		return model.Application{}, apperr.New(apperr.NotEligible,
			"Please upload your resume in your profile before applying")
	}
	if readiness.ProfileIncomplete {
		return model.Application{}, apperr.New(apperr.NotEligible,
			"Please complete your profile before applying for jobs (missing: %s)", strings.Join(readiness.MissingFields, ", "))
	}

	job, err := store.FindJobByID(ctx, jobID)
	if err != nil {
		if apperr.KindOf(err) == apperr.NotFound {
			return model.Application{}, apperr.New(apperr.NotFound, "Job not found")
		}
		return model.Application{}, err
	}

	exists, err := store.ApplicationExists(ctx, jobID, user.ID)
	if err != nil {
		return model.Application{}, err
	}
	if exists {
		return model.Application{}, alreadyApplied()
	}

	app := model.Application{
		JobID:       job.ID,
		ApplicantID: user.ID,
		ResumeRef:   strings.TrimSpace(*user.Resume),
		Status:      model.ApplicationStatusPending,
		CreatedAt:   m.config.Clock.Now(),
	}
	if err := store.CreateApplication(ctx, &app); err != nil {
		if apperr.KindOf(err) == apperr.Conflict {
			return model.Application{}, alreadyApplied()
		}
		return model.Application{}, err
	}
	m.config.Metrics.ApplicationSubmitted()
	logger.Infof("application %d: %s applied to job %d", app.ID, user.ID, job.ID)

	m.notify(ctx, job.EmployerID, fmt.Sprintf("New application received for %s", job.Title))

	app.Job = &job
	return app, nil
}

// ListForEmployer return applications to jobs posted by callerID, newest first
func (m *Manager) ListForEmployer(ctx context.Context, callerID uuid.UUID) ([]model.Application, error) {
	apps, err := m.config.Store.ListApplicationsForEmployer(ctx, callerID)
	if err != nil {
		return nil, err
	}

	owned := make([]model.Application, 0, len(apps))
	for _, a := range apps {
		if a.Job != nil && a.Job.EmployerID == callerID {
			owned = append(owned, a)
		}
	}
	return owned, nil
}

// ListForApplicant return applications of callerID, newest first
func (m *Manager) ListForApplicant(ctx context.Context, callerID uuid.UUID) ([]model.Application, error) {
	return m.config.Store.ListApplicationsForApplicant(ctx, callerID)
}

// Get return an application visible to callerID, that is its applicant
// or the employer of its job
func (m *Manager) Get(ctx context.Context, applicationID uint, callerID uuid.UUID) (model.Application, error) {
	app, err := m.load(ctx, applicationID)
	if err != nil {
		return model.Application{}, err
	}
	if app.ApplicantID != callerID && app.Job.EmployerID != callerID {
		return model.Application{}, apperr.New(apperr.Forbidden, "Unauthorized action")
	}
	return app, nil
}

// load return application with its job attached
func (m *Manager) load(ctx context.Context, applicationID uint) (model.Application, error) {
	store := m.config.Store

	app, err := store.FindApplicationByID(ctx, applicationID)
	if err != nil {
		if apperr.KindOf(err) == apperr.NotFound {
			return model.Application{}, apperr.New(apperr.NotFound, "Application not found")
		}
		return model.Application{}, err
	}

	if app.Job == nil {
		job, err := store.FindJobByID(ctx, app.JobID)
		if err != nil {
			return model.Application{}, err
		}
		app.Job = &job
	}
	return app, nil
}

// Shortlist move a pending application to shortlisted
func (m *Manager) Shortlist(ctx context.Context, applicationID uint, callerID uuid.UUID) (model.Application, error) {
	return m.decide(ctx, applicationID, callerID, model.ApplicationStatusShortlisted)
}

// Reject move a pending application to rejected
func (m *Manager) Reject(ctx context.Context, applicationID uint, callerID uuid.UUID) (model.Application, error) {
	return m.decide(ctx, applicationID, callerID, model.ApplicationStatusRejected)
}

func (m *Manager) decide(ctx context.Context, applicationID uint, callerID uuid.UUID, to model.ApplicationStatus) (model.Application, error) {
	app, err := m.load(ctx, applicationID)
	if err != nil {
		return model.Application{}, err
	}

	if app.Job.EmployerID != callerID {
		return model.Application{}, apperr.New(apperr.Forbidden, "Unauthorized action")
	}

	if app.Status.IsTerminal() {
		return model.Application{}, apperr.New(apperr.Conflict, "Application has already been %s", app.Status)
	}

	now := m.config.Clock.Now()
	if err := m.config.Store.TransitionApplication(ctx, app.ID, model.ApplicationStatusPending, to, now); err != nil {
		return model.Application{}, err
	}
	app.Status = to
	app.UpdatedAt = now
	m.config.Metrics.ApplicationDecided(string(to))
	logger.Infof("application %d %s by %s", app.ID, to, callerID)

	m.notify(ctx, app.ApplicantID, decisionMessage(app.Job.Title, to))

	return app, nil
}

func decisionMessage(title string, status model.ApplicationStatus) string {
	if status == model.ApplicationStatusShortlisted {
		return fmt.Sprintf("Your application for %s has been shortlisted!", title)
	}
	return fmt.Sprintf("Your application for %s has been rejected.", title)
}

// notify write the ledger entry then push it live. Failures are logged,
// never returned. It runs detached from request cancellation.
func (m *Manager) notify(ctx context.Context, userID uuid.UUID, message string) {
	ctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), m.config.SideEffectTimeout)
	defer cancel()

	n, err := m.config.Ledger.Create(ctx, userID, message)
	if err != nil {
		logger.Errorf("failed to record notification for %s: %v", userID, err)
		n = model.Notification{UserID: userID, Message: message, CreatedAt: m.config.Clock.Now()}
	}
	m.config.Events.Publish(userID, live.NotificationEvent(n))
}

func alreadyApplied() error {
	return apperr.New(apperr.Conflict, "You have already applied to this job")
}
