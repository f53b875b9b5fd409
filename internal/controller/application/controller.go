// Package application provides HTTP handlers for job application operations.
package application

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"path"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/juju/errors"
	"github.com/juju/loggo"

	"github.com/himansu2198/Job-Listing-Portal/internal/model"
	"github.com/himansu2198/Job-Listing-Portal/internal/storage"
	"github.com/himansu2198/Job-Listing-Portal/internal/utilities"
)

var logger = loggo.GetLogger("jobportal.controller.application")

// Lifecycle is the application lifecycle the handlers drive
type Lifecycle interface {
	Submit(ctx context.Context, jobID uint, callerID uuid.UUID) (model.Application, error)
	Get(ctx context.Context, applicationID uint, callerID uuid.UUID) (model.Application, error)
	ListForEmployer(ctx context.Context, callerID uuid.UUID) ([]model.Application, error)
	ListForApplicant(ctx context.Context, callerID uuid.UUID) ([]model.Application, error)
	Shortlist(ctx context.Context, applicationID uint, callerID uuid.UUID) (model.Application, error)
	Reject(ctx context.Context, applicationID uint, callerID uuid.UUID) (model.Application, error)
}

// ApplicationController handles job application related endpoints
type ApplicationController struct {
	Lifecycle Lifecycle
	Resumes   storage.ResumeStore
}

// NewApplicationController creates a new instance of ApplicationController
func NewApplicationController(lifecycle Lifecycle, resumes storage.ResumeStore) *ApplicationController {
	return &ApplicationController{
		Lifecycle: lifecycle,
		Resumes:   resumes,
	}
}

// ApplyRequest is the body of an apply call
type ApplyRequest struct {
	JobID JobRef `json:"jobId"`
}

// JobRef is a job id sent either as a JSON number or as a numeric string
type JobRef uint

// UnmarshalJSON implements json.Unmarshaler
func (j *JobRef) UnmarshalJSON(b []byte) error {
	s := strings.Trim(string(b), `"`)
	if s == "" || s == "null" {
		*j = 0
		return nil
	}
	n, err := strconv.ParseUint(s, 10, 64)
	if err != nil {
		return errors.NotValidf("job id %s", b)
	}
	*j = JobRef(n)
	return nil
}

// ApplicationResponse wraps a single application with a status message
type ApplicationResponse struct {
	Message     string            `json:"message"`
	Application model.Application `json:"application"`
}

// ApplicationListResponse wraps a list of applications
type ApplicationListResponse struct {
	Applications []model.Application `json:"applications"`
}

// ApplyHandler submit an application of the calling job seeker.
// The resume on the profile at this moment is attached to the application.
func (ac *ApplicationController) ApplyHandler(c *gin.Context) {
	identity, err := utilities.ExtractIdentity(c)
	if err != nil {
		utilities.RespondError(c, err)
		return
	}

	// An unreadable body counts as a missing job id. Submit checks the
	// caller's role before it looks at the id.
	req := ApplyRequest{}
	if err := c.ShouldBindJSON(&req); err != nil {
		logger.Debugf("unreadable apply body from %s: %v", identity.ID, err)
		req.JobID = 0
	}

	app, err := ac.Lifecycle.Submit(c.Request.Context(), uint(req.JobID), identity.ID)
	if err != nil {
		utilities.RespondError(c, err)
		return
	}

	c.JSON(http.StatusCreated, ApplicationResponse{
		Message:     "Application submitted successfully",
		Application: app,
	})
}

// GetEmployerApplications list applications to the calling employer's jobs
func (ac *ApplicationController) GetEmployerApplications(c *gin.Context) {
	ac.list(c, ac.Lifecycle.ListForEmployer)
}

// GetJobSeekerApplications list applications made by the calling job seeker
func (ac *ApplicationController) GetJobSeekerApplications(c *gin.Context) {
	ac.list(c, ac.Lifecycle.ListForApplicant)
}

func (ac *ApplicationController) list(c *gin.Context, fetch func(context.Context, uuid.UUID) ([]model.Application, error)) {
	identity, err := utilities.ExtractIdentity(c)
	if err != nil {
		utilities.RespondError(c, err)
		return
	}

	apps, err := fetch(c.Request.Context(), identity.ID)
	if err != nil {
		utilities.RespondError(c, err)
		return
	}

	c.JSON(http.StatusOK, ApplicationListResponse{Applications: apps})
}

// ShortlistHandler shortlist a pending application to one of the caller's jobs
func (ac *ApplicationController) ShortlistHandler(c *gin.Context) {
	ac.decide(c, ac.Lifecycle.Shortlist, "Application shortlisted successfully")
}

// RejectHandler reject a pending application to one of the caller's jobs
func (ac *ApplicationController) RejectHandler(c *gin.Context) {
	ac.decide(c, ac.Lifecycle.Reject, "Application rejected successfully")
}

func (ac *ApplicationController) decide(
	c *gin.Context,
	transition func(context.Context, uint, uuid.UUID) (model.Application, error),
	message string,
) {
	identity, err := utilities.ExtractIdentity(c)
	if err != nil {
		utilities.RespondError(c, err)
		return
	}

	id, err := utilities.ParseIDParam(c, "id")
	if err != nil {
		utilities.RespondError(c, err)
		return
	}

	app, err := transition(c.Request.Context(), id, identity.ID)
	if err != nil {
		utilities.RespondError(c, err)
		return
	}

	c.JSON(http.StatusOK, ApplicationResponse{Message: message, Application: app})
}

// GetResume stream the resume snapshotted on an application.
// Only the applicant and the employer of the job may download it.
func (ac *ApplicationController) GetResume(c *gin.Context) {
	identity, err := utilities.ExtractIdentity(c)
	if err != nil {
		utilities.RespondError(c, err)
		return
	}

	id, err := utilities.ParseIDParam(c, "id")
	if err != nil {
		utilities.RespondError(c, err)
		return
	}

	app, err := ac.Lifecycle.Get(c.Request.Context(), id, identity.ID)
	if err != nil {
		utilities.RespondError(c, err)
		return
	}

	reader, size, err := ac.Resumes.Open(c.Request.Context(), app.ResumeRef)
	if err != nil {
		utilities.RespondError(c, err)
		return
	}
	defer func() {
		if err := reader.Close(); err != nil {
			logger.Warningf("failed to close resume reader: %v", err)
		}
	}()

	c.Writer.Header().Set("Content-Disposition", "attachment; filename="+path.Base(app.ResumeRef))
	c.Writer.Header().Set("Content-Type", "application/pdf")
	if size > 0 {
		c.Writer.Header().Set("Content-Length", fmt.Sprint(size))
	}
	c.Status(http.StatusOK)
	if _, err := io.Copy(c.Writer, reader); err != nil {
		logger.Errorf("failed to send resume of application %d: %v", app.ID, err)
		c.Abort()
	}
}
