// Package job provides HTTP handlers for job posting operations.
package job

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/himansu2198/Job-Listing-Portal/internal/apperr"
	"github.com/himansu2198/Job-Listing-Portal/internal/database"
	"github.com/himansu2198/Job-Listing-Portal/internal/model"
	"github.com/himansu2198/Job-Listing-Portal/internal/utilities"
)

// Store is the persistence used by JobController
type Store interface {
	CreateJob(ctx context.Context, job *model.Job) error
	FindJobByID(ctx context.Context, id uint) (model.Job, error)
	ListJobs(ctx context.Context, filter database.JobFilter) ([]model.Job, error)
	SaveJob(ctx context.Context, job *model.Job) error
	CountApplicationsByJob(ctx context.Context, jobIDs []uint) (map[uint]int64, error)
}

// JobController handles job posting related endpoints
type JobController struct {
	Store Store
}

// NewJobController creates a new instance of JobController
func NewJobController(store Store) *JobController {
	return &JobController{
		Store: store,
	}
}

// ListResponse is the body of job listings
type ListResponse struct {
	Count int         `json:"count"`
	Jobs  []model.Job `json:"jobs"`
}

// CreateJobHandler post a new job owned by the calling employer.
// Route must be guarded by CheckRole(employer).
func (jc *JobController) CreateJobHandler(c *gin.Context) {
	identity, err := utilities.ExtractIdentity(c)
	if err != nil {
		utilities.RespondError(c, err)
		return
	}

	job := model.Job{}
	if err := c.ShouldBindJSON(&job.EditableJobInfo); err != nil {
		utilities.RespondError(c, apperr.New(apperr.ValidationError, "Invalid request body: %s", err.Error()))
		return
	}

	job.EmployerID = identity.ID
	if err := jc.Store.CreateJob(c.Request.Context(), &job); err != nil {
		utilities.RespondError(c, err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{"job": job})
}

// GetJobs list every job, newest first. Query category narrows the result.
func (jc *JobController) GetJobs(c *gin.Context) {
	category := c.Query("category")
	if category != "" && !utilities.Contains(model.JobCategories, category) {
		utilities.RespondError(c, apperr.New(apperr.ValidationError, "Unknown category: %s", category))
		return
	}

	jc.respondList(c, database.JobFilter{Category: category})
}

// GetEmployerJobs list jobs posted by the calling employer for the dashboard
func (jc *JobController) GetEmployerJobs(c *gin.Context) {
	identity, err := utilities.ExtractIdentity(c)
	if err != nil {
		utilities.RespondError(c, err)
		return
	}

	jc.respondList(c, database.JobFilter{EmployerID: identity.ID})
}

func (jc *JobController) respondList(c *gin.Context, filter database.JobFilter) {
	ctx := c.Request.Context()
	jobs, err := jc.Store.ListJobs(ctx, filter)
	if err != nil {
		utilities.RespondError(c, err)
		return
	}
	if err := jc.withCounts(ctx, jobs); err != nil {
		utilities.RespondError(c, err)
		return
	}

	c.JSON(http.StatusOK, ListResponse{Count: len(jobs), Jobs: jobs})
}

func (jc *JobController) withCounts(ctx context.Context, jobs []model.Job) error {
	ids := make([]uint, 0, len(jobs))
	for _, j := range jobs {
		ids = append(ids, j.ID)
	}
	counts, err := jc.Store.CountApplicationsByJob(ctx, ids)
	if err != nil {
		return err
	}
	for i := range jobs {
		jobs[i].ApplicationsCount = counts[jobs[i].ID]
	}
	return nil
}

// GetJobByID return a single job with its application count
func (jc *JobController) GetJobByID(c *gin.Context) {
	job, ok := jc.findJob(c)
	if !ok {
		return
	}

	jobs := []model.Job{job}
	if err := jc.withCounts(c.Request.Context(), jobs); err != nil {
		utilities.RespondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"job": jobs[0]})
}

// EditJob apply a partial update to a job owned by the calling employer.
// Existing applications keep referencing the job and are not touched.
func (jc *JobController) EditJob(c *gin.Context) {
	identity, err := utilities.ExtractIdentity(c)
	if err != nil {
		utilities.RespondError(c, err)
		return
	}

	job, ok := jc.findJob(c)
	if !ok {
		return
	}
	if job.EmployerID != identity.ID {
		utilities.RespondError(c, apperr.New(apperr.Forbidden, "Not authorized to update this job"))
		return
	}

	update := model.JobUpdate{}
	if err := c.ShouldBindJSON(&update); err != nil {
		utilities.RespondError(c, apperr.New(apperr.ValidationError, "Invalid request body: %s", err.Error()))
		return
	}
	update.Apply(&job)

	if err := jc.Store.SaveJob(c.Request.Context(), &job); err != nil {
		utilities.RespondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Job updated successfully", "job": job})
}

func (jc *JobController) findJob(c *gin.Context) (model.Job, bool) {
	id, err := utilities.ParseIDParam(c, "id")
	if err != nil {
		utilities.RespondError(c, err)
		return model.Job{}, false
	}

	job, err := jc.Store.FindJobByID(c.Request.Context(), id)
	if apperr.KindOf(err) == apperr.NotFound {
		err = apperr.New(apperr.NotFound, "Job not found")
	}
	if err != nil {
		utilities.RespondError(c, err)
		return model.Job{}, false
	}
	return job, true
}
