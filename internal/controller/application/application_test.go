package application

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/juju/clock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	lifecycle "github.com/himansu2198/Job-Listing-Portal/internal/application"
	"github.com/himansu2198/Job-Listing-Portal/internal/auth"
	"github.com/himansu2198/Job-Listing-Portal/internal/database"
	"github.com/himansu2198/Job-Listing-Portal/internal/live"
	"github.com/himansu2198/Job-Listing-Portal/internal/middleware"
	"github.com/himansu2198/Job-Listing-Portal/internal/model"
	"github.com/himansu2198/Job-Listing-Portal/internal/notification"
	"github.com/himansu2198/Job-Listing-Portal/internal/storage"
	"github.com/himansu2198/Job-Listing-Portal/internal/testutil"
)

type env struct {
	r      *gin.Engine
	store  *database.MemoryStore
	ledger *notification.Ledger
	tokens *auth.TokenIssuer
	database.Fixtures
}

func newEnv(t *testing.T) *env {
	t.Helper()
	gin.SetMode(gin.TestMode)
	ctx := context.Background()

	store := database.NewMemoryStore(nil)
	f, err := database.Seed(ctx, store)
	require.NoError(t, err)

	dir := t.TempDir()
	require.NoError(t, os.MkdirAll(filepath.Join(dir, "resumes"), 0o750))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "resumes", "seeker_1.pdf"), []byte("%PDF-1.4 seeker one"), 0o640))
	resumes, err := storage.NewLocalResumeStore(dir)
	require.NoError(t, err)

	ledger := notification.NewLedger(store, nil, nil)
	manager, err := lifecycle.NewManager(lifecycle.ManagerConfig{
		Store:  store,
		Ledger: ledger,
		Events: live.NopPublisher{},
		Clock:  clock.WallClock,
	})
	require.NoError(t, err)

	tokens := auth.NewTokenIssuer("application-test-secret", "JobListingPortal", time.Hour, nil)
	ac := NewApplicationController(manager, resumes)

	r := gin.New()
	g := r.Group("/applications", middleware.RequireAuth(tokens, store))
	g.POST("/apply", ac.ApplyHandler)
	g.GET("/jobseeker", middleware.CheckRole(model.RoleJobSeeker), ac.GetJobSeekerApplications)
	g.GET("/employer", middleware.CheckRole(model.RoleEmployer), ac.GetEmployerApplications)
	g.PUT("/:id/shortlist", middleware.CheckRole(model.RoleEmployer), ac.ShortlistHandler)
	g.PUT("/:id/reject", middleware.CheckRole(model.RoleEmployer), ac.RejectHandler)
	g.GET("/:id/resume", ac.GetResume)

	return &env{r: r, store: store, ledger: ledger, tokens: tokens, Fixtures: f}
}

func (e *env) token(t *testing.T, u model.User) string {
	t.Helper()
	token, err := e.tokens.Issue(u)
	require.NoError(t, err)
	return token
}

func (e *env) apply(t *testing.T, seeker model.User, jobID uint) (*httptest.ResponseRecorder, map[string]interface{}) {
	t.Helper()
	return testutil.MakeJSONRequest(gin.H{"jobId": jobID}, e.token(t, seeker), e.r, "/applications/apply", http.MethodPost)
}

func applicationID(t *testing.T, resp map[string]interface{}) uint {
	t.Helper()
	app, ok := resp["application"].(map[string]interface{})
	require.True(t, ok, "response has no application: %v", resp)
	return uint(app["id"].(float64))
}

func TestApplyHandler_Success(t *testing.T) {
	e := newEnv(t)

	rec, resp := e.apply(t, e.Seeker1, e.Job1.ID)

	require.Equal(t, http.StatusCreated, rec.Code)
	assert.Equal(t, "Application submitted successfully", resp["message"])
	app := resp["application"].(map[string]interface{})
	assert.Equal(t, "pending", app["status"])
	assert.Equal(t, "resumes/seeker_1.pdf", app["resume"])
	assert.Equal(t, e.Job1.Title, app["job"].(map[string]interface{})["title"])

	ns, err := e.ledger.ListForUser(context.Background(), e.Employer1.ID)
	require.NoError(t, err)
	require.Len(t, ns, 1)
	assert.Equal(t, "New application received for Go Developer", ns[0].Message)
}

func TestApplyHandler_Errors(t *testing.T) {
	e := newEnv(t)
	_, _ = e.apply(t, e.Seeker1, e.Job1.ID)

	cases := []struct {
		name    string
		user    model.User
		jobID   uint
		status  int
		message string
	}{
		{"duplicate", e.Seeker1, e.Job1.ID, http.StatusConflict, "You have already applied to this job"},
		{"employer", e.Employer1, e.Job1.ID, http.StatusForbidden, "Only job seekers can apply for jobs"},
		{"missing job id", e.Seeker1, 0, http.StatusBadRequest, "Job ID is required"},
		{"no resume", e.SeekerNoResume, e.Job1.ID, http.StatusBadRequest, "Please upload your resume in your profile before applying"},
		{"unknown job", e.Seeker2, 777, http.StatusNotFound, "Job not found"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			rec, resp := e.apply(t, tc.user, tc.jobID)
			assert.Equal(t, tc.status, rec.Code)
			assert.Equal(t, tc.message, resp["error"])
		})
	}
}

func TestApplyHandler_UnreadableBody(t *testing.T) {
	e := newEnv(t)

	cases := []struct {
		name    string
		user    model.User
		body    gin.H
		status  int
		message string
	}{
		{"seeker non numeric id", e.Seeker1, gin.H{"jobId": "one"}, http.StatusBadRequest, "Job ID is required"},
		{"seeker wrong type", e.Seeker1, gin.H{"jobId": true}, http.StatusBadRequest, "Job ID is required"},
		{"employer non numeric id", e.Employer1, gin.H{"jobId": "one"}, http.StatusForbidden, "Only job seekers can apply for jobs"},
		{"employer empty body", e.Employer1, nil, http.StatusForbidden, "Only job seekers can apply for jobs"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			rec, resp := testutil.MakeJSONRequest(tc.body, e.token(t, tc.user), e.r, "/applications/apply", http.MethodPost)
			assert.Equal(t, tc.status, rec.Code)
			assert.Equal(t, tc.message, resp["error"])
		})
	}
}

func TestApplyHandler_StringJobID(t *testing.T) {
	e := newEnv(t)

	rec, resp := testutil.MakeJSONRequest(gin.H{"jobId": fmt.Sprint(e.Job1.ID)}, e.token(t, e.Seeker1), e.r, "/applications/apply", http.MethodPost)

	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	assert.Equal(t, e.Job1.Title, resp["application"].(map[string]interface{})["job"].(map[string]interface{})["title"])
}

func TestListHandlers_Scoped(t *testing.T) {
	e := newEnv(t)
	_, _ = e.apply(t, e.Seeker1, e.Job1.ID)
	_, _ = e.apply(t, e.Seeker2, e.Job3.ID)

	rec, resp := testutil.MakeJSONRequest(nil, e.token(t, e.Employer1), e.r, "/applications/employer", http.MethodGet)
	require.Equal(t, http.StatusOK, rec.Code)
	apps := resp["applications"].([]interface{})
	require.Len(t, apps, 1)
	assert.Equal(t, e.Seeker1.ID.String(), apps[0].(map[string]interface{})["applicant_id"])

	rec, resp = testutil.MakeJSONRequest(nil, e.token(t, e.Seeker2), e.r, "/applications/jobseeker", http.MethodGet)
	require.Equal(t, http.StatusOK, rec.Code)
	apps = resp["applications"].([]interface{})
	require.Len(t, apps, 1)
	assert.Equal(t, e.Job3.Title, apps[0].(map[string]interface{})["job"].(map[string]interface{})["title"])

	rec, _ = testutil.MakeJSONRequest(nil, e.token(t, e.Seeker2), e.r, "/applications/employer", http.MethodGet)
	assert.Equal(t, http.StatusForbidden, rec.Code)
}

func TestDecisionHandlers(t *testing.T) {
	e := newEnv(t)
	_, resp := e.apply(t, e.Seeker1, e.Job1.ID)
	id := applicationID(t, resp)

	rec, resp := testutil.MakeJSONRequest(nil, e.token(t, e.Employer2), e.r, fmt.Sprintf("/applications/%d/reject", id), http.MethodPut)
	assert.Equal(t, http.StatusForbidden, rec.Code)
	assert.Equal(t, "Unauthorized action", resp["error"])

	rec, resp = testutil.MakeJSONRequest(nil, e.token(t, e.Employer1), e.r, fmt.Sprintf("/applications/%d/shortlist", id), http.MethodPut)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "Application shortlisted successfully", resp["message"])
	assert.Equal(t, "shortlisted", resp["application"].(map[string]interface{})["status"])

	rec, resp = testutil.MakeJSONRequest(nil, e.token(t, e.Employer1), e.r, fmt.Sprintf("/applications/%d/reject", id), http.MethodPut)
	assert.Equal(t, http.StatusConflict, rec.Code)
	assert.Equal(t, "conflict", resp["kind"])

	rec, _ = testutil.MakeJSONRequest(nil, e.token(t, e.Employer1), e.r, "/applications/999/shortlist", http.MethodPut)
	assert.Equal(t, http.StatusNotFound, rec.Code)

	ns, err := e.ledger.ListForUser(context.Background(), e.Seeker1.ID)
	require.NoError(t, err)
	require.Len(t, ns, 1)
	assert.Equal(t, "Your application for Go Developer has been shortlisted!", ns[0].Message)
}

func TestGetResume(t *testing.T) {
	e := newEnv(t)
	_, resp := e.apply(t, e.Seeker1, e.Job1.ID)
	endpoint := fmt.Sprintf("/applications/%d/resume", applicationID(t, resp))

	for _, u := range []model.User{e.Employer1, e.Seeker1} {
		req := httptest.NewRequest(http.MethodGet, endpoint, nil)
		req.Header.Set("Authorization", "Bearer "+e.token(t, u))
		rec := httptest.NewRecorder()
		e.r.ServeHTTP(rec, req)

		assert.Equal(t, http.StatusOK, rec.Code)
		assert.Equal(t, "application/pdf", rec.Header().Get("Content-Type"))
		assert.Equal(t, "%PDF-1.4 seeker one", rec.Body.String())
	}

	rec, _ := testutil.MakeJSONRequest(nil, e.token(t, e.Employer2), e.r, endpoint, http.MethodGet)
	assert.Equal(t, http.StatusForbidden, rec.Code)
}

func TestGetResume_MissingFile(t *testing.T) {
	e := newEnv(t)
	_, resp := e.apply(t, e.Seeker2, e.Job1.ID)

	rec, body := testutil.MakeJSONRequest(nil, e.token(t, e.Employer1), e.r, fmt.Sprintf("/applications/%d/resume", applicationID(t, resp)), http.MethodGet)

	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Equal(t, "Resume not found", body["error"])
}

