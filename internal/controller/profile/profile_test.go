package profile

import (
	"bytes"
	"context"
	"net/http"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/himansu2198/Job-Listing-Portal/internal/auth"
	"github.com/himansu2198/Job-Listing-Portal/internal/database"
	"github.com/himansu2198/Job-Listing-Portal/internal/middleware"
	"github.com/himansu2198/Job-Listing-Portal/internal/model"
	"github.com/himansu2198/Job-Listing-Portal/internal/profile"
	"github.com/himansu2198/Job-Listing-Portal/internal/storage"
	"github.com/himansu2198/Job-Listing-Portal/internal/testutil"
)

const maxResumeBytes = 64 << 10

type env struct {
	r      *gin.Engine
	store  *database.MemoryStore
	tokens *auth.TokenIssuer
	database.Fixtures
}

func newEnv(t *testing.T) *env {
	t.Helper()
	gin.SetMode(gin.TestMode)

	store := database.NewMemoryStore(nil)
	f, err := database.Seed(context.Background(), store)
	require.NoError(t, err)
	resumes, err := storage.NewLocalResumeStore(t.TempDir())
	require.NoError(t, err)
	tokens := auth.NewTokenIssuer("profile-test-secret", "JobListingPortal", time.Hour, nil)

	pc := NewProfileController(profile.NewService(store, resumes))
	r := gin.New()
	r.MaxMultipartMemory = 8 << 10
	g := r.Group("/profile", middleware.RequireAuth(tokens, store))
	g.GET("", pc.GetProfile)
	g.PUT("", pc.UpdateProfile)
	g.POST("/resume", middleware.SizeLimit(maxResumeBytes), pc.UploadResume)

	return &env{r: r, store: store, tokens: tokens, Fixtures: f}
}

func (e *env) token(t *testing.T, u model.User) string {
	t.Helper()
	token, err := e.tokens.Issue(u)
	require.NoError(t, err)
	return token
}

func TestGetProfile(t *testing.T) {
	e := newEnv(t)

	rec, resp := testutil.MakeJSONRequest(nil, e.token(t, e.SeekerNoResume), e.r, "/profile", http.MethodGet)

	require.Equal(t, http.StatusOK, rec.Code)
	p := resp["profile"].(map[string]interface{})
	assert.Equal(t, e.SeekerNoResume.Email, p["email"])
	assert.Nil(t, p["password"])
	readiness := p["readiness"].(map[string]interface{})
	assert.Equal(t, true, readiness["missing_resume"])
}

func TestUpdateProfile_CommaSeparatedSkills(t *testing.T) {
	e := newEnv(t)

	rec, resp := testutil.MakeJSONRequest(gin.H{"skills": "Go, Kubernetes", "location": "Phuket"}, e.token(t, e.Seeker2), e.r, "/profile", http.MethodPut)

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "Profile updated successfully", resp["message"])
	stored, err := e.store.FindUserByID(context.Background(), e.Seeker2.ID)
	require.NoError(t, err)
	assert.Equal(t, []string{"Go", "Kubernetes"}, []string(stored.Skills))
	assert.Equal(t, "Phuket", stored.Location)
	assert.Equal(t, e.Seeker2.Phone, stored.Phone)
}

func TestUpdateProfile_InvalidSkills(t *testing.T) {
	e := newEnv(t)

	rec, _ := testutil.MakeJSONRequest(gin.H{"skills": 42}, e.token(t, e.Seeker2), e.r, "/profile", http.MethodPut)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestUploadResume_Success(t *testing.T) {
	e := newEnv(t)

	rec, resp := testutil.MakeFileRequest("resume", "cv.pdf", []byte("%PDF-1.4"), e.token(t, e.SeekerNoResume), e.r, "/profile/resume")

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "Resume uploaded successfully", resp["message"])
	assert.Equal(t, true, resp["profile_complete"])
	stored, err := e.store.FindUserByID(context.Background(), e.SeekerNoResume.ID)
	require.NoError(t, err)
	require.NotNil(t, stored.Resume)
	assert.Equal(t, resp["resume"], *stored.Resume)
	assert.True(t, stored.ProfileComplete)
}

func TestUploadResume_NotPDF(t *testing.T) {
	e := newEnv(t)

	rec, resp := testutil.MakeFileRequest("resume", "cv.docx", []byte("doc"), e.token(t, e.SeekerNoResume), e.r, "/profile/resume")

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "Only PDF files are allowed", resp["error"])
}

func TestUploadResume_TooLarge(t *testing.T) {
	e := newEnv(t)

	content := bytes.Repeat([]byte("a"), 4*maxResumeBytes)
	rec, _ := testutil.MakeFileRequest("resume", "cv.pdf", content, e.token(t, e.SeekerNoResume), e.r, "/profile/resume")

	assert.Equal(t, http.StatusRequestEntityTooLarge, rec.Code)
	stored, err := e.store.FindUserByID(context.Background(), e.SeekerNoResume.ID)
	require.NoError(t, err)
	assert.Nil(t, stored.Resume)
}

func TestUploadResume_MissingFile(t *testing.T) {
	e := newEnv(t)

	rec, resp := testutil.MakeJSONRequest(gin.H{}, e.token(t, e.SeekerNoResume), e.r, "/profile/resume", http.MethodPost)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "Resume file is required", resp["error"])
}

func TestUploadResume_EmployerWrongRole(t *testing.T) {
	e := newEnv(t)

	rec, _ := testutil.MakeFileRequest("resume", "cv.pdf", []byte("%PDF"), e.token(t, e.Employer1), e.r, "/profile/resume")

	assert.Equal(t, http.StatusForbidden, rec.Code)
}
