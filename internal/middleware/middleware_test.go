package middleware

import (
	"bytes"
	"context"
	"errors"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"os"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/himansu2198/Job-Listing-Portal/internal/auth"
	"github.com/himansu2198/Job-Listing-Portal/internal/database"
	"github.com/himansu2198/Job-Listing-Portal/internal/model"
	"github.com/himansu2198/Job-Listing-Portal/internal/testutil"
	"github.com/himansu2198/Job-Listing-Portal/internal/utilities"
)

const testSecret = "middleware-test-secret"

var (
	store    *database.MemoryStore
	fixtures database.Fixtures
	tokens   *auth.TokenIssuer
)

func TestMain(m *testing.M) {
	gin.SetMode(gin.TestMode)

	store = database.NewMemoryStore(nil)
	var err error
	fixtures, err = database.Seed(context.Background(), store)
	if err != nil {
		panic(err)
	}
	tokens = auth.NewTokenIssuer(testSecret, "JobListingPortal", time.Hour, nil)

	os.Exit(m.Run())
}

func issue(t *testing.T, u model.User) string {
	t.Helper()
	token, err := tokens.Issue(u)
	require.NoError(t, err)
	return token
}

func identityHandler(c *gin.Context) {
	identity, err := utilities.ExtractIdentity(c)
	if err != nil {
		utilities.RespondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"id": identity.ID.String(), "role": identity.Role})
}

func protectedEngine(extra ...gin.HandlerFunc) *gin.Engine {
	r := gin.New()
	handlers := append([]gin.HandlerFunc{RequireAuth(tokens, store)}, extra...)
	handlers = append(handlers, identityHandler)
	r.GET("/protected", handlers...)
	return r
}

func TestRequireAuth_ValidToken(t *testing.T) {
	r := protectedEngine()

	rec, resp := testutil.MakeJSONRequest(nil, issue(t, fixtures.Seeker1), r, "/protected", http.MethodGet)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, fixtures.Seeker1.ID.String(), resp["id"])
	assert.Equal(t, model.RoleJobSeeker, resp["role"])
}

func TestRequireAuth_QueryToken(t *testing.T) {
	r := protectedEngine()

	req := httptest.NewRequest(http.MethodGet, "/protected?token="+issue(t, fixtures.Employer1), nil)
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestRequireAuth_MissingHeader(t *testing.T) {
	r := protectedEngine()

	req := httptest.NewRequest(http.MethodGet, "/protected", nil)
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.Contains(t, rec.Body.String(), "unauthenticated")
}

func TestRequireAuth_InvalidSignature(t *testing.T) {
	r := protectedEngine()
	other := auth.NewTokenIssuer("another-secret", "JobListingPortal", time.Hour, nil)
	token, err := other.Issue(fixtures.Seeker1)
	require.NoError(t, err)

	rec, resp := testutil.MakeJSONRequest(nil, token, r, "/protected", http.MethodGet)

	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.Equal(t, "invalid credential", resp["kind"])
}

func TestRequireAuth_UnknownUser(t *testing.T) {
	r := protectedEngine()
	ghost := model.User{ID: uuid.New(), Role: model.RoleEmployer, Email: "ghost@example.com"}

	rec, resp := testutil.MakeJSONRequest(nil, issue(t, ghost), r, "/protected", http.MethodGet)

	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.Equal(t, "User not exist", resp["error"])
}

func TestRequireAuth_IdentityComesFromStoredUser(t *testing.T) {
	r := protectedEngine()
	// token claims a role the stored user does not have
	forged := fixtures.Seeker1
	forged.Role = model.RoleEmployer

	rec, resp := testutil.MakeJSONRequest(nil, issue(t, forged), r, "/protected", http.MethodGet)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, model.RoleJobSeeker, resp["role"])
}

func TestCheckRole(t *testing.T) {
	r := protectedEngine(CheckRole(model.RoleEmployer))

	rec, resp := testutil.MakeJSONRequest(nil, issue(t, fixtures.Seeker1), r, "/protected", http.MethodGet)
	assert.Equal(t, http.StatusForbidden, rec.Code)
	assert.Equal(t, "wrong role", resp["kind"])

	rec, _ = testutil.MakeJSONRequest(nil, issue(t, fixtures.Employer1), r, "/protected", http.MethodGet)
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestCheckRole_WithoutIdentity(t *testing.T) {
	r := gin.New()
	r.GET("/protected", CheckRole(model.RoleEmployer), identityHandler)

	req := httptest.NewRequest(http.MethodGet, "/protected", nil)
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestJwtBlacklistCheck(t *testing.T) {
	bl := auth.NewInMemoryBlacklistStore(nil)
	r := protectedEngine(JwtBlacklistCheck(bl))
	token := issue(t, fixtures.Employer2)

	rec, _ := testutil.MakeJSONRequest(nil, token, r, "/protected", http.MethodGet)
	assert.Equal(t, http.StatusOK, rec.Code)

	claims, err := tokens.Validate(token)
	require.NoError(t, err)
	require.NoError(t, bl.AddToBlacklist(claims.ID, claims.ExpiresAt.Time))

	rec, resp := testutil.MakeJSONRequest(nil, token, r, "/protected", http.MethodGet)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.Equal(t, "Token has been revoked", resp["error"])
}

func TestRequestTimeout(t *testing.T) {
	r := gin.New()
	r.GET("/slow", RequestTimeout(10*time.Millisecond), func(c *gin.Context) {
		select {
		case <-c.Request.Context().Done():
			c.Status(http.StatusGatewayTimeout)
		case <-time.After(time.Second):
			c.Status(http.StatusOK)
		}
	})

	req := httptest.NewRequest(http.MethodGet, "/slow", nil)
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusGatewayTimeout, rec.Code)
}

func TestRateLimiter(t *testing.T) {
	r := gin.New()
	r.GET("/limited", RateLimiterMiddleware(2), func(c *gin.Context) { c.Status(http.StatusOK) })

	codes := make([]int, 0, 3)
	for i := 0; i < 3; i++ {
		req := httptest.NewRequest(http.MethodGet, "/limited", nil)
		rec := httptest.NewRecorder()
		r.ServeHTTP(rec, req)
		codes = append(codes, rec.Code)
	}

	assert.Equal(t, []int{http.StatusOK, http.StatusOK, http.StatusTooManyRequests}, codes)
}

func TestSafeHeader(t *testing.T) {
	r := gin.New()
	r.GET("/", SafeHeader(), func(c *gin.Context) { c.Status(http.StatusOK) })

	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))

	assert.Equal(t, "nosniff", rec.Header().Get("X-Content-Type-Options"))
	assert.Equal(t, "DENY", rec.Header().Get("X-Frame-Options"))
	assert.Contains(t, rec.Header().Get("Content-Security-Policy"), "frame-ancestors 'none'")
	assert.Empty(t, rec.Header().Get("Strict-Transport-Security"))

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("X-Forwarded-Proto", "https")
	rec = httptest.NewRecorder()
	r.ServeHTTP(rec, req)
	assert.NotEmpty(t, rec.Header().Get("Strict-Transport-Security"))
}

func readFileHandler(c *gin.Context) {
	_, err := c.FormFile("file")
	if err != nil {
		var maxBytesError *http.MaxBytesError
		if errors.As(err, &maxBytesError) {
			c.JSON(http.StatusRequestEntityTooLarge, gin.H{"error": "Entity too large"})
			return
		}
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	c.Status(http.StatusOK)
}

func multipartBody(t *testing.T, size int) (io.Reader, string) {
	t.Helper()
	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)
	part, err := w.CreateFormFile("file", "resume.pdf")
	require.NoError(t, err)
	_, err = part.Write(bytes.Repeat([]byte("a"), size))
	require.NoError(t, err)
	require.NoError(t, w.Close())
	return &buf, w.FormDataContentType()
}

func TestSizeLimit(t *testing.T) {
	r := gin.New()
	r.MaxMultipartMemory = 1 << 10
	r.POST("/upload", SizeLimit(64<<10), readFileHandler)

	body, ct := multipartBody(t, 16<<10)
	req := httptest.NewRequest(http.MethodPost, "/upload", body)
	req.Header.Set("Content-Type", ct)
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusOK, rec.Code)

	body, ct = multipartBody(t, 256<<10)
	req = httptest.NewRequest(http.MethodPost, "/upload", body)
	req.Header.Set("Content-Type", ct)
	rec = httptest.NewRecorder()
	r.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusRequestEntityTooLarge, rec.Code)
}
