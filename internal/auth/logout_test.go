package auth

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLogoutSuccess(t *testing.T) {
	issuer := NewTokenIssuer("secret", "JobListingPortal", time.Hour, nil)
	accessToken, err := issuer.Issue(testUser())
	require.NoError(t, err)
	claims, err := issuer.Validate(accessToken)
	require.NoError(t, err)

	blacklistStore := NewInMemoryBlacklistStore(nil)
	logoutController := NewLogoutController(blacklistStore)

	rec := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(rec)
	c.Request = httptest.NewRequest(http.MethodPost, "/logout", nil)
	c.Set(ClaimsKey, claims)

	logoutController.LogoutHandler(c)

	assert.Equal(t, http.StatusOK, rec.Code)
	var resp map[string]interface{}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, "Successfully logged out", resp["message"])

	isBlacklisted, err := blacklistStore.IsBlacklisted(claims.ID)
	assert.NoError(t, err)
	assert.True(t, isBlacklisted, "Token should be blacklisted after logout")
}

func TestLogoutWithoutClaims(t *testing.T) {
	logoutController := NewLogoutController(NewInMemoryBlacklistStore(nil))

	rec := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(rec)
	c.Request = httptest.NewRequest(http.MethodPost, "/logout", nil)

	logoutController.LogoutHandler(c)

	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}
