package auth

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/himansu2198/Job-Listing-Portal/internal/apperr"
	"github.com/himansu2198/Job-Listing-Portal/internal/utilities"
)

// LogoutController handles user logout by blacklisting JWT tokens
type LogoutController struct {
	BlacklistStore JwtBlacklistStore
}

// NewLogoutController creates a new instance of LogoutController
func NewLogoutController(blacklistStore JwtBlacklistStore) *LogoutController {
	return &LogoutController{
		BlacklistStore: blacklistStore,
	}
}

// LogoutHandler revoke the token that authenticated this request.
// Must run after RequireAuth, which puts the claims in the context.
func (lc *LogoutController) LogoutHandler(c *gin.Context) {
	claims, err := ExtractClaims(c)
	if err != nil {
		utilities.RespondError(c, err)
		return
	}

	if err := lc.BlacklistStore.AddToBlacklist(claims.ID, claims.ExpiresAt.Time); err != nil {
		utilities.RespondError(c, apperr.Storage(err, "logout"))
		return
	}

	c.JSON(http.StatusOK, utilities.MessageResponse{Message: "Successfully logged out"})
}

// ExtractClaims return token claims stored in the context by RequireAuth
func ExtractClaims(c *gin.Context) (*Claims, error) {
	v, ok := c.Get(ClaimsKey)
	if !ok {
		return nil, apperr.New(apperr.Unauthenticated, "invalid token claims")
	}

	claims, ok := v.(*Claims)
	if !ok || claims.ExpiresAt == nil {
		return nil, apperr.New(apperr.Unauthenticated, "invalid token claims type")
	}
	return claims, nil
}
