package middleware

import (
	"github.com/gin-gonic/gin"

	"github.com/himansu2198/Job-Listing-Portal/internal/apperr"
	"github.com/himansu2198/Job-Listing-Portal/internal/auth"
	"github.com/himansu2198/Job-Listing-Portal/internal/utilities"
)

// JwtBlacklistCheck rejects tokens revoked by logout. It must run after RequireAuth.
func JwtBlacklistCheck(bl auth.JwtBlacklistStore) gin.HandlerFunc {
	return func(ctx *gin.Context) {
		claims, err := auth.ExtractClaims(ctx)
		if err != nil {
			utilities.AbortWithError(ctx, err)
			return
		}

		isBlacklisted, err := bl.IsBlacklisted(claims.ID)
		if err != nil {
			utilities.AbortWithError(ctx, apperr.Storage(err, "validate token"))
			return
		}

		if isBlacklisted {
			utilities.AbortWithError(ctx, apperr.New(apperr.InvalidCredential, "Token has been revoked"))
			return
		}
		ctx.Next()
	}
}
