// Package middleware contain utilities middleware code
package middleware

import (
	"context"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/himansu2198/Job-Listing-Portal/internal/apperr"
	"github.com/himansu2198/Job-Listing-Portal/internal/auth"
	"github.com/himansu2198/Job-Listing-Portal/internal/model"
	"github.com/himansu2198/Job-Listing-Portal/internal/utilities"
)

// UserFinder load the stored user behind a token
type UserFinder interface {
	FindUserByID(ctx context.Context, id uuid.UUID) (model.User, error)
}

// RequireAuth validates the Bearer token of the request and checks that the
// user behind it still exists. The identity stored in the context comes
// from the stored user, never from the token claims.
func RequireAuth(tokens *auth.TokenIssuer, users UserFinder) gin.HandlerFunc {
	return func(ctx *gin.Context) {
		tokenString, err := utilities.ExtractBearerToken(ctx)
		if err != nil {
			utilities.AbortWithError(ctx, err)
			return
		}

		claims, err := tokens.Validate(tokenString)
		if err != nil {
			auth.LogAuthAttempt("Token", false, "", err.Error())
			utilities.AbortWithError(ctx, err)
			return
		}

		userID, err := claims.UserID()
		if err != nil {
			utilities.AbortWithError(ctx, err)
			return
		}

		user, err := users.FindUserByID(ctx.Request.Context(), userID)
		if err != nil {
			if apperr.KindOf(err) == apperr.NotFound {
				auth.LogAuthAttempt("Token", false, userID.String(), "user not exist")
				utilities.AbortWithError(ctx, apperr.New(apperr.InvalidCredential, "User not exist"))
				return
			}
			utilities.AbortWithError(ctx, err)
			return
		}

		ctx.Set(auth.ClaimsKey, claims)
		ctx.Set(utilities.IdentityKey, user.Identity())
		ctx.Next()
	}
}
