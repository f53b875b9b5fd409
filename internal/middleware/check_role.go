package middleware

import (
	"github.com/gin-gonic/gin"

	"github.com/himansu2198/Job-Listing-Portal/internal/apperr"
	"github.com/himansu2198/Job-Listing-Portal/internal/utilities"
)

// CheckRole will protect endpoint from user that is not a specific roles
func CheckRole(roles ...string) gin.HandlerFunc {
	return func(ctx *gin.Context) {
		identity, err := utilities.ExtractIdentity(ctx)
		if err != nil {
			utilities.AbortWithError(ctx, err)
			return
		}

		if !utilities.Contains(roles, identity.Role) {
			utilities.AbortWithError(ctx, apperr.New(apperr.WrongRole, "User doesn't have permission to access"))
			return
		}
		ctx.Next()
	}
}
