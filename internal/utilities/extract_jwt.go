package utilities

import (
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/himansu2198/Job-Listing-Portal/internal/apperr"
)

// ExtractBearerToken read token from Authorization header.
// Websocket clients cannot set headers, so a "token" query parameter is
// accepted on GET requests as well.
func ExtractBearerToken(c *gin.Context) (string, error) {
	const BearerSchema = "Bearer "
	authHeader := c.GetHeader("Authorization")

	if authHeader == "" && c.Request.Method == "GET" {
		if token := c.Query("token"); token != "" {
			return token, nil
		}
	}

	if len(authHeader) <= len(BearerSchema) || !strings.EqualFold(authHeader[:len(BearerSchema)], BearerSchema) {
		return "", apperr.New(apperr.Unauthenticated, "Invalid authorization header")
	}

	return strings.TrimSpace(authHeader[len(BearerSchema):]), nil
}
