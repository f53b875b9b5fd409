// Package utilities contain utility code that use across the package
package utilities

import (
	"errors"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/juju/loggo"

	"github.com/himansu2198/Job-Listing-Portal/internal/apperr"
	"github.com/himansu2198/Job-Listing-Portal/internal/model"
)

var logger = loggo.GetLogger("jobportal.utilities")

// IdentityKey is gin context key holding the authenticated model.Identity
const IdentityKey = "identity"

// ErrorResponse type for error response body
type ErrorResponse struct {
	Error string `json:"error"`
	Kind  string `json:"kind,omitempty"`
}

// MessageResponse type for plain message response body
type MessageResponse struct {
	Message string `json:"message"`
}

// ExtractIdentity extracts the caller identity from Gin context.
// It does not abort the request; instead returns an error when missing/invalid.
func ExtractIdentity(c *gin.Context) (model.Identity, error) {
	v, exists := c.Get(IdentityKey)
	if !exists || v == nil {
		return model.Identity{}, apperr.New(apperr.Unauthenticated, "user information not provided")
	}

	identity, ok := v.(model.Identity)
	if !ok {
		return model.Identity{}, errors.New("failed to assert identity type")
	}
	return identity, nil
}

// RespondError write err as JSON using the status code of its kind
func RespondError(c *gin.Context, err error) {
	status := apperr.StatusCode(err)
	if status >= 500 {
		logger.Errorf("%s %s: %v", c.Request.Method, c.Request.URL.Path, err)
	}
	c.JSON(status, ErrorResponse{
		Error: err.Error(),
		Kind:  string(apperr.KindOf(err)),
	})
}

// AbortWithError is RespondError for middleware, the handler chain stops here
func AbortWithError(c *gin.Context, err error) {
	RespondError(c, err)
	c.Abort()
}

// ParseIDParam read a positive numeric path parameter
func ParseIDParam(c *gin.Context, name string) (uint, error) {
	id, err := strconv.ParseUint(c.Param(name), 10, 64)
	if err != nil || id == 0 {
		return 0, apperr.New(apperr.ValidationError, "Invalid %s: %q", name, c.Param(name))
	}
	return uint(id), nil
}
