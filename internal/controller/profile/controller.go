// Package profile provides HTTP handlers for the caller's own profile.
package profile

import (
	"context"
	"errors"
	"io"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/juju/loggo"

	"github.com/himansu2198/Job-Listing-Portal/internal/apperr"
	"github.com/himansu2198/Job-Listing-Portal/internal/profile"
	"github.com/himansu2198/Job-Listing-Portal/internal/utilities"
)

var logger = loggo.GetLogger("jobportal.controller.profile")

// Service is the profile logic behind the handlers
type Service interface {
	Get(ctx context.Context, userID uuid.UUID) (profile.View, error)
	Update(ctx context.Context, userID uuid.UUID, upd profile.Update) (profile.View, error)
	UploadResume(ctx context.Context, userID uuid.UUID, filename string, r io.Reader) (profile.View, error)
}

// ProfileController handles profile related endpoints
type ProfileController struct {
	Service Service
}

// NewProfileController creates a new instance of ProfileController
func NewProfileController(service Service) *ProfileController {
	return &ProfileController{Service: service}
}

// GetProfile return the caller's profile and its readiness to apply
func (pc *ProfileController) GetProfile(c *gin.Context) {
	identity, err := utilities.ExtractIdentity(c)
	if err != nil {
		utilities.RespondError(c, err)
		return
	}

	view, err := pc.Service.Get(c.Request.Context(), identity.ID)
	if err != nil {
		utilities.RespondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"profile": view})
}

// UpdateProfile edit the caller's profile. Empty fields keep their value,
// skills may be an array or a comma separated string.
func (pc *ProfileController) UpdateProfile(c *gin.Context) {
	identity, err := utilities.ExtractIdentity(c)
	if err != nil {
		utilities.RespondError(c, err)
		return
	}

	upd := profile.Update{}
	if err := c.ShouldBindJSON(&upd); err != nil {
		utilities.RespondError(c, apperr.New(apperr.ValidationError, "Invalid request body: %s", err.Error()))
		return
	}

	view, err := pc.Service.Update(c.Request.Context(), identity.ID, upd)
	if err != nil {
		utilities.RespondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Profile updated successfully", "profile": view})
}

// UploadResume store a PDF from multipart field "resume" as the caller's resume.
// Route must be wrapped by SizeLimit.
func (pc *ProfileController) UploadResume(c *gin.Context) {
	identity, err := utilities.ExtractIdentity(c)
	if err != nil {
		utilities.RespondError(c, err)
		return
	}

	rawFile, err := c.FormFile("resume")
	var maxBytesError *http.MaxBytesError
	if errors.As(err, &maxBytesError) {
		c.JSON(http.StatusRequestEntityTooLarge, utilities.ErrorResponse{
			Error: "Resume file is too large",
			Kind:  string(apperr.ValidationError),
		})
		return
	}
	if err != nil {
		utilities.RespondError(c, apperr.New(apperr.ValidationError, "Resume file is required"))
		return
	}

	f, err := rawFile.Open()
	if err != nil {
		utilities.RespondError(c, apperr.Storage(err, "open uploaded file"))
		return
	}
	defer func() {
		if err := f.Close(); err != nil {
			logger.Warningf("failed to close uploaded file: %v", err)
		}
	}()

	view, err := pc.Service.UploadResume(c.Request.Context(), identity.ID, rawFile.Filename, f)
	if err != nil {
		utilities.RespondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message":          "Resume uploaded successfully",
		"resume":           view.Resume,
		"profile_complete": view.ProfileComplete,
	})
}
