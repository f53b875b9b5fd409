package auth

import (
	"context"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/himansu2198/Job-Listing-Portal/internal/apperr"
	"github.com/himansu2198/Job-Listing-Portal/internal/model"
	"github.com/himansu2198/Job-Listing-Portal/internal/utilities"
)

const minPasswordLength = 8

// UserStore is the persistence needed by the local account handlers
type UserStore interface {
	CreateUser(ctx context.Context, user *model.User) error
	FindUserByEmail(ctx context.Context, email string) (model.User, error)
}

// LocalAuthHandler holds dependencies of the register and login handlers.
type LocalAuthHandler struct {
	users  UserStore
	tokens *TokenIssuer
}

// NewLocalAuthHandler creates a new instance of LocalAuthHandler
func NewLocalAuthHandler(users UserStore, tokens *TokenIssuer) *LocalAuthHandler {
	return &LocalAuthHandler{
		users:  users,
		tokens: tokens,
	}
}

type registerInfo struct {
	Username string `json:"username" binding:"required"`
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required"`
	Role     string `json:"role" binding:"required,oneof=jobseeker employer"`
}

type loginInfo struct {
	Email    string `json:"email" binding:"required"`
	Password string `json:"password" binding:"required"`
}

// RegisterHandler create account with email and password and log the user in.
// Email must be unused and password must be at least 8 characters long.
func (h *LocalAuthHandler) RegisterHandler(c *gin.Context) {
	var info registerInfo
	if err := c.ShouldBindJSON(&info); err != nil {
		utilities.RespondError(c, apperr.New(apperr.ValidationError,
			"Username, email, password, and role (Only 'jobseeker' or 'employer') must be provided"))
		return
	}

	email := normalizeEmail(info.Email)

	if len(info.Password) < minPasswordLength {
		LogAuthAttempt("Local", false, email, "password too short")
		utilities.RespondError(c, apperr.New(apperr.ValidationError,
			"Password should longer or equal to %d characters", minPasswordLength))
		return
	}

	hashed, err := utilities.HashPassword(info.Password)
	if err != nil {
		utilities.RespondError(c, apperr.Storage(err, "hash password"))
		return
	}

	user := model.User{
		Email:    email,
		Password: hashed,
		Role:     info.Role,
		EditableProfile: model.EditableProfile{
			Username: strings.TrimSpace(info.Username),
		},
	}
	if err := h.users.CreateUser(c.Request.Context(), &user); err != nil {
		LogAuthAttempt("Local", false, email, err.Error())
		if apperr.KindOf(err) == apperr.Conflict {
			err = apperr.New(apperr.Conflict, "Email already registered")
		}
		utilities.RespondError(c, err)
		return
	}

	h.respondWithToken(c, http.StatusCreated, user)
}

// LoginHandler authenticate user by email and password
func (h *LocalAuthHandler) LoginHandler(c *gin.Context) {
	var info loginInfo
	if err := c.ShouldBindJSON(&info); err != nil {
		utilities.RespondError(c, apperr.New(apperr.ValidationError, "Email or password is not provided"))
		return
	}

	email := normalizeEmail(info.Email)
	invalid := apperr.New(apperr.InvalidCredential, "Email or password is incorrect")

	user, err := h.users.FindUserByEmail(c.Request.Context(), email)
	switch {
	case apperr.KindOf(err) == apperr.NotFound:
		LogAuthAttempt("Local", false, email, "unknown email")
		utilities.RespondError(c, invalid)
		return
	case err != nil:
		utilities.RespondError(c, err)
		return
	}

	if user.Password == "" || !utilities.VerifyPassword(info.Password, user.Password) {
		LogAuthAttempt("Local", false, email, "wrong password")
		utilities.RespondError(c, invalid)
		return
	}

	h.respondWithToken(c, http.StatusOK, user)
}

func (h *LocalAuthHandler) respondWithToken(c *gin.Context, status int, user model.User) {
	token, err := h.tokens.Issue(user)
	if err != nil {
		utilities.RespondError(c, apperr.Storage(err, "generate access token"))
		return
	}
	LogAuthAttempt("Local", true, user.Email, "")
	c.JSON(status, model.AuthResponse{
		User:        user,
		AccessToken: token,
	})
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}
