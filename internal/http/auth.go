package http

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/bookmarket/bookmarket/internal/auth"
	"github.com/bookmarket/bookmarket/internal/entities"
	"github.com/bookmarket/bookmarket/internal/mail"
)

// AuthController handles registration, login, and Google sign-in.
type AuthController struct {
	service *auth.Service
	mailer  mail.Mailer
}

// NewAuthController creates a new AuthController.
func NewAuthController(service *auth.Service, mailer mail.Mailer) *AuthController {
	return &AuthController{service: service, mailer: mailer}
}

type registerRequest struct {
	Email    string `json:"email" binding:"required"`
	Name     string `json:"name"`
	Password string `json:"password" binding:"required"`
}

type loginRequest struct {
	Email    string `json:"email" binding:"required"`
	Password string `json:"password" binding:"required"`
}

type googleAuthRequest struct {
	Token string `json:"token" binding:"required"`
}

type userResponse struct {
	ID       uint              `json:"id"`
	Email    string            `json:"email"`
	Username string            `json:"username"`
	Name     string            `json:"name"`
	Role     entities.UserRole `json:"role"`
}

type authResponse struct {
	Token string       `json:"token"`
	User  userResponse `json:"user"`
}

func toUserResponse(user *entities.User) userResponse {
	return userResponse{
		ID:       user.ID,
		Email:    user.Email,
		Username: user.Username,
		Name:     user.Name,
		Role:     user.Role,
	}
}

// Register creates an account and returns a bearer token.
// POST /api/auth/register
func (ac *AuthController) Register(c *gin.Context) {
	var req registerRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBadRequest(c, "email and password are required")
		return
	}

	user, token, err := ac.service.Register(req.Email, req.Name, req.Password)
	if err != nil {
		switch {
		case errors.Is(err, auth.ErrEmailTaken):
			c.JSON(http.StatusBadRequest, ErrorResponse{Error: "email_taken", Message: "email is already in use"})
		case errors.Is(err, auth.ErrEmailInvalid),
			errors.Is(err, auth.ErrEmailRequired),
			errors.Is(err, auth.ErrPasswordRequired),
			errors.Is(err, auth.ErrPasswordTooShort),
			errors.Is(err, auth.ErrPasswordTooLong):
			respondBadRequest(c, err.Error())
		default:
			respondInternalError(c, err, "register")
		}
		return
	}

	// Best-effort: a failed mail never fails the registration.
	if err := ac.mailer.SendWelcome(c.Request.Context(), user.Email, user.Name); err != nil {
		zap.L().Warn("welcome mail failed", zap.String("email", user.Email), zap.Error(err))
	}

	respondCreated(c, authResponse{Token: token, User: toUserResponse(user)})
}

// Login verifies credentials and returns a bearer token.
// POST /api/auth/login
func (ac *AuthController) Login(c *gin.Context) {
	var req loginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBadRequest(c, "email and password are required")
		return
	}

	user, token, err := ac.service.Login(req.Email, req.Password)
	if err != nil {
		if errors.Is(err, auth.ErrInvalidCredentials) {
			c.JSON(http.StatusUnauthorized, ErrorResponse{
				Error:   "invalid_credentials",
				Message: "invalid email or password",
			})
			return
		}
		respondInternalError(c, err, "login")
		return
	}

	c.JSON(http.StatusOK, authResponse{Token: token, User: toUserResponse(user)})
}

// GoogleAuth verifies an external ID token and signs the account in,
// creating it on first contact.
// POST /api/auth/google
func (ac *AuthController) GoogleAuth(c *gin.Context) {
	var req googleAuthRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBadRequest(c, "token is required")
		return
	}

	user, token, err := ac.service.GoogleSignIn(c.Request.Context(), req.Token)
	if err != nil {
		switch {
		case errors.Is(err, auth.ErrInvalidGoogleToken):
			c.JSON(http.StatusUnauthorized, ErrorResponse{
				Error:   "invalid_token",
				Message: "google token could not be verified",
			})
		case errors.Is(err, auth.ErrGoogleSignInDisabled):
			c.JSON(http.StatusBadRequest, ErrorResponse{
				Error:   "google_disabled",
				Message: err.Error(),
			})
		default:
			respondInternalError(c, err, "google auth")
		}
		return
	}

	c.JSON(http.StatusOK, authResponse{Token: token, User: toUserResponse(user)})
}

// CurrentUser returns the caller's account.
// GET /api/auth/user
func (ac *AuthController) CurrentUser(c *gin.Context) {
	user, err := ac.service.GetUserByID(auth.GetUserID(c))
	if err != nil {
		respondDomainError(c, err, "current user")
		return
	}
	c.JSON(http.StatusOK, toUserResponse(user))
}
