package handlers

import (
	"errors"
	"time"

	"mfs-service/internal/adapters/http/middleware"
	"mfs-service/internal/adapters/persistence/models"
	"mfs-service/internal/config"
	"mfs-service/internal/core/domain"
	"mfs-service/internal/core/services"
	"mfs-service/internal/pkg/jwt"
	"mfs-service/internal/pkg/response"

	"github.com/gofiber/fiber/v2"
)

// AuthHandler handles authentication endpoints
type AuthHandler struct {
	authService *services.AuthService
	userService *services.UserService
	cfg         *config.Config
}

// NewAuthHandler creates a new auth handler
func NewAuthHandler(authService *services.AuthService, userService *services.UserService, cfg *config.Config) *AuthHandler {
	return &AuthHandler{
		authService: authService,
		userService: userService,
		cfg:         cfg,
	}
}

// RegisterRequest represents registration request body
type RegisterRequest struct {
	Name         string `json:"name"`
	MobileNumber string `json:"mobileNumber"`
	Email        string `json:"email"`
	Pin          string `json:"pin"`
	Role         string `json:"role"`
}

// LoginRequest represents login request body
type LoginRequest struct {
	Identifier string `json:"identifier"`
	Pin        string `json:"pin"`
}

// Register handles account registration
// @Summary Register new account
// @Description Register a pending User or Agent account
// @Tags Auth
// @Accept json
// @Produce json
// @Param body body RegisterRequest true "Registration data"
// @Success 201 {object} response.Response
// @Failure 400 {object} response.Response
// @Failure 409 {object} response.Response
// @Router /register [post]
func (h *AuthHandler) Register(c *fiber.Ctx) error {
	var req RegisterRequest
	if err := c.BodyParser(&req); err != nil {
		return response.BadRequest(c, "Invalid request body")
	}

	user, err := h.authService.Register(c.UserContext(), &services.RegisterInput{
		Name:         req.Name,
		MobileNumber: req.MobileNumber,
		Email:        req.Email,
		Pin:          req.Pin,
		Role:         req.Role,
	})
	if err != nil {
		switch {
		case errors.Is(err, domain.ErrUserAlreadyExists):
			return response.Conflict(c, "Already has an account with this mobile number or email")
		case errors.Is(err, domain.ErrInvalidPin):
			return response.BadRequest(c, "PIN must be 4 to 6 digits")
		case errors.Is(err, domain.ErrInvalidRole):
			return response.BadRequest(c, "Role must be User or Agent")
		case errors.Is(err, domain.ErrInvalidInput):
			return response.BadRequest(c, "Name, mobile number and email are required")
		default:
			return err
		}
	}

	return response.Created(c, "Registered successfully", fiber.Map{
		"insertedId": user.ID,
		"user":       models.ToUserResponse(user),
	})
}

// Login handles account login
// @Summary Login
// @Description Authenticate with mobile number or email and PIN; sets the session cookie
// @Tags Auth
// @Accept json
// @Produce json
// @Param body body LoginRequest true "Login credentials"
// @Success 200 {object} response.Response
// @Failure 400 {object} response.Response
// @Failure 403 {object} response.Response
// @Router /login [post]
func (h *AuthHandler) Login(c *fiber.Ctx) error {
	var req LoginRequest
	if err := c.BodyParser(&req); err != nil {
		return response.BadRequest(c, "Invalid request body")
	}

	result, err := h.authService.Login(c.UserContext(), &services.LoginInput{
		Identifier: req.Identifier,
		Pin:        req.Pin,
	})
	if err != nil {
		switch {
		case errors.Is(err, domain.ErrInvalidCredentials):
			return response.BadRequest(c, "Invalid credentials")
		case errors.Is(err, domain.ErrUserBlocked):
			return response.Forbidden(c, "User account is blocked")
		default:
			return err
		}
	}

	h.setSessionCookie(c, result.Token)

	return response.Success(c, "Login successful", fiber.Map{
		"id": result.User.ID,
	})
}

// Logout handles logout
// @Summary Logout
// @Description Clear the session cookie
// @Tags Auth
// @Produce json
// @Success 200 {object} response.Response
// @Router /logout [post]
func (h *AuthHandler) Logout(c *fiber.Ctx) error {
	h.clearSessionCookie(c)

	return response.Success(c, "Logged out successfully", fiber.Map{
		"success": true,
	})
}

// Me returns the current account
// @Summary Current account
// @Description Get the signed-in account with its current balance
// @Tags Auth
// @Produce json
// @Success 200 {object} response.Response
// @Failure 401 {object} response.Response
// @Router /me [get]
func (h *AuthHandler) Me(c *fiber.Ctx) error {
	userID, ok := c.Locals(middleware.LocalUserID).(string)
	if !ok {
		return response.Unauthorized(c, "Unauthorized")
	}

	user, err := h.userService.GetUser(c.UserContext(), userID)
	if err != nil {
		if errors.Is(err, domain.ErrUserNotFound) {
			h.clearSessionCookie(c)
			return response.NotFound(c, "User not found")
		}
		return err
	}

	return response.Success(c, "User retrieved successfully", fiber.Map{
		"user": models.ToUserResponse(user),
	})
}

// setSessionCookie sets the session token cookie
func (h *AuthHandler) setSessionCookie(c *fiber.Ctx, token string) {
	c.Cookie(&fiber.Cookie{
		Name:     h.cfg.Cookie.Name,
		Value:    token,
		Path:     "/",
		MaxAge:   int(jwt.SessionTTL / time.Second),
		Expires:  time.Now().Add(jwt.SessionTTL),
		Secure:   h.cfg.Cookie.Secure,
		HTTPOnly: true,
		SameSite: h.cfg.Cookie.SameSite,
		Domain:   h.cfg.Cookie.Domain,
	})
}

// clearSessionCookie expires the session token cookie
func (h *AuthHandler) clearSessionCookie(c *fiber.Ctx) {
	c.Cookie(&fiber.Cookie{
		Name:     h.cfg.Cookie.Name,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		Expires:  time.Now().Add(-1 * time.Hour),
		Secure:   h.cfg.Cookie.Secure,
		HTTPOnly: true,
		SameSite: h.cfg.Cookie.SameSite,
		Domain:   h.cfg.Cookie.Domain,
	})
}
