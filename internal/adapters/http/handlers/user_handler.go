package handlers

import (
	"encoding/json"
	"errors"
	"strings"

	"mfs-service/internal/adapters/persistence/models"
	"mfs-service/internal/core/domain"
	"mfs-service/internal/core/services"
	"mfs-service/internal/pkg/pagination"
	"mfs-service/internal/pkg/response"

	"github.com/gofiber/fiber/v2"
)

// UserHandler handles account management endpoints
type UserHandler struct {
	userService *services.UserService
}

// NewUserHandler creates a new user handler
func NewUserHandler(userService *services.UserService) *UserHandler {
	return &UserHandler{
		userService: userService,
	}
}

// ActivateRequest represents the activation patch body
type ActivateRequest struct {
	Name   *string `json:"name"`
	Status *string `json:"status"`
	Role   *string `json:"role"`
}

// patchable lists the fields an activation request may carry
var patchable = map[string]bool{"name": true, "status": true, "role": true}

// ListUsers handles listing accounts (Admin only)
// @Summary List accounts
// @Description Paginated account list filtered by mobile/email substring, status and role
// @Tags Users
// @Produce json
// @Param search query string false "Mobile number or email substring"
// @Param status query string false "pending | active | blocked"
// @Param role query string false "User | Agent | Admin"
// @Param page query int false "Page number" default(1)
// @Param limit query int false "Items per page" default(10)
// @Success 200 {object} response.Response
// @Failure 400 {object} response.Response
// @Failure 401 {object} response.Response
// @Failure 403 {object} response.Response
// @Router /users [get]
func (h *UserHandler) ListUsers(c *fiber.Ctx) error {
	params := pagination.GetParams(c)

	result, err := h.userService.ListUsers(c.UserContext(), &services.ListUsersInput{
		Page:  params.Page,
		Limit: params.Limit,
		Filter: domain.UserFilter{
			Search: c.Query("search"),
			Status: domain.Status(c.Query("status")),
			Role:   domain.Role(c.Query("role")),
		},
	})
	if err != nil {
		switch {
		case errors.Is(err, domain.ErrInvalidStatus):
			return response.BadRequest(c, "Invalid status filter")
		case errors.Is(err, domain.ErrInvalidRole):
			return response.BadRequest(c, "Invalid role filter")
		default:
			return err
		}
	}

	users := make([]*models.UserResponse, len(result.Users))
	for i, u := range result.Users {
		users[i] = models.ToUserResponse(u)
	}

	return response.Success(c, "Users retrieved successfully",
		pagination.NewResponse(users, result.Params, result.Total))
}

// GetUser handles getting an account by ID (Admin only)
// @Summary Get account by ID
// @Tags Users
// @Produce json
// @Param id path string true "User ID"
// @Success 200 {object} response.Response
// @Failure 400 {object} response.Response
// @Failure 404 {object} response.Response
// @Router /users/{id} [get]
func (h *UserHandler) GetUser(c *fiber.Ctx) error {
	user, err := h.userService.GetUser(c.UserContext(), c.Params("id"))
	if err != nil {
		return userError(c, err)
	}

	return response.Success(c, "User retrieved successfully", fiber.Map{
		"user": models.ToUserResponse(user),
	})
}

// ActivateUser handles the activation patch (Admin only)
// @Summary Activate account
// @Description Merge status/role/name into the account and credit the one-time signup bonus (User 40, Agent 10000)
// @Tags Users
// @Accept json
// @Produce json
// @Param id path string true "User ID"
// @Param body body ActivateRequest true "Patch"
// @Success 200 {object} response.Response
// @Failure 400 {object} response.Response
// @Failure 404 {object} response.Response
// @Router /users/{id} [patch]
func (h *UserHandler) ActivateUser(c *fiber.Ctx) error {
	patch, err := parseActivatePatch(c.Body())
	if err != nil {
		return response.BadRequest(c, err.Error())
	}

	result, err := h.userService.Activate(c.UserContext(), c.Params("id"), patch)
	if err != nil {
		return userError(c, err)
	}

	return response.Success(c, "User updated successfully", result)
}

// parseActivatePatch decodes the body, rejecting fields outside the patchable set
func parseActivatePatch(body []byte) (domain.UserPatch, error) {
	var patch domain.UserPatch
	if len(body) == 0 {
		return patch, nil
	}

	var raw map[string]json.RawMessage
	if err := json.Unmarshal(body, &raw); err != nil {
		return patch, errors.New("Invalid request body")
	}
	for field := range raw {
		if !patchable[field] {
			return patch, errors.New("Field '" + field + "' cannot be updated")
		}
	}

	var req ActivateRequest
	if err := json.Unmarshal(body, &req); err != nil {
		return patch, errors.New("Invalid request body")
	}

	patch.Name = req.Name
	if req.Status != nil {
		s := domain.Status(strings.TrimSpace(*req.Status))
		patch.Status = &s
	}
	if req.Role != nil {
		r := domain.Role(strings.TrimSpace(*req.Role))
		patch.Role = &r
	}
	return patch, nil
}

// userError maps account errors to responses
func userError(c *fiber.Ctx, err error) error {
	switch {
	case errors.Is(err, domain.ErrUserNotFound):
		return response.NotFound(c, "User not found")
	case errors.Is(err, domain.ErrInvalidUserID):
		return response.BadRequest(c, "Invalid user ID")
	case errors.Is(err, domain.ErrInvalidStatus):
		return response.BadRequest(c, "Status must be pending, active or blocked")
	case errors.Is(err, domain.ErrInvalidRole):
		return response.BadRequest(c, "Role must be User, Agent or Admin")
	case errors.Is(err, domain.ErrInvalidInput):
		return response.BadRequest(c, "Invalid input")
	default:
		return err
	}
}
