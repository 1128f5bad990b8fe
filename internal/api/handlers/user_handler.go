package handlers

import (
	"net/http"

	"course-marketplace/internal/api/middleware"
	"course-marketplace/internal/domain"
	serviceInterfaces "course-marketplace/internal/interfaces/service"

	"github.com/gin-gonic/gin"
)

// UserHandler handles account and user management requests
type UserHandler struct {
	userService serviceInterfaces.UserService
}

// NewUserHandler creates a new user handler
func NewUserHandler(userService serviceInterfaces.UserService) *UserHandler {
	return &UserHandler{userService: userService}
}

// Register handles POST /api/v1/auth/register
func (h *UserHandler) Register(c *gin.Context) {
	var req domain.SignUpRequest
	if !bindJSON(c, &req) {
		return
	}

	user, err := h.userService.SignUp(c.Request.Context(), &req)
	if err != nil {
		respondError(c, err)
		return
	}

	respondOK(c, http.StatusCreated, "Account created successfully", user)
}

// Login handles POST /api/v1/auth/login
func (h *UserHandler) Login(c *gin.Context) {
	var req domain.LoginRequest
	if !bindJSON(c, &req) {
		return
	}

	resp, err := h.userService.Login(c.Request.Context(), &req)
	if err != nil {
		respondError(c, err)
		return
	}

	respondOK(c, http.StatusOK, "Login successful", resp)
}

// ChangePassword handles PUT /api/v1/auth/password
func (h *UserHandler) ChangePassword(c *gin.Context) {
	principal, ok := middleware.GetPrincipal(c)
	if !ok {
		respondError(c, domain.ErrUnauthorized)
		return
	}

	var req domain.ChangePasswordRequest
	if !bindJSON(c, &req) {
		return
	}

	if err := h.userService.ChangePassword(c.Request.Context(), principal.UserID, &req); err != nil {
		respondError(c, err)
		return
	}

	respondOK(c, http.StatusOK, "Password changed successfully", nil)
}

// ListUsers handles GET /api/v1/users
func (h *UserHandler) ListUsers(c *gin.Context) {
	users, err := h.userService.ListUsers(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}

	respondOK(c, http.StatusOK, "", users)
}

// GetUser handles GET /api/v1/users/:id
func (h *UserHandler) GetUser(c *gin.Context) {
	user, err := h.userService.GetUser(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}

	respondOK(c, http.StatusOK, "", user)
}

// UpdateUser handles PUT /api/v1/users/:id
func (h *UserHandler) UpdateUser(c *gin.Context) {
	id := c.Param("id")
	if !middleware.IsSelfOrAdmin(c, id) {
		respondError(c, domain.ErrForbidden)
		return
	}

	var req domain.UpdateUserRequest
	if !bindJSON(c, &req) {
		return
	}

	user, err := h.userService.UpdateUser(c.Request.Context(), id, &req)
	if err != nil {
		respondError(c, err)
		return
	}

	respondOK(c, http.StatusOK, "User updated successfully", user)
}

// ChangeRole handles PATCH /api/v1/users/:id/role
func (h *UserHandler) ChangeRole(c *gin.Context) {
	var req domain.ChangeRoleRequest
	if !bindJSON(c, &req) {
		return
	}

	user, err := h.userService.ChangeRole(c.Request.Context(), c.Param("id"), req.Role)
	if err != nil {
		respondError(c, err)
		return
	}

	respondOK(c, http.StatusOK, "Role updated successfully", user)
}

// DeleteUser handles DELETE /api/v1/users/:id
func (h *UserHandler) DeleteUser(c *gin.Context) {
	result, err := h.userService.DeleteUser(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}

	respondOK(c, http.StatusOK, deleteMessage("User", result), result)
}

func deleteMessage(entity string, result *domain.DeleteResult) string {
	if result != nil && result.Deactivated {
		return entity + " deactivated: " + result.Reason
	}
	return entity + " deleted successfully"
}
