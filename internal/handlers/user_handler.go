package handlers

import (
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/sidharth07/verbiforge-sub000/internal/models"
	"github.com/sidharth07/verbiforge-sub000/internal/responses"
	"github.com/sidharth07/verbiforge-sub000/internal/services"
)

type UserHandler struct {
	userService *services.UserService
	log         *slog.Logger
}

func NewUserHandler(userService *services.UserService, log *slog.Logger) *UserHandler {
	return &UserHandler{userService: userService, log: log}
}

// GetMe handles GET /api/v1/users/me
func (h *UserHandler) GetMe(c *gin.Context) {
	a, ok := actor(c)
	if !ok {
		return
	}
	user, err := h.userService.Me(c.Request.Context(), a)
	if err != nil {
		responses.Error(c, h.log, err, "Failed to retrieve user")
		return
	}
	responses.Success(c, http.StatusOK, user, "User retrieved successfully")
}

// ListUsers handles GET /api/v1/users (admin only)
func (h *UserHandler) ListUsers(c *gin.Context) {
	a, ok := actor(c)
	if !ok {
		return
	}
	users, err := h.userService.List(c.Request.Context(), a)
	if err != nil {
		responses.Error(c, h.log, err, "Failed to retrieve users")
		return
	}
	responses.Success(c, http.StatusOK, users, "Users retrieved successfully")
}

// GetUser handles GET /api/v1/users/:human_id (admin only)
func (h *UserHandler) GetUser(c *gin.Context) {
	a, ok := actor(c)
	if !ok {
		return
	}
	humanID, ok := humanIDParam(c, "human_id")
	if !ok {
		return
	}
	user, err := h.userService.Get(c.Request.Context(), a, humanID)
	if err != nil {
		responses.Error(c, h.log, err, "User not found")
		return
	}
	responses.Success(c, http.StatusOK, user, "User retrieved successfully")
}

// CreateUser handles POST /api/v1/users (admin only)
func (h *UserHandler) CreateUser(c *gin.Context) {
	a, ok := actor(c)
	if !ok {
		return
	}
	var req services.CreateUserRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		responses.Fail(c, http.StatusBadRequest, err, "Invalid request body")
		return
	}
	user, err := h.userService.CreateByAdmin(c.Request.Context(), a, req)
	if err != nil {
		responses.Error(c, h.log, err, "Could not create user")
		return
	}
	responses.Success(c, http.StatusCreated, user, "User created successfully")
}

// DeleteUser handles DELETE /api/v1/users/:human_id (admin only)
func (h *UserHandler) DeleteUser(c *gin.Context) {
	a, ok := actor(c)
	if !ok {
		return
	}
	humanID, ok := humanIDParam(c, "human_id")
	if !ok {
		return
	}
	if err := h.userService.Delete(c.Request.Context(), a, humanID); err != nil {
		responses.Error(c, h.log, err, "Could not delete user")
		return
	}
	responses.Success(c, http.StatusOK, nil, "User deleted successfully")
}

// SetRole handles PATCH /api/v1/users/:human_id/role (super admin only)
func (h *UserHandler) SetRole(c *gin.Context) {
	a, ok := actor(c)
	if !ok {
		return
	}
	humanID, ok := humanIDParam(c, "human_id")
	if !ok {
		return
	}
	var req struct {
		Role models.Role `json:"role" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		responses.Fail(c, http.StatusBadRequest, err, "Invalid request body")
		return
	}
	user, err := h.userService.SetRole(c.Request.Context(), a, humanID, req.Role)
	if err != nil {
		responses.Error(c, h.log, err, "Could not change role")
		return
	}
	responses.Success(c, http.StatusOK, user, "Role updated successfully")
}

// SetLicense handles PATCH /api/v1/users/:human_id/license (admin only)
func (h *UserHandler) SetLicense(c *gin.Context) {
	a, ok := actor(c)
	if !ok {
		return
	}
	humanID, ok := humanIDParam(c, "human_id")
	if !ok {
		return
	}
	var req struct {
		License models.License `json:"license" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		responses.Fail(c, http.StatusBadRequest, err, "Invalid request body")
		return
	}
	user, err := h.userService.SetLicense(c.Request.Context(), a, humanID, req.License)
	if err != nil {
		responses.Error(c, h.log, err, "Could not change license")
		return
	}
	responses.Success(c, http.StatusOK, user, "License updated successfully")
}
