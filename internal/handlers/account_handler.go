package handlers

import (
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/sidharth07/verbiforge-sub000/internal/responses"
	"github.com/sidharth07/verbiforge-sub000/internal/services"
)

type AccountHandler struct {
	accountService *services.AccountService
	log            *slog.Logger
}

func NewAccountHandler(accountService *services.AccountService, log *slog.Logger) *AccountHandler {
	return &AccountHandler{accountService: accountService, log: log}
}

// ListSubAccounts handles GET /api/v1/accounts/:human_id/sub-accounts
func (h *AccountHandler) ListSubAccounts(c *gin.Context) {
	a, ok := actor(c)
	if !ok {
		return
	}
	parent, ok := humanIDParam(c, "human_id")
	if !ok {
		return
	}
	subs, err := h.accountService.List(c.Request.Context(), a, parent)
	if err != nil {
		responses.Error(c, h.log, err, "Failed to retrieve sub-accounts")
		return
	}
	responses.Success(c, http.StatusOK, subs, "Sub-accounts retrieved successfully")
}

// AttachSubAccount handles POST /api/v1/accounts/:human_id/sub-accounts
func (h *AccountHandler) AttachSubAccount(c *gin.Context) {
	a, ok := actor(c)
	if !ok {
		return
	}
	parent, ok := humanIDParam(c, "human_id")
	if !ok {
		return
	}
	var req struct {
		SubHumanID int64 `json:"sub_human_id" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		responses.Fail(c, http.StatusBadRequest, err, "Invalid request body")
		return
	}
	sub, err := h.accountService.Attach(c.Request.Context(), a, parent, req.SubHumanID)
	if err != nil {
		responses.Error(c, h.log, err, "Could not attach sub-account")
		return
	}
	responses.Success(c, http.StatusOK, sub, "Sub-account attached")
}

// DetachSubAccount handles DELETE /api/v1/accounts/:human_id/sub-accounts/:sub_human_id
func (h *AccountHandler) DetachSubAccount(c *gin.Context) {
	a, ok := actor(c)
	if !ok {
		return
	}
	parent, ok := humanIDParam(c, "human_id")
	if !ok {
		return
	}
	subID, ok := humanIDParam(c, "sub_human_id")
	if !ok {
		return
	}
	sub, err := h.accountService.Detach(c.Request.Context(), a, parent, subID)
	if err != nil {
		responses.Error(c, h.log, err, "Could not detach sub-account")
		return
	}
	responses.Success(c, http.StatusOK, sub, "Sub-account detached")
}

// CreateSubAccount handles POST /api/v1/accounts/:human_id/sub-accounts/new
func (h *AccountHandler) CreateSubAccount(c *gin.Context) {
	a, ok := actor(c)
	if !ok {
		return
	}
	parent, ok := humanIDParam(c, "human_id")
	if !ok {
		return
	}
	var req services.CreateUserRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		responses.Fail(c, http.StatusBadRequest, err, "Invalid request body")
		return
	}
	sub, err := h.accountService.CreateSubAccount(c.Request.Context(), a, parent, req)
	if err != nil {
		responses.Error(c, h.log, err, "Could not create sub-account")
		return
	}
	responses.Success(c, http.StatusCreated, sub, "Sub-account created")
}
