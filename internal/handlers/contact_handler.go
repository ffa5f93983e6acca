package handlers

import (
	"log/slog"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/sidharth07/verbiforge-sub000/internal/responses"
	"github.com/sidharth07/verbiforge-sub000/internal/services"
)

type ContactHandler struct {
	contactService *services.ContactService
	log            *slog.Logger
}

func NewContactHandler(contactService *services.ContactService, log *slog.Logger) *ContactHandler {
	return &ContactHandler{contactService: contactService, log: log}
}

// Submit handles POST /api/v1/contact (public)
func (h *ContactHandler) Submit(c *gin.Context) {
	var req services.ContactRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		responses.Fail(c, http.StatusBadRequest, err, "Invalid request body")
		return
	}
	submission, err := h.contactService.Submit(c.Request.Context(), req)
	if err != nil {
		responses.Error(c, h.log, err, "Could not send message")
		return
	}
	responses.Success(c, http.StatusCreated, submission, "Message received")
}

// Recent handles GET /api/v1/contact?limit= (admin only)
func (h *ContactHandler) Recent(c *gin.Context) {
	a, ok := actor(c)
	if !ok {
		return
	}
	limit, _ := strconv.Atoi(c.Query("limit"))
	submissions, err := h.contactService.Recent(c.Request.Context(), a, limit)
	if err != nil {
		responses.Error(c, h.log, err, "Failed to retrieve messages")
		return
	}
	responses.Success(c, http.StatusOK, submissions, "Messages retrieved successfully")
}
