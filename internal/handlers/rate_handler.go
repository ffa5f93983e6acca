package handlers

import (
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/sidharth07/verbiforge-sub000/internal/middlewares"
	"github.com/sidharth07/verbiforge-sub000/internal/models"
	"github.com/sidharth07/verbiforge-sub000/internal/pricing"
	"github.com/sidharth07/verbiforge-sub000/internal/responses"
	"github.com/sidharth07/verbiforge-sub000/internal/services"
)

type RateHandler struct {
	rateService *services.RateService
	log         *slog.Logger
}

func NewRateHandler(rateService *services.RateService, log *slog.Logger) *RateHandler {
	return &RateHandler{rateService: rateService, log: log}
}

// GetRates handles GET /api/v1/rates
func (h *RateHandler) GetRates(c *gin.Context) {
	table, err := h.rateService.Current(c.Request.Context())
	if err != nil {
		responses.Error(c, h.log, err, "Failed to load rates")
		return
	}
	responses.Success(c, http.StatusOK, table, "Rates retrieved successfully")
}

// ReplaceRates handles PUT /api/v1/rates (admin only)
func (h *RateHandler) ReplaceRates(c *gin.Context) {
	a, ok := actor(c)
	if !ok {
		return
	}
	var table pricing.RateTable
	if err := c.ShouldBindJSON(&table); err != nil {
		responses.Fail(c, http.StatusBadRequest, err, "Invalid request body")
		return
	}
	saved, err := h.rateService.Replace(c.Request.Context(), a, table)
	if err != nil {
		responses.Error(c, h.log, err, "Could not update rates")
		return
	}
	responses.Success(c, http.StatusOK, saved, "Rates updated")
}

// SetLanguage handles POST /api/v1/rates/languages (admin only)
func (h *RateHandler) SetLanguage(c *gin.Context) {
	a, ok := actor(c)
	if !ok {
		return
	}
	var req struct {
		Language  string `json:"language"   binding:"required"`
		RateCents int64  `json:"rate_cents" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		responses.Fail(c, http.StatusBadRequest, err, "Invalid request body")
		return
	}
	saved, err := h.rateService.SetLanguageRate(c.Request.Context(), a, req.Language, req.RateCents)
	if err != nil {
		responses.Error(c, h.log, err, "Could not update language rate")
		return
	}
	responses.Success(c, http.StatusOK, saved, "Language rate updated")
}

// RemoveLanguage handles DELETE /api/v1/rates/languages/:language (admin only)
func (h *RateHandler) RemoveLanguage(c *gin.Context) {
	a, ok := actor(c)
	if !ok {
		return
	}
	saved, err := h.rateService.RemoveLanguage(c.Request.Context(), a, c.Param("language"))
	if err != nil {
		responses.Error(c, h.log, err, "Could not remove language")
		return
	}
	responses.Success(c, http.StatusOK, saved, "Language removed")
}

// UpdateSettings handles PUT /api/v1/rates/settings (admin only)
func (h *RateHandler) UpdateSettings(c *gin.Context) {
	a, ok := actor(c)
	if !ok {
		return
	}
	var req struct {
		ProjectTypeMultiplier *float64 `json:"project_type_multiplier"`
		PMFeePercent          *float64 `json:"pm_fee_percent"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		responses.Fail(c, http.StatusBadRequest, err, "Invalid request body")
		return
	}
	saved, err := h.rateService.UpdateSettings(c.Request.Context(), a, req.ProjectTypeMultiplier, req.PMFeePercent)
	if err != nil {
		responses.Error(c, h.log, err, "Could not update settings")
		return
	}
	responses.Success(c, http.StatusOK, saved, "Settings updated")
}

// ResetRates handles POST /api/v1/rates/reset. Anonymous callers are only
// accepted while no rate table exists.
func (h *RateHandler) ResetRates(c *gin.Context) {
	var caller *models.Actor
	if a, ok := middlewares.ActorFrom(c); ok {
		caller = &a
	}
	saved, err := h.rateService.Reset(c.Request.Context(), caller)
	if err != nil {
		responses.Error(c, h.log, err, "Could not reset rates")
		return
	}
	responses.Success(c, http.StatusOK, saved, "Rates reset to defaults")
}
