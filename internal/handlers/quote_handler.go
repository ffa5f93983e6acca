package handlers

import (
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/sidharth07/verbiforge-sub000/internal/responses"
	"github.com/sidharth07/verbiforge-sub000/internal/services"
	"github.com/sidharth07/verbiforge-sub000/internal/utils"
)

type QuoteHandler struct {
	quoteService *services.QuoteService
	maxUpload    int64
	log          *slog.Logger
}

func NewQuoteHandler(quoteService *services.QuoteService, maxUpload int64, log *slog.Logger) *QuoteHandler {
	return &QuoteHandler{quoteService: quoteService, maxUpload: maxUpload, log: log}
}

// Analyze handles POST /api/v1/quotes/analyze (multipart: file, languages, project_type)
func (h *QuoteHandler) Analyze(c *gin.Context) {
	req, ok := bindQuoteRequest(c, h.maxUpload, h.log)
	if !ok {
		return
	}
	quote, err := h.quoteService.Analyze(c.Request.Context(), req)
	if err != nil {
		responses.Error(c, h.log, err, "Could not analyze document")
		return
	}
	responses.Success(c, http.StatusOK, quote, "Quote generated")
}

// bindQuoteRequest reads the multipart fields shared by quotes and projects.
func bindQuoteRequest(c *gin.Context, maxUpload int64, log *slog.Logger) (services.QuoteRequest, bool) {
	name, data, err := readUpload(c, "file", maxUpload)
	if err != nil {
		uploadFailed(c, log, err)
		return services.QuoteRequest{}, false
	}
	return services.QuoteRequest{
		FileName:    name,
		Document:    data,
		Languages:   utils.SplitList(c.PostFormArray("languages")),
		ProjectType: c.PostForm("project_type"),
	}, true
}
