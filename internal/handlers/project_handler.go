package handlers

import (
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/sidharth07/verbiforge-sub000/internal/models"
	"github.com/sidharth07/verbiforge-sub000/internal/responses"
	"github.com/sidharth07/verbiforge-sub000/internal/services"
)

type ProjectHandler struct {
	projectService *services.ProjectService
	maxUpload      int64
	log            *slog.Logger
}

func NewProjectHandler(projectService *services.ProjectService, maxUpload int64, log *slog.Logger) *ProjectHandler {
	return &ProjectHandler{projectService: projectService, maxUpload: maxUpload, log: log}
}

// CreateProject handles POST /api/v1/projects
func (h *ProjectHandler) CreateProject(c *gin.Context) {
	a, ok := actor(c)
	if !ok {
		return
	}
	quote, ok := bindQuoteRequest(c, h.maxUpload, h.log)
	if !ok {
		return
	}
	project, err := h.projectService.Create(c.Request.Context(), a, services.CreateProjectRequest{
		Name:         c.PostForm("name"),
		QuoteRequest: quote,
	})
	if err != nil {
		responses.Error(c, h.log, err, "Failed to create project")
		return
	}
	responses.Success(c, http.StatusCreated, project, "Project created successfully")
}

// ListProjects handles GET /api/v1/projects?status=
func (h *ProjectHandler) ListProjects(c *gin.Context) {
	a, ok := actor(c)
	if !ok {
		return
	}
	var status *models.Status
	if raw := c.Query("status"); raw != "" {
		s, valid := models.ParseStatus(raw)
		if !valid {
			responses.Fail(c, http.StatusBadRequest, nil, "Unknown project status")
			return
		}
		status = &s
	}
	projects, err := h.projectService.List(c.Request.Context(), a, status)
	if err != nil {
		responses.Error(c, h.log, err, "Failed to retrieve projects")
		return
	}
	responses.Success(c, http.StatusOK, projects, "Projects retrieved successfully")
}

// GetProject handles GET /api/v1/projects/:id
func (h *ProjectHandler) GetProject(c *gin.Context) {
	a, ok := actor(c)
	if !ok {
		return
	}
	project, err := h.projectService.Get(c.Request.Context(), a, c.Param("id"))
	if err != nil {
		responses.Error(c, h.log, err, "Project not found")
		return
	}
	responses.Success(c, http.StatusOK, project, "Project retrieved successfully")
}

// SubmitProject handles POST /api/v1/projects/:id/submit
func (h *ProjectHandler) SubmitProject(c *gin.Context) {
	a, ok := actor(c)
	if !ok {
		return
	}
	project, err := h.projectService.Submit(c.Request.Context(), a, c.Param("id"))
	if err != nil {
		responses.Error(c, h.log, err, "Could not submit project")
		return
	}
	responses.Success(c, http.StatusOK, project, "Project submitted")
}

// DeleteProject handles DELETE /api/v1/projects/:id
func (h *ProjectHandler) DeleteProject(c *gin.Context) {
	a, ok := actor(c)
	if !ok {
		return
	}
	if err := h.projectService.Delete(c.Request.Context(), a, c.Param("id")); err != nil {
		responses.Error(c, h.log, err, "Could not delete project")
		return
	}
	responses.Success(c, http.StatusOK, nil, "Project deleted successfully")
}

// DownloadSource handles GET /api/v1/projects/:id/source
func (h *ProjectHandler) DownloadSource(c *gin.Context) {
	a, ok := actor(c)
	if !ok {
		return
	}
	dl, err := h.projectService.SourceDocument(c.Request.Context(), a, c.Param("id"))
	if err != nil {
		responses.Error(c, h.log, err, "Document not available")
		return
	}
	sendFile(c, dl)
}

// DownloadTranslation handles GET /api/v1/projects/:id/translation
func (h *ProjectHandler) DownloadTranslation(c *gin.Context) {
	a, ok := actor(c)
	if !ok {
		return
	}
	dl, err := h.projectService.TranslatedDocument(c.Request.Context(), a, c.Param("id"))
	if err != nil {
		responses.Error(c, h.log, err, "Translation not available")
		return
	}
	sendFile(c, dl)
}

// SetETA handles PATCH /api/v1/projects/:id/eta (admin only)
func (h *ProjectHandler) SetETA(c *gin.Context) {
	a, ok := actor(c)
	if !ok {
		return
	}
	var req struct {
		Days int `json:"eta_days" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		responses.Fail(c, http.StatusBadRequest, err, "Invalid request body")
		return
	}
	project, err := h.projectService.SetETA(c.Request.Context(), a, c.Param("id"), req.Days)
	if err != nil {
		responses.Error(c, h.log, err, "Could not set ETA")
		return
	}
	responses.Success(c, http.StatusOK, project, "ETA updated")
}

// SetStatus handles PATCH /api/v1/projects/:id/status (admin only)
func (h *ProjectHandler) SetStatus(c *gin.Context) {
	a, ok := actor(c)
	if !ok {
		return
	}
	var req struct {
		Status string `json:"status" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		responses.Fail(c, http.StatusBadRequest, err, "Invalid request body")
		return
	}
	status, valid := models.ParseStatus(req.Status)
	if !valid {
		responses.Fail(c, http.StatusBadRequest, nil, "Unknown project status")
		return
	}
	project, err := h.projectService.SetStatus(c.Request.Context(), a, c.Param("id"), status)
	if err != nil {
		responses.Error(c, h.log, err, "Could not change status")
		return
	}
	responses.Success(c, http.StatusOK, project, "Status updated")
}

// AttachTranslation handles POST /api/v1/projects/:id/translation (admin only)
func (h *ProjectHandler) AttachTranslation(c *gin.Context) {
	a, ok := actor(c)
	if !ok {
		return
	}
	name, data, err := readUpload(c, "file", h.maxUpload)
	if err != nil {
		uploadFailed(c, h.log, err)
		return
	}
	project, err := h.projectService.AttachTranslation(c.Request.Context(), a, c.Param("id"), name, data)
	if err != nil {
		responses.Error(c, h.log, err, "Could not attach translation")
		return
	}
	responses.Success(c, http.StatusOK, project, "Translation attached, project completed")
}
