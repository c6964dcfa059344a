package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/MacMoment/coding/internal/http/response"
	"github.com/MacMoment/coding/internal/services"
)

var errUnauthenticated = errors.New("not authenticated")

const defaultGenerationListLimit = 20

type GenerationHandler struct {
	generations services.GenerationService
}

func NewGenerationHandler(generations services.GenerationService) *GenerationHandler {
	return &GenerationHandler{generations: generations}
}

// POST /api/projects/:id/generate
func (h *GenerationHandler) Submit(c *gin.Context) {
	userID, ok := requestUser(c)
	if !ok {
		return
	}
	projectID, ok := uuidParam(c, "id", "invalid_project_id")
	if !ok {
		return
	}
	var req services.SubmitRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.RespondError(c, http.StatusBadRequest, "invalid_request", err)
		return
	}
	res, err := h.generations.Submit(c.Request.Context(), userID, projectID, req)
	if err != nil {
		response.RespondServiceError(c, err)
		return
	}
	response.RespondAccepted(c, res)
}

// GET /api/projects/:id/generations/:jobId
func (h *GenerationHandler) GetJob(c *gin.Context) {
	userID, ok := requestUser(c)
	if !ok {
		return
	}
	projectID, ok := uuidParam(c, "id", "invalid_project_id")
	if !ok {
		return
	}
	jobID, ok := uuidParam(c, "jobId", "invalid_job_id")
	if !ok {
		return
	}
	view, err := h.generations.GetJob(c.Request.Context(), userID, jobID)
	if err != nil {
		response.RespondServiceError(c, err)
		return
	}
	if view.Job.ProjectID != projectID {
		response.RespondServiceError(c, services.ErrJobNotFound)
		return
	}
	response.RespondOK(c, view)
}

// GET /api/projects/:id/generations
func (h *GenerationHandler) ListJobs(c *gin.Context) {
	userID, ok := requestUser(c)
	if !ok {
		return
	}
	projectID, ok := uuidParam(c, "id", "invalid_project_id")
	if !ok {
		return
	}
	jobs, err := h.generations.ListJobs(c.Request.Context(), userID, projectID, intQuery(c, "limit", defaultGenerationListLimit))
	if err != nil {
		response.RespondServiceError(c, err)
		return
	}
	response.RespondOK(c, gin.H{"jobs": jobs})
}
