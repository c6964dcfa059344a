package handlers

import (
	"github.com/gin-gonic/gin"

	"github.com/MacMoment/coding/internal/http/response"
	"github.com/MacMoment/coding/internal/services"
)

type FileView struct {
	Path        string `json:"path"`
	Content     string `json:"content"`
	IsDirectory bool   `json:"isDirectory"`
}

type FileHandler struct {
	generations services.GenerationService
}

func NewFileHandler(generations services.GenerationService) *FileHandler {
	return &FileHandler{generations: generations}
}

// GET /api/projects/:id/files
func (h *FileHandler) ListFiles(c *gin.Context) {
	userID, ok := requestUser(c)
	if !ok {
		return
	}
	projectID, ok := uuidParam(c, "id", "invalid_project_id")
	if !ok {
		return
	}
	files, err := h.generations.ListFiles(c.Request.Context(), userID, projectID)
	if err != nil {
		response.RespondServiceError(c, err)
		return
	}
	out := make([]FileView, 0, len(files))
	for _, f := range files {
		out = append(out, FileView{Path: f.Path, Content: f.Content, IsDirectory: f.IsDirectory})
	}
	response.RespondOK(c, gin.H{"files": out})
}
