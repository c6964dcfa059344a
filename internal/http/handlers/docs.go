package handlers

import (
	"github.com/gin-gonic/gin"

	"github.com/MacMoment/coding/internal/http/response"
	"github.com/MacMoment/coding/internal/services"
)

type DocsHandler struct {
	docs services.DocsService
}

func NewDocsHandler(docs services.DocsService) *DocsHandler {
	return &DocsHandler{docs: docs}
}

// GET /api/docs/stats
func (h *DocsHandler) Stats(c *gin.Context) {
	if _, ok := requestUser(c); !ok {
		return
	}
	stats, err := h.docs.Stats(c.Request.Context())
	if err != nil {
		response.RespondServiceError(c, err)
		return
	}
	var total int64
	for _, n := range stats {
		total += n
	}
	response.RespondOK(c, gin.H{"stats": stats, "total": total})
}
