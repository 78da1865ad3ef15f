package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/dgenny/propostas/internal/pkg/apperror"
	"github.com/dgenny/propostas/internal/render"
	"github.com/dgenny/propostas/internal/service"
)

// ViewerHandler отдаёт документ предложения в HTML.
type ViewerHandler struct {
	proposals *service.ProposalService
	renderer  *render.Renderer
}

// NewViewerHandler создаёт экземпляр.
func NewViewerHandler(proposals *service.ProposalService, renderer *render.Renderer) *ViewerHandler {
	return &ViewerHandler{proposals: proposals, renderer: renderer}
}

// Show обрабатывает GET /proposta/:id. Отсутствующая запись даёт 404 простым текстом.
func (h *ViewerHandler) Show(c *gin.Context) {
	p, err := h.proposals.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		if apperror.IsNotFound(err) {
			c.String(http.StatusNotFound, apperror.ErrProposalNotFound.Message)
			return
		}
		_ = c.Error(err)
		return
	}

	c.Header("Content-Type", "text/html; charset=utf-8")
	c.Header("Cache-Control", "no-cache")
	c.Status(http.StatusOK)
	if err := h.renderer.Render(c.Writer, p); err != nil {
		_ = c.Error(err)
	}
}
