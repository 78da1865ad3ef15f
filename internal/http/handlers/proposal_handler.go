package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/dgenny/propostas/internal/dto"
	"github.com/dgenny/propostas/internal/http/handlers/common"
	"github.com/dgenny/propostas/internal/models"
	"github.com/dgenny/propostas/internal/service"
)

// ProposalHandler отвечает за JSON API предложений.
type ProposalHandler struct {
	proposals *service.ProposalService
}

// NewProposalHandler создаёт экземпляр.
func NewProposalHandler(proposals *service.ProposalService) *ProposalHandler {
	return &ProposalHandler{proposals: proposals}
}

// Create обрабатывает POST /api/proposta.
func (h *ProposalHandler) Create(c *gin.Context) {
	p, res, err := h.proposals.Create(c.Request.Context(), common.ReadFields(c))
	if err != nil {
		common.RespondAppError(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.NewCreateProposalResponse(p.ID(), res))
}

// Get обрабатывает GET /api/proposta/:id.
func (h *ProposalHandler) Get(c *gin.Context) {
	p, err := h.proposals.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		common.RespondAppError(c, err)
		return
	}

	c.JSON(http.StatusOK, p)
}

// Update обрабатывает PUT /api/proposta/:id: поля тела сливаются поверх сохранённой записи.
func (h *ProposalHandler) Update(c *gin.Context) {
	id := c.Param("id")
	_, res, err := h.proposals.Update(c.Request.Context(), id, common.ReadFields(c))
	if err != nil {
		common.RespondAppError(c, err)
		return
	}

	resp := dto.UpdateProposalResponse{Success: true, ID: id}
	if res.Degraded() {
		resp.Fallback = true
		resp.Warning = res.Warning
	}
	c.JSON(http.StatusOK, resp)
}

// List обрабатывает GET /api/propostas.
func (h *ProposalHandler) List(c *gin.Context) {
	items, err := h.proposals.List(c.Request.Context())
	if err != nil {
		common.RespondAppError(c, err)
		return
	}

	if items == nil {
		items = []models.Summary{}
	}
	c.JSON(http.StatusOK, items)
}

// InitIndex обрабатывает POST /api/init-index.
func (h *ProposalHandler) InitIndex(c *gin.Context) {
	n, err := h.proposals.Reindex(c.Request.Context())
	if err != nil {
		common.RespondAppError(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.ReindexResponse{Success: true, Indexed: n})
}
