package handlers

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/dgenny/propostas/internal/dto"
)

// HealthHandler предоставляет endpoint для проверки здоровья сервиса.
type HealthHandler struct {
	backend string
	now     func() time.Time
}

// NewHealthHandler создаёт новый health handler.
func NewHealthHandler(backend string) *HealthHandler {
	return &HealthHandler{backend: backend, now: time.Now}
}

// Health обрабатывает GET /health.
func (h *HealthHandler) Health(c *gin.Context) {
	c.JSON(http.StatusOK, dto.HealthResponse{
		Status:    "ok",
		Backend:   h.backend,
		Timestamp: h.now().UTC(),
	})
}
