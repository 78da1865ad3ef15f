package dto

import (
	"time"

	"github.com/dgenny/propostas/internal/storage"
)

// CreateProposalResponse ответ на создание предложения.
// Fallback и Warning заполняются, только если запись ушла не в основной бэкенд.
type CreateProposalResponse struct {
	Success  bool   `json:"success"`
	ID       string `json:"id"`
	Link     string `json:"link"`
	Fallback bool   `json:"fallback,omitempty"`
	Warning  string `json:"warning,omitempty"`
}

// NewCreateProposalResponse собирает ответ из результата сохранения.
func NewCreateProposalResponse(id string, res storage.SaveResult) CreateProposalResponse {
	resp := CreateProposalResponse{
		Success: true,
		ID:      id,
		Link:    ProposalLink(id),
	}
	if res.Degraded() {
		resp.Fallback = true
		resp.Warning = res.Warning
	}
	return resp
}

// UpdateProposalResponse ответ на обновление предложения.
type UpdateProposalResponse struct {
	Success  bool   `json:"success"`
	ID       string `json:"id"`
	Fallback bool   `json:"fallback,omitempty"`
	Warning  string `json:"warning,omitempty"`
}

// ReindexResponse ответ на перестроение индекса.
type ReindexResponse struct {
	Success bool `json:"success"`
	Indexed int  `json:"indexed"`
}

// HealthResponse ответ health check.
type HealthResponse struct {
	Status    string    `json:"status"`
	Backend   string    `json:"backend"`
	Timestamp time.Time `json:"timestamp"`
}

// ErrorResponse represents a standard error response
type ErrorResponse struct {
	Error string `json:"error"`
}

// ProposalLink возвращает относительную ссылку на документ предложения.
func ProposalLink(id string) string {
	return "/proposta/" + id
}
