package app

import (
	"context"
	"fmt"

	"github.com/gin-gonic/gin"

	"github.com/dgenny/propostas/internal/config"
	"github.com/dgenny/propostas/internal/http/handlers"
	httpRouter "github.com/dgenny/propostas/internal/http/router"
	"github.com/dgenny/propostas/internal/logger"
	"github.com/dgenny/propostas/internal/render"
	"github.com/dgenny/propostas/internal/service"
	"github.com/dgenny/propostas/internal/storage"
)

// App собранное приложение: HTTP engine и сервис предложений поверх выбранного хранилища.
type App struct {
	Engine    *gin.Engine
	Proposals *service.ProposalService

	closeStorage func() error
}

// SetupLogging настраивает глобальный логгер по конфигурации.
func SetupLogging(cfg *config.Config) {
	logger.Init(cfg.LogLevel)
	if !cfg.IsProduction() {
		logger.SetTextFormatter()
	}
}

// NewService собирает хранилище и сервис без HTTP слоя.
func NewService(ctx context.Context, cfg *config.Config) (*service.ProposalService, func() error, error) {
	store, closeFn, err := storage.NewFromConfig(ctx, cfg)
	if err != nil {
		return nil, nil, fmt.Errorf("app: не удалось подготовить хранилище: %w", err)
	}
	return service.NewProposalService(store), closeFn, nil
}

// Build собирает все зависимости HTTP приложения.
func Build(ctx context.Context, cfg *config.Config) (*App, error) {
	proposals, closeFn, err := NewService(ctx, cfg)
	if err != nil {
		return nil, err
	}

	renderer, err := render.New()
	if err != nil {
		_ = closeFn()
		return nil, fmt.Errorf("app: %w", err)
	}

	engine := httpRouter.SetupRouter(cfg,
		handlers.NewProposalHandler(proposals),
		handlers.NewViewerHandler(proposals, renderer),
		handlers.NewHealthHandler(proposals.Backend()),
	)

	return &App{
		Engine:       engine,
		Proposals:    proposals,
		closeStorage: closeFn,
	}, nil
}

// Close освобождает клиентов хранилища.
func (a *App) Close() error {
	if a.closeStorage == nil {
		return nil
	}
	return a.closeStorage()
}
