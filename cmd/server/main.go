package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/dgenny/propostas/internal/app"
	"github.com/dgenny/propostas/internal/config"
	"github.com/dgenny/propostas/internal/goroutine"
	"github.com/dgenny/propostas/internal/logger"
)

func main() {
	// Готовим контекст для graceful shutdown.
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("main: ошибка загрузки конфигурации: %v", err)
	}

	app.SetupLogging(cfg)

	application, err := app.Build(ctx, cfg)
	if err != nil {
		logger.Log.Fatalf("main: ошибка сборки приложения: %v", err)
	}
	defer safeClose(application)

	server := &http.Server{
		Addr:              ":" + cfg.HTTPPort,
		Handler:           application.Engine,
		ReadHeaderTimeout: 10 * time.Second,
	}

	// Завершаем сервер при получении сигнала.
	goroutine.SafeGo(logger.Log, "shutdown", func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := server.Shutdown(shutdownCtx); err != nil {
			logger.Log.Errorf("main: ошибка остановки http сервера: %v", err)
		}
	})

	logger.Log.WithField("backend", application.Proposals.Backend()).
		Infof("main: HTTP сервер запущен на порту %s", cfg.HTTPPort)

	if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		logger.Log.Fatalf("main: сервер завершился с ошибкой: %v", err)
	}
}

// safeClose закрывает клиентов хранилища.
func safeClose(a *app.App) {
	if err := a.Close(); err != nil {
		logger.Log.Errorf("main: ошибка закрытия хранилища: %v", err)
	}
}
