package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"sync"

	"github.com/GoogleCloudPlatform/functions-framework-go/funcframework"
	"github.com/GoogleCloudPlatform/functions-framework-go/functions"

	"github.com/dgenny/propostas/internal/app"
	"github.com/dgenny/propostas/internal/config"
	"github.com/dgenny/propostas/internal/logger"
)

var (
	instance *app.App
	once     sync.Once
	initErr  error
)

func init() {
	// "Proposals" имя точки входа в настройках функции.
	functions.HTTP("Proposals", handleProposals)
}

// main запускает функцию локально. В облаке точку входа вызывает рантайм.
func main() {
	port := "8080"
	if envPort := os.Getenv("PORT"); envPort != "" {
		port = envPort
	}
	if err := funcframework.Start(port); err != nil {
		log.Fatalf("funcframework.Start: %v", err)
	}
}

// handleProposals отдаёт запрос gin engine, собранному при первом вызове.
func handleProposals(w http.ResponseWriter, r *http.Request) {
	once.Do(func() {
		var cfg *config.Config
		cfg, initErr = config.Load()
		if initErr != nil {
			return
		}
		app.SetupLogging(cfg)
		instance, initErr = app.Build(context.Background(), cfg)
	})
	if initErr != nil {
		logger.Log.WithError(initErr).Error("function: инициализация не удалась")
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
		return
	}

	instance.Engine.ServeHTTP(w, r)
}
