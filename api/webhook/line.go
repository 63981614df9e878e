package handler

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"sync"

	"github.com/gin-gonic/gin"
	"github.com/heavydiag/backend/config"
	"github.com/heavydiag/backend/handlers"
	"github.com/heavydiag/backend/logger"
)

var errLineNotConfigured = errors.New("LINE_CHANNEL_SECRET and LINE_CHANNEL_ACCESS_TOKEN are required")

var (
	once    sync.Once
	engine  *gin.Engine
	initErr error
)

// initServices builds the LINE channel once per cold start.
func initServices() {
	cfg := config.FromEnv()
	logger.Setup(cfg)

	if !cfg.HasLine() {
		initErr = errLineNotConfigured
		return
	}

	deps, _, err := handlers.BuildDeps(context.Background(), cfg, nil)
	if err != nil {
		initErr = err
		return
	}

	// Vercel routes every path of this function to the webhook.
	engine = handlers.NewFunctionEngine(cfg, deps.Line.HandleWebhook)
}

// Handler is the Vercel entry point for the LINE webhook.
func Handler(w http.ResponseWriter, r *http.Request) {
	once.Do(initServices)
	if initErr != nil {
		slog.Error("Failed to initialize services", slog.Any("error", initErr))
		http.Error(w, "Internal server error", http.StatusInternalServerError)
		return
	}
	engine.ServeHTTP(w, r)
}
