package handler

import (
	"context"
	"log/slog"
	"net/http"
	"sync"

	"github.com/gin-gonic/gin"
	"github.com/heavydiag/backend/config"
	"github.com/heavydiag/backend/handlers"
	"github.com/heavydiag/backend/logger"
)

// Reused across warm invocations.
var (
	once   sync.Once
	engine *gin.Engine
)

func initEngine() {
	cfg := config.FromEnv()
	logger.Setup(cfg)

	diagnoser, _, err := handlers.NewDiagnoser(context.Background(), cfg)
	if err != nil {
		// Leave the generator nil so requests report the configuration error.
		slog.Error("Failed to initialize Gemini client", slog.Any("error", err))
	}
	engine = handlers.NewFunctionEngine(cfg, handlers.NewDiagnoseHandler(diagnoser, nil).Handle)
}

// Handler is the Vercel entry point for /api/askGemini.
func Handler(w http.ResponseWriter, r *http.Request) {
	once.Do(initEngine)
	engine.ServeHTTP(w, r)
}
