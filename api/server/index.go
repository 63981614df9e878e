package handler

import (
	"net/http"
	"sync"

	"github.com/gin-gonic/gin"
	"github.com/heavydiag/backend/config"
	"github.com/heavydiag/backend/handlers"
	"github.com/heavydiag/backend/logger"
)

var (
	once   sync.Once
	engine *gin.Engine
)

func initEngine() {
	cfg := config.FromEnv()
	logger.Setup(cfg)

	engine = handlers.NewFunctionEngine(cfg, handlers.NewProxyHandler(handlers.NewProxy(cfg), nil).HandleChat)
}

// Handler is the Vercel entry point for /api/server.
func Handler(w http.ResponseWriter, r *http.Request) {
	once.Do(initEngine)
	engine.ServeHTTP(w, r)
}
