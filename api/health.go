package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/heavydiag/backend/handlers"
)

// Handler is the serverless function entry point for Vercel
func Handler(w http.ResponseWriter, r *http.Request) {
	gin.SetMode(gin.ReleaseMode)
	engine := gin.New()
	engine.GET("/*any", handlers.Health)
	engine.ServeHTTP(w, r)
}
