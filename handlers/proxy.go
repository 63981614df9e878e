package handlers

import (
	"errors"
	"fmt"
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/heavydiag/backend/services"
)

const variantProxy = "server"

// ProxyHandler forwards the caller's prompt to Gemini verbatim, without the HeavyDiag template.
type ProxyHandler struct {
	client  services.TextGenerator
	metrics *Metrics
}

// NewProxyHandler accepts a nil client; requests then fail with the missing key error.
func NewProxyHandler(client services.TextGenerator, metrics *Metrics) *ProxyHandler {
	return &ProxyHandler{client: client, metrics: metrics}
}

func (h *ProxyHandler) HandleChat(c *gin.Context) {
	if c.Request.Method != http.MethodPost {
		c.JSON(http.StatusMethodNotAllowed, gin.H{"error": "Method Not Allowed"})
		return
	}

	var req DiagnoseRequest
	if !bindOptionalJSON(c, &req) {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid JSON body"})
		return
	}
	if req.Prompt == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "No prompt provided"})
		return
	}

	if h.client == nil {
		slog.ErrorContext(c.Request.Context(), "GEMINI_API_KEY not found")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Falta la clave API en el servidor."})
		return
	}

	text, err := h.client.Generate(c.Request.Context(), string(req.Prompt))
	if err != nil {
		var apiErr *services.APIError
		if errors.As(err, &apiErr) {
			slog.ErrorContext(c.Request.Context(), "Gemini API error",
				slog.Int("status", apiErr.StatusCode),
				slog.String("body", string(apiErr.Body)),
			)
			h.metrics.ObserveGeneration(variantProxy, "api_error")
			c.JSON(apiErr.StatusCode, gin.H{"error": upstreamErrorMessage(apiErr.StatusCode)})
			return
		}

		slog.ErrorContext(c.Request.Context(), "Gemini connection failed", slog.Any("error", err))
		h.metrics.ObserveGeneration(variantProxy, "error")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Error de Conexión: No se pudo contactar el servidor."})
		return
	}

	h.metrics.ObserveGeneration(variantProxy, "ok")
	c.JSON(http.StatusOK, gin.H{"text": text})
}

func upstreamErrorMessage(status int) string {
	msg := fmt.Sprintf("Error %d de la API. ", status)
	switch status {
	case http.StatusBadRequest, http.StatusForbidden, http.StatusTooManyRequests:
		return msg + `Verifique que su API Key sea válida, tenga permisos para el modelo "pro" o que no haya excedido el límite de uso.`
	default:
		return msg + "Error interno de la API de Google."
	}
}
