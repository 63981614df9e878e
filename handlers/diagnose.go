package handlers

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/heavydiag/backend/services"
)

const variantDiagnose = "askGemini"

// DiagnoseRequest is the body accepted by the diagnosis endpoints.
type DiagnoseRequest struct {
	Prompt  LooseText `json:"prompt"`
	Context LooseText `json:"context"`
}

// LooseText accepts a JSON string, number or boolean as text.
// Falsy scalars (false, 0, null) decode to "" and count as absent.
type LooseText string

func (t *LooseText) UnmarshalJSON(data []byte) error {
	var v any
	if err := json.Unmarshal(data, &v); err != nil {
		return err
	}
	switch v := v.(type) {
	case nil:
		*t = ""
	case string:
		*t = LooseText(v)
	case bool:
		*t = ""
		if v {
			*t = "true"
		}
	case float64:
		*t = ""
		if v != 0 {
			*t = LooseText(strconv.FormatFloat(v, 'f', -1, 64))
		}
	default:
		return fmt.Errorf("expected text, got %s", data)
	}
	return nil
}

// DiagnoseHandler answers heavy-machinery questions through the HeavyDiag template.
type DiagnoseHandler struct {
	generator services.TextGenerator
	metrics   *Metrics
}

// NewDiagnoseHandler accepts a nil generator; requests then fail with the missing key error.
func NewDiagnoseHandler(generator services.TextGenerator, metrics *Metrics) *DiagnoseHandler {
	return &DiagnoseHandler{generator: generator, metrics: metrics}
}

func (h *DiagnoseHandler) Handle(c *gin.Context) {
	if c.Request.Method != http.MethodPost {
		c.JSON(http.StatusMethodNotAllowed, gin.H{"error": "Método no permitido"})
		return
	}

	if h.generator == nil {
		slog.ErrorContext(c.Request.Context(), "GEMINI_API_KEY is not configured")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "API Key de Gemini no configurada o modelo no inicializado"})
		return
	}

	var req DiagnoseRequest
	if !bindOptionalJSON(c, &req) {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Cuerpo de la solicitud inválido"})
		return
	}
	if req.Prompt == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "No se recibió ningún prompt"})
		return
	}

	text, err := h.generator.Generate(c.Request.Context(), services.BuildDiagnosisPrompt(string(req.Prompt), string(req.Context)))
	if err != nil {
		slog.ErrorContext(c.Request.Context(), "Gemini generation failed",
			slog.String("variant", variantDiagnose),
			slog.Any("error", err),
		)
		h.metrics.ObserveGeneration(variantDiagnose, "error")
		respondAIError(c, err)
		return
	}

	h.metrics.ObserveGeneration(variantDiagnose, "ok")
	c.JSON(http.StatusOK, gin.H{"text": text})
}

// respondAIError reports a generation failure with the root message and the full chain.
func respondAIError(c *gin.Context, err error) {
	c.JSON(http.StatusInternalServerError, gin.H{
		"error":   "Error de la IA: " + rootCause(err).Error(),
		"details": err.Error(),
	})
}

// bindOptionalJSON decodes the body into dst. An empty body leaves dst untouched.
func bindOptionalJSON(c *gin.Context, dst any) bool {
	if err := c.ShouldBindJSON(dst); err != nil && !errors.Is(err, io.EOF) {
		return false
	}
	return true
}

func rootCause(err error) error {
	for {
		next := errors.Unwrap(err)
		if next == nil {
			return err
		}
		err = next
	}
}
