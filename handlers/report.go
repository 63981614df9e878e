package handlers

import (
	"fmt"
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/heavydiag/backend/services"
)

const variantReport = "report"

// ReportRequest asks for a new diagnosis (prompt) or renders an existing answer (text).
type ReportRequest struct {
	Prompt  string `json:"prompt"`
	Context string `json:"context"`
	Text    string `json:"text"`
}

// ReportHandler returns a diagnosis as a PDF or Excel download.
type ReportHandler struct {
	generator services.TextGenerator
	export    *services.ExportService
	metrics   *Metrics
}

func NewReportHandler(generator services.TextGenerator, export *services.ExportService, metrics *Metrics) *ReportHandler {
	return &ReportHandler{generator: generator, export: export, metrics: metrics}
}

func (h *ReportHandler) Handle(c *gin.Context) {
	if c.Request.Method != http.MethodPost {
		c.JSON(http.StatusMethodNotAllowed, gin.H{"error": "Método no permitido"})
		return
	}

	format := c.DefaultQuery("format", "pdf")
	if format != "pdf" && format != "xlsx" {
		c.JSON(http.StatusBadRequest, gin.H{"error": fmt.Sprintf("Formato no soportado: %q (use pdf o xlsx)", format)})
		return
	}

	var req ReportRequest
	if !bindOptionalJSON(c, &req) {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Cuerpo de la solicitud inválido"})
		return
	}

	text := req.Text
	if text == "" {
		if req.Prompt == "" {
			c.JSON(http.StatusBadRequest, gin.H{"error": "No se recibió ningún prompt"})
			return
		}
		if h.generator == nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "API Key de Gemini no configurada o modelo no inicializado"})
			return
		}

		var err error
		text, err = h.generator.Generate(c.Request.Context(), services.BuildDiagnosisPrompt(req.Prompt, req.Context))
		if err != nil {
			slog.ErrorContext(c.Request.Context(), "Gemini generation failed",
				slog.String("variant", variantReport),
				slog.Any("error", err),
			)
			h.metrics.ObserveGeneration(variantReport, "error")
			respondAIError(c, err)
			return
		}
		h.metrics.ObserveGeneration(variantReport, "ok")
	}

	report := services.ParseDiagnosis(text)
	report.Question = req.Prompt
	report.Context = req.Context

	var (
		data        []byte
		filename    string
		contentType string
		err         error
	)
	if format == "xlsx" {
		data, filename, err = h.export.ToExcel(report)
		contentType = services.ContentTypeExcel
	} else {
		data, filename, err = h.export.ToPDF(report)
		contentType = services.ContentTypePDF
	}
	if err != nil {
		slog.ErrorContext(c.Request.Context(), "report export failed", slog.String("format", format), slog.Any("error", err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "No se pudo generar el informe", "details": err.Error()})
		return
	}

	c.Header("Content-Disposition", fmt.Sprintf(`attachment; filename="%s"`, filename))
	c.Data(http.StatusOK, contentType, data)
}
