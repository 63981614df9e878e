package handlers

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/heavydiag/backend/config"
	"github.com/heavydiag/backend/services"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Deps are the services behind the HTTP surface. Nil generators mean GEMINI_API_KEY is unset.
type Deps struct {
	Diagnoser services.TextGenerator // HeavyDiag template over the SDK
	Proxy     services.TextGenerator // raw prompt over REST
	Export    *services.ExportService
	Line      *LineWebhookHandler
	Metrics   *Metrics
	Gatherer  prometheus.Gatherer
}

// BuildDeps creates the Gemini clients and optional LINE channel from cfg.
// The returned close func releases the SDK client.
func BuildDeps(ctx context.Context, cfg *config.Config, metrics *Metrics) (Deps, func(), error) {
	diagnoser, closeFn, err := NewDiagnoser(ctx, cfg)
	if err != nil {
		return Deps{}, closeFn, err
	}
	if diagnoser == nil {
		slog.Error("GEMINI_API_KEY is not configured; AI endpoints will answer 500")
	}

	deps := Deps{
		Diagnoser: diagnoser,
		Proxy:     NewProxy(cfg),
		Export:    services.NewExportService(),
		Metrics:   metrics,
	}

	if cfg.HasLine() {
		line, err := NewLineWebhookHandler(cfg.LineChannelSecret, cfg.LineChannelAccessToken, deps.Diagnoser, metrics)
		if err != nil {
			closeFn()
			return Deps{}, func() {}, fmt.Errorf("failed to initialize Line webhook handler: %w", err)
		}
		deps.Line = line
	}

	return deps, closeFn, nil
}

// NewDiagnoser builds the SDK generator behind askGemini and the report endpoint.
// It returns a nil generator when GEMINI_API_KEY is unset.
func NewDiagnoser(ctx context.Context, cfg *config.Config) (services.TextGenerator, func(), error) {
	if !cfg.HasGemini() {
		return nil, func() {}, nil
	}

	gemini, err := services.NewGeminiService(ctx, services.GeminiConfig{
		APIKey:          cfg.GeminiAPIKey,
		Model:           cfg.GeminiModel,
		MaxOutputTokens: cfg.GeminiMaxOutputTokens,
		Timeout:         cfg.GeminiTimeout,
	})
	if err != nil {
		return nil, func() {}, err
	}
	return gemini, func() {
		if err := gemini.Close(); err != nil {
			slog.Warn("failed to close Gemini client", slog.Any("error", err))
		}
	}, nil
}

// NewProxy builds the REST generator behind the server endpoint.
// It returns nil when GEMINI_API_KEY is unset.
func NewProxy(cfg *config.Config) services.TextGenerator {
	if !cfg.HasGemini() {
		return nil
	}

	maxTokens := cfg.GeminiProxyMaxOutputTokens
	if maxTokens == 0 {
		maxTokens = cfg.GeminiMaxOutputTokens
	}
	return services.NewRESTClient(services.RESTConfig{
		BaseURL:         cfg.GeminiBaseURL,
		APIVersion:      cfg.GeminiAPIVersion,
		Model:           cfg.GeminiProxyModel,
		APIKey:          cfg.GeminiAPIKey,
		MaxOutputTokens: maxTokens,
		Timeout:         cfg.GeminiTimeout,
	})
}

// NewRouter wires every endpoint for the long-running server.
func NewRouter(cfg *config.Config, deps Deps) *gin.Engine {
	r := newEngine(cfg)
	r.Use(deps.Metrics.Handler())

	r.GET("/health", Health)
	if deps.Gatherer != nil {
		r.GET("/metrics", gin.WrapH(promhttp.HandlerFor(deps.Gatherer, promhttp.HandlerOpts{})))
	}

	api := r.Group("/api")
	api.Any("/askGemini", NewDiagnoseHandler(deps.Diagnoser, deps.Metrics).Handle)
	api.Any("/server", NewProxyHandler(deps.Proxy, deps.Metrics).HandleChat)
	api.Any("/report", NewReportHandler(deps.Diagnoser, deps.Export, deps.Metrics).Handle)

	if deps.Line != nil {
		r.POST("/webhook/line", deps.Line.HandleWebhook)
	}

	return r
}

// NewFunctionEngine serves a single handler on every path, as a Vercel function does.
func NewFunctionEngine(cfg *config.Config, handler gin.HandlerFunc) *gin.Engine {
	r := newEngine(cfg)
	r.Any("/*any", handler)
	return r
}

// Health reports liveness.
func Health(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status":  "ok",
		"service": "heavydiag",
	})
}

func newEngine(cfg *config.Config) *gin.Engine {
	if cfg.IsRelease() {
		gin.SetMode(gin.ReleaseMode)
	}
	r := gin.New()
	r.Use(gin.Recovery(), RequestID(), AccessLog(), CORS(cfg.AllowOrigins))
	return r
}
