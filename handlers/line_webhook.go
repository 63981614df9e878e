package handlers

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/heavydiag/backend/services"
	"github.com/line/line-bot-sdk-go/v8/linebot/messaging_api"
	"github.com/line/line-bot-sdk-go/v8/linebot/webhook"
)

const (
	variantLine = "line"

	// LINE rejects text messages longer than this many characters.
	lineMaxTextLength = 5000

	lineErrorReply    = "Lo siento, ocurrió un error al consultar a HeavyDiag AI. Intente nuevamente."
	lineNotTextReply  = "Envíe su consulta como texto, por ejemplo: \"motor con agua en el aceite\"."
	lineNotReadyReply = "HeavyDiag AI no está disponible en este momento."
)

// lineReplier is the subset of the Messaging API the webhook needs.
type lineReplier interface {
	ReplyMessage(replyMessageRequest *messaging_api.ReplyMessageRequest) (*messaging_api.ReplyMessageResponse, error)
}

// LineWebhookHandler answers LINE chat messages with a HeavyDiag diagnosis.
type LineWebhookHandler struct {
	channelSecret string
	bot           lineReplier
	generator     services.TextGenerator
	metrics       *Metrics
}

func NewLineWebhookHandler(channelSecret, channelToken string, generator services.TextGenerator, metrics *Metrics) (*LineWebhookHandler, error) {
	bot, err := messaging_api.NewMessagingApiAPI(channelToken)
	if err != nil {
		return nil, fmt.Errorf("failed to create Line bot: %w", err)
	}

	return &LineWebhookHandler{
		channelSecret: channelSecret,
		bot:           bot,
		generator:     generator,
		metrics:       metrics,
	}, nil
}

func (h *LineWebhookHandler) HandleWebhook(c *gin.Context) {
	cb, err := webhook.ParseRequest(h.channelSecret, c.Request)
	if err != nil {
		slog.WarnContext(c.Request.Context(), "failed to parse LINE webhook", slog.Any("error", err))
		if errors.Is(err, webhook.ErrInvalidSignature) {
			c.Status(http.StatusBadRequest)
		} else {
			c.Status(http.StatusInternalServerError)
		}
		return
	}

	for _, event := range cb.Events {
		if e, ok := event.(webhook.MessageEvent); ok {
			h.handleMessage(c.Request.Context(), e)
		}
	}

	c.Status(http.StatusOK)
}

func (h *LineWebhookHandler) handleMessage(ctx context.Context, event webhook.MessageEvent) {
	message, ok := event.Message.(webhook.TextMessageContent)
	if !ok {
		h.replyText(ctx, event.ReplyToken, lineNotTextReply)
		return
	}

	if h.generator == nil {
		h.replyText(ctx, event.ReplyToken, lineNotReadyReply)
		return
	}

	text, err := h.generator.Generate(ctx, services.BuildDiagnosisPrompt(message.Text, ""))
	if err != nil {
		slog.ErrorContext(ctx, "Gemini generation failed", slog.String("variant", variantLine), slog.Any("error", err))
		h.metrics.ObserveGeneration(variantLine, "error")
		h.replyText(ctx, event.ReplyToken, lineErrorReply)
		return
	}

	h.metrics.ObserveGeneration(variantLine, "ok")
	h.replyText(ctx, event.ReplyToken, truncateRunes(text, lineMaxTextLength))
}

// replyText answers with quick replies for common failures.
func (h *LineWebhookHandler) replyText(ctx context.Context, replyToken, text string) {
	_, err := h.bot.ReplyMessage(&messaging_api.ReplyMessageRequest{
		ReplyToken: replyToken,
		Messages: []messaging_api.MessageInterface{
			messaging_api.TextMessage{
				Text: text,
				QuickReply: &messaging_api.QuickReply{
					Items: []messaging_api.QuickReplyItem{
						{Action: &messaging_api.MessageAction{Label: "Motor con agua", Text: "Motor con agua en el aceite"}},
						{Action: &messaging_api.MessageAction{Label: "Frenos ruidosos", Text: "Frenos ruidosos al detenerse"}},
						{Action: &messaging_api.MessageAction{Label: "Presión hidráulica", Text: "Pérdida de presión hidráulica en el brazo"}},
					},
				},
			},
		},
	})
	if err != nil {
		slog.ErrorContext(ctx, "failed to send LINE reply", slog.Any("error", err))
	}
}

func truncateRunes(s string, limit int) string {
	runes := []rune(s)
	if len(runes) <= limit {
		return s
	}
	return string(runes[:limit-1]) + "…"
}
