package handlers

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/base64"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"unicode/utf8"

	"github.com/gin-gonic/gin"
	"github.com/line/line-bot-sdk-go/v8/linebot/messaging_api"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testChannelSecret = "test-channel-secret"

type fakeReplier struct {
	requests []*messaging_api.ReplyMessageRequest
}

func (f *fakeReplier) ReplyMessage(req *messaging_api.ReplyMessageRequest) (*messaging_api.ReplyMessageResponse, error) {
	f.requests = append(f.requests, req)
	return &messaging_api.ReplyMessageResponse{}, nil
}

func (f *fakeReplier) texts() []string {
	var out []string
	for _, req := range f.requests {
		for _, msg := range req.Messages {
			if text, ok := msg.(messaging_api.TextMessage); ok {
				out = append(out, text.Text)
			}
		}
	}
	return out
}

func textEventBody(text string) string {
	return `{"destination":"Uxxxxxxxx","events":[{"type":"message","mode":"active","timestamp":1700000000000,` +
		`"source":{"type":"user","userId":"U123"},"webhookEventId":"01H","deliveryContext":{"isRedelivery":false},` +
		`"replyToken":"reply-token","message":{"type":"text","id":"468789","quoteToken":"q","text":"` + text + `"}}]}`
}

func stickerEventBody() string {
	return `{"destination":"Uxxxxxxxx","events":[{"type":"message","mode":"active","timestamp":1700000000000,` +
		`"source":{"type":"user","userId":"U123"},"webhookEventId":"01H","deliveryContext":{"isRedelivery":false},` +
		`"replyToken":"reply-token","message":{"type":"sticker","id":"1","quoteToken":"q","packageId":"1","stickerId":"1","stickerResourceType":"STATIC"}}]}`
}

func sign(body string) string {
	mac := hmac.New(sha256.New, []byte(testChannelSecret))
	mac.Write([]byte(body))
	return base64.StdEncoding.EncodeToString(mac.Sum(nil))
}

func newTestLineHandler(gen *fakeGenerator) (*LineWebhookHandler, *fakeReplier) {
	replier := &fakeReplier{}
	h := &LineWebhookHandler{channelSecret: testChannelSecret, bot: replier}
	if gen != nil {
		h.generator = gen
	}
	return h, replier
}

func postWebhook(h *LineWebhookHandler, body, signature string) *httptest.ResponseRecorder {
	r := gin.New()
	r.POST("/webhook/line", h.HandleWebhook)

	req := httptest.NewRequest(http.MethodPost, "/webhook/line", strings.NewReader(body))
	req.Header.Set("X-Line-Signature", signature)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func TestLineWebhookRepliesWithDiagnosis(t *testing.T) {
	gen := &fakeGenerator{text: "**Síntomas:**\n* Humo blanco"}
	h, replier := newTestLineHandler(gen)

	body := textEventBody("motor con agua")
	w := postWebhook(h, body, sign(body))

	require.Equal(t, http.StatusOK, w.Code)
	require.Len(t, gen.prompts, 1)
	assert.Contains(t, gen.prompts[0], `Pregunta del usuario: "motor con agua"`)
	assert.Equal(t, []string{"**Síntomas:**\n* Humo blanco"}, replier.texts())
	assert.Equal(t, "reply-token", replier.requests[0].ReplyToken)
}

func TestLineWebhookInvalidSignature(t *testing.T) {
	gen := &fakeGenerator{text: "x"}
	h, replier := newTestLineHandler(gen)

	w := postWebhook(h, textEventBody("hola"), "bad-signature")

	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Empty(t, gen.prompts)
	assert.Empty(t, replier.requests)
}

func TestLineWebhookGenerationError(t *testing.T) {
	h, replier := newTestLineHandler(&fakeGenerator{err: errors.New("quota")})

	body := textEventBody("hola")
	w := postWebhook(h, body, sign(body))

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, []string{lineErrorReply}, replier.texts())
}

func TestLineWebhookWithoutGenerator(t *testing.T) {
	h, replier := newTestLineHandler(nil)

	body := textEventBody("hola")
	w := postWebhook(h, body, sign(body))

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, []string{lineNotReadyReply}, replier.texts())
}

func TestLineWebhookNonTextMessage(t *testing.T) {
	gen := &fakeGenerator{text: "x"}
	h, replier := newTestLineHandler(gen)

	body := stickerEventBody()
	w := postWebhook(h, body, sign(body))

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Empty(t, gen.prompts)
	assert.Equal(t, []string{lineNotTextReply}, replier.texts())
}

func TestTruncateRunes(t *testing.T) {
	assert.Equal(t, "corto", truncateRunes("corto", 10))

	long := strings.Repeat("ñ", 6000)
	got := truncateRunes(long, lineMaxTextLength)
	assert.Equal(t, lineMaxTextLength, utf8.RuneCountInString(got))
	assert.True(t, strings.HasSuffix(got, "…"))
}
