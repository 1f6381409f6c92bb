package handlers

import (
	"encoding/json"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"kirana-service/internal/config"
	"kirana-service/internal/models"
	"kirana-service/internal/services"
)

// WebhookHandler receives inbound WhatsApp traffic. Both provider
// payload shapes land on the same POST endpoint; the body is sniffed.
type WebhookHandler struct {
	processor services.Processor
	validator *validator.Validate
	cfg       config.WhatsAppConfig
	logger    *zap.Logger
}

func NewWebhookHandler(processor services.Processor, cfg config.WhatsAppConfig, logger *zap.Logger) *WebhookHandler {
	return &WebhookHandler{
		processor: processor,
		validator: validator.New(),
		cfg:       cfg,
		logger:    logger,
	}
}

// Verify answers the Cloud API subscription handshake.
func (h *WebhookHandler) Verify(c *gin.Context) {
	mode := c.Query("hub.mode")
	token := c.Query("hub.verify_token")
	challenge := c.Query("hub.challenge")

	if mode == "subscribe" && token == h.cfg.VerifyToken {
		h.logger.Info("webhook verified")
		c.String(http.StatusOK, challenge)
		return
	}
	h.logger.Warn("webhook verification rejected", zap.String("mode", mode))
	c.JSON(http.StatusForbidden, models.APIResponse{Success: false, Error: "verification failed"})
}

// Receive handles an inbound message webhook. The provider always gets a
// 200 back quickly; processing failures are replied to the user over
// WhatsApp, not to the provider.
func (h *WebhookHandler) Receive(c *gin.Context) {
	var raw json.RawMessage
	if err := c.ShouldBindJSON(&raw); err != nil {
		h.logger.Error("webhook body unreadable", zap.Error(err))
		c.JSON(http.StatusBadRequest, models.APIResponse{Success: false, Error: "bad payload"})
		return
	}

	messages := h.parsePayload(raw)
	if len(messages) == 0 {
		// Status updates, own messages, unsupported types.
		c.JSON(http.StatusOK, models.APIResponse{Success: true, Message: "ignored"})
		return
	}

	ctx := c.Request.Context()
	var lastReply models.ProcessReply
	for _, msg := range messages {
		lastReply = h.processor.ProcessMessage(ctx, msg)
	}
	c.JSON(http.StatusOK, models.APIResponse{Success: true, Data: lastReply})
}

// parsePayload sniffs the body: the Cloud API always wraps messages in
// an "entry" array, WATI posts a flat object.
func (h *WebhookHandler) parsePayload(raw json.RawMessage) []services.IncomingMessage {
	var probe map[string]json.RawMessage
	if err := json.Unmarshal(raw, &probe); err != nil {
		h.logger.Warn("webhook payload is not an object")
		return nil
	}
	if _, isCloud := probe["entry"]; isCloud {
		return h.parseCloud(raw)
	}
	return h.parseWati(raw)
}

func (h *WebhookHandler) parseWati(raw json.RawMessage) []services.IncomingMessage {
	var payload models.WatiWebhookPayload
	if err := json.Unmarshal(raw, &payload); err != nil {
		h.logger.Warn("wati payload unmarshal failed", zap.Error(err))
		return nil
	}
	if payload.Owner || payload.WaID == "" {
		return nil
	}

	switch payload.Type {
	case "text", "":
		if strings.TrimSpace(payload.Text) == "" {
			return nil
		}
		return []services.IncomingMessage{{Phone: payload.WaID, Text: payload.Text}}
	case "audio", "voice", "ptt":
		if payload.Data == "" {
			return nil
		}
		return []services.IncomingMessage{{
			Phone:       payload.WaID,
			Voice:       true,
			MediaRef:    payload.Data,
			MediaFormat: formatFromDataType(payload.DataType),
		}}
	default:
		h.logger.Debug("ignoring wati message type", zap.String("type", payload.Type))
		return nil
	}
}

func (h *WebhookHandler) parseCloud(raw json.RawMessage) []services.IncomingMessage {
	var payload models.CloudWebhookPayload
	if err := json.Unmarshal(raw, &payload); err != nil {
		h.logger.Warn("cloud payload unmarshal failed", zap.Error(err))
		return nil
	}

	var out []services.IncomingMessage
	for _, entry := range payload.Entry {
		for _, change := range entry.Changes {
			for _, msg := range change.Value.Messages {
				switch msg.Type {
				case "text":
					if msg.Text == nil || strings.TrimSpace(msg.Text.Body) == "" {
						continue
					}
					out = append(out, services.IncomingMessage{Phone: msg.From, Text: msg.Text.Body})
				case "audio":
					if msg.Audio == nil || msg.Audio.ID == "" {
						continue
					}
					out = append(out, services.IncomingMessage{
						Phone:       msg.From,
						Voice:       true,
						MediaRef:    msg.Audio.ID,
						MediaFormat: formatFromMime(msg.Audio.MimeType),
					})
				}
			}
		}
	}
	return out
}

// TestMessage drives the pipeline without the WhatsApp gateway; the
// reply comes back in the HTTP response.
func (h *WebhookHandler) TestMessage(c *gin.Context) {
	var req models.TestMessageRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, models.APIResponse{Success: false, Error: err.Error()})
		return
	}
	if err := h.validator.Struct(req); err != nil {
		c.JSON(http.StatusBadRequest, models.APIResponse{Success: false, Error: err.Error()})
		return
	}

	reply := h.processor.ProcessMessage(c.Request.Context(), services.IncomingMessage{
		Phone:  req.Phone,
		Text:   req.Message,
		DryRun: true,
	})
	c.JSON(http.StatusOK, models.APIResponse{Success: reply.Success, Data: reply})
}

func formatFromDataType(dataType string) string {
	switch {
	case strings.Contains(dataType, "mp3"):
		return "mp3"
	case strings.Contains(dataType, "wav"):
		return "wav"
	default:
		return "ogg"
	}
}

func formatFromMime(mime string) string {
	switch {
	case strings.Contains(mime, "mpeg"), strings.Contains(mime, "mp3"):
		return "mp3"
	case strings.Contains(mime, "wav"):
		return "wav"
	default:
		return "ogg"
	}
}
