package services

import (
	"context"
	"time"

	"go.uber.org/zap"

	"kirana-service/internal/models"
	"kirana-service/internal/nlp"
	"kirana-service/internal/render"
	"kirana-service/internal/repository"
	"kirana-service/internal/whatsapp"
)

// IncomingMessage is one inbound WhatsApp message, provider-agnostic.
// Voice messages carry a MediaRef (a URL for WATI, a media id for the
// Cloud API) instead of text.
type IncomingMessage struct {
	Phone       string
	Text        string
	Voice       bool
	MediaRef    string
	MediaFormat string
	// DryRun suppresses WhatsApp delivery; the test endpoint returns the
	// reply in the HTTP response instead.
	DryRun bool
}

// Processor runs the whole pipeline for one message: transcribe,
// normalize, classify, execute, render. It never returns an error to the
// webhook; every failure becomes a reply the shopkeeper can act on.
type Processor interface {
	ProcessMessage(ctx context.Context, msg IncomingMessage) models.ProcessReply
}

type processor struct {
	shops       repository.ShopRepository
	normalizer  *nlp.Normalizer
	classifier  *nlp.Classifier
	transcriber *nlp.Transcriber
	sender      whatsapp.Sender
	commands    CommandService
	renderer    *render.Renderer
	monitoring  MonitoringService
	logger      *zap.Logger
}

// NewProcessor wires the pipeline. transcriber may be nil when no
// OpenAI key is configured; voice messages then get a polite refusal.
func NewProcessor(
	shops repository.ShopRepository,
	normalizer *nlp.Normalizer,
	classifier *nlp.Classifier,
	transcriber *nlp.Transcriber,
	sender whatsapp.Sender,
	commands CommandService,
	renderer *render.Renderer,
	monitoring MonitoringService,
	logger *zap.Logger,
) Processor {
	return &processor{
		shops:       shops,
		normalizer:  normalizer,
		classifier:  classifier,
		transcriber: transcriber,
		sender:      sender,
		commands:    commands,
		renderer:    renderer,
		monitoring:  monitoring,
		logger:      logger,
	}
}

func (p *processor) ProcessMessage(ctx context.Context, msg IncomingMessage) models.ProcessReply {
	start := time.Now()
	data := models.MessageData{Voice: msg.Voice, Timestamp: start}
	reply := p.process(ctx, msg, &data)

	data.Duration = time.Since(start)
	data.Success = reply.Success
	p.monitoring.RecordMessage(data)

	if reply.SendReply && reply.Message != "" && !msg.DryRun {
		if err := p.sender.SendText(ctx, msg.Phone, reply.Message); err != nil {
			p.logger.Error("reply delivery failed",
				zap.String("phone", msg.Phone), zap.Error(err))
		}
	}
	return reply
}

func (p *processor) process(ctx context.Context, msg IncomingMessage, data *models.MessageData) models.ProcessReply {
	logger := p.logger.With(zap.String("operation", "process_message"), zap.String("phone", msg.Phone))

	user, err := p.shops.GetUserByPhone(ctx, msg.Phone)
	if err != nil {
		logger.Error("user lookup failed", zap.Error(err))
		data.Error = err
		return systemErrorReply()
	}
	if user == nil || !user.Active {
		// Unregistered senders get no reply at all; replying would make
		// the bot a spam target.
		logger.Warn("message from unregistered phone")
		return models.ProcessReply{Success: false, SendReply: false, Error: "unregistered phone"}
	}

	text := msg.Text
	if msg.Voice {
		text = p.transcribeVoice(ctx, msg)
		if text == "" {
			return models.ProcessReply{
				Success:   false,
				SendReply: true,
				Message:   "🎤 Voice message samajh nahi aaya. Text mein likh ke bhejo please.",
			}
		}
		logger.Info("voice transcribed", zap.String("text", text))
	}

	// Multi-line scanner messages bypass the classifier entirely. The
	// raw text is used because normalization collapses newlines.
	if cmds, ok := nlp.ParseBatch(text); ok {
		data.Batch = true
		data.Action = "batch"
		result, err := p.commands.ExecuteBatch(ctx, user, cmds)
		if err != nil {
			logger.Error("batch execution failed", zap.Error(err))
			data.Error = err
			return systemErrorReply()
		}
		return models.ProcessReply{
			Success:   true,
			SendReply: true,
			Action:    "batch",
			Message:   p.renderer.Render(result, nlp.DetectLanguage(text)),
		}
	}

	normalized := p.normalizer.Normalize(text)
	cmd, llmUsed := p.classifier.Classify(ctx, normalized, text)
	data.Action = string(cmd.Action)
	data.LLMFallback = llmUsed
	lang := nlp.DetectLanguage(text)

	if cmd.Action == models.ActionUnknown || !cmd.IsValid() {
		if err := p.shops.LogUnrecognized(ctx, user.ShopID, user.Phone, text); err != nil {
			logger.Warn("unrecognized-command audit failed", zap.Error(err))
		}
		return models.ProcessReply{
			Success:   false,
			SendReply: true,
			Action:    string(models.ActionUnknown),
			Message:   clarifyMessage(lang),
		}
	}

	result, err := p.commands.Execute(ctx, user, cmd)
	if err != nil {
		logger.Error("command execution failed",
			zap.String("action", string(cmd.Action)), zap.Error(err))
		data.Error = err
		return systemErrorReply()
	}

	return models.ProcessReply{
		Success:   result.Ok(),
		SendReply: true,
		Action:    string(cmd.Action),
		Message:   p.renderer.Render(result, lang),
	}
}

func (p *processor) transcribeVoice(ctx context.Context, msg IncomingMessage) string {
	if p.transcriber == nil || msg.MediaRef == "" {
		return ""
	}
	// WATI hands over a direct URL; the Cloud API needs an authenticated
	// two-step download, so fetch the bytes through the provider client.
	if isURL(msg.MediaRef) {
		return p.transcriber.Transcribe(ctx, msg.MediaRef, msg.MediaFormat)
	}
	audio, err := p.sender.DownloadMedia(ctx, msg.MediaRef)
	if err != nil {
		p.logger.Error("voice media download failed", zap.Error(err))
		return ""
	}
	return p.transcriber.TranscribeBytes(ctx, audio, msg.MediaFormat)
}

func isURL(ref string) bool {
	return len(ref) > 8 && (ref[:7] == "http://" || ref[:8] == "https://")
}

func clarifyMessage(lang nlp.Language) string {
	if lang == nlp.LangHindi {
		return "🤔 Samajh nahi aaya. Aise likho:\n• Maggi 5 add karo\n• 3 Parle-G bik gaya\n• Cheeni kitni hai?\n\n'help' bhejo poori list ke liye."
	}
	return "🤔 I didn't understand that. Try:\n• add 5 Maggi\n• sold 3 Parle-G\n• how much Cheeni?\n\nSend 'help' for the full list."
}

func systemErrorReply() models.ProcessReply {
	return models.ProcessReply{
		Success:   false,
		SendReply: true,
		Message:   "⚠️ Kuch gadbad ho gayi, thodi der baad try karo. / Something went wrong, please try again.",
		Error:     "internal error",
	}
}
