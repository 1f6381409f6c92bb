package services

import (
	"context"
	"strings"
	"testing"
	"time"

	"go.uber.org/zap"

	"kirana-service/internal/cache"
	"kirana-service/internal/config"
	"kirana-service/internal/models"
	"kirana-service/internal/nlp"
	"kirana-service/internal/render"
	"kirana-service/internal/repository/memory"
	"kirana-service/internal/resolver"
)

// fakeSender records outbound replies instead of calling WhatsApp.
type fakeSender struct {
	sent []string
	to   []string
}

func (f *fakeSender) SendText(ctx context.Context, phone, text string) error {
	f.to = append(f.to, phone)
	f.sent = append(f.sent, text)
	return nil
}

func (f *fakeSender) DownloadMedia(ctx context.Context, mediaID string) ([]byte, error) {
	return nil, nil
}

type pipelineHarness struct {
	store      *memory.Store
	sender     *fakeSender
	processor  Processor
	monitoring MonitoringService
	user       *models.User
}

func newPipelineHarness(t *testing.T) *pipelineHarness {
	t.Helper()
	store := memory.New()
	logger := zap.NewNop()
	catalog := cache.NewCatalogCache(nil, 100, time.Minute, logger)
	res := resolver.New(store.Products(), catalog, logger)

	reports := NewReportService(store.Products(), store.Transactions(), 30, logger)
	udhar := NewUdharService(store.Udhar(), logger)
	commands := NewCommandService(store.Products(), store.Transactions(), res, catalog, reports, udhar, 10, logger)
	monitoring := NewMonitoringService(logger, &config.Config{}, nil, nil, catalog)

	sender := &fakeSender{}
	proc := NewProcessor(
		store.Shops(),
		nlp.NewNormalizer(),
		nlp.NewClassifier(nil, logger),
		nil, // no transcriber in tests
		sender,
		commands,
		render.New(),
		monitoring,
		logger,
	)

	user := &models.User{
		UserID: "user-1",
		Phone:  "+919876500001",
		Name:   "Ramu",
		ShopID: "shop-1",
		Role:   models.RoleOwner,
		Active: true,
	}
	store.AddUser(user)
	return &pipelineHarness{store: store, sender: sender, processor: proc, monitoring: monitoring, user: user}
}

func TestProcessMessageEndToEnd(t *testing.T) {
	h := newPipelineHarness(t)

	reply := h.processor.ProcessMessage(context.Background(), IncomingMessage{
		Phone: h.user.Phone,
		Text:  "Maggi 5 add karo",
	})
	if !reply.Success || !reply.SendReply {
		t.Fatalf("got %+v", reply)
	}
	if !strings.Contains(reply.Message, "Maggi") {
		t.Errorf("reply = %q, should name the product", reply.Message)
	}
	if len(h.sender.sent) != 1 || h.sender.to[0] != h.user.Phone {
		t.Fatalf("expected one WhatsApp reply, got %v", h.sender.to)
	}

	reply = h.processor.ProcessMessage(context.Background(), IncomingMessage{
		Phone: h.user.Phone,
		Text:  "Maggi kitna hai",
	})
	if !reply.Success || !strings.Contains(reply.Message, "5") {
		t.Fatalf("check reply = %+v", reply)
	}
}

func TestProcessMessageUnregisteredPhoneGetsNoReply(t *testing.T) {
	h := newPipelineHarness(t)

	reply := h.processor.ProcessMessage(context.Background(), IncomingMessage{
		Phone: "+910000000000",
		Text:  "Maggi 5 add karo",
	})
	if reply.SendReply || reply.Success {
		t.Fatalf("got %+v, want silence for strangers", reply)
	}
	if len(h.sender.sent) != 0 {
		t.Fatalf("no WhatsApp message should go out, sent %v", h.sender.sent)
	}
}

func TestProcessMessageBatch(t *testing.T) {
	h := newPipelineHarness(t)

	reply := h.processor.ProcessMessage(context.Background(), IncomingMessage{
		Phone: h.user.Phone,
		Text:  "8901000000001 +10\n8901000000002 +6",
	})
	if !reply.Success || reply.Action != "batch" {
		t.Fatalf("got %+v", reply)
	}
	if !strings.Contains(reply.Message, "Batch update (2 items)") {
		t.Errorf("reply = %q", reply.Message)
	}

	metrics := h.monitoring.GetMetrics(context.Background())
	if metrics.Pipeline.BatchMessages != 1 {
		t.Errorf("batch counter = %d, want 1", metrics.Pipeline.BatchMessages)
	}
}

func TestProcessMessageUnrecognizedGetsClarification(t *testing.T) {
	h := newPipelineHarness(t)

	reply := h.processor.ProcessMessage(context.Background(), IncomingMessage{
		Phone: h.user.Phone,
		Text:  "yeh sab kuch theek karna hamko",
	})
	if reply.Success {
		t.Fatal("unrecognized input must not count as success")
	}
	if !reply.SendReply || reply.Message == "" {
		t.Fatalf("got %+v, want a clarifying reply", reply)
	}
	if h.store.UnrecognizedCount() != 1 {
		t.Errorf("unrecognized audit count = %d, want 1", h.store.UnrecognizedCount())
	}

	metrics := h.monitoring.GetMetrics(context.Background())
	if metrics.Pipeline.Unrecognized != 1 {
		t.Errorf("unrecognized metric = %d, want 1", metrics.Pipeline.Unrecognized)
	}
}

func TestProcessMessageDryRunSkipsDelivery(t *testing.T) {
	h := newPipelineHarness(t)

	reply := h.processor.ProcessMessage(context.Background(), IncomingMessage{
		Phone:  h.user.Phone,
		Text:   "Maggi 5 add karo",
		DryRun: true,
	})
	if !reply.Success || reply.Message == "" {
		t.Fatalf("got %+v", reply)
	}
	if len(h.sender.sent) != 0 {
		t.Fatalf("dry run must not deliver, sent %v", h.sender.sent)
	}
}

func TestProcessMessageVoiceWithoutTranscriberRefuses(t *testing.T) {
	h := newPipelineHarness(t)

	reply := h.processor.ProcessMessage(context.Background(), IncomingMessage{
		Phone:    h.user.Phone,
		Voice:    true,
		MediaRef: "https://example.com/audio.ogg",
	})
	if reply.Success {
		t.Fatal("voice without a transcriber must fail")
	}
	if !strings.Contains(reply.Message, "Voice") {
		t.Errorf("reply = %q", reply.Message)
	}
}

func TestProcessMessageRepliesInHindi(t *testing.T) {
	h := newPipelineHarness(t)
	h.processor.ProcessMessage(context.Background(), IncomingMessage{Phone: h.user.Phone, Text: "Maggi 5 add karo"})

	reply := h.processor.ProcessMessage(context.Background(), IncomingMessage{
		Phone: h.user.Phone,
		Text:  "2 Maggi bik gaya aaj",
	})
	if !reply.Success {
		t.Fatalf("got %+v", reply)
	}
	if !strings.Contains(reply.Message, "bik gaya") {
		t.Errorf("reply = %q, want the Hindi template", reply.Message)
	}
}
