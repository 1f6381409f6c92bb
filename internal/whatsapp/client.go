// Package whatsapp sends replies and fetches media through a WhatsApp
// provider. Two providers are supported: WATI (session messages) and the
// Meta Cloud API. Both speak plain HTTPS; the webhook side lives in the
// handlers package.
package whatsapp

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"go.uber.org/zap"

	"kirana-service/internal/config"
)

// maxMediaBytes caps voice-note downloads.
const maxMediaBytes = 16 << 20

// Sender delivers outbound messages and resolves inbound media.
type Sender interface {
	SendText(ctx context.Context, phone, text string) error
	DownloadMedia(ctx context.Context, mediaRef string) ([]byte, error)
}

// NewSender picks the provider from config. Unknown providers fall back
// to WATI, the default deployment.
func NewSender(cfg config.WhatsAppConfig, logger *zap.Logger) Sender {
	client := &http.Client{Timeout: 30 * time.Second}
	if cfg.Provider == "cloud" {
		return &cloudClient{cfg: cfg, http: client, logger: logger}
	}
	return &watiClient{cfg: cfg, http: client, logger: logger}
}

// ===== WATI =====

type watiClient struct {
	cfg    config.WhatsAppConfig
	http   *http.Client
	logger *zap.Logger
}

func (c *watiClient) SendText(ctx context.Context, phone, text string) error {
	endpoint := fmt.Sprintf("%s/api/v1/sendSessionMessage/%s?messageText=%s",
		c.cfg.APIBaseURL, url.PathEscape(phone), url.QueryEscape(text))
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, nil)
	if err != nil {
		return err
	}
	req.Header.Set("Authorization", "Bearer "+c.cfg.APIKey)

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("wati send: %w", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode >= 400 {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 1024))
		return fmt.Errorf("wati send: status %d: %s", resp.StatusCode, body)
	}
	c.logger.Debug("wati message sent", zap.String("phone", phone))
	return nil
}

// DownloadMedia fetches a WATI media URL; the webhook delivers the full
// URL in the payload.
func (c *watiClient) DownloadMedia(ctx context.Context, mediaRef string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, mediaRef, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Authorization", "Bearer "+c.cfg.APIKey)

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("wati media: %w", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("wati media: status %d", resp.StatusCode)
	}
	return io.ReadAll(io.LimitReader(resp.Body, maxMediaBytes))
}

// ===== Meta Cloud API =====

type cloudClient struct {
	cfg    config.WhatsAppConfig
	http   *http.Client
	logger *zap.Logger
}

type cloudTextMessage struct {
	MessagingProduct string    `json:"messaging_product"`
	To               string    `json:"to"`
	Type             string    `json:"type"`
	Text             cloudText `json:"text"`
}

type cloudText struct {
	Body string `json:"body"`
}

func (c *cloudClient) baseURL() string {
	if c.cfg.APIBaseURL != "" {
		return c.cfg.APIBaseURL
	}
	return "https://graph.facebook.com/v18.0"
}

func (c *cloudClient) SendText(ctx context.Context, phone, text string) error {
	payload := cloudTextMessage{
		MessagingProduct: "whatsapp",
		To:               phone,
		Type:             "text",
		Text:             cloudText{Body: text},
	}
	body, err := json.Marshal(payload)
	if err != nil {
		return err
	}

	endpoint := fmt.Sprintf("%s/%s/messages", c.baseURL(), c.cfg.PhoneID)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(body))
	if err != nil {
		return err
	}
	req.Header.Set("Authorization", "Bearer "+c.cfg.APIKey)
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("cloud send: %w", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode >= 400 {
		respBody, _ := io.ReadAll(io.LimitReader(resp.Body, 1024))
		return fmt.Errorf("cloud send: status %d: %s", resp.StatusCode, respBody)
	}
	c.logger.Debug("cloud message sent", zap.String("phone", phone))
	return nil
}

// DownloadMedia resolves a Cloud API media id to its URL, then fetches
// the bytes. Both calls need the bearer token.
func (c *cloudClient) DownloadMedia(ctx context.Context, mediaRef string) ([]byte, error) {
	metaURL := fmt.Sprintf("%s/%s", c.baseURL(), url.PathEscape(mediaRef))
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, metaURL, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Authorization", "Bearer "+c.cfg.APIKey)

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("cloud media meta: %w", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("cloud media meta: status %d", resp.StatusCode)
	}

	var meta struct {
		URL string `json:"url"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&meta); err != nil {
		return nil, fmt.Errorf("cloud media meta: %w", err)
	}
	if meta.URL == "" {
		return nil, fmt.Errorf("cloud media meta: empty url for %s", mediaRef)
	}

	dlReq, err := http.NewRequestWithContext(ctx, http.MethodGet, meta.URL, nil)
	if err != nil {
		return nil, err
	}
	dlReq.Header.Set("Authorization", "Bearer "+c.cfg.APIKey)

	dlResp, err := c.http.Do(dlReq)
	if err != nil {
		return nil, fmt.Errorf("cloud media download: %w", err)
	}
	defer dlResp.Body.Close()
	if dlResp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("cloud media download: status %d", dlResp.StatusCode)
	}
	return io.ReadAll(io.LimitReader(dlResp.Body, maxMediaBytes))
}
