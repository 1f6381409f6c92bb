package nlp

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"time"

	"go.uber.org/zap"
)

// Transcriber turns a WhatsApp voice note into text through a
// Whisper-style transcription endpoint. The audio is used transiently;
// nothing is stored.
type Transcriber struct {
	apiKey  string
	baseURL string
	client  *http.Client
	logger  *zap.Logger
}

// NewTranscriber builds the transcription client.
func NewTranscriber(apiKey, baseURL string, timeout time.Duration, logger *zap.Logger) *Transcriber {
	if baseURL == "" {
		baseURL = "https://api.openai.com/v1"
	}
	return &Transcriber{
		apiKey:  apiKey,
		baseURL: baseURL,
		client:  &http.Client{Timeout: timeout},
		logger:  logger,
	}
}

// Transcribe downloads the audio and sends it for transcription with a
// Hindi language hint. Returns "" on any failure so the pipeline can
// answer with a "could not understand" message instead of crashing.
func (t *Transcriber) Transcribe(ctx context.Context, audioURL, format string) string {
	if format == "" {
		format = "ogg"
	}

	audio, err := t.download(ctx, audioURL)
	if err != nil {
		t.logger.Error("audio download failed", zap.String("url", audioURL), zap.Error(err))
		return ""
	}

	text, err := t.transcribe(ctx, audio, format)
	if err != nil {
		t.logger.Error("transcription failed", zap.Error(err))
		return ""
	}
	return text
}

// TranscribeBytes transcribes audio already fetched by the caller, used
// when the provider requires authenticated media downloads.
func (t *Transcriber) TranscribeBytes(ctx context.Context, audio []byte, format string) string {
	if format == "" {
		format = "ogg"
	}
	text, err := t.transcribe(ctx, audio, format)
	if err != nil {
		t.logger.Error("transcription failed", zap.Error(err))
		return ""
	}
	return text
}

func (t *Transcriber) download(ctx context.Context, url string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, err
	}
	resp, err := t.client.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("audio download returned status %d", resp.StatusCode)
	}
	return io.ReadAll(io.LimitReader(resp.Body, 16<<20))
}

func (t *Transcriber) transcribe(ctx context.Context, audio []byte, format string) (string, error) {
	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)

	part, err := w.CreateFormFile("file", "voice."+format)
	if err != nil {
		return "", err
	}
	if _, err := part.Write(audio); err != nil {
		return "", err
	}
	_ = w.WriteField("model", "whisper-1")
	// Hindi hint; the model still auto-detects English/Hinglish.
	_ = w.WriteField("language", "hi")
	if err := w.Close(); err != nil {
		return "", err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost,
		t.baseURL+"/audio/transcriptions", &buf)
	if err != nil {
		return "", err
	}
	req.Header.Set("Content-Type", w.FormDataContentType())
	req.Header.Set("Authorization", "Bearer "+t.apiKey)

	resp, err := t.client.Do(req)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		return "", fmt.Errorf("transcription returned status %d: %s", resp.StatusCode, string(body))
	}

	var out struct {
		Text string `json:"text"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return "", err
	}
	return out.Text, nil
}
