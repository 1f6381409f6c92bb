package nlp

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"regexp"
	"strings"
	"time"

	"github.com/spf13/cast"
	"go.uber.org/zap"

	"kirana-service/internal/models"
)

// LLMClient is the schema-constrained chat-completion fallback used when
// no heuristic rule matches. It must fail soft: any transport or parse
// error surfaces as an error and the cascade degrades to unknown.
type LLMClient struct {
	apiKey  string
	model   string
	baseURL string
	client  *http.Client
	logger  *zap.Logger
}

// NewLLMClient builds the fallback parser.
func NewLLMClient(apiKey, model, baseURL string, timeout time.Duration, logger *zap.Logger) *LLMClient {
	if baseURL == "" {
		baseURL = "https://api.openai.com/v1"
	}
	return &LLMClient{
		apiKey:  apiKey,
		model:   model,
		baseURL: baseURL,
		client:  &http.Client{Timeout: timeout},
		logger:  logger,
	}
}

// classifySystemPrompt documents every action with example phrasings in
// English, Hindi and Devanagari, and pins the JSON response schema.
const classifySystemPrompt = `You are an AI assistant for a Kirana (grocery) shop inventory management system.
Your job is to understand natural language messages in Hindi, English, or Hinglish and extract:
1. action: one of the actions listed below
2. product_name: the product (or customer name for udhar actions, or festival for seasonal_suggestion) if applicable
3. quantity: the quantity / amount / price mentioned (if applicable). For "adjust_stock", quantity is the CORRECT quantity for the last entry (e.g. "Maggi 3 nahi 1 the" means quantity 1).

Actions and examples:
- add_stock: "Add 10 Maggi" / "10 Maggi add karo" / "20 kg atta aaya hai" / "१० मैगी जोड़ो"
- reduce_stock: "2 oil sold" / "2 oil bik gaya" / "Customer ne 3 cold drink liya"
- check_stock: "Kitna stock hai atta?" / "Maggi ka stock batao" / "आटा कितना है"
- total_sales: "Aaj ka total sale kitna hai?" / "Aaj kitna bika?"
- today_profit: "Aaj ka profit batao" / "munafa kitna hua aaj"
- weekly_profit: "Is hafte ka profit" / "weekly munafa"
- monthly_profit: "Is mahine ka profit" / "monthly profit batao"
- yearly_profit: "Is saal ka munafa" / "yearly profit"
- list_products: "Product list dikhao" / "saare products batao"
- low_stock: "Kaunse items kam hain?" / "low stock dikhao"
- adjust_stock: "Galat entry ho gayi, Maggi 3 nahi 1 the" (product Maggi, quantity 1) / "Oil 5 nahi 2 tha"
- update_price: "Maggi ka price 14 kar do" / "atta ka rate 45"
- set_low_stock_threshold: "Maggi minimum stock 5 rakho"
- top_product_today: "Aaj sabse zyada kya bika?"
- zero_sale_today: "Aaj kya nahi bika?"
- expiry_products: "Kaunse product expire ho rahe hain?"
- purchase_suggestion: "Kya mangwana chahiye?"
- predictive_alert: "Kaunsa stock kab khatam hoga?"
- seasonal_suggestion: "Diwali ke liye kya rakhna chahiye?" (product_name is the festival)
- undo_last: "Galat ho gaya, undo karo" / "pichla wala hatao"
- add_udhar: "Udhar Ramesh 200" / "Ramesh ko 200 ka udhar diya"
- pay_udhar: "Udhar pay Ramesh 200" / "Ramesh ne 200 wapas kiye"
- list_udhar: "Sab udhar dikhao" / "udhar list"
- customer_udhar: "Ramesh ka udhar kitna hai?"
- report_summary: "Aaj ka hisaab" / "monthly report"
- help: "Help" / "madad karo"
- unknown: anything else

Be VERY flexible and understand the INTENT, not just exact phrases.

Return ONLY a JSON object with this exact structure:
{
    "action": "<one of the actions above>",
    "product_name": "name" or null,
    "quantity": number or null,
    "confidence": 0.0 to 1.0
}

Do not include any explanation, just the JSON.`

type chatRequest struct {
	Model          string        `json:"model"`
	Messages       []chatMessage `json:"messages"`
	Temperature    float64       `json:"temperature"`
	ResponseFormat *struct {
		Type string `json:"type"`
	} `json:"response_format,omitempty"`
}

type chatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type chatResponse struct {
	Choices []struct {
		Message struct {
			Content string `json:"content"`
		} `json:"message"`
	} `json:"choices"`
}

// jsonObjectRe fishes a JSON object out of a reply that ignored the
// "JSON only" instruction.
var jsonObjectRe = regexp.MustCompile(`(?s)\{.*\}`)

// ParseCommand asks the model to classify the message. Every field of the
// response is decoded defensively; an unparseable action degrades to
// unknown with confidence 0.
func (c *LLMClient) ParseCommand(ctx context.Context, message string) (models.Command, error) {
	reqBody := chatRequest{
		Model: c.model,
		Messages: []chatMessage{
			{Role: "system", Content: classifySystemPrompt},
			{Role: "user", Content: "Parse this message: " + message},
		},
		Temperature: 0.3,
		ResponseFormat: &struct {
			Type string `json:"type"`
		}{Type: "json_object"},
	}

	payload, err := json.Marshal(reqBody)
	if err != nil {
		return models.Command{}, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost,
		c.baseURL+"/chat/completions", bytes.NewReader(payload))
	if err != nil {
		return models.Command{}, err
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+c.apiKey)

	resp, err := c.client.Do(req)
	if err != nil {
		return models.Command{}, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		return models.Command{}, fmt.Errorf("chat completion returned status %d: %s", resp.StatusCode, string(body))
	}

	var cr chatResponse
	if err := json.NewDecoder(resp.Body).Decode(&cr); err != nil {
		return models.Command{}, err
	}
	if len(cr.Choices) == 0 {
		return models.Command{}, fmt.Errorf("chat completion returned no choices")
	}

	return c.decodeCommand(cr.Choices[0].Message.Content, message)
}

// decodeCommand parses the model's JSON leniently: loose numeric types,
// missing fields, and prose around the JSON object are all tolerated.
func (c *LLMClient) decodeCommand(content, original string) (models.Command, error) {
	raw := strings.TrimSpace(content)
	if m := jsonObjectRe.FindString(raw); m != "" {
		raw = m
	}

	var fields map[string]interface{}
	if err := json.Unmarshal([]byte(raw), &fields); err != nil {
		return models.Command{}, fmt.Errorf("unparseable LLM response: %w", err)
	}

	cmd := models.Command{
		Action:      models.ParseCommandAction(cast.ToString(fields["action"])),
		ProductName: strings.TrimSpace(cast.ToString(fields["product_name"])),
		Quantity:    cast.ToFloat64(fields["quantity"]),
		Confidence:  cast.ToFloat64(fields["confidence"]),
		RawMessage:  original,
	}
	if cmd.Action == models.ActionUnknown {
		cmd.Confidence = 0
	}
	c.logger.Debug("LLM classified message",
		zap.String("action", string(cmd.Action)),
		zap.Float64("confidence", cmd.Confidence))
	return cmd, nil
}
