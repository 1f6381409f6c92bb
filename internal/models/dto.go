package models

// ===== WEBHOOK DTOs =====

// WatiWebhookPayload is the inbound message shape sent by WATI.
type WatiWebhookPayload struct {
	WaID     string `json:"waId"`
	Text     string `json:"text"`
	Type     string `json:"type"`
	Data     string `json:"data"`
	DataType string `json:"dataType"`
	Owner    bool   `json:"owner"`
}

// CloudWebhookPayload is the inbound envelope of the WhatsApp Cloud API.
type CloudWebhookPayload struct {
	Entry []struct {
		Changes []struct {
			Value struct {
				Messages []CloudMessage `json:"messages"`
			} `json:"value"`
		} `json:"changes"`
	} `json:"entry"`
}

// CloudMessage is one message inside a Cloud API webhook.
type CloudMessage struct {
	From string `json:"from"`
	Type string `json:"type"`
	Text *struct {
		Body string `json:"body"`
	} `json:"text,omitempty"`
	Audio *struct {
		ID       string `json:"id"`
		MimeType string `json:"mime_type"`
	} `json:"audio,omitempty"`
}

// ===== OPS API DTOs =====

// TestMessageRequest drives the pipeline from the test interface,
// bypassing the WhatsApp gateway.
type TestMessageRequest struct {
	Phone   string `json:"phone" validate:"required"`
	Message string `json:"message" validate:"required"`
}

// CreateProductRequest seeds a catalog entry through the ops API, with
// full detail the chat pipeline cannot capture (expiry, cost price).
type CreateProductRequest struct {
	Name              string   `json:"name" validate:"required"`
	Unit              string   `json:"unit"`
	Barcode           string   `json:"barcode" validate:"omitempty,numeric,min=8,max=16"`
	Brand             string   `json:"brand"`
	SellingPrice      *float64 `json:"selling_price" validate:"omitempty,gt=0"`
	CostPrice         *float64 `json:"cost_price" validate:"omitempty,gt=0"`
	InitialStock      float64  `json:"initial_stock" validate:"gte=0"`
	LowStockThreshold *float64 `json:"low_stock_threshold" validate:"omitempty,gt=0"`
	ExpiryDate        string   `json:"expiry_date"`
}

// StockOpRequest drives add/reduce stock through the REST surface.
type StockOpRequest struct {
	ProductName string  `json:"product_name" validate:"required"`
	Quantity    float64 `json:"quantity" validate:"required,gt=0"`
	UserPhone   string  `json:"user_phone" validate:"required"`
}

// ===== RESPONSE ENVELOPES =====

// APIResponse is the generic ops API envelope.
type APIResponse struct {
	Success bool        `json:"success"`
	Message string      `json:"message,omitempty"`
	Data    interface{} `json:"data,omitempty"`
	Error   string      `json:"error,omitempty"`
}

// ProcessReply is what the pipeline hands back to the webhook layer.
type ProcessReply struct {
	Success   bool   `json:"success"`
	Message   string `json:"message"`
	SendReply bool   `json:"send_reply"`
	Action    string `json:"action,omitempty"`
	Error     string `json:"error,omitempty"`
}
