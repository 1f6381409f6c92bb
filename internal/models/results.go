package models

import "time"

// Typed results, one per executor operation family. Each carries exactly
// the fields its renderer template needs; the renderer never digs into
// loosely-typed maps.

// ExecResult is implemented by every operation result.
type ExecResult interface {
	Ok() bool
	FailureMessage() string
}

// Failure is the generic unsuccessful outcome with a bilingual message.
type Failure struct {
	Message string `json:"message"`
}

func (f Failure) Ok() bool               { return false }
func (f Failure) FailureMessage() string { return f.Message }

type succeeded struct{}

func (succeeded) Ok() bool               { return true }
func (succeeded) FailureMessage() string { return "" }

// StockMutationResult covers add_stock and reduce_stock.
type StockMutationResult struct {
	succeeded
	ProductName   string  `json:"product_name"`
	Quantity      float64 `json:"quantity"`
	PreviousStock float64 `json:"previous_stock"`
	NewStock      float64 `json:"new_stock"`
	Unit          string  `json:"unit"`
	// Sale fields, only set for reductions with a known price.
	Revenue   float64 `json:"revenue,omitempty"`
	UnitPrice float64 `json:"unit_price,omitempty"`
	// Low-stock alert, fired only on the transition below threshold.
	LowStockAlert bool    `json:"low_stock_alert,omitempty"`
	Threshold     float64 `json:"threshold,omitempty"`
}

// CheckStockResult answers a stock query without mutating anything.
type CheckStockResult struct {
	succeeded
	ProductName  string  `json:"product_name"`
	CurrentStock float64 `json:"current_stock"`
	Unit         string  `json:"unit"`
}

// AdjustStockResult reports a corrected last entry for a product.
type AdjustStockResult struct {
	succeeded
	ProductName string  `json:"product_name"`
	OldQuantity float64 `json:"old_quantity"`
	NewQuantity float64 `json:"new_quantity"`
	Delta       float64 `json:"delta"`
	NewStock    float64 `json:"new_stock"`
	Unit        string  `json:"unit"`
}

// UndoResult reports the reversal of the shop's most recent transaction.
type UndoResult struct {
	succeeded
	ProductName   string          `json:"product_name"`
	UndoneType    TransactionType `json:"undone_type"`
	Quantity      float64         `json:"quantity"`
	RestoredStock float64         `json:"restored_stock"`
	Unit          string          `json:"unit"`
}

// UpdatePriceResult reports a selling price change.
type UpdatePriceResult struct {
	succeeded
	ProductName string  `json:"product_name"`
	OldPrice    float64 `json:"old_price"`
	NewPrice    float64 `json:"new_price"`
	HadOldPrice bool    `json:"had_old_price"`
}

// SetThresholdResult reports a low-stock threshold change.
type SetThresholdResult struct {
	succeeded
	ProductName string  `json:"product_name"`
	Threshold   float64 `json:"threshold"`
}

// ProductLine is one bullet line in list-style product replies.
type ProductLine struct {
	Name  string  `json:"name"`
	Stock float64 `json:"stock"`
	Unit  string  `json:"unit"`
	Price float64 `json:"price,omitempty"`
}

// ListProductsResult covers the full catalog and keyword-filtered listings.
type ListProductsResult struct {
	succeeded
	Products []ProductLine `json:"products"`
	Total    int           `json:"total"`
	// Filter is the keyword the listing was narrowed by, if any.
	Filter string `json:"filter,omitempty"`
}

// LowStockResult lists items at or below their threshold.
type LowStockResult struct {
	succeeded
	Products  []ProductLine `json:"products"`
	Threshold float64       `json:"threshold"`
	Total     int           `json:"total"`
}

// ProductSales is the per-product line of a sales summary.
type ProductSales struct {
	Name     string  `json:"name"`
	Quantity float64 `json:"quantity"`
	Revenue  float64 `json:"revenue"`
}

// SalesSummaryResult covers total_sales, report_summary and top_product_today.
type SalesSummaryResult struct {
	succeeded
	PeriodLabel    string         `json:"period_label"`
	From           time.Time      `json:"from"`
	To             time.Time      `json:"to"`
	TotalItemsSold float64        `json:"total_items_sold"`
	TotalRevenue   float64        `json:"total_revenue"`
	ProductsSold   []ProductSales `json:"products_sold"`
	// Top product, populated for top_product_today only.
	TopProductName     string  `json:"top_product_name,omitempty"`
	TopProductQuantity float64 `json:"top_product_quantity,omitempty"`
}

// ProfitResult is the revenue/cost/profit summary for a period.
type ProfitResult struct {
	succeeded
	PeriodLabel string    `json:"period_label"`
	From        time.Time `json:"from"`
	To          time.Time `json:"to"`
	Revenue     float64   `json:"revenue"`
	Cost        float64   `json:"cost"`
	Profit      float64   `json:"profit"`
	// CostKnown is false when no product had a stored cost price; profit
	// then defaults to revenue (best effort, not an error).
	CostKnown bool `json:"cost_known"`
}

// ZeroSaleResult lists stocked products with no sale today.
type ZeroSaleResult struct {
	succeeded
	Products []ProductLine `json:"products"`
	// Total is the true count; Products surfaces only the top entries.
	Total int `json:"total"`
}

// ExpiryItem is one product/batch with an expiry date.
type ExpiryItem struct {
	Name       string  `json:"name"`
	BatchID    string  `json:"batch_id,omitempty"`
	ExpiryDate string  `json:"expiry_date"`
	Qty        float64 `json:"qty"`
	Unit       string  `json:"unit"`
}

// ExpiryResult buckets expired and soon-to-expire items.
type ExpiryResult struct {
	succeeded
	Expired    []ExpiryItem `json:"expired"`
	Expiring   []ExpiryItem `json:"expiring"`
	WindowDays int          `json:"window_days"`
}

// StockoutPrediction is one predictive alert line.
type StockoutPrediction struct {
	Name          string  `json:"name"`
	CurrentStock  float64 `json:"current_stock"`
	Unit          string  `json:"unit"`
	DailyRate     float64 `json:"daily_rate"`
	DaysRemaining float64 `json:"days_remaining"`
	Urgency       string  `json:"urgency"` // critical | high | medium
}

// PredictiveAlertResult lists products predicted to stock out within a week.
type PredictiveAlertResult struct {
	succeeded
	Alerts []StockoutPrediction `json:"alerts"`
}

// PurchaseSuggestion is one reorder recommendation.
type PurchaseSuggestion struct {
	Name          string  `json:"name"`
	CurrentStock  float64 `json:"current_stock"`
	Unit          string  `json:"unit"`
	LastMonthSold float64 `json:"last_month_sold"`
	SuggestedQty  float64 `json:"suggested_qty"`
	Urgency       string  `json:"urgency"` // high | medium
}

// PurchaseSuggestionResult lists reorder recommendations.
type PurchaseSuggestionResult struct {
	succeeded
	Suggestions []PurchaseSuggestion `json:"suggestions"`
}

// SeasonalSuggestionResult lists stock-up ideas for a festival/season.
type SeasonalSuggestionResult struct {
	succeeded
	Festival string   `json:"festival"`
	Items    []string `json:"items"`
}

// UdharMutationResult covers add_udhar and pay_udhar.
type UdharMutationResult struct {
	succeeded
	CustomerName string  `json:"customer_name"`
	Amount       float64 `json:"amount"`
	Balance      float64 `json:"balance"`
	Payment      bool    `json:"payment"`
}

// UdharSummaryResult is the overall outstanding-credit listing.
type UdharSummaryResult struct {
	succeeded
	Customers []CustomerBalance `json:"customers"`
	Total     float64           `json:"total"`
}

// CustomerUdharResult is one customer's balance plus recent entries.
type CustomerUdharResult struct {
	succeeded
	CustomerName string       `json:"customer_name"`
	Balance      float64      `json:"balance"`
	Entries      []UdharEntry `json:"entries"`
}

// HelpResult carries no data; the renderer owns the help text.
type HelpResult struct {
	succeeded
}

// BatchResult concatenates the outcomes of a multi-line scanner message.
type BatchResult struct {
	succeeded
	Lines []BatchLineResult `json:"lines"`
}

// BatchLineResult is one executed line of a batch message.
type BatchLineResult struct {
	Barcode string     `json:"barcode"`
	Result  ExecResult `json:"result"`
}
