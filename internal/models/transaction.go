package models

import (
	"time"
)

// TransactionType classifies inventory ledger entries.
type TransactionType string

const (
	TxAddStock    TransactionType = "add_stock"
	TxReduceStock TransactionType = "reduce_stock"
	TxSale        TransactionType = "sale"
	TxAdjustment  TransactionType = "adjustment"
)

// Transaction is an immutable ledger entry for a stock mutation.
// NewStock = PreviousStock ± Quantity per the type's sign convention and
// never goes negative. The most recent transaction per product is the
// target of adjust/undo.
type Transaction struct {
	ID            string          `json:"id" db:"id"`
	ShopID        string          `json:"shop_id" db:"shop_id"`
	ProductID     string          `json:"product_id" db:"product_id"`
	ProductName   string          `json:"product_name" db:"product_name"`
	Type          TransactionType `json:"type" db:"type"`
	Quantity      float64         `json:"quantity" db:"quantity"`
	PreviousStock float64         `json:"previous_stock" db:"previous_stock"`
	NewStock      float64         `json:"new_stock" db:"new_stock"`
	UnitPrice     *float64        `json:"unit_price,omitempty" db:"unit_price"`
	TotalAmount   *float64        `json:"total_amount,omitempty" db:"total_amount"`
	UserPhone     string          `json:"user_phone" db:"user_phone"`
	Timestamp     time.Time       `json:"timestamp" db:"timestamp"`
	Notes         *string         `json:"notes,omitempty" db:"notes"`
}

// IsSale reports whether the entry counts towards sales aggregation.
func (t *Transaction) IsSale() bool {
	return t.Type == TxReduceStock || t.Type == TxSale
}

// Revenue returns the sale amount, preferring the stored total.
func (t *Transaction) Revenue() float64 {
	if t.TotalAmount != nil {
		return *t.TotalAmount
	}
	if t.UnitPrice != nil {
		return *t.UnitPrice * t.Quantity
	}
	return 0
}
