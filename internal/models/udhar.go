package models

import (
	"time"
)

// UdharEntry is one credit ledger row for a named customer.
//
// Positive amount: goods given on credit (customer owes the shop).
// Negative amount: payment received (reduces the outstanding balance).
// A customer's balance is the signed sum of all their entries; balances
// within ±0.01 are treated as settled.
type UdharEntry struct {
	ID           string    `json:"id" db:"id"`
	ShopID       string    `json:"shop_id" db:"shop_id"`
	CustomerKey  string    `json:"customer_key" db:"customer_key"`
	CustomerName string    `json:"customer_name" db:"customer_name"`
	Amount       float64   `json:"amount" db:"amount"`
	Timestamp    time.Time `json:"timestamp" db:"timestamp"`
	UserPhone    string    `json:"user_phone" db:"user_phone"`
	Note         *string   `json:"note,omitempty" db:"note"`
}

// UdharSettledEpsilon is the tolerance below which a balance counts as paid.
const UdharSettledEpsilon = 0.01

// CustomerBalance is an aggregated outstanding balance for one customer.
type CustomerBalance struct {
	CustomerKey  string  `json:"customer_key"`
	CustomerName string  `json:"customer_name"`
	Balance      float64 `json:"balance"`
	Entries      int     `json:"entries"`
}
