package models

import (
	"strings"
	"time"
)

// Product represents a catalog entry for a shop.
type Product struct {
	ID                string             `json:"id" db:"id"`
	ShopID            string             `json:"shop_id" db:"shop_id"`
	Name              string             `json:"name" db:"name"`
	NormalizedName    string             `json:"normalized_name" db:"normalized_name"`
	CurrentStock      float64            `json:"current_stock" db:"current_stock"`
	Unit              string             `json:"unit" db:"unit"`
	Brand             *string            `json:"brand,omitempty" db:"brand"`
	Barcode           *string            `json:"barcode,omitempty" db:"barcode"`
	SellingPrice      *float64           `json:"selling_price,omitempty" db:"selling_price"`
	CostPrice         *float64           `json:"cost_price,omitempty" db:"cost_price"`
	LowStockThreshold *float64           `json:"low_stock_threshold,omitempty" db:"low_stock_threshold"`
	// Single expiry date for the whole product (legacy/simple mode).
	ExpiryDate *string `json:"expiry_date,omitempty" db:"expiry_date"`
	// Per-batch expiry/quantity info. A product with usable batch data is
	// never double-counted through ExpiryDate.
	Batches   map[string]Batch `json:"batches,omitempty"`
	CreatedAt time.Time        `json:"created_at" db:"created_at"`
	UpdatedAt time.Time        `json:"updated_at" db:"updated_at"`
}

// Batch is one received lot of a product with its own expiry and quantity.
type Batch struct {
	ExpiryDate string   `json:"expiry"`
	Qty        float64  `json:"qty"`
	CostPrice  *float64 `json:"cost_price,omitempty"`
}

// NormalizeName builds the canonical lookup key for a product name.
func NormalizeName(name string) string {
	return strings.ToLower(strings.TrimSpace(name))
}

// Threshold returns the configured low-stock threshold or the default.
func (p *Product) Threshold(defaultThreshold float64) float64 {
	if p.LowStockThreshold != nil {
		return *p.LowStockThreshold
	}
	return defaultThreshold
}

// Shop represents a registered kirana shop.
type Shop struct {
	ShopID     string    `json:"shop_id" db:"shop_id"`
	Name       string    `json:"name" db:"name"`
	OwnerPhone string    `json:"owner_phone" db:"owner_phone"`
	Address    *string   `json:"address,omitempty" db:"address"`
	Active     bool      `json:"active" db:"active"`
	CreatedAt  time.Time `json:"created_at" db:"created_at"`
}

// UserRole distinguishes shop owners from staff.
type UserRole string

const (
	RoleOwner UserRole = "owner"
	RoleStaff UserRole = "staff"
)

// User represents a shop owner or staff member, keyed by phone.
type User struct {
	UserID    string    `json:"user_id" db:"user_id"`
	Phone     string    `json:"phone" db:"phone"`
	Name      string    `json:"name" db:"name"`
	ShopID    string    `json:"shop_id" db:"shop_id"`
	Role      UserRole  `json:"role" db:"role"`
	Active    bool      `json:"active" db:"active"`
	CreatedAt time.Time `json:"created_at" db:"created_at"`
}
