package models

import (
	"database/sql"
	"time"

	"github.com/shopspring/decimal"
)

// Product is the catalog snapshot read at checkout time. The catalog itself
// is owned by the storefront; this service only reads price, sale price and
// stock inside the checkout transaction.
type Product struct {
	ID        string              `db:"id" json:"id"`
	NameAr    string              `db:"name_ar" json:"name_ar"`
	NameEn    string              `db:"name_en" json:"name_en"`
	Price     decimal.Decimal     `db:"price" json:"price"`
	SalePrice decimal.NullDecimal `db:"sale_price" json:"sale_price,omitempty"`
	Stock     int                 `db:"stock" json:"stock"`
	ImageURL  sql.NullString      `db:"image_url" json:"image_url,omitempty"`
	CreatedAt time.Time           `db:"created_at" json:"created_at"`
}

// EffectiveUnitPrice returns the price actually charged: the sale price when
// one is set and not above the base price, else the base price.
func (p *Product) EffectiveUnitPrice() decimal.Decimal {
	if p.SalePrice.Valid && p.SalePrice.Decimal.LessThanOrEqual(p.Price) {
		return p.SalePrice.Decimal
	}
	return p.Price
}

// CartItem is a line in a user's cart. Destroyed on successful checkout.
// Color is "" for items without one; the column is NOT NULL so that the
// (user, product, size, color) uniqueness holds for colorless lines too.
type CartItem struct {
	ID        string    `db:"id" json:"id"`
	UserID    string    `db:"user_id" json:"user_id"`
	ProductID string    `db:"product_id" json:"product_id"`
	Size      string    `db:"size" json:"size"`
	Color     string    `db:"color" json:"color,omitempty"`
	Quantity  int       `db:"quantity" json:"quantity"`
	CreatedAt time.Time `db:"created_at" json:"created_at"`
}

// CartLine is a cart item joined with its product, as loaded (and locked)
// inside the checkout transaction.
type CartLine struct {
	CartItemID string              `db:"cart_item_id"`
	ProductID  string              `db:"product_id"`
	Size       string              `db:"size"`
	Color      string              `db:"color"`
	Quantity   int                 `db:"quantity"`
	NameAr     string              `db:"name_ar"`
	NameEn     string              `db:"name_en"`
	Price      decimal.Decimal     `db:"price"`
	SalePrice  decimal.NullDecimal `db:"sale_price"`
	Stock      int                 `db:"stock"`
	ImageURL   sql.NullString      `db:"image_url"`
}

// UnitPrice returns the price charged for this line.
func (l *CartLine) UnitPrice() decimal.Decimal {
	if l.SalePrice.Valid && l.SalePrice.Decimal.LessThanOrEqual(l.Price) {
		return l.SalePrice.Decimal
	}
	return l.Price
}

// Order is created exactly once per successful checkout transaction. Total
// is computed server-side at creation time and never recomputed.
type Order struct {
	ID             string          `db:"id" json:"id"`
	UserID         string          `db:"user_id" json:"user_id"`
	Status         string          `db:"status" json:"status"`
	Total          decimal.Decimal `db:"total" json:"total"`
	FullName       string          `db:"full_name" json:"full_name"`
	Address1       string          `db:"address1" json:"address1"`
	Address2       sql.NullString  `db:"address2" json:"address2,omitempty"`
	City           string          `db:"city" json:"city"`
	Phone          string          `db:"phone" json:"phone"`
	PaymentMethod  string          `db:"payment_method" json:"payment_method"`
	ShippingMethod string          `db:"shipping_method" json:"shipping_method"`
	Notes          sql.NullString  `db:"notes" json:"notes,omitempty"`
	TransactionID  sql.NullString  `db:"transaction_id" json:"transaction_id,omitempty"`
	CreatedAt      time.Time       `db:"created_at" json:"created_at"`
	UpdatedAt      time.Time       `db:"updated_at" json:"updated_at"`
}

// OrderItem is the immutable purchase-time snapshot of a cart line. Created
// atomically with its order, never mutated.
type OrderItem struct {
	ID        string          `db:"id" json:"id"`
	OrderID   string          `db:"order_id" json:"order_id"`
	ProductID string          `db:"product_id" json:"product_id"`
	NameAr    string          `db:"name_ar" json:"name_ar"`
	NameEn    string          `db:"name_en" json:"name_en"`
	UnitPrice decimal.Decimal `db:"unit_price" json:"unit_price"`
	Size      string          `db:"size" json:"size"`
	Color     sql.NullString  `db:"color" json:"color,omitempty"`
	Quantity  int             `db:"quantity" json:"quantity"`
	ImageURL  sql.NullString  `db:"image_url" json:"image_url,omitempty"`
}

// Profile carries the user's last used shipping details, synced best-effort
// after checkout commits.
type Profile struct {
	ID        string         `db:"id" json:"id"`
	FullName  string         `db:"full_name" json:"full_name"`
	Phone     string         `db:"phone" json:"phone"`
	Address1  string         `db:"address1" json:"address1"`
	Address2  sql.NullString `db:"address2" json:"address2,omitempty"`
	City      string         `db:"city" json:"city"`
	UpdatedAt time.Time      `db:"updated_at" json:"updated_at"`
}

// Order statuses
const (
	OrderStatusPending   = "pending"
	OrderStatusConfirmed = "confirmed"
	OrderStatusCancelled = "cancelled"
	OrderStatusRefunded  = "refunded"
	OrderStatusDelivered = "delivered" // set by fulfillment, never by this service
)

// ValidTransition reports whether an order may move from one status to
// another. Self-transitions are not listed here; callers treat them as
// idempotent no-ops.
func ValidTransition(from, to string) bool {
	switch from {
	case OrderStatusPending:
		return to == OrderStatusConfirmed || to == OrderStatusCancelled
	case OrderStatusConfirmed:
		return to == OrderStatusRefunded
	}
	return false
}
