package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// Event types
const (
	EventTypeOrderCreated   = "ORDER_CREATED"
	EventTypeOrderConfirmed = "ORDER_CONFIRMED"
	EventTypeOrderCancelled = "ORDER_CANCELLED"
	EventTypeOrderRefunded  = "ORDER_REFUNDED"
)

// BaseEvent contains common fields for all events
type BaseEvent struct {
	EventID   string    `json:"event_id"`
	EventType string    `json:"event_type"`
	Timestamp time.Time `json:"timestamp"`
}

// OrderItemData represents item data in events
type OrderItemData struct {
	ProductID string          `json:"product_id"`
	Name      string          `json:"name"`
	Size      string          `json:"size"`
	Quantity  int             `json:"quantity"`
	UnitPrice decimal.Decimal `json:"unit_price"`
}

// OrderCreatedEvent is published after the checkout transaction commits.
// The notification worker turns it into the operator message.
type OrderCreatedEvent struct {
	BaseEvent
	OrderID        string          `json:"order_id"`
	UserID         string          `json:"user_id"`
	CustomerName   string          `json:"customer_name"`
	Phone          string          `json:"phone"`
	Address        string          `json:"address"`
	Total          decimal.Decimal `json:"total"`
	PaymentMethod  string          `json:"payment_method"`
	ShippingMethod string          `json:"shipping_method"`
	Items          []OrderItemData `json:"items"`
}

// OrderConfirmedEvent is published when a verified webhook confirms payment.
type OrderConfirmedEvent struct {
	BaseEvent
	OrderID       string          `json:"order_id"`
	FawryRefNum   string          `json:"fawry_ref_num"`
	PaymentMethod string          `json:"payment_method"`
	Amount        decimal.Decimal `json:"amount"`
}

// OrderCancelledEvent is published when the gateway reports a failed,
// expired or cancelled payment.
type OrderCancelledEvent struct {
	BaseEvent
	OrderID string `json:"order_id"`
	Reason  string `json:"reason"`
}

// OrderRefundedEvent is published when the gateway reports a refund.
type OrderRefundedEvent struct {
	BaseEvent
	OrderID     string          `json:"order_id"`
	FawryRefNum string          `json:"fawry_ref_num"`
	Amount      decimal.Decimal `json:"amount"`
}
