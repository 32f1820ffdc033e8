package fawry

import (
	"bytes"
	"crypto/sha256"
	"crypto/subtle"
	"encoding/hex"
	"errors"
	"strings"

	"github.com/shopspring/decimal"
)

// ErrInvalidSignature rejects a notification whose signature does not match
// the recomputed one. This is the security boundary against forged payment
// confirmations; callers must never retry it.
var ErrInvalidSignature = errors.New("invalid webhook signature")

// PaymentStatus is the closed set of gateway order statuses. Parsing into
// an enum keeps the mapping onto order lifecycle states exhaustive; an
// unrecognized code surfaces as StatusUnknown instead of disappearing.
type PaymentStatus int

const (
	StatusUnknown PaymentStatus = iota
	StatusNew
	StatusPaid
	StatusCanceled
	StatusExpired
	StatusFailed
	StatusRefunded
	StatusDelivered
)

var statusNames = map[PaymentStatus]string{
	StatusUnknown:   "UNKNOWN",
	StatusNew:       "NEW",
	StatusPaid:      "PAID",
	StatusCanceled:  "CANCELED",
	StatusExpired:   "EXPIRED",
	StatusFailed:    "FAILED",
	StatusRefunded:  "REFUNDED",
	StatusDelivered: "DELIVERED",
}

func (s PaymentStatus) String() string {
	if name, ok := statusNames[s]; ok {
		return name
	}
	return "UNKNOWN"
}

// ParsePaymentStatus maps a gateway status code onto the enum.
func ParsePaymentStatus(raw string) PaymentStatus {
	switch strings.ToUpper(strings.TrimSpace(raw)) {
	case "NEW":
		return StatusNew
	case "PAID":
		return StatusPaid
	case "CANCELED":
		return StatusCanceled
	case "EXPIRED":
		return StatusExpired
	case "FAILED":
		return StatusFailed
	case "REFUNDED":
		return StatusRefunded
	case "DELIVERED":
		return StatusDelivered
	}
	return StatusUnknown
}

// Notification is the server-to-server callback body the gateway posts
// after a payment event. Field names (including the misspelled
// paymentRefrenceNumber) follow the gateway's wire format exactly.
type Notification struct {
	RequestID         string          `json:"requestId"`
	FawryRefNumber    string          `json:"fawryRefNumber"`
	MerchantRefNumber string          `json:"merchantRefNumber"`
	CustomerMobile    string          `json:"customerMobile,omitempty"`
	CustomerMail      string          `json:"customerMail,omitempty"`
	PaymentAmount     decimal.Decimal `json:"paymentAmount"`
	OrderAmount       decimal.Decimal `json:"orderAmount"`
	FawryFees         decimal.Decimal `json:"fawryFees,omitempty"`
	ShippingFees      decimal.Decimal `json:"shippingFees,omitempty"`
	OrderStatus       string          `json:"orderStatus"`
	PaymentMethod     string          `json:"paymentMethod"`
	PaymentRefNumber  string          `json:"paymentRefrenceNumber,omitempty"`
	MessageSignature  string          `json:"messageSignature"`
	OrderExpiryDate   int64           `json:"orderExpiryDate,omitempty"`
}

// Status returns the parsed gateway status.
func (n *Notification) Status() PaymentStatus {
	return ParsePaymentStatus(n.OrderStatus)
}

// NotificationSignature computes the expected notification signature:
// SHA-256 hex over fawryRefNumber + merchantRefNumber + paymentAmount +
// orderAmount + orderStatus + paymentMethod + paymentReferenceNumber +
// secureKey, amounts to exactly two decimal places.
func (s *Signer) NotificationSignature(n *Notification) string {
	var buf bytes.Buffer
	buf.WriteString(n.FawryRefNumber)
	buf.WriteString(n.MerchantRefNumber)
	buf.WriteString(n.PaymentAmount.StringFixed(2))
	buf.WriteString(n.OrderAmount.StringFixed(2))
	buf.WriteString(n.OrderStatus)
	buf.WriteString(n.PaymentMethod)
	buf.WriteString(n.PaymentRefNumber)
	buf.WriteString(s.secureKey)

	sum := sha256.Sum256(buf.Bytes())
	return hex.EncodeToString(sum[:])
}

// VerifyNotification recomputes the signature and compares it to the one
// the callback carries (hex case does not matter). Returns
// ErrInvalidSignature on mismatch.
func (s *Signer) VerifyNotification(n *Notification) error {
	expected := s.NotificationSignature(n)
	received := strings.ToLower(n.MessageSignature)

	if subtle.ConstantTimeCompare([]byte(expected), []byte(received)) != 1 {
		return ErrInvalidSignature
	}
	return nil
}
