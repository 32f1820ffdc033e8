package validate

import (
	"fmt"
	"regexp"
	"sort"
	"strings"
	"unicode/utf8"
)

// Recognized payment methods
const (
	PaymentCOD          = "cod"
	PaymentCard         = "card"
	PaymentFawry        = "fawry"
	PaymentVodafoneCash = "vodafone_cash"
)

// Recognized shipping methods
const (
	ShippingStandard = "standard"
	ShippingFast     = "fast"
	ShippingPickup   = "pickup"
)

const (
	maxNotesLen    = 500
	maxAddressLen  = 255
	defaultCity    = "Cairo"
	defaultPayment = PaymentCOD
)

// Egyptian mobile numbers: 010/011/012/015 followed by 8 digits.
var phoneRegex = regexp.MustCompile(`^01[0125][0-9]{8}$`)

var paymentMethods = map[string]bool{
	PaymentCOD:          true,
	PaymentCard:         true,
	PaymentFawry:        true,
	PaymentVodafoneCash: true,
}

var shippingMethods = map[string]bool{
	ShippingStandard: true,
	ShippingFast:     true,
	ShippingPickup:   true,
}

// CheckoutRequest is the raw checkout payload as submitted by the client.
type CheckoutRequest struct {
	FullName       string `json:"full_name"`
	Phone          string `json:"phone"`
	Address1       string `json:"address1"`
	Address2       string `json:"address2,omitempty"`
	City           string `json:"city,omitempty"`
	PaymentMethod  string `json:"payment_method,omitempty"`
	ShippingMethod string `json:"shipping_method,omitempty"`
	Notes          string `json:"notes,omitempty"`
	IdempotencyKey string `json:"idempotency_key,omitempty"`
}

// ValidationError carries field-level detail for a rejected payload.
type ValidationError struct {
	Fields map[string]string
}

func (e *ValidationError) Error() string {
	keys := make([]string, 0, len(e.Fields))
	for k := range e.Fields {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	parts := make([]string, 0, len(keys))
	for _, k := range keys {
		parts = append(parts, fmt.Sprintf("%s: %s", k, e.Fields[k]))
	}
	return "validation failed: " + strings.Join(parts, "; ")
}

// Checkout normalizes and validates a raw checkout payload. It returns the
// normalized request on success and a *ValidationError listing every failing
// field otherwise. Runs before any side effect.
func Checkout(req CheckoutRequest) (CheckoutRequest, error) {
	fields := map[string]string{}

	req.FullName = strings.TrimSpace(req.FullName)
	req.Phone = strings.TrimSpace(req.Phone)
	req.Address1 = strings.TrimSpace(req.Address1)
	req.Address2 = strings.TrimSpace(req.Address2)
	req.City = strings.TrimSpace(req.City)
	req.Notes = strings.TrimSpace(req.Notes)

	if n := utf8.RuneCountInString(req.FullName); n < 2 || n > 100 {
		fields["full_name"] = "must be between 2 and 100 characters"
	}
	if !phoneRegex.MatchString(req.Phone) {
		fields["phone"] = "must be a valid Egyptian mobile number"
	}
	if n := utf8.RuneCountInString(req.Address1); n < 5 || n > maxAddressLen {
		fields["address1"] = fmt.Sprintf("must be between 5 and %d characters", maxAddressLen)
	}
	if utf8.RuneCountInString(req.Address2) > maxAddressLen {
		fields["address2"] = fmt.Sprintf("must be at most %d characters", maxAddressLen)
	}

	if req.City == "" {
		req.City = defaultCity
	} else if n := utf8.RuneCountInString(req.City); n < 2 || n > 50 {
		fields["city"] = "must be between 2 and 50 characters"
	}

	if req.PaymentMethod == "" {
		req.PaymentMethod = defaultPayment
	} else if !paymentMethods[req.PaymentMethod] {
		fields["payment_method"] = "must be one of cod, card, fawry, vodafone_cash"
	}

	if req.ShippingMethod == "" {
		req.ShippingMethod = ShippingStandard
	} else if !shippingMethods[req.ShippingMethod] {
		fields["shipping_method"] = "must be one of standard, fast, pickup"
	}

	if utf8.RuneCountInString(req.Notes) > maxNotesLen {
		fields["notes"] = fmt.Sprintf("must be at most %d characters", maxNotesLen)
	}

	if len(fields) > 0 {
		return req, &ValidationError{Fields: fields}
	}
	return req, nil
}
