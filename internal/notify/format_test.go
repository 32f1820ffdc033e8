package notify

import (
	"testing"

	"github.com/Moeabdelaziz007/WideWear/internal/models"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
)

func TestFormatOrderCreated(t *testing.T) {
	e := &models.OrderCreatedEvent{
		OrderID:        "8a4f2b1c-9d3e-4f5a-8b6c-7d8e9f0a1b2c",
		CustomerName:   "Ahmed Hassan",
		Phone:          "01012345678",
		Address:        "12 Tahrir Street, Cairo",
		ShippingMethod: "standard",
		PaymentMethod:  "cod",
		Total:          decimal.NewFromInt(1200),
		Items: []models.OrderItemData{
			{Name: "Hoodie", Size: "L", Quantity: 2},
		},
	}

	msg := FormatOrderCreated(e)

	assert.Contains(t, msg, "طلب جديد")
	assert.Contains(t, msg, "#8A4F2B1C")
	assert.Contains(t, msg, "Ahmed Hassan")
	assert.Contains(t, msg, "01012345678")
	assert.Contains(t, msg, "1200.00 EGP")
	assert.Contains(t, msg, "دفع عند الاستلام")
	assert.Contains(t, msg, "Hoodie (L) × 2")
	assert.NotContains(t, msg, "(cod)", "cod should be rendered as its label")
}

func TestFormatOrderCreatedNonCODKeepsMethod(t *testing.T) {
	e := &models.OrderCreatedEvent{
		OrderID:       "abc123",
		PaymentMethod: "fawry",
		Total:         decimal.NewFromInt(500),
	}

	msg := FormatOrderCreated(e)
	assert.Contains(t, msg, "(fawry)")
	assert.Contains(t, msg, "#ABC123")
}

func TestFormatPaymentReceived(t *testing.T) {
	e := &models.OrderConfirmedEvent{
		OrderID:       "8a4f2b1c-9d3e-4f5a-8b6c-7d8e9f0a1b2c",
		FawryRefNum:   "963455678",
		PaymentMethod: "CARD",
		Amount:        decimal.NewFromFloat(1199.5),
	}

	msg := FormatPaymentReceived(e)

	assert.Contains(t, msg, "تم الدفع بنجاح")
	assert.Contains(t, msg, "#8A4F2B1C")
	assert.Contains(t, msg, "1199.50 EGP")
	assert.Contains(t, msg, "963455678")
	assert.Contains(t, msg, "CARD")
}
