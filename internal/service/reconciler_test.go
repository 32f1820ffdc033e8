package service

import (
	"errors"
	"testing"

	"github.com/Moeabdelaziz007/WideWear/internal/fawry"
	"github.com/Moeabdelaziz007/WideWear/internal/models"
	"github.com/Moeabdelaziz007/WideWear/internal/store"

	"github.com/stretchr/testify/assert"
)

func TestTargetOrderStatus(t *testing.T) {
	tests := []struct {
		status fawry.PaymentStatus
		want   string
		wantOK bool
	}{
		{fawry.StatusPaid, models.OrderStatusConfirmed, true},
		{fawry.StatusCanceled, models.OrderStatusCancelled, true},
		{fawry.StatusExpired, models.OrderStatusCancelled, true},
		{fawry.StatusFailed, models.OrderStatusCancelled, true},
		{fawry.StatusRefunded, models.OrderStatusRefunded, true},
		// Registered-but-unpaid must not confirm the order.
		{fawry.StatusNew, "", false},
		// Fulfillment owns delivered, not the payment gateway.
		{fawry.StatusDelivered, "", false},
		{fawry.StatusUnknown, "", false},
	}

	for _, tt := range tests {
		t.Run(tt.status.String(), func(t *testing.T) {
			got, ok := targetOrderStatus(tt.status)
			assert.Equal(t, tt.wantOK, ok)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestCheckoutFailureReason(t *testing.T) {
	assert.Equal(t, "empty_cart", checkoutFailureReason(store.ErrEmptyCart))
	assert.Equal(t, "out_of_stock", checkoutFailureReason(&store.OutOfStockError{Name: "Hoodie"}))
	assert.Equal(t, "db_error", checkoutFailureReason(errors.New("connection reset")))
}
