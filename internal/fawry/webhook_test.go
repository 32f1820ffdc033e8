package fawry

import (
	"strings"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testNotification() *Notification {
	return &Notification{
		RequestID:         "req-1",
		FawryRefNumber:    "963455678",
		MerchantRefNumber: "order-abc",
		PaymentAmount:     decimal.NewFromInt(1200),
		OrderAmount:       decimal.NewFromInt(1200),
		OrderStatus:       "PAID",
		PaymentMethod:     "PAYATFAWRY",
		PaymentRefNumber:  "pr-777",
	}
}

func TestNotificationSignatureCanonicalString(t *testing.T) {
	signer := NewSigner(testMerchantCode, testSecureKey)
	n := testNotification()

	// fawryRefNumber + merchantRefNumber + paymentAmount(2dp) +
	// orderAmount(2dp) + orderStatus + paymentMethod +
	// paymentReferenceNumber + secureKey
	expected := sha256hex("963455678" + "order-abc" + "1200.00" + "1200.00" +
		"PAID" + "PAYATFAWRY" + "pr-777" + testSecureKey)

	assert.Equal(t, expected, signer.NotificationSignature(n))
}

func TestVerifyNotificationRoundTrip(t *testing.T) {
	signer := NewSigner(testMerchantCode, testSecureKey)
	n := testNotification()
	n.MessageSignature = signer.NotificationSignature(n)

	assert.NoError(t, signer.VerifyNotification(n))
}

func TestVerifyNotificationHexCaseInsensitive(t *testing.T) {
	signer := NewSigner(testMerchantCode, testSecureKey)
	n := testNotification()
	n.MessageSignature = strings.ToUpper(signer.NotificationSignature(n))

	assert.NoError(t, signer.VerifyNotification(n))
}

func TestVerifyNotificationTamperedAmount(t *testing.T) {
	signer := NewSigner(testMerchantCode, testSecureKey)
	n := testNotification()
	n.MessageSignature = signer.NotificationSignature(n)

	n.PaymentAmount = decimal.NewFromInt(1)

	err := signer.VerifyNotification(n)
	require.ErrorIs(t, err, ErrInvalidSignature)
}

func TestVerifyNotificationWrongKey(t *testing.T) {
	signer := NewSigner(testMerchantCode, testSecureKey)
	forger := NewSigner(testMerchantCode, "guessed-key")

	n := testNotification()
	n.MessageSignature = forger.NotificationSignature(n)

	require.ErrorIs(t, signer.VerifyNotification(n), ErrInvalidSignature)
}

func TestChargeAndNotificationAmountsAgree(t *testing.T) {
	// The same order amount must format identically in both directions,
	// otherwise charge and callback signatures drift apart.
	amount := decimal.NewFromFloat(1199.5)

	signer := NewSigner(testMerchantCode, testSecureKey)
	charge := signer.BuildChargePayload(&ChargeRequest{
		MerchantRefNum:    "order-1",
		CustomerProfileID: "u",
		Amount:            amount,
	})

	n := testNotification()
	n.PaymentAmount = amount
	n.OrderAmount = amount
	n.MessageSignature = signer.NotificationSignature(n)

	assert.Equal(t, "1199.50", charge.Amount)
	assert.NoError(t, signer.VerifyNotification(n))
}

func TestParsePaymentStatus(t *testing.T) {
	tests := []struct {
		raw  string
		want PaymentStatus
	}{
		{"PAID", StatusPaid},
		{"paid", StatusPaid},
		{" New ", StatusNew},
		{"CANCELED", StatusCanceled},
		{"EXPIRED", StatusExpired},
		{"FAILED", StatusFailed},
		{"REFUNDED", StatusRefunded},
		{"DELIVERED", StatusDelivered},
		{"PARTIAL_REFUNDED", StatusUnknown},
		{"", StatusUnknown},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.want, ParsePaymentStatus(tt.raw), "raw=%q", tt.raw)
	}
}
