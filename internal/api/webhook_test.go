package api

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"testing"

	"github.com/Moeabdelaziz007/WideWear/internal/broker"
	"github.com/Moeabdelaziz007/WideWear/internal/fawry"
	"github.com/Moeabdelaziz007/WideWear/internal/models"
	"github.com/Moeabdelaziz007/WideWear/internal/service"
	"github.com/Moeabdelaziz007/WideWear/internal/store"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const (
	webhookTestMerchant = "merchant-1"
	webhookTestKey      = "secure-key"
)

func webhookRouter(s *store.Store, publisher *broker.EventPublisher) *gin.Engine {
	gin.SetMode(gin.TestMode)

	signer := fawry.NewSigner(webhookTestMerchant, webhookTestKey)
	reconciler := service.NewReconciler(s, signer, publisher)
	handler := NewHandler(nil, reconciler, nil, "test-secret")

	r := gin.New()
	r.POST("/api/v1/webhooks/fawry", handler.fawryWebhook)
	return r
}

func signedNotification(orderID, status string, amount decimal.Decimal) *fawry.Notification {
	n := &fawry.Notification{
		FawryRefNumber:    "963455678",
		MerchantRefNumber: orderID,
		PaymentAmount:     amount,
		OrderAmount:       amount,
		OrderStatus:       status,
		PaymentMethod:     "CARD",
	}
	n.MessageSignature = fawry.NewSigner(webhookTestMerchant, webhookTestKey).NotificationSignature(n)
	return n
}

func postWebhook(t *testing.T, r *gin.Engine, n *fawry.Notification) *httptest.ResponseRecorder {
	t.Helper()

	body, err := json.Marshal(n)
	require.NoError(t, err)

	req := httptest.NewRequest(http.MethodPost, "/api/v1/webhooks/fawry", bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func TestFawryWebhookRejectsForgedSignature(t *testing.T) {
	r := webhookRouter(nil, nil)

	n := signedNotification(uuid.New().String(), "PAID", decimal.NewFromInt(1200))
	n.PaymentAmount = decimal.NewFromInt(1)

	w := postWebhook(t, r, n)

	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, w.Body.String(), "Invalid signature")
}

func TestFawryWebhookRejectsMalformedBody(t *testing.T) {
	r := webhookRouter(nil, nil)

	req := httptest.NewRequest(http.MethodPost, "/api/v1/webhooks/fawry", bytes.NewReader([]byte("{not json")))
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestFawryWebhookAcksNonTransitionStatus(t *testing.T) {
	// NEW never reaches the database, so no store is needed.
	r := webhookRouter(nil, nil)

	w := postWebhook(t, r, signedNotification(uuid.New().String(), "NEW", decimal.NewFromInt(1200)))

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "success")
}

func webhookTestStore(t *testing.T) *store.Store {
	t.Helper()

	dsn := os.Getenv("TEST_DATABASE_URL")
	if dsn == "" {
		t.Skip("Integration test - set TEST_DATABASE_URL to run")
	}

	s, err := store.NewStore(dsn)
	require.NoError(t, err)
	t.Cleanup(func() { s.Close() })
	return s
}

func TestFawryWebhookUnknownOrderRequestsRedelivery(t *testing.T) {
	s := webhookTestStore(t)
	r := webhookRouter(s, nil)

	w := postWebhook(t, r, signedNotification(uuid.New().String(), "PAID", decimal.NewFromInt(1200)))

	assert.Equal(t, http.StatusInternalServerError, w.Code)
	assert.Contains(t, w.Body.String(), "Database update failed")
}

func TestFawryWebhookConfirmsOrder(t *testing.T) {
	s := webhookTestStore(t)
	ctx := context.Background()

	productID := uuid.New().String()
	_, err := s.GetDB().ExecContext(ctx, `
		INSERT INTO products (id, name_ar, name_en, price, stock)
		VALUES ($1, $2, $3, $4, $5)`,
		productID, "هودي", "Hoodie", decimal.NewFromInt(700), 5)
	require.NoError(t, err)

	userID := uuid.New().String()
	require.NoError(t, s.AddCartItem(ctx, &models.CartItem{
		UserID:    userID,
		ProductID: productID,
		Size:      "L",
		Quantity:  1,
	}))

	order, _, err := s.Checkout(ctx, userID, store.CheckoutParams{
		FullName:       "Ahmed Hassan",
		Phone:          "01012345678",
		Address1:       "12 Tahrir Street",
		City:           "Cairo",
		PaymentMethod:  "fawry",
		ShippingMethod: "standard",
	})
	require.NoError(t, err)

	// Publishing fails against the unreachable broker; confirmation must not.
	publisher := broker.NewEventPublisher(broker.NewProducer([]string{"127.0.0.1:1"}, "order-events"))
	r := webhookRouter(s, publisher)

	w := postWebhook(t, r, signedNotification(order.ID, "PAID", order.Total))
	assert.Equal(t, http.StatusOK, w.Code)

	got, err := s.GetOrderByID(ctx, order.ID)
	require.NoError(t, err)
	assert.Equal(t, models.OrderStatusConfirmed, got.Status)
	assert.Equal(t, "963455678", got.TransactionID.String)

	// Redelivery of the same callback stays a 200 no-op.
	w = postWebhook(t, r, signedNotification(order.ID, "PAID", order.Total))
	assert.Equal(t, http.StatusOK, w.Code)
}
