package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/Moeabdelaziz007/WideWear/config"
	"github.com/Moeabdelaziz007/WideWear/internal/broker"
	"github.com/Moeabdelaziz007/WideWear/internal/fawry"
	"github.com/Moeabdelaziz007/WideWear/internal/idempotency"
	"github.com/Moeabdelaziz007/WideWear/internal/models"
	"github.com/Moeabdelaziz007/WideWear/internal/store"
	"github.com/Moeabdelaziz007/WideWear/internal/util"
	"github.com/Moeabdelaziz007/WideWear/internal/validate"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// CheckoutService converts carts into orders: validation, idempotency,
// the atomic checkout transaction, charge construction for async payment
// methods, and the post-commit best-effort side effects.
type CheckoutService struct {
	store          *store.Store
	cache          *idempotency.Cache
	eventPublisher *broker.EventPublisher
	signer         *fawry.Signer
	gateway        *fawry.Client
	fawryCfg       config.FawryConfig
	logger         *zap.Logger
}

// NewCheckoutService creates a new checkout service
func NewCheckoutService(
	store *store.Store,
	cache *idempotency.Cache,
	eventPublisher *broker.EventPublisher,
	signer *fawry.Signer,
	gateway *fawry.Client,
	fawryCfg config.FawryConfig,
) *CheckoutService {
	return &CheckoutService{
		store:          store,
		cache:          cache,
		eventPublisher: eventPublisher,
		signer:         signer,
		gateway:        gateway,
		fawryCfg:       fawryCfg,
		logger:         util.GetLogger(),
	}
}

// CheckoutResponse is returned to the client and cached under the
// idempotency key.
type CheckoutResponse struct {
	OrderID  string `json:"orderId"`
	FawryURL string `json:"fawryUrl,omitempty"`
}

// Checkout runs the full checkout flow for an authenticated user.
func (s *CheckoutService) Checkout(ctx context.Context, userID, email string, raw validate.CheckoutRequest) (*CheckoutResponse, error) {
	ctx, span := util.StartSpan(ctx, "CheckoutService.Checkout")
	defer span.End()

	req, err := validate.Checkout(raw)
	if err != nil {
		util.CheckoutsFailedTotal.WithLabelValues("validation").Inc()
		return nil, err
	}

	// A missing key means no idempotency protection; that is the client's
	// accepted gap, not ours.
	if req.IdempotencyKey != "" {
		var cached CheckoutResponse
		hit, err := s.cache.Get(ctx, userID, req.IdempotencyKey, &cached)
		if err != nil {
			// Fail open: an unreachable cache must not block checkout.
			util.IdempotencyErrorsTotal.Inc()
			s.logger.Warn("Idempotency lookup failed, proceeding without it",
				zap.String("user_id", userID), zap.Error(err))
		} else if hit {
			util.IdempotencyHitsTotal.Inc()
			s.logger.Info("Duplicate checkout served from idempotency cache",
				zap.String("user_id", userID),
				zap.String("order_id", cached.OrderID))
			return &cached, nil
		}
	}

	start := time.Now()
	order, items, err := s.store.Checkout(ctx, userID, store.CheckoutParams{
		FullName:       req.FullName,
		Phone:          req.Phone,
		Address1:       req.Address1,
		Address2:       req.Address2,
		City:           req.City,
		PaymentMethod:  req.PaymentMethod,
		ShippingMethod: req.ShippingMethod,
		Notes:          req.Notes,
	})
	util.CheckoutDuration.Observe(time.Since(start).Seconds())
	if err != nil {
		util.CheckoutsFailedTotal.WithLabelValues(checkoutFailureReason(err)).Inc()
		return nil, err
	}

	util.CheckoutsTotal.Inc()
	s.logger.Info("Order created",
		zap.String("order_id", order.ID),
		zap.String("user_id", userID),
		zap.String("total", order.Total.StringFixed(2)),
		zap.String("payment_method", order.PaymentMethod))

	s.publishOrderCreated(ctx, order, items)
	s.syncProfileAsync(order)

	resp := &CheckoutResponse{OrderID: order.ID}
	if order.PaymentMethod == validate.PaymentFawry {
		resp.FawryURL = s.buildFawryRedirect(ctx, order, items, userID, email)
	}

	if req.IdempotencyKey != "" {
		if err := s.cache.Put(ctx, userID, req.IdempotencyKey, resp); err != nil {
			util.IdempotencyErrorsTotal.Inc()
			s.logger.Warn("Failed to cache checkout response",
				zap.String("order_id", order.ID), zap.Error(err))
		}
	}

	return resp, nil
}

// buildFawryRedirect constructs the signed charge and hosted-checkout URL.
// The synchronous gateway call must not fail the order: any failure degrades
// into a response without the redirect URL.
func (s *CheckoutService) buildFawryRedirect(ctx context.Context, order *models.Order, items []models.OrderItem, userID, email string) string {
	if email == "" {
		email = "customer@widewear.com"
	}

	chargeItems := make([]fawry.ChargeItem, 0, len(items))
	for _, item := range items {
		chargeItems = append(chargeItems, fawry.ChargeItem{
			ItemID:      item.ProductID,
			Description: item.NameEn,
			Price:       item.UnitPrice,
			Quantity:    item.Quantity,
		})
	}

	chargeReq := &fawry.ChargeRequest{
		MerchantRefNum:    order.ID,
		CustomerProfileID: userID,
		CustomerName:      order.FullName,
		CustomerMobile:    order.Phone,
		CustomerEmail:     email,
		Amount:            order.Total,
		CurrencyCode:      "EGP",
		ReturnURL:         fmt.Sprintf("%s?orderId=%s", s.fawryCfg.ReturnURL, order.ID),
		ChargeItems:       chargeItems,
	}

	payload := s.signer.BuildChargePayload(chargeReq)

	chargeStart := time.Now()
	if _, err := s.gateway.SendCharge(ctx, payload); err != nil {
		util.GatewayChargeLatency.Observe(time.Since(chargeStart).Seconds())
		s.logger.Error("Fawry charge call failed, order proceeds without redirect",
			zap.String("order_id", order.ID), zap.Error(err))
		return ""
	}
	util.GatewayChargeLatency.Observe(time.Since(chargeStart).Seconds())

	hostedURL, err := fawry.HostedCheckoutURL(s.fawryCfg.HostedURL, payload)
	if err != nil {
		s.logger.Error("Failed to build hosted checkout URL",
			zap.String("order_id", order.ID), zap.Error(err))
		return ""
	}
	return hostedURL
}

// publishOrderCreated emits the lifecycle event feeding the notification
// worker. Best-effort: publish failure is logged and swallowed.
func (s *CheckoutService) publishOrderCreated(ctx context.Context, order *models.Order, items []models.OrderItem) {
	eventItems := make([]models.OrderItemData, 0, len(items))
	for _, item := range items {
		eventItems = append(eventItems, models.OrderItemData{
			ProductID: item.ProductID,
			Name:      item.NameAr,
			Size:      item.Size,
			Quantity:  item.Quantity,
			UnitPrice: item.UnitPrice,
		})
	}

	address := order.Address1
	if order.Address2.Valid {
		address += ", " + order.Address2.String
	}
	address += ", " + order.City

	event := &models.OrderCreatedEvent{
		BaseEvent: models.BaseEvent{
			EventID:   uuid.New().String(),
			EventType: models.EventTypeOrderCreated,
			Timestamp: time.Now(),
		},
		OrderID:        order.ID,
		UserID:         order.UserID,
		CustomerName:   order.FullName,
		Phone:          order.Phone,
		Address:        address,
		Total:          order.Total,
		PaymentMethod:  order.PaymentMethod,
		ShippingMethod: order.ShippingMethod,
		Items:          eventItems,
	}

	if err := s.eventPublisher.PublishOrderCreated(ctx, event); err != nil {
		s.logger.Error("Failed to publish OrderCreated event",
			zap.String("order_id", order.ID), zap.Error(err))
	}
}

// syncProfileAsync stores the shipping details on the user's profile.
// Fire-and-forget: runs on a detached context, ordering relative to the
// checkout response is unspecified, failures are logged only.
func (s *CheckoutService) syncProfileAsync(order *models.Order) {
	profile := &models.Profile{
		ID:       order.UserID,
		FullName: order.FullName,
		Phone:    order.Phone,
		Address1: order.Address1,
		Address2: order.Address2,
		City:     order.City,
	}

	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()

		if err := s.store.UpsertProfileAddress(ctx, profile); err != nil {
			s.logger.Warn("Failed to sync profile address",
				zap.String("user_id", profile.ID), zap.Error(err))
		}
	}()
}

// GetOrder retrieves an order and its items, scoped to the owning user.
func (s *CheckoutService) GetOrder(ctx context.Context, userID, orderID string) (*models.Order, []models.OrderItem, error) {
	order, err := s.store.GetOrderByID(ctx, orderID)
	if err != nil {
		return nil, nil, err
	}
	if order.UserID != userID {
		return nil, nil, store.ErrOrderNotFound
	}

	items, err := s.store.GetOrderItemsByOrderID(ctx, orderID)
	if err != nil {
		return nil, nil, err
	}

	return order, items, nil
}

// ListOrders returns the user's orders, newest first.
func (s *CheckoutService) ListOrders(ctx context.Context, userID string) ([]models.Order, error) {
	orders, err := s.store.GetOrdersByUserID(ctx, userID)
	if err != nil {
		return nil, err
	}
	if orders == nil {
		orders = []models.Order{}
	}
	return orders, nil
}

func checkoutFailureReason(err error) string {
	var oos *store.OutOfStockError
	switch {
	case errors.Is(err, store.ErrEmptyCart):
		return "empty_cart"
	case errors.As(err, &oos):
		return "out_of_stock"
	default:
		return "db_error"
	}
}
