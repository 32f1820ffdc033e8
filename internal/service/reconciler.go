package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/Moeabdelaziz007/WideWear/internal/broker"
	"github.com/Moeabdelaziz007/WideWear/internal/fawry"
	"github.com/Moeabdelaziz007/WideWear/internal/models"
	"github.com/Moeabdelaziz007/WideWear/internal/store"
	"github.com/Moeabdelaziz007/WideWear/internal/util"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// ErrRetryable marks a reconciliation failure the gateway should re-deliver
// (surfaced as a 500). Persistence failures must never be swallowed here or
// the order stays stuck in pending forever.
var ErrRetryable = errors.New("retryable reconciliation failure")

// Reconciler authenticates asynchronous payment callbacks and applies them
// to the order state machine. Callbacks may arrive before the checkout
// response is read, long after it, or several times; every path through
// here is idempotent.
type Reconciler struct {
	store          *store.Store
	signer         *fawry.Signer
	eventPublisher *broker.EventPublisher
	logger         *zap.Logger
}

// NewReconciler creates a new webhook reconciler
func NewReconciler(store *store.Store, signer *fawry.Signer, eventPublisher *broker.EventPublisher) *Reconciler {
	return &Reconciler{
		store:          store,
		signer:         signer,
		eventPublisher: eventPublisher,
		logger:         util.GetLogger(),
	}
}

// HandleNotification verifies and applies one gateway callback.
// Returns fawry.ErrInvalidSignature for forged payloads (reject, never
// retry) and wraps ErrRetryable when the gateway should re-deliver.
func (r *Reconciler) HandleNotification(ctx context.Context, n *fawry.Notification) error {
	ctx, span := util.StartSpan(ctx, "Reconciler.HandleNotification")
	defer span.End()

	if err := r.signer.VerifyNotification(n); err != nil {
		util.WebhooksRejectedTotal.Inc()
		// Logged as a potential attack: the transport is unauthenticated,
		// only the signature vouches for the sender.
		r.logger.Error("Webhook signature mismatch",
			zap.String("merchant_ref", n.MerchantRefNumber),
			zap.String("fawry_ref", n.FawryRefNumber),
			zap.String("order_status", n.OrderStatus))
		return err
	}

	status := n.Status()
	util.WebhooksReceivedTotal.WithLabelValues(status.String()).Inc()
	r.logger.Info("Verified payment notification",
		zap.String("merchant_ref", n.MerchantRefNumber),
		zap.String("fawry_ref", n.FawryRefNumber),
		zap.String("order_status", n.OrderStatus))

	target, ok := targetOrderStatus(status)
	if !ok {
		// NEW (registered, unpaid), DELIVERED (fulfillment's state) and
		// unknown codes leave the order untouched.
		r.logger.Warn("Gateway status does not map to an order transition, ignoring",
			zap.String("merchant_ref", n.MerchantRefNumber),
			zap.String("order_status", n.OrderStatus))
		return nil
	}

	upd, err := r.store.ApplyPaymentStatus(ctx, n.MerchantRefNumber, target, n.FawryRefNumber)
	if err != nil {
		var illegal *store.IllegalTransitionError
		if errors.As(err, &illegal) {
			// Anomalous ordering, e.g. REFUNDED for a still-pending order.
			// Logged and acked: redelivery cannot make it legal.
			r.logger.Warn("Anomalous webhook transition rejected",
				zap.String("order_id", illegal.OrderID),
				zap.String("from", illegal.From),
				zap.String("to", illegal.To))
			return nil
		}
		if errors.Is(err, store.ErrOrderNotFound) {
			// The callback may be racing the checkout commit; let the
			// gateway retry.
			r.logger.Warn("Webhook for unknown order, requesting redelivery",
				zap.String("merchant_ref", n.MerchantRefNumber))
			return fmt.Errorf("%w: %s", ErrRetryable, n.MerchantRefNumber)
		}
		return fmt.Errorf("%w: %v", ErrRetryable, err)
	}

	if !upd.Applied {
		r.logger.Info("Webhook redelivery for already-applied status",
			zap.String("order_id", n.MerchantRefNumber),
			zap.String("status", target))
		return nil
	}

	r.recordTransition(ctx, n, target)
	return nil
}

// targetOrderStatus maps the gateway status vocabulary onto the order state
// machine. The switch is exhaustive over the PaymentStatus enum; codes with
// no order-side transition return ok=false.
func targetOrderStatus(status fawry.PaymentStatus) (string, bool) {
	switch status {
	case fawry.StatusPaid:
		return models.OrderStatusConfirmed, true
	case fawry.StatusCanceled, fawry.StatusExpired, fawry.StatusFailed:
		return models.OrderStatusCancelled, true
	case fawry.StatusRefunded:
		return models.OrderStatusRefunded, true
	case fawry.StatusNew, fawry.StatusDelivered, fawry.StatusUnknown:
		return "", false
	}
	return "", false
}

func (r *Reconciler) recordTransition(ctx context.Context, n *fawry.Notification, target string) {
	base := models.BaseEvent{
		EventID:   uuid.New().String(),
		Timestamp: time.Now(),
	}

	var err error
	switch target {
	case models.OrderStatusConfirmed:
		util.OrdersConfirmedTotal.Inc()
		base.EventType = models.EventTypeOrderConfirmed
		err = r.eventPublisher.PublishOrderConfirmed(ctx, &models.OrderConfirmedEvent{
			BaseEvent:     base,
			OrderID:       n.MerchantRefNumber,
			FawryRefNum:   n.FawryRefNumber,
			PaymentMethod: n.PaymentMethod,
			Amount:        n.PaymentAmount,
		})

	case models.OrderStatusCancelled:
		util.OrdersCancelledTotal.Inc()
		base.EventType = models.EventTypeOrderCancelled
		err = r.eventPublisher.PublishOrderCancelled(ctx, &models.OrderCancelledEvent{
			BaseEvent: base,
			OrderID:   n.MerchantRefNumber,
			Reason:    n.OrderStatus,
		})

	case models.OrderStatusRefunded:
		util.OrdersRefundedTotal.Inc()
		base.EventType = models.EventTypeOrderRefunded
		err = r.eventPublisher.PublishOrderRefunded(ctx, &models.OrderRefundedEvent{
			BaseEvent:   base,
			OrderID:     n.MerchantRefNumber,
			FawryRefNum: n.FawryRefNumber,
			Amount:      n.PaymentAmount,
		})
	}

	if err != nil {
		r.logger.Error("Failed to publish order lifecycle event",
			zap.String("order_id", n.MerchantRefNumber),
			zap.String("status", target),
			zap.Error(err))
	}

	r.logger.Info("Order status reconciled",
		zap.String("order_id", n.MerchantRefNumber),
		zap.String("status", target),
		zap.String("fawry_ref", n.FawryRefNumber))
}
