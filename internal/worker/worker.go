package worker

import (
	"context"

	"github.com/Moeabdelaziz007/WideWear/internal/broker"
	"github.com/Moeabdelaziz007/WideWear/internal/models"
	"github.com/Moeabdelaziz007/WideWear/internal/notify"
	"github.com/Moeabdelaziz007/WideWear/internal/util"

	"go.uber.org/zap"
)

// NotificationWorker consumes order lifecycle events and dispatches
// operator notifications. Running this off the request path keeps
// notification delivery strictly fire-and-forget: a failure here never
// reaches the checkout response, and delivery order relative to that
// response is unspecified.
type NotificationWorker struct {
	consumer     *broker.Consumer
	eventHandler *broker.EventHandler
	telegram     *notify.Telegram
	logger       *zap.Logger
}

// NewNotificationWorker creates a worker wired to the order event topic
func NewNotificationWorker(consumer *broker.Consumer, telegram *notify.Telegram) *NotificationWorker {
	w := &NotificationWorker{
		consumer: consumer,
		telegram: telegram,
		logger:   util.GetLogger(),
	}

	eventHandler := broker.NewEventHandler()
	eventHandler.OnOrderCreated(w.handleOrderCreated)
	eventHandler.OnOrderConfirmed(w.handleOrderConfirmed)
	w.eventHandler = eventHandler

	return w
}

// Start starts the worker
func (w *NotificationWorker) Start(ctx context.Context) error {
	w.logger.Info("Starting notification worker")
	return w.consumer.StartConsuming(ctx, w.eventHandler.HandleMessage)
}

// Stop stops the worker
func (w *NotificationWorker) Stop() error {
	w.logger.Info("Stopping notification worker")
	return w.consumer.Close()
}

func (w *NotificationWorker) handleOrderCreated(ctx context.Context, event *models.OrderCreatedEvent) error {
	if err := w.telegram.Send(ctx, notify.FormatOrderCreated(event)); err != nil {
		// Swallowed: the order is already durable, notification is best-effort.
		w.logger.Error("Failed to send order notification",
			zap.String("order_id", event.OrderID),
			zap.Error(err))
	}
	return nil
}

func (w *NotificationWorker) handleOrderConfirmed(ctx context.Context, event *models.OrderConfirmedEvent) error {
	if err := w.telegram.Send(ctx, notify.FormatPaymentReceived(event)); err != nil {
		w.logger.Error("Failed to send payment notification",
			zap.String("order_id", event.OrderID),
			zap.Error(err))
	}
	return nil
}
