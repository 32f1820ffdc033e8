package store

import (
	"errors"
	"fmt"
)

var (
	// ErrEmptyCart is returned when checkout finds no cart items for the user.
	ErrEmptyCart = errors.New("cart is empty")

	// ErrOrderNotFound is returned when an order id does not exist.
	ErrOrderNotFound = errors.New("order not found")

	// ErrCartItemNotFound is returned when a cart mutation matches no row.
	ErrCartItemNotFound = errors.New("cart item not found")
)

// OutOfStockError names the product whose requested quantity exceeds stock.
type OutOfStockError struct {
	ProductID string
	Name      string
	Requested int
	Available int
}

func (e *OutOfStockError) Error() string {
	return fmt.Sprintf("%s is out of stock", e.Name)
}

// IllegalTransitionError reports a webhook status that the order state
// machine does not permit from the order's current status.
type IllegalTransitionError struct {
	OrderID string
	From    string
	To      string
}

func (e *IllegalTransitionError) Error() string {
	return fmt.Sprintf("illegal order status transition %s -> %s for order %s", e.From, e.To, e.OrderID)
}
