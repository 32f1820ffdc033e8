package store

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/Moeabdelaziz007/WideWear/internal/models"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// CheckoutParams is the validated shipping/payment selection for a checkout.
type CheckoutParams struct {
	FullName       string
	Phone          string
	Address1       string
	Address2       string
	City           string
	PaymentMethod  string
	ShippingMethod string
	Notes          string
}

// Checkout converts the user's cart into an order in a single transaction:
// it locks the cart's product rows, verifies stock, computes the
// authoritative total from current prices, creates the order and its items,
// decrements stock and clears the cart. Either every effect lands or none
// does. Row locks on products serialize concurrent checkouts touching the
// same stock.
func (s *Store) Checkout(ctx context.Context, userID string, params CheckoutParams) (*models.Order, []models.OrderItem, error) {
	tx, err := s.db.BeginTxx(ctx, nil)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to begin checkout transaction: %w", err)
	}
	defer tx.Rollback()

	var lines []models.CartLine
	err = tx.SelectContext(ctx, &lines, `
		SELECT ci.id AS cart_item_id, ci.product_id, ci.size, ci.color, ci.quantity,
		       p.name_ar, p.name_en, p.price, p.sale_price, p.stock, p.image_url
		FROM cart_items ci
		JOIN products p ON p.id = ci.product_id
		WHERE ci.user_id = $1
		ORDER BY ci.created_at
		FOR UPDATE OF p`, userID)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to load cart: %w", err)
	}

	if len(lines) == 0 {
		return nil, nil, ErrEmptyCart
	}

	// Stock is checked per product, not per line: a cart may carry several
	// lines of the same product (different sizes), and each line alone fitting
	// the stock does not mean their sum does.
	requested := make(map[string]int, len(lines))
	for i := range lines {
		requested[lines[i].ProductID] += lines[i].Quantity
	}

	total := decimal.Zero
	checked := make(map[string]bool, len(requested))
	for i := range lines {
		line := &lines[i]
		if !checked[line.ProductID] {
			checked[line.ProductID] = true
			if requested[line.ProductID] > line.Stock {
				return nil, nil, &OutOfStockError{
					ProductID: line.ProductID,
					Name:      line.NameEn,
					Requested: requested[line.ProductID],
					Available: line.Stock,
				}
			}
		}
		total = total.Add(line.UnitPrice().Mul(decimal.NewFromInt(int64(line.Quantity))))
	}

	order := &models.Order{
		ID:             uuid.New().String(),
		UserID:         userID,
		Status:         models.OrderStatusPending,
		Total:          total,
		FullName:       params.FullName,
		Address1:       params.Address1,
		Address2:       nullString(params.Address2),
		City:           params.City,
		Phone:          params.Phone,
		PaymentMethod:  params.PaymentMethod,
		ShippingMethod: params.ShippingMethod,
		Notes:          nullString(params.Notes),
	}

	err = tx.QueryRowxContext(ctx, `
		INSERT INTO orders
			(id, user_id, status, total, full_name, address1, address2, city,
			 phone, payment_method, shipping_method, notes)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)
		RETURNING created_at, updated_at`,
		order.ID, order.UserID, order.Status, order.Total,
		order.FullName, order.Address1, order.Address2, order.City,
		order.Phone, order.PaymentMethod, order.ShippingMethod, order.Notes,
	).Scan(&order.CreatedAt, &order.UpdatedAt)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to create order: %w", err)
	}

	items := make([]models.OrderItem, 0, len(lines))
	for i := range lines {
		line := &lines[i]
		item := models.OrderItem{
			ID:        uuid.New().String(),
			OrderID:   order.ID,
			ProductID: line.ProductID,
			NameAr:    line.NameAr,
			NameEn:    line.NameEn,
			UnitPrice: line.UnitPrice(),
			Size:      line.Size,
			Color:     nullString(line.Color),
			Quantity:  line.Quantity,
			ImageURL:  line.ImageURL,
		}

		_, err = tx.ExecContext(ctx, `
			INSERT INTO order_items
				(id, order_id, product_id, name_ar, name_en, unit_price,
				 size, color, quantity, image_url)
			VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)`,
			item.ID, item.OrderID, item.ProductID, item.NameAr, item.NameEn,
			item.UnitPrice, item.Size, item.Color, item.Quantity, item.ImageURL)
		if err != nil {
			return nil, nil, fmt.Errorf("failed to create order item: %w", err)
		}

		res, err := tx.ExecContext(ctx,
			"UPDATE products SET stock = stock - $1 WHERE id = $2 AND stock >= $1",
			line.Quantity, line.ProductID)
		if err != nil {
			return nil, nil, fmt.Errorf("failed to decrement stock: %w", err)
		}
		if n, _ := res.RowsAffected(); n == 0 {
			return nil, nil, fmt.Errorf("stock changed under lock for product %s", line.ProductID)
		}

		items = append(items, item)
	}

	if _, err := tx.ExecContext(ctx,
		"DELETE FROM cart_items WHERE user_id = $1", userID); err != nil {
		return nil, nil, fmt.Errorf("failed to clear cart: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return nil, nil, fmt.Errorf("failed to commit checkout: %w", err)
	}

	return order, items, nil
}

// GetOrderByID retrieves an order by ID
func (s *Store) GetOrderByID(ctx context.Context, id string) (*models.Order, error) {
	var order models.Order
	err := s.db.GetContext(ctx, &order, "SELECT * FROM orders WHERE id = $1", id)
	if err == sql.ErrNoRows {
		return nil, ErrOrderNotFound
	}
	if err != nil {
		return nil, err
	}
	return &order, nil
}

// GetOrdersByUserID retrieves orders for a user
func (s *Store) GetOrdersByUserID(ctx context.Context, userID string) ([]models.Order, error) {
	var orders []models.Order
	err := s.db.SelectContext(ctx, &orders,
		"SELECT * FROM orders WHERE user_id = $1 ORDER BY created_at DESC", userID)
	return orders, err
}

// GetOrderItemsByOrderID retrieves all items for an order
func (s *Store) GetOrderItemsByOrderID(ctx context.Context, orderID string) ([]models.OrderItem, error) {
	var items []models.OrderItem
	err := s.db.SelectContext(ctx, &items,
		"SELECT * FROM order_items WHERE order_id = $1", orderID)
	return items, err
}

// StatusUpdate reports the outcome of a webhook-driven status change.
type StatusUpdate struct {
	Applied  bool
	Previous string
}

// ApplyPaymentStatus moves an order to the given status under a row lock,
// recording the gateway transaction reference. Re-delivering the same status
// is an idempotent no-op (the reference is still persisted if missing).
// Transitions the state machine forbids return *IllegalTransitionError with
// the order left untouched.
func (s *Store) ApplyPaymentStatus(ctx context.Context, orderID, status, transactionRef string) (StatusUpdate, error) {
	tx, err := s.db.BeginTxx(ctx, nil)
	if err != nil {
		return StatusUpdate{}, fmt.Errorf("failed to begin status transaction: %w", err)
	}
	defer tx.Rollback()

	var current string
	err = tx.GetContext(ctx, &current,
		"SELECT status FROM orders WHERE id = $1 FOR UPDATE", orderID)
	if err == sql.ErrNoRows {
		return StatusUpdate{}, ErrOrderNotFound
	}
	if err != nil {
		return StatusUpdate{}, fmt.Errorf("failed to lock order: %w", err)
	}

	upd := StatusUpdate{Previous: current}

	if current == status {
		// Gateway retry of an already-applied callback.
		if transactionRef != "" {
			if _, err := tx.ExecContext(ctx, `
				UPDATE orders SET transaction_id = COALESCE(transaction_id, $1), updated_at = NOW()
				WHERE id = $2`, transactionRef, orderID); err != nil {
				return upd, fmt.Errorf("failed to store transaction reference: %w", err)
			}
		}
		if err := tx.Commit(); err != nil {
			return upd, fmt.Errorf("failed to commit status update: %w", err)
		}
		return upd, nil
	}

	if !models.ValidTransition(current, status) {
		return upd, &IllegalTransitionError{OrderID: orderID, From: current, To: status}
	}

	if _, err := tx.ExecContext(ctx, `
		UPDATE orders SET status = $1,
			transaction_id = COALESCE(NULLIF($2, ''), transaction_id),
			updated_at = NOW()
		WHERE id = $3`, status, transactionRef, orderID); err != nil {
		return upd, fmt.Errorf("failed to update order status: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return upd, fmt.Errorf("failed to commit status update: %w", err)
	}

	upd.Applied = true
	return upd, nil
}

func nullString(s string) sql.NullString {
	if s == "" {
		return sql.NullString{}
	}
	return sql.NullString{String: s, Valid: true}
}
