package service

import (
	"context"
	"fmt"

	"github.com/Moeabdelaziz007/WideWear/internal/models"
	"github.com/Moeabdelaziz007/WideWear/internal/store"
	"github.com/Moeabdelaziz007/WideWear/internal/util"

	"go.uber.org/zap"
)

// CartService manages the cart lines that feed checkout.
type CartService struct {
	store  *store.Store
	logger *zap.Logger
}

// NewCartService creates a new cart service
func NewCartService(store *store.Store) *CartService {
	return &CartService{store: store, logger: util.GetLogger()}
}

// AddCartItemRequest is the payload for adding a cart line.
type AddCartItemRequest struct {
	ProductID string `json:"product_id" binding:"required,uuid"`
	Size      string `json:"size" binding:"required"`
	Color     string `json:"color,omitempty"`
	Quantity  int    `json:"quantity" binding:"required,min=1,max=10"`
}

// Apparel sizes plus EU shoe sizes, matching the catalog.
var validSizes = map[string]bool{
	"S": true, "M": true, "L": true, "XL": true, "XXL": true,
	"40": true, "41": true, "42": true, "43": true, "44": true, "45": true,
}

// GetCart returns the user's cart lines.
func (s *CartService) GetCart(ctx context.Context, userID string) ([]models.CartItem, error) {
	items, err := s.store.GetCartItems(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to load cart: %w", err)
	}
	if items == nil {
		items = []models.CartItem{}
	}
	return items, nil
}

// AddItem adds a line to the cart after checking the product exists. Stock
// is not reserved here; the checkout transaction is the only place stock is
// checked and decremented.
func (s *CartService) AddItem(ctx context.Context, userID string, req AddCartItemRequest) (*models.CartItem, error) {
	if !validSizes[req.Size] {
		return nil, fmt.Errorf("invalid size: %s", req.Size)
	}
	if _, err := s.store.GetProductByID(ctx, req.ProductID); err != nil {
		return nil, fmt.Errorf("unknown product: %s", req.ProductID)
	}

	item := &models.CartItem{
		UserID:    userID,
		ProductID: req.ProductID,
		Size:      req.Size,
		Color:     req.Color,
		Quantity:  req.Quantity,
	}

	if err := s.store.AddCartItem(ctx, item); err != nil {
		return nil, fmt.Errorf("failed to add cart item: %w", err)
	}

	s.logger.Debug("Cart item added",
		zap.String("user_id", userID),
		zap.String("product_id", req.ProductID))
	return item, nil
}

// UpdateQuantity sets a cart line's quantity.
func (s *CartService) UpdateQuantity(ctx context.Context, userID, itemID string, quantity int) error {
	return s.store.UpdateCartItemQuantity(ctx, userID, itemID, quantity)
}

// RemoveItem deletes a cart line.
func (s *CartService) RemoveItem(ctx context.Context, userID, itemID string) error {
	return s.store.RemoveCartItem(ctx, userID, itemID)
}
