package api

import (
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/Moeabdelaziz007/WideWear/internal/fawry"
	"github.com/Moeabdelaziz007/WideWear/internal/service"
	"github.com/Moeabdelaziz007/WideWear/internal/store"
	"github.com/Moeabdelaziz007/WideWear/internal/util"
	"github.com/Moeabdelaziz007/WideWear/internal/validate"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Handler contains HTTP handlers
type Handler struct {
	checkoutService *service.CheckoutService
	reconciler      *service.Reconciler
	cartService     *service.CartService
	jwtSecret       []byte
}

// NewHandler creates a new HTTP handler
func NewHandler(
	checkoutService *service.CheckoutService,
	reconciler *service.Reconciler,
	cartService *service.CartService,
	jwtSecret string,
) *Handler {
	return &Handler{
		checkoutService: checkoutService,
		reconciler:      reconciler,
		cartService:     cartService,
		jwtSecret:       []byte(jwtSecret),
	}
}

// SetupRoutes sets up HTTP routes
func (h *Handler) SetupRoutes(router *gin.Engine) {
	router.Use(gin.Recovery())
	router.Use(prometheusMiddleware())
	router.Use(gin.Logger())

	router.GET("/health", h.healthCheck)
	router.GET("/ready", h.readinessCheck)

	router.GET("/metrics", gin.WrapH(promhttp.Handler()))

	v1 := router.Group("/api/v1")
	{
		// Signature-authenticated, not session-authenticated.
		v1.POST("/webhooks/fawry", h.fawryWebhook)

		authed := v1.Group("", AuthRequired(h.jwtSecret))
		{
			authed.POST("/checkout", h.checkout)
			authed.GET("/orders", h.listOrders)
			authed.GET("/orders/:id", h.getOrder)

			authed.GET("/cart", h.getCart)
			authed.POST("/cart", h.addCartItem)
			authed.PATCH("/cart/:id", h.updateCartItem)
			authed.DELETE("/cart/:id", h.removeCartItem)
		}
	}
}

// healthCheck handles health check requests
func (h *Handler) healthCheck(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status": "healthy",
		"time":   time.Now().Unix(),
	})
}

// readinessCheck handles readiness check requests
func (h *Handler) readinessCheck(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status": "ready",
		"time":   time.Now().Unix(),
	})
}

// checkout handles checkout submission
func (h *Handler) checkout(c *gin.Context) {
	var req validate.CheckoutRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error":   "Invalid request body",
			"details": err.Error(),
		})
		return
	}

	if req.IdempotencyKey == "" {
		req.IdempotencyKey = c.GetHeader("Idempotency-Key")
	}

	userID, email := currentUser(c)
	resp, err := h.checkoutService.Checkout(c.Request.Context(), userID, email, req)
	if err != nil {
		h.writeCheckoutError(c, err)
		return
	}

	c.JSON(http.StatusCreated, resp)
}

func (h *Handler) writeCheckoutError(c *gin.Context, err error) {
	var verr *validate.ValidationError
	if errors.As(err, &verr) {
		c.JSON(http.StatusBadRequest, gin.H{
			"error":  "Validation failed",
			"fields": verr.Fields,
		})
		return
	}

	var oos *store.OutOfStockError
	if errors.As(err, &oos) {
		c.JSON(http.StatusBadRequest, gin.H{"error": oos.Error()})
		return
	}

	if errors.Is(err, store.ErrEmptyCart) {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Cart is empty"})
		return
	}

	c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to create order"})
}

// fawryWebhook handles the asynchronous payment-status callback
func (h *Handler) fawryWebhook(c *gin.Context) {
	var n fawry.Notification
	if err := c.ShouldBindJSON(&n); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid webhook body"})
		return
	}

	err := h.reconciler.HandleNotification(c.Request.Context(), &n)
	switch {
	case err == nil:
		c.JSON(http.StatusOK, gin.H{"status": "success"})
	case errors.Is(err, fawry.ErrInvalidSignature):
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid signature"})
	default:
		// 500 asks the gateway to re-deliver the callback.
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Database update failed"})
	}
}

// getOrder handles get order by ID
func (h *Handler) getOrder(c *gin.Context) {
	userID, _ := currentUser(c)

	order, items, err := h.checkoutService.GetOrder(c.Request.Context(), userID, c.Param("id"))
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Order not found"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"order": order,
		"items": items,
	})
}

// listOrders handles listing the user's orders
func (h *Handler) listOrders(c *gin.Context) {
	userID, _ := currentUser(c)

	orders, err := h.checkoutService.ListOrders(c.Request.Context(), userID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to list orders"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"orders": orders})
}

// getCart returns the user's cart
func (h *Handler) getCart(c *gin.Context) {
	userID, _ := currentUser(c)

	items, err := h.cartService.GetCart(c.Request.Context(), userID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to load cart"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"items": items})
}

// addCartItem adds a line to the user's cart
func (h *Handler) addCartItem(c *gin.Context) {
	var req service.AddCartItemRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error":   "Invalid request body",
			"details": err.Error(),
		})
		return
	}

	userID, _ := currentUser(c)
	item, err := h.cartService.AddItem(c.Request.Context(), userID, req)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusCreated, item)
}

// updateCartItem changes a cart line's quantity
func (h *Handler) updateCartItem(c *gin.Context) {
	var req struct {
		Quantity int `json:"quantity" binding:"required,min=1,max=10"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "quantity must be between 1 and 10"})
		return
	}

	userID, _ := currentUser(c)
	err := h.cartService.UpdateQuantity(c.Request.Context(), userID, c.Param("id"), req.Quantity)
	if errors.Is(err, store.ErrCartItemNotFound) {
		c.JSON(http.StatusNotFound, gin.H{"error": "Cart item not found"})
		return
	}
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to update cart"})
		return
	}

	c.Status(http.StatusNoContent)
}

// removeCartItem deletes a cart line
func (h *Handler) removeCartItem(c *gin.Context) {
	userID, _ := currentUser(c)

	err := h.cartService.RemoveItem(c.Request.Context(), userID, c.Param("id"))
	if errors.Is(err, store.ErrCartItemNotFound) {
		c.JSON(http.StatusNotFound, gin.H{"error": "Cart item not found"})
		return
	}
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to remove cart item"})
		return
	}

	c.Status(http.StatusNoContent)
}

// prometheusMiddleware collects HTTP metrics
func prometheusMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()

		c.Next()

		duration := time.Since(start).Seconds()
		status := strconv.Itoa(c.Writer.Status())

		util.HTTPRequestDuration.WithLabelValues(
			c.Request.Method,
			c.FullPath(),
			status,
		).Observe(duration)

		util.HTTPRequestsTotal.WithLabelValues(
			c.Request.Method,
			c.FullPath(),
			status,
		).Inc()
	}
}
