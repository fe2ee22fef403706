// Package checkout turns a session's cart into a placed order.
package checkout

import (
	"context"
	"time"

	"github.com/grengcry/cart-service/internal/cart"
	"github.com/grengcry/cart-service/internal/catalog"
	"github.com/grengcry/cart-service/internal/orders"
	pkgerrors "github.com/grengcry/cart-service/pkg/errors"
	"github.com/grengcry/cart-service/pkg/logger"
	"github.com/grengcry/cart-service/pkg/metrics"
)

// StockChecker resolves current stock for a product.
type StockChecker interface {
	GetProduct(ctx context.Context, productID string) (*catalog.Product, error)
}

// OrderCreator submits the finalized order.
type OrderCreator interface {
	CreateOrder(ctx context.Context, req orders.CreateOrderRequest) (*orders.Order, error)
}

// RateLimiter bounds checkout attempts per session.
type RateLimiter interface {
	FixedWindowAllow(ctx context.Context, scope string, limit int64, window time.Duration) (bool, int64, error)
}

// ServiceParams groups dependencies for the checkout service.
type ServiceParams struct {
	Carts   *cart.Manager
	Catalog StockChecker
	Orders  OrderCreator
	Limiter RateLimiter
	Logger  *logger.Logger
	Metrics *metrics.CartMetrics

	RateLimitMax    int64
	RateLimitWindow time.Duration
}

// Result is the outcome of a successful checkout.
type Result struct {
	OrderID string `json:"orderId"`
}

// Service places orders from carts. The cart is only cleared after the
// order API confirms the order; any earlier failure leaves it untouched.
type Service interface {
	Checkout(ctx context.Context, sessionID string) (Result, error)
}

type service struct {
	carts   *cart.Manager
	catalog StockChecker
	orders  OrderCreator
	limiter RateLimiter
	logg    *logger.Logger
	metrics *metrics.CartMetrics

	rateLimitMax    int64
	rateLimitWindow time.Duration
}

// NewService builds a checkout service with the required dependencies.
// The rate limiter is optional; without one every attempt is allowed.
func NewService(params ServiceParams) (Service, error) {
	if params.Carts == nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "cart manager is required")
	}
	if params.Catalog == nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "catalog client is required")
	}
	if params.Orders == nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "order client is required")
	}
	return &service{
		carts:           params.Carts,
		catalog:         params.Catalog,
		orders:          params.Orders,
		limiter:         params.Limiter,
		logg:            params.Logger,
		metrics:         params.Metrics,
		rateLimitMax:    params.RateLimitMax,
		rateLimitWindow: params.RateLimitWindow,
	}, nil
}

func (s *service) Checkout(ctx context.Context, sessionID string) (Result, error) {
	result, err := s.checkout(ctx, sessionID)
	if err != nil {
		s.metrics.IncCheckout("failure")
		return Result{}, err
	}
	s.metrics.IncCheckout("success")
	return result, nil
}

func (s *service) checkout(ctx context.Context, sessionID string) (Result, error) {
	if sessionID == "" {
		return Result{}, pkgerrors.New(pkgerrors.CodeValidation, "session id is required")
	}

	if err := s.allow(ctx, sessionID); err != nil {
		return Result{}, err
	}

	var items []cart.LineItem
	err := s.carts.View(ctx, sessionID, func(c *cart.Cart) {
		items = c.Items()
	})
	if err != nil {
		return Result{}, err
	}
	if len(items) == 0 {
		return Result{}, pkgerrors.New(pkgerrors.CodeValidation, "cart is empty")
	}

	lines := aggregateByProduct(items)
	if err := s.checkStock(ctx, lines); err != nil {
		return Result{}, err
	}

	order, err := s.orders.CreateOrder(ctx, orders.CreateOrderRequest{Products: lines})
	if err != nil {
		return Result{}, err
	}

	// the order exists either way; a failed clear must not fail checkout
	if err := s.carts.Clear(ctx, sessionID); err != nil && s.logg != nil {
		warnCtx := s.logg.WithFields(ctx, map[string]any{
			"error":    err.Error(),
			"order_id": order.ID,
		})
		s.logg.Warn(warnCtx, "failed to clear cart after checkout")
	}

	return Result{OrderID: order.ID}, nil
}

func (s *service) allow(ctx context.Context, sessionID string) error {
	if s.limiter == nil || s.rateLimitMax <= 0 {
		return nil
	}
	ok, _, err := s.limiter.FixedWindowAllow(ctx, "checkout:"+sessionID, s.rateLimitMax, s.rateLimitWindow)
	if err != nil {
		// rate limiting is advisory; a broken limiter never blocks orders
		if s.logg != nil {
			s.logg.Warn(s.logg.WithField(ctx, "error", err.Error()), "checkout rate limiter unavailable")
		}
		return nil
	}
	if !ok {
		return pkgerrors.New(pkgerrors.CodeRateLimit, "too many checkout attempts")
	}
	return nil
}

// aggregateByProduct folds cart lines into one order line per product in
// first-seen order. Quantities are summed across pack sizes; the order API
// only speaks product/quantity pairs.
func aggregateByProduct(items []cart.LineItem) []orders.OrderLine {
	index := make(map[string]int, len(items))
	lines := make([]orders.OrderLine, 0, len(items))
	for _, item := range items {
		productID := item.Key.ProductID
		if pos, ok := index[productID]; ok {
			lines[pos].Quantity += item.Qty
			continue
		}
		index[productID] = len(lines)
		lines = append(lines, orders.OrderLine{ProductID: productID, Quantity: item.Qty})
	}
	return lines
}

// checkStock verifies every aggregated product independently and aborts on
// the first shortfall.
func (s *service) checkStock(ctx context.Context, lines []orders.OrderLine) error {
	for _, line := range lines {
		product, err := s.catalog.GetProduct(ctx, line.ProductID)
		if err != nil {
			return err
		}
		if product.Stock < line.Quantity {
			return pkgerrors.New(pkgerrors.CodeConflict, "insufficient stock").
				WithDetails(map[string]any{
					"productId": line.ProductID,
					"requested": line.Quantity,
					"available": product.Stock,
				})
		}
	}
	return nil
}
