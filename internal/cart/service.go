package cart

import (
	"context"
	"strings"
	"time"

	"github.com/grengcry/cart-service/internal/catalog"
	"github.com/grengcry/cart-service/internal/pricing"
	pkgerrors "github.com/grengcry/cart-service/pkg/errors"
	"github.com/grengcry/cart-service/pkg/metrics"
)

// ProductLoader fetches catalog products for price and option resolution.
type ProductLoader interface {
	GetProduct(ctx context.Context, productID string) (*catalog.Product, error)
}

// ServiceParams groups dependencies for the cart service.
type ServiceParams struct {
	Manager  *Manager
	Products ProductLoader
	Metrics  *metrics.CartMetrics
}

// AddItemInput describes the add operation. UnitLabel is optional; when
// empty the product's first option is used, matching the storefront's
// default selection.
type AddItemInput struct {
	ProductID string `json:"productId" validate:"required"`
	UnitLabel string `json:"unitLabel"`
	Qty       int    `json:"qty" validate:"omitempty,min=1"`
}

// Service exposes the cart operations. All pricing facts are resolved at
// add time and frozen on the line; later catalog changes never rewrite a
// cart.
type Service interface {
	AddItem(ctx context.Context, sessionID string, input AddItemInput) (CartDTO, error)
	DecrementItem(ctx context.Context, sessionID, itemID string, qty int) (CartDTO, error)
	RemoveItem(ctx context.Context, sessionID, itemID string) (CartDTO, error)
	ClearCart(ctx context.Context, sessionID string) error
	GetCart(ctx context.Context, sessionID string) (CartDTO, error)
}

type service struct {
	manager  *Manager
	products ProductLoader
	metrics  *metrics.CartMetrics
}

// NewService builds a cart service with the required dependencies.
func NewService(params ServiceParams) (Service, error) {
	if params.Manager == nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "cart manager is required")
	}
	if params.Products == nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "product loader is required")
	}
	return &service{
		manager:  params.Manager,
		products: params.Products,
		metrics:  params.Metrics,
	}, nil
}

// AddItem resolves the product and pack-size option, snapshots the
// effective price onto the line, and merges it into the session's cart.
func (s *service) AddItem(ctx context.Context, sessionID string, input AddItemInput) (CartDTO, error) {
	start := time.Now()
	dto, err := s.addItem(ctx, sessionID, input)
	s.metrics.ObserveOperation("add", err, time.Since(start))
	return dto, err
}

func (s *service) addItem(ctx context.Context, sessionID string, input AddItemInput) (CartDTO, error) {
	if err := requireSession(sessionID); err != nil {
		return CartDTO{}, err
	}
	if strings.TrimSpace(input.ProductID) == "" {
		return CartDTO{}, pkgerrors.New(pkgerrors.CodeValidation, "product id is required")
	}
	qty := input.Qty
	if qty == 0 {
		qty = 1
	}
	if qty < 1 {
		return CartDTO{}, pkgerrors.New(pkgerrors.CodeValidation, "qty must be at least 1")
	}

	product, err := s.products.GetProduct(ctx, input.ProductID)
	if err != nil {
		return CartDTO{}, err
	}

	options := product.Options()
	option := options[0]
	if label := strings.TrimSpace(input.UnitLabel); label != "" {
		found, ok := pricing.FindOption(options, label)
		if !ok {
			return CartDTO{}, pkgerrors.New(pkgerrors.CodeValidation, "unknown unit option").
				WithDetails(map[string]any{"unitLabel": label})
		}
		option = found
	}

	item := LineItem{
		Key:            NewItemKey(product.ID, option.Label),
		Name:           product.Name,
		UnitPrice:      pricing.EffectiveUnitPrice(product.Price, option),
		UnitMultiplier: option.Multiplier,
		Qty:            qty,
		Image:          product.Image,
	}

	return s.mutate(ctx, sessionID, func(c *Cart) error {
		return c.Add(item)
	})
}

// DecrementItem lowers the line's quantity, removing the line when it
// reaches zero. Unknown lines are a no-op.
func (s *service) DecrementItem(ctx context.Context, sessionID, itemID string, qty int) (CartDTO, error) {
	start := time.Now()
	dto, err := s.decrementItem(ctx, sessionID, itemID, qty)
	s.metrics.ObserveOperation("decrement", err, time.Since(start))
	return dto, err
}

func (s *service) decrementItem(ctx context.Context, sessionID, itemID string, qty int) (CartDTO, error) {
	if err := requireSession(sessionID); err != nil {
		return CartDTO{}, err
	}
	key, err := ParseItemKey(itemID)
	if err != nil {
		return CartDTO{}, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid item id")
	}
	return s.mutate(ctx, sessionID, func(c *Cart) error {
		c.Decrement(key, qty)
		return nil
	})
}

// RemoveItem drops the line regardless of quantity. Removing an absent
// line succeeds.
func (s *service) RemoveItem(ctx context.Context, sessionID, itemID string) (CartDTO, error) {
	start := time.Now()
	dto, err := s.removeItem(ctx, sessionID, itemID)
	s.metrics.ObserveOperation("remove", err, time.Since(start))
	return dto, err
}

func (s *service) removeItem(ctx context.Context, sessionID, itemID string) (CartDTO, error) {
	if err := requireSession(sessionID); err != nil {
		return CartDTO{}, err
	}
	key, err := ParseItemKey(itemID)
	if err != nil {
		return CartDTO{}, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid item id")
	}
	return s.mutate(ctx, sessionID, func(c *Cart) error {
		c.Remove(key)
		return nil
	})
}

// ClearCart empties the cart and drops its persisted snapshot.
func (s *service) ClearCart(ctx context.Context, sessionID string) error {
	start := time.Now()
	err := s.clearCart(ctx, sessionID)
	s.metrics.ObserveOperation("clear", err, time.Since(start))
	return err
}

func (s *service) clearCart(ctx context.Context, sessionID string) error {
	if err := requireSession(sessionID); err != nil {
		return err
	}
	return s.manager.Clear(ctx, sessionID)
}

// GetCart returns the session's current cart, empty when none exists.
func (s *service) GetCart(ctx context.Context, sessionID string) (CartDTO, error) {
	start := time.Now()
	dto, err := s.getCart(ctx, sessionID)
	s.metrics.ObserveOperation("get", err, time.Since(start))
	return dto, err
}

func (s *service) getCart(ctx context.Context, sessionID string) (CartDTO, error) {
	if err := requireSession(sessionID); err != nil {
		return CartDTO{}, err
	}
	var dto CartDTO
	err := s.manager.View(ctx, sessionID, func(c *Cart) {
		dto = toDTO(c)
	})
	return dto, err
}

func (s *service) mutate(ctx context.Context, sessionID string, fn func(*Cart) error) (CartDTO, error) {
	var dto CartDTO
	err := s.manager.Update(ctx, sessionID, func(c *Cart) error {
		if err := fn(c); err != nil {
			return err
		}
		dto = toDTO(c)
		return nil
	})
	if err != nil {
		return CartDTO{}, err
	}
	return dto, nil
}

func requireSession(sessionID string) error {
	if strings.TrimSpace(sessionID) == "" {
		return pkgerrors.New(pkgerrors.CodeValidation, "session id is required")
	}
	return nil
}
