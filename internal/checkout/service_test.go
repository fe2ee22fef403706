package checkout

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/shopspring/decimal"

	"github.com/grengcry/cart-service/internal/cart"
	"github.com/grengcry/cart-service/internal/catalog"
	"github.com/grengcry/cart-service/internal/orders"
	pkgerrors "github.com/grengcry/cart-service/pkg/errors"
)

type memoryStore struct {
	mu        sync.Mutex
	snapshots map[string]cart.Snapshot
}

func newMemoryStore() *memoryStore {
	return &memoryStore{snapshots: make(map[string]cart.Snapshot)}
}

func (m *memoryStore) Load(ctx context.Context, sessionID string) (*cart.Snapshot, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	snap, ok := m.snapshots[sessionID]
	if !ok {
		return nil, nil
	}
	return &snap, nil
}

func (m *memoryStore) Save(ctx context.Context, sessionID string, snap cart.Snapshot) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.snapshots[sessionID] = snap
	return nil
}

func (m *memoryStore) Delete(ctx context.Context, sessionID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.snapshots, sessionID)
	return nil
}

type stubCatalog struct {
	stock map[string]int
	err   error
	calls []string
}

func (s *stubCatalog) GetProduct(ctx context.Context, productID string) (*catalog.Product, error) {
	s.calls = append(s.calls, productID)
	if s.err != nil {
		return nil, s.err
	}
	stock, ok := s.stock[productID]
	if !ok {
		return nil, pkgerrors.New(pkgerrors.CodeNotFound, "product not found")
	}
	return &catalog.Product{ID: productID, Name: "p" + productID, Price: decimal.NewFromInt(10), Stock: stock}, nil
}

type stubOrders struct {
	err      error
	orderID  string
	requests []orders.CreateOrderRequest
}

func (s *stubOrders) CreateOrder(ctx context.Context, req orders.CreateOrderRequest) (*orders.Order, error) {
	s.requests = append(s.requests, req)
	if s.err != nil {
		return nil, s.err
	}
	return &orders.Order{ID: s.orderID}, nil
}

type stubLimiter struct {
	allow bool
	err   error
}

func (s *stubLimiter) FixedWindowAllow(ctx context.Context, scope string, limit int64, window time.Duration) (bool, int64, error) {
	return s.allow, 1, s.err
}

func seedCart(t *testing.T, mgr *cart.Manager, sessionID string, items ...cart.LineItem) {
	t.Helper()
	err := mgr.Update(context.Background(), sessionID, func(c *cart.Cart) error {
		for _, item := range items {
			if err := c.Add(item); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		t.Fatalf("seed cart: %v", err)
	}
}

func item(productID, unitLabel string, qty int) cart.LineItem {
	return cart.LineItem{
		Key:            cart.NewItemKey(productID, unitLabel),
		Name:           "p" + productID,
		UnitPrice:      decimal.NewFromInt(10),
		UnitMultiplier: decimal.NewFromInt(1),
		Qty:            qty,
	}
}

func cartLen(t *testing.T, mgr *cart.Manager, sessionID string) int {
	t.Helper()
	var n int
	if err := mgr.View(context.Background(), sessionID, func(c *cart.Cart) { n = c.Len() }); err != nil {
		t.Fatalf("view cart: %v", err)
	}
	return n
}

func TestCheckoutSuccessClearsCart(t *testing.T) {
	mgr := cart.NewManager(newMemoryStore())
	seedCart(t, mgr, "sess-1", item("12", "500 g", 2), item("7", "1 pc", 1))

	orderStub := &stubOrders{orderID: "ord-001"}
	svc, err := NewService(ServiceParams{
		Carts:   mgr,
		Catalog: &stubCatalog{stock: map[string]int{"12": 5, "7": 5}},
		Orders:  orderStub,
	})
	if err != nil {
		t.Fatalf("NewService: %v", err)
	}

	result, err := svc.Checkout(context.Background(), "sess-1")
	if err != nil {
		t.Fatalf("Checkout: %v", err)
	}
	if result.OrderID != "ord-001" {
		t.Fatalf("order id = %q, want ord-001", result.OrderID)
	}
	if got := cartLen(t, mgr, "sess-1"); got != 0 {
		t.Fatalf("cart not cleared after checkout: %d lines", got)
	}
}

func TestCheckoutAggregatesAcrossPackSizes(t *testing.T) {
	mgr := cart.NewManager(newMemoryStore())
	seedCart(t, mgr, "sess-1",
		item("12", "500 g", 2),
		item("7", "1 pc", 1),
		item("12", "1 kg", 3),
	)

	orderStub := &stubOrders{orderID: "ord-001"}
	svc, err := NewService(ServiceParams{
		Carts:   mgr,
		Catalog: &stubCatalog{stock: map[string]int{"12": 10, "7": 10}},
		Orders:  orderStub,
	})
	if err != nil {
		t.Fatalf("NewService: %v", err)
	}

	if _, err := svc.Checkout(context.Background(), "sess-1"); err != nil {
		t.Fatalf("Checkout: %v", err)
	}

	if len(orderStub.requests) != 1 {
		t.Fatalf("orders placed = %d, want 1", len(orderStub.requests))
	}
	lines := orderStub.requests[0].Products
	if len(lines) != 2 {
		t.Fatalf("order lines = %d, want 2", len(lines))
	}
	if lines[0].ProductID != "12" || lines[0].Quantity != 5 {
		t.Fatalf("first line = %+v, want product 12 qty 5", lines[0])
	}
	if lines[1].ProductID != "7" || lines[1].Quantity != 1 {
		t.Fatalf("second line = %+v, want product 7 qty 1", lines[1])
	}
}

func TestCheckoutEmptyCart(t *testing.T) {
	svc, err := NewService(ServiceParams{
		Carts:   cart.NewManager(newMemoryStore()),
		Catalog: &stubCatalog{},
		Orders:  &stubOrders{},
	})
	if err != nil {
		t.Fatalf("NewService: %v", err)
	}

	_, err = svc.Checkout(context.Background(), "sess-1")
	if pkgerrors.As(err).Code() != pkgerrors.CodeValidation {
		t.Fatalf("expected validation error, got %v", err)
	}
}

func TestCheckoutInsufficientStockLeavesCartUntouched(t *testing.T) {
	mgr := cart.NewManager(newMemoryStore())
	seedCart(t, mgr, "sess-1", item("12", "500 g", 2), item("7", "1 pc", 9))

	orderStub := &stubOrders{orderID: "ord-001"}
	svc, err := NewService(ServiceParams{
		Carts:   mgr,
		Catalog: &stubCatalog{stock: map[string]int{"12": 5, "7": 3}},
		Orders:  orderStub,
	})
	if err != nil {
		t.Fatalf("NewService: %v", err)
	}

	_, err = svc.Checkout(context.Background(), "sess-1")
	if pkgerrors.As(err).Code() != pkgerrors.CodeConflict {
		t.Fatalf("expected conflict error, got %v", err)
	}
	details, ok := pkgerrors.As(err).Details().(map[string]any)
	if !ok || details["productId"] != "7" || details["requested"] != 9 || details["available"] != 3 {
		t.Fatalf("unexpected details: %+v", pkgerrors.As(err).Details())
	}
	if len(orderStub.requests) != 0 {
		t.Fatal("order placed despite stock shortfall")
	}
	if got := cartLen(t, mgr, "sess-1"); got != 2 {
		t.Fatalf("cart mutated by failed checkout: %d lines", got)
	}
}

func TestCheckoutStockCheckAbortsOnFirstFailure(t *testing.T) {
	mgr := cart.NewManager(newMemoryStore())
	seedCart(t, mgr, "sess-1", item("12", "500 g", 9), item("7", "1 pc", 1))

	catalogStub := &stubCatalog{stock: map[string]int{"12": 1, "7": 10}}
	svc, err := NewService(ServiceParams{
		Carts:   mgr,
		Catalog: catalogStub,
		Orders:  &stubOrders{},
	})
	if err != nil {
		t.Fatalf("NewService: %v", err)
	}

	if _, err := svc.Checkout(context.Background(), "sess-1"); err == nil {
		t.Fatal("expected checkout to fail")
	}
	if len(catalogStub.calls) != 1 {
		t.Fatalf("stock checks = %d, want 1 (abort on first failure)", len(catalogStub.calls))
	}
}

func TestCheckoutOrderFailureLeavesCartUntouched(t *testing.T) {
	mgr := cart.NewManager(newMemoryStore())
	seedCart(t, mgr, "sess-1", item("12", "500 g", 1))

	svc, err := NewService(ServiceParams{
		Carts:   mgr,
		Catalog: &stubCatalog{stock: map[string]int{"12": 5}},
		Orders:  &stubOrders{err: pkgerrors.New(pkgerrors.CodeDependency, "order service down")},
	})
	if err != nil {
		t.Fatalf("NewService: %v", err)
	}

	_, err = svc.Checkout(context.Background(), "sess-1")
	if pkgerrors.As(err).Code() != pkgerrors.CodeDependency {
		t.Fatalf("expected dependency error, got %v", err)
	}
	if got := cartLen(t, mgr, "sess-1"); got != 1 {
		t.Fatalf("cart mutated by failed checkout: %d lines", got)
	}
}

func TestCheckoutRateLimited(t *testing.T) {
	mgr := cart.NewManager(newMemoryStore())
	seedCart(t, mgr, "sess-1", item("12", "500 g", 1))

	svc, err := NewService(ServiceParams{
		Carts:           mgr,
		Catalog:         &stubCatalog{stock: map[string]int{"12": 5}},
		Orders:          &stubOrders{orderID: "ord-001"},
		Limiter:         &stubLimiter{allow: false},
		RateLimitMax:    10,
		RateLimitWindow: time.Minute,
	})
	if err != nil {
		t.Fatalf("NewService: %v", err)
	}

	_, err = svc.Checkout(context.Background(), "sess-1")
	if pkgerrors.As(err).Code() != pkgerrors.CodeRateLimit {
		t.Fatalf("expected rate-limit error, got %v", err)
	}
}

func TestCheckoutBrokenLimiterDoesNotBlock(t *testing.T) {
	mgr := cart.NewManager(newMemoryStore())
	seedCart(t, mgr, "sess-1", item("12", "500 g", 1))

	svc, err := NewService(ServiceParams{
		Carts:           mgr,
		Catalog:         &stubCatalog{stock: map[string]int{"12": 5}},
		Orders:          &stubOrders{orderID: "ord-001"},
		Limiter:         &stubLimiter{err: pkgerrors.New(pkgerrors.CodeDependency, "redis down")},
		RateLimitMax:    10,
		RateLimitWindow: time.Minute,
	})
	if err != nil {
		t.Fatalf("NewService: %v", err)
	}

	result, err := svc.Checkout(context.Background(), "sess-1")
	if err != nil {
		t.Fatalf("Checkout: %v", err)
	}
	if result.OrderID != "ord-001" {
		t.Fatalf("order id = %q, want ord-001", result.OrderID)
	}
}
