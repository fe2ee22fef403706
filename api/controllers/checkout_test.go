package controllers

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/grengcry/cart-service/api/middleware"
	"github.com/grengcry/cart-service/internal/checkout"
	pkgerrors "github.com/grengcry/cart-service/pkg/errors"
	"github.com/grengcry/cart-service/pkg/types"
)

type stubCheckoutService struct {
	result  checkout.Result
	err     error
	session string
}

func (s *stubCheckoutService) Checkout(ctx context.Context, sessionID string) (checkout.Result, error) {
	s.session = sessionID
	return s.result, s.err
}

func TestCheckoutSuccess(t *testing.T) {
	svc := &stubCheckoutService{result: checkout.Result{OrderID: "ord-001"}}
	w := httptest.NewRecorder()

	req := httptest.NewRequest(http.MethodPost, "/api/v1/checkout", nil)
	req = req.WithContext(middleware.WithSessionID(req.Context(), "sess-1"))
	Checkout(svc, nil)(w, req)

	if w.Code != http.StatusCreated {
		t.Fatalf("status = %d, want 201", w.Code)
	}
	if svc.session != "sess-1" {
		t.Fatalf("session = %q, want sess-1", svc.session)
	}

	var body types.SuccessEnvelope
	if err := json.NewDecoder(w.Body).Decode(&body); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if body.Data.(map[string]any)["orderId"] != "ord-001" {
		t.Fatalf("unexpected payload: %v", body.Data)
	}
}

func TestCheckoutStockConflict(t *testing.T) {
	svc := &stubCheckoutService{err: pkgerrors.New(pkgerrors.CodeConflict, "insufficient stock").
		WithDetails(map[string]any{"productId": "7", "requested": 9, "available": 3})}
	w := httptest.NewRecorder()

	req := httptest.NewRequest(http.MethodPost, "/api/v1/checkout", nil)
	req = req.WithContext(middleware.WithSessionID(req.Context(), "sess-1"))
	Checkout(svc, nil)(w, req)

	if w.Code != http.StatusConflict {
		t.Fatalf("status = %d, want 409", w.Code)
	}

	var body types.ErrorEnvelope
	if err := json.NewDecoder(w.Body).Decode(&body); err != nil {
		t.Fatalf("decode: %v", err)
	}
	details, ok := body.Error.Details.(map[string]any)
	if !ok || details["productId"] != "7" {
		t.Fatalf("stock details missing: %v", body.Error.Details)
	}
}

func TestCheckoutEmptyCart(t *testing.T) {
	svc := &stubCheckoutService{err: pkgerrors.New(pkgerrors.CodeValidation, "cart is empty")}
	w := httptest.NewRecorder()

	req := httptest.NewRequest(http.MethodPost, "/api/v1/checkout", nil)
	req = req.WithContext(middleware.WithSessionID(req.Context(), "sess-1"))
	Checkout(svc, nil)(w, req)

	if w.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400", w.Code)
	}
}
