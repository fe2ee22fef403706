package controllers

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/shopspring/decimal"

	"github.com/grengcry/cart-service/internal/catalog"
	pkgerrors "github.com/grengcry/cart-service/pkg/errors"
	"github.com/grengcry/cart-service/pkg/types"
)

type stubLoader struct {
	product *catalog.Product
	err     error
}

func (s *stubLoader) GetProduct(ctx context.Context, productID string) (*catalog.Product, error) {
	if s.err != nil {
		return nil, s.err
	}
	return s.product, nil
}

func optionsRequest(t *testing.T, loader *stubLoader, productID string) *httptest.ResponseRecorder {
	t.Helper()
	r := chi.NewRouter()
	r.Get("/products/{id}/options", ProductOptions(loader, nil))

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/products/"+productID+"/options", nil))
	return w
}

func TestProductOptionsWeightProduct(t *testing.T) {
	original := decimal.RequireFromString("50")
	loader := &stubLoader{product: &catalog.Product{
		ID:            "12",
		Name:          "Red Onions",
		Price:         decimal.RequireFromString("40"),
		OriginalPrice: &original,
		Category:      "Fresh Vegetables",
		Stock:         8,
	}}

	w := optionsRequest(t, loader, "12")
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200: %s", w.Code, w.Body.String())
	}

	var body types.SuccessEnvelope
	if err := json.NewDecoder(w.Body).Decode(&body); err != nil {
		t.Fatalf("decode: %v", err)
	}
	data := body.Data.(map[string]any)
	if data["unitType"] != "kg" {
		t.Fatalf("unit type = %v, want kg", data["unitType"])
	}
	options := data["options"].([]any)
	if len(options) != 4 {
		t.Fatalf("options = %d, want 4", len(options))
	}
	first := options[0].(map[string]any)
	if first["label"] != "250 g" {
		t.Fatalf("first label = %v, want 250 g", first["label"])
	}
	if first["effectivePrice"] != "10" {
		t.Fatalf("effective price = %v, want 10", first["effectivePrice"])
	}
	if first["discountPercent"].(float64) != 20 {
		t.Fatalf("discount = %v, want 20", first["discountPercent"])
	}
}

func TestProductOptionsPieceProduct(t *testing.T) {
	loader := &stubLoader{product: &catalog.Product{
		ID:       "7",
		Name:     "Milk",
		Price:    decimal.RequireFromString("25"),
		Category: "Dairy",
		Stock:    10,
	}}

	w := optionsRequest(t, loader, "7")
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", w.Code)
	}

	var body types.SuccessEnvelope
	if err := json.NewDecoder(w.Body).Decode(&body); err != nil {
		t.Fatalf("decode: %v", err)
	}
	data := body.Data.(map[string]any)
	if data["unitType"] != "pcs" {
		t.Fatalf("unit type = %v, want pcs", data["unitType"])
	}
	if options := data["options"].([]any); len(options) != 3 {
		t.Fatalf("options = %d, want 3", len(options))
	}
}

func TestProductOptionsNotFound(t *testing.T) {
	loader := &stubLoader{err: pkgerrors.New(pkgerrors.CodeNotFound, "product not found")}

	w := optionsRequest(t, loader, "404")
	if w.Code != http.StatusNotFound {
		t.Fatalf("status = %d, want 404", w.Code)
	}
}
