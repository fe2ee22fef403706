package controllers

import (
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/shopspring/decimal"

	"github.com/grengcry/cart-service/api/responses"
	"github.com/grengcry/cart-service/internal/cart"
	"github.com/grengcry/cart-service/internal/pricing"
	pkgerrors "github.com/grengcry/cart-service/pkg/errors"
	"github.com/grengcry/cart-service/pkg/logger"
)

type unitOptionView struct {
	Label           string          `json:"label"`
	Multiplier      decimal.Decimal `json:"multiplier"`
	EffectivePrice  decimal.Decimal `json:"effectivePrice"`
	DiscountPercent int             `json:"discountPercent,omitempty"`
}

type productOptionsView struct {
	ProductID string           `json:"productId"`
	Name      string           `json:"name"`
	UnitType  string           `json:"unitType"`
	Options   []unitOptionView `json:"options"`
}

// ProductOptions returns the selectable pack sizes for a product with their
// effective prices, so the storefront renders choices without doing math.
func ProductOptions(loader cart.ProductLoader, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		if loader == nil {
			responses.WriteError(ctx, logg, w, pkgerrors.New(pkgerrors.CodeInternal, "catalog unavailable"))
			return
		}

		productID := strings.TrimSpace(chi.URLParam(r, "id"))
		if productID == "" {
			responses.WriteError(ctx, logg, w, pkgerrors.New(pkgerrors.CodeValidation, "product id is required"))
			return
		}

		product, err := loader.GetProduct(ctx, productID)
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}

		view := productOptionsView{
			ProductID: product.ID,
			Name:      product.Name,
			UnitType:  product.ResolvedUnitType(),
		}
		for _, option := range product.Options() {
			effective := pricing.EffectiveUnitPrice(product.Price, option)
			entry := unitOptionView{
				Label:          option.Label,
				Multiplier:     option.Multiplier,
				EffectivePrice: effective,
			}
			if product.OriginalPrice != nil {
				originalEffective := pricing.EffectiveUnitPrice(*product.OriginalPrice, option)
				entry.DiscountPercent = pricing.DiscountPercent(originalEffective, effective)
			}
			view.Options = append(view.Options, entry)
		}

		responses.WriteSuccess(w, view)
	}
}
