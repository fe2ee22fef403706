package catalog

import (
	"encoding/json"

	"github.com/shopspring/decimal"

	"github.com/grengcry/cart-service/internal/pricing"
)

// Product is the catalog view of a sellable item, as returned by the
// products API. IDs arrive as either JSON numbers or strings depending on
// the upstream dataset, so decoding normalizes them to strings.
type Product struct {
	ID            string
	Name          string
	Price         decimal.Decimal
	OriginalPrice *decimal.Decimal
	Category      string
	UnitType      string
	UnitOptions   []pricing.UnitOption
	Image         *string
	Stock         int
}

type productPayload struct {
	ID            json.Number          `json:"id"`
	Name          string               `json:"name"`
	Price         decimal.Decimal      `json:"price"`
	OriginalPrice *decimal.Decimal     `json:"originalPrice,omitempty"`
	Category      string               `json:"category"`
	UnitType      string               `json:"unitType,omitempty"`
	UnitOptions   []pricing.UnitOption `json:"unitOptions,omitempty"`
	Image         *string              `json:"image,omitempty"`
	Stock         int                  `json:"stock"`
}

func (p *Product) UnmarshalJSON(data []byte) error {
	var payload productPayload
	if err := json.Unmarshal(data, &payload); err != nil {
		return err
	}
	*p = Product{
		ID:            payload.ID.String(),
		Name:          payload.Name,
		Price:         payload.Price,
		OriginalPrice: payload.OriginalPrice,
		Category:      payload.Category,
		UnitType:      payload.UnitType,
		UnitOptions:   payload.UnitOptions,
		Image:         payload.Image,
		Stock:         payload.Stock,
	}
	return nil
}

func (p Product) MarshalJSON() ([]byte, error) {
	return json.Marshal(productPayload{
		ID:            json.Number(p.ID),
		Name:          p.Name,
		Price:         p.Price,
		OriginalPrice: p.OriginalPrice,
		Category:      p.Category,
		UnitType:      p.UnitType,
		UnitOptions:   p.UnitOptions,
		Image:         p.Image,
		Stock:         p.Stock,
	})
}

// Options returns the pack-size options shoppers can pick for this product.
func (p Product) Options() []pricing.UnitOption {
	return pricing.DefaultOptionsFor(p.UnitOptions, p.UnitType, p.Category)
}

// ResolvedUnitType applies the category fallback when no explicit unit type
// is set.
func (p Product) ResolvedUnitType() string {
	return pricing.ResolveUnitType(p.UnitType, p.Category)
}
