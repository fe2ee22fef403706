package cart

import "github.com/shopspring/decimal"

// LineItemDTO is one cart line as rendered to API clients. LineTotal is
// derived, never stored.
type LineItemDTO struct {
	ID             string          `json:"id"`
	ProductID      string          `json:"productId"`
	Name           string          `json:"name"`
	UnitLabel      string          `json:"unitLabel"`
	UnitMultiplier decimal.Decimal `json:"unitMultiplier"`
	UnitPrice      decimal.Decimal `json:"unitPrice"`
	Qty            int             `json:"qty"`
	LineTotal      decimal.Decimal `json:"lineTotal"`
	Image          *string         `json:"image,omitempty"`
}

// CartDTO is the full cart view returned by every mutating operation, so
// clients never need a follow-up read.
type CartDTO struct {
	Items     []LineItemDTO   `json:"items"`
	ItemCount int             `json:"itemCount"`
	Subtotal  decimal.Decimal `json:"subtotal"`
}

func toDTO(c *Cart) CartDTO {
	items := c.Items()
	dto := CartDTO{
		Items:     make([]LineItemDTO, 0, len(items)),
		ItemCount: c.ItemCount(),
		Subtotal:  c.Subtotal(),
	}
	for _, item := range items {
		dto.Items = append(dto.Items, LineItemDTO{
			ID:             item.Key.String(),
			ProductID:      item.Key.ProductID,
			Name:           item.Name,
			UnitLabel:      item.Key.UnitLabel,
			UnitMultiplier: item.UnitMultiplier,
			UnitPrice:      item.UnitPrice,
			Qty:            item.Qty,
			LineTotal:      item.LineTotal(),
			Image:          item.Image,
		})
	}
	return dto
}
