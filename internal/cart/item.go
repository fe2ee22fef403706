package cart

import (
	"fmt"
	"net/url"
	"strings"

	pkgerrors "github.com/grengcry/cart-service/pkg/errors"
	"github.com/shopspring/decimal"
)

// ItemKey identifies one cart line. Adds for the same product and the same
// pack size merge into a single line; a different pack size of the same
// product is always a distinct line.
type ItemKey struct {
	ProductID string
	UnitLabel string
}

func NewItemKey(productID, unitLabel string) ItemKey {
	return ItemKey{ProductID: productID, UnitLabel: unitLabel}
}

const keyDelimiter = ":"

// String renders the escaped wire/persistence form of the key. Components
// are query-escaped so a delimiter inside either part cannot produce a
// collision between two different keys.
func (k ItemKey) String() string {
	return url.QueryEscape(k.ProductID) + keyDelimiter + url.QueryEscape(k.UnitLabel)
}

// ParseItemKey reverses String.
func ParseItemKey(value string) (ItemKey, error) {
	parts := strings.SplitN(value, keyDelimiter, 2)
	if len(parts) != 2 {
		return ItemKey{}, fmt.Errorf("malformed item key %q", value)
	}
	productID, err := url.QueryUnescape(parts[0])
	if err != nil {
		return ItemKey{}, fmt.Errorf("malformed item key %q: %w", value, err)
	}
	unitLabel, err := url.QueryUnescape(parts[1])
	if err != nil {
		return ItemKey{}, fmt.Errorf("malformed item key %q: %w", value, err)
	}
	return ItemKey{ProductID: productID, UnitLabel: unitLabel}, nil
}

// LineItem is one row of the cart. Name, price and multiplier are snapshots
// taken at add-time; later catalog changes do not rewrite them.
type LineItem struct {
	Key            ItemKey
	Name           string
	UnitPrice      decimal.Decimal
	UnitMultiplier decimal.Decimal
	Qty            int
	Image          *string
}

// LineTotal returns unit price times quantity.
func (li LineItem) LineTotal() decimal.Decimal {
	return li.UnitPrice.Mul(decimal.NewFromInt(int64(li.Qty)))
}

func (li LineItem) validate() error {
	switch {
	case li.Key.ProductID == "":
		return pkgerrors.New(pkgerrors.CodeValidation, "invalid line item: product id is required")
	case li.Key.UnitLabel == "":
		return pkgerrors.New(pkgerrors.CodeValidation, "invalid line item: unit label is required")
	case li.Qty < 1:
		return pkgerrors.New(pkgerrors.CodeValidation, "invalid line item: qty must be positive")
	case li.UnitPrice.IsNegative():
		return pkgerrors.New(pkgerrors.CodeValidation, "invalid line item: unit price cannot be negative")
	}
	return nil
}
