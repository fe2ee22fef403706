// Package pricing holds the pure derivations that turn a catalog product and
// a chosen pack-size option into cart-ready numbers. Nothing here rounds or
// formats money; that stays a presentation concern.
package pricing

import (
	"regexp"
	"strings"

	"github.com/shopspring/decimal"
)

// UnitOption is a selectable pack size with the scalar applied to the
// product's base price.
type UnitOption struct {
	Label      string          `json:"label"`
	Multiplier decimal.Decimal `json:"multiplier"`
}

const (
	UnitTypeKg  = "kg"
	UnitTypePcs = "pcs"
)

// weightKeywords mirrors the storefront's historical fallback for products
// without an explicit unitType. It is a known approximation ("Potato Chips"
// matches "potato" and lands in the weight set); an explicit catalog field
// always wins.
var weightKeywords = regexp.MustCompile(`(?i)fruit|veg|vegetable|onion|potato|tomato`)

var (
	kgOptions = []UnitOption{
		{Label: "250 g", Multiplier: decimal.RequireFromString("0.25")},
		{Label: "500 g", Multiplier: decimal.RequireFromString("0.5")},
		{Label: "1 kg", Multiplier: decimal.NewFromInt(1)},
		{Label: "2 kg", Multiplier: decimal.NewFromInt(2)},
	}
	pcsOptions = []UnitOption{
		{Label: "1 pc", Multiplier: decimal.NewFromInt(1)},
		{Label: "2 pcs", Multiplier: decimal.NewFromInt(2)},
		{Label: "4 pcs", Multiplier: decimal.NewFromInt(4)},
	}
)

// EffectiveUnitPrice is the base price scaled by the option's multiplier.
func EffectiveUnitPrice(basePrice decimal.Decimal, option UnitOption) decimal.Decimal {
	return basePrice.Mul(option.Multiplier)
}

// ResolveUnitType returns the explicit unit type when set, otherwise falls
// back to the keyword match against the product's category.
func ResolveUnitType(unitType, category string) string {
	if trimmed := strings.TrimSpace(unitType); trimmed != "" {
		return trimmed
	}
	if weightKeywords.MatchString(category) {
		return UnitTypeKg
	}
	return UnitTypePcs
}

// DefaultOptionsFor returns the product's declared options verbatim when
// present, otherwise the fixed fallback set for its unit type.
func DefaultOptionsFor(declared []UnitOption, unitType, category string) []UnitOption {
	if len(declared) > 0 {
		return declared
	}
	if ResolveUnitType(unitType, category) == UnitTypeKg {
		return kgOptions
	}
	return pcsOptions
}

// FindOption locates an option by its label.
func FindOption(options []UnitOption, label string) (UnitOption, bool) {
	for _, option := range options {
		if option.Label == label {
			return option, true
		}
	}
	return UnitOption{}, false
}

// DiscountPercent is the rounded percentage saved against the original
// price, zero when there is no saving or the original is non-positive.
func DiscountPercent(original, effective decimal.Decimal) int {
	if original.LessThanOrEqual(decimal.Zero) || original.LessThanOrEqual(effective) {
		return 0
	}
	percent := original.Sub(effective).
		Div(original).
		Mul(decimal.NewFromInt(100)).
		Round(0)
	return int(percent.IntPart())
}
