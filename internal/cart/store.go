package cart

import (
	"context"

	"github.com/shopspring/decimal"
)

// Snapshot is the serialized form of a cart handed to persistence backends.
// Any store that round-trips it satisfies the contract; the line shape
// mirrors what the storefront persisted historically.
type Snapshot struct {
	Items []SnapshotItem `json:"items"`
}

// SnapshotItem is one persisted cart line.
type SnapshotItem struct {
	ID             string          `json:"id"`
	ProductID      string          `json:"productId"`
	Name           string          `json:"name"`
	Price          decimal.Decimal `json:"price"`
	Qty            int             `json:"qty"`
	UnitLabel      string          `json:"unitLabel"`
	UnitMultiplier decimal.Decimal `json:"unitMultiplier"`
	Image          *string         `json:"image,omitempty"`
}

// SnapshotStore persists cart snapshots between requests. Load returns
// (nil, nil) when no snapshot exists for the session.
type SnapshotStore interface {
	Load(ctx context.Context, sessionID string) (*Snapshot, error)
	Save(ctx context.Context, sessionID string, snap Snapshot) error
	Delete(ctx context.Context, sessionID string) error
}

// Snapshot renders the cart's current lines in insertion order.
func (c *Cart) Snapshot() Snapshot {
	snap := Snapshot{Items: make([]SnapshotItem, 0, len(c.items))}
	for _, item := range c.items {
		snap.Items = append(snap.Items, SnapshotItem{
			ID:             item.Key.String(),
			ProductID:      item.Key.ProductID,
			Name:           item.Name,
			Price:          item.UnitPrice,
			Qty:            item.Qty,
			UnitLabel:      item.Key.UnitLabel,
			UnitMultiplier: item.UnitMultiplier,
			Image:          item.Image,
		})
	}
	return snap
}

// FromSnapshot rebuilds a cart from its persisted form. Lines that would
// violate the cart invariants are dropped rather than resurrected.
func FromSnapshot(snap Snapshot) *Cart {
	c := NewCart()
	for _, line := range snap.Items {
		item := LineItem{
			Key:            NewItemKey(line.ProductID, line.UnitLabel),
			Name:           line.Name,
			UnitPrice:      line.Price,
			UnitMultiplier: line.UnitMultiplier,
			Qty:            line.Qty,
			Image:          line.Image,
		}
		if err := item.validate(); err != nil {
			continue
		}
		_ = c.Add(item)
	}
	return c
}
