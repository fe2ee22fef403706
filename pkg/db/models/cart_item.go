package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// CartItem is one persisted cart line. Product name, price and multiplier are
// snapshots taken at add-time; catalog changes never rewrite them.
type CartItem struct {
	ID             uuid.UUID       `gorm:"column:id;type:uuid;primaryKey"`
	CartID         uuid.UUID       `gorm:"column:cart_id;type:uuid;not null;index"`
	Position       int             `gorm:"column:position;not null"`
	ProductID      string          `gorm:"column:product_id;not null"`
	UnitLabel      string          `gorm:"column:unit_label;not null"`
	Name           string          `gorm:"column:name;not null"`
	UnitPrice      decimal.Decimal `gorm:"column:unit_price;type:numeric(12,2);not null"`
	UnitMultiplier decimal.Decimal `gorm:"column:unit_multiplier;type:numeric(8,3);not null"`
	Qty            int             `gorm:"column:qty;not null"`
	Image          *string         `gorm:"column:image"`
	CreatedAt      time.Time       `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt      time.Time       `gorm:"column:updated_at;autoUpdateTime"`
}

func (CartItem) TableName() string {
	return "cart_items"
}
