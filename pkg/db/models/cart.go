package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/angelmondragon/storefront-backend/pkg/money"
)

// Cart is owned by either an authenticated user or an anonymous session.
type Cart struct {
	ID        uuid.UUID  `gorm:"column:id;type:uuid;primaryKey"`
	UserID    *uuid.UUID `gorm:"column:user_id;type:uuid;uniqueIndex"`
	SessionID *string    `gorm:"column:session_id;uniqueIndex"`
	Items     []CartItem `gorm:"foreignKey:CartID;constraint:OnDelete:CASCADE"`
	CreatedAt time.Time  `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt time.Time  `gorm:"column:updated_at;autoUpdateTime"`
}

func (c *Cart) BeforeCreate(*gorm.DB) error {
	ensureID(&c.ID)
	return nil
}

// CartItem is one product(+variant) line with the price captured when it was added.
type CartItem struct {
	ID             uuid.UUID       `gorm:"column:id;type:uuid;primaryKey"`
	CartID         uuid.UUID       `gorm:"column:cart_id;type:uuid;not null;index"`
	ProductID      uuid.UUID       `gorm:"column:product_id;type:uuid;not null"`
	VariantID      *uuid.UUID      `gorm:"column:variant_id;type:uuid"`
	Quantity       int             `gorm:"column:quantity;not null"`
	UnitPriceCents money.Money     `gorm:"column:unit_price_cents;not null"`
	Product        *Product        `gorm:"foreignKey:ProductID"`
	Variant        *ProductVariant `gorm:"foreignKey:VariantID"`
	CreatedAt      time.Time       `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt      time.Time       `gorm:"column:updated_at;autoUpdateTime"`
}

func (i *CartItem) BeforeCreate(*gorm.DB) error {
	ensureID(&i.ID)
	return nil
}

// LineTotal is unit price times quantity.
func (i CartItem) LineTotal() money.Money {
	return i.UnitPriceCents.Mul(i.Quantity)
}
