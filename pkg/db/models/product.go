package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/angelmondragon/storefront-backend/pkg/money"
)

// Product is the catalog row; stock_quantity is the authoritative inventory count.
type Product struct {
	ID             uuid.UUID        `gorm:"column:id;type:uuid;primaryKey"`
	Name           string           `gorm:"column:name;not null"`
	SKU            string           `gorm:"column:sku;not null;uniqueIndex"`
	Description    *string          `gorm:"column:description"`
	CategoryID     *uuid.UUID       `gorm:"column:category_id;type:uuid"`
	PriceCents     money.Money      `gorm:"column:price_cents;not null"`
	SalePriceCents *money.Money     `gorm:"column:sale_price_cents"`
	StockQuantity  int              `gorm:"column:stock_quantity;not null;check:stock_quantity >= 0"`
	IsActive       bool             `gorm:"column:is_active;not null"`
	Variants       []ProductVariant `gorm:"foreignKey:ProductID;constraint:OnDelete:CASCADE"`
	CreatedAt      time.Time        `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt      time.Time        `gorm:"column:updated_at;autoUpdateTime"`
}

func (p *Product) BeforeCreate(*gorm.DB) error {
	ensureID(&p.ID)
	return nil
}

// EffectivePrice is the sale price when one is set, otherwise the list price.
func (p Product) EffectivePrice() money.Money {
	if p.SalePriceCents != nil {
		return *p.SalePriceCents
	}
	return p.PriceCents
}

// ProductVariant carries variant attributes (size, colour) and an optional price override.
type ProductVariant struct {
	ID            uuid.UUID         `gorm:"column:id;type:uuid;primaryKey"`
	ProductID     uuid.UUID         `gorm:"column:product_id;type:uuid;not null;index"`
	SKU           string            `gorm:"column:sku;not null"`
	Attributes    map[string]string `gorm:"column:attributes;type:jsonb;serializer:json"`
	PriceCents    *money.Money      `gorm:"column:price_cents"`
	StockQuantity int               `gorm:"column:stock_quantity;not null"`
	CreatedAt     time.Time         `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt     time.Time         `gorm:"column:updated_at;autoUpdateTime"`
}

func (v *ProductVariant) BeforeCreate(*gorm.DB) error {
	ensureID(&v.ID)
	return nil
}
