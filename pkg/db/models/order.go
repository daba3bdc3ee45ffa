package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/angelmondragon/storefront-backend/pkg/enums"
	"github.com/angelmondragon/storefront-backend/pkg/money"
)

// Order is the record of a completed checkout. Monetary columns are frozen at creation.
type Order struct {
	ID                uuid.UUID           `gorm:"column:id;type:uuid;primaryKey"`
	OrderNumber       string              `gorm:"column:order_number;not null;uniqueIndex"`
	UserID            uuid.UUID           `gorm:"column:user_id;type:uuid;not null;index"`
	ShippingAddressID uuid.UUID           `gorm:"column:shipping_address_id;type:uuid;not null"`
	BillingAddressID  uuid.UUID           `gorm:"column:billing_address_id;type:uuid;not null"`
	ShippingMethodID  *uuid.UUID          `gorm:"column:shipping_method_id;type:uuid"`
	PaymentMethod     enums.PaymentMethod `gorm:"column:payment_method;type:text;not null"`
	Status            enums.OrderStatus   `gorm:"column:status;type:text;not null"`
	PaymentStatus     enums.PaymentStatus `gorm:"column:payment_status;type:text;not null"`
	SubtotalCents     money.Money         `gorm:"column:subtotal_cents;not null"`
	TaxCents          money.Money         `gorm:"column:tax_cents;not null"`
	ShippingCostCents money.Money         `gorm:"column:shipping_cost_cents;not null"`
	DiscountCents     money.Money         `gorm:"column:discount_cents;not null"`
	TotalCents        money.Money         `gorm:"column:total_cents;not null"`
	CouponID          *uuid.UUID          `gorm:"column:coupon_id;type:uuid"`
	TrackingNumber    *string             `gorm:"column:tracking_number"`
	Notes             *string             `gorm:"column:notes"`
	ShippedAt         *time.Time          `gorm:"column:shipped_at"`
	DeliveredAt       *time.Time          `gorm:"column:delivered_at"`
	CancelledAt       *time.Time          `gorm:"column:cancelled_at"`
	Lines             []OrderLine         `gorm:"foreignKey:OrderID;constraint:OnDelete:CASCADE"`
	ShippingAddress   *Address            `gorm:"foreignKey:ShippingAddressID"`
	BillingAddress    *Address            `gorm:"foreignKey:BillingAddressID"`
	Coupon            *Coupon             `gorm:"foreignKey:CouponID"`
	CreatedAt         time.Time           `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt         time.Time           `gorm:"column:updated_at;autoUpdateTime"`
	DeletedAt         gorm.DeletedAt      `gorm:"column:deleted_at;index"`
}

func (o *Order) BeforeCreate(*gorm.DB) error {
	ensureID(&o.ID)
	return nil
}

// OrderLine is a frozen copy of a cart line taken when the order was placed.
type OrderLine struct {
	ID                uuid.UUID         `gorm:"column:id;type:uuid;primaryKey"`
	OrderID           uuid.UUID         `gorm:"column:order_id;type:uuid;not null;index"`
	LineNumber        int               `gorm:"column:line_number;not null"`
	ProductID         uuid.UUID         `gorm:"column:product_id;type:uuid;not null"`
	VariantID         *uuid.UUID        `gorm:"column:variant_id;type:uuid"`
	ProductName       string            `gorm:"column:product_name;not null"`
	ProductSKU        string            `gorm:"column:product_sku;not null"`
	VariantAttributes map[string]string `gorm:"column:variant_attributes;type:jsonb;serializer:json"`
	Quantity          int               `gorm:"column:quantity;not null"`
	UnitPriceCents    money.Money       `gorm:"column:unit_price_cents;not null"`
	LineTotalCents    money.Money       `gorm:"column:line_total_cents;not null"`
	CreatedAt         time.Time         `gorm:"column:created_at;autoCreateTime"`
}

func (l *OrderLine) BeforeCreate(*gorm.DB) error {
	ensureID(&l.ID)
	return nil
}
