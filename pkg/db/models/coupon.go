package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/angelmondragon/storefront-backend/pkg/enums"
	"github.com/angelmondragon/storefront-backend/pkg/money"
)

// Coupon is a shared discount code. Value holds percentage points for percentage
// coupons and a major-unit amount for fixed coupons.
type Coupon struct {
	ID                   uuid.UUID        `gorm:"column:id;type:uuid;primaryKey"`
	Code                 string           `gorm:"column:code;not null;uniqueIndex"`
	Description          *string          `gorm:"column:description"`
	Type                 enums.CouponType `gorm:"column:type;type:text;not null"`
	Value                decimal.Decimal  `gorm:"column:value;type:numeric(10,2);not null"`
	MinimumPurchaseCents *money.Money     `gorm:"column:minimum_purchase_cents"`
	MaximumDiscountCents *money.Money     `gorm:"column:maximum_discount_cents"`
	UsageLimit           *int             `gorm:"column:usage_limit"`
	UsageLimitPerUser    *int             `gorm:"column:usage_limit_per_user"`
	UsageCount           int              `gorm:"column:usage_count;not null"`
	IsActive             bool             `gorm:"column:is_active;not null"`
	StartsAt             *time.Time       `gorm:"column:starts_at"`
	ExpiresAt            *time.Time       `gorm:"column:expires_at"`
	ApplicableProductIDs []uuid.UUID      `gorm:"column:applicable_product_ids;type:jsonb;serializer:json"`
	CreatedAt            time.Time        `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt            time.Time        `gorm:"column:updated_at;autoUpdateTime"`
}

func (c *Coupon) BeforeCreate(*gorm.DB) error {
	ensureID(&c.ID)
	return nil
}

// CouponUsage ties one coupon redemption to one user and one order.
type CouponUsage struct {
	ID        uuid.UUID `gorm:"column:id;type:uuid;primaryKey"`
	CouponID  uuid.UUID `gorm:"column:coupon_id;type:uuid;not null;index:idx_coupon_usages_coupon_user"`
	UserID    uuid.UUID `gorm:"column:user_id;type:uuid;not null;index:idx_coupon_usages_coupon_user"`
	OrderID   uuid.UUID `gorm:"column:order_id;type:uuid;not null"`
	CreatedAt time.Time `gorm:"column:created_at;autoCreateTime"`
}

func (u *CouponUsage) BeforeCreate(*gorm.DB) error {
	ensureID(&u.ID)
	return nil
}
