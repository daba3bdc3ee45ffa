package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/angelmondragon/storefront-backend/pkg/money"
)

// ShippingMethod is a selectable carrier option with its own cost and optional
// free-shipping threshold.
type ShippingMethod struct {
	ID                         uuid.UUID    `gorm:"column:id;type:uuid;primaryKey"`
	Name                       string       `gorm:"column:name;not null"`
	Description                *string      `gorm:"column:description"`
	CostCents                  money.Money  `gorm:"column:cost_cents;not null"`
	FreeShippingThresholdCents *money.Money `gorm:"column:free_shipping_threshold_cents"`
	EstimatedDaysMin           int          `gorm:"column:estimated_days_min;not null"`
	EstimatedDaysMax           int          `gorm:"column:estimated_days_max;not null"`
	IsActive                   bool         `gorm:"column:is_active;not null"`
	SortOrder                  int          `gorm:"column:sort_order;not null"`
	CreatedAt                  time.Time    `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt                  time.Time    `gorm:"column:updated_at;autoUpdateTime"`
}

func (m *ShippingMethod) BeforeCreate(*gorm.DB) error {
	ensureID(&m.ID)
	return nil
}
