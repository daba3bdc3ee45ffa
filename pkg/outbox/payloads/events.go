package payloads

import (
	"time"

	"github.com/google/uuid"

	"github.com/angelmondragon/storefront-backend/pkg/enums"
	"github.com/angelmondragon/storefront-backend/pkg/money"
)

// OrderLine is the per-line part of OrderPlacedEvent.
type OrderLine struct {
	ProductID uuid.UUID   `json:"product_id"`
	VariantID *uuid.UUID  `json:"variant_id,omitempty"`
	SKU       string      `json:"sku"`
	Quantity  int         `json:"quantity"`
	UnitPrice money.Money `json:"unit_price"`
}

// OrderPlacedEvent is emitted once per successful checkout.
type OrderPlacedEvent struct {
	OrderID       uuid.UUID           `json:"order_id"`
	OrderNumber   string              `json:"order_number"`
	UserID        uuid.UUID           `json:"user_id"`
	PaymentMethod enums.PaymentMethod `json:"payment_method"`
	Subtotal      money.Money         `json:"subtotal"`
	Tax           money.Money         `json:"tax"`
	ShippingCost  money.Money         `json:"shipping_cost"`
	Discount      money.Money         `json:"discount"`
	Total         money.Money         `json:"total"`
	CouponCode    *string             `json:"coupon_code,omitempty"`
	Lines         []OrderLine         `json:"lines"`
	PlacedAt      time.Time           `json:"placed_at"`
}

// OrderStatusChangedEvent covers paid, shipped, delivered, cancelled and refunded.
type OrderStatusChangedEvent struct {
	OrderID        uuid.UUID           `json:"order_id"`
	OrderNumber    string              `json:"order_number"`
	UserID         uuid.UUID           `json:"user_id"`
	From           enums.OrderStatus   `json:"from"`
	To             enums.OrderStatus   `json:"to"`
	PaymentStatus  enums.PaymentStatus `json:"payment_status"`
	TrackingNumber *string             `json:"tracking_number,omitempty"`
	Reason         string              `json:"reason,omitempty"`
	ChangedAt      time.Time           `json:"changed_at"`
}
