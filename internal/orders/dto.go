package orders

import (
	"time"

	"github.com/google/uuid"

	"github.com/angelmondragon/storefront-backend/pkg/db/models"
	"github.com/angelmondragon/storefront-backend/pkg/enums"
	"github.com/angelmondragon/storefront-backend/pkg/money"
	"github.com/angelmondragon/storefront-backend/pkg/pagination"
)

// LineDTO is a frozen order line.
type LineDTO struct {
	ID                uuid.UUID         `json:"id"`
	ProductID         uuid.UUID         `json:"product_id"`
	VariantID         *uuid.UUID        `json:"variant_id,omitempty"`
	ProductName       string            `json:"product_name"`
	ProductSKU        string            `json:"product_sku"`
	VariantAttributes map[string]string `json:"variant_attributes,omitempty"`
	Quantity          int               `json:"quantity"`
	UnitPrice         money.Money       `json:"unit_price"`
	LineTotal         money.Money       `json:"line_total"`
}

type AddressDTO struct {
	ID         uuid.UUID `json:"id"`
	Label      *string   `json:"label,omitempty"`
	FullName   string    `json:"full_name"`
	Phone      *string   `json:"phone,omitempty"`
	Line1      string    `json:"line1"`
	Line2      *string   `json:"line2,omitempty"`
	City       string    `json:"city"`
	State      *string   `json:"state,omitempty"`
	PostalCode string    `json:"postal_code"`
	Country    string    `json:"country"`
	IsDefault  bool      `json:"is_default"`
}

type CouponDTO struct {
	ID    uuid.UUID        `json:"id"`
	Code  string           `json:"code"`
	Type  enums.CouponType `json:"type"`
	Value string           `json:"value"`
}

// OrderDTO is the public representation of an order.
type OrderDTO struct {
	ID              uuid.UUID           `json:"id"`
	OrderNumber     string              `json:"order_number"`
	Status          enums.OrderStatus   `json:"status"`
	PaymentStatus   enums.PaymentStatus `json:"payment_status"`
	PaymentMethod   enums.PaymentMethod `json:"payment_method"`
	Subtotal        money.Money         `json:"subtotal"`
	Tax             money.Money         `json:"tax"`
	ShippingCost    money.Money         `json:"shipping_cost"`
	Discount        money.Money         `json:"discount"`
	Total           money.Money         `json:"total"`
	TrackingNumber  *string             `json:"tracking_number"`
	Notes           *string             `json:"notes"`
	Lines           []LineDTO           `json:"lines"`
	ShippingAddress *AddressDTO         `json:"shipping_address,omitempty"`
	BillingAddress  *AddressDTO         `json:"billing_address,omitempty"`
	Coupon          *CouponDTO          `json:"coupon,omitempty"`
	ShippedAt       *time.Time          `json:"shipped_at,omitempty"`
	DeliveredAt     *time.Time          `json:"delivered_at,omitempty"`
	CancelledAt     *time.Time          `json:"cancelled_at,omitempty"`
	CreatedAt       time.Time           `json:"created_at"`
	UpdatedAt       time.Time           `json:"updated_at"`
}

// TrackingView is the reduced shape served by order-number lookups.
type TrackingView struct {
	OrderNumber    string            `json:"order_number"`
	Status         enums.OrderStatus `json:"status"`
	TrackingNumber *string           `json:"tracking_number"`
	ShippedAt      *time.Time        `json:"shipped_at"`
	DeliveredAt    *time.Time        `json:"delivered_at"`
}

type OrderList = pagination.Page[OrderDTO]

func FromModel(o *models.Order) *OrderDTO {
	if o == nil {
		return nil
	}
	dto := &OrderDTO{
		ID:              o.ID,
		OrderNumber:     o.OrderNumber,
		Status:          o.Status,
		PaymentStatus:   o.PaymentStatus,
		PaymentMethod:   o.PaymentMethod,
		Subtotal:        o.SubtotalCents,
		Tax:             o.TaxCents,
		ShippingCost:    o.ShippingCostCents,
		Discount:        o.DiscountCents,
		Total:           o.TotalCents,
		TrackingNumber:  o.TrackingNumber,
		Notes:           o.Notes,
		Lines:           make([]LineDTO, 0, len(o.Lines)),
		ShippingAddress: AddressFromModel(o.ShippingAddress),
		BillingAddress:  AddressFromModel(o.BillingAddress),
		ShippedAt:       o.ShippedAt,
		DeliveredAt:     o.DeliveredAt,
		CancelledAt:     o.CancelledAt,
		CreatedAt:       o.CreatedAt,
		UpdatedAt:       o.UpdatedAt,
	}
	for _, line := range o.Lines {
		dto.Lines = append(dto.Lines, LineDTO{
			ID:                line.ID,
			ProductID:         line.ProductID,
			VariantID:         line.VariantID,
			ProductName:       line.ProductName,
			ProductSKU:        line.ProductSKU,
			VariantAttributes: line.VariantAttributes,
			Quantity:          line.Quantity,
			UnitPrice:         line.UnitPriceCents,
			LineTotal:         line.LineTotalCents,
		})
	}
	if o.Coupon != nil {
		dto.Coupon = &CouponDTO{
			ID:    o.Coupon.ID,
			Code:  o.Coupon.Code,
			Type:  o.Coupon.Type,
			Value: o.Coupon.Value.StringFixed(2),
		}
	}
	return dto
}

// AddressFromModel renders a stored address; nil stays nil.
func AddressFromModel(a *models.Address) *AddressDTO {
	if a == nil {
		return nil
	}
	return &AddressDTO{
		ID:         a.ID,
		Label:      a.Label,
		FullName:   a.FullName,
		Phone:      a.Phone,
		Line1:      a.Line1,
		Line2:      a.Line2,
		City:       a.City,
		State:      a.State,
		PostalCode: a.PostalCode,
		Country:    a.Country,
		IsDefault:  a.IsDefault,
	}
}

func trackingFromModel(o *models.Order) *TrackingView {
	return &TrackingView{
		OrderNumber:    o.OrderNumber,
		Status:         o.Status,
		TrackingNumber: o.TrackingNumber,
		ShippedAt:      o.ShippedAt,
		DeliveredAt:    o.DeliveredAt,
	}
}
