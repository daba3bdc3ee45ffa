package pricing

import (
	"github.com/angelmondragon/storefront-backend/pkg/db/models"
	"github.com/angelmondragon/storefront-backend/pkg/money"
)

// ShippingStrategy prices shipping for a subtotal.
type ShippingStrategy interface {
	Quote(subtotal money.Money) money.Money
}

// ThresholdShipping is free at or above Threshold and FlatFee below it.
type ThresholdShipping struct {
	Threshold money.Money
	FlatFee   money.Money
}

func (s ThresholdShipping) Quote(subtotal money.Money) money.Money {
	if subtotal >= s.Threshold {
		return money.Zero
	}
	return s.FlatFee
}

// MethodShipping prices with a ShippingMethod's cost and optional free threshold.
type MethodShipping struct {
	Method models.ShippingMethod
}

func (s MethodShipping) Quote(subtotal money.Money) money.Money {
	if t := s.Method.FreeShippingThresholdCents; t != nil && subtotal >= *t {
		return money.Zero
	}
	return s.Method.CostCents
}
