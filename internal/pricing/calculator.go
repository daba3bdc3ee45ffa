// Package pricing turns a subtotal, shipping quote and discount into order totals.
package pricing

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/angelmondragon/storefront-backend/pkg/config"
	"github.com/angelmondragon/storefront-backend/pkg/db/models"
	pkgerrors "github.com/angelmondragon/storefront-backend/pkg/errors"
	"github.com/angelmondragon/storefront-backend/pkg/money"
)

// Breakdown holds the frozen monetary fields of an order.
type Breakdown struct {
	Subtotal money.Money `json:"subtotal"`
	Tax      money.Money `json:"tax"`
	Shipping money.Money `json:"shipping_cost"`
	Discount money.Money `json:"discount"`
	Total    money.Money `json:"total"`
}

// Compute derives tax and total. Tax is rounded once; the total never drops below zero.
func Compute(subtotal money.Money, taxRate decimal.Decimal, shipping, discount money.Money) Breakdown {
	tax := subtotal.MulRate(taxRate)
	total := money.Sum(subtotal, tax, shipping).Sub(discount).ClampMin(money.Zero)
	return Breakdown{
		Subtotal: subtotal,
		Tax:      tax,
		Shipping: shipping,
		Discount: discount,
		Total:    total,
	}
}

// Quote is the shipping cost chosen for an order plus the method it came from, if any.
type Quote struct {
	Cost   money.Money
	Method *models.ShippingMethod
}

// Calculator applies the configured tax rate and shipping policy.
type Calculator struct {
	taxRate  decimal.Decimal
	fallback ShippingStrategy
	methods  MethodRepository
}

func NewCalculator(cfg config.PricingConfig, methods MethodRepository) (*Calculator, error) {
	rate, err := cfg.TaxRateDecimal()
	if err != nil {
		return nil, err
	}
	if methods == nil {
		return nil, fmt.Errorf("shipping method repository required")
	}
	return &Calculator{
		taxRate: rate,
		fallback: ThresholdShipping{
			Threshold: money.FromCents(cfg.FreeShippingThresholdCents),
			FlatFee:   money.FromCents(cfg.FlatShippingFeeCents),
		},
		methods: methods,
	}, nil
}

// WithTx returns a calculator whose shipping method reads run on tx.
func (c *Calculator) WithTx(tx *gorm.DB) *Calculator {
	clone := *c
	clone.methods = c.methods.WithTx(tx)
	return &clone
}

func (c *Calculator) TaxRate() decimal.Decimal {
	return c.taxRate
}

// Shipping quotes the cost for subtotal. When methodID is set, that active method's
// own pricing replaces the configured default.
func (c *Calculator) Shipping(ctx context.Context, methodID *uuid.UUID, subtotal money.Money) (Quote, error) {
	if methodID == nil || *methodID == uuid.Nil {
		return Quote{Cost: c.fallback.Quote(subtotal)}, nil
	}

	method, err := c.methods.FindActiveByID(ctx, *methodID)
	if err != nil {
		return Quote{}, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load shipping method")
	}
	if method == nil {
		return Quote{}, pkgerrors.New(pkgerrors.CodeValidation, "shipping method not available").
			WithDetails(map[string]any{"shipping_method_id": *methodID})
	}
	return Quote{Cost: MethodShipping{Method: *method}.Quote(subtotal), Method: method}, nil
}

// Price computes the breakdown with the configured tax rate.
func (c *Calculator) Price(subtotal, shipping, discount money.Money) Breakdown {
	return Compute(subtotal, c.taxRate, shipping, discount)
}
