package models

import "github.com/google/uuid"

// ensureID assigns a fresh UUID when the caller did not provide one.
func ensureID(id *uuid.UUID) {
	if *id == uuid.Nil {
		*id = uuid.New()
	}
}

// All lists every persisted model, in dependency order, for test schemas.
func All() []any {
	return []any{
		&Product{},
		&ProductVariant{},
		&Cart{},
		&CartItem{},
		&Address{},
		&ShippingMethod{},
		&Coupon{},
		&Order{},
		&OrderLine{},
		&CouponUsage{},
		&OutboxEvent{},
		&OutboxDLQ{},
	}
}
