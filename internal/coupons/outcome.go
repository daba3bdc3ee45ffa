package coupons

import (
	"github.com/google/uuid"

	"github.com/angelmondragon/storefront-backend/pkg/enums"
	"github.com/angelmondragon/storefront-backend/pkg/money"
)

type OutcomeStatus string

const (
	OutcomeNone       OutcomeStatus = "none"
	OutcomeApplied    OutcomeStatus = "applied"
	OutcomeNotApplied OutcomeStatus = "not_applied"
)

// Outcome distinguishes "no code supplied" from "code applied" and "code rejected".
type Outcome struct {
	Status   OutcomeStatus               `json:"status"`
	Code     string                      `json:"code,omitempty"`
	CouponID *uuid.UUID                  `json:"coupon_id,omitempty"`
	Discount money.Money                 `json:"discount"`
	Reason   enums.CouponRejectionReason `json:"reason,omitempty"`
	Message  string                      `json:"message,omitempty"`
}

func NotRequested() Outcome {
	return Outcome{Status: OutcomeNone}
}

func Applied(code string, couponID uuid.UUID, discount money.Money) Outcome {
	id := couponID
	return Outcome{Status: OutcomeApplied, Code: code, CouponID: &id, Discount: discount}
}

func NotApplied(code string, reason enums.CouponRejectionReason) Outcome {
	return Outcome{Status: OutcomeNotApplied, Code: code, Reason: reason, Message: reason.Message()}
}

func (o Outcome) IsApplied() bool {
	return o.Status == OutcomeApplied
}
