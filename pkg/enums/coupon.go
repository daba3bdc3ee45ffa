package enums

import "slices"

// CouponType selects how a coupon value is interpreted.
type CouponType string

const (
	// CouponTypePercentage interprets value as percentage points.
	CouponTypePercentage CouponType = "percentage"
	// CouponTypeFixed interprets value as a currency amount.
	CouponTypeFixed CouponType = "fixed"
)

var validCouponTypes = []CouponType{
	CouponTypePercentage,
	CouponTypeFixed,
}

func (c CouponType) IsValid() bool {
	return slices.Contains(validCouponTypes, c)
}

func ParseCouponType(value string) (CouponType, error) {
	return parse("coupon type", validCouponTypes, value)
}

// CouponRejectionReason explains why a requested coupon was not applied.
type CouponRejectionReason string

const (
	CouponRejectionNotFound            CouponRejectionReason = "NOT_FOUND"
	CouponRejectionInactive            CouponRejectionReason = "INACTIVE"
	CouponRejectionLimitReached        CouponRejectionReason = "LIMIT_REACHED"
	CouponRejectionBelowMinimum        CouponRejectionReason = "BELOW_MINIMUM"
	CouponRejectionPerUserLimitReached CouponRejectionReason = "PER_USER_LIMIT_REACHED"
	CouponRejectionNotApplicable       CouponRejectionReason = "NOT_APPLICABLE"
)

// Message is the human readable form surfaced to buyers.
func (r CouponRejectionReason) Message() string {
	switch r {
	case CouponRejectionNotFound:
		return "coupon code not found"
	case CouponRejectionInactive:
		return "coupon is not active"
	case CouponRejectionLimitReached:
		return "coupon usage limit reached"
	case CouponRejectionBelowMinimum:
		return "order subtotal is below the coupon minimum"
	case CouponRejectionPerUserLimitReached:
		return "coupon already used the maximum number of times"
	case CouponRejectionNotApplicable:
		return "coupon does not apply to any item in the cart"
	default:
		return "coupon is not valid"
	}
}
