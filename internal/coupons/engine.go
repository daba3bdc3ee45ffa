// Package coupons validates coupon codes and prices their discounts.
package coupons

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/angelmondragon/storefront-backend/pkg/db/models"
	"github.com/angelmondragon/storefront-backend/pkg/enums"
	pkgerrors "github.com/angelmondragon/storefront-backend/pkg/errors"
	"github.com/angelmondragon/storefront-backend/pkg/money"
)

// MaxCodeLength bounds stored coupon codes; longer input can never match.
const MaxCodeLength = 64

// RejectionError carries the reason a coupon failed validation.
type RejectionError struct {
	Code   string
	Reason enums.CouponRejectionReason
}

func (e *RejectionError) Error() string {
	return fmt.Sprintf("coupon %s rejected: %s", e.Code, e.Reason)
}

// Line is the slice of a cart line the engine needs for product-restricted coupons.
type Line struct {
	ProductID uuid.UUID
	Total     money.Money
}

// Engine validates and prices coupons. Bind it to a transaction with WithTx before
// Apply + RecordUsage so the coupon row stays locked between the two.
type Engine struct {
	repo   Repository
	now    func() time.Time
	locked bool
}

func NewEngine(repo Repository) (*Engine, error) {
	if repo == nil {
		return nil, fmt.Errorf("coupon repository required")
	}
	return &Engine{repo: repo, now: time.Now}, nil
}

// WithClock overrides the time source; used by tests.
func (e *Engine) WithClock(now func() time.Time) *Engine {
	clone := *e
	clone.now = now
	return &clone
}

// WithTx returns an engine whose reads lock the coupon row for the rest of tx.
func (e *Engine) WithTx(tx *gorm.DB) *Engine {
	clone := *e
	clone.repo = e.repo.WithTx(tx)
	clone.locked = tx != nil
	return &clone
}

// Validate runs the checks in order: existence, active window, global limit,
// minimum purchase, per-user limit. A zero userID skips the per-user check.
func (e *Engine) Validate(ctx context.Context, code string, subtotal money.Money, userID uuid.UUID) (*models.Coupon, error) {
	normalized := NormalizeCode(code)
	coupon, err := e.repo.FindByCode(ctx, normalized, e.locked)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load coupon")
	}
	if coupon == nil {
		return nil, reject(normalized, enums.CouponRejectionNotFound)
	}

	now := e.now()
	if !coupon.IsActive ||
		(coupon.StartsAt != nil && coupon.StartsAt.After(now)) ||
		(coupon.ExpiresAt != nil && coupon.ExpiresAt.Before(now)) {
		return coupon, reject(normalized, enums.CouponRejectionInactive)
	}
	if coupon.UsageLimit != nil && coupon.UsageCount >= *coupon.UsageLimit {
		return coupon, reject(normalized, enums.CouponRejectionLimitReached)
	}
	if coupon.MinimumPurchaseCents != nil && subtotal < *coupon.MinimumPurchaseCents {
		return coupon, reject(normalized, enums.CouponRejectionBelowMinimum)
	}
	if coupon.UsageLimitPerUser != nil && userID != uuid.Nil {
		used, err := e.repo.CountUsagesByUser(ctx, coupon.ID, userID)
		if err != nil {
			return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "count coupon usages")
		}
		if used >= int64(*coupon.UsageLimitPerUser) {
			return coupon, reject(normalized, enums.CouponRejectionPerUserLimitReached)
		}
	}
	return coupon, nil
}

// CalculateDiscount prices an already validated coupon against subtotal. Percentage
// coupons take value% of subtotal; fixed coupons never exceed subtotal. Both are then
// capped at the coupon's maximum discount.
func CalculateDiscount(coupon *models.Coupon, subtotal money.Money) money.Money {
	if coupon == nil || subtotal <= 0 {
		return money.Zero
	}

	var discount money.Money
	switch coupon.Type {
	case enums.CouponTypePercentage:
		discount = subtotal.Percent(coupon.Value)
	case enums.CouponTypeFixed:
		discount = money.FromDecimal(coupon.Value)
	default:
		return money.Zero
	}
	// never more than the goods, so orders.total_cents keeps its CHECK identity
	discount = money.Min(discount, subtotal)
	if coupon.MaximumDiscountCents != nil {
		discount = money.Min(discount, *coupon.MaximumDiscountCents)
	}
	return discount.ClampMin(money.Zero)
}

// Apply validates code against the cart and reports the outcome. Rejections are
// returned as a NotApplied outcome; only infrastructure failures return an error.
func (e *Engine) Apply(ctx context.Context, code string, lines []Line, userID uuid.UUID) (Outcome, *models.Coupon, error) {
	normalized := NormalizeCode(code)
	if normalized == "" {
		return NotRequested(), nil, nil
	}
	if len(normalized) > MaxCodeLength {
		return NotApplied(normalized, enums.CouponRejectionNotFound), nil, nil
	}

	var subtotal money.Money
	for _, line := range lines {
		subtotal = subtotal.Add(line.Total)
	}

	coupon, err := e.Validate(ctx, normalized, subtotal, userID)
	if err != nil {
		if reason, ok := RejectionReason(err); ok {
			return NotApplied(normalized, reason), nil, nil
		}
		return Outcome{}, nil, err
	}

	base := eligibleSubtotal(coupon, lines)
	if base.IsZero() {
		return NotApplied(normalized, enums.CouponRejectionNotApplicable), nil, nil
	}
	return Applied(normalized, coupon.ID, CalculateDiscount(coupon, base)), coupon, nil
}

// RecordUsage bumps usage_count and stores the CouponUsage row for orderID.
func (e *Engine) RecordUsage(ctx context.Context, couponID, userID, orderID uuid.UUID) error {
	if err := e.repo.IncrementUsage(ctx, couponID); err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "increment coupon usage")
	}
	usage := &models.CouponUsage{CouponID: couponID, UserID: userID, OrderID: orderID}
	if err := e.repo.CreateUsage(ctx, usage); err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "record coupon usage")
	}
	return nil
}

// RejectionReason extracts the rejection reason from a Validate error.
func RejectionReason(err error) (enums.CouponRejectionReason, bool) {
	typed := pkgerrors.As(err)
	if typed == nil || typed.Code() != pkgerrors.CodeInvalidCoupon {
		return "", false
	}
	rejection, ok := typed.Unwrap().(*RejectionError)
	if !ok {
		return "", false
	}
	return rejection.Reason, true
}

func reject(code string, reason enums.CouponRejectionReason) error {
	return pkgerrors.Wrap(pkgerrors.CodeInvalidCoupon, &RejectionError{Code: code, Reason: reason}, reason.Message()).
		WithDetails(map[string]any{"code": code, "reason": reason})
}

func eligibleSubtotal(coupon *models.Coupon, lines []Line) money.Money {
	var total money.Money
	if len(coupon.ApplicableProductIDs) == 0 {
		for _, line := range lines {
			total = total.Add(line.Total)
		}
		return total
	}

	allowed := make(map[uuid.UUID]struct{}, len(coupon.ApplicableProductIDs))
	for _, id := range coupon.ApplicableProductIDs {
		allowed[id] = struct{}{}
	}
	for _, line := range lines {
		if _, ok := allowed[line.ProductID]; ok {
			total = total.Add(line.Total)
		}
	}
	return total
}
