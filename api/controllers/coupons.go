package controllers

import (
	"context"
	"net/http"

	"github.com/google/uuid"

	"github.com/angelmondragon/storefront-backend/api/middleware"
	"github.com/angelmondragon/storefront-backend/api/responses"
	"github.com/angelmondragon/storefront-backend/api/validators"
	"github.com/angelmondragon/storefront-backend/internal/cart"
	"github.com/angelmondragon/storefront-backend/internal/coupons"
	"github.com/angelmondragon/storefront-backend/pkg/db/models"
	"github.com/angelmondragon/storefront-backend/pkg/enums"
	pkgerrors "github.com/angelmondragon/storefront-backend/pkg/errors"
	"github.com/angelmondragon/storefront-backend/pkg/logger"
	"github.com/angelmondragon/storefront-backend/pkg/money"
)

// CouponChecker is satisfied by *coupons.Engine.
type CouponChecker interface {
	Validate(ctx context.Context, code string, subtotal money.Money, userID uuid.UUID) (*models.Coupon, error)
	Apply(ctx context.Context, code string, lines []coupons.Line, userID uuid.UUID) (coupons.Outcome, *models.Coupon, error)
}

type CartReader interface {
	Get(ctx context.Context, owner cart.Owner) (*cart.View, error)
}

type validateCouponRequest struct {
	Code     string       `json:"code" validate:"required,max=64,coupon_code"`
	Subtotal *money.Money `json:"subtotal,omitempty"`
}

type couponPreview struct {
	Code     string           `json:"code"`
	CouponID uuid.UUID        `json:"coupon_id"`
	Type     enums.CouponType `json:"type"`
	Value    string           `json:"value"`
	Subtotal money.Money      `json:"subtotal"`
	Discount money.Money      `json:"discount"`
}

// CouponValidate previews the discount a code would give. With an explicit subtotal
// the code is priced against that amount; otherwise against the caller's cart,
// honouring product restrictions. Rejections answer 400 INVALID_COUPON.
func CouponValidate(engine CouponChecker, carts CartReader, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		if engine == nil {
			responses.WriteError(ctx, logg, w, pkgerrors.New(pkgerrors.CodeInternal, "coupon engine unavailable"))
			return
		}
		userID, err := middleware.RequireUserID(ctx)
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}

		var payload validateCouponRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}
		code := coupons.NormalizeCode(payload.Code)

		if payload.Subtotal != nil {
			if payload.Subtotal.IsNegative() {
				responses.WriteError(ctx, logg, w, pkgerrors.New(pkgerrors.CodeValidation, "subtotal must not be negative"))
				return
			}
			coupon, err := engine.Validate(ctx, code, *payload.Subtotal, userID)
			if err != nil {
				responses.WriteError(ctx, logg, w, err)
				return
			}
			responses.WriteSuccess(w, newCouponPreview(coupon, *payload.Subtotal, coupons.CalculateDiscount(coupon, *payload.Subtotal)))
			return
		}

		if carts == nil {
			responses.WriteError(ctx, logg, w, pkgerrors.New(pkgerrors.CodeInternal, "cart service unavailable"))
			return
		}
		view, err := carts.Get(ctx, cart.Owner{UserID: userID})
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}
		if len(view.Items) == 0 {
			responses.WriteError(ctx, logg, w, pkgerrors.New(pkgerrors.CodeEmptyCart, "cart is empty"))
			return
		}
		lines := make([]coupons.Line, 0, len(view.Items))
		for _, item := range view.Items {
			lines = append(lines, coupons.Line{ProductID: item.ProductID, Total: item.LineTotal})
		}

		outcome, coupon, err := engine.Apply(ctx, code, lines, userID)
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}
		if !outcome.IsApplied() {
			responses.WriteError(ctx, logg, w, pkgerrors.New(pkgerrors.CodeInvalidCoupon, outcome.Reason.Message()).
				WithDetails(map[string]any{"code": code, "reason": outcome.Reason}))
			return
		}
		responses.WriteSuccess(w, newCouponPreview(coupon, view.Subtotal, outcome.Discount))
	}
}

func newCouponPreview(coupon *models.Coupon, subtotal, discount money.Money) couponPreview {
	return couponPreview{
		Code:     coupon.Code,
		CouponID: coupon.ID,
		Type:     coupon.Type,
		Value:    coupon.Value.String(),
		Subtotal: subtotal,
		Discount: discount,
	}
}
