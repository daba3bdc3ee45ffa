package controllers

import (
	"net/http"

	"github.com/angelmondragon/storefront-backend/api/middleware"
	"github.com/angelmondragon/storefront-backend/api/responses"
	"github.com/angelmondragon/storefront-backend/api/validators"
	"github.com/angelmondragon/storefront-backend/internal/address"
	"github.com/angelmondragon/storefront-backend/internal/orders"
	pkgerrors "github.com/angelmondragon/storefront-backend/pkg/errors"
	"github.com/angelmondragon/storefront-backend/pkg/logger"
)

type createAddressRequest struct {
	Label      *string `json:"label,omitempty" validate:"omitempty,max=64"`
	FullName   string  `json:"full_name" validate:"required,max=200"`
	Phone      *string `json:"phone,omitempty" validate:"omitempty,max=32"`
	Line1      string  `json:"line1" validate:"required,max=255"`
	Line2      *string `json:"line2,omitempty" validate:"omitempty,max=255"`
	City       string  `json:"city" validate:"required,max=128"`
	State      *string `json:"state,omitempty" validate:"omitempty,max=128"`
	PostalCode string  `json:"postal_code" validate:"required,max=32"`
	Country    string  `json:"country" validate:"required,len=2"`
	IsDefault  bool    `json:"is_default"`
}

func AddressList(svc address.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		if svc == nil {
			responses.WriteError(ctx, logg, w, pkgerrors.New(pkgerrors.CodeInternal, "address service unavailable"))
			return
		}
		userID, err := middleware.RequireUserID(ctx)
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}

		list, err := svc.List(ctx, userID)
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}
		out := make([]*orders.AddressDTO, 0, len(list))
		for i := range list {
			out = append(out, orders.AddressFromModel(&list[i]))
		}
		responses.WriteSuccess(w, out)
	}
}

// AddressCreate stores a new address; the first address of a user becomes the default.
func AddressCreate(svc address.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		if svc == nil {
			responses.WriteError(ctx, logg, w, pkgerrors.New(pkgerrors.CodeInternal, "address service unavailable"))
			return
		}
		userID, err := middleware.RequireUserID(ctx)
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}

		var payload createAddressRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}

		created, err := svc.Create(ctx, userID, address.CreateInput{
			Label:      payload.Label,
			FullName:   payload.FullName,
			Phone:      payload.Phone,
			Line1:      payload.Line1,
			Line2:      payload.Line2,
			City:       payload.City,
			State:      payload.State,
			PostalCode: payload.PostalCode,
			Country:    payload.Country,
			IsDefault:  payload.IsDefault,
		})
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}
		responses.WriteSuccessStatus(w, http.StatusCreated, orders.AddressFromModel(created))
	}
}

// AddressSetDefault makes the addressed row the caller's only default.
func AddressSetDefault(svc address.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		if svc == nil {
			responses.WriteError(ctx, logg, w, pkgerrors.New(pkgerrors.CodeInternal, "address service unavailable"))
			return
		}
		userID, err := middleware.RequireUserID(ctx)
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}
		addressID, err := validators.ParseUUIDParam(r, "id")
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}

		updated, err := svc.SetDefault(ctx, addressID, userID)
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}
		responses.WriteSuccess(w, orders.AddressFromModel(updated))
	}
}
