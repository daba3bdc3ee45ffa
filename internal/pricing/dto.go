package pricing

import (
	"context"

	"github.com/google/uuid"

	"github.com/angelmondragon/storefront-backend/pkg/db/models"
	pkgerrors "github.com/angelmondragon/storefront-backend/pkg/errors"
	"github.com/angelmondragon/storefront-backend/pkg/money"
)

// ShippingMethodDTO is the public shape of a shipping method.
type ShippingMethodDTO struct {
	ID                    uuid.UUID    `json:"id"`
	Name                  string       `json:"name"`
	Description           *string      `json:"description,omitempty"`
	Cost                  money.Money  `json:"cost"`
	FreeShippingThreshold *money.Money `json:"free_shipping_threshold,omitempty"`
	EstimatedDaysMin      int          `json:"estimated_days_min"`
	EstimatedDaysMax      int          `json:"estimated_days_max"`
}

func ShippingMethodFromModel(m models.ShippingMethod) ShippingMethodDTO {
	return ShippingMethodDTO{
		ID:                    m.ID,
		Name:                  m.Name,
		Description:           m.Description,
		Cost:                  m.CostCents,
		FreeShippingThreshold: m.FreeShippingThresholdCents,
		EstimatedDaysMin:      m.EstimatedDaysMin,
		EstimatedDaysMax:      m.EstimatedDaysMax,
	}
}

// ListShippingMethods returns the active methods in display order.
func (c *Calculator) ListShippingMethods(ctx context.Context) ([]ShippingMethodDTO, error) {
	methods, err := c.methods.ListActive(ctx)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list shipping methods")
	}
	out := make([]ShippingMethodDTO, 0, len(methods))
	for _, m := range methods {
		out = append(out, ShippingMethodFromModel(m))
	}
	return out, nil
}
