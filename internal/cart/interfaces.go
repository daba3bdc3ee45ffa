package cart

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/angelmondragon/storefront-backend/pkg/db/models"
)

// Owner identifies whose cart is being addressed: an authenticated user or an
// anonymous session. UserID wins when both are set.
type Owner struct {
	UserID    uuid.UUID
	SessionID string
}

func (o Owner) IsZero() bool {
	return o.UserID == uuid.Nil && o.SessionID == ""
}

// CartRepository defines the persistence surface required by the cart service and checkout.
type CartRepository interface {
	WithTx(tx *gorm.DB) CartRepository
	FindByOwner(ctx context.Context, owner Owner) (*models.Cart, error)
	Create(ctx context.Context, cart *models.Cart) error
	FindItem(ctx context.Context, cartID, productID uuid.UUID, variantID *uuid.UUID) (*models.CartItem, error)
	GetItem(ctx context.Context, cartID, itemID uuid.UUID) (*models.CartItem, error)
	SaveItem(ctx context.Context, item *models.CartItem) error
	DeleteItem(ctx context.Context, cartID, itemID uuid.UUID) error
	ClearItems(ctx context.Context, cartID uuid.UUID) error
	Delete(ctx context.Context, cartID uuid.UUID) error
}
