// Package catalog is the read-only view of products and variants used by cart and checkout.
package catalog

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/angelmondragon/storefront-backend/pkg/db/models"
	pkgerrors "github.com/angelmondragon/storefront-backend/pkg/errors"
	"github.com/angelmondragon/storefront-backend/pkg/money"
)

// Reader loads catalog rows.
type Reader interface {
	WithTx(tx *gorm.DB) Reader
	GetProduct(ctx context.Context, id uuid.UUID) (*models.Product, error)
	GetVariant(ctx context.Context, id uuid.UUID) (*models.ProductVariant, error)
	GetProducts(ctx context.Context, ids []uuid.UUID) (map[uuid.UUID]models.Product, error)
}

type repository struct {
	db *gorm.DB
}

// NewRepository builds a catalog reader tied to the provided DB.
func NewRepository(db *gorm.DB) Reader {
	return &repository{db: db}
}

func (r *repository) WithTx(tx *gorm.DB) Reader {
	if tx == nil {
		return r
	}
	return &repository{db: tx}
}

// GetProduct returns CodeNotFound for missing or inactive products.
func (r *repository) GetProduct(ctx context.Context, id uuid.UUID) (*models.Product, error) {
	var product models.Product
	err := r.db.WithContext(ctx).
		Where("id = ? AND is_active = ?", id, true).
		First(&product).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "product not found").
				WithDetails(map[string]any{"product_id": id})
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load product")
	}
	return &product, nil
}

func (r *repository) GetVariant(ctx context.Context, id uuid.UUID) (*models.ProductVariant, error) {
	var variant models.ProductVariant
	err := r.db.WithContext(ctx).Where("id = ?", id).First(&variant).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "variant not found").
				WithDetails(map[string]any{"variant_id": id})
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load variant")
	}
	return &variant, nil
}

// GetProducts loads products by id regardless of active flag. Missing ids are absent from the map.
func (r *repository) GetProducts(ctx context.Context, ids []uuid.UUID) (map[uuid.UUID]models.Product, error) {
	out := make(map[uuid.UUID]models.Product, len(ids))
	if len(ids) == 0 {
		return out, nil
	}
	var rows []models.Product
	if err := r.db.WithContext(ctx).Where("id IN ?", ids).Find(&rows).Error; err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load products")
	}
	for _, p := range rows {
		out[p.ID] = p
	}
	return out, nil
}

// UnitPrice resolves the price a buyer pays: a variant override wins, then the
// product sale price, then its list price.
func UnitPrice(product models.Product, variant *models.ProductVariant) money.Money {
	if variant != nil && variant.PriceCents != nil {
		return *variant.PriceCents
	}
	return product.EffectivePrice()
}
