package pricing

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/angelmondragon/storefront-backend/pkg/db/models"
)

// MethodRepository reads shipping methods.
type MethodRepository interface {
	WithTx(tx *gorm.DB) MethodRepository
	ListActive(ctx context.Context) ([]models.ShippingMethod, error)
	FindActiveByID(ctx context.Context, id uuid.UUID) (*models.ShippingMethod, error)
}

type methodRepository struct {
	db *gorm.DB
}

func NewMethodRepository(db *gorm.DB) MethodRepository {
	return &methodRepository{db: db}
}

func (r *methodRepository) WithTx(tx *gorm.DB) MethodRepository {
	if tx == nil {
		return r
	}
	return &methodRepository{db: tx}
}

func (r *methodRepository) ListActive(ctx context.Context) ([]models.ShippingMethod, error) {
	var methods []models.ShippingMethod
	err := r.db.WithContext(ctx).
		Where("is_active = ?", true).
		Order("sort_order ASC").
		Order("cost_cents ASC").
		Find(&methods).Error
	return methods, err
}

// FindActiveByID returns nil, nil for unknown or inactive methods.
func (r *methodRepository) FindActiveByID(ctx context.Context, id uuid.UUID) (*models.ShippingMethod, error) {
	var method models.ShippingMethod
	err := r.db.WithContext(ctx).
		Where("id = ? AND is_active = ?", id, true).
		First(&method).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &method, nil
}
