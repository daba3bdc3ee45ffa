package coupons

import (
	"context"
	"errors"
	"strings"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	dbpkg "github.com/angelmondragon/storefront-backend/pkg/db"
	"github.com/angelmondragon/storefront-backend/pkg/db/models"
)

// Repository persists coupons and their usage records.
type Repository interface {
	WithTx(tx *gorm.DB) Repository
	FindByCode(ctx context.Context, code string, forUpdate bool) (*models.Coupon, error)
	CountUsagesByUser(ctx context.Context, couponID, userID uuid.UUID) (int64, error)
	IncrementUsage(ctx context.Context, couponID uuid.UUID) error
	CreateUsage(ctx context.Context, usage *models.CouponUsage) error
}

type repository struct {
	db *gorm.DB
}

func NewRepository(db *gorm.DB) Repository {
	return &repository{db: db}
}

func (r *repository) WithTx(tx *gorm.DB) Repository {
	if tx == nil {
		return r
	}
	return &repository{db: tx}
}

// FindByCode returns nil, nil when no coupon carries the code.
func (r *repository) FindByCode(ctx context.Context, code string, forUpdate bool) (*models.Coupon, error) {
	query := r.db.WithContext(ctx)
	if forUpdate && dbpkg.IsPostgres(r.db) {
		query = query.Clauses(clause.Locking{Strength: "UPDATE"})
	}

	var coupon models.Coupon
	err := query.Where("code = ?", NormalizeCode(code)).First(&coupon).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &coupon, nil
}

func (r *repository) CountUsagesByUser(ctx context.Context, couponID, userID uuid.UUID) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Model(&models.CouponUsage{}).
		Where("coupon_id = ? AND user_id = ?", couponID, userID).
		Count(&count).Error
	return count, err
}

func (r *repository) IncrementUsage(ctx context.Context, couponID uuid.UUID) error {
	return r.db.WithContext(ctx).
		Model(&models.Coupon{}).
		Where("id = ?", couponID).
		UpdateColumn("usage_count", gorm.Expr("usage_count + 1")).Error
}

func (r *repository) CreateUsage(ctx context.Context, usage *models.CouponUsage) error {
	return r.db.WithContext(ctx).Create(usage).Error
}

// NormalizeCode trims and upper-cases a coupon code.
func NormalizeCode(code string) string {
	return strings.ToUpper(strings.TrimSpace(code))
}
