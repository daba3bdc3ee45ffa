package orders

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	dbpkg "github.com/angelmondragon/storefront-backend/pkg/db"
	"github.com/angelmondragon/storefront-backend/pkg/db/models"
	"github.com/angelmondragon/storefront-backend/pkg/enums"
	"github.com/angelmondragon/storefront-backend/pkg/pagination"
)

type repository struct {
	db *gorm.DB
}

// NewRepository builds an orders repository bound to the provided DB.
func NewRepository(db *gorm.DB) Repository {
	return &repository{db: db}
}

func (r *repository) WithTx(tx *gorm.DB) Repository {
	if tx == nil {
		return r
	}
	return &repository{db: tx}
}

func (r *repository) Create(ctx context.Context, order *models.Order) error {
	return r.db.WithContext(ctx).Omit(clause.Associations).Create(order).Error
}

func (r *repository) CreateLines(ctx context.Context, lines []models.OrderLine) error {
	if len(lines) == 0 {
		return nil
	}
	return r.db.WithContext(ctx).Create(&lines).Error
}

// ExistsByOrderNumber also sees soft-deleted orders so numbers are never reused.
func (r *repository) ExistsByOrderNumber(ctx context.Context, orderNumber string) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Unscoped().
		Model(&models.Order{}).
		Where("order_number = ?", orderNumber).
		Count(&count).Error
	return count > 0, err
}

func (r *repository) detailed(ctx context.Context) *gorm.DB {
	return r.db.WithContext(ctx).
		Preload("Lines", func(db *gorm.DB) *gorm.DB {
			return db.Order("line_number ASC")
		}).
		Preload("ShippingAddress").
		Preload("BillingAddress").
		Preload("Coupon")
}

// FindByID returns gorm.ErrRecordNotFound for unknown ids.
func (r *repository) FindByID(ctx context.Context, id uuid.UUID) (*models.Order, error) {
	var order models.Order
	if err := r.detailed(ctx).Where("id = ?", id).First(&order).Error; err != nil {
		return nil, err
	}
	return &order, nil
}

func (r *repository) FindByNumber(ctx context.Context, orderNumber string) (*models.Order, error) {
	var order models.Order
	if err := r.detailed(ctx).Where("order_number = ?", orderNumber).First(&order).Error; err != nil {
		return nil, err
	}
	return &order, nil
}

// LockByID loads the order with its lines, holding a row lock on postgres.
func (r *repository) LockByID(ctx context.Context, id uuid.UUID) (*models.Order, error) {
	query := r.db.WithContext(ctx).
		Preload("Lines", func(db *gorm.DB) *gorm.DB {
			return db.Order("line_number ASC")
		}).
		Where("id = ?", id)
	if dbpkg.IsPostgres(r.db) {
		query = query.Clauses(clause.Locking{Strength: "UPDATE"})
	}
	var order models.Order
	if err := query.First(&order).Error; err != nil {
		return nil, err
	}
	return &order, nil
}

func (r *repository) ListByUser(ctx context.Context, userID uuid.UUID, params pagination.Params) (pagination.Page[models.Order], error) {
	query := r.db.WithContext(ctx).
		Preload("Lines", func(db *gorm.DB) *gorm.DB {
			return db.Order("line_number ASC")
		}).
		Where("orders.user_id = ?", userID)
	query, limit, err := pagination.Keyset(query, params, "orders")
	if err != nil {
		return pagination.Page[models.Order]{}, err
	}

	var rows []models.Order
	if err := query.Find(&rows).Error; err != nil {
		return pagination.Page[models.Order]{}, err
	}
	return pagination.Build(rows, limit, func(o models.Order) pagination.Cursor {
		return pagination.Cursor{CreatedAt: o.CreatedAt, ID: o.ID}
	}), nil
}

// ListStalePending returns unpaid pending orders created before cutoff, oldest first.
func (r *repository) ListStalePending(ctx context.Context, cutoff time.Time, limit int) ([]models.Order, error) {
	var rows []models.Order
	err := r.db.WithContext(ctx).
		Where("status = ? AND payment_status = ? AND created_at < ?",
			enums.OrderStatusPending, enums.PaymentStatusPending, cutoff.UTC()).
		Order("created_at ASC").
		Limit(limit).
		Find(&rows).Error
	return rows, err
}

// Transition applies updates only while the order is in one of the from statuses.
// It reports false when another writer moved the order first.
func (r *repository) Transition(ctx context.Context, id uuid.UUID, from []enums.OrderStatus, updates map[string]any) (bool, error) {
	if len(from) == 0 {
		return false, errors.New("transition requires at least one source status")
	}
	res := r.db.WithContext(ctx).
		Model(&models.Order{}).
		Where("id = ? AND status IN ?", id, from).
		Updates(updates)
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected == 1, nil
}
