// Package inventory owns product stock counts. Every mutation is a single conditional
// statement so stock can never be observed below zero.
package inventory

import (
	"context"
	"errors"
	"fmt"
	"sort"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	dbpkg "github.com/angelmondragon/storefront-backend/pkg/db"
	"github.com/angelmondragon/storefront-backend/pkg/db/models"
	pkgerrors "github.com/angelmondragon/storefront-backend/pkg/errors"
)

// Ledger is the stock authority used by checkout and cancellation.
type Ledger interface {
	WithTx(tx *gorm.DB) Ledger
	Available(ctx context.Context, productID uuid.UUID) (int, error)
	CheckAvailable(ctx context.Context, productID uuid.UUID, qty int) (bool, error)
	Decrement(ctx context.Context, productID uuid.UUID, qty int) error
	Increment(ctx context.Context, productID uuid.UUID, qty int) error
	LockForUpdate(ctx context.Context, productIDs []uuid.UUID) error
}

type ledger struct {
	db *gorm.DB
}

// NewLedger builds a ledger bound to the provided connection.
func NewLedger(db *gorm.DB) Ledger {
	return &ledger{db: db}
}

func (l *ledger) WithTx(tx *gorm.DB) Ledger {
	if tx == nil {
		return l
	}
	return &ledger{db: tx}
}

func (l *ledger) Available(ctx context.Context, productID uuid.UUID) (int, error) {
	var product models.Product
	err := l.db.WithContext(ctx).
		Select("id", "stock_quantity").
		Where("id = ?", productID).
		First(&product).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return 0, pkgerrors.New(pkgerrors.CodeNotFound, "product not found").
				WithDetails(map[string]any{"product_id": productID})
		}
		return 0, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load product stock")
	}
	return product.StockQuantity, nil
}

// CheckAvailable is a plain read and may be stale by the time the caller acts on it.
func (l *ledger) CheckAvailable(ctx context.Context, productID uuid.UUID, qty int) (bool, error) {
	available, err := l.Available(ctx, productID)
	if err != nil {
		return false, err
	}
	return available >= qty, nil
}

func (l *ledger) Decrement(ctx context.Context, productID uuid.UUID, qty int) error {
	if qty <= 0 {
		return pkgerrors.New(pkgerrors.CodeValidation, "quantity must be positive")
	}

	res := l.db.WithContext(ctx).Exec(`
		UPDATE products
		SET stock_quantity = stock_quantity - ?,
			updated_at = CURRENT_TIMESTAMP
		WHERE id = ? AND stock_quantity >= ?
	`, qty, productID, qty)
	if res.Error != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, res.Error, "decrement stock")
	}
	if res.RowsAffected == 1 {
		return nil
	}

	available, err := l.Available(ctx, productID)
	if err != nil {
		return err
	}
	return InsufficientStock(productID, "", qty, available)
}

func (l *ledger) Increment(ctx context.Context, productID uuid.UUID, qty int) error {
	if qty <= 0 {
		return nil
	}

	res := l.db.WithContext(ctx).Exec(`
		UPDATE products
		SET stock_quantity = stock_quantity + ?,
			updated_at = CURRENT_TIMESTAMP
		WHERE id = ?
	`, qty, productID)
	if res.Error != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, res.Error, "increment stock")
	}
	if res.RowsAffected == 0 {
		return pkgerrors.New(pkgerrors.CodeNotFound, "product not found").
			WithDetails(map[string]any{"product_id": productID})
	}
	return nil
}

// LockForUpdate takes row locks in id order so concurrent checkouts touching the same
// products queue behind each other instead of deadlocking. It is a no-op on drivers
// without SELECT ... FOR UPDATE.
func (l *ledger) LockForUpdate(ctx context.Context, productIDs []uuid.UUID) error {
	if len(productIDs) == 0 || !dbpkg.IsPostgres(l.db) {
		return nil
	}

	ids := uniqueSorted(productIDs)
	var locked []models.Product
	err := l.db.WithContext(ctx).
		Clauses(clause.Locking{Strength: "UPDATE"}).
		Select("id").
		Where("id IN ?", ids).
		Order("id").
		Find(&locked).Error
	if err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "lock product rows")
	}
	return nil
}

// InsufficientStock builds the user-facing error for a product that cannot cover qty.
func InsufficientStock(productID uuid.UUID, name string, requested, available int) *pkgerrors.Error {
	message := "insufficient stock"
	if name != "" {
		message = fmt.Sprintf("insufficient stock for %s", name)
	}
	details := map[string]any{
		"product_id": productID,
		"requested":  requested,
		"available":  available,
	}
	if name != "" {
		details["name"] = name
	}
	return pkgerrors.New(pkgerrors.CodeInsufficientStock, message).WithDetails(details)
}

func uniqueSorted(ids []uuid.UUID) []uuid.UUID {
	seen := make(map[uuid.UUID]struct{}, len(ids))
	out := make([]uuid.UUID, 0, len(ids))
	for _, id := range ids {
		if _, ok := seen[id]; ok {
			continue
		}
		seen[id] = struct{}{}
		out = append(out, id)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].String() < out[j].String() })
	return out
}
