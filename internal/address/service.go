// Package address is the per-user address book consulted by checkout.
package address

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/angelmondragon/storefront-backend/pkg/db/models"
	pkgerrors "github.com/angelmondragon/storefront-backend/pkg/errors"
)

type txRunner interface {
	WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error
}

type Service interface {
	GetAddress(ctx context.Context, id, ownerUserID uuid.UUID) (*models.Address, error)
	List(ctx context.Context, ownerUserID uuid.UUID) ([]models.Address, error)
	Create(ctx context.Context, ownerUserID uuid.UUID, input CreateInput) (*models.Address, error)
	SetDefault(ctx context.Context, id, ownerUserID uuid.UUID) (*models.Address, error)
}

type service struct {
	db *gorm.DB
	tx txRunner
}

func NewService(db *gorm.DB, tx txRunner) (Service, error) {
	if db == nil {
		return nil, fmt.Errorf("db required")
	}
	if tx == nil {
		return nil, fmt.Errorf("transaction runner required")
	}
	return &service{db: db, tx: tx}, nil
}

// Lookup resolves an address for owner against conn, which may be a transaction.
// Unknown ids return CodeNotFound and addresses of other users CodeForbidden.
func Lookup(ctx context.Context, conn *gorm.DB, id, ownerUserID uuid.UUID) (*models.Address, error) {
	var addr models.Address
	err := conn.WithContext(ctx).Where("id = ?", id).First(&addr).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "address not found").
				WithDetails(map[string]any{"address_id": id})
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load address")
	}
	if addr.UserID != ownerUserID {
		return nil, pkgerrors.New(pkgerrors.CodeForbidden, "address does not belong to user").
			WithDetails(map[string]any{"address_id": id})
	}
	return &addr, nil
}

func (s *service) GetAddress(ctx context.Context, id, ownerUserID uuid.UUID) (*models.Address, error) {
	return Lookup(ctx, s.db, id, ownerUserID)
}

func (s *service) List(ctx context.Context, ownerUserID uuid.UUID) ([]models.Address, error) {
	var rows []models.Address
	err := s.db.WithContext(ctx).
		Where("user_id = ?", ownerUserID).
		Order("is_default DESC").
		Order("created_at ASC").
		Find(&rows).Error
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list addresses")
	}
	return rows, nil
}

// CreateInput is the address payload accepted from clients.
type CreateInput struct {
	Label      *string `json:"label,omitempty"`
	FullName   string  `json:"full_name" validate:"required"`
	Phone      *string `json:"phone,omitempty"`
	Line1      string  `json:"line1" validate:"required"`
	Line2      *string `json:"line2,omitempty"`
	City       string  `json:"city" validate:"required"`
	State      *string `json:"state,omitempty"`
	PostalCode string  `json:"postal_code" validate:"required"`
	Country    string  `json:"country" validate:"required,len=2"`
	IsDefault  bool    `json:"is_default"`
}

// Create stores a new address. The user's first address becomes the default.
func (s *service) Create(ctx context.Context, ownerUserID uuid.UUID, input CreateInput) (*models.Address, error) {
	if ownerUserID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeUnauthorized, "user required")
	}
	addr := &models.Address{
		UserID:     ownerUserID,
		Label:      input.Label,
		FullName:   strings.TrimSpace(input.FullName),
		Phone:      input.Phone,
		Line1:      strings.TrimSpace(input.Line1),
		Line2:      input.Line2,
		City:       strings.TrimSpace(input.City),
		State:      input.State,
		PostalCode: strings.TrimSpace(input.PostalCode),
		Country:    strings.ToUpper(strings.TrimSpace(input.Country)),
	}

	err := s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		var existing int64
		if err := tx.WithContext(ctx).Model(&models.Address{}).Where("user_id = ?", ownerUserID).Count(&existing).Error; err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "count addresses")
		}
		if err := tx.WithContext(ctx).Create(addr).Error; err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "create address")
		}
		if existing == 0 || input.IsDefault {
			return markDefault(ctx, tx, addr.ID, ownerUserID)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return s.GetAddress(ctx, addr.ID, ownerUserID)
}

// SetDefault makes id the only default address of its owner.
func (s *service) SetDefault(ctx context.Context, id, ownerUserID uuid.UUID) (*models.Address, error) {
	err := s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		if _, err := Lookup(ctx, tx, id, ownerUserID); err != nil {
			return err
		}
		return markDefault(ctx, tx, id, ownerUserID)
	})
	if err != nil {
		return nil, err
	}
	return s.GetAddress(ctx, id, ownerUserID)
}

func markDefault(ctx context.Context, tx *gorm.DB, id, ownerUserID uuid.UUID) error {
	err := tx.WithContext(ctx).Exec(
		`UPDATE addresses SET is_default = (id = ?), updated_at = CURRENT_TIMESTAMP WHERE user_id = ?`,
		id, ownerUserID,
	).Error
	if err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "set default address")
	}
	return nil
}
