package cart

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/angelmondragon/storefront-backend/internal/catalog"
	"github.com/angelmondragon/storefront-backend/internal/inventory"
	dbpkg "github.com/angelmondragon/storefront-backend/pkg/db"
	"github.com/angelmondragon/storefront-backend/pkg/db/models"
	pkgerrors "github.com/angelmondragon/storefront-backend/pkg/errors"
)

type txRunner interface {
	WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error
}

// Service exposes cart operations for users and anonymous sessions.
type Service interface {
	Get(ctx context.Context, owner Owner) (*View, error)
	AddItem(ctx context.Context, owner Owner, input AddItemInput) (*View, error)
	UpdateItem(ctx context.Context, owner Owner, itemID uuid.UUID, quantity int) (*View, error)
	RemoveItem(ctx context.Context, owner Owner, itemID uuid.UUID) (*View, error)
	Clear(ctx context.Context, owner Owner) error
	Merge(ctx context.Context, userID uuid.UUID, sessionID string) (*View, error)
}

type service struct {
	repo    CartRepository
	tx      txRunner
	catalog catalog.Reader
}

// NewService builds a cart service backed by the provided stack.
func NewService(repo CartRepository, tx txRunner, reader catalog.Reader) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("cart repository required")
	}
	if tx == nil {
		return nil, fmt.Errorf("transaction runner required")
	}
	if reader == nil {
		return nil, fmt.Errorf("catalog reader required")
	}
	return &service{repo: repo, tx: tx, catalog: reader}, nil
}

// AddItemInput is the payload for adding a product (and optional variant) to the cart.
type AddItemInput struct {
	ProductID uuid.UUID  `json:"product_id" validate:"required"`
	VariantID *uuid.UUID `json:"variant_id,omitempty"`
	Quantity  int        `json:"quantity" validate:"required,min=1,max=999"`
}

func (s *service) Get(ctx context.Context, owner Owner) (*View, error) {
	var cart *models.Cart
	err := s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		var err error
		cart, err = s.findOrCreate(ctx, s.repo.WithTx(tx), owner)
		return err
	})
	if err != nil {
		return nil, err
	}
	return viewFromModel(cart), nil
}

// AddItem adds quantity to the cart, merging into an existing line for the same
// product and variant. The unit price is captured at add time.
func (s *service) AddItem(ctx context.Context, owner Owner, input AddItemInput) (*View, error) {
	if input.Quantity <= 0 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "quantity must be positive")
	}

	err := s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)
		reader := s.catalog.WithTx(tx)

		cart, err := s.findOrCreate(ctx, repo, owner)
		if err != nil {
			return err
		}
		product, variant, err := resolveProduct(ctx, reader, input.ProductID, input.VariantID)
		if err != nil {
			return err
		}

		item, err := repo.FindItem(ctx, cart.ID, product.ID, input.VariantID)
		if err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load cart item")
		}
		if item == nil {
			item = &models.CartItem{CartID: cart.ID, ProductID: product.ID, VariantID: input.VariantID}
		}
		item.Quantity += input.Quantity
		item.UnitPriceCents = catalog.UnitPrice(*product, variant)

		if item.Quantity > product.StockQuantity {
			return inventory.InsufficientStock(product.ID, product.Name, item.Quantity, product.StockQuantity)
		}
		if err := repo.SaveItem(ctx, item); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "save cart item")
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return s.load(ctx, owner)
}

// UpdateItem sets the line quantity; zero removes the line.
func (s *service) UpdateItem(ctx context.Context, owner Owner, itemID uuid.UUID, quantity int) (*View, error) {
	if quantity < 0 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "quantity must not be negative")
	}
	if quantity == 0 {
		return s.RemoveItem(ctx, owner, itemID)
	}

	err := s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)
		item, err := s.ownedItem(ctx, repo, owner, itemID)
		if err != nil {
			return err
		}
		product, err := s.catalog.WithTx(tx).GetProduct(ctx, item.ProductID)
		if err != nil {
			return err
		}
		if quantity > product.StockQuantity {
			return inventory.InsufficientStock(product.ID, product.Name, quantity, product.StockQuantity)
		}
		item.Quantity = quantity
		if err := repo.SaveItem(ctx, item); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "save cart item")
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return s.load(ctx, owner)
}

func (s *service) RemoveItem(ctx context.Context, owner Owner, itemID uuid.UUID) (*View, error) {
	err := s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)
		item, err := s.ownedItem(ctx, repo, owner, itemID)
		if err != nil {
			return err
		}
		if err := repo.DeleteItem(ctx, item.CartID, item.ID); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "delete cart item")
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return s.load(ctx, owner)
}

func (s *service) Clear(ctx context.Context, owner Owner) error {
	cart, err := s.repo.FindByOwner(ctx, owner)
	if err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load cart")
	}
	if cart == nil {
		return nil
	}
	if err := s.repo.ClearItems(ctx, cart.ID); err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "clear cart")
	}
	return nil
}

// Merge folds the session cart into the user's cart and deletes the session cart.
// Merged quantities are capped at the product's current stock.
func (s *service) Merge(ctx context.Context, userID uuid.UUID, sessionID string) (*View, error) {
	if userID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeUnauthorized, "user required")
	}
	owner := Owner{UserID: userID}
	if sessionID == "" {
		return s.Get(ctx, owner)
	}

	err := s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)
		guest, err := repo.FindByOwner(ctx, Owner{SessionID: sessionID})
		if err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load session cart")
		}
		target, err := s.findOrCreate(ctx, repo, owner)
		if err != nil {
			return err
		}
		if guest == nil || guest.ID == target.ID {
			return nil
		}

		for _, line := range guest.Items {
			item, err := repo.FindItem(ctx, target.ID, line.ProductID, line.VariantID)
			if err != nil {
				return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load cart item")
			}
			if item == nil {
				item = &models.CartItem{CartID: target.ID, ProductID: line.ProductID, VariantID: line.VariantID}
			}
			item.Quantity += line.Quantity
			item.UnitPriceCents = line.UnitPriceCents
			if line.Product != nil && item.Quantity > line.Product.StockQuantity {
				item.Quantity = line.Product.StockQuantity
			}
			if item.Quantity <= 0 {
				continue
			}
			if err := repo.SaveItem(ctx, item); err != nil {
				return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "merge cart item")
			}
		}
		if err := repo.Delete(ctx, guest.ID); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "delete session cart")
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return s.load(ctx, owner)
}

func (s *service) load(ctx context.Context, owner Owner) (*View, error) {
	cart, err := s.repo.FindByOwner(ctx, owner)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load cart")
	}
	if cart == nil {
		return nil, pkgerrors.New(pkgerrors.CodeNotFound, "cart not found")
	}
	return viewFromModel(cart), nil
}

func (s *service) findOrCreate(ctx context.Context, repo CartRepository, owner Owner) (*models.Cart, error) {
	if owner.IsZero() {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "user or session id required")
	}
	cart, err := repo.FindByOwner(ctx, owner)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load cart")
	}
	if cart != nil {
		return cart, nil
	}

	cart = &models.Cart{}
	if owner.UserID != uuid.Nil {
		userID := owner.UserID
		cart.UserID = &userID
	} else {
		sessionID := owner.SessionID
		cart.SessionID = &sessionID
	}
	if err := repo.Create(ctx, cart); err != nil {
		if dbpkg.IsUniqueViolation(err, "") {
			return nil, pkgerrors.Wrap(pkgerrors.CodeConflict, err, "cart created concurrently")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "create cart")
	}
	return cart, nil
}

func (s *service) ownedItem(ctx context.Context, repo CartRepository, owner Owner, itemID uuid.UUID) (*models.CartItem, error) {
	cart, err := repo.FindByOwner(ctx, owner)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load cart")
	}
	if cart == nil {
		return nil, pkgerrors.New(pkgerrors.CodeNotFound, "cart item not found")
	}
	item, err := repo.GetItem(ctx, cart.ID, itemID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "cart item not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load cart item")
	}
	return item, nil
}

func resolveProduct(ctx context.Context, reader catalog.Reader, productID uuid.UUID, variantID *uuid.UUID) (*models.Product, *models.ProductVariant, error) {
	product, err := reader.GetProduct(ctx, productID)
	if err != nil {
		return nil, nil, err
	}
	if variantID == nil {
		return product, nil, nil
	}
	variant, err := reader.GetVariant(ctx, *variantID)
	if err != nil {
		return nil, nil, err
	}
	if variant.ProductID != product.ID {
		return nil, nil, pkgerrors.New(pkgerrors.CodeValidation, "variant does not belong to product").
			WithDetails(map[string]any{"product_id": product.ID, "variant_id": variant.ID})
	}
	return product, variant, nil
}
