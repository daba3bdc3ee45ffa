package catalog

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/angelmondragon/storefront-backend/pkg/db/dbtest"
	"github.com/angelmondragon/storefront-backend/pkg/db/models"
	pkgerrors "github.com/angelmondragon/storefront-backend/pkg/errors"
	"github.com/angelmondragon/storefront-backend/pkg/money"
)

func TestGetProduct(t *testing.T) {
	db := dbtest.Open(t)
	active := models.Product{Name: "Mug", SKU: "MUG-1", PriceCents: money.MustParse("10.00"), StockQuantity: 3, IsActive: true}
	hidden := models.Product{Name: "Old mug", SKU: "MUG-0", PriceCents: money.MustParse("8.00"), IsActive: false}
	require.NoError(t, db.Create(&active).Error)
	require.NoError(t, db.Create(&hidden).Error)

	repo := NewRepository(db)
	ctx := context.Background()

	got, err := repo.GetProduct(ctx, active.ID)
	require.NoError(t, err)
	assert.Equal(t, "MUG-1", got.SKU)

	_, err = repo.GetProduct(ctx, hidden.ID)
	assert.True(t, pkgerrors.HasCode(err, pkgerrors.CodeNotFound))

	_, err = repo.GetProduct(ctx, uuid.New())
	assert.True(t, pkgerrors.HasCode(err, pkgerrors.CodeNotFound))

	byID, err := repo.GetProducts(ctx, []uuid.UUID{active.ID, hidden.ID, uuid.New()})
	require.NoError(t, err)
	assert.Len(t, byID, 2)
}

func TestGetVariant(t *testing.T) {
	db := dbtest.Open(t)
	product := models.Product{Name: "Shirt", SKU: "SH-1", PriceCents: money.MustParse("20.00"), IsActive: true}
	require.NoError(t, db.Create(&product).Error)
	variant := models.ProductVariant{ProductID: product.ID, SKU: "SH-1-L", Attributes: map[string]string{"size": "L"}}
	require.NoError(t, db.Create(&variant).Error)

	repo := NewRepository(db)
	got, err := repo.GetVariant(context.Background(), variant.ID)
	require.NoError(t, err)
	assert.Equal(t, "L", got.Attributes["size"])

	_, err = repo.GetVariant(context.Background(), uuid.New())
	assert.True(t, pkgerrors.HasCode(err, pkgerrors.CodeNotFound))
}

func TestUnitPrice(t *testing.T) {
	sale := money.MustParse("7.50")
	override := money.MustParse("12.00")
	product := models.Product{PriceCents: money.MustParse("10.00")}

	assert.Equal(t, money.MustParse("10.00"), UnitPrice(product, nil))

	product.SalePriceCents = &sale
	assert.Equal(t, sale, UnitPrice(product, nil))
	assert.Equal(t, sale, UnitPrice(product, &models.ProductVariant{}))
	assert.Equal(t, override, UnitPrice(product, &models.ProductVariant{PriceCents: &override}))
}
