package main

import (
	"context"
	"os"
	"strings"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"

	"github.com/angelmondragon/storefront-backend/pkg/db/dbtest"
	"github.com/angelmondragon/storefront-backend/pkg/db/models"
	"github.com/angelmondragon/storefront-backend/pkg/enums"
	"github.com/angelmondragon/storefront-backend/pkg/money"
)

func loadTestdata(t *testing.T) *Fixtures {
	t.Helper()
	f, err := os.Open("testdata/fixtures.yaml")
	require.NoError(t, err)
	defer f.Close()
	fixtures, err := LoadFixtures(f)
	require.NoError(t, err)
	return fixtures
}

func TestApplySeedsCatalogCouponsAndShipping(t *testing.T) {
	db := dbtest.Open(t)
	fixtures := loadTestdata(t)

	summary, err := fixtures.Apply(context.Background(), db)
	require.NoError(t, err)
	require.Equal(t, Summary{Products: 2, Variants: 2, Coupons: 2, ShippingMethods: 2}, summary)

	var tee models.Product
	require.NoError(t, db.Where("sku = ?", "TEE-001").Take(&tee).Error)
	require.Equal(t, money.MustParse("20.00"), tee.EffectivePrice())
	require.True(t, tee.IsActive)

	var coupon models.Coupon
	require.NoError(t, db.Where("code = ?", "WELCOME10").Take(&coupon).Error)
	require.Equal(t, enums.CouponTypePercentage, coupon.Type)
	require.NotNil(t, coupon.MaximumDiscountCents)
	require.Equal(t, money.MustParse("15.00"), *coupon.MaximumDiscountCents)

	var scoped models.Coupon
	require.NoError(t, db.Where("code = ?", "TEEFIVE").Take(&scoped).Error)
	require.Equal(t, []uuid.UUID{tee.ID}, scoped.ApplicableProductIDs)
}

func TestApplyIsRerunnable(t *testing.T) {
	db := dbtest.Open(t)
	fixtures := loadTestdata(t)

	_, err := fixtures.Apply(context.Background(), db)
	require.NoError(t, err)

	fixtures.Products[1].Stock = 7
	_, err = fixtures.Apply(context.Background(), db)
	require.NoError(t, err)

	var count int64
	require.NoError(t, db.Model(&models.Product{}).Count(&count).Error)
	require.EqualValues(t, 2, count)
	require.NoError(t, db.Model(&models.ShippingMethod{}).Count(&count).Error)
	require.EqualValues(t, 2, count)

	var mug models.Product
	require.NoError(t, db.Where("sku = ?", "MUG-001").Take(&mug).Error)
	require.Equal(t, 7, mug.StockQuantity)
}

func TestLoadFixturesRejectsUnknownFields(t *testing.T) {
	_, err := LoadFixtures(strings.NewReader("products:\n  - sku: A\n    colour: red\n"))
	require.Error(t, err)
}

func TestCouponFixtureRejectsUnknownSKU(t *testing.T) {
	cf := couponFixture{Code: "x", Type: "fixed", Value: "1", ProductSKUs: []string{"NOPE"}}
	_, err := cf.model(nil)
	require.ErrorContains(t, err, "unknown product sku")
}

func TestShippingFixtureValidatesDays(t *testing.T) {
	sf := shippingMethodFixture{Name: "Slow", Cost: "1.00", DaysMin: 5, DaysMax: 2}
	_, err := sf.model()
	require.Error(t, err)
}
