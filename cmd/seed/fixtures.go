package main

import (
	"context"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gopkg.in/yaml.v3"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/angelmondragon/storefront-backend/pkg/db/models"
	"github.com/angelmondragon/storefront-backend/pkg/enums"
	"github.com/angelmondragon/storefront-backend/pkg/money"
)

// Fixtures is the YAML document accepted by the seed command. Amounts are decimal
// strings ("19.99").
type Fixtures struct {
	Products        []productFixture        `yaml:"products"`
	Coupons         []couponFixture         `yaml:"coupons"`
	ShippingMethods []shippingMethodFixture `yaml:"shipping_methods"`
}

type productFixture struct {
	SKU         string           `yaml:"sku"`
	Name        string           `yaml:"name"`
	Description string           `yaml:"description"`
	Price       string           `yaml:"price"`
	SalePrice   string           `yaml:"sale_price"`
	Stock       int              `yaml:"stock"`
	Inactive    bool             `yaml:"inactive"`
	Variants    []variantFixture `yaml:"variants"`
}

type variantFixture struct {
	SKU        string            `yaml:"sku"`
	Attributes map[string]string `yaml:"attributes"`
	Price      string            `yaml:"price"`
	Stock      int               `yaml:"stock"`
}

type couponFixture struct {
	Code            string     `yaml:"code"`
	Description     string     `yaml:"description"`
	Type            string     `yaml:"type"`
	Value           string     `yaml:"value"`
	MinimumPurchase string     `yaml:"minimum_purchase"`
	MaximumDiscount string     `yaml:"maximum_discount"`
	UsageLimit      *int       `yaml:"usage_limit"`
	PerUserLimit    *int       `yaml:"usage_limit_per_user"`
	Inactive        bool       `yaml:"inactive"`
	StartsAt        *time.Time `yaml:"starts_at"`
	ExpiresAt       *time.Time `yaml:"expires_at"`
	ProductSKUs     []string   `yaml:"product_skus"`
}

type shippingMethodFixture struct {
	Name                  string `yaml:"name"`
	Description           string `yaml:"description"`
	Cost                  string `yaml:"cost"`
	FreeShippingThreshold string `yaml:"free_shipping_threshold"`
	DaysMin               int    `yaml:"estimated_days_min"`
	DaysMax               int    `yaml:"estimated_days_max"`
	SortOrder             int    `yaml:"sort_order"`
}

// Summary counts the rows written by Apply.
type Summary struct {
	Products        int
	Variants        int
	Coupons         int
	ShippingMethods int
}

func LoadFixtures(r io.Reader) (*Fixtures, error) {
	var f Fixtures
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)
	if err := dec.Decode(&f); err != nil {
		return nil, fmt.Errorf("decode fixtures: %w", err)
	}
	return &f, nil
}

// Apply upserts fixtures in one transaction. Products and variants are keyed by sku,
// coupons by code and shipping methods by name, so reruns update rows in place.
func (f *Fixtures) Apply(ctx context.Context, db *gorm.DB) (Summary, error) {
	var summary Summary
	err := db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		skuToID := make(map[string]uuid.UUID, len(f.Products))

		for _, pf := range f.Products {
			product, err := pf.model()
			if err != nil {
				return err
			}
			id, err := upsertProduct(tx, product)
			if err != nil {
				return err
			}
			skuToID[product.SKU] = id
			summary.Products++

			for _, vf := range pf.Variants {
				variant, err := vf.model(id)
				if err != nil {
					return fmt.Errorf("product %s: %w", pf.SKU, err)
				}
				if err := upsertVariant(tx, variant); err != nil {
					return err
				}
				summary.Variants++
			}
		}

		for _, cf := range f.Coupons {
			coupon, err := cf.model(skuToID)
			if err != nil {
				return err
			}
			if err := tx.Clauses(clause.OnConflict{
				Columns: []clause.Column{{Name: "code"}},
				DoUpdates: clause.AssignmentColumns([]string{
					"description", "type", "value", "minimum_purchase_cents", "maximum_discount_cents",
					"usage_limit", "usage_limit_per_user", "is_active", "starts_at", "expires_at",
					"applicable_product_ids", "updated_at",
				}),
			}).Create(coupon).Error; err != nil {
				return fmt.Errorf("upsert coupon %s: %w", coupon.Code, err)
			}
			summary.Coupons++
		}

		for _, sf := range f.ShippingMethods {
			method, err := sf.model()
			if err != nil {
				return err
			}
			if err := upsertShippingMethod(tx, method); err != nil {
				return err
			}
			summary.ShippingMethods++
		}
		return nil
	})
	return summary, err
}

func upsertProduct(tx *gorm.DB, product *models.Product) (uuid.UUID, error) {
	var existing models.Product
	err := tx.Where("sku = ?", product.SKU).Take(&existing).Error
	switch {
	case err == nil:
		product.ID = existing.ID
		if err := tx.Model(&existing).Select("name", "description", "price_cents", "sale_price_cents", "stock_quantity", "is_active").
			Updates(product).Error; err != nil {
			return uuid.Nil, fmt.Errorf("update product %s: %w", product.SKU, err)
		}
		return existing.ID, nil
	case err == gorm.ErrRecordNotFound:
		if err := tx.Omit("Variants").Create(product).Error; err != nil {
			return uuid.Nil, fmt.Errorf("create product %s: %w", product.SKU, err)
		}
		return product.ID, nil
	default:
		return uuid.Nil, fmt.Errorf("lookup product %s: %w", product.SKU, err)
	}
}

func upsertVariant(tx *gorm.DB, variant *models.ProductVariant) error {
	var existing models.ProductVariant
	err := tx.Where("product_id = ? AND sku = ?", variant.ProductID, variant.SKU).Take(&existing).Error
	switch {
	case err == nil:
		return tx.Model(&existing).Select("attributes", "price_cents", "stock_quantity").Updates(variant).Error
	case err == gorm.ErrRecordNotFound:
		return tx.Create(variant).Error
	default:
		return fmt.Errorf("lookup variant %s: %w", variant.SKU, err)
	}
}

func upsertShippingMethod(tx *gorm.DB, method *models.ShippingMethod) error {
	var existing models.ShippingMethod
	err := tx.Where("name = ?", method.Name).Take(&existing).Error
	switch {
	case err == nil:
		return tx.Model(&existing).
			Select("description", "cost_cents", "free_shipping_threshold_cents", "estimated_days_min", "estimated_days_max", "is_active", "sort_order").
			Updates(method).Error
	case err == gorm.ErrRecordNotFound:
		return tx.Create(method).Error
	default:
		return fmt.Errorf("lookup shipping method %s: %w", method.Name, err)
	}
}

func (pf productFixture) model() (*models.Product, error) {
	sku := strings.TrimSpace(pf.SKU)
	if sku == "" || strings.TrimSpace(pf.Name) == "" {
		return nil, fmt.Errorf("product requires sku and name")
	}
	if pf.Stock < 0 {
		return nil, fmt.Errorf("product %s: stock must not be negative", sku)
	}
	price, err := money.Parse(pf.Price)
	if err != nil {
		return nil, fmt.Errorf("product %s price: %w", sku, err)
	}
	if price.IsNegative() {
		return nil, fmt.Errorf("product %s: price must not be negative", sku)
	}
	sale, err := optionalAmount(pf.SalePrice)
	if err != nil {
		return nil, fmt.Errorf("product %s sale_price: %w", sku, err)
	}
	return &models.Product{
		SKU:            sku,
		Name:           pf.Name,
		Description:    optionalString(pf.Description),
		PriceCents:     price,
		SalePriceCents: sale,
		StockQuantity:  pf.Stock,
		IsActive:       !pf.Inactive,
	}, nil
}

func (vf variantFixture) model(productID uuid.UUID) (*models.ProductVariant, error) {
	if strings.TrimSpace(vf.SKU) == "" {
		return nil, fmt.Errorf("variant requires sku")
	}
	price, err := optionalAmount(vf.Price)
	if err != nil {
		return nil, fmt.Errorf("variant %s price: %w", vf.SKU, err)
	}
	return &models.ProductVariant{
		ProductID:     productID,
		SKU:           strings.TrimSpace(vf.SKU),
		Attributes:    vf.Attributes,
		PriceCents:    price,
		StockQuantity: vf.Stock,
	}, nil
}

func (cf couponFixture) model(skuToID map[string]uuid.UUID) (*models.Coupon, error) {
	code := strings.ToUpper(strings.TrimSpace(cf.Code))
	if code == "" {
		return nil, fmt.Errorf("coupon requires code")
	}
	couponType, err := enums.ParseCouponType(cf.Type)
	if err != nil {
		return nil, fmt.Errorf("coupon %s: %w", code, err)
	}
	value, err := decimal.NewFromString(strings.TrimSpace(cf.Value))
	if err != nil || !value.IsPositive() {
		return nil, fmt.Errorf("coupon %s: value must be a positive number", code)
	}
	minimum, err := optionalAmount(cf.MinimumPurchase)
	if err != nil {
		return nil, fmt.Errorf("coupon %s minimum_purchase: %w", code, err)
	}
	maximum, err := optionalAmount(cf.MaximumDiscount)
	if err != nil {
		return nil, fmt.Errorf("coupon %s maximum_discount: %w", code, err)
	}

	var products []uuid.UUID
	for _, sku := range cf.ProductSKUs {
		id, ok := skuToID[strings.TrimSpace(sku)]
		if !ok {
			return nil, fmt.Errorf("coupon %s: unknown product sku %q", code, sku)
		}
		products = append(products, id)
	}

	return &models.Coupon{
		Code:                 code,
		Description:          optionalString(cf.Description),
		Type:                 couponType,
		Value:                value,
		MinimumPurchaseCents: minimum,
		MaximumDiscountCents: maximum,
		UsageLimit:           cf.UsageLimit,
		UsageLimitPerUser:    cf.PerUserLimit,
		IsActive:             !cf.Inactive,
		StartsAt:             cf.StartsAt,
		ExpiresAt:            cf.ExpiresAt,
		ApplicableProductIDs: products,
	}, nil
}

func (sf shippingMethodFixture) model() (*models.ShippingMethod, error) {
	if strings.TrimSpace(sf.Name) == "" {
		return nil, fmt.Errorf("shipping method requires name")
	}
	cost, err := money.Parse(sf.Cost)
	if err != nil {
		return nil, fmt.Errorf("shipping method %s cost: %w", sf.Name, err)
	}
	threshold, err := optionalAmount(sf.FreeShippingThreshold)
	if err != nil {
		return nil, fmt.Errorf("shipping method %s free_shipping_threshold: %w", sf.Name, err)
	}
	if sf.DaysMin > sf.DaysMax {
		return nil, fmt.Errorf("shipping method %s: estimated_days_min exceeds max", sf.Name)
	}
	return &models.ShippingMethod{
		Name:                       strings.TrimSpace(sf.Name),
		Description:                optionalString(sf.Description),
		CostCents:                  cost,
		FreeShippingThresholdCents: threshold,
		EstimatedDaysMin:           sf.DaysMin,
		EstimatedDaysMax:           sf.DaysMax,
		IsActive:                   true,
		SortOrder:                  sf.SortOrder,
	}, nil
}

func optionalAmount(value string) (*money.Money, error) {
	if strings.TrimSpace(value) == "" {
		return nil, nil
	}
	amount, err := money.Parse(value)
	if err != nil {
		return nil, err
	}
	return &amount, nil
}

func optionalString(value string) *string {
	trimmed := strings.TrimSpace(value)
	if trimmed == "" {
		return nil
	}
	return &trimmed
}
