package checkout

import (
	"bytes"
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/angelmondragon/storefront-backend/internal/cart"
	"github.com/angelmondragon/storefront-backend/internal/coupons"
	"github.com/angelmondragon/storefront-backend/internal/inventory"
	"github.com/angelmondragon/storefront-backend/internal/orders"
	"github.com/angelmondragon/storefront-backend/internal/pricing"
	"github.com/angelmondragon/storefront-backend/pkg/config"
	dbpkg "github.com/angelmondragon/storefront-backend/pkg/db"
	"github.com/angelmondragon/storefront-backend/pkg/db/dbtest"
	"github.com/angelmondragon/storefront-backend/pkg/db/models"
	"github.com/angelmondragon/storefront-backend/pkg/enums"
	pkgerrors "github.com/angelmondragon/storefront-backend/pkg/errors"
	"github.com/angelmondragon/storefront-backend/pkg/money"
	"github.com/angelmondragon/storefront-backend/pkg/outbox"
)

var testPricing = config.PricingConfig{
	TaxRate:                    "0.20",
	FreeShippingThresholdCents: 10000,
	FlatShippingFeeCents:       1000,
}

type failingEmitter struct{}

func (failingEmitter) Emit(context.Context, *gorm.DB, outbox.DomainEvent) error {
	return errors.New("outbox unavailable")
}

type recorderStub struct {
	mu       sync.Mutex
	placed   []money.Money
	failures []string
}

func (r *recorderStub) ObserveOrderPlaced(total money.Money, _ string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.placed = append(r.placed, total)
}

func (r *recorderStub) ObserveCheckoutFailure(code string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.failures = append(r.failures, code)
}

type harness struct {
	db       *gorm.DB
	svc      Service
	recorder *recorderStub
}

type harnessOption func(*Dependencies)

func newHarness(t *testing.T, db *gorm.DB, opts ...harnessOption) *harness {
	t.Helper()
	engine, err := coupons.NewEngine(coupons.NewRepository(db))
	require.NoError(t, err)
	calc, err := pricing.NewCalculator(testPricing, pricing.NewMethodRepository(db))
	require.NoError(t, err)
	recorder := &recorderStub{}
	deps := Dependencies{
		Tx:       dbpkg.NewFromConn(db),
		Carts:    cart.NewRepository(db),
		Ledger:   inventory.NewLedger(db),
		Coupons:  engine,
		Pricing:  calc,
		Orders:   orders.NewRepository(db),
		Outbox:   outbox.NewService(outbox.NewRepository(db), nil),
		Recorder: recorder,
	}
	for _, opt := range opts {
		opt(&deps)
	}
	svc, err := NewService(deps)
	require.NoError(t, err)
	return &harness{db: db, svc: svc, recorder: recorder}
}

func (h *harness) product(t *testing.T, sku, price string, stock int) models.Product {
	t.Helper()
	p := models.Product{Name: "Product " + sku, SKU: sku, PriceCents: money.MustParse(price), StockQuantity: stock, IsActive: true}
	require.NoError(t, h.db.Create(&p).Error)
	return p
}

func (h *harness) address(t *testing.T, userID uuid.UUID) models.Address {
	t.Helper()
	a := models.Address{UserID: userID, FullName: "Ada Lovelace", Line1: "1 Main St", City: "Springfield", PostalCode: "12345", Country: "US"}
	require.NoError(t, h.db.Create(&a).Error)
	return a
}

type cartLine struct {
	product models.Product
	variant *models.ProductVariant
	qty     int
}

func (h *harness) cart(t *testing.T, userID uuid.UUID, lines ...cartLine) models.Cart {
	t.Helper()
	c := models.Cart{UserID: &userID}
	require.NoError(t, h.db.Create(&c).Error)
	for i, line := range lines {
		price := line.product.PriceCents
		item := models.CartItem{
			CartID:         c.ID,
			ProductID:      line.product.ID,
			Quantity:       line.qty,
			UnitPriceCents: price,
			CreatedAt:      time.Now().UTC().Add(time.Duration(i) * time.Second),
		}
		if line.variant != nil {
			item.VariantID = &line.variant.ID
			if line.variant.PriceCents != nil {
				item.UnitPriceCents = *line.variant.PriceCents
			}
		}
		require.NoError(t, h.db.Create(&item).Error)
	}
	return c
}

func (h *harness) stock(t *testing.T, id uuid.UUID) int {
	t.Helper()
	var p models.Product
	require.NoError(t, h.db.First(&p, "id = ?", id).Error)
	return p.StockQuantity
}

func (h *harness) count(t *testing.T, model any) int64 {
	t.Helper()
	var n int64
	require.NoError(t, h.db.Model(model).Count(&n).Error)
	return n
}

func (h *harness) cartItems(t *testing.T, cartID uuid.UUID) int64 {
	t.Helper()
	var n int64
	require.NoError(t, h.db.Model(&models.CartItem{}).Where("cart_id = ?", cartID).Count(&n).Error)
	return n
}

func strPtr(v string) *string { return &v }
func intPtr(v int) *int       { return &v }

func placeInput(userID, addressID uuid.UUID) PlaceOrderInput {
	return PlaceOrderInput{UserID: userID, ShippingAddressID: addressID, PaymentMethod: enums.PaymentMethodStripe}
}

func TestNewServiceRequiresDependencies(t *testing.T) {
	_, err := NewService(Dependencies{})
	require.Error(t, err)
}

func TestPlaceOrderBasicScenario(t *testing.T) {
	h := newHarness(t, dbtest.Open(t))
	ctx := context.Background()
	user := uuid.New()
	addr := h.address(t, user)
	widget := h.product(t, "WIDGET", "10.00", 5)
	untouched := h.product(t, "OTHER", "3.00", 7)
	c := h.cart(t, user, cartLine{product: widget, qty: 2})

	input := placeInput(user, addr.ID)
	input.Notes = strPtr("  leave at the door ")
	result, err := h.svc.PlaceOrder(ctx, input)
	require.NoError(t, err)

	order := result.Order
	assert.Regexp(t, `^ORD-\d{14}-[0-9A-F]{4}$`, order.OrderNumber)
	assert.Equal(t, enums.OrderStatusPending, order.Status)
	assert.Equal(t, enums.PaymentStatusPending, order.PaymentStatus)
	assert.Equal(t, "20.00", order.Subtotal.String())
	assert.Equal(t, "10.00", order.ShippingCost.String())
	assert.Equal(t, "4.00", order.Tax.String())
	assert.Equal(t, "0.00", order.Discount.String())
	assert.Equal(t, "34.00", order.Total.String())
	assert.Equal(t, order.Total, order.Subtotal.Add(order.Tax).Add(order.ShippingCost).Sub(order.Discount))
	require.NotNil(t, order.Notes)
	assert.Equal(t, "leave at the door", *order.Notes)
	assert.Equal(t, coupons.OutcomeNone, result.CouponOutcome.Status)

	require.Len(t, order.Lines, 1)
	assert.Equal(t, "WIDGET", order.Lines[0].ProductSKU)
	assert.Equal(t, "Product WIDGET", order.Lines[0].ProductName)
	assert.Equal(t, 2, order.Lines[0].Quantity)
	assert.Equal(t, "20.00", order.Lines[0].LineTotal.String())
	require.NotNil(t, order.ShippingAddress)
	require.NotNil(t, order.BillingAddress)
	assert.Equal(t, addr.ID, order.BillingAddress.ID)

	assert.Equal(t, 3, h.stock(t, widget.ID))
	assert.Equal(t, 7, h.stock(t, untouched.ID))
	assert.Zero(t, h.cartItems(t, c.ID))

	var events []models.OutboxEvent
	require.NoError(t, h.db.Where("event_type = ?", enums.EventOrderPlaced).Find(&events).Error)
	require.Len(t, events, 1)
	assert.Equal(t, order.ID, events[0].AggregateID)
	assert.Equal(t, []money.Money{order.Total}, h.recorder.placed)
}

func TestPlaceOrderAppliesPercentageCoupon(t *testing.T) {
	h := newHarness(t, dbtest.Open(t))
	ctx := context.Background()
	user := uuid.New()
	addr := h.address(t, user)
	widget := h.product(t, "WIDGET", "10.00", 5)
	h.cart(t, user, cartLine{product: widget, qty: 2})
	minimum := money.MustParse("15.00")
	coupon := models.Coupon{Code: "HALF", Type: enums.CouponTypePercentage, Value: decimal.NewFromInt(50), IsActive: true, MinimumPurchaseCents: &minimum}
	require.NoError(t, h.db.Create(&coupon).Error)

	input := placeInput(user, addr.ID)
	input.CouponCode = strPtr(" half ")
	result, err := h.svc.PlaceOrder(ctx, input)
	require.NoError(t, err)

	assert.True(t, result.CouponOutcome.IsApplied())
	assert.Equal(t, "HALF", result.CouponOutcome.Code)
	assert.Equal(t, "10.00", result.Order.Discount.String())
	assert.Equal(t, "24.00", result.Order.Total.String())
	require.NotNil(t, result.Order.Coupon)
	assert.Equal(t, "HALF", result.Order.Coupon.Code)

	var stored models.Coupon
	require.NoError(t, h.db.First(&stored, "id = ?", coupon.ID).Error)
	assert.Equal(t, 1, stored.UsageCount)
	assert.EqualValues(t, 1, h.count(t, &models.CouponUsage{}))
}

func TestPlaceOrderFreeShippingAboveThreshold(t *testing.T) {
	h := newHarness(t, dbtest.Open(t))
	user := uuid.New()
	addr := h.address(t, user)
	h.cart(t, user, cartLine{product: h.product(t, "BIG", "50.00", 10), qty: 3})

	result, err := h.svc.PlaceOrder(context.Background(), placeInput(user, addr.ID))
	require.NoError(t, err)
	assert.Equal(t, "150.00", result.Order.Subtotal.String())
	assert.Equal(t, "0.00", result.Order.ShippingCost.String())
	assert.Equal(t, "30.00", result.Order.Tax.String())
	assert.Equal(t, "180.00", result.Order.Total.String())
}

func TestPlaceOrderUsesSelectedShippingMethod(t *testing.T) {
	h := newHarness(t, dbtest.Open(t))
	user := uuid.New()
	addr := h.address(t, user)
	h.cart(t, user, cartLine{product: h.product(t, "A", "10.00", 10), qty: 1})
	method := models.ShippingMethod{Name: "Express", CostCents: money.MustParse("5.00"), EstimatedDaysMin: 1, EstimatedDaysMax: 2, IsActive: true}
	require.NoError(t, h.db.Create(&method).Error)

	input := placeInput(user, addr.ID)
	input.ShippingMethodID = &method.ID
	result, err := h.svc.PlaceOrder(context.Background(), input)
	require.NoError(t, err)
	assert.Equal(t, "5.00", result.Order.ShippingCost.String())
	assert.Equal(t, "17.00", result.Order.Total.String())

	var stored models.Order
	require.NoError(t, h.db.First(&stored, "id = ?", result.Order.ID).Error)
	require.NotNil(t, stored.ShippingMethodID)
	assert.Equal(t, method.ID, *stored.ShippingMethodID)
}

func TestPlaceOrderFreezesVariantLines(t *testing.T) {
	h := newHarness(t, dbtest.Open(t))
	user := uuid.New()
	addr := h.address(t, user)
	billing := h.address(t, user)
	shirt := h.product(t, "SHIRT", "20.00", 10)
	mug := h.product(t, "MUG", "8.00", 10)
	variantPrice := money.MustParse("25.00")
	variant := models.ProductVariant{ProductID: shirt.ID, SKU: "SHIRT-L-RED", Attributes: map[string]string{"size": "L", "color": "red"}, PriceCents: &variantPrice, StockQuantity: 4}
	require.NoError(t, h.db.Create(&variant).Error)
	h.cart(t, user, cartLine{product: shirt, variant: &variant, qty: 1}, cartLine{product: mug, qty: 2})

	input := placeInput(user, addr.ID)
	input.BillingAddressID = &billing.ID
	result, err := h.svc.PlaceOrder(context.Background(), input)
	require.NoError(t, err)

	lines := result.Order.Lines
	require.Len(t, lines, 2)
	assert.Equal(t, "SHIRT-L-RED", lines[0].ProductSKU)
	assert.Equal(t, map[string]string{"size": "L", "color": "red"}, lines[0].VariantAttributes)
	assert.Equal(t, "25.00", lines[0].UnitPrice.String())
	assert.Equal(t, "MUG", lines[1].ProductSKU)
	assert.Equal(t, "41.00", result.Order.Subtotal.String())
	assert.Equal(t, billing.ID, result.Order.BillingAddress.ID)
	assert.Equal(t, 9, h.stock(t, shirt.ID))
	assert.Equal(t, 8, h.stock(t, mug.ID))
}

func TestPlaceOrderPerUserCouponLimit(t *testing.T) {
	h := newHarness(t, dbtest.Open(t))
	ctx := context.Background()
	user := uuid.New()
	addr := h.address(t, user)
	widget := h.product(t, "WIDGET", "10.00", 10)
	coupon := models.Coupon{Code: "ONCE", Type: enums.CouponTypeFixed, Value: decimal.NewFromInt(5), IsActive: true, UsageLimitPerUser: intPtr(1)}
	require.NoError(t, h.db.Create(&coupon).Error)

	input := placeInput(user, addr.ID)
	input.CouponCode = strPtr("ONCE")

	h.cart(t, user, cartLine{product: widget, qty: 1})
	first, err := h.svc.PlaceOrder(ctx, input)
	require.NoError(t, err)
	assert.True(t, first.CouponOutcome.IsApplied())
	assert.Equal(t, "5.00", first.Order.Discount.String())

	var existing models.Cart
	require.NoError(t, h.db.First(&existing, "user_id = ?", user).Error)
	require.NoError(t, h.db.Create(&models.CartItem{CartID: existing.ID, ProductID: widget.ID, Quantity: 1, UnitPriceCents: widget.PriceCents}).Error)

	second, err := h.svc.PlaceOrder(ctx, input)
	require.NoError(t, err)
	assert.Equal(t, coupons.OutcomeNotApplied, second.CouponOutcome.Status)
	assert.Equal(t, enums.CouponRejectionPerUserLimitReached, second.CouponOutcome.Reason)
	assert.Equal(t, "0.00", second.Order.Discount.String())
	assert.Nil(t, second.Order.Coupon)
	assert.EqualValues(t, 1, h.count(t, &models.CouponUsage{}))
}

func TestPlaceOrderEmptyCart(t *testing.T) {
	h := newHarness(t, dbtest.Open(t))
	ctx := context.Background()
	user := uuid.New()
	addr := h.address(t, user)

	_, err := h.svc.PlaceOrder(ctx, placeInput(user, addr.ID))
	require.True(t, pkgerrors.HasCode(err, pkgerrors.CodeEmptyCart), "no cart: %v", err)

	h.cart(t, user)
	_, err = h.svc.PlaceOrder(ctx, placeInput(user, addr.ID))
	require.True(t, pkgerrors.HasCode(err, pkgerrors.CodeEmptyCart), "empty cart: %v", err)
	assert.Equal(t, []string{"EMPTY_CART", "EMPTY_CART"}, h.recorder.failures)
}

func TestPlaceOrderAddressErrors(t *testing.T) {
	h := newHarness(t, dbtest.Open(t))
	ctx := context.Background()
	user := uuid.New()
	h.cart(t, user, cartLine{product: h.product(t, "A", "10.00", 5), qty: 1})
	foreign := h.address(t, uuid.New())

	_, err := h.svc.PlaceOrder(ctx, placeInput(user, uuid.New()))
	require.True(t, pkgerrors.HasCode(err, pkgerrors.CodeNotFound), "got %v", err)

	_, err = h.svc.PlaceOrder(ctx, placeInput(user, foreign.ID))
	require.True(t, pkgerrors.HasCode(err, pkgerrors.CodeForbidden), "got %v", err)

	own := h.address(t, user)
	input := placeInput(user, own.ID)
	input.BillingAddressID = &foreign.ID
	_, err = h.svc.PlaceOrder(ctx, input)
	require.True(t, pkgerrors.HasCode(err, pkgerrors.CodeForbidden), "billing: %v", err)
	assert.Zero(t, h.count(t, &models.Order{}))
}

func TestPlaceOrderValidatesInput(t *testing.T) {
	h := newHarness(t, dbtest.Open(t))
	ctx := context.Background()

	_, err := h.svc.PlaceOrder(ctx, PlaceOrderInput{ShippingAddressID: uuid.New(), PaymentMethod: enums.PaymentMethodStripe})
	require.True(t, pkgerrors.HasCode(err, pkgerrors.CodeUnauthorized))

	_, err = h.svc.PlaceOrder(ctx, PlaceOrderInput{UserID: uuid.New(), ShippingAddressID: uuid.New(), PaymentMethod: "barter"})
	require.True(t, pkgerrors.HasCode(err, pkgerrors.CodeValidation))
}

func TestPlaceOrderInsufficientStockChangesNothing(t *testing.T) {
	h := newHarness(t, dbtest.Open(t))
	user := uuid.New()
	addr := h.address(t, user)
	plenty := h.product(t, "PLENTY", "1.00", 10)
	scarce := h.product(t, "SCARCE", "1.00", 1)
	c := h.cart(t, user, cartLine{product: plenty, qty: 2}, cartLine{product: scarce, qty: 2})

	_, err := h.svc.PlaceOrder(context.Background(), placeInput(user, addr.ID))
	require.True(t, pkgerrors.HasCode(err, pkgerrors.CodeInsufficientStock), "got %v", err)
	details, ok := pkgerrors.As(err).Details().(map[string]any)
	require.True(t, ok)
	assert.Equal(t, scarce.ID, details["product_id"])
	assert.Equal(t, "Product SCARCE", details["name"])
	assert.Equal(t, 2, details["requested"])
	assert.Equal(t, 1, details["available"])

	assert.Equal(t, 10, h.stock(t, plenty.ID))
	assert.Equal(t, 1, h.stock(t, scarce.ID))
	assert.EqualValues(t, 2, h.cartItems(t, c.ID))
	assert.Zero(t, h.count(t, &models.Order{}))
}

type countingLedger struct {
	inventory.Ledger
	checks, reads int
}

func (l *countingLedger) CheckAvailable(ctx context.Context, productID uuid.UUID, qty int) (bool, error) {
	l.checks++
	return l.Ledger.CheckAvailable(ctx, productID, qty)
}

func (l *countingLedger) Available(ctx context.Context, productID uuid.UUID) (int, error) {
	l.reads++
	return l.Ledger.Available(ctx, productID)
}

func TestCheckStockReadsCountOnlyOnShortfall(t *testing.T) {
	db := dbtest.Open(t)
	h := newHarness(t, db)
	plenty := h.product(t, "PLENTY", "1.00", 10)
	scarce := h.product(t, "SCARCE", "1.00", 1)
	ledger := &countingLedger{Ledger: inventory.NewLedger(db)}
	ctx := context.Background()

	require.NoError(t, checkStock(ctx, ledger, []models.CartItem{{ProductID: plenty.ID, Product: &plenty, Quantity: 3}}))
	assert.Equal(t, 1, ledger.checks)
	assert.Zero(t, ledger.reads)

	err := checkStock(ctx, ledger, []models.CartItem{
		{ProductID: plenty.ID, Product: &plenty, Quantity: 3},
		{ProductID: scarce.ID, Product: &scarce, Quantity: 4},
	})
	require.True(t, pkgerrors.HasCode(err, pkgerrors.CodeInsufficientStock), "got %v", err)
	assert.Equal(t, 3, ledger.checks)
	assert.Equal(t, 1, ledger.reads)
}

func TestPlaceOrderRollsBackWhenLateStepFails(t *testing.T) {
	h := newHarness(t, dbtest.Open(t), func(d *Dependencies) { d.Outbox = failingEmitter{} })
	user := uuid.New()
	addr := h.address(t, user)
	widget := h.product(t, "WIDGET", "10.00", 5)
	c := h.cart(t, user, cartLine{product: widget, qty: 2})
	coupon := models.Coupon{Code: "TEN", Type: enums.CouponTypePercentage, Value: decimal.NewFromInt(10), IsActive: true}
	require.NoError(t, h.db.Create(&coupon).Error)

	input := placeInput(user, addr.ID)
	input.CouponCode = strPtr("TEN")
	_, err := h.svc.PlaceOrder(context.Background(), input)
	require.True(t, pkgerrors.HasCode(err, pkgerrors.CodeDependency), "got %v", err)

	assert.Zero(t, h.count(t, &models.Order{}))
	assert.Zero(t, h.count(t, &models.OrderLine{}))
	assert.Zero(t, h.count(t, &models.CouponUsage{}))
	assert.Equal(t, 5, h.stock(t, widget.ID))
	assert.EqualValues(t, 1, h.cartItems(t, c.ID))

	var stored models.Coupon
	require.NoError(t, h.db.First(&stored, "id = ?", coupon.ID).Error)
	assert.Zero(t, stored.UsageCount)
}

func TestPlaceOrderRegeneratesTakenOrderNumber(t *testing.T) {
	at := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	entropy := bytes.NewReader([]byte{0xAB, 0xCD, 0x01, 0x02})
	db := dbtest.Open(t)
	h := newHarness(t, db, func(d *Dependencies) {
		d.Numbers = NewNumberGenerator().WithSource(func() time.Time { return at }, entropy)
	})
	user := uuid.New()
	addr := h.address(t, user)
	h.seedOrderNumber(t, user, addr.ID, "ORD-20260301120000-ABCD")
	h.cart(t, user, cartLine{product: h.product(t, "A", "10.00", 5), qty: 1})

	result, err := h.svc.PlaceOrder(context.Background(), placeInput(user, addr.ID))
	require.NoError(t, err)
	assert.Equal(t, "ORD-20260301120000-0102", result.Order.OrderNumber)
}

func TestPlaceOrderFailsWhenOrderNumbersExhausted(t *testing.T) {
	at := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	entropy := bytes.NewReader(bytes.Repeat([]byte{0xAB, 0xCD}, orderNumberAttempts))
	h := newHarness(t, dbtest.Open(t), func(d *Dependencies) {
		d.Numbers = NewNumberGenerator().WithSource(func() time.Time { return at }, entropy)
	})
	user := uuid.New()
	addr := h.address(t, user)
	h.seedOrderNumber(t, user, addr.ID, "ORD-20260301120000-ABCD")
	widget := h.product(t, "A", "10.00", 5)
	h.cart(t, user, cartLine{product: widget, qty: 1})

	_, err := h.svc.PlaceOrder(context.Background(), placeInput(user, addr.ID))
	require.True(t, pkgerrors.HasCode(err, pkgerrors.CodeInternal), "got %v", err)
	assert.EqualValues(t, 1, h.count(t, &models.Order{}))
	assert.Equal(t, 5, h.stock(t, widget.ID))
}

func (h *harness) seedOrderNumber(t *testing.T, userID, addressID uuid.UUID, number string) {
	t.Helper()
	order := models.Order{
		OrderNumber:       number,
		UserID:            userID,
		ShippingAddressID: addressID,
		BillingAddressID:  addressID,
		PaymentMethod:     enums.PaymentMethodStripe,
		Status:            enums.OrderStatusPending,
		PaymentStatus:     enums.PaymentStatusPending,
	}
	require.NoError(t, h.db.Create(&order).Error)
}

func TestPlaceOrderConcurrentLastUnit(t *testing.T) {
	h := newHarness(t, dbtest.OpenFile(t))
	last := h.product(t, "LAST", "10.00", 1)

	inputs := make([]PlaceOrderInput, 2)
	for i := range inputs {
		user := uuid.New()
		addr := h.address(t, user)
		h.cart(t, user, cartLine{product: last, qty: 1})
		inputs[i] = placeInput(user, addr.ID)
	}

	var wg sync.WaitGroup
	errs := make([]error, len(inputs))
	for i := range inputs {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_, errs[i] = h.svc.PlaceOrder(context.Background(), inputs[i])
		}(i)
	}
	wg.Wait()

	succeeded, outOfStock := 0, 0
	for _, err := range errs {
		switch {
		case err == nil:
			succeeded++
		case pkgerrors.HasCode(err, pkgerrors.CodeInsufficientStock):
			outOfStock++
		default:
			t.Fatalf("unexpected error: %v", err)
		}
	}
	assert.Equal(t, 1, succeeded)
	assert.Equal(t, 1, outOfStock)
	assert.Equal(t, 0, h.stock(t, last.ID))
	assert.EqualValues(t, 1, h.count(t, &models.Order{}))
}
