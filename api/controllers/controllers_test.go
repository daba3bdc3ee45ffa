package controllers

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/angelmondragon/storefront-backend/api/middleware"
	"github.com/angelmondragon/storefront-backend/internal/address"
	"github.com/angelmondragon/storefront-backend/internal/cart"
	"github.com/angelmondragon/storefront-backend/internal/coupons"
	"github.com/angelmondragon/storefront-backend/internal/pricing"
	"github.com/angelmondragon/storefront-backend/pkg/config"
	"github.com/angelmondragon/storefront-backend/pkg/db/models"
	"github.com/angelmondragon/storefront-backend/pkg/enums"
	pkgerrors "github.com/angelmondragon/storefront-backend/pkg/errors"
	"github.com/angelmondragon/storefront-backend/pkg/money"
)

type pingFunc func(ctx context.Context) error

func (f pingFunc) Ping(ctx context.Context) error { return f(ctx) }

func TestHealthReady(t *testing.T) {
	cfg := &config.Config{App: config.AppConfig{Env: "dev"}}

	ok := HealthReady(cfg, nil, map[string]Pinger{
		"db":    pingFunc(func(context.Context) error { return nil }),
		"redis": pingFunc(func(context.Context) error { return nil }),
	})
	resp := httptest.NewRecorder()
	ok.ServeHTTP(resp, httptest.NewRequest(http.MethodGet, "/health/ready", nil))
	require.Equal(t, http.StatusOK, resp.Code)
	assert.Equal(t, "dev", resp.Header().Get(envHeader))

	failing := HealthReady(cfg, nil, map[string]Pinger{
		"db":    pingFunc(func(context.Context) error { return nil }),
		"redis": pingFunc(func(context.Context) error { return errors.New("refused") }),
	})
	resp = httptest.NewRecorder()
	failing.ServeHTTP(resp, httptest.NewRequest(http.MethodGet, "/health/ready", nil))
	require.Equal(t, http.StatusServiceUnavailable, resp.Code)

	var envelope struct {
		Error struct {
			Details map[string]string `json:"details"`
		} `json:"error"`
	}
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&envelope))
	assert.Equal(t, "unavailable", envelope.Error.Details["redis"])
	assert.Equal(t, "ok", envelope.Error.Details["db"])
}

func TestHealthLive(t *testing.T) {
	resp := httptest.NewRecorder()
	HealthLive(&config.Config{}).ServeHTTP(resp, httptest.NewRequest(http.MethodGet, "/health/live", nil))
	assert.Equal(t, http.StatusOK, resp.Code)
}

type stubAddresses struct {
	list      []models.Address
	created   *models.Address
	err       error
	lastInput address.CreateInput
	lastID    uuid.UUID
	lastOwner uuid.UUID
}

func (s *stubAddresses) GetAddress(_ context.Context, id, owner uuid.UUID) (*models.Address, error) {
	s.lastID, s.lastOwner = id, owner
	return s.created, s.err
}

func (s *stubAddresses) List(_ context.Context, owner uuid.UUID) ([]models.Address, error) {
	s.lastOwner = owner
	return s.list, s.err
}

func (s *stubAddresses) Create(_ context.Context, owner uuid.UUID, input address.CreateInput) (*models.Address, error) {
	s.lastOwner, s.lastInput = owner, input
	return s.created, s.err
}

func (s *stubAddresses) SetDefault(_ context.Context, id, owner uuid.UUID) (*models.Address, error) {
	s.lastID, s.lastOwner = id, owner
	return s.created, s.err
}

func authed(req *http.Request, userID uuid.UUID) *http.Request {
	return req.WithContext(middleware.WithUserID(req.Context(), userID.String()))
}

func TestAddressCreate(t *testing.T) {
	userID := uuid.New()
	svc := &stubAddresses{created: &models.Address{ID: uuid.New(), UserID: userID, FullName: "Ada", Country: "US", IsDefault: true}}
	body := `{"full_name":"Ada","line1":"1 Loop","city":"Springfield","postal_code":"12345","country":"us"}`
	resp := httptest.NewRecorder()
	AddressCreate(svc, nil).ServeHTTP(resp, authed(httptest.NewRequest(http.MethodPost, "/api/v1/addresses", strings.NewReader(body)), userID))

	require.Equal(t, http.StatusCreated, resp.Code, resp.Body.String())
	assert.Equal(t, userID, svc.lastOwner)
	assert.Equal(t, "us", svc.lastInput.Country)
	assert.Contains(t, resp.Body.String(), `"is_default":true`)
}

func TestAddressCreateValidatesCountry(t *testing.T) {
	body := `{"full_name":"Ada","line1":"1 Loop","city":"Springfield","postal_code":"12345","country":"USA"}`
	resp := httptest.NewRecorder()
	AddressCreate(&stubAddresses{}, nil).ServeHTTP(resp, authed(httptest.NewRequest(http.MethodPost, "/api/v1/addresses", strings.NewReader(body)), uuid.New()))
	assert.Equal(t, http.StatusBadRequest, resp.Code)
}

func TestAddressSetDefaultForbidden(t *testing.T) {
	addrID := uuid.New()
	svc := &stubAddresses{err: pkgerrors.New(pkgerrors.CodeForbidden, "address does not belong to user")}
	req := httptest.NewRequest(http.MethodPut, "/api/v1/addresses/"+addrID.String()+"/default", nil)
	rc := chi.NewRouteContext()
	rc.URLParams.Add("id", addrID.String())
	req = req.WithContext(context.WithValue(req.Context(), chi.RouteCtxKey, rc))
	resp := httptest.NewRecorder()
	AddressSetDefault(svc, nil).ServeHTTP(resp, authed(req, uuid.New()))

	assert.Equal(t, http.StatusForbidden, resp.Code)
	assert.Equal(t, addrID, svc.lastID)
}

func TestAddressListRequiresAuth(t *testing.T) {
	resp := httptest.NewRecorder()
	AddressList(&stubAddresses{}, nil).ServeHTTP(resp, httptest.NewRequest(http.MethodGet, "/api/v1/addresses", nil))
	assert.Equal(t, http.StatusUnauthorized, resp.Code)
}

type stubMethods struct {
	methods []pricing.ShippingMethodDTO
}

func (s stubMethods) ListShippingMethods(context.Context) ([]pricing.ShippingMethodDTO, error) {
	return s.methods, nil
}

func TestShippingMethods(t *testing.T) {
	resp := httptest.NewRecorder()
	ShippingMethods(stubMethods{methods: []pricing.ShippingMethodDTO{{Name: "Standard", Cost: money.MustParse("10.00")}}}, nil).
		ServeHTTP(resp, httptest.NewRequest(http.MethodGet, "/api/v1/shipping-methods", nil))
	require.Equal(t, http.StatusOK, resp.Code)
	assert.Contains(t, resp.Body.String(), `"cost":"10.00"`)
}

type stubCoupons struct {
	coupon   *models.Coupon
	err      error
	outcome  coupons.Outcome
	lines    []coupons.Line
	subtotal money.Money
}

func (s *stubCoupons) Validate(_ context.Context, _ string, subtotal money.Money, _ uuid.UUID) (*models.Coupon, error) {
	s.subtotal = subtotal
	return s.coupon, s.err
}

func (s *stubCoupons) Apply(_ context.Context, _ string, lines []coupons.Line, _ uuid.UUID) (coupons.Outcome, *models.Coupon, error) {
	s.lines = lines
	if s.outcome.IsApplied() {
		return s.outcome, s.coupon, nil
	}
	return s.outcome, nil, s.err
}

type stubCart struct {
	view *cart.View
}

func (s stubCart) Get(context.Context, cart.Owner) (*cart.View, error) {
	return s.view, nil
}

func percentCoupon() *models.Coupon {
	return &models.Coupon{ID: uuid.New(), Code: "SAVE50", Type: enums.CouponTypePercentage, Value: decimal.NewFromInt(50), IsActive: true}
}

func TestCouponValidateWithSubtotal(t *testing.T) {
	engine := &stubCoupons{coupon: percentCoupon()}
	body := `{"code":" save50 ","subtotal":"20.00"}`
	resp := httptest.NewRecorder()
	CouponValidate(engine, nil, nil).ServeHTTP(resp, authed(httptest.NewRequest(http.MethodPost, "/api/v1/coupons/validate", strings.NewReader(body)), uuid.New()))

	require.Equal(t, http.StatusOK, resp.Code, resp.Body.String())
	assert.Equal(t, money.MustParse("20.00"), engine.subtotal)
	assert.Contains(t, resp.Body.String(), `"discount":"10.00"`)
}

func TestCouponValidateRejection(t *testing.T) {
	engine := &stubCoupons{err: pkgerrors.New(pkgerrors.CodeInvalidCoupon, "order subtotal is below the coupon minimum").
		WithDetails(map[string]any{"code": "SAVE50", "reason": enums.CouponRejectionBelowMinimum})}
	body := `{"code":"SAVE50","subtotal":"5.00"}`
	resp := httptest.NewRecorder()
	CouponValidate(engine, nil, nil).ServeHTTP(resp, authed(httptest.NewRequest(http.MethodPost, "/api/v1/coupons/validate", strings.NewReader(body)), uuid.New()))

	require.Equal(t, http.StatusBadRequest, resp.Code)
	assert.Contains(t, resp.Body.String(), string(pkgerrors.CodeInvalidCoupon))
	assert.Contains(t, resp.Body.String(), string(enums.CouponRejectionBelowMinimum))
}

func TestCouponValidateAgainstCart(t *testing.T) {
	productID := uuid.New()
	coupon := percentCoupon()
	engine := &stubCoupons{coupon: coupon, outcome: coupons.Applied("SAVE50", coupon.ID, money.MustParse("10.00"))}
	carts := stubCart{view: &cart.View{
		Items:    []cart.ItemView{{ProductID: productID, Quantity: 2, LineTotal: money.MustParse("20.00")}},
		Subtotal: money.MustParse("20.00"),
	}}
	resp := httptest.NewRecorder()
	CouponValidate(engine, carts, nil).ServeHTTP(resp, authed(httptest.NewRequest(http.MethodPost, "/api/v1/coupons/validate", strings.NewReader(`{"code":"SAVE50"}`)), uuid.New()))

	require.Equal(t, http.StatusOK, resp.Code, resp.Body.String())
	require.Len(t, engine.lines, 1)
	assert.Equal(t, productID, engine.lines[0].ProductID)
	assert.Contains(t, resp.Body.String(), `"subtotal":"20.00"`)
}

func TestCouponValidateCartNotApplicable(t *testing.T) {
	engine := &stubCoupons{outcome: coupons.NotApplied("SAVE50", enums.CouponRejectionNotApplicable)}
	carts := stubCart{view: &cart.View{Items: []cart.ItemView{{ProductID: uuid.New(), LineTotal: money.MustParse("5.00")}}}}
	resp := httptest.NewRecorder()
	CouponValidate(engine, carts, nil).ServeHTTP(resp, authed(httptest.NewRequest(http.MethodPost, "/api/v1/coupons/validate", strings.NewReader(`{"code":"SAVE50"}`)), uuid.New()))

	require.Equal(t, http.StatusBadRequest, resp.Code)
	assert.Contains(t, resp.Body.String(), string(enums.CouponRejectionNotApplicable))
}

func TestCouponValidateEmptyCart(t *testing.T) {
	resp := httptest.NewRecorder()
	CouponValidate(&stubCoupons{}, stubCart{view: &cart.View{}}, nil).ServeHTTP(resp, authed(httptest.NewRequest(http.MethodPost, "/api/v1/coupons/validate", strings.NewReader(`{"code":"X"}`)), uuid.New()))
	assert.Equal(t, http.StatusBadRequest, resp.Code)
	assert.Contains(t, resp.Body.String(), string(pkgerrors.CodeEmptyCart))
}
