// Package checkout turns a user's cart into an order in a single transaction.
package checkout

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/angelmondragon/storefront-backend/internal/address"
	"github.com/angelmondragon/storefront-backend/internal/cart"
	"github.com/angelmondragon/storefront-backend/internal/coupons"
	"github.com/angelmondragon/storefront-backend/internal/inventory"
	"github.com/angelmondragon/storefront-backend/internal/orders"
	"github.com/angelmondragon/storefront-backend/internal/pricing"
	dbpkg "github.com/angelmondragon/storefront-backend/pkg/db"
	"github.com/angelmondragon/storefront-backend/pkg/db/models"
	"github.com/angelmondragon/storefront-backend/pkg/enums"
	pkgerrors "github.com/angelmondragon/storefront-backend/pkg/errors"
	"github.com/angelmondragon/storefront-backend/pkg/logger"
	"github.com/angelmondragon/storefront-backend/pkg/money"
	"github.com/angelmondragon/storefront-backend/pkg/outbox"
	"github.com/angelmondragon/storefront-backend/pkg/outbox/payloads"
)

const savepointOrderNumber = "order_number"

type txRunner interface {
	WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error
}

// Recorder observes checkout results.
type Recorder interface {
	ObserveOrderPlaced(total money.Money, couponStatus string)
	ObserveCheckoutFailure(code string)
}

// Service executes checkout orchestration.
type Service interface {
	PlaceOrder(ctx context.Context, input PlaceOrderInput) (*Result, error)
}

// PlaceOrderInput is the validated order request. BillingAddressID defaults to the
// shipping address.
type PlaceOrderInput struct {
	UserID            uuid.UUID
	ShippingAddressID uuid.UUID
	BillingAddressID  *uuid.UUID
	PaymentMethod     enums.PaymentMethod
	CouponCode        *string
	Notes             *string
	ShippingMethodID  *uuid.UUID
}

// Result is the placed order and what happened to the requested coupon.
type Result struct {
	Order         *orders.OrderDTO `json:"order"`
	CouponOutcome coupons.Outcome  `json:"coupon_outcome"`
}

// Dependencies groups the collaborators of the checkout service. Logger, Recorder,
// Numbers and NumberAttempts are optional.
type Dependencies struct {
	Tx       txRunner
	Carts    cart.CartRepository
	Ledger   inventory.Ledger
	Coupons  *coupons.Engine
	Pricing  *pricing.Calculator
	Orders   orders.Repository
	Outbox   outbox.Emitter
	Logger   *logger.Logger
	Recorder Recorder
	Numbers  *NumberGenerator
	// NumberAttempts bounds order number generation per checkout.
	NumberAttempts int
}

type service struct {
	tx       txRunner
	carts    cart.CartRepository
	ledger   inventory.Ledger
	coupons  *coupons.Engine
	pricing  *pricing.Calculator
	orders   orders.Repository
	outbox   outbox.Emitter
	logg     *logger.Logger
	recorder Recorder
	numbers  *NumberGenerator
	attempts int
	now      func() time.Time
}

// NewService builds the checkout service.
func NewService(deps Dependencies) (Service, error) {
	if deps.Tx == nil {
		return nil, fmt.Errorf("tx runner required")
	}
	if deps.Carts == nil {
		return nil, fmt.Errorf("cart repository required")
	}
	if deps.Ledger == nil {
		return nil, fmt.Errorf("inventory ledger required")
	}
	if deps.Coupons == nil {
		return nil, fmt.Errorf("coupon engine required")
	}
	if deps.Pricing == nil {
		return nil, fmt.Errorf("pricing calculator required")
	}
	if deps.Orders == nil {
		return nil, fmt.Errorf("orders repository required")
	}
	if deps.Outbox == nil {
		return nil, fmt.Errorf("outbox publisher required")
	}
	if deps.Logger == nil {
		deps.Logger = logger.Nop()
	}
	if deps.Numbers == nil {
		deps.Numbers = NewNumberGenerator()
	}
	if deps.NumberAttempts <= 0 {
		deps.NumberAttempts = orderNumberAttempts
	}
	return &service{
		tx:       deps.Tx,
		carts:    deps.Carts,
		ledger:   deps.Ledger,
		coupons:  deps.Coupons,
		pricing:  deps.Pricing,
		orders:   deps.Orders,
		outbox:   deps.Outbox,
		logg:     deps.Logger,
		recorder: deps.Recorder,
		numbers:  deps.Numbers,
		attempts: deps.NumberAttempts,
		now:      time.Now,
	}, nil
}

func (s *service) PlaceOrder(ctx context.Context, input PlaceOrderInput) (*Result, error) {
	result, err := s.placeOrder(ctx, input)
	if err != nil {
		err = pkgerrors.WrapUnlessTyped(pkgerrors.CodeInternal, err, "place order")
		if s.recorder != nil {
			s.recorder.ObserveCheckoutFailure(string(pkgerrors.As(err).Code()))
		}
		return nil, err
	}

	if s.recorder != nil {
		s.recorder.ObserveOrderPlaced(result.Order.Total, string(result.CouponOutcome.Status))
	}
	logCtx := s.logg.WithOrderNumber(ctx, result.Order.OrderNumber)
	logCtx = s.logg.WithFields(logCtx, map[string]any{
		"user_id":        input.UserID.String(),
		"subtotal":       result.Order.Subtotal.String(),
		"discount":       result.Order.Discount.String(),
		"total":          result.Order.Total.String(),
		"coupon_outcome": result.CouponOutcome.Status,
		"coupon_reason":  result.CouponOutcome.Reason,
		"line_count":     len(result.Order.Lines),
	})
	s.logg.Info(logCtx, "checkout.order_placed")
	return result, nil
}

func (s *service) placeOrder(ctx context.Context, input PlaceOrderInput) (*Result, error) {
	if err := validateInput(input); err != nil {
		return nil, err
	}

	var result *Result
	err := s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		carts := s.carts.WithTx(tx)
		ledger := s.ledger.WithTx(tx)
		ordersRepo := s.orders.WithTx(tx)
		engine := s.coupons.WithTx(tx)

		record, err := carts.FindByOwner(ctx, cart.Owner{UserID: input.UserID})
		if err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load cart")
		}
		if record == nil || len(record.Items) == 0 {
			return pkgerrors.New(pkgerrors.CodeEmptyCart, "cart is empty")
		}

		shipping, err := address.Lookup(ctx, tx, input.ShippingAddressID, input.UserID)
		if err != nil {
			return err
		}
		billing := shipping
		if input.BillingAddressID != nil && *input.BillingAddressID != shipping.ID {
			if billing, err = address.Lookup(ctx, tx, *input.BillingAddressID, input.UserID); err != nil {
				return err
			}
		}

		productIDs := make([]uuid.UUID, 0, len(record.Items))
		for _, item := range record.Items {
			productIDs = append(productIDs, item.ProductID)
		}
		if err := ledger.LockForUpdate(ctx, productIDs); err != nil {
			return err
		}
		if err := checkStock(ctx, ledger, record.Items); err != nil {
			return err
		}

		subtotal := cart.Subtotal(record.Items)
		lines := make([]coupons.Line, 0, len(record.Items))
		for _, item := range record.Items {
			lines = append(lines, coupons.Line{ProductID: item.ProductID, Total: item.LineTotal()})
		}
		code := ""
		if input.CouponCode != nil {
			code = *input.CouponCode
		}
		outcome, coupon, err := engine.Apply(ctx, code, lines, input.UserID)
		if err != nil {
			return err
		}

		quote, err := s.pricing.WithTx(tx).Shipping(ctx, input.ShippingMethodID, subtotal)
		if err != nil {
			return err
		}
		totals := s.pricing.Price(subtotal, quote.Cost, outcome.Discount)

		order := &models.Order{
			UserID:            input.UserID,
			ShippingAddressID: shipping.ID,
			BillingAddressID:  billing.ID,
			PaymentMethod:     input.PaymentMethod,
			Status:            enums.OrderStatusPending,
			PaymentStatus:     enums.PaymentStatusPending,
			SubtotalCents:     totals.Subtotal,
			TaxCents:          totals.Tax,
			ShippingCostCents: totals.Shipping,
			DiscountCents:     totals.Discount,
			TotalCents:        totals.Total,
			Notes:             normalizeNotes(input.Notes),
		}
		if quote.Method != nil {
			order.ShippingMethodID = &quote.Method.ID
		}
		if coupon != nil {
			order.CouponID = &coupon.ID
		}
		if err := s.createWithNumber(ctx, tx, ordersRepo, order); err != nil {
			return err
		}

		orderLines := make([]models.OrderLine, 0, len(record.Items))
		for i, item := range record.Items {
			orderLines = append(orderLines, freezeLine(order.ID, i+1, item))
		}
		if err := ordersRepo.CreateLines(ctx, orderLines); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "create order lines")
		}
		for _, line := range orderLines {
			if err := ledger.Decrement(ctx, line.ProductID, line.Quantity); err != nil {
				return withProductName(err, line)
			}
		}

		if err := carts.ClearItems(ctx, record.ID); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "clear cart")
		}
		if coupon != nil && outcome.IsApplied() {
			if err := engine.RecordUsage(ctx, coupon.ID, input.UserID, order.ID); err != nil {
				return err
			}
		}

		if err := s.emitOrderPlaced(ctx, tx, order, orderLines, outcome); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "emit order placed event")
		}

		loaded, err := ordersRepo.FindByID(ctx, order.ID)
		if err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "reload order")
		}
		result = &Result{Order: orders.FromModel(loaded), CouponOutcome: outcome}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return result, nil
}

// createWithNumber allocates a fresh order number and inserts order. A number that
// already exists, or loses the race on the unique index, is regenerated.
func (s *service) createWithNumber(ctx context.Context, tx *gorm.DB, repo orders.Repository, order *models.Order) error {
	for attempt := 0; attempt < s.attempts; attempt++ {
		number, err := s.numbers.Next()
		if err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "generate order number")
		}
		exists, err := repo.ExistsByOrderNumber(ctx, number)
		if err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "check order number")
		}
		if exists {
			continue
		}

		order.OrderNumber = number
		if err := tx.SavePoint(savepointOrderNumber).Error; err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "create savepoint")
		}
		err = repo.Create(ctx, order)
		if err == nil {
			return nil
		}
		if !dbpkg.IsUniqueViolation(err, "") {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "create order")
		}
		if rbErr := tx.RollbackTo(savepointOrderNumber).Error; rbErr != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, rbErr, "rollback to savepoint")
		}
		order.ID = uuid.Nil
	}
	return pkgerrors.New(pkgerrors.CodeInternal, "could not allocate a unique order number").
		WithDetails(map[string]any{"attempts": s.attempts})
}

func (s *service) emitOrderPlaced(ctx context.Context, tx *gorm.DB, order *models.Order, lines []models.OrderLine, outcome coupons.Outcome) error {
	eventLines := make([]payloads.OrderLine, 0, len(lines))
	for _, line := range lines {
		eventLines = append(eventLines, payloads.OrderLine{
			ProductID: line.ProductID,
			VariantID: line.VariantID,
			SKU:       line.ProductSKU,
			Quantity:  line.Quantity,
			UnitPrice: line.UnitPriceCents,
		})
	}
	var couponCode *string
	if outcome.IsApplied() {
		code := outcome.Code
		couponCode = &code
	}
	return s.outbox.Emit(ctx, tx, outbox.DomainEvent{
		EventType:     enums.EventOrderPlaced,
		AggregateType: enums.AggregateOrder,
		AggregateID:   order.ID,
		Actor:         &outbox.ActorRef{UserID: order.UserID, Role: string(enums.UserRoleCustomer)},
		Data: payloads.OrderPlacedEvent{
			OrderID:       order.ID,
			OrderNumber:   order.OrderNumber,
			UserID:        order.UserID,
			PaymentMethod: order.PaymentMethod,
			Subtotal:      order.SubtotalCents,
			Tax:           order.TaxCents,
			ShippingCost:  order.ShippingCostCents,
			Discount:      order.DiscountCents,
			Total:         order.TotalCents,
			CouponCode:    couponCode,
			Lines:         eventLines,
			PlacedAt:      s.now().UTC(),
		},
	})
}

func validateInput(input PlaceOrderInput) error {
	if input.UserID == uuid.Nil {
		return pkgerrors.New(pkgerrors.CodeUnauthorized, "user required")
	}
	if input.ShippingAddressID == uuid.Nil {
		return pkgerrors.New(pkgerrors.CodeValidation, "shipping address required")
	}
	if !input.PaymentMethod.IsValid() {
		return pkgerrors.New(pkgerrors.CodeValidation, "invalid payment method").
			WithDetails(map[string]any{"payment_method": input.PaymentMethod})
	}
	return nil
}

// checkStock fails on the first line, in cart order, whose product cannot cover it.
func checkStock(ctx context.Context, ledger inventory.Ledger, items []models.CartItem) error {
	for _, item := range items {
		if item.Product == nil {
			return pkgerrors.New(pkgerrors.CodeNotFound, "product no longer available").
				WithDetails(map[string]any{"product_id": item.ProductID})
		}
		ok, err := ledger.CheckAvailable(ctx, item.ProductID, item.Quantity)
		if err != nil {
			return err
		}
		if ok {
			continue
		}
		available, err := ledger.Available(ctx, item.ProductID)
		if err != nil {
			return err
		}
		return inventory.InsufficientStock(item.ProductID, item.Product.Name, item.Quantity, available)
	}
	return nil
}

func freezeLine(orderID uuid.UUID, number int, item models.CartItem) models.OrderLine {
	line := models.OrderLine{
		OrderID:        orderID,
		LineNumber:     number,
		ProductID:      item.ProductID,
		VariantID:      item.VariantID,
		Quantity:       item.Quantity,
		UnitPriceCents: item.UnitPriceCents,
		LineTotalCents: item.LineTotal(),
	}
	if item.Product != nil {
		line.ProductName = item.Product.Name
		line.ProductSKU = item.Product.SKU
	}
	if item.Variant != nil {
		line.ProductSKU = item.Variant.SKU
		if len(item.Variant.Attributes) > 0 {
			line.VariantAttributes = item.Variant.Attributes
		}
	}
	return line
}

func normalizeNotes(notes *string) *string {
	if notes == nil {
		return nil
	}
	trimmed := strings.TrimSpace(*notes)
	if trimmed == "" {
		return nil
	}
	return &trimmed
}

// withProductName rebuilds an InsufficientStock error raised by the ledger, which
// only knows product ids, so the response names the product.
func withProductName(err error, line models.OrderLine) error {
	typed := pkgerrors.As(err)
	if typed == nil || typed.Code() != pkgerrors.CodeInsufficientStock {
		return err
	}
	available := 0
	if details, ok := typed.Details().(map[string]any); ok {
		if v, ok := details["available"].(int); ok {
			available = v
		}
	}
	return inventory.InsufficientStock(line.ProductID, line.ProductName, line.Quantity, available)
}
