package orders

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.uber.org/multierr"
	"gorm.io/gorm"

	"github.com/angelmondragon/storefront-backend/internal/inventory"
	"github.com/angelmondragon/storefront-backend/pkg/db/models"
	"github.com/angelmondragon/storefront-backend/pkg/enums"
	pkgerrors "github.com/angelmondragon/storefront-backend/pkg/errors"
	"github.com/angelmondragon/storefront-backend/pkg/logger"
	"github.com/angelmondragon/storefront-backend/pkg/outbox"
	"github.com/angelmondragon/storefront-backend/pkg/outbox/payloads"
	"github.com/angelmondragon/storefront-backend/pkg/pagination"
)

const (
	ReasonCustomerRequest = "customer_request"
	ReasonAdmin           = "admin"
	ReasonPaymentTimeout  = "payment_timeout"
)

type txRunner interface {
	WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error
}

// TransitionRecorder observes successful status changes.
type TransitionRecorder interface {
	RecordTransition(from, to string)
}

// Service is the order state machine plus owner-scoped reads.
type Service interface {
	Get(ctx context.Context, orderID, userID uuid.UUID) (*OrderDTO, error)
	List(ctx context.Context, userID uuid.UUID, params pagination.Params) (*OrderList, error)
	Track(ctx context.Context, orderNumber string) (*TrackingView, error)
	MarkPaid(ctx context.Context, orderID uuid.UUID) (*OrderDTO, error)
	MarkShipped(ctx context.Context, orderID uuid.UUID, trackingNumber *string) (*OrderDTO, error)
	MarkDelivered(ctx context.Context, orderID uuid.UUID) (*OrderDTO, error)
	Cancel(ctx context.Context, orderID, userID uuid.UUID) (*OrderDTO, error)
	UpdateStatus(ctx context.Context, orderID uuid.UUID, status enums.OrderStatus, trackingNumber *string) (*OrderDTO, error)
	ExpireStalePending(ctx context.Context, cutoff time.Time, limit int) (int, error)
}

type service struct {
	repo     Repository
	tx       txRunner
	ledger   inventory.Ledger
	outbox   outbox.Emitter
	logg     *logger.Logger
	recorder TransitionRecorder
	now      func() time.Time
}

// NewService builds the order service. recorder may be nil.
func NewService(repo Repository, tx txRunner, ledger inventory.Ledger, emitter outbox.Emitter, logg *logger.Logger, recorder TransitionRecorder) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("orders repository required")
	}
	if tx == nil {
		return nil, fmt.Errorf("transaction runner required")
	}
	if ledger == nil {
		return nil, fmt.Errorf("inventory ledger required")
	}
	if emitter == nil {
		return nil, fmt.Errorf("outbox emitter required")
	}
	if logg == nil {
		logg = logger.Nop()
	}
	return &service{
		repo:     repo,
		tx:       tx,
		ledger:   ledger,
		outbox:   emitter,
		logg:     logg,
		recorder: recorder,
		now:      time.Now,
	}, nil
}

// Get returns NOT_FOUND for orders owned by someone else.
func (s *service) Get(ctx context.Context, orderID, userID uuid.UUID) (*OrderDTO, error) {
	order, err := s.repo.FindByID(ctx, orderID)
	if err != nil {
		return nil, orderLookupError(err, orderID)
	}
	if order.UserID != userID {
		return nil, orderNotFound(orderID)
	}
	return FromModel(order), nil
}

func (s *service) List(ctx context.Context, userID uuid.UUID, params pagination.Params) (*OrderList, error) {
	if _, err := pagination.ParseCursor(params.Cursor); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid cursor")
	}
	page, err := s.repo.ListByUser(ctx, userID, params)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list orders")
	}
	out := &OrderList{Items: make([]OrderDTO, 0, len(page.Items)), NextCursor: page.NextCursor}
	for i := range page.Items {
		out.Items = append(out.Items, *FromModel(&page.Items[i]))
	}
	return out, nil
}

func (s *service) Track(ctx context.Context, orderNumber string) (*TrackingView, error) {
	order, err := s.repo.FindByNumber(ctx, orderNumber)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "order not found").
				WithDetails(map[string]any{"order_number": orderNumber})
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load order")
	}
	return trackingFromModel(order), nil
}

// MarkPaid moves a pending order to processing and records the payment.
func (s *service) MarkPaid(ctx context.Context, orderID uuid.UUID) (*OrderDTO, error) {
	return s.apply(ctx, orderID, func(ctx context.Context, tx *gorm.DB, repo Repository, order *models.Order) (*change, error) {
		if order.Status != enums.OrderStatusPending || order.PaymentStatus.Settled() {
			return nil, stateConflict(order, enums.OrderStatusProcessing)
		}
		return &change{
			from:      []enums.OrderStatus{enums.OrderStatusPending},
			to:        enums.OrderStatusProcessing,
			payment:   enums.PaymentStatusPaid,
			eventType: enums.EventOrderPaid,
			updates: map[string]any{
				"status":         enums.OrderStatusProcessing,
				"payment_status": enums.PaymentStatusPaid,
			},
		}, nil
	})
}

// MarkShipped is a no-op for orders that are already shipped.
func (s *service) MarkShipped(ctx context.Context, orderID uuid.UUID, trackingNumber *string) (*OrderDTO, error) {
	return s.apply(ctx, orderID, func(ctx context.Context, tx *gorm.DB, repo Repository, order *models.Order) (*change, error) {
		switch order.Status {
		case enums.OrderStatusShipped:
			return nil, nil
		case enums.OrderStatusPending, enums.OrderStatusProcessing:
		default:
			return nil, stateConflict(order, enums.OrderStatusShipped)
		}
		updates := map[string]any{"status": enums.OrderStatusShipped}
		if order.ShippedAt == nil {
			updates["shipped_at"] = s.now().UTC()
		}
		if trackingNumber != nil && *trackingNumber != "" {
			updates["tracking_number"] = *trackingNumber
		}
		return &change{
			from:      []enums.OrderStatus{enums.OrderStatusPending, enums.OrderStatusProcessing},
			to:        enums.OrderStatusShipped,
			eventType: enums.EventOrderShipped,
			updates:   updates,
			tracking:  trackingNumber,
		}, nil
	})
}

// MarkDelivered is a no-op for orders that are already delivered.
func (s *service) MarkDelivered(ctx context.Context, orderID uuid.UUID) (*OrderDTO, error) {
	return s.apply(ctx, orderID, func(ctx context.Context, tx *gorm.DB, repo Repository, order *models.Order) (*change, error) {
		switch order.Status {
		case enums.OrderStatusDelivered:
			return nil, nil
		case enums.OrderStatusShipped:
		default:
			return nil, stateConflict(order, enums.OrderStatusDelivered)
		}
		updates := map[string]any{"status": enums.OrderStatusDelivered}
		if order.DeliveredAt == nil {
			updates["delivered_at"] = s.now().UTC()
		}
		return &change{
			from:      []enums.OrderStatus{enums.OrderStatusShipped},
			to:        enums.OrderStatusDelivered,
			eventType: enums.EventOrderDelivered,
			updates:   updates,
		}, nil
	})
}

// Cancel cancels the caller's own pending or processing order and restocks every line.
func (s *service) Cancel(ctx context.Context, orderID, userID uuid.UUID) (*OrderDTO, error) {
	if userID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeUnauthorized, "user required")
	}
	return s.cancel(ctx, orderID, &userID, ReasonCustomerRequest)
}

func (s *service) cancel(ctx context.Context, orderID uuid.UUID, ownerID *uuid.UUID, reason string) (*OrderDTO, error) {
	return s.apply(ctx, orderID, func(ctx context.Context, tx *gorm.DB, repo Repository, order *models.Order) (*change, error) {
		if ownerID != nil && order.UserID != *ownerID {
			return nil, orderNotFound(orderID)
		}
		if order.Status != enums.OrderStatusPending && order.Status != enums.OrderStatusProcessing {
			return nil, pkgerrors.New(pkgerrors.CodeNotCancellable, fmt.Sprintf("order in status %s cannot be cancelled", order.Status)).
				WithDetails(map[string]any{"order_number": order.OrderNumber, "status": order.Status})
		}
		return &change{
			from:      []enums.OrderStatus{enums.OrderStatusPending, enums.OrderStatusProcessing},
			to:        enums.OrderStatusCancelled,
			eventType: enums.EventOrderCancelled,
			reason:    reason,
			actor:     ownerID,
			updates: map[string]any{
				"status":       enums.OrderStatusCancelled,
				"cancelled_at": s.now().UTC(),
			},
			after: func() error {
				ledger := s.ledger.WithTx(tx)
				for _, line := range order.Lines {
					if err := ledger.Increment(ctx, line.ProductID, line.Quantity); err != nil {
						return err
					}
				}
				return nil
			},
		}, nil
	})
}

func (s *service) refund(ctx context.Context, orderID uuid.UUID) (*OrderDTO, error) {
	return s.apply(ctx, orderID, func(ctx context.Context, tx *gorm.DB, repo Repository, order *models.Order) (*change, error) {
		switch order.Status {
		case enums.OrderStatusRefunded:
			return nil, nil
		case enums.OrderStatusDelivered:
		default:
			return nil, stateConflict(order, enums.OrderStatusRefunded)
		}
		return &change{
			from:      []enums.OrderStatus{enums.OrderStatusDelivered},
			to:        enums.OrderStatusRefunded,
			payment:   enums.PaymentStatusRefunded,
			eventType: enums.EventOrderRefunded,
			updates: map[string]any{
				"status":         enums.OrderStatusRefunded,
				"payment_status": enums.PaymentStatusRefunded,
			},
		}, nil
	})
}

// UpdateStatus is the admin entry point; it routes to the matching transition.
func (s *service) UpdateStatus(ctx context.Context, orderID uuid.UUID, status enums.OrderStatus, trackingNumber *string) (*OrderDTO, error) {
	switch status {
	case enums.OrderStatusProcessing:
		return s.MarkPaid(ctx, orderID)
	case enums.OrderStatusShipped:
		return s.MarkShipped(ctx, orderID, trackingNumber)
	case enums.OrderStatusDelivered:
		return s.MarkDelivered(ctx, orderID)
	case enums.OrderStatusCancelled:
		return s.cancel(ctx, orderID, nil, ReasonAdmin)
	case enums.OrderStatusRefunded:
		return s.refund(ctx, orderID)
	case enums.OrderStatusPending:
		return s.apply(ctx, orderID, func(ctx context.Context, tx *gorm.DB, repo Repository, order *models.Order) (*change, error) {
			if order.Status == enums.OrderStatusPending {
				return nil, nil
			}
			return nil, stateConflict(order, enums.OrderStatusPending)
		})
	default:
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "unknown order status").
			WithDetails(map[string]any{"status": status})
	}
}

// ExpireStalePending cancels unpaid pending orders created before cutoff and
// returns how many were cancelled. Orders that moved on concurrently are skipped.
func (s *service) ExpireStalePending(ctx context.Context, cutoff time.Time, limit int) (int, error) {
	if limit <= 0 {
		limit = 100
	}
	stale, err := s.repo.ListStalePending(ctx, cutoff, limit)
	if err != nil {
		return 0, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list stale orders")
	}

	var errs error
	expired := 0
	for _, order := range stale {
		_, err := s.cancel(ctx, order.ID, nil, ReasonPaymentTimeout)
		switch {
		case err == nil:
			expired++
		case pkgerrors.HasCode(err, pkgerrors.CodeNotCancellable), pkgerrors.HasCode(err, pkgerrors.CodeStateConflict):
		default:
			errs = multierr.Append(errs, fmt.Errorf("expire %s: %w", order.OrderNumber, err))
		}
	}
	return expired, errs
}

type change struct {
	from      []enums.OrderStatus
	to        enums.OrderStatus
	payment   enums.PaymentStatus
	eventType enums.OutboxEventType
	updates   map[string]any
	tracking  *string
	reason    string
	actor     *uuid.UUID
	after     func() error
}

type transitionFunc func(ctx context.Context, tx *gorm.DB, repo Repository, order *models.Order) (*change, error)

// apply locks the order, asks fn for the change, and writes it with its outbox event
// in one transaction. A nil change means the order is already in the target state.
func (s *service) apply(ctx context.Context, orderID uuid.UUID, fn transitionFunc) (*OrderDTO, error) {
	var (
		from    enums.OrderStatus
		applied *change
	)
	err := s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)
		order, err := repo.LockByID(ctx, orderID)
		if err != nil {
			return orderLookupError(err, orderID)
		}
		c, err := fn(ctx, tx, repo, order)
		if err != nil || c == nil {
			return err
		}

		ok, err := repo.Transition(ctx, order.ID, c.from, c.updates)
		if err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "update order status")
		}
		if !ok {
			return pkgerrors.New(pkgerrors.CodeStateConflict, "order changed concurrently").
				WithDetails(map[string]any{"order_number": order.OrderNumber})
		}
		if c.after != nil {
			if err := c.after(); err != nil {
				return pkgerrors.WrapUnlessTyped(pkgerrors.CodeDependency, err, "apply transition side effects")
			}
		}

		payment := order.PaymentStatus
		if c.payment != "" {
			payment = c.payment
		}
		tracking := order.TrackingNumber
		if c.tracking != nil && *c.tracking != "" {
			tracking = c.tracking
		}
		var actor *outbox.ActorRef
		if c.actor != nil {
			actor = &outbox.ActorRef{UserID: *c.actor, Role: string(enums.UserRoleCustomer)}
		}
		if err := s.outbox.Emit(ctx, tx, outbox.DomainEvent{
			EventType:     c.eventType,
			AggregateType: enums.AggregateOrder,
			AggregateID:   order.ID,
			Actor:         actor,
			Data: payloads.OrderStatusChangedEvent{
				OrderID:        order.ID,
				OrderNumber:    order.OrderNumber,
				UserID:         order.UserID,
				From:           order.Status,
				To:             c.to,
				PaymentStatus:  payment,
				TrackingNumber: tracking,
				Reason:         c.reason,
				ChangedAt:      s.now().UTC(),
			},
		}); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "emit order event")
		}

		from = order.Status
		applied = c
		return nil
	})
	if err != nil {
		return nil, err
	}

	if applied != nil {
		if s.recorder != nil {
			s.recorder.RecordTransition(string(from), string(applied.to))
		}
		s.logg.Info(s.logg.WithFields(ctx, map[string]any{
			"order_id": orderID.String(),
			"from":     from,
			"to":       applied.to,
		}), "order.status_changed")
	}

	order, err := s.repo.FindByID(ctx, orderID)
	if err != nil {
		return nil, orderLookupError(err, orderID)
	}
	return FromModel(order), nil
}

func stateConflict(order *models.Order, target enums.OrderStatus) error {
	return pkgerrors.New(pkgerrors.CodeStateConflict, fmt.Sprintf("cannot move order from %s to %s", order.Status, target)).
		WithDetails(map[string]any{"order_number": order.OrderNumber, "status": order.Status, "target": target})
}

func orderNotFound(orderID uuid.UUID) error {
	return pkgerrors.New(pkgerrors.CodeNotFound, "order not found").
		WithDetails(map[string]any{"order_id": orderID})
}

func orderLookupError(err error, orderID uuid.UUID) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return orderNotFound(orderID)
	}
	return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load order")
}
