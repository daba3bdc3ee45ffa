package outbox

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/angelmondragon/storefront-backend/pkg/db/models"
	"github.com/angelmondragon/storefront-backend/pkg/enums"
)

// DeadLetters stores outbox rows the publisher gave up on, keyed by the
// original outbox row id.
type DeadLetters struct {
	db *gorm.DB
}

func NewDeadLetters(db *gorm.DB) *DeadLetters {
	return &DeadLetters{db: db}
}

// ParkTx copies event into outbox_dlq inside tx. The caller marks the source
// row terminal in the same transaction.
func (d *DeadLetters) ParkTx(tx *gorm.DB, event models.OutboxEvent, reason enums.OutboxDLQErrorReason, cause error) error {
	if tx == nil {
		return errors.New("transaction required")
	}
	entry := models.OutboxDLQ{
		EventID:       event.ID,
		EventType:     event.EventType,
		AggregateType: event.AggregateType,
		AggregateID:   event.AggregateID,
		Payload:       event.Payload,
		ErrorReason:   reason,
		AttemptCount:  event.AttemptCount,
		FailedAt:      time.Now().UTC(),
	}
	if cause != nil {
		msg := truncateError(cause)
		entry.ErrorMessage = &msg
	}
	return tx.Create(&entry).Error
}

// FindByEventID returns nil, nil when the row never reached the dead-letter table.
func (d *DeadLetters) FindByEventID(ctx context.Context, eventID uuid.UUID) (*models.OutboxDLQ, error) {
	var entry models.OutboxDLQ
	err := d.db.WithContext(ctx).Where("event_id = ?", eventID).Take(&entry).Error
	switch {
	case errors.Is(err, gorm.ErrRecordNotFound):
		return nil, nil
	case err != nil:
		return nil, err
	}
	return &entry, nil
}

// CountByReason reports how many rows were parked for reason.
func (d *DeadLetters) CountByReason(ctx context.Context, reason enums.OutboxDLQErrorReason) (int64, error) {
	var n int64
	err := d.db.WithContext(ctx).Model(&models.OutboxDLQ{}).Where("error_reason = ?", reason).Count(&n).Error
	return n, err
}
