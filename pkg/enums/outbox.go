package enums

import "slices"

// OutboxAggregateType maps to outbox_events.aggregate_type.
type OutboxAggregateType string

const (
	AggregateOrder OutboxAggregateType = "order"
)

var validAggregateTypes = []OutboxAggregateType{
	AggregateOrder,
}

// IsValid reports whether the value is a known aggregate type.
func (a OutboxAggregateType) IsValid() bool {
	return slices.Contains(validAggregateTypes, a)
}

// OutboxEventType maps to outbox_events.event_type.
type OutboxEventType string

const (
	EventOrderPlaced    OutboxEventType = "order_placed"
	EventOrderPaid      OutboxEventType = "order_paid"
	EventOrderShipped   OutboxEventType = "order_shipped"
	EventOrderDelivered OutboxEventType = "order_delivered"
	EventOrderCancelled OutboxEventType = "order_cancelled"
	EventOrderRefunded  OutboxEventType = "order_refunded"
)

var validOutboxEventTypes = []OutboxEventType{
	EventOrderPlaced,
	EventOrderPaid,
	EventOrderShipped,
	EventOrderDelivered,
	EventOrderCancelled,
	EventOrderRefunded,
}

// IsValid reports whether the value is a known event type.
func (e OutboxEventType) IsValid() bool {
	return slices.Contains(validOutboxEventTypes, e)
}

// ParseOutboxEventType converts raw input into OutboxEventType.
func ParseOutboxEventType(value string) (OutboxEventType, error) {
	return parse("event type", validOutboxEventTypes, value)
}

type OutboxDLQErrorReason string

const (
	OutboxDLQReasonMaxAttempts  OutboxDLQErrorReason = "max_attempts"
	OutboxDLQReasonNonRetryable OutboxDLQErrorReason = "non_retryable"
)
