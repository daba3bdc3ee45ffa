package enums

import "slices"

// OrderStatus maps to orders.status.
type OrderStatus string

const (
	OrderStatusPending    OrderStatus = "pending"
	OrderStatusProcessing OrderStatus = "processing"
	OrderStatusShipped    OrderStatus = "shipped"
	OrderStatusDelivered  OrderStatus = "delivered"
	OrderStatusCancelled  OrderStatus = "cancelled"
	OrderStatusRefunded   OrderStatus = "refunded"
)

var validOrderStatuses = []OrderStatus{
	OrderStatusPending,
	OrderStatusProcessing,
	OrderStatusShipped,
	OrderStatusDelivered,
	OrderStatusCancelled,
	OrderStatusRefunded,
}

func (s OrderStatus) IsValid() bool {
	return slices.Contains(validOrderStatuses, s)
}

// IsTerminal reports whether no further lifecycle transition is allowed.
func (s OrderStatus) IsTerminal() bool {
	return s == OrderStatusCancelled || s == OrderStatusRefunded
}

func ParseOrderStatus(value string) (OrderStatus, error) {
	return parse("order status", validOrderStatuses, value)
}
