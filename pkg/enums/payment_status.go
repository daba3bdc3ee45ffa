package enums

import "slices"

// PaymentStatus maps to orders.payment_status.
type PaymentStatus string

const (
	PaymentStatusPending  PaymentStatus = "pending"
	PaymentStatusPaid     PaymentStatus = "paid"
	PaymentStatusFailed   PaymentStatus = "failed"
	PaymentStatusRefunded PaymentStatus = "refunded"
)

var paymentStatuses = []PaymentStatus{
	PaymentStatusPending,
	PaymentStatusPaid,
	PaymentStatusFailed,
	PaymentStatusRefunded,
}

func (p PaymentStatus) IsValid() bool {
	return slices.Contains(paymentStatuses, p)
}

// Settled reports whether money has moved for the order.
func (p PaymentStatus) Settled() bool {
	return p == PaymentStatusPaid || p == PaymentStatusRefunded
}

func ParsePaymentStatus(value string) (PaymentStatus, error) {
	return parse("payment status", paymentStatuses, value)
}
