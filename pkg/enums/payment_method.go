package enums

import "slices"

// PaymentMethod is chosen by the buyer at checkout. Collection happens
// outside this service.
type PaymentMethod string

const (
	PaymentMethodStripe         PaymentMethod = "stripe"
	PaymentMethodPayPal         PaymentMethod = "paypal"
	PaymentMethodCashOnDelivery PaymentMethod = "cash_on_delivery"
)

var paymentMethods = []PaymentMethod{
	PaymentMethodStripe,
	PaymentMethodPayPal,
	PaymentMethodCashOnDelivery,
}

func (p PaymentMethod) IsValid() bool {
	return slices.Contains(paymentMethods, p)
}

func ParsePaymentMethod(value string) (PaymentMethod, error) {
	return parse("payment method", paymentMethods, value)
}
