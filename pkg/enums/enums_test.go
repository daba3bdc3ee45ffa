package enums

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestParseOrderStatus(t *testing.T) {
	status, err := ParseOrderStatus("shipped")
	require.NoError(t, err)
	require.Equal(t, OrderStatusShipped, status)

	_, err = ParseOrderStatus("lost")
	require.Error(t, err)

	require.True(t, OrderStatusCancelled.IsTerminal())
	require.False(t, OrderStatusDelivered.IsTerminal())
}

func TestParsePaymentMethod(t *testing.T) {
	for _, raw := range []string{"stripe", "paypal", "cash_on_delivery"} {
		method, err := ParsePaymentMethod(raw)
		require.NoError(t, err)
		require.True(t, method.IsValid())
	}
	_, err := ParsePaymentMethod("barter")
	require.Error(t, err)
}

func TestCouponRejectionMessages(t *testing.T) {
	require.Equal(t, "coupon code not found", CouponRejectionNotFound.Message())
	require.Equal(t, "coupon is not valid", CouponRejectionReason("OTHER").Message())
}

func TestParseUserRoleNormalizes(t *testing.T) {
	role, err := ParseUserRole(" Admin ")
	require.NoError(t, err)
	require.Equal(t, UserRoleAdmin, role)
	_, err = ParseUserRole("vendor")
	require.Error(t, err)
}

func TestParsePaymentStatus(t *testing.T) {
	status, err := ParsePaymentStatus(" PAID ")
	require.NoError(t, err)
	require.Equal(t, PaymentStatusPaid, status)
	require.True(t, status.Settled())
	require.False(t, PaymentStatusPending.Settled())
	require.False(t, PaymentStatus("PAID").IsValid())

	_, err = ParsePaymentStatus("chargeback")
	require.ErrorContains(t, err, "invalid payment status")
}
