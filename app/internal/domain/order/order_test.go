package order

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"

	domcart "example.com/storefront/app/internal/domain/cart"
)

func TestFromPayload(t *testing.T) {
	payload := domcart.Payload{
		Lines: []domcart.PayloadLine{
			{ID: 1, Name: "Latte", UnitPrice: decimal.RequireFromString("4.50"), Quantity: 2},
			{ID: 9, Name: "Barista class", UnitPrice: decimal.RequireFromString("30.00"), Quantity: 1},
		},
		Total: decimal.RequireFromString("39.00"),
	}

	o := FromPayload("ref-1", payload)

	require.Equal(t, "ref-1", o.Reference)
	require.Equal(t, StatusPending, o.Status)
	require.True(t, o.TotalAmount.Equal(payload.Total))
	require.Len(t, o.Items, 2)
	require.Equal(t, int64(9), o.Items[1].CatalogID)
	require.Equal(t, "Barista class", o.Items[1].Name)
	require.True(t, o.Items[0].Subtotal().Equal(decimal.RequireFromString("9.00")))
}

func TestStatus_IsValid(t *testing.T) {
	for _, s := range []Status{StatusPending, StatusPaid, StatusShipped, StatusCanceled} {
		require.True(t, s.IsValid(), s)
	}
	for _, s := range []Status{"", "pending", "REFUNDED"} {
		require.False(t, s.IsValid(), s)
	}
}

func TestStatus_CanTransitionTo(t *testing.T) {
	tests := []struct {
		from Status
		to   Status
		ok   bool
	}{
		{StatusPending, StatusPaid, true},
		{StatusPending, StatusCanceled, true},
		{StatusPending, StatusShipped, false},
		{StatusPaid, StatusShipped, true},
		{StatusPaid, StatusCanceled, true},
		{StatusPaid, StatusPending, false},
		{StatusShipped, StatusCanceled, false},
		{StatusCanceled, StatusPaid, false},
		{StatusPending, StatusPending, false},
	}

	for _, tt := range tests {
		t.Run(string(tt.from)+"->"+string(tt.to), func(t *testing.T) {
			require.Equal(t, tt.ok, tt.from.CanTransitionTo(tt.to))
		})
	}
}
