package catalog

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSeverityOrdering(t *testing.T) {
	for i := 1; i < len(Severities); i++ {
		require.True(t, Severities[i].AtLeast(Severities[i-1]))
		require.False(t, Severities[i-1].AtLeast(Severities[i]))
	}
	_, err := ParseSeverity("urgent")
	require.Error(t, err)
	s, err := ParseSeverity("high")
	require.NoError(t, err)
	require.Equal(t, SeverityHigh, s)
}

func TestOrderTransitions(t *testing.T) {
	cases := []struct {
		from, to OrderStatus
		ok       bool
	}{
		{OrderPending, OrderReceived, true},
		{OrderPending, OrderPartial, true},
		{OrderPending, OrderDelayed, true},
		{OrderPending, OrderCancelled, true},
		{OrderPartial, OrderReceived, true},
		{OrderDelayed, OrderPartial, true},
		{OrderReceived, OrderPending, false},
		{OrderCancelled, OrderReceived, false},
		{OrderPending, OrderPending, false},
		{OrderPartial, OrderDelayed, false},
	}
	for _, tc := range cases {
		assert.Equal(t, tc.ok, CanTransitionOrder(tc.from, tc.to), "%s -> %s", tc.from, tc.to)
	}
	assert.True(t, OrderReceived.Terminal())
	assert.True(t, OrderCancelled.Terminal())
	assert.False(t, OrderPending.Terminal())
}

func TestTransitionOrderCopies(t *testing.T) {
	po := PurchaseOrder{OrderNumber: "PO-1", Status: OrderPending, Items: []PurchaseOrderItem{{MedicineID: "m1", Quantity: 2}}}
	next, err := TransitionOrder(po, OrderReceived)
	require.NoError(t, err)
	require.Equal(t, OrderReceived, next.Status)
	require.Equal(t, OrderPending, po.Status)
	next.Items[0].ReceivedQuantity = 2
	require.Zero(t, po.Items[0].ReceivedQuantity)

	_, err = TransitionOrder(next, OrderPending)
	require.ErrorIs(t, err, ErrInvalidTransition)
}

func TestSaleTransitions(t *testing.T) {
	sale := Sale{SaleNumber: "S-1", Status: SalePending}
	done, err := TransitionSale(sale, SaleCompleted)
	require.NoError(t, err)
	require.Equal(t, SaleCompleted, done.Status)

	_, err = TransitionSale(done, SaleCancelled)
	require.ErrorIs(t, err, ErrInvalidTransition)
	require.True(t, SaleCancelled.Terminal())
}

func TestRecordValidation(t *testing.T) {
	now := time.Date(2025, 3, 1, 0, 0, 0, 0, time.UTC)

	require.ErrorIs(t, Medicine{Name: "X", SellingPrice: decimal.NewFromInt(-1)}.Validate(), ErrInvalidRecord)
	require.NoError(t, Medicine{Name: "X", UnitCost: decimal.NewFromInt(1), SellingPrice: decimal.NewFromInt(2)}.Validate())

	batch := Batch{MedicineID: "m1", BatchNumber: "B1", Quantity: 10, InitialQuantity: 5, ManufactureDate: now, ExpiryDate: now.AddDate(1, 0, 0)}
	require.ErrorIs(t, batch.Validate(), ErrInvalidRecord)
	batch.InitialQuantity = 10
	require.NoError(t, batch.Validate())
	batch.ExpiryDate = now.AddDate(0, 0, -1)
	require.ErrorIs(t, batch.Validate(), ErrInvalidRecord)

	require.ErrorIs(t, Supplier{Name: "Acme", Rating: 5.5}.Validate(), ErrInvalidRecord)

	sale := Sale{
		SaleNumber:    "S-1",
		Status:        SaleCompleted,
		PaymentMethod: PaymentCash,
		TotalAmount:   decimal.NewFromInt(100),
		Discount:      decimal.NewFromInt(20),
		FinalAmount:   decimal.NewFromInt(80),
	}
	require.NoError(t, sale.Validate())
	sale.FinalAmount = decimal.NewFromInt(100)
	require.ErrorIs(t, sale.Validate(), ErrInvalidRecord)

	// Discount above the total would leave a negative final amount.
	sale.Discount = decimal.NewFromInt(120)
	sale.FinalAmount = decimal.NewFromInt(-20)
	require.ErrorIs(t, sale.Validate(), ErrInvalidRecord)
	sale.Discount = decimal.NewFromInt(100)
	sale.FinalAmount = decimal.Zero
	require.NoError(t, sale.Validate())

	po := PurchaseOrder{OrderNumber: "PO-1", Status: OrderPending, Items: []PurchaseOrderItem{{MedicineID: "m1", Quantity: 5, ReceivedQuantity: 6}}}
	require.ErrorIs(t, po.Validate(), ErrInvalidRecord)
}
