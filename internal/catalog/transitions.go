package catalog

import "fmt"

// Order and sale statuses only move forward. Terminal states have no entry.
var (
	orderTransitions = map[OrderStatus][]OrderStatus{
		OrderPending: {OrderReceived, OrderPartial, OrderDelayed, OrderCancelled},
		OrderPartial: {OrderReceived, OrderCancelled},
		OrderDelayed: {OrderReceived, OrderPartial, OrderCancelled},
	}
	saleTransitions = map[SaleStatus][]SaleStatus{
		SalePending: {SaleCompleted, SaleCancelled},
	}
)

// Valid reports whether s is a known order status.
func (s OrderStatus) Valid() bool {
	switch s {
	case OrderPending, OrderReceived, OrderPartial, OrderDelayed, OrderCancelled:
		return true
	}
	return false
}

// Terminal reports whether no further transition is allowed from s.
func (s OrderStatus) Terminal() bool {
	_, ok := orderTransitions[s]
	return s.Valid() && !ok
}

// Valid reports whether s is a known sale status.
func (s SaleStatus) Valid() bool {
	switch s {
	case SaleCompleted, SalePending, SaleCancelled:
		return true
	}
	return false
}

// Terminal reports whether no further transition is allowed from s.
func (s SaleStatus) Terminal() bool {
	_, ok := saleTransitions[s]
	return s.Valid() && !ok
}

// CanTransitionOrder reports whether an order may move from one status to another.
func CanTransitionOrder(from, to OrderStatus) bool {
	for _, next := range orderTransitions[from] {
		if next == to {
			return true
		}
	}
	return false
}

// CanTransitionSale reports whether a sale may move from one status to another.
func CanTransitionSale(from, to SaleStatus) bool {
	for _, next := range saleTransitions[from] {
		if next == to {
			return true
		}
	}
	return false
}

// TransitionOrder returns a copy of po with the new status applied.
func TransitionOrder(po PurchaseOrder, to OrderStatus) (PurchaseOrder, error) {
	if !CanTransitionOrder(po.Status, to) {
		return PurchaseOrder{}, fmt.Errorf("%w: order %s %s -> %s", ErrInvalidTransition, po.OrderNumber, po.Status, to)
	}
	po.Status = to
	po.Items = append([]PurchaseOrderItem(nil), po.Items...)
	return po, nil
}

// TransitionSale returns a copy of sale with the new status applied.
func TransitionSale(sale Sale, to SaleStatus) (Sale, error) {
	if !CanTransitionSale(sale.Status, to) {
		return Sale{}, fmt.Errorf("%w: sale %s %s -> %s", ErrInvalidTransition, sale.SaleNumber, sale.Status, to)
	}
	sale.Status = to
	sale.Items = append([]SaleItem(nil), sale.Items...)
	return sale, nil
}
