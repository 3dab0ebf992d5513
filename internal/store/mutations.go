package store

import (
	"context"
	"fmt"
	"slices"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/pharmadesk/pharmadesk/internal/catalog"
)

func indexOf[T any](items []T, match func(T) bool) int {
	for i, item := range items {
		if match(item) {
			return i
		}
	}
	return -1
}

func notFound(kind, id string) error {
	return fmt.Errorf("%w: %s %s", ErrNotFound, kind, id)
}

// Medicine returns a single medicine.
func (s *Store) Medicine(id string) (catalog.Medicine, error) {
	snap := s.Snapshot()
	i := indexOf(snap.Medicines, func(m catalog.Medicine) bool { return m.ID == id })
	if i < 0 {
		return catalog.Medicine{}, notFound("medicine", id)
	}
	return snap.Medicines[i], nil
}

// CreateMedicine validates and appends a medicine.
func (s *Store) CreateMedicine(ctx context.Context, m catalog.Medicine) (catalog.Medicine, error) {
	if err := m.Validate(); err != nil {
		return catalog.Medicine{}, err
	}
	now := s.now().UTC()
	m.ID = s.newID()
	m.CreatedAt = now
	m.UpdatedAt = now
	err := s.mutate(ctx, func(cur Snapshot) (Snapshot, change, error) {
		cur.Medicines = append(slices.Clip(cur.Medicines), m)
		return cur, change{catalog.ActivityStockUpdate, fmt.Sprintf("Medicine %s added to catalog", m.Name)}, nil
	})
	if err != nil {
		return catalog.Medicine{}, err
	}
	return m, nil
}

// UpdateMedicine replaces the editable fields of a medicine.
func (s *Store) UpdateMedicine(ctx context.Context, id string, m catalog.Medicine) (catalog.Medicine, error) {
	if err := m.Validate(); err != nil {
		return catalog.Medicine{}, err
	}
	var updated catalog.Medicine
	err := s.mutate(ctx, func(cur Snapshot) (Snapshot, change, error) {
		i := indexOf(cur.Medicines, func(x catalog.Medicine) bool { return x.ID == id })
		if i < 0 {
			return cur, change{}, notFound("medicine", id)
		}
		m.ID = id
		m.CreatedAt = cur.Medicines[i].CreatedAt
		m.UpdatedAt = s.now().UTC()
		cur.Medicines = slices.Clone(cur.Medicines)
		cur.Medicines[i] = m
		updated = m
		return cur, change{catalog.ActivityStockUpdate, fmt.Sprintf("Medicine %s updated", m.Name)}, nil
	})
	return updated, err
}

// DeleteMedicine removes a medicine. Its batches stay and read as orphans.
func (s *Store) DeleteMedicine(ctx context.Context, id string) error {
	return s.mutate(ctx, func(cur Snapshot) (Snapshot, change, error) {
		i := indexOf(cur.Medicines, func(x catalog.Medicine) bool { return x.ID == id })
		if i < 0 {
			return cur, change{}, notFound("medicine", id)
		}
		name := cur.Medicines[i].Name
		cur.Medicines = slices.Delete(slices.Clone(cur.Medicines), i, i+1)
		return cur, change{catalog.ActivityStockUpdate, fmt.Sprintf("Medicine %s removed from catalog", name)}, nil
	})
}

// BatchUpdate carries the editable stock fields of a batch. Nil fields are left unchanged.
type BatchUpdate struct {
	Quantity *int
	Location *string
}

// UpdateBatch adjusts quantity or location. Restocking above the initial
// quantity raises the initial quantity with it.
func (s *Store) UpdateBatch(ctx context.Context, id string, upd BatchUpdate) (catalog.Batch, error) {
	var updated catalog.Batch
	err := s.mutate(ctx, func(cur Snapshot) (Snapshot, change, error) {
		i := indexOf(cur.Batches, func(b catalog.Batch) bool { return b.ID == id })
		if i < 0 {
			return cur, change{}, notFound("batch", id)
		}
		b := cur.Batches[i]
		before := b.Quantity
		if upd.Quantity != nil {
			b.Quantity = *upd.Quantity
			if b.Quantity > b.InitialQuantity {
				b.InitialQuantity = b.Quantity
			}
		}
		if upd.Location != nil {
			b.Location = strings.TrimSpace(*upd.Location)
		}
		if err := b.Validate(); err != nil {
			return cur, change{}, err
		}
		cur.Batches = slices.Clone(cur.Batches)
		cur.Batches[i] = b
		updated = b
		desc := fmt.Sprintf("Batch %s stock updated from %d to %d units", b.BatchNumber, before, b.Quantity)
		return cur, change{catalog.ActivityStockUpdate, desc}, nil
	})
	return updated, err
}

// CreateSupplier validates and appends a supplier.
func (s *Store) CreateSupplier(ctx context.Context, sup catalog.Supplier) (catalog.Supplier, error) {
	if err := sup.Validate(); err != nil {
		return catalog.Supplier{}, err
	}
	sup.ID = s.newID()
	sup.CreatedAt = s.now().UTC()
	err := s.mutate(ctx, func(cur Snapshot) (Snapshot, change, error) {
		cur.Suppliers = append(slices.Clip(cur.Suppliers), sup)
		return cur, change{catalog.ActivityPurchase, fmt.Sprintf("Supplier %s added", sup.Name)}, nil
	})
	if err != nil {
		return catalog.Supplier{}, err
	}
	return sup, nil
}

// UpdateSupplier replaces the editable fields of a supplier.
func (s *Store) UpdateSupplier(ctx context.Context, id string, sup catalog.Supplier) (catalog.Supplier, error) {
	if err := sup.Validate(); err != nil {
		return catalog.Supplier{}, err
	}
	var updated catalog.Supplier
	err := s.mutate(ctx, func(cur Snapshot) (Snapshot, change, error) {
		i := indexOf(cur.Suppliers, func(x catalog.Supplier) bool { return x.ID == id })
		if i < 0 {
			return cur, change{}, notFound("supplier", id)
		}
		sup.ID = id
		sup.CreatedAt = cur.Suppliers[i].CreatedAt
		cur.Suppliers = slices.Clone(cur.Suppliers)
		cur.Suppliers[i] = sup
		updated = sup
		return cur, change{catalog.ActivityPurchase, fmt.Sprintf("Supplier %s updated", sup.Name)}, nil
	})
	return updated, err
}

// CreateOrder records a new purchase order. Line totals are recomputed and the
// order total defaults to their sum.
func (s *Store) CreateOrder(ctx context.Context, po catalog.PurchaseOrder) (catalog.PurchaseOrder, error) {
	if po.Status == "" {
		po.Status = catalog.OrderPending
	}
	if po.OrderDate.IsZero() {
		po.OrderDate = s.now().UTC()
	}
	items := make([]catalog.PurchaseOrderItem, len(po.Items))
	sum := decimal.Zero
	for i, item := range po.Items {
		if item.ID == "" {
			item.ID = s.newID()
		}
		item.TotalCost = item.UnitCost.Mul(decimal.NewFromInt(int64(item.Quantity)))
		sum = sum.Add(item.TotalCost)
		items[i] = item
	}
	po.Items = items
	if po.TotalAmount.IsZero() {
		po.TotalAmount = sum
	}
	if err := po.Validate(); err != nil {
		return catalog.PurchaseOrder{}, err
	}
	po.ID = s.newID()
	err := s.mutate(ctx, func(cur Snapshot) (Snapshot, change, error) {
		cur.Orders = append(slices.Clip(cur.Orders), po)
		return cur, change{catalog.ActivityPurchase, fmt.Sprintf("Purchase order %s has been added", po.OrderNumber)}, nil
	})
	if err != nil {
		return catalog.PurchaseOrder{}, err
	}
	return po, nil
}

// UpdateOrderStatus moves an order along its lifecycle. Receiving stamps the
// actual delivery time.
func (s *Store) UpdateOrderStatus(ctx context.Context, id string, to catalog.OrderStatus) (catalog.PurchaseOrder, error) {
	var updated catalog.PurchaseOrder
	err := s.mutate(ctx, func(cur Snapshot) (Snapshot, change, error) {
		i := indexOf(cur.Orders, func(o catalog.PurchaseOrder) bool { return o.ID == id })
		if i < 0 {
			return cur, change{}, notFound("order", id)
		}
		next, err := catalog.TransitionOrder(cur.Orders[i], to)
		if err != nil {
			return cur, change{}, err
		}
		if to == catalog.OrderReceived {
			delivered := s.now().UTC()
			next.ActualDelivery = &delivered
		}
		cur.Orders = slices.Clone(cur.Orders)
		cur.Orders[i] = next
		updated = next
		return cur, change{catalog.ActivityPurchase, fmt.Sprintf("Purchase order %s marked %s", next.OrderNumber, to)}, nil
	})
	return updated, err
}

// CreateSale records a sale. Line totals are recomputed, FinalAmount is derived
// from TotalAmount and Discount, and completed sales draw stock from their batches.
func (s *Store) CreateSale(ctx context.Context, sale catalog.Sale) (catalog.Sale, error) {
	if sale.Status == "" {
		sale.Status = catalog.SaleCompleted
	}
	if sale.SaleDate.IsZero() {
		sale.SaleDate = s.now().UTC()
	}
	items := make([]catalog.SaleItem, len(sale.Items))
	sum := decimal.Zero
	for i, item := range sale.Items {
		if item.ID == "" {
			item.ID = s.newID()
		}
		if item.Quantity <= 0 {
			return catalog.Sale{}, fmt.Errorf("%w: sale %s line %s quantity must be > 0", catalog.ErrInvalidRecord, sale.SaleNumber, item.MedicineID)
		}
		item.TotalPrice = item.UnitPrice.Mul(decimal.NewFromInt(int64(item.Quantity)))
		sum = sum.Add(item.TotalPrice)
		items[i] = item
	}
	sale.Items = items
	if sale.TotalAmount.IsZero() {
		sale.TotalAmount = sum
	}
	sale.FinalAmount = sale.TotalAmount.Sub(sale.Discount)
	if err := sale.Validate(); err != nil {
		return catalog.Sale{}, err
	}
	sale.ID = s.newID()
	err := s.mutate(ctx, func(cur Snapshot) (Snapshot, change, error) {
		if sale.Status == catalog.SaleCompleted {
			batches, err := drawStock(cur.Batches, sale.Items)
			if err != nil {
				return cur, change{}, err
			}
			cur.Batches = batches
		}
		cur.Sales = append(slices.Clip(cur.Sales), sale)
		desc := fmt.Sprintf("Sale %s for %s has been added", sale.SaleNumber, customerLabel(sale))
		return cur, change{catalog.ActivitySale, desc}, nil
	})
	if err != nil {
		return catalog.Sale{}, err
	}
	return sale, nil
}

// UpdateSaleStatus settles or cancels a pending sale.
func (s *Store) UpdateSaleStatus(ctx context.Context, id string, to catalog.SaleStatus) (catalog.Sale, error) {
	var updated catalog.Sale
	err := s.mutate(ctx, func(cur Snapshot) (Snapshot, change, error) {
		i := indexOf(cur.Sales, func(x catalog.Sale) bool { return x.ID == id })
		if i < 0 {
			return cur, change{}, notFound("sale", id)
		}
		next, err := catalog.TransitionSale(cur.Sales[i], to)
		if err != nil {
			return cur, change{}, err
		}
		if to == catalog.SaleCompleted {
			batches, err := drawStock(cur.Batches, next.Items)
			if err != nil {
				return cur, change{}, err
			}
			cur.Batches = batches
		}
		cur.Sales = slices.Clone(cur.Sales)
		cur.Sales[i] = next
		updated = next
		return cur, change{catalog.ActivitySale, fmt.Sprintf("Sale %s marked %s", next.SaleNumber, to)}, nil
	})
	return updated, err
}

// drawStock returns a copy of batches with sale quantities removed. Lines without
// a batch reference are not tracked against stock.
func drawStock(batches []catalog.Batch, items []catalog.SaleItem) ([]catalog.Batch, error) {
	out := slices.Clone(batches)
	for _, item := range items {
		if item.BatchID == "" {
			continue
		}
		i := indexOf(out, func(b catalog.Batch) bool { return b.ID == item.BatchID })
		if i < 0 {
			return nil, notFound("batch", item.BatchID)
		}
		if out[i].Quantity < item.Quantity {
			return nil, fmt.Errorf("%w: batch %s holds %d, sale needs %d", ErrInsufficientStock, out[i].BatchNumber, out[i].Quantity, item.Quantity)
		}
		out[i].Quantity -= item.Quantity
	}
	return out, nil
}

func customerLabel(sale catalog.Sale) string {
	if name := strings.TrimSpace(sale.CustomerName); name != "" {
		return name
	}
	return "walk-in customer"
}

// MarkAlertRead flags a derived alert as read.
func (s *Store) MarkAlertRead(ctx context.Context, alertID string) error {
	return s.mutate(ctx, func(cur Snapshot) (Snapshot, change, error) {
		cur.ReadAlerts = cloneFlags(cur.ReadAlerts)
		cur.ReadAlerts[alertID] = true
		return cur, change{catalog.ActivityAlert, fmt.Sprintf("Alert %s marked as read", alertID)}, nil
	})
}

// DismissAlert hides a derived alert until its id changes.
func (s *Store) DismissAlert(ctx context.Context, alertID string) error {
	return s.mutate(ctx, func(cur Snapshot) (Snapshot, change, error) {
		cur.DismissedAlerts = cloneFlags(cur.DismissedAlerts)
		cur.DismissedAlerts[alertID] = true
		return cur, change{catalog.ActivityAlert, fmt.Sprintf("Alert %s dismissed", alertID)}, nil
	})
}
