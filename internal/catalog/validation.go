package catalog

import (
	"fmt"
	"strings"
)

func invalid(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrInvalidRecord, fmt.Sprintf(format, args...))
}

// Validate checks medicine invariants.
func (m Medicine) Validate() error {
	if strings.TrimSpace(m.Name) == "" {
		return invalid("medicine name required")
	}
	if m.UnitCost.IsNegative() {
		return invalid("medicine %s unit cost must be >= 0", m.Name)
	}
	if m.SellingPrice.IsNegative() {
		return invalid("medicine %s selling price must be >= 0", m.Name)
	}
	return nil
}

// Validate checks batch invariants.
func (b Batch) Validate() error {
	if strings.TrimSpace(b.MedicineID) == "" {
		return invalid("batch %s medicine required", b.BatchNumber)
	}
	if b.Quantity < 0 {
		return invalid("batch %s quantity must be >= 0", b.BatchNumber)
	}
	if b.InitialQuantity < b.Quantity {
		return invalid("batch %s initial quantity below current quantity", b.BatchNumber)
	}
	if !b.ManufactureDate.IsZero() && b.ExpiryDate.Before(b.ManufactureDate) {
		return invalid("batch %s expires before manufacture", b.BatchNumber)
	}
	if b.UnitCost.IsNegative() {
		return invalid("batch %s unit cost must be >= 0", b.BatchNumber)
	}
	return nil
}

// Validate checks supplier invariants.
func (s Supplier) Validate() error {
	if strings.TrimSpace(s.Name) == "" {
		return invalid("supplier name required")
	}
	if s.LeadTime < 0 {
		return invalid("supplier %s lead time must be >= 0", s.Name)
	}
	if s.Rating < 0 || s.Rating > 5 {
		return invalid("supplier %s rating must be within 0..5", s.Name)
	}
	return nil
}

// Validate checks purchase order invariants.
func (po PurchaseOrder) Validate() error {
	if strings.TrimSpace(po.OrderNumber) == "" {
		return invalid("order number required")
	}
	if !po.Status.Valid() {
		return invalid("order %s has unknown status %q", po.OrderNumber, po.Status)
	}
	if po.TotalAmount.IsNegative() {
		return invalid("order %s total must be >= 0", po.OrderNumber)
	}
	for _, item := range po.Items {
		if item.Quantity <= 0 {
			return invalid("order %s line %s quantity must be > 0", po.OrderNumber, item.MedicineID)
		}
		if item.ReceivedQuantity < 0 || item.ReceivedQuantity > item.Quantity {
			return invalid("order %s line %s received quantity out of range", po.OrderNumber, item.MedicineID)
		}
	}
	return nil
}

// Validate checks sale invariants, including FinalAmount = TotalAmount - Discount.
func (s Sale) Validate() error {
	if strings.TrimSpace(s.SaleNumber) == "" {
		return invalid("sale number required")
	}
	if !s.Status.Valid() {
		return invalid("sale %s has unknown status %q", s.SaleNumber, s.Status)
	}
	switch s.PaymentMethod {
	case PaymentCash, PaymentCard, PaymentInsurance:
	default:
		return invalid("sale %s has unknown payment method %q", s.SaleNumber, s.PaymentMethod)
	}
	if s.Discount.IsNegative() {
		return invalid("sale %s discount must be >= 0", s.SaleNumber)
	}
	if s.Discount.GreaterThan(s.TotalAmount) {
		return invalid("sale %s discount exceeds total amount", s.SaleNumber)
	}
	if !s.FinalAmount.Equal(s.TotalAmount.Sub(s.Discount)) {
		return invalid("sale %s final amount must equal total minus discount", s.SaleNumber)
	}
	return nil
}
