package inventory

import (
	"math"
	"time"

	"github.com/pharmadesk/pharmadesk/internal/catalog"
)

// LowStockThreshold is the fixed policy limit below which total stock is low.
const LowStockThreshold = 50

const day = 24 * time.Hour

// Expiry-warning severity windows, in days to expiry.
const (
	urgentExpiryDays = 7
	nearExpiryDays   = 30
)

// IsLowStock reports whether total is below LowStockThreshold.
func IsLowStock(total int) bool {
	return IsBelow(total, LowStockThreshold)
}

// IsBelow reports whether total is below threshold. Non-positive thresholds fall back to LowStockThreshold.
func IsBelow(total, threshold int) bool {
	if threshold <= 0 {
		threshold = LowStockThreshold
	}
	return total < threshold
}

// TotalStockForMedicine sums the quantity of every batch of medicineID.
func TotalStockForMedicine(batches []catalog.Batch, medicineID string) int {
	total := 0
	for _, b := range batches {
		if b.MedicineID == medicineID {
			total += b.Quantity
		}
	}
	return total
}

// StockByMedicine folds batches into per-medicine totals in a single pass.
func StockByMedicine(batches []catalog.Batch) map[string]int {
	totals := make(map[string]int)
	for _, b := range batches {
		totals[b.MedicineID] += b.Quantity
	}
	return totals
}

// IsExpiringSoon reports whether expiry falls on or before asOf plus horizonDays fixed 24h days.
// Already expired dates also satisfy it.
func IsExpiringSoon(expiry, asOf time.Time, horizonDays int) bool {
	return !expiry.After(asOf.Add(time.Duration(horizonDays) * day))
}

// IsExpired reports whether expiry is strictly before asOf.
func IsExpired(expiry, asOf time.Time) bool {
	return expiry.Before(asOf)
}

// DaysUntil returns the whole days from asOf to expiry, negative once past.
func DaysUntil(expiry, asOf time.Time) int {
	return int(math.Floor(expiry.Sub(asOf).Hours() / 24))
}

// StockPercentage returns quantity as a percentage of initial. The result is not clamped.
func StockPercentage(quantity, initial int) float64 {
	if initial == 0 {
		return 0
	}
	return float64(quantity) / float64(initial) * 100
}

// ClampPercent bounds p to [0, 100] for display.
func ClampPercent(p float64) float64 {
	return math.Max(0, math.Min(100, p))
}

// SeverityInput carries the magnitudes SeverityFor needs.
type SeverityInput struct {
	Type catalog.AlertType
	// Quantity is the stock on hand: the medicine total for stock alerts, the batch quantity for expiry alerts.
	Quantity int
	// Threshold defaults to LowStockThreshold when zero.
	Threshold    int
	DaysToExpiry int
}

// SeverityFor maps an alert type and its magnitude to a severity.
//
//	out_of_stock                        critical
//	expired, stock on hand              critical
//	expired, nothing on hand            high
//	low_stock, below half the threshold high
//	low_stock                           medium
//	expiry_warning, <= 7 days           high
//	expiry_warning, <= 30 days          medium
//	expiry_warning                      low
func SeverityFor(in SeverityInput) catalog.Severity {
	threshold := in.Threshold
	if threshold <= 0 {
		threshold = LowStockThreshold
	}
	switch in.Type {
	case catalog.AlertOutOfStock:
		return catalog.SeverityCritical
	case catalog.AlertExpired:
		if in.Quantity > 0 {
			return catalog.SeverityCritical
		}
		return catalog.SeverityHigh
	case catalog.AlertLowStock:
		if in.Quantity*2 < threshold {
			return catalog.SeverityHigh
		}
		return catalog.SeverityMedium
	case catalog.AlertExpiryWarning:
		switch {
		case in.DaysToExpiry <= urgentExpiryDays:
			return catalog.SeverityHigh
		case in.DaysToExpiry <= nearExpiryDays:
			return catalog.SeverityMedium
		default:
			return catalog.SeverityLow
		}
	default:
		return catalog.SeverityLow
	}
}
