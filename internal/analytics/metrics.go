package analytics

import (
	"errors"
	"slices"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"github.com/pharmadesk/pharmadesk/internal/catalog"
	"github.com/pharmadesk/pharmadesk/internal/inventory"
)

// ErrDivisionByZero is returned when an average is requested over no records.
var ErrDivisionByZero = errors.New("analytics: division by zero")

// TotalStockValue sums SellingPrice x on-hand quantity across medicines.
// Batches of unknown medicines do not contribute.
func TotalStockValue(medicines []catalog.Medicine, batches []catalog.Batch) decimal.Decimal {
	totals := inventory.StockByMedicine(batches)
	value := decimal.Zero
	for _, m := range medicines {
		value = value.Add(m.SellingPrice.Mul(decimal.NewFromInt(int64(totals[m.ID]))))
	}
	return value
}

// CountByStatus counts batches satisfying pred.
func CountByStatus(batches []catalog.Batch, pred func(catalog.Batch) bool) int {
	return CountWhere(batches, pred)
}

// CountWhere counts items satisfying pred.
func CountWhere[T any](items []T, pred func(T) bool) int {
	n := 0
	for _, item := range items {
		if pred(item) {
			n++
		}
	}
	return n
}

// Counts is a grouped tally. Keys that were never seen read as zero.
type Counts[K comparable] map[K]int

// Get returns the count for key, 0 when absent.
func (c Counts[K]) Get(key K) int {
	return c[key]
}

// Total returns the sum of all counts.
func (c Counts[K]) Total() int {
	n := 0
	for _, v := range c {
		n += v
	}
	return n
}

// CountBy groups items by key.
func CountBy[T any, K comparable](items []T, key func(T) K) Counts[K] {
	out := make(Counts[K])
	for _, item := range items {
		out[key(item)]++
	}
	return out
}

// CountByKeys groups items by key with every entry of keys present, so
// serialised tallies report zero instead of omitting the key.
func CountByKeys[T any, K comparable](items []T, keys []K, key func(T) K) Counts[K] {
	out := make(Counts[K], len(keys))
	for _, k := range keys {
		out[k] = 0
	}
	for _, item := range items {
		out[key(item)]++
	}
	return out
}

// SumFinalAmount adds FinalAmount across sales.
func SumFinalAmount(sales []catalog.Sale) decimal.Decimal {
	sum := decimal.Zero
	for _, s := range sales {
		sum = sum.Add(s.FinalAmount)
	}
	return sum
}

// AverageFinalAmount returns the mean FinalAmount, or ErrDivisionByZero for no sales.
func AverageFinalAmount(sales []catalog.Sale) (decimal.Decimal, error) {
	if len(sales) == 0 {
		return decimal.Zero, ErrDivisionByZero
	}
	return SumFinalAmount(sales).Div(decimal.NewFromInt(int64(len(sales)))), nil
}

// SalesOn keeps non-cancelled sales dated on the same UTC calendar day as day.
func SalesOn(sales []catalog.Sale, day time.Time) []catalog.Sale {
	y, m, d := day.UTC().Date()
	out := make([]catalog.Sale, 0)
	for _, s := range sales {
		if s.Status == catalog.SaleCancelled {
			continue
		}
		sy, sm, sd := s.SaleDate.UTC().Date()
		if sy == y && sm == m && sd == d {
			out = append(out, s)
		}
	}
	return out
}

// MedicineUsage is the dispensing tally of one medicine.
type MedicineUsage struct {
	MedicineID   string          `json:"medicine_id"`
	MedicineName string          `json:"medicine_name"`
	Units        int             `json:"units"`
	Sales        int             `json:"sales"`
	Revenue      decimal.Decimal `json:"revenue"`
}

// UsageByMedicine sums dispensed units per medicine over non-cancelled sales,
// most dispensed first. Items of unknown medicines are named by their id.
func UsageByMedicine(medicines []catalog.Medicine, sales []catalog.Sale) []MedicineUsage {
	names := make(map[string]string, len(medicines))
	for _, m := range medicines {
		names[m.ID] = m.Name
	}
	index := make(map[string]int)
	out := make([]MedicineUsage, 0)
	for _, s := range sales {
		if s.Status == catalog.SaleCancelled {
			continue
		}
		seen := make(map[string]bool, len(s.Items))
		for _, item := range s.Items {
			i, ok := index[item.MedicineID]
			if !ok {
				name, known := names[item.MedicineID]
				if !known || name == "" {
					name = item.MedicineID
				}
				i = len(out)
				index[item.MedicineID] = i
				out = append(out, MedicineUsage{MedicineID: item.MedicineID, MedicineName: name})
			}
			out[i].Units += item.Quantity
			out[i].Revenue = out[i].Revenue.Add(item.TotalPrice)
			if !seen[item.MedicineID] {
				seen[item.MedicineID] = true
				out[i].Sales++
			}
		}
	}
	slices.SortStableFunc(out, func(a, b MedicineUsage) int {
		if a.Units != b.Units {
			return b.Units - a.Units
		}
		return strings.Compare(a.MedicineName, b.MedicineName)
	})
	return out
}

// TotalUnits sums batch quantities.
func TotalUnits(batches []catalog.Batch) int {
	n := 0
	for _, b := range batches {
		n += b.Quantity
	}
	return n
}

// RecentActivity returns up to limit entries, newest first. The input is not reordered.
func RecentActivity(items []catalog.ActivityItem, limit int) []catalog.ActivityItem {
	sorted := slices.Clone(items)
	slices.SortStableFunc(sorted, func(a, b catalog.ActivityItem) int {
		return b.Timestamp.Compare(a.Timestamp)
	})
	if limit >= 0 && len(sorted) > limit {
		sorted = sorted[:limit]
	}
	if sorted == nil {
		sorted = []catalog.ActivityItem{}
	}
	return sorted
}
