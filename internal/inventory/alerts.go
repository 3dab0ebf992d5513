package inventory

import (
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/pharmadesk/pharmadesk/internal/catalog"
)

// AlertID builds the deterministic identifier of a derived alert.
func AlertID(t catalog.AlertType, medicineID, batchID string) string {
	parts := []string{string(t), medicineID}
	if batchID != "" {
		parts = append(parts, batchID)
	}
	return strings.Join(parts, ":")
}

// DeriveAlerts classifies medicines and batches into stock alerts as of asOf.
// Medicine level alerts cover out of stock and low stock; batch level alerts cover
// expired and soon expiring lots. Results are ordered by severity, most severe first.
func DeriveAlerts(medicines []catalog.Medicine, batches []catalog.Batch, asOf time.Time, policy Policy) []catalog.StockAlert {
	threshold := policy.threshold()
	horizon := policy.AlertHorizon
	if horizon.IsZero() {
		horizon = AlertHorizon
	}
	totals := StockByMedicine(batches)
	index := IndexMedicines(medicines)

	alerts := make([]catalog.StockAlert, 0)
	for _, m := range medicines {
		total := totals[m.ID]
		switch {
		case total == 0:
			alerts = append(alerts, catalog.StockAlert{
				ID:         AlertID(catalog.AlertOutOfStock, m.ID, ""),
				Type:       catalog.AlertOutOfStock,
				MedicineID: m.ID,
				Message:    fmt.Sprintf("%s is out of stock", m.Name),
				Severity:   SeverityFor(SeverityInput{Type: catalog.AlertOutOfStock}),
				CreatedAt:  asOf,
			})
		case IsBelow(total, threshold):
			alerts = append(alerts, catalog.StockAlert{
				ID:         AlertID(catalog.AlertLowStock, m.ID, ""),
				Type:       catalog.AlertLowStock,
				MedicineID: m.ID,
				Message:    fmt.Sprintf("%s is running low (%d units left, threshold %d)", m.Name, total, threshold),
				Severity:   SeverityFor(SeverityInput{Type: catalog.AlertLowStock, Quantity: total, Threshold: threshold}),
				CreatedAt:  asOf,
			})
		}
	}

	for _, b := range batches {
		name := b.MedicineID
		if m, ok := index[b.MedicineID]; ok {
			name = m.Name
		}
		days := DaysUntil(b.ExpiryDate, asOf)
		switch {
		case IsExpired(b.ExpiryDate, asOf):
			alerts = append(alerts, catalog.StockAlert{
				ID:         AlertID(catalog.AlertExpired, b.MedicineID, b.ID),
				Type:       catalog.AlertExpired,
				MedicineID: b.MedicineID,
				BatchID:    b.ID,
				Message:    fmt.Sprintf("%s batch %s expired on %s", name, b.BatchNumber, b.ExpiryDate.Format("2006-01-02")),
				Severity:   SeverityFor(SeverityInput{Type: catalog.AlertExpired, Quantity: b.Quantity}),
				CreatedAt:  asOf,
			})
		case IsExpiringWithin(b.ExpiryDate, asOf, horizon):
			alerts = append(alerts, catalog.StockAlert{
				ID:         AlertID(catalog.AlertExpiryWarning, b.MedicineID, b.ID),
				Type:       catalog.AlertExpiryWarning,
				MedicineID: b.MedicineID,
				BatchID:    b.ID,
				Message:    fmt.Sprintf("%s batch %s expires in %d days", name, b.BatchNumber, days),
				Severity:   SeverityFor(SeverityInput{Type: catalog.AlertExpiryWarning, Quantity: b.Quantity, DaysToExpiry: days}),
				CreatedAt:  asOf,
			})
		}
	}

	sort.SliceStable(alerts, func(i, j int) bool {
		return alerts[i].Severity.Rank() > alerts[j].Severity.Rank()
	})
	return alerts
}

// IsExpiryAlert reports whether the alert concerns a batch date rather than a quantity.
func IsExpiryAlert(a catalog.StockAlert) bool {
	return a.Type == catalog.AlertExpired || a.Type == catalog.AlertExpiryWarning
}

// IsStockAlert reports whether the alert concerns stock levels.
func IsStockAlert(a catalog.StockAlert) bool {
	return a.Type == catalog.AlertLowStock || a.Type == catalog.AlertOutOfStock
}
