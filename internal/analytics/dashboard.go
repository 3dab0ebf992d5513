package analytics

import (
	"sort"
	"time"

	"github.com/shopspring/decimal"

	"github.com/pharmadesk/pharmadesk/internal/catalog"
	"github.com/pharmadesk/pharmadesk/internal/inventory"
	"github.com/pharmadesk/pharmadesk/internal/store"
)

// RecentActivityLimit bounds the activity feed on the dashboard.
const RecentActivityLimit = 5

// CategoryBreakdown summarises stock per medicine category.
type CategoryBreakdown struct {
	Category  string          `json:"category"`
	Medicines int             `json:"medicines"`
	Units     int             `json:"units"`
	Value     decimal.Decimal `json:"value"`
	LowStock  int             `json:"low_stock"`
}

// DashboardMetrics is the dashboard summary derived from a snapshot.
type DashboardMetrics struct {
	AsOf             time.Time                    `json:"as_of"`
	TotalMedicines   int                          `json:"total_medicines"`
	TotalStock       int                          `json:"total_stock"`
	TotalValue       decimal.Decimal              `json:"total_value"`
	LowStockAlerts   int                          `json:"low_stock_alerts"`
	ExpiryAlerts     int                          `json:"expiry_alerts"`
	TodaySales       decimal.Decimal              `json:"today_sales"`
	TodaySalesCount  int                          `json:"today_sales_count"`
	AverageSale      decimal.NullDecimal          `json:"average_sale"`
	PendingOrders    int                          `json:"pending_orders"`
	CompletedSales   int                          `json:"completed_sales"`
	AlertsBySeverity Counts[catalog.Severity]     `json:"alerts_by_severity"`
	OrdersByStatus   Counts[catalog.OrderStatus]  `json:"orders_by_status"`
	SalesByStatus    Counts[catalog.SaleStatus]   `json:"sales_by_status"`
	ActivityByType   Counts[catalog.ActivityType] `json:"activity_by_type"`
	RecentActivity   []catalog.ActivityItem       `json:"recent_activity"`
	Categories       []CategoryBreakdown          `json:"categories"`
}

// ActiveAlerts is the headline alert count.
func (d DashboardMetrics) ActiveAlerts() int {
	return d.LowStockAlerts + d.ExpiryAlerts
}

// BuildDashboard folds a snapshot into dashboard metrics as of asOf.
// Low stock alerts count medicines under the threshold, out of stock included;
// expiry alerts count expired and soon expiring batches that are not dismissed.
func BuildDashboard(snap store.Snapshot, asOf time.Time, policy inventory.Policy) DashboardMetrics {
	alerts := snap.Alerts(asOf, policy)
	today := SalesOn(snap.Sales, asOf)

	m := DashboardMetrics{
		AsOf:             asOf,
		TotalMedicines:   len(snap.Medicines),
		TotalStock:       TotalUnits(snap.Batches),
		TotalValue:       TotalStockValue(snap.Medicines, snap.Batches),
		LowStockAlerts:   CountWhere(alerts, inventory.IsStockAlert),
		ExpiryAlerts:     CountWhere(alerts, inventory.IsExpiryAlert),
		TodaySales:       SumFinalAmount(today),
		TodaySalesCount:  len(today),
		AlertsBySeverity: CountByKeys(alerts, catalog.Severities, func(a catalog.StockAlert) catalog.Severity { return a.Severity }),
		OrdersByStatus:   CountByKeys(snap.Orders, catalog.OrderStatuses, func(o catalog.PurchaseOrder) catalog.OrderStatus { return o.Status }),
		SalesByStatus:    CountByKeys(snap.Sales, catalog.SaleStatuses, func(s catalog.Sale) catalog.SaleStatus { return s.Status }),
		ActivityByType:   CountByKeys(snap.Activity, catalog.ActivityTypes, func(a catalog.ActivityItem) catalog.ActivityType { return a.Type }),
		RecentActivity:   RecentActivity(snap.Activity, RecentActivityLimit),
		Categories:       categoryBreakdown(snap, policy),
	}
	m.PendingOrders = m.OrdersByStatus.Get(catalog.OrderPending)
	m.CompletedSales = m.SalesByStatus.Get(catalog.SaleCompleted)
	if avg, err := AverageFinalAmount(today); err == nil {
		m.AverageSale = decimal.NewNullDecimal(avg.Round(2))
	}
	return m
}

func categoryBreakdown(snap store.Snapshot, policy inventory.Policy) []CategoryBreakdown {
	threshold := policy.LowStockThreshold
	if threshold <= 0 {
		threshold = inventory.LowStockThreshold
	}
	totals := inventory.StockByMedicine(snap.Batches)
	byCategory := make(map[string]*CategoryBreakdown)
	for _, med := range snap.Medicines {
		name := med.Category
		if name == "" {
			name = "Uncategorized"
		}
		row, ok := byCategory[name]
		if !ok {
			row = &CategoryBreakdown{Category: name, Value: decimal.Zero}
			byCategory[name] = row
		}
		units := totals[med.ID]
		row.Medicines++
		row.Units += units
		row.Value = row.Value.Add(med.SellingPrice.Mul(decimal.NewFromInt(int64(units))))
		if inventory.IsBelow(units, threshold) {
			row.LowStock++
		}
	}
	out := make([]CategoryBreakdown, 0, len(byCategory))
	for _, row := range byCategory {
		out = append(out, *row)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Category < out[j].Category })
	return out
}
