package inventory

import (
	"sort"
	"strings"

	"github.com/pharmadesk/pharmadesk/internal/catalog"
)

// AllCategories matches every category.
const AllCategories = "all"

// MedicineFilter narrows the catalog view.
type MedicineFilter struct {
	Search   string
	Category string
}

func matches(query string, fields ...string) bool {
	q := strings.ToLower(strings.TrimSpace(query))
	if q == "" {
		return true
	}
	for _, f := range fields {
		if strings.Contains(strings.ToLower(f), q) {
			return true
		}
	}
	return false
}

// FilterMedicines matches name, generic name or brand, case-insensitively, within a category.
func FilterMedicines(medicines []catalog.Medicine, filter MedicineFilter) []catalog.Medicine {
	category := strings.TrimSpace(filter.Category)
	out := make([]catalog.Medicine, 0, len(medicines))
	for _, m := range medicines {
		if category != "" && category != AllCategories && m.Category != category {
			continue
		}
		if matches(filter.Search, m.Name, m.GenericName, m.Brand) {
			out = append(out, m)
		}
	}
	return out
}

// Categories returns the distinct, sorted medicine categories.
func Categories(medicines []catalog.Medicine) []string {
	seen := make(map[string]struct{})
	out := make([]string, 0)
	for _, m := range medicines {
		if m.Category == "" {
			continue
		}
		if _, ok := seen[m.Category]; ok {
			continue
		}
		seen[m.Category] = struct{}{}
		out = append(out, m.Category)
	}
	sort.Strings(out)
	return out
}

// FilterStockRows matches medicine name or batch number.
func FilterStockRows(rows []StockRow, search string) []StockRow {
	out := make([]StockRow, 0, len(rows))
	for _, r := range rows {
		if matches(search, r.MedicineName, r.BatchNumber) {
			out = append(out, r)
		}
	}
	return out
}

// FilterSuppliers matches supplier name, contact or email.
func FilterSuppliers(suppliers []catalog.Supplier, search string) []catalog.Supplier {
	out := make([]catalog.Supplier, 0, len(suppliers))
	for _, s := range suppliers {
		if matches(search, s.Name, s.Contact, s.Email) {
			out = append(out, s)
		}
	}
	return out
}

// FilterOrders matches order number or supplier name. Unknown suppliers only match by number.
func FilterOrders(orders []catalog.PurchaseOrder, suppliers []catalog.Supplier, search string) []catalog.PurchaseOrder {
	names := make(map[string]string, len(suppliers))
	for _, s := range suppliers {
		names[s.ID] = s.Name
	}
	out := make([]catalog.PurchaseOrder, 0, len(orders))
	for _, o := range orders {
		if matches(search, o.OrderNumber, names[o.SupplierID]) {
			out = append(out, o)
		}
	}
	return out
}

// FilterSales matches sale number or customer name.
func FilterSales(sales []catalog.Sale, search string) []catalog.Sale {
	out := make([]catalog.Sale, 0, len(sales))
	for _, s := range sales {
		if matches(search, s.SaleNumber, s.CustomerName) {
			out = append(out, s)
		}
	}
	return out
}

// FilterActivity keeps entries of the given type; an empty type keeps everything.
func FilterActivity(items []catalog.ActivityItem, t catalog.ActivityType) []catalog.ActivityItem {
	out := make([]catalog.ActivityItem, 0, len(items))
	for _, it := range items {
		if t == "" || it.Type == t {
			out = append(out, it)
		}
	}
	return out
}

// AlertFilter narrows the alerts view.
type AlertFilter struct {
	Severity   catalog.Severity
	Type       catalog.AlertType
	UnreadOnly bool
}

// FilterAlerts applies an AlertFilter.
func FilterAlerts(alerts []catalog.StockAlert, filter AlertFilter) []catalog.StockAlert {
	out := make([]catalog.StockAlert, 0, len(alerts))
	for _, a := range alerts {
		if filter.Severity != "" && a.Severity != filter.Severity {
			continue
		}
		if filter.Type != "" && a.Type != filter.Type {
			continue
		}
		if filter.UnreadOnly && a.IsRead {
			continue
		}
		out = append(out, a)
	}
	return out
}
