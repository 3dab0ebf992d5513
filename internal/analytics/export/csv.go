package export

import (
	"encoding/csv"
	"io"
	"strconv"
	"time"

	"github.com/shopspring/decimal"
	"golang.org/x/text/language"
	"golang.org/x/text/message"

	"github.com/pharmadesk/pharmadesk/internal/analytics"
	"github.com/pharmadesk/pharmadesk/internal/catalog"
	"github.com/pharmadesk/pharmadesk/internal/inventory"
)

var printer = message.NewPrinter(language.English)

func formatMoney(d decimal.Decimal) string {
	return d.StringFixed(2)
}

// displayMoney renders an amount with thousands separators for the human readable column.
func displayMoney(d decimal.Decimal) string {
	return printer.Sprintf("%.2f", d.InexactFloat64())
}

func formatDate(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return t.UTC().Format(time.DateOnly)
}

func stockStatus(r inventory.StockRow) string {
	switch {
	case r.IsExpired:
		return "expired"
	case r.Quantity == 0:
		return "out_of_stock"
	case r.IsExpiring:
		return "expiring"
	case r.IsLowStock:
		return "low_stock"
	default:
		return "ok"
	}
}

// WriteStockCSV serialises annotated batches.
func WriteStockCSV(w io.Writer, rows []inventory.StockRow) error {
	writer := csv.NewWriter(w)
	if err := writer.Write([]string{"Batch Number", "Medicine", "Quantity", "Initial Quantity", "Stock %", "Location", "Expiry Date", "Days To Expiry", "Status"}); err != nil {
		return err
	}
	for _, r := range rows {
		if err := writer.Write([]string{
			r.BatchNumber,
			r.MedicineName,
			strconv.Itoa(r.Quantity),
			strconv.Itoa(r.InitialQuantity),
			strconv.FormatFloat(inventory.ClampPercent(r.StockPercentage), 'f', 1, 64),
			r.Location,
			formatDate(r.ExpiryDate),
			strconv.Itoa(r.DaysToExpiry),
			stockStatus(r),
		}); err != nil {
			return err
		}
	}
	writer.Flush()
	return writer.Error()
}

// WriteExpiryCSV lists expired and soon expiring batches, soonest first as given.
func WriteExpiryCSV(w io.Writer, rows []inventory.StockRow) error {
	expiring := make([]inventory.StockRow, 0, len(rows))
	for _, r := range rows {
		if r.IsExpired || r.IsExpiring {
			expiring = append(expiring, r)
		}
	}
	return WriteStockCSV(w, expiring)
}

// WriteSalesCSV emits sales with their amounts.
func WriteSalesCSV(w io.Writer, sales []catalog.Sale) error {
	writer := csv.NewWriter(w)
	if err := writer.Write([]string{"Sale Number", "Date", "Customer", "Payment Method", "Status", "Items", "Total", "Discount", "Final"}); err != nil {
		return err
	}
	for _, s := range sales {
		if err := writer.Write([]string{
			s.SaleNumber,
			formatDate(s.SaleDate),
			s.CustomerName,
			string(s.PaymentMethod),
			string(s.Status),
			strconv.Itoa(len(s.Items)),
			formatMoney(s.TotalAmount),
			formatMoney(s.Discount),
			formatMoney(s.FinalAmount),
		}); err != nil {
			return err
		}
	}
	writer.Flush()
	return writer.Error()
}

// WriteUsageCSV lists dispensed units per medicine in the order given.
func WriteUsageCSV(w io.Writer, rows []analytics.MedicineUsage) error {
	writer := csv.NewWriter(w)
	if err := writer.Write([]string{"Medicine ID", "Medicine", "Units Dispensed", "Sales", "Revenue"}); err != nil {
		return err
	}
	for _, r := range rows {
		if err := writer.Write([]string{
			r.MedicineID,
			r.MedicineName,
			strconv.Itoa(r.Units),
			strconv.Itoa(r.Sales),
			formatMoney(r.Revenue),
		}); err != nil {
			return err
		}
	}
	writer.Flush()
	return writer.Error()
}

// WriteDashboardCSV serialises dashboard metrics to a Metric,Value,Display table.
func WriteDashboardCSV(w io.Writer, m analytics.DashboardMetrics) error {
	writer := csv.NewWriter(w)
	if err := writer.Write([]string{"Metric", "Value", "Display"}); err != nil {
		return err
	}
	count := func(name string, v int) []string {
		return []string{name, strconv.Itoa(v), printer.Sprintf("%d", v)}
	}
	amount := func(name string, v decimal.Decimal) []string {
		return []string{name, formatMoney(v), displayMoney(v)}
	}
	records := [][]string{
		{"As Of", formatDate(m.AsOf), formatDate(m.AsOf)},
		count("Total Medicines", m.TotalMedicines),
		count("Total Stock", m.TotalStock),
		amount("Stock Value", m.TotalValue),
		count("Low Stock Alerts", m.LowStockAlerts),
		count("Expiry Alerts", m.ExpiryAlerts),
		amount("Today's Sales", m.TodaySales),
		count("Today's Sales Count", m.TodaySalesCount),
		count("Pending Orders", m.PendingOrders),
		count("Completed Sales", m.CompletedSales),
	}
	if m.AverageSale.Valid {
		records = append(records, amount("Average Sale", m.AverageSale.Decimal))
	}
	for _, sev := range catalog.Severities {
		records = append(records, count("Alerts "+string(sev), m.AlertsBySeverity.Get(sev)))
	}
	for _, record := range records {
		if err := writer.Write(record); err != nil {
			return err
		}
	}
	writer.Flush()
	return writer.Error()
}
