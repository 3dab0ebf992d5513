package export

import (
	"io"

	"github.com/xuri/excelize/v2"

	"github.com/pharmadesk/pharmadesk/internal/analytics"
	"github.com/pharmadesk/pharmadesk/internal/inventory"
)

// Sheet names of the catalog workbook.
const (
	MedicinesSheet = "Medicines"
	SummarySheet   = "Summary"
)

var medicineHeader = []interface{}{
	"ID", "Name", "Generic Name", "Brand", "Category", "Dosage Form", "Strength",
	"Unit Cost", "Selling Price", "Profit Margin %", "Total Stock", "Batches", "Status",
}

func cardStatus(c inventory.MedicineCard) string {
	switch {
	case c.IsOutOfStock:
		return "out_of_stock"
	case c.IsLowStock:
		return "low_stock"
	case c.HasExpiringBatches:
		return "expiring"
	default:
		return "in_stock"
	}
}

// WriteMedicinesXLSX renders the catalog view plus a summary sheet of the dashboard metrics.
func WriteMedicinesXLSX(w io.Writer, cards []inventory.MedicineCard, m analytics.DashboardMetrics) error {
	f := excelize.NewFile()
	defer func() { _ = f.Close() }()

	if err := f.SetSheetName(f.GetSheetName(f.GetActiveSheetIndex()), MedicinesSheet); err != nil {
		return err
	}
	if err := f.SetSheetRow(MedicinesSheet, "A1", &medicineHeader); err != nil {
		return err
	}

	for i, c := range cards {
		var margin interface{} = ""
		if c.ProfitMargin.Valid {
			margin = c.ProfitMargin.Decimal.Shift(2).Round(2).InexactFloat64()
		}
		row := []interface{}{
			c.ID,
			c.Name,
			c.GenericName,
			c.Brand,
			c.Category,
			c.DosageForm,
			c.Strength,
			c.UnitCost.InexactFloat64(),
			c.SellingPrice.InexactFloat64(),
			margin,
			c.TotalStock,
			c.BatchCount,
			cardStatus(c),
		}
		cell, err := excelize.CoordinatesToCellName(1, i+2)
		if err != nil {
			return err
		}
		if err := f.SetSheetRow(MedicinesSheet, cell, &row); err != nil {
			return err
		}
	}
	if err := writeSummarySheet(f, m); err != nil {
		return err
	}
	_, err := f.WriteTo(w)
	return err
}

func writeSummarySheet(f *excelize.File, m analytics.DashboardMetrics) error {
	if _, err := f.NewSheet(SummarySheet); err != nil {
		return err
	}
	rows := [][]interface{}{
		{"Metric", "Value"},
		{"As Of", formatDate(m.AsOf)},
		{"Total Medicines", m.TotalMedicines},
		{"Total Stock", m.TotalStock},
		{"Stock Value", m.TotalValue.InexactFloat64()},
		{"Low Stock Alerts", m.LowStockAlerts},
		{"Expiry Alerts", m.ExpiryAlerts},
	}
	for _, c := range m.Categories {
		rows = append(rows, []interface{}{"Category " + c.Category, c.Units})
	}
	for i, row := range rows {
		cell, err := excelize.CoordinatesToCellName(1, i+1)
		if err != nil {
			return err
		}
		if err := f.SetSheetRow(SummarySheet, cell, &row); err != nil {
			return err
		}
	}
	return nil
}
