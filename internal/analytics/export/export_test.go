package export

import (
	"bytes"
	"encoding/csv"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"github.com/pharmadesk/pharmadesk/internal/analytics"
	"github.com/pharmadesk/pharmadesk/internal/catalog"
	"github.com/pharmadesk/pharmadesk/internal/inventory"
	"github.com/pharmadesk/pharmadesk/internal/store"
)

var asOf = time.Date(2025, 3, 15, 0, 0, 0, 0, time.UTC)

func readCSV(t *testing.T, buf *bytes.Buffer) [][]string {
	t.Helper()
	records, err := csv.NewReader(bytes.NewReader(buf.Bytes())).ReadAll()
	if err != nil {
		t.Fatalf("csv read error: %v", err)
	}
	return records
}

func seed(t *testing.T) store.Snapshot {
	t.Helper()
	snap, err := store.DefaultSeed(asOf)
	require.NoError(t, err)
	return snap
}

func TestWriteStockAndExpiryCSV(t *testing.T) {
	snap := seed(t)
	rows := inventory.BuildStockRows(snap.Medicines, snap.Batches, asOf, inventory.DefaultPolicy())

	buf := &bytes.Buffer{}
	require.NoError(t, WriteStockCSV(buf, rows))
	records := readCSV(t, buf)
	require.Len(t, records, len(rows)+1)
	require.Equal(t, "Batch Number", records[0][0])
	require.Equal(t, []string{"AMX-2024-001", "Amoxicillin 500mg", "20", "100", "20.0"}, records[1][:5])

	buf.Reset()
	require.NoError(t, WriteExpiryCSV(buf, rows))
	records = readCSV(t, buf)
	statuses := map[string]string{}
	for _, r := range records[1:] {
		statuses[r[0]] = r[8]
	}
	require.Equal(t, "expired", statuses["PAR-2023-112"])
	require.Equal(t, "expiring", statuses["OMP-2024-003"])
	require.Equal(t, "expiring", statuses["AMX-2024-001"])
	require.NotContains(t, statuses, "CTZ-2024-030")
}

func TestWriteSalesCSV(t *testing.T) {
	buf := &bytes.Buffer{}
	require.NoError(t, WriteSalesCSV(buf, seed(t).Sales))
	records := readCSV(t, buf)
	require.Len(t, records, 7)
	require.Equal(t, []string{"SALE-2025-0143", "2025-03-15", "John Smith", "insurance", "pending", "1", "33.00", "3.00", "30.00"}, records[3])
}

func TestWriteUsageCSV(t *testing.T) {
	snap := seed(t)
	buf := &bytes.Buffer{}
	require.NoError(t, WriteUsageCSV(buf, analytics.UsageByMedicine(snap.Medicines, snap.Sales)))
	records := readCSV(t, buf)
	require.Len(t, records, 6)
	require.Equal(t, []string{"Medicine ID", "Medicine", "Units Dispensed", "Sales", "Revenue"}, records[0])
	require.Equal(t, []string{"med-metf", "Metformin 850mg", "3", "1", "15.60"}, records[1])
	require.Equal(t, []string{"med-omep", "Omeprazole 20mg", "2", "1", "18.00"}, records[5])
	for _, r := range records[1:] {
		require.NotEqual(t, "med-cetir", r[0], "cancelled sales are not usage")
	}
}

func TestWriteDashboardCSV(t *testing.T) {
	m := analytics.BuildDashboard(seed(t), asOf, inventory.DefaultPolicy())
	buf := &bytes.Buffer{}
	require.NoError(t, WriteDashboardCSV(buf, m))
	records := readCSV(t, buf)
	values := map[string]string{}
	for _, r := range records[1:] {
		require.Len(t, r, 3)
		values[r[0]] = r[1]
	}
	require.Equal(t, "4814.50", values["Stock Value"])
	require.Equal(t, "62.50", values["Today's Sales"])
	require.Equal(t, "1", values["Pending Orders"])
	require.Equal(t, "2", values["Alerts critical"])
	require.Equal(t, "0", values["Alerts low"])

	empty := analytics.BuildDashboard(store.Snapshot{}, asOf, inventory.DefaultPolicy())
	buf.Reset()
	require.NoError(t, WriteDashboardCSV(buf, empty))
	for _, r := range readCSV(t, buf) {
		require.NotEqual(t, "Average Sale", r[0])
	}
}

func TestWriteMedicinesXLSX(t *testing.T) {
	snap := seed(t)
	cards := inventory.BuildMedicineCards(snap.Medicines, snap.Batches, asOf, inventory.DefaultPolicy())
	buf := &bytes.Buffer{}
	metrics := analytics.BuildDashboard(snap, asOf, inventory.DefaultPolicy())
	require.NoError(t, WriteMedicinesXLSX(buf, cards, metrics))

	f, err := excelize.OpenReader(bytes.NewReader(buf.Bytes()))
	require.NoError(t, err)
	defer func() { _ = f.Close() }()

	rows, err := f.GetRows(MedicinesSheet)
	require.NoError(t, err)
	require.Len(t, rows, len(cards)+1)
	require.Equal(t, "Name", rows[0][1])
	require.Equal(t, "Amoxicillin 500mg", rows[1][1])
	require.Equal(t, "45", rows[1][10])
	require.Equal(t, "low_stock", rows[1][12])

	// Free stock has no margin.
	var vitc []string
	for _, r := range rows {
		if r[0] == "med-vitc" {
			vitc = r
		}
	}
	require.NotNil(t, vitc)
	require.Equal(t, "", vitc[9])

	summary, err := f.GetRows(SummarySheet)
	require.NoError(t, err)
	require.Equal(t, []string{"Total Stock", "990"}, summary[3])
	require.Equal(t, []string{"Category Analgesics", "340"}, summary[7])
}

func TestStatusLabels(t *testing.T) {
	require.Equal(t, "out_of_stock", stockStatus(inventory.StockRow{Batch: catalog.Batch{Quantity: 0}}))
	require.Equal(t, "ok", stockStatus(inventory.StockRow{Batch: catalog.Batch{Quantity: 80}}))
	require.Equal(t, "out_of_stock", cardStatus(inventory.MedicineCard{IsOutOfStock: true, IsLowStock: true}))
	require.Equal(t, "12.50", formatMoney(decimal.RequireFromString("12.5")))
}
