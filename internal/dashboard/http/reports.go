package dashboardhttp

import (
	"bytes"
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"golang.org/x/sync/errgroup"

	"github.com/pharmadesk/pharmadesk/internal/analytics"
	"github.com/pharmadesk/pharmadesk/internal/analytics/export"
	"github.com/pharmadesk/pharmadesk/internal/inventory"
)

const (
	reportStock     = "stock"
	reportExpiry    = "expiry"
	reportSales     = "sales"
	reportDashboard = "dashboard"
	reportUsage     = "usage"
)

func (h *Handler) handleReportCSV(w http.ResponseWriter, r *http.Request) {
	kind := chi.URLParam(r, "kind")
	asOf, err := h.asOf(r)
	if err != nil {
		h.respondError(w, r, "parse filters", err)
		return
	}

	buf := h.csvPool.Get().(*bytes.Buffer)
	buf.Reset()
	defer func() {
		buf.Reset()
		h.csvPool.Put(buf)
	}()

	switch kind {
	case reportStock, reportExpiry:
		rows, _, err := h.stockRows(r)
		if err != nil {
			h.respondError(w, r, "parse filters", err)
			return
		}
		write := export.WriteStockCSV
		if kind == reportExpiry {
			write = export.WriteExpiryCSV
		}
		if err := write(buf, rows); err != nil {
			h.respondError(w, r, "write "+kind+" csv", err)
			return
		}
	case reportSales:
		if err := export.WriteSalesCSV(buf, h.service.Snapshot().Sales); err != nil {
			h.respondError(w, r, "write sales csv", err)
			return
		}
	case reportUsage:
		snap := h.service.Snapshot()
		if err := export.WriteUsageCSV(buf, analytics.UsageByMedicine(snap.Medicines, snap.Sales)); err != nil {
			h.respondError(w, r, "write usage csv", err)
			return
		}
	case reportDashboard:
		ctx, cancel := context.WithTimeout(r.Context(), requestTimeout)
		defer cancel()
		metrics, err := h.service.Dashboard(ctx, asOf)
		if err != nil {
			h.respondError(w, r, "load dashboard", err)
			return
		}
		if err := export.WriteDashboardCSV(buf, metrics); err != nil {
			h.respondError(w, r, "write dashboard csv", err)
			return
		}
	default:
		http.NotFound(w, r)
		return
	}

	filename := fmt.Sprintf("pharmadesk-%s-%s.csv", kind, asOf.Format(time.DateOnly))
	h.writeAttachment(w, "text/csv; charset=utf-8", filename, buf.Bytes())
}

// handleMedicinesXLSX renders the catalog workbook. The medicine cards and the
// dashboard summary load concurrently so the export reflects a single as-of day.
func (h *Handler) handleMedicinesXLSX(w http.ResponseWriter, r *http.Request) {
	asOf, err := h.asOf(r)
	if err != nil {
		h.respondError(w, r, "parse filters", err)
		return
	}
	ctx, cancel := context.WithTimeout(r.Context(), requestTimeout)
	defer cancel()

	var (
		cards   []inventory.MedicineCard
		metrics analytics.DashboardMetrics
	)
	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		snap := h.service.Snapshot()
		cards = inventory.BuildMedicineCards(snap.Medicines, snap.Batches, asOf, h.service.Policy())
		return nil
	})
	g.Go(func() error {
		m, err := h.service.Dashboard(ctx, asOf)
		if err != nil {
			return err
		}
		metrics = m
		return nil
	})
	if err := g.Wait(); err != nil {
		h.respondError(w, r, "load medicines", err)
		return
	}

	buf := &bytes.Buffer{}
	if err := export.WriteMedicinesXLSX(buf, cards, metrics); err != nil {
		h.respondError(w, r, "write medicines xlsx", err)
		return
	}
	filename := fmt.Sprintf("pharmadesk-medicines-%s.xlsx", asOf.Format(time.DateOnly))
	h.writeAttachment(w, "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet", filename, buf.Bytes())
}
