package dashboardhttp

import (
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/shopspring/decimal"

	"github.com/pharmadesk/pharmadesk/internal/analytics"
	"github.com/pharmadesk/pharmadesk/internal/catalog"
	"github.com/pharmadesk/pharmadesk/internal/inventory"
	"github.com/pharmadesk/pharmadesk/internal/platform/httpx"
)

type salesResponse struct {
	Sales      []catalog.Sale                       `json:"sales"`
	Total      decimal.Decimal                      `json:"total"`
	Average    decimal.NullDecimal                  `json:"average"`
	TodayTotal decimal.Decimal                      `json:"today_total"`
	TodayCount int                                  `json:"today_count"`
	Counts     analytics.Counts[catalog.SaleStatus] `json:"counts"`
}

func (h *Handler) handleListSales(w http.ResponseWriter, r *http.Request) {
	asOf, err := h.asOf(r)
	if err != nil {
		h.respondError(w, r, "parse filters", err)
		return
	}
	sales := inventory.FilterSales(h.service.Snapshot().Sales, r.URL.Query().Get("search"))
	// Cancelled sales are listed but never counted towards revenue.
	billable := make([]catalog.Sale, 0, len(sales))
	for _, s := range sales {
		if s.Status != catalog.SaleCancelled {
			billable = append(billable, s)
		}
	}
	resp := salesResponse{
		Sales:  sales,
		Total:  analytics.SumFinalAmount(billable),
		Counts: analytics.CountByKeys(sales, catalog.SaleStatuses, func(s catalog.Sale) catalog.SaleStatus { return s.Status }),
	}
	avg, err := analytics.AverageFinalAmount(billable)
	switch {
	case err == nil:
		resp.Average = decimal.NewNullDecimal(avg.Round(2))
	case !errors.Is(err, analytics.ErrDivisionByZero):
		h.respondError(w, r, "average sale", err)
		return
	}
	today := analytics.SalesOn(sales, asOf)
	resp.TodayTotal = analytics.SumFinalAmount(today)
	resp.TodayCount = len(today)
	httpx.JSON(w, http.StatusOK, resp)
}

func (h *Handler) handleCreateSale(w http.ResponseWriter, r *http.Request) {
	var payload salePayload
	if !h.decode(w, r, &payload) {
		return
	}
	sale, err := h.store.CreateSale(r.Context(), payload.toSale())
	if err != nil {
		h.respondError(w, r, "create sale", err)
		return
	}
	httpx.JSON(w, http.StatusCreated, sale)
}

func (h *Handler) handleSaleStatus(w http.ResponseWriter, r *http.Request) {
	var payload saleStatusPayload
	if !h.decode(w, r, &payload) {
		return
	}
	sale, err := h.store.UpdateSaleStatus(r.Context(), chi.URLParam(r, "id"), catalog.SaleStatus(payload.Status))
	if err != nil {
		h.respondError(w, r, "update sale status", err)
		return
	}
	httpx.JSON(w, http.StatusOK, sale)
}
