package dashboardhttp

import (
	"context"
	"net/http"
	"slices"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/pharmadesk/pharmadesk/internal/inventory"
	"github.com/pharmadesk/pharmadesk/internal/platform/httpx"
)

func (h *Handler) handleDashboard(w http.ResponseWriter, r *http.Request) {
	asOf, err := h.asOf(r)
	if err != nil {
		h.respondError(w, r, "parse filters", err)
		return
	}
	ctx, cancel := context.WithTimeout(r.Context(), requestTimeout)
	defer cancel()

	metrics, err := h.service.Dashboard(ctx, asOf)
	if err != nil {
		h.respondError(w, r, "load dashboard", err)
		return
	}
	httpx.JSON(w, http.StatusOK, metrics)
}

type medicinesResponse struct {
	Medicines  []inventory.MedicineCard `json:"medicines"`
	Total      int                      `json:"total"`
	Categories []string                 `json:"categories"`
}

func (h *Handler) handleListMedicines(w http.ResponseWriter, r *http.Request) {
	asOf, err := h.asOf(r)
	if err != nil {
		h.respondError(w, r, "parse filters", err)
		return
	}
	snap := h.service.Snapshot()
	filtered := inventory.FilterMedicines(snap.Medicines, inventory.MedicineFilter{
		Search:   r.URL.Query().Get("search"),
		Category: r.URL.Query().Get("category"),
	})
	cards := inventory.BuildMedicineCards(filtered, snap.Batches, asOf, h.service.Policy())
	httpx.JSON(w, http.StatusOK, medicinesResponse{
		Medicines:  cards,
		Total:      len(snap.Medicines),
		Categories: inventory.Categories(snap.Medicines),
	})
}

func (h *Handler) handleCategories(w http.ResponseWriter, r *http.Request) {
	httpx.JSON(w, http.StatusOK, inventory.Categories(h.service.Snapshot().Medicines))
}

func (h *Handler) handleCreateMedicine(w http.ResponseWriter, r *http.Request) {
	var payload medicinePayload
	if !h.decode(w, r, &payload) {
		return
	}
	m, err := h.store.CreateMedicine(r.Context(), payload.toMedicine())
	if err != nil {
		h.respondError(w, r, "create medicine", err)
		return
	}
	httpx.JSON(w, http.StatusCreated, m)
}

func (h *Handler) handleUpdateMedicine(w http.ResponseWriter, r *http.Request) {
	var payload medicinePayload
	if !h.decode(w, r, &payload) {
		return
	}
	m, err := h.store.UpdateMedicine(r.Context(), chi.URLParam(r, "id"), payload.toMedicine())
	if err != nil {
		h.respondError(w, r, "update medicine", err)
		return
	}
	httpx.JSON(w, http.StatusOK, m)
}

func (h *Handler) handleDeleteMedicine(w http.ResponseWriter, r *http.Request) {
	if err := h.store.DeleteMedicine(r.Context(), chi.URLParam(r, "id")); err != nil {
		h.respondError(w, r, "delete medicine", err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

type stockSummary struct {
	Batches  int `json:"batches"`
	Units    int `json:"units"`
	LowStock int `json:"low_stock"`
	Expiring int `json:"expiring"`
	Expired  int `json:"expired"`
}

type stockResponse struct {
	Rows    []inventory.StockRow `json:"rows"`
	Summary stockSummary         `json:"summary"`
	Horizon inventory.Horizon    `json:"horizon"`
}

func summarizeStock(rows []inventory.StockRow) stockSummary {
	s := stockSummary{Batches: len(rows)}
	for _, r := range rows {
		s.Units += r.Quantity
		if r.IsLowStock {
			s.LowStock++
		}
		if r.IsExpired {
			s.Expired++
		} else if r.IsExpiring {
			s.Expiring++
		}
	}
	return s
}

// stockRows derives the stock view for the request, soonest expiry first.
func (h *Handler) stockRows(r *http.Request) ([]inventory.StockRow, inventory.Policy, error) {
	asOf, err := h.asOf(r)
	if err != nil {
		return nil, inventory.Policy{}, err
	}
	policy, err := h.policyFor(r)
	if err != nil {
		return nil, inventory.Policy{}, err
	}
	snap := h.service.Snapshot()
	rows := inventory.BuildStockRows(snap.Medicines, snap.Batches, asOf, policy)
	rows = inventory.FilterStockRows(rows, r.URL.Query().Get("search"))
	slices.SortStableFunc(rows, func(a, b inventory.StockRow) int {
		if c := a.ExpiryDate.Compare(b.ExpiryDate); c != 0 {
			return c
		}
		return strings.Compare(a.BatchNumber, b.BatchNumber)
	})
	return rows, policy, nil
}

func (h *Handler) handleListStock(w http.ResponseWriter, r *http.Request) {
	rows, policy, err := h.stockRows(r)
	if err != nil {
		h.respondError(w, r, "parse filters", err)
		return
	}
	httpx.JSON(w, http.StatusOK, stockResponse{
		Rows:    rows,
		Summary: summarizeStock(rows),
		Horizon: policy.StockHorizon,
	})
}

func (h *Handler) handleUpdateBatch(w http.ResponseWriter, r *http.Request) {
	var payload batchPayload
	if !h.decode(w, r, &payload) {
		return
	}
	b, err := h.store.UpdateBatch(r.Context(), chi.URLParam(r, "batchID"), payload.toUpdate())
	if err != nil {
		h.respondError(w, r, "update batch", err)
		return
	}
	httpx.JSON(w, http.StatusOK, b)
}
