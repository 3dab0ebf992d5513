package dashboardhttp

import (
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/pharmadesk/pharmadesk/internal/analytics"
	"github.com/pharmadesk/pharmadesk/internal/catalog"
	"github.com/pharmadesk/pharmadesk/internal/inventory"
	"github.com/pharmadesk/pharmadesk/internal/platform/httpx"
)

type alertsResponse struct {
	Alerts []catalog.StockAlert               `json:"alerts"`
	Unread int                                `json:"unread"`
	Counts analytics.Counts[catalog.Severity] `json:"counts"`
}

func (h *Handler) alertFilter(r *http.Request) (inventory.AlertFilter, error) {
	q := r.URL.Query()
	var filter inventory.AlertFilter
	if raw := strings.TrimSpace(q.Get("severity")); raw != "" && raw != "all" {
		sev, err := catalog.ParseSeverity(raw)
		if err != nil {
			return filter, validationError{field: "severity"}
		}
		filter.Severity = sev
	}
	if raw := strings.TrimSpace(q.Get("type")); raw != "" && raw != "all" {
		switch t := catalog.AlertType(raw); t {
		case catalog.AlertLowStock, catalog.AlertOutOfStock, catalog.AlertExpired, catalog.AlertExpiryWarning:
			filter.Type = t
		default:
			return filter, validationError{field: "type"}
		}
	}
	filter.UnreadOnly = q.Get("unread") == "true"
	return filter, nil
}

func (h *Handler) handleListAlerts(w http.ResponseWriter, r *http.Request) {
	asOf, err := h.asOf(r)
	if err != nil {
		h.respondError(w, r, "parse filters", err)
		return
	}
	filter, err := h.alertFilter(r)
	if err != nil {
		h.respondError(w, r, "parse filters", err)
		return
	}
	all := h.service.Snapshot().Alerts(asOf, h.service.Policy())
	httpx.JSON(w, http.StatusOK, alertsResponse{
		Alerts: inventory.FilterAlerts(all, filter),
		Unread: analytics.CountWhere(all, func(a catalog.StockAlert) bool { return !a.IsRead }),
		Counts: analytics.CountByKeys(all, catalog.Severities, func(a catalog.StockAlert) catalog.Severity { return a.Severity }),
	})
}

func (h *Handler) handleReadAlert(w http.ResponseWriter, r *http.Request) {
	if err := h.store.MarkAlertRead(r.Context(), chi.URLParam(r, "id")); err != nil {
		h.respondError(w, r, "mark alert read", err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) handleDismissAlert(w http.ResponseWriter, r *http.Request) {
	if err := h.store.DismissAlert(r.Context(), chi.URLParam(r, "id")); err != nil {
		h.respondError(w, r, "dismiss alert", err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

type activityResponse struct {
	Activity []catalog.ActivityItem                 `json:"activity"`
	Counts   analytics.Counts[catalog.ActivityType] `json:"counts"`
}

func (h *Handler) handleListActivity(w http.ResponseWriter, r *http.Request) {
	t := catalog.ActivityType(strings.TrimSpace(r.URL.Query().Get("type")))
	switch t {
	case "", catalog.ActivitySale, catalog.ActivityPurchase, catalog.ActivityStockUpdate, catalog.ActivityAlert:
	case "all":
		t = ""
	default:
		h.respondError(w, r, "parse filters", validationError{field: "type"})
		return
	}
	items := h.service.Snapshot().Activity
	httpx.JSON(w, http.StatusOK, activityResponse{
		Activity: analytics.RecentActivity(inventory.FilterActivity(items, t), -1),
		Counts:   analytics.CountByKeys(items, catalog.ActivityTypes, func(a catalog.ActivityItem) catalog.ActivityType { return a.Type }),
	})
}
