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

type suppliersResponse struct {
	Suppliers []inventory.SupplierRow `json:"suppliers"`
	Active    int                     `json:"active"`
}

func (h *Handler) handleListSuppliers(w http.ResponseWriter, r *http.Request) {
	suppliers := inventory.FilterSuppliers(h.service.Snapshot().Suppliers, r.URL.Query().Get("search"))
	httpx.JSON(w, http.StatusOK, suppliersResponse{
		Suppliers: inventory.BuildSupplierRows(suppliers),
		Active:    analytics.CountWhere(suppliers, func(s catalog.Supplier) bool { return s.IsActive }),
	})
}

func (h *Handler) handleCreateSupplier(w http.ResponseWriter, r *http.Request) {
	var payload supplierPayload
	if !h.decode(w, r, &payload) {
		return
	}
	s, err := h.store.CreateSupplier(r.Context(), payload.toSupplier())
	if err != nil {
		h.respondError(w, r, "create supplier", err)
		return
	}
	httpx.JSON(w, http.StatusCreated, s)
}

func (h *Handler) handleUpdateSupplier(w http.ResponseWriter, r *http.Request) {
	var payload supplierPayload
	if !h.decode(w, r, &payload) {
		return
	}
	s, err := h.store.UpdateSupplier(r.Context(), chi.URLParam(r, "id"), payload.toSupplier())
	if err != nil {
		h.respondError(w, r, "update supplier", err)
		return
	}
	httpx.JSON(w, http.StatusOK, s)
}

type orderRow struct {
	catalog.PurchaseOrder
	SupplierName string `json:"supplier_name"`
}

type ordersResponse struct {
	Orders []orderRow                            `json:"orders"`
	Counts analytics.Counts[catalog.OrderStatus] `json:"counts"`
}

func (h *Handler) handleListOrders(w http.ResponseWriter, r *http.Request) {
	snap := h.service.Snapshot()
	status := catalog.OrderStatus(strings.TrimSpace(r.URL.Query().Get("status")))
	if status != "" && !status.Valid() {
		h.respondError(w, r, "parse filters", validationError{field: "status"})
		return
	}
	names := make(map[string]string, len(snap.Suppliers))
	for _, s := range snap.Suppliers {
		names[s.ID] = s.Name
	}
	orders := inventory.FilterOrders(snap.Orders, snap.Suppliers, r.URL.Query().Get("search"))
	rows := make([]orderRow, 0, len(orders))
	for _, o := range orders {
		if status != "" && o.Status != status {
			continue
		}
		rows = append(rows, orderRow{PurchaseOrder: o, SupplierName: names[o.SupplierID]})
	}
	httpx.JSON(w, http.StatusOK, ordersResponse{
		Orders: rows,
		Counts: analytics.CountByKeys(snap.Orders, catalog.OrderStatuses, func(o catalog.PurchaseOrder) catalog.OrderStatus { return o.Status }),
	})
}

func (h *Handler) handleCreateOrder(w http.ResponseWriter, r *http.Request) {
	var payload orderPayload
	if !h.decode(w, r, &payload) {
		return
	}
	known := false
	for _, s := range h.service.Snapshot().Suppliers {
		if s.ID == payload.SupplierID {
			known = true
			break
		}
	}
	if !known {
		h.respondError(w, r, "create order", validationError{field: "supplier_id"})
		return
	}
	po, err := h.store.CreateOrder(r.Context(), payload.toOrder())
	if err != nil {
		h.respondError(w, r, "create order", err)
		return
	}
	httpx.JSON(w, http.StatusCreated, po)
}

func (h *Handler) handleOrderStatus(w http.ResponseWriter, r *http.Request) {
	var payload orderStatusPayload
	if !h.decode(w, r, &payload) {
		return
	}
	po, err := h.store.UpdateOrderStatus(r.Context(), chi.URLParam(r, "id"), catalog.OrderStatus(payload.Status))
	if err != nil {
		h.respondError(w, r, "update order status", err)
		return
	}
	httpx.JSON(w, http.StatusOK, po)
}
