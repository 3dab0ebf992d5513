package dashboardhttp

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/httprate"

	"github.com/pharmadesk/pharmadesk/internal/platform/httpx"
)

// MountRoutes registers the dashboard API onto the router.
func (h *Handler) MountRoutes(r chi.Router) {
	if h == nil {
		return
	}
	limiter := httprate.Limit(10, time.Minute,
		httprate.WithKeyFuncs(httprate.KeyByIP),
		httprate.WithLimitHandler(func(w http.ResponseWriter, r *http.Request) {
			httpx.Problem(w, http.StatusTooManyRequests, "Too Many Requests", "export rate limit exceeded")
		}),
	)

	r.Route("/api", func(r chi.Router) {
		r.Get("/dashboard", h.handleDashboard)

		r.Route("/medicines", func(r chi.Router) {
			r.Get("/", h.handleListMedicines)
			r.Post("/", h.handleCreateMedicine)
			r.Get("/categories", h.handleCategories)
			r.With(limiter).Get("/export.xlsx", h.handleMedicinesXLSX)
			r.Put("/{id}", h.handleUpdateMedicine)
			r.Delete("/{id}", h.handleDeleteMedicine)
		})

		r.Get("/stock", h.handleListStock)
		r.Put("/stock/{batchID}", h.handleUpdateBatch)

		r.Route("/suppliers", func(r chi.Router) {
			r.Get("/", h.handleListSuppliers)
			r.Post("/", h.handleCreateSupplier)
			r.Put("/{id}", h.handleUpdateSupplier)
		})

		r.Route("/orders", func(r chi.Router) {
			r.Get("/", h.handleListOrders)
			r.Post("/", h.handleCreateOrder)
			r.Post("/{id}/status", h.handleOrderStatus)
		})

		r.Route("/sales", func(r chi.Router) {
			r.Get("/", h.handleListSales)
			r.Post("/", h.handleCreateSale)
			r.Post("/{id}/status", h.handleSaleStatus)
		})

		r.Route("/alerts", func(r chi.Router) {
			r.Get("/", h.handleListAlerts)
			r.Post("/{id}/read", h.handleReadAlert)
			r.Delete("/{id}", h.handleDismissAlert)
		})

		r.Get("/activity", h.handleListActivity)

		r.With(limiter).Get("/reports/{kind}.csv", h.handleReportCSV)
	})
}
