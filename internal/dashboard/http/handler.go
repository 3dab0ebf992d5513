// Package dashboardhttp serves the pharmacy dashboard pages as a JSON API.
package dashboardhttp

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/go-playground/validator/v10"

	"github.com/pharmadesk/pharmadesk/internal/analytics"
	"github.com/pharmadesk/pharmadesk/internal/catalog"
	"github.com/pharmadesk/pharmadesk/internal/inventory"
	"github.com/pharmadesk/pharmadesk/internal/platform/httpx"
	"github.com/pharmadesk/pharmadesk/internal/store"
)

const requestTimeout = 2 * time.Second

// DashboardService exposes derived views over the current data set.
type DashboardService interface {
	Dashboard(ctx context.Context, asOf time.Time) (analytics.DashboardMetrics, error)
	Snapshot() store.Snapshot
	Policy() inventory.Policy
}

// Store applies mutations to the data set.
type Store interface {
	CreateMedicine(ctx context.Context, m catalog.Medicine) (catalog.Medicine, error)
	UpdateMedicine(ctx context.Context, id string, m catalog.Medicine) (catalog.Medicine, error)
	DeleteMedicine(ctx context.Context, id string) error
	UpdateBatch(ctx context.Context, id string, upd store.BatchUpdate) (catalog.Batch, error)
	CreateSupplier(ctx context.Context, s catalog.Supplier) (catalog.Supplier, error)
	UpdateSupplier(ctx context.Context, id string, s catalog.Supplier) (catalog.Supplier, error)
	CreateOrder(ctx context.Context, po catalog.PurchaseOrder) (catalog.PurchaseOrder, error)
	UpdateOrderStatus(ctx context.Context, id string, to catalog.OrderStatus) (catalog.PurchaseOrder, error)
	CreateSale(ctx context.Context, s catalog.Sale) (catalog.Sale, error)
	UpdateSaleStatus(ctx context.Context, id string, to catalog.SaleStatus) (catalog.Sale, error)
	MarkAlertRead(ctx context.Context, alertID string) error
	DismissAlert(ctx context.Context, alertID string) error
}

// Handler coordinates HTTP requests for the dashboard pages.
type Handler struct {
	logger    *slog.Logger
	service   DashboardService
	store     Store
	validator *validator.Validate
	csvPool   sync.Pool
	now       func() time.Time
}

// NewHandler constructs the dashboard HTTP handler.
func NewHandler(logger *slog.Logger, service DashboardService, st Store) *Handler {
	if logger == nil {
		logger = slog.Default()
	}
	h := &Handler{
		logger:    logger,
		service:   service,
		store:     st,
		validator: validator.New(),
		now:       time.Now,
	}
	h.csvPool.New = func() interface{} { return new(bytes.Buffer) }
	return h
}

// WithNow overrides the handler clock for testing.
func (h *Handler) WithNow(fn func() time.Time) {
	if fn != nil {
		h.now = fn
	}
}

type validationError struct {
	field string
}

func (v validationError) Error() string {
	return fmt.Sprintf("invalid %s", v.field)
}

// asOf reads the as_of query parameter, defaulting to the handler clock.
func (h *Handler) asOf(r *http.Request) (time.Time, error) {
	raw := strings.TrimSpace(r.URL.Query().Get("as_of"))
	if raw == "" {
		return analytics.StartOfDay(h.now()), nil
	}
	day, err := time.Parse(time.DateOnly, raw)
	if err != nil {
		return time.Time{}, validationError{field: "as_of"}
	}
	return day, nil
}

func (h *Handler) policyFor(r *http.Request) (inventory.Policy, error) {
	policy := h.service.Policy()
	raw := strings.TrimSpace(r.URL.Query().Get("horizon_days"))
	if raw == "" {
		return policy, nil
	}
	days, err := strconv.Atoi(raw)
	if err != nil || days < 1 || days > 3650 {
		return policy, validationError{field: "horizon_days"}
	}
	policy.StockHorizon = inventory.Horizon{Days: days}
	return policy, nil
}

// decode reads and validates a JSON payload. It writes the response itself on failure.
func (h *Handler) decode(w http.ResponseWriter, r *http.Request, target any) bool {
	if err := httpx.DecodeJSON(r, target); err != nil {
		httpx.RespondError(w, err)
		return false
	}
	if err := h.validator.Struct(target); err != nil {
		var verrs validator.ValidationErrors
		if !errors.As(err, &verrs) {
			h.respondError(w, r, "validate payload", err)
			return false
		}
		fields := make(map[string]string, len(verrs))
		for _, fieldErr := range verrs {
			fields[fieldErr.Field()] = fieldErr.Error()
		}
		httpx.ValidationProblem(w, fields)
		return false
	}
	return true
}

// respondError classifies domain failures before writing a problem response.
func (h *Handler) respondError(w http.ResponseWriter, r *http.Request, context string, err error) {
	var vErr validationError
	switch {
	case errors.As(err, &vErr):
		err = fmt.Errorf("%w: %v", httpx.ErrValidation, err)
	case errors.Is(err, store.ErrNotFound):
		err = fmt.Errorf("%w: %w", httpx.ErrNotFound, err)
	case errors.Is(err, catalog.ErrInvalidRecord), errors.Is(err, catalog.ErrInvalidTransition):
		err = fmt.Errorf("%w: %w", httpx.ErrValidation, err)
	case errors.Is(err, store.ErrInsufficientStock):
		err = fmt.Errorf("%w: %w", httpx.ErrConflict, err)
	case errors.Is(err, analytics.ErrDivisionByZero), errors.Is(err, inventory.ErrZeroUnitCost):
		err = fmt.Errorf("%w: %w", httpx.ErrUnprocessable, err)
	default:
		h.logger.Error(context, slog.Any("error", err), slog.String("path", r.URL.Path))
	}
	httpx.RespondError(w, err)
}

func (h *Handler) writeAttachment(w http.ResponseWriter, contentType, filename string, body []byte) {
	w.Header().Set("Content-Type", contentType)
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=\"%s\"", filename))
	if _, err := w.Write(body); err != nil {
		h.logger.Error("stream export", slog.Any("error", err), slog.String("file", filename))
	}
}
