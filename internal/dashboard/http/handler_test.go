package dashboardhttp

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	miniredis "github.com/alicebob/miniredis/v2"
	"github.com/go-chi/chi/v5"
	"github.com/redis/go-redis/v9"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pharmadesk/pharmadesk/internal/analytics"
	"github.com/pharmadesk/pharmadesk/internal/catalog"
	"github.com/pharmadesk/pharmadesk/internal/inventory"
	"github.com/pharmadesk/pharmadesk/internal/platform/httpx"
	"github.com/pharmadesk/pharmadesk/internal/store"
)

var today = time.Date(2025, 3, 15, 0, 0, 0, 0, time.UTC)

type testEnv struct {
	router http.Handler
	store  *store.Store
}

func newTestEnv(t *testing.T) testEnv {
	t.Helper()
	seed, err := store.DefaultSeed(today)
	require.NoError(t, err)

	ids := 0
	st := store.New(seed,
		store.WithClock(func() time.Time { return today.Add(9 * time.Hour) }),
		store.WithIDs(func() string {
			ids++
			return fmt.Sprintf("id-%d", ids)
		}),
	)

	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })

	svc := analytics.NewService(st, analytics.NewCache(client, time.Minute), inventory.DefaultPolicy())
	st.OnChange(svc.Invalidate)

	h := NewHandler(nil, svc, st)
	h.WithNow(func() time.Time { return today.Add(14 * time.Hour) })
	r := chi.NewRouter()
	h.MountRoutes(r)
	return testEnv{router: r, store: st}
}

func (e testEnv) do(t *testing.T, method, target string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var reader *bytes.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(raw)
	} else {
		reader = bytes.NewReader(nil)
	}
	req := httptest.NewRequest(method, target, reader)
	req.Header.Set("Content-Type", "application/json")
	rr := httptest.NewRecorder()
	e.router.ServeHTTP(rr, req)
	return rr
}

func decodeBody[T any](t *testing.T, rr *httptest.ResponseRecorder) T {
	t.Helper()
	var out T
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &out), rr.Body.String())
	return out
}

func TestDashboard(t *testing.T) {
	env := newTestEnv(t)

	rr := env.do(t, http.MethodGet, "/api/dashboard", nil)
	require.Equal(t, http.StatusOK, rr.Code, rr.Body.String())
	m := decodeBody[analytics.DashboardMetrics](t, rr)
	assert.Equal(t, 990, m.TotalStock)
	assert.Equal(t, 3, m.LowStockAlerts)
	assert.Equal(t, 3, m.ExpiryAlerts)
	assert.True(t, m.TodaySales.Equal(decimal.RequireFromString("62.50")))
	assert.True(t, m.AsOf.Equal(today))

	rr = env.do(t, http.MethodGet, "/api/dashboard?as_of=15-03-2025", nil)
	require.Equal(t, http.StatusBadRequest, rr.Code)

	// Yesterday only holds one countable sale; the cancelled one is ignored.
	rr = env.do(t, http.MethodGet, "/api/dashboard?as_of=2025-03-14", nil)
	require.Equal(t, http.StatusOK, rr.Code)
	m = decodeBody[analytics.DashboardMetrics](t, rr)
	assert.Equal(t, 1, m.TodaySalesCount)
}

func TestMedicines(t *testing.T) {
	env := newTestEnv(t)

	rr := env.do(t, http.MethodGet, "/api/medicines?search=AMOX", nil)
	require.Equal(t, http.StatusOK, rr.Code)
	resp := decodeBody[medicinesResponse](t, rr)
	require.Len(t, resp.Medicines, 1)
	assert.Equal(t, 45, resp.Medicines[0].TotalStock)
	assert.True(t, resp.Medicines[0].IsLowStock)
	assert.Equal(t, 8, resp.Total)
	assert.Len(t, resp.Categories, 7)

	rr = env.do(t, http.MethodGet, "/api/medicines?category=Analgesics", nil)
	resp = decodeBody[medicinesResponse](t, rr)
	require.Len(t, resp.Medicines, 2)

	rr = env.do(t, http.MethodGet, "/api/medicines/categories", nil)
	require.Equal(t, http.StatusOK, rr.Code)
	assert.Contains(t, decodeBody[[]string](t, rr), "Supplements")
}

func TestMedicineMutations(t *testing.T) {
	env := newTestEnv(t)

	rr := env.do(t, http.MethodPost, "/api/medicines", map[string]any{"name": "Loratadine 10mg"})
	require.Equal(t, http.StatusBadRequest, rr.Code)
	problem := decodeBody[httpx.ProblemDetail](t, rr)
	assert.Contains(t, problem.Fields, "Category")

	rr = env.do(t, http.MethodPost, "/api/medicines", map[string]any{"name": "Loratadine 10mg", "colour": "blue"})
	require.Equal(t, http.StatusBadRequest, rr.Code)

	rr = env.do(t, http.MethodPost, "/api/medicines", map[string]any{
		"name":          "Loratadine 10mg",
		"category":      "Antihistamines",
		"unit_cost":     "1.10",
		"selling_price": "2.40",
	})
	require.Equal(t, http.StatusCreated, rr.Code, rr.Body.String())
	created := decodeBody[catalog.Medicine](t, rr)
	assert.Equal(t, "id-1", created.ID)

	rr = env.do(t, http.MethodGet, "/api/medicines", nil)
	assert.Equal(t, 9, decodeBody[medicinesResponse](t, rr).Total)

	rr = env.do(t, http.MethodGet, "/api/dashboard", nil)
	assert.Equal(t, 9, decodeBody[analytics.DashboardMetrics](t, rr).TotalMedicines, "mutation must invalidate cached dashboard")

	rr = env.do(t, http.MethodPut, "/api/medicines/missing", map[string]any{"name": "X", "category": "Y"})
	require.Equal(t, http.StatusNotFound, rr.Code)

	rr = env.do(t, http.MethodPut, "/api/medicines/id-1", map[string]any{"name": "Loratadine", "category": "Antihistamines", "unit_cost": "-1"})
	require.Equal(t, http.StatusBadRequest, rr.Code)

	rr = env.do(t, http.MethodDelete, "/api/medicines/id-1", nil)
	require.Equal(t, http.StatusNoContent, rr.Code)
	rr = env.do(t, http.MethodDelete, "/api/medicines/id-1", nil)
	require.Equal(t, http.StatusNotFound, rr.Code)
}

func TestStock(t *testing.T) {
	env := newTestEnv(t)

	rr := env.do(t, http.MethodGet, "/api/stock", nil)
	require.Equal(t, http.StatusOK, rr.Code)
	resp := decodeBody[stockResponse](t, rr)
	require.Len(t, resp.Rows, 11)
	assert.Equal(t, "PAR-2023-112", resp.Rows[0].BatchNumber, "soonest expiry first")
	assert.Equal(t, stockSummary{Batches: 11, Units: 990, LowStock: 5, Expiring: 2, Expired: 1}, resp.Summary)
	assert.Equal(t, inventory.Horizon{Days: 30}, resp.Horizon)

	rr = env.do(t, http.MethodGet, "/api/stock?horizon_days=180", nil)
	require.Equal(t, http.StatusOK, rr.Code)
	assert.Equal(t, 3, decodeBody[stockResponse](t, rr).Summary.Expiring)

	rr = env.do(t, http.MethodGet, "/api/stock?horizon_days=0", nil)
	require.Equal(t, http.StatusBadRequest, rr.Code)

	rr = env.do(t, http.MethodGet, "/api/stock?search=omp", nil)
	assert.Len(t, decodeBody[stockResponse](t, rr).Rows, 2)

	qty := 130
	rr = env.do(t, http.MethodPut, "/api/stock/b-amox-1", map[string]any{"quantity": qty, "location": "Shelf B2"})
	require.Equal(t, http.StatusOK, rr.Code, rr.Body.String())
	b := decodeBody[catalog.Batch](t, rr)
	assert.Equal(t, 130, b.Quantity)
	assert.Equal(t, 130, b.InitialQuantity)
	assert.Equal(t, "Shelf B2", b.Location)

	rr = env.do(t, http.MethodPut, "/api/stock/b-amox-1", map[string]any{"quantity": -3})
	require.Equal(t, http.StatusBadRequest, rr.Code)
	rr = env.do(t, http.MethodPut, "/api/stock/nope", map[string]any{"quantity": 3})
	require.Equal(t, http.StatusNotFound, rr.Code)
}

func TestSuppliersAndOrders(t *testing.T) {
	env := newTestEnv(t)

	rr := env.do(t, http.MethodGet, "/api/suppliers", nil)
	require.Equal(t, http.StatusOK, rr.Code)
	sup := decodeBody[suppliersResponse](t, rr)
	require.Len(t, sup.Suppliers, 4)
	assert.Equal(t, 3, sup.Active)

	rr = env.do(t, http.MethodPost, "/api/suppliers", map[string]any{"name": "NorthPharm", "email": "not-an-email"})
	require.Equal(t, http.StatusBadRequest, rr.Code)
	rr = env.do(t, http.MethodPost, "/api/suppliers", map[string]any{"name": "NorthPharm", "lead_time": 4, "rating": 4.5})
	require.Equal(t, http.StatusCreated, rr.Code)
	assert.True(t, decodeBody[catalog.Supplier](t, rr).IsActive)

	rr = env.do(t, http.MethodGet, "/api/orders?status=pending", nil)
	require.Equal(t, http.StatusOK, rr.Code)
	orders := decodeBody[ordersResponse](t, rr)
	require.Len(t, orders.Orders, 1)
	assert.NotEmpty(t, orders.Orders[0].SupplierName)
	assert.Equal(t, 1, orders.Counts.Get(catalog.OrderDelayed))

	rr = env.do(t, http.MethodGet, "/api/orders?status=lost", nil)
	require.Equal(t, http.StatusBadRequest, rr.Code)

	order := map[string]any{
		"order_number":      "PO-2025-0100",
		"supplier_id":       "sup-medisupply",
		"expected_delivery": today.AddDate(0, 0, 3),
		"items":             []map[string]any{{"medicine_id": "med-amox", "quantity": 10, "unit_cost": "8.00"}},
	}
	rr = env.do(t, http.MethodPost, "/api/orders", order)
	require.Equal(t, http.StatusCreated, rr.Code, rr.Body.String())
	po := decodeBody[catalog.PurchaseOrder](t, rr)
	assert.Equal(t, catalog.OrderPending, po.Status)
	assert.True(t, po.TotalAmount.Equal(decimal.NewFromInt(80)))

	order["supplier_id"] = "sup-unknown"
	rr = env.do(t, http.MethodPost, "/api/orders", order)
	require.Equal(t, http.StatusBadRequest, rr.Code)

	rr = env.do(t, http.MethodPost, "/api/orders", map[string]any{"order_number": "PO-1", "supplier_id": "sup-medisupply"})
	require.Equal(t, http.StatusBadRequest, rr.Code)

	rr = env.do(t, http.MethodPost, "/api/orders/"+po.ID+"/status", map[string]any{"status": "received"})
	require.Equal(t, http.StatusOK, rr.Code)
	assert.NotNil(t, decodeBody[catalog.PurchaseOrder](t, rr).ActualDelivery)

	rr = env.do(t, http.MethodPost, "/api/orders/po-1/status", map[string]any{"status": "pending"})
	require.Equal(t, http.StatusBadRequest, rr.Code, "received orders are final")
}

func TestSales(t *testing.T) {
	env := newTestEnv(t)

	rr := env.do(t, http.MethodGet, "/api/sales", nil)
	require.Equal(t, http.StatusOK, rr.Code)
	resp := decodeBody[salesResponse](t, rr)
	require.Len(t, resp.Sales, 6)
	assert.True(t, resp.Total.Equal(decimal.RequireFromString("96.10")), resp.Total.String())
	require.True(t, resp.Average.Valid)
	assert.True(t, resp.Average.Decimal.Equal(decimal.RequireFromString("19.22")))
	assert.True(t, resp.TodayTotal.Equal(decimal.RequireFromString("62.50")))
	assert.Equal(t, 3, resp.TodayCount)

	rr = env.do(t, http.MethodGet, "/api/sales?search=nobody", nil)
	resp = decodeBody[salesResponse](t, rr)
	assert.Empty(t, resp.Sales)
	assert.False(t, resp.Average.Valid)

	sale := map[string]any{
		"sale_number":    "SALE-2025-0144",
		"payment_method": "cash",
		"items":          []map[string]any{{"medicine_id": "med-amox", "batch_id": "b-amox-1", "quantity": 50, "unit_price": "12.50"}},
	}
	rr = env.do(t, http.MethodPost, "/api/sales", sale)
	require.Equal(t, http.StatusConflict, rr.Code, rr.Body.String())

	sale["items"] = []map[string]any{{"medicine_id": "med-para", "batch_id": "b-para-1", "quantity": 4, "unit_price": "2.50"}}
	sale["discount"] = "1.00"
	rr = env.do(t, http.MethodPost, "/api/sales", sale)
	require.Equal(t, http.StatusCreated, rr.Code, rr.Body.String())
	created := decodeBody[catalog.Sale](t, rr)
	assert.True(t, created.FinalAmount.Equal(decimal.NewFromInt(9)))
	assert.Equal(t, catalog.SaleCompleted, created.Status)

	sale["sale_number"] = "SALE-2025-0145"
	sale["discount"] = "20.00"
	rr = env.do(t, http.MethodPost, "/api/sales", sale)
	require.Equal(t, http.StatusBadRequest, rr.Code, "discount above the 10.00 total")
	sale["discount"] = "1.00"

	sale["payment_method"] = "cheque"
	rr = env.do(t, http.MethodPost, "/api/sales", sale)
	require.Equal(t, http.StatusBadRequest, rr.Code)

	rr = env.do(t, http.MethodPost, "/api/sales/s-3/status", map[string]any{"status": "cancelled"})
	require.Equal(t, http.StatusOK, rr.Code)
	rr = env.do(t, http.MethodPost, "/api/sales/s-3/status", map[string]any{"status": "completed"})
	require.Equal(t, http.StatusBadRequest, rr.Code)
}

func TestAlerts(t *testing.T) {
	env := newTestEnv(t)

	rr := env.do(t, http.MethodGet, "/api/alerts", nil)
	require.Equal(t, http.StatusOK, rr.Code)
	resp := decodeBody[alertsResponse](t, rr)
	require.Len(t, resp.Alerts, 6)
	assert.Equal(t, catalog.SeverityCritical, resp.Alerts[0].Severity)
	assert.Equal(t, 6, resp.Unread)

	rr = env.do(t, http.MethodGet, "/api/alerts?severity=critical", nil)
	assert.Len(t, decodeBody[alertsResponse](t, rr).Alerts, 2)
	rr = env.do(t, http.MethodGet, "/api/alerts?severity=urgent", nil)
	require.Equal(t, http.StatusBadRequest, rr.Code)
	rr = env.do(t, http.MethodGet, "/api/alerts?type=expired", nil)
	assert.Len(t, decodeBody[alertsResponse](t, rr).Alerts, 1)

	id := inventory.AlertID(catalog.AlertOutOfStock, "med-ibu", "")
	rr = env.do(t, http.MethodPost, "/api/alerts/"+id+"/read", nil)
	require.Equal(t, http.StatusNoContent, rr.Code)
	rr = env.do(t, http.MethodGet, "/api/alerts?unread=true", nil)
	resp = decodeBody[alertsResponse](t, rr)
	assert.Len(t, resp.Alerts, 5)
	assert.Equal(t, 5, resp.Unread)

	rr = env.do(t, http.MethodDelete, "/api/alerts/"+id, nil)
	require.Equal(t, http.StatusNoContent, rr.Code)
	rr = env.do(t, http.MethodGet, "/api/alerts", nil)
	assert.Len(t, decodeBody[alertsResponse](t, rr).Alerts, 5)
}

func TestActivity(t *testing.T) {
	env := newTestEnv(t)

	rr := env.do(t, http.MethodGet, "/api/activity", nil)
	require.Equal(t, http.StatusOK, rr.Code)
	resp := decodeBody[activityResponse](t, rr)
	require.Len(t, resp.Activity, 7)
	assert.Equal(t, "act-7", resp.Activity[0].ID)

	rr = env.do(t, http.MethodGet, "/api/activity?type=sale", nil)
	resp = decodeBody[activityResponse](t, rr)
	assert.Len(t, resp.Activity, 3)
	assert.Equal(t, 3, resp.Counts.Get(catalog.ActivitySale))

	rr = env.do(t, http.MethodGet, "/api/activity?type=login", nil)
	require.Equal(t, http.StatusBadRequest, rr.Code)

	require.NoError(t, env.store.DismissAlert(context.Background(), "expired:med-para:b-para-2"))
	rr = env.do(t, http.MethodGet, "/api/activity?type=alert", nil)
	resp = decodeBody[activityResponse](t, rr)
	require.NotEmpty(t, resp.Activity)
	assert.Equal(t, store.SystemUser, resp.Activity[0].UserID)
}

func TestReports(t *testing.T) {
	env := newTestEnv(t)

	for _, kind := range []string{"stock", "expiry", "sales", "dashboard", "usage"} {
		rr := env.do(t, http.MethodGet, "/api/reports/"+kind+".csv", nil)
		require.Equal(t, http.StatusOK, rr.Code, kind)
		assert.True(t, strings.HasPrefix(rr.Header().Get("Content-Type"), "text/csv"))
		assert.Contains(t, rr.Header().Get("Content-Disposition"), "pharmadesk-"+kind+"-2025-03-15.csv")
	}

	rr := env.do(t, http.MethodGet, "/api/reports/sales.csv", nil)
	assert.Contains(t, rr.Body.String(), "SALE-2025-0143")

	rr = env.do(t, http.MethodGet, "/api/reports/usage.csv", nil)
	lines := strings.Split(strings.TrimSpace(rr.Body.String()), "\n")
	require.Len(t, lines, 6)
	assert.Equal(t, "med-metf,Metformin 850mg,3,1,15.60", strings.TrimSpace(lines[1]))
	assert.NotContains(t, rr.Body.String(), "med-cetir")

	rr = env.do(t, http.MethodGet, "/api/reports/payroll.csv", nil)
	require.Equal(t, http.StatusNotFound, rr.Code)

	rr = env.do(t, http.MethodGet, "/api/medicines/export.xlsx", nil)
	require.Equal(t, http.StatusOK, rr.Code)
	assert.Contains(t, rr.Header().Get("Content-Type"), "spreadsheetml")
	assert.Greater(t, rr.Body.Len(), 1024)
}

func TestEmptyStoreReportsZeroCounts(t *testing.T) {
	st := store.New(store.Snapshot{})
	svc := analytics.NewService(st, nil, inventory.DefaultPolicy())
	h := NewHandler(nil, svc, st)
	h.WithNow(func() time.Time { return today })
	r := chi.NewRouter()
	h.MountRoutes(r)

	get := func(target string) map[string]json.RawMessage {
		rr := httptest.NewRecorder()
		r.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, target, nil))
		require.Equal(t, http.StatusOK, rr.Code, rr.Body.String())
		var body map[string]json.RawMessage
		require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &body))
		return body
	}

	dash := get("/api/dashboard")
	require.JSONEq(t, `{"low":0,"medium":0,"high":0,"critical":0}`, string(dash["alerts_by_severity"]))
	require.JSONEq(t, `{"pending":0,"received":0,"partial":0,"delayed":0,"cancelled":0}`, string(dash["orders_by_status"]))
	require.JSONEq(t, `{"completed":0,"pending":0,"cancelled":0}`, string(dash["sales_by_status"]))
	require.JSONEq(t, `{"sale":0,"purchase":0,"stock_update":0,"alert":0}`, string(dash["activity_by_type"]))

	require.JSONEq(t, `{"pending":0,"received":0,"partial":0,"delayed":0,"cancelled":0}`, string(get("/api/orders")["counts"]))
	require.JSONEq(t, `{"low":0,"medium":0,"high":0,"critical":0}`, string(get("/api/alerts")["counts"]))
	require.JSONEq(t, `{"completed":0,"pending":0,"cancelled":0}`, string(get("/api/sales")["counts"]))
	require.JSONEq(t, `{"sale":0,"purchase":0,"stock_update":0,"alert":0}`, string(get("/api/activity")["counts"]))
}
