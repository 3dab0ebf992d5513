package jobs

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/hibiken/asynq"
	"github.com/stretchr/testify/require"
)

type fakeInspector struct {
	info *asynq.QueueInfo
	err  error
}

func (f fakeInspector) GetQueueInfo(string) (*asynq.QueueInfo, error) {
	return f.info, f.err
}

type fakeEnqueuer struct {
	asOf []time.Time
	err  error
}

func (f *fakeEnqueuer) EnqueueAlertScan(_ context.Context, asOf time.Time) (*asynq.TaskInfo, error) {
	if f.err != nil {
		return nil, f.err
	}
	f.asOf = append(f.asOf, asOf)
	return &asynq.TaskInfo{ID: "task-1", Queue: QueueDefault, Type: TaskAlertScan}, nil
}

func newJobsRouter(h *Handler) http.Handler {
	r := chi.NewRouter()
	h.MountRoutes(r)
	return r
}

func TestHealthWithoutInspector(t *testing.T) {
	rec := httptest.NewRecorder()
	newJobsRouter(NewHandler(nil, nil, nil)).ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/health", nil))
	require.Equal(t, http.StatusOK, rec.Code)

	var body queueHealth
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	require.Equal(t, QueueDefault, body.Queue)
	require.Zero(t, body.Pending)
}

func TestHealthReportsQueue(t *testing.T) {
	h := NewHandler(fakeInspector{info: &asynq.QueueInfo{Queue: QueueDefault, Pending: 3, Active: 1, Failed: 2}}, nil, nil)
	rec := httptest.NewRecorder()
	newJobsRouter(h).ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/health", nil))
	require.Equal(t, http.StatusOK, rec.Code)

	var body queueHealth
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	require.Equal(t, queueHealth{Queue: QueueDefault, Pending: 3, Active: 1, Failed: 2}, body)
}

func TestHealthInspectorFailure(t *testing.T) {
	h := NewHandler(fakeInspector{err: errors.New("dial tcp: refused")}, nil, nil)
	rec := httptest.NewRecorder()
	newJobsRouter(h).ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/health", nil))
	require.Equal(t, http.StatusServiceUnavailable, rec.Code)
	require.Equal(t, "application/problem+json", rec.Header().Get("Content-Type"))
}

func TestTriggerAlertScan(t *testing.T) {
	enq := &fakeEnqueuer{}
	router := newJobsRouter(NewHandler(nil, enq, nil))

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/alert-scan?as_of=2025-03-15", nil))
	require.Equal(t, http.StatusAccepted, rec.Code)

	var body enqueuedTask
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	require.Equal(t, enqueuedTask{ID: "task-1", Type: TaskAlertScan, Queue: QueueDefault, AsOf: "2025-03-15"}, body)
	require.Len(t, enq.asOf, 1)
	require.True(t, enq.asOf[0].Equal(time.Date(2025, 3, 15, 0, 0, 0, 0, time.UTC)))

	rec = httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/alert-scan", nil))
	require.Equal(t, http.StatusAccepted, rec.Code)
	require.True(t, enq.asOf[1].IsZero())

	rec = httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/alert-scan?as_of=15-03-2025", nil))
	require.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestTriggerAlertScanUnavailable(t *testing.T) {
	rec := httptest.NewRecorder()
	newJobsRouter(NewHandler(nil, nil, nil)).ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/alert-scan", nil))
	require.Equal(t, http.StatusServiceUnavailable, rec.Code)

	rec = httptest.NewRecorder()
	newJobsRouter(NewHandler(nil, &fakeEnqueuer{err: errors.New("queue full")}, nil)).
		ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/alert-scan", nil))
	require.Equal(t, http.StatusServiceUnavailable, rec.Code)
}

func TestNewWorkerRegistersCron(t *testing.T) {
	task := asynq.NewTask(TaskAlertScan, []byte(`{}`))
	w, err := NewWorker(WorkerConfig{
		RedisOpts: asynq.RedisClientOpt{Addr: "127.0.0.1:0"},
		Handlers:  []TaskHandler{{Type: TaskAlertScan, Handler: func(context.Context, *asynq.Task) error { return nil }}},
		Cron:      []CronRegistration{{Spec: "*/15 * * * *", Task: task}},
	})
	require.NoError(t, err)
	require.NotNil(t, w.scheduler)

	_, err = NewWorker(WorkerConfig{
		RedisOpts: asynq.RedisClientOpt{Addr: "127.0.0.1:0"},
		Cron:      []CronRegistration{{Spec: "not a cron", Task: task}},
	})
	require.Error(t, err)
}
