package jobs

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"time"

	"github.com/hibiken/asynq"

	"github.com/pharmadesk/pharmadesk/internal/analytics"
	"github.com/pharmadesk/pharmadesk/internal/catalog"
	"github.com/pharmadesk/pharmadesk/internal/inventory"
	jobmetrics "github.com/pharmadesk/pharmadesk/internal/jobs"
	"github.com/pharmadesk/pharmadesk/internal/store"
)

var defaultJobMetrics = jobmetrics.NewMetrics(nil)

// SnapshotSource exposes the data set a scan reads.
type SnapshotSource interface {
	Snapshot() store.Snapshot
}

// DashboardWarmer builds and caches the dashboard for a day.
type DashboardWarmer interface {
	Dashboard(ctx context.Context, asOf time.Time) (analytics.DashboardMetrics, error)
}

// InventoryGauges receives the stock figures of a scan.
type InventoryGauges interface {
	SetInventory(units int, value float64, alerts map[string]int)
}

// ScanResult summarises one alert scan.
type ScanResult struct {
	AsOf     time.Time
	Units    int
	Value    float64
	Alerts   []catalog.StockAlert
	Severity analytics.Counts[catalog.Severity]
}

// AlertScanJob derives the current stock alerts on a schedule.
type AlertScanJob struct {
	Source  SnapshotSource
	Warmer  DashboardWarmer
	Gauges  InventoryGauges
	Policy  inventory.Policy
	Logger  *slog.Logger
	Metrics *jobmetrics.Metrics
	clock   func() time.Time
}

// NewAlertScanJob wires dependencies for the alert scan handler. Warmer and
// gauges are optional.
func NewAlertScanJob(source SnapshotSource, warmer DashboardWarmer, gauges InventoryGauges, policy inventory.Policy, logger *slog.Logger, metrics *jobmetrics.Metrics) *AlertScanJob {
	return &AlertScanJob{
		Source:  source,
		Warmer:  warmer,
		Gauges:  gauges,
		Policy:  policy,
		Logger:  logger,
		Metrics: metrics,
		clock: func() time.Time {
			return time.Now().UTC()
		},
	}
}

// Handle processes alert scan tasks.
func (j *AlertScanJob) Handle(ctx context.Context, t *asynq.Task) (err error) {
	if j == nil || j.Source == nil {
		return errors.New("alert scan: handler not configured")
	}
	var payload AlertScanPayload
	if jsonErr := json.Unmarshal(t.Payload(), &payload); jsonErr != nil {
		return asynq.SkipRetry
	}
	asOf := payload.AsOf
	if asOf.IsZero() {
		asOf = j.now()
	}

	tracker := j.metrics().Track(TaskAlertScan)
	defer func() {
		err = tracker.End(err)
	}()

	logger := j.logger().With(slog.String("as_of", analytics.StartOfDay(asOf).Format(time.DateOnly)))
	logger.Info("starting alert scan")
	start := time.Now()

	result := j.Scan(asOf)
	for _, a := range result.Alerts {
		if a.Severity != catalog.SeverityCritical {
			continue
		}
		logger.Warn("critical stock alert",
			slog.String("alert_id", a.ID),
			slog.String("medicine_id", a.MedicineID),
			slog.String("message", a.Message),
		)
	}
	gauges := make(map[string]int, len(catalog.Severities))
	for _, sev := range catalog.Severities {
		n := result.Severity.Get(sev)
		gauges[string(sev)] = n
		j.metrics().AddAlerts(string(sev), n)
	}
	if j.Gauges != nil {
		j.Gauges.SetInventory(result.Units, result.Value, gauges)
	}

	if j.Warmer != nil {
		warmCtx, cancel := context.WithTimeout(ctx, 20*time.Second)
		defer cancel()
		if _, err = j.Warmer.Dashboard(warmCtx, result.AsOf); err != nil {
			logger.Error("warm dashboard", slog.Any("error", err))
			return err
		}
	}

	logger.Info("completed alert scan",
		slog.Int("alerts", len(result.Alerts)),
		slog.Int("units", result.Units),
		slog.Duration("duration", time.Since(start)),
	)
	return nil
}

// Scan derives alerts and stock totals for the UTC day containing asOf.
// Dismissed alerts are excluded.
func (j *AlertScanJob) Scan(asOf time.Time) ScanResult {
	day := analytics.StartOfDay(asOf)
	snap := j.Source.Snapshot()
	alerts := snap.Alerts(day, j.Policy)
	return ScanResult{
		AsOf:     day,
		Units:    analytics.TotalUnits(snap.Batches),
		Value:    analytics.TotalStockValue(snap.Medicines, snap.Batches).InexactFloat64(),
		Alerts:   alerts,
		Severity: analytics.CountByKeys(alerts, catalog.Severities, func(a catalog.StockAlert) catalog.Severity { return a.Severity }),
	}
}

func (j *AlertScanJob) logger() *slog.Logger {
	if j.Logger != nil {
		return j.Logger.With(slog.String("job", TaskAlertScan))
	}
	return slog.Default().With(slog.String("job", TaskAlertScan))
}

func (j *AlertScanJob) metrics() *jobmetrics.Metrics {
	if j.Metrics != nil {
		return j.Metrics
	}
	return defaultJobMetrics
}

func (j *AlertScanJob) now() time.Time {
	if j.clock != nil {
		return j.clock()
	}
	return time.Now().UTC()
}
