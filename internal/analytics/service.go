package analytics

import (
	"context"
	"time"

	"golang.org/x/sync/singleflight"

	"github.com/pharmadesk/pharmadesk/internal/inventory"
	"github.com/pharmadesk/pharmadesk/internal/store"
)

// SnapshotSource exposes the current data set.
type SnapshotSource interface {
	Snapshot() store.Snapshot
}

// Observer receives cache and build measurements.
type Observer interface {
	ObserveCache(view string, hit bool)
	ObserveBuild(view string, d time.Duration)
}

// Service coordinates dashboard computation with the cache layer.
type Service struct {
	source   SnapshotSource
	cache    *Cache
	policy   inventory.Policy
	observer Observer
	builds   singleflight.Group
}

// NewService wires a SnapshotSource with a Cache helper.
func NewService(source SnapshotSource, cache *Cache, policy inventory.Policy) *Service {
	return &Service{source: source, cache: cache, policy: policy}
}

// WithObserver attaches a metrics observer.
func (s *Service) WithObserver(o Observer) *Service {
	s.observer = o
	return s
}

// Policy returns the stock policy dashboards are derived with.
func (s *Service) Policy() inventory.Policy {
	return s.policy
}

// Snapshot returns the current data set.
func (s *Service) Snapshot() store.Snapshot {
	return s.source.Snapshot()
}

// StartOfDay truncates t to midnight UTC.
func StartOfDay(t time.Time) time.Time {
	y, m, d := t.UTC().Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

// Dashboard returns the metrics for the UTC day containing asOf. Results are
// cached per day and concurrent misses share one build.
func (s *Service) Dashboard(ctx context.Context, asOf time.Time) (DashboardMetrics, error) {
	if err := ctx.Err(); err != nil {
		return DashboardMetrics{}, err
	}
	day := StartOfDay(asOf)
	loader := func(ctx context.Context) (any, error) {
		start := time.Now()
		metrics := BuildDashboard(s.source.Snapshot(), day, s.policy)
		if s.observer != nil {
			s.observer.ObserveBuild("dashboard", time.Since(start))
		}
		return metrics, nil
	}

	key, err := s.cache.BuildKey(ctx, keyDashboard(day))
	if err != nil {
		return DashboardMetrics{}, err
	}
	value, err, _ := s.singleflight(ctx, key, func(ctx context.Context) (any, error) {
		var metrics DashboardMetrics
		hit, err := s.cache.FetchJSON(ctx, key, &metrics, loader)
		if err != nil {
			return DashboardMetrics{}, err
		}
		if s.observer != nil {
			s.observer.ObserveCache("dashboard", hit)
		}
		return metrics, nil
	})
	if err != nil {
		return DashboardMetrics{}, err
	}
	return value.(DashboardMetrics), nil
}

// Invalidate drops every cached view.
func (s *Service) Invalidate(ctx context.Context) error {
	return s.cache.Bump(ctx)
}

func (s *Service) singleflight(ctx context.Context, key string, fn func(context.Context) (any, error)) (any, error, bool) {
	resultChan := s.builds.DoChan(key, func() (any, error) {
		return fn(context.WithoutCancel(ctx))
	})
	select {
	case <-ctx.Done():
		return nil, ctx.Err(), false
	case res := <-resultChan:
		return res.Val, res.Err, res.Shared
	}
}
