package jobmetrics

import (
	"errors"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/require"
)

func TestTrackerRecordsOutcome(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := NewMetrics(reg)

	require.NoError(t, m.Track("inventory:alert_scan").End(nil))
	boom := errors.New("boom")
	require.ErrorIs(t, m.Track("inventory:alert_scan").End(boom), boom)

	require.Equal(t, 1.0, testutil.ToFloat64(m.runs.WithLabelValues("inventory:alert_scan", "success")))
	require.Equal(t, 1.0, testutil.ToFloat64(m.runs.WithLabelValues("inventory:alert_scan", "failure")))
	require.Equal(t, 1.0, testutil.ToFloat64(m.failures.WithLabelValues("inventory:alert_scan")))
}

func TestAddAlertsIgnoresEmptyCounts(t *testing.T) {
	m := NewMetrics(prometheus.NewRegistry())
	m.AddAlerts("critical", 2)
	m.AddAlerts("critical", 0)
	require.Equal(t, 2.0, testutil.ToFloat64(m.alerts.WithLabelValues("critical")))

	var nilMetrics *Metrics
	nilMetrics.AddAlerts("critical", 1)
	require.NoError(t, nilMetrics.Track("x").End(nil))
}
