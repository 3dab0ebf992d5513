package jobs

import (
	"encoding/json"
	"time"

	"github.com/hibiken/asynq"
)

const (
	// QueueDefault is the default queue name for background jobs.
	QueueDefault = "default"
	// TaskAlertScan derives stock alerts, refreshes inventory gauges and warms the dashboard cache.
	TaskAlertScan = "inventory:alert_scan"
)

// AlertScanPayload carries the optional as-of day of a scan. Zero means today.
type AlertScanPayload struct {
	AsOf time.Time `json:"as_of,omitempty"`
}

// NewAlertScanTask constructs an Asynq task for an alert scan.
func NewAlertScanTask(asOf time.Time) (*asynq.Task, error) {
	body, err := json.Marshal(AlertScanPayload{AsOf: asOf})
	if err != nil {
		return nil, err
	}
	return asynq.NewTask(TaskAlertScan, body, asynq.Queue(QueueDefault)), nil
}
