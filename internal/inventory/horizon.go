package inventory

import (
	"fmt"
	"time"
)

// Horizon is an expiry look-ahead window. Months are applied with calendar
// arithmetic first, then Days as fixed 24h days.
type Horizon struct {
	Days   int `json:"days,omitempty"`
	Months int `json:"months,omitempty"`
}

// Default horizons used by the stock, catalog and alert views.
var (
	StockHorizon   = Horizon{Days: 30}
	CatalogHorizon = Horizon{Months: 6}
	AlertHorizon   = Horizon{Days: 30}
)

// Deadline returns the last instant still inside the horizon.
func (h Horizon) Deadline(asOf time.Time) time.Time {
	return asOf.AddDate(0, h.Months, 0).Add(time.Duration(h.Days) * day)
}

// IsZero reports whether the horizon is empty.
func (h Horizon) IsZero() bool {
	return h.Days == 0 && h.Months == 0
}

func (h Horizon) String() string {
	switch {
	case h.Months != 0 && h.Days != 0:
		return fmt.Sprintf("%d months %d days", h.Months, h.Days)
	case h.Months != 0:
		return fmt.Sprintf("%d months", h.Months)
	default:
		return fmt.Sprintf("%d days", h.Days)
	}
}

// IsExpiringWithin reports whether expiry is on or before the horizon deadline.
func IsExpiringWithin(expiry, asOf time.Time, h Horizon) bool {
	return !expiry.After(h.Deadline(asOf))
}
