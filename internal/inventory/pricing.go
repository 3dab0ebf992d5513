package inventory

import (
	"errors"
	"math"

	"github.com/shopspring/decimal"
)

// ErrZeroUnitCost is returned when a margin is requested for a free item.
var ErrZeroUnitCost = errors.New("inventory: margin undefined for zero unit cost")

// ProfitMargin returns (sellingPrice - unitCost) / unitCost as a ratio.
func ProfitMargin(unitCost, sellingPrice decimal.Decimal) (decimal.Decimal, error) {
	if unitCost.IsZero() {
		return decimal.Zero, ErrZeroUnitCost
	}
	return sellingPrice.Sub(unitCost).Div(unitCost), nil
}

// LeadTimeTier buckets supplier lead times.
type LeadTimeTier string

const (
	LeadTimeFast     LeadTimeTier = "fast"
	LeadTimeModerate LeadTimeTier = "moderate"
	LeadTimeSlow     LeadTimeTier = "slow"
)

// LeadTimeTierFor classifies days: up to 3 is fast, up to 5 moderate, slower otherwise.
func LeadTimeTierFor(days int) LeadTimeTier {
	switch {
	case days <= 3:
		return LeadTimeFast
	case days <= 5:
		return LeadTimeModerate
	default:
		return LeadTimeSlow
	}
}

// RatingStars returns the number of filled stars for a 0..5 rating.
func RatingStars(rating float64) int {
	return int(math.Floor(math.Max(0, math.Min(5, rating))))
}
