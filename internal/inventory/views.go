package inventory

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/pharmadesk/pharmadesk/internal/catalog"
)

// StockRow annotates a batch for the stock page.
type StockRow struct {
	catalog.Batch
	MedicineName    string  `json:"medicine_name"`
	StockPercentage float64 `json:"stock_percentage"`
	IsLowStock      bool    `json:"is_low_stock"`
	IsExpiring      bool    `json:"is_expiring"`
	IsExpired       bool    `json:"is_expired"`
	DaysToExpiry    int     `json:"days_to_expiry"`
}

// MedicineCard annotates a medicine with its aggregated stock state.
type MedicineCard struct {
	catalog.Medicine
	TotalStock         int                 `json:"total_stock"`
	BatchCount         int                 `json:"batch_count"`
	IsLowStock         bool                `json:"is_low_stock"`
	IsOutOfStock       bool                `json:"is_out_of_stock"`
	HasExpiringBatches bool                `json:"has_expiring_batches"`
	ProfitMargin       decimal.NullDecimal `json:"profit_margin"`
}

// SupplierRow annotates a supplier with display tiers.
type SupplierRow struct {
	catalog.Supplier
	LeadTimeTier LeadTimeTier `json:"lead_time_tier"`
	RatingStars  int          `json:"rating_stars"`
}

// Policy bundles the thresholds that views and alerts are derived with.
type Policy struct {
	LowStockThreshold int
	StockHorizon      Horizon
	CatalogHorizon    Horizon
	AlertHorizon      Horizon
}

// DefaultPolicy returns the stock policy used when nothing is configured.
func DefaultPolicy() Policy {
	return Policy{
		LowStockThreshold: LowStockThreshold,
		StockHorizon:      StockHorizon,
		CatalogHorizon:    CatalogHorizon,
		AlertHorizon:      AlertHorizon,
	}
}

func (p Policy) threshold() int {
	if p.LowStockThreshold <= 0 {
		return LowStockThreshold
	}
	return p.LowStockThreshold
}

// IndexMedicines maps medicines by id.
func IndexMedicines(medicines []catalog.Medicine) map[string]catalog.Medicine {
	index := make(map[string]catalog.Medicine, len(medicines))
	for _, m := range medicines {
		index[m.ID] = m
	}
	return index
}

// BuildStockRows annotates every batch. Batches referencing an unknown medicine keep an empty name.
func BuildStockRows(medicines []catalog.Medicine, batches []catalog.Batch, asOf time.Time, policy Policy) []StockRow {
	index := IndexMedicines(medicines)
	horizon := policy.StockHorizon
	if horizon.IsZero() {
		horizon = StockHorizon
	}
	rows := make([]StockRow, 0, len(batches))
	for _, b := range batches {
		rows = append(rows, StockRow{
			Batch:           b,
			MedicineName:    index[b.MedicineID].Name,
			StockPercentage: StockPercentage(b.Quantity, b.InitialQuantity),
			IsLowStock:      IsBelow(b.Quantity, policy.threshold()),
			IsExpiring:      IsExpiringWithin(b.ExpiryDate, asOf, horizon),
			IsExpired:       IsExpired(b.ExpiryDate, asOf),
			DaysToExpiry:    DaysUntil(b.ExpiryDate, asOf),
		})
	}
	return rows
}

// BuildMedicineCards aggregates batches per medicine for the catalog view.
func BuildMedicineCards(medicines []catalog.Medicine, batches []catalog.Batch, asOf time.Time, policy Policy) []MedicineCard {
	horizon := policy.CatalogHorizon
	if horizon.IsZero() {
		horizon = CatalogHorizon
	}
	byMedicine := make(map[string][]catalog.Batch)
	for _, b := range batches {
		byMedicine[b.MedicineID] = append(byMedicine[b.MedicineID], b)
	}
	cards := make([]MedicineCard, 0, len(medicines))
	for _, m := range medicines {
		own := byMedicine[m.ID]
		card := MedicineCard{Medicine: m, BatchCount: len(own)}
		for _, b := range own {
			card.TotalStock += b.Quantity
			if IsExpiringWithin(b.ExpiryDate, asOf, horizon) {
				card.HasExpiringBatches = true
			}
		}
		card.IsLowStock = IsBelow(card.TotalStock, policy.threshold())
		card.IsOutOfStock = card.TotalStock == 0
		if margin, err := ProfitMargin(m.UnitCost, m.SellingPrice); err == nil {
			card.ProfitMargin = decimal.NewNullDecimal(margin.Round(4))
		}
		cards = append(cards, card)
	}
	return cards
}

// BuildSupplierRows annotates suppliers with lead time tier and rating stars.
func BuildSupplierRows(suppliers []catalog.Supplier) []SupplierRow {
	rows := make([]SupplierRow, 0, len(suppliers))
	for _, s := range suppliers {
		rows = append(rows, SupplierRow{
			Supplier:     s,
			LeadTimeTier: LeadTimeTierFor(s.LeadTime),
			RatingStars:  RatingStars(s.Rating),
		})
	}
	return rows
}
