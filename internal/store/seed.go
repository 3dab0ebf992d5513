package store

import (
	_ "embed"
	"encoding/json"
	"fmt"
	"os"
	"time"
)

//go:embed seed.json
var defaultSeed []byte

// seedFile is the on-disk sample data format. Anchor is the calendar day the
// sample dates were authored against.
type seedFile struct {
	Anchor string `json:"anchor"`
	Snapshot
}

// DefaultSeed decodes the embedded sample data rebased onto today.
func DefaultSeed(today time.Time) (Snapshot, error) {
	return LoadSeed(defaultSeed, today)
}

// LoadSeedFile decodes sample data from path, falling back to the embedded seed when path is empty.
func LoadSeedFile(path string, today time.Time) (Snapshot, error) {
	if path == "" {
		return DefaultSeed(today)
	}
	raw, err := os.ReadFile(path)
	if err != nil {
		return Snapshot{}, fmt.Errorf("store: read seed: %w", err)
	}
	return LoadSeed(raw, today)
}

// LoadSeed decodes sample data and shifts every date by whole days so the
// anchor lands on today. Sample data keeps its relative shape (which batches
// expire soon, which sales happened today) regardless of when it is loaded.
func LoadSeed(raw []byte, today time.Time) (Snapshot, error) {
	var file seedFile
	if err := json.Unmarshal(raw, &file); err != nil {
		return Snapshot{}, fmt.Errorf("store: decode seed: %w", err)
	}
	snap := file.Snapshot
	if file.Anchor == "" || today.IsZero() {
		return snap, nil
	}
	anchor, err := time.Parse(time.DateOnly, file.Anchor)
	if err != nil {
		return Snapshot{}, fmt.Errorf("store: seed anchor: %w", err)
	}
	y, m, d := today.UTC().Date()
	days := int(time.Date(y, m, d, 0, 0, 0, 0, time.UTC).Sub(anchor).Hours() / 24)
	if days != 0 {
		snap = snap.shift(days)
	}
	return snap, nil
}

func shiftTime(t time.Time, days int) time.Time {
	if t.IsZero() {
		return t
	}
	return t.AddDate(0, 0, days)
}

// shift moves every timestamp in the snapshot by days. Called on a freshly
// decoded snapshot only.
func (s Snapshot) shift(days int) Snapshot {
	for i := range s.Medicines {
		s.Medicines[i].CreatedAt = shiftTime(s.Medicines[i].CreatedAt, days)
		s.Medicines[i].UpdatedAt = shiftTime(s.Medicines[i].UpdatedAt, days)
	}
	for i := range s.Batches {
		s.Batches[i].ManufactureDate = shiftTime(s.Batches[i].ManufactureDate, days)
		s.Batches[i].ExpiryDate = shiftTime(s.Batches[i].ExpiryDate, days)
		s.Batches[i].CreatedAt = shiftTime(s.Batches[i].CreatedAt, days)
	}
	for i := range s.Suppliers {
		s.Suppliers[i].CreatedAt = shiftTime(s.Suppliers[i].CreatedAt, days)
	}
	for i := range s.Orders {
		o := &s.Orders[i]
		o.OrderDate = shiftTime(o.OrderDate, days)
		o.ExpectedDelivery = shiftTime(o.ExpectedDelivery, days)
		if o.ActualDelivery != nil {
			delivered := shiftTime(*o.ActualDelivery, days)
			o.ActualDelivery = &delivered
		}
	}
	for i := range s.Sales {
		s.Sales[i].SaleDate = shiftTime(s.Sales[i].SaleDate, days)
	}
	for i := range s.Activity {
		s.Activity[i].Timestamp = shiftTime(s.Activity[i].Timestamp, days)
	}
	return s
}
