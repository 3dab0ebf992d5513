package main

import (
	"encoding/json"
	"flag"
	"fmt"
	"log"
	"os"
	"time"

	"github.com/pharmadesk/pharmadesk/internal/analytics"
	"github.com/pharmadesk/pharmadesk/internal/catalog"
	"github.com/pharmadesk/pharmadesk/internal/inventory"
	"github.com/pharmadesk/pharmadesk/internal/store"
)

// Checks a seed file by loading it the way the server does and printing the
// derived dashboard. With -dump the rebased data set is written as JSON.
func main() {
	path := flag.String("file", getenv("SEED_PATH", ""), "seed file; empty uses the embedded seed")
	date := flag.String("date", time.Now().UTC().Format(time.DateOnly), "day the seed is rebased to")
	dump := flag.Bool("dump", false, "write the rebased snapshot to stdout")
	flag.Parse()

	day, err := time.Parse(time.DateOnly, *date)
	if err != nil {
		log.Fatalf("parse date: %v", err)
	}

	snap, err := store.LoadSeedFile(*path, day)
	if err != nil {
		log.Fatalf("load seed: %v", err)
	}

	if *dump {
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		if err := enc.Encode(snap); err != nil {
			log.Fatalf("encode snapshot: %v", err)
		}
		return
	}

	fmt.Println("→ Validating records...")
	invalid := 0
	for _, m := range snap.Medicines {
		if err := m.Validate(); err != nil {
			fmt.Printf("  medicine %s: %v\n", m.ID, err)
			invalid++
		}
	}
	for _, b := range snap.Batches {
		if err := b.Validate(); err != nil {
			fmt.Printf("  batch %s: %v\n", b.ID, err)
			invalid++
		}
	}

	metrics := analytics.BuildDashboard(snap, day, inventory.DefaultPolicy())
	fmt.Println("→ Dashboard as of", day.Format(time.DateOnly))
	fmt.Printf("  medicines=%d stock=%d value=%s\n", metrics.TotalMedicines, metrics.TotalStock, metrics.TotalValue.StringFixed(2))
	fmt.Printf("  low_stock=%d expiry=%d pending_orders=%d\n", metrics.LowStockAlerts, metrics.ExpiryAlerts, metrics.PendingOrders)
	for _, sev := range catalog.Severities {
		fmt.Printf("  alerts[%s]=%d\n", sev, metrics.AlertsBySeverity.Get(sev))
	}
	if invalid > 0 {
		log.Fatalf("%d invalid records", invalid)
	}
	fmt.Println("✓ Seed OK")
}

func getenv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}
