// Package jobs holds the built-in scheduled jobs.
package jobs

import (
	"context"
	"errors"
	"fmt"
	"log"

	"problemsolving.GO/config"
	"problemsolving.GO/cron"
	"problemsolving.GO/model/repository"
	"problemsolving.GO/service/inventory"
)

const InventoryRebuild = "inventoryrebuild"

func init() {
	cron.Register(InventoryRebuild, "0 5 * * *", RunInventoryRebuild)
}

// openDB opens the connection of one run; the pool is closed when the run ends.
var openDB = config.NewDB

// RunInventoryRebuild rebuilds the inventory snapshot of the companies given as args, or of every
// configured company when none is given.
func RunInventoryRebuild(args ...string) {
	db, err := openDB()
	if err != nil {
		log.Printf("[cron] %s: database: %v", InventoryRebuild, err)
		return
	}
	if sqlDB, err := db.DB(); err == nil {
		defer sqlDB.Close()
	}
	companies := args
	if len(companies) == 0 {
		list, err := config.LoadCompanies(config.LoadAppConfig().CompaniesFile)
		if err != nil {
			log.Printf("[cron] %s: companies: %v", InventoryRebuild, err)
			return
		}
		for _, c := range list {
			companies = append(companies, c.Key)
		}
	}
	svc := inventory.NewService(repository.NewStore(db))
	if _, err := RebuildAll(context.Background(), svc, companies); err != nil {
		log.Printf("[cron] %s: %v", InventoryRebuild, err)
	}
}

// RebuildAll rebuilds each company in turn. A failing company does not stop the others; the
// returned error joins every failure.
func RebuildAll(ctx context.Context, svc *inventory.Service, companies []string) (map[string]int, error) {
	rows := make(map[string]int, len(companies))
	var errs []error
	for _, raw := range companies {
		company := config.NormalizeCompany(raw)
		if company == "" {
			continue
		}
		n, err := svc.Rebuild(ctx, company)
		if err != nil {
			errs = append(errs, fmt.Errorf("%s: %w", company, err))
			continue
		}
		rows[company] = n
	}
	if len(rows) == 0 && len(errs) == 0 {
		log.Printf("[cron] %s: no companies configured", InventoryRebuild)
	}
	return rows, errors.Join(errs...)
}
