package cmd

import (
	"fmt"

	"problemsolving.GO/api"
	"problemsolving.GO/config"
	"problemsolving.GO/model/entity"
	"problemsolving.GO/service/shipment"
)

var companyFlag string

// OpenDeps connects and migrates the database and wires the services the same way the server does.
func OpenDeps() (*api.Deps, error) {
	cfg := config.LoadAppConfig()
	config.InitRedis()
	db, err := config.NewDB()
	if err != nil {
		return nil, fmt.Errorf("database connection failed: %w", err)
	}
	if err := entity.AutoMigrate(db); err != nil {
		return nil, fmt.Errorf("migrate: %w", err)
	}
	companies, err := config.LoadCompanies(cfg.CompaniesFile)
	if err != nil {
		return nil, err
	}
	provider := shipment.FromConfig(cfg, companies, config.RedisClient)
	return api.NewDeps(db, cfg, provider), nil
}

// Company returns the --company flag, falling back to DEFAULT_COMPANY.
func Company(deps *api.Deps) (string, error) {
	c := config.NormalizeCompany(companyFlag)
	if c == "" {
		c = deps.DefaultCompany
	}
	if c == "" {
		return "", fmt.Errorf("--company is required (or set DEFAULT_COMPANY)")
	}
	return c, nil
}
