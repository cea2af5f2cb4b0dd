package api

import (
	"context"

	"gorm.io/gorm"

	"problemsolving.GO/config"
	"problemsolving.GO/model/repository"
	"problemsolving.GO/service/check"
	"problemsolving.GO/service/ingest"
	"problemsolving.GO/service/inventory"
	"problemsolving.GO/service/mission"
	"problemsolving.GO/service/route"
)

// ShipmentCache drops cached shipment answers of a company.
type ShipmentCache interface {
	Invalidate(ctx context.Context, company string) (int, error)
}

// Deps is what route modules need: the database and the services built on it.
type Deps struct {
	DB             *gorm.DB
	Store          *repository.Store
	DefaultCompany string
	Missions       *mission.Builder
	Checks         *check.Service
	Routes         *route.Service
	Inventory      *inventory.Service
	Ingest         *ingest.Service
	Shipments      mission.ShipmentProvider
	ShipmentCache  ShipmentCache
}

// NewDeps wires the services over db. provider answers shipment lookups for mission creation.
func NewDeps(db *gorm.DB, cfg *config.Config, provider mission.ShipmentProvider) *Deps {
	store := repository.NewStore(db)
	inv := inventory.NewService(store)
	d := &Deps{
		DB:        db,
		Store:     store,
		Missions:  mission.NewBuilder(store, provider),
		Checks:    check.NewService(store),
		Routes:    route.NewService(store),
		Inventory: inv,
		Ingest:    ingest.NewService(store, inv),
		Shipments: provider,
	}
	if sc, ok := provider.(ShipmentCache); ok {
		d.ShipmentCache = sc
	}
	if cfg != nil {
		d.DefaultCompany = cfg.DefaultCompany
	}
	return d
}
