// Package repository bundles the per-domain repositories into one unit of work.
package repository

import (
	"context"

	"gorm.io/gorm"

	inventoryRepo "problemsolving.GO/model/repository/inventory"
	locationRepo "problemsolving.GO/model/repository/location"
	missionRepo "problemsolving.GO/model/repository/mission"
	orderRepo "problemsolving.GO/model/repository/order"
)

// Store is a set of repositories bound to one *gorm.DB, either the pool or an open transaction.
type Store struct {
	db        *gorm.DB
	Orders    *orderRepo.OrderRepository
	Inventory *inventoryRepo.InventoryRepository
	Locations *locationRepo.LocationRepository
	Missions  *missionRepo.MissionRepository
}

func NewStore(db *gorm.DB) *Store {
	return &Store{
		db:        db,
		Orders:    orderRepo.NewOrderRepository(db),
		Inventory: inventoryRepo.NewInventoryRepository(db),
		Locations: locationRepo.NewLocationRepository(db),
		Missions:  missionRepo.NewMissionRepository(db),
	}
}

// DB returns the handle the store is bound to.
func (s *Store) DB() *gorm.DB {
	return s.db
}

// Transaction runs fn with a store bound to a transaction. Called on a store that is already
// transactional it opens a savepoint, so fn can fail without discarding the outer work.
func (s *Store) Transaction(ctx context.Context, fn func(uow *Store) error) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(NewStore(tx))
	})
}

// WithContext returns a non-transactional store scoped to ctx, for reads.
func (s *Store) WithContext(ctx context.Context) *Store {
	return NewStore(s.db.WithContext(ctx))
}
