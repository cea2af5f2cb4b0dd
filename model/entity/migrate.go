package entity

import (
	"gorm.io/gorm"

	inventoryEntity "problemsolving.GO/model/entity/inventory"
	missionEntity "problemsolving.GO/model/entity/mission"
	orderEntity "problemsolving.GO/model/entity/order"
)

// All returns every persisted model, in dependency order.
func All() []interface{} {
	return []interface{}{
		&orderEntity.Order{},
		&orderEntity.OrderItem{},
		&orderEntity.PickingEvent{},
		&orderEntity.ShippedItem{},
		&inventoryEntity.Snapshot{},
		&inventoryEntity.Location{},
		&missionEntity.Mission{},
		&missionEntity.Item{},
		&missionEntity.Check{},
	}
}

// AutoMigrate creates or updates the tables for every model.
func AutoMigrate(db *gorm.DB) error {
	return db.AutoMigrate(All()...)
}
