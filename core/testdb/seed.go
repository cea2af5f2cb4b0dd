package testdb

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	inventoryEntity "problemsolving.GO/model/entity/inventory"
	orderEntity "problemsolving.GO/model/entity/order"
)

// Int64 returns a pointer to v.
func Int64(v int64) *int64 {
	return &v
}

// Dec parses a decimal literal and fails the test on error.
func Dec(t testing.TB, v string) decimal.Decimal {
	t.Helper()
	d, err := decimal.NewFromString(v)
	if err != nil {
		t.Fatalf("decimal %q: %v", v, err)
	}
	return d
}

// OrderItem creates (or reuses) the order and inserts one item.
func OrderItem(t testing.TB, db *gorm.DB, company, orderNumber string, pickList int64, group *int64, sku, qty string, basket *string) *orderEntity.OrderItem {
	t.Helper()
	var o orderEntity.Order
	if err := db.Where(orderEntity.Order{Company: company, OrderNumber: orderNumber}).FirstOrCreate(&o).Error; err != nil {
		t.Fatalf("order %s: %v", orderNumber, err)
	}
	it := &orderEntity.OrderItem{
		Company:       company,
		OrderID:       o.ID,
		PickListID:    pickList,
		PickListGroup: group,
		SKU:           sku,
		QtyOrdered:    Dec(t, qty),
		BasketCode:    basket,
	}
	if err := db.Create(it).Error; err != nil {
		t.Fatalf("order item %s: %v", sku, err)
	}
	return it
}

// Picked appends a picking event for an item.
func Picked(t testing.TB, db *gorm.DB, item *orderEntity.OrderItem, unitLoad, qty string) {
	t.Helper()
	ev := &orderEntity.PickingEvent{
		Company:     item.Company,
		OrderItemID: item.ID,
		UnitLoadID:  unitLoad,
		QtyPicked:   Dec(t, qty),
	}
	if err := db.Create(ev).Error; err != nil {
		t.Fatalf("picking event: %v", err)
	}
}

// Stock inserts a snapshot row directly.
func Stock(t testing.TB, db *gorm.DB, company string, group int64, sku, unitLoad, qty string) {
	t.Helper()
	row := &inventoryEntity.Snapshot{
		Company:       company,
		PickListGroup: group,
		SKU:           sku,
		UnitLoadID:    unitLoad,
		Qty:           Dec(t, qty),
		LastUpdated:   time.Now(),
	}
	if err := db.Create(row).Error; err != nil {
		t.Fatalf("snapshot row: %v", err)
	}
}

// Located stores the position code of a unit-load.
func Located(t testing.TB, db *gorm.DB, company, unitLoad, positionCode string) {
	t.Helper()
	now := time.Now()
	row := &inventoryEntity.Location{
		Company:      company,
		UnitLoadID:   unitLoad,
		PositionCode: positionCode,
		LastMovement: &now,
		LastUpdated:  now,
	}
	if err := db.Create(row).Error; err != nil {
		t.Fatalf("location: %v", err)
	}
}
