package inventory

import (
	"time"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	inventoryEntity "problemsolving.GO/model/entity/inventory"
)

type InventoryRepository struct {
	db *gorm.DB
}

func NewInventoryRepository(db *gorm.DB) *InventoryRepository {
	return &InventoryRepository{db: db}
}

type aggregateRow struct {
	UnitLoadID    string
	SKU           string
	PickListGroup int64
	Qty           decimal.Decimal
}

// Rebuild replaces the company's snapshot with sums of its picking events grouped by
// (unit_load_id, sku, pick_list_group). Only positive sums are kept. Callers run it inside a transaction.
func (r *InventoryRepository) Rebuild(company string, now time.Time) (int, error) {
	if err := r.db.Where("company = ?", company).Delete(&inventoryEntity.Snapshot{}).Error; err != nil {
		return 0, err
	}

	var rows []aggregateRow
	err := r.db.Table("picking_events AS pe").
		Select("pe.unit_load_id AS unit_load_id, oi.sku AS sku, oi.pick_list_group AS pick_list_group, SUM(pe.qty_picked) AS qty").
		Joins("JOIN order_items oi ON oi.id = pe.order_item_id AND oi.company = pe.company").
		Where("pe.company = ? AND pe.qty_picked > 0 AND pe.unit_load_id IS NOT NULL AND pe.unit_load_id <> '' AND oi.sku IS NOT NULL AND oi.pick_list_group IS NOT NULL", company).
		Group("pe.unit_load_id, oi.sku, oi.pick_list_group").
		Having("SUM(pe.qty_picked) > 0").
		Order("oi.pick_list_group, oi.sku, pe.unit_load_id").
		Scan(&rows).Error
	if err != nil {
		return 0, err
	}
	if len(rows) == 0 {
		return 0, nil
	}

	snap := make([]inventoryEntity.Snapshot, 0, len(rows))
	for _, row := range rows {
		snap = append(snap, inventoryEntity.Snapshot{
			Company:       company,
			PickListGroup: row.PickListGroup,
			SKU:           row.SKU,
			UnitLoadID:    row.UnitLoadID,
			Qty:           row.Qty,
			LastUpdated:   now,
		})
	}
	if err := r.db.CreateInBatches(snap, 500).Error; err != nil {
		return 0, err
	}
	return len(snap), nil
}

// UnitLoadsFor returns the unit-loads holding a positive quantity of sku for a pick-list group.
func (r *InventoryRepository) UnitLoadsFor(company string, group int64, sku string) ([]inventoryEntity.Snapshot, error) {
	var rows []inventoryEntity.Snapshot
	err := r.db.Where("company = ? AND pick_list_group = ? AND sku = ? AND qty > 0", company, group, sku).
		Order("unit_load_id").Find(&rows).Error
	return rows, err
}

// List returns the company's snapshot in a stable order.
func (r *InventoryRepository) List(company string) ([]inventoryEntity.Snapshot, error) {
	var rows []inventoryEntity.Snapshot
	err := r.db.Where("company = ?", company).
		Order("pick_list_group, sku, unit_load_id").Find(&rows).Error
	return rows, err
}

// Count returns the number of snapshot rows of the company.
func (r *InventoryRepository) Count(company string) (int64, error) {
	var n int64
	err := r.db.Model(&inventoryEntity.Snapshot{}).Where("company = ?", company).Count(&n).Error
	return n, err
}
