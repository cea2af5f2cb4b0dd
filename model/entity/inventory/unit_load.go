package inventory

import (
	"time"

	"github.com/shopspring/decimal"
)

// Snapshot is one row of the derived inventory snapshot: how much of SKU for a pick-list group
// sits on a unit-load (udc_inventory). Fully rebuildable from picking events.
type Snapshot struct {
	ID            uint64          `gorm:"column:id;primaryKey;autoIncrement" json:"id,omitempty"`
	Company       string          `gorm:"column:company;type:varchar(50);not null;index:idx_udc_inventory_lookup,priority:1" json:"company"`
	PickListGroup int64           `gorm:"column:pick_list_group;not null;index:idx_udc_inventory_lookup,priority:2" json:"pick_list_group"`
	SKU           string          `gorm:"column:sku;type:varchar(80);not null;index:idx_udc_inventory_lookup,priority:3" json:"sku"`
	UnitLoadID    string          `gorm:"column:unit_load_id;type:varchar(50);not null" json:"unit_load_id"`
	Qty           decimal.Decimal `gorm:"column:qty;type:decimal(18,3);not null" json:"qty"`
	LastUpdated   time.Time       `gorm:"column:last_updated" json:"last_updated"`
}

func (Snapshot) TableName() string {
	return "udc_inventory"
}

// Location is the last known physical slot of a unit-load (udc_locations).
type Location struct {
	Company      string     `gorm:"column:company;type:varchar(50);primaryKey" json:"company"`
	UnitLoadID   string     `gorm:"column:unit_load_id;type:varchar(50);primaryKey" json:"unit_load_id"`
	Warehouse    string     `gorm:"column:warehouse;type:varchar(20)" json:"warehouse"`
	Aisle        string     `gorm:"column:aisle;type:varchar(20)" json:"aisle"`
	Column       string     `gorm:"column:col;type:varchar(20)" json:"column"`
	Level        string     `gorm:"column:level;type:varchar(20)" json:"level"`
	Slot         string     `gorm:"column:slot;type:varchar(20)" json:"slot,omitempty"`
	Compartment  string     `gorm:"column:compartment;type:varchar(20)" json:"compartment,omitempty"`
	PositionCode string     `gorm:"column:position_code;type:varchar(120);not null" json:"position_code"`
	LastMovement *time.Time `gorm:"column:last_movement" json:"last_movement,omitempty"`
	LastUpdated  time.Time  `gorm:"column:last_updated" json:"last_updated"`
}

func (Location) TableName() string {
	return "udc_locations"
}
