package mission

import (
	"time"

	"github.com/shopspring/decimal"
)

// Mission statuses.
const (
	StatusOpen       = "OPEN"
	StatusInProgress = "IN_PROGRESS"
	StatusCompleted  = "COMPLETED"
	StatusCancelled  = "CANCELLED"
)

// Position check statuses. Everything but TO_CHECK is terminal.
const (
	CheckToCheck     = "TO_CHECK"
	CheckFound       = "FOUND"
	CheckNotFound    = "NOT_FOUND"
	CheckSkippedAuto = "SKIPPED_AUTO"
)

// ValidStatus reports whether s is one of the four stored mission statuses.
func ValidStatus(s string) bool {
	switch s {
	case StatusOpen, StatusInProgress, StatusCompleted, StatusCancelled:
		return true
	}
	return false
}

// Mission is a search campaign for the missing items of one or more baskets.
type Mission struct {
	ID                  uint64     `gorm:"column:id;primaryKey;autoIncrement" json:"id"`
	Company             string     `gorm:"column:company;type:varchar(50);not null;uniqueIndex:idx_missions_code,priority:1;index:idx_missions_guard,priority:1" json:"company"`
	MissionCode         string     `gorm:"column:mission_code;type:varchar(30);not null;uniqueIndex:idx_missions_code,priority:2" json:"mission_code"`
	BasketCode          string     `gorm:"column:basket_code;type:varchar(500);not null;index:idx_missions_guard,priority:2" json:"basket_code"`
	ReferencePickListID *int64     `gorm:"column:reference_pick_list_id;index:idx_missions_guard,priority:3" json:"reference_pick_list_id"`
	Status              string     `gorm:"column:status;type:varchar(20);not null;default:OPEN;index" json:"status"`
	CreatedBy           string     `gorm:"column:created_by;type:varchar(50)" json:"created_by"`
	CreatedAt           time.Time  `gorm:"column:created_at" json:"created_at"`
	StartedAt           *time.Time `gorm:"column:started_at" json:"started_at"`
	CompletedAt         *time.Time `gorm:"column:completed_at" json:"completed_at"`
	Notes               string     `gorm:"column:notes;type:text" json:"notes,omitempty"`

	Items []Item `gorm:"foreignKey:MissionID" json:"items,omitempty"`
}

func (Mission) TableName() string {
	return "missions"
}

// Item is one shortfall line of a mission.
type Item struct {
	ID            uint64          `gorm:"column:id;primaryKey;autoIncrement" json:"id"`
	Company       string          `gorm:"column:company;type:varchar(50);not null;index" json:"company"`
	MissionID     uint64          `gorm:"column:mission_id;not null;index" json:"mission_id"`
	OrderNumber   string          `gorm:"column:order_number;type:varchar(50);not null" json:"order_number"`
	PickListID    int64           `gorm:"column:pick_list_id;not null" json:"pick_list_id"`
	SKU           string          `gorm:"column:sku;type:varchar(80);not null" json:"sku"`
	Description   string          `gorm:"column:description;type:varchar(255)" json:"description,omitempty"`
	PickListGroup *int64          `gorm:"column:pick_list_group" json:"pick_list_group"`
	QtyOrdered    decimal.Decimal `gorm:"column:qty_ordered;type:decimal(18,3);not null" json:"qty_ordered"`
	QtyShipped    decimal.Decimal `gorm:"column:qty_shipped;type:decimal(18,3);not null" json:"qty_shipped"`
	QtyMissing    decimal.Decimal `gorm:"column:qty_missing;type:decimal(18,3);not null" json:"qty_missing"`
	QtyFound      decimal.Decimal `gorm:"column:qty_found;type:decimal(18,3);not null;default:0" json:"qty_found"`
	IsResolved    bool            `gorm:"column:is_resolved;not null;default:false" json:"is_resolved"`
	ResolvedAt    *time.Time      `gorm:"column:resolved_at" json:"resolved_at"`
	BasketCodes   string          `gorm:"column:basket_codes;type:varchar(500)" json:"basket_codes"`
	CreatedAt     time.Time       `gorm:"column:created_at" json:"created_at"`
}

func (Item) TableName() string {
	return "mission_items"
}

// Remaining is qty_missing - qty_found, floored at zero.
func (i *Item) Remaining() decimal.Decimal {
	r := i.QtyMissing.Sub(i.QtyFound)
	if r.IsNegative() {
		return decimal.Zero
	}
	return r
}

// Check is one candidate physical position to search for one mission item.
type Check struct {
	ID            uint64              `gorm:"column:id;primaryKey;autoIncrement" json:"id"`
	Company       string              `gorm:"column:company;type:varchar(50);not null;index" json:"company"`
	MissionID     uint64              `gorm:"column:mission_id;not null;index" json:"mission_id"`
	MissionItemID uint64              `gorm:"column:mission_item_id;not null;index" json:"mission_item_id"`
	UnitLoadID    string              `gorm:"column:unit_load_id;type:varchar(50);not null" json:"unit_load_id"`
	PickListGroup int64               `gorm:"column:pick_list_group;not null" json:"pick_list_group"`
	PositionCode  string              `gorm:"column:position_code;type:varchar(120);not null" json:"position_code"`
	Status        string              `gorm:"column:status;type:varchar(20);not null;default:TO_CHECK;index" json:"status"`
	Found         *bool               `gorm:"column:found" json:"found"`
	QtyFound      decimal.NullDecimal `gorm:"column:qty_found;type:decimal(18,3)" json:"qty_found"`
	CheckedAt     *time.Time          `gorm:"column:checked_at" json:"checked_at"`
	CheckedBy     string              `gorm:"column:checked_by;type:varchar(50)" json:"checked_by,omitempty"`
	Notes         string              `gorm:"column:notes;type:text" json:"notes,omitempty"`
	CreatedAt     time.Time           `gorm:"column:created_at" json:"created_at"`
}

func (Check) TableName() string {
	return "position_checks"
}
