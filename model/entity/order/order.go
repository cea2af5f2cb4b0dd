package order

import (
	"time"

	"github.com/shopspring/decimal"
)

// Order is a customer order as registered by the warehouse (orders table).
type Order struct {
	ID           uint64     `gorm:"column:id;primaryKey;autoIncrement" json:"id"`
	Company      string     `gorm:"column:company;type:varchar(50);not null;uniqueIndex:idx_orders_company_number,priority:1" json:"company"`
	OrderNumber  string     `gorm:"column:order_number;type:varchar(50);not null;uniqueIndex:idx_orders_company_number,priority:2" json:"order_number"`
	RegisteredAt *time.Time `gorm:"column:registered_at" json:"registered_at,omitempty"`
	Job          string     `gorm:"column:job;type:varchar(50)" json:"job,omitempty"`
	CreatedAt    time.Time  `gorm:"column:created_at" json:"created_at"`
}

func (Order) TableName() string {
	return "orders"
}

// OrderItem is one ordered SKU line on one pick-list.
type OrderItem struct {
	ID            uint64          `gorm:"column:id;primaryKey;autoIncrement" json:"id"`
	Company       string          `gorm:"column:company;type:varchar(50);not null;uniqueIndex:idx_order_items_natural,priority:1;index:idx_order_items_pick_list,priority:1" json:"company"`
	OrderID       uint64          `gorm:"column:order_id;not null;uniqueIndex:idx_order_items_natural,priority:2" json:"order_id"`
	PickListID    int64           `gorm:"column:pick_list_id;not null;uniqueIndex:idx_order_items_natural,priority:3;index:idx_order_items_pick_list,priority:2" json:"pick_list_id"`
	SKU           string          `gorm:"column:sku;type:varchar(80);not null;uniqueIndex:idx_order_items_natural,priority:4" json:"sku"`
	PickListGroup *int64          `gorm:"column:pick_list_group;index" json:"pick_list_group"`
	QtyOrdered    decimal.Decimal `gorm:"column:qty_ordered;type:decimal(18,3);not null" json:"qty_ordered"`
	Description   string          `gorm:"column:description;type:varchar(255)" json:"description,omitempty"`
	BasketCode    *string         `gorm:"column:basket_code;type:varchar(50)" json:"basket_code"`
	CreatedAt     time.Time       `gorm:"column:created_at" json:"created_at"`
	UpdatedAt     time.Time       `gorm:"column:updated_at" json:"updated_at"`
}

func (OrderItem) TableName() string {
	return "order_items"
}

// PickingEvent records that qty of an order item was picked into a unit-load. Immutable.
type PickingEvent struct {
	ID          uint64          `gorm:"column:id;primaryKey;autoIncrement" json:"id"`
	Company     string          `gorm:"column:company;type:varchar(50);not null;index" json:"company"`
	OrderItemID uint64          `gorm:"column:order_item_id;not null;index" json:"order_item_id"`
	UnitLoadID  string          `gorm:"column:unit_load_id;type:varchar(50);not null" json:"unit_load_id"`
	Cart        string          `gorm:"column:cart;type:varchar(50)" json:"cart,omitempty"`
	QtyPicked   decimal.Decimal `gorm:"column:qty_picked;type:decimal(18,3);not null" json:"qty_picked"`
	Operator    string          `gorm:"column:operator;type:varchar(50)" json:"operator,omitempty"`
	PickedAt    *time.Time      `gorm:"column:picked_at" json:"picked_at,omitempty"`
	CreatedAt   time.Time       `gorm:"column:created_at" json:"created_at"`
}

func (PickingEvent) TableName() string {
	return "picking_events"
}

// ShippedItem is a shipment-confirmation fact for one basket line.
type ShippedItem struct {
	ID          uint64          `gorm:"column:id;primaryKey;autoIncrement" json:"id"`
	Company     string          `gorm:"column:company;type:varchar(50);not null;uniqueIndex:idx_shipped_natural,priority:1" json:"company"`
	BasketCode  string          `gorm:"column:basket_code;type:varchar(50);not null;uniqueIndex:idx_shipped_natural,priority:2" json:"basket_code"`
	OrderNumber string          `gorm:"column:order_number;type:varchar(50);not null;uniqueIndex:idx_shipped_natural,priority:3" json:"order_number"`
	PickListID  int64           `gorm:"column:pick_list_id;not null;uniqueIndex:idx_shipped_natural,priority:4" json:"pick_list_id"`
	SKU         string          `gorm:"column:sku;type:varchar(80);not null;uniqueIndex:idx_shipped_natural,priority:5" json:"sku"`
	QtyShipped  decimal.Decimal `gorm:"column:qty_shipped;type:decimal(18,3);not null" json:"qty_shipped"`
	Description string          `gorm:"column:description;type:varchar(255)" json:"description,omitempty"`
	ShippedAt   *time.Time      `gorm:"column:shipped_at" json:"shipped_at,omitempty"`
	CreatedAt   time.Time       `gorm:"column:created_at" json:"created_at"`
}

func (ShippedItem) TableName() string {
	return "shipped_items"
}
