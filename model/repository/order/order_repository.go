package order

import (
	"errors"
	"time"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	orderEntity "problemsolving.GO/model/entity/order"
)

type OrderRepository struct {
	db *gorm.DB
}

func NewOrderRepository(db *gorm.DB) *OrderRepository {
	return &OrderRepository{db: db}
}

// CandidateItem is an order item joined to its order number.
type CandidateItem struct {
	ID            uint64
	OrderNumber   string
	PickListID    int64
	PickListGroup *int64
	SKU           string
	Description   string
	QtyOrdered    decimal.Decimal
	BasketCode    *string
}

// FindByPickLists returns every item of the company on the given pick-lists, whatever its basket code.
// Rows are ordered by pick_list_id, order_number, sku.
func (r *OrderRepository) FindByPickLists(company string, pickListIDs []int64) ([]CandidateItem, error) {
	if len(pickListIDs) == 0 {
		return nil, nil
	}
	var rows []CandidateItem
	err := r.db.Table("order_items AS oi").
		Select("oi.id, o.order_number, oi.pick_list_id, oi.pick_list_group, oi.sku, oi.description, oi.qty_ordered, oi.basket_code").
		Joins("JOIN orders o ON o.id = oi.order_id AND o.company = oi.company").
		Where("oi.company = ? AND oi.pick_list_id IN ?", company, pickListIDs).
		Order("oi.pick_list_id, o.order_number, oi.sku, oi.id").
		Scan(&rows).Error
	return rows, err
}

// UpsertOrder finds an order by (company, order_number) or creates it.
func (r *OrderRepository) UpsertOrder(company, orderNumber string, registeredAt *time.Time, job string) (*orderEntity.Order, bool, error) {
	var o orderEntity.Order
	err := r.db.Where("company = ? AND order_number = ?", company, orderNumber).First(&o).Error
	if err == nil {
		if registeredAt != nil || job != "" {
			updates := map[string]interface{}{}
			if registeredAt != nil {
				updates["registered_at"] = registeredAt
			}
			if job != "" {
				updates["job"] = job
			}
			if err := r.db.Model(&o).Updates(updates).Error; err != nil {
				return nil, false, err
			}
		}
		return &o, false, nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, false, err
	}
	o = orderEntity.Order{Company: company, OrderNumber: orderNumber, RegisteredAt: registeredAt, Job: job}
	if err := r.db.Create(&o).Error; err != nil {
		return nil, false, err
	}
	return &o, true, nil
}

// UpsertItem inserts or refreshes an item on its natural key (company, order_id, pick_list_id, sku).
func (r *OrderRepository) UpsertItem(item *orderEntity.OrderItem) (bool, error) {
	var existing orderEntity.OrderItem
	err := r.db.Where("company = ? AND order_id = ? AND pick_list_id = ? AND sku = ?",
		item.Company, item.OrderID, item.PickListID, item.SKU).First(&existing).Error
	if err == nil {
		item.ID = existing.ID
		return false, r.db.Model(&existing).Updates(map[string]interface{}{
			"pick_list_group": item.PickListGroup,
			"qty_ordered":     item.QtyOrdered,
			"description":     item.Description,
			"basket_code":     item.BasketCode,
		}).Error
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return false, err
	}
	return true, r.db.Create(item).Error
}

// FindByGroupAndSKU returns the company's items for a pick-list group and sku.
func (r *OrderRepository) FindByGroupAndSKU(company string, group int64, sku string) ([]orderEntity.OrderItem, error) {
	var items []orderEntity.OrderItem
	err := r.db.Where("company = ? AND pick_list_group = ? AND sku = ?", company, group, sku).
		Order("id").Find(&items).Error
	return items, err
}

// CreatePickingEvents appends picking facts.
func (r *OrderRepository) CreatePickingEvents(events []orderEntity.PickingEvent) error {
	if len(events) == 0 {
		return nil
	}
	return r.db.CreateInBatches(events, 500).Error
}

// UpsertShipped records shipment facts on their natural key; an existing row takes the new quantity.
func (r *OrderRepository) UpsertShipped(rows []orderEntity.ShippedItem) error {
	if len(rows) == 0 {
		return nil
	}
	return r.db.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "company"}, {Name: "basket_code"}, {Name: "order_number"}, {Name: "pick_list_id"}, {Name: "sku"}},
		DoUpdates: clause.AssignmentColumns([]string{"qty_shipped", "description", "shipped_at"}),
	}).Create(&rows).Error
}

// ShippedForBasket returns the recorded shipment facts of a basket.
func (r *OrderRepository) ShippedForBasket(company, basket string) ([]orderEntity.ShippedItem, error) {
	var rows []orderEntity.ShippedItem
	err := r.db.Where("company = ? AND basket_code = ?", company, basket).
		Order("pick_list_id, order_number, sku").Find(&rows).Error
	return rows, err
}
