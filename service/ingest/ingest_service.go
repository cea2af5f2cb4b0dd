// Package ingest loads orders, picking events and location snapshots into the store.
package ingest

import (
	"context"
	"fmt"
	"log"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	orderEntity "problemsolving.GO/model/entity/order"
	"problemsolving.GO/model/repository"
	"problemsolving.GO/service/inventory"
)

type Service struct {
	store     *repository.Store
	inventory *inventory.Service
}

func NewService(store *repository.Store, inv *inventory.Service) *Service {
	return &Service{store: store, inventory: inv}
}

// OrderInput is one ordered line of the order feed.
type OrderInput struct {
	OrderNumber   string          `json:"order_number"`
	PickListID    int64           `json:"pick_list_id"`
	PickListGroup *int64          `json:"pick_list_group"`
	SKU           string          `json:"sku"`
	QtyOrdered    decimal.Decimal `json:"qty_ordered"`
	Description   string          `json:"description"`
	BasketCode    *string         `json:"basket_code"`
	RegisteredAt  *time.Time      `json:"registered_at"`
	Job           string          `json:"job"`
}

type OrderResult struct {
	Received      int      `json:"received"`
	OrdersCreated int      `json:"orders_created"`
	ItemsCreated  int      `json:"items_created"`
	ItemsUpdated  int      `json:"items_updated"`
	Skipped       int      `json:"skipped"`
	Warnings      []string `json:"warnings,omitempty"`
}

// ImportOrders upserts orders by (company, order_number) and items by (company, order, pick-list, sku).
func (s *Service) ImportOrders(ctx context.Context, company string, rows []OrderInput) (*OrderResult, error) {
	res := &OrderResult{Received: len(rows)}
	err := s.store.Transaction(ctx, func(uow *repository.Store) error {
		orders := map[string]*orderEntity.Order{}
		for i, row := range rows {
			number := strings.TrimSpace(row.OrderNumber)
			sku := strings.TrimSpace(row.SKU)
			if number == "" || sku == "" || row.PickListID <= 0 {
				res.Skipped++
				res.Warnings = append(res.Warnings, fmt.Sprintf("row %d: order_number, sku and pick_list_id are required", i+1))
				continue
			}
			o, ok := orders[number]
			if !ok {
				var created bool
				var err error
				o, created, err = uow.Orders.UpsertOrder(company, number, row.RegisteredAt, row.Job)
				if err != nil {
					return fmt.Errorf("upsert order %s: %w", number, err)
				}
				if created {
					res.OrdersCreated++
				}
				orders[number] = o
			}
			item := &orderEntity.OrderItem{
				Company:       company,
				OrderID:       o.ID,
				PickListID:    row.PickListID,
				PickListGroup: row.PickListGroup,
				SKU:           sku,
				QtyOrdered:    row.QtyOrdered,
				Description:   row.Description,
				BasketCode:    blankToNil(row.BasketCode),
			}
			created, err := uow.Orders.UpsertItem(item)
			if err != nil {
				return fmt.Errorf("upsert item %s/%d/%s: %w", number, row.PickListID, sku, err)
			}
			if created {
				res.ItemsCreated++
			} else {
				res.ItemsUpdated++
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	log.Printf("[ingest] %s: orders created=%d items created=%d updated=%d skipped=%d",
		company, res.OrdersCreated, res.ItemsCreated, res.ItemsUpdated, res.Skipped)
	return res, nil
}

// PickingInput is one picking line: qty of sku for a pick-list group put on a unit-load.
type PickingInput struct {
	PickListGroup *int64          `json:"pick_list_group"`
	SKU           string          `json:"sku"`
	UnitLoadID    string          `json:"unit_load_id"`
	Cart          string          `json:"cart"`
	QtyPicked     decimal.Decimal `json:"qty_picked"`
	Operator      string          `json:"operator"`
	PickedAt      *time.Time      `json:"picked_at"`
}

type PickingResult struct {
	Received      int      `json:"received"`
	EventsCreated int      `json:"events_created"`
	Unmatched     int      `json:"unmatched"`
	Skipped       int      `json:"skipped"`
	SnapshotRows  int      `json:"snapshot_rows"`
	Warnings      []string `json:"warnings,omitempty"`
}

// ImportPicking appends one picking event per order item matching the line's (pick-list group, sku),
// then rebuilds the company's inventory snapshot.
func (s *Service) ImportPicking(ctx context.Context, company string, rows []PickingInput) (*PickingResult, error) {
	res := &PickingResult{Received: len(rows)}
	err := s.store.Transaction(ctx, func(uow *repository.Store) error {
		var events []orderEntity.PickingEvent
		for i, row := range rows {
			sku := strings.TrimSpace(row.SKU)
			udc := strings.TrimSpace(row.UnitLoadID)
			if row.PickListGroup == nil || sku == "" || udc == "" {
				res.Skipped++
				res.Warnings = append(res.Warnings, fmt.Sprintf("row %d: pick_list_group, sku and unit_load_id are required", i+1))
				continue
			}
			items, err := uow.Orders.FindByGroupAndSKU(company, *row.PickListGroup, sku)
			if err != nil {
				return err
			}
			if len(items) == 0 {
				res.Unmatched++
				continue
			}
			// Each matching item gets the full quantity, so the snapshot counts it once per item.
			for _, it := range items {
				events = append(events, orderEntity.PickingEvent{
					Company:     company,
					OrderItemID: it.ID,
					UnitLoadID:  udc,
					Cart:        strings.TrimSpace(row.Cart),
					QtyPicked:   row.QtyPicked,
					Operator:    row.Operator,
					PickedAt:    row.PickedAt,
				})
			}
		}
		res.EventsCreated = len(events)
		return uow.Orders.CreatePickingEvents(events)
	})
	if err != nil {
		return nil, err
	}
	n, err := s.inventory.Rebuild(ctx, company)
	if err != nil {
		return res, err
	}
	res.SnapshotRows = n
	log.Printf("[ingest] %s: picking events=%d unmatched=%d skipped=%d", company, res.EventsCreated, res.Unmatched, res.Skipped)
	return res, nil
}

// ImportLocations applies a position snapshot through the location directory.
func (s *Service) ImportLocations(ctx context.Context, company string, rows []inventory.LocationInput) (*inventory.LocationResult, error) {
	return s.inventory.UpsertLocations(ctx, company, rows)
}

func blankToNil(s *string) *string {
	if s == nil {
		return nil
	}
	v := strings.TrimSpace(*s)
	if v == "" {
		return nil
	}
	return &v
}
