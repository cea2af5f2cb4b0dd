// Package shortfall computes what was ordered but not shipped for a basket.
package shortfall

import (
	"errors"
	"fmt"
	"sort"
	"time"

	"github.com/shopspring/decimal"

	"problemsolving.GO/core/apperr"
	"problemsolving.GO/model/repository"
)

// ErrNoPickLists is returned when the shipped records carry no usable pick-list id.
var ErrNoPickLists = fmt.Errorf("no pick-list ids in shipped items: %w", apperr.ErrUpstream)

// ShippedRecord is one shipment-confirmation line as delivered by the shipment provider.
type ShippedRecord struct {
	OrderNumber string          `json:"order_number"`
	PickListID  int64           `json:"pick_list_id"`
	SKU         string          `json:"sku"`
	QtyShipped  decimal.Decimal `json:"qty_shipped"`
	ShippedAt   *time.Time      `json:"shipped_at,omitempty"`
	Description string          `json:"description,omitempty"`
}

// Line is one shortfall: an order line on a pick-list with less shipped than ordered.
type Line struct {
	OrderNumber   string          `json:"order_number"`
	PickListID    int64           `json:"pick_list_id"`
	PickListGroup *int64          `json:"pick_list_group"`
	SKU           string          `json:"sku"`
	Description   string          `json:"description,omitempty"`
	QtyOrdered    decimal.Decimal `json:"qty_ordered"`
	QtyShipped    decimal.Decimal `json:"qty_shipped"`
	QtyMissing    decimal.Decimal `json:"qty_missing"`
	BasketCode    string          `json:"basket_code,omitempty"`
}

// Key identifies a shipped or ordered line.
type Key struct {
	OrderNumber string
	PickListID  int64
	SKU         string
}

// PickListIDs returns the distinct positive pick-list ids of the records, ascending.
func PickListIDs(shipped []ShippedRecord) []int64 {
	seen := make(map[int64]struct{}, len(shipped))
	ids := make([]int64, 0, len(shipped))
	for _, s := range shipped {
		if s.PickListID <= 0 {
			continue
		}
		if _, ok := seen[s.PickListID]; ok {
			continue
		}
		seen[s.PickListID] = struct{}{}
		ids = append(ids, s.PickListID)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
	return ids
}

// ShippedTotals sums shipped quantities per (order_number, pick_list_id, sku).
func ShippedTotals(shipped []ShippedRecord) map[Key]decimal.Decimal {
	out := make(map[Key]decimal.Decimal, len(shipped))
	for _, s := range shipped {
		k := Key{OrderNumber: s.OrderNumber, PickListID: s.PickListID, SKU: s.SKU}
		out[k] = out[k].Add(s.QtyShipped)
	}
	return out
}

// FindMissing compares the company's ordered items on the shipped pick-lists with the shipped quantities.
// Candidates are selected by pick-list only, never by basket code: order lines with a missing or
// inconsistent basket code still belong to the pick-list that was shipped.
// It returns ErrNoPickLists when no pick-list id can be extracted.
func FindMissing(uow *repository.Store, company, basket string, shipped []ShippedRecord) ([]Line, error) {
	ids := PickListIDs(shipped)
	if len(ids) == 0 {
		return nil, ErrNoPickLists
	}
	totals := ShippedTotals(shipped)

	candidates, err := uow.Orders.FindByPickLists(company, ids)
	if err != nil {
		return nil, fmt.Errorf("load order items for basket %s: %w", basket, err)
	}

	var lines []Line
	for _, c := range candidates {
		qtyShipped := totals[Key{OrderNumber: c.OrderNumber, PickListID: c.PickListID, SKU: c.SKU}]
		missing := c.QtyOrdered.Sub(qtyShipped)
		if !missing.IsPositive() {
			continue
		}
		lines = append(lines, Line{
			OrderNumber:   c.OrderNumber,
			PickListID:    c.PickListID,
			PickListGroup: c.PickListGroup,
			SKU:           c.SKU,
			Description:   c.Description,
			QtyOrdered:    c.QtyOrdered,
			QtyShipped:    qtyShipped,
			QtyMissing:    missing,
			BasketCode:    basket,
		})
	}
	return lines, nil
}

// IsNoPickLists reports whether err is the missing pick-list condition.
func IsNoPickLists(err error) bool {
	return errors.Is(err, ErrNoPickLists)
}
