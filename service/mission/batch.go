package mission

import (
	"context"
	"errors"
	"fmt"
	"log"
	"sort"
	"strings"

	"golang.org/x/sync/errgroup"

	"problemsolving.GO/core/apperr"
	"problemsolving.GO/core/metrics"
	missionEntity "problemsolving.GO/model/entity/mission"
	"problemsolving.GO/model/repository"
	"problemsolving.GO/service/shortfall"
)

// Per-basket outcomes of a batch.
const (
	BasketShortfall      = "SHORTFALL"
	BasketNothingMissing = "NOTHING_MISSING"
	BasketError          = "ERROR"
)

// BasketOutcome is what happened to one basket of a batch.
type BasketOutcome struct {
	BasketCode   string `json:"basket_code"`
	Status       string `json:"status"`
	MissingItems int    `json:"missing_items"`
	Message      string `json:"message,omitempty"`
}

// BatchResult summarizes a multi-basket creation.
type BatchResult struct {
	MissionCreated   bool                   `json:"mission_created"`
	AlreadyExists    bool                   `json:"already_exists"`
	Mission          *missionEntity.Mission `json:"mission,omitempty"`
	Baskets          []BasketOutcome        `json:"baskets"`
	Processed        int                    `json:"baskets_processed"`
	WithShortfall    int                    `json:"baskets_with_shortfall"`
	NothingMissing   int                    `json:"baskets_nothing_missing"`
	Errored          int                    `json:"baskets_errored"`
	ItemsCreated     int                    `json:"items_created"`
	PositionsCreated int                    `json:"positions_created"`
	Notes            []string               `json:"notes,omitempty"`
	Message          string                 `json:"message"`
}

// groupKey merges shortfall lines across baskets. Order number and pick-list are part of the key so
// that the same sku in one pick-list group is never merged across different orders.
type groupKey struct {
	SKU         string
	Group       int64
	HasGroup    bool
	OrderNumber string
	PickListID  int64
}

func keyOf(l shortfall.Line) groupKey {
	k := groupKey{SKU: l.SKU, OrderNumber: l.OrderNumber, PickListID: l.PickListID}
	if l.PickListGroup != nil {
		k.Group, k.HasGroup = *l.PickListGroup, true
	}
	return k
}

type fetched struct {
	shipped []shortfall.ShippedRecord
	err     error
}

// DedupeBaskets trims the codes and drops blanks and repeats, keeping first-seen order.
func DedupeBaskets(codes []string) []string {
	seen := make(map[string]bool, len(codes))
	out := make([]string, 0, len(codes))
	for _, c := range codes {
		c = strings.TrimSpace(c)
		if c == "" || seen[c] {
			continue
		}
		seen[c] = true
		out = append(out, c)
	}
	return out
}

// CreateBatch builds one mission covering the shortfalls of several baskets. A basket whose shipment
// cannot be fetched or used is reported as ERROR and does not stop the others. The returned error is
// non-nil only for storage failures, or with ErrUpstream when every basket failed.
func (b *Builder) CreateBatch(ctx context.Context, company string, baskets []string, createdBy string) (*BatchResult, error) {
	list := DedupeBaskets(baskets)
	if len(list) == 0 {
		return nil, apperr.Invalid("no basket codes given")
	}

	results := make([]fetched, len(list))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(b.fetchLimit)
	for i, basket := range list {
		i, basket := i, basket
		g.Go(func() error {
			shipped, err := b.fetch(gctx, company, basket)
			results[i] = fetched{shipped: shipped, err: err}
			return nil
		})
	}
	_ = g.Wait()

	res := &BatchResult{Processed: len(list), Baskets: make([]BasketOutcome, 0, len(list))}
	err := b.store.Transaction(ctx, func(uow *repository.Store) error {
		merged := map[groupKey]*draftItem{}
		var order []groupKey
		var withShort []string
		var minPick int64
		havePick := false
		for i, basket := range list {
			r := results[i]
			if r.err != nil {
				res.Baskets = append(res.Baskets, BasketOutcome{BasketCode: basket, Status: BasketError, Message: r.err.Error()})
				continue
			}
			if err := recordShipped(uow, company, basket, r.shipped); err != nil {
				return err
			}
			lines, err := shortfall.FindMissing(uow, company, basket, r.shipped)
			if err != nil {
				if errors.Is(err, apperr.ErrUpstream) {
					res.Baskets = append(res.Baskets, BasketOutcome{BasketCode: basket, Status: BasketError, Message: err.Error()})
					continue
				}
				return err
			}
			if ids := shortfall.PickListIDs(r.shipped); len(ids) > 0 && (!havePick || ids[0] < minPick) {
				minPick, havePick = ids[0], true
			}
			if len(lines) == 0 {
				res.Baskets = append(res.Baskets, BasketOutcome{BasketCode: basket, Status: BasketNothingMissing})
				continue
			}
			withShort = append(withShort, basket)
			res.Baskets = append(res.Baskets, BasketOutcome{BasketCode: basket, Status: BasketShortfall, MissingItems: len(lines)})
			for _, l := range lines {
				k := keyOf(l)
				d, ok := merged[k]
				if !ok {
					merged[k] = &draftItem{line: l, baskets: []string{basket}}
					order = append(order, k)
					continue
				}
				d.line.QtyOrdered = d.line.QtyOrdered.Add(l.QtyOrdered)
				d.line.QtyShipped = d.line.QtyShipped.Add(l.QtyShipped)
				d.line.QtyMissing = d.line.QtyMissing.Add(l.QtyMissing)
				if !containsString(d.baskets, basket) {
					d.baskets = append(d.baskets, basket)
				}
			}
		}
		countOutcomes(res)

		if len(withShort) == 0 {
			res.Message = "nothing missing in any basket"
			return nil
		}

		sorted := append([]string(nil), withShort...)
		sort.Strings(sorted)
		basketKey := strings.Join(sorted, ",")

		active, err := uow.Missions.FindActive(company, basketKey, &minPick)
		if err != nil {
			return err
		}
		if active != nil {
			res.AlreadyExists = true
			res.Mission = active
			res.Message = fmt.Sprintf("mission %s already active for baskets %s", active.MissionCode, basketKey)
			return nil
		}

		drafts := make([]draftItem, 0, len(order))
		for _, k := range order {
			drafts = append(drafts, *merged[k])
		}
		p, err := b.persist(ctx, uow, company, basketKey, minPick, createdBy, drafts)
		if err != nil {
			return err
		}
		res.MissionCreated = true
		res.Mission = p.mission
		res.ItemsCreated = p.items
		res.PositionsCreated = p.checks
		res.Notes = p.notes
		res.Message = fmt.Sprintf("mission %s created for %d baskets", p.mission.MissionCode, len(withShort))
		return nil
	})
	if err != nil {
		return nil, err
	}

	if res.MissionCreated {
		metrics.MissionsCreated.WithLabelValues(company, "batch").Inc()
		log.Printf("[mission] %s: batch %s, %d/%d baskets with shortfall, %d items, %d positions",
			company, res.Mission.MissionCode, res.WithShortfall, res.Processed, res.ItemsCreated, res.PositionsCreated)
	}
	if res.Errored == res.Processed {
		res.Message = "no basket could be processed"
		return res, apperr.Upstream("all %d baskets failed", res.Processed)
	}
	return res, nil
}

func countOutcomes(res *BatchResult) {
	res.WithShortfall, res.NothingMissing, res.Errored = 0, 0, 0
	for _, o := range res.Baskets {
		switch o.Status {
		case BasketShortfall:
			res.WithShortfall++
		case BasketNothingMissing:
			res.NothingMissing++
		case BasketError:
			res.Errored++
		}
	}
}

func containsString(list []string, s string) bool {
	for _, v := range list {
		if v == s {
			return true
		}
	}
	return false
}
