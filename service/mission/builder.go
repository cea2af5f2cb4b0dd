package mission

import (
	"context"
	"errors"
	"fmt"
	"log"
	"sort"
	"strings"
	"time"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"problemsolving.GO/core/apperr"
	"problemsolving.GO/core/metrics"
	missionEntity "problemsolving.GO/model/entity/mission"
	orderEntity "problemsolving.GO/model/entity/order"
	"problemsolving.GO/model/repository"
	"problemsolving.GO/service/inventory"
	"problemsolving.GO/service/shortfall"
)

const codeAttempts = 5

// ShipmentProvider returns the shipment-confirmation lines of a basket.
type ShipmentProvider interface {
	Shipped(ctx context.Context, company, basket string) ([]shortfall.ShippedRecord, error)
}

type Builder struct {
	store      *repository.Store
	provider   ShipmentProvider
	now        func() time.Time
	fetchLimit int
}

func NewBuilder(store *repository.Store, provider ShipmentProvider) *Builder {
	return &Builder{store: store, provider: provider, now: time.Now, fetchLimit: 4}
}

// Preview is the shortfall of one basket, computed without persisting anything.
type Preview struct {
	BasketCode          string           `json:"basket_code"`
	ReferencePickListID *int64           `json:"reference_pick_list_id"`
	ShippedRows         int              `json:"shipped_rows"`
	Lines               []shortfall.Line `json:"missing_items"`
	TotalMissing        decimal.Decimal  `json:"total_missing"`
}

// Result describes the outcome of a single-basket creation.
type Result struct {
	MissionCreated   bool                   `json:"mission_created"`
	AlreadyExists    bool                   `json:"already_exists"`
	Mission          *missionEntity.Mission `json:"mission,omitempty"`
	Lines            []shortfall.Line       `json:"missing_items,omitempty"`
	ItemsCreated     int                    `json:"items_created"`
	PositionsCreated int                    `json:"positions_created"`
	Notes            []string               `json:"notes,omitempty"`
	Message          string                 `json:"message"`
}

// Preview fetches the basket's shipment and reports what is missing.
func (b *Builder) Preview(ctx context.Context, company, basket string) (*Preview, error) {
	shipped, err := b.fetch(ctx, company, basket)
	if err != nil {
		return nil, err
	}
	lines, err := shortfall.FindMissing(b.store.WithContext(ctx), company, basket, shipped)
	if err != nil {
		return nil, err
	}
	p := &Preview{BasketCode: basket, ShippedRows: len(shipped), Lines: lines, TotalMissing: decimal.Zero}
	if ids := shortfall.PickListIDs(shipped); len(ids) > 0 {
		ref := ids[0]
		p.ReferencePickListID = &ref
	}
	for _, l := range lines {
		p.TotalMissing = p.TotalMissing.Add(l.QtyMissing)
	}
	return p, nil
}

// Create builds a mission for one basket. An OPEN or IN_PROGRESS mission for the same basket and
// reference pick-list is returned unchanged; a basket with nothing missing creates no mission.
func (b *Builder) Create(ctx context.Context, company, basket, createdBy string) (*Result, error) {
	shipped, err := b.fetch(ctx, company, basket)
	if err != nil {
		return nil, err
	}
	ids := shortfall.PickListIDs(shipped)
	if len(ids) == 0 {
		return nil, shortfall.ErrNoPickLists
	}
	ref := ids[0]

	res := &Result{}
	err = b.store.Transaction(ctx, func(uow *repository.Store) error {
		if err := recordShipped(uow, company, basket, shipped); err != nil {
			return err
		}
		active, err := uow.Missions.FindActive(company, basket, &ref)
		if err != nil {
			return err
		}
		if active != nil {
			res.AlreadyExists = true
			res.Mission = active
			res.Message = fmt.Sprintf("mission %s already active for basket %s", active.MissionCode, basket)
			return nil
		}

		lines, err := shortfall.FindMissing(uow, company, basket, shipped)
		if err != nil {
			return err
		}
		res.Lines = lines
		if len(lines) == 0 {
			res.Message = fmt.Sprintf("nothing missing for basket %s", basket)
			return nil
		}

		p, err := b.persist(ctx, uow, company, basket, ref, createdBy, toDraft(lines))
		if err != nil {
			return err
		}
		res.MissionCreated = true
		res.Mission = p.mission
		res.ItemsCreated = p.items
		res.PositionsCreated = p.checks
		res.Notes = p.notes
		res.Message = fmt.Sprintf("mission %s created", p.mission.MissionCode)
		return nil
	})
	if err != nil {
		return nil, err
	}
	if res.MissionCreated {
		metrics.MissionsCreated.WithLabelValues(company, "single").Inc()
		log.Printf("[mission] %s: %s for basket %s, %d items, %d positions",
			company, res.Mission.MissionCode, basket, res.ItemsCreated, res.PositionsCreated)
	}
	return res, nil
}

func (b *Builder) fetch(ctx context.Context, company, basket string) ([]shortfall.ShippedRecord, error) {
	shipped, err := b.provider.Shipped(ctx, company, basket)
	if err != nil {
		metrics.ShipmentFetchErrors.WithLabelValues(company).Inc()
		if errors.Is(err, apperr.ErrUpstream) {
			return nil, err
		}
		return nil, fmt.Errorf("shipment data for basket %s: %v: %w", basket, err, apperr.ErrUpstream)
	}
	if len(shipped) == 0 {
		return nil, apperr.Upstream("no shipment data for basket %s", basket)
	}
	return shipped, nil
}

// recordShipped stores the basket's shipment facts, one row per natural key.
func recordShipped(uow *repository.Store, company, basket string, shipped []shortfall.ShippedRecord) error {
	byKey := make(map[shortfall.Key]*orderEntity.ShippedItem, len(shipped))
	rows := make([]*orderEntity.ShippedItem, 0, len(shipped))
	for _, s := range shipped {
		if s.PickListID <= 0 || s.SKU == "" {
			continue
		}
		k := shortfall.Key{OrderNumber: s.OrderNumber, PickListID: s.PickListID, SKU: s.SKU}
		if row, ok := byKey[k]; ok {
			row.QtyShipped = row.QtyShipped.Add(s.QtyShipped)
			if s.ShippedAt != nil && (row.ShippedAt == nil || s.ShippedAt.After(*row.ShippedAt)) {
				row.ShippedAt = s.ShippedAt
			}
			continue
		}
		row := &orderEntity.ShippedItem{
			Company:     company,
			BasketCode:  basket,
			OrderNumber: s.OrderNumber,
			PickListID:  s.PickListID,
			SKU:         s.SKU,
			QtyShipped:  s.QtyShipped,
			Description: s.Description,
			ShippedAt:   s.ShippedAt,
		}
		byKey[k] = row
		rows = append(rows, row)
	}
	out := make([]orderEntity.ShippedItem, 0, len(rows))
	for _, r := range rows {
		out = append(out, *r)
	}
	if err := uow.Orders.UpsertShipped(out); err != nil {
		return fmt.Errorf("record shipped items for basket %s: %w", basket, err)
	}
	return nil
}

// draftItem is a shortfall line ready to persist, possibly merged from several baskets.
type draftItem struct {
	line    shortfall.Line
	baskets []string
}

func toDraft(lines []shortfall.Line) []draftItem {
	out := make([]draftItem, 0, len(lines))
	for _, l := range lines {
		out = append(out, draftItem{line: l, baskets: []string{l.BasketCode}})
	}
	return out
}

type persisted struct {
	mission *missionEntity.Mission
	items   int
	checks  int
	notes   []string
}

// persist writes the mission, its items and its position checks inside uow.
func (b *Builder) persist(ctx context.Context, uow *repository.Store, company, basketKey string, ref int64, createdBy string, drafts []draftItem) (*persisted, error) {
	now := b.now()
	m := &missionEntity.Mission{
		Company:             company,
		BasketCode:          basketKey,
		ReferencePickListID: &ref,
		Status:              missionEntity.StatusOpen,
		CreatedBy:           createdBy,
		CreatedAt:           now,
	}
	if err := b.insertWithCode(ctx, uow, m, now); err != nil {
		return nil, err
	}

	items := make([]missionEntity.Item, 0, len(drafts))
	for _, d := range drafts {
		items = append(items, missionEntity.Item{
			Company:       company,
			MissionID:     m.ID,
			OrderNumber:   d.line.OrderNumber,
			PickListID:    d.line.PickListID,
			SKU:           d.line.SKU,
			Description:   d.line.Description,
			PickListGroup: d.line.PickListGroup,
			QtyOrdered:    d.line.QtyOrdered,
			QtyShipped:    d.line.QtyShipped,
			QtyMissing:    d.line.QtyMissing,
			QtyFound:      decimal.Zero,
			BasketCodes:   strings.Join(d.baskets, ","),
			CreatedAt:     now,
		})
	}
	if err := uow.Missions.CreateItems(items); err != nil {
		return nil, fmt.Errorf("create mission items: %w", err)
	}

	checks, notes, err := generateChecks(uow, company, m.ID, items, now)
	if err != nil {
		return nil, err
	}
	if err := uow.Missions.CreateChecks(checks); err != nil {
		return nil, fmt.Errorf("create position checks: %w", err)
	}
	if len(notes) > 0 {
		m.Notes = strings.Join(notes, "\n")
		if err := uow.Missions.Update(company, m.ID, map[string]interface{}{"notes": m.Notes}); err != nil {
			return nil, err
		}
	}
	m.Items = items
	return &persisted{mission: m, items: len(items), checks: len(checks), notes: notes}, nil
}

// insertWithCode assigns the next PSM-YYYYMMDD-NNN code of the company and day. Each attempt runs in a
// savepoint; a concurrent creator taking the same code violates the unique index and the next attempt
// re-reads the maximum with a locking read, which sees the other creator's committed code.
func (b *Builder) insertWithCode(ctx context.Context, uow *repository.Store, m *missionEntity.Mission, now time.Time) error {
	prefix := fmt.Sprintf("PSM-%s-", now.Format("20060102"))
	var lastErr error
	for attempt := 0; attempt < codeAttempts; attempt++ {
		max, err := uow.Missions.MaxCodeSuffix(m.Company, prefix)
		if err != nil {
			return fmt.Errorf("read mission codes: %w", err)
		}
		m.ID = 0
		m.MissionCode = fmt.Sprintf("%s%03d", prefix, max+1)
		err = uow.Transaction(ctx, func(sp *repository.Store) error {
			return sp.Missions.Create(m)
		})
		if err == nil {
			return nil
		}
		if !isDuplicateKey(err) {
			return fmt.Errorf("create mission: %w", err)
		}
		lastErr = err
		log.Printf("[mission] %s: code %s taken, retrying", m.Company, m.MissionCode)
	}
	return fmt.Errorf("allocate mission code after %d attempts: %w", codeAttempts, lastErr)
}

func isDuplicateKey(err error) bool {
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return true
	}
	msg := err.Error()
	return strings.Contains(msg, "UNIQUE constraint failed") ||
		strings.Contains(msg, "Duplicate entry") ||
		strings.Contains(msg, "duplicate key value")
}

// generateChecks lists, per item, every unit-load holding its (pick-list group, sku), located through
// the location directory. The result is deduplicated on (item, unit-load, position) and sorted by
// position code, which is the walking route.
func generateChecks(uow *repository.Store, company string, missionID uint64, items []missionEntity.Item, now time.Time) ([]missionEntity.Check, []string, error) {
	type candidate struct {
		item  *missionEntity.Item
		group int64
		load  string
	}
	var (
		notes      []string
		candidates []candidate
		loadIDs    []string
		seenLoad   = map[string]bool{}
	)
	for i := range items {
		it := &items[i]
		if it.PickListGroup == nil {
			notes = append(notes, fmt.Sprintf("item %s (order %s, pick-list %d) has no pick-list group, cannot be located",
				it.SKU, it.OrderNumber, it.PickListID))
			continue
		}
		loads, err := uow.Inventory.UnitLoadsFor(company, *it.PickListGroup, it.SKU)
		if err != nil {
			return nil, nil, fmt.Errorf("unit-loads for %s: %w", it.SKU, err)
		}
		if len(loads) == 0 {
			notes = append(notes, fmt.Sprintf("item %s (pick-list group %d): no unit-load in inventory", it.SKU, *it.PickListGroup))
		}
		for _, l := range loads {
			candidates = append(candidates, candidate{item: it, group: *it.PickListGroup, load: l.UnitLoadID})
			if !seenLoad[l.UnitLoadID] {
				seenLoad[l.UnitLoadID] = true
				loadIDs = append(loadIDs, l.UnitLoadID)
			}
		}
	}

	locs, err := uow.Locations.GetMany(company, loadIDs)
	if err != nil {
		return nil, nil, fmt.Errorf("locations: %w", err)
	}

	seen := make(map[string]bool, len(candidates))
	checks := make([]missionEntity.Check, 0, len(candidates))
	for _, c := range candidates {
		raw := inventory.UnknownPosition
		if loc, ok := locs[c.load]; ok && loc.PositionCode != "" {
			raw = loc.PositionCode
		}
		pos := Humanize(raw)
		key := fmt.Sprintf("%d|%s|%s", c.item.ID, c.load, pos)
		if seen[key] {
			continue
		}
		seen[key] = true
		checks = append(checks, missionEntity.Check{
			Company:       company,
			MissionID:     missionID,
			MissionItemID: c.item.ID,
			UnitLoadID:    c.load,
			PickListGroup: c.group,
			PositionCode:  pos,
			Status:        missionEntity.CheckToCheck,
			CreatedAt:     now,
		})
	}
	sort.SliceStable(checks, func(i, j int) bool { return checks[i].PositionCode < checks[j].PositionCode })
	return checks, notes, nil
}
