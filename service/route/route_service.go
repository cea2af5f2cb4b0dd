// Package route projects a mission's position checks into the operator's walking route.
package route

import (
	"context"
	"math"
	"strings"

	"github.com/shopspring/decimal"

	"problemsolving.GO/core/apperr"
	missionEntity "problemsolving.GO/model/entity/mission"
	"problemsolving.GO/model/repository"
	missionRepo "problemsolving.GO/model/repository/mission"
)

const (
	DefaultLimit = 50
	MaxLimit     = 500
)

type Service struct {
	store *repository.Store
}

func NewService(store *repository.Store) *Service {
	return &Service{store: store}
}

// Stop is a position check annotated with the item it searches for.
type Stop struct {
	Sequence      int                 `json:"sequence"`
	CheckID       uint64              `json:"check_id"`
	MissionItemID uint64              `json:"mission_item_id"`
	UnitLoadID    string              `json:"unit_load_id"`
	PositionCode  string              `json:"position_code"`
	PickListGroup int64               `json:"pick_list_group"`
	Status        string              `json:"status"`
	QtyFound      decimal.NullDecimal `json:"qty_found"`
	CheckedBy     string              `json:"checked_by,omitempty"`
	Notes         string              `json:"notes,omitempty"`
	SKU           string              `json:"sku"`
	Description   string              `json:"description,omitempty"`
	OrderNumber   string              `json:"order_number"`
	PickListID    int64               `json:"pick_list_id"`
	QtyMissing    decimal.Decimal     `json:"qty_missing"`
	ItemQtyFound  decimal.Decimal     `json:"item_qty_found"`
	ItemResolved  bool                `json:"item_resolved"`
}

// Summary holds progress counts of a mission.
type Summary struct {
	MissionID            uint64  `json:"mission_id"`
	MissionCode          string  `json:"mission_code"`
	Status               string  `json:"status"`
	TotalItems           int64   `json:"total_items"`
	ResolvedItems        int64   `json:"resolved_items"`
	TotalChecks          int64   `json:"total_checks"`
	PendingChecks        int64   `json:"pending_checks"`
	FoundChecks          int64   `json:"found_checks"`
	NotFoundChecks       int64   `json:"not_found_checks"`
	SkippedChecks        int64   `json:"skipped_checks"`
	CompletionPercentage float64 `json:"completion_percentage"`
}

// Route returns every check of the mission in walking order.
func (s *Service) Route(ctx context.Context, company string, missionID uint64) ([]Stop, error) {
	uow := s.store.WithContext(ctx)
	if _, err := uow.Missions.FindByID(company, missionID); err != nil {
		return nil, err
	}
	checks, err := uow.Missions.Checks(company, missionID)
	if err != nil {
		return nil, err
	}
	items, err := itemsByID(uow, company, missionID)
	if err != nil {
		return nil, err
	}
	stops := make([]Stop, 0, len(checks))
	for i := range checks {
		stops = append(stops, toStop(i+1, &checks[i], items[checks[i].MissionItemID]))
	}
	return stops, nil
}

// Next returns the first TO_CHECK stop, or nil when the route is exhausted.
func (s *Service) Next(ctx context.Context, company string, missionID uint64) (*Stop, error) {
	uow := s.store.WithContext(ctx)
	if _, err := uow.Missions.FindByID(company, missionID); err != nil {
		return nil, err
	}
	c, err := uow.Missions.NextCheck(company, missionID)
	if err != nil || c == nil {
		return nil, err
	}
	item, err := uow.Missions.FindItem(company, c.MissionItemID)
	if err != nil {
		return nil, err
	}
	stop := toStop(0, c, item)
	return &stop, nil
}

// Summary counts items and checks of the mission.
func (s *Service) Summary(ctx context.Context, company string, missionID uint64) (*Summary, error) {
	uow := s.store.WithContext(ctx)
	m, err := uow.Missions.FindByID(company, missionID)
	if err != nil {
		return nil, err
	}
	items, err := uow.Missions.ItemCounts(company, missionID)
	if err != nil {
		return nil, err
	}
	checks, err := uow.Missions.CheckCounts(company, missionID)
	if err != nil {
		return nil, err
	}
	return summarize(m, items, checks), nil
}

// CompletionPercentage is the share of checks in a terminal state, rounded to 2 decimals; 0 without checks.
func CompletionPercentage(c missionRepo.CheckCounts) float64 {
	if c.Total == 0 {
		return 0
	}
	pct := float64(c.Completed()) / float64(c.Total) * 100
	return math.Round(pct*100) / 100
}

func summarize(m *missionEntity.Mission, items missionRepo.ItemCounts, checks missionRepo.CheckCounts) *Summary {
	return &Summary{
		MissionID:            m.ID,
		MissionCode:          m.MissionCode,
		Status:               m.Status,
		TotalItems:           items.Total,
		ResolvedItems:        items.Resolved,
		TotalChecks:          checks.Total,
		PendingChecks:        checks.Pending,
		FoundChecks:          checks.Found,
		NotFoundChecks:       checks.NotFound,
		SkippedChecks:        checks.Skipped,
		CompletionPercentage: CompletionPercentage(checks),
	}
}

// ListEntry is a mission with its progress counts.
type ListEntry struct {
	missionEntity.Mission
	Summary *Summary `json:"summary"`
}

// List returns the company's newest missions. status is empty, a stored status, PENDING or HAS_NOT_FOUND.
// limit defaults to 50 and is capped at 500.
func (s *Service) List(ctx context.Context, company, status string, limit int) ([]ListEntry, error) {
	filter := strings.ToUpper(strings.TrimSpace(status))
	switch filter {
	case "", missionRepo.FilterPending, missionRepo.FilterHasNotFound:
	default:
		if !missionEntity.ValidStatus(filter) {
			return nil, apperr.Invalid("unknown status filter %q", status)
		}
	}
	if limit <= 0 {
		limit = DefaultLimit
	}
	if limit > MaxLimit {
		limit = MaxLimit
	}

	uow := s.store.WithContext(ctx)
	missions, err := uow.Missions.List(company, filter, limit)
	if err != nil {
		return nil, err
	}
	ids := make([]uint64, 0, len(missions))
	for _, m := range missions {
		ids = append(ids, m.ID)
	}
	itemCounts, err := uow.Missions.ItemCountsFor(company, ids)
	if err != nil {
		return nil, err
	}
	checkCounts, err := uow.Missions.CheckCountsFor(company, ids)
	if err != nil {
		return nil, err
	}
	out := make([]ListEntry, 0, len(missions))
	for i := range missions {
		m := &missions[i]
		out = append(out, ListEntry{Mission: *m, Summary: summarize(m, itemCounts[m.ID], checkCounts[m.ID])})
	}
	return out, nil
}

// Details is a mission with its items, route and summary.
type Details struct {
	Mission *missionEntity.Mission `json:"mission"`
	Items   []missionEntity.Item   `json:"items"`
	Route   []Stop                 `json:"route"`
	Summary *Summary               `json:"summary"`
}

// Details loads everything an operator screen needs for one mission.
func (s *Service) Details(ctx context.Context, company string, missionID uint64) (*Details, error) {
	uow := s.store.WithContext(ctx)
	m, err := uow.Missions.FindByID(company, missionID)
	if err != nil {
		return nil, err
	}
	items, err := uow.Missions.Items(company, missionID)
	if err != nil {
		return nil, err
	}
	route, err := s.Route(ctx, company, missionID)
	if err != nil {
		return nil, err
	}
	summary, err := s.Summary(ctx, company, missionID)
	if err != nil {
		return nil, err
	}
	return &Details{Mission: m, Items: items, Route: route, Summary: summary}, nil
}

func itemsByID(uow *repository.Store, company string, missionID uint64) (map[uint64]*missionEntity.Item, error) {
	items, err := uow.Missions.Items(company, missionID)
	if err != nil {
		return nil, err
	}
	out := make(map[uint64]*missionEntity.Item, len(items))
	for i := range items {
		out[items[i].ID] = &items[i]
	}
	return out, nil
}

func toStop(seq int, c *missionEntity.Check, item *missionEntity.Item) Stop {
	st := Stop{
		Sequence:      seq,
		CheckID:       c.ID,
		MissionItemID: c.MissionItemID,
		UnitLoadID:    c.UnitLoadID,
		PositionCode:  c.PositionCode,
		PickListGroup: c.PickListGroup,
		Status:        c.Status,
		QtyFound:      c.QtyFound,
		CheckedBy:     c.CheckedBy,
		Notes:         c.Notes,
	}
	if item != nil {
		st.SKU = item.SKU
		st.Description = item.Description
		st.OrderNumber = item.OrderNumber
		st.PickListID = item.PickListID
		st.QtyMissing = item.QtyMissing
		st.ItemQtyFound = item.QtyFound
		st.ItemResolved = item.IsResolved
	}
	return st
}
