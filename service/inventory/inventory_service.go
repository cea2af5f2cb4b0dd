package inventory

import (
	"context"
	"fmt"
	"log"
	"sort"
	"strings"
	"time"

	"problemsolving.GO/core/metrics"
	inventoryEntity "problemsolving.GO/model/entity/inventory"
	"problemsolving.GO/model/repository"
	locationRepo "problemsolving.GO/model/repository/location"
)

// UnknownPosition is the position code of a unit-load without a usable location.
const UnknownPosition = "UNKNOWN"

type Service struct {
	store *repository.Store
	now   func() time.Time
}

func NewService(store *repository.Store) *Service {
	return &Service{store: store, now: time.Now}
}

// Rebuild re-derives the company's inventory snapshot in one transaction and returns the row count.
// A failure leaves the previous snapshot in place.
func (s *Service) Rebuild(ctx context.Context, company string) (int, error) {
	var n int
	err := s.store.Transaction(ctx, func(uow *repository.Store) error {
		var err error
		n, err = Rebuild(uow, company, s.now())
		return err
	})
	if err != nil {
		return 0, fmt.Errorf("rebuild inventory for %s: %w", company, err)
	}
	metrics.SnapshotRows.WithLabelValues(company).Set(float64(n))
	log.Printf("[inventory] %s: snapshot rebuilt, %d rows", company, n)
	return n, nil
}

// Rebuild replaces the company's snapshot using the given unit of work.
func Rebuild(uow *repository.Store, company string, now time.Time) (int, error) {
	return uow.Inventory.Rebuild(company, now)
}

// LocationInput is one position snapshot row of a unit-load.
type LocationInput struct {
	UnitLoadID   string     `json:"unit_load_id"`
	Warehouse    string     `json:"warehouse"`
	Aisle        string     `json:"aisle"`
	Column       string     `json:"column"`
	Level        string     `json:"level"`
	Slot         string     `json:"slot"`
	Compartment  string     `json:"compartment"`
	LastMovement *time.Time `json:"last_movement"`
}

// LocationResult summarizes a location upsert batch.
type LocationResult struct {
	Received int      `json:"received"`
	Inserted int      `json:"inserted"`
	Updated  int      `json:"updated"`
	Stale    int      `json:"stale"`
	Skipped  int      `json:"skipped"`
	Warnings []string `json:"warnings,omitempty"`
}

// PositionCode joins the non-empty slot parts with "-", or returns UNKNOWN when all are empty.
func PositionCode(warehouse, aisle, column, level string) string {
	parts := make([]string, 0, 4)
	for _, p := range []string{warehouse, aisle, column, level} {
		if p = strings.TrimSpace(p); p != "" {
			parts = append(parts, p)
		}
	}
	if len(parts) == 0 {
		return UnknownPosition
	}
	return strings.Join(parts, "-")
}

// UpsertLocations applies a position snapshot. Within the batch the latest movement per unit-load wins;
// against stored records the most recent movement wins.
func (s *Service) UpsertLocations(ctx context.Context, company string, rows []LocationInput) (*LocationResult, error) {
	res := &LocationResult{Received: len(rows)}
	latest := make(map[string]LocationInput, len(rows))
	order := make([]string, 0, len(rows))
	for i, row := range rows {
		id := strings.TrimSpace(row.UnitLoadID)
		if id == "" {
			res.Skipped++
			res.Warnings = append(res.Warnings, fmt.Sprintf("row %d: missing unit_load_id", i+1))
			continue
		}
		row.UnitLoadID = id
		prev, seen := latest[id]
		if !seen {
			order = append(order, id)
			latest[id] = row
			continue
		}
		res.Skipped++
		if newerOrEqual(row.LastMovement, prev.LastMovement) {
			latest[id] = row
		}
	}
	sort.Strings(order)

	now := s.now()
	err := s.store.Transaction(ctx, func(uow *repository.Store) error {
		for _, id := range order {
			row := latest[id]
			rec := &inventoryEntity.Location{
				Company:      company,
				UnitLoadID:   id,
				Warehouse:    row.Warehouse,
				Aisle:        row.Aisle,
				Column:       row.Column,
				Level:        row.Level,
				Slot:         row.Slot,
				Compartment:  row.Compartment,
				PositionCode: PositionCode(row.Warehouse, row.Aisle, row.Column, row.Level),
				LastMovement: row.LastMovement,
				LastUpdated:  now,
			}
			outcome, err := uow.Locations.Save(rec)
			if err != nil {
				return fmt.Errorf("save location %s: %w", id, err)
			}
			switch outcome {
			case locationRepo.Inserted:
				res.Inserted++
			case locationRepo.Updated:
				res.Updated++
			case locationRepo.Stale:
				res.Stale++
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	log.Printf("[inventory] %s: locations inserted=%d updated=%d stale=%d", company, res.Inserted, res.Updated, res.Stale)
	return res, nil
}

// Location returns the last known location of a unit-load, or nil.
func (s *Service) Location(ctx context.Context, company, unitLoadID string) (*inventoryEntity.Location, error) {
	return s.store.WithContext(ctx).Locations.Get(company, unitLoadID)
}

func newerOrEqual(a, b *time.Time) bool {
	if b == nil {
		return true
	}
	if a == nil {
		return false
	}
	return !a.Before(*b)
}

// UnitLoadStock is a snapshot row with the unit-load's last known position.
type UnitLoadStock struct {
	inventoryEntity.Snapshot
	PositionCode string     `json:"position_code"`
	LastMovement *time.Time `json:"last_movement,omitempty"`
}

// UnitLoads lists where sku of a pick-list group can be found. Unit-loads without a location report UNKNOWN.
func (s *Service) UnitLoads(ctx context.Context, company string, group int64, sku string) ([]UnitLoadStock, error) {
	uow := s.store.WithContext(ctx)
	rows, err := uow.Inventory.UnitLoadsFor(company, group, sku)
	if err != nil {
		return nil, err
	}
	ids := make([]string, 0, len(rows))
	for _, r := range rows {
		ids = append(ids, r.UnitLoadID)
	}
	locs, err := uow.Locations.GetMany(company, ids)
	if err != nil {
		return nil, fmt.Errorf("locations: %w", err)
	}
	out := make([]UnitLoadStock, 0, len(rows))
	for _, r := range rows {
		st := UnitLoadStock{Snapshot: r, PositionCode: UnknownPosition}
		if loc, ok := locs[r.UnitLoadID]; ok {
			if loc.PositionCode != "" {
				st.PositionCode = loc.PositionCode
			}
			st.LastMovement = loc.LastMovement
		}
		out = append(out, st)
	}
	return out, nil
}

// Snapshot returns the company's snapshot rows and their count.
func (s *Service) Snapshot(ctx context.Context, company string) ([]inventoryEntity.Snapshot, int64, error) {
	uow := s.store.WithContext(ctx)
	rows, err := uow.Inventory.List(company)
	if err != nil {
		return nil, 0, err
	}
	n, err := uow.Inventory.Count(company)
	return rows, n, err
}
