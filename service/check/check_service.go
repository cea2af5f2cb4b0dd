// Package check applies operator verdicts to position checks and keeps mission status in step.
package check

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"problemsolving.GO/core/apperr"
	"problemsolving.GO/core/metrics"
	missionEntity "problemsolving.GO/model/entity/mission"
	"problemsolving.GO/model/repository"
)

// AutoSkipNote is written on checks skipped because their item was fully found elsewhere.
const AutoSkipNote = "Auto-skipped: All missing items found"

type Service struct {
	store *repository.Store
	now   func() time.Time
}

func NewService(store *repository.Store) *Service {
	return &Service{store: store, now: time.Now}
}

// FoundInput is an operator's "found" verdict. QtyFound defaults to 1.
type FoundInput struct {
	CheckedBy string           `json:"checked_by"`
	QtyFound  *decimal.Decimal `json:"qty_found"`
	Notes     string           `json:"notes"`
}

// NotFoundInput is an operator's "not found" verdict.
type NotFoundInput struct {
	CheckedBy string `json:"checked_by"`
	Notes     string `json:"notes"`
}

// Result reports the effect of one verdict.
type Result struct {
	CheckID         uint64          `json:"check_id"`
	CheckStatus     string          `json:"check_status"`
	ItemResolved    bool            `json:"item_resolved"`
	MissionComplete bool            `json:"mission_completed"`
	MissionStatus   string          `json:"mission_status"`
	QtyFound        decimal.Decimal `json:"qty_found"`
	TotalFound      decimal.Decimal `json:"total_found"`
	QtyRemaining    decimal.Decimal `json:"qty_remaining"`
	AutoSkipped     int64           `json:"auto_skipped"`
}

// MarkFound records qty found at the check's position. When the item's cumulative quantity covers
// its shortfall the item is resolved and its other TO_CHECK positions are skipped.
func (s *Service) MarkFound(ctx context.Context, company string, checkID uint64, in FoundInput) (*Result, error) {
	qty := decimal.NewFromInt(1)
	if in.QtyFound != nil {
		qty = *in.QtyFound
	}
	if !qty.IsPositive() {
		return nil, apperr.Invalid("qty_found must be positive, got %s", qty.String())
	}

	var res *Result
	err := s.store.Transaction(ctx, func(uow *repository.Store) error {
		var err error
		res, err = MarkFound(uow, company, checkID, in.CheckedBy, qty, in.Notes, s.now())
		return err
	})
	if err != nil {
		return nil, err
	}
	metrics.ChecksMarked.WithLabelValues(company, missionEntity.CheckFound).Inc()
	if res.AutoSkipped > 0 {
		metrics.ChecksMarked.WithLabelValues(company, missionEntity.CheckSkippedAuto).Add(float64(res.AutoSkipped))
	}
	return res, nil
}

// MarkFound applies a found verdict inside uow.
func MarkFound(uow *repository.Store, company string, checkID uint64, checkedBy string, qty decimal.Decimal, notes string, now time.Time) (*Result, error) {
	c, m, err := actionable(uow, company, checkID)
	if err != nil {
		return nil, err
	}

	ok, err := uow.Missions.TransitionCheck(company, c.ID, map[string]interface{}{
		"status":     missionEntity.CheckFound,
		"found":      true,
		"qty_found":  decimal.NullDecimal{Decimal: qty, Valid: true},
		"checked_at": now,
		"checked_by": checkedBy,
		"notes":      notes,
	})
	if err != nil {
		return nil, fmt.Errorf("update check %d: %w", c.ID, err)
	}
	if !ok {
		return nil, lostRace(uow, company, c.ID)
	}

	if err := uow.Missions.AddFound(company, c.MissionItemID, qty); err != nil {
		return nil, fmt.Errorf("add found quantity: %w", err)
	}
	item, err := uow.Missions.FindItem(company, c.MissionItemID)
	if err != nil {
		return nil, err
	}

	res := &Result{
		CheckID:     c.ID,
		CheckStatus: missionEntity.CheckFound,
		QtyFound:    qty,
		TotalFound:  item.QtyFound,
	}
	if !item.IsResolved && item.QtyFound.GreaterThanOrEqual(item.QtyMissing) {
		resolved, err := uow.Missions.Resolve(company, item.ID, now)
		if err != nil {
			return nil, fmt.Errorf("resolve item %d: %w", item.ID, err)
		}
		res.ItemResolved = resolved
		// The FOUND write above is visible here, and the check is excluded by id as well.
		skipped, err := uow.Missions.SkipRemaining(company, item.ID, c.ID, AutoSkipNote, now)
		if err != nil {
			return nil, fmt.Errorf("auto-skip checks of item %d: %w", item.ID, err)
		}
		res.AutoSkipped = skipped
	}
	res.QtyRemaining = item.Remaining()

	status, err := Recompute(uow, company, m.ID, now)
	if err != nil {
		return nil, err
	}
	res.MissionStatus = status
	res.MissionComplete = status == missionEntity.StatusCompleted
	return res, nil
}

// MarkNotFound records that the item was not at the check's position.
func (s *Service) MarkNotFound(ctx context.Context, company string, checkID uint64, in NotFoundInput) (*Result, error) {
	var res *Result
	err := s.store.Transaction(ctx, func(uow *repository.Store) error {
		var err error
		res, err = MarkNotFound(uow, company, checkID, in.CheckedBy, in.Notes, s.now())
		return err
	})
	if err != nil {
		return nil, err
	}
	metrics.ChecksMarked.WithLabelValues(company, missionEntity.CheckNotFound).Inc()
	return res, nil
}

// MarkNotFound applies a not-found verdict inside uow. Item quantities are left untouched.
func MarkNotFound(uow *repository.Store, company string, checkID uint64, checkedBy, notes string, now time.Time) (*Result, error) {
	c, m, err := actionable(uow, company, checkID)
	if err != nil {
		return nil, err
	}
	ok, err := uow.Missions.TransitionCheck(company, c.ID, map[string]interface{}{
		"status":     missionEntity.CheckNotFound,
		"found":      false,
		"checked_at": now,
		"checked_by": checkedBy,
		"notes":      notes,
	})
	if err != nil {
		return nil, fmt.Errorf("update check %d: %w", c.ID, err)
	}
	if !ok {
		return nil, lostRace(uow, company, c.ID)
	}
	item, err := uow.Missions.FindItem(company, c.MissionItemID)
	if err != nil {
		return nil, err
	}
	status, err := Recompute(uow, company, m.ID, now)
	if err != nil {
		return nil, err
	}
	return &Result{
		CheckID:         c.ID,
		CheckStatus:     missionEntity.CheckNotFound,
		ItemResolved:    item.IsResolved,
		MissionStatus:   status,
		MissionComplete: status == missionEntity.StatusCompleted,
		QtyFound:        decimal.Zero,
		TotalFound:      item.QtyFound,
		QtyRemaining:    item.Remaining(),
	}, nil
}

// UpdateInput is the generic verdict form: FoundInPosition selects found or not found.
type UpdateInput struct {
	FoundInPosition bool             `json:"found_in_position"`
	CheckedBy       string           `json:"checked_by"`
	QtyFound        *decimal.Decimal `json:"qty_found"`
	Notes           string           `json:"notes"`
}

// Update dispatches to MarkFound or MarkNotFound.
func (s *Service) Update(ctx context.Context, company string, checkID uint64, in UpdateInput) (*Result, error) {
	if in.FoundInPosition {
		return s.MarkFound(ctx, company, checkID, FoundInput{CheckedBy: in.CheckedBy, QtyFound: in.QtyFound, Notes: in.Notes})
	}
	return s.MarkNotFound(ctx, company, checkID, NotFoundInput{CheckedBy: in.CheckedBy, Notes: in.Notes})
}

// Details is a check with its item and mission context.
type Details struct {
	Check   *missionEntity.Check   `json:"check"`
	Item    *missionEntity.Item    `json:"item"`
	Mission *missionEntity.Mission `json:"mission"`
}

// Get returns one check with its context.
func (s *Service) Get(ctx context.Context, company string, checkID uint64) (*Details, error) {
	uow := s.store.WithContext(ctx)
	c, err := uow.Missions.FindCheck(company, checkID)
	if err != nil {
		return nil, err
	}
	item, err := uow.Missions.FindItem(company, c.MissionItemID)
	if err != nil {
		return nil, err
	}
	m, err := uow.Missions.FindByID(company, c.MissionID)
	if err != nil {
		return nil, err
	}
	return &Details{Check: c, Item: item, Mission: m}, nil
}

// UpdateMissionStatus is the manual override. The literal must be one of the four stored statuses.
func (s *Service) UpdateMissionStatus(ctx context.Context, company string, missionID uint64, status string) (*missionEntity.Mission, error) {
	status = strings.ToUpper(strings.TrimSpace(status))
	if !missionEntity.ValidStatus(status) {
		return nil, apperr.Invalid("invalid mission status %q", status)
	}
	var out *missionEntity.Mission
	err := s.store.Transaction(ctx, func(uow *repository.Store) error {
		m, err := uow.Missions.FindByID(company, missionID)
		if err != nil {
			return err
		}
		now := s.now()
		updates := map[string]interface{}{"status": status}
		switch status {
		case missionEntity.StatusInProgress:
			if m.StartedAt == nil {
				updates["started_at"] = now
			}
			updates["completed_at"] = nil
		case missionEntity.StatusCompleted, missionEntity.StatusCancelled:
			if m.CompletedAt == nil {
				updates["completed_at"] = now
			}
		case missionEntity.StatusOpen:
			updates["completed_at"] = nil
		}
		if err := uow.Missions.Update(company, m.ID, updates); err != nil {
			return err
		}
		out, err = uow.Missions.FindByID(company, m.ID)
		return err
	})
	return out, err
}

func actionable(uow *repository.Store, company string, checkID uint64) (*missionEntity.Check, *missionEntity.Mission, error) {
	c, err := uow.Missions.FindCheck(company, checkID)
	if err != nil {
		return nil, nil, err
	}
	if c.Status != missionEntity.CheckToCheck {
		return nil, nil, &apperr.PreconditionError{Entity: "position check", ID: c.ID, State: c.Status}
	}
	m, err := uow.Missions.FindByID(company, c.MissionID)
	if err != nil {
		return nil, nil, err
	}
	if m.Status == missionEntity.StatusCancelled {
		return nil, nil, &apperr.PreconditionError{Entity: "mission", ID: m.ID, State: m.Status, Reason: "mission is cancelled"}
	}
	return c, m, nil
}

// lostRace builds the precondition error for a check another writer moved out of TO_CHECK.
func lostRace(uow *repository.Store, company string, checkID uint64) error {
	c, err := uow.Missions.FindCheck(company, checkID)
	if err != nil {
		return err
	}
	return &apperr.PreconditionError{Entity: "position check", ID: c.ID, State: c.Status}
}
