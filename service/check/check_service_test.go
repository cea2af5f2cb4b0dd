package check

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"problemsolving.GO/core/apperr"
	"problemsolving.GO/core/testdb"
	missionEntity "problemsolving.GO/model/entity/mission"
	"problemsolving.GO/model/repository"
)

type fixture struct {
	db      *gorm.DB
	store   *repository.Store
	svc     *Service
	mission *missionEntity.Mission
	items   []missionEntity.Item
}

// newFixture creates a mission with one item per qtyMissing entry and checksPerItem checks each.
func newFixture(t *testing.T, checksPerItem int, qtyMissing ...string) *fixture {
	t.Helper()
	db := testdb.Open(t)
	store := repository.NewStore(db)
	m := &missionEntity.Mission{Company: "acme", MissionCode: "PSM-20240101-001", BasketCode: "C1", Status: missionEntity.StatusOpen, CreatedAt: time.Now()}
	if err := store.Missions.Create(m); err != nil {
		t.Fatalf("create mission: %v", err)
	}
	var items []missionEntity.Item
	for i, q := range qtyMissing {
		items = append(items, missionEntity.Item{
			Company:       "acme",
			MissionID:     m.ID,
			OrderNumber:   "O1",
			PickListID:    int64(100 + i),
			SKU:           "SKU",
			PickListGroup: testdb.Int64(1),
			QtyOrdered:    testdb.Dec(t, q),
			QtyShipped:    decimal.Zero,
			QtyMissing:    testdb.Dec(t, q),
			QtyFound:      decimal.Zero,
		})
	}
	if err := store.Missions.CreateItems(items); err != nil {
		t.Fatalf("create items: %v", err)
	}
	var checks []missionEntity.Check
	for _, it := range items {
		for j := 0; j < checksPerItem; j++ {
			checks = append(checks, missionEntity.Check{
				Company:       "acme",
				MissionID:     m.ID,
				MissionItemID: it.ID,
				UnitLoadID:    "U" + string(rune('A'+j)),
				PickListGroup: 1,
				PositionCode:  "P-" + string(rune('A'+j)),
				Status:        missionEntity.CheckToCheck,
			})
		}
	}
	if err := store.Missions.CreateChecks(checks); err != nil {
		t.Fatalf("create checks: %v", err)
	}
	svc := NewService(store)
	svc.now = func() time.Time { return time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC) }
	return &fixture{db: db, store: store, svc: svc, mission: m, items: items}
}

func (f *fixture) checks(t *testing.T, itemID uint64) []missionEntity.Check {
	t.Helper()
	var out []missionEntity.Check
	if err := f.db.Where("mission_item_id = ?", itemID).Order("id").Find(&out).Error; err != nil {
		t.Fatalf("load checks: %v", err)
	}
	return out
}

func (f *fixture) reload(t *testing.T) *missionEntity.Mission {
	t.Helper()
	m, err := f.store.Missions.FindByID("acme", f.mission.ID)
	if err != nil {
		t.Fatalf("reload mission: %v", err)
	}
	return m
}

func qty(v string) *decimal.Decimal {
	d := decimal.RequireFromString(v)
	return &d
}

func TestMarkFound_ResolvesAndSkipsOthers(t *testing.T) {
	f := newFixture(t, 3, "2")
	ctx := context.Background()
	checks := f.checks(t, f.items[0].ID)

	res, err := f.svc.MarkFound(ctx, "acme", checks[1].ID, FoundInput{CheckedBy: "op", QtyFound: qty("2")})
	if err != nil {
		t.Fatalf("MarkFound: %v", err)
	}
	if !res.ItemResolved || !res.MissionComplete || res.MissionStatus != missionEntity.StatusCompleted {
		t.Errorf("res = %+v, want resolved and completed", res)
	}
	if res.AutoSkipped != 2 {
		t.Errorf("AutoSkipped = %d, want 2", res.AutoSkipped)
	}
	if !res.QtyRemaining.IsZero() || res.TotalFound.String() != "2" {
		t.Errorf("remaining %s total %s, want 0 and 2", res.QtyRemaining, res.TotalFound)
	}

	after := f.checks(t, f.items[0].ID)
	for i, c := range after {
		want := missionEntity.CheckSkippedAuto
		if i == 1 {
			want = missionEntity.CheckFound
		}
		if c.Status != want {
			t.Errorf("check %d status = %s, want %s", i, c.Status, want)
		}
	}
	if after[0].Notes != AutoSkipNote {
		t.Errorf("skip note = %q", after[0].Notes)
	}
	m := f.reload(t)
	if m.CompletedAt == nil || m.StartedAt == nil {
		t.Errorf("timestamps not stamped: started %v completed %v", m.StartedAt, m.CompletedAt)
	}
}

func TestMarkFound_DefaultQtyAndPartial(t *testing.T) {
	f := newFixture(t, 3, "3")
	ctx := context.Background()
	checks := f.checks(t, f.items[0].ID)

	res, err := f.svc.MarkFound(ctx, "acme", checks[0].ID, FoundInput{CheckedBy: "op"})
	if err != nil {
		t.Fatalf("MarkFound: %v", err)
	}
	if res.QtyFound.String() != "1" || res.ItemResolved || res.QtyRemaining.String() != "2" {
		t.Errorf("res = %+v, want qty 1 unresolved remaining 2", res)
	}
	if res.MissionStatus != missionEntity.StatusInProgress {
		t.Errorf("MissionStatus = %s, want IN_PROGRESS", res.MissionStatus)
	}
	if m := f.reload(t); m.StartedAt == nil {
		t.Error("started_at not stamped")
	}

	res, err = f.svc.MarkFound(ctx, "acme", checks[1].ID, FoundInput{CheckedBy: "op", QtyFound: qty("5")})
	if err != nil {
		t.Fatalf("second MarkFound: %v", err)
	}
	if !res.ItemResolved || res.TotalFound.String() != "6" || !res.QtyRemaining.IsZero() {
		t.Errorf("res = %+v, want resolved with total 6 and remaining 0", res)
	}
	if res.AutoSkipped != 1 {
		t.Errorf("AutoSkipped = %d, want 1", res.AutoSkipped)
	}
	if got := f.checks(t, f.items[0].ID)[0].Status; got != missionEntity.CheckFound {
		t.Errorf("first FOUND check overwritten to %s", got)
	}
}

func TestMarkFound_RejectsTerminalAndBadQty(t *testing.T) {
	f := newFixture(t, 2, "5")
	ctx := context.Background()
	checks := f.checks(t, f.items[0].ID)

	if _, err := f.svc.MarkFound(ctx, "acme", checks[0].ID, FoundInput{QtyFound: qty("0")}); !errors.Is(err, apperr.ErrInvalidInput) {
		t.Errorf("qty 0 err = %v, want invalid input", err)
	}
	if _, err := f.svc.MarkNotFound(ctx, "acme", checks[0].ID, NotFoundInput{CheckedBy: "op"}); err != nil {
		t.Fatalf("MarkNotFound: %v", err)
	}
	_, err := f.svc.MarkFound(ctx, "acme", checks[0].ID, FoundInput{CheckedBy: "op2"})
	var pe *apperr.PreconditionError
	if !errors.As(err, &pe) || pe.State != missionEntity.CheckNotFound {
		t.Fatalf("err = %v, want precondition with state NOT_FOUND", err)
	}
	if got := f.checks(t, f.items[0].ID)[0]; got.CheckedBy != "op" {
		t.Errorf("rejected mark mutated check: %+v", got)
	}
	if _, err := f.svc.MarkFound(ctx, "globex", checks[1].ID, FoundInput{}); !errors.Is(err, apperr.ErrNotFound) {
		t.Errorf("cross-company err = %v, want not found", err)
	}
	if _, err := f.svc.MarkFound(ctx, "acme", 9999, FoundInput{}); !errors.Is(err, apperr.ErrNotFound) {
		t.Errorf("missing check err = %v, want not found", err)
	}
}

func TestMarkNotFound_ExhaustedStaysInProgress(t *testing.T) {
	f := newFixture(t, 2, "1")
	ctx := context.Background()
	checks := f.checks(t, f.items[0].ID)

	for _, c := range checks {
		res, err := f.svc.MarkNotFound(ctx, "acme", c.ID, NotFoundInput{CheckedBy: "op"})
		if err != nil {
			t.Fatalf("MarkNotFound: %v", err)
		}
		if res.MissionStatus != missionEntity.StatusInProgress || res.MissionComplete {
			t.Errorf("status = %s, want IN_PROGRESS", res.MissionStatus)
		}
	}
	m := f.reload(t)
	if m.Status != missionEntity.StatusInProgress || m.CompletedAt != nil {
		t.Errorf("mission = %s completed_at %v, want IN_PROGRESS without completed_at", m.Status, m.CompletedAt)
	}
}

func TestMarkFound_MissionCompletesOnlyWhenAllItemsResolved(t *testing.T) {
	f := newFixture(t, 1, "1", "1")
	ctx := context.Background()
	first := f.checks(t, f.items[0].ID)[0]
	second := f.checks(t, f.items[1].ID)[0]

	res, err := f.svc.MarkFound(ctx, "acme", first.ID, FoundInput{CheckedBy: "op"})
	if err != nil {
		t.Fatalf("MarkFound: %v", err)
	}
	if res.MissionComplete {
		t.Error("mission completed with an unresolved item")
	}
	res, err = f.svc.MarkFound(ctx, "acme", second.ID, FoundInput{CheckedBy: "op"})
	if err != nil {
		t.Fatalf("MarkFound: %v", err)
	}
	if !res.MissionComplete {
		t.Errorf("res = %+v, want mission completed", res)
	}
}

func TestRecompute_Idempotent(t *testing.T) {
	f := newFixture(t, 2, "1")
	checks := f.checks(t, f.items[0].ID)
	if _, err := f.svc.MarkNotFound(context.Background(), "acme", checks[0].ID, NotFoundInput{}); err != nil {
		t.Fatalf("MarkNotFound: %v", err)
	}
	before := f.reload(t)
	for i := 0; i < 3; i++ {
		st, err := Recompute(f.store, "acme", f.mission.ID, time.Now().Add(time.Hour))
		if err != nil {
			t.Fatalf("Recompute: %v", err)
		}
		if st != missionEntity.StatusInProgress {
			t.Errorf("status = %s, want IN_PROGRESS", st)
		}
	}
	after := f.reload(t)
	if after.StartedAt == nil || !after.StartedAt.Equal(*before.StartedAt) {
		t.Errorf("started_at changed: %v -> %v", before.StartedAt, after.StartedAt)
	}
}

func TestUpdateMissionStatus(t *testing.T) {
	f := newFixture(t, 1, "1")
	ctx := context.Background()

	if _, err := f.svc.UpdateMissionStatus(ctx, "acme", f.mission.ID, "DONE"); !errors.Is(err, apperr.ErrInvalidInput) {
		t.Errorf("err = %v, want invalid input", err)
	}
	m, err := f.svc.UpdateMissionStatus(ctx, "acme", f.mission.ID, "cancelled")
	if err != nil {
		t.Fatalf("UpdateMissionStatus: %v", err)
	}
	if m.Status != missionEntity.StatusCancelled || m.CompletedAt == nil {
		t.Errorf("mission = %+v, want CANCELLED with completed_at", m)
	}

	check := f.checks(t, f.items[0].ID)[0]
	if _, err := f.svc.MarkFound(ctx, "acme", check.ID, FoundInput{}); !apperr.IsPrecondition(err) {
		t.Errorf("mark on cancelled mission err = %v, want precondition", err)
	}
	if _, err := f.svc.UpdateMissionStatus(ctx, "acme", 424242, "OPEN"); !errors.Is(err, apperr.ErrNotFound) {
		t.Errorf("unknown mission err = %v, want not found", err)
	}
}

func TestUpdate_Dispatches(t *testing.T) {
	f := newFixture(t, 2, "4")
	checks := f.checks(t, f.items[0].ID)
	res, err := f.svc.Update(context.Background(), "acme", checks[0].ID, UpdateInput{FoundInPosition: true, QtyFound: qty("2"), CheckedBy: "op"})
	if err != nil || res.CheckStatus != missionEntity.CheckFound {
		t.Fatalf("found update = %+v, %v", res, err)
	}
	res, err = f.svc.Update(context.Background(), "acme", checks[1].ID, UpdateInput{CheckedBy: "op"})
	if err != nil || res.CheckStatus != missionEntity.CheckNotFound {
		t.Fatalf("not-found update = %+v, %v", res, err)
	}
	d, err := f.svc.Get(context.Background(), "acme", checks[0].ID)
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if d.Item.QtyFound.String() != "2" || !d.Check.QtyFound.Valid {
		t.Errorf("details = %+v", d)
	}
}

func TestMarkFound_LostRaceReportsCurrentState(t *testing.T) {
	f := newFixture(t, 2, "2")
	checks := f.checks(t, f.items[0].ID)
	target := checks[0].ID

	// Another operator closes the check between the read and the guarded update.
	flipped := false
	err := f.db.Callback().Update().Before("gorm:update").Register("test:concurrent_verdict", func(tx *gorm.DB) {
		if flipped || tx.Statement.Table != "position_checks" {
			return
		}
		flipped = true
		tx.Session(&gorm.Session{NewDB: true}).
			Exec("UPDATE position_checks SET status = ?, checked_by = ? WHERE id = ?", missionEntity.CheckNotFound, "other", target)
	})
	if err != nil {
		t.Fatalf("register callback: %v", err)
	}

	now := time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC)
	_, err = MarkFound(f.store, "acme", target, "op", decimal.NewFromInt(2), "", now)
	var pe *apperr.PreconditionError
	if !errors.As(err, &pe) {
		t.Fatalf("err = %v, want precondition", err)
	}
	if pe.State != missionEntity.CheckNotFound || pe.ID != target {
		t.Errorf("precondition = %+v, want check %d in NOT_FOUND", pe, target)
	}

	got := f.checks(t, f.items[0].ID)
	if got[0].Status != missionEntity.CheckNotFound || got[0].CheckedBy != "other" {
		t.Errorf("check = %s by %q, want the concurrent NOT_FOUND kept", got[0].Status, got[0].CheckedBy)
	}
	if got[1].Status != missionEntity.CheckToCheck {
		t.Errorf("sibling check = %s, want TO_CHECK", got[1].Status)
	}
	item, err := f.store.Missions.FindItem("acme", f.items[0].ID)
	if err != nil {
		t.Fatalf("FindItem: %v", err)
	}
	if !item.QtyFound.IsZero() || item.IsResolved {
		t.Errorf("item = found %s resolved %v, want untouched", item.QtyFound, item.IsResolved)
	}
}

func TestCrossCompanyIsNotFound(t *testing.T) {
	f := newFixture(t, 1, "1")
	ctx := context.Background()
	check := f.checks(t, f.items[0].ID)[0]

	if _, err := f.svc.MarkNotFound(ctx, "beta", check.ID, NotFoundInput{CheckedBy: "op"}); !errors.Is(err, apperr.ErrNotFound) {
		t.Errorf("MarkNotFound err = %v, want not found", err)
	}
	if _, err := f.svc.Update(ctx, "beta", check.ID, UpdateInput{FoundInPosition: true}); !errors.Is(err, apperr.ErrNotFound) {
		t.Errorf("Update err = %v, want not found", err)
	}
	if _, err := f.svc.Get(ctx, "beta", check.ID); !errors.Is(err, apperr.ErrNotFound) {
		t.Errorf("Get err = %v, want not found", err)
	}
	if _, err := f.svc.UpdateMissionStatus(ctx, "beta", f.mission.ID, "CANCELLED"); !errors.Is(err, apperr.ErrNotFound) {
		t.Errorf("UpdateMissionStatus err = %v, want not found", err)
	}
	if _, err := Recompute(f.store, "beta", f.mission.ID, time.Now()); !errors.Is(err, apperr.ErrNotFound) {
		t.Errorf("Recompute err = %v, want not found", err)
	}

	if got := f.checks(t, f.items[0].ID)[0]; got.Status != missionEntity.CheckToCheck {
		t.Errorf("check status = %s, want TO_CHECK", got.Status)
	}
	if m := f.reload(t); m.Status != missionEntity.StatusOpen {
		t.Errorf("mission status = %s, want OPEN", m.Status)
	}
}
