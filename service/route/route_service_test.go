package route

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/shopspring/decimal"

	"problemsolving.GO/core/apperr"
	"problemsolving.GO/core/testdb"
	missionEntity "problemsolving.GO/model/entity/mission"
	"problemsolving.GO/model/repository"
	missionRepo "problemsolving.GO/model/repository/mission"
)

func seedMission(t *testing.T, store *repository.Store, company, code, status string, created time.Time, checkStatuses ...string) *missionEntity.Mission {
	t.Helper()
	m := &missionEntity.Mission{Company: company, MissionCode: code, BasketCode: code, Status: status, CreatedAt: created}
	if err := store.Missions.Create(m); err != nil {
		t.Fatalf("create mission: %v", err)
	}
	items := []missionEntity.Item{{
		Company: company, MissionID: m.ID, OrderNumber: "O1", PickListID: 1, SKU: "SKU-" + code,
		QtyOrdered: decimal.NewFromInt(2), QtyShipped: decimal.Zero, QtyMissing: decimal.NewFromInt(2), QtyFound: decimal.Zero,
	}}
	if err := store.Missions.CreateItems(items); err != nil {
		t.Fatalf("create items: %v", err)
	}
	var checks []missionEntity.Check
	for i, st := range checkStatuses {
		checks = append(checks, missionEntity.Check{
			Company: company, MissionID: m.ID, MissionItemID: items[0].ID,
			UnitLoadID: "U", PickListGroup: 1, PositionCode: string(rune('A' + i)), Status: st,
		})
	}
	if err := store.Missions.CreateChecks(checks); err != nil {
		t.Fatalf("create checks: %v", err)
	}
	return m
}

func TestRouteNextSummary(t *testing.T) {
	db := testdb.Open(t)
	store := repository.NewStore(db)
	svc := NewService(store)
	ctx := context.Background()

	m := seedMission(t, store, "acme", "M1", missionEntity.StatusInProgress, time.Now(),
		missionEntity.CheckFound, missionEntity.CheckNotFound, missionEntity.CheckToCheck, missionEntity.CheckToCheck)

	stops, err := svc.Route(ctx, "acme", m.ID)
	if err != nil {
		t.Fatalf("Route: %v", err)
	}
	if len(stops) != 4 {
		t.Fatalf("stops = %d, want 4", len(stops))
	}
	for i, s := range stops {
		if s.Sequence != i+1 || s.PositionCode != string(rune('A'+i)) || s.SKU != "SKU-M1" {
			t.Errorf("stop %d = %+v", i, s)
		}
	}

	next, err := svc.Next(ctx, "acme", m.ID)
	if err != nil {
		t.Fatalf("Next: %v", err)
	}
	if next == nil || next.PositionCode != "C" {
		t.Errorf("Next = %+v, want position C", next)
	}

	sum, err := svc.Summary(ctx, "acme", m.ID)
	if err != nil {
		t.Fatalf("Summary: %v", err)
	}
	if sum.TotalChecks != 4 || sum.PendingChecks != 2 || sum.FoundChecks != 1 || sum.NotFoundChecks != 1 {
		t.Errorf("summary = %+v", sum)
	}
	if sum.CompletionPercentage != 50 {
		t.Errorf("CompletionPercentage = %v, want 50", sum.CompletionPercentage)
	}

	if _, err := svc.Route(ctx, "globex", m.ID); !errors.Is(err, apperr.ErrNotFound) {
		t.Errorf("cross-company route err = %v, want not found", err)
	}
}

func TestNext_Exhausted(t *testing.T) {
	db := testdb.Open(t)
	store := repository.NewStore(db)
	m := seedMission(t, store, "acme", "M1", missionEntity.StatusInProgress, time.Now(), missionEntity.CheckSkippedAuto)
	next, err := NewService(store).Next(context.Background(), "acme", m.ID)
	if err != nil || next != nil {
		t.Errorf("Next = %+v, %v; want nil, nil", next, err)
	}
}

func TestSummary_NoChecks(t *testing.T) {
	db := testdb.Open(t)
	store := repository.NewStore(db)
	m := seedMission(t, store, "acme", "M1", missionEntity.StatusOpen, time.Now())
	sum, err := NewService(store).Summary(context.Background(), "acme", m.ID)
	if err != nil {
		t.Fatalf("Summary: %v", err)
	}
	if sum.CompletionPercentage != 0 || sum.TotalChecks != 0 {
		t.Errorf("summary = %+v, want 0%% and no checks", sum)
	}
}

func TestCompletionPercentage_Rounds(t *testing.T) {
	got := CompletionPercentage(missionRepo.CheckCounts{Total: 3, Found: 1, Pending: 2})
	if got != 33.33 {
		t.Errorf("CompletionPercentage = %v, want 33.33", got)
	}
	got = CompletionPercentage(missionRepo.CheckCounts{Total: 3, Found: 1, Skipped: 1, Pending: 1})
	if got != 66.67 {
		t.Errorf("CompletionPercentage = %v, want 66.67", got)
	}
}

func TestList_Filters(t *testing.T) {
	db := testdb.Open(t)
	store := repository.NewStore(db)
	svc := NewService(store)
	ctx := context.Background()
	base := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)

	seedMission(t, store, "acme", "M1", missionEntity.StatusOpen, base, missionEntity.CheckToCheck)
	seedMission(t, store, "acme", "M2", missionEntity.StatusInProgress, base.Add(time.Hour), missionEntity.CheckNotFound, missionEntity.CheckToCheck)
	seedMission(t, store, "acme", "M3", missionEntity.StatusCompleted, base.Add(2*time.Hour), missionEntity.CheckFound)
	seedMission(t, store, "acme", "M4", missionEntity.StatusCancelled, base.Add(3*time.Hour), missionEntity.CheckNotFound)
	seedMission(t, store, "globex", "G1", missionEntity.StatusOpen, base, missionEntity.CheckNotFound)

	codes := func(entries []ListEntry) string {
		s := ""
		for _, e := range entries {
			s += e.MissionCode + " "
		}
		return s
	}
	cases := []struct {
		filter string
		limit  int
		want   string
	}{
		{"", 0, "M4 M3 M2 M1 "},
		{"pending", 0, "M2 M1 "},
		{"HAS_NOT_FOUND", 0, "M4 M2 "},
		{"COMPLETED", 0, "M3 "},
		{"", 2, "M4 M3 "},
	}
	for _, c := range cases {
		got, err := svc.List(ctx, "acme", c.filter, c.limit)
		if err != nil {
			t.Fatalf("List(%q): %v", c.filter, err)
		}
		if codes(got) != c.want {
			t.Errorf("List(%q, %d) = %q, want %q", c.filter, c.limit, codes(got), c.want)
		}
	}

	all, _ := svc.List(ctx, "acme", "PENDING", 0)
	if all[0].Summary == nil || all[0].Summary.TotalChecks != 2 || all[0].Summary.NotFoundChecks != 1 {
		t.Errorf("M2 summary = %+v", all[0].Summary)
	}
	if _, err := svc.List(ctx, "acme", "BOGUS", 0); !errors.Is(err, apperr.ErrInvalidInput) {
		t.Errorf("unknown filter err = %v, want invalid input", err)
	}
}

func TestCrossCompanyIsNotFound(t *testing.T) {
	db := testdb.Open(t)
	store := repository.NewStore(db)
	svc := NewService(store)
	ctx := context.Background()
	m := seedMission(t, store, "acme", "M1", missionEntity.StatusOpen, time.Now(), missionEntity.CheckToCheck)

	if _, err := svc.Route(ctx, "beta", m.ID); !errors.Is(err, apperr.ErrNotFound) {
		t.Errorf("Route err = %v, want not found", err)
	}
	if _, err := svc.Next(ctx, "beta", m.ID); !errors.Is(err, apperr.ErrNotFound) {
		t.Errorf("Next err = %v, want not found", err)
	}
	if _, err := svc.Summary(ctx, "beta", m.ID); !errors.Is(err, apperr.ErrNotFound) {
		t.Errorf("Summary err = %v, want not found", err)
	}
	if _, err := svc.Details(ctx, "beta", m.ID); !errors.Is(err, apperr.ErrNotFound) {
		t.Errorf("Details err = %v, want not found", err)
	}
	list, err := svc.List(ctx, "beta", "", 0)
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if len(list) != 0 {
		t.Errorf("beta sees %d missions, want 0", len(list))
	}
}
