package cron

import (
	"testing"
)

func TestRegister_NormalizesNameAndRuns(t *testing.T) {
	var got []string
	Register(" LocationsSync ", "@every 1h", func(args ...string) {
		got = args
	})
	defer Unregister("locationssync")

	jobs := Jobs()
	j, ok := jobs["locationssync"]
	if !ok {
		t.Fatalf("locationssync not in Jobs(): %v", Names())
	}
	if j.Schedule != "@every 1h" {
		t.Errorf("Schedule = %q, want @every 1h", j.Schedule)
	}
	j.Run("acme", "beta")
	if len(got) != 2 || got[0] != "acme" {
		t.Errorf("args = %v, want [acme beta]", got)
	}
}

func TestRegister_Rejects(t *testing.T) {
	mustPanic := func(what string, fn func()) {
		t.Helper()
		defer func() {
			if r := recover(); r == nil {
				t.Errorf("%s: expected panic", what)
			}
		}()
		fn()
	}

	Register("snapshotaudit", "@hourly", func(...string) {})
	defer Unregister("snapshotaudit")
	mustPanic("duplicate", func() { Register("SnapshotAudit", "@daily", func(...string) {}) })
	mustPanic("bad schedule", func() { Register("badschedule", "every morning", func(...string) {}) })

	for _, name := range Names() {
		if name == "badschedule" {
			t.Error("job with a bad schedule was registered")
		}
	}
}

func TestNames_Sorted(t *testing.T) {
	Register("zeta", "@daily", func(...string) {})
	Register("alpha", "@daily", func(...string) {})
	defer Unregister("zeta")
	defer Unregister("alpha")

	names := Names()
	for i := 1; i < len(names); i++ {
		if names[i-1] > names[i] {
			t.Fatalf("Names() = %v, not sorted", names)
		}
	}
}

func TestSchedule_PrefersEnvironment(t *testing.T) {
	t.Setenv("IMPORT_SCHEDULE", "30 4 * * *")
	if got := Schedule("inventoryrebuild", Job{Schedule: "0 5 * * *"}); got != "30 4 * * *" {
		t.Errorf("Schedule = %q, want env value", got)
	}
	if got := Schedule("other", Job{Schedule: "@hourly"}); got != "@hourly" {
		t.Errorf("Schedule = %q, want @hourly", got)
	}
}
