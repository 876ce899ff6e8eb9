package manager

import (
	"context"
	"testing"
	"time"

	"mercator-hq/rulescript/pkg/policy/engine"
	"mercator-hq/rulescript/pkg/policy/scope"
	"mercator-hq/rulescript/pkg/policy/store"
)

func newScheduledManager(t *testing.T, schedule string) (*Manager, *store.MemoryStore) {
	t.Helper()
	eng, err := engine.New(nil, nil)
	if err != nil {
		t.Fatalf("engine.New() failed: %v", err)
	}
	st := store.NewMemoryStore()
	cfg := DefaultConfig()
	cfg.ResyncSchedule = schedule
	mgr, err := New(eng, st, cfg, nil)
	if err != nil {
		t.Fatalf("New() failed: %v", err)
	}
	return mgr, st
}

func TestScheduler_EmptySchedule(t *testing.T) {
	mgr, _ := newScheduledManager(t, "")
	s := NewScheduler(mgr)

	if err := s.Start(context.Background()); err != nil {
		t.Fatalf("Start() failed: %v", err)
	}
	if s.IsRunning() {
		t.Error("IsRunning() = true without a schedule")
	}
	if s.NextRun() != nil {
		t.Error("NextRun() is set without a schedule")
	}
}

func TestScheduler_InvalidSchedule(t *testing.T) {
	mgr, _ := newScheduledManager(t, "not a schedule")
	if err := NewScheduler(mgr).Start(context.Background()); err == nil {
		t.Error("Start() expected error for invalid schedule")
	}
}

func TestScheduler_Resync(t *testing.T) {
	mgr, st := newScheduledManager(t, "@every 1s")
	_ = st.SaveScript(context.Background(), scope.Org, "acme", goodScript)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	s := NewScheduler(mgr)
	if err := s.Start(ctx); err != nil {
		t.Fatalf("Start() failed: %v", err)
	}
	if !s.IsRunning() {
		t.Fatal("IsRunning() = false after Start")
	}
	if next := s.NextRun(); next == nil || next.Before(time.Now().Add(-time.Second)) {
		t.Errorf("NextRun() = %v, want a time in the near future", next)
	}

	waitFor(t, "scheduled resync", func() bool {
		_, ok := mgr.Engine().RuleSet(scope.Org, "acme")
		return ok
	})

	s.Stop()
	if s.IsRunning() {
		t.Error("IsRunning() = true after Stop")
	}
}
