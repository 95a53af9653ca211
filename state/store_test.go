package state_test

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"go.uber.org/zap/zaptest"

	"duckdnsd/common"
	"duckdnsd/log"
	"duckdnsd/state"
)

func testCtx(t *testing.T) context.Context {
	return log.WithLogger(context.Background(), zaptest.NewLogger(t))
}

func TestSaveLoadRoundTrip(t *testing.T) {
	store, err := state.NewStore(t.TempDir())
	if err != nil {
		t.Fatalf("NewStore failed: %s", err)
	}

	updated := time.Date(2026, 8, 1, 12, 0, 0, 0, time.UTC)
	rec := state.Record{
		LastIP:      "1.2.3.4",
		LastUpdate:  &updated,
		LastAttempt: updated.Add(time.Minute),
		Failures:    3,
	}

	ctx := testCtx(t)
	if err := store.Save(ctx, "myhome", rec); err != nil {
		t.Fatalf("Save failed: %s", err)
	}

	got := store.Load(ctx, "myhome")
	if got.LastIP != rec.LastIP {
		t.Fatalf("expected LastIP %q, got %q", rec.LastIP, got.LastIP)
	}
	if got.LastUpdate == nil || !got.LastUpdate.Equal(*rec.LastUpdate) {
		t.Fatalf("expected LastUpdate %v, got %v", rec.LastUpdate, got.LastUpdate)
	}
	if !got.LastAttempt.Equal(rec.LastAttempt) {
		t.Fatalf("expected LastAttempt %v, got %v", rec.LastAttempt, got.LastAttempt)
	}
	if got.Failures != rec.Failures {
		t.Fatalf("expected Failures %d, got %d", rec.Failures, got.Failures)
	}
}

func TestLoadMissingReturnsZero(t *testing.T) {
	store, err := state.NewStore(t.TempDir())
	if err != nil {
		t.Fatalf("NewStore failed: %s", err)
	}

	rec := store.Load(testCtx(t), "never-seen")
	if rec != (state.Record{}) {
		t.Fatalf("expected zero record, got %+v", rec)
	}
}

func TestLoadCorruptReturnsZero(t *testing.T) {
	dir := t.TempDir()
	store, err := state.NewStore(dir)
	if err != nil {
		t.Fatalf("NewStore failed: %s", err)
	}

	if err := os.WriteFile(filepath.Join(dir, "myhome.json"), []byte("{torn"), 0o644); err != nil {
		t.Fatalf("write failed: %s", err)
	}

	rec := store.Load(testCtx(t), "myhome")
	if rec != (state.Record{}) {
		t.Fatalf("expected zero record for corrupt file, got %+v", rec)
	}
}

func TestSaveLeavesNoTempFiles(t *testing.T) {
	dir := t.TempDir()
	store, err := state.NewStore(dir)
	if err != nil {
		t.Fatalf("NewStore failed: %s", err)
	}

	ctx := testCtx(t)
	for i := 0; i < 5; i++ {
		if err := store.Save(ctx, "myhome", state.Record{LastIP: "1.2.3.4"}); err != nil {
			t.Fatalf("Save failed: %s", err)
		}
	}

	entries, err := os.ReadDir(dir)
	if err != nil {
		t.Fatalf("ReadDir failed: %s", err)
	}
	for _, e := range entries {
		if e.Name() != "myhome.json" {
			t.Fatalf("unexpected leftover file: %s", e.Name())
		}
	}
}

func TestHistoryAppendAndCap(t *testing.T) {
	store, err := state.NewStore(t.TempDir())
	if err != nil {
		t.Fatalf("NewStore failed: %s", err)
	}

	first := state.HistoryEntry{Time: time.Now().UTC(), Outcome: common.OutcomeUpdated, IP: "1.2.3.4"}
	if err := store.AppendHistory("myhome", first); err != nil {
		t.Fatalf("AppendHistory failed: %s", err)
	}
	second := state.HistoryEntry{Time: time.Now().UTC(), Outcome: common.OutcomeUnchanged, IP: "1.2.3.4"}
	if err := store.AppendHistory("myhome", second); err != nil {
		t.Fatalf("AppendHistory failed: %s", err)
	}

	entries := store.History("myhome")
	if len(entries) != 2 {
		t.Fatalf("expected 2 entries, got %d", len(entries))
	}
	if entries[0].Outcome != common.OutcomeUpdated || entries[1].Outcome != common.OutcomeUnchanged {
		t.Fatalf("entries out of order: %+v", entries)
	}
}

func TestHistoryCorruptDiscarded(t *testing.T) {
	dir := t.TempDir()
	store, err := state.NewStore(dir)
	if err != nil {
		t.Fatalf("NewStore failed: %s", err)
	}

	if err := os.WriteFile(filepath.Join(dir, "myhome.history.json"), []byte("not json"), 0o644); err != nil {
		t.Fatalf("write failed: %s", err)
	}

	if err := store.AppendHistory("myhome", state.HistoryEntry{Time: time.Now(), Outcome: common.OutcomeFailed}); err != nil {
		t.Fatalf("AppendHistory failed: %s", err)
	}

	entries := store.History("myhome")
	if len(entries) != 1 {
		t.Fatalf("expected corrupt history replaced by 1 entry, got %d", len(entries))
	}
}
