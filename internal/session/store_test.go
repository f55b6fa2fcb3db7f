package session

import (
	"path/filepath"
	"testing"
)

func openTestStore(t *testing.T) *Store {
	t.Helper()
	s, err := Open(filepath.Join(t.TempDir(), ".dumbarb.db"))
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	t.Cleanup(func() { s.Close() })
	return s
}

func TestPlanFreshDirectoryStartsAtOne(t *testing.T) {
	s := openTestStore(t)
	seq, err := s.Plan(5, false)
	if err != nil {
		t.Fatalf("Plan: %v", err)
	}
	if seq != 1 {
		t.Fatalf("Plan = %d, want 1", seq)
	}
}

func TestPlanResumesAfterHighestCompleted(t *testing.T) {
	s := openTestStore(t)
	runID, err := s.NewRun()
	if err != nil {
		t.Fatalf("NewRun: %v", err)
	}
	for seq := 1; seq <= 3; seq++ {
		if err := s.RecordGame(seq, "A W+Resign", runID); err != nil {
			t.Fatalf("RecordGame(%d): %v", seq, err)
		}
	}

	seq, err := s.Plan(5, false)
	if err != nil {
		t.Fatalf("Plan: %v", err)
	}
	if seq != 4 {
		t.Fatalf("Plan = %d, want 4", seq)
	}
}

// A fully-complete match directory plans zero games: Plan returns
// numGames+1 so the caller never spawns an engine.
func TestPlanCompleteMatchIsIdempotent(t *testing.T) {
	s := openTestStore(t)
	runID, err := s.NewRun()
	if err != nil {
		t.Fatalf("NewRun: %v", err)
	}
	for seq := 1; seq <= 2; seq++ {
		if err := s.RecordGame(seq, "Jigo ==", runID); err != nil {
			t.Fatalf("RecordGame(%d): %v", seq, err)
		}
	}

	seq, err := s.Plan(2, false)
	if err != nil {
		t.Fatalf("Plan: %v", err)
	}
	if seq != 3 {
		t.Fatalf("Plan = %d, want 3 (numGames+1)", seq)
	}
}

func TestPlanForceResets(t *testing.T) {
	s := openTestStore(t)
	runID, err := s.NewRun()
	if err != nil {
		t.Fatalf("NewRun: %v", err)
	}
	if err := s.RecordGame(1, "B ERR EE", runID); err != nil {
		t.Fatalf("RecordGame: %v", err)
	}

	seq, err := s.Plan(5, true)
	if err != nil {
		t.Fatalf("Plan: %v", err)
	}
	if seq != 1 {
		t.Fatalf("Plan = %d, want 1 after force", seq)
	}
	highest, err := s.HighestCompleted()
	if err != nil {
		t.Fatalf("HighestCompleted: %v", err)
	}
	if highest != 0 {
		t.Fatalf("HighestCompleted = %d, want 0 after force", highest)
	}
}

func TestRecordGameIsReplaceable(t *testing.T) {
	s := openTestStore(t)
	runID, err := s.NewRun()
	if err != nil {
		t.Fatalf("NewRun: %v", err)
	}
	if err := s.RecordGame(1, "A W+Resign", runID); err != nil {
		t.Fatalf("RecordGame: %v", err)
	}
	if err := s.RecordGame(1, "B B+Time", runID); err != nil {
		t.Fatalf("RecordGame (replace): %v", err)
	}
	n, err := s.CompletedCount()
	if err != nil {
		t.Fatalf("CompletedCount: %v", err)
	}
	if n != 1 {
		t.Fatalf("CompletedCount = %d, want 1", n)
	}
}
