package clock

import (
	"testing"
	"time"

	"github.com/dumbarb/dumbarb/internal/domain"
)

func TestNoTimeNeverViolates(t *testing.T) {
	c := New(domain.TimeSettings{System: domain.NoTime})
	if c.Deduct(time.Hour) {
		t.Fatal("NoTime must never violate")
	}
}

// S2 — Canadian timeout, enforced: mainTime=0, periodTime=5s,
// periodCount=1, tolerance=0.05s. Taking 5.20s on move 1 violates.
func TestCanadianTimeoutS2(t *testing.T) {
	settings := domain.TimeSettings{
		System:      domain.Canadian,
		MainTime:    0,
		PeriodTime:  5 * time.Second,
		PeriodCount: 1,
		Tolerance:   50 * time.Millisecond,
	}
	c := New(settings)
	if !c.Deduct(5200 * time.Millisecond) {
		t.Fatal("expected a Canadian timeout violation")
	}
}

func TestCanadianRefillOnNonViolatingLastStone(t *testing.T) {
	settings := domain.TimeSettings{
		System:      domain.Canadian,
		PeriodTime:  5 * time.Second,
		PeriodCount: 2,
		Tolerance:   0,
	}
	c := New(settings)
	if c.Deduct(4 * time.Second) {
		t.Fatal("unexpected violation")
	}
	if c.StonesLeft != 1 {
		t.Fatalf("StonesLeft = %d, want 1", c.StonesLeft)
	}
	if c.Deduct(1 * time.Second) {
		t.Fatal("unexpected violation on refilling stone")
	}
	if c.StonesLeft != settings.PeriodCount || c.PeriodLeft != settings.PeriodTime {
		t.Fatalf("expected refill, got stonesLeft=%d periodLeft=%v", c.StonesLeft, c.PeriodLeft)
	}
}

// S3 — Japanese byo-yomi period refill: periodTime=10s, periodCount=3,
// tolerance=0. A takes 9s, 11s, 9s. After move 2, periodsLeft=2 and
// periodLeft refills to 10s; after move 3, periodsLeft stays 2. No
// violation throughout.
func TestJapaneseRefillS3(t *testing.T) {
	settings := domain.TimeSettings{
		System:      domain.Japanese,
		MainTime:    0,
		PeriodTime:  10 * time.Second,
		PeriodCount: 3,
		Tolerance:   0,
	}
	c := New(settings)

	if c.Deduct(9 * time.Second) {
		t.Fatal("move 1: unexpected violation")
	}
	if c.PeriodsLeft != 3 {
		t.Fatalf("move 1: PeriodsLeft = %d, want 3", c.PeriodsLeft)
	}

	if c.Deduct(11 * time.Second) {
		t.Fatal("move 2: unexpected violation")
	}
	if c.PeriodsLeft != 2 {
		t.Fatalf("move 2: PeriodsLeft = %d, want 2", c.PeriodsLeft)
	}
	if c.PeriodLeft != settings.PeriodTime {
		t.Fatalf("move 2: PeriodLeft = %v, want refilled to %v", c.PeriodLeft, settings.PeriodTime)
	}

	if c.Deduct(9 * time.Second) {
		t.Fatal("move 3: unexpected violation")
	}
	if c.PeriodsLeft != 2 {
		t.Fatalf("move 3: PeriodsLeft = %d, want 2 (unchanged)", c.PeriodsLeft)
	}
}

func TestJapaneseExhaustionViolates(t *testing.T) {
	settings := domain.TimeSettings{
		System:      domain.Japanese,
		PeriodTime:  10 * time.Second,
		PeriodCount: 1,
		Tolerance:   0,
	}
	c := New(settings)
	if !c.Deduct(11 * time.Second) {
		t.Fatal("expected violation when the single period is exhausted")
	}
	c.ClampAfterViolation()
	if c.PeriodsLeft != 1 || c.PeriodLeft != settings.PeriodTime {
		t.Fatalf("clamp: got periodsLeft=%d periodLeft=%v", c.PeriodsLeft, c.PeriodLeft)
	}
}

func TestAbsoluteClampsToZero(t *testing.T) {
	settings := domain.TimeSettings{System: domain.Absolute, MainTime: 3 * time.Second, Tolerance: 0}
	c := New(settings)
	if !c.Deduct(5 * time.Second) {
		t.Fatal("expected violation")
	}
	if c.MainLeft != 0 {
		t.Fatalf("MainLeft = %v, want clamped to 0", c.MainLeft)
	}
}

func TestNegativeToleranceDisablesChecking(t *testing.T) {
	settings := domain.TimeSettings{System: domain.Absolute, MainTime: time.Second, Tolerance: -1}
	c := New(settings)
	if c.Deduct(time.Hour) {
		t.Fatal("negative tolerance must disable violation checking")
	}
}
