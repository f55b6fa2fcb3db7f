// Package clock implements the per-side time-control ledger of
// spec.md §4.3: one state machine per side per game, consuming a
// measured elapsed duration after every genmove and reporting whether
// the side has violated its time budget.
//
// Grounded line-for-line on original_source/dumbarb.py's TimeKeep
// class (resetEngineTimeStats / checkinDelta), split into one file per
// time system the way a reader of that class would naturally want it
// split.
package clock

import (
	"time"

	"github.com/dumbarb/dumbarb/internal/domain"
)

// Phase is which budget a side is currently drawing down.
type Phase int

const (
	Main Phase = iota
	Period
)

// State is one side's clock for one game.
type State struct {
	settings domain.TimeSettings

	Phase       Phase
	MainLeft    time.Duration
	PeriodLeft  time.Duration
	StonesLeft  int
	PeriodsLeft int
	Violated    bool
}

// New creates a fresh clock from the game's time settings (spec.md §3:
// "initial values derive directly from TimeSettings").
func New(settings domain.TimeSettings) *State {
	s := &State{settings: settings, Phase: Main}
	switch settings.System {
	case domain.NoTime:
		// infinite budget; fields unused.
	case domain.Absolute:
		s.MainLeft = settings.MainTime
	case domain.Canadian:
		s.MainLeft = settings.MainTime
		s.PeriodLeft = settings.PeriodTime
		s.StonesLeft = settings.PeriodCount
	case domain.Japanese:
		s.MainLeft = settings.MainTime
		s.PeriodLeft = settings.PeriodTime
		s.PeriodsLeft = settings.PeriodCount
	}
	return s
}

// Deduct consumes elapsed from the clock and reports whether this move
// violated the time budget. It must be called exactly once per move,
// immediately after the genmove response is received, with the
// send-to-response interval measured on a monotonic clock (spec.md §4.3,
// §5 "ordering guarantees").
func (s *State) Deduct(elapsed time.Duration) (violated bool) {
	switch s.settings.System {
	case domain.NoTime:
		return false
	case domain.Absolute:
		violated = s.deductAbsolute(elapsed)
	case domain.Canadian:
		violated = s.deductCanadian(elapsed)
	case domain.Japanese:
		violated = s.deductJapanese(elapsed)
	}
	if violated {
		s.Violated = true
	}
	return violated
}

// ClampAfterViolation resets the Period/byo-yomi state to "one period
// left" after a violation that did not end the game (EnforceTime ==
// false), per spec.md §4.3. Absolute already self-clamps mainLeft to 0
// in Deduct regardless of enforcement; NoTime never violates.
func (s *State) ClampAfterViolation() {
	switch s.settings.System {
	case domain.Canadian:
		s.clampCanadian()
	case domain.Japanese:
		s.clampJapanese()
	}
}

// RemainingBudget is the most time this side could still spend before
// a timeout violation: used as the basis for the genmove deadline
// (spec.md §4.3 "remaining-budget for the genmove timeout").
func (s *State) RemainingBudget() time.Duration {
	switch s.settings.System {
	case domain.NoTime:
		return -1 // caller substitutes GtpGenmoveUntimedTO
	case domain.Absolute:
		if s.MainLeft < 0 {
			return 0
		}
		return s.MainLeft
	case domain.Canadian:
		return nonNegative(s.MainLeft) + nonNegative(s.PeriodLeft)
	case domain.Japanese:
		periodsLeft := s.PeriodsLeft
		if periodsLeft < 1 {
			periodsLeft = 1
		}
		return nonNegative(s.MainLeft) + time.Duration(periodsLeft)*s.settings.PeriodTime
	default:
		return 0
	}
}

// TimeLeft returns the (seconds, stonesOrPeriods) pair sent to the
// engine via the GTP time_left command before every genmove (spec.md
// §4.3 "clock advertised to the engine").
func (s *State) TimeLeft() (seconds int, stonesOrPeriods int) {
	switch s.settings.System {
	case domain.NoTime:
		return 0, 0
	case domain.Absolute:
		return secondsFloor(s.MainLeft), 0
	case domain.Canadian:
		if s.Phase == Main {
			return secondsFloor(s.MainLeft), 0
		}
		return secondsFloor(s.PeriodLeft), s.StonesLeft
	case domain.Japanese:
		if s.Phase == Main {
			return secondsFloor(s.MainLeft), 0
		}
		return secondsFloor(s.PeriodLeft), s.PeriodsLeft
	default:
		return 0, 0
	}
}

func nonNegative(d time.Duration) time.Duration {
	if d < 0 {
		return 0
	}
	return d
}

func secondsFloor(d time.Duration) int {
	if d < 0 {
		return 0
	}
	return int(d / time.Second)
}
