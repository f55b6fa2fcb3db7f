// Package match implements the Game driver (spec.md §4.4) and Match
// runner (spec.md §4.5): running one game end-to-end over two engine
// supervisors and a time-control ledger, then sequencing a match's
// worth of games.
//
// Grounded on original_source/dumbarb.py's playGame/playMatch for the
// move-loop and sequencing logic, and on CounterGo's internal/arena
// (playgame.go, cmd/arena/arena.go) for the Go-idiomatic shape of a
// game loop driven over channels under an errgroup.
package match

import (
	"context"
	"errors"
	"fmt"
	"log"
	"strings"
	"time"

	"github.com/dumbarb/dumbarb/internal/clock"
	"github.com/dumbarb/dumbarb/internal/domain"
	"github.com/dumbarb/dumbarb/internal/engine"
	"github.com/dumbarb/dumbarb/internal/gtp"
)

// side bundles one engine instance with its identity, clock and
// accumulated move log for the duration of one game.
type side struct {
	instance *engine.Instance
	name     string
	color    domain.Color
	clock    *clock.State
	moves    []domain.MoveRecord
}

func (s *side) record(coord string, elapsed time.Duration) {
	s.moves = append(s.moves, domain.MoveRecord{Color: s.color, Coord: coord, Elapsed: elapsed})
}

func (s *side) stats() domain.SideStats {
	var st domain.SideStats
	for _, m := range s.moves {
		st.MoveCount++
		st.TotalThink += m.Elapsed
		if m.Elapsed > st.MaxThink {
			st.MaxThink = m.Elapsed
		}
	}
	if st.MoveCount > 0 {
		st.AvgThink = st.TotalThink / time.Duration(st.MoveCount)
	}
	return st
}

// Outcome carries a finished game's result plus the set of engine
// instances that must be restarted before the next game begins
// (spec.md §4.4: "supervisor restart ... is scheduled after the game
// result is emitted").
type Outcome struct {
	Result       domain.GameResult
	NeedsRestart []*engine.Instance
}

// Play runs one game to completion. engineASide is the colour
// Engine A plays this game; the Match runner decides alternation
// (spec.md §4.5).
func Play(
	ctx context.Context,
	seq int,
	engineA, engineB *engine.Instance,
	scorer *lazyScorer,
	engineASide domain.Color,
	plan domain.MatchPlan,
	runLog *log.Logger,
) Outcome {
	var black, white *side
	blackInst, whiteInst := engineA, engineB
	if engineASide == domain.Black {
		black = &side{instance: engineA, name: engineA.Spec.Name, color: domain.Black, clock: clock.New(plan.Settings.Time)}
		white = &side{instance: engineB, name: engineB.Spec.Name, color: domain.White, clock: clock.New(plan.Settings.Time)}
	} else {
		black = &side{instance: engineB, name: engineB.Spec.Name, color: domain.Black, clock: clock.New(plan.Settings.Time)}
		white = &side{instance: engineA, name: engineA.Spec.Name, color: domain.White, clock: clock.New(plan.Settings.Time)}
		blackInst, whiteInst = engineB, engineA
	}

	result := domain.GameResult{
		Seq:         seq,
		Timestamp:   time.Time{},
		EngineAName: engineA.Spec.Name,
		EngineASide: engineASide,
		EngineBName: engineB.Spec.Name,
		EngineBSide: engineASide.Opposite(),
	}

	var notes []string
	if err := setupGame(ctx, blackInst, plan.Settings, &notes); err != nil {
		o, restart := failOutcome(err, blackInst)
		return finish(result, black, white, o, restart, runLog, notes)
	}
	if err := setupGame(ctx, whiteInst, plan.Settings, &notes); err != nil {
		o, restart := failOutcome(err, whiteInst)
		return finish(result, black, white, o, restart, runLog, notes)
	}
	for _, n := range notes {
		if runLog != nil {
			runLog.Printf("[#%d] %s", seq, n)
		}
	}

	consecutivePasses := 0
	toScore := false

	mover, other := black, white
	for {
		select {
		case <-ctx.Done():
			return finish(result, black, white, domain.GameOutcome{Kind: domain.OutcomeUnfinished}, nil, runLog, nil)
		default:
		}

		seconds, stonesOrPeriods := mover.clock.TimeLeft()
		if _, err := mover.instance.Command(ctx, timeLeftCommand(mover.color, seconds, stonesOrPeriods), plan.Timeouts.GtpTimeout); err != nil {
			o, restart := failOutcome(err, mover.instance)
			return finish(result, black, white, o, restart, runLog, nil)
		}

		timeout := genmoveTimeout(mover.clock, plan.Timeouts)
		t0 := time.Now()
		resp, err := mover.instance.Command(ctx, "genmove "+string(mover.color), timeout)
		elapsed := time.Since(t0)

		if err == gtp.ErrTimeout {
			mover.clock.Deduct(elapsed)
			mover.record("timeout", elapsed)
			outcome := domain.GameOutcome{Kind: domain.OutcomeTime, Loser: mover.color}
			return finish(result, black, white, outcome, []*engine.Instance{mover.instance}, runLog, nil)
		}
		if err != nil {
			o, restart := failOutcome(err, mover.instance)
			return finish(result, black, white, o, restart, runLog, nil)
		}

		vertex := strings.TrimSpace(resp)

		violated := mover.clock.Deduct(elapsed)
		if violated {
			result.Violations = append(result.Violations, domain.Violation{
				EngineName: mover.name,
				MoveNum:    len(mover.moves) + 1,
				Elapsed:    elapsed,
			})
			if plan.EnforceTime {
				mover.record(vertex, elapsed)
				outcome := domain.GameOutcome{Kind: domain.OutcomeTime, Loser: mover.color}
				return finish(result, black, white, outcome, nil, runLog, nil)
			}
			mover.clock.ClampAfterViolation()
		}

		switch {
		case strings.EqualFold(vertex, "resign"):
			mover.record("resign", elapsed)
			outcome := domain.GameOutcome{Kind: domain.OutcomeResign, Loser: mover.color}
			return finish(result, black, white, outcome, nil, runLog, nil)

		case strings.EqualFold(vertex, "pass"):
			mover.record("pass", elapsed)
			consecutivePasses++
			if consecutivePasses >= plan.ConsecutivePasses {
				toScore = true
			}

		default:
			mover.record(vertex, elapsed)
			consecutivePasses = 0
			if _, err := other.instance.Command(ctx, fmt.Sprintf("play %s %s", mover.color, vertex), plan.Timeouts.GtpTimeout); err != nil {
				if gtp.IsIllegalMove(err) {
					outcome := domain.GameOutcome{Kind: domain.OutcomeIllegal, Loser: mover.color}
					return finish(result, black, white, outcome, nil, runLog, nil)
				}
				o, restart := failOutcome(err, other.instance)
				return finish(result, black, white, o, restart, runLog, nil)
			}
		}

		if toScore {
			break
		}

		if plan.MoveWait > 0 {
			select {
			case <-ctx.Done():
				return finish(result, black, white, domain.GameOutcome{Kind: domain.OutcomeUnfinished}, nil, runLog, nil)
			case <-time.After(plan.MoveWait):
			}
		}
		mover, other = other, mover
	}

	outcome, badScorer := score(ctx, scorer, black, white, plan)
	var restart []*engine.Instance
	if badScorer != nil && outcome.Kind != domain.OutcomeUnfinished {
		restart = []*engine.Instance{badScorer}
	}
	return finish(result, black, white, outcome, restart, runLog, nil)
}

// genmoveTimeout is the remaining-budget-plus-slack deadline for a
// genmove call (spec.md §4.3 "remaining-budget for the genmove timeout").
func genmoveTimeout(c *clock.State, t domain.TimeoutSettings) time.Duration {
	budget := c.RemainingBudget()
	if budget < 0 {
		return t.GtpGenmoveUntimedTO
	}
	return budget + t.GtpGenmoveExtra
}

func errorOutcome(err error) domain.GameOutcome {
	return domain.GameOutcome{Kind: domain.OutcomeError, Detail: err.Error()}
}

// failOutcome classifies a failed engine exchange: a tripped shutdown
// token ends the game Unfinished with nothing to restart (spec.md §5,
// §7), anything else is an engine-side Error that poisons the engine.
func failOutcome(err error, in *engine.Instance) (domain.GameOutcome, []*engine.Instance) {
	if errors.Is(err, gtp.ErrCancelled) {
		return domain.GameOutcome{Kind: domain.OutcomeUnfinished}, nil
	}
	return errorOutcome(err), []*engine.Instance{in}
}

func finish(result domain.GameResult, black, white *side, outcome domain.GameOutcome, restart []*engine.Instance, runLog *log.Logger, notes []string) Outcome {
	black.instance.RunPostGame(context.Background(), runLog)
	white.instance.RunPostGame(context.Background(), runLog)

	result.Timestamp = time.Now()
	result.Outcome = outcome
	result.Moves = interleave(black.moves, white.moves)
	result.TotalMoves = len(result.Moves)
	if outcome.Kind == domain.OutcomeResign {
		result.TotalMoves--
	}

	// Map each side's accumulated stats/moves back onto the A/B slots
	// GameResult uses, since black/white can be either engine depending
	// on colour alternation.
	var aStats, bStats domain.SideStats
	if result.EngineASide == domain.Black {
		aStats, bStats = black.stats(), white.stats()
	} else {
		aStats, bStats = white.stats(), black.stats()
	}
	result.StatsA, result.StatsB = aStats, bStats

	for _, n := range notes {
		if runLog != nil {
			runLog.Printf("[#%d] %s", result.Seq, n)
		}
	}
	return Outcome{Result: result, NeedsRestart: restart}
}

// interleave reorders two sides' move logs back into play order:
// moves alternate colour starting with Black (spec.md §8 invariant 3).
func interleave(black, white []domain.MoveRecord) []domain.MoveRecord {
	out := make([]domain.MoveRecord, 0, len(black)+len(white))
	for i := 0; i < len(black) || i < len(white); i++ {
		if i < len(black) {
			out = append(out, black[i])
		}
		if i < len(white) {
			out = append(out, white[i])
		}
	}
	return out
}
