package match

import (
	"context"
	"fmt"
	"log"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/dumbarb/dumbarb/internal/domain"
	"github.com/dumbarb/dumbarb/internal/engine"
	"github.com/dumbarb/dumbarb/internal/result"
)

// gameSlot is one entry in the sequenced game schedule: which game
// number and which colour Engine A plays (spec.md §4.5 alternation).
type gameSlot struct {
	seq         int
	engineASide domain.Color
}

// maxRestartRetries is how many consecutive failed (re)starts a
// supervisor is allowed before the match terminates with all
// remaining games Unfinished (spec.md §4.5: "fails to start/restart
// after one retry").
const maxRestartRetries = 1

// Run sequences startSeq..plan.NumGames, alternating colours, and
// passes each finished game, in order, to writer.Emit and then to
// subscribe. It is built as a
// CounterGo-arena-style errgroup pipeline (cmd/arena/arena.go,
// internal/arena/playgame.go): one stage produces game slots onto a
// channel, one stage plays them, to keep the result consumer
// decoupled from the game loop even though — per spec.md §1
// Non-goals — games never run concurrently, so there is exactly one
// game-playing goroutine.
// writer is the authoritative artifact sink (.log/.mvtimes/.run/SGF,
// spec.md §4.6); subscribe is an optional additional consumer of each
// finished game's Outcome, e.g. a live TUI dashboard.
func Run(
	ctx context.Context,
	plan domain.MatchPlan,
	startSeq int,
	engineA, engineB *engine.Instance,
	scorerSpec *domain.EngineSpec,
	runLog *log.Logger,
	writer *result.Writer,
	subscribe func(Outcome) error,
) error {
	scorer := newLazyScorer(scorerSpec, plan.Timeouts, plan.MatchDir, runLog)

	g, gctx := errgroup.WithContext(ctx)

	slots := make(chan gameSlot)
	results := make(chan Outcome)

	g.Go(func() error {
		defer close(slots)
		return scheduleSlots(gctx, plan, startSeq, slots)
	})

	g.Go(func() error {
		defer close(results)
		return playSlots(gctx, plan, engineA, engineB, scorer, runLog, writer, slots, results)
	})

	g.Go(func() error {
		for r := range results {
			if err := writer.Emit(r.Result, plan.Settings); err != nil {
				return err
			}
			if subscribe != nil {
				if err := subscribe(r); err != nil {
					return err
				}
			}
		}
		return nil
	})

	runErr := g.Wait()

	// PostMatch/quit run against the outer ctx rather than the
	// errgroup's gctx, so a game-loop error that cancels gctx still gets
	// a clean shutdown attempt (spec.md §4.5: "after all games: PostMatch
	// ... then quit and reap"). If ctx itself was cancelled, PostMatch
	// commands fail at once, "quit" is still written, and the child is
	// reaped after the grace period.
	teardown(ctx, engineA, runLog)
	teardown(ctx, engineB, runLog)
	if scorer != nil && scorer.instance != nil {
		teardown(ctx, scorer.instance, runLog)
	}

	return runErr
}

func teardown(ctx context.Context, in *engine.Instance, runLog *log.Logger) {
	in.RunPostMatch(ctx, runLog)
	in.Quit(ctx)
}

func scheduleSlots(ctx context.Context, plan domain.MatchPlan, startSeq int, slots chan<- gameSlot) error {
	for seq := startSeq; seq <= plan.NumGames; seq++ {
		wait := plan.GameWait
		if seq == startSeq {
			wait = plan.MatchWait
		}
		if wait > 0 {
			select {
			case <-ctx.Done():
				return ctx.Err()
			case <-time.After(wait):
			}
		}
		side := domain.Black
		if seq%2 == 0 {
			side = domain.White
		}
		select {
		case <-ctx.Done():
			return ctx.Err()
		case slots <- gameSlot{seq: seq, engineASide: side}:
		}
	}
	return nil
}

func playSlots(
	ctx context.Context,
	plan domain.MatchPlan,
	engineA, engineB *engine.Instance,
	scorer *lazyScorer,
	runLog *log.Logger,
	writer *result.Writer,
	slots <-chan gameSlot,
	results chan<- Outcome,
) error {
	for slot := range slots {
		closeStderr, err := writer.BeginGame(slot.seq, engineA, engineB)
		if err != nil && runLog != nil {
			runLog.Printf("[#%d] stderr file: %v", slot.seq, err)
		}
		outcome := Play(ctx, slot.seq, engineA, engineB, scorer, slot.engineASide, plan, runLog)
		closeStderr()

		select {
		case <-ctx.Done():
			return ctx.Err()
		case results <- outcome:
		}

		for _, in := range outcome.NeedsRestart {
			if err := restartWithRetry(ctx, in, plan.Settings, runLog); err != nil {
				if emitErr := emitUnfinishedRemainder(ctx, plan, engineA, engineB, slot.seq+1, results); emitErr != nil {
					return emitErr
				}
				// Returning the restart error cancels the group context so
				// scheduleSlots (blocked offering the next slot) unblocks
				// instead of leaking.
				return err
			}
		}
	}
	return nil
}

// restartWithRetry gives a dead supervisor one retry (spec.md §4.5)
// before treating the failure as fatal to the match.
func restartWithRetry(ctx context.Context, in *engine.Instance, settings domain.GameSettings, runLog *log.Logger) error {
	var err error
	for attempt := 0; attempt <= maxRestartRetries; attempt++ {
		if in.SupportedCmds == nil {
			err = in.Start(ctx, settings)
		} else {
			err = in.Restart(ctx, settings)
		}
		if err == nil {
			return nil
		}
		if runLog != nil {
			runLog.Printf("engine %s: (re)start attempt %d failed: %v", in.Spec.Name, attempt+1, err)
		}
	}
	return fmt.Errorf("engine %s: exhausted restart retries: %w", in.Spec.Name, err)
}

// emitUnfinishedRemainder records every not-yet-played game from
// fromSeq through plan.NumGames as Unfinished, used when a supervisor
// cannot be recovered (spec.md §4.5).
func emitUnfinishedRemainder(ctx context.Context, plan domain.MatchPlan, engineA, engineB *engine.Instance, fromSeq int, results chan<- Outcome) error {
	for seq := fromSeq; seq <= plan.NumGames; seq++ {
		side := domain.Black
		if seq%2 == 0 {
			side = domain.White
		}
		r := domain.GameResult{
			Seq:         seq,
			Timestamp:   time.Now(),
			EngineAName: engineA.Spec.Name,
			EngineASide: side,
			EngineBName: engineB.Spec.Name,
			EngineBSide: side.Opposite(),
			Outcome:     domain.GameOutcome{Kind: domain.OutcomeUnfinished},
		}
		select {
		case <-ctx.Done():
			return ctx.Err()
		case results <- Outcome{Result: r}:
		}
	}
	return nil
}
