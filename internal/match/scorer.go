package match

import (
	"context"
	"errors"
	"fmt"
	"log"
	"strconv"
	"strings"

	"github.com/dumbarb/dumbarb/internal/domain"
	"github.com/dumbarb/dumbarb/internal/engine"
	"github.com/dumbarb/dumbarb/internal/gtp"
)

// lazyScorer defers spawning the scorer engine until the first game
// that actually needs it (spec.md §4.4 step 4: "spawn on first use,
// reused across games of the same match").
type lazyScorer struct {
	spec     *domain.EngineSpec
	timeouts domain.TimeoutSettings
	matchDir string
	runLog   *log.Logger

	instance *engine.Instance
}

func newLazyScorer(spec *domain.EngineSpec, timeouts domain.TimeoutSettings, matchDir string, runLog *log.Logger) *lazyScorer {
	if spec == nil {
		return nil
	}
	return &lazyScorer{spec: spec, timeouts: timeouts, matchDir: matchDir, runLog: runLog}
}

func (l *lazyScorer) ensure(ctx context.Context, settings domain.GameSettings) (*engine.Instance, error) {
	if l.instance == nil {
		l.instance = engine.New(*l.spec, l.timeouts, l.matchDir, l.runLog)
	}
	if l.instance.SupportedCmds == nil {
		if err := l.instance.Start(ctx, settings); err != nil {
			return nil, err
		}
	}
	return l.instance, nil
}

// score replays a passed-out game through the scorer engine and
// parses its final_score reply (spec.md §4.4 step 4). When there is
// no scorer configured the game ends Passed with no winner recorded.
// The second return value is the scorer instance to restart, non-nil
// only when the scorer itself is at fault.
func score(ctx context.Context, scorer *lazyScorer, black, white *side, plan domain.MatchPlan) (domain.GameOutcome, *engine.Instance) {
	if scorer == nil {
		return domain.GameOutcome{Kind: domain.OutcomePassed}, nil
	}

	in, err := scorer.ensure(ctx, plan.Settings)
	if err != nil {
		return scorerError(err), in
	}

	if err := setupGame(ctx, in, plan.Settings, nil); err != nil {
		return scorerError(err), in
	}

	for _, m := range interleave(black.moves, white.moves) {
		if m.Coord == "resign" || m.Coord == "timeout" {
			continue
		}
		cmd := fmt.Sprintf("play %s %s", m.Color, m.Coord)
		if _, err := in.Command(ctx, cmd, plan.Timeouts.GtpTimeout); err != nil {
			return scorerError(err), in
		}
	}

	resp, err := in.Command(ctx, "final_score", plan.Timeouts.GtpScorerTO)
	if err != nil {
		return scorerError(err), in
	}
	return parseFinalScore(resp), nil
}

// parseFinalScore interprets a GTP final_score reply: "W+X", "B+X",
// "0" / "draw" (Jigo), anything else is a scorer parse failure.
func parseFinalScore(resp string) domain.GameOutcome {
	body := strings.TrimSpace(resp)
	if body == "0" || strings.EqualFold(body, "draw") {
		return domain.GameOutcome{Kind: domain.OutcomeJigo}
	}

	if len(body) < 3 || body[1] != '+' {
		return domain.GameOutcome{Kind: domain.OutcomeError, Detail: "SD: unparseable final_score reply " + strconv.Quote(body)}
	}
	var winner domain.Color
	switch strings.ToUpper(body[:1]) {
	case "W":
		winner = domain.White
	case "B":
		winner = domain.Black
	default:
		return domain.GameOutcome{Kind: domain.OutcomeError, Detail: "SD: unparseable final_score reply " + strconv.Quote(body)}
	}
	return domain.GameOutcome{Kind: domain.OutcomeScore, ScoreWin: winner, Margin: body[2:]}
}

func scorerError(err error) domain.GameOutcome {
	if errors.Is(err, gtp.ErrCancelled) {
		return domain.GameOutcome{Kind: domain.OutcomeUnfinished}
	}
	return domain.GameOutcome{Kind: domain.OutcomeError, Detail: "SD: scorer failure: " + err.Error()}
}
