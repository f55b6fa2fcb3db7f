package match

import (
	"context"
	"testing"
	"time"

	"github.com/dumbarb/dumbarb/internal/domain"
	"github.com/dumbarb/dumbarb/internal/engine"
	"github.com/dumbarb/dumbarb/internal/gtp"
	"github.com/dumbarb/dumbarb/internal/gtp/faketest"
)

func testTimeouts() domain.TimeoutSettings {
	return domain.TimeoutSettings{
		GtpTimeout:          2 * time.Second,
		GtpInitialTimeout:   2 * time.Second,
		GtpGenmoveExtra:     2 * time.Second,
		GtpGenmoveUntimedTO: 2 * time.Second,
		GtpScorerTO:         2 * time.Second,
	}
}

func basePlan() domain.MatchPlan {
	return domain.MatchPlan{
		Settings:          domain.GameSettings{BoardSize: 9, Komi: 7.5, Time: domain.TimeSettings{System: domain.NoTime}},
		Timeouts:          testTimeouts(),
		ConsecutivePasses: 2,
	}
}

// baseScript covers the boardsize/komi/time_settings/clear_board setup
// sequence and the handshake trio every faketest.Engine needs before
// it can play a move.
func baseScript(name, timeSettingsCmd string) map[string]string {
	return map[string]string{
		"list_commands": "",
		"name":          name,
		"version":       "1.0",
		"boardsize 9":   "",
		"komi 7.5":      "",
		timeSettingsCmd: "",
		"clear_board":   "",
	}
}

func mergeScripts(base map[string]string, extra map[string]string) map[string]string {
	out := make(map[string]string, len(base)+len(extra))
	for k, v := range base {
		out[k] = v
	}
	for k, v := range extra {
		out[k] = v
	}
	return out
}

// scriptHandler turns a plain command->response map into a
// faketest.Engine Handler, replying with a GTP error for anything
// unscripted instead of silently matching nothing.
func scriptHandler(script map[string]string) func(string) (string, bool) {
	return func(cmd string) (string, bool) {
		if resp, ok := script[cmd]; ok {
			return resp, false
		}
		return "unscripted command " + cmd, true
	}
}

func attach(t *testing.T, name string, eng *faketest.Engine, timeouts domain.TimeoutSettings) *engine.Instance {
	t.Helper()
	tr := gtp.New(eng.StdinW, eng.StdoutR)
	inst := engine.Attach(domain.EngineSpec{Name: name}, timeouts, tr)
	if err := inst.Handshake(context.Background()); err != nil {
		t.Fatalf("%s handshake: %v", name, err)
	}
	return inst
}

// S1 — Black resigns on its very first move.
func TestPlayBlackResignsS1(t *testing.T) {
	engA := faketest.NewEngine()
	engA.Script = mergeScripts(baseScript("A", "time_settings 0 0 0"), map[string]string{
		"time_left B 0 0": "",
		"genmove B":       "resign",
	})
	engB := faketest.NewEngine()
	engB.Script = baseScript("B", "time_settings 0 0 0")
	defer engA.Close()
	defer engB.Close()

	instA := attach(t, "A", engA, testTimeouts())
	instB := attach(t, "B", engB, testTimeouts())

	outcome := Play(context.Background(), 1, instA, instB, nil, domain.Black, basePlan(), nil)

	if outcome.Result.Outcome.Kind != domain.OutcomeResign {
		t.Fatalf("Kind = %v, want OutcomeResign", outcome.Result.Outcome.Kind)
	}
	if outcome.Result.Outcome.Loser != domain.Black {
		t.Fatalf("Loser = %v, want Black", outcome.Result.Outcome.Loser)
	}
	if outcome.NeedsRestart != nil {
		t.Fatalf("NeedsRestart = %v, want nil", outcome.NeedsRestart)
	}
}

// S2 — Canadian byo-yomi timeout, enforced: mainTime=0, periodTime=5s,
// periodCount=1, tolerance=50ms. Black takes 5.2s on its first move,
// which overruns the single period and ends the game immediately
// since EnforceTime is set (mirrors clock.TestCanadianTimeoutS2's
// numbers, exercised here through the full move loop).
func TestPlayCanadianTimeoutS2(t *testing.T) {
	timeSettings := domain.TimeSettings{
		System:      domain.Canadian,
		MainTime:    0,
		PeriodTime:  5 * time.Second,
		PeriodCount: 1,
		Tolerance:   50 * time.Millisecond,
	}
	timeSettingsCmd := "time_settings 0 5 1"

	engA := faketest.NewEngine()
	aScript := mergeScripts(baseScript("A", timeSettingsCmd), map[string]string{
		"time_left B 0 0": "",
	})
	engA.Handler = func(cmd string) (string, bool) {
		if cmd == "genmove B" {
			time.Sleep(5200 * time.Millisecond)
			return "D4", false
		}
		return scriptHandler(aScript)(cmd)
	}
	engB := faketest.NewEngine()
	engB.Script = baseScript("B", timeSettingsCmd)
	defer engA.Close()
	defer engB.Close()

	timeouts := testTimeouts()
	timeouts.GtpGenmoveExtra = 3 * time.Second

	instA := attach(t, "A", engA, timeouts)
	instB := attach(t, "B", engB, timeouts)

	plan := basePlan()
	plan.Settings.Time = timeSettings
	plan.Timeouts = timeouts
	plan.EnforceTime = true

	outcome := Play(context.Background(), 2, instA, instB, nil, domain.Black, plan, nil)

	if outcome.Result.Outcome.Kind != domain.OutcomeTime {
		t.Fatalf("Kind = %v, want OutcomeTime", outcome.Result.Outcome.Kind)
	}
	if outcome.Result.Outcome.Loser != domain.Black {
		t.Fatalf("Loser = %v, want Black", outcome.Result.Outcome.Loser)
	}
	if len(outcome.Result.Violations) != 1 {
		t.Fatalf("Violations = %v, want exactly one", outcome.Result.Violations)
	}
}

// S4 — both sides pass consecutively and the configured scorer
// decides the result. The scorer is itself a faketest.Engine, wired in
// directly as an already-running lazyScorer so score() never tries to
// spawn a real subprocess.
func TestPlayConsecutivePassesScoredS4(t *testing.T) {
	timeSettingsCmd := "time_settings 0 0 0"

	engA := faketest.NewEngine()
	engA.Script = mergeScripts(baseScript("A", timeSettingsCmd), map[string]string{
		"time_left B 0 0": "",
		"genmove B":       "pass",
	})
	engB := faketest.NewEngine()
	engB.Script = mergeScripts(baseScript("B", timeSettingsCmd), map[string]string{
		"time_left W 0 0": "",
		"genmove W":       "pass",
	})
	engS := faketest.NewEngine()
	engS.Script = mergeScripts(baseScript("Scorer", timeSettingsCmd), map[string]string{
		"play B pass": "",
		"play W pass": "",
		"final_score": "B+5.5",
	})
	defer engA.Close()
	defer engB.Close()
	defer engS.Close()

	timeouts := testTimeouts()
	instA := attach(t, "A", engA, timeouts)
	instB := attach(t, "B", engB, timeouts)
	scorerInst := attach(t, "Scorer", engS, timeouts)
	scorer := &lazyScorer{instance: scorerInst}

	plan := basePlan()
	plan.ConsecutivePasses = 2

	outcome := Play(context.Background(), 4, instA, instB, scorer, domain.Black, plan, nil)

	if outcome.Result.Outcome.Kind != domain.OutcomeScore {
		t.Fatalf("Kind = %v, want OutcomeScore", outcome.Result.Outcome.Kind)
	}
	if outcome.Result.Outcome.ScoreWin != domain.Black {
		t.Fatalf("ScoreWin = %v, want Black", outcome.Result.Outcome.ScoreWin)
	}
	if outcome.Result.Outcome.Margin != "5.5" {
		t.Fatalf("Margin = %q, want 5.5", outcome.Result.Outcome.Margin)
	}
}

// S4b — a passed-out game with no scorer configured ends Passed
// without ever contacting a third engine.
func TestPlayConsecutivePassesNoScorerS4(t *testing.T) {
	timeSettingsCmd := "time_settings 0 0 0"

	engA := faketest.NewEngine()
	engA.Script = mergeScripts(baseScript("A", timeSettingsCmd), map[string]string{
		"time_left B 0 0": "",
		"genmove B":       "pass",
	})
	engB := faketest.NewEngine()
	engB.Script = mergeScripts(baseScript("B", timeSettingsCmd), map[string]string{
		"time_left W 0 0": "",
		"genmove W":       "pass",
	})
	defer engA.Close()
	defer engB.Close()

	timeouts := testTimeouts()
	instA := attach(t, "A", engA, timeouts)
	instB := attach(t, "B", engB, timeouts)

	outcome := Play(context.Background(), 5, instA, instB, nil, domain.Black, basePlan(), nil)

	if outcome.Result.Outcome.Kind != domain.OutcomePassed {
		t.Fatalf("Kind = %v, want OutcomePassed", outcome.Result.Outcome.Kind)
	}
}

// S5 — White's process dies right as it is told about Black's move:
// the handler tears down its own pipes instead of answering "play",
// which is exactly what a crashed subprocess looks like from the
// transport's side (EOF on stdout, a failed write on stdin).
func TestPlayEngineCrashMidGameS5(t *testing.T) {
	timeSettingsCmd := "time_settings 0 0 0"

	engA := faketest.NewEngine()
	engA.Script = mergeScripts(baseScript("A", timeSettingsCmd), map[string]string{
		"time_left B 0 0": "",
		"genmove B":       "D4",
	})
	engB := faketest.NewEngine()
	bScript := baseScript("B", timeSettingsCmd)
	engB.Handler = func(cmd string) (string, bool) {
		if cmd == "play B D4" {
			engB.Close()
			return "", false
		}
		return scriptHandler(bScript)(cmd)
	}
	defer engA.Close()
	defer engB.Close()

	timeouts := testTimeouts()
	instA := attach(t, "A", engA, timeouts)
	instB := attach(t, "B", engB, timeouts)

	outcome := Play(context.Background(), 6, instA, instB, nil, domain.Black, basePlan(), nil)

	if outcome.Result.Outcome.Kind != domain.OutcomeError {
		t.Fatalf("Kind = %v, want OutcomeError", outcome.Result.Outcome.Kind)
	}
	if len(outcome.NeedsRestart) != 1 || outcome.NeedsRestart[0] != instB {
		t.Fatalf("NeedsRestart = %v, want [instB]", outcome.NeedsRestart)
	}
}

// S6 — White claims Black's move is illegal.
func TestPlayIllegalMoveS6(t *testing.T) {
	timeSettingsCmd := "time_settings 0 0 0"

	engA := faketest.NewEngine()
	engA.Script = mergeScripts(baseScript("A", timeSettingsCmd), map[string]string{
		"time_left B 0 0": "",
		"genmove B":       "D4",
	})
	engB := faketest.NewEngine()
	bScript := baseScript("B", timeSettingsCmd)
	engB.Handler = func(cmd string) (string, bool) {
		if cmd == "play B D4" {
			return "illegal move", true
		}
		return scriptHandler(bScript)(cmd)
	}
	defer engA.Close()
	defer engB.Close()

	timeouts := testTimeouts()
	instA := attach(t, "A", engA, timeouts)
	instB := attach(t, "B", engB, timeouts)

	outcome := Play(context.Background(), 7, instA, instB, nil, domain.Black, basePlan(), nil)

	if outcome.Result.Outcome.Kind != domain.OutcomeIllegal {
		t.Fatalf("Kind = %v, want OutcomeIllegal", outcome.Result.Outcome.Kind)
	}
	if outcome.Result.Outcome.Loser != domain.Black {
		t.Fatalf("Loser = %v, want Black", outcome.Result.Outcome.Loser)
	}
}
