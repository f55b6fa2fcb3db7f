package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/dumbarb/dumbarb/internal/domain"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "match.toml")
	if err := os.WriteFile(path, []byte(body), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}
	return path
}

func TestLoadFullPlan(t *testing.T) {
	path := writeConfig(t, `
num_games = 4
board_size = 9
komi = 5.5
time_system = "canadian"
main_time = "5m"
period_time = "30s"
period_count = 25
tolerance = "50ms"
enforce_time = true
match_name = "smoke"
scorer = "gnugo"

[engines.alpha]
cmd = "randy -pass 100"
log_stderr = true

[engines.beta]
cmd = "gnugo --mode gtp"
pre_game = ["clear_cache"]

[engines.gnugo]
cmd = "gnugo --mode gtp"
`)

	plan, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}

	if plan.EngineA.Name != "alpha" || plan.EngineB.Name != "beta" {
		t.Errorf("engine slots = %s/%s, want alpha/beta (sorted)", plan.EngineA.Name, plan.EngineB.Name)
	}
	if plan.Scorer == nil || plan.Scorer.Name != "gnugo" {
		t.Fatalf("Scorer = %+v, want gnugo", plan.Scorer)
	}
	if plan.NumGames != 4 {
		t.Errorf("NumGames = %d, want 4", plan.NumGames)
	}
	if plan.Settings.BoardSize != 9 || plan.Settings.Komi != 5.5 {
		t.Errorf("board = %d/%v, want 9/5.5", plan.Settings.BoardSize, plan.Settings.Komi)
	}
	ts := plan.Settings.Time
	if ts.System != domain.Canadian || ts.MainTime != 5*time.Minute || ts.PeriodTime != 30*time.Second || ts.PeriodCount != 25 {
		t.Errorf("time settings = %+v", ts)
	}
	if ts.Tolerance != 50*time.Millisecond {
		t.Errorf("Tolerance = %v, want 50ms", ts.Tolerance)
	}
	if !plan.EnforceTime {
		t.Error("EnforceTime not set")
	}
	if !plan.EngineA.LogStderr {
		t.Error("EngineA.LogStderr not set")
	}
	if len(plan.EngineB.PreGame) != 1 || plan.EngineB.PreGame[0] != "clear_cache" {
		t.Errorf("EngineB.PreGame = %v", plan.EngineB.PreGame)
	}
	if plan.MatchName != "smoke" {
		t.Errorf("MatchName = %q", plan.MatchName)
	}
	if plan.MatchDir != filepath.Dir(path) {
		t.Errorf("MatchDir = %q, want %q", plan.MatchDir, filepath.Dir(path))
	}
}

func TestLoadDefaults(t *testing.T) {
	path := writeConfig(t, `
[engines.a]
cmd = "engine-a"

[engines.b]
cmd = "engine-b"
`)
	plan, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if plan.NumGames != 100 {
		t.Errorf("NumGames = %d, want default 100", plan.NumGames)
	}
	if plan.Settings.Time.System != domain.NoTime {
		t.Errorf("System = %v, want NoTime", plan.Settings.Time.System)
	}
	if plan.ConsecutivePasses != 2 {
		t.Errorf("ConsecutivePasses = %d, want 2", plan.ConsecutivePasses)
	}
	if plan.Scorer != nil {
		t.Errorf("Scorer = %+v, want nil", plan.Scorer)
	}
}

func TestLoadRejectsBadPlans(t *testing.T) {
	tests := []struct {
		name string
		body string
	}{
		{"one engine", "[engines.solo]\ncmd = \"x\"\n"},
		{"unknown time system", "time_system = \"hourglass\"\n[engines.a]\ncmd = \"x\"\n[engines.b]\ncmd = \"y\"\n"},
		{"japanese without periods", "time_system = \"japanese\"\nperiod_time = \"0s\"\n[engines.a]\ncmd = \"x\"\n[engines.b]\ncmd = \"y\"\n"},
		{"missing scorer section", "scorer = \"ghost\"\n[engines.a]\ncmd = \"x\"\n[engines.b]\ncmd = \"y\"\n"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := Load(writeConfig(t, tt.body)); err == nil {
				t.Fatal("Load succeeded, want error")
			}
		})
	}
}
