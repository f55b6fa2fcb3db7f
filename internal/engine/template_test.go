package engine

import (
	"testing"
	"time"

	"github.com/dumbarb/dumbarb/internal/domain"
)

func TestExpandCommand(t *testing.T) {
	params := TemplateParams{
		Name:     "gnugo",
		MatchDir: "/tmp/match-1",
		Game: domain.GameSettings{
			BoardSize: 19,
			Komi:      7.5,
			Time: domain.TimeSettings{
				System:      domain.Canadian,
				MainTime:    5 * time.Minute,
				PeriodTime:  30 * time.Second,
				PeriodCount: 5,
			},
		},
	}

	tests := []struct {
		name     string
		template string
		want     string
	}{
		{"literal", "gnugo --mode gtp", "gnugo --mode gtp"},
		{"name", "echo {name}", "echo gnugo"},
		{"matchdir", "--dir {matchdir}", "--dir /tmp/match-1"},
		{"boardsize-komi", "--size {boardsize} --komi {komi}", "--size 19 --komi 7.5"},
		{"time", "--main {maintime} --period {periodtime} --count {periodcount}", "--main 300 --period 30 --count 5"},
		{"timesys", "--sys {timesys}", "--sys canadian"},
		{"escaped-braces", "echo {{not a placeholder}}", "echo {not a placeholder}"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ExpandCommand(tt.template, params)
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if got != tt.want {
				t.Fatalf("got %q, want %q", got, tt.want)
			}
		})
	}
}

func TestExpandCommandErrors(t *testing.T) {
	p := TemplateParams{}
	if _, err := ExpandCommand("echo {bogus}", p); err == nil {
		t.Fatal("expected error for unknown placeholder")
	}
	if _, err := ExpandCommand("echo {unterminated", p); err == nil {
		t.Fatal("expected error for unterminated placeholder")
	}
}

func TestSplitCommandLine(t *testing.T) {
	tests := []struct {
		in   string
		want []string
	}{
		{"gnugo --mode gtp", []string{"gnugo", "--mode", "gtp"}},
		{`leela --config "/tmp/my dir/cfg.txt"`, []string{"leela", "--config", "/tmp/my dir/cfg.txt"}},
		{"single", []string{"single"}},
	}
	for _, tt := range tests {
		got := splitCommandLine(tt.in)
		if len(got) != len(tt.want) {
			t.Fatalf("splitCommandLine(%q) = %v, want %v", tt.in, got, tt.want)
		}
		for i := range got {
			if got[i] != tt.want[i] {
				t.Fatalf("splitCommandLine(%q)[%d] = %q, want %q", tt.in, i, got[i], tt.want[i])
			}
		}
	}
}
