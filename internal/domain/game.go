package domain

import "time"

// Color is a GTP side indicator, "B" or "W".
type Color string

const (
	Black Color = "B"
	White Color = "W"
)

// Opposite returns the other color.
func (c Color) Opposite() Color {
	if c == Black {
		return White
	}
	return Black
}

// GameSettings are the board parameters sent to both engines before a game.
type GameSettings struct {
	BoardSize int
	Komi      float64
	Time      TimeSettings
}

// TimeoutSettings are the match-wide GTP command deadlines referenced
// throughout spec.md §4.2/§4.4 as GtpTimeout, GtpInitialTimeout,
// GtpGenmoveExtra, GtpGenmoveUntimedTO and GtpScorerTO. One set is
// shared by every engine instance in a match.
type TimeoutSettings struct {
	GtpTimeout          time.Duration
	GtpInitialTimeout   time.Duration
	GtpGenmoveExtra     time.Duration
	GtpGenmoveUntimedTO time.Duration
	GtpScorerTO         time.Duration
}

// DefaultTimeoutSettings mirrors original_source/dumbarb.py's built-in
// defaults: a generous handshake window, a few seconds of slack on top
// of the clock-derived genmove deadline, and a full minute for untimed
// genmove / scoring, which routinely run a full-board search.
func DefaultTimeoutSettings() TimeoutSettings {
	const gtpTimeout = 10 * time.Second
	return TimeoutSettings{
		GtpTimeout:          gtpTimeout,
		GtpInitialTimeout:   maxDuration(15*time.Second, gtpTimeout),
		GtpGenmoveExtra:     5 * time.Second,
		GtpGenmoveUntimedTO: 60 * time.Second,
		GtpScorerTO:         60 * time.Second,
	}
}

func maxDuration(a, b time.Duration) time.Duration {
	if a > b {
		return a
	}
	return b
}

// EngineSpec describes how to launch and address one engine across a match.
// Command line fields may contain the placeholders documented in spec.md §3.
type EngineSpec struct {
	Name              string
	CmdLine           string
	WorkDir           string
	Quiet             bool
	LogStderr         bool
	GtpInitialTimeout time.Duration
	PreMatch          []string
	PostMatch         []string
	PreGame           []string
	PostGame          []string
}

// MatchPlan is the validated, ready-to-run description of a match
// produced by the configuration parser (spec.md §3 MatchPlan).
type MatchPlan struct {
	EngineA EngineSpec
	EngineB EngineSpec
	Scorer  *EngineSpec // nil: no scorer, passed-out games end Passed

	Settings GameSettings
	Timeouts TimeoutSettings

	NumGames int

	MatchWait time.Duration
	GameWait  time.Duration
	MoveWait  time.Duration

	ConsecutivePasses int
	EnforceTime       bool
	DisableSgf        bool
	LogStdErr         bool

	MatchDir  string
	MatchName string
}

// MoveRecord is one played move and how long it took to generate.
type MoveRecord struct {
	Color   Color
	Coord   string // "pass", "resign", or a board vertex such as "D4"
	Elapsed time.Duration
}

// OutcomeKind tags the variant held by GameOutcome.
type OutcomeKind int

const (
	OutcomeResign OutcomeKind = iota
	OutcomeScore
	OutcomeTime
	OutcomeIllegal
	OutcomePassed
	OutcomeJigo
	OutcomeUnfinished
	OutcomeError
)

// GameOutcome is the tagged result of a single game.
type GameOutcome struct {
	Kind     OutcomeKind
	Loser    Color  // Resign, Time, Illegal (the offender for Illegal)
	Margin   string // Score: the text after "+" e.g. "7.5"
	ScoreWin Color  // Score: winner's color
	Detail   string // Error: a short description
}

// Violation records one measured clock over-run.
type Violation struct {
	EngineName string
	MoveNum    int
	Elapsed    time.Duration
}

// SideStats aggregates one side's move timings for a finished game.
type SideStats struct {
	MoveCount  int
	TotalThink time.Duration
	AvgThink   time.Duration
	MaxThink   time.Duration
}

// GameResult is everything recorded about one finished (or aborted) game.
type GameResult struct {
	Seq         int
	Timestamp   time.Time
	EngineAName string
	EngineASide Color
	EngineBName string
	EngineBSide Color
	Outcome     GameOutcome
	Moves       []MoveRecord
	TotalMoves  int
	StatsA      SideStats
	StatsB      SideStats
	Violations  []Violation
}
