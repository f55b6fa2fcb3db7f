// Package result implements the Result emitter (spec.md §4.6, §6):
// formatting and appending the three per-match artifact streams
// (.log, .mvtimes, .run) plus per-game SGF and stderr files.
//
// Grounded on original_source/dumbarb.py's FMT_PRERE/FMT_WIN_W/
// FMT_WIN_B/FMT_JIGO/FMT_RSERR/FMT_REST format strings and playMatch's
// construction of a GameResult line, reworked into the explicit
// whitespace-separated layout spec.md §6 specifies.
package result

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/dumbarb/dumbarb/internal/domain"
)

// reasonAndWinner renders the two result-line tokens that follow "="
// (spec.md §6): the winner token (engine name, "Jigo", "None", "UFIN"
// or "ERR") and the reason token (one of the codes spec.md §6 lists).
func reasonAndWinner(r domain.GameResult) (winner, reason string) {
	o := r.Outcome
	nameOf := func(c domain.Color) string {
		if r.EngineASide == c {
			return r.EngineAName
		}
		return r.EngineBName
	}
	switch o.Kind {
	case domain.OutcomeResign:
		w := o.Loser.Opposite()
		return nameOf(w), string(w) + "+Resign"
	case domain.OutcomeTime:
		w := o.Loser.Opposite()
		return nameOf(w), string(w) + "+Time"
	case domain.OutcomeScore:
		return nameOf(o.ScoreWin), string(o.ScoreWin) + "+" + o.Margin
	case domain.OutcomeJigo:
		return "Jigo", "=="
	case domain.OutcomePassed:
		return "None", "XX"
	case domain.OutcomeIllegal:
		return "ERR", "IL"
	case domain.OutcomeUnfinished:
		return "UFIN", "UFIN"
	case domain.OutcomeError:
		reason := "EE"
		if strings.HasPrefix(o.Detail, "SD") {
			reason = "SD"
		}
		return "ERR", reason
	default:
		return "None", "XX"
	}
}

// FormatViolations renders r.Violations as spec.md §6's
// "<engine> <moveNum>[<elapsed>], ..." list, or "None" when empty.
func FormatViolations(vs []domain.Violation) string {
	if len(vs) == 0 {
		return "None"
	}
	parts := make([]string, len(vs))
	for i, v := range vs {
		parts[i] = fmt.Sprintf("%s %d[%s]", v.EngineName, v.MoveNum, formatSeconds(v.Elapsed))
	}
	return strings.Join(parts, ", ")
}

func formatSeconds(d time.Duration) string {
	return strconv.FormatFloat(d.Seconds(), 'f', 6, 64)
}

// FormatLogLine renders one .log line (spec.md §6):
//
//	YYMMDD-HH:MM:SS [#N] <engA> <colA> <engB> <colB> = <winner> <reason> <totalMoves> <mvA> <mvB> <ttA> <avgA> <maxA> <ttB> <avgB> <maxB> VIO: <violations>
func FormatLogLine(r domain.GameResult) string {
	winner, reason := reasonAndWinner(r)
	return fmt.Sprintf(
		"%s [#%d] %s %s %s %s = %s %s %d %d %d %s %s %s %s %s %s VIO: %s",
		r.Timestamp.Format("060102-15:04:05"),
		r.Seq,
		r.EngineAName, r.EngineASide,
		r.EngineBName, r.EngineBSide,
		winner, reason,
		r.TotalMoves,
		r.StatsA.MoveCount, r.StatsB.MoveCount,
		formatSeconds(r.StatsA.TotalThink), formatSeconds(r.StatsA.AvgThink), formatSeconds(r.StatsA.MaxThink),
		formatSeconds(r.StatsB.TotalThink), formatSeconds(r.StatsB.AvgThink), formatSeconds(r.StatsB.MaxThink),
		FormatViolations(r.Violations),
	)
}

// FormatMoveTimesLine renders one .mvtimes line (spec.md §6):
// "[#N] <coord1>[<t1>] <coord2>[<t2>] ...".
func FormatMoveTimesLine(r domain.GameResult) string {
	var b strings.Builder
	fmt.Fprintf(&b, "[#%d]", r.Seq)
	for _, m := range r.Moves {
		fmt.Fprintf(&b, " %s[%s]", m.Coord, formatSeconds(m.Elapsed))
	}
	return b.String()
}

// LogLine is a parsed .log line, used by the summary/report tools.
type LogLine struct {
	Seq                int
	EngineA, EngineB   string
	ColorA, ColorB     string
	Winner, Reason     string
	TotalMoves         int
	MovesA, MovesB     int
	TotalA, TotalB     float64
	AvgA, AvgB         float64
	MaxA, MaxB         float64
	Violations         string
}

// ParseLogLine parses one FormatLogLine result back into structured
// fields, the inverse operation dumbutil.py's summary mode performs
// when it re-reads a .log file.
func ParseLogLine(line string) (LogLine, error) {
	var ll LogLine
	fields := strings.Fields(line)
	if len(fields) < 18 {
		return ll, fmt.Errorf("result: malformed log line (only %d fields): %q", len(fields), line)
	}
	// fields[0] timestamp, [1] "[#N]"
	seqStr := strings.TrimSuffix(strings.TrimPrefix(fields[1], "[#"), "]")
	seq, err := strconv.Atoi(seqStr)
	if err != nil {
		return ll, fmt.Errorf("result: bad seqno in %q: %w", line, err)
	}
	ll.Seq = seq
	ll.EngineA, ll.ColorA = fields[2], fields[3]
	ll.EngineB, ll.ColorB = fields[4], fields[5]
	// fields[6] is "="
	ll.Winner, ll.Reason = fields[7], fields[8]
	ll.TotalMoves, _ = strconv.Atoi(fields[9])
	ll.MovesA, _ = strconv.Atoi(fields[10])
	ll.MovesB, _ = strconv.Atoi(fields[11])
	ll.TotalA, _ = strconv.ParseFloat(fields[12], 64)
	ll.AvgA, _ = strconv.ParseFloat(fields[13], 64)
	ll.MaxA, _ = strconv.ParseFloat(fields[14], 64)
	ll.TotalB, _ = strconv.ParseFloat(fields[15], 64)
	ll.AvgB, _ = strconv.ParseFloat(fields[16], 64)
	ll.MaxB, _ = strconv.ParseFloat(fields[17], 64)
	if idx := strings.Index(line, "VIO:"); idx >= 0 {
		ll.Violations = strings.TrimSpace(line[idx+len("VIO:"):])
	}
	return ll, nil
}
