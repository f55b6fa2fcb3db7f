// Package report builds a head-to-head HTML summary from a match's
// .log file, supplementing spec.md's core arbiter with the kind of
// end-of-match scoreboard dumbutil.py's -s mode prints as plain text.
//
// The win/loss/draw tally and Elo/LOS formulas are ported from
// ChizhovVadim-CounterGo's cmd/arena/showresults.go computeStat, the
// one place in the example pack that already implements match
// statistics; html/template renders the summary since nothing in the
// pack uses a-h/templ (noted in SPEC_FULL.md as considered-and-not-
// wired) and html/template is the teacher-adjacent stdlib choice for
// a single static report page.
package report

import (
	"fmt"
	"html/template"
	"io"
	"math"
	"strings"

	"github.com/dumbarb/dumbarb/internal/result"
)

// Stat holds one engine-pair's aggregate score, using the same
// formulas as ChizhovVadim-CounterGo's computeStat.
type Stat struct {
	Wins, Losses, Draws int
	WinningFraction      float64
	EloDifference        float64
	LOS                  float64
}

// ComputeStat mirrors cmd/arena/showresults.go's computeStat, read from
// EngineA's perspective (wins/losses/draws of A vs B), except that a
// winning fraction of 0 or 1 gives an Elo difference of -Inf or +Inf.
func ComputeStat(wins, losses, draws int) Stat {
	games := wins + losses + draws
	if games == 0 {
		return Stat{}
	}
	wf := (float64(wins) + 0.5*float64(draws)) / float64(games)
	var elo float64
	switch {
	case wf <= 0:
		elo = math.Inf(-1)
	case wf >= 1:
		elo = math.Inf(1)
	default:
		elo = -math.Log(1/wf-1) * 400 / math.Ln10
	}
	los := 0.5 + 0.5*math.Erf(float64(wins-losses)/math.Sqrt(2*float64(wins+losses)))
	return Stat{
		Wins: wins, Losses: losses, Draws: draws,
		WinningFraction: wf, EloDifference: elo, LOS: los,
	}
}

// Summary is the data a report page renders.
type Summary struct {
	MatchName        string
	EngineA, EngineB string
	Stat             Stat
	Games            []result.LogLine
	Violations       int
}

// Summarize reads every line of a match's .log (as produced by
// result.FormatLogLine) and tallies EngineA's wins/losses/draws plus
// violation counts.
func Summarize(matchName string, logLines io.Reader) (Summary, error) {
	lines, err := readLines(logLines)
	if err != nil {
		return Summary{}, err
	}

	var s Summary
	s.MatchName = matchName
	var wins, losses, draws int
	for _, raw := range lines {
		if strings.TrimSpace(raw) == "" {
			continue
		}
		ll, err := result.ParseLogLine(raw)
		if err != nil {
			return Summary{}, fmt.Errorf("report: parse log line: %w", err)
		}
		s.Games = append(s.Games, ll)
		if s.EngineA == "" {
			s.EngineA, s.EngineB = ll.EngineA, ll.EngineB
		}
		if ll.Violations != "None" {
			s.Violations++
		}

		switch {
		case ll.Winner == "Jigo":
			draws++
		case ll.Winner == ll.EngineA:
			wins++
		case ll.Winner == ll.EngineB:
			losses++
		default:
			// ERR/UFIN/None: neither side credited, excluded from the
			// win-rate denominator like CounterGo excludes aborted games.
		}
	}
	s.Stat = ComputeStat(wins, losses, draws)
	return s, nil
}

func readLines(r io.Reader) ([]string, error) {
	b, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("report: read log: %w", err)
	}
	return strings.Split(strings.TrimRight(string(b), "\n"), "\n"), nil
}

const pageTemplate = `<!DOCTYPE html>
<html>
<head>
<meta charset="utf-8">
<title>{{.MatchName}}: {{.EngineA}} vs {{.EngineB}}</title>
<style>
body { font-family: sans-serif; margin: 2em; }
table { border-collapse: collapse; }
td, th { border: 1px solid #ccc; padding: 0.3em 0.6em; text-align: right; }
th { text-align: center; }
</style>
</head>
<body>
<h1>{{.MatchName}}</h1>
<h2>{{.EngineA}} vs {{.EngineB}}</h2>
<table>
<tr><th>Wins</th><th>Losses</th><th>Draws</th><th>Score</th><th>Elo diff</th><th>LOS</th><th>Violations</th></tr>
<tr>
<td>{{.Stat.Wins}}</td>
<td>{{.Stat.Losses}}</td>
<td>{{.Stat.Draws}}</td>
<td>{{printf "%.3f" .Stat.WinningFraction}}</td>
<td>{{printf "%.1f" .Stat.EloDifference}}</td>
<td>{{printf "%.1f%%" (mul .Stat.LOS 100)}}</td>
<td>{{.Violations}}</td>
</tr>
</table>
<h3>Games</h3>
<table>
<tr><th>#</th><th>Winner</th><th>Reason</th><th>Moves</th><th>Violations</th></tr>
{{range .Games}}<tr><td>{{.Seq}}</td><td>{{.Winner}}</td><td>{{.Reason}}</td><td>{{.TotalMoves}}</td><td>{{.Violations}}</td></tr>
{{end}}</table>
</body>
</html>
`

var tmpl = template.Must(template.New("report").Funcs(template.FuncMap{
	"mul": func(a, b float64) float64 { return a * b },
}).Parse(pageTemplate))

// WriteHTML renders s as a standalone HTML page.
func WriteHTML(w io.Writer, s Summary) error {
	return tmpl.Execute(w, s)
}
