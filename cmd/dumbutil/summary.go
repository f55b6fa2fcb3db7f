package main

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/dumbarb/dumbarb/internal/report"
	"github.com/dumbarb/dumbarb/internal/result"
)

// engineTally accumulates one engine's side of summaryCmd, mirroring
// original_source/dumbutil.py's summary()'s fir/sec dicts.
type engineTally struct {
	name               string
	playedW, playedB   int
	wins, winsW, winsB int
	moveCount          int
	totalThink         float64
	maxThink           float64
	firstViolator      int
	totalViolations    int
	badWins            int
}

// recordViolations tallies how many times t appears in one game's
// violation list, and whether t was both the game's winner and its
// first-named violator ("bad win": it should plausibly have lost on
// time), matching dumbutil.py's fir['bad']/sec['bad'] bookkeeping.
func (t *engineTally) recordViolations(vioField, winner string) {
	if vioField == "None" {
		return
	}
	parts := strings.Split(vioField, ", ")
	firstIsT := false
	for i, p := range parts {
		if strings.HasPrefix(p, t.name+" ") {
			t.totalViolations++
			if i == 0 {
				t.firstViolator++
				firstIsT = true
			}
		}
	}
	if firstIsT && winner == t.name {
		t.badWins++
	}
}

// summaryCmd prints the human-readable head-to-head breakdown for one
// .log file, ported from dumbutil.py's summary() (single-opening
// variant; fnum=1's double-opening bookkeeping isn't applicable here
// since dumbarb doesn't replay fixed openings).
func summaryCmd(path string) error {
	f, err := os.Open(path)
	if err != nil {
		return fmt.Errorf("dumbutil: %w", err)
	}
	defer f.Close()

	var fir, sec *engineTally
	count, totalMoves, maxMoves := 0, 0, 0
	minMoves := -1

	sc := bufio.NewScanner(f)
	sc.Buffer(make([]byte, 0, 64*1024), 1<<20)
	for sc.Scan() {
		line := strings.TrimSpace(sc.Text())
		if line == "" {
			continue
		}
		ll, err := result.ParseLogLine(line)
		if err != nil {
			return fmt.Errorf("dumbutil: %s: %w", path, err)
		}
		count++

		if fir == nil {
			fir = &engineTally{name: ll.EngineA}
		}
		if sec == nil {
			sec = &engineTally{name: ll.EngineB}
		}
		if fir.name != ll.EngineA || sec.name != ll.EngineB {
			return fmt.Errorf("dumbutil: %s: engine names changed at game %d", path, count)
		}

		tally(fir, ll.ColorA, ll.Winner, ll.MovesA, ll.TotalA, ll.MaxA, ll.Violations)
		tally(sec, ll.ColorB, ll.Winner, ll.MovesB, ll.TotalB, ll.MaxB, ll.Violations)

		totalMoves += ll.TotalMoves
		if maxMoves == 0 || ll.TotalMoves > maxMoves {
			maxMoves = ll.TotalMoves
		}
		if minMoves == -1 || ll.TotalMoves < minMoves {
			minMoves = ll.TotalMoves
		}
	}
	if err := sc.Err(); err != nil {
		return fmt.Errorf("dumbutil: %s: %w", path, err)
	}
	if count == 0 {
		return fmt.Errorf("dumbutil: %s: no games found", path)
	}

	width := len(fir.name)
	if len(sec.name) > width {
		width = len(sec.name)
	}

	avg := float64(totalMoves) / float64(count)
	fmt.Printf("%*s     %d games, total moves %d, avg %.1f, min %d, max %d\n",
		width, "", count, totalMoves, avg, minMoves, maxMoves)
	fmt.Printf("%*s    W   B  total wins   wins as W   wins as B  avg t/mv  max t/mv  viols\n", width, "")
	for _, t := range []*engineTally{fir, sec} {
		printTallyRow(t, width, count)
	}
	fmt.Printf("bad wins, being first to exceed time: %s %d; %s %d (NOT reflected above)\n",
		fir.name, fir.badWins, sec.name, sec.badWins)
	return nil
}

func tally(t *engineTally, color, winner string, moves int, totalThink, maxThink float64, vio string) {
	switch color {
	case "W":
		t.playedW++
	case "B":
		t.playedB++
	}
	if winner == t.name {
		t.wins++
		switch color {
		case "W":
			t.winsW++
		case "B":
			t.winsB++
		}
	}
	t.moveCount += moves
	t.totalThink += totalThink
	if maxThink > t.maxThink {
		t.maxThink = maxThink
	}
	t.recordViolations(vio, winner)
}

func printTallyRow(t *engineTally, width, count int) {
	winPct := 100 * float64(t.wins) / float64(count)
	wPct, bPct := 0.0, 0.0
	if t.playedW > 0 {
		wPct = 100 * float64(t.winsW) / float64(t.playedW)
	}
	if t.playedB > 0 {
		bPct = 100 * float64(t.winsB) / float64(t.playedB)
	}
	avgT := 0.0
	if t.moveCount > 0 {
		avgT = t.totalThink / float64(t.moveCount)
	}
	fmt.Printf("%*s: %3d %3d %3d [%4.1f%%] %3d [%4.1f%%] %3d [%4.1f%%] %7.3fs %7.3fs %2d/%3d\n",
		width, t.name,
		t.playedW, t.playedB,
		t.wins, winPct,
		t.winsW, wPct,
		t.winsB, bPct,
		avgT, t.maxThink,
		t.firstViolator, t.totalViolations,
	)
}

// htmlReportCmd renders logPath's match log as a standalone HTML
// report, an option dumbutil.py's plain-text summary doesn't have but
// which the result package's parsed fields make close to free.
func htmlReportCmd(logPath string, w io.Writer) error {
	f, err := os.Open(logPath)
	if err != nil {
		return fmt.Errorf("dumbutil: %w", err)
	}
	defer f.Close()

	matchName := strings.TrimSuffix(filepath.Base(logPath), filepath.Ext(logPath))
	summary, err := report.Summarize(matchName, f)
	if err != nil {
		return fmt.Errorf("dumbutil: %w", err)
	}
	return report.WriteHTML(w, summary)
}
