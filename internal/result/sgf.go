package result

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/rooklift/sgf"

	"github.com/dumbarb/dumbarb/internal/domain"
)

// sgfResult renders the SGF "RE" property for a finished game in SGF's
// own result vocabulary: W+R / B+R (resign), W+T / B+T (time), B+3.5
// (score), 0 (jigo), and Void for every other outcome.
func sgfResult(r domain.GameResult) string {
	o := r.Outcome
	switch o.Kind {
	case domain.OutcomeResign:
		return string(o.Loser.Opposite()) + "+R"
	case domain.OutcomeTime:
		return string(o.Loser.Opposite()) + "+T"
	case domain.OutcomeScore:
		return string(o.ScoreWin) + "+" + o.Margin
	case domain.OutcomeJigo:
		return "0"
	default:
		return "Void"
	}
}

func colourOf(c domain.Color) sgf.Colour {
	if c == domain.Black {
		return sgf.BLACK
	}
	return sgf.WHITE
}

// BuildSGF renders a finished game as an SGF tree, in the style
// rooklift-twogtp builds one (sgf.NewTree, .SetValue, .PlayColour/
// .PassColour), with the property set spec.md §6 names: GM FF SZ KM PB
// PW DT RE.
func BuildSGF(r domain.GameResult, settings domain.GameSettings, whiteName, blackName string, playedAt time.Time) *sgf.Node {
	root := sgf.NewTree(settings.BoardSize, settings.BoardSize)
	root.SetValue("GM", "1")
	root.SetValue("FF", "4")
	root.SetValue("KM", strconv.FormatFloat(settings.Komi, 'g', -1, 64))
	root.SetValue("PB", blackName)
	root.SetValue("PW", whiteName)
	root.SetValue("DT", playedAt.Format("2006-01-02"))
	root.SetValue("RE", sgfResult(r))

	node := root
	for _, m := range r.Moves {
		colour := colourOf(m.Color)
		switch strings.ToLower(m.Coord) {
		case "resign", "timeout":
			// no SGF node for a non-board terminator move
		case "pass":
			node = node.PassColour(colour)
		default:
			point := sgf.ParseGTP(m.Coord, settings.BoardSize, settings.BoardSize)
			next, err := node.PlayColour(point, colour)
			if err != nil {
				// Malformed vertex slipping through this far is a
				// defect in the game driver, not something SGF output
				// should hide; record it as a comment instead of
				// dropping the move silently.
				node.SetValue("C", fmt.Sprintf("unparseable move %q: %v", m.Coord, err))
				continue
			}
			node = next
		}
	}
	return root
}
