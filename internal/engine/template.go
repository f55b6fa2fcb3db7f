package engine

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/dumbarb/dumbarb/internal/domain"
)

// TemplateParams are the values substituted into an EngineSpec.CmdLine
// placeholder string (spec.md §3: "{name}", "{matchdir}", "{boardsize}",
// "{komi}", "{maintime}", "{periodtime}", "{periodcount}", "{timesys}").
type TemplateParams struct {
	Name      string
	MatchDir  string
	BoardSize int
	Komi      float64
	Game      domain.GameSettings
}

// ExpandCommand resolves a command-line template. It is a small explicit
// scanner rather than a regexp substitution: spec.md §9 calls for no
// regexp use here, matching the teacher's own avoidance of the regexp
// package everywhere it parses a small fixed grammar by hand.
func ExpandCommand(template string, p TemplateParams) (string, error) {
	var out strings.Builder
	runes := []rune(template)
	for i := 0; i < len(runes); i++ {
		c := runes[i]
		if c == '{' {
			if i+1 < len(runes) && runes[i+1] == '{' {
				out.WriteByte('{')
				i++
				continue
			}
			end := indexRune(runes, '}', i+1)
			if end < 0 {
				return "", fmt.Errorf("engine: unterminated placeholder in command template %q", template)
			}
			name := string(runes[i+1 : end])
			value, err := resolvePlaceholder(name, p)
			if err != nil {
				return "", err
			}
			out.WriteString(value)
			i = end
			continue
		}
		if c == '}' {
			if i+1 < len(runes) && runes[i+1] == '}' {
				out.WriteByte('}')
				i++
				continue
			}
			return "", fmt.Errorf("engine: unescaped '}' in command template %q", template)
		}
		out.WriteRune(c)
	}
	return out.String(), nil
}

func resolvePlaceholder(name string, p TemplateParams) (string, error) {
	switch name {
	case "name":
		return p.Name, nil
	case "matchdir":
		return p.MatchDir, nil
	case "boardsize":
		return strconv.Itoa(p.Game.BoardSize), nil
	case "komi":
		return strconv.FormatFloat(p.Game.Komi, 'g', -1, 64), nil
	case "maintime":
		return strconv.FormatFloat(p.Game.Time.MainTime.Seconds(), 'g', -1, 64), nil
	case "periodtime":
		return strconv.FormatFloat(p.Game.Time.PeriodTime.Seconds(), 'g', -1, 64), nil
	case "periodcount":
		return strconv.Itoa(p.Game.Time.PeriodCount), nil
	case "timesys":
		return p.Game.Time.System.String(), nil
	default:
		return "", fmt.Errorf("engine: unknown command template placeholder %q", name)
	}
}

func indexRune(runes []rune, target rune, from int) int {
	for i := from; i < len(runes); i++ {
		if runes[i] == target {
			return i
		}
	}
	return -1
}
