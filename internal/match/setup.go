package match

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"github.com/dumbarb/dumbarb/internal/domain"
	"github.com/dumbarb/dumbarb/internal/engine"
)

// timeSettingsCommand builds the GTP time-control setup command for
// one engine, approximating Japanese byo-yomi as Canadian for engines
// that never advertised kgs-time_settings (spec.md §4.2). The second
// return value is a non-empty note when an approximation was applied,
// meant for the .run trace.
func timeSettingsCommand(t domain.TimeSettings, supportsKgs bool) (cmd string, note string) {
	main := int(t.MainTime / time.Second)
	switch t.System {
	case domain.NoTime:
		return fmt.Sprintf("time_settings %d 0 0", main), ""
	case domain.Absolute:
		return fmt.Sprintf("time_settings %d 0 0", main), ""
	case domain.Canadian:
		period := int(t.PeriodTime / time.Second)
		return fmt.Sprintf("time_settings %d %d %d", main, period, t.PeriodCount), ""
	case domain.Japanese:
		period := int(t.PeriodTime / time.Second)
		if supportsKgs {
			return fmt.Sprintf("kgs-time_settings byoyomi %d %d %d", main, period, t.PeriodCount), ""
		}
		return fmt.Sprintf("time_settings %d %d %d", main, period, t.PeriodCount),
			"engine lacks kgs-time_settings: Japanese byo-yomi approximated as Canadian"
	default:
		return fmt.Sprintf("time_settings %d 0 0", main), ""
	}
}

// setupGame sends the per-game boardsize/komi/time-control/clear_board
// sequence followed by PreGame commands to one engine (spec.md §4.4
// step 2).
func setupGame(ctx context.Context, in *engine.Instance, settings domain.GameSettings, notes *[]string) error {
	to := in.Timeouts.GtpTimeout
	if _, err := in.Command(ctx, fmt.Sprintf("boardsize %d", settings.BoardSize), to); err != nil {
		return fmt.Errorf("boardsize: %w", err)
	}
	if _, err := in.Command(ctx, "komi "+strconv.FormatFloat(settings.Komi, 'g', -1, 64), to); err != nil {
		return fmt.Errorf("komi: %w", err)
	}
	cmd, note := timeSettingsCommand(settings.Time, in.SupportsKgsTimeSettings())
	if note != "" && notes != nil {
		*notes = append(*notes, fmt.Sprintf("%s: %s", in.Spec.Name, note))
	}
	if _, err := in.Command(ctx, cmd, to); err != nil {
		return fmt.Errorf("time_settings: %w", err)
	}
	if _, err := in.Command(ctx, "clear_board", to); err != nil {
		return fmt.Errorf("clear_board: %w", err)
	}
	if err := in.RunPreGame(ctx); err != nil {
		return err
	}
	return nil
}

func timeLeftCommand(color domain.Color, seconds, stonesOrPeriods int) string {
	return fmt.Sprintf("time_left %s %d %d", color, seconds, stonesOrPeriods)
}
