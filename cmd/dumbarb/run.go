package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/mattn/go-isatty"
	"github.com/spf13/cobra"

	"github.com/dumbarb/dumbarb/internal/config"
	"github.com/dumbarb/dumbarb/internal/engine"
	"github.com/dumbarb/dumbarb/internal/match"
	"github.com/dumbarb/dumbarb/internal/result"
	"github.com/dumbarb/dumbarb/internal/session"
	"github.com/dumbarb/dumbarb/internal/tui"
)

var (
	flagContinue bool
	flagForce    bool
	flagTUI      bool
	flagOutdir   string
)

var runCmd = &cobra.Command{
	Use:   "run <config-file>",
	Short: "Play out a match described by a config file",
	Args:  cobra.ExactArgs(1),
	RunE:  runRun,
}

func init() {
	runCmd.Flags().BoolVarP(&flagContinue, "continue", "c", false, "resume an existing match directory instead of requiring an empty one")
	runCmd.Flags().BoolVarP(&flagForce, "force", "f", false, "discard existing checkpoint/results and start the match directory over")
	runCmd.Flags().StringVarP(&flagOutdir, "outdir", "o", "", "write match outputs here instead of the config file's directory")
	runCmd.Flags().BoolVar(&flagTUI, "tui", false, "show a live dashboard (only on an interactive terminal)")
	rootCmd.AddCommand(runCmd)
}

func runRun(cmd *cobra.Command, args []string) error {
	plan, err := config.Load(args[0])
	if err != nil {
		return err
	}
	if flagOutdir != "" {
		plan.MatchDir = flagOutdir
	}

	if !flagContinue && !flagForce {
		if entries, err := os.ReadDir(plan.MatchDir); err == nil && len(entries) > 1 {
			// len>1 allows for the config file itself, which lives in
			// MatchDir unless --outdir is given.
			return fmt.Errorf("dumbarb: %s is not empty; pass --continue or --force", plan.MatchDir)
		}
	}

	store, err := session.Open(filepath.Join(plan.MatchDir, ".dumbarb.db"))
	if err != nil {
		return err
	}
	defer store.Close()

	startSeq, err := store.Plan(plan.NumGames, flagForce)
	if err != nil {
		return err
	}
	if flagForce {
		if err := truncateArtifacts(plan.MatchDir, plan.MatchName); err != nil {
			return err
		}
	}

	runID, err := store.NewRun()
	if err != nil {
		return err
	}

	writer, err := result.NewWriter(plan.MatchDir, plan.MatchName, plan.DisableSgf, plan.LogStdErr)
	if err != nil {
		return err
	}
	defer writer.Close()
	writer.RunLog.Printf("run %s: games %d..%d", runID, startSeq, plan.NumGames)

	if startSeq > plan.NumGames {
		writer.RunLog.Printf("run %s: nothing to do, match already complete", runID)
		return nil
	}

	engineA := engine.New(plan.EngineA, plan.Timeouts, plan.MatchDir, writer.RunLog)
	engineB := engine.New(plan.EngineB, plan.Timeouts, plan.MatchDir, writer.RunLog)
	if err := engineA.Start(context.Background(), plan.Settings); err != nil {
		return fmt.Errorf("dumbarb: starting %s: %w", plan.EngineA.Name, err)
	}
	if err := engineB.Start(context.Background(), plan.Settings); err != nil {
		return fmt.Errorf("dumbarb: starting %s: %w", plan.EngineB.Name, err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		<-sigCh
		cancel()
	}()
	defer cancel()

	var subscribe func(match.Outcome) error
	var dashboard *tui.App
	if flagTUI && isatty.IsTerminal(os.Stdout.Fd()) {
		dashboard = tui.New(plan.MatchName, plan.EngineA.Name, plan.EngineB.Name, plan.NumGames)
		subscribe = dashboard.Subscribe()
		go func() {
			if err := dashboard.Run(); err != nil {
				log.Printf("tui: %v", err)
			}
			cancel()
		}()
	}

	recordFn := func(o match.Outcome) error {
		return store.RecordGame(o.Result.Seq, summaryToken(o), runID)
	}
	combined := subscribe
	subscribe = func(o match.Outcome) error {
		if err := recordFn(o); err != nil {
			return err
		}
		if combined != nil {
			return combined(o)
		}
		return nil
	}

	started := time.Now()
	runErr := match.Run(ctx, plan, startSeq, engineA, engineB, plan.Scorer, writer.RunLog, writer, subscribe)
	if dashboard != nil {
		dashboard.Quit()
	}
	writer.RunLog.Printf("run %s: started %s, finished", runID, humanize.Time(started))
	return runErr
}

// truncateArtifacts discards a previous run's output so --force
// starts the match directory over from game 1: the three artifact
// streams plus the SGFs/ and stderr/ subdirectories. The checkpoint
// database is reset separately by store.Plan.
func truncateArtifacts(matchDir, matchName string) error {
	for _, ext := range []string{".log", ".mvtimes", ".run"} {
		path := filepath.Join(matchDir, matchName+ext)
		if err := os.Remove(path); err != nil && !os.IsNotExist(err) {
			return fmt.Errorf("dumbarb: remove %s: %w", path, err)
		}
	}
	for _, sub := range []string{"SGFs", "stderr"} {
		path := filepath.Join(matchDir, sub)
		if err := os.RemoveAll(path); err != nil {
			return fmt.Errorf("dumbarb: remove %s: %w", path, err)
		}
	}
	return nil
}

// summaryToken is the short outcome string the checkpoint store
// records per game; full detail already lives in the .log file.
func summaryToken(o match.Outcome) string {
	ll, err := result.ParseLogLine(result.FormatLogLine(o.Result))
	if err != nil {
		return "?"
	}
	return ll.Winner + " " + ll.Reason
}
