package result

import (
	"fmt"
	"log"
	"os"
	"path/filepath"

	"github.com/dumbarb/dumbarb/internal/domain"
	"github.com/dumbarb/dumbarb/internal/engine"
)

// Writer owns the three append-only artifact streams plus the SGF and
// stderr directories for one match (spec.md §4.6): <match>.log,
// <match>.mvtimes, <match>.run, SGFs/<match>-<seq>.sgf,
// stderr/<match>-<seq>-<enginename>.err. All appends are flushed after
// every game so an abrupt termination leaves a consistent prefix.
type Writer struct {
	matchDir  string
	matchName string

	logFile *os.File
	mvFile  *os.File
	runFile *os.File

	RunLog *log.Logger

	disableSgf bool
	logStderr  bool
}

// NewWriter opens (creating if absent, appending if present — the
// basis for --continue) the three artifact files under matchDir and
// prepares the SGFs/ and stderr/ subdirectories.
func NewWriter(matchDir, matchName string, disableSgf, logStderr bool) (*Writer, error) {
	if err := os.MkdirAll(matchDir, 0o755); err != nil {
		return nil, fmt.Errorf("result: match dir: %w", err)
	}
	w := &Writer{matchDir: matchDir, matchName: matchName, disableSgf: disableSgf, logStderr: logStderr}

	var err error
	if w.logFile, err = openAppend(filepath.Join(matchDir, matchName+".log")); err != nil {
		return nil, err
	}
	if w.mvFile, err = openAppend(filepath.Join(matchDir, matchName+".mvtimes")); err != nil {
		return nil, err
	}
	if w.runFile, err = openAppend(filepath.Join(matchDir, matchName+".run")); err != nil {
		return nil, err
	}
	w.RunLog = log.New(w.runFile, "", log.LstdFlags)

	if !disableSgf {
		if err := os.MkdirAll(filepath.Join(matchDir, "SGFs"), 0o755); err != nil {
			return nil, fmt.Errorf("result: SGFs dir: %w", err)
		}
	}
	if logStderr {
		if err := os.MkdirAll(filepath.Join(matchDir, "stderr"), 0o755); err != nil {
			return nil, fmt.Errorf("result: stderr dir: %w", err)
		}
	}
	return w, nil
}

func openAppend(path string) (*os.File, error) {
	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		return nil, fmt.Errorf("result: open %s: %w", path, err)
	}
	return f, nil
}

// Close releases all open file handles.
func (w *Writer) Close() error {
	var firstErr error
	for _, f := range []*os.File{w.logFile, w.mvFile, w.runFile} {
		if err := f.Close(); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	return firstErr
}

// BeginGame retargets both engines' per-game stderr sink to a fresh
// file named stderr/<match>-<seq>-<enginename>.err (spec.md §4.6). The
// returned closeAll closes the files this call opened; the caller runs
// it when the game ends. It is a no-op when LogStdErr is disabled for
// an engine.
func (w *Writer) BeginGame(seq int, instances ...*engine.Instance) (closeAll func(), err error) {
	var opened []*os.File
	closeAll = func() {
		for _, f := range opened {
			_ = f.Close()
		}
	}
	if !w.logStderr {
		return closeAll, nil
	}
	for _, in := range instances {
		if in == nil || !in.Spec.LogStderr {
			continue
		}
		path := filepath.Join(w.matchDir, "stderr", fmt.Sprintf("%s-%d-%s.err", w.matchName, seq, in.Spec.Name))
		f, ferr := os.Create(path)
		if ferr != nil {
			closeAll()
			return func() {}, fmt.Errorf("result: stderr file: %w", ferr)
		}
		opened = append(opened, f)
		in.Stderr.SetTarget(f)
	}
	return closeAll, nil
}

// Emit appends one game's .log and .mvtimes lines (flushed
// immediately) and, unless disabled, writes its SGF. whiteName/
// blackName are resolved from the GameResult's A/B side assignment.
func (w *Writer) Emit(r domain.GameResult, settings domain.GameSettings) error {
	whiteName, blackName := r.EngineAName, r.EngineBName
	if r.EngineASide == domain.Black {
		whiteName, blackName = r.EngineBName, r.EngineAName
	}

	if _, err := fmt.Fprintln(w.logFile, FormatLogLine(r)); err != nil {
		return fmt.Errorf("result: write .log: %w", err)
	}
	if err := w.logFile.Sync(); err != nil {
		return fmt.Errorf("result: flush .log: %w", err)
	}

	if _, err := fmt.Fprintln(w.mvFile, FormatMoveTimesLine(r)); err != nil {
		return fmt.Errorf("result: write .mvtimes: %w", err)
	}
	if err := w.mvFile.Sync(); err != nil {
		return fmt.Errorf("result: flush .mvtimes: %w", err)
	}

	if !w.disableSgf && r.Outcome.Kind != domain.OutcomeUnfinished {
		tree := BuildSGF(r, settings, whiteName, blackName, r.Timestamp)
		path := filepath.Join(w.matchDir, "SGFs", fmt.Sprintf("%s-%d.sgf", w.matchName, r.Seq))
		tree.Save(path)
	}
	return nil
}
