// Package engine supervises one GTP engine subprocess across the
// lifetime of a match: spawning it from a command-line template,
// performing the startup handshake, forwarding commands with the
// deadline rules of spec.md §4.2, and restarting it after a crash or
// protocol stall.
//
// Grounded on original_source/dumbarb.py's GTPEngine construction
// (Popen wiring, quit-then-wait-then-kill teardown) and on
// Iron-Ham-claudio's internal/cleanup process-group handling for the
// OS-appropriate terminate-with-grace-then-force-kill shape (see
// procattr_unix.go / procattr_windows.go).
package engine

import (
	"context"
	"fmt"
	"io"
	"log"
	"os"
	"os/exec"
	"strings"
	"time"

	"github.com/dumbarb/dumbarb/internal/domain"
	"github.com/dumbarb/dumbarb/internal/gtp"
)

// waitQuit is how long quit() and restart() wait for the child to exit
// on its own before force-killing it (mirrors dumbarb.py's WAITQUIT).
const waitQuit = 5 * time.Second

// Instance is a running, supervised engine subprocess.
type Instance struct {
	Spec     domain.EngineSpec
	Timeouts domain.TimeoutSettings

	matchDir string
	logger   *log.Logger

	cmd       *exec.Cmd
	transport *gtp.Transport

	ReportedName    string
	ReportedVersion string
	SupportedCmds   map[string]bool

	RestartCount int
	firstStart   bool

	// Stderr is the swappable stderr drain target (spec.md §4.6: one
	// file per game). Exported so the result writer can retarget it at
	// each game boundary.
	Stderr *StderrSink
}

// New creates a supervisor for spec, not yet started. The engine's
// stderr is mirrored to the arbiter's own stderr unless Spec.Quiet is
// set (spec.md §4.1 "unless Quiet, also mirrors to the arbiter's own stderr").
func New(spec domain.EngineSpec, timeouts domain.TimeoutSettings, matchDir string, logger *log.Logger) *Instance {
	var mirror io.Writer
	if !spec.Quiet {
		mirror = os.Stderr
	}
	return &Instance{
		Spec:       spec,
		Timeouts:   timeouts,
		matchDir:   matchDir,
		logger:     logger,
		firstStart: true,
		Stderr:     newStderrSink(mirror),
	}
}

// Start resolves the command template, spawns the child, performs the
// list_commands/name/version handshake, and issues PreMatch commands
// (first start only) (spec.md §4.2 "start()"). PreGame commands are not
// sent here; RunPreGame sends them once per game.
func (in *Instance) Start(ctx context.Context, game domain.GameSettings) error {
	resolved, err := ExpandCommand(in.Spec.CmdLine, TemplateParams{
		Name:      in.Spec.Name,
		MatchDir:  in.matchDir,
		BoardSize: game.BoardSize,
		Komi:      game.Komi,
		Game:      game,
	})
	if err != nil {
		return fmt.Errorf("engine %s: %w", in.Spec.Name, err)
	}

	args := splitCommandLine(resolved)
	if len(args) == 0 {
		return fmt.Errorf("engine %s: empty command line", in.Spec.Name)
	}

	cmd := exec.Command(args[0], args[1:]...)
	if in.Spec.WorkDir != "" {
		cmd.Dir = in.Spec.WorkDir
	}
	configureProcAttr(cmd)

	stdin, err := cmd.StdinPipe()
	if err != nil {
		return fmt.Errorf("engine %s: stdin pipe: %w", in.Spec.Name, err)
	}
	stdout, err := cmd.StdoutPipe()
	if err != nil {
		return fmt.Errorf("engine %s: stdout pipe: %w", in.Spec.Name, err)
	}
	stderr, err := cmd.StderrPipe()
	if err != nil {
		return fmt.Errorf("engine %s: stderr pipe: %w", in.Spec.Name, err)
	}

	if err := cmd.Start(); err != nil {
		return fmt.Errorf("engine %s: start: %w", in.Spec.Name, err)
	}

	in.cmd = cmd
	in.transport = gtp.New(stdin, stdout)

	go gtp.DrainStderr(stderr, in.Stderr)

	return in.handshake(ctx)
}

// Attach wires a supervisor directly to an already-connected
// transport, skipping process spawning. It exists for tests that
// exercise the handshake/command logic against internal/gtp/faketest
// without a real subprocess. An attached instance has no command line
// to respawn from, so Restart on it fails.
func Attach(spec domain.EngineSpec, timeouts domain.TimeoutSettings, transport *gtp.Transport) *Instance {
	in := New(spec, timeouts, "", nil)
	in.transport = transport
	return in
}

// Handshake runs the list_commands/name/version/PreMatch sequence
// against whatever transport is already wired, for use by Attach.
func (in *Instance) Handshake(ctx context.Context) error {
	return in.handshake(ctx)
}

func (in *Instance) handshake(ctx context.Context) error {
	handshakeCtx, cancel := context.WithTimeout(ctx, in.Timeouts.GtpInitialTimeout)
	defer cancel()

	listed, err := in.transport.Send(handshakeCtx, "list_commands")
	if err != nil {
		return fmt.Errorf("engine %s: list_commands: %w", in.Spec.Name, err)
	}
	in.SupportedCmds = parseCommandList(listed)

	if name, err := in.transport.Send(handshakeCtx, "name"); err == nil {
		in.ReportedName = strings.TrimSpace(name)
	}
	if version, err := in.transport.Send(handshakeCtx, "version"); err == nil {
		in.ReportedVersion = strings.TrimSpace(version)
	}

	if in.firstStart {
		for _, c := range in.Spec.PreMatch {
			if _, err := in.Command(ctx, c, in.Timeouts.GtpTimeout); err != nil {
				return fmt.Errorf("engine %s: PreMatch %q: %w", in.Spec.Name, c, err)
			}
		}
		in.firstStart = false
	}
	return nil
}

// RunPreGame issues the engine's PreGame custom commands. The game
// driver calls this once per game, as part of §4.4 step 2 setup,
// rather than Start treating it as a once-per-process step.
func (in *Instance) RunPreGame(ctx context.Context) error {
	for _, c := range in.Spec.PreGame {
		if _, err := in.Command(ctx, c, in.Timeouts.GtpTimeout); err != nil {
			return fmt.Errorf("engine %s: PreGame %q: %w", in.Spec.Name, c, err)
		}
	}
	return nil
}

// RunPostGame issues the engine's PostGame custom commands,
// best-effort (spec.md §4.4 step 5: failures are logged, never change
// the outcome).
func (in *Instance) RunPostGame(ctx context.Context, logger *log.Logger) {
	for _, c := range in.Spec.PostGame {
		if _, err := in.Command(ctx, c, in.Timeouts.GtpTimeout); err != nil && logger != nil {
			logger.Printf("engine %s: PostGame %q failed: %v", in.Spec.Name, c, err)
		}
	}
}

// RunPostMatch issues the engine's PostMatch custom commands,
// best-effort, before Quit.
func (in *Instance) RunPostMatch(ctx context.Context, logger *log.Logger) {
	for _, c := range in.Spec.PostMatch {
		if _, err := in.Command(ctx, c, in.Timeouts.GtpTimeout); err != nil && logger != nil {
			logger.Printf("engine %s: PostMatch %q failed: %v", in.Spec.Name, c, err)
		}
	}
}

// Command forwards cmd to the transport under the given timeout
// (spec.md §4.2 "command(cmd, timeout)").
func (in *Instance) Command(ctx context.Context, cmd string, timeout time.Duration) (string, error) {
	cctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()
	return in.transport.Send(cctx, cmd)
}

// SupportsKgsTimeSettings reports whether the engine advertised
// kgs-time_settings during its handshake (spec.md §4.2: only such
// engines receive Japanese byo-yomi setup verbatim).
func (in *Instance) SupportsKgsTimeSettings() bool {
	return in.SupportedCmds != nil && in.SupportedCmds["kgs-time_settings"]
}

// Restart kills the child (grace period then force-kill), increments
// the restart counter, and re-runs Start.
func (in *Instance) Restart(ctx context.Context, game domain.GameSettings) error {
	in.killChild(waitQuit)
	in.RestartCount++
	if in.logger != nil {
		in.logger.Printf("engine %s: restarting (restart #%d)", in.Spec.Name, in.RestartCount)
	}
	return in.Start(ctx, game)
}

// Quit sends "quit" best-effort and ensures the process is reaped
// (spec.md §4.2 "quit()").
func (in *Instance) Quit(ctx context.Context) {
	if in.transport != nil {
		cctx, cancel := context.WithTimeout(ctx, in.Timeouts.GtpTimeout)
		_, _ = in.transport.Send(cctx, "quit")
		cancel()
		_ = in.transport.Close()
	}
	in.killChild(waitQuit)
}

func (in *Instance) killChild(grace time.Duration) {
	if in.cmd == nil || in.cmd.Process == nil {
		return
	}
	done := make(chan error, 1)
	go func() { done <- in.cmd.Wait() }()

	select {
	case <-done:
	case <-time.After(grace):
		_ = in.cmd.Process.Kill()
		<-done
	}
}

func parseCommandList(body string) map[string]bool {
	set := make(map[string]bool)
	for _, line := range strings.Split(body, "\n") {
		line = strings.TrimSpace(line)
		if line != "" {
			set[line] = true
		}
	}
	return set
}

// splitCommandLine tokenizes a resolved command line on spaces,
// honoring double-quoted segments so paths and arguments containing
// spaces (e.g. "{matchdir}") survive substitution.
func splitCommandLine(s string) []string {
	var args []string
	var cur strings.Builder
	inQuotes := false
	flush := func() {
		if cur.Len() > 0 {
			args = append(args, cur.String())
			cur.Reset()
		}
	}
	for _, r := range s {
		switch {
		case r == '"':
			inQuotes = !inQuotes
		case r == ' ' && !inQuotes:
			flush()
		default:
			cur.WriteRune(r)
		}
	}
	flush()
	return args
}
