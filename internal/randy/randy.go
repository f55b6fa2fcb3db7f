// Package randy implements Randy, the misbehaving diagnostic GTP bot
// dumbutil.py carries for exercising a match runner's failure paths
// (illegal moves, resignation, hangs, crashes, garbled replies).
//
// Grounded on original_source/dumbutil.py's Randy class; ported from
// its single-process stdin-loop shape into the GTP transport idiom
// internal/gtp and internal/engine already establish (a line-oriented
// request/response loop over stdin/stdout), so Randy is itself a
// valid engine.EngineSpec target, not a special-cased test double.
package randy

import (
	"bufio"
	"fmt"
	"io"
	"math/rand"
	"os"
	"sort"
	"strconv"
	"strings"
	"time"
)

// Switches mirrors dumbutil.py's argparse switches. Each float is a
// 0-100 probability, except SleepSecs (a duration in seconds) and
// ThinkMin/ThinkMax (a range in seconds). All probabilities are
// compared against the same single random draw made per command.
type Switches struct {
	Exit             float64
	Error            float64
	Gibberish        float64
	Illegal          float64
	GenerateIllegal  float64
	Resign           float64
	Pass             float64
	Hang             float64
	SleepSecs        float64
	SleepProb        float64
	ThinkMin         float64
	ThinkMax         float64
	BadList          bool
	Debug            bool
}

// Randy holds one game's board state plus the misbehaviour switches
// supplied at startup.
type Randy struct {
	sw Switches

	boardSize int
	komi      float64
	stones    map[string]bool

	out io.Writer
	log io.Writer
}

const letters = "ABCDEFGHJKLMNOPQRSTUVWXYZ" // GTP skips 'I'

// New constructs a Randy ready to Run against stdin/stdout-like
// readers/writers. log may be nil to disable the -logfile mirror.
func New(sw Switches, log io.Writer) *Randy {
	return &Randy{
		sw:        sw,
		boardSize: 19,
		komi:      7.5,
		stones:    make(map[string]bool),
		log:       log,
	}
}

// Run drives the GTP command loop until EOF, quit, or a misbehaviour
// switch terminates the process (hang/exit are intentional: see
// dumbutil.py's Randy._run).
func (r *Randy) Run(in io.Reader, out io.Writer) {
	r.out = out
	scanner := bufio.NewScanner(in)
	scanner.Buffer(make([]byte, 0, 64*1024), 1<<20)
	for scanner.Scan() {
		line := scanner.Text()
		r.logLine(line, " IN> ")
		randf := rand.Float64() * 100

		cmd, args := parseLine(line)
		if cmd == "" {
			continue
		}

		if randf < r.sw.SleepProb {
			time.Sleep(time.Duration(r.sw.SleepSecs * float64(time.Second)))
		}
		if r.sw.ThinkMax > 0 {
			d := r.sw.ThinkMin + rand.Float64()*(r.sw.ThinkMax-r.sw.ThinkMin)
			time.Sleep(time.Duration(d * float64(time.Second)))
		}
		if randf < r.sw.Hang {
			for {
			} // busy-hang forever, as dumbutil.py does
		}
		if randf < r.sw.Exit {
			panicExit()
		}
		if randf < r.sw.Error {
			r.errResp("error shmerror")
			continue
		}
		if randf < r.sw.Gibberish {
			r.resp("gibberish")
			continue
		}

		r.dispatch(cmd, args, randf)
	}
}

// panicExit is split out so tests can observe the intent without the
// process actually dying (Randy is meant to crash on request, mirroring
// dumbutil.py's sys.exit(123)).
var panicExit = func() { osExit(123) }

func parseLine(line string) (cmd string, args []string) {
	if idx := strings.IndexByte(line, '#'); idx >= 0 {
		line = line[:idx]
	}
	fields := strings.Fields(line)
	if len(fields) == 0 {
		return "", nil
	}
	return strings.ToLower(fields[0]), fields[1:]
}

func (r *Randy) dispatch(cmd string, args []string, randf float64) {
	switch cmd {
	case "list_commands":
		r.resp(r.listCommands())
	case "name":
		r.resp("Randy")
	case "version":
		r.resp(fmt.Sprintf("%.2f", randf))
	case "protocol_version":
		r.resp("2")
	case "boardsize":
		r.handleBoardsize(args)
	case "komi":
		r.handleKomi(args)
	case "clear_board":
		r.stones = make(map[string]bool)
		r.resp("")
	case "time_settings":
		r.resp("") // accepted, not tracked (Randy doesn't play time-aware)
	case "kgs-time_settings":
		r.resp("")
	case "time_left":
		r.resp("")
	case "play":
		r.handlePlay(args, randf)
	case "genmove":
		if move, ok := r.handleGenmove(args, randf); ok {
			r.resp(move)
		}
	case "final_score":
		r.resp(r.finalScore())
	case "quit":
		r.resp("")
		osExit(0)
	default:
		r.errResp("unknown command")
	}
}

func (r *Randy) listCommands() string {
	if r.sw.BadList {
		return "play\nquit"
	}
	cmds := []string{
		"list_commands", "name", "version", "protocol_version",
		"boardsize", "komi", "clear_board", "time_settings",
		"kgs-time_settings", "time_left", "play", "genmove",
		"final_score", "quit",
	}
	sort.Strings(cmds)
	return strings.Join(cmds, "\n")
}

func (r *Randy) handleBoardsize(args []string) {
	if len(args) != 1 {
		r.errResp("syntax error: wrong number of arguments")
		return
	}
	size, err := strconv.Atoi(args[0])
	if err != nil || size < 2 || size > 25 {
		r.errResp("unacceptable size")
		return
	}
	r.boardSize = size
	r.resp("")
}

func (r *Randy) handleKomi(args []string) {
	if len(args) != 1 {
		r.errResp("syntax error: wrong number of arguments")
		return
	}
	k, err := strconv.ParseFloat(args[0], 64)
	if err != nil {
		r.errResp(fmt.Sprintf("syntax error: %v", err))
		return
	}
	r.komi = k
	r.resp("")
}

func (r *Randy) handlePlay(args []string, randf float64) {
	if len(args) != 2 {
		r.errResp("syntax error: wrong number of arguments")
		return
	}
	if !validColor(args[0]) {
		r.errResp(fmt.Sprintf("syntax error: invalid color: %s", args[0]))
		return
	}
	if randf < r.sw.Illegal {
		r.errResp("illegal move")
		return
	}
	move := strings.ToUpper(args[1])
	if move == "PASS" || move == "RESIGN" {
		r.resp("")
		return
	}
	if len(move) < 2 || !strings.Contains(letters[:r.boardSize], string(move[0])) {
		r.errResp("illegal move")
		return
	}
	if y, err := strconv.Atoi(move[1:]); err != nil || y < 1 || y > r.boardSize {
		r.errResp("illegal move")
		return
	}
	if r.stones[move] {
		r.errResp("illegal move")
		return
	}
	r.stones[move] = true
	r.resp("")
}

func (r *Randy) handleGenmove(args []string, randf float64) (move string, ok bool) {
	if len(args) != 1 || !validColor(args[0]) {
		r.errResp("syntax error: invalid color")
		return "", false
	}
	if randf < r.sw.Resign {
		return "resign", true
	}
	if randf < r.sw.Pass {
		return "pass", true
	}
	if randf < r.sw.GenerateIllegal {
		if mv := r.anyPlayedStone(); mv != "" {
			return mv, true
		}
		ltr := string(letters[rand.Intn(25)])
		idx := r.boardSize + 1 + rand.Intn(99-r.boardSize)
		return ltr + strconv.Itoa(idx), true
	}
	for i := 0; i < 50; i++ {
		n := rand.Intn(r.boardSize * r.boardSize)
		x := 1 + n%r.boardSize
		y := 1 + n/r.boardSize
		candidate := string(letters[x-1]) + strconv.Itoa(y)
		if !r.stones[candidate] {
			r.stones[candidate] = true
			return candidate, true
		}
	}
	return "pass", true
}

func (r *Randy) anyPlayedStone() string {
	for mv := range r.stones {
		return mv
	}
	return ""
}

func (r *Randy) finalScore() string {
	col := "W"
	if rand.Intn(2) == 1 {
		col = "B"
	}
	pts := float64(rand.Intn(101)) + 0.5
	return fmt.Sprintf("%s+%.1f", col, pts)
}

func validColor(c string) bool {
	switch strings.ToUpper(c) {
	case "WHITE", "BLACK", "W", "B":
		return true
	}
	return false
}

func (r *Randy) resp(msg string) {
	if msg == "" {
		r.respRaw("=")
		return
	}
	r.respRaw("= " + msg)
}

func (r *Randy) errResp(msg string) { r.respRaw("? " + msg) }

func (r *Randy) respRaw(s string) {
	fmt.Fprint(r.out, s+"\n\n")
	if f, ok := r.out.(interface{ Flush() error }); ok {
		_ = f.Flush()
	}
	r.logLine(s, "OUT< ")
}

func (r *Randy) logLine(s, pre string) {
	if r.log == nil {
		return
	}
	fmt.Fprintf(r.log, "%s%s\n", pre, s)
}

// osExit is a var so tests can swap in a non-terminating stand-in.
var osExit = os.Exit
