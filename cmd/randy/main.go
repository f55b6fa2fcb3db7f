// Command randy runs the misbehaving diagnostic GTP bot used to
// exercise a match runner's failure handling. See internal/randy for
// the switch semantics, ported from original_source/dumbutil.py.
package main

import (
	"flag"
	"fmt"
	"io"
	"log"
	"os"

	"github.com/dumbarb/dumbarb/internal/randy"
)

func main() {
	var (
		exitPr    = flag.Float64("exit", 0, "exit on any command with Pr% probability")
		errorPr   = flag.Float64("error", 0, `reply "? error shmerror" to any command with Pr% probability`)
		gibberish = flag.Float64("gibberish", 0, `reply "= gibberish" to any command with Pr% probability`)
		illegal   = flag.Float64("illegal", 0, "say move is illegal in response to play with Pr% probability")
		genIll    = flag.Float64("generate-illegal", 0, "generate illegal moves with Pr% probability")
		resign    = flag.Float64("resign", 0, "resign in response to genmove with Pr% probability")
		pazz      = flag.Float64("pass", 0, "pass in response to genmove with Pr% probability")
		hang      = flag.Float64("hang", 0, "start a busy loop on any command with Pr% probability")
		sleepSecs = flag.Float64("sleep-secs", 0, "seconds to sleep before responding, paired with -sleep-prob")
		sleepProb = flag.Float64("sleep-prob", 0, "probability (0-100) of sleeping -sleep-secs before responding")
		thinkMin  = flag.Float64("think-min", 0, `"think" at least this many seconds before responding`)
		thinkMax  = flag.Float64("think-max", 0, `"think" at most this many seconds before responding`)
		badList   = flag.Bool("badlist", false, "respond to list_commands with only play, quit")
		logFile   = flag.String("logfile", "", "append a transcript of stdin/stdout to this file")
		debug     = flag.Bool("debug", false, "print a startup banner to stderr")
	)
	flag.Parse()

	var logw io.Writer
	if *logFile != "" {
		f, err := os.OpenFile(*logFile, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
		if err != nil {
			log.Fatalf("randy: open logfile: %v", err)
		}
		defer f.Close()
		logw = f
	}

	if *debug {
		fmt.Fprintln(os.Stderr, "Hello! This is Randy.")
	}

	sw := randy.Switches{
		Exit:            *exitPr,
		Error:           *errorPr,
		Gibberish:       *gibberish,
		Illegal:         *illegal,
		GenerateIllegal: *genIll,
		Resign:          *resign,
		Pass:            *pazz,
		Hang:            *hang,
		SleepSecs:       *sleepSecs,
		SleepProb:       *sleepProb,
		ThinkMin:        *thinkMin,
		ThinkMax:        *thinkMax,
		BadList:         *badList,
		Debug:           *debug,
	}

	bot := randy.New(sw, logw)
	bot.Run(os.Stdin, os.Stdout)
}
