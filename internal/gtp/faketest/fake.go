// Package faketest provides an in-process, scriptable GTP peer for
// unit tests of internal/gtp and internal/match (which drives
// internal/engine supervisors attached to it), playing the same role original_source/dumbutil.py's
// Randy plays for manual end-to-end testing (see internal/randy for
// the real subprocess port of Randy).
package faketest

import (
	"context"
	"io"
	"sync"
)

// Engine is a pipe-connected fake engine process. Script maps an exact
// command string to a canned response; Handler, when set, replaces
// Script entirely (Script is then not consulted) and can implement
// stateful behaviour (e.g. "always resign on move 3").
type Engine struct {
	Script  map[string]string
	Handler func(command string) (response string, isError bool)

	stdinR  *io.PipeReader
	StdinW  io.WriteCloser
	StdoutR io.Reader
	stdoutW *io.PipeWriter

	mu     sync.Mutex
	closed bool
}

// NewEngine starts the fake engine's command-processing goroutine and
// returns the pipe ends a Transport should be constructed with.
func NewEngine() *Engine {
	inR, inW := io.Pipe()
	outR, outW := io.Pipe()
	e := &Engine{
		stdinR:  inR,
		StdinW:  inW,
		StdoutR: outR,
		stdoutW: outW,
	}
	go e.run()
	return e
}

func (e *Engine) run() {
	var buf [4096]byte
	var pending []byte
	for {
		n, err := e.stdinR.Read(buf[:])
		if n > 0 {
			pending = append(pending, buf[:n]...)
			for {
				idx := indexByte(pending, '\n')
				if idx < 0 {
					break
				}
				line := string(pending[:idx])
				pending = pending[idx+1:]
				e.respond(line)
			}
		}
		if err != nil {
			return
		}
	}
}

func (e *Engine) respond(command string) {
	var body string
	var isErr bool
	if e.Handler != nil {
		body, isErr = e.Handler(command)
	} else if resp, ok := e.Script[command]; ok {
		body = resp
	} else {
		body, isErr = "", true
		body = "unknown command"
	}
	prefix := "= "
	if isErr {
		prefix = "? "
	}
	_, _ = io.WriteString(e.stdoutW, prefix+body+"\n\n")
}

// Close shuts down both pipe ends. Safe to call more than once.
func (e *Engine) Close() {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.closed {
		return
	}
	e.closed = true
	_ = e.StdinW.Close()
	_ = e.stdoutW.Close()
}

// Hang never responds, simulating a stuck engine (for timeout tests):
// it blocks until ctx is done.
func Hang(ctx context.Context) { <-ctx.Done() }

func indexByte(b []byte, c byte) int {
	for i, v := range b {
		if v == c {
			return i
		}
	}
	return -1
}
