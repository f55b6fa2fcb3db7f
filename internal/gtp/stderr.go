package gtp

import (
	"bufio"
	"io"
)

// DrainStderr copies an engine's stderr line by line into sink until
// the pipe closes. It must run on its own goroutine and never touch
// the request/response channel (spec.md §4.1, §5): a slow or absent
// sink must never delay protocol timing.
func DrainStderr(stderr io.Reader, sink io.Writer) {
	var scanner = bufio.NewScanner(stderr)
	scanner.Buffer(make([]byte, 0, 64*1024), 1<<20)
	for scanner.Scan() {
		if sink == nil {
			continue
		}
		_, _ = sink.Write(scanner.Bytes())
		_, _ = sink.Write([]byte{'\n'})
	}
}
