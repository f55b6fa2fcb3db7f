//go:build unix

package engine

import (
	"os/exec"
	"syscall"
)

// configureProcAttr puts the child in its own session so killChild's
// force-kill cannot be short-circuited by the child ignoring signals
// delivered to the arbiter's own process group.
func configureProcAttr(cmd *exec.Cmd) {
	cmd.SysProcAttr = &syscall.SysProcAttr{Setsid: true}
}
