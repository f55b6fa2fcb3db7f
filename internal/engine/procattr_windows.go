//go:build windows

package engine

import (
	"os/exec"
	"syscall"
)

// configureProcAttr starts the child in its own process group so that
// killChild's force-kill (Process.Kill) can reach it independently of
// console signal delivery to the arbiter.
func configureProcAttr(cmd *exec.Cmd) {
	cmd.SysProcAttr = &syscall.SysProcAttr{CreationFlags: syscall.CREATE_NEW_PROCESS_GROUP}
}
