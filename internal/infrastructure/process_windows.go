//go:build windows

package infrastructure

import (
	"os/exec"
)

// setProcessGroup is a no-op on Windows
func setProcessGroup(cmd *exec.Cmd) {}

// terminateProcess kills the process, Windows has no SIGTERM
func terminateProcess(cmd *exec.Cmd) error {
	if cmd.Process == nil {
		return nil
	}
	return cmd.Process.Kill()
}
