//go:build !unix

package secexec

import "os/exec"

func isolate(cmd *exec.Cmd) {
	cmd.Cancel = func() error { return cmd.Process.Kill() }
}
