//go:build unix

package repl

import (
	"os/exec"
	"syscall"

	"golang.org/x/sys/unix"
	"golang.org/x/term"
)

// startAndWait runs the client in its own process group and gives it the
// terminal so only the child (e.g. sqlcmd or pgcli) receives Ctrl+C.
// Otherwise a cancelled query would also SIGINT this process and corrupt
// the terminal state the client expects when re-entering its prompt.
func startAndWait(cmd *exec.Cmd) error {
	cmd.SysProcAttr = &syscall.SysProcAttr{Setpgid: true}
	if err := cmd.Start(); err != nil {
		return err
	}
	fd := int(0)
	if term.IsTerminal(fd) {
		// Give terminal to child so only it receives Ctrl+C.
		_ = unix.IoctlSetPointerInt(fd, unix.TIOCSPGRP, cmd.Process.Pid)
	}
	err := cmd.Wait()
	if term.IsTerminal(fd) {
		// Restore terminal to parent so the shell works after exit.
		_ = unix.IoctlSetPointerInt(fd, unix.TIOCSPGRP, unix.Getpgrp())
	}
	return err
}
