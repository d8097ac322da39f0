//go:build !windows

package process

import "syscall"

// killTree signals the process group led by pid (negative PID).
func killTree(pid int) {
	_ = syscall.Kill(-pid, syscall.SIGKILL)
}
