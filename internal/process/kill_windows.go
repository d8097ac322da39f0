//go:build windows

package process

import (
	"os/exec"
	"strconv"
)

// killTree uses taskkill: /F = force, /T = include child processes.
func killTree(pid int) {
	_ = exec.Command("taskkill", "/F", "/T", "/PID", strconv.Itoa(pid)).Run()
}
