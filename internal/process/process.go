// Package process cleans up the Chrome process tree left by the launcher.
package process

// KillTree kills pid and all of its children. Best-effort: the launcher's
// own Kill is the primary cleanup, this catches renderer and GPU helpers
// that outlive it. Non-positive PIDs are ignored, since 0 and negative
// values address whole process groups.
func KillTree(pid int) {
	if pid <= 0 {
		return
	}
	killTree(pid)
}
