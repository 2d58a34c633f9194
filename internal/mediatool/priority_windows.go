//go:build windows

package mediatool

import (
	"os/exec"
	"syscall"
)

// configurePriority suppresses the console window and requests
// below-normal scheduling priority for the spawned toolchain process,
// per spec.md §4.1's target-OS requirement.
func configurePriority(cmd *exec.Cmd) {
	cmd.SysProcAttr = &syscall.SysProcAttr{
		HideWindow:    true,
		CreationFlags: 0x00004000, // BELOW_NORMAL_PRIORITY_CLASS
	}
}
