package tunnel

import (
	"syscall"

	"golang.org/x/sys/unix"
)

// the tunnel must not outlive a crashed supervisor
//
// Pdeathsig fires when the forking OS thread exits, the runtime only
// terminates threads whose goroutine exits while locked to them, so Launch
// must not be called from a goroutine holding runtime.LockOSThread
func sysProcAttr() *syscall.SysProcAttr {
	return &syscall.SysProcAttr{
		Pdeathsig: unix.SIGKILL,
	}
}
