//go:build !linux && !windows
// +build !linux,!windows

package tunnel

import "syscall"

func sysProcAttr() *syscall.SysProcAttr {
	return nil
}
