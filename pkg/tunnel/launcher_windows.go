package tunnel

import (
	"syscall"

	"golang.org/x/sys/windows"
)

func launchArgs(ifname string) []string {
	return []string{ifname}
}

func sysProcAttr() *syscall.SysProcAttr {
	return &syscall.SysProcAttr{
		CreationFlags: windows.CREATE_NO_WINDOW,
	}
}
