//go:build !windows
// +build !windows

package tunnel

import "arhat.dev/corplink/pkg/constant"

func defaultSocketDir() string {
	return constant.SocketDirectoryUnix
}
