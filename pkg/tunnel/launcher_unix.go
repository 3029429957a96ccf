//go:build !windows
// +build !windows

package tunnel

// launchArgs keeps the implementation in foreground
func launchArgs(ifname string) []string {
	return []string{"-f", ifname}
}
