package conf

import (
	"github.com/spf13/pflag"

	"arhat.dev/corplink/pkg/constant"
)

// FlagsForCorplinkConfig binds command line flags to config
func FlagsForCorplinkConfig(config *CorplinkConfig) *pflag.FlagSet {
	fs := pflag.NewFlagSet("corplink", pflag.ExitOnError)

	fs.StringVar(&config.Corplink.Metrics.Listen, "metrics.listen",
		constant.DefaultMetricsListenAddr, "set metrics and health endpoint listen address, disabled if empty")
	fs.DurationVar(&config.Corplink.RestartDelay, "restartDelay",
		constant.DefaultRestartDelay, "set delay before restarting a failed tunnel")

	fs.StringVar(&config.WireGuard.Executable, "wg.executable",
		constant.DefaultExecutable, "set path to the userspace wireguard implementation")
	fs.StringVar(&config.WireGuard.Interface, "wg.interface",
		constant.DefaultInterfaceName, "set tunnel interface name")
	fs.BoolVar(&config.WireGuard.WithLog, "wg.withLog", false, "show output of the wireguard implementation")

	return fs
}
