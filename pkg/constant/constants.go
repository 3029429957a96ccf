package constant

import "time"

// env keys read by the tunnel implementation
const (
	EnvKeyProtocolVersion = "CORPLINK_PROTOCOL_VERSION"
	EnvKeyNetworkType     = "CORPLINK_NETWORK_TYPE"
)

const (
	ProtocolVersionV2 = "v2"
	NetworkTypeTCP    = "tcp"

	// ProtocolTCP selects the tcp tunneled transport of the implementation
	ProtocolTCP = 0xff
)

const (
	DefaultCorplinkConfigFile = "/etc/corplink/config.yaml"
	DefaultExecutable         = "wg-corplink"
	DefaultInterfaceName      = "corplink"
	DefaultMetricsListenAddr  = ""
	DefaultRestartDelay       = 10 * time.Second
)

// uapi socket location and wait policy
const (
	SocketDirectoryUnix = "/var/run/wireguard"
	SocketSuffix        = ".sock"

	SocketWaitAttempts = 3
	SocketWaitPause    = time.Second
)

const (
	// handshake refresh of wireguard is about 2 min, a link without
	// handshake for longer than this interval is considered down
	DefaultCheckInterval = 5 * time.Minute

	DefaultPersistentKeepalive = 10
)
