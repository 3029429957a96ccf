/*
Copyright 2020 The arhat.dev Authors.

Licensed under the Apache License, Version 2.0 (the "License");
you may not use this file except in compliance with the License.
You may obtain a copy of the License at

    http://www.apache.org/licenses/LICENSE-2.0

Unless required by applicable law or agreed to in writing, software
distributed under the License is distributed on an "AS IS" BASIS,
WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
See the License for the specific language governing permissions and
limitations under the License.
*/

package conf

import (
	"fmt"
	"time"

	"arhat.dev/pkg/log"
	"go.uber.org/multierr"

	"arhat.dev/corplink/pkg/constant"
	"arhat.dev/corplink/pkg/util"
)

type CorplinkConfig struct {
	Corplink  AppConfig       `json:"corplink" yaml:"corplink"`
	WireGuard WireGuardConfig `json:"wireguard" yaml:"wireguard"`
}

type AppConfig struct {
	Log     log.ConfigSet `json:"log" yaml:"log"`
	Metrics MetricsConfig `json:"metrics" yaml:"metrics"`

	// RestartDelay between two tunnel runs after the link is considered down
	RestartDelay time.Duration `json:"restartDelay" yaml:"restartDelay"`
}

type MetricsConfig struct {
	// Listen address of the metrics and health endpoint, disabled if empty
	Listen string `json:"listen" yaml:"listen"`
}

// WireGuardConfig is the tunnel configuration pushed to the implementation
type WireGuardConfig struct {
	// Executable of the userspace wireguard implementation
	Executable string `json:"executable" yaml:"executable"`
	// Interface name of the tunnel
	Interface string `json:"interface" yaml:"interface"`
	// WithLog keeps stdout/stderr of the implementation
	WithLog bool `json:"withLog" yaml:"withLog"`

	// Protocol selector, 0xff means tcp tunneled transport
	Protocol int `json:"protocol" yaml:"protocol"`
	// ProtocolVersion negotiated with the server, e.g. v2
	ProtocolVersion string `json:"protocolVersion" yaml:"protocolVersion"`

	// PrivateKey of this device, base64 encoded
	PrivateKey string `json:"privateKey" yaml:"privateKey"`
	// PeerKey is the public key of the server, base64 encoded
	PeerKey string `json:"peerKey" yaml:"peerKey"`
	// PeerAddress is the udp endpoint of the server (host:port)
	PeerAddress string `json:"peerAddress" yaml:"peerAddress"`

	Address string `json:"address" yaml:"address"`
	Mask    int    `json:"mask" yaml:"mask"`
	MTU     int    `json:"mtu" yaml:"mtu"`

	// Route to be sent through the tunnel, a route without prefix length
	// is a host route
	Route []string `json:"route" yaml:"route"`
}

func NewConfig() *CorplinkConfig {
	return &CorplinkConfig{
		Corplink: AppConfig{
			Metrics: MetricsConfig{
				Listen: constant.DefaultMetricsListenAddr,
			},
			RestartDelay: constant.DefaultRestartDelay,
		},
		WireGuard: WireGuardConfig{
			Executable: constant.DefaultExecutable,
			Interface:  constant.DefaultInterfaceName,
		},
	}
}

// Validate checks all fields and reports every invalid one
func (c *WireGuardConfig) Validate() error {
	var err error

	if c.Executable == "" {
		err = multierr.Append(err, fmt.Errorf("executable must be set"))
	}

	if c.Interface == "" {
		err = multierr.Append(err, fmt.Errorf("interface name must be set"))
	}

	if _, err2 := util.B64ToHex(c.PrivateKey); err2 != nil {
		err = multierr.Append(err, fmt.Errorf("invalid private key: %w", err2))
	}

	if _, err2 := util.B64ToHex(c.PeerKey); err2 != nil {
		err = multierr.Append(err, fmt.Errorf("invalid peer key: %w", err2))
	}

	if c.PeerAddress == "" {
		err = multierr.Append(err, fmt.Errorf("peer address must be set"))
	}

	if _, err2 := util.ParseAddress(c.Address, c.Mask); err2 != nil {
		err = multierr.Append(err, err2)
	}

	if c.MTU <= 0 {
		err = multierr.Append(err, fmt.Errorf("invalid mtu %d", c.MTU))
	}

	if _, err2 := util.ParseRoutes(c.Route); err2 != nil {
		err = multierr.Append(err, err2)
	}

	return err
}
