//go:build !windows
// +build !windows

package netlink

import (
	"github.com/vishvananda/netlink"
)

type (
	Addr = netlink.Addr
)

// functions
var (
	ParseAddr  = netlink.ParseAddr
	ParseIPNet = netlink.ParseIPNet
)
