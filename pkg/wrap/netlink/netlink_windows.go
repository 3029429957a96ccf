package netlink

import (
	"net"
)

// Addr mirrors the fields of netlink.Addr used by this project
type Addr struct {
	*net.IPNet
	Label string
}

func (a Addr) String() string {
	if a.IPNet == nil {
		return ""
	}

	return a.IPNet.String()
}

// ParseAddr parses the string representation of an address in the
// form $ip/$netmask
func ParseAddr(s string) (*Addr, error) {
	ipNet, err := ParseIPNet(s)
	if err != nil {
		return nil, err
	}

	return &Addr{IPNet: ipNet}, nil
}

// ParseIPNet parses a string in ip/net format and returns a net.IPNet
// with the host ip kept
func ParseIPNet(s string) (*net.IPNet, error) {
	ip, ipNet, err := net.ParseCIDR(s)
	if err != nil {
		return nil, err
	}

	ipNet.IP = ip
	return ipNet, nil
}
