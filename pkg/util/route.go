package util

import (
	"fmt"
	"net"
	"strings"

	"arhat.dev/corplink/pkg/wrap/netlink"
)

// NormalizeRoute appends /32 to routes without explicit prefix length
func NormalizeRoute(route string) string {
	if strings.Contains(route, "/") {
		return route
	}

	return route + "/32"
}

// NormalizeRoutes applies NormalizeRoute to every route, order is kept
func NormalizeRoutes(routes []string) []string {
	ret := make([]string, 0, len(routes))
	for _, r := range routes {
		ret = append(ret, NormalizeRoute(r))
	}

	return ret
}

// ParseRoutes validates normalized routes, result is keyed by the original
// route string
func ParseRoutes(routes []string) (map[string]*net.IPNet, error) {
	ret := make(map[string]*net.IPNet)
	for _, r := range routes {
		n, err := netlink.ParseIPNet(NormalizeRoute(r))
		if err != nil {
			return nil, fmt.Errorf("invalid route %s: %w", r, err)
		}

		ret[r] = n
	}

	return ret, nil
}

// ParseAddress validates local address with its prefix length
func ParseAddress(address string, mask int) (*netlink.Addr, error) {
	addr, err := netlink.ParseAddr(fmt.Sprintf("%s/%d", address, mask))
	if err != nil {
		return nil, fmt.Errorf("invalid address %s/%d: %w", address, mask, err)
	}

	return addr, nil
}
