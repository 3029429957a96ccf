package util

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNormalizeRoute(t *testing.T) {
	tests := []struct {
		route    string
		expected string
	}{
		{route: "8.8.8.8", expected: "8.8.8.8/32"},
		{route: "10.0.0.0/24", expected: "10.0.0.0/24"},
		{route: "0.0.0.0/0", expected: "0.0.0.0/0"},
		{route: "fd00::/64", expected: "fd00::/64"},
		{route: "", expected: "/32"},
	}

	for _, test := range tests {
		t.Run(test.route, func(t *testing.T) {
			ret := NormalizeRoute(test.route)
			assert.Equal(t, test.expected, ret)
			// idempotent
			assert.Equal(t, ret, NormalizeRoute(ret))
		})
	}
}

func TestNormalizeRoutes(t *testing.T) {
	routes := []string{"10.0.0.0/24", "8.8.8.8", "172.16.0.1"}
	assert.Equal(t,
		[]string{"10.0.0.0/24", "8.8.8.8/32", "172.16.0.1/32"},
		NormalizeRoutes(routes),
	)
	// input untouched
	assert.Equal(t, "8.8.8.8", routes[1])
	assert.Empty(t, NormalizeRoutes(nil))
}

func TestParseRoutes(t *testing.T) {
	ret, err := ParseRoutes([]string{"10.0.0.0/24", "8.8.8.8"})
	require.NoError(t, err)
	assert.Len(t, ret, 2)
	assert.Equal(t, "8.8.8.8/32", ret["8.8.8.8"].String())

	_, err = ParseRoutes([]string{"10.0.0.0/24", "example.com"})
	assert.Error(t, err)

	_, err = ParseRoutes([]string{"10.0.0.0/33"})
	assert.Error(t, err)
}

func TestParseAddress(t *testing.T) {
	addr, err := ParseAddress("10.0.0.2", 24)
	require.NoError(t, err)
	assert.Equal(t, "10.0.0.2/24", addr.IPNet.String())

	_, err = ParseAddress("10.0.0.2", 40)
	assert.Error(t, err)
}
