package util

import (
	"encoding/base64"
	"encoding/hex"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.zx2c4.com/wireguard/wgctrl/wgtypes"
)

func TestB64ToHex(t *testing.T) {
	pk, err := wgtypes.GeneratePrivateKey()
	require.NoError(t, err)

	tests := []struct {
		name      string
		key       string
		expected  string
		expectErr bool
	}{
		{
			name:     "Generated Key",
			key:      pk.String(),
			expected: hex.EncodeToString(pk[:]),
		},
		{
			name:     "Zero Key",
			key:      base64.StdEncoding.EncodeToString(make([]byte, 32)),
			expected: strings.Repeat("0", 64),
		},
		{
			name:      "Invalid Base64",
			key:       "not-base64!!",
			expectErr: true,
		},
		{
			name:      "Short Key",
			key:       base64.StdEncoding.EncodeToString([]byte("short")),
			expectErr: true,
		},
		{
			name:      "Empty",
			key:       "",
			expectErr: true,
		},
	}

	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			ret, err := B64ToHex(test.key)
			if test.expectErr {
				assert.Error(t, err)
				assert.Empty(t, ret)
				return
			}

			require.NoError(t, err)
			assert.Equal(t, test.expected, ret)
			assert.Len(t, ret, 2*len(wgtypes.Key{}))
			assert.Equal(t, strings.ToLower(ret), ret)
		})
	}
}
