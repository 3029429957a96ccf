package util

import (
	"encoding/hex"
	"fmt"

	"golang.zx2c4.com/wireguard/wgctrl/wgtypes"
)

// B64ToHex converts a base64 encoded wireguard key to the lowercase hex
// form required by uapi
func B64ToHex(key string) (string, error) {
	k, err := wgtypes.ParseKey(key)
	if err != nil {
		return "", fmt.Errorf("invalid base64 encoded key: %w", err)
	}

	return hex.EncodeToString(k[:]), nil
}
