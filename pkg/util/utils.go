package util

import (
	"encoding/hex"
	"strings"

	"github.com/go-ble/ble"
)

func UUIDEqualStr(u ble.UUID, s string) bool {
	return u.Equal(ble.MustParse(s))
}

// DeviceIDHex hex-encodes the bytes of the registration id string, so a client that
// hex-decodes the value gets the id back as text. An empty id stays empty.
func DeviceIDHex(registrationID string) string {
	return hex.EncodeToString([]byte(strings.TrimSpace(registrationID)))
}
