package models

import "github.com/pkg/errors"

const (
	maxSSIDLen = 32
	minPSKLen  = 8
	maxPSKLen  = 63
)

// Credential is the single wifi network the device is provisioned for
type Credential struct {
	SSID string
	PSK  string
}

// Empty reports whether no network has been provisioned
func (c Credential) Empty() bool {
	return c.SSID == ""
}

// Validate checks ssid and psk lengths in bytes. An empty psk means an open network.
func (c Credential) Validate() error {
	if len(c.SSID) == 0 || len(c.SSID) > maxSSIDLen {
		return errors.Errorf("ssid must be 1-%d bytes, got %d", maxSSIDLen, len(c.SSID))
	}
	if n := len(c.PSK); n != 0 && (n < minPSKLen || n > maxPSKLen) {
		return errors.Errorf("psk must be empty or %d-%d bytes, got %d", minPSKLen, maxPSKLen, n)
	}
	return nil
}
