package models

import (
	"encoding/json"

	"github.com/pkg/errors"
)

// ProvisioningRequest is the payload for the network characteristic write
type ProvisioningRequest struct {
	SSID string `json:"ssid"`
	PSK  string `json:"psk"`
}

// Credential converts the request into the credential it asks for
func (r ProvisioningRequest) Credential() Credential {
	return Credential{SSID: r.SSID, PSK: r.PSK}
}

// GetProvisioningRequestFromBytes constructs provisioning request from characteristic write payload
func GetProvisioningRequestFromBytes(data []byte) (*ProvisioningRequest, error) {
	var ret ProvisioningRequest
	if err := json.Unmarshal(data, &ret); err != nil {
		return nil, errors.Wrap(err, "invalid provisioning payload")
	}
	return &ret, nil
}
