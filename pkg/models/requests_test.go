package models

import (
	"strings"
	"testing"

	"github.com/pkg/errors"
	"gotest.tools/assert"
)

func TestProvisioningRequest(t *testing.T) {
	actual, err := GetProvisioningRequestFromBytes([]byte(`{"ssid":"HomeNet","psk":"longpassword1"}`))
	assert.NilError(t, err)
	assert.DeepEqual(t, *actual, ProvisioningRequest{SSID: "HomeNet", PSK: "longpassword1"})
	assert.DeepEqual(t, actual.Credential(), Credential{SSID: "HomeNet", PSK: "longpassword1"})
}

func TestProvisioningRequestMalformed(t *testing.T) {
	for _, payload := range []string{"", "{", "ssid=HomeNet", `["HomeNet"]`} {
		_, err := GetProvisioningRequestFromBytes([]byte(payload))
		assert.ErrorContains(t, err, "invalid provisioning payload", payload)
	}
}

func TestCredentialValidate(t *testing.T) {
	assert.NilError(t, Credential{SSID: "a"}.Validate())
	assert.NilError(t, Credential{SSID: strings.Repeat("s", 32), PSK: strings.Repeat("p", 63)}.Validate())
	assert.NilError(t, Credential{SSID: "HomeNet", PSK: "12345678"}.Validate())
	assert.ErrorContains(t, Credential{}.Validate(), "ssid")
	assert.ErrorContains(t, Credential{SSID: strings.Repeat("s", 33)}.Validate(), "ssid")
	assert.ErrorContains(t, Credential{SSID: "HomeNet", PSK: "short"}.Validate(), "psk")
	assert.ErrorContains(t, Credential{SSID: "HomeNet", PSK: strings.Repeat("p", 64)}.Validate(), "psk")
}

func TestUser(t *testing.T) {
	assert.Assert(t, !User{}.Present())
	assert.Equal(t, User{}.Index(), byte(0))
	u := User{ID: 7, Email: "someone@example.com"}
	assert.Assert(t, u.Present())
	assert.Equal(t, u.Index(), byte(7))
}

func TestErrorsUnwrap(t *testing.T) {
	cause := errors.New("carrier lost")
	var assocErr *AssociationError
	err := errors.Wrap(&AssociationError{SSID: "HomeNet", Err: cause}, "setCredentials")
	assert.Assert(t, errors.As(err, &assocErr))
	assert.Equal(t, assocErr.SSID, "HomeNet")
	assert.Assert(t, errors.Is(err, cause))
	assert.ErrorContains(t, &BootstrapError{Stage: "adapter-up", Message: "no such device"}, "bootstrap adapter-up: no such device")
	assert.ErrorContains(t, &RadioNotReadyError{State: Unpowered}, "unpowered")
}

func TestStateNames(t *testing.T) {
	assert.Equal(t, PoweredOn.String(), "poweredOn")
	assert.Equal(t, RadioState(42).String(), "unknown")
	assert.Equal(t, Broadcasting.String(), "advertising")
	assert.Equal(t, Ethernet.String(), "ethernet")
}
