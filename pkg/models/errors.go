package models

import (
	"fmt"

	"github.com/go-ble/ble"
)

// BootstrapError is returned when a privileged radio preparation step fails
type BootstrapError struct {
	Stage   string
	Message string
	Err     error
}

func (e *BootstrapError) Error() string {
	return fmt.Sprintf("bootstrap %s: %s", e.Stage, e.Message)
}

func (e *BootstrapError) Unwrap() error { return e.Err }

// RadioNotReadyError is returned when advertising is requested before the adapter is powered on
type RadioNotReadyError struct {
	State AdvertisingState
}

func (e *RadioNotReadyError) Error() string {
	return fmt.Sprintf("radio not ready: state is %s", e.State)
}

// MalformedProvisioningRequest describes a network write rejected at the protocol boundary
type MalformedProvisioningRequest struct {
	Reason string
	Status ble.ATTError
}

func (e *MalformedProvisioningRequest) Error() string {
	return fmt.Sprintf("malformed provisioning request: %s", e.Reason)
}

// AssociationError is returned when joining a wifi network fails
type AssociationError struct {
	SSID string
	Err  error
}

func (e *AssociationError) Error() string {
	return fmt.Sprintf("could not associate with %q: %v", e.SSID, e.Err)
}

func (e *AssociationError) Unwrap() error { return e.Err }

// ReachabilityError is returned when the public address lookup fails
type ReachabilityError struct {
	Err error
}

func (e *ReachabilityError) Error() string {
	return fmt.Sprintf("public address lookup failed: %v", e.Err)
}

func (e *ReachabilityError) Unwrap() error { return e.Err }
