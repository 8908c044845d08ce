package models

// Event is a message consumed by the provisioning orchestrator.
// The set of implementations is closed to this package.
type Event interface {
	isEvent()
}

// RadioReady is posted when the adapter reports it is powered on
type RadioReady struct{}

// ProvisioningRequested is posted when a valid network write was acknowledged
type ProvisioningRequested struct {
	Request ProvisioningRequest
}

// ConnectivityChanged is posted when reachability or the active interface changes
type ConnectivityChanged struct {
	Status ConnectivityStatus
}

// UserPresenceChanged is posted when a user is assigned or cleared
type UserPresenceChanged struct {
	Present bool
	Cleared bool
}

func (RadioReady) isEvent()            {}
func (ProvisioningRequested) isEvent() {}
func (ConnectivityChanged) isEvent()   {}
func (UserPresenceChanged) isEvent()   {}
