package models

// BLEServerListener receives the provisioning server's lifecycle and write callbacks
type BLEServerListener interface {
	OnServerStatusChanged(AdvertisingState, error)
	OnRadioReady()
	OnProvisioningRequest(ProvisioningRequest)
	OnInternalError(error)
}
