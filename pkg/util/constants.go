package util

const (
	// DeviceInfoServiceUUID represents UUID for the read-only device information service
	DeviceInfoServiceUUID = "180A"
	// ManufacturerCharUUID represents UUID for the manufacturer name characteristic
	ManufacturerCharUUID = "2A29"
	// ModelCharUUID represents UUID for the model name characteristic
	ModelCharUUID = "2A24"
	// DeviceIDCharUUID represents UUID for the device unique id characteristic
	DeviceIDCharUUID = "2A23"
	// FirmwareCharUUID represents UUID for the firmware version characteristic
	FirmwareCharUUID = "2A26"
	// UserServiceUUID represents UUID for the user information service
	UserServiceUUID = "181C"
	// UserIndexCharUUID represents UUID for the current user index characteristic
	UserIndexCharUUID = "2A9A"
	// NetworkServiceUUID represents UUID for the wifi provisioning service
	NetworkServiceUUID = "13333333-3333-3333-3333-333333333337"
	// NetworkCharUUID represents UUID for the ssid/psk read/write characteristic
	NetworkCharUUID = "13333333-3333-3333-3333-333333330001"
	// UserDescriptionUUID is the characteristic user description descriptor
	UserDescriptionUUID = "2901"

	// Manufacturer is reported by the device info service
	Manufacturer = "Speaker OS"
	// DefaultModel is the model name used when none is configured
	DefaultModel = "Bookshelf Speakers 0.1"
	// DefaultFirmwareVersion is the firmware version used when none is configured
	DefaultFirmwareVersion = "0.1"
	// DefaultAdvertisedName is the local name broadcast while advertising
	DefaultAdvertisedName = "SPEAKER-OS"
)

// NoSSIDSentinel is returned by network reads while no ssid has been accepted.
var NoSSIDSentinel = []byte{0x00}

// Storage keys shared by the connection manager and user presence.
const (
	RegistrationKey = "uuid"
	SSIDKey         = "ssid"
	PSKKey          = "psk"
	UserKey         = "user"
)
