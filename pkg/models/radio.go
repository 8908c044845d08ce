package models

// RadioState is an enum for the states reported by the ble adapter
type RadioState int

const (
	Unknown RadioState = iota
	Resetting
	PoweredOff
	PoweredOn
	Advertising
	Error
)

var radioStateNames = map[RadioState]string{
	Unknown:     "unknown",
	Resetting:   "resetting",
	PoweredOff:  "poweredOff",
	PoweredOn:   "poweredOn",
	Advertising: "advertising",
	Error:       "error",
}

func (s RadioState) String() string {
	if name, ok := radioStateNames[s]; ok {
		return name
	}
	return "unknown"
}

// AdvertisingState is an enum for the provisioning server's advertising lifecycle
type AdvertisingState int

const (
	// Unpowered indicates the adapter has not reported power-on (or has since lost it)
	Unpowered AdvertisingState = iota
	// RadioOn indicates the adapter is powered on but not advertising
	RadioOn
	// Broadcasting indicates services are registered and the device is discoverable
	Broadcasting
)

func (s AdvertisingState) String() string {
	switch s {
	case RadioOn:
		return "poweredOn"
	case Broadcasting:
		return "advertising"
	default:
		return "unpowered"
	}
}
