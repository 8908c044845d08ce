package models

// InterfaceSnapshot is one address of one OS network interface, read at query time
type InterfaceSnapshot struct {
	Name    string `json:"name"`
	Family  string `json:"family"`
	Address string `json:"address"`
	MAC     string `json:"mac"`
	IsUp    bool   `json:"isUp"`
}

const (
	IPv4 = "IPv4"
	IPv6 = "IPv6"
)

// ActiveInterface is an enum for the interface class carrying traffic
type ActiveInterface int

const (
	NoInterface ActiveInterface = iota
	Ethernet
	WiFi
)

func (a ActiveInterface) String() string {
	switch a {
	case Ethernet:
		return "ethernet"
	case WiFi:
		return "wifi"
	default:
		return "none"
	}
}

// MarshalText renders the interface class by name in status payloads
func (a ActiveInterface) MarshalText() ([]byte, error) {
	return []byte(a.String()), nil
}

// ConnectivityStatus is a computed view of the device's network state.
// Known is false until the connection manager has been initialized.
type ConnectivityStatus struct {
	Known           bool            `json:"known"`
	ActiveInterface ActiveInterface `json:"activeInterface"`
	InterfaceName   string          `json:"interfaceName,omitempty"`
	PrivateAddress  string          `json:"privateAddress,omitempty"`
	PublicAddress   string          `json:"publicAddress,omitempty"`
	SSID            string          `json:"ssid,omitempty"`
	HasPSK          bool            `json:"hasPsk"`
	IsRegistered    bool            `json:"isRegistered"`
	IsConnected     bool            `json:"isConnected"`
	OnEthernet      bool            `json:"onEthernet"`
	OnWiFi          bool            `json:"onWifi"`
}
