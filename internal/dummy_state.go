package internal

import (
	"sync"

	"github.com/Krajiyah/speaker-os/pkg/models"
)

// DummyNetworkState serves fixed registration and ssid values to the GATT server
type DummyNetworkState struct {
	mutex          sync.Mutex
	registrationID string
	ssid           string
}

func NewDummyNetworkState(registrationID, ssid string) *DummyNetworkState {
	return &DummyNetworkState{registrationID: registrationID, ssid: ssid}
}

func (n *DummyNetworkState) RegistrationID() string {
	n.mutex.Lock()
	defer n.mutex.Unlock()
	return n.registrationID
}

func (n *DummyNetworkState) SSID() (string, bool) {
	n.mutex.Lock()
	defer n.mutex.Unlock()
	return n.ssid, n.ssid != ""
}

func (n *DummyNetworkState) SetSSID(ssid string) {
	n.mutex.Lock()
	defer n.mutex.Unlock()
	n.ssid = ssid
}

// DummyUsers is a settable user presence source
type DummyUsers struct {
	mutex sync.Mutex
	user  models.User
}

func (u *DummyUsers) CurrentUser() models.User {
	u.mutex.Lock()
	defer u.mutex.Unlock()
	return u.user
}

func (u *DummyUsers) SetUser(user models.User) {
	u.mutex.Lock()
	defer u.mutex.Unlock()
	u.user = user
}
