package server

import (
	"sync"

	periph "github.com/Krajiyah/speaker-os/pkg/ble"
	"github.com/Krajiyah/speaker-os/pkg/models"
	"github.com/Krajiyah/speaker-os/pkg/util"
	"github.com/go-ble/ble"
	"github.com/pkg/errors"
)

// NetworkState is the connection manager view the network and device info reads need
type NetworkState interface {
	RegistrationID() string
	SSID() (string, bool)
}

// UserState is the user presence view the user info read needs
type UserState interface {
	CurrentUser() models.User
}

// DeviceInfo holds the configured values served by the device info service
type DeviceInfo struct {
	AdvertisedName  string
	Model           string
	FirmwareVersion string
}

// BLEServer is the provisioning GATT server. It owns the advertising lifecycle and the
// single advertised service set.
type BLEServer struct {
	info       DeviceInfo
	state      models.AdvertisingState
	lastErr    error
	mutex      *sync.Mutex
	peripheral periph.Peripheral
	network    NetworkState
	users      UserState
	listener   models.BLEServerListener
	services   []*ble.Service
}

// NewBLEServer builds the three services and subscribes to the peripheral's callbacks.
// Nothing is registered with the peripheral until advertising starts.
func NewBLEServer(info DeviceInfo, p periph.Peripheral, network NetworkState, users UserState, listener models.BLEServerListener) *BLEServer {
	if info.AdvertisedName == "" {
		info.AdvertisedName = util.DefaultAdvertisedName
	}
	if info.Model == "" {
		info.Model = util.DefaultModel
	}
	if info.FirmwareVersion == "" {
		info.FirmwareVersion = util.DefaultFirmwareVersion
	}
	server := &BLEServer{
		info: info, state: models.Unpowered, mutex: &sync.Mutex{},
		peripheral: p, network: network, users: users, listener: listener,
	}
	server.services = []*ble.Service{
		getDeviceInfoService(server),
		getUserService(server),
		getNetworkService(server),
	}
	p.OnStateChange(server.handleStateChange)
	p.OnAdvertisingStart(server.handleAdvertisingStart)
	return server
}

// Services returns the service set registered when advertising starts
func (server *BLEServer) Services() []*ble.Service {
	return server.services
}

// StartAdvertising advertises the device info service. It fails fast with a
// RadioNotReadyError unless the radio is powered on. Advertising again supersedes
// the current advertisement.
func (server *BLEServer) StartAdvertising() error {
	server.mutex.Lock()
	state := server.state
	if state != models.RadioOn && state != models.Broadcasting {
		server.mutex.Unlock()
		return &models.RadioNotReadyError{State: state}
	}
	if state == models.Broadcasting {
		if err := server.peripheral.StopAdvertising(); err != nil {
			server.listener.OnInternalError(errors.Wrap(err, "StopAdvertising issue"))
		}
		server.state = models.RadioOn
	}
	server.lastErr = nil
	server.mutex.Unlock()

	advErr := server.peripheral.Advertise(server.info.AdvertisedName, ble.MustParse(util.DeviceInfoServiceUUID))

	server.mutex.Lock()
	defer server.mutex.Unlock()
	switch {
	case server.state == models.Broadcasting:
		return nil
	case server.lastErr != nil:
		return server.lastErr
	case advErr != nil:
		return advErr
	default:
		return &models.RadioNotReadyError{State: server.state}
	}
}

// StopAdvertising stops advertising if active and returns to the powered on state
func (server *BLEServer) StopAdvertising() error {
	server.mutex.Lock()
	if server.state != models.Broadcasting {
		server.mutex.Unlock()
		return nil
	}
	err := server.peripheral.StopAdvertising()
	if err != nil {
		err = errors.Wrap(err, "StopAdvertising issue")
	}
	server.mutex.Unlock()
	server.setStatus(models.RadioOn, err)
	return err
}

func (server *BLEServer) handleStateChange(state models.RadioState) {
	if state == models.PoweredOn || state == models.Advertising {
		server.mutex.Lock()
		wasUnpowered := server.state == models.Unpowered
		server.mutex.Unlock()
		if wasUnpowered {
			server.setStatus(models.RadioOn, nil)
		}
		if state == models.PoweredOn {
			server.listener.OnRadioReady()
		}
		return
	}
	server.setStatus(models.Unpowered, nil)
}

func (server *BLEServer) handleAdvertisingStart(err error) {
	server.mutex.Lock()
	if server.state == models.Unpowered {
		server.mutex.Unlock()
		if err == nil {
			server.peripheral.StopAdvertising()
		}
		return
	}
	if err != nil {
		server.lastErr = err
		server.mutex.Unlock()
		server.setStatus(models.RadioOn, err)
		return
	}
	if regErr := server.peripheral.SetServices(server.services); regErr != nil {
		regErr = errors.Wrap(regErr, "SetServices issue")
		server.lastErr = regErr
		if stopErr := server.peripheral.StopAdvertising(); stopErr != nil {
			server.listener.OnInternalError(errors.Wrap(stopErr, "StopAdvertising issue"))
		}
		server.mutex.Unlock()
		server.setStatus(models.RadioOn, regErr)
		return
	}
	server.mutex.Unlock()
	server.setStatus(models.Broadcasting, nil)
}
