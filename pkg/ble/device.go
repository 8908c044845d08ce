package ble

import (
	"sync"

	"github.com/Krajiyah/speaker-os/pkg/models"
	"github.com/go-ble/ble"
	"github.com/pkg/errors"
	"github.com/rs/zerolog/log"
)

// Peripheral is the radio and driver capability the provisioning server is built on
type Peripheral interface {
	OnStateChange(func(models.RadioState))
	OnAdvertisingStart(func(error))
	// Advertise starts advertising and reports the outcome to the OnAdvertisingStart
	// callback before returning it.
	Advertise(name string, uuids ...ble.UUID) error
	StopAdvertising() error
	SetServices([]*ble.Service) error
}

// RealPeripheral is a Peripheral backed by an HCI socket
type RealPeripheral struct {
	methods            coreMethods
	mutex              *sync.Mutex
	state              models.RadioState
	onStateChange      func(models.RadioState)
	onAdvertisingStart func(error)
}

func NewRealPeripheral() *RealPeripheral {
	return newPeripheral(&realCoreMethods{})
}

func newPeripheral(methods coreMethods) *RealPeripheral {
	return &RealPeripheral{methods: methods, mutex: &sync.Mutex{}, state: models.Unknown}
}

// Open opens the HCI device and reports PoweredOn, or Error if the device is unusable.
// Call it only after the radio has been bootstrapped.
func (p *RealPeripheral) Open(deviceID int) error {
	p.setState(models.Resetting)
	if err := p.methods.Stop(); err != nil {
		log.Warn().Err(err).Str("component", "peripheral").Msg("stop before open")
	}
	if err := p.methods.OpenDevice(deviceID); err != nil {
		p.setState(models.Error)
		return errors.Wrap(err, "OpenDevice issue")
	}
	p.setState(models.PoweredOn)
	return nil
}

// Close releases the HCI device and reports PoweredOff
func (p *RealPeripheral) Close() error {
	err := p.methods.Stop()
	p.setState(models.PoweredOff)
	return err
}

func (p *RealPeripheral) State() models.RadioState {
	p.mutex.Lock()
	defer p.mutex.Unlock()
	return p.state
}

func (p *RealPeripheral) OnStateChange(fn func(models.RadioState)) {
	p.mutex.Lock()
	defer p.mutex.Unlock()
	p.onStateChange = fn
}

func (p *RealPeripheral) OnAdvertisingStart(fn func(error)) {
	p.mutex.Lock()
	defer p.mutex.Unlock()
	p.onAdvertisingStart = fn
}

func (p *RealPeripheral) Advertise(name string, uuids ...ble.UUID) error {
	err := p.methods.AdvertiseNameAndServices(name, uuids...)
	if err != nil {
		err = errors.Wrap(err, "AdvertiseNameAndServices issue")
	}
	p.mutex.Lock()
	cb := p.onAdvertisingStart
	p.mutex.Unlock()
	if cb != nil {
		cb(err)
	}
	return err
}

func (p *RealPeripheral) StopAdvertising() error {
	return p.methods.StopAdvertising()
}

func (p *RealPeripheral) SetServices(svcs []*ble.Service) error {
	return p.methods.SetServices(svcs)
}

func (p *RealPeripheral) setState(state models.RadioState) {
	p.mutex.Lock()
	p.state = state
	cb := p.onStateChange
	p.mutex.Unlock()
	if cb != nil {
		cb(state)
	}
}
