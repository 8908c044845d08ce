package internal

import (
	"sync"

	"github.com/Krajiyah/speaker-os/pkg/models"
	"github.com/go-ble/ble"
)

// DummyPeripheral is an in-memory radio. Failures are injected through the exported error fields.
type DummyPeripheral struct {
	mutex          sync.Mutex
	AdvertiseErr   error
	SetServicesErr error
	advertising    bool
	advertiseCalls int
	stopCalls      int
	services       []*ble.Service
	onState        func(models.RadioState)
	onAdvStart     func(error)
}

func NewDummyPeripheral() *DummyPeripheral {
	return &DummyPeripheral{}
}

func (d *DummyPeripheral) OnStateChange(fn func(models.RadioState)) {
	d.mutex.Lock()
	defer d.mutex.Unlock()
	d.onState = fn
}

func (d *DummyPeripheral) OnAdvertisingStart(fn func(error)) {
	d.mutex.Lock()
	defer d.mutex.Unlock()
	d.onAdvStart = fn
}

func (d *DummyPeripheral) Advertise(name string, uuids ...ble.UUID) error {
	d.mutex.Lock()
	d.advertiseCalls++
	err := d.AdvertiseErr
	if err == nil {
		d.advertising = true
	}
	cb := d.onAdvStart
	d.mutex.Unlock()
	if cb != nil {
		cb(err)
	}
	return err
}

func (d *DummyPeripheral) StopAdvertising() error {
	d.mutex.Lock()
	defer d.mutex.Unlock()
	d.stopCalls++
	d.advertising = false
	return nil
}

func (d *DummyPeripheral) SetServices(svcs []*ble.Service) error {
	d.mutex.Lock()
	defer d.mutex.Unlock()
	if d.SetServicesErr != nil {
		return d.SetServicesErr
	}
	d.services = svcs
	return nil
}

// EmitState delivers an adapter state notification
func (d *DummyPeripheral) EmitState(s models.RadioState) {
	d.mutex.Lock()
	cb := d.onState
	d.mutex.Unlock()
	if cb != nil {
		cb(s)
	}
}

func (d *DummyPeripheral) Advertising() bool {
	d.mutex.Lock()
	defer d.mutex.Unlock()
	return d.advertising
}

func (d *DummyPeripheral) AdvertiseCalls() int {
	d.mutex.Lock()
	defer d.mutex.Unlock()
	return d.advertiseCalls
}

func (d *DummyPeripheral) StopCalls() int {
	d.mutex.Lock()
	defer d.mutex.Unlock()
	return d.stopCalls
}

func (d *DummyPeripheral) RegisteredServices() []*ble.Service {
	d.mutex.Lock()
	defer d.mutex.Unlock()
	return d.services
}
