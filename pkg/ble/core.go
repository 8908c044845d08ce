package ble

import (
	"github.com/Krajiyah/speaker-os/pkg/util"
	"github.com/go-ble/ble"
	"github.com/go-ble/ble/linux"
	"github.com/pkg/errors"
)

var errDeviceNotOpen = errors.New("hci device not open")

type coreMethods interface {
	OpenDevice(deviceID int) error
	AdvertiseNameAndServices(string, ...ble.UUID) error
	StopAdvertising() error
	SetServices([]*ble.Service) error
	Stop() error
}

type realCoreMethods struct {
	device *linux.Device
}

func (bc *realCoreMethods) newLinuxDevice(deviceID int) (*linux.Device, error) {
	opts := []ble.Option{
		ble.OptDeviceID(deviceID),
	}
	return linux.NewDevice(opts...)
}

func (bc *realCoreMethods) OpenDevice(deviceID int) error {
	return util.CatchErrs(func() error {
		device, err := bc.newLinuxDevice(deviceID)
		if err != nil {
			return errors.Wrap(err, "newLinuxDevice issue")
		}
		bc.device = device
		return nil
	})
}

func (bc *realCoreMethods) AdvertiseNameAndServices(name string, uuids ...ble.UUID) error {
	if bc.device == nil {
		return errDeviceNotOpen
	}
	return util.CatchErrs(func() error {
		return bc.device.HCI.AdvertiseNameAndServices(name, uuids...)
	})
}

func (bc *realCoreMethods) StopAdvertising() error {
	if bc.device == nil {
		return errDeviceNotOpen
	}
	return util.CatchErrs(func() error {
		return bc.device.HCI.StopAdvertising()
	})
}

func (bc *realCoreMethods) SetServices(svcs []*ble.Service) error {
	if bc.device == nil {
		return errDeviceNotOpen
	}
	return util.CatchErrs(func() error {
		return bc.device.SetServices(svcs)
	})
}

func (bc *realCoreMethods) Stop() error {
	if bc.device == nil {
		return nil
	}
	err := util.CatchErrs(func() error {
		return bc.device.Stop()
	})
	bc.device = nil
	return err
}
