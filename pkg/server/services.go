package server

import (
	"github.com/Krajiyah/speaker-os/pkg/util"
	"github.com/go-ble/ble"
)

func getDeviceInfoService(server *BLEServer) *ble.Service {
	service := ble.NewService(ble.MustParse(util.DeviceInfoServiceUUID))
	service.AddCharacteristic(newReadChar(util.ManufacturerCharUUID, "Manufacturer Name", func() []byte {
		return []byte(util.Manufacturer)
	}))
	service.AddCharacteristic(newReadChar(util.ModelCharUUID, "Model Name", func() []byte {
		return []byte(server.info.Model)
	}))
	service.AddCharacteristic(newReadChar(util.DeviceIDCharUUID, "Device ID", func() []byte {
		return []byte(util.DeviceIDHex(server.network.RegistrationID()))
	}))
	service.AddCharacteristic(newReadChar(util.FirmwareCharUUID, "Firmware Version", func() []byte {
		return []byte(server.info.FirmwareVersion)
	}))
	return service
}

func getUserService(server *BLEServer) *ble.Service {
	service := ble.NewService(ble.MustParse(util.UserServiceUUID))
	service.AddCharacteristic(newReadChar(util.UserIndexCharUUID, "User Index", func() []byte {
		return []byte{server.users.CurrentUser().Index()}
	}))
	return service
}

func getNetworkService(server *BLEServer) *ble.Service {
	service := ble.NewService(ble.MustParse(util.NetworkServiceUUID))
	service.AddCharacteristic(newReadWriteChar(util.NetworkCharUUID, "SSID/PSK",
		generateNetworkReadHandler(server.network),
		generateNetworkWriteHandler(server.listener.OnProvisioningRequest),
	))
	return service
}
