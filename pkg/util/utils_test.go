package util

import (
	"testing"

	"github.com/go-ble/ble"
	"gotest.tools/assert"
)

func TestDeviceIDHex(t *testing.T) {
	assert.Equal(t, DeviceIDHex(""), "")
	assert.Equal(t, DeviceIDHex("  "), "")
	assert.Equal(t, DeviceIDHex("6ba7b810-9dad-11d1-80b4-00c04fd430c8"), "36626137623831302d396461642d313164312d383062342d303063303466643433306338")
	assert.Equal(t, DeviceIDHex("abc"), "616263")
}

func TestUUIDEqualStr(t *testing.T) {
	assert.Assert(t, UUIDEqualStr(ble.UUID16(0x180a), DeviceInfoServiceUUID))
	assert.Assert(t, UUIDEqualStr(ble.MustParse(NetworkCharUUID), NetworkCharUUID))
	assert.Assert(t, !UUIDEqualStr(ble.UUID16(0x181c), DeviceInfoServiceUUID))
}
