package server

import (
	"github.com/Krajiyah/speaker-os/pkg/models"
	"github.com/Krajiyah/speaker-os/pkg/util"
	"github.com/go-ble/ble"
	"github.com/rs/zerolog/log"
)

type loadFn func() []byte

func newReadChar(uuid string, description string, load loadFn) *ble.Characteristic {
	c := ble.NewCharacteristic(ble.MustParse(uuid))
	c.HandleRead(ble.ReadHandlerFunc(generateReadHandler(load)))
	describe(c, description)
	return c
}

func newReadWriteChar(uuid string, description string, onRead func(req ble.Request, rsp ble.ResponseWriter), onWrite func(req ble.Request, rsp ble.ResponseWriter)) *ble.Characteristic {
	c := ble.NewCharacteristic(ble.MustParse(uuid))
	c.HandleRead(ble.ReadHandlerFunc(onRead))
	c.HandleWrite(ble.WriteHandlerFunc(onWrite))
	describe(c, description)
	return c
}

func describe(c *ble.Characteristic, description string) {
	d := c.NewDescriptor(ble.MustParse(util.UserDescriptionUUID))
	d.SetValue([]byte(description))
}

// generateReadHandler serves a value computed at request time. Read blob requests
// are answered from the requested offset.
func generateReadHandler(load loadFn) func(req ble.Request, rsp ble.ResponseWriter) {
	return func(req ble.Request, rsp ble.ResponseWriter) {
		data := load()
		offset := req.Offset()
		if offset > len(data) {
			rsp.SetStatus(ble.ErrInvalidOffset)
			return
		}
		rsp.Write(data[offset:])
	}
}

// generateNetworkReadHandler serves the last accepted ssid, or the no-ssid sentinel.
// The psk is never readable.
func generateNetworkReadHandler(network NetworkState) func(req ble.Request, rsp ble.ResponseWriter) {
	return func(req ble.Request, rsp ble.ResponseWriter) {
		if req.Offset() != 0 {
			rsp.SetStatus(ble.ErrAttrNotLong)
			return
		}
		ssid, ok := network.SSID()
		if !ok || ssid == "" {
			rsp.Write(util.NoSSIDSentinel)
			return
		}
		rsp.Write([]byte(ssid))
	}
}

// generateNetworkWriteHandler acknowledges a well formed provisioning write and hands it
// to onRequest. Association happens elsewhere, after the response has been sent.
func generateNetworkWriteHandler(onRequest func(models.ProvisioningRequest)) func(req ble.Request, rsp ble.ResponseWriter) {
	return func(req ble.Request, rsp ble.ResponseWriter) {
		r, err := parseProvisioningWrite(req.Offset(), req.Data())
		if err != nil {
			log.Warn().Str("component", "gatt").Str("reason", err.Reason).Msg("rejected network write")
			rsp.SetStatus(err.Status)
			return
		}
		rsp.SetStatus(ble.ErrSuccess)
		onRequest(*r)
	}
}

func parseProvisioningWrite(offset int, data []byte) (*models.ProvisioningRequest, *models.MalformedProvisioningRequest) {
	if offset != 0 {
		return nil, &models.MalformedProvisioningRequest{Reason: "long writes are not supported", Status: ble.ErrAttrNotLong}
	}
	if len(data) == 0 {
		return nil, &models.MalformedProvisioningRequest{Reason: "empty payload", Status: ble.ErrInvalAttrValueLen}
	}
	r, err := models.GetProvisioningRequestFromBytes(data)
	if err != nil {
		return nil, &models.MalformedProvisioningRequest{Reason: err.Error(), Status: ble.ErrUnlikely}
	}
	if err := r.Credential().Validate(); err != nil {
		return nil, &models.MalformedProvisioningRequest{Reason: err.Error(), Status: ble.ErrUnlikely}
	}
	return r, nil
}
