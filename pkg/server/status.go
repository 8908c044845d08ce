package server

import "github.com/Krajiyah/speaker-os/pkg/models"

// State returns the current advertising state
func (server *BLEServer) State() models.AdvertisingState {
	server.mutex.Lock()
	defer server.mutex.Unlock()
	return server.state
}

// Advertising reports whether the service set is currently advertised
func (server *BLEServer) Advertising() bool {
	return server.State() == models.Broadcasting
}

func (server *BLEServer) setStatus(state models.AdvertisingState, err error) {
	server.mutex.Lock()
	server.state = state
	server.mutex.Unlock()
	server.listener.OnServerStatusChanged(state, err)
}
