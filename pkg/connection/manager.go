// Package connection tracks which interface carries the device's traffic, applies
// wifi credentials and decides whether the device can reach the internet.
package connection

import (
	"context"
	"sync"

	"github.com/Krajiyah/speaker-os/pkg/models"
	"github.com/Krajiyah/speaker-os/pkg/storage"
	"github.com/Krajiyah/speaker-os/pkg/util"
	mapset "github.com/deckarep/golang-set"
	"github.com/google/uuid"
	"github.com/pkg/errors"
	"github.com/rs/zerolog/log"
	"go.uber.org/multierr"
)

// Options names the interfaces of each class, in no particular order
type Options struct {
	EthernetInterfaces []string
	WiFiInterfaces     []string
}

// Manager owns the current credential and the last reachability result
type Manager struct {
	store      storage.Store
	lister     InterfaceLister
	associator Associator
	resolver   Resolver
	ethernet   mapset.Set
	wifi       mapset.Set

	mutex          sync.RWMutex
	initialized    bool
	registrationID string
	credential     models.Credential
	publicAddress  string
	connected      bool
}

func NewManager(opts Options, store storage.Store, lister InterfaceLister, associator Associator, resolver Resolver) *Manager {
	if len(opts.EthernetInterfaces) == 0 {
		opts.EthernetInterfaces = []string{"eth0"}
	}
	if len(opts.WiFiInterfaces) == 0 {
		opts.WiFiInterfaces = []string{"wlan0"}
	}
	return &Manager{
		store: store, lister: lister, associator: associator, resolver: resolver,
		ethernet: newNameSet(opts.EthernetInterfaces),
		wifi:     newNameSet(opts.WiFiInterfaces),
	}
}

func newNameSet(names []string) mapset.Set {
	s := mapset.NewSet()
	for _, n := range names {
		s.Add(n)
	}
	return s
}

// Initialize loads the registration id and credential from storage, re-applies the
// credential if there is one, and resolves reachability.
func (m *Manager) Initialize(ctx context.Context) error {
	registrationID, _, err := m.store.Get(util.RegistrationKey)
	if err != nil {
		return errors.Wrap(err, "loading registration id")
	}
	ssid, hasSSID, err := m.store.Get(util.SSIDKey)
	if err != nil {
		return errors.Wrap(err, "loading ssid")
	}
	psk, _, err := m.store.Get(util.PSKKey)
	if err != nil {
		return errors.Wrap(err, "loading psk")
	}

	if registrationID != "" && !validRegistrationID(registrationID) {
		log.Warn().Str("component", "connection").Str("registration_id", registrationID).Msg("registration id is not a uuid")
	}

	cred := models.Credential{}
	if hasSSID && ssid != "" {
		cred = models.Credential{SSID: ssid, PSK: psk}
	}
	m.mutex.Lock()
	m.registrationID = registrationID
	m.credential = cred
	m.mutex.Unlock()

	if !cred.Empty() {
		if err := m.associator.Associate(ctx, cred); err != nil {
			log.Warn().Err(err).Str("component", "connection").Str("ssid", cred.SSID).Msg("stored network did not associate")
		}
	}
	if _, err := m.Refresh(ctx); err != nil {
		log.Info().Err(err).Str("component", "connection").Msg("not connected")
	}

	m.mutex.Lock()
	m.initialized = true
	m.mutex.Unlock()
	return nil
}

// validRegistrationID reports whether id has the uuid form the backend assigns
func validRegistrationID(id string) bool {
	_, err := uuid.Parse(id)
	return err == nil
}

// SetCredentials associates with the network and, only on success, makes it the
// current credential and persists it. A persistence failure is returned even though
// association succeeded; the stored ssid is rolled back so storage never pairs a new
// ssid with an old psk.
func (m *Manager) SetCredentials(ctx context.Context, ssid, psk string) error {
	cred := models.Credential{SSID: ssid, PSK: psk}
	if err := cred.Validate(); err != nil {
		return errors.Wrap(err, "invalid credential")
	}
	if err := m.associator.Associate(ctx, cred); err != nil {
		return &models.AssociationError{SSID: ssid, Err: err}
	}
	m.mutex.Lock()
	m.credential = cred
	m.mutex.Unlock()
	log.Info().Str("component", "connection").Str("ssid", ssid).Msg("associated")
	return m.persist(cred)
}

func (m *Manager) persist(cred models.Credential) error {
	prevSSID, hadSSID, err := m.store.Get(util.SSIDKey)
	if err != nil {
		return errors.Wrap(err, "reading stored ssid")
	}
	if err := m.store.Set(util.SSIDKey, cred.SSID); err != nil {
		return errors.Wrap(err, "persisting ssid")
	}
	if err := m.store.Set(util.PSKKey, cred.PSK); err != nil {
		err = errors.Wrap(err, "persisting psk")
		var rollback error
		if hadSSID {
			rollback = m.store.Set(util.SSIDKey, prevSSID)
		} else {
			rollback = m.store.Remove(util.SSIDKey)
		}
		if rollback != nil {
			err = multierr.Append(err, errors.Wrap(rollback, "rolling back ssid"))
		}
		return err
	}
	return nil
}

// Refresh repeats the public address lookup. A failed lookup is reported as a
// ReachabilityError and leaves the device disconnected.
func (m *Manager) Refresh(ctx context.Context) (models.ConnectivityStatus, error) {
	addr, err := m.resolver.PublicAddress(ctx)
	m.mutex.Lock()
	if err != nil {
		m.publicAddress = ""
		m.connected = false
	} else {
		m.publicAddress = addr
		m.connected = true
	}
	m.mutex.Unlock()
	status := m.Status()
	if err != nil {
		return status, &models.ReachabilityError{Err: err}
	}
	return status, nil
}

// Status computes the connectivity view. Before Initialize completes it returns the
// zero status with Known unset.
func (m *Manager) Status() models.ConnectivityStatus {
	m.mutex.RLock()
	status := models.ConnectivityStatus{
		Known:         m.initialized,
		PublicAddress: m.publicAddress,
		SSID:          m.credential.SSID,
		HasPSK:        m.credential.PSK != "",
		IsRegistered:  m.registrationID != "",
		IsConnected:   m.connected,
	}
	initialized := m.initialized
	m.mutex.RUnlock()
	if !initialized {
		return models.ConnectivityStatus{}
	}
	active, snapshot := m.activeInterface()
	status.ActiveInterface = active
	status.InterfaceName = snapshot.Name
	status.PrivateAddress = snapshot.Address
	status.OnEthernet = active == models.Ethernet
	status.OnWiFi = active == models.WiFi
	return status
}

// ActiveInterface returns the interface class carrying traffic, read live from the OS
func (m *Manager) ActiveInterface() models.ActiveInterface {
	active, _ := m.activeInterface()
	return active
}

// activeInterface prefers any usable ethernet address over wifi. Usable means the
// link is up and holds an IPv4 address.
func (m *Manager) activeInterface() (models.ActiveInterface, models.InterfaceSnapshot) {
	snapshots, err := m.lister.Interfaces()
	if err != nil {
		log.Warn().Err(err).Str("component", "connection").Msg("could not list interfaces")
		return models.NoInterface, models.InterfaceSnapshot{}
	}
	var wifi *models.InterfaceSnapshot
	for i := range snapshots {
		s := snapshots[i]
		if !s.IsUp || s.Family != models.IPv4 || s.Address == "" {
			continue
		}
		if m.ethernet.Contains(s.Name) {
			return models.Ethernet, s
		}
		if wifi == nil && m.wifi.Contains(s.Name) {
			wifi = &s
		}
	}
	if wifi != nil {
		return models.WiFi, *wifi
	}
	return models.NoInterface, models.InterfaceSnapshot{}
}

// SSID returns the current credential's ssid
func (m *Manager) SSID() (string, bool) {
	m.mutex.RLock()
	defer m.mutex.RUnlock()
	return m.credential.SSID, !m.credential.Empty()
}

func (m *Manager) RegistrationID() string {
	m.mutex.RLock()
	defer m.mutex.RUnlock()
	return m.registrationID
}
