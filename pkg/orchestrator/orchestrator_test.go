package orchestrator

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/Krajiyah/speaker-os/internal"
	"github.com/Krajiyah/speaker-os/pkg/models"
	"gotest.tools/assert"
)

type fakeNetwork struct {
	mutex      sync.Mutex
	connected  bool
	setErr     error
	requested  []models.Credential
	refreshes  int
	onSetCreds func()
}

func (n *fakeNetwork) SetCredentials(ctx context.Context, ssid, psk string) error {
	n.mutex.Lock()
	defer n.mutex.Unlock()
	n.requested = append(n.requested, models.Credential{SSID: ssid, PSK: psk})
	if n.onSetCreds != nil {
		n.onSetCreds()
	}
	return n.setErr
}

func (n *fakeNetwork) Refresh(ctx context.Context) (models.ConnectivityStatus, error) {
	n.mutex.Lock()
	n.refreshes++
	n.mutex.Unlock()
	return n.Status(), nil
}

func (n *fakeNetwork) Status() models.ConnectivityStatus {
	n.mutex.Lock()
	defer n.mutex.Unlock()
	return models.ConnectivityStatus{Known: true, IsConnected: n.connected}
}

func (n *fakeNetwork) setConnected(c bool) {
	n.mutex.Lock()
	defer n.mutex.Unlock()
	n.connected = c
}

type fakeAdvertiser struct {
	mutex       sync.Mutex
	advertising bool
	startErr    error
	starts      int
	stops       int
	checks      int
}

func (a *fakeAdvertiser) StartAdvertising() error {
	a.mutex.Lock()
	defer a.mutex.Unlock()
	a.starts++
	if a.startErr != nil {
		return a.startErr
	}
	a.advertising = true
	return nil
}

func (a *fakeAdvertiser) StopAdvertising() error {
	a.mutex.Lock()
	defer a.mutex.Unlock()
	a.stops++
	a.advertising = false
	return nil
}

func (a *fakeAdvertiser) Advertising() bool {
	a.mutex.Lock()
	defer a.mutex.Unlock()
	a.checks++
	return a.advertising
}

func (a *fakeAdvertiser) snapshot() (bool, int, int, int) {
	a.mutex.Lock()
	defer a.mutex.Unlock()
	return a.advertising, a.starts, a.stops, a.checks
}

var (
	network    *fakeNetwork
	users      *internal.DummyUsers
	advertiser *fakeAdvertiser
	ctx        = context.Background()
)

func beforeEach() *Orchestrator {
	network = &fakeNetwork{}
	users = &internal.DummyUsers{}
	advertiser = &fakeAdvertiser{}
	o := New(network, users, 0)
	o.SetAdvertiser(advertiser)
	return o
}

func TestShouldAdvertise(t *testing.T) {
	assert.Assert(t, ShouldAdvertise(false, false))
	assert.Assert(t, ShouldAdvertise(false, true))
	assert.Assert(t, ShouldAdvertise(true, false))
	assert.Assert(t, !ShouldAdvertise(true, true))
}

func TestAdvertisingFollowsPolicy(t *testing.T) {
	cases := []struct {
		connected bool
		present   bool
		expected  bool
	}{
		{false, false, true},
		{false, true, true},
		{true, false, true},
		{true, true, false},
	}
	for _, c := range cases {
		for _, startAdvertising := range []bool{false, true} {
			o := beforeEach()
			advertiser.advertising = startAdvertising
			network.setConnected(c.connected)
			if c.present {
				users.SetUser(models.User{ID: 1})
			}
			o.handle(ctx, models.ConnectivityChanged{Status: network.Status()})
			actual, _, _, _ := advertiser.snapshot()
			assert.Equal(t, actual, c.expected, "connected=%v present=%v", c.connected, c.present)

			o.handle(ctx, models.RadioReady{})
			actual, _, _, _ = advertiser.snapshot()
			assert.Equal(t, actual, c.expected)
		}
	}
}

func TestUserClearedWhileConnectedStartsAdvertising(t *testing.T) {
	o := beforeEach()
	network.setConnected(true)
	users.SetUser(models.User{ID: 9})
	advertiser.advertising = true
	o.handle(ctx, models.ConnectivityChanged{Status: network.Status()})
	advertising, _, stops, _ := advertiser.snapshot()
	assert.Assert(t, !advertising)
	assert.Equal(t, stops, 1)

	users.SetUser(models.User{})
	o.handle(ctx, models.UserPresenceChanged{Present: false, Cleared: true})
	advertising, starts, _, _ := advertiser.snapshot()
	assert.Assert(t, advertising)
	assert.Equal(t, starts, 1)
}

func TestRadioNotReadyIsNotFatal(t *testing.T) {
	o := beforeEach()
	advertiser.startErr = &models.RadioNotReadyError{State: models.Unpowered}
	o.handle(ctx, models.RadioReady{})
	advertiser.startErr = nil
	o.handle(ctx, models.RadioReady{})
	advertising, starts, _, _ := advertiser.snapshot()
	assert.Assert(t, advertising)
	assert.Equal(t, starts, 2)
}

func TestProvisioningAppliesCredentialsAndReevaluates(t *testing.T) {
	o := beforeEach()
	users.SetUser(models.User{ID: 1})
	advertiser.advertising = true
	network.onSetCreds = func() { network.connected = true }
	o.handle(ctx, models.ProvisioningRequested{Request: models.ProvisioningRequest{SSID: "HomeNet", PSK: "longpassword1"}})
	assert.DeepEqual(t, network.requested, []models.Credential{{SSID: "HomeNet", PSK: "longpassword1"}})
	assert.Equal(t, network.refreshes, 1)
	advertising, _, _, _ := advertiser.snapshot()
	assert.Assert(t, !advertising)
}

func TestProvisioningFailureKeepsAdvertising(t *testing.T) {
	o := beforeEach()
	users.SetUser(models.User{ID: 1})
	advertiser.advertising = true
	network.setErr = &models.AssociationError{SSID: "HomeNet", Err: errors.New("timeout")}
	o.handle(ctx, models.ProvisioningRequested{Request: models.ProvisioningRequest{SSID: "HomeNet", PSK: "wrongpassword"}})
	advertising, _, stops, _ := advertiser.snapshot()
	assert.Assert(t, advertising)
	assert.Equal(t, stops, 0)
}

func TestRunProcessesEveryEvent(t *testing.T) {
	o := beforeEach()
	network.setConnected(true)
	users.SetUser(models.User{ID: 1})
	runCtx, cancel := context.WithCancel(ctx)
	finished := make(chan error)
	go func() { finished <- o.Run(runCtx) }()

	o.Post(models.ConnectivityChanged{Status: network.Status()})
	o.Post(models.UserPresenceChanged{Present: true})
	o.Post(models.UserPresenceChanged{Present: true})

	deadline := time.Now().Add(2 * time.Second)
	for {
		_, _, _, checks := advertiser.snapshot()
		if checks >= 3 || time.Now().After(deadline) {
			break
		}
		time.Sleep(5 * time.Millisecond)
	}
	cancel()
	assert.ErrorContains(t, <-finished, "context canceled")
	_, _, _, checks := advertiser.snapshot()
	assert.Equal(t, checks, 3)

	// no loop left to receive, so Post must not block
	o.Post(models.RadioReady{})
}

func TestPostKeepsArrivalOrder(t *testing.T) {
	o := beforeEach()
	o.Post(models.RadioReady{})
	o.Post(models.UserPresenceChanged{Cleared: true})
	o.Post(models.ConnectivityChanged{Status: models.ConnectivityStatus{IsConnected: true}})

	var got []models.Event
	for {
		ev, ok := o.next()
		if !ok {
			break
		}
		got = append(got, ev)
	}
	assert.Equal(t, len(got), 3)
	_, ok := got[0].(models.RadioReady)
	assert.Assert(t, ok)
	_, ok = got[1].(models.UserPresenceChanged)
	assert.Assert(t, ok)
	_, ok = got[2].(models.ConnectivityChanged)
	assert.Assert(t, ok)
}

func TestPollingDetectsConnectivityChange(t *testing.T) {
	network = &fakeNetwork{}
	users = &internal.DummyUsers{}
	advertiser = &fakeAdvertiser{advertising: true}
	users.SetUser(models.User{ID: 1})
	o := New(network, users, 5*time.Millisecond)
	o.SetAdvertiser(advertiser)
	runCtx, cancel := context.WithCancel(ctx)
	defer cancel()
	go o.Run(runCtx)

	network.setConnected(true)
	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		if advertising, _, _, _ := advertiser.snapshot(); !advertising {
			break
		}
		time.Sleep(5 * time.Millisecond)
	}
	advertising, _, stops, _ := advertiser.snapshot()
	assert.Assert(t, !advertising)
	assert.Equal(t, stops, 1)
}
