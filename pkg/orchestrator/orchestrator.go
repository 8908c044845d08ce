// Package orchestrator links the provisioning server's events and the device's
// connectivity and user state into one advertising decision.
package orchestrator

import (
	"context"
	"sync"
	"time"

	"github.com/Krajiyah/speaker-os/pkg/models"
	"github.com/pkg/errors"
	"github.com/rs/zerolog/log"
)

// Advertiser is the advertising surface of the provisioning server
type Advertiser interface {
	StartAdvertising() error
	StopAdvertising() error
	Advertising() bool
}

// Network is the connection manager surface the orchestrator drives
type Network interface {
	SetCredentials(ctx context.Context, ssid, psk string) error
	Refresh(ctx context.Context) (models.ConnectivityStatus, error)
	Status() models.ConnectivityStatus
}

// Users reports the assigned user
type Users interface {
	CurrentUser() models.User
}

// ShouldAdvertise is the advertising policy: stay discoverable until the device is
// both online and assigned to a user.
func ShouldAdvertise(connected, userPresent bool) bool {
	return !connected || !userPresent
}

// Orchestrator handles every event on a single goroutine, in arrival order
type Orchestrator struct {
	network Network
	users   Users
	poll    time.Duration
	wake    chan struct{}

	queueMutex sync.Mutex
	queue      []models.Event
	stopped    bool

	mutex      sync.Mutex
	advertiser Advertiser
	last       models.ConnectivityStatus
}

// New returns an orchestrator that also re-checks reachability every poll interval.
// A zero interval disables polling.
func New(network Network, users Users, poll time.Duration) *Orchestrator {
	return &Orchestrator{
		network: network, users: users, poll: poll,
		wake: make(chan struct{}, 1),
	}
}

// SetAdvertiser attaches the provisioning server, which is built after the orchestrator
// because the orchestrator is its listener.
func (o *Orchestrator) SetAdvertiser(a Advertiser) {
	o.mutex.Lock()
	defer o.mutex.Unlock()
	o.advertiser = a
}

// Post queues ev for the event loop without blocking, so GATT handlers can return
// their response right away. Events posted after the loop has stopped are dropped.
func (o *Orchestrator) Post(ev models.Event) {
	o.queueMutex.Lock()
	if o.stopped {
		o.queueMutex.Unlock()
		return
	}
	o.queue = append(o.queue, ev)
	o.queueMutex.Unlock()
	select {
	case o.wake <- struct{}{}:
	default:
	}
}

// next pops the oldest queued event
func (o *Orchestrator) next() (models.Event, bool) {
	o.queueMutex.Lock()
	defer o.queueMutex.Unlock()
	if len(o.queue) == 0 {
		return nil, false
	}
	ev := o.queue[0]
	o.queue[0] = nil
	o.queue = o.queue[1:]
	return ev, true
}

func (o *Orchestrator) stop() {
	o.queueMutex.Lock()
	defer o.queueMutex.Unlock()
	o.stopped = true
	o.queue = nil
}

// Run processes events until ctx is cancelled
func (o *Orchestrator) Run(ctx context.Context) error {
	defer o.stop()
	var tick <-chan time.Time
	if o.poll > 0 {
		ticker := time.NewTicker(o.poll)
		defer ticker.Stop()
		tick = ticker.C
	}
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-o.wake:
			for ctx.Err() == nil {
				ev, ok := o.next()
				if !ok {
					break
				}
				o.handle(ctx, ev)
			}
		case <-tick:
			o.refresh(ctx, false)
		}
	}
}

func (o *Orchestrator) handle(ctx context.Context, ev models.Event) {
	switch e := ev.(type) {
	case models.RadioReady:
		o.evaluate("radio ready")
	case models.ConnectivityChanged:
		o.last = e.Status
		o.evaluate("connectivity changed")
	case models.UserPresenceChanged:
		o.evaluate("user presence changed")
	case models.ProvisioningRequested:
		o.provision(ctx, e.Request)
	default:
		log.Error().Str("component", "orchestrator").Msgf("unknown event %T", ev)
	}
}

// provision applies the credential. The write that carried it was acknowledged
// already, so the outcome only shows up in connectivity state and logs.
func (o *Orchestrator) provision(ctx context.Context, r models.ProvisioningRequest) {
	if err := o.network.SetCredentials(ctx, r.SSID, r.PSK); err != nil {
		log.Error().Err(err).Str("component", "orchestrator").Str("ssid", r.SSID).Msg("provisioning failed")
	}
	o.refresh(ctx, true)
}

func (o *Orchestrator) refresh(ctx context.Context, force bool) {
	status, err := o.network.Refresh(ctx)
	if err != nil {
		log.Debug().Err(err).Str("component", "orchestrator").Msg("reachability")
	}
	changed := status.IsConnected != o.last.IsConnected || status.ActiveInterface != o.last.ActiveInterface
	if changed || force {
		o.handle(ctx, models.ConnectivityChanged{Status: status})
	}
}

func (o *Orchestrator) evaluate(reason string) {
	o.mutex.Lock()
	adv := o.advertiser
	o.mutex.Unlock()
	if adv == nil {
		log.Warn().Str("component", "orchestrator").Str("reason", reason).Msg("no advertiser attached")
		return
	}
	connected := o.network.Status().IsConnected
	present := o.users.CurrentUser().Present()
	should := ShouldAdvertise(connected, present)
	logger := log.With().Str("component", "orchestrator").Str("reason", reason).
		Bool("connected", connected).Bool("userPresent", present).Bool("advertise", should).Logger()

	if !should {
		if adv.Advertising() {
			if err := adv.StopAdvertising(); err != nil {
				logger.Error().Err(err).Msg("stop advertising")
				return
			}
			logger.Info().Msg("advertising stopped")
		}
		return
	}
	if adv.Advertising() {
		return
	}
	if err := adv.StartAdvertising(); err != nil {
		var notReady *models.RadioNotReadyError
		if errors.As(err, &notReady) {
			logger.Debug().Err(err).Msg("waiting for radio")
			return
		}
		logger.Error().Err(err).Msg("start advertising")
		return
	}
	logger.Info().Msg("advertising started")
}

func (o *Orchestrator) OnServerStatusChanged(state models.AdvertisingState, err error) {
	if err != nil {
		log.Error().Err(err).Str("component", "gatt").Stringer("state", state).Msg("status changed")
		return
	}
	log.Info().Str("component", "gatt").Stringer("state", state).Msg("status changed")
}

func (o *Orchestrator) OnRadioReady() {
	o.Post(models.RadioReady{})
}

func (o *Orchestrator) OnProvisioningRequest(r models.ProvisioningRequest) {
	o.Post(models.ProvisioningRequested{Request: r})
}

func (o *Orchestrator) OnInternalError(err error) {
	log.Error().Err(err).Str("component", "gatt").Msg("internal error")
}

// OnUserChanged posts a presence event
func (o *Orchestrator) OnUserChanged(present bool, cleared bool) {
	o.Post(models.UserPresenceChanged{Present: present, Cleared: cleared})
}
