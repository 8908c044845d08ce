// Package user tracks the account the speaker is assigned to.
package user

import (
	"encoding/json"
	"sync"

	"github.com/Krajiyah/speaker-os/pkg/models"
	"github.com/Krajiyah/speaker-os/pkg/storage"
	"github.com/Krajiyah/speaker-os/pkg/util"
	"github.com/pkg/errors"
)

// Event describes a presence change
type Event struct {
	User    models.User
	Cleared bool
}

// Presence holds the assigned user, persisted under the user key
type Presence struct {
	store     storage.Store
	mutex     sync.RWMutex
	user      models.User
	listeners []func(Event)
}

// Load reads the stored user. A missing key means no user is assigned.
func Load(store storage.Store) (*Presence, error) {
	p := &Presence{store: store}
	raw, ok, err := store.Get(util.UserKey)
	if err != nil {
		return nil, errors.Wrap(err, "loading user")
	}
	if ok && raw != "" {
		if err := json.Unmarshal([]byte(raw), &p.user); err != nil {
			return nil, errors.Wrap(err, "decoding stored user")
		}
	}
	return p, nil
}

func (p *Presence) CurrentUser() models.User {
	p.mutex.RLock()
	defer p.mutex.RUnlock()
	return p.user
}

func (p *Presence) Present() bool {
	return p.CurrentUser().Present()
}

// OnChange registers fn for every later Set and Clear
func (p *Presence) OnChange(fn func(Event)) {
	p.mutex.Lock()
	defer p.mutex.Unlock()
	p.listeners = append(p.listeners, fn)
}

func (p *Presence) Set(u models.User) error {
	if !u.Present() {
		return errors.New("user id is required")
	}
	data, err := json.Marshal(u)
	if err != nil {
		return errors.Wrap(err, "encoding user")
	}
	if err := p.store.Set(util.UserKey, string(data)); err != nil {
		return errors.Wrap(err, "persisting user")
	}
	p.mutex.Lock()
	p.user = u
	listeners := append([]func(Event){}, p.listeners...)
	p.mutex.Unlock()
	notify(listeners, Event{User: u})
	return nil
}

func (p *Presence) Clear() error {
	if err := p.store.Remove(util.UserKey); err != nil {
		return errors.Wrap(err, "removing user")
	}
	p.mutex.Lock()
	p.user = models.User{}
	listeners := append([]func(Event){}, p.listeners...)
	p.mutex.Unlock()
	notify(listeners, Event{Cleared: true})
	return nil
}

func notify(listeners []func(Event), ev Event) {
	for _, fn := range listeners {
		fn(ev)
	}
}
