// Package messages dispatches inbound control messages over a closed set of kinds.
package messages

import (
	"bytes"
	"context"
	"encoding/json"

	"github.com/Krajiyah/speaker-os/pkg/models"
	"github.com/bradfitz/slice"
	"github.com/pkg/errors"
	"github.com/rs/zerolog/log"
)

// Kind names a message
type Kind string

const (
	Ping      Kind = "ping"
	SetUser   Kind = "setUser"
	ClearUser Kind = "clearUser"
)

var (
	ErrNoName      = errors.New("message has no name")
	ErrUnknownKind = errors.New("unknown message kind")
)

// Message is one inbound control message
type Message struct {
	Name string          `json:"name"`
	Data json.RawMessage `json:"data,omitempty"`
}

// Users is the user presence surface the message handlers mutate
type Users interface {
	Set(models.User) error
	Clear() error
}

type handler func(ctx context.Context, data json.RawMessage) (string, error)

type Dispatcher struct {
	handlers map[Kind]handler
}

func NewDispatcher(users Users) *Dispatcher {
	return &Dispatcher{handlers: map[Kind]handler{
		Ping: func(context.Context, json.RawMessage) (string, error) {
			return "pong", nil
		},
		SetUser: func(_ context.Context, data json.RawMessage) (string, error) {
			u, err := decodeUser(data)
			if err != nil {
				return "", err
			}
			if err := users.Set(u); err != nil {
				return "", err
			}
			return "ok", nil
		},
		ClearUser: func(context.Context, json.RawMessage) (string, error) {
			if err := users.Clear(); err != nil {
				return "", err
			}
			return "ok", nil
		},
	}}
}

// decodeUser accepts the user as a JSON object or as a string holding one
func decodeUser(data json.RawMessage) (models.User, error) {
	var u models.User
	raw := bytes.TrimSpace(data)
	if len(raw) > 0 && raw[0] == '"' {
		var encoded string
		if err := json.Unmarshal(raw, &encoded); err != nil {
			return u, errors.Wrap(err, "decoding user")
		}
		raw = []byte(encoded)
	}
	if err := json.Unmarshal(raw, &u); err != nil {
		return u, errors.Wrap(err, "decoding user")
	}
	return u, nil
}

// Dispatch runs the handler registered for msg.Name
func (d *Dispatcher) Dispatch(ctx context.Context, msg Message) (string, error) {
	if msg.Name == "" {
		return "", ErrNoName
	}
	h, ok := d.handlers[Kind(msg.Name)]
	if !ok {
		log.Warn().Str("component", "messages").Str("name", msg.Name).Msg("rejected message")
		return "", errors.Wrap(ErrUnknownKind, msg.Name)
	}
	return h(ctx, msg.Data)
}

// Kinds lists the accepted message names in order
func (d *Dispatcher) Kinds() []string {
	ret := make([]string, 0, len(d.handlers))
	for k := range d.handlers {
		ret = append(ret, string(k))
	}
	slice.Sort(ret, func(i, j int) bool { return ret[i] < ret[j] })
	return ret
}
