package radio

import (
	"context"
	"strings"

	"github.com/coreos/go-systemd/v22/dbus"
	"github.com/pkg/errors"
)

const stopDaemonStage = "stop-daemon"

type unitStopper interface {
	StopUnitContext(ctx context.Context, name string, mode string, ch chan<- string) (int, error)
	Close()
}

// DaemonStopper stops the systemd unit that otherwise holds the adapter exclusively
type DaemonStopper struct {
	unit    string
	connect func(ctx context.Context) (unitStopper, error)
}

func NewDaemonStopper(unit string) *DaemonStopper {
	if !strings.Contains(unit, ".") {
		unit = unit + ".service"
	}
	return &DaemonStopper{unit: unit, connect: func(ctx context.Context) (unitStopper, error) {
		return dbus.NewWithContext(ctx)
	}}
}

func (s *DaemonStopper) Name() string { return stopDaemonStage }

func (s *DaemonStopper) Run(ctx context.Context) error {
	conn, err := s.connect(ctx)
	if err != nil {
		return errors.Wrap(err, "connecting to systemd")
	}
	defer conn.Close()

	resultChan := make(chan string, 1)
	if _, err := conn.StopUnitContext(ctx, s.unit, "replace", resultChan); err != nil {
		return errors.Wrapf(err, "stopping %s", s.unit)
	}
	select {
	case result := <-resultChan:
		if result != "done" {
			return errors.Errorf("stopping %s: job %s", s.unit, result)
		}
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}
