// Package radio prepares the host's BLE adapter for a user-space GATT server.
package radio

import (
	"context"
	"sync"

	"github.com/Krajiyah/speaker-os/pkg/models"
	"github.com/rs/zerolog/log"
)

// Step is one privileged preparation action. Steps must be idempotent.
type Step interface {
	Name() string
	Run(ctx context.Context) error
}

// Bootstrapper runs its steps strictly in order. The first failure is remembered and
// returned by every later Prepare call.
type Bootstrapper struct {
	steps  []Step
	mutex  sync.Mutex
	failed *models.BootstrapError
}

func NewBootstrapper(steps ...Step) *Bootstrapper {
	return &Bootstrapper{steps: steps}
}

// NewDefaultBootstrapper stops the host bluetooth daemon unit and then brings the adapter up
func NewDefaultBootstrapper(unit string, adapter string, hciconfigPath string) *Bootstrapper {
	return NewBootstrapper(NewDaemonStopper(unit), NewAdapterUp(hciconfigPath, adapter))
}

func (b *Bootstrapper) Prepare(ctx context.Context) error {
	b.mutex.Lock()
	defer b.mutex.Unlock()
	if b.failed != nil {
		return b.failed
	}
	for _, step := range b.steps {
		log.Info().Str("component", "bootstrap").Str("stage", step.Name()).Msg("running")
		if err := step.Run(ctx); err != nil {
			b.failed = &models.BootstrapError{Stage: step.Name(), Message: err.Error(), Err: err}
			log.Error().Err(err).Str("component", "bootstrap").Str("stage", step.Name()).Msg("radio bootstrap failed")
			return b.failed
		}
	}
	return nil
}
