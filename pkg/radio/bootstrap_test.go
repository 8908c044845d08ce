package radio

import (
	"context"
	"errors"
	"testing"

	"github.com/Krajiyah/speaker-os/pkg/models"
	"gotest.tools/assert"
)

type fakeUnitStopper struct {
	stopped []string
	result  string
	err     error
	closed  bool
}

func (f *fakeUnitStopper) StopUnitContext(ctx context.Context, name string, mode string, ch chan<- string) (int, error) {
	if f.err != nil {
		return 0, f.err
	}
	f.stopped = append(f.stopped, name)
	ch <- f.result
	return 1, nil
}

func (f *fakeUnitStopper) Close() { f.closed = true }

type recordedRun struct {
	name string
	args []string
}

var (
	calls   []string
	stopper *fakeUnitStopper
	runs    []recordedRun
)

func beforeEach(stderr string, runErr error) *Bootstrapper {
	calls = []string{}
	runs = []recordedRun{}
	stopper = &fakeUnitStopper{result: "done"}
	daemon := NewDaemonStopper("bluetooth")
	daemon.connect = func(context.Context) (unitStopper, error) {
		calls = append(calls, stopDaemonStage)
		return stopper, nil
	}
	adapter := NewAdapterUp("", "")
	adapter.run = func(ctx context.Context, name string, args ...string) (string, string, error) {
		calls = append(calls, adapterUpStage)
		runs = append(runs, recordedRun{name, args})
		return "", stderr, runErr
	}
	return NewBootstrapper(daemon, adapter)
}

func TestPrepareRunsStepsInOrder(t *testing.T) {
	b := beforeEach("", nil)
	assert.NilError(t, b.Prepare(context.Background()))
	assert.DeepEqual(t, calls, []string{stopDaemonStage, adapterUpStage})
	assert.DeepEqual(t, stopper.stopped, []string{"bluetooth.service"})
	assert.Assert(t, stopper.closed)
	assert.Equal(t, runs[0].name, "hciconfig")
	assert.DeepEqual(t, runs[0].args, []string{"hci0", "up"})
}

func TestPrepareIsRepeatable(t *testing.T) {
	b := beforeEach("", nil)
	assert.NilError(t, b.Prepare(context.Background()))
	assert.NilError(t, b.Prepare(context.Background()))
	assert.Equal(t, len(calls), 4)
}

func TestDaemonFailureSkipsAdapter(t *testing.T) {
	b := beforeEach("", nil)
	stopper.result = "failed"
	err := b.Prepare(context.Background())
	var bootErr *models.BootstrapError
	assert.Assert(t, errors.As(err, &bootErr))
	assert.Equal(t, bootErr.Stage, stopDaemonStage)
	assert.ErrorContains(t, err, "job failed")
	assert.DeepEqual(t, calls, []string{stopDaemonStage})
}

func TestAdapterStderrIsFailure(t *testing.T) {
	b := beforeEach("Can't get device info: No such device\n", nil)
	err := b.Prepare(context.Background())
	var bootErr *models.BootstrapError
	assert.Assert(t, errors.As(err, &bootErr))
	assert.Equal(t, bootErr.Stage, adapterUpStage)
	assert.Equal(t, bootErr.Message, "Can't get device info: No such device")
}

func TestFailureIsTerminal(t *testing.T) {
	b := beforeEach("", errors.New("exit status 1"))
	first := b.Prepare(context.Background())
	assert.ErrorContains(t, first, "exit status 1")
	calls = []string{}
	second := b.Prepare(context.Background())
	assert.Equal(t, second, first)
	assert.Equal(t, len(calls), 0)
}

func TestDaemonStopErrorIsWrapped(t *testing.T) {
	b := beforeEach("", nil)
	stopper.err = errors.New("access denied")
	err := b.Prepare(context.Background())
	assert.ErrorContains(t, err, "stopping bluetooth.service: access denied")
}
