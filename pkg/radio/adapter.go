package radio

import (
	"bytes"
	"context"
	"os/exec"
	"strings"

	"github.com/pkg/errors"
)

const adapterUpStage = "adapter-up"

type commandRunner func(ctx context.Context, name string, args ...string) (stdout string, stderr string, err error)

func runCommand(ctx context.Context, name string, args ...string) (string, string, error) {
	cmd := exec.CommandContext(ctx, name, args...)
	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr
	err := cmd.Run()
	return stdout.String(), stderr.String(), err
}

// AdapterUp brings the HCI adapter up with hciconfig
type AdapterUp struct {
	path    string
	adapter string
	run     commandRunner
}

func NewAdapterUp(hciconfigPath string, adapter string) *AdapterUp {
	if hciconfigPath == "" {
		hciconfigPath = "hciconfig"
	}
	if adapter == "" {
		adapter = "hci0"
	}
	return &AdapterUp{path: hciconfigPath, adapter: adapter, run: runCommand}
}

func (a *AdapterUp) Name() string { return adapterUpStage }

// Run fails if the command fails or writes anything to stderr
func (a *AdapterUp) Run(ctx context.Context) error {
	_, stderr, err := a.run(ctx, a.path, a.adapter, "up")
	stderr = strings.TrimSpace(stderr)
	if err != nil {
		if stderr != "" {
			return errors.Wrap(err, stderr)
		}
		return errors.Wrapf(err, "%s %s up", a.path, a.adapter)
	}
	if stderr != "" {
		return errors.New(stderr)
	}
	return nil
}
