package util

import (
	"context"
	"time"

	"github.com/pkg/errors"
)

// ErrTimeout is returned by Timeout when the interval elapses first
var ErrTimeout = errors.New("Timeout")

// Timeout is a utility method used to timeout function calls after the specified interval.
// fn receives a context that is cancelled once the interval elapses or the parent is done.
func Timeout(ctx context.Context, duration time.Duration, fn func(context.Context) error) error {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()
	ch := make(chan error, 1)
	go func() {
		ch <- fn(ctx)
	}()
	timer := time.NewTimer(duration)
	defer timer.Stop()
	select {
	case err := <-ch:
		return err
	case <-timer.C:
		return ErrTimeout
	case <-ctx.Done():
		return ctx.Err()
	}
}
