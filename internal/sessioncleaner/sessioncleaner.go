// Package sessioncleaner runs the background removal of expired sessions.
package sessioncleaner

import (
	"context"
	"time"

	"github.com/patric-chuzhbe/miniblog/internal/logger"
)

type expiredDeleter interface {
	DeleteExpired(ctx context.Context) (int64, error)
}

// Cleaner periodically deletes expired sessions from the session store.
// Errors are pushed onto an internal channel and surfaced through
// ListenErrors.
type Cleaner struct {
	store        expiredDeleter
	sweepEvery   time.Duration
	errorChannel chan error
}

// New returns a Cleaner sweeping the given store every sweepEvery.
func New(store expiredDeleter, sweepEvery time.Duration) *Cleaner {
	return &Cleaner{
		store:        store,
		sweepEvery:   sweepEvery,
		errorChannel: make(chan error, 1),
	}
}

// ListenErrors invokes callback for every error produced by the sweep
// loop. It returns immediately; draining happens on a goroutine.
func (c *Cleaner) ListenErrors(callback func(error)) {
	go func() {
		for err := range c.errorChannel {
			callback(err)
		}
	}()
}

// Run starts the sweep loop. It stops, and closes the error channel,
// when ctx is cancelled.
func (c *Cleaner) Run(ctx context.Context) {
	go func() {
		ticker := time.NewTicker(c.sweepEvery)
		defer ticker.Stop()
		defer close(c.errorChannel)

		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				removed, err := c.store.DeleteExpired(ctx)
				if err != nil {
					select {
					case c.errorChannel <- err:
					default:
					}
					continue
				}
				if removed > 0 {
					logger.Log.Infof("removed %d expired sessions", removed)
				}
			}
		}
	}()
}
