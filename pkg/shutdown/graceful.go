package shutdown

import (
	"context"
	"errors"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/honeycarbs/contractsync/pkg/logging"
)

// Signals a one-shot job treats as a user interrupt
var Signals = []os.Signal{os.Interrupt, syscall.SIGTERM}

// Watch returns a context cancelled when one of signals arrives.
// Call stop once the job is done to release the handler.
func Watch(parent context.Context, signals []os.Signal) (ctx context.Context, stop context.CancelFunc) {
	return signal.NotifyContext(parent, signals...)
}

// Interrupted reports whether err is the result of ctx being cancelled
func Interrupted(ctx context.Context, err error) bool {
	return ctx.Err() != nil && errors.Is(err, context.Canceled)
}

// Linger waits for d before process teardown. An interrupt ends the wait
// early and is logged; it is never treated as a failure.
func Linger(ctx context.Context, d time.Duration, log *logging.Logger) {
	if d <= 0 {
		return
	}

	t := time.NewTimer(d)
	defer t.Stop()

	select {
	case <-t.C:
	case <-ctx.Done():
		log.Info("terminated by user")
	}
}
