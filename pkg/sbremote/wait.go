package sbremote

import (
	"context"
	"errors"
	"fmt"
	"log"
	"time"

	"github.com/function61/gokit/logex"
	"github.com/function61/ssmbackup/pkg/sbconfig"
	"github.com/function61/ssmbackup/pkg/sbtypes"
	"github.com/jonboulle/clockwork"
)

var ErrTimeout = errors.New("command did not complete in time")

type PollOptions struct {
	Delay       time.Duration
	MaxAttempts int
}

func PollOptionsFromConfig(conf sbconfig.CommandConfig) PollOptions {
	return PollOptions{
		Delay:       conf.PollDelay(),
		MaxAttempts: conf.PollMaxAttempts,
	}
}

// upper bound for how long WaitUntilDone blocks
func (p PollOptions) Ceiling() time.Duration {
	return p.Delay * time.Duration(p.MaxAttempts)
}

// polls the invocation until it reaches a terminal status. each attempt is preceded by
// opts.Delay, so the invocation has time to register and the total wait is bounded by
// opts.Ceiling(). a terminal status is not necessarily success - caller has to check.
func WaitUntilDone(
	ctx context.Context,
	dispatcher Dispatcher,
	commandId string,
	instanceId string,
	opts PollOptions,
	clock clockwork.Clock,
	logger *log.Logger,
) (sbtypes.InvocationStatus, error) {
	logl := logex.Levels(logger)

	for attempt := 1; attempt <= opts.MaxAttempts; attempt++ {
		select {
		case <-ctx.Done():
			return "", ctx.Err()
		case <-clock.After(opts.Delay):
		}

		invocation, err := dispatcher.Invocation(ctx, commandId, instanceId)
		if err != nil {
			if errors.Is(err, ErrInvocationNotFound) {
				logl.Debug.Printf("attempt %d/%d: invocation not registered yet", attempt, opts.MaxAttempts)
				continue
			}

			return "", fmt.Errorf("poll attempt %d/%d: %w", attempt, opts.MaxAttempts, err)
		}

		if invocation.Status.Terminal() {
			return invocation.Status, nil
		}

		logl.Debug.Printf("attempt %d/%d: %s", attempt, opts.MaxAttempts, invocation.Status)
	}

	return "", fmt.Errorf("%w: no terminal status after %d attempts (%s)", ErrTimeout, opts.MaxAttempts, opts.Ceiling())
}
