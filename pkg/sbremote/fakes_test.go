package sbremote

import (
	"context"
	"io/ioutil"
	"log"
	"time"

	"github.com/function61/ssmbackup/pkg/sbtypes"
	"github.com/jonboulle/clockwork"
)

var discardLogger = log.New(ioutil.Discard, "", 0)

// answers Invocation() from a script. after the script runs out the last answer repeats
type scriptedDispatcher struct {
	answers []scriptedAnswer
	polls   int
}

type scriptedAnswer struct {
	status sbtypes.InvocationStatus
	err    error
}

func (s *scriptedDispatcher) Send(_ context.Context, _ string, _ string) (string, error) {
	return "cmd-1", nil
}

func (s *scriptedDispatcher) Invocation(_ context.Context, commandId string, instanceId string) (*sbtypes.Invocation, error) {
	idx := s.polls
	if idx >= len(s.answers) {
		idx = len(s.answers) - 1
	}
	s.polls++

	answer := s.answers[idx]
	if answer.err != nil {
		return nil, answer.err
	}

	return &sbtypes.Invocation{
		CommandId:  commandId,
		InstanceId: instanceId,
		Status:     answer.status,
	}, nil
}

// keeps advancing the fake clock whenever someone waits on it, until ctx is cancelled
func autoAdvance(ctx context.Context, clock *clockwork.FakeClock, step time.Duration) {
	go func() {
		for clock.BlockUntilContext(ctx, 1) == nil {
			clock.Advance(step)
		}
	}()
}
