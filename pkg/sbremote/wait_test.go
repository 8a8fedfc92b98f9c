package sbremote

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/function61/ssmbackup/pkg/sbconfig"
	"github.com/function61/ssmbackup/pkg/sbtypes"
	"github.com/jonboulle/clockwork"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var defaultPoll = PollOptions{Delay: 5 * time.Second, MaxAttempts: 12}

func TestWaitUntilDone(t *testing.T) {
	tests := []struct {
		name       string
		answers    []scriptedAnswer
		wantStatus sbtypes.InvocationStatus
		wantPolls  int
	}{
		{
			name:       "immediate success",
			answers:    []scriptedAnswer{{status: sbtypes.StatusSuccess}},
			wantStatus: sbtypes.StatusSuccess,
			wantPolls:  1,
		},
		{
			name: "not registered, pending, then success",
			answers: []scriptedAnswer{
				{err: ErrInvocationNotFound},
				{status: sbtypes.StatusPending},
				{status: sbtypes.StatusInProgress},
				{status: sbtypes.StatusSuccess},
			},
			wantStatus: sbtypes.StatusSuccess,
			wantPolls:  4,
		},
		{
			name: "failure is terminal",
			answers: []scriptedAnswer{
				{status: sbtypes.StatusInProgress},
				{status: sbtypes.StatusFailed},
			},
			wantStatus: sbtypes.StatusFailed,
			wantPolls:  2,
		},
		{
			name: "success on the last allowed attempt",
			answers: append(
				repeat(scriptedAnswer{status: sbtypes.StatusInProgress}, 11),
				scriptedAnswer{status: sbtypes.StatusSuccess}),
			wantStatus: sbtypes.StatusSuccess,
			wantPolls:  12,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ctx, cancel := context.WithCancel(context.Background())
			defer cancel()

			clock := clockwork.NewFakeClock()
			autoAdvance(ctx, clock, defaultPoll.Delay)

			dispatcher := &scriptedDispatcher{answers: tt.answers}

			status, err := WaitUntilDone(ctx, dispatcher, "cmd-1", "i-1", defaultPoll, clock, discardLogger)
			require.NoError(t, err)

			assert.Equal(t, tt.wantStatus, status)
			assert.Equal(t, tt.wantPolls, dispatcher.polls)
		})
	}
}

func TestWaitUntilDoneTimesOutAtCeiling(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	clock := clockwork.NewFakeClock()
	started := clock.Now()
	autoAdvance(ctx, clock, defaultPoll.Delay)

	dispatcher := &scriptedDispatcher{answers: []scriptedAnswer{{status: sbtypes.StatusPending}}}

	_, err := WaitUntilDone(ctx, dispatcher, "cmd-1", "i-1", defaultPoll, clock, discardLogger)
	require.Error(t, err)

	assert.True(t, errors.Is(err, ErrTimeout))
	assert.Equal(t, 12, dispatcher.polls)
	assert.Equal(t, 60*time.Second, clock.Since(started))
	assert.Equal(t, 60*time.Second, defaultPoll.Ceiling())
}

func TestWaitUntilDoneNeverRegistered(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	clock := clockwork.NewFakeClock()
	autoAdvance(ctx, clock, defaultPoll.Delay)

	dispatcher := &scriptedDispatcher{answers: []scriptedAnswer{{err: ErrInvocationNotFound}}}

	_, err := WaitUntilDone(ctx, dispatcher, "cmd-1", "i-1", defaultPoll, clock, discardLogger)

	assert.True(t, errors.Is(err, ErrTimeout))
	assert.Equal(t, 12, dispatcher.polls)
}

func TestWaitUntilDonePollError(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	clock := clockwork.NewFakeClock()
	autoAdvance(ctx, clock, defaultPoll.Delay)

	accessDenied := errors.New("AccessDeniedException")

	dispatcher := &scriptedDispatcher{answers: []scriptedAnswer{
		{status: sbtypes.StatusPending},
		{err: accessDenied},
	}}

	_, err := WaitUntilDone(ctx, dispatcher, "cmd-1", "i-1", defaultPoll, clock, discardLogger)

	assert.True(t, errors.Is(err, accessDenied))
	assert.False(t, errors.Is(err, ErrTimeout))
	assert.Equal(t, 2, dispatcher.polls)
}

func TestWaitUntilDoneCancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	dispatcher := &scriptedDispatcher{answers: []scriptedAnswer{{status: sbtypes.StatusPending}}}

	// nobody advances the clock, so only the cancellation can get us out
	_, err := WaitUntilDone(ctx, dispatcher, "cmd-1", "i-1", defaultPoll, clockwork.NewFakeClock(), discardLogger)

	assert.Equal(t, context.Canceled, err)
	assert.Equal(t, 0, dispatcher.polls)
}

func TestPollOptionsFromConfig(t *testing.T) {
	opts := PollOptionsFromConfig(sbconfig.CommandConfig{PollDelaySeconds: 2, PollMaxAttempts: 4})

	assert.Equal(t, PollOptions{Delay: 2 * time.Second, MaxAttempts: 4}, opts)
	assert.Equal(t, 8*time.Second, opts.Ceiling())
}

func repeat(answer scriptedAnswer, times int) []scriptedAnswer {
	answers := []scriptedAnswer{}
	for i := 0; i < times; i++ {
		answers = append(answers, answer)
	}
	return answers
}
