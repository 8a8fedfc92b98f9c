package sbbackup

import (
	"context"
	"errors"
	"io"
	"io/ioutil"
	"log"
	"strings"
	"time"

	"github.com/function61/ssmbackup/pkg/sbremote"
	"github.com/function61/ssmbackup/pkg/sbstorage"
	"github.com/function61/ssmbackup/pkg/sbtypes"
	"github.com/jonboulle/clockwork"
)

var discardLogger = log.New(ioutil.Discard, "", 0)

type fakeDispatcher struct {
	sendErr  error
	statuses []sbtypes.InvocationStatus // polled in order, last one repeats
	stdout   string
	stderr   string

	sentCommands []string
	polls        int
}

func (f *fakeDispatcher) Send(_ context.Context, instanceId string, command string) (string, error) {
	if f.sendErr != nil {
		return "", f.sendErr
	}

	f.sentCommands = append(f.sentCommands, command)

	return "cmd-" + instanceId, nil
}

func (f *fakeDispatcher) Invocation(_ context.Context, commandId string, instanceId string) (*sbtypes.Invocation, error) {
	idx := f.polls
	if idx >= len(f.statuses) {
		idx = len(f.statuses) - 1
	}
	f.polls++

	return &sbtypes.Invocation{
		CommandId:  commandId,
		InstanceId: instanceId,
		Status:     f.statuses[idx],
		Stdout:     f.stdout,
		Stderr:     f.stderr,
	}, nil
}

var _ sbremote.Dispatcher = (*fakeDispatcher)(nil)

type memoryStorage struct {
	putErr  error
	objects map[string]string
	puts    int
}

func newMemoryStorage() *memoryStorage {
	return &memoryStorage{objects: map[string]string{}}
}

func (m *memoryStorage) Put(_ context.Context, artifact sbtypes.Artifact) error {
	if m.putErr != nil {
		return m.putErr
	}

	m.puts++
	m.objects[artifact.Key] = artifact.Body

	return nil
}

func (m *memoryStorage) List(_ context.Context) ([]sbstorage.StoredBackup, error) {
	return nil, errors.New("not implemented")
}

func (m *memoryStorage) Get(_ context.Context, id string) (io.ReadCloser, error) {
	content, found := m.objects[id]
	if !found {
		return nil, errors.New("not found")
	}

	return ioutil.NopCloser(strings.NewReader(content)), nil
}

var _ sbstorage.Storage = (*memoryStorage)(nil)

func autoAdvance(ctx context.Context, clock *clockwork.FakeClock, step time.Duration) {
	go func() {
		for clock.BlockUntilContext(ctx, 1) == nil {
			clock.Advance(step)
		}
	}()
}
