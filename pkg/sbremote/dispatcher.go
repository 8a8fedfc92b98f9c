// Runs a command on a remote host and reports its status and output
package sbremote

import (
	"context"
	"errors"

	"github.com/function61/ssmbackup/pkg/sbtypes"
)

// returned by Invocation() when the dispatch service has not yet registered the
// invocation. happens right after Send(), so pollers should treat it as pending
var ErrInvocationNotFound = errors.New("invocation does not exist (yet)")

type Dispatcher interface {
	// returns the command ID
	Send(ctx context.Context, instanceId string, command string) (string, error)
	Invocation(ctx context.Context, commandId string, instanceId string) (*sbtypes.Invocation, error)
}
