// Reads a file from a remote instance and stores it as a timestamped object
package sbbackup

import (
	"context"
	"errors"
	"fmt"
	"log"

	"github.com/function61/gokit/logex"
	"github.com/function61/ssmbackup/pkg/sbconfig"
	"github.com/function61/ssmbackup/pkg/sbremote"
	"github.com/function61/ssmbackup/pkg/sbstorage"
	"github.com/function61/ssmbackup/pkg/sbtypes"
	"github.com/jonboulle/clockwork"
)

type Job struct {
	conf       sbconfig.Config
	dispatcher sbremote.Dispatcher
	storage    sbstorage.Storage
	clock      clockwork.Clock
	logger     *log.Logger
	logl       *logex.Leveled
}

func New(
	conf sbconfig.Config,
	dispatcher sbremote.Dispatcher,
	storage sbstorage.Storage,
	clock clockwork.Clock,
	logger *log.Logger,
) *Job {
	return &Job{
		conf:       conf,
		dispatcher: dispatcher,
		storage:    storage,
		clock:      clock,
		logger:     logger,
		logl:       logex.Levels(logger),
	}
}

// SSM for dispatch, S3 for storage, wall clock
func NewFromConfig(conf sbconfig.Config, logger *log.Logger) (*Job, error) {
	dispatcher, err := sbremote.NewSSMDispatcher(conf.Command, logex.Prefix("ssm", logger))
	if err != nil {
		return nil, err
	}

	storage, err := sbstorage.StorageFromConfig(conf.Storage, logex.Prefix("s3", logger))
	if err != nil {
		return nil, err
	}

	return New(conf, dispatcher, storage, clockwork.NewRealClock(), logger), nil
}

// takes the backup from instance. errors are *Error
func (j *Job) Run(ctx context.Context, instanceId string) (*sbtypes.Artifact, error) {
	req := sbtypes.BackupRequest{
		InstanceId: instanceId,
		SourcePath: j.conf.SourcePath,
		Bucket:     j.conf.Bucket(),
	}

	if sbremote.HasShellMetacharacters(req.SourcePath) {
		j.logl.Info.Printf("WARNING: source path %q contains shell metacharacters and is passed to the remote shell unescaped", req.SourcePath)
	}

	j.logl.Info.Printf("starting (%s from %s)", req.SourcePath, req.InstanceId)

	startedAt := j.clock.Now()

	commandId, err := j.dispatcher.Send(ctx, req.InstanceId, sbremote.ReadFileCommand(req.SourcePath))
	if err != nil {
		return nil, newError(DispatchFailed, err)
	}

	status, err := sbremote.WaitUntilDone(
		ctx,
		j.dispatcher,
		commandId,
		req.InstanceId,
		sbremote.PollOptionsFromConfig(j.conf.Command),
		j.clock,
		j.logger)
	if err != nil {
		if errors.Is(err, sbremote.ErrTimeout) || errors.Is(err, context.DeadlineExceeded) {
			return nil, newError(Timeout, err)
		}

		return nil, newError(DispatchFailed, err)
	}

	j.logl.Debug.Printf("command %s reached %s in %s", commandId, status, j.clock.Since(startedAt))

	invocation, err := j.dispatcher.Invocation(ctx, commandId, req.InstanceId)
	if err != nil {
		return nil, newError(DispatchFailed, err)
	}

	if invocation.Status != sbtypes.StatusSuccess {
		return nil, &Error{
			Kind:   RemoteExecFailed,
			Stderr: invocation.Stderr,
			Err:    fmt.Errorf("status %s", invocation.Status),
		}
	}

	artifact := sbtypes.NewArtifact(req.Bucket, j.clock.Now(), invocation.Stdout)

	if err := j.storage.Put(ctx, artifact); err != nil {
		return nil, newError(StoreFailed, err)
	}

	return &artifact, nil
}

// the outermost boundary: INSTANCE_ID from ENV, every failure flattened into a 500
func (j *Job) Handle(ctx context.Context) sbtypes.JobResult {
	instanceId, err := sbconfig.InstanceIdFromEnv()
	if err != nil {
		return Result(nil, j.conf.SourcePath, newError(ConfigMissing, err), j.logger)
	}

	artifact, err := j.Run(ctx, instanceId)

	return Result(artifact, j.conf.SourcePath, err, j.logger)
}

// renders the outcome of Run() as JobResult and logs it
func Result(artifact *sbtypes.Artifact, sourcePath string, err error, logger *log.Logger) sbtypes.JobResult {
	logl := logex.Levels(logger)

	if err != nil {
		logl.Error.Printf("Error: %v", err)

		return sbtypes.Failed(err)
	}

	message := fmt.Sprintf("Successfully backed up %s to %s", sourcePath, artifact.Url())

	logl.Info.Println(message)

	return sbtypes.Succeeded(message)
}

// for failures that happen before we have a Job, e.g. unreadable config
func ConfigFailure(err error, logger *log.Logger) sbtypes.JobResult {
	return Result(nil, "", newError(ConfigMissing, err), logger)
}
