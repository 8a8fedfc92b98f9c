package main

import (
	"context"
	"os"

	"github.com/function61/gokit/logex"
	"github.com/function61/ssmbackup/pkg/sbtypes"
)

func runningInLambda() bool {
	return os.Getenv("AWS_LAMBDA_FUNCTION_NAME") != ""
}

// the trigger's payload (CloudWatch Events / EventBridge schedule etc.) carries nothing we need.
// failures are reported in the result, not as Lambda errors, so the caller always gets
// {statusCode, body}
func lambdaHandler(ctx context.Context) (sbtypes.JobResult, error) {
	return runBackup(ctx, logex.StandardLogger()), nil
}
