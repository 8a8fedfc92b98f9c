package main

import (
	"context"
	"fmt"
	"log"
	"os"

	"github.com/aws/aws-lambda-go/lambda"
	"github.com/function61/gokit/dynversion"
	"github.com/function61/gokit/jsonfile"
	"github.com/function61/gokit/logex"
	"github.com/function61/gokit/ossignal"
	"github.com/function61/ssmbackup/pkg/sbbackup"
	"github.com/function61/ssmbackup/pkg/sbconfig"
	"github.com/function61/ssmbackup/pkg/sbtypes"
	"github.com/spf13/cobra"
)

func main() {
	if runningInLambda() {
		lambda.Start(lambdaHandler)
		return
	}

	app := &cobra.Command{
		Use:     os.Args[0],
		Short:   "Backs up a file from an EC2 instance to S3 via SSM",
		Version: dynversion.Version,
	}

	app.AddCommand(&cobra.Command{
		Use:   "now",
		Short: "Takes a backup now (instance from $" + sbconfig.InstanceIdEnvKey + ")",
		Args:  cobra.NoArgs,
		Run: func(cmd *cobra.Command, args []string) {
			rootLogger := logex.StandardLogger()

			result := runBackup(
				ossignal.InterruptOrTerminateBackgroundCtx(logex.Prefix("main", rootLogger)),
				rootLogger)

			exitIfError(jsonfile.Marshal(os.Stdout, result))

			if !result.Ok() {
				os.Exit(1)
			}
		},
	})

	app.AddCommand(schedulerEntry())
	app.AddCommand(configEntry())
	app.AddCommand(storageEntry())

	exitIfError(app.Execute())
}

// one backup, start to finish. never errors: failures are in the result
func runBackup(ctx context.Context, logger *log.Logger) sbtypes.JobResult {
	logger = logex.Prefix("backup", logger)

	// before touching config or AWS: without a target there is nothing to do
	if _, err := sbconfig.InstanceIdFromEnv(); err != nil {
		return sbbackup.ConfigFailure(err, logger)
	}

	conf, err := sbconfig.ReadFromEnvOrFile()
	if err != nil {
		return sbbackup.ConfigFailure(err, logger)
	}

	job, err := sbbackup.NewFromConfig(*conf, logger)
	if err != nil {
		return sbbackup.ConfigFailure(err, logger)
	}

	return job.Handle(ctx)
}

func configEntry() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "config",
		Short: "Commands related to the configuration file",
	}

	cmd.AddCommand(configExampleEntry())
	cmd.AddCommand(configValidateEntry())

	return cmd
}

func configValidateEntry() *cobra.Command {
	return &cobra.Command{
		Use:   "validate",
		Short: "Validates your config file (from stdin)",
		Args:  cobra.NoArgs,
		Run: func(cmd *cobra.Command, args []string) {
			_, err := sbconfig.Parse(os.Stdin)
			exitIfError(err)
		},
	}
}

func configExampleEntry() *cobra.Command {
	kitchenSink := false

	cmd := &cobra.Command{
		Use:   "example",
		Short: "Shows you an example config file",
		Args:  cobra.NoArgs,
		Run: func(cmd *cobra.Command, args []string) {
			exitIfError(jsonfile.Marshal(os.Stdout, sbconfig.DefaultConfig(kitchenSink)))
		},
	}

	cmd.Flags().BoolVarP(&kitchenSink, "kitchensink", "", kitchenSink, "All the possible configuration option examples")

	return cmd
}

func exitIfError(err error) {
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
