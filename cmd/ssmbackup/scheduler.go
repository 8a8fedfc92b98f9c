package main

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/function61/gokit/dynversion"
	"github.com/function61/gokit/logex"
	"github.com/function61/gokit/ossignal"
	"github.com/function61/gokit/stopper"
	"github.com/function61/gokit/systemdinstaller"
	"github.com/function61/ssmbackup/pkg/sbtypes"
	"github.com/jonboulle/clockwork"
	"github.com/spf13/cobra"
)

type backupFn func(ctx context.Context, logger *log.Logger) sbtypes.JobResult

// for running outside of Lambda, where nobody triggers us
func runScheduler(
	ctx context.Context,
	backup backupFn,
	clock clockwork.Clock,
	logger *log.Logger,
	stop *stopper.Stopper,
) {
	defer stop.Done()
	logl := logex.Levels(logger)

	logl.Info.Println("started")
	defer logl.Info.Println("stopped")

	for {
		now := clock.Now()
		next := nextBackupTime(now)

		logl.Info.Printf("next backup will be at: %s", next.Format(time.RFC3339))

		select {
		case <-stop.Signal:
			return
		case <-clock.After(next.Sub(now)):
			logl.Info.Println("it's backup time!")

			if result := backup(ctx, logger); !result.Ok() {
				logl.Error.Printf("backup failed: %s", result.Body)
			} else {
				logl.Info.Println("backup succeeded :)")
			}
		}
	}
}

// 01:00 UTC of next day
func nextBackupTime(now time.Time) time.Time {
	now = now.UTC()

	return time.Date(
		now.Year(),
		now.Month(),
		now.Day()+1,
		1,
		0,
		0,
		0,
		time.UTC)
}

func schedulerEntry() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "scheduler",
		Short: "Scheduled backup related commands",
	}

	cmd.AddCommand(&cobra.Command{
		Use:   "run",
		Short: "Run a scheduler to periodically take backups",
		Args:  cobra.NoArgs,
		Run: func(cmd *cobra.Command, args []string) {
			rootLogger := logex.StandardLogger()
			logl := logex.Levels(logex.Prefix("main", rootLogger))

			workers := stopper.NewManager()

			go runScheduler(
				context.Background(),
				runBackup,
				clockwork.NewRealClock(),
				logex.Prefix("scheduler", rootLogger),
				workers.Stopper())

			logl.Info.Printf("Started %s", dynversion.Version)
			logl.Info.Printf("Got %s; stopping", <-ossignal.InterruptOrTerminate())

			workers.StopAllWorkersAndWait()
		},
	})

	cmd.AddCommand(&cobra.Command{
		Use:   "install-systemd-service-file",
		Short: "Install scheduled backups as a system service",
		Args:  cobra.NoArgs,
		Run: func(cmd *cobra.Command, args []string) {
			service := systemdinstaller.SystemdServiceFile(
				"ssmbackup",
				"SSM file backup",
				systemdinstaller.Args("scheduler", "run"))

			exitIfError(systemdinstaller.Install(service))

			fmt.Println(systemdinstaller.GetHints(service))
		},
	})

	return cmd
}
