package main

import (
	"context"
	"fmt"
	"io"
	"os"

	"github.com/dustin/go-humanize"
	"github.com/function61/gokit/logex"
	"github.com/function61/gokit/ossignal"
	"github.com/function61/ssmbackup/pkg/sbconfig"
	"github.com/function61/ssmbackup/pkg/sbstorage"
	"github.com/spf13/cobra"
)

func storageEntry() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "storage",
		Short: "Storage related commands",
	}

	cmd.AddCommand(&cobra.Command{
		Use:   "get [id]",
		Short: "Get backup from storage",
		Args:  cobra.ExactArgs(1),
		Run: func(cmd *cobra.Command, args []string) {
			storage, err := storageFromConfig()
			exitIfError(err)

			exitIfError(getBackup(
				ossignal.InterruptOrTerminateBackgroundCtx(logex.StandardLogger()),
				storage,
				args[0],
				os.Stdout))
		},
	})

	cmd.AddCommand(&cobra.Command{
		Use:   "ls",
		Short: "List backups in storage",
		Args:  cobra.NoArgs,
		Run: func(cmd *cobra.Command, args []string) {
			storage, err := storageFromConfig()
			exitIfError(err)

			exitIfError(listBackups(
				ossignal.InterruptOrTerminateBackgroundCtx(logex.StandardLogger()),
				storage,
				os.Stdout))
		},
	})

	return cmd
}

func getBackup(ctx context.Context, storage sbstorage.Storage, id string, output io.Writer) error {
	body, err := storage.Get(ctx, id)
	if err != nil {
		return err
	}
	defer body.Close()

	_, err = io.Copy(output, body)
	return err
}

func listBackups(ctx context.Context, storage sbstorage.Storage, output io.Writer) error {
	backups, err := storage.List(ctx)
	if err != nil {
		return err
	}

	for _, backup := range backups {
		if _, err := fmt.Fprintf(output, "%s\t%s\n", backup.ID, humanize.Bytes(uint64(backup.Size))); err != nil {
			return err
		}
	}

	return nil
}

func storageFromConfig() (sbstorage.Storage, error) {
	conf, err := sbconfig.ReadFromEnvOrFile()
	if err != nil {
		return nil, err
	}

	return sbstorage.StorageFromConfig(conf.Storage, logex.StandardLogger())
}
