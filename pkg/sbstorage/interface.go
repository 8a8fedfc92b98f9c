package sbstorage

import (
	"context"
	"io"
	"time"

	"github.com/function61/ssmbackup/pkg/sbtypes"
)

type StoredBackup struct {
	ID        string
	Timestamp time.Time
	Size      int64
}

type Storage interface {
	// overwrites an existing object with the same key
	Put(ctx context.Context, artifact sbtypes.Artifact) error
	// oldest first
	List(ctx context.Context) ([]StoredBackup, error)
	Get(ctx context.Context, id string) (io.ReadCloser, error)
}
