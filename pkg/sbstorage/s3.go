package sbstorage

import (
	"context"
	"fmt"
	"io"
	"log"
	"sort"
	"strings"

	"github.com/aws/aws-sdk-go/aws"
	"github.com/aws/aws-sdk-go/service/s3"
	"github.com/aws/aws-sdk-go/service/s3/s3iface"
	"github.com/function61/gokit/aws/s3facade"
	"github.com/function61/gokit/logex"
	"github.com/function61/ssmbackup/pkg/sbaws"
	"github.com/function61/ssmbackup/pkg/sbconfig"
	"github.com/function61/ssmbackup/pkg/sbtypes"
)

type s3BackupStorage struct {
	s3     s3iface.S3API
	bucket string
	logl   *logex.Leveled
}

func NewS3BackupStorage(s3conf sbconfig.StorageS3Config, logger *log.Logger) (Storage, error) {
	client, err := s3Client(s3conf)
	if err != nil {
		return nil, err
	}

	return newS3BackupStorage(client, s3conf.Bucket, logger), nil
}

// static keys only when configured. otherwise the same credential chain as SSM, so
// whatever lets us dispatch the command also lets us upload its output
func s3Client(s3conf sbconfig.StorageS3Config) (*s3.S3, error) {
	if s3conf.AccessKeyId != "" {
		return s3facade.Client(s3conf.AccessKeyId, s3conf.AccessKeySecret, s3conf.BucketRegion)
	}

	sess, err := sbaws.Session(s3conf.BucketRegion)
	if err != nil {
		return nil, err
	}

	return s3.New(sess), nil
}

func newS3BackupStorage(client s3iface.S3API, bucket string, logger *log.Logger) *s3BackupStorage {
	return &s3BackupStorage{client, bucket, logex.Levels(logger)}
}

func (s *s3BackupStorage) Put(ctx context.Context, artifact sbtypes.Artifact) error {
	if artifact.Bucket != "" && artifact.Bucket != s.bucket {
		return fmt.Errorf("artifact is for bucket %s but storage is for %s", artifact.Bucket, s.bucket)
	}

	if _, err := s.s3.PutObjectWithContext(ctx, &s3.PutObjectInput{
		Bucket:      aws.String(s.bucket),
		Key:         aws.String(artifact.Key),
		ContentType: aws.String("text/plain"),
		Body:        strings.NewReader(artifact.Body),
	}); err != nil {
		return err
	}

	s.logl.Debug.Printf("stored %s (%d bytes)", artifact.Key, len(artifact.Body))

	return nil
}

func (s *s3BackupStorage) Get(ctx context.Context, id string) (io.ReadCloser, error) {
	object, err := s.s3.GetObjectWithContext(ctx, &s3.GetObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(id),
	})
	if err != nil {
		return nil, err
	}

	return object.Body, nil
}

func (s *s3BackupStorage) List(ctx context.Context) ([]StoredBackup, error) {
	backups := []StoredBackup{}

	if err := s.s3.ListObjectsV2PagesWithContext(ctx, &s3.ListObjectsV2Input{
		Bucket: aws.String(s.bucket),
		Prefix: aws.String(sbtypes.ArtifactKeyPrefix()),
	}, func(page *s3.ListObjectsV2Output, _ bool) bool {
		for _, item := range page.Contents {
			key := aws.StringValue(item.Key)

			timestamp, err := sbtypes.ParseArtifactKey(key)
			if err != nil { // someone else's object with our prefix
				s.logl.Debug.Printf("skipping %s: %v", key, err)
				continue
			}

			backups = append(backups, StoredBackup{
				ID:        key,
				Timestamp: timestamp,
				Size:      aws.Int64Value(item.Size),
			})
		}

		return true
	}); err != nil {
		return nil, err
	}

	sort.Slice(backups, func(i, j int) bool { return backups[i].Timestamp.Before(backups[j].Timestamp) })

	return backups, nil
}
