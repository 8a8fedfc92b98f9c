package sbconfig

import (
	"github.com/aws/aws-sdk-go/aws/endpoints"
)

func DefaultConfig(kitchenSink bool) *Config {
	conf := &Config{
		SourcePath: "/opt/backup/test_file.txt",
		Storage: StorageConfig{
			S3: &StorageS3Config{
				Bucket:       "mybucket",
				BucketRegion: endpoints.UsEast1RegionID,
			},
		},
	}

	if kitchenSink {
		conf.Command = CommandConfig{
			Region:             endpoints.UsEast1RegionID,
			DocumentName:       DefaultDocumentName,
			CloudWatchLogGroup: DefaultCloudWatchLogGroup,
			PollDelaySeconds:   DefaultPollDelaySeconds,
			PollMaxAttempts:    DefaultPollMaxAttempts,
		}

		conf.Storage.S3.AccessKeyId = "AKIAUZHTE3U35WCD5..."
		conf.Storage.S3.AccessKeySecret = "wXQJhB..."
	}

	return conf
}
