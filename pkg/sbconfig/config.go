package sbconfig

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"

	"github.com/function61/gokit/envvar"
	"github.com/function61/gokit/jsonfile"
)

const (
	ConfigEnvKey     = "SSMBACKUP_CONF"
	ConfigFilename   = "config.json"
	InstanceIdEnvKey = "INSTANCE_ID"
)

const (
	DefaultDocumentName       = "AWS-RunShellScript"
	DefaultCloudWatchLogGroup = "/aws/ssm/AWS-RunShellScript"
	DefaultPollDelaySeconds   = 5
	DefaultPollMaxAttempts    = 12
)

type Config struct {
	SourcePath string        `json:"source_path"`
	Command    CommandConfig `json:"command"`
	Storage    StorageConfig `json:"storage"`
}

type CommandConfig struct {
	Region                  string `json:"region,omitempty"`
	DocumentName            string `json:"document_name,omitempty"`
	CloudWatchLogGroup      string `json:"cloudwatch_log_group,omitempty"`
	DisableCloudWatchOutput bool   `json:"disable_cloudwatch_output,omitempty"`
	PollDelaySeconds        int    `json:"poll_delay_seconds,omitempty"`
	PollMaxAttempts         int    `json:"poll_max_attempts,omitempty"`
}

func (c CommandConfig) PollDelay() time.Duration {
	return time.Duration(c.PollDelaySeconds) * time.Second
}

type StorageConfig struct {
	S3 *StorageS3Config `json:"s3"`
}

type StorageS3Config struct {
	Bucket       string `json:"bucket"`
	BucketRegion string `json:"bucket_region,omitempty"`
	// leave empty to use the credentials the environment gives us (Lambda execution role etc.)
	AccessKeyId     string `json:"access_key_id,omitempty"`
	AccessKeySecret string `json:"access_key_secret,omitempty"`
}

func (c *Config) Bucket() string {
	if c.Storage.S3 == nil {
		return ""
	}

	return c.Storage.S3.Bucket
}

func (c *Config) Validate() error {
	if c.SourcePath == "" {
		return errors.New("source_path not set")
	}

	if !filepath.IsAbs(c.SourcePath) {
		return fmt.Errorf("source_path must be absolute; got %s", c.SourcePath)
	}

	if c.Storage.S3 == nil {
		return errors.New("S3 config not set")
	}

	if c.Storage.S3.Bucket == "" {
		return errors.New("storage.s3.bucket not set")
	}

	if (c.Storage.S3.AccessKeyId == "") != (c.Storage.S3.AccessKeySecret == "") {
		return errors.New("set both of access_key_id and access_key_secret, or neither")
	}

	if c.Command.PollDelaySeconds < 0 || c.Command.PollMaxAttempts < 0 {
		return errors.New("poll settings cannot be negative")
	}

	return nil
}

func (c *Config) applyDefaults() {
	if c.Command.DocumentName == "" {
		c.Command.DocumentName = DefaultDocumentName
	}

	if c.Command.CloudWatchLogGroup == "" && !c.Command.DisableCloudWatchOutput {
		c.Command.CloudWatchLogGroup = DefaultCloudWatchLogGroup
	}

	if c.Command.PollDelaySeconds == 0 {
		c.Command.PollDelaySeconds = DefaultPollDelaySeconds
	}

	if c.Command.PollMaxAttempts == 0 {
		c.Command.PollMaxAttempts = DefaultPollMaxAttempts
	}
}

// parses, applies defaults and validates
func Parse(input io.Reader) (*Config, error) {
	conf := &Config{}
	if err := jsonfile.Unmarshal(input, conf, true); err != nil {
		return nil, err
	}

	conf.applyDefaults()

	if err := conf.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	return conf, nil
}

// prefers base64-encoded JSON in ENV (convenient in Lambda), falls back to config.json
func ReadFromEnvOrFile() (*Config, error) {
	return readFromEnvOrFile(ConfigEnvKey, ConfigFilename)
}

func readFromEnvOrFile(envKey string, path string) (*Config, error) {
	confFromEnv, err := envvar.RequiredFromBase64Encoded(envKey)
	if err == nil {
		return Parse(bytes.NewReader(confFromEnv))
	}

	file, err := os.Open(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("no config: set %s or create %s", envKey, path)
		}

		return nil, err
	}
	defer file.Close()

	return Parse(file)
}

// the target instance changes per deployment, so it lives in ENV instead of the config
func InstanceIdFromEnv() (string, error) {
	instanceId, err := envvar.Required(InstanceIdEnvKey)
	if err != nil {
		return "", fmt.Errorf("target instance not configured (%s): %w", InstanceIdEnvKey, err)
	}

	return instanceId, nil
}
