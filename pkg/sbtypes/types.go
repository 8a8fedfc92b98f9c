package sbtypes

import (
	"fmt"
	"net/http"
	"time"
)

const (
	artifactKeyFormat = "2006-01-02-15-04-05"
	artifactKeyPrefix = "backup-"
	artifactKeySuffix = ".txt"
)

type BackupRequest struct {
	InstanceId string
	SourcePath string
	Bucket     string
}

type InvocationStatus string

// mirrors SSM's command invocation statuses
const (
	StatusPending    InvocationStatus = "Pending"
	StatusInProgress InvocationStatus = "InProgress"
	StatusDelayed    InvocationStatus = "Delayed"
	StatusSuccess    InvocationStatus = "Success"
	StatusCancelled  InvocationStatus = "Cancelled"
	StatusTimedOut   InvocationStatus = "TimedOut"
	StatusFailed     InvocationStatus = "Failed"
	StatusCancelling InvocationStatus = "Cancelling"
)

func (s InvocationStatus) Terminal() bool {
	switch s {
	case StatusSuccess, StatusCancelled, StatusTimedOut, StatusFailed:
		return true
	default:
		return false
	}
}

type Invocation struct {
	CommandId     string
	InstanceId    string
	Status        InvocationStatus
	StatusDetails string
	Stdout        string
	Stderr        string
}

type Artifact struct {
	Bucket string
	Key    string
	Body   string
}

func NewArtifact(bucket string, ts time.Time, body string) Artifact {
	return Artifact{
		Bucket: bucket,
		Key:    ArtifactKey(ts),
		Body:   body,
	}
}

func (a Artifact) Url() string {
	return fmt.Sprintf("s3://%s/%s", a.Bucket, a.Key)
}

// "backup-2025-01-31-23-59-59.txt". second resolution, so two runs within the
// same second produce the same key
func ArtifactKey(ts time.Time) string {
	return artifactKeyPrefix + ts.UTC().Format(artifactKeyFormat) + artifactKeySuffix
}

func ArtifactKeyPrefix() string {
	return artifactKeyPrefix
}

func ParseArtifactKey(key string) (time.Time, error) {
	if len(key) != len(artifactKeyPrefix)+len(artifactKeyFormat)+len(artifactKeySuffix) {
		return time.Time{}, fmt.Errorf("not a backup key: %s", key)
	}

	if key[:len(artifactKeyPrefix)] != artifactKeyPrefix || key[len(key)-len(artifactKeySuffix):] != artifactKeySuffix {
		return time.Time{}, fmt.Errorf("not a backup key: %s", key)
	}

	return time.Parse(artifactKeyFormat, key[len(artifactKeyPrefix):len(key)-len(artifactKeySuffix)])
}

// the Lambda return shape
type JobResult struct {
	StatusCode int    `json:"statusCode"`
	Body       string `json:"body"`
}

func Succeeded(message string) JobResult {
	return JobResult{StatusCode: http.StatusOK, Body: message}
}

func Failed(err error) JobResult {
	return JobResult{StatusCode: http.StatusInternalServerError, Body: fmt.Sprintf("Error: %v", err)}
}

func (j JobResult) Ok() bool {
	return j.StatusCode == http.StatusOK
}
