package sbbackup

import (
	"errors"
	"fmt"
)

type ErrorKind int

const (
	ConfigMissing ErrorKind = iota + 1
	DispatchFailed
	Timeout
	RemoteExecFailed
	StoreFailed
)

func (k ErrorKind) String() string {
	switch k {
	case ConfigMissing:
		return "config missing"
	case DispatchFailed:
		return "dispatch failed"
	case Timeout:
		return "timeout"
	case RemoteExecFailed:
		return "remote command failed"
	case StoreFailed:
		return "store failed"
	default:
		return fmt.Sprintf("unknown(%d)", int(k))
	}
}

type Error struct {
	Kind ErrorKind
	// captured stderr of the remote command. only for RemoteExecFailed
	Stderr string
	Err    error
}

func (e *Error) Error() string {
	if e.Kind == RemoteExecFailed {
		return fmt.Sprintf("%s: %v: %s", e.Kind, e.Err, e.Stderr)
	}

	return fmt.Sprintf("%s: %v", e.Kind, e.Err)
}

func (e *Error) Unwrap() error {
	return e.Err
}

// zero if err is not (or does not wrap) an *Error
func KindOf(err error) ErrorKind {
	var jobErr *Error
	if errors.As(err, &jobErr) {
		return jobErr.Kind
	}

	return 0
}

func newError(kind ErrorKind, err error) *Error {
	return &Error{Kind: kind, Err: err}
}
