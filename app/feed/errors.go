package feed

import (
	"errors"
	"fmt"
)

type ErrorKind string

const (
	KindInvalidCache  ErrorKind = "invalid existing cache"
	KindFetchFailed   ErrorKind = "fetch failed"
	KindParseFailed   ErrorKind = "parse failed"
	KindInvalidDate   ErrorKind = "invalid date"
	KindInvalidOutput ErrorKind = "invalid output"
	KindWriteFailed   ErrorKind = "write failed"
)

type SyncError struct {
	Kind ErrorKind
	Err  error
}

func (e *SyncError) Error() string {
	return fmt.Sprintf("%s: %v", e.Kind, e.Err)
}

func (e *SyncError) Unwrap() error {
	return e.Err
}

func NewSyncError(kind ErrorKind, err error) error {
	if err == nil {
		return nil
	}
	var se *SyncError
	if errors.As(err, &se) && se.Kind == kind {
		return err
	}
	return &SyncError{Kind: kind, Err: err}
}

func IsKind(err error, kind ErrorKind) bool {
	var se *SyncError
	return errors.As(err, &se) && se.Kind == kind
}
