package engine

import (
	"errors"
	"fmt"
)

// EngineError represents a failure on the engine's persistence or replay
// path, with a code callers can branch on.
type EngineError struct {
	// Code identifies the error category.
	Code ErrorCode

	// DocumentID identifies the affected document.
	DocumentID string

	// Message is a human-readable description.
	Message string

	// Err is the underlying cause, if any.
	Err error
}

// ErrorCode categorizes engine errors.
type ErrorCode string

const (
	// ErrCodePersistence indicates an operation-log write failed. The
	// operation was not applied in memory; the batch continued.
	ErrCodePersistence ErrorCode = "PERSISTENCE_FAILED"

	// ErrCodeReplay indicates a stored operation could not be decoded
	// during load. Fatal to opening that document.
	ErrCodeReplay ErrorCode = "REPLAY_FAILED"

	// ErrCodeSnapshot indicates snapshot compaction failed. Non-fatal;
	// live state is unaffected, only future cold-load cost.
	ErrCodeSnapshot ErrorCode = "SNAPSHOT_FAILED"
)

// Error implements the error interface.
func (e *EngineError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s (doc=%s): %v", e.Code, e.Message, e.DocumentID, e.Err)
	}
	return fmt.Sprintf("%s: %s (doc=%s)", e.Code, e.Message, e.DocumentID)
}

// Unwrap exposes the underlying cause for errors.Is/As.
func (e *EngineError) Unwrap() error {
	return e.Err
}

// IsReplayError reports whether err is a replay failure.
// Uses errors.As to handle wrapped errors.
func IsReplayError(err error) bool {
	var ee *EngineError
	if errors.As(err, &ee) {
		return ee.Code == ErrCodeReplay
	}
	return false
}

// IsSnapshotError reports whether err is a compaction failure.
func IsSnapshotError(err error) bool {
	var ee *EngineError
	if errors.As(err, &ee) {
		return ee.Code == ErrCodeSnapshot
	}
	return false
}

func newReplayError(documentID string, recordID int64, err error) *EngineError {
	return &EngineError{
		Code:       ErrCodeReplay,
		DocumentID: documentID,
		Message:    fmt.Sprintf("malformed stored operation (record %d)", recordID),
		Err:        err,
	}
}

func newSnapshotError(documentID string, err error) *EngineError {
	return &EngineError{
		Code:       ErrCodeSnapshot,
		DocumentID: documentID,
		Message:    "snapshot compaction failed",
		Err:        err,
	}
}
