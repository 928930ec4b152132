package database

import "errors"

// Sentinel errors returned by Store operations. Callers match these with
// errors.Is; each HTTP resource translates them to status codes in its own
// switch over errors.Is.
var (
	ErrCourseNotFound     = errors.New("course not found")
	ErrDuplicateName      = errors.New("a course with this name already exists")
	ErrInvalidDraft       = errors.New("invalid course draft")
	ErrDuplicateStudent   = errors.New("student already recorded for this course today")
	ErrDuplicateDevice    = errors.New("device already submitted for this course today")
	ErrStorageUnavailable = errors.New("storage unavailable")
)

// DuplicateNameError reports a name collision, with an optional "did you
// mean" suggestion naming the closest existing course by Levenshtein
// distance (empty when nothing is close enough to be a plausible typo).
type DuplicateNameError struct {
	Attempted  string
	Suggestion string
}

func (e *DuplicateNameError) Error() string {
	if e.Suggestion == "" {
		return ErrDuplicateName.Error()
	}
	return ErrDuplicateName.Error() + "; did you mean \"" + e.Suggestion + "\"?"
}

func (e *DuplicateNameError) Unwrap() error {
	return ErrDuplicateName
}

// StoreError wraps a Store operation failure with the operation name, so
// logs can tell "create_course failed" from "record_attendance failed"
// without parsing the message.
type StoreError struct {
	Op  string
	Err error
}

// Error implements the error interface.
func (e *StoreError) Error() string {
	if e.Err == nil {
		return "store error during " + e.Op
	}
	return "store error during " + e.Op + ": " + e.Err.Error()
}

// Unwrap allows errors.Is/errors.As to see through to Err.
func (e *StoreError) Unwrap() error {
	return e.Err
}
