// Package submission implements the attendance submission pipeline (C4): it
// validates an incoming attendance payload against course existence, code
// freshness, and the per-student-day / per-device-day uniqueness invariants,
// then commits through the store and notifies the presence bus.
package submission

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/rollcall/server/database"
	"github.com/rollcall/server/models"
	"github.com/rollcall/server/services/codeengine"
)

// Kind is the stable, machine-checkable outcome of a rejected submission.
type Kind string

const (
	CourseMissing      Kind = "course_missing"
	FieldMissing       Kind = "field_missing"
	InvalidCode        Kind = "invalid_code"
	ExpiredCode        Kind = "expired_code"
	DuplicateStudent   Kind = "duplicate_student"
	DuplicateDevice    Kind = "duplicate_device"
	StorageUnavailable Kind = "storage_unavailable"
)

// RejectedError reports why a submission did not commit.
type RejectedError struct {
	Kind Kind
	Err  error
}

func (e *RejectedError) Error() string {
	if e.Err != nil {
		return string(e.Kind) + ": " + e.Err.Error()
	}
	return string(e.Kind)
}

func (e *RejectedError) Unwrap() error { return e.Err }

// Accepted is the result of a committed submission.
type Accepted struct {
	StudentName  string
	PresentCount int
}

// Store is the persistence surface the pipeline needs from database.Store.
type Store interface {
	RecordAttendance(ctx context.Context, courseID, studentName, studentID string, now time.Time, peerAddr string, loc *time.Location) (*models.AttendanceRecord, error)
	PresentCount(ctx context.Context, courseID string, date time.Time) (int, error)
}

// Validator is the subset of the Code Engine the pipeline needs.
type Validator interface {
	Validate(ctx context.Context, courseID, submittedCode string, now time.Time) (codeengine.Result, error)
}

// Broadcaster is the subset of the presence bus the pipeline needs.
type Broadcaster interface {
	Broadcast(courseID string, presentCount int)
}

// Pipeline is the C4 component.
type Pipeline struct {
	store     Store
	validator Validator
	bus       Broadcaster
	loc       *time.Location
}

// New builds a submission Pipeline. loc is the timezone both U1's
// attendance_date and U2's submission_date are derived in (Open Question 2).
func New(store Store, validator Validator, bus Broadcaster, loc *time.Location) *Pipeline {
	return &Pipeline{store: store, validator: validator, bus: bus, loc: loc}
}

// Submit runs the ordered check sequence against a candidate submission and,
// on success, commits it and notifies every live subscriber of courseID.
//
// Ordering (stable, depended on by tests): field presence, then code
// validity/freshness, then the store's own uniqueness checks (student, then
// device) as part of the same transactional insert.
func (p *Pipeline) Submit(ctx context.Context, courseID, studentName, studentID, submittedCode, peerAddr string, now time.Time) (*Accepted, error) {
	studentName = strings.TrimSpace(studentName)
	studentID = strings.TrimSpace(studentID)
	submittedCode = strings.TrimSpace(submittedCode)

	if courseID == "" {
		return nil, &RejectedError{Kind: CourseMissing}
	}
	if studentName == "" || studentID == "" || submittedCode == "" {
		return nil, &RejectedError{Kind: FieldMissing}
	}

	result, err := p.validator.Validate(ctx, courseID, submittedCode, now)
	if err != nil {
		return nil, &RejectedError{Kind: StorageUnavailable, Err: err}
	}

	switch result {
	case codeengine.CourseMissing:
		return nil, &RejectedError{Kind: CourseMissing}
	case codeengine.Expired:
		return nil, &RejectedError{Kind: ExpiredCode}
	case codeengine.Mismatch:
		return nil, &RejectedError{Kind: InvalidCode}
	}

	record, err := p.store.RecordAttendance(ctx, courseID, studentName, studentID, now, peerAddr, p.loc)
	if err != nil {
		return nil, translateStoreErr(err)
	}

	date := record.AttendanceDate
	count, err := p.store.PresentCount(ctx, courseID, date)
	if err != nil {
		// The record committed; a failed recount only degrades the live
		// broadcast, not the accepted submission.
		count = 0
	} else if p.bus != nil {
		p.bus.Broadcast(courseID, count)
	}

	return &Accepted{StudentName: studentName, PresentCount: count}, nil
}

func translateStoreErr(err error) error {
	switch {
	case errors.Is(err, database.ErrCourseNotFound):
		return &RejectedError{Kind: CourseMissing, Err: err}
	case errors.Is(err, database.ErrDuplicateStudent):
		return &RejectedError{Kind: DuplicateStudent, Err: err}
	case errors.Is(err, database.ErrDuplicateDevice):
		return &RejectedError{Kind: DuplicateDevice, Err: err}
	default:
		return &RejectedError{Kind: StorageUnavailable, Err: err}
	}
}
