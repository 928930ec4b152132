package models

import (
	"time"

	"github.com/uptrace/bun"
)

// AttendanceRecord is a single student's attendance for a course on a
// calendar day. Append-only: never mutated, only removed by a course
// deletion cascade.
type AttendanceRecord struct {
	bun.BaseModel `bun:"table:attendance_records,alias:attendance_record"`

	RecordID       int64     `bun:"record_id,pk,autoincrement" json:"record_id"`
	CourseID       string    `bun:"course_id,notnull" json:"course_id"`
	StudentName    string    `bun:"student_name,notnull" json:"student_name"`
	StudentID      string    `bun:"student_id,notnull" json:"student_id"`
	Timestamp      time.Time `bun:"timestamp,notnull" json:"timestamp"`
	AttendanceDate time.Time `bun:"attendance_date,notnull" json:"attendance_date"`
}

// GetID implements base.Entity.
func (a *AttendanceRecord) GetID() interface{} { return a.RecordID }

// GetCreatedAt implements base.Entity; attendance records have no separate
// created_at, so Timestamp stands in for it.
func (a *AttendanceRecord) GetCreatedAt() time.Time { return a.Timestamp }

// GetUpdatedAt implements base.Entity; records are append-only.
func (a *AttendanceRecord) GetUpdatedAt() time.Time { return a.Timestamp }

// TableName implements base.TableNamer.
func (a *AttendanceRecord) TableName() string { return "attendance_records" }

// DeviceSubmission records the submitting peer address for a single
// submission, used to enforce the per-(course, device, day) uniqueness
// invariant independent of the student-uniqueness invariant.
type DeviceSubmission struct {
	bun.BaseModel `bun:"table:device_submissions,alias:device_submission"`

	ID             int64     `bun:"id,pk,autoincrement" json:"id"`
	CourseID       string    `bun:"course_id,notnull" json:"course_id"`
	IPAddress      string    `bun:"ip_address,notnull" json:"ip_address"`
	Timestamp      time.Time `bun:"timestamp,notnull" json:"timestamp"`
	SubmissionDate time.Time `bun:"submission_date,notnull" json:"submission_date"`
}

// GetID implements base.Entity.
func (d *DeviceSubmission) GetID() interface{} { return d.ID }

// GetCreatedAt implements base.Entity.
func (d *DeviceSubmission) GetCreatedAt() time.Time { return d.Timestamp }

// GetUpdatedAt implements base.Entity.
func (d *DeviceSubmission) GetUpdatedAt() time.Time { return d.Timestamp }

// TableName implements base.TableNamer.
func (d *DeviceSubmission) TableName() string { return "device_submissions" }
