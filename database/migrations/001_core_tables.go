package migrations

import (
	"context"

	"github.com/uptrace/bun"
)

const (
	CoreTablesVersion     = "1.0.0"
	CoreTablesDescription = "Courses, attendance records, device submissions, and preferences"
)

func init() {
	registerMigration(&Migration{
		Version:     CoreTablesVersion,
		Description: CoreTablesDescription,
		Up:          coreTablesUp,
		Down:        coreTablesDown,
	})
}

// coreTablesUp creates the four tables the attendance kernel reads and
// writes, plus the unique indexes that enforce U1 (one submission per
// student per course per day) and U2 (one submission per device per course
// per day) and the case-insensitive uniqueness of a course's name.
func coreTablesUp(ctx context.Context, db *bun.DB) error {
	return db.RunInTx(ctx, nil, func(ctx context.Context, tx bun.Tx) error {
		if _, err := tx.ExecContext(ctx, `
			CREATE TABLE IF NOT EXISTS courses (
				id TEXT PRIMARY KEY,
				created_at TIMESTAMPTZ NOT NULL DEFAULT now(),
				updated_at TIMESTAMPTZ NOT NULL DEFAULT now(),
				name TEXT NOT NULL,
				primary_section TEXT NOT NULL,
				sections TEXT[] NOT NULL DEFAULT '{}',
				professor_name TEXT NOT NULL DEFAULT '',
				office_hours TEXT NOT NULL DEFAULT '',
				news TEXT NOT NULL DEFAULT '',
				total_students INTEGER NOT NULL DEFAULT 0,
				logo_path TEXT NOT NULL DEFAULT '',
				confirmation_code TEXT,
				confirmation_code_expires_at TIMESTAMPTZ
			)
		`); err != nil {
			return err
		}

		if _, err := tx.ExecContext(ctx, `
			CREATE UNIQUE INDEX IF NOT EXISTS courses_name_lower_idx ON courses (lower(name))
		`); err != nil {
			return err
		}

		if _, err := tx.ExecContext(ctx, `
			CREATE TABLE IF NOT EXISTS attendance_records (
				record_id BIGSERIAL PRIMARY KEY,
				course_id TEXT NOT NULL REFERENCES courses (id) ON DELETE CASCADE,
				student_name TEXT NOT NULL,
				student_id TEXT NOT NULL,
				timestamp TIMESTAMPTZ NOT NULL,
				attendance_date DATE NOT NULL
			)
		`); err != nil {
			return err
		}

		if _, err := tx.ExecContext(ctx, `
			CREATE UNIQUE INDEX IF NOT EXISTS attendance_records_course_student_date_idx
				ON attendance_records (course_id, student_id, attendance_date)
		`); err != nil {
			return err
		}

		if _, err := tx.ExecContext(ctx, `
			CREATE TABLE IF NOT EXISTS device_submissions (
				id BIGSERIAL PRIMARY KEY,
				course_id TEXT NOT NULL REFERENCES courses (id) ON DELETE CASCADE,
				ip_address TEXT NOT NULL,
				timestamp TIMESTAMPTZ NOT NULL,
				submission_date DATE NOT NULL
			)
		`); err != nil {
			return err
		}

		if _, err := tx.ExecContext(ctx, `
			CREATE UNIQUE INDEX IF NOT EXISTS device_submissions_course_ip_date_idx
				ON device_submissions (course_id, ip_address, submission_date)
		`); err != nil {
			return err
		}

		if _, err := tx.ExecContext(ctx, `
			CREATE TABLE IF NOT EXISTS preferences (
				key TEXT PRIMARY KEY,
				value TEXT NOT NULL DEFAULT '',
				updated_at TIMESTAMPTZ NOT NULL DEFAULT now()
			)
		`); err != nil {
			return err
		}

		return nil
	})
}

func coreTablesDown(ctx context.Context, db *bun.DB) error {
	_, err := db.ExecContext(ctx, `
		DROP TABLE IF EXISTS device_submissions CASCADE;
		DROP TABLE IF EXISTS attendance_records CASCADE;
		DROP TABLE IF EXISTS preferences CASCADE;
		DROP TABLE IF EXISTS courses CASCADE;
	`)
	return err
}
