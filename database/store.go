package database

import (
	"context"
	"database/sql"
	"errors"
	"sort"
	"time"

	"github.com/agnivade/levenshtein"
	"github.com/google/uuid"
	"github.com/rollcall/server/clock"
	"github.com/rollcall/server/database/repositories"
	"github.com/rollcall/server/models"
	"github.com/rollcall/server/models/base"
	"github.com/uptrace/bun"
	"github.com/uptrace/bun/driver/pgdriver"
)

// nameSuggestionMaxDistance bounds how different an existing course name may
// be from a rejected draft name before it stops being offered as a "did you
// mean" suggestion on a DuplicateName conflict.
const nameSuggestionMaxDistance = 3

// suggestSimilarName finds the closest existing course name to attempted, by
// Levenshtein distance, for surfacing in a DuplicateName error. Returns ""
// when no name is close enough to be a plausible typo.
func (s *Store) suggestSimilarName(ctx context.Context, attempted string) string {
	summaries, err := s.ListCourses(ctx)
	if err != nil {
		return ""
	}

	best := ""
	bestDist := nameSuggestionMaxDistance + 1
	normalizedAttempt := models.NormalizedName(attempted)
	for _, c := range summaries {
		if models.NormalizedName(c.Name) == normalizedAttempt {
			continue
		}
		d := levenshtein.ComputeDistance(normalizedAttempt, models.NormalizedName(c.Name))
		if d < bestDist {
			bestDist = d
			best = c.Name
		}
	}
	if bestDist > nameSuggestionMaxDistance {
		return ""
	}
	return best
}

// Store is the C1 persistence component: durable, transactional storage for
// courses, attendance, device submissions, and preferences, with U1/U2
// enforced by storage-level unique indexes (see database/migrations).
type Store struct {
	db      *bun.DB
	courses *repositories.CourseRepository
}

// NewStore wraps a bun.DB connection as a Store.
func NewStore(db *bun.DB) *Store {
	return &Store{db: db, courses: repositories.NewCourseRepository(db)}
}

// CourseSummary is the projection returned by ListCourses.
type CourseSummary struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

// CodeState is the current confirmation code for a course, as stored.
type CodeState struct {
	Code      string
	ExpiresAt time.Time
}

// CreateCourse validates draft and inserts a new course with a freshly
// generated opaque id.
func (s *Store) CreateCourse(ctx context.Context, draft *models.CourseDraft) (*models.Course, error) {
	if err := draft.Validate(); err != nil {
		return nil, &StoreError{Op: "create_course", Err: errors.Join(ErrInvalidDraft, err)}
	}

	course := &models.Course{
		StringIDModel:  base.StringIDModel{ID: uuid.NewString()},
		Name:           draft.Name,
		PrimarySection: draft.PrimarySection,
		Sections:       draft.Sections,
		ProfessorName:  draft.ProfessorName,
		OfficeHours:    draft.OfficeHours,
		News:           draft.News,
		TotalStudents:  draft.TotalStudents,
		LogoPath:       draft.LogoPath,
	}

	if err := s.courses.Create(ctx, course); err != nil {
		if isUniqueViolation(unwrapDBErr(err)) {
			dup := &DuplicateNameError{Attempted: draft.Name, Suggestion: s.suggestSimilarName(ctx, draft.Name)}
			return nil, &StoreError{Op: "create_course", Err: dup}
		}
		return nil, &StoreError{Op: "create_course", Err: errors.Join(ErrStorageUnavailable, err)}
	}

	return course, nil
}

// GetCourse fetches a course by id.
func (s *Store) GetCourse(ctx context.Context, courseID string) (*models.Course, error) {
	course, err := s.courses.FindByID(ctx, courseID)
	if err != nil {
		return nil, s.translateSelectErr(ctx, "get_course", unwrapDBErr(err))
	}
	return course, nil
}

// ListCourses returns every course's {id, name}, ordered by name ascending.
func (s *Store) ListCourses(ctx context.Context) ([]CourseSummary, error) {
	var courses []models.Course
	err := s.db.NewSelect().Model(&courses).Column("id", "name").Order("name ASC").Scan(ctx)
	if err != nil {
		return nil, &StoreError{Op: "list_courses", Err: errors.Join(ErrStorageUnavailable, err)}
	}

	out := make([]CourseSummary, len(courses))
	for i, c := range courses {
		out[i] = CourseSummary{ID: c.ID, Name: c.Name}
	}
	// Belt-and-suspenders: Postgres collation should already sort this, but
	// keep the ordering invariant explicit rather than relying on it.
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out, nil
}

// ListCoursesFull returns every course in full, ordered by name ascending,
// for the GET /courses listing (the API's list contract is the full course
// object, unlike ListCourses' {id, name} projection used elsewhere).
func (s *Store) ListCoursesFull(ctx context.Context) ([]models.Course, error) {
	var courses []models.Course
	if err := s.db.NewSelect().Model(&courses).Order("name ASC").Scan(ctx); err != nil {
		return nil, &StoreError{Op: "list_courses_full", Err: errors.Join(ErrStorageUnavailable, err)}
	}
	return courses, nil
}

// UpdateCourse replaces a course's mutable attributes with draft's.
func (s *Store) UpdateCourse(ctx context.Context, courseID string, draft *models.CourseDraft) (*models.Course, error) {
	if err := draft.Validate(); err != nil {
		return nil, &StoreError{Op: "update_course", Err: errors.Join(ErrInvalidDraft, err)}
	}

	existing, err := s.GetCourse(ctx, courseID)
	if err != nil {
		return nil, err
	}

	existing.Name = draft.Name
	existing.PrimarySection = draft.PrimarySection
	existing.Sections = draft.Sections
	existing.ProfessorName = draft.ProfessorName
	existing.OfficeHours = draft.OfficeHours
	existing.News = draft.News
	existing.TotalStudents = draft.TotalStudents
	existing.LogoPath = draft.LogoPath
	existing.UpdatedAt = time.Now().UTC()

	_, err = s.db.NewUpdate().Model(existing).WherePK().Exec(ctx)
	if err != nil {
		if isUniqueViolation(err) {
			dup := &DuplicateNameError{Attempted: draft.Name, Suggestion: s.suggestSimilarName(ctx, draft.Name)}
			return nil, &StoreError{Op: "update_course", Err: dup}
		}
		return nil, &StoreError{Op: "update_course", Err: errors.Join(ErrStorageUnavailable, err)}
	}

	return existing, nil
}

// DeleteCourse removes a course and cascades to its attendance and device
// rows; it also clears the current_course_id preference if it pointed at
// this course (Open Question 4: no auto-selection of a replacement).
func (s *Store) DeleteCourse(ctx context.Context, courseID string) error {
	return s.db.RunInTx(ctx, nil, func(ctx context.Context, tx bun.Tx) error {
		res, err := tx.NewDelete().Model((*models.Course)(nil)).Where("id = ?", courseID).Exec(ctx)
		if err != nil {
			return &StoreError{Op: "delete_course", Err: errors.Join(ErrStorageUnavailable, err)}
		}
		if n, _ := res.RowsAffected(); n == 0 {
			return &StoreError{Op: "delete_course", Err: ErrCourseNotFound}
		}

		if _, err := tx.NewDelete().Model((*models.AttendanceRecord)(nil)).Where("course_id = ?", courseID).Exec(ctx); err != nil {
			return &StoreError{Op: "delete_course", Err: errors.Join(ErrStorageUnavailable, err)}
		}
		if _, err := tx.NewDelete().Model((*models.DeviceSubmission)(nil)).Where("course_id = ?", courseID).Exec(ctx); err != nil {
			return &StoreError{Op: "delete_course", Err: errors.Join(ErrStorageUnavailable, err)}
		}

		pref := new(models.Preference)
		err = tx.NewSelect().Model(pref).Where("key = ?", models.CurrentCourseIDKey).Scan(ctx)
		if err == nil && pref.Value == courseID {
			if _, err := tx.NewUpdate().Model((*models.Preference)(nil)).
				Set("value = ?", "").
				Set("updated_at = ?", time.Now().UTC()).
				Where("key = ?", models.CurrentCourseIDKey).
				Exec(ctx); err != nil {
				return &StoreError{Op: "delete_course", Err: errors.Join(ErrStorageUnavailable, err)}
			}
		}

		return nil
	})
}

// RecordAttendance commits a new AttendanceRecord and matching
// DeviceSubmission atomically, enforcing U1 (student/day) and U2
// (device/day) as unique-index violations surfaced as typed errors.
func (s *Store) RecordAttendance(ctx context.Context, courseID, studentName, studentID string, now time.Time, peerAddr string, loc *time.Location) (*models.AttendanceRecord, error) {
	date := dateOnly(now, loc)

	record := &models.AttendanceRecord{
		CourseID:       courseID,
		StudentName:    studentName,
		StudentID:      studentID,
		Timestamp:      now,
		AttendanceDate: date,
	}
	submission := &models.DeviceSubmission{
		CourseID:       courseID,
		IPAddress:      peerAddr,
		Timestamp:      now,
		SubmissionDate: date,
	}

	err := s.db.RunInTx(ctx, nil, func(ctx context.Context, tx bun.Tx) error {
		var exists int
		if err := tx.NewSelect().Model((*models.Course)(nil)).Where("id = ?", courseID).ColumnExpr("1").Scan(ctx, &exists); err != nil {
			return &StoreError{Op: "record_attendance", Err: ErrCourseNotFound}
		}

		if _, err := tx.NewInsert().Model(record).Exec(ctx); err != nil {
			if isUniqueViolation(err) {
				return &StoreError{Op: "record_attendance", Err: ErrDuplicateStudent}
			}
			return &StoreError{Op: "record_attendance", Err: errors.Join(ErrStorageUnavailable, err)}
		}

		if _, err := tx.NewInsert().Model(submission).Exec(ctx); err != nil {
			if isUniqueViolation(err) {
				return &StoreError{Op: "record_attendance", Err: ErrDuplicateDevice}
			}
			return &StoreError{Op: "record_attendance", Err: errors.Join(ErrStorageUnavailable, err)}
		}

		return nil
	})
	if err != nil {
		return nil, err
	}

	return record, nil
}

// PresentCount returns the number of AttendanceRecord rows for courseID on
// date (already reduced to a calendar day by the caller).
func (s *Store) PresentCount(ctx context.Context, courseID string, date time.Time) (int, error) {
	var exists int
	if err := s.db.NewSelect().Model((*models.Course)(nil)).Where("id = ?", courseID).ColumnExpr("1").Scan(ctx, &exists); err != nil {
		return 0, &StoreError{Op: "present_count", Err: ErrCourseNotFound}
	}

	count, err := s.db.NewSelect().
		Model((*models.AttendanceRecord)(nil)).
		Where("course_id = ?", courseID).
		Where("attendance_date = ?", date).
		Count(ctx)
	if err != nil {
		return 0, &StoreError{Op: "present_count", Err: errors.Join(ErrStorageUnavailable, err)}
	}
	return count, nil
}

// SetCurrentCode persists a freshly minted confirmation code for courseID.
func (s *Store) SetCurrentCode(ctx context.Context, courseID, code string, expiresAt time.Time) error {
	res, err := s.db.NewUpdate().Model((*models.Course)(nil)).
		Set("confirmation_code = ?", code).
		Set("confirmation_code_expires_at = ?", expiresAt).
		Where("id = ?", courseID).
		Exec(ctx)
	if err != nil {
		return &StoreError{Op: "set_current_code", Err: errors.Join(ErrStorageUnavailable, err)}
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return &StoreError{Op: "set_current_code", Err: ErrCourseNotFound}
	}
	return nil
}

// ReadCurrentCode returns the stored code for courseID, or nil if none is
// set. It does not evaluate expiry; that is the Code Engine's job.
func (s *Store) ReadCurrentCode(ctx context.Context, courseID string) (*CodeState, error) {
	course := new(models.Course)
	err := s.db.NewSelect().Model(course).
		Column("confirmation_code", "confirmation_code_expires_at").
		Where("id = ?", courseID).
		Scan(ctx)
	if err != nil {
		return nil, s.translateSelectErr(ctx, "read_current_code", err)
	}

	if course.ConfirmationCode == nil || course.ConfirmationCodeExpiresAt == nil {
		return nil, nil
	}

	return &CodeState{Code: *course.ConfirmationCode, ExpiresAt: *course.ConfirmationCodeExpiresAt}, nil
}

// ListAttendanceRecords returns every AttendanceRecord for courseID, ordered
// by timestamp ascending, for the CSV/XLSX roll export.
func (s *Store) ListAttendanceRecords(ctx context.Context, courseID string) ([]models.AttendanceRecord, error) {
	var exists int
	if err := s.db.NewSelect().Model((*models.Course)(nil)).Where("id = ?", courseID).ColumnExpr("1").Scan(ctx, &exists); err != nil {
		return nil, &StoreError{Op: "list_attendance_records", Err: ErrCourseNotFound}
	}

	var records []models.AttendanceRecord
	err := s.db.NewSelect().Model(&records).
		Where("course_id = ?", courseID).
		Order("timestamp ASC").
		Scan(ctx)
	if err != nil {
		return nil, &StoreError{Op: "list_attendance_records", Err: errors.Join(ErrStorageUnavailable, err)}
	}
	return records, nil
}

// ListCourseIDs returns every course id, used by the Code Engine's scheduled
// sweep to decide which courses need a proactive refresh.
func (s *Store) ListCourseIDs(ctx context.Context) ([]string, error) {
	var ids []string
	err := s.db.NewSelect().Model((*models.Course)(nil)).Column("id").Scan(ctx, &ids)
	if err != nil {
		return nil, &StoreError{Op: "list_course_ids", Err: errors.Join(ErrStorageUnavailable, err)}
	}
	return ids, nil
}

// GetPreference returns a preference value, or "" if unset.
func (s *Store) GetPreference(ctx context.Context, key string) (string, error) {
	pref := new(models.Preference)
	err := s.db.NewSelect().Model(pref).Where("key = ?", key).Scan(ctx)
	if errors.Is(err, sql.ErrNoRows) {
		return "", nil
	}
	if err != nil {
		return "", &StoreError{Op: "get_preference", Err: errors.Join(ErrStorageUnavailable, err)}
	}
	return pref.Value, nil
}

// SetPreference upserts a preference value.
func (s *Store) SetPreference(ctx context.Context, key, value string) error {
	pref := &models.Preference{Key: key, Value: value, UpdatedAt: time.Now().UTC()}
	_, err := s.db.NewInsert().Model(pref).
		On("CONFLICT (key) DO UPDATE").
		Set("value = EXCLUDED.value").
		Set("updated_at = EXCLUDED.updated_at").
		Exec(ctx)
	if err != nil {
		return &StoreError{Op: "set_preference", Err: errors.Join(ErrStorageUnavailable, err)}
	}
	return nil
}

func dateOnly(t time.Time, loc *time.Location) time.Time {
	if loc == nil {
		loc = time.UTC
	}
	return clock.Today(t, loc)
}

func (s *Store) translateSelectErr(_ context.Context, op string, err error) error {
	if errors.Is(err, sql.ErrNoRows) {
		return &StoreError{Op: op, Err: ErrCourseNotFound}
	}
	return &StoreError{Op: op, Err: errors.Join(ErrStorageUnavailable, err)}
}

// unwrapDBErr peels a *base.DatabaseError (from the generic repository) down
// to the underlying driver error so isUniqueViolation/sql.ErrNoRows checks
// work the same regardless of which layer produced the error.
func unwrapDBErr(err error) error {
	var dbErr *base.DatabaseError
	if errors.As(err, &dbErr) && dbErr.Err != nil {
		return dbErr.Err
	}
	return err
}

func isUniqueViolation(err error) bool {
	var pgErr pgdriver.Error
	if errors.As(err, &pgErr) {
		return pgErr.IntegrityViolation()
	}
	return false
}
