package export

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"github.com/rollcall/server/database"
	"github.com/rollcall/server/models"
)

type fakeStore struct {
	course  *models.Course
	records []models.AttendanceRecord
	err     error
}

func (f *fakeStore) GetCourse(_ context.Context, _ string) (*models.Course, error) {
	if f.err != nil {
		return nil, f.err
	}
	return f.course, nil
}

func (f *fakeStore) ListAttendanceRecords(_ context.Context, _ string) ([]models.AttendanceRecord, error) {
	return f.records, nil
}

func newCourse(id, name string) *models.Course {
	c := &models.Course{Name: name}
	c.ID = id
	return c
}

func TestExportCSV(t *testing.T) {
	store := &fakeStore{
		course: newCourse("course-1", "Algorithms"),
		records: []models.AttendanceRecord{
			{StudentName: "Ada", StudentID: "s1", Timestamp: time.Unix(1700000000, 0).UTC()},
		},
	}
	rs := NewResource(store)

	req := httptest.NewRequest(http.MethodGet, "/course-1/export.csv", nil)
	w := httptest.NewRecorder()
	rs.Router().ServeHTTP(w, req)

	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "text/csv; charset=utf-8", w.Header().Get("Content-Type"))
	assert.Contains(t, w.Body.String(), "Ada")
	assert.Contains(t, w.Body.String(), "Algorithms")
}

func TestExportCSVCourseNotFound(t *testing.T) {
	store := &fakeStore{err: &database.StoreError{Op: "get_course", Err: database.ErrCourseNotFound}}
	rs := NewResource(store)

	req := httptest.NewRequest(http.MethodGet, "/missing/export.csv", nil)
	w := httptest.NewRecorder()
	rs.Router().ServeHTTP(w, req)

	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestExportXLSX(t *testing.T) {
	store := &fakeStore{
		course: newCourse("course-1", "Algorithms"),
		records: []models.AttendanceRecord{
			{StudentName: "Ada", StudentID: "s1", Timestamp: time.Unix(1700000000, 0).UTC()},
		},
	}
	rs := NewResource(store)

	req := httptest.NewRequest(http.MethodGet, "/course-1/export.xlsx", nil)
	w := httptest.NewRecorder()
	rs.Router().ServeHTTP(w, req)

	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet", w.Header().Get("Content-Type"))

	f, err := excelize.OpenReader(w.Body)
	require.NoError(t, err)
	cell, err := f.GetCellValue("Attendance", "B2")
	require.NoError(t, err)
	assert.Equal(t, "Ada", cell)
}
