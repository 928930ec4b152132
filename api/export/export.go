// Package export streams a course's attendance roll as CSV or XLSX.
package export

import (
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/xuri/excelize/v2"

	"github.com/rollcall/server/api/common"
	"github.com/rollcall/server/database"
	"github.com/rollcall/server/models"
)

// Store is the persistence surface this resource needs from database.Store.
type Store interface {
	GetCourse(ctx context.Context, courseID string) (*models.Course, error)
	ListAttendanceRecords(ctx context.Context, courseID string) ([]models.AttendanceRecord, error)
}

// Resource is the CSV/XLSX export HTTP resource.
type Resource struct {
	store Store
}

// NewResource builds an export Resource.
func NewResource(store Store) *Resource {
	return &Resource{store: store}
}

// Router returns a configured router, mounted under /courses inside the
// courses resource's router so /courses/{id}/export.csv and .xlsx read naturally.
func (rs *Resource) Router() chi.Router {
	r := chi.NewRouter()
	r.Get("/{id}/export.csv", rs.csv)
	r.Get("/{id}/export.xlsx", rs.xlsx)
	return r
}

var csvHeader = []string{"timestamp", "student_name", "student_id", "course_name", "course_id"}

func (rs *Resource) rows(w http.ResponseWriter, r *http.Request) (*models.Course, []models.AttendanceRecord, bool) {
	id, ok := common.StringParam(w, r, "id", "course id is required")
	if !ok {
		return nil, nil, false
	}

	course, err := rs.store.GetCourse(r.Context(), id)
	if err != nil {
		renderErr(w, r, err)
		return nil, nil, false
	}

	records, err := rs.store.ListAttendanceRecords(r.Context(), id)
	if err != nil {
		renderErr(w, r, err)
		return nil, nil, false
	}

	return course, records, true
}

func (rs *Resource) csv(w http.ResponseWriter, r *http.Request) {
	course, records, ok := rs.rows(w, r)
	if !ok {
		return
	}

	w.Header().Set("Content-Type", "text/csv; charset=utf-8")
	w.Header().Set("Content-Disposition", fmt.Sprintf(`attachment; filename="%s-attendance.csv"`, course.ID))
	w.WriteHeader(http.StatusOK)

	cw := csv.NewWriter(w)
	_ = cw.Write(csvHeader)
	for _, rec := range records {
		_ = cw.Write([]string{
			rec.Timestamp.Format("2006-01-02T15:04:05Z07:00"),
			rec.StudentName,
			rec.StudentID,
			course.Name,
			course.ID,
		})
	}
	cw.Flush()
}

func (rs *Resource) xlsx(w http.ResponseWriter, r *http.Request) {
	course, records, ok := rs.rows(w, r)
	if !ok {
		return
	}

	f := excelize.NewFile()
	defer f.Close()

	sheet := "Attendance"
	index, err := f.NewSheet(sheet)
	if err != nil {
		common.RenderError(w, r, common.ErrorInternal(err))
		return
	}
	f.DeleteSheet("Sheet1")
	f.SetActiveSheet(index)

	for col, h := range csvHeader {
		cell, _ := excelize.CoordinatesToCellName(col+1, 1)
		f.SetCellValue(sheet, cell, h)
	}

	for i, rec := range records {
		row := i + 2
		values := []interface{}{
			rec.Timestamp.Format("2006-01-02T15:04:05Z07:00"),
			rec.StudentName,
			rec.StudentID,
			course.Name,
			course.ID,
		}
		for col, v := range values {
			cell, _ := excelize.CoordinatesToCellName(col+1, row)
			f.SetCellValue(sheet, cell, v)
		}
	}

	w.Header().Set("Content-Type", "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
	w.Header().Set("Content-Disposition", fmt.Sprintf(`attachment; filename="%s-attendance.xlsx"`, course.ID))
	w.WriteHeader(http.StatusOK)

	// Headers are already flushed by now; a write error here just means the
	// client sees a truncated download.
	_ = f.Write(w)
}

func renderErr(w http.ResponseWriter, r *http.Request, err error) {
	var storeErr *database.StoreError
	if errors.As(err, &storeErr) {
		err = storeErr.Unwrap()
	}
	if errors.Is(err, database.ErrCourseNotFound) {
		common.RenderError(w, r, common.ErrorNotFound(err))
		return
	}
	common.RenderError(w, r, common.ErrorInternal(err))
}
