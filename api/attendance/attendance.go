// Package attendance is the HTTP resource for student attendance submission.
package attendance

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/rollcall/server/api/common"
	appmiddleware "github.com/rollcall/server/middleware"
	"github.com/rollcall/server/services/submission"
)

// Pipeline is the subset of the submission pipeline this resource needs.
type Pipeline interface {
	Submit(ctx context.Context, courseID, studentName, studentID, submittedCode, peerAddr string, now time.Time) (*submission.Accepted, error)
}

// Clock supplies "now" for a submission's timestamp.
type Clock interface {
	Now() time.Time
}

// Resource is the attendance-submission HTTP resource.
type Resource struct {
	pipeline   Pipeline
	clock      Clock
	trustProxy bool
}

// NewResource builds an attendance Resource.
func NewResource(pipeline Pipeline, clk Clock, trustProxy bool) *Resource {
	return &Resource{pipeline: pipeline, clock: clk, trustProxy: trustProxy}
}

// Router returns a configured router mounted at /attendance.
func (rs *Resource) Router() chi.Router {
	r := chi.NewRouter()
	r.Post("/", rs.submit)
	return r
}

type submitRequest struct {
	CourseID    string `json:"courseId"`
	StudentName string `json:"studentName"`
	StudentID   string `json:"studentId"`
	Code        string `json:"code"`
}

type submitResponse struct {
	Message     string `json:"message"`
	StudentName string `json:"student_name"`
}

func (rs *Resource) submit(w http.ResponseWriter, r *http.Request) {
	var req submitRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		common.RenderError(w, r, common.ErrorBadRequest(errors.New("malformed request body")))
		return
	}

	peerAddr := appmiddleware.GetClientIP(r, rs.trustProxy)

	accepted, err := rs.pipeline.Submit(r.Context(), req.CourseID, req.StudentName, req.StudentID, req.Code, peerAddr, rs.clock.Now())
	if err != nil {
		renderRejection(w, r, err)
		return
	}

	common.JSON(w, r, http.StatusOK, submitResponse{
		Message:     "attendance recorded",
		StudentName: accepted.StudentName,
	})
}

func renderRejection(w http.ResponseWriter, r *http.Request, err error) {
	var rejected *submission.RejectedError
	if !errors.As(err, &rejected) {
		common.RenderError(w, r, common.ErrorInternal(err))
		return
	}

	switch rejected.Kind {
	case submission.CourseMissing:
		common.RenderError(w, r, common.ErrorNotFound(rejected))
	case submission.FieldMissing:
		common.RenderError(w, r, common.ErrorBadRequest(rejected))
	case submission.InvalidCode:
		common.RenderError(w, r, common.ErrorInvalidCode(rejected))
	case submission.ExpiredCode:
		common.RenderError(w, r, common.ErrorExpiredCode(rejected))
	case submission.DuplicateStudent, submission.DuplicateDevice:
		common.RenderError(w, r, common.ErrorConflict(rejected))
	default:
		common.RenderError(w, r, common.ErrorInternal(rejected))
	}
}
