// Package code is the HTTP resource exposing a course's current confirmation
// code to the dashboard.
package code

import (
	"context"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/rollcall/server/api/common"
	"github.com/rollcall/server/services/codeengine"
)

// Engine is the subset of the Code Engine this resource needs.
type Engine interface {
	Current(ctx context.Context, courseID string) (codeengine.Code, error)
}

// Resource is the confirmation-code HTTP resource.
type Resource struct {
	engine Engine
}

// NewResource builds a code Resource.
func NewResource(engine Engine) *Resource {
	return &Resource{engine: engine}
}

// Router returns a configured router mounted at /confirmation-code.
func (rs *Resource) Router() chi.Router {
	r := chi.NewRouter()
	r.Get("/{course_id}", rs.current)
	return r
}

// currentResponse is the wire shape for GET /confirmation-code/{course_id}.
type currentResponse struct {
	Code             string `json:"code"`
	ExpiresAt        string `json:"expires_at"`
	SecondsRemaining int    `json:"expires_in_seconds"`
}

func (rs *Resource) current(w http.ResponseWriter, r *http.Request) {
	courseID, ok := common.StringParam(w, r, "course_id", "course id is required")
	if !ok {
		return
	}

	c, err := rs.engine.Current(r.Context(), courseID)
	if err != nil {
		if errors.Is(err, codeengine.ErrCourseMissing) {
			common.RenderError(w, r, common.ErrorNotFound(err))
			return
		}
		common.RenderError(w, r, common.ErrorInternal(err))
		return
	}

	common.JSON(w, r, http.StatusOK, currentResponse{
		Code:             c.Code,
		ExpiresAt:        c.ExpiresAt.Format("2006-01-02T15:04:05Z07:00"),
		SecondsRemaining: c.SecondsRemaining,
	})
}
