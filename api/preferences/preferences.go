// Package preferences is the HTTP resource for the single app-wide
// preference the core owns: which course is currently selected on the
// dashboard.
package preferences

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/rollcall/server/api/common"
	"github.com/rollcall/server/database"
	"github.com/rollcall/server/models"
)

// Store is the persistence surface this resource needs from database.Store.
type Store interface {
	GetPreference(ctx context.Context, key string) (string, error)
	SetPreference(ctx context.Context, key, value string) error
	GetCourse(ctx context.Context, courseID string) (*models.Course, error)
}

// Resource is the preferences HTTP resource.
type Resource struct {
	store Store
}

// NewResource builds a preferences Resource.
func NewResource(store Store) *Resource {
	return &Resource{store: store}
}

// Router returns a configured router mounted at /preferences.
func (rs *Resource) Router() chi.Router {
	r := chi.NewRouter()
	r.Get("/", rs.get)
	r.Post("/", rs.set)
	return r
}

// currentCourseResponse is the wire shape of both GET and POST /preferences.
type currentCourseResponse struct {
	CurrentCourseID *string `json:"current_course_id"`
}

func (rs *Resource) get(w http.ResponseWriter, r *http.Request) {
	courseID, err := rs.currentCourseID(r.Context())
	if err != nil {
		common.RenderError(w, r, common.ErrorInternal(err))
		return
	}
	common.JSON(w, r, http.StatusOK, currentCourseResponse{CurrentCourseID: courseID})
}

// currentCourseID reads the stored current_course_id, enforcing the
// invariant that a non-empty value must name an existing course. If the
// course has since been deleted, the preference resets to empty.
func (rs *Resource) currentCourseID(ctx context.Context) (*string, error) {
	value, err := rs.store.GetPreference(ctx, models.CurrentCourseIDKey)
	if err != nil {
		return nil, err
	}
	if value == "" {
		return nil, nil
	}

	if _, err := rs.store.GetCourse(ctx, value); err != nil {
		if errors.Is(err, database.ErrCourseNotFound) {
			if err := rs.store.SetPreference(ctx, models.CurrentCourseIDKey, ""); err != nil {
				return nil, err
			}
			return nil, nil
		}
		return nil, err
	}
	return &value, nil
}

func (rs *Resource) set(w http.ResponseWriter, r *http.Request) {
	var body struct {
		CurrentCourseID string `json:"current_course_id"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		common.RenderError(w, r, common.ErrorBadRequest(errors.New("malformed request body")))
		return
	}
	if body.CurrentCourseID == "" {
		common.RenderError(w, r, common.ErrorBadRequest(errors.New("current_course_id is required")))
		return
	}

	if _, err := rs.store.GetCourse(r.Context(), body.CurrentCourseID); err != nil {
		if errors.Is(err, database.ErrCourseNotFound) {
			common.RenderError(w, r, common.ErrorNotFound(err))
			return
		}
		common.RenderError(w, r, common.ErrorInternal(err))
		return
	}

	if err := rs.store.SetPreference(r.Context(), models.CurrentCourseIDKey, body.CurrentCourseID); err != nil {
		common.RenderError(w, r, common.ErrorInternal(err))
		return
	}
	common.JSON(w, r, http.StatusOK, currentCourseResponse{CurrentCourseID: &body.CurrentCourseID})
}
