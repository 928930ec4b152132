// Package courses is the HTTP resource for course CRUD.
package courses

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
	CreateCourse(ctx context.Context, draft *models.CourseDraft) (*models.Course, error)
	GetCourse(ctx context.Context, courseID string) (*models.Course, error)
	ListCoursesFull(ctx context.Context) ([]models.Course, error)
	UpdateCourse(ctx context.Context, courseID string, draft *models.CourseDraft) (*models.Course, error)
	DeleteCourse(ctx context.Context, courseID string) error
}

// Resource is the courses HTTP resource.
type Resource struct {
	store Store
}

// NewResource builds a courses Resource.
func NewResource(store Store) *Resource {
	return &Resource{store: store}
}

// Router returns a configured router for the courses endpoints.
func (rs *Resource) Router() chi.Router {
	r := chi.NewRouter()
	r.Get("/", rs.list)
	r.Post("/", rs.create)
	r.Get("/{id}", rs.get)
	r.Put("/{id}", rs.update)
	r.Delete("/{id}", rs.delete)
	return r
}

func (rs *Resource) list(w http.ResponseWriter, r *http.Request) {
	courses, err := rs.store.ListCoursesFull(r.Context())
	if err != nil {
		common.RenderError(w, r, common.ErrorInternal(err))
		return
	}
	common.JSON(w, r, http.StatusOK, courses)
}

func (rs *Resource) create(w http.ResponseWriter, r *http.Request) {
	draft, ok := decodeDraft(w, r)
	if !ok {
		return
	}

	course, err := rs.store.CreateCourse(r.Context(), draft)
	if err != nil {
		renderStoreErr(w, r, err)
		return
	}
	common.JSON(w, r, http.StatusCreated, course)
}

func (rs *Resource) get(w http.ResponseWriter, r *http.Request) {
	id, ok := common.StringParam(w, r, "id", "course id is required")
	if !ok {
		return
	}

	course, err := rs.store.GetCourse(r.Context(), id)
	if err != nil {
		renderStoreErr(w, r, err)
		return
	}
	common.JSON(w, r, http.StatusOK, course)
}

func (rs *Resource) update(w http.ResponseWriter, r *http.Request) {
	id, ok := common.StringParam(w, r, "id", "course id is required")
	if !ok {
		return
	}

	draft, ok := decodeDraft(w, r)
	if !ok {
		return
	}

	course, err := rs.store.UpdateCourse(r.Context(), id, draft)
	if err != nil {
		renderStoreErr(w, r, err)
		return
	}
	common.JSON(w, r, http.StatusOK, course)
}

func (rs *Resource) delete(w http.ResponseWriter, r *http.Request) {
	id, ok := common.StringParam(w, r, "id", "course id is required")
	if !ok {
		return
	}

	if err := rs.store.DeleteCourse(r.Context(), id); err != nil {
		renderStoreErr(w, r, err)
		return
	}
	common.NoContent(w, r)
}

func decodeDraft(w http.ResponseWriter, r *http.Request) (*models.CourseDraft, bool) {
	draft := new(models.CourseDraft)
	if err := json.NewDecoder(r.Body).Decode(draft); err != nil {
		common.RenderError(w, r, common.ErrorBadRequest(errors.New("malformed request body")))
		return nil, false
	}
	return draft, true
}

func renderStoreErr(w http.ResponseWriter, r *http.Request, err error) {
	var storeErr *database.StoreError
	if errors.As(err, &storeErr) {
		err = storeErr.Unwrap()
	}

	switch {
	case errors.Is(err, database.ErrCourseNotFound):
		common.RenderError(w, r, common.ErrorNotFound(err))
	case errors.Is(err, database.ErrDuplicateName):
		common.RenderError(w, r, common.ErrorConflict(err))
	case errors.Is(err, database.ErrInvalidDraft):
		common.RenderError(w, r, common.ErrorBadRequest(err))
	default:
		common.RenderError(w, r, common.ErrorInternal(err))
	}
}
