package courses

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rollcall/server/database"
	"github.com/rollcall/server/models"
)

type fakeStore struct {
	courses map[string]*models.Course
	err     error
}

func newFakeStore() *fakeStore {
	return &fakeStore{courses: make(map[string]*models.Course)}
}

func (f *fakeStore) CreateCourse(_ context.Context, draft *models.CourseDraft) (*models.Course, error) {
	if f.err != nil {
		return nil, f.err
	}
	c := &models.Course{Name: draft.Name, PrimarySection: draft.PrimarySection, Sections: draft.Sections}
	c.ID = "course-1"
	f.courses[c.ID] = c
	return c, nil
}

func (f *fakeStore) GetCourse(_ context.Context, courseID string) (*models.Course, error) {
	if f.err != nil {
		return nil, f.err
	}
	c, ok := f.courses[courseID]
	if !ok {
		return nil, &database.StoreError{Op: "get_course", Err: database.ErrCourseNotFound}
	}
	return c, nil
}

func (f *fakeStore) ListCoursesFull(_ context.Context) ([]models.Course, error) {
	if f.err != nil {
		return nil, f.err
	}
	var out []models.Course
	for _, c := range f.courses {
		out = append(out, *c)
	}
	return out, nil
}

func (f *fakeStore) UpdateCourse(_ context.Context, courseID string, draft *models.CourseDraft) (*models.Course, error) {
	if f.err != nil {
		return nil, f.err
	}
	c, ok := f.courses[courseID]
	if !ok {
		return nil, &database.StoreError{Op: "update_course", Err: database.ErrCourseNotFound}
	}
	c.Name = draft.Name
	return c, nil
}

func (f *fakeStore) DeleteCourse(_ context.Context, courseID string) error {
	if f.err != nil {
		return f.err
	}
	if _, ok := f.courses[courseID]; !ok {
		return &database.StoreError{Op: "delete_course", Err: database.ErrCourseNotFound}
	}
	delete(f.courses, courseID)
	return nil
}

func TestCreateCourse(t *testing.T) {
	store := newFakeStore()
	rs := NewResource(store)

	body, _ := json.Marshal(map[string]interface{}{
		"name":            "Algorithms",
		"primary_section": "001",
		"sections":        []string{"001"},
	})
	req := httptest.NewRequest(http.MethodPost, "/", bytes.NewReader(body))
	w := httptest.NewRecorder()
	rs.Router().ServeHTTP(w, req)

	require.Equal(t, http.StatusCreated, w.Code)
	var got models.Course
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &got))
	assert.Equal(t, "Algorithms", got.Name)
}

func TestCreateCourseMalformedBody(t *testing.T) {
	store := newFakeStore()
	rs := NewResource(store)

	req := httptest.NewRequest(http.MethodPost, "/", bytes.NewReader([]byte("not json")))
	w := httptest.NewRecorder()
	rs.Router().ServeHTTP(w, req)

	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestCreateCourseDuplicateName(t *testing.T) {
	store := newFakeStore()
	store.err = &database.StoreError{Op: "create_course", Err: database.ErrDuplicateName}
	rs := NewResource(store)

	body, _ := json.Marshal(map[string]interface{}{"name": "Algorithms", "primary_section": "001", "sections": []string{"001"}})
	req := httptest.NewRequest(http.MethodPost, "/", bytes.NewReader(body))
	w := httptest.NewRecorder()
	rs.Router().ServeHTTP(w, req)

	assert.Equal(t, http.StatusConflict, w.Code)
}

func TestCreateCourseInvalidDraft(t *testing.T) {
	store := newFakeStore()
	store.err = &database.StoreError{Op: "create_course", Err: database.ErrInvalidDraft}
	rs := NewResource(store)

	body, _ := json.Marshal(map[string]interface{}{})
	req := httptest.NewRequest(http.MethodPost, "/", bytes.NewReader(body))
	w := httptest.NewRecorder()
	rs.Router().ServeHTTP(w, req)

	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestGetCourseNotFound(t *testing.T) {
	store := newFakeStore()
	rs := NewResource(store)

	req := httptest.NewRequest(http.MethodGet, "/missing", nil)
	w := httptest.NewRecorder()
	rs.Router().ServeHTTP(w, req)

	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestGetCourseFound(t *testing.T) {
	store := newFakeStore()
	store.courses["course-1"] = &models.Course{Name: "Algorithms"}
	store.courses["course-1"].ID = "course-1"
	rs := NewResource(store)

	req := httptest.NewRequest(http.MethodGet, "/course-1", nil)
	w := httptest.NewRecorder()
	rs.Router().ServeHTTP(w, req)

	require.Equal(t, http.StatusOK, w.Code)
	var got models.Course
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &got))
	assert.Equal(t, "Algorithms", got.Name)
}

func TestListCourses(t *testing.T) {
	store := newFakeStore()
	store.courses["course-1"] = &models.Course{Name: "Algorithms", PrimarySection: "001", Sections: []string{"001"}}
	rs := NewResource(store)

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	w := httptest.NewRecorder()
	rs.Router().ServeHTTP(w, req)

	require.Equal(t, http.StatusOK, w.Code)
	var got []models.Course
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &got))
	require.Len(t, got, 1)
	assert.Equal(t, "Algorithms", got[0].Name)
	assert.Equal(t, "001", got[0].PrimarySection)
}

func TestUpdateCourseNotFound(t *testing.T) {
	store := newFakeStore()
	rs := NewResource(store)

	body, _ := json.Marshal(map[string]interface{}{"name": "New Name", "primary_section": "001", "sections": []string{"001"}})
	req := httptest.NewRequest(http.MethodPut, "/missing", bytes.NewReader(body))
	w := httptest.NewRecorder()
	rs.Router().ServeHTTP(w, req)

	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestDeleteCourse(t *testing.T) {
	store := newFakeStore()
	store.courses["course-1"] = &models.Course{Name: "Algorithms"}
	store.courses["course-1"].ID = "course-1"
	rs := NewResource(store)

	req := httptest.NewRequest(http.MethodDelete, "/course-1", nil)
	w := httptest.NewRecorder()
	rs.Router().ServeHTTP(w, req)

	assert.Equal(t, http.StatusNoContent, w.Code)
	_, exists := store.courses["course-1"]
	assert.False(t, exists)
}

func TestDeleteCourseNotFound(t *testing.T) {
	store := newFakeStore()
	rs := NewResource(store)

	req := httptest.NewRequest(http.MethodDelete, "/missing", nil)
	w := httptest.NewRecorder()
	rs.Router().ServeHTTP(w, req)

	assert.Equal(t, http.StatusNotFound, w.Code)
}
