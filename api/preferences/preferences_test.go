package preferences

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
	value   string
	courses map[string]*models.Course
	err     error
}

func newFakeStore() *fakeStore {
	return &fakeStore{courses: make(map[string]*models.Course)}
}

func (f *fakeStore) GetPreference(_ context.Context, _ string) (string, error) {
	if f.err != nil {
		return "", f.err
	}
	return f.value, nil
}

func (f *fakeStore) SetPreference(_ context.Context, _, value string) error {
	if f.err != nil {
		return f.err
	}
	f.value = value
	return nil
}

func (f *fakeStore) GetCourse(_ context.Context, courseID string) (*models.Course, error) {
	if f.err != nil {
		return nil, f.err
	}
	if _, ok := f.courses[courseID]; !ok {
		return nil, &database.StoreError{Op: "get_course", Err: database.ErrCourseNotFound}
	}
	return f.courses[courseID], nil
}

func TestGetPreferenceUnset(t *testing.T) {
	store := newFakeStore()
	rs := NewResource(store)

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	w := httptest.NewRecorder()
	rs.Router().ServeHTTP(w, req)

	require.Equal(t, http.StatusOK, w.Code)
	var got currentCourseResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &got))
	assert.Nil(t, got.CurrentCourseID)
}

func TestGetPreferenceSet(t *testing.T) {
	store := newFakeStore()
	store.courses["course-1"] = &models.Course{Name: "Algorithms"}
	store.courses["course-1"].ID = "course-1"
	store.value = "course-1"
	rs := NewResource(store)

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	w := httptest.NewRecorder()
	rs.Router().ServeHTTP(w, req)

	require.Equal(t, http.StatusOK, w.Code)
	var got currentCourseResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &got))
	require.NotNil(t, got.CurrentCourseID)
	assert.Equal(t, "course-1", *got.CurrentCourseID)
}

func TestGetPreferenceStaleCourseResetsToEmpty(t *testing.T) {
	store := newFakeStore()
	store.value = "deleted-course"
	rs := NewResource(store)

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	w := httptest.NewRecorder()
	rs.Router().ServeHTTP(w, req)

	require.Equal(t, http.StatusOK, w.Code)
	var got currentCourseResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &got))
	assert.Nil(t, got.CurrentCourseID)
	assert.Equal(t, "", store.value, "stale preference must be reset")
}

func TestSetPreference(t *testing.T) {
	store := newFakeStore()
	store.courses["course-2"] = &models.Course{Name: "Algorithms II"}
	store.courses["course-2"].ID = "course-2"
	rs := NewResource(store)

	body, _ := json.Marshal(map[string]string{"current_course_id": "course-2"})
	req := httptest.NewRequest(http.MethodPost, "/", bytes.NewReader(body))
	w := httptest.NewRecorder()
	rs.Router().ServeHTTP(w, req)

	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "course-2", store.value)
}

func TestSetPreferenceMalformedBody(t *testing.T) {
	store := newFakeStore()
	rs := NewResource(store)

	req := httptest.NewRequest(http.MethodPost, "/", bytes.NewReader([]byte("{")))
	w := httptest.NewRecorder()
	rs.Router().ServeHTTP(w, req)

	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestSetPreferenceEmptyValue(t *testing.T) {
	store := newFakeStore()
	rs := NewResource(store)

	body, _ := json.Marshal(map[string]string{"current_course_id": ""})
	req := httptest.NewRequest(http.MethodPost, "/", bytes.NewReader(body))
	w := httptest.NewRecorder()
	rs.Router().ServeHTTP(w, req)

	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestSetPreferenceUnknownCourse(t *testing.T) {
	store := newFakeStore()
	rs := NewResource(store)

	body, _ := json.Marshal(map[string]string{"current_course_id": "ghost"})
	req := httptest.NewRequest(http.MethodPost, "/", bytes.NewReader(body))
	w := httptest.NewRecorder()
	rs.Router().ServeHTTP(w, req)

	assert.Equal(t, http.StatusNotFound, w.Code)
}
