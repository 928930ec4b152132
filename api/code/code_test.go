package code

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rollcall/server/services/codeengine"
)

type fakeEngine struct {
	code codeengine.Code
	err  error
}

func (f *fakeEngine) Current(_ context.Context, _ string) (codeengine.Code, error) {
	return f.code, f.err
}

func TestCurrentCode(t *testing.T) {
	eng := &fakeEngine{code: codeengine.Code{
		Code:             "ABC123",
		ExpiresAt:        time.Unix(1700000000, 0).UTC(),
		SecondsRemaining: 42,
	}}
	rs := NewResource(eng)

	req := httptest.NewRequest(http.MethodGet, "/course-1", nil)
	w := httptest.NewRecorder()
	rs.Router().ServeHTTP(w, req)

	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "ABC123")
	assert.Contains(t, w.Body.String(), "42")
}

func TestCurrentCodeCourseMissing(t *testing.T) {
	eng := &fakeEngine{err: codeengine.ErrCourseMissing}
	rs := NewResource(eng)

	req := httptest.NewRequest(http.MethodGet, "/ghost", nil)
	w := httptest.NewRecorder()
	rs.Router().ServeHTTP(w, req)

	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestCurrentCodeInternalError(t *testing.T) {
	eng := &fakeEngine{err: assertError{}}
	rs := NewResource(eng)

	req := httptest.NewRequest(http.MethodGet, "/course-1", nil)
	w := httptest.NewRecorder()
	rs.Router().ServeHTTP(w, req)

	assert.Equal(t, http.StatusInternalServerError, w.Code)
}

type assertError struct{}

func (assertError) Error() string { return "boom" }
