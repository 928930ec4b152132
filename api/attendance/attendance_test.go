package attendance

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rollcall/server/services/submission"
)

type fixedClock struct{ at time.Time }

func (c fixedClock) Now() time.Time { return c.at }

type fakePipeline struct {
	accepted *submission.Accepted
	err      error
}

func (f *fakePipeline) Submit(_ context.Context, _, _, _, _, _ string, _ time.Time) (*submission.Accepted, error) {
	return f.accepted, f.err
}

func TestSubmitAccepted(t *testing.T) {
	pipeline := &fakePipeline{accepted: &submission.Accepted{StudentName: "Ada", PresentCount: 3}}
	rs := NewResource(pipeline, fixedClock{at: time.Now()}, false)

	body, _ := json.Marshal(map[string]string{
		"courseId":    "course-1",
		"studentName": "Ada",
		"studentId":   "s1",
		"code":        "ABC123",
	})
	req := httptest.NewRequest(http.MethodPost, "/", bytes.NewReader(body))
	w := httptest.NewRecorder()
	rs.Router().ServeHTTP(w, req)

	require.Equal(t, http.StatusOK, w.Code)
	var got submitResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &got))
	assert.Equal(t, "Ada", got.StudentName)
	assert.NotEmpty(t, got.Message)
}

func TestSubmitMalformedBody(t *testing.T) {
	rs := NewResource(&fakePipeline{}, fixedClock{at: time.Now()}, false)

	req := httptest.NewRequest(http.MethodPost, "/", bytes.NewReader([]byte("{")))
	w := httptest.NewRecorder()
	rs.Router().ServeHTTP(w, req)

	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestSubmitRejectionMapping(t *testing.T) {
	cases := []struct {
		kind submission.Kind
		want int
	}{
		{submission.CourseMissing, http.StatusNotFound},
		{submission.FieldMissing, http.StatusBadRequest},
		{submission.InvalidCode, http.StatusBadRequest},
		{submission.ExpiredCode, http.StatusBadRequest},
		{submission.DuplicateStudent, http.StatusConflict},
		{submission.DuplicateDevice, http.StatusConflict},
		{submission.StorageUnavailable, http.StatusInternalServerError},
	}
	for _, tc := range cases {
		pipeline := &fakePipeline{err: &submission.RejectedError{Kind: tc.kind}}
		rs := NewResource(pipeline, fixedClock{at: time.Now()}, false)

		body, _ := json.Marshal(map[string]string{
			"courseId": "course-1", "studentName": "Ada", "studentId": "s1", "code": "ABC123",
		})
		req := httptest.NewRequest(http.MethodPost, "/", bytes.NewReader(body))
		w := httptest.NewRecorder()
		rs.Router().ServeHTTP(w, req)

		assert.Equal(t, tc.want, w.Code, "kind=%s", tc.kind)
	}
}
