package common

import (
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"
)

// StringParam extracts a non-empty URL parameter, rendering a 400 and
// returning false if it is missing.
func StringParam(w http.ResponseWriter, r *http.Request, param, errMsg string) (string, bool) {
	val := chi.URLParam(r, param)
	if val == "" {
		RenderError(w, r, ErrorBadRequest(errors.New(errMsg)))
		return "", false
	}
	return val, true
}
