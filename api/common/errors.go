package common

import (
	"net/http"

	"github.com/go-chi/render"
	"github.com/rollcall/server/logging"
)

// RenderError renders an error response and logs any render failures.
func RenderError(w http.ResponseWriter, r *http.Request, renderer render.Renderer) {
	if err := render.Render(w, r, renderer); err != nil {
		logging.Logger.WithField("error", err).Error("error rendering error response")
	}
}

// Kind is the stable machine-readable error category in an ErrResponse body.
type Kind string

const (
	KindNotFound      Kind = "not_found"
	KindBadRequest    Kind = "bad_request"
	KindInvalidCode   Kind = "invalid_code"
	KindExpiredCode   Kind = "expired_code"
	KindConflict      Kind = "conflict"
	KindForbidden     Kind = "forbidden"
	KindInternalError Kind = "internal_error"
)

// ErrResponse is the uniform error body: {error: <kind>, message: <text>}.
type ErrResponse struct {
	Err            error `json:"-"`
	HTTPStatusCode int   `json:"-"`

	ErrorKind Kind   `json:"error"`
	Message   string `json:"message"`
}

// Render implements render.Renderer.
func (e *ErrResponse) Render(_ http.ResponseWriter, r *http.Request) error {
	render.Status(r, e.HTTPStatusCode)
	return nil
}

func newErrResponse(status int, kind Kind, err error) render.Renderer {
	return &ErrResponse{
		Err:            err,
		HTTPStatusCode: status,
		ErrorKind:      kind,
		Message:        err.Error(),
	}
}

// ErrorBadRequest returns a 400 response with kind bad_request.
func ErrorBadRequest(err error) render.Renderer {
	return newErrResponse(http.StatusBadRequest, KindBadRequest, err)
}

// ErrorNotFound returns a 404 response with kind not_found.
func ErrorNotFound(err error) render.Renderer {
	return newErrResponse(http.StatusNotFound, KindNotFound, err)
}

// ErrorConflict returns a 409 response with kind conflict.
func ErrorConflict(err error) render.Renderer {
	return newErrResponse(http.StatusConflict, KindConflict, err)
}

// ErrorForbidden returns a 403 response with kind forbidden.
func ErrorForbidden(err error) render.Renderer {
	return newErrResponse(http.StatusForbidden, KindForbidden, err)
}

// ErrorInvalidCode returns a 400 response with kind invalid_code.
func ErrorInvalidCode(err error) render.Renderer {
	return newErrResponse(http.StatusBadRequest, KindInvalidCode, err)
}

// ErrorExpiredCode returns a 400 response with kind expired_code.
func ErrorExpiredCode(err error) render.Renderer {
	return newErrResponse(http.StatusBadRequest, KindExpiredCode, err)
}

// ErrorInternal returns a 500 response with kind internal_error.
func ErrorInternal(err error) render.Renderer {
	return newErrResponse(http.StatusInternalServerError, KindInternalError, err)
}
