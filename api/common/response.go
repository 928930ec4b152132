package common

import (
	"net/http"

	"github.com/go-chi/render"
)

// JSON renders data as the response body with the given status code. Success
// bodies in this API are the domain objects themselves, not an envelope.
func JSON(w http.ResponseWriter, r *http.Request, status int, data interface{}) {
	render.Status(r, status)
	render.JSON(w, r, data)
}

// NoContent sends a 204 No Content response.
func NoContent(w http.ResponseWriter, r *http.Request) {
	render.NoContent(w, r)
}
