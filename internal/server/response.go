package server

import (
	"errors"
	"net/http"
	"strings"

	"github.com/go-chi/render"

	"content-api/internal/service"
)

// ErrResponse is the renderer for every failure the API surfaces.
type ErrResponse struct {
	Err            error `json:"-"`
	HTTPStatusCode int   `json:"-"`

	StatusText string   `json:"status"`
	Fields     []string `json:"fields,omitempty"`
}

func (e *ErrResponse) Render(w http.ResponseWriter, r *http.Request) error {
	render.Status(r, e.HTTPStatusCode)
	return nil
}

// ErrServiceError is the single mapping from the core's failure taxonomy to
// HTTP status categories.
func ErrServiceError(err error) render.Renderer {
	var vErr *service.ValidationError
	switch {
	case errors.Is(err, service.ErrNotFound):
		return &ErrResponse{
			Err:            err,
			HTTPStatusCode: http.StatusNotFound,
			StatusText:     "Article not found.",
		}
	case errors.Is(err, service.ErrForbidden):
		return &ErrResponse{
			Err:            err,
			HTTPStatusCode: http.StatusForbidden,
			StatusText:     "Not authorized.",
		}
	case errors.Is(err, service.ErrUnauthenticated):
		return &ErrResponse{
			Err:            err,
			HTTPStatusCode: http.StatusUnauthorized,
			StatusText:     "Authentication required.",
		}
	case errors.As(err, &vErr):
		return &ErrResponse{
			Err:            err,
			HTTPStatusCode: http.StatusBadRequest,
			StatusText:     strings.Join(vErr.Fields, ", ") + " required.",
			Fields:         vErr.Fields,
		}
	default:
		return &ErrResponse{
			Err:            err,
			HTTPStatusCode: http.StatusInternalServerError,
			StatusText:     "Server error.",
		}
	}
}

// ErrInvalidRequest covers undecodable request bodies.
func ErrInvalidRequest(err error) render.Renderer {
	return &ErrResponse{
		Err:            err,
		HTTPStatusCode: http.StatusBadRequest,
		StatusText:     "Invalid request.",
	}
}

var ErrNotFoundResponse = &ErrResponse{
	HTTPStatusCode: http.StatusNotFound,
	StatusText:     "Article not found.",
}
