package endpoints

import (
	"errors"
	"net/http"

	"github.com/AlvinPalmgren/PunktGrader/internal/api"
	"github.com/AlvinPalmgren/PunktGrader/internal/session"
)

// All returns all endpoint instances in registration order.
func All() []api.Endpoint {
	return []api.Endpoint{
		// Health endpoints
		&HealthEndpoint{},

		// Session endpoints
		&UploadEndpoint{},
		&StudentDocumentEndpoint{},
		&SubmitLabelsEndpoint{},
		&StatusEndpoint{},
		&ResetEndpoint{},

		// Finalize endpoints
		&FinalizeEndpoint{},
		&DownloadEndpoint{},
	}
}

// statusForError maps store errors to HTTP status codes.
func statusForError(err error) int {
	switch {
	case errors.Is(err, session.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, session.ErrInvalidInput):
		return http.StatusBadRequest
	default:
		return http.StatusInternalServerError
	}
}
