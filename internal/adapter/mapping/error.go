package mapping

import (
	"errors"
	"net/http"

	"github.com/eslsoft/cliploop/internal/entity"
	"github.com/eslsoft/cliploop/pkg/filterexpr"
)

// StatusFor maps domain errors to HTTP status codes. Anything unrecognized
// is an internal error.
func StatusFor(err error) int {
	switch {
	case err == nil:
		return http.StatusOK
	case errors.Is(err, entity.ErrInvalidVideoID),
		errors.Is(err, entity.ErrInvalidCollectionName),
		errors.Is(err, entity.ErrInvalidReviewType),
		errors.Is(err, entity.ErrInvalidPlayIndex),
		errors.Is(err, entity.ErrInvalidProgress),
		errors.Is(err, entity.ErrEmptyMedia),
		errors.Is(err, filterexpr.ErrInvalid):
		return http.StatusBadRequest
	case errors.Is(err, entity.ErrVideoNotFound),
		errors.Is(err, entity.ErrPlaylistNotFound),
		errors.Is(err, entity.ErrCollectionNotFound),
		errors.Is(err, entity.ErrMediaNotFound):
		return http.StatusNotFound
	case errors.Is(err, entity.ErrCollectionNotEmpty):
		return http.StatusConflict
	default:
		return http.StatusInternalServerError
	}
}
