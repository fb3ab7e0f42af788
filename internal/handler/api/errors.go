package api

import (
	"errors"

	"MCMTracker/internal/domain/models"
	xhttp "MCMTracker/pkg/http"
)

// toAppError maps domain errors onto HTTP errors.
func toAppError(err error) *xhttp.AppError {
	var appErr *xhttp.AppError
	if errors.As(err, &appErr) {
		return appErr
	}
	switch {
	case errors.Is(err, models.ErrValidation):
		return xhttp.BadRequestError(err.Error()).WithError(err)
	case errors.Is(err, models.ErrConfiguration):
		return xhttp.ConfigurationError(err.Error()).WithError(err)
	case errors.Is(err, models.ErrStoreUnavailable):
		return xhttp.StoreUnavailableError(err.Error()).WithError(err)
	default:
		return xhttp.InternalError(err.Error()).WithError(err)
	}
}
