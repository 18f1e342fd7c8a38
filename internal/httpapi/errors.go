package httpapi

import (
	"context"
	"errors"
	"net/http"

	"github.com/go-chi/render"
	"github.com/go-playground/validator/v10"

	"github.com/Belphemur/CatalogLens/internal/apperrors"
)

// ErrorResponse is the JSON body of every failed request.
type ErrorResponse struct {
	HTTPStatus int            `json:"-"`
	Code       string         `json:"code"`
	Message    string         `json:"message"`
	Details    map[string]any `json:"details,omitempty"`
}

// Render implements render.Renderer.
func (e *ErrorResponse) Render(_ http.ResponseWriter, r *http.Request) error {
	render.Status(r, e.HTTPStatus)
	return nil
}

func errInvalidJSON(err error) *ErrorResponse {
	return &ErrorResponse{
		HTTPStatus: http.StatusBadRequest,
		Code:       "INVALID_JSON",
		Message:    "request body is not valid JSON",
		Details:    map[string]any{"error": err.Error()},
	}
}

// errValidation lists the failed rule of every invalid field, keyed by its JSON path.
func errValidation(verrs validator.ValidationErrors) *ErrorResponse {
	fields := make(map[string]any, len(verrs))
	for _, fe := range verrs {
		fields[fe.Namespace()] = fe.Tag()
	}
	return &ErrorResponse{
		HTTPStatus: http.StatusBadRequest,
		Code:       "VALIDATION_FAILED",
		Message:    "request validation failed",
		Details:    map[string]any{"fields": fields},
	}
}

// errFromService maps a service error to its response.
func errFromService(err error) *ErrorResponse {
	var invalid *apperrors.ErrInvalidSelection
	var tooMany *apperrors.ErrTooManyInputs
	var srcErr *apperrors.ErrSource
	var notAllowed *apperrors.ErrSourceNotAllowed

	switch {
	case errors.As(err, &invalid):
		return &ErrorResponse{
			HTTPStatus: http.StatusBadRequest,
			Code:       "INVALID_SELECTION",
			Message:    err.Error(),
			Details:    map[string]any{"field": invalid.Field, "reason": invalid.Reason},
		}
	case errors.As(err, &tooMany):
		return &ErrorResponse{
			HTTPStatus: http.StatusBadRequest,
			Code:       "TOO_MANY_INPUTS",
			Message:    err.Error(),
			Details:    map[string]any{"count": tooMany.Count, "max": apperrors.MaxSources},
		}
	case errors.As(err, &notAllowed):
		return &ErrorResponse{
			HTTPStatus: http.StatusBadRequest,
			Code:       "SOURCE_NOT_ALLOWED",
			Message:    err.Error(),
			Details:    map[string]any{"source": notAllowed.Source},
		}
	case errors.Is(err, &apperrors.ErrNoInput{}):
		return &ErrorResponse{HTTPStatus: http.StatusBadRequest, Code: "NO_INPUT", Message: err.Error()}
	case errors.As(err, &srcErr):
		return &ErrorResponse{
			HTTPStatus: http.StatusUnprocessableEntity,
			Code:       "SOURCE_ERROR",
			Message:    err.Error(),
			Details:    map[string]any{"source": srcErr.Source},
		}
	case errors.Is(err, context.DeadlineExceeded):
		return &ErrorResponse{HTTPStatus: http.StatusGatewayTimeout, Code: "TIMEOUT", Message: err.Error()}
	default:
		return &ErrorResponse{HTTPStatus: http.StatusInternalServerError, Code: "INTERNAL", Message: err.Error()}
	}
}
