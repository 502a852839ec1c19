package errors

import (
	stderrors "errors"
	"net/http"

	"countdown/internal/service"
)

type APIError struct {
	Status  int         `json:"-"`
	Code    string      `json:"code"`
	Message string      `json:"message"`
	Details interface{} `json:"details,omitempty"`
}

func (e *APIError) Error() string {
	return e.Message
}

func New(status int, code, message string) *APIError {
	return &APIError{
		Status:  status,
		Code:    code,
		Message: message,
	}
}

func Internal(message string) *APIError {
	if message == "" {
		message = "internal server error"
	}
	return New(http.StatusInternalServerError, "internal_error", message)
}

func BadRequest(code, message string) *APIError {
	return New(http.StatusBadRequest, code, message)
}

func Unauthorized(message string) *APIError {
	if message == "" {
		message = "unauthorized"
	}
	return New(http.StatusUnauthorized, "unauthorized", message)
}

func NotFound(code, message string) *APIError {
	return New(http.StatusNotFound, code, message)
}

// FromService maps session errors onto API errors.
func FromService(err error) *APIError {
	var verr *service.ValidationError
	switch {
	case err == nil:
		return nil
	case stderrors.As(err, &verr):
		apiErr := BadRequest("validation_failed", verr.Message)
		apiErr.Details = map[string]string{"field": verr.Field}
		return apiErr
	case stderrors.Is(err, service.ErrValidation):
		return BadRequest("validation_failed", err.Error())
	case stderrors.Is(err, service.ErrNotFound):
		return NotFound("timer_not_found", "timer not found")
	default:
		return Internal(err.Error())
	}
}
