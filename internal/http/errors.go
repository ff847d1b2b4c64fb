package http

import (
	"errors"
	"net/http"
	"strings"

	"ledger/internal/auth"
	"ledger/internal/core"
	"ledger/internal/log"
	"ledger/internal/services"
	"ledger/internal/store"
)

// requestError is a client error detected by the handler itself, such as a
// malformed body or query parameter.
type requestError struct {
	status int
	msg    string
}

func (e *requestError) Error() string { return e.msg }

func badRequest(msg string) error {
	return &requestError{status: http.StatusBadRequest, msg: msg}
}

func unprocessable(msg string) error {
	return &requestError{status: http.StatusUnprocessableEntity, msg: msg}
}

var validationSentinels = []error{
	core.ErrInvalidDate,
	core.ErrInvalidAmount,
	core.ErrInvalidType,
	core.ErrEmptyCategory,
	core.ErrEmptyItem,
	core.ErrEmptyName,
	core.ErrInvalidPeriod,
	core.ErrInvalidEmail,
	core.ErrPasswordTooWeak,
}

func isValidation(err error) bool {
	if errors.Is(err, services.ErrValidation) {
		return true
	}
	for _, sentinel := range validationSentinels {
		if errors.Is(err, sentinel) {
			return true
		}
	}
	return false
}

// errorResponse maps a service error to its status code and client message.
// Internal details are never echoed for 5xx.
func errorResponse(err error) (int, string) {
	var reqErr *requestError
	switch {
	case errors.As(err, &reqErr):
		return reqErr.status, reqErr.msg
	case isValidation(err):
		return http.StatusUnprocessableEntity, validationMessage(err)
	case errors.Is(err, store.ErrNotFound):
		return http.StatusNotFound, "resource not found"
	case errors.Is(err, store.ErrConflict):
		return http.StatusConflict, "resource already exists"
	case errors.Is(err, auth.ErrInvalidCredentials):
		return http.StatusUnauthorized, auth.ErrInvalidCredentials.Error()
	case errors.Is(err, auth.ErrInvalidToken):
		return http.StatusUnauthorized, auth.ErrInvalidToken.Error()
	}
	return http.StatusInternalServerError, "internal server error"
}

// errorType classifies a status for the error_type log field.
func errorType(status int) string {
	switch status {
	case http.StatusBadRequest, http.StatusUnprocessableEntity:
		return log.ErrorTypeValidation
	case http.StatusUnauthorized:
		return log.ErrorTypeAuth
	case http.StatusNotFound:
		return log.ErrorTypeNotFound
	case http.StatusConflict:
		return log.ErrorTypeConflict
	}
	return log.ErrorTypeInternal
}

// validationMessage drops the "validation failed: " prefix added by services.
func validationMessage(err error) string {
	msg, _ := strings.CutPrefix(err.Error(), services.ErrValidation.Error()+": ")
	return msg
}

// writeError logs and writes err. Only 5xx are logged above debug.
func (s *Server) writeError(w http.ResponseWriter, r *http.Request, err error) {
	status, msg := errorResponse(err)
	ctx := r.Context()
	logger := log.FromContext(ctx).WithComponent(log.ComponentHTTP)
	if status >= http.StatusInternalServerError {
		logger.ErrorContext(ctx, "Request failed",
			log.FieldError, err.Error(), log.FieldErrorType, errorType(status), log.FieldPath, r.URL.Path)
	} else {
		logger.DebugContext(ctx, "Request rejected",
			log.FieldError, err.Error(), log.FieldErrorType, errorType(status), log.FieldStatusCode, status)
	}
	ErrorResponse(status, msg).Write(w)
}
