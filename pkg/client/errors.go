package client

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
)

var (
	ErrNotAuthenticated = errors.New("not authenticated")
	ErrNotFound         = errors.New("not found")
	ErrConflict         = errors.New("conflict")
	ErrValidation       = errors.New("validation failed")
	ErrRateLimited      = errors.New("rate limited")
	ErrServerError      = errors.New("server error")

	// ErrStale is returned by CalendarView when a newer request superseded
	// the one that just completed.
	ErrStale = errors.New("stale calendar response")
)

// Error is a non-2xx API response.
type Error struct {
	StatusCode int
	Message    string
	Err        error
}

func (e *Error) Error() string {
	if e.Message == "" {
		return fmt.Sprintf("ledger api: %d", e.StatusCode)
	}
	return fmt.Sprintf("ledger api: %d: %s", e.StatusCode, e.Message)
}

func (e *Error) Unwrap() error {
	return e.Err
}

// newError maps a status code and {"error": ...} body to an *Error.
func newError(status int, body []byte) error {
	var payload struct {
		Error string `json:"error"`
	}
	_ = json.Unmarshal(body, &payload)

	e := &Error{StatusCode: status, Message: payload.Error}
	switch {
	case status == http.StatusUnauthorized:
		e.Err = ErrNotAuthenticated
	case status == http.StatusNotFound:
		e.Err = ErrNotFound
	case status == http.StatusConflict:
		e.Err = ErrConflict
	case status == http.StatusUnprocessableEntity || status == http.StatusBadRequest:
		e.Err = ErrValidation
	case status == http.StatusTooManyRequests:
		e.Err = ErrRateLimited
	case status >= http.StatusInternalServerError:
		e.Err = ErrServerError
	}
	return e
}
