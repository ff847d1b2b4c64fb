package http

import (
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"ledger/internal/auth"
	"ledger/internal/core"
	"ledger/internal/log"
	"ledger/internal/services"
	"ledger/internal/store"
)

func TestJSONResponseBuilder_Basic(t *testing.T) {
	w := httptest.NewRecorder()

	NewJSONResponse().
		Status(http.StatusCreated).
		Header("Location", "/api/transactions/t1").
		JSON(map[string]string{"id": "t1"}).
		Write(w)

	if w.Code != http.StatusCreated {
		t.Errorf("Status code = %d, want %d", w.Code, http.StatusCreated)
	}
	if got := w.Header().Get("Content-Type"); got != "application/json" {
		t.Errorf("Content-Type = %q", got)
	}
	if got := w.Header().Get("Location"); got != "/api/transactions/t1" {
		t.Errorf("Location = %q", got)
	}
	if got := w.Body.String(); got != "{\"id\":\"t1\"}\n" {
		t.Errorf("Body = %q", got)
	}
}

func TestJSONResponseBuilder_NoContentHasNoBody(t *testing.T) {
	w := httptest.NewRecorder()
	NewJSONResponse().Status(http.StatusNoContent).JSON(map[string]string{"ignored": "yes"}).Write(w)

	if w.Code != http.StatusNoContent {
		t.Errorf("Status code = %d", w.Code)
	}
	if w.Body.Len() != 0 {
		t.Errorf("Body = %q, want empty", w.Body.String())
	}
}

func TestJSONResponseBuilder_EncodeFailure(t *testing.T) {
	w := httptest.NewRecorder()
	NewJSONResponse().JSON(map[string]any{"bad": make(chan int)}).Write(w)

	if w.Code != http.StatusInternalServerError {
		t.Errorf("Status code = %d, want 500", w.Code)
	}
}

func TestErrorHelpers(t *testing.T) {
	tests := []struct {
		name    string
		builder *JSONResponseBuilder
		status  int
		body    string
	}{
		{"bad request", BadRequestError("bad"), http.StatusBadRequest, "{\"error\":\"bad\"}\n"},
		{"unprocessable", UnprocessableEntityError("invalid amount"), http.StatusUnprocessableEntity, "{\"error\":\"invalid amount\"}\n"},
		{"not found", NotFoundError("gone"), http.StatusNotFound, "{\"error\":\"gone\"}\n"},
		{"internal", InternalServerError(), http.StatusInternalServerError, "{\"error\":\"internal server error\"}\n"},
		{"method", MethodNotAllowedError(), http.StatusMethodNotAllowed, "{\"error\":\"method not allowed\"}\n"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := httptest.NewRecorder()
			tt.builder.Write(w)
			if w.Code != tt.status {
				t.Errorf("Status code = %d, want %d", w.Code, tt.status)
			}
			if w.Body.String() != tt.body {
				t.Errorf("Body = %q, want %q", w.Body.String(), tt.body)
			}
		})
	}
}

func TestErrorResponseMapping(t *testing.T) {
	tests := []struct {
		name    string
		err     error
		status  int
		message string
	}{
		{"service validation", fmt.Errorf("%w: %w", services.ErrValidation, core.ErrEmptyItem), http.StatusUnprocessableEntity, "empty item"},
		{"bare core sentinel", fmt.Errorf("parse: %w", core.ErrInvalidPeriod), http.StatusUnprocessableEntity, "parse: invalid budget period"},
		{"not found", fmt.Errorf("load transaction x: %w", store.ErrNotFound), http.StatusNotFound, "resource not found"},
		{"conflict", fmt.Errorf("create user: %w", store.ErrConflict), http.StatusConflict, "resource already exists"},
		{"credentials", auth.ErrInvalidCredentials, http.StatusUnauthorized, auth.ErrInvalidCredentials.Error()},
		{"token", fmt.Errorf("%w: expired", auth.ErrInvalidToken), http.StatusUnauthorized, auth.ErrInvalidToken.Error()},
		{"request error", badRequest("invalid limit"), http.StatusBadRequest, "invalid limit"},
		{"internal details hidden", errors.New("pq: connection refused"), http.StatusInternalServerError, "internal server error"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			status, msg := errorResponse(tt.err)
			if status != tt.status || msg != tt.message {
				t.Errorf("errorResponse() = %d %q, want %d %q", status, msg, tt.status, tt.message)
			}
		})
	}
}

func TestErrorType(t *testing.T) {
	tests := []struct {
		status int
		want   string
	}{
		{http.StatusBadRequest, log.ErrorTypeValidation},
		{http.StatusUnprocessableEntity, log.ErrorTypeValidation},
		{http.StatusUnauthorized, log.ErrorTypeAuth},
		{http.StatusNotFound, log.ErrorTypeNotFound},
		{http.StatusConflict, log.ErrorTypeConflict},
		{http.StatusInternalServerError, log.ErrorTypeInternal},
	}

	for _, tt := range tests {
		if got := errorType(tt.status); got != tt.want {
			t.Errorf("errorType(%d) = %q, want %q", tt.status, got, tt.want)
		}
	}
}
