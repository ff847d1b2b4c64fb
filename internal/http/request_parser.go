// Package http provides the JSON API server and its handlers.
//
// This file implements helpers for decoding request bodies and query
// parameters into service inputs.

package http

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"ledger/internal/core"
	"ledger/internal/store"
)

// maxBodyBytes caps JSON request bodies.
const maxBodyBytes = 64 << 10

const (
	defaultNotificationLimit = 50
	maxListLimit             = 1000
)

// decodeJSON reads one JSON object from the body into dst. Unknown fields are
// rejected. Domain decoding errors such as a bad date keep their sentinel so
// they map to 422.
func decodeJSON(w http.ResponseWriter, r *http.Request, dst any) error {
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	dec.DisallowUnknownFields()

	if err := dec.Decode(dst); err != nil {
		var maxErr *http.MaxBytesError
		var syntaxErr *json.SyntaxError
		var typeErr *json.UnmarshalTypeError
		switch {
		case isValidation(err):
			return err
		case errors.Is(err, io.EOF):
			return badRequest("request body is empty")
		case errors.As(err, &maxErr):
			return &requestError{status: http.StatusRequestEntityTooLarge, msg: "request body too large"}
		case errors.As(err, &syntaxErr), errors.Is(err, io.ErrUnexpectedEOF):
			return badRequest("malformed JSON body")
		case errors.As(err, &typeErr):
			return badRequest(fmt.Sprintf("invalid value for field %q", typeErr.Field))
		case strings.HasPrefix(err.Error(), "json: unknown field "):
			return badRequest(strings.TrimPrefix(err.Error(), "json: "))
		default:
			return badRequest("invalid request body: " + err.Error())
		}
	}
	if dec.More() {
		return badRequest("request body must contain a single JSON object")
	}
	return nil
}

// parseTransactionFilter reads from, to, type, category, item and limit.
func parseTransactionFilter(query url.Values) (store.TransactionFilter, error) {
	var f store.TransactionFilter
	var err error

	if v := strings.TrimSpace(query.Get("from")); v != "" {
		if f.From, err = core.ParseDate(v); err != nil {
			return f, err
		}
	}
	if v := strings.TrimSpace(query.Get("to")); v != "" {
		if f.To, err = core.ParseDate(v); err != nil {
			return f, err
		}
	}
	if !f.From.IsZero() && !f.To.IsZero() && f.To.Before(f.From) {
		return f, unprocessable("'to' must not be before 'from'")
	}

	f.Type = core.TransactionType(strings.ToLower(strings.TrimSpace(query.Get("type"))))
	f.Category = sanitizeInput(query.Get("category"))
	f.Item = sanitizeInput(query.Get("item"))

	if f.Limit, err = parseLimit(query, 0); err != nil {
		return f, err
	}
	if query.Get("order") == "oldest" {
		f.Order = store.OldestFirst
	}
	return f, nil
}

// parseBillFilter reads from, to and unpaid.
func parseBillFilter(query url.Values) (store.BillFilter, error) {
	var f store.BillFilter
	var err error

	if v := strings.TrimSpace(query.Get("from")); v != "" {
		if f.From, err = core.ParseDate(v); err != nil {
			return f, err
		}
	}
	if v := strings.TrimSpace(query.Get("to")); v != "" {
		if f.To, err = core.ParseDate(v); err != nil {
			return f, err
		}
	}
	if v := strings.TrimSpace(query.Get("unpaid")); v != "" {
		if f.UnpaidOnly, err = strconv.ParseBool(v); err != nil {
			return f, badRequest(fmt.Sprintf("invalid unpaid flag %q", v))
		}
	}
	return f, nil
}

// parseLimit returns def when limit is absent. Values are capped at maxListLimit.
func parseLimit(query url.Values, def int) (int, error) {
	v := strings.TrimSpace(query.Get("limit"))
	if v == "" {
		return def, nil
	}
	n, err := strconv.Atoi(v)
	if err != nil || n < 0 {
		return 0, badRequest(fmt.Sprintf("invalid limit %q", v))
	}
	if n > maxListLimit {
		n = maxListLimit
	}
	return n, nil
}

// parsePeriodParam reads ?period=YYYY-MM, defaulting to the month of today.
func parsePeriodParam(query url.Values, today core.Date) (core.Period, error) {
	v := strings.TrimSpace(query.Get("period"))
	if v == "" {
		return today.Period(), nil
	}
	return core.ParsePeriod(v)
}
