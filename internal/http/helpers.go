package http

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"

	"finanzas/internal/core"
	"finanzas/internal/log"
	"finanzas/internal/store"
)

const maxBodyBytes = 1 << 20

var errMalformedBody = errors.New("malformed request body")

type (
	errorBody struct {
		Error string `json:"error"`
	}

	// listBody carries a collection together with the load errors of the
	// live view, so a failed collection shows as empty plus a message.
	listBody[T any] struct {
		Items  []T      `json:"items"`
		Errors []string `json:"errors,omitempty"`
	}
)

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	if v == nil {
		return
	}
	_ = json.NewEncoder(w).Encode(v)
}

func writeList[T any](w http.ResponseWriter, items []T, errs []string) {
	if items == nil {
		items = []T{}
	}
	writeJSON(w, http.StatusOK, listBody[T]{Items: items, Errors: errs})
}

// decodeJSON reads a single JSON object into dst. Unknown fields and
// trailing data are rejected. Enum and amount errors raised by the core
// decoders keep their sentinel so they surface as validation failures.
func decodeJSON(w http.ResponseWriter, r *http.Request, dst any) error {
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	dec.DisallowUnknownFields()
	if err := dec.Decode(dst); err != nil {
		if isValidation(err) {
			return err
		}
		return fmt.Errorf("%w: %v", errMalformedBody, err)
	}
	if _, err := dec.Token(); err != io.EOF {
		return fmt.Errorf("%w: trailing data", errMalformedBody)
	}
	return nil
}

var validationErrors = []error{
	core.ErrInvalidAmount,
	core.ErrMissingAccount,
	core.ErrMissingName,
	core.ErrInvalidDueDate,
	core.ErrInvalidClassification,
	core.ErrInvalidEnum,
	core.ErrInvalidLimit,
	core.ErrInvalidThreshold,
}

func isValidation(err error) bool {
	for _, target := range validationErrors {
		if errors.Is(err, target) {
			return true
		}
	}
	return false
}

// statusFor maps service errors onto HTTP status codes.
func statusFor(err error) int {
	switch {
	case errors.Is(err, errMalformedBody):
		return http.StatusBadRequest
	case isValidation(err):
		return http.StatusUnprocessableEntity
	case errors.Is(err, store.ErrNotFound):
		return http.StatusNotFound
	default:
		return http.StatusInternalServerError
	}
}

// writeError answers with the mapped status. Internal failures are logged
// with their cause and answered with a generic message.
func writeError(w http.ResponseWriter, r *http.Request, operation string, err error) {
	status := statusFor(err)
	if status == http.StatusInternalServerError {
		log.LogError(r.Context(), "Request failed", err, operation, nil)
		writeJSON(w, status, errorBody{Error: "internal error"})
		return
	}
	writeJSON(w, status, errorBody{Error: err.Error()})
}

// sanitizeInput trims whitespace and drops control characters other than
// tab and newlines.
func sanitizeInput(s string) string {
	return strings.Map(func(r rune) rune {
		if r < 32 && r != '\t' && r != '\n' && r != '\r' {
			return -1
		}
		return r
	}, strings.TrimSpace(s))
}

func queryParam(r *http.Request, key string) string {
	return sanitizeInput(r.URL.Query().Get(key))
}

// queryInt returns the positive integer parameter key, or def.
func queryInt(r *http.Request, key string, def int) int {
	v := queryParam(r, key)
	if v == "" {
		return def
	}
	n, err := strconv.Atoi(v)
	if err != nil || n <= 0 {
		return def
	}
	return n
}
