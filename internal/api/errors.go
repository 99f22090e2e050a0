// Shelfmark - Personal Collection Catalogue
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/shelfmark

package api

import (
	"errors"
	"net/http"

	"github.com/tomtom215/shelfmark/internal/backend"
	"github.com/tomtom215/shelfmark/internal/collection"
	"github.com/tomtom215/shelfmark/internal/models"
)

// Error codes for API responses.
const (
	ErrCodeBadRequest           = "BAD_REQUEST"
	ErrCodeValidation           = "VALIDATION_ERROR"
	ErrCodeNotFound             = "NOT_FOUND"
	ErrCodeConfirmationRequired = "CONFIRMATION_REQUIRED"
	ErrCodeRateLimited          = "RATE_LIMIT_EXCEEDED"
	ErrCodeExternalService      = "EXTERNAL_SERVICE_FAILED"
	ErrCodeServiceUnavailable   = "SERVICE_UNAVAILABLE"
	ErrCodeInternal             = "INTERNAL_ERROR"
)

// ConfirmDeleteHeader confirms a DELETE as an alternative to ?confirm=true.
const ConfirmDeleteHeader = "X-Confirm-Delete"

// errorMapping is the HTTP status and envelope for a service error.
type errorMapping struct {
	status  int
	code    string
	message string
}

// classifyError maps collection and backend errors to the envelope. The
// message is safe to show clients; the original error is only logged.
func classifyError(err error) errorMapping {
	var httpErr *backend.HTTPError
	switch {
	case errors.Is(err, models.ErrUnknownResource):
		return errorMapping{http.StatusNotFound, ErrCodeNotFound, "Unknown resource"}
	case errors.Is(err, collection.ErrConfirmationRequired):
		return errorMapping{http.StatusConflict, ErrCodeConfirmationRequired,
			"Delete requires confirmation: repeat with ?confirm=true or " + ConfirmDeleteHeader + ": true"}
	case errors.Is(err, collection.ErrFieldRequired):
		return errorMapping{http.StatusBadRequest, ErrCodeValidation, err.Error()}
	case errors.Is(err, backend.ErrInvalidID):
		return errorMapping{http.StatusBadRequest, ErrCodeBadRequest, "Record id must be a positive integer"}
	case errors.Is(err, backend.ErrNotFound):
		return errorMapping{http.StatusNotFound, ErrCodeNotFound, "Record not found"}
	case errors.As(err, &httpErr) && httpErr.IsClientError():
		return errorMapping{http.StatusBadRequest, ErrCodeBadRequest, "Backend rejected the request: " + truncate(httpErr.Body, 200)}
	default:
		return errorMapping{http.StatusBadGateway, ErrCodeExternalService, "Catalogue backend unavailable"}
	}
}

func truncate(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n]) + "..."
}
