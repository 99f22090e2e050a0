// Shelfmark - Personal Collection Catalogue
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/shelfmark

package backend

import (
	"errors"
	"fmt"
	"io"
	"net/http"

	"github.com/tomtom215/shelfmark/internal/models"
)

// maxErrorBodySize limits the amount of an error response kept for reporting.
const maxErrorBodySize = 64 * 1024

var (
	// ErrNotFound is matched by errors.Is for any 404 response.
	ErrNotFound = errors.New("record not found")

	// ErrUnknownResource is returned before any request is sent when the
	// resource is not registered.
	ErrUnknownResource = models.ErrUnknownResource

	// ErrRateLimited is returned once the 429 retry budget is spent.
	ErrRateLimited = errors.New("backend rate limit exceeded")

	// ErrInvalidID is returned before any request is sent for ids below 1.
	ErrInvalidID = errors.New("record id must be positive")
)

// HTTPError is a non-2xx response from the backend.
type HTTPError struct {
	Method     string
	Path       string
	StatusCode int
	Body       string
}

func (e *HTTPError) Error() string {
	if e.Body == "" {
		return fmt.Sprintf("%s %s: backend returned status %d", e.Method, e.Path, e.StatusCode)
	}
	return fmt.Sprintf("%s %s: backend returned status %d: %s", e.Method, e.Path, e.StatusCode, e.Body)
}

// Is lets errors.Is(err, ErrNotFound) match 404 responses.
func (e *HTTPError) Is(target error) bool {
	return target == ErrNotFound && e.StatusCode == http.StatusNotFound
}

// IsClientError reports whether the backend rejected the request itself
// (4xx other than 429), as opposed to failing to serve it.
func (e *HTTPError) IsClientError() bool {
	return e.StatusCode >= 400 && e.StatusCode < 500 && e.StatusCode != http.StatusTooManyRequests
}

// readBodyForError reads at most maxErrorBodySize bytes for error reporting.
func readBodyForError(r io.Reader) string {
	body, err := io.ReadAll(io.LimitReader(r, maxErrorBodySize))
	if err != nil {
		return "(failed to read response body)"
	}
	if len(body) == maxErrorBodySize {
		return string(body) + "\n... (truncated)"
	}
	return string(body)
}
