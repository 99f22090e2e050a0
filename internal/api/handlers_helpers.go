// Shelfmark - Personal Collection Catalogue
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/shelfmark

package api

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/goccy/go-json"

	"github.com/tomtom215/shelfmark/internal/logging"
	"github.com/tomtom215/shelfmark/internal/models"
	"github.com/tomtom215/shelfmark/internal/validation"
)

// maxBodySize bounds a record body on POST, PUT and PATCH.
const maxBodySize = 1 << 20

// respondJSON writes an API response. View responses change whenever the
// backend does, so nothing is cacheable.
func respondJSON(w http.ResponseWriter, status int, response *models.APIResponse) {
	data, err := json.Marshal(response)
	if err != nil {
		logging.Error().Err(err).Msg("Failed to marshal JSON response")
		w.WriteHeader(http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.Header().Set("Cache-Control", "no-store")
	w.WriteHeader(status)
	if _, err := w.Write(data); err != nil {
		logging.Error().Err(err).Msg("Failed to write JSON response")
	}
}

// respondData writes a success envelope. started is when the handler began
// work and feeds query_time_ms.
func respondData(w http.ResponseWriter, status int, data interface{}, started time.Time, degraded bool, page *models.PaginationInfo) {
	respondJSON(w, status, &models.APIResponse{
		Status: "success",
		Data:   data,
		Metadata: models.Metadata{
			Timestamp:   time.Now(),
			QueryTimeMS: time.Since(started).Milliseconds(),
			Degraded:    degraded,
			Pagination:  page,
		},
	})
}

// respondError writes an error envelope. err is logged, never sent.
func respondError(w http.ResponseWriter, status int, code, message string, err error) {
	if err != nil {
		logging.Error().Str("code", code).Str("error", logging.SanitizeValue(err.Error())).Msg("API Error")
	}

	respondJSON(w, status, &models.APIResponse{
		Status: "error",
		Metadata: models.Metadata{
			Timestamp: time.Now(),
		},
		Error: &models.APIError{
			Code:    code,
			Message: message,
		},
	})
}

// respondServiceError maps a collection or backend error to its status.
// Client-side problems are logged at debug; backend failures at error.
func respondServiceError(w http.ResponseWriter, r *http.Request, err error) {
	m := classifyError(err)

	if errors.Is(err, context.Canceled) && r.Context().Err() != nil {
		logging.Ctx(r.Context()).Debug().Msg("Client went away before the view was ready")
		return
	}

	event := logging.Ctx(r.Context()).Debug()
	if m.status >= http.StatusInternalServerError {
		event = logging.Ctx(r.Context()).Error()
	}
	event.Str("code", m.code).
		Str("path", logging.SanitizeValue(r.URL.Path)).
		Str("error", logging.SanitizeValue(err.Error())).
		Msg("Request failed")

	respondJSON(w, m.status, &models.APIResponse{
		Status:   "error",
		Metadata: models.Metadata{Timestamp: time.Now()},
		Error:    &models.APIError{Code: m.code, Message: m.message},
	})
}

// validate runs the request validator. Unknown resources answer 404, other
// failures 400 VALIDATION_ERROR with per-field details.
func (h *Handler) validate(w http.ResponseWriter, req interface{}) bool {
	verr := validation.ValidateStruct(req)
	if verr == nil {
		return true
	}

	for _, fe := range verr.Errors() {
		if fe.Tag() == "resource" {
			respondError(w, http.StatusNotFound, ErrCodeNotFound, fmt.Sprintf("Unknown resource %q", fe.Value()), nil)
			return false
		}
	}

	respondJSON(w, http.StatusBadRequest, &models.APIResponse{
		Status:   "error",
		Metadata: models.Metadata{Timestamp: time.Now()},
		Error:    verr.ToAPIError(),
	})
	return false
}

// checkQueryLength rejects search strings above the configured length.
func (h *Handler) checkQueryLength(w http.ResponseWriter, query string) bool {
	limit := h.cfg.View.MaxQueryLength
	if limit <= 0 || utf8.RuneCountInString(query) <= limit {
		return true
	}
	respondError(w, http.StatusBadRequest, ErrCodeValidation,
		fmt.Sprintf("q must be at most %d characters", limit), nil)
	return false
}

// intParam reads an integer query parameter. Missing values yield def;
// malformed values are reported so the handler can answer 400.
func intParam(r *http.Request, key string, def int) (int, error) {
	value := strings.TrimSpace(r.URL.Query().Get(key))
	if value == "" {
		return def, nil
	}
	n, err := strconv.Atoi(value)
	if err != nil {
		return 0, fmt.Errorf("%s must be an integer", key)
	}
	return n, nil
}

// intParams reads several integer parameters, answering 400 on the first
// malformed one.
func intParams(w http.ResponseWriter, r *http.Request, params map[string]*int) bool {
	for key, dst := range params {
		n, err := intParam(r, key, *dst)
		if err != nil {
			respondError(w, http.StatusBadRequest, ErrCodeValidation, err.Error(), nil)
			return false
		}
		*dst = n
	}
	return true
}

// parseID parses a record id path parameter. Non-numeric ids become 0, which
// the validator rejects.
func parseID(raw string) int64 {
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil {
		return 0
	}
	return id
}

// decodeBody reads a JSON object body for a write. Numbers stay json.Number
// so ids and prices reach the backend unchanged.
func decodeBody(w http.ResponseWriter, r *http.Request) (map[string]any, bool) {
	dec := json.NewDecoder(io.LimitReader(r.Body, maxBodySize))
	dec.UseNumber()

	var body map[string]any
	if err := dec.Decode(&body); err != nil {
		respondError(w, http.StatusBadRequest, ErrCodeBadRequest, "Request body must be a JSON object", nil)
		return nil, false
	}
	if body == nil {
		respondError(w, http.StatusBadRequest, ErrCodeBadRequest, "Request body must be a JSON object", nil)
		return nil, false
	}
	return body, true
}

// isTruthy reports whether a query or header value confirms something.
func isTruthy(v string) bool {
	b, err := strconv.ParseBool(strings.TrimSpace(v))
	return err == nil && b
}
