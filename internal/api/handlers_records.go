// Shelfmark - Personal Collection Catalogue
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/shelfmark

package api

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/tomtom215/shelfmark/internal/collection"
	"github.com/tomtom215/shelfmark/internal/metrics"
)

// recordRequest reads {resource} and {id} from the path.
func recordRequest(r *http.Request) RecordRequest {
	return RecordRequest{
		Resource: chi.URLParam(r, "resource"),
		ID:       parseID(chi.URLParam(r, "id")),
	}
}

// GetRecord returns one record from the backend.
func (h *Handler) GetRecord(w http.ResponseWriter, r *http.Request) {
	started := time.Now()
	req := recordRequest(r)
	if !h.validate(w, &req) {
		return
	}

	rec, err := h.svc.Get(r.Context(), req.Resource, req.ID)
	if err != nil {
		respondServiceError(w, r, err)
		return
	}
	respondData(w, http.StatusOK, rec, started, false, nil)
}

// CreateRecord forwards a new record to the backend and returns it with the
// re-fetched collection.
func (h *Handler) CreateRecord(w http.ResponseWriter, r *http.Request) {
	started := time.Now()
	req := SearchRequest{Resource: chi.URLParam(r, "resource")}
	if !h.validate(w, &req) {
		return
	}
	body, ok := decodeBody(w, r)
	if !ok {
		return
	}

	result, err := h.svc.Create(r.Context(), req.Resource, body)
	if err != nil {
		respondServiceError(w, r, err)
		return
	}
	respondData(w, http.StatusCreated, result, started, result.Collection.Degraded, nil)
}

// UpdateRecord replaces a record.
func (h *Handler) UpdateRecord(w http.ResponseWriter, r *http.Request) {
	h.writeRecord(w, r, h.svc.Update)
}

// PatchRecord updates some fields of a record.
func (h *Handler) PatchRecord(w http.ResponseWriter, r *http.Request) {
	h.writeRecord(w, r, h.svc.Patch)
}

// recordWriter is Service.Update or Service.Patch.
type recordWriter func(ctx context.Context, resource string, id int64, body map[string]any) (collection.MutationResult, error)

func (h *Handler) writeRecord(w http.ResponseWriter, r *http.Request, write recordWriter) {
	started := time.Now()
	req := recordRequest(r)
	if !h.validate(w, &req) {
		return
	}
	body, ok := decodeBody(w, r)
	if !ok {
		return
	}

	result, err := write(r.Context(), req.Resource, req.ID, body)
	if err != nil {
		respondServiceError(w, r, err)
		return
	}
	respondData(w, http.StatusOK, result, started, result.Collection.Degraded, nil)
}

// DeleteRecord removes a record. Without ?confirm=true or the
// X-Confirm-Delete header it answers 409 and the backend is not contacted.
func (h *Handler) DeleteRecord(w http.ResponseWriter, r *http.Request) {
	started := time.Now()
	req := recordRequest(r)
	if !h.validate(w, &req) {
		return
	}

	confirmed := isTruthy(r.URL.Query().Get("confirm")) || isTruthy(r.Header.Get(ConfirmDeleteHeader))
	result, err := h.svc.Delete(r.Context(), req.Resource, req.ID, confirmed)
	if err != nil {
		if errors.Is(err, collection.ErrConfirmationRequired) {
			metrics.DeletesDeclined.WithLabelValues("api").Inc()
		}
		respondServiceError(w, r, err)
		return
	}
	respondData(w, http.StatusOK, result, started, result.Collection.Degraded, nil)
}
