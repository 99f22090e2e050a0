// Shelfmark - Personal Collection Catalogue
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/shelfmark

package api

import (
	"net/http"
	"net/url"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/tomtom215/shelfmark/internal/collection"
	"github.com/tomtom215/shelfmark/internal/models"
	"github.com/tomtom215/shelfmark/internal/view"
)

// listParams are consumed by the list view; everything else in the query
// string is forwarded to the backend.
var listParams = map[string]bool{
	"q": true, "sort": true, "order": true, "page": true, "page_size": true, "owned": true,
}

// backendFilters returns the query parameters the list view does not consume.
func backendFilters(query url.Values) url.Values {
	filters := url.Values{}
	for key, values := range query {
		if !listParams[key] {
			filters[key] = values
		}
	}
	return filters
}

// ListCollection serves the "show more" list view: filter, sort and the
// cumulative window up to page.
func (h *Handler) ListCollection(w http.ResponseWriter, r *http.Request) {
	started := time.Now()
	q := r.URL.Query()
	req := ListRequest{
		Resource: chi.URLParam(r, "resource"),
		Query:    q.Get("q"),
		Sort:     q.Get("sort"),
		Order:    q.Get("order"),
		Page:     1,
		Owned:    q.Get("owned"),
	}
	if !intParams(w, r, map[string]*int{"page": &req.Page, "page_size": &req.PageSize}) ||
		!h.validate(w, &req) || !h.checkQueryLength(w, req.Query) {
		return
	}

	owned, err := collection.ParseOwnedFilter(req.Owned)
	if err != nil {
		respondError(w, http.StatusBadRequest, ErrCodeValidation, err.Error(), nil)
		return
	}

	page, err := h.svc.List(r.Context(), req.Resource, collection.ListQuery{
		Query:    req.Query,
		Sort:     req.Sort,
		Desc:     req.Order == "desc",
		Page:     req.Page,
		PageSize: req.PageSize,
		Owned:    owned,
		Filters:  backendFilters(q),
	})
	if err != nil {
		respondServiceError(w, r, err)
		return
	}

	respondData(w, http.StatusOK, page, started, page.Degraded, &models.PaginationInfo{
		Page:     page.Page,
		PageSize: page.PageSize,
		Visible:  page.Visible,
		Total:    page.Total,
		HasMore:  page.HasMore,
	})
}

// SearchCollection forwards ?q= to the backend's own search.
func (h *Handler) SearchCollection(w http.ResponseWriter, r *http.Request) {
	started := time.Now()
	req := SearchRequest{
		Resource: chi.URLParam(r, "resource"),
		Query:    r.URL.Query().Get("q"),
	}
	if !h.validate(w, &req) || !h.checkQueryLength(w, req.Query) {
		return
	}

	result, err := h.svc.Search(r.Context(), req.Resource, req.Query)
	if err != nil {
		respondServiceError(w, r, err)
		return
	}
	respondData(w, http.StatusOK, result, started, result.Degraded, nil)
}

// Groups partitions the collection by ?by=.
func (h *Handler) Groups(w http.ResponseWriter, r *http.Request) {
	started := time.Now()
	req := GroupsRequest{
		Resource: chi.URLParam(r, "resource"),
		By:       r.URL.Query().Get("by"),
	}
	if !h.validate(w, &req) {
		return
	}

	groups, err := h.svc.Groups(r.Context(), req.Resource, req.By)
	if err != nil {
		respondServiceError(w, r, err)
		return
	}
	respondData(w, http.StatusOK, groups, started, groups.Degraded, nil)
}

// Top ranks groups by average score.
func (h *Handler) Top(w http.ResponseWriter, r *http.Request) {
	started := time.Now()
	q := r.URL.Query()
	req := TopRequest{
		Resource: chi.URLParam(r, "resource"),
		By:       q.Get("by"),
		Score:    q.Get("score"),
	}
	if !intParams(w, r, map[string]*int{"n": &req.N}) || !h.validate(w, &req) {
		return
	}

	top, err := h.svc.Top(r.Context(), req.Resource, req.By, req.Score, req.N)
	if err != nil {
		respondServiceError(w, r, err)
		return
	}
	respondData(w, http.StatusOK, top, started, top.Degraded, nil)
}

// Sample picks random records with a flag set.
func (h *Handler) Sample(w http.ResponseWriter, r *http.Request) {
	started := time.Now()
	req := SampleRequest{
		Resource: chi.URLParam(r, "resource"),
		Flag:     r.URL.Query().Get("flag"),
	}
	if !intParams(w, r, map[string]*int{"n": &req.N}) || !h.validate(w, &req) {
		return
	}

	sample, err := h.svc.Sample(r.Context(), req.Resource, req.Flag, req.N)
	if err != nil {
		respondServiceError(w, r, err)
		return
	}
	respondData(w, http.StatusOK, sample, started, sample.Degraded, nil)
}

// Recent returns the newest records.
func (h *Handler) Recent(w http.ResponseWriter, r *http.Request) {
	started := time.Now()
	req := RecentRequest{
		Resource: chi.URLParam(r, "resource"),
		Field:    r.URL.Query().Get("field"),
	}
	if !intParams(w, r, map[string]*int{"n": &req.N}) || !h.validate(w, &req) {
		return
	}

	recent, err := h.svc.Recent(r.Context(), req.Resource, req.Field, req.N)
	if err != nil {
		respondServiceError(w, r, err)
		return
	}
	respondData(w, http.StatusOK, recent, started, recent.Degraded, nil)
}

// Stats summarises a numeric field and ownership counts.
func (h *Handler) Stats(w http.ResponseWriter, r *http.Request) {
	started := time.Now()
	q := r.URL.Query()
	req := StatsRequest{
		Resource: chi.URLParam(r, "resource"),
		Field:    q.Get("field"),
		Owned:    q.Get("owned"),
	}
	if !h.validate(w, &req) {
		return
	}

	stats, err := h.svc.Stats(r.Context(), req.Resource, req.Field, isTruthy(req.Owned))
	if err != nil {
		respondServiceError(w, r, err)
		return
	}
	respondData(w, http.StatusOK, stats, started, stats.Degraded, nil)
}

// Dashboard returns every shelf of a collection page in one response.
func (h *Handler) Dashboard(w http.ResponseWriter, r *http.Request) {
	started := time.Now()
	req := SearchRequest{Resource: chi.URLParam(r, "resource")}
	if !h.validate(w, &req) {
		return
	}

	dash, err := h.svc.Dashboard(r.Context(), req.Resource)
	if err != nil {
		respondServiceError(w, r, err)
		return
	}
	respondData(w, http.StatusOK, dash, started, dash.Degraded, nil)
}

// HighlightResponse is the body of /api/v1/highlight.
type HighlightResponse struct {
	Segments []view.Segment `json:"segments"`
	Matched  bool           `json:"matched"`
}

// Highlight splits text into matched and unmatched segments for q.
func (h *Handler) Highlight(w http.ResponseWriter, r *http.Request) {
	started := time.Now()
	q := r.URL.Query()
	req := HighlightRequest{Text: q.Get("text"), Query: q.Get("q")}
	if !h.validate(w, &req) || !h.checkQueryLength(w, req.Query) {
		return
	}

	segments := view.Highlight(req.Text, req.Query)
	matched := false
	for _, s := range segments {
		if s.Match {
			matched = true
			break
		}
	}
	respondData(w, http.StatusOK, HighlightResponse{Segments: segments, Matched: matched}, started, false, nil)
}
