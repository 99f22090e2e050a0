// Shelfmark - Personal Collection Catalogue
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/shelfmark

package api

// Request structs are filled from the path and query string by the handlers
// and checked with validation.ValidateStruct. Field names in error messages
// come from the query tag. A failure on the resource tag is answered with 404.
//
// Example usage:
//
//	req := TopRequest{
//	    Resource: chi.URLParam(r, "resource"),
//	    By:       q.Get("by"),
//	}
//	if !h.validate(w, &req) {
//	    return
//	}

// ListRequest holds the parameters of the list view.
//
// Fields:
//   - Query: case-insensitive substring matched against the search fields
//   - Sort: field to sort by (default: the resource's default sort)
//   - Order: asc or desc
//   - Page: cumulative page, 1-based
//   - PageSize: items per page, 0 for the configured default
//   - Owned: all, owned or wishlist
type ListRequest struct {
	Resource string `query:"resource" validate:"required,resource"`
	Query    string `query:"q"`
	Sort     string `query:"sort" validate:"omitempty,fieldname"`
	Order    string `query:"order" validate:"omitempty,oneof=asc desc"`
	Page     int    `query:"page" validate:"gte=1,lte=100000"`
	PageSize int    `query:"page_size" validate:"gte=0,lte=1000"`
	Owned    string `query:"owned" validate:"omitempty,oneof=all owned wishlist"`
}

// SearchRequest holds the parameters of the backend search passthrough.
type SearchRequest struct {
	Resource string `query:"resource" validate:"required,resource"`
	Query    string `query:"q"`
}

// GroupsRequest holds the parameters of the grouping view.
type GroupsRequest struct {
	Resource string `query:"resource" validate:"required,resource"`
	By       string `query:"by" validate:"omitempty,fieldname"`
}

// TopRequest holds the parameters of the top-N ranking.
type TopRequest struct {
	Resource string `query:"resource" validate:"required,resource"`
	By       string `query:"by" validate:"omitempty,fieldname"`
	Score    string `query:"score" validate:"omitempty,fieldname"`
	N        int    `query:"n" validate:"gte=0,lte=100"`
}

// SampleRequest holds the parameters of the random sample. Flag is an alias
// (favourite, watchlist, owned) or a field name.
type SampleRequest struct {
	Resource string `query:"resource" validate:"required,resource"`
	Flag     string `query:"flag" validate:"required,fieldname"`
	N        int    `query:"n" validate:"gte=0,lte=100"`
}

// RecentRequest holds the parameters of the recent additions view.
type RecentRequest struct {
	Resource string `query:"resource" validate:"required,resource"`
	Field    string `query:"field" validate:"omitempty,fieldname"`
	N        int    `query:"n" validate:"gte=0,lte=100"`
}

// StatsRequest holds the parameters of the statistics view.
type StatsRequest struct {
	Resource string `query:"resource" validate:"required,resource"`
	Field    string `query:"field" validate:"omitempty,fieldname"`
	Owned    string `query:"owned" validate:"omitempty,boolean"`
}

// RecordRequest addresses one record.
type RecordRequest struct {
	Resource string `query:"resource" validate:"required,resource"`
	ID       int64  `query:"id" validate:"gte=1"`
}

// HighlightRequest holds the parameters of the highlight endpoint.
type HighlightRequest struct {
	Text  string `query:"text" validate:"required"`
	Query string `query:"q"`
}
