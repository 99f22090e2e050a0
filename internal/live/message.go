// Shelfmark - Personal Collection Catalogue
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/shelfmark

package live

import (
	"github.com/tomtom215/shelfmark/internal/models"
)

// Client to server message types.
const (
	MessageTypeSearch = "search"
	MessageTypeMore   = "more"
	MessageTypeReset  = "reset"
	MessageTypePing   = "ping"
)

// Server to client message types.
const (
	MessageTypeResults           = "results"
	MessageTypeCollectionChanged = "collection_changed"
	MessageTypeError             = "error"
	MessageTypePong              = "pong"
)

// Error codes carried in error messages.
const (
	ErrCodeBadMessage      = "bad_message"
	ErrCodeUnknownType     = "unknown_type"
	ErrCodeInvalidSearch   = "invalid_search"
	ErrCodeNoSearch        = "no_search"
	ErrCodeSearchFailed    = "search_failed"
	ErrCodeSearchTimeout   = "search_timeout"
	ErrCodeUnknownResource = "unknown_resource"
)

// Message is one server to client frame.
type Message struct {
	Type string `json:"type"`
	Data any    `json:"data,omitempty"`
}

// ClientMessage is one client to server frame. Only search uses the fields.
//
//	{"type":"search","resource":"films","query":"nolan","sort":"rating","desc":true}
//	{"type":"more"}
type ClientMessage struct {
	Type     string `json:"type"`
	Resource string `json:"resource,omitempty"`
	Query    string `json:"query,omitempty"`
	Sort     string `json:"sort,omitempty"`
	Desc     bool   `json:"desc,omitempty"`
	Owned    string `json:"owned,omitempty"`
}

// ResultsData is the visible window of the session's current search.
type ResultsData struct {
	Generation uint64          `json:"generation"`
	Resource   string          `json:"resource"`
	Query      string          `json:"query"`
	Items      []models.Record `json:"items"`
	Total      int             `json:"total"`
	Visible    int             `json:"visible"`
	HasMore    bool            `json:"has_more"`
	Degraded   bool            `json:"degraded,omitempty"`
}

// CollectionChangedData tells clients to re-query a resource.
type CollectionChangedData struct {
	Resource string `json:"resource"`
}

// ErrorData describes a rejected message or a failed search.
type ErrorData struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}
