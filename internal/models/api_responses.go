// Shelfmark - Personal Collection Catalogue
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/shelfmark

package models

import (
	"time"
)

// APIResponse represents a standardized API response wrapper used by all HTTP endpoints.
// It provides consistent structure for both successful and error responses, with metadata
// for observability.
//
// Status field values:
//   - "success": Request completed successfully, see Data field
//   - "error": Request failed, see Error field for details
//
// Example successful response:
//
//	{
//	  "status": "success",
//	  "data": {"items": [...], "total": 45},
//	  "metadata": {
//	    "timestamp": "2026-10-19T12:00:00Z",
//	    "query_time_ms": 12,
//	    "pagination": {"page": 1, "page_size": 20, "visible": 20, "total": 45, "has_more": true}
//	  }
//	}
//
// Example degraded response (backend unreachable, empty view returned):
//
//	{
//	  "status": "success",
//	  "data": {"items": [], "total": 0},
//	  "metadata": {"timestamp": "2026-10-19T12:00:00Z", "degraded": true}
//	}
type APIResponse struct {
	Status   string      `json:"status"`
	Data     interface{} `json:"data"`
	Metadata Metadata    `json:"metadata"`
	Error    *APIError   `json:"error,omitempty"`
}

// Metadata contains response metadata for observability.
//
// Fields:
//   - Timestamp: Server time when response was generated (RFC3339 format)
//   - QueryTimeMS: Time spent fetching and shaping the view, in milliseconds
//   - Degraded: The backend fetch failed and an empty collection was substituted
//   - Pagination: Window information for list views (omitted elsewhere)
type Metadata struct {
	Timestamp   time.Time       `json:"timestamp"`
	QueryTimeMS int64           `json:"query_time_ms,omitempty"`
	Degraded    bool            `json:"degraded,omitempty"`
	Pagination  *PaginationInfo `json:"pagination,omitempty"`
}

// APIError represents an error response with structured error details.
//
// Common error codes:
//   - BAD_REQUEST: Malformed request (bad JSON, bad id)
//   - VALIDATION_ERROR: Invalid input parameters
//   - NOT_FOUND: Resource type or record doesn't exist
//   - CONFIRMATION_REQUIRED: Destructive operation sent without confirmation
//   - EXTERNAL_SERVICE_FAILED: The catalogue backend rejected or failed the call
//   - RATE_LIMIT_EXCEEDED: Too many requests
//   - INTERNAL_ERROR: Unexpected server failure
type APIError struct {
	Code    string                 `json:"code"`
	Message string                 `json:"message"`
	Details map[string]interface{} `json:"details,omitempty"`
}

// PaginationInfo describes a "show more" window over a filtered, sorted sequence.
// The window always starts at the first item: Visible is min(Page*PageSize, Total).
type PaginationInfo struct {
	Page     int  `json:"page"`
	PageSize int  `json:"page_size"`
	Visible  int  `json:"visible"`
	Total    int  `json:"total"`
	HasMore  bool `json:"has_more"`
}

// HealthStatus is returned by the readiness probe.
type HealthStatus struct {
	Status         string    `json:"status"`
	Version        string    `json:"version"`
	BackendURL     string    `json:"backend_url"`
	BackendHealthy bool      `json:"backend_healthy"`
	BreakerState   string    `json:"breaker_state,omitempty"`
	Uptime         float64   `json:"uptime_seconds"`
	CheckedAt      time.Time `json:"checked_at"`
}
