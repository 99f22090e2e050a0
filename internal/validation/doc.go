// Shelfmark - Personal Collection Catalogue
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/shelfmark

// Package validation provides struct validation using go-playground/validator v10.
//
// This package wraps the go-playground/validator library to provide a thread-safe
// singleton validator instance with Shelfmark's custom tags and user-friendly error
// messages. Validation failures convert directly to the API error envelope.
//
// # Custom Tags
//
//   - resource: the value names a registered resource type
//   - fieldname: the value is a plausible record field name, used for the
//     sort, group, score and date parameters before they reach the view engine
//
// # Quick Start
//
//	type TopRequest struct {
//	    Resource string `query:"resource" validate:"required,resource"`
//	    By       string `query:"by" validate:"omitempty,fieldname"`
//	    N        int    `query:"n" validate:"min=1,max=50"`
//	}
//
//	if verr := validation.ValidateStruct(&req); verr != nil {
//	    apiErr := verr.ToAPIError()
//	    respondError(w, http.StatusBadRequest, apiErr.Code, apiErr.Message, apiErr.Details)
//	    return
//	}
//
// Error messages use the `query` tag (falling back to `json`) as the field
// name, so a client sees "page_size must be at most 100" rather than a Go
// struct field name.
//
// # Thread Safety
//
// GetValidator initializes the validator once; the instance caches struct
// metadata and is safe for concurrent use.
package validation
