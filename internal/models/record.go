// Shelfmark - Personal Collection Catalogue
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/shelfmark

package models

import (
	"fmt"
	"math"
	"strconv"
	"strings"
	"time"

	"github.com/goccy/go-json"
)

// UnknownKey is the group key used for records without a value for the grouping field.
const UnknownKey = "Unknown"

// Record is a single catalogued item (a film, a book, a watch, ...) as returned
// by the backend. ID is assigned by the backend; every other attribute lives in
// Fields exactly as it was decoded from JSON.
//
// Records are treated as immutable: view operations read them and build new
// slices, they never write to Fields.
//
// The backend is loose about types, so numeric attributes may arrive as JSON
// numbers or as strings ("12.50"). The accessors below coerce on read and never
// fail: an absent or malformed value is reported as missing.
type Record struct {
	ID     int64
	Fields map[string]any
}

// NewRecord builds a record from an id and a field map. The map is copied.
func NewRecord(id int64, fields map[string]any) Record {
	copied := make(map[string]any, len(fields))
	for k, v := range fields {
		if k == "id" {
			continue
		}
		copied[k] = v
	}
	return Record{ID: id, Fields: copied}
}

// RecordID implements view.Identified.
func (r Record) RecordID() int64 {
	return r.ID
}

// Raw returns the undecoded field value.
func (r Record) Raw(field string) (any, bool) {
	if field == "id" {
		return r.ID, true
	}
	v, ok := r.Fields[field]
	if !ok || v == nil {
		return nil, false
	}
	return v, true
}

// Strings returns the textual values of a field: the string itself, or the
// string elements of an array field. Non-text values yield nil.
func (r Record) Strings(field string) []string {
	v, ok := r.Raw(field)
	if !ok {
		return nil
	}
	switch val := v.(type) {
	case string:
		return []string{val}
	case []string:
		return val
	case []any:
		out := make([]string, 0, len(val))
		for _, elem := range val {
			if s, ok := elem.(string); ok {
				out = append(out, s)
			}
		}
		return out
	default:
		return nil
	}
}

// String returns the first textual value of a field, or "".
func (r Record) String(field string) string {
	if values := r.Strings(field); len(values) > 0 {
		return values[0]
	}
	return ""
}

// Number returns a field as float64. Numeric strings are parsed; absent, null,
// empty and unparsable values report false.
func (r Record) Number(field string) (float64, bool) {
	v, ok := r.Raw(field)
	if !ok {
		return 0, false
	}
	return toFloat(v)
}

// NumberOrZero is the statistics coercion: missing or malformed numbers count as 0.
func (r Record) NumberOrZero(field string) float64 {
	n, _ := r.Number(field)
	return n
}

// Bool reports whether a field is set to true. Strings such as "true" or "1"
// are accepted; anything else is false.
func (r Record) Bool(field string) bool {
	v, ok := r.Raw(field)
	if !ok {
		return false
	}
	switch val := v.(type) {
	case bool:
		return val
	case string:
		b, err := strconv.ParseBool(strings.TrimSpace(val))
		return err == nil && b
	default:
		n, ok := toFloat(v)
		return ok && n != 0
	}
}

// dateLayouts are tried in order when decoding date fields.
var dateLayouts = []string{
	time.RFC3339Nano,
	time.RFC3339,
	"2006-01-02T15:04:05",
	"2006-01-02",
}

// Time returns a date field. RFC 3339 timestamps and YYYY-MM-DD dates are accepted.
func (r Record) Time(field string) (time.Time, bool) {
	v, ok := r.Raw(field)
	if !ok {
		return time.Time{}, false
	}
	switch val := v.(type) {
	case time.Time:
		return val, !val.IsZero()
	case string:
		s := strings.TrimSpace(val)
		if s == "" {
			return time.Time{}, false
		}
		for _, layout := range dateLayouts {
			if t, err := time.Parse(layout, s); err == nil {
				return t, true
			}
		}
	}
	return time.Time{}, false
}

// Key returns the group key of a field. Missing or blank values map to UnknownKey.
// Array fields use their first element.
func (r Record) Key(field string) string {
	v, ok := r.Raw(field)
	if !ok {
		return UnknownKey
	}
	var key string
	switch val := v.(type) {
	case string:
		key = val
	case []any, []string:
		key = r.String(field)
	case bool:
		key = strconv.FormatBool(val)
	default:
		if n, ok := toFloat(val); ok {
			key = strconv.FormatFloat(n, 'f', -1, 64)
		}
	}
	key = strings.TrimSpace(key)
	if key == "" {
		return UnknownKey
	}
	return key
}

// Has reports whether the field is present and non-null.
func (r Record) Has(field string) bool {
	_, ok := r.Raw(field)
	return ok
}

// MarshalJSON encodes the record as a flat object with an "id" key.
func (r Record) MarshalJSON() ([]byte, error) {
	flat := make(map[string]any, len(r.Fields)+1)
	for k, v := range r.Fields {
		flat[k] = v
	}
	flat["id"] = r.ID
	return json.Marshal(flat)
}

// UnmarshalJSON decodes a flat backend object. A missing id decodes as 0; an
// id that is present but not an integer is an error.
func (r *Record) UnmarshalJSON(data []byte) error {
	var flat map[string]any
	if err := json.Unmarshal(data, &flat); err != nil {
		return err
	}
	var id int64
	if raw, ok := flat["id"]; ok && raw != nil {
		n, ok := toFloat(raw)
		if !ok || n != math.Trunc(n) {
			return fmt.Errorf("record id %v is not an integer", raw)
		}
		id = int64(n)
	}
	*r = NewRecord(id, flat)
	return nil
}

// IDs returns the ids of records in order.
func IDs(records []Record) []int64 {
	ids := make([]int64, len(records))
	for i, rec := range records {
		ids[i] = rec.ID
	}
	return ids
}

type floater interface {
	Float64() (float64, error)
}

func toFloat(v any) (float64, bool) {
	var f float64
	switch val := v.(type) {
	case float64:
		f = val
	case float32:
		f = float64(val)
	case int:
		f = float64(val)
	case int32:
		f = float64(val)
	case int64:
		f = float64(val)
	case uint:
		f = float64(val)
	case uint32:
		f = float64(val)
	case uint64:
		f = float64(val)
	case floater:
		parsed, err := val.Float64()
		if err != nil {
			return 0, false
		}
		f = parsed
	case string:
		s := strings.TrimSpace(val)
		if s == "" {
			return 0, false
		}
		parsed, err := strconv.ParseFloat(s, 64)
		if err != nil {
			return 0, false
		}
		f = parsed
	default:
		return 0, false
	}
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return 0, false
	}
	return f, true
}
