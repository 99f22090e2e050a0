// Shelfmark - Personal Collection Catalogue
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/shelfmark

package logging

import (
	"fmt"
	"strings"
)

// maxLoggedValue bounds user-supplied strings written to logs.
const maxLoggedValue = 200

// SanitizeValue escapes control characters and truncates s so that
// user-supplied input (search queries, origins) cannot forge log lines.
func SanitizeValue(s string) string {
	var b strings.Builder
	b.Grow(len(s))
	n := 0
	for _, r := range s {
		if n >= maxLoggedValue {
			b.WriteString("...")
			break
		}
		if r < 0x20 || r == 0x7F {
			fmt.Fprintf(&b, "\\x%02x", r)
		} else {
			b.WriteRune(r)
		}
		n++
	}
	return b.String()
}
