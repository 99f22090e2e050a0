// Shelfmark - Personal Collection Catalogue
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/shelfmark

package main

import (
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"

	"github.com/tomtom215/shelfmark/internal/models"
	"github.com/tomtom215/shelfmark/internal/view"
)

var (
	accent = lipgloss.Color("#8BC34A")
	muted  = lipgloss.Color("#6B7280")
	warn   = lipgloss.Color("#FFC107")
	danger = lipgloss.Color("#E53935")
)

// styles are bound to the output's renderer so colour is dropped when the
// output is not a terminal.
type styles struct {
	renderer  *lipgloss.Renderer
	title     lipgloss.Style
	header    lipgloss.Style
	cell      lipgloss.Style
	match     lipgloss.Style
	dim       lipgloss.Style
	warning   lipgloss.Style
	errorText lipgloss.Style
}

func newStyles(out io.Writer) styles {
	r := lipgloss.NewRenderer(out)
	return styles{
		renderer:  r,
		title:     r.NewStyle().Bold(true).Foreground(accent),
		header:    r.NewStyle().Bold(true).Padding(0, 1),
		cell:      r.NewStyle().Padding(0, 1),
		match:     r.NewStyle().Bold(true).Underline(true).Foreground(accent),
		dim:       r.NewStyle().Foreground(muted),
		warning:   r.NewStyle().Foreground(warn),
		errorText: r.NewStyle().Bold(true).Foreground(danger),
	}
}

// highlight renders text with every match of query emphasised.
func (s styles) highlight(text, query string) string {
	var b strings.Builder
	for _, seg := range view.Highlight(text, query) {
		if seg.Match {
			b.WriteString(s.match.Render(seg.Text))
			continue
		}
		b.WriteString(seg.Text)
	}
	return b.String()
}

func (s styles) table(headers []string, rows [][]string) string {
	return table.New().
		Border(lipgloss.RoundedBorder()).
		BorderStyle(s.dim).
		Headers(headers...).
		Rows(rows...).
		StyleFunc(func(row, _ int) lipgloss.Style {
			if row == table.HeaderRow {
				return s.header
			}
			return s.cell
		}).
		String()
}

// recordColumns picks the columns shown for a resource: id, the primary
// search field, the rank key and the rating.
func recordColumns(schema models.Schema) []string {
	cols := []string{"id"}
	seen := map[string]bool{"id": true}
	add := func(f string) {
		if f != "" && !seen[f] {
			seen[f] = true
			cols = append(cols, f)
		}
	}
	if len(schema.SearchFields) > 0 {
		add(schema.SearchFields[0])
	}
	add(schema.RankKey)
	add(schema.RatingField)
	return cols
}

// recordTable renders recs. Text columns highlight query.
func (s styles) recordTable(schema models.Schema, recs []models.Record, query string) string {
	cols := recordColumns(schema)
	rows := make([][]string, 0, len(recs))
	for _, rec := range recs {
		row := make([]string, len(cols))
		for i, col := range cols {
			switch {
			case col == "id":
				row[i] = strconv.FormatInt(rec.ID, 10)
			case col == schema.RatingField:
				if n, ok := rec.Number(col); ok {
					row[i] = strconv.FormatFloat(n, 'f', -1, 64)
				} else {
					row[i] = s.dim.Render("-")
				}
			default:
				row[i] = s.highlight(strings.Join(rec.Strings(col), ", "), query)
			}
		}
		rows = append(rows, row)
	}
	return s.table(cols, rows)
}

func (s styles) heading(w io.Writer, format string, args ...any) {
	fmt.Fprintln(w, s.title.Render(fmt.Sprintf(format, args...)))
}

// degradedNotice warns that the backend could not be reached.
func (s styles) degradedNotice(w io.Writer, degraded bool) {
	if degraded {
		fmt.Fprintln(w, s.warning.Render("warning: backend unavailable, results may be incomplete"))
	}
}
