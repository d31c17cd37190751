// Package reporting renders run results into board-ready markdown.
package reporting

import (
	"fmt"
	"strings"
)

// Table is a minimal markdown table builder so the report has no dependency
// on an external renderer.
type Table struct {
	headers []string
	rows    [][]string
}

// NewTable starts a table with the given column headers.
func NewTable(headers ...string) *Table {
	return &Table{headers: headers}
}

// AddRow appends one row. Cells are rendered as given.
func (t *Table) AddRow(cells ...string) *Table {
	t.rows = append(t.rows, cells)
	return t
}

// Render serializes the table as GitHub-flavored markdown.
func (t *Table) Render() string {
	var b strings.Builder
	b.WriteString("| " + strings.Join(t.headers, " | ") + " |\n")
	seps := make([]string, len(t.headers))
	for i := range seps {
		seps[i] = "---"
	}
	b.WriteString("| " + strings.Join(seps, " | ") + " |\n")
	for _, row := range t.rows {
		b.WriteString("| " + strings.Join(row, " | ") + " |\n")
	}
	return b.String()
}

// Num formats a float with thousands separators and two decimals.
func Num(v float64) string {
	return group(fmt.Sprintf("%.2f", v))
}

// Num0 formats a float with thousands separators and no decimals.
func Num0(v float64) string {
	return group(fmt.Sprintf("%.0f", v))
}

// Pct renders a ratio as a percentage with two decimals.
func Pct(ratio float64) string {
	return fmt.Sprintf("%.2f%%", ratio*100)
}

// group inserts thousands separators into the integer part of a formatted
// decimal string.
func group(s string) string {
	neg := strings.HasPrefix(s, "-")
	if neg {
		s = s[1:]
	}
	intPart, fracPart := s, ""
	if i := strings.IndexByte(s, '.'); i >= 0 {
		intPart, fracPart = s[:i], s[i:]
	}

	var b strings.Builder
	for i, r := range intPart {
		if i > 0 && (len(intPart)-i)%3 == 0 {
			b.WriteByte(',')
		}
		b.WriteRune(r)
	}
	out := b.String() + fracPart
	if neg {
		out = "-" + out
	}
	return out
}
