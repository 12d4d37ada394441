// Package tables recovers pipe-delimited markdown tables from free text and
// combines them into a single CSV.
package tables

import (
	"encoding/csv"
	"errors"
	"io"
	"strconv"
	"strings"
)

// ErrNoTables is returned when the text contains no pipe-delimited block.
var ErrNoTables = errors.New("no tables found in response")

// Table is a header row plus data rows, every row as wide as the header.
type Table struct {
	Header []string
	Rows   [][]string
}

// Parse splits text on blank lines and turns every block that contains a
// pipe into a Table. The first row is the header; a markdown separator
// row directly under it is dropped. Short rows are padded with empty
// cells and long rows are cut to the header width.
func Parse(text string) []Table {
	text = strings.ReplaceAll(text, "\r\n", "\n")

	var out []Table
	for _, block := range strings.Split(text, "\n\n") {
		if !strings.Contains(block, "|") {
			continue
		}

		var rows [][]string
		for _, line := range strings.Split(block, "\n") {
			if strings.Contains(line, "|") {
				rows = append(rows, splitRow(line))
			}
		}
		if len(rows) == 0 {
			continue
		}

		t := Table{Header: dedupe(rows[0])}
		data := rows[1:]
		if len(data) > 0 && isSeparator(data[0]) {
			data = data[1:]
		}
		for _, row := range data {
			t.Rows = append(t.Rows, fit(row, len(t.Header)))
		}
		out = append(out, t)
	}
	return out
}

// Combine concatenates tables row-wise. Columns are matched by header
// name; the result header is the union of all headers in first-seen
// order and cells a table does not have are left empty.
func Combine(tables []Table) (Table, error) {
	if len(tables) == 0 {
		return Table{}, ErrNoTables
	}

	var combined Table
	index := map[string]int{}
	for _, t := range tables {
		for _, h := range t.Header {
			if _, ok := index[h]; !ok {
				index[h] = len(combined.Header)
				combined.Header = append(combined.Header, h)
			}
		}
	}

	for _, t := range tables {
		for _, row := range t.Rows {
			out := make([]string, len(combined.Header))
			for i, h := range t.Header {
				if i < len(row) {
					out[index[h]] = row[i]
				}
			}
			combined.Rows = append(combined.Rows, out)
		}
	}
	return combined, nil
}

// Extract parses text and combines every table found in it.
func Extract(text string) (Table, error) {
	return Combine(Parse(text))
}

// WriteCSV writes the header followed by every row.
func WriteCSV(w io.Writer, t Table) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(t.Header); err != nil {
		return err
	}
	if err := cw.WriteAll(t.Rows); err != nil {
		return err
	}
	return cw.Error()
}

func splitRow(line string) []string {
	line = strings.TrimSpace(line)
	line = strings.TrimPrefix(line, "|")
	line = strings.TrimSuffix(line, "|")

	cells := strings.Split(line, "|")
	for i := range cells {
		cells[i] = strings.TrimSpace(cells[i])
	}
	return cells
}

func isSeparator(row []string) bool {
	for _, cell := range row {
		if strings.Trim(cell, ":- ") != "" || !strings.Contains(cell, "-") {
			return false
		}
	}
	return len(row) > 0
}

// fit pads or cuts row to width.
func fit(row []string, width int) []string {
	if len(row) >= width {
		return row[:width]
	}
	out := make([]string, width)
	copy(out, row)
	return out
}

// dedupe suffixes repeated header names (".1", ".2", ...) so that columns
// stay addressable by name. A suffix already used by another column is
// skipped.
func dedupe(header []string) []string {
	taken := make(map[string]bool, len(header))
	for _, h := range header {
		taken[h] = true
	}

	seen := map[string]int{}
	out := make([]string, len(header))
	for i, h := range header {
		n := seen[h]
		if n == 0 {
			seen[h] = 1
			out[i] = h
			continue
		}

		name := h + "." + strconv.Itoa(n)
		for taken[name] {
			n++
			name = h + "." + strconv.Itoa(n)
		}
		seen[h] = n + 1
		taken[name] = true
		out[i] = name
	}
	return out
}
