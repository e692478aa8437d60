// Package ui renders colored terminal output for the testbench CLI.
package ui

import (
	"fmt"
	"io"
	"strings"
	"unicode/utf8"

	"github.com/fatih/color"
)

// Table renders aligned columns with a bold header and a rule beneath it.
type Table struct {
	writer   io.Writer
	headers  []string
	rows     [][]string
	colorize map[int]func(string) *color.Color
	noColor  bool
}

// NewTable creates a new table with the given headers
func NewTable(w io.Writer, noColor bool, headers ...string) *Table {
	return &Table{
		writer:   w,
		headers:  headers,
		colorize: make(map[int]func(string) *color.Color),
		noColor:  noColor,
	}
}

// ColorColumn colors every cell of column col with the color pick returns
// for its value. A nil color leaves the cell plain.
func (t *Table) ColorColumn(col int, pick func(value string) *color.Color) {
	t.colorize[col] = pick
}

// AddRow adds a row to the table. Cells beyond the header count are dropped.
func (t *Table) AddRow(cells ...string) {
	t.rows = append(t.rows, cells)
}

// Len is the number of rows added.
func (t *Table) Len() int {
	return len(t.rows)
}

// Render renders the table to the writer
func (t *Table) Render() {
	if len(t.headers) == 0 {
		return
	}

	widths := make([]int, len(t.headers))
	for i, header := range t.headers {
		widths[i] = utf8.RuneCountInString(header)
	}
	for _, row := range t.rows {
		for i, cell := range row {
			if i < len(widths) {
				widths[i] = max(widths[i], utf8.RuneCountInString(cell))
			}
		}
	}

	header := t.color(color.Bold, color.FgCyan)
	for i, h := range t.headers {
		header.Fprint(t.writer, t.pad(h, widths[i], i))
	}
	fmt.Fprintln(t.writer)

	rule := t.color(color.FgHiBlack)
	for i, width := range widths {
		rule.Fprint(t.writer, t.pad(strings.Repeat("─", width), width, i))
	}
	fmt.Fprintln(t.writer)

	for _, row := range t.rows {
		for i := range widths {
			cell := ""
			if i < len(row) {
				cell = row[i]
			}
			text := t.pad(cell, widths[i], i)
			if pick, ok := t.colorize[i]; ok {
				if c := pick(cell); c != nil {
					if t.noColor {
						c.DisableColor()
					}
					c.Fprint(t.writer, text)
					continue
				}
			}
			fmt.Fprint(t.writer, text)
		}
		fmt.Fprintln(t.writer)
	}
}

// pad right-pads s to width and appends the column gap except after the
// last column, so trailing whitespace never reaches the terminal.
func (t *Table) pad(s string, width, col int) string {
	if col == len(t.headers)-1 {
		return s
	}
	if n := utf8.RuneCountInString(s); n < width {
		s += strings.Repeat(" ", width-n)
	}
	return s + "  "
}

func (t *Table) color(attrs ...color.Attribute) *color.Color {
	c := color.New(attrs...)
	if t.noColor {
		c.DisableColor()
	}
	return c
}
