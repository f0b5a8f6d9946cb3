package cli

import (
	"fmt"
	"io"
	"os"
	"regexp"
	"strings"
	"unicode/utf8"

	"golang.org/x/term"
)

const columnGap = 2

// Table prints column-aligned rows. Rows are buffered until Flush, which
// sizes columns by visible width (ANSI colors excluded) and, on a terminal,
// wraps the widest columns so lines fit. Empty tables produce no output.
type Table struct {
	out     io.Writer
	headers []string
	rows    [][]string
	prefix  string
	width   int
}

// NewTable creates a table on stdout with the given column headers.
func NewTable(headers ...string) *Table {
	return NewTableTo(os.Stdout, headers...)
}

// NewTableTo creates a table writing to w.
func NewTableTo(w io.Writer, headers ...string) *Table {
	return &Table{out: w, headers: headers, width: terminalWidth(w)}
}

// WithPrefix sets a string prepended to each line (headers, divider, rows).
// Useful for indenting sub-tables within larger output.
func (t *Table) WithPrefix(prefix string) *Table {
	t.prefix = prefix
	return t
}

// WithWidth caps the line width; 0 disables wrapping.
func (t *Table) WithWidth(width int) *Table {
	t.width = width
	return t
}

// Row buffers a row. Missing trailing cells print empty.
func (t *Table) Row(values ...string) {
	t.rows = append(t.rows, values)
}

// Flush writes the table. If no rows were added, nothing is printed.
func (t *Table) Flush() {
	if len(t.rows) == 0 {
		return
	}

	cols := len(t.headers)
	for _, r := range t.rows {
		cols = max(cols, len(r))
	}
	headers := pad(t.headers, cols)
	widths := make([]int, cols)
	for i, h := range headers {
		widths[i] = visualLen(h)
	}
	for _, r := range t.rows {
		for i, c := range r {
			widths[i] = max(widths[i], visualLen(c))
		}
	}
	if t.width > 0 {
		widths = capWidths(widths, headers, t.width, visualLen(t.prefix))
	}

	dividers := make([]string, cols)
	for i, h := range headers {
		dividers[i] = strings.Repeat("-", visualLen(h))
	}
	t.line(headers, widths)
	t.line(dividers, widths)
	for _, r := range t.rows {
		r = pad(r, cols)
		wrapped := make([][]string, cols)
		height := 1
		for i, c := range r {
			wrapped[i] = wrapCell(c, widths[i])
			height = max(height, len(wrapped[i]))
		}
		for j := 0; j < height; j++ {
			cells := make([]string, cols)
			for i := range wrapped {
				if j < len(wrapped[i]) {
					cells[i] = wrapped[i][j]
				}
			}
			t.line(cells, widths)
		}
	}
	t.rows = nil
}

func (t *Table) line(cells []string, widths []int) {
	var b strings.Builder
	b.WriteString(t.prefix)
	for i, c := range cells {
		b.WriteString(c)
		if i < len(cells)-1 {
			b.WriteString(strings.Repeat(" ", max(0, widths[i]-visualLen(c))+columnGap))
		}
	}
	fmt.Fprintln(t.out, strings.TrimRight(b.String(), " "))
}

func pad(values []string, n int) []string {
	if len(values) >= n {
		return values
	}
	out := make([]string, n)
	copy(out, values)
	return out
}

// capWidths shrinks the widest columns, one cell at a time, until the line
// fits in termWidth. No column shrinks below its header width.
func capWidths(widths []int, headers []string, termWidth, prefix int) []int {
	out := append([]int(nil), widths...)
	total := prefix + columnGap*(len(out)-1)
	for _, w := range out {
		total += w
	}
	for total > termWidth {
		widest := -1
		for i, w := range out {
			if w > visualLen(headers[i]) && (widest < 0 || w > out[widest]) {
				widest = i
			}
		}
		if widest < 0 {
			break
		}
		out[widest]--
		total--
	}
	return out
}

var ansiEscape = regexp.MustCompile(`\x1b\[[0-9;]*m`)

// visualLen is the printed width of s: runes, ignoring ANSI color codes.
func visualLen(s string) int {
	return utf8.RuneCountInString(ansiEscape.ReplaceAllString(s, ""))
}

// wrapCell splits s into lines of at most width runes, breaking at spaces
// and hard-breaking longer words. A cell that fits is returned unchanged;
// a wrapped cell loses its colors.
func wrapCell(s string, width int) []string {
	if width <= 0 || visualLen(s) <= width {
		return []string{s}
	}

	var lines []string
	var cur []rune
	for _, word := range strings.Fields(ansiEscape.ReplaceAllString(s, "")) {
		w := []rune(word)
		switch {
		case len(cur) == 0:
		case len(cur)+1+len(w) <= width:
			cur = append(cur, ' ')
			cur = append(cur, w...)
			continue
		default:
			lines = append(lines, string(cur))
		}
		for len(w) > width {
			lines = append(lines, string(w[:width]))
			w = w[width:]
		}
		cur = w
	}
	if len(cur) > 0 || len(lines) == 0 {
		lines = append(lines, string(cur))
	}
	return lines
}

func terminalWidth(w io.Writer) int {
	f, ok := w.(*os.File)
	if !ok || !term.IsTerminal(int(f.Fd())) {
		return 0
	}
	width, _, err := term.GetSize(int(f.Fd()))
	if err != nil {
		return 0
	}
	return width
}
