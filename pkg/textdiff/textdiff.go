// Package textdiff compares free-text command output against expected text,
// line by line, ignoring differences in whitespace.
package textdiff

import "strings"

// Entry is one line position where the normalized actual output disagrees
// with the normalized expected text. Both sides keep their original text for
// display; a side that ran out of lines is the empty string.
type Entry struct {
	Actual   string `json:"actual" yaml:"actual"`
	Expected string `json:"expected" yaml:"expected"`
}

// Normalize collapses every run of whitespace in line to a single space and
// trims both ends. The result is only a comparison key.
func Normalize(line string) string {
	return strings.Join(strings.Fields(line), " ")
}

// Diff aligns actualLines with expectedText split on newlines, position by
// position, padding the shorter side with empty lines. It returns one Entry
// per mismatched position, in order; an empty result means a full match.
//
// Alignment is purely positional: an inserted or deleted line shifts every
// later comparison.
func Diff(actualLines []string, expectedText string) []Entry {
	expectedLines := strings.Split(expectedText, "\n")

	n := max(len(actualLines), len(expectedLines))
	var diffs []Entry
	for i := 0; i < n; i++ {
		a := lineAt(actualLines, i)
		e := lineAt(expectedLines, i)
		if Normalize(a) != Normalize(e) {
			diffs = append(diffs, Entry{Actual: a, Expected: e})
		}
	}
	return diffs
}

// Contains reports whether the whitespace-normalized expected text occurs
// anywhere in the whitespace-normalized actual output. Empty expected text
// is always contained.
func Contains(actualLines []string, expectedText string) bool {
	expected := Normalize(expectedText)
	if expected == "" {
		return true
	}
	return strings.Contains(Normalize(strings.Join(actualLines, "\n")), expected)
}

// SplitLines splits raw command output into lines, dropping the carriage
// return of CRLF line endings.
func SplitLines(raw string) []string {
	if raw == "" {
		return nil
	}
	lines := strings.Split(raw, "\n")
	for i, l := range lines {
		lines[i] = strings.TrimSuffix(l, "\r")
	}
	return lines
}

func lineAt(lines []string, i int) string {
	if i < len(lines) {
		return lines[i]
	}
	return ""
}
