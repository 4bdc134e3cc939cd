// SPDX-License-Identifier: MIT
// Package strutil holds small string-list helpers shared across packages.
package strutil

import "strings"

// SplitCSV splits a comma-separated list, trimming surrounding whitespace
// and dropping empty entries.
func SplitCSV(raw string) []string {
	var out []string
	for _, part := range strings.Split(raw, ",") {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		out = append(out, part)
	}
	return out
}

// SplitList splits on commas and any run of whitespace, trimming entries
// and dropping empties. Used for multi-account variables that accept both
// "a,b" and "a b" forms.
func SplitList(raw string) []string {
	var out []string
	for _, part := range strings.FieldsFunc(raw, func(r rune) bool {
		return r == ',' || r == ' ' || r == '\t' || r == '\n' || r == '\r'
	}) {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		out = append(out, part)
	}
	return out
}

// SplitLines splits newline-delimited content, trimming entries and
// dropping blanks and "#" comment lines. Used for account files.
func SplitLines(raw string) []string {
	var out []string
	for _, line := range strings.Split(raw, "\n") {
		line = strings.TrimSpace(line)
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		out = append(out, line)
	}
	return out
}
