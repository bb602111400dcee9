package manifest

import (
	"strings"

	"github.com/sergi/go-diff/diffmatchpatch"
)

// DiffKind marks a line of a diff.
type DiffKind int

const (
	DiffContext DiffKind = iota
	DiffAdded
	DiffRemoved
)

// DiffLine is one line of a line-oriented diff.
type DiffLine struct {
	Kind DiffKind
	Text string
}

// String renders the line with a unified-diff prefix.
func (d DiffLine) String() string {
	switch d.Kind {
	case DiffAdded:
		return "+" + d.Text
	case DiffRemoved:
		return "-" + d.Text
	default:
		return " " + d.Text
	}
}

// LineDiff compares two documents line by line.
func LineDiff(before, after string) []DiffLine {
	dmp := diffmatchpatch.New()
	a, b, lines := dmp.DiffLinesToChars(before, after)
	diffs := dmp.DiffMain(a, b, false)
	diffs = dmp.DiffCharsToLines(diffs, lines)

	var out []DiffLine
	for _, d := range diffs {
		kind := DiffContext
		switch d.Type {
		case diffmatchpatch.DiffInsert:
			kind = DiffAdded
		case diffmatchpatch.DiffDelete:
			kind = DiffRemoved
		}
		parts := strings.Split(d.Text, "\n")
		for i, line := range parts {
			// Skip empty trailing element from split
			if i == len(parts)-1 && line == "" {
				continue
			}
			out = append(out, DiffLine{Kind: kind, Text: line})
		}
	}
	return out
}

// HasChanges reports whether a diff contains any added or removed line.
func HasChanges(lines []DiffLine) bool {
	for _, l := range lines {
		if l.Kind != DiffContext {
			return true
		}
	}
	return false
}
