// Package diff summarizes what a merge changed in a document, using the
// sergi/go-diff engine with a line-level reduction so hunks land on line
// boundaries.
package diff

import (
	"fmt"
	"strings"

	"github.com/sergi/go-diff/diffmatchpatch"
)

// LineType classifies one line of a summary hunk.
type LineType int

const (
	LineContext LineType = iota
	LineAdded
	LineRemoved
)

// Line is a single line of a hunk.
type Line struct {
	Type    LineType
	Content string
}

// Hunk is one contiguous group of changes with surrounding context.
type Hunk struct {
	OldStart int
	NewStart int
	Lines    []Line
}

// Summary describes the full change set between two document versions.
type Summary struct {
	Added   int
	Removed int
	Hunks   []Hunk
}

// Changed reports whether the summary contains any modification.
func (s *Summary) Changed() bool {
	return s.Added > 0 || s.Removed > 0
}

// String renders the summary in a compact unified-diff style.
func (s *Summary) String() string {
	var b strings.Builder
	for _, h := range s.Hunks {
		fmt.Fprintf(&b, "@@ -%d +%d @@\n", h.OldStart, h.NewStart)
		for _, l := range h.Lines {
			switch l.Type {
			case LineAdded:
				b.WriteString("+")
			case LineRemoved:
				b.WriteString("-")
			default:
				b.WriteString(" ")
			}
			b.WriteString(l.Content)
			b.WriteString("\n")
		}
	}
	return b.String()
}

const contextLines = 3

// Compute diffs two document versions line by line.
func Compute(oldContent, newContent string) *Summary {
	dmp := diffmatchpatch.New()
	dmp.DiffTimeout = 0

	// Line-level reduction avoids newline boundary artifacts when the
	// character diff is mapped back to lines.
	a, b, lineArray := dmp.DiffLinesToChars(oldContent, newContent)
	diffs := dmp.DiffMain(a, b, false)
	diffs = dmp.DiffCleanupSemantic(diffs)
	diffs = dmp.DiffCharsToLines(diffs, lineArray)

	ops := toLineOps(diffs)
	summary := &Summary{Hunks: groupHunks(ops)}
	for _, op := range ops {
		switch op.typ {
		case LineAdded:
			summary.Added++
		case LineRemoved:
			summary.Removed++
		}
	}
	return summary
}

type lineOp struct {
	typ     LineType
	oldLine int // 1-based, 0 when not present on that side
	newLine int
	content string
}

func toLineOps(diffs []diffmatchpatch.Diff) []lineOp {
	var ops []lineOp
	oldLine, newLine := 0, 0

	for _, d := range diffs {
		lines := strings.Split(d.Text, "\n")
		if len(lines) > 0 && lines[len(lines)-1] == "" {
			lines = lines[:len(lines)-1]
		}
		for _, line := range lines {
			switch d.Type {
			case diffmatchpatch.DiffEqual:
				oldLine++
				newLine++
				ops = append(ops, lineOp{LineContext, oldLine, newLine, line})
			case diffmatchpatch.DiffDelete:
				oldLine++
				ops = append(ops, lineOp{LineRemoved, oldLine, 0, line})
			case diffmatchpatch.DiffInsert:
				newLine++
				ops = append(ops, lineOp{LineAdded, 0, newLine, line})
			}
		}
	}
	return ops
}

func groupHunks(ops []lineOp) []Hunk {
	var hunks []Hunk
	var current *Hunk
	lastChange := -1
	hunkStart := -1

	flush := func() {
		if current == nil {
			return
		}
		// Trim trailing context beyond the window.
		keep := lastChange - hunkStart + 1 + contextLines
		if keep < len(current.Lines) {
			current.Lines = current.Lines[:keep]
		}
		hunks = append(hunks, *current)
		current = nil
	}

	for i, op := range ops {
		if op.typ != LineContext {
			if current == nil {
				start := i - contextLines
				if start < 0 {
					start = 0
				}
				hunkStart = start
				current = &Hunk{OldStart: ops[start].oldLine, NewStart: ops[start].newLine}
				for j := start; j < i; j++ {
					current.Lines = append(current.Lines, Line{ops[j].typ, ops[j].content})
				}
				if current.OldStart == 0 {
					current.OldStart = 1
				}
				if current.NewStart == 0 {
					current.NewStart = 1
				}
			}
			lastChange = i
		}
		if current != nil {
			current.Lines = append(current.Lines, Line{op.typ, op.content})
			if op.typ == LineContext && i-lastChange >= contextLines*2 {
				flush()
			}
		}
	}
	flush()

	return hunks
}
