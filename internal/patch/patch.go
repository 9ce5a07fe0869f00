// Package patch inserts content blocks into a document at 1-based line
// positions, relocating any insertion that would split a protected region.
package patch

import (
	"regexp"
	"sort"
	"strconv"
	"strings"

	"inkfold/internal/structure"
)

// Patch inserts Content as new lines before existing line Line (1-based).
type Patch struct {
	Line    int
	Content string
}

// Adjustment records a relocated patch. Adjustments are always returned to
// the caller; they are never dropped silently.
type Adjustment struct {
	OriginalLine int
	AdjustedLine int
	Reason       string
	RegionType   structure.RegionType
}

// Options controls patch application.
type Options struct {
	// ValidateStructures runs the structure analyzer and relocates patches
	// that target a line inside a protected region.
	ValidateStructures bool
}

// DefaultOptions enables structure validation.
func DefaultOptions() Options {
	return Options{ValidateStructures: true}
}

// Result is the applied document plus any relocations that occurred.
// Adjustments is nil when every patch landed on its requested line.
type Result struct {
	Content     string
	Adjustments []Adjustment
}

// Apply splices each patch's content into the document. Patches MUST be
// sorted by descending Line (ParseMarkers guarantees this); applying in
// descending order keeps earlier insertion offsets valid. The function
// assumes the precondition rather than enforcing it.
func Apply(document string, patches []Patch, opts Options) Result {
	lines := strings.Split(document, "\n")

	var analysis structure.Analysis
	if opts.ValidateStructures {
		analysis = structure.Analyze(document)
	}

	var adjustments []Adjustment
	for _, p := range patches {
		target := p.Line

		if opts.ValidateStructures {
			if region, ok := analysis.RegionFor(target); ok {
				adjusted := region.EndLine + 1
				if adjusted > analysis.LineCount+1 {
					adjusted = analysis.LineCount + 1
				}
				adjustments = append(adjustments, Adjustment{
					OriginalLine: target,
					AdjustedLine: adjusted,
					Reason:       "inside protected region",
					RegionType:   region.Type,
				})
				target = adjusted
			}
		}

		// Insert before the target line: 0-based splice position, clamped
		// into the current document.
		pos := target - 1
		if pos < 0 {
			pos = 0
		}
		if pos > len(lines) {
			pos = len(lines)
		}

		block := strings.Split(p.Content, "\n")
		lines = append(lines[:pos], append(append([]string{}, block...), lines[pos:]...)...)
	}

	return Result{Content: strings.Join(lines, "\n"), Adjustments: adjustments}
}

var markerRe = regexp.MustCompile(`(?m)^\[line (\d+)\][ \t]*$`)

// ParseMarkers splits raw text on the "[line N]" marker convention: each
// marker line is followed by replacement content up to the next marker or
// end of text. The returned patches are sorted by descending line, ready
// for Apply.
func ParseMarkers(raw string) []Patch {
	locs := markerRe.FindAllStringSubmatchIndex(raw, -1)
	if len(locs) == 0 {
		return nil
	}

	patches := make([]Patch, 0, len(locs))
	for i, loc := range locs {
		line, err := strconv.Atoi(raw[loc[2]:loc[3]])
		if err != nil {
			continue
		}

		start := loc[1]
		end := len(raw)
		if i+1 < len(locs) {
			end = locs[i+1][0]
		}
		content := strings.Trim(raw[start:end], "\n")

		patches = append(patches, Patch{Line: line, Content: content})
	}

	sort.SliceStable(patches, func(i, j int) bool { return patches[i].Line > patches[j].Line })
	return patches
}
