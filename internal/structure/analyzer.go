// Package structure scans markdown documents for regions that a line-based
// insertion must not split: tables, bullet lists, numbered lists, and fenced
// code blocks. The analyzer is stateless; every call re-scans the document so
// results are never stale across edits.
package structure

import (
	"regexp"
	"sort"
	"strings"
)

// RegionType classifies a protected region.
type RegionType string

const (
	RegionTable        RegionType = "table"
	RegionBulletList   RegionType = "bullet_list"
	RegionNumberedList RegionType = "numbered_list"
	RegionFencedCode   RegionType = "fenced_code"
)

// Region is a protected line span. Lines are 1-based and EndLine is
// inclusive. A line L is inside the region iff StartLine <= L < EndLine;
// the end line itself is a safe insertion point.
type Region struct {
	StartLine int
	EndLine   int
	Type      RegionType
}

// Analysis is the result of scanning one document.
type Analysis struct {
	Regions   []Region
	LineCount int
}

var (
	fenceOpenRe  = regexp.MustCompile("^(\\s*)(```|~~~)")
	bulletItemRe = regexp.MustCompile(`^\s*[-*+]\s+\S`)
	numberItemRe = regexp.MustCompile(`^\s*\d+\.\s+\S`)
)

// Analyze scans the document once and returns all protected regions sorted
// ascending by start line. Unterminated fences fail open: the region extends
// to the end of the document rather than producing an error.
func Analyze(document string) Analysis {
	lines := strings.Split(document, "\n")
	fences, inFence := findFences(lines)

	regions := fences
	regions = append(regions, findTables(lines, inFence)...)
	regions = append(regions, findLists(lines, inFence)...)

	sort.SliceStable(regions, func(i, j int) bool {
		return regions[i].StartLine < regions[j].StartLine
	})

	return Analysis{Regions: regions, LineCount: len(lines)}
}

// RegionFor returns the region containing line, if any. Containment follows
// the StartLine <= line < EndLine rule.
func (a Analysis) RegionFor(line int) (Region, bool) {
	for _, r := range a.Regions {
		if line >= r.StartLine && line < r.EndLine {
			return r, true
		}
	}
	return Region{}, false
}

// findFences returns fenced-code regions and a per-line mask of which lines
// sit inside a fence (including the fence markers themselves). The mask keeps
// table and list detection from firing on code that merely looks like them.
func findFences(lines []string) ([]Region, []bool) {
	var regions []Region
	inFence := make([]bool, len(lines))

	i := 0
	for i < len(lines) {
		m := fenceOpenRe.FindStringSubmatch(lines[i])
		if m == nil {
			i++
			continue
		}
		openIndent := len(m[1])
		fence := m[2]

		end := len(lines) - 1 // fail open
		for j := i + 1; j < len(lines); j++ {
			trimmed := strings.TrimLeft(lines[j], " \t")
			indent := len(lines[j]) - len(trimmed)
			if strings.HasPrefix(trimmed, fence) && indent <= openIndent {
				end = j
				break
			}
		}

		regions = append(regions, Region{StartLine: i + 1, EndLine: end + 1, Type: RegionFencedCode})
		for j := i; j <= end; j++ {
			inFence[j] = true
		}
		i = end + 1
	}

	return regions, inFence
}

// findTables returns every maximal run of consecutive lines whose trimmed
// text starts with "|".
func findTables(lines []string, inFence []bool) []Region {
	var regions []Region

	start := -1
	flush := func(end int) {
		if start >= 0 {
			regions = append(regions, Region{StartLine: start + 1, EndLine: end + 1, Type: RegionTable})
			start = -1
		}
	}

	for i, line := range lines {
		isRow := !inFence[i] && strings.HasPrefix(strings.TrimSpace(line), "|")
		if isRow && start < 0 {
			start = i
		} else if !isRow {
			flush(i - 1)
		}
	}
	flush(len(lines) - 1)

	return regions
}

// findLists returns bullet and numbered list runs. A run starts at a list
// item and continues through further items, indented continuation lines, and
// single blank lines whose next non-blank line is itself a list item. The
// region type comes from the item that opened the run.
func findLists(lines []string, inFence []bool) []Region {
	var regions []Region

	i := 0
	for i < len(lines) {
		if inFence[i] || !isListItem(lines[i]) {
			i++
			continue
		}

		typ := RegionBulletList
		if numberItemRe.MatchString(lines[i]) {
			typ = RegionNumberedList
		}

		end := i
		j := i + 1
		for j < len(lines) {
			if inFence[j] {
				break
			}
			line := lines[j]
			switch {
			case isListItem(line):
				end = j
				j++
			case strings.TrimSpace(line) == "":
				// A single blank continues the run only when the next
				// non-blank line is another list item.
				next := j + 1
				if next < len(lines) && strings.TrimSpace(lines[next]) == "" {
					next = len(lines) // double blank ends the run
				}
				if next < len(lines) && !inFence[next] && isListItem(lines[next]) {
					end = next
					j = next + 1
				} else {
					j = len(lines)
				}
			case isIndentedContinuation(line):
				end = j
				j++
			default:
				j = len(lines)
			}
		}

		regions = append(regions, Region{StartLine: i + 1, EndLine: end + 1, Type: typ})
		i = end + 1
	}

	return regions
}

func isListItem(line string) bool {
	return bulletItemRe.MatchString(line) || numberItemRe.MatchString(line)
}

func isIndentedContinuation(line string) bool {
	if strings.TrimSpace(line) == "" {
		return false
	}
	return strings.HasPrefix(line, " ") || strings.HasPrefix(line, "\t")
}
