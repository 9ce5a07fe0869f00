package safezone

import (
	"regexp"
	"sort"
	"strings"
)

// Rule names a pair of literal delimiters. Text between an occurrence of
// Start and the matching End is excluded from transformation.
type Rule struct {
	Start string
	End   string
}

// Span is an excluded character range [StartIndex, EndIndex).
type Span struct {
	StartIndex int
	EndIndex   int
}

var openTagRe = regexp.MustCompile(`^<([a-zA-Z][a-zA-Z0-9-]*)`)

// FindExcluded locates every region delimited by the given rules. When a
// rule's Start begins with an HTML opening tag and End is its closing tag,
// nested same-named tags are depth-counted so the outermost closer wins.
// Missing closers fail open: the span runs to the end of the content.
func FindExcluded(content string, rules []Rule) []Span {
	var spans []Span

	for _, rule := range rules {
		if rule.Start == "" {
			continue
		}
		offset := 0
		for {
			start := strings.Index(content[offset:], rule.Start)
			if start < 0 {
				break
			}
			start += offset

			end := findRuleEnd(content, start, rule)
			spans = append(spans, Span{StartIndex: start, EndIndex: end})
			if end >= len(content) {
				break
			}
			offset = end
		}
	}

	sort.Slice(spans, func(i, j int) bool { return spans[i].StartIndex < spans[j].StartIndex })
	return spans
}

// findRuleEnd returns the exclusive end offset of the region opened at start.
func findRuleEnd(content string, start int, rule Rule) int {
	searchFrom := start + len(rule.Start)

	tag := openTagRe.FindStringSubmatch(rule.Start)
	if tag != nil && strings.EqualFold(rule.End, "</"+tag[1]+">") {
		return findNestedTagEnd(content, searchFrom, tag[1], rule.End)
	}

	rel := strings.Index(content[searchFrom:], rule.End)
	if rel < 0 {
		return len(content) // fail open
	}
	return searchFrom + rel + len(rule.End)
}

// findNestedTagEnd depth-counts nested <tag openers so the outermost
// closing tag terminates the region.
func findNestedTagEnd(content string, from int, tag, closer string) int {
	opener := "<" + tag
	depth := 1
	i := from
	for i < len(content) {
		nextOpen := strings.Index(content[i:], opener)
		nextClose := strings.Index(content[i:], closer)
		if nextClose < 0 {
			return len(content) // fail open
		}
		if nextOpen >= 0 && nextOpen < nextClose {
			depth++
			i += nextOpen + len(opener)
			continue
		}
		depth--
		i += nextClose + len(closer)
		if depth == 0 {
			return i
		}
	}
	return len(content)
}

// mergeSpans folds overlapping or touching spans into maximal ones. Spans
// must already be sorted by start index.
func mergeSpans(spans []Span) []Span {
	if len(spans) == 0 {
		return nil
	}
	merged := []Span{spans[0]}
	for _, s := range spans[1:] {
		last := &merged[len(merged)-1]
		if s.StartIndex <= last.EndIndex {
			if s.EndIndex > last.EndIndex {
				last.EndIndex = s.EndIndex
			}
			continue
		}
		merged = append(merged, s)
	}
	return merged
}

// StripExcluded removes every excluded region from a copy of the content.
// Overlapping spans from different rules are merged first; removals then run
// in reverse index order so earlier offsets stay valid.
func StripExcluded(content string, rules []Rule) string {
	spans := mergeSpans(FindExcluded(content, rules))
	for i := len(spans) - 1; i >= 0; i-- {
		s := spans[i]
		if s.StartIndex >= len(content) {
			continue
		}
		end := s.EndIndex
		if end > len(content) {
			end = len(content)
		}
		content = content[:s.StartIndex] + content[end:]
	}
	return content
}
