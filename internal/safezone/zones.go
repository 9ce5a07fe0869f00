// Package safezone locates character spans of raw text that text-level
// transforms must leave untouched: code, URLs, link targets, images, HTML
// tags, script blocks, and heading lines.
package safezone

import (
	"regexp"
	"sort"
	"strings"
)

// ZoneType classifies a protected character span.
type ZoneType string

const (
	ZoneCodeBlock  ZoneType = "code_block"
	ZoneInlineCode ZoneType = "inline_code"
	ZoneURL        ZoneType = "url"
	ZoneLinkTarget ZoneType = "link_target"
	ZoneImage      ZoneType = "image"
	ZoneHTMLTag    ZoneType = "html_tag"
	ZoneScript     ZoneType = "script"
	ZoneHeading    ZoneType = "heading"
)

// Zone is a half-open character span [Start, End) that must not be altered.
type Zone struct {
	Start int
	End   int
	Type  ZoneType
}

var zonePatterns = []struct {
	typ ZoneType
	re  *regexp.Regexp
}{
	{ZoneImage, regexp.MustCompile(`!\[[^\]]*\]\([^)]*\)`)},
	{ZoneLinkTarget, regexp.MustCompile(`\]\([^)]+\)`)},
	{ZoneURL, regexp.MustCompile(`https?://[^\s)\]>"']+`)},
	{ZoneInlineCode, regexp.MustCompile("`[^`\n]+`")},
	{ZoneHTMLTag, regexp.MustCompile(`<[a-zA-Z/!][^>]*>`)},
	{ZoneHeading, regexp.MustCompile(`(?m)^#{1,6}[ \t].*$`)},
}

// Detect scans text and returns maximal non-overlapping zones sorted by
// start offset. Overlapping hits from different detectors are merged; the
// survivor keeps the type of the earliest-starting zone.
func Detect(text string) []Zone {
	var zones []Zone

	zones = append(zones, fencedBlocks(text)...)
	zones = append(zones, scriptBlocks(text)...)
	for _, p := range zonePatterns {
		for _, loc := range p.re.FindAllStringIndex(text, -1) {
			zones = append(zones, Zone{Start: loc[0], End: loc[1], Type: p.typ})
		}
	}

	return mergeZones(zones)
}

// fencedBlocks finds ``` code blocks. An unterminated fence extends to the
// end of the text.
func fencedBlocks(text string) []Zone {
	var zones []Zone
	offset := 0
	for {
		start := strings.Index(text[offset:], "```")
		if start < 0 {
			return zones
		}
		start += offset
		end := strings.Index(text[start+3:], "```")
		if end < 0 {
			zones = append(zones, Zone{Start: start, End: len(text), Type: ZoneCodeBlock})
			return zones
		}
		end = start + 3 + end + 3
		zones = append(zones, Zone{Start: start, End: end, Type: ZoneCodeBlock})
		offset = end
	}
}

// scriptBlocks finds <script>...</script> spans, failing open to the end of
// the text when the closing tag is missing.
func scriptBlocks(text string) []Zone {
	var zones []Zone
	lower := strings.ToLower(text)
	offset := 0
	for {
		start := strings.Index(lower[offset:], "<script")
		if start < 0 {
			return zones
		}
		start += offset
		close := strings.Index(lower[start:], "</script>")
		if close < 0 {
			zones = append(zones, Zone{Start: start, End: len(text), Type: ZoneScript})
			return zones
		}
		end := start + close + len("</script>")
		zones = append(zones, Zone{Start: start, End: end, Type: ZoneScript})
		offset = end
	}
}

// mergeZones folds overlapping or touching zones into maximal spans.
func mergeZones(zones []Zone) []Zone {
	if len(zones) == 0 {
		return nil
	}
	sort.SliceStable(zones, func(i, j int) bool {
		if zones[i].Start != zones[j].Start {
			return zones[i].Start < zones[j].Start
		}
		return zones[i].End > zones[j].End
	})

	merged := []Zone{zones[0]}
	for _, z := range zones[1:] {
		last := &merged[len(merged)-1]
		if z.Start <= last.End {
			if z.End > last.End {
				last.End = z.End
			}
			continue
		}
		merged = append(merged, z)
	}
	return merged
}

// Contains reports whether offset falls inside any zone. Zones must be the
// sorted output of Detect.
func Contains(zones []Zone, offset int) bool {
	i := sort.Search(len(zones), func(i int) bool { return zones[i].End > offset })
	return i < len(zones) && zones[i].Start <= offset
}
