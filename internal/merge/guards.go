package merge

import (
	"regexp"
	"strings"
)

var quotedKeyRe = regexp.MustCompile(`"\w+"\s*:`)

// jsonContamination reports whether the candidate text still looks like a
// JSON envelope. If it does, extraction failed upstream and accepting the
// text would overwrite real content with a parser artifact.
func jsonContamination(text string) (string, bool) {
	trimmed := strings.TrimSpace(text)

	if strings.Contains(trimmed, `"replacements"`) {
		return "candidate text contains a replacements envelope", true
	}
	if strings.HasPrefix(trimmed, "{") && quotedKeyRe.MatchString(trimmed) {
		return "candidate text is an unextracted JSON object", true
	}
	if strings.HasPrefix(trimmed, "```json") {
		return "candidate text is a fenced json block", true
	}
	return "", false
}

// shrinkage rejects a replacement shorter than ratio of the base content.
// Short output is evidence of a truncated or partial model response. The
// comparison is strict: a candidate at exactly the threshold passes.
func shrinkage(base, candidate string, ratio float64) (string, bool) {
	if len(base) == 0 {
		return "", false
	}
	if float64(len(candidate)) < float64(len(base))*ratio {
		return "candidate text shrank below the replacement threshold", true
	}
	return "", false
}
