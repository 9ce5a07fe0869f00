// Package replace rewrites targeted phrases in a document from model-supplied
// (find, replace) pairs. Matching is whitespace-tolerant, longest-find-first,
// and replaces only the first occurrence of each find so a link or phrase is
// never inserted twice.
package replace

import (
	"regexp"
	"sort"
	"strings"
)

// Replacement is one find/replace pair parsed from a model response.
type Replacement struct {
	Find    string `json:"find"`
	Replace string `json:"replace"`
}

// Result reports the rewritten content plus which finds matched. Skipped
// entries are truncated for diagnostics; an unmatched find is not an error.
type Result struct {
	Content string
	Applied []string
	Skipped []string
}

const skippedTruncateLen = 50

// Apply rewrites the first occurrence of each find in content. Replacements
// are processed longest find first so a short find cannot pre-empt a longer
// overlapping one. Two same-length overlapping finds keep their input order;
// that residual ambiguity is intentional and mirrors the matching heuristic
// rather than a formal overlap guarantee.
func Apply(content string, replacements []Replacement) Result {
	ordered := make([]Replacement, len(replacements))
	copy(ordered, replacements)
	sort.SliceStable(ordered, func(i, j int) bool {
		return len(ordered[i].Find) > len(ordered[j].Find)
	})

	res := Result{Content: content}
	for _, r := range ordered {
		re := findPattern(r.Find)
		if re == nil {
			res.Skipped = append(res.Skipped, truncate(r.Find, skippedTruncateLen))
			continue
		}
		loc := re.FindStringIndex(res.Content)
		if loc == nil {
			res.Skipped = append(res.Skipped, truncate(r.Find, skippedTruncateLen))
			continue
		}
		res.Content = res.Content[:loc[0]] + r.Replace + res.Content[loc[1]:]
		res.Applied = append(res.Applied, truncate(r.Find, skippedTruncateLen))
	}

	return res
}

// findPattern compiles a find string into a regexp whose literal whitespace
// runs match any whitespace, so minor spacing differences between the model's
// quote and the document never cause a false miss.
func findPattern(find string) *regexp.Regexp {
	fields := strings.Fields(find)
	if len(fields) == 0 {
		return nil
	}
	quoted := make([]string, len(fields))
	for i, f := range fields {
		quoted[i] = regexp.QuoteMeta(f)
	}
	re, err := regexp.Compile(strings.Join(quoted, `\s+`))
	if err != nil {
		return nil
	}
	return re
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n]
}

// Truncate shortens a find string to the length used in diagnostics lists,
// matching the Skipped entries.
func Truncate(s string) string {
	return truncate(s, skippedTruncateLen)
}

// citationRe matches the "phrase. ([domain](url))" artifact one model
// provider emits for citations.
var citationRe = regexp.MustCompile(`([^.\n()\[\]]+)\.\s*\(\[[^\]\n]+\]\((https?://[^)\s]+)\)\)`)

// FixCitationArtifacts rewrites "phrase. ([domain](url))" into
// "[phrase](url)." so the citation becomes an inline link on the phrase.
func FixCitationArtifacts(content string) string {
	return citationRe.ReplaceAllStringFunc(content, func(m string) string {
		g := citationRe.FindStringSubmatch(m)
		phrase := g[1]
		lead := phrase[:len(phrase)-len(strings.TrimLeft(phrase, " \t"))]
		return lead + "[" + strings.TrimSpace(phrase) + "](" + g[2] + ")."
	})
}

var urlRe = regexp.MustCompile(`https?://[^)\s"']+`)

// DedupeByURL drops replacements that would introduce a URL some earlier
// replacement already introduces. The first replacement per URL wins; the
// rest are returned in removed for diagnostics. Replacements without a URL
// pass through untouched.
func DedupeByURL(replacements []Replacement) (kept, removed []Replacement) {
	seen := make(map[string]bool)
	for _, r := range replacements {
		url := urlRe.FindString(r.Replace)
		if url == "" {
			kept = append(kept, r)
			continue
		}
		url = strings.TrimRight(url, ".,;")
		if seen[url] {
			removed = append(removed, r)
			continue
		}
		seen[url] = true
		kept = append(kept, r)
	}
	return kept, removed
}
