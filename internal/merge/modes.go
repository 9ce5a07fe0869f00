package merge

import (
	"strings"

	"inkfold/internal/article"
	"inkfold/internal/extract"
	"inkfold/internal/patch"
	"inkfold/internal/replace"
)

// Outcome is the result of dispatching one output mode. Adjustments,
// Skipped, and Deduped carry the mode-specific diagnostics (patch
// relocations, unmatched replacements, replacements dropped because their
// URL was already introduced) so the caller can log them.
type Outcome struct {
	Article     article.Article
	Rejected    bool
	Reason      string
	Adjustments []patch.Adjustment
	Applied     []string
	Skipped     []string
	Deduped     []string
}

// Apply folds the extraction result into the base article under the given
// output mode. The recovered text must come from a successful extraction;
// gating on extraction failure is the caller's job.
func Apply(base article.Article, mode Mode, ext extract.Result, opts Options) Outcome {
	switch mode {
	case ModePrepend:
		updated := base
		updated.Content = joinBlocks(ext.Content, base.Content)
		return Outcome{Article: updated}

	case ModeAppend:
		updated := base
		updated.Content = joinBlocks(base.Content, ext.Content)
		return Outcome{Article: updated}

	case ModePatch:
		patches := patch.ParseMarkers(ext.Content)
		if len(patches) == 0 {
			return Outcome{Article: base, Rejected: true, Reason: "no line markers found in patch content"}
		}
		res := patch.Apply(base.Content, patches, patch.Options{ValidateStructures: opts.ValidatePatches})
		updated := base
		updated.Content = res.Content
		return Outcome{Article: updated, Adjustments: res.Adjustments}

	case ModeMeta:
		parsed := ext.Parsed
		if parsed == nil {
			// A metadata-only object has no content field, so the main
			// extraction chain never decodes it.
			parsed = extract.ObjectFrom(ext.Content)
		}
		if parsed == nil {
			return Outcome{Article: base, Rejected: true, Reason: "no metadata object found in model output"}
		}
		res := Merge(base, mode, parsed, ext.Content, opts)
		return Outcome{Article: res.Article, Rejected: res.Rejected, Reason: res.Reason}

	case ModeTextReplace:
		parsed := ext.Parsed
		if parsed == nil {
			// Replacement envelopes carry no content field, so the main
			// extraction chain never decodes them.
			parsed = extract.ObjectFrom(ext.Content)
		}
		reps := parseReplacements(parsed)
		if len(reps) == 0 {
			return Outcome{Article: base, Rejected: true, Reason: "no replacements found in model output"}
		}
		reps, removed := replace.DedupeByURL(reps)
		res := replace.Apply(base.Content, reps)
		updated := base
		updated.Content = replace.FixCitationArtifacts(res.Content)
		out := Outcome{Article: updated, Applied: res.Applied, Skipped: res.Skipped}
		for _, r := range removed {
			out.Deduped = append(out.Deduped, replace.Truncate(r.Find))
		}
		return out

	default:
		// ModeReplace takes the guarded merge path.
		res := Merge(base, mode, ext.Parsed, ext.Content, opts)
		return Outcome{Article: res.Article, Rejected: res.Rejected, Reason: res.Reason}
	}
}

// parseReplacements reads the replacements list from a parsed model object.
func parseReplacements(parsed map[string]interface{}) []replace.Replacement {
	if parsed == nil {
		return nil
	}
	items, ok := parsed["replacements"].([]interface{})
	if !ok {
		return nil
	}
	var reps []replace.Replacement
	for _, item := range items {
		m, ok := item.(map[string]interface{})
		if !ok {
			continue
		}
		find, _ := m["find"].(string)
		repl, _ := m["replace"].(string)
		if find == "" {
			continue
		}
		reps = append(reps, replace.Replacement{Find: find, Replace: repl})
	}
	return reps
}

// joinBlocks concatenates two markdown blocks with a single blank line
// between them, tolerating missing or extra boundary newlines.
func joinBlocks(first, second string) string {
	first = strings.TrimRight(first, "\n")
	second = strings.TrimLeft(second, "\n")
	switch {
	case first == "":
		return second
	case second == "":
		return first
	}
	return first + "\n\n" + second
}
