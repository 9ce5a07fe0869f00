// Package merge folds recovered model output into a base article. Each
// output mode has its own strategy; full-document replacement passes two hard
// safety guards before the base content may be overwritten. Rejection is
// atomic: a rejected result always carries the untouched base article.
package merge

import (
	"fmt"
	"strings"

	"inkfold/internal/article"
)

// Mode selects how recovered text is folded into the base document.
type Mode string

const (
	ModeReplace     Mode = "replace"
	ModePrepend     Mode = "prepend"
	ModeAppend      Mode = "append"
	ModePatch       Mode = "patch"
	ModeTextReplace Mode = "text_replace"
	ModeMeta        Mode = "meta"
)

// ParseMode validates a mode string from config or CLI flags.
func ParseMode(s string) (Mode, error) {
	switch Mode(s) {
	case ModeReplace, ModePrepend, ModeAppend, ModePatch, ModeTextReplace, ModeMeta:
		return Mode(s), nil
	}
	return "", fmt.Errorf("unknown output mode %q", s)
}

// NeedsBody reports whether the mode consumes recovered body text. Patch,
// text-replace, and meta payloads carry line markers, replacement lists, or
// metadata objects instead, and reject on their own terms when the payload
// is missing.
func (m Mode) NeedsBody() bool {
	switch m {
	case ModePatch, ModeTextReplace, ModeMeta:
		return false
	}
	return true
}

// Result is the outcome of a merge. When Rejected is true, Article is the
// base article byte-for-byte and Reason says which guard fired.
type Result struct {
	Article  article.Article
	Rejected bool
	Reason   string
}

// Options tunes the safety guards and patch behavior.
type Options struct {
	// MinLengthRatio is the shrinkage threshold: a replacement shorter than
	// this fraction of the base content is rejected. The comparison is
	// strict (<), so a candidate at exactly the threshold passes.
	MinLengthRatio float64

	// ValidatePatches relocates positional patches that would split a
	// protected region.
	ValidatePatches bool
}

// DefaultOptions returns the standard guard configuration.
func DefaultOptions() Options {
	return Options{MinLengthRatio: 0.5, ValidatePatches: true}
}

// Merge implements the replace-all mode plus the metadata-only mode. parsed
// is the extractor's decoded object when one exists; content is the
// recovered text used on the general path. Every extraction strategy
// returns fully decoded text, so unescaping happens there and never here: a
// second pass would corrupt documents that mention escape sequences
// literally.
func Merge(base article.Article, mode Mode, parsed map[string]interface{}, content string, opts Options) Result {
	if mode == ModeMeta {
		return mergeMetadata(base, parsed)
	}

	if parsed != nil {
		if _, ok := parsed["id"]; ok {
			return Result{Article: overlayObject(base, parsed)}
		}
		if content, ok := parsed["content"].(string); ok {
			updated := base
			updated.Content = content
			return Result{Article: updated}
		}
	}

	if reason, contaminated := jsonContamination(content); contaminated {
		return Result{Article: base, Rejected: true, Reason: reason}
	}
	if reason, shrunk := shrinkage(base.Content, content, opts.MinLengthRatio); shrunk {
		return Result{Article: base, Rejected: true, Reason: reason}
	}

	updated := base
	updated.Content = content
	return Result{Article: updated}
}

// mergeMetadata merges only the metadata fields of a parsed object,
// independent of body content.
func mergeMetadata(base article.Article, parsed map[string]interface{}) Result {
	updated := base
	if v, ok := parsed["title"].(string); ok && v != "" {
		updated.Title = v
	}
	if v, ok := parsed["description"].(string); ok && v != "" {
		updated.Description = v
	}
	if v, ok := parsed["path"].(string); ok && v != "" {
		updated.Path = v
	}
	if kws := keywordList(parsed["keywords"]); len(kws) > 0 {
		updated.Keywords = kws
	}
	return Result{Article: updated}
}

// overlayObject merges a parsed object carrying an identity field wholesale
// over the base article.
func overlayObject(base article.Article, parsed map[string]interface{}) article.Article {
	updated := base
	if v, ok := parsed["id"].(string); ok && v != "" {
		updated.ID = v
	}
	if v, ok := parsed["content"].(string); ok {
		updated.Content = v
	}
	meta := mergeMetadata(updated, parsed)
	return meta.Article
}

func keywordList(v interface{}) []string {
	switch kw := v.(type) {
	case string:
		var out []string
		for _, k := range strings.Split(kw, ",") {
			if k = strings.TrimSpace(k); k != "" {
				out = append(out, k)
			}
		}
		return out
	case []interface{}:
		var out []string
		for _, item := range kw {
			if s, ok := item.(string); ok && s != "" {
				out = append(out, s)
			}
		}
		return out
	}
	return nil
}
