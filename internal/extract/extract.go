// Package extract recovers a markdown body and optional metadata from raw
// model output. Model responses arrive as clean JSON, fenced JSON, JSON with
// bare control characters, JSON buried in prose, plain markdown, or truncated
// garbage; extraction tries a fixed chain of strategies from strictest to
// most forgiving and reports which one succeeded.
package extract

import (
	"encoding/json"
	"fmt"
	"regexp"
	"strings"
)

// Metadata is the optional article metadata harvested alongside the body.
type Metadata struct {
	Title       string
	Description string
	Slug        string
	Keywords    []string
}

// Result is the outcome of one extraction attempt. When Success is false,
// Content still carries the original raw text so callers can persist it for
// debugging, but it must not be merged into a document.
type Result struct {
	Success  bool
	Content  string
	Meta     *Metadata
	Strategy string
	// Parsed is the decoded JSON object when a JSON strategy succeeded.
	Parsed map[string]interface{}
	// RawJSON preserves the candidate JSON text for diagnostics.
	RawJSON string
}

// strategy is one step of the fallback chain. Each step either claims the
// input (ok=true) or passes it to the next. Order matters: strict, cheap
// checks run first; regex salvage runs last because it can silently
// mis-extract truncated JSON.
type strategy struct {
	name string
	run  func(raw string) (Result, bool)
}

var chain = []strategy{
	{"fenced_json", tryFencedJSON},
	{"direct_parse", tryDirectParse},
	{"escaped_control", tryEscapedControl},
	{"brace_span", tryBraceSpan},
	{"bare_markdown", tryBareMarkdown},
	{"regex_salvage", tryRegexSalvage},
}

// Extract recovers content from input, which is either a raw string or an
// already-parsed JSON value. rawFallback is preserved as the failure content
// when every strategy is exhausted.
func Extract(input interface{}, rawFallback string) Result {
	if obj, ok := input.(map[string]interface{}); ok {
		if content, ok := obj["content"].(string); ok {
			return Result{
				Success:  true,
				Content:  content,
				Meta:     harvestMetadata(obj),
				Strategy: "object_content",
				Parsed:   obj,
			}
		}
	}

	raw, ok := input.(string)
	if !ok {
		raw = rawFallback
	}

	for _, s := range chain {
		if res, ok := s.run(raw); ok {
			res.Strategy = s.name
			return res
		}
	}

	return Result{
		Success:  false,
		Content:  rawFallback,
		Strategy: "exhausted",
		RawJSON:  raw,
	}
}

var fenceWrapRe = regexp.MustCompile("(?s)^\\s*```(?:json|JSON)?\\s*\n(.*?)\n?\\s*```\\s*$")

// tryFencedJSON strips a ```json / ``` wrapper and parses the body.
func tryFencedJSON(raw string) (Result, bool) {
	m := fenceWrapRe.FindStringSubmatch(raw)
	if m == nil {
		return Result{}, false
	}
	return parseJSONContent(m[1])
}

// tryDirectParse parses the raw string as JSON directly.
func tryDirectParse(raw string) (Result, bool) {
	return parseJSONContent(raw)
}

// tryEscapedControl escapes bare control characters inside JSON string
// literals and retries the parse. Models frequently emit real newlines
// inside what should be an escaped JSON string.
func tryEscapedControl(raw string) (Result, bool) {
	escaped := escapeControlChars(raw)
	if escaped == raw {
		return Result{}, false
	}
	return parseJSONContent(escaped)
}

// tryBraceSpan extracts the first balanced {...} span and parses it.
func tryBraceSpan(raw string) (Result, bool) {
	span := firstBraceSpan(raw)
	if span == "" || span == strings.TrimSpace(raw) {
		return Result{}, false
	}
	return parseJSONContent(span)
}

var headingRe = regexp.MustCompile(`(?m)^#{1,6}[ \t]+\S`)

// tryBareMarkdown claims input that is clearly already markdown: no leading
// JSON delimiter and at least one heading line.
func tryBareMarkdown(raw string) (Result, bool) {
	trimmed := strings.TrimSpace(raw)
	if trimmed == "" || trimmed[0] == '{' || trimmed[0] == '[' {
		return Result{}, false
	}
	if !headingRe.MatchString(trimmed) {
		return Result{}, false
	}
	return Result{Success: true, Content: raw}, true
}

var contentFieldRe = regexp.MustCompile(`"content"\s*:\s*"((?:[^"\\]|\\.)*)"`)

// tryRegexSalvage pulls a "content" field straight out of corrupted JSON.
// Last resort: it can mis-extract from truncated responses, which is why the
// stricter strategies run first.
func tryRegexSalvage(raw string) (Result, bool) {
	m := contentFieldRe.FindStringSubmatch(raw)
	if m == nil {
		return Result{}, false
	}
	return Result{Success: true, Content: Unescape(m[1]), RawJSON: raw}, true
}

// parseJSONContent decodes candidate JSON and accepts it when a string
// "content" field is present.
func parseJSONContent(candidate string) (Result, bool) {
	var obj map[string]interface{}
	if err := json.Unmarshal([]byte(candidate), &obj); err != nil {
		return Result{}, false
	}
	content, ok := obj["content"].(string)
	if !ok {
		return Result{}, false
	}
	return Result{
		Success: true,
		Content: content,
		Meta:    harvestMetadata(obj),
		Parsed:  obj,
		RawJSON: candidate,
	}, true
}

// ObjectFrom decodes a JSON object from raw model output using the same
// recovery tricks as the main chain (fence strip, control-char escape,
// balanced-brace span) but without requiring a content field. Payload modes
// whose envelope carries no body, such as a replacements list, parse their
// object through this. Returns nil when nothing decodes.
func ObjectFrom(raw string) map[string]interface{} {
	candidates := []string{raw}
	if m := fenceWrapRe.FindStringSubmatch(raw); m != nil {
		candidates = append(candidates, m[1])
	}
	if escaped := escapeControlChars(raw); escaped != raw {
		candidates = append(candidates, escaped)
	}
	if span := firstBraceSpan(raw); span != "" {
		candidates = append(candidates, span)
	}

	for _, c := range candidates {
		var obj map[string]interface{}
		if err := json.Unmarshal([]byte(c), &obj); err == nil && obj != nil {
			return obj
		}
	}
	return nil
}

// harvestMetadata opportunistically collects metadata fields from a parsed
// object. A comma-separated keywords string is coerced to a list.
func harvestMetadata(obj map[string]interface{}) *Metadata {
	meta := &Metadata{}
	found := false

	if v, ok := obj["title"].(string); ok && v != "" {
		meta.Title = v
		found = true
	}
	if v, ok := obj["description"].(string); ok && v != "" {
		meta.Description = v
		found = true
	}
	if v, ok := obj["slug"].(string); ok && v != "" {
		meta.Slug = v
		found = true
	} else if v, ok := obj["path"].(string); ok && v != "" {
		meta.Slug = v
		found = true
	}

	switch kw := obj["keywords"].(type) {
	case string:
		for _, k := range strings.Split(kw, ",") {
			if k = strings.TrimSpace(k); k != "" {
				meta.Keywords = append(meta.Keywords, k)
			}
		}
		found = found || len(meta.Keywords) > 0
	case []interface{}:
		for _, item := range kw {
			if s, ok := item.(string); ok && s != "" {
				meta.Keywords = append(meta.Keywords, s)
			}
		}
		found = found || len(meta.Keywords) > 0
	}

	if !found {
		return nil
	}
	return meta
}

// escapeControlChars rewrites bare control characters that appear inside
// JSON string literals into their escaped forms. Characters outside strings
// are left alone. Safe to scan bytes: ASCII never appears inside a UTF-8
// multi-byte sequence.
func escapeControlChars(s string) string {
	var b strings.Builder
	b.Grow(len(s))

	inString := false
	escape := false
	for i := 0; i < len(s); i++ {
		c := s[i]
		if escape {
			b.WriteByte(c)
			escape = false
			continue
		}
		if inString {
			switch c {
			case '\\':
				b.WriteByte(c)
				escape = true
			case '"':
				b.WriteByte(c)
				inString = false
			case '\n':
				b.WriteString(`\n`)
			case '\r':
				b.WriteString(`\r`)
			case '\t':
				b.WriteString(`\t`)
			default:
				if c < 0x20 {
					fmt.Fprintf(&b, `\u%04x`, c)
				} else {
					b.WriteByte(c)
				}
			}
			continue
		}
		if c == '"' {
			inString = true
		}
		b.WriteByte(c)
	}

	return b.String()
}

// firstBraceSpan returns the first balanced {...} span, ignoring braces
// inside quoted strings and respecting backslash escapes. Returns "" when no
// balanced span exists.
func firstBraceSpan(s string) string {
	depth := 0
	start := -1
	inString := false
	escape := false

	for i := 0; i < len(s); i++ {
		c := s[i]
		if escape {
			escape = false
			continue
		}
		if inString {
			if c == '\\' {
				escape = true
			} else if c == '"' {
				inString = false
			}
			continue
		}
		switch c {
		case '"':
			if depth > 0 {
				inString = true
			}
		case '{':
			if depth == 0 {
				start = i
			}
			depth++
		case '}':
			if depth > 0 {
				depth--
				if depth == 0 && start >= 0 {
					return s[start : i+1]
				}
			}
		}
	}
	return ""
}

// Unescape rewrites the escape sequences a model emits inside a JSON string
// body (\n, \r, \t, \", \\) into their literal characters.
func Unescape(s string) string {
	var b strings.Builder
	b.Grow(len(s))

	for i := 0; i < len(s); i++ {
		if s[i] != '\\' || i+1 >= len(s) {
			b.WriteByte(s[i])
			continue
		}
		switch s[i+1] {
		case 'n':
			b.WriteByte('\n')
		case 'r':
			b.WriteByte('\r')
		case 't':
			b.WriteByte('\t')
		case '"':
			b.WriteByte('"')
		case '\\':
			b.WriteByte('\\')
		default:
			b.WriteByte(s[i])
			b.WriteByte(s[i+1])
		}
		i++
	}

	return b.String()
}
