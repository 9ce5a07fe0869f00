package extract

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestExtract_AlreadyParsedObject(t *testing.T) {
	obj := map[string]interface{}{
		"content":  "# Body",
		"title":    "T",
		"keywords": "go, markdown ,pipeline",
	}
	res := Extract(obj, "")

	require.True(t, res.Success)
	assert.Equal(t, "object_content", res.Strategy)
	assert.Equal(t, "# Body", res.Content)
	require.NotNil(t, res.Meta)
	assert.Equal(t, "T", res.Meta.Title)
	assert.Equal(t, []string{"go", "markdown", "pipeline"}, res.Meta.Keywords)
}

func TestExtract_DirectParse(t *testing.T) {
	raw := `{"content":"X"}`
	res := Extract(raw, raw)

	require.True(t, res.Success)
	// Must be claimed by the strict strategy, not a weaker one downstream.
	assert.Equal(t, "direct_parse", res.Strategy)
	assert.Equal(t, "X", res.Content)
}

func TestExtract_FencedJSON(t *testing.T) {
	raw := "```json\n{\"content\":\"fenced body\",\"title\":\"Hi\"}\n```"
	res := Extract(raw, raw)

	require.True(t, res.Success)
	assert.Equal(t, "fenced_json", res.Strategy)
	assert.Equal(t, "fenced body", res.Content)
	require.NotNil(t, res.Meta)
	assert.Equal(t, "Hi", res.Meta.Title)
}

func TestExtract_BareControlCharsInStrings(t *testing.T) {
	raw := "{\"content\":\"line one\nline two\"}"
	res := Extract(raw, raw)

	require.True(t, res.Success)
	assert.Equal(t, "escaped_control", res.Strategy)
	assert.Equal(t, "line one\nline two", res.Content)
}

func TestExtract_BraceSpanInProse(t *testing.T) {
	raw := "Sure! Here is the article:\n{\"content\":\"embedded\"}\nHope that helps."
	res := Extract(raw, raw)

	require.True(t, res.Success)
	assert.Equal(t, "brace_span", res.Strategy)
	assert.Equal(t, "embedded", res.Content)
}

func TestExtract_BraceSpanIgnoresBracesInStrings(t *testing.T) {
	raw := `noise {"content":"has } and \" inside"} trailing`
	res := Extract(raw, raw)

	require.True(t, res.Success)
	assert.Equal(t, "brace_span", res.Strategy)
	assert.Equal(t, `has } and " inside`, res.Content)
}

func TestExtract_BareMarkdown(t *testing.T) {
	raw := "## Section\n\nSome prose without any JSON."
	res := Extract(raw, raw)

	require.True(t, res.Success)
	assert.Equal(t, "bare_markdown", res.Strategy)
	assert.Equal(t, raw, res.Content)
	assert.Nil(t, res.Meta)
}

func TestExtract_RegexSalvage(t *testing.T) {
	// Truncated JSON: the object never closes, so every parse fails, but the
	// content field itself is intact.
	raw := `{"title":"T","content":"salvaged\nbody","keywords":`
	res := Extract(raw, raw)

	require.True(t, res.Success)
	assert.Equal(t, "regex_salvage", res.Strategy)
	assert.Equal(t, "salvaged\nbody", res.Content)
}

func TestExtract_Exhausted(t *testing.T) {
	raw := "no json, no headings, nothing usable"
	res := Extract(raw, raw)

	require.False(t, res.Success)
	assert.Equal(t, "exhausted", res.Strategy)
	// Failure still carries the raw text for debugging.
	assert.Equal(t, raw, res.Content)
	assert.Equal(t, raw, res.RawJSON)
}

func TestExtract_MetadataHarvest(t *testing.T) {
	raw := `{"content":"c","title":"T","description":"D","path":"/p","keywords":["a","b"]}`
	res := Extract(raw, raw)

	require.True(t, res.Success)
	require.NotNil(t, res.Meta)
	assert.Equal(t, "T", res.Meta.Title)
	assert.Equal(t, "D", res.Meta.Description)
	assert.Equal(t, "/p", res.Meta.Slug)
	assert.Equal(t, []string{"a", "b"}, res.Meta.Keywords)
}

func TestObjectFrom(t *testing.T) {
	obj := ObjectFrom(`{"replacements":[{"find":"a","replace":"b"}]}`)
	if obj == nil {
		t.Fatal("expected object from direct JSON")
	}
	if _, ok := obj["replacements"]; !ok {
		t.Error("replacements key missing")
	}

	obj = ObjectFrom("```json\n{\"replacements\":[]}\n```")
	if obj == nil {
		t.Fatal("expected object from fenced JSON")
	}

	if ObjectFrom("just prose") != nil {
		t.Error("prose should not decode to an object")
	}
}

func TestUnescape(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{`a\nb`, "a\nb"},
		{`a\tb\rc`, "a\tb\rc"},
		{`say \"hi\"`, `say "hi"`},
		{`back\\slash`, `back\slash`},
		{`unknown \x stays`, `unknown \x stays`},
		{`trailing \`, `trailing \`},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, Unescape(tt.in), "input %q", tt.in)
	}
}

func TestFirstBraceSpan(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{"plain", `x {"a":1} y`, `{"a":1}`},
		{"nested", `{"a":{"b":2}} tail`, `{"a":{"b":2}}`},
		{"brace_in_string", `{"a":"}"}`, `{"a":"}"}`},
		{"unbalanced", `{"a":1`, ""},
		{"stray_quote_before_json", `5" of rain {"a":1}`, `{"a":1}`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, firstBraceSpan(tt.in))
		})
	}
}

func TestEscapeControlChars(t *testing.T) {
	in := "{\"k\":\"a\nb\"}\n"
	want := "{\"k\":\"a\\nb\"}\n"
	assert.Equal(t, want, escapeControlChars(in))
}

func TestEscapeControlChars_OtherControlBytes(t *testing.T) {
	in := "{\"k\":\"a\bb\fc\"}"
	want := "{\"k\":\"a\\u0008b\\u000cc\"}"
	assert.Equal(t, want, escapeControlChars(in))
}

func TestExtract_OtherBareControlCharsInStrings(t *testing.T) {
	raw := "{\"content\":\"a\bb\fc\"}"
	res := Extract(raw, raw)
	if !res.Success || res.Strategy != "escaped_control" {
		t.Fatalf("strategy = %s, success = %v", res.Strategy, res.Success)
	}
	if res.Content != "a\bb\fc" {
		t.Errorf("content = %q", res.Content)
	}
}
