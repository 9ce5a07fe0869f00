package structure

import (
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
)

func TestAnalyze_Table(t *testing.T) {
	doc := strings.Join([]string{
		"intro",
		"| a | b |",
		"|---|---|",
		"| 1 | 2 |",
		"outro",
	}, "\n")

	got := Analyze(doc)
	want := []Region{{StartLine: 2, EndLine: 4, Type: RegionTable}}
	if diff := cmp.Diff(want, got.Regions); diff != "" {
		t.Errorf("regions mismatch (-want +got):\n%s", diff)
	}
	if got.LineCount != 5 {
		t.Errorf("LineCount = %d, want 5", got.LineCount)
	}
}

func TestAnalyze_FencedCode(t *testing.T) {
	tests := []struct {
		name string
		doc  string
		want []Region
	}{
		{
			name: "closed_backtick_fence",
			doc:  "a\n```go\ncode\n```\nb",
			want: []Region{{StartLine: 2, EndLine: 4, Type: RegionFencedCode}},
		},
		{
			name: "closed_tilde_fence",
			doc:  "~~~\ncode\n~~~",
			want: []Region{{StartLine: 1, EndLine: 3, Type: RegionFencedCode}},
		},
		{
			name: "unterminated_fence_fails_open",
			doc:  "a\n```\ncode\nmore",
			want: []Region{{StartLine: 2, EndLine: 4, Type: RegionFencedCode}},
		},
		{
			name: "indented_closer_deeper_than_opener_does_not_close",
			doc:  "```\ncode\n  ```\nstill code\n```",
			want: []Region{{StartLine: 1, EndLine: 5, Type: RegionFencedCode}},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Analyze(tt.doc)
			if diff := cmp.Diff(tt.want, got.Regions); diff != "" {
				t.Errorf("regions mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

func TestAnalyze_Lists(t *testing.T) {
	tests := []struct {
		name string
		doc  string
		want []Region
	}{
		{
			name: "bullet_run",
			doc:  "x\n- one\n- two\n* three\ny",
			want: []Region{{StartLine: 2, EndLine: 4, Type: RegionBulletList}},
		},
		{
			name: "numbered_run",
			doc:  "1. one\n2. two\n3. three",
			want: []Region{{StartLine: 1, EndLine: 3, Type: RegionNumberedList}},
		},
		{
			name: "blank_then_item_continues",
			doc:  "- one\n\n- two\nend",
			want: []Region{{StartLine: 1, EndLine: 3, Type: RegionBulletList}},
		},
		{
			name: "blank_then_prose_ends_run",
			doc:  "- one\n\nprose paragraph\n- later",
			want: []Region{
				{StartLine: 1, EndLine: 1, Type: RegionBulletList},
				{StartLine: 4, EndLine: 4, Type: RegionBulletList},
			},
		},
		{
			name: "indented_continuation",
			doc:  "- one\n  wrapped text\n- two",
			want: []Region{{StartLine: 1, EndLine: 3, Type: RegionBulletList}},
		},
		{
			name: "dash_without_content_is_not_a_list",
			doc:  "-\n--",
			want: nil,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Analyze(tt.doc)
			if diff := cmp.Diff(tt.want, got.Regions); diff != "" {
				t.Errorf("regions mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

func TestAnalyze_TableSyntaxInsideFenceIgnored(t *testing.T) {
	doc := "```\n| not | a | table |\n- not a list\n```"
	got := Analyze(doc)
	want := []Region{{StartLine: 1, EndLine: 4, Type: RegionFencedCode}}
	if diff := cmp.Diff(want, got.Regions); diff != "" {
		t.Errorf("regions mismatch (-want +got):\n%s", diff)
	}
}

func TestAnalyze_AdjacentRegionsNotMerged(t *testing.T) {
	doc := "| a |\n| b |\n- one\n- two"
	got := Analyze(doc)
	want := []Region{
		{StartLine: 1, EndLine: 2, Type: RegionTable},
		{StartLine: 3, EndLine: 4, Type: RegionBulletList},
	}
	if diff := cmp.Diff(want, got.Regions); diff != "" {
		t.Errorf("regions mismatch (-want +got):\n%s", diff)
	}
}

// Analysis must be a pure function of the document text.
func TestAnalyze_Idempotent(t *testing.T) {
	doc := "# h\n\n| a |\n| b |\n\n- x\n- y\n\n```\ncode\n```\n"
	first := Analyze(doc)
	second := Analyze(doc)
	if diff := cmp.Diff(first, second); diff != "" {
		t.Errorf("repeated analysis differs (-first +second):\n%s", diff)
	}
}

func TestRegionFor(t *testing.T) {
	a := Analysis{Regions: []Region{{StartLine: 3, EndLine: 6, Type: RegionTable}}, LineCount: 10}

	if _, ok := a.RegionFor(2); ok {
		t.Error("line 2 should be outside the region")
	}
	if r, ok := a.RegionFor(3); !ok || r.Type != RegionTable {
		t.Error("line 3 should be inside the region")
	}
	if r, ok := a.RegionFor(5); !ok || r.Type != RegionTable {
		t.Error("line 5 should be inside the region")
	}
	// The end line itself is a safe insertion point.
	if _, ok := a.RegionFor(6); ok {
		t.Error("line 6 (inclusive end) should not count as inside")
	}
}
