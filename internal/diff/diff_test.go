package diff

import (
	"strings"
	"testing"
)

func TestCompute_SimpleAddition(t *testing.T) {
	oldContent := "line1\nline2\nline3\n"
	newContent := "line1\nline2\nline2.5\nline3\n"

	s := Compute(oldContent, newContent)
	if s.Added != 1 || s.Removed != 0 {
		t.Fatalf("Added=%d Removed=%d, want 1/0", s.Added, s.Removed)
	}
	if len(s.Hunks) != 1 {
		t.Fatalf("got %d hunks, want 1", len(s.Hunks))
	}
	if !s.Changed() {
		t.Error("Changed() should be true")
	}
}

func TestCompute_NoChange(t *testing.T) {
	content := "a\nb\nc\n"
	s := Compute(content, content)
	if s.Changed() {
		t.Errorf("identical inputs should not report changes: %+v", s)
	}
	if len(s.Hunks) != 0 {
		t.Errorf("got %d hunks, want 0", len(s.Hunks))
	}
}

func TestCompute_Replacement(t *testing.T) {
	s := Compute("keep\nold line\nkeep2\n", "keep\nnew line\nkeep2\n")
	if s.Added != 1 || s.Removed != 1 {
		t.Fatalf("Added=%d Removed=%d, want 1/1", s.Added, s.Removed)
	}
}

func TestSummaryString(t *testing.T) {
	s := Compute("a\nb\nc\n", "a\nB\nc\n")
	out := s.String()
	if !strings.Contains(out, "+B") {
		t.Errorf("summary missing added line:\n%s", out)
	}
	if !strings.Contains(out, "-b") {
		t.Errorf("summary missing removed line:\n%s", out)
	}
	if !strings.HasPrefix(out, "@@") {
		t.Errorf("summary missing hunk header:\n%s", out)
	}
}

func TestCompute_DistantChangesSplitIntoHunks(t *testing.T) {
	var oldB, newB strings.Builder
	for i := 0; i < 30; i++ {
		line := "ctx" + strings.Repeat("x", i%3)
		oldB.WriteString(line + "\n")
		newB.WriteString(line + "\n")
		if i == 2 {
			newB.WriteString("first insert\n")
		}
		if i == 27 {
			newB.WriteString("second insert\n")
		}
	}

	s := Compute(oldB.String(), newB.String())
	if s.Added != 2 {
		t.Fatalf("Added=%d, want 2", s.Added)
	}
	if len(s.Hunks) != 2 {
		t.Fatalf("got %d hunks, want 2 for changes 25 lines apart", len(s.Hunks))
	}
}
