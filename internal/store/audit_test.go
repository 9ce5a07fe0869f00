package store

import (
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func openTestStore(t *testing.T) *AuditStore {
	t.Helper()
	s, err := Open(filepath.Join(t.TempDir(), "audit.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = s.Close() })
	return s
}

func TestRecordAndGet(t *testing.T) {
	s := openTestStore(t)

	rec := RunRecord{
		RunID:       "r1",
		Mode:        "replace",
		Strategy:    "direct_parse",
		Rejected:    true,
		Reason:      "shrinkage",
		RawResponse: `{"content":"tiny"}`,
		Adjustments: 2,
	}
	require.NoError(t, s.Record(rec))

	got, err := s.Get("r1")
	require.NoError(t, err)
	assert.Equal(t, "replace", got.Mode)
	assert.True(t, got.Rejected)
	assert.Equal(t, "shrinkage", got.Reason)
	assert.Equal(t, `{"content":"tiny"}`, got.RawResponse, "rejected runs keep the raw response for debugging")
	assert.Equal(t, 2, got.Adjustments)
	assert.False(t, got.CreatedAt.IsZero())
}

func TestRecord_AcceptedRunDropsRawResponse(t *testing.T) {
	s := openTestStore(t)

	require.NoError(t, s.Record(RunRecord{
		RunID:       "r2",
		Mode:        "append",
		Strategy:    "fenced_json",
		RawResponse: "large response body",
		LinesAdded:  5,
	}))

	got, err := s.Get("r2")
	require.NoError(t, err)
	assert.Empty(t, got.RawResponse)
	assert.Equal(t, 5, got.LinesAdded)
}

func TestRecent_NewestFirst(t *testing.T) {
	s := openTestStore(t)

	base := time.Now().Add(-time.Hour)
	for i, id := range []string{"a", "b", "c"} {
		require.NoError(t, s.Record(RunRecord{
			RunID:     id,
			CreatedAt: base.Add(time.Duration(i) * time.Minute),
			Mode:      "replace",
			Strategy:  "direct_parse",
		}))
	}

	recs, err := s.Recent(2)
	require.NoError(t, err)
	require.Len(t, recs, 2)
	assert.Equal(t, "c", recs[0].RunID)
	assert.Equal(t, "b", recs[1].RunID)
}

func TestGet_Missing(t *testing.T) {
	s := openTestStore(t)
	_, err := s.Get("nope")
	assert.Error(t, err)
}
