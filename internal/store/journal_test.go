// File: internal/store/journal_test.go
package store

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"
	"go.uber.org/zap"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

func openTestJournal(t *testing.T) *Journal {
	t.Helper()
	j, err := Open(filepath.Join(t.TempDir(), "journal", "submissions.db"), zap.NewNop())
	require.NoError(t, err)
	t.Cleanup(func() { assert.NoError(t, j.Close()) })
	return j
}

type snapshotRow struct {
	CostObject  string `json:"cost_object"`
	AmountCents int64  `json:"amount_cents"`
}

func TestJournalRecordAndLookup(t *testing.T) {
	j := openTestJournal(t)
	ctx := context.Background()

	rows := []snapshotRow{
		{CostObject: "6666666", AmountCents: 500},
		{CostObject: "2735326", AmountCents: 1099},
	}
	e, err := j.Record(ctx, "9069467", "Ben Bitdiddle", "Release party", 1599, rows, 2)
	require.NoError(t, err)
	assert.NotEmpty(t, e.ID)
	assert.False(t, e.SubmittedAt.IsZero())
	assert.Contains(t, e.LineItems, "6666666")

	got, err := j.ByRFPNumber(ctx, "9069467")
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, e.ID, got[0].ID)
	assert.Equal(t, int64(1599), got[0].TotalCents)
	assert.Equal(t, 2, got[0].Receipts)

	var decoded []snapshotRow
	require.NoError(t, json.UnmarshalFromString(got[0].LineItems, &decoded))
	assert.Equal(t, rows, decoded)

	none, err := j.ByRFPNumber(ctx, "0000000")
	require.NoError(t, err)
	assert.Empty(t, none)
}

func TestJournalRecent(t *testing.T) {
	j := openTestJournal(t)
	ctx := context.Background()

	for _, num := range []string{"100", "200", "300"} {
		_, err := j.Record(ctx, num, "Alyssa P. Hacker", "req "+num, 100, nil, 0)
		require.NoError(t, err)
	}

	recent, err := j.Recent(ctx, 2)
	require.NoError(t, err)
	require.Len(t, recent, 2)
	// Newest first. Timestamps may collide at second resolution, so accept
	// either order within the pair but never the oldest entry.
	for _, e := range recent {
		assert.NotEqual(t, "100", e.RFPNumber)
	}
}

func TestJournalReopen(t *testing.T) {
	path := filepath.Join(t.TempDir(), "submissions.db")
	j, err := Open(path, zap.NewNop())
	require.NoError(t, err)
	_, err = j.Record(context.Background(), "42", "p", "r", 1, nil, 0)
	require.NoError(t, err)
	require.NoError(t, j.Close())

	j2, err := Open(path, zap.NewNop())
	require.NoError(t, err)
	defer j2.Close()
	got, err := j2.ByRFPNumber(context.Background(), "42")
	require.NoError(t, err)
	assert.Len(t, got, 1)
}
