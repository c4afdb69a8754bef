package browser

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/sipb/gosapweb/internal/config"
)

func newTestStore(t *testing.T) *ProfileStore {
	t.Helper()
	cfg := config.NewDefaultConfig()
	cfg.Browser.ProfileDir = t.TempDir()
	return NewProfileStore(cfg, zap.NewNop())
}

func TestProfileStoreConfigured(t *testing.T) {
	store := newTestStore(t)

	configured, err := store.Configured()
	require.NoError(t, err)
	assert.False(t, configured, "fresh directory must not count as configured")

	require.NoError(t, store.writeMarker())

	configured, err = store.Configured()
	require.NoError(t, err)
	assert.True(t, configured)
}

func TestProfileStoreLoadUnconfigured(t *testing.T) {
	store := newTestStore(t)

	session, err := store.Load(context.Background())
	assert.Nil(t, session)
	assert.ErrorIs(t, err, ErrProfileNotConfigured)
	assert.Contains(t, err.Error(), store.Dir(), "error should name the directory")
}

func TestProfileMarkerRoundTrip(t *testing.T) {
	store := newTestStore(t)
	require.NoError(t, store.writeMarker())

	marker, err := store.readMarker()
	require.NoError(t, err)
	assert.NotEmpty(t, marker.ID)
	assert.Equal(t, markerVersion, marker.Version)
	assert.False(t, marker.CreatedAt.IsZero())
}

// Re-running setup over an existing profile must not corrupt or duplicate the
// stored session artifacts: Chrome's own files are untouched and exactly one
// marker exists afterwards.
func TestProfileMarkerIdempotent(t *testing.T) {
	store := newTestStore(t)

	// Simulate pre-existing Chrome session artifacts.
	cookieDir := filepath.Join(store.Dir(), "Default")
	require.NoError(t, os.MkdirAll(cookieDir, 0o700))
	cookiePath := filepath.Join(cookieDir, "Cookies")
	require.NoError(t, os.WriteFile(cookiePath, []byte("session-state"), 0o600))

	require.NoError(t, store.writeMarker())
	first, err := store.readMarker()
	require.NoError(t, err)

	require.NoError(t, store.writeMarker())
	second, err := store.readMarker()
	require.NoError(t, err)
	assert.NotEqual(t, first.ID, second.ID, "rewritten marker records the new bootstrap run")

	// The simulated session artifacts survive untouched.
	data, err := os.ReadFile(cookiePath)
	require.NoError(t, err)
	assert.Equal(t, "session-state", string(data))

	// Exactly one marker, no temp leftovers.
	entries, err := os.ReadDir(store.Dir())
	require.NoError(t, err)
	markers := 0
	for _, e := range entries {
		if e.Name() == markerFile {
			markers++
		}
		assert.NotContains(t, e.Name(), ".tmp-", "atomic write must not leave temp files")
	}
	assert.Equal(t, 1, markers)
}

func TestProfileMarkerCorrupt(t *testing.T) {
	store := newTestStore(t)
	require.NoError(t, os.MkdirAll(store.Dir(), 0o700))
	require.NoError(t, os.WriteFile(filepath.Join(store.Dir(), markerFile), []byte("{not json"), 0o600))

	_, err := store.readMarker()
	assert.ErrorContains(t, err, "corrupt")
}
