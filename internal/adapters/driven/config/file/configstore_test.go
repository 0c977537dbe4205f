package file

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewConfigStore_Success(t *testing.T) {
	tmpDir := t.TempDir()

	store, err := NewConfigStore(tmpDir)

	require.NoError(t, err)
	require.NotNil(t, store)
	assert.Equal(t, filepath.Join(tmpDir, "config.toml"), store.Path())
}

func TestConfigStore_SetAndGet(t *testing.T) {
	store, err := NewConfigStore(t.TempDir())
	require.NoError(t, err)

	require.NoError(t, store.Set("engine.mode", "accurate"))

	val, ok := store.Get("engine.mode")
	assert.True(t, ok)
	assert.Equal(t, "accurate", val)

	_, ok = store.Get("missing.key")
	assert.False(t, ok)
}

func TestConfigStore_TypedGetters(t *testing.T) {
	store, err := NewConfigStore(t.TempDir())
	require.NoError(t, err)

	require.NoError(t, store.Set("engine.mode", "fast"))
	require.NoError(t, store.Set("pages.chunk_size", 5))
	require.NoError(t, store.Set("engine.fallback", true))
	require.NoError(t, store.Set("export.formats", []string{"md", "csv"}))

	assert.Equal(t, "fast", store.GetString("engine.mode"))
	assert.Equal(t, 5, store.GetInt("pages.chunk_size"))
	assert.True(t, store.GetBool("engine.fallback"))
	assert.Equal(t, []string{"md", "csv"}, store.GetStringSlice("export.formats"))
}

func TestConfigStore_TypedGettersMissingKeys(t *testing.T) {
	store, err := NewConfigStore(t.TempDir())
	require.NoError(t, err)

	assert.Equal(t, "", store.GetString("missing"))
	assert.Equal(t, 0, store.GetInt("missing"))
	assert.False(t, store.GetBool("missing"))
	assert.Nil(t, store.GetStringSlice("missing"))
}

func TestConfigStore_TypedGettersWrongTypes(t *testing.T) {
	store, err := NewConfigStore(t.TempDir())
	require.NoError(t, err)

	require.NoError(t, store.Set("key", 42))

	assert.Equal(t, "", store.GetString("key"))
	assert.False(t, store.GetBool("key"))
	assert.Nil(t, store.GetStringSlice("key"))
}

func TestConfigStore_PersistsAcrossInstances(t *testing.T) {
	tmpDir := t.TempDir()

	store, err := NewConfigStore(tmpDir)
	require.NoError(t, err)
	require.NoError(t, store.Set("raster.dpi", 300))
	require.NoError(t, store.Set("engine.device", "cuda"))

	reopened, err := NewConfigStore(tmpDir)
	require.NoError(t, err)

	assert.Equal(t, 300, reopened.GetInt("raster.dpi"))
	assert.Equal(t, "cuda", reopened.GetString("engine.device"))
}

func TestConfigStore_LoadFlattensNestedTables(t *testing.T) {
	tmpDir := t.TempDir()
	content := `
[engine]
mode = "accurate"
fallback = false

[pages]
chunk_size = 20

[export]
formats = ["md", "html"]
`
	require.NoError(t, os.WriteFile(filepath.Join(tmpDir, "config.toml"), []byte(content), 0600))

	store, err := NewConfigStore(tmpDir)
	require.NoError(t, err)

	assert.Equal(t, "accurate", store.GetString("engine.mode"))
	assert.False(t, store.GetBool("engine.fallback"))
	assert.Equal(t, 20, store.GetInt("pages.chunk_size"))
	assert.Equal(t, []string{"md", "html"}, store.GetStringSlice("export.formats"))
}

func TestConfigStore_SavedFileHasRestrictedPermissions(t *testing.T) {
	tmpDir := t.TempDir()
	store, err := NewConfigStore(tmpDir)
	require.NoError(t, err)

	require.NoError(t, store.Set("engine.mode", "fast"))

	info, err := os.Stat(store.Path())
	require.NoError(t, err)
	assert.Equal(t, os.FileMode(0600), info.Mode().Perm())
}

func TestConfigStore_LoadMissingFileStartsEmpty(t *testing.T) {
	store, err := NewConfigStore(t.TempDir())
	require.NoError(t, err)

	require.NoError(t, store.Load())
	_, ok := store.Get("anything")
	assert.False(t, ok)
}
