package discovery

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestResolveRoot(t *testing.T) {
	dir := t.TempDir()

	file := filepath.Join(dir, "notes.txt")
	require.NoError(t, os.WriteFile(file, []byte("x"), 0600))

	resolved, err := ResolveRoot(dir)
	require.NoError(t, err)
	assert.Equal(t, dir, resolved)

	_, err = ResolveRoot(filepath.Join(dir, "missing"))
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrProjectRootNotFound)

	_, err = ResolveRoot(file)
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrProjectRootNotFound)

	wd, err := os.Getwd()
	require.NoError(t, err)

	resolved, err = ResolveRoot("")
	require.NoError(t, err)
	assert.Equal(t, wd, resolved)
}

func TestFindRoot(t *testing.T) {
	root := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(root, "go.mod"), []byte("module example.com/x\n"), 0600))

	nested := filepath.Join(root, "internal", "store")
	require.NoError(t, os.MkdirAll(nested, 0755))

	found, err := FindRoot(nested)
	require.NoError(t, err)
	assert.Equal(t, root, found)

	assert.True(t, HasMarker(root))
	assert.False(t, HasMarker(nested))
	assert.True(t, FileExists(filepath.Join(root, "go.mod")))
	assert.False(t, DirExists(filepath.Join(root, "go.mod")))
	assert.True(t, DirExists(nested))
}
