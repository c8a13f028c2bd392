package ingest

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestChunkName(t *testing.T) {
	assert.Equal(t, "dining_max.chunk.txt", ChunkName("dining_max.txt"))
	assert.Equal(t, "terms.v2.chunk.txt", ChunkName("dir/terms.v2.md"))
	assert.Equal(t, "README.chunk.txt", ChunkName("README"))
}

func TestRun(t *testing.T) {
	raw := t.TempDir()
	chunks := filepath.Join(t.TempDir(), "chunks")

	require.NoError(t, os.WriteFile(filepath.Join(raw, "b.md"), []byte("# Card B\n5% dining"), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(raw, "a.txt"), []byte("超市 5%"), 0o644))
	require.NoError(t, os.Mkdir(filepath.Join(raw, "nested"), 0o755))

	n, err := Run(raw, chunks, nil)
	require.NoError(t, err)
	assert.Equal(t, 2, n)

	got, err := os.ReadFile(filepath.Join(chunks, "a.chunk.txt"))
	require.NoError(t, err)
	assert.Equal(t, "超市 5%", string(got))

	got, err = os.ReadFile(filepath.Join(chunks, "b.chunk.txt"))
	require.NoError(t, err)
	assert.Equal(t, "# Card B\n5% dining", string(got))
}

func TestRun_Empty(t *testing.T) {
	chunks := filepath.Join(t.TempDir(), "chunks")

	n, err := Run(t.TempDir(), chunks, nil)
	require.NoError(t, err)
	assert.Zero(t, n)
	assert.DirExists(t, chunks)

	n, err = Run(filepath.Join(t.TempDir(), "missing"), chunks, nil)
	require.NoError(t, err)
	assert.Zero(t, n)
}
