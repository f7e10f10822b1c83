package indexer

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/langtools/symdex/internal/config"
	"github.com/langtools/symdex/internal/store"
)

func writeFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	require.NoError(t, os.MkdirAll(dir, 0o755))
	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func newWalkIndexer(t *testing.T, p Parser, root string, cfg *config.Config) *Indexer {
	t.Helper()
	db, err := store.NewMemory()
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })

	idx := New(db, p, config.NewPathResolver(root, cfg), Options{Workers: 2})
	t.Cleanup(idx.Shutdown)
	return idx
}

func TestIndexDirectoryCounts(t *testing.T) {
	root := t.TempDir()
	writeFile(t, root, "a.erl", "-module(a).\n")
	writeFile(t, root, "b.erl", "-module(b).\n")
	writeFile(t, root, "c.erl", "-module(c).\n")
	writeFile(t, root, "bad1.erl", "boom\n")
	writeFile(t, root, "bad2.erl", "boom\n")

	idx := newWalkIndexer(t, &fakeParser{failOn: "boom"}, root,
		&config.Config{AppsDirs: []string{"."}})

	succeeded, failed := idx.IndexDirectory(context.Background(), root)
	assert.Equal(t, 3, succeeded)
	assert.Equal(t, 2, failed)

	docs, err := idx.Store().ListDocuments(context.Background())
	require.NoError(t, err)
	assert.Len(t, docs, 3, "failures leave no documents behind")
}

func TestIndexDirectorySkipsNonIndexable(t *testing.T) {
	root := t.TempDir()
	writeFile(t, root, "calc.erl", "-module(calc).\n")
	writeFile(t, root, "defs.hrl", "-define(X, 1).\n")
	writeFile(t, root, "README.md", "docs\n")
	writeFile(t, root, "rebar.config", "{}\n")

	idx := newWalkIndexer(t, &fakeParser{}, root, &config.Config{AppsDirs: []string{"."}})

	succeeded, failed := idx.IndexDirectory(context.Background(), root)
	assert.Equal(t, 2, succeeded, "only .erl and .hrl units are indexable")
	assert.Equal(t, 0, failed)
}

func TestIndexDirectoryHonorsExcludes(t *testing.T) {
	root := t.TempDir()
	writeFile(t, root, "calc.erl", "-module(calc).\n")
	writeFile(t, filepath.Join(root, "generated"), "proto.erl", "-module(proto).\n")

	idx := newWalkIndexer(t, &fakeParser{}, root, &config.Config{
		AppsDirs:     []string{"."},
		ExcludePaths: []string{"generated/**"},
	})

	succeeded, _ := idx.IndexDirectory(context.Background(), root)
	assert.Equal(t, 1, succeeded)
}

func TestDiscoverSkipsHiddenDirectories(t *testing.T) {
	root := t.TempDir()
	writeFile(t, root, "calc.erl", "-module(calc).\n")
	writeFile(t, filepath.Join(root, ".rebar3"), "cached.erl", "-module(cached).\n")

	idx := newWalkIndexer(t, &fakeParser{}, root, &config.Config{AppsDirs: []string{"."}})

	files, err := idx.Discover(root)
	require.NoError(t, err)
	require.Len(t, files, 1)
	assert.Equal(t, filepath.Join(root, "calc.erl"), files[0])
}

func TestIndexConfiguredRoots(t *testing.T) {
	root := t.TempDir()
	writeFile(t, filepath.Join(root, "src"), "app.erl", "-module(app).\n")
	writeFile(t, filepath.Join(root, "deps", "lib"), "dep.erl", "-module(dep).\n")

	idx := newWalkIndexer(t, &fakeParser{}, root, &config.Config{
		AppsDirs:  []string{"src"},
		DepsDirs:  []string{"deps"},
		IndexDeps: true,
	})
	succeeded, failed := idx.IndexConfiguredRoots(context.Background())
	assert.Equal(t, 2, succeeded)
	assert.Equal(t, 0, failed)
}

func TestIndexConfiguredRootsRespectsDepsToggle(t *testing.T) {
	root := t.TempDir()
	writeFile(t, filepath.Join(root, "src"), "app.erl", "-module(app).\n")
	writeFile(t, filepath.Join(root, "deps", "lib"), "dep.erl", "-module(dep).\n")

	idx := newWalkIndexer(t, &fakeParser{}, root, &config.Config{
		AppsDirs:  []string{"src"},
		DepsDirs:  []string{"deps"},
		IndexDeps: false,
	})
	succeeded, _ := idx.IndexConfiguredRoots(context.Background())
	assert.Equal(t, 1, succeeded)
}

func TestIndexableExtensions(t *testing.T) {
	assert.True(t, Indexable("src/calc.erl"))
	assert.True(t, Indexable("include/defs.HRL"))
	assert.False(t, Indexable("README.md"))
	assert.False(t, Indexable("erl"))
}
