package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/langtools/symdex/pkg/types"
)

func TestLoadMissingFileYieldsDefaults(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "absent.yaml"))
	require.NoError(t, err)

	assert.Equal(t, []string{"src"}, cfg.AppsDirs)
	assert.Equal(t, []string{"deps"}, cfg.DepsDirs)
	assert.True(t, cfg.IndexDeps)
	assert.False(t, cfg.IndexOTP)
}

func TestLoadFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "symdex.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
apps_dirs:
  - apps/core
  - apps/web
include_dirs:
  - include
otp_path: /usr/lib/erlang
exclude_paths:
  - "**/generated/**"
index_otp: true
workers: 4
`), 0o644))

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, []string{"apps/core", "apps/web"}, cfg.AppsDirs)
	assert.Equal(t, []string{"include"}, cfg.IncludeDirs)
	assert.Equal(t, "/usr/lib/erlang", cfg.OTPPath)
	assert.Equal(t, []string{"**/generated/**"}, cfg.ExcludePaths)
	assert.True(t, cfg.IndexOTP)
	assert.Equal(t, 4, cfg.Workers)
	assert.Equal(t, []string{"deps"}, cfg.DepsDirs, "missing keys keep defaults")
}

func TestLoadRejectsMalformedYAML(t *testing.T) {
	path := filepath.Join(t.TempDir(), "bad.yaml")
	require.NoError(t, os.WriteFile(path, []byte("apps_dirs: [unclosed"), 0o644))

	_, err := Load(path)
	assert.Error(t, err)
}

func TestResolverLocate(t *testing.T) {
	root := t.TempDir()
	require.NoError(t, os.MkdirAll(filepath.Join(root, "lib", "src"), 0o755))
	target := filepath.Join(root, "lib", "src", "calc.erl")
	require.NoError(t, os.WriteFile(target, []byte("-module(calc).\n"), 0o644))

	r := NewPathResolver(root, &Config{AppsDirs: []string{"lib"}})

	located, err := r.Locate("calc.erl")
	require.NoError(t, err)
	assert.Equal(t, target, located)

	// A directly reachable path wins over root search.
	located, err = r.Locate(target)
	require.NoError(t, err)
	assert.Equal(t, target, located)

	_, err = r.Locate("missing.erl")
	assert.ErrorIs(t, err, types.ErrFileNotFound)
}

func TestResolverExcluded(t *testing.T) {
	root := t.TempDir()
	r := NewPathResolver(root, &Config{
		ExcludePaths: []string{"deps/legacy/**", "**/*_gen.erl"},
	})

	assert.True(t, r.Excluded(filepath.Join(root, "deps", "legacy", "src", "old.erl")))
	assert.True(t, r.Excluded(filepath.Join(root, "src", "proto_gen.erl")))
	assert.False(t, r.Excluded(filepath.Join(root, "src", "calc.erl")))
}

func TestResolverEntryRoots(t *testing.T) {
	root := t.TempDir()

	r := NewPathResolver(root, &Config{
		AppsDirs:  []string{"src"},
		DepsDirs:  []string{"deps"},
		OTPPath:   "/usr/lib/erlang",
		IndexDeps: true,
		IndexOTP:  false,
	})
	roots := r.EntryRoots()
	assert.Equal(t, []string{
		filepath.Join(root, "src"),
		filepath.Join(root, "deps"),
	}, roots, "runtime library stays out unless toggled on")

	r = NewPathResolver(root, &Config{
		AppsDirs: []string{"src"},
		DepsDirs: []string{"deps"},
		OTPPath:  "/usr/lib/erlang",
		IndexOTP: true,
	})
	roots = r.EntryRoots()
	assert.Equal(t, []string{
		filepath.Join(root, "src"),
		"/usr/lib/erlang",
	}, roots, "deps toggle off, runtime library on")
}
