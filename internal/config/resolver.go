package config

import (
	"os"
	"path/filepath"

	"github.com/bmatcuk/doublestar/v4"

	"github.com/langtools/symdex/pkg/types"
)

// PathResolver resolves file names against the configured search roots and
// answers exclusion queries. It holds no mutable state and is safe for
// concurrent use.
type PathResolver struct {
	root string
	cfg  *Config
}

// NewPathResolver builds a resolver rooted at the project directory.
func NewPathResolver(root string, cfg *Config) *PathResolver {
	if cfg == nil {
		cfg = Default()
	}
	abs, err := filepath.Abs(root)
	if err != nil {
		abs = root
	}
	return &PathResolver{root: abs, cfg: cfg}
}

// Root returns the project root directory.
func (r *PathResolver) Root() string {
	return r.root
}

// Config returns the resolver's configuration.
func (r *PathResolver) Config() *Config {
	return r.cfg
}

// SearchRoots returns the ordered directories consulted for single-file
// lookups: application dirs, include dirs, dependency dirs, then the runtime
// library when configured.
func (r *PathResolver) SearchRoots() []string {
	var roots []string
	for _, d := range r.cfg.AppsDirs {
		roots = append(roots, r.abs(d))
	}
	for _, d := range r.cfg.IncludeDirs {
		roots = append(roots, r.abs(d))
	}
	for _, d := range r.cfg.DepsDirs {
		roots = append(roots, r.abs(d))
	}
	if r.cfg.OTPPath != "" {
		roots = append(roots, r.abs(r.cfg.OTPPath))
	}
	return roots
}

// EntryRoots returns the directories a bulk indexing run walks: application
// and include roots always, dependency and runtime-library trees when their
// toggles allow.
func (r *PathResolver) EntryRoots() []string {
	var roots []string
	for _, d := range r.cfg.AppsDirs {
		roots = append(roots, r.abs(d))
	}
	for _, d := range r.cfg.IncludeDirs {
		roots = append(roots, r.abs(d))
	}
	if r.cfg.IndexDeps {
		for _, d := range r.cfg.DepsDirs {
			roots = append(roots, r.abs(d))
		}
	}
	if r.cfg.IndexOTP && r.cfg.OTPPath != "" {
		roots = append(roots, r.abs(r.cfg.OTPPath))
	}
	return roots
}

// Locate finds a file among the search roots. An absolute or directly
// reachable path is used as-is; otherwise each root is tried along with its
// conventional src/ and include/ subdirectories.
func (r *PathResolver) Locate(name string) (string, error) {
	if fileExists(name) {
		abs, err := filepath.Abs(name)
		if err != nil {
			return "", err
		}
		return abs, nil
	}

	for _, root := range r.SearchRoots() {
		for _, candidate := range []string{
			filepath.Join(root, name),
			filepath.Join(root, "src", name),
			filepath.Join(root, "include", name),
		} {
			if fileExists(candidate) {
				return candidate, nil
			}
		}
	}
	return "", types.ErrFileNotFound
}

// Excluded reports whether a path matches one of the configured exclusion
// globs. Paths are matched relative to the project root.
func (r *PathResolver) Excluded(path string) bool {
	rel, err := filepath.Rel(r.root, path)
	if err != nil {
		rel = path
	}
	rel = filepath.ToSlash(rel)
	for _, pattern := range r.cfg.ExcludePaths {
		if matched, err := doublestar.Match(pattern, rel); err == nil && matched {
			return true
		}
	}
	return false
}

func (r *PathResolver) abs(dir string) string {
	if filepath.IsAbs(dir) {
		return dir
	}
	return filepath.Join(r.root, dir)
}

func fileExists(path string) bool {
	info, err := os.Stat(path)
	return err == nil && !info.IsDir()
}
