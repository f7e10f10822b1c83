package indexer

import (
	"context"
	"io/fs"
	"log"
	"path/filepath"
	"strings"
	"sync/atomic"

	"golang.org/x/sync/errgroup"
)

// indexableExtensions mark files as source or header units.
var indexableExtensions = map[string]bool{
	".erl": true,
	".hrl": true,
}

// Indexable reports whether a path names an indexable unit.
func Indexable(path string) bool {
	return indexableExtensions[strings.ToLower(filepath.Ext(path))]
}

// Discover enumerates the indexable files under root, honoring the
// configured exclusion globs and skipping hidden directories.
func (idx *Indexer) Discover(root string) ([]string, error) {
	var files []string
	err := filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			if path != root && strings.HasPrefix(d.Name(), ".") {
				return filepath.SkipDir
			}
			if path != root && idx.resolver.Excluded(path) {
				return filepath.SkipDir
			}
			return nil
		}
		if !Indexable(path) || idx.resolver.Excluded(path) {
			return nil
		}
		files = append(files, path)
		return nil
	})
	return files, err
}

// IndexPaths indexes the given files synchronously with bounded concurrency
// and returns aggregate counts. Per-file failures are logged and counted,
// never propagated. onDone, when non-nil, is called after each file.
func (idx *Indexer) IndexPaths(ctx context.Context, paths []string, onDone func(path string, err error)) (succeeded, failed int) {
	var ok, bad atomic.Int32

	g := new(errgroup.Group)
	g.SetLimit(idx.workers)
	for _, path := range paths {
		path := path
		g.Go(func() error {
			_, err := idx.IndexFile(ctx, path, ModeSync)
			if err != nil {
				log.Printf("indexer: %s: %v", path, err)
				bad.Add(1)
			} else {
				ok.Add(1)
			}
			if onDone != nil {
				onDone(path, err)
			}
			return nil
		})
	}
	_ = g.Wait()

	return int(ok.Load()), int(bad.Load())
}

// IndexDirectory enumerates indexable units under root and indexes each one
// synchronously, blocking until the walk completes. Failures are per-file
// and never abort the walk; causes are only available via logs.
func (idx *Indexer) IndexDirectory(ctx context.Context, root string) (succeeded, failed int) {
	files, err := idx.Discover(root)
	if err != nil {
		log.Printf("indexer: walk %s: %v", root, err)
	}
	return idx.IndexPaths(ctx, files, nil)
}

// IndexConfiguredRoots walks every configured entry root: application dirs
// always, dependency dirs and the runtime-library tree when their toggles
// are enabled.
func (idx *Indexer) IndexConfiguredRoots(ctx context.Context) (succeeded, failed int) {
	for _, root := range idx.resolver.EntryRoots() {
		ok, bad := idx.IndexDirectory(ctx, root)
		succeeded += ok
		failed += bad
	}
	return succeeded, failed
}
