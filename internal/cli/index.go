package cli

import (
	"fmt"
	"path/filepath"
	"time"

	"github.com/schollz/progressbar/v3"
	"github.com/spf13/cobra"

	"github.com/langtools/symdex/internal/config"
	"github.com/langtools/symdex/internal/indexer"
	"github.com/langtools/symdex/internal/parser"
	"github.com/langtools/symdex/internal/store"
)

var indexCmd = &cobra.Command{
	Use:   "index [path]",
	Short: "Index a source tree and report counts",
	Long: `Index every .erl and .hrl unit under the given path, or under the
configured application, dependency, and runtime-library roots when no path
is given. Per-file failures are counted and logged, never fatal.`,
	Args: cobra.MaximumNArgs(1),
	RunE: runIndex,
}

func init() {
	rootCmd.AddCommand(indexCmd)
}

// newIndexer builds a fresh in-memory index bound to the configured roots.
func newIndexer() (*indexer.Indexer, *config.PathResolver, error) {
	db, err := store.NewMemory()
	if err != nil {
		return nil, nil, fmt.Errorf("failed to open store: %w", err)
	}
	resolver := config.NewPathResolver(rootDir, cfg)
	return indexer.New(db, parser.New(), resolver, indexer.Options{Workers: cfg.Workers}), resolver, nil
}

func runIndex(cmd *cobra.Command, args []string) error {
	idx, resolver, err := newIndexer()
	if err != nil {
		return err
	}
	defer idx.Shutdown()
	defer func() { _ = idx.Store().Close() }()

	roots := resolver.EntryRoots()
	if len(args) > 0 {
		path, err := filepath.Abs(args[0])
		if err != nil {
			return fmt.Errorf("invalid path: %w", err)
		}
		roots = []string{path}
	}

	start := time.Now()
	var succeeded, failed int
	for _, root := range roots {
		files, err := idx.Discover(root)
		if err != nil {
			fmt.Printf("skipping %s: %v\n", root, err)
			continue
		}
		if len(files) == 0 {
			continue
		}

		bar := progressbar.NewOptions(len(files),
			progressbar.OptionSetDescription(fmt.Sprintf("Indexing %s", root)),
			progressbar.OptionSetWidth(40),
			progressbar.OptionShowCount(),
			progressbar.OptionOnCompletion(func() { fmt.Println() }),
		)
		ok, bad := idx.IndexPaths(cmd.Context(), files, func(string, error) {
			_ = bar.Add(1)
		})
		succeeded += ok
		failed += bad
	}

	fmt.Printf("Indexed %d unit(s), %d failure(s) in %v\n",
		succeeded, failed, time.Since(start).Round(time.Millisecond))
	return nil
}
