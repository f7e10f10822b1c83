package cli

import (
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/langtools/symdex/internal/indexer"
	"github.com/langtools/symdex/internal/store"
	"github.com/langtools/symdex/pkg/types"
)

var moduleCmd = &cobra.Command{
	Use:   "module <name>",
	Short: "Resolve a module name to its owning file",
	Args:  cobra.ExactArgs(1),
	RunE:  runModule,
}

var specCmd = &cobra.Command{
	Use:   "spec <module:function/arity>",
	Short: "Show the recorded type signature for a function",
	Args:  cobra.ExactArgs(1),
	RunE:  runSpec,
}

var refsCmd = &cobra.Command{
	Use:   "refs <module:function/arity | ?MACRO | #record>",
	Short: "List every recorded occurrence of a symbol",
	Args:  cobra.ExactArgs(1),
	RunE:  runRefs,
}

func init() {
	rootCmd.AddCommand(moduleCmd)
	rootCmd.AddCommand(specCmd)
	rootCmd.AddCommand(refsCmd)
}

// withIndex rebuilds the in-memory index from the configured roots, then
// hands the populated indexer to fn. The index does not persist between
// invocations, so every query pays one indexing pass.
func withIndex(cmd *cobra.Command, fn func(idx *indexer.Indexer) error) error {
	idx, _, err := newIndexer()
	if err != nil {
		return err
	}
	defer idx.Shutdown()
	defer func() { _ = idx.Store().Close() }()

	if _, failed := idx.IndexConfiguredRoots(cmd.Context()); failed > 0 {
		fmt.Printf("warning: %d unit(s) failed to index, see logs\n", failed)
	}
	return fn(idx)
}

func runModule(cmd *cobra.Command, args []string) error {
	return withIndex(cmd, func(idx *indexer.Indexer) error {
		uri, err := idx.Store().LookupModule(cmd.Context(), args[0])
		if errors.Is(err, store.ErrNotFound) {
			return fmt.Errorf("module %s is not indexed", args[0])
		}
		if err != nil {
			return err
		}
		fmt.Println(uri.Path())
		return nil
	})
}

func runSpec(cmd *cobra.Command, args []string) error {
	key, err := types.ParseSymbolKey(args[0])
	if err != nil {
		return err
	}
	if key.Namespace != types.NSFunction {
		return fmt.Errorf("spec lookup wants module:function/arity, got %s", args[0])
	}
	return withIndex(cmd, func(idx *indexer.Indexer) error {
		sig, err := idx.Store().GetSignature(cmd.Context(), key.Module, key.Name, key.Arity)
		if errors.Is(err, store.ErrNotFound) {
			return fmt.Errorf("no signature recorded for %s", key)
		}
		if err != nil {
			return err
		}
		fmt.Println(sig.Raw)
		if len(sig.Args) > 0 {
			fmt.Printf("  args:   %s\n", strings.Join(sig.Args, ", "))
		}
		if sig.Return != "" {
			fmt.Printf("  return: %s\n", sig.Return)
		}
		return nil
	})
}

func runRefs(cmd *cobra.Command, args []string) error {
	key, err := types.ParseSymbolKey(args[0])
	if err != nil {
		return err
	}
	return withIndex(cmd, func(idx *indexer.Indexer) error {
		refs, err := idx.Store().ReferencesForKey(cmd.Context(), key)
		if err != nil {
			return err
		}
		if len(refs) == 0 {
			fmt.Printf("no references to %s\n", key)
			return nil
		}
		for _, ref := range refs {
			fmt.Printf("%s:%d:%d\n", ref.URI.Path(), ref.Range.Start.Line, ref.Range.Start.Column)
		}
		return nil
	})
}
