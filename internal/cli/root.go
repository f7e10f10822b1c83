// Package cli wires the indexing core into the symdex command line.
package cli

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/langtools/symdex/internal/config"
)

var (
	cfgFile string
	cfg     *config.Config
	rootDir string
)

var rootCmd = &cobra.Command{
	Use:   "symdex",
	Short: "symdex - symbol indexing core for Erlang tooling",
	Long: `symdex ingests Erlang source trees, extracts symbol-level facts
(module identity, type signatures, cross-references), and answers direct
lookups over the resulting index.

The index lives in memory and is rebuilt from source on every invocation.

Example usage:
  symdex index .                 # Index a project tree and report counts
  symdex module calc             # Resolve a module name to its file
  symdex spec calc:encode/2      # Show the recorded type signature
  symdex refs calc:encode/2      # List call sites of a function
  symdex refs '?TIMEOUT'         # List macro uses`,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		var err error

		if rootDir == "" {
			rootDir, err = os.Getwd()
			if err != nil {
				return fmt.Errorf("failed to get working directory: %w", err)
			}
		}

		cfg, err = config.Load(cfgFile)
		if err != nil {
			return fmt.Errorf("failed to load config: %w", err)
		}

		return nil
	},
	SilenceUsage: true,
}

// Execute runs the root command.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "symdex.yaml", "config file")
	rootCmd.PersistentFlags().StringVarP(&rootDir, "dir", "d", "", "project root (default is current directory)")
}
