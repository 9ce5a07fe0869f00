// inkfold folds untrusted model output into markdown articles without
// corrupting them: it recovers content from whatever wrapping the model used,
// relocates insertions that would split tables, lists, or code fences, and
// refuses replacements that would destroy existing content.
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"inkfold/internal/config"
	"inkfold/internal/logging"
)

var (
	// Global flags
	verbose    bool
	configPath string
	workspace  string

	// Loaded configuration
	cfg *config.Config

	// Logger
	logger *zap.Logger
)

var rootCmd = &cobra.Command{
	Use:   "inkfold",
	Short: "inkfold - safe markdown mutation from model output",
	Long: `inkfold applies model-generated edits to markdown articles.

Model output is untrusted: it arrives as clean JSON, fenced JSON, JSON with
raw control characters, JSON buried in prose, bare markdown, or truncated
garbage. inkfold recovers the payload, folds it into the base document under
the configured output mode, and rejects edits that would corrupt or destroy
existing content.`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		zcfg := zap.NewProductionConfig()
		if verbose {
			zcfg.Level = zap.NewAtomicLevelAt(zapcore.DebugLevel)
		}
		var err error
		logger, err = zcfg.Build()
		if err != nil {
			return fmt.Errorf("initialize logger: %w", err)
		}

		cfg, err = config.Load(configPath)
		if err != nil {
			return err
		}

		if workspace == "" {
			workspace, _ = os.Getwd()
		}
		return logging.Initialize(workspace, logging.Options{
			DebugMode:  cfg.Logging.DebugMode,
			Level:      cfg.Logging.Level,
			JSONFormat: cfg.Logging.JSONFormat,
			Categories: cfg.Logging.Categories,
		})
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		logging.Close()
		if logger != nil {
			_ = logger.Sync()
		}
	},
}

func init() {
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Enable debug logging")
	rootCmd.PersistentFlags().StringVar(&configPath, "config", "inkfold.yaml", "Path to config file")
	rootCmd.PersistentFlags().StringVar(&workspace, "workspace", "", "Workspace directory (default: cwd)")

	rootCmd.AddCommand(applyCmd)
	rootCmd.AddCommand(extractCmd)
	rootCmd.AddCommand(analyzeCmd)
	rootCmd.AddCommand(previewCmd)
	rootCmd.AddCommand(historyCmd)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
