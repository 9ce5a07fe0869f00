package main

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"inkfold/internal/article"
	"inkfold/internal/merge"
	"inkfold/internal/pipeline"
	"inkfold/internal/store"
)

var (
	applyArticlePath  string
	applyResponsePath string
	applyMode         string
	applyOutputPath   string
)

// applyCmd runs the full mutation pipeline and writes the result.
var applyCmd = &cobra.Command{
	Use:   "apply",
	Short: "Apply a model response to an article",
	Long: `Runs the full pipeline: extract content from the model response, fold it
into the article under the given output mode, and write the result back.

Rejected edits leave the article file untouched and exit non-zero; the raw
response is preserved in the audit store for inspection.`,
	RunE: runApply,
}

func init() {
	applyCmd.Flags().StringVar(&applyArticlePath, "article", "", "Path to the base article (markdown, optional front matter)")
	applyCmd.Flags().StringVar(&applyResponsePath, "response", "", "Path to the raw model response ('-' for stdin)")
	applyCmd.Flags().StringVar(&applyMode, "mode", "replace", "Output mode: replace|prepend|append|patch|text_replace|meta")
	applyCmd.Flags().StringVar(&applyOutputPath, "out", "", "Output path (default: overwrite --article)")
	_ = applyCmd.MarkFlagRequired("article")
	_ = applyCmd.MarkFlagRequired("response")
}

func runApply(cmd *cobra.Command, args []string) error {
	req, err := buildRequest()
	if err != nil {
		return err
	}

	runner := pipeline.NewRunner(mergeOptions())
	out := runner.Run(context.Background(), *req)

	recordRun(out, string(req.Mode), req.RawResponse)

	for _, adj := range out.Adjustments {
		logger.Warn("patch relocated",
			zap.Int("from_line", adj.OriginalLine),
			zap.Int("to_line", adj.AdjustedLine),
			zap.String("region", string(adj.RegionType)))
	}
	for _, skipped := range out.Skipped {
		logger.Warn("replacement not found in article", zap.String("find", skipped))
	}
	for _, dropped := range out.Deduped {
		logger.Warn("replacement dropped, url already introduced", zap.String("find", dropped))
	}

	if out.Rejected {
		return fmt.Errorf("edit rejected (run %s): %s", out.RunID, out.Reason)
	}

	rendered, err := out.Article.Render()
	if err != nil {
		return err
	}
	target := applyOutputPath
	if target == "" {
		target = applyArticlePath
	}
	if err := os.WriteFile(target, []byte(rendered), 0644); err != nil {
		return fmt.Errorf("write article: %w", err)
	}

	fmt.Printf("run %s: applied %s edit (+%d/-%d lines, %d relocations, %d skipped, %d deduped)\n",
		out.RunID, req.Mode, out.LinesAdded, out.LinesRemoved, len(out.Adjustments), len(out.Skipped), len(out.Deduped))
	return nil
}

// mergeOptions builds the guard and patch options from configuration.
func mergeOptions() merge.Options {
	return merge.Options{
		MinLengthRatio:  cfg.Guards.MinLengthRatio,
		ValidatePatches: cfg.Patches.ValidateStructures,
	}
}

// buildRequest loads the article and response named by the apply/preview
// flags into a pipeline request.
func buildRequest() (*pipeline.Request, error) {
	mode, err := merge.ParseMode(applyMode)
	if err != nil {
		return nil, err
	}

	articleRaw, err := os.ReadFile(applyArticlePath)
	if err != nil {
		return nil, fmt.Errorf("read article: %w", err)
	}
	base, err := article.Parse(string(articleRaw))
	if err != nil {
		return nil, err
	}

	var responseRaw []byte
	if applyResponsePath == "-" {
		responseRaw, err = readStdin()
	} else {
		responseRaw, err = os.ReadFile(applyResponsePath)
	}
	if err != nil {
		return nil, fmt.Errorf("read response: %w", err)
	}

	return &pipeline.Request{
		Article:     base,
		Mode:        mode,
		RawResponse: string(responseRaw),
	}, nil
}

// recordRun writes the outcome to the audit store when one is configured.
// Audit failures are logged, never fatal.
func recordRun(out pipeline.Outcome, mode, raw string) {
	if cfg.Storage.DatabasePath == "" {
		return
	}
	s, err := store.Open(cfg.Storage.DatabasePath)
	if err != nil {
		logger.Warn("audit store unavailable", zap.Error(err))
		return
	}
	defer s.Close()

	err = s.Record(store.RunRecord{
		RunID:        out.RunID,
		Mode:         mode,
		Strategy:     out.Strategy,
		Rejected:     out.Rejected,
		Reason:       out.Reason,
		RawResponse:  raw,
		Adjustments:  len(out.Adjustments),
		LinesAdded:   out.LinesAdded,
		LinesRemoved: out.LinesRemoved,
	})
	if err != nil {
		logger.Warn("audit record failed", zap.Error(err))
	}
}
