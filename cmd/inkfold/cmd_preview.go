package main

import (
	"context"
	"fmt"

	"github.com/charmbracelet/glamour"
	"github.com/charmbracelet/lipgloss"
	"github.com/spf13/cobra"

	"inkfold/internal/diff"
	"inkfold/internal/pipeline"
)

var previewRender bool

// previewCmd runs the pipeline without writing anything back, showing the
// diff the edit would produce.
var previewCmd = &cobra.Command{
	Use:   "preview",
	Short: "Dry-run an edit and show the resulting diff",
	Long: `Runs the same pipeline as apply but never touches the article file or the
audit store. Prints a styled diff of what would change; --render additionally
shows the merged article as rendered markdown.`,
	RunE: runPreview,
}

func init() {
	previewCmd.Flags().StringVar(&applyArticlePath, "article", "", "Path to the base article (markdown, optional front matter)")
	previewCmd.Flags().StringVar(&applyResponsePath, "response", "", "Path to the raw model response ('-' for stdin)")
	previewCmd.Flags().StringVar(&applyMode, "mode", "replace", "Output mode: replace|prepend|append|patch|text_replace|meta")
	previewCmd.Flags().BoolVar(&previewRender, "render", false, "Render the merged article as terminal markdown")
	_ = previewCmd.MarkFlagRequired("article")
	_ = previewCmd.MarkFlagRequired("response")
}

var (
	addedStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("2"))
	removedStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("1"))
	contextStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("8"))
	hunkStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("6")).Bold(true)
	rejectStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("1")).Bold(true)
)

func runPreview(cmd *cobra.Command, args []string) error {
	req, err := buildRequest()
	if err != nil {
		return err
	}

	runner := pipeline.NewRunner(mergeOptions())
	out := runner.Run(context.Background(), *req)

	if out.Rejected {
		fmt.Println(rejectStyle.Render("rejected: " + out.Reason))
		fmt.Println(contextStyle.Render("the article would be left unchanged"))
		return nil
	}

	summary := diff.Compute(req.Article.Content, out.Article.Content)
	if !summary.Changed() {
		fmt.Println(contextStyle.Render("no changes"))
		return nil
	}

	printDiff(summary)
	fmt.Printf("\n%s edit via %s: +%d/-%d lines", req.Mode, out.Strategy, summary.Added, summary.Removed)
	if len(out.Adjustments) > 0 {
		fmt.Printf(", %d relocations", len(out.Adjustments))
	}
	if len(out.Skipped) > 0 {
		fmt.Printf(", %d replacements skipped", len(out.Skipped))
	}
	if len(out.Deduped) > 0 {
		fmt.Printf(", %d replacements deduped", len(out.Deduped))
	}
	fmt.Println()

	if previewRender {
		return renderMarkdown(out.Article.Content)
	}
	return nil
}

func printDiff(summary *diff.Summary) {
	for _, h := range summary.Hunks {
		fmt.Println(hunkStyle.Render(fmt.Sprintf("@@ -%d +%d @@", h.OldStart, h.NewStart)))
		for _, l := range h.Lines {
			switch l.Type {
			case diff.LineAdded:
				fmt.Println(addedStyle.Render("+" + l.Content))
			case diff.LineRemoved:
				fmt.Println(removedStyle.Render("-" + l.Content))
			default:
				fmt.Println(contextStyle.Render(" " + l.Content))
			}
		}
	}
}

func renderMarkdown(content string) error {
	r, err := glamour.NewTermRenderer(
		glamour.WithAutoStyle(),
		glamour.WithWordWrap(100),
	)
	if err != nil {
		return fmt.Errorf("markdown renderer: %w", err)
	}
	rendered, err := r.Render(content)
	if err != nil {
		return fmt.Errorf("render markdown: %w", err)
	}
	fmt.Print(rendered)
	return nil
}
