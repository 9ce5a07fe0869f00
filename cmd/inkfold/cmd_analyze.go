package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"inkfold/internal/article"
	"inkfold/internal/safezone"
	"inkfold/internal/structure"
)

// analyzeCmd reports the structural regions and safe zones of a document.
var analyzeCmd = &cobra.Command{
	Use:   "analyze FILE",
	Short: "Show protected regions and safe zones in an article",
	Args:  cobra.ExactArgs(1),
	RunE:  runAnalyze,
}

func runAnalyze(cmd *cobra.Command, args []string) error {
	raw, err := os.ReadFile(args[0])
	if err != nil {
		return fmt.Errorf("read article: %w", err)
	}
	art, err := article.Parse(string(raw))
	if err != nil {
		return fmt.Errorf("parse article: %w", err)
	}

	analysis := structure.Analyze(art.Content)
	fmt.Printf("lines: %d\n", analysis.LineCount)
	if len(analysis.Regions) == 0 {
		fmt.Println("protected regions: none")
	} else {
		fmt.Printf("protected regions (%d):\n", len(analysis.Regions))
		for _, r := range analysis.Regions {
			fmt.Printf("  %-13s lines %d-%d\n", r.Type, r.StartLine, r.EndLine)
		}
	}

	zones := safezone.Detect(art.Content)
	if len(zones) == 0 {
		fmt.Println("safe zones: none")
	} else {
		fmt.Printf("safe zones (%d):\n", len(zones))
		for _, z := range zones {
			fmt.Printf("  %-13s bytes %d-%d\n", z.Type, z.Start, z.End)
		}
	}
	return nil
}
