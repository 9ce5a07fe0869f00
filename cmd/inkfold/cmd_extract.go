package main

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"inkfold/internal/extract"
)

var extractResponsePath string

// extractCmd runs extraction alone, for inspecting what a response parses to.
var extractCmd = &cobra.Command{
	Use:   "extract",
	Short: "Extract content from a model response without merging",
	Long: `Runs the extraction fallback chain on a raw model response and reports
which strategy recovered the content and what metadata came with it.`,
	RunE: runExtract,
}

func init() {
	extractCmd.Flags().StringVar(&extractResponsePath, "response", "-", "Path to the raw model response ('-' for stdin)")
}

func runExtract(cmd *cobra.Command, args []string) error {
	var raw []byte
	var err error
	if extractResponsePath == "-" {
		raw, err = readStdin()
	} else {
		raw, err = os.ReadFile(extractResponsePath)
	}
	if err != nil {
		return fmt.Errorf("read response: %w", err)
	}

	res := extract.Extract(string(raw), string(raw))

	fmt.Printf("strategy: %s\n", res.Strategy)
	fmt.Printf("success:  %v\n", res.Success)
	if res.Meta != nil {
		if res.Meta.Title != "" {
			fmt.Printf("title:    %s\n", res.Meta.Title)
		}
		if res.Meta.Description != "" {
			fmt.Printf("desc:     %s\n", res.Meta.Description)
		}
		if res.Meta.Slug != "" {
			fmt.Printf("slug:     %s\n", res.Meta.Slug)
		}
		if len(res.Meta.Keywords) > 0 {
			fmt.Printf("keywords: %s\n", strings.Join(res.Meta.Keywords, ", "))
		}
	}
	fmt.Println("---")
	fmt.Println(res.Content)

	if !res.Success {
		return fmt.Errorf("extraction exhausted all strategies")
	}
	return nil
}

func readStdin() ([]byte, error) {
	return io.ReadAll(os.Stdin)
}
