package main

import (
	"fmt"

	"github.com/charmbracelet/lipgloss"
	"github.com/spf13/cobra"

	"inkfold/internal/store"
)

var (
	historyLimit int
	historyRunID string
)

// historyCmd lists recent pipeline runs from the audit store.
var historyCmd = &cobra.Command{
	Use:   "history",
	Short: "List recent pipeline runs",
	Long: `Lists recent runs from the audit store. With --run, shows one run in full,
including the raw model response preserved for rejected edits.`,
	RunE: runHistory,
}

func init() {
	historyCmd.Flags().IntVar(&historyLimit, "limit", 20, "Maximum number of runs to list")
	historyCmd.Flags().StringVar(&historyRunID, "run", "", "Show one run by ID")
}

var (
	acceptedStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("2"))
	rejectedStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("1"))
)

func runHistory(cmd *cobra.Command, args []string) error {
	if cfg.Storage.DatabasePath == "" {
		return fmt.Errorf("no audit store configured (set storage.database_path)")
	}
	s, err := store.Open(cfg.Storage.DatabasePath)
	if err != nil {
		return err
	}
	defer s.Close()

	if historyRunID != "" {
		return showRun(s, historyRunID)
	}

	recs, err := s.Recent(historyLimit)
	if err != nil {
		return err
	}
	if len(recs) == 0 {
		fmt.Println("no runs recorded")
		return nil
	}
	for _, rec := range recs {
		status := acceptedStyle.Render("accepted")
		if rec.Rejected {
			status = rejectedStyle.Render("rejected")
		}
		fmt.Printf("%s  %s  %-12s %-16s %s  +%d/-%d\n",
			rec.CreatedAt.Format("2006-01-02 15:04:05"),
			rec.RunID, rec.Mode, rec.Strategy, status,
			rec.LinesAdded, rec.LinesRemoved)
	}
	return nil
}

func showRun(s *store.AuditStore, runID string) error {
	rec, err := s.Get(runID)
	if err != nil {
		return err
	}
	fmt.Printf("run:      %s\n", rec.RunID)
	fmt.Printf("created:  %s\n", rec.CreatedAt.Format("2006-01-02 15:04:05"))
	fmt.Printf("mode:     %s\n", rec.Mode)
	fmt.Printf("strategy: %s\n", rec.Strategy)
	if rec.Rejected {
		fmt.Printf("status:   %s\n", rejectedStyle.Render("rejected"))
		fmt.Printf("reason:   %s\n", rec.Reason)
		if rec.RawResponse != "" {
			fmt.Println("--- raw response ---")
			fmt.Println(rec.RawResponse)
		}
	} else {
		fmt.Printf("status:   %s\n", acceptedStyle.Render("accepted"))
		fmt.Printf("changes:  +%d/-%d lines, %d relocations\n",
			rec.LinesAdded, rec.LinesRemoved, rec.Adjustments)
	}
	return nil
}
