package main

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"fredcat/pkg/ui"
)

var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show the level checkpoints in the output directory",
	Long: `List the level files written by previous crawls with their row counts,
sizes and ages. The next fetch resumes after the highest contiguous level
shown here.`,
	Args: cobra.NoArgs,
	RunE: runStatus,
}

func init() {
	rootCmd.AddCommand(statusCmd)
}

func runStatus(cmd *cobra.Command, args []string) error {
	cfg, log, err := loadConfig()
	if err != nil {
		return err
	}
	store, checkpoints, err := openStore(cfg, log)
	if err != nil {
		return err
	}

	levels, err := checkpoints.Levels()
	if err != nil {
		return err
	}

	ui.PrintInfo("Output", store.Dir())
	ui.PrintInfo("Format", cfg.Output.Format)
	fmt.Fprintln(ui.Output)
	fmt.Fprintln(ui.Output, ui.RenderCheckpoints(levels, time.Now()))

	next := 0
	for _, l := range levels {
		if l.Level != next {
			break
		}
		next++
	}
	switch {
	case next >= cfg.Traversal.MaxDepth:
		ui.PrintSuccess(fmt.Sprintf("All %d levels are checkpointed", cfg.Traversal.MaxDepth))
	case next > 0:
		ui.PrintHighlight(fmt.Sprintf("Next fetch resumes at level %d", next))
	}

	if cfg.Output.AggregateFile != "" {
		name := aggregateFilename(cfg.Output.AggregateFile, store.Extension())
		if store.Exists(name) {
			ui.PrintInfo("Aggregate", store.Path(name))
		} else {
			ui.PrintWarning("Aggregate file not written yet", store.Path(name))
		}
	}
	return nil
}
