package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"

	"fredcat/pkg/config"
	"fredcat/pkg/logger"
	"fredcat/pkg/traversal"
	"fredcat/pkg/ui"
)

var fetchCmd = &cobra.Command{
	Use:   "fetch",
	Short: "Crawl the category tree and save each level",
	Long: `Crawl the FRED category tree breadth-first.

Level 0 holds the children of the root categories (default: 0). Each later
level holds the children of every id in the level before it. A level that
already has a file in the output directory is read back instead of fetched,
so rerunning after an interruption continues at the first missing level.

The crawl stops after traversal.max_depth levels or at the first level with
no categories. Any API or storage error stops it immediately.`,
	Example: `  # Crawl with defaults (./saved_categories, CSV, 10 levels)
  FRED_API_KEY=... fredcat fetch

  # Parquet output, aggregate written alongside the levels
  FREDCAT_OUTPUT_FORMAT=parquet FREDCAT_AGGREGATE_FILE=all_categories fredcat fetch`,
	Args: cobra.NoArgs,
	RunE: runFetch,
}

func init() {
	rootCmd.AddCommand(fetchCmd)
}

func runFetch(cmd *cobra.Command, args []string) error {
	cfg, log, err := loadConfig()
	if err != nil {
		return err
	}
	if err := resolveAPIKey(cfg, log); err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	ui.PrintInfo("Output", cfg.Output.Directory)
	ui.PrintInfo("Rate limit", fmt.Sprintf("%d call(s) per %s", cfg.RateLimit.Calls, cfg.RateLimit.Period))

	var notifier *ui.Notifier
	if notifications {
		notifier = ui.NewNotifier()
	}

	result, err := crawl(ctx, cfg, log, nil)
	if err != nil {
		log.WithError(err).Error("Crawl failed")
		if notifier != nil {
			notifier.SendError("fredcat", err.Error())
		}
		return err
	}

	fmt.Fprintln(ui.Output)
	fmt.Fprintln(ui.Output, ui.RenderRun(result))
	ui.PrintSuccess(fmt.Sprintf("%s categories in %s", humanize.Comma(int64(result.Categories.Len())), result.Elapsed.Round(time.Second)))
	if notifier != nil {
		notifier.SendSuccess("fredcat", fmt.Sprintf("Crawl finished with %s categories", humanize.Comma(int64(result.Categories.Len()))))
	}
	return nil
}

// crawl wires the limiter, client, store and engine from cfg and runs one
// traversal. Progress goes to out, or ui.ProgressOutput when out is nil.
func crawl(ctx context.Context, cfg *config.Config, log logger.Logger, out io.Writer) (*traversal.Result, error) {
	if err := cfg.RequireAPIKey(); err != nil {
		return nil, err
	}

	client, err := newClient(cfg, log)
	if err != nil {
		return nil, err
	}

	store, checkpoints, err := openStore(cfg, log)
	if err != nil {
		return nil, err
	}

	engine := traversal.New(client, checkpoints, traversal.Options{
		MaxDepth: cfg.Traversal.MaxDepth,
		RootIDs:  cfg.Traversal.RootIDs,
	}, log, ui.NewLevelProgress(out, quiet))

	result, err := engine.Run(ctx)
	if err != nil {
		return nil, err
	}

	if cfg.Output.AggregateFile == "" {
		return result, nil
	}
	if len(result.Categories.Columns) == 0 {
		log.Warn("Nothing collected; aggregate file not written")
		return result, nil
	}
	name := aggregateFilename(cfg.Output.AggregateFile, store.Extension())
	if err := store.Save(result.Categories, name); err != nil {
		return nil, err
	}
	log.InfoWithFields("Aggregate saved", logger.Fields{
		"path": store.Path(name),
		"rows": result.Categories.Len(),
	})
	return result, nil
}
