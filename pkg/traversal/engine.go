package traversal

import (
	"context"
	"fmt"
	"time"

	"fredcat/pkg/dataset"
	"fredcat/pkg/logger"
)

// IDColumn names the column holding category ids. Its values become the
// next level's frontier.
const IDColumn = "id"

// DefaultMaxDepth bounds a run to levels 0 through 9.
const DefaultMaxDepth = 10

// Source says where a level's data came from.
type Source string

const (
	SourceCached  Source = "cached"
	SourceFetched Source = "fetched"
)

// StopReason says why a run ended.
type StopReason string

const (
	// StopDepthLimit means every level up to MaxDepth was processed
	StopDepthLimit StopReason = "depth_limit"
	// StopExhausted means a level produced no categories
	StopExhausted StopReason = "exhausted"
)

// LevelSummary describes one processed level.
type LevelSummary struct {
	Level   int
	Source  Source
	Rows    int
	Queried int
	Skipped []string
	Elapsed time.Duration
}

// Result is the outcome of a run.
type Result struct {
	// Categories is every level concatenated in level order, duplicates kept
	Categories *dataset.Table
	Levels     []LevelSummary
	StopReason StopReason
	Elapsed    time.Duration
}

// Options bound the walk.
type Options struct {
	MaxDepth int
	RootIDs  []string
}

// Engine walks the category tree breadth-first, one level at a time.
type Engine struct {
	fetcher  CategoryFetcher
	store    LevelStore
	opts     Options
	logger   logger.Logger
	progress Progress
}

// New creates an engine. Zero options fall back to ten levels from root 0.
func New(fetcher CategoryFetcher, store LevelStore, opts Options, log logger.Logger, progress Progress) *Engine {
	if opts.MaxDepth <= 0 {
		opts.MaxDepth = DefaultMaxDepth
	}
	if len(opts.RootIDs) == 0 {
		opts.RootIDs = []string{"0"}
	}
	if log == nil {
		log = logger.GetLogger()
	}
	if progress == nil {
		progress = nopProgress{}
	}
	return &Engine{
		fetcher:  fetcher,
		store:    store,
		opts:     opts,
		logger:   log,
		progress: progress,
	}
}

// Run processes levels 0..MaxDepth-1. A level with a checkpoint is read
// back without any API call. Otherwise every frontier id is fetched, results
// that are empty or lack an id column are skipped, and the level is saved.
// A level that collects nothing ends the run without writing a file.
// Fetch and storage errors abort the run.
func (e *Engine) Run(ctx context.Context) (*Result, error) {
	start := time.Now()
	e.logger.Info("Starting data fetch...")

	result := &Result{StopReason: StopDepthLimit}
	var levels []*dataset.Table
	frontier := append([]string(nil), e.opts.RootIDs...)

	for level := 0; level < e.opts.MaxDepth; level++ {
		if err := ctx.Err(); err != nil {
			return nil, fmt.Errorf("level %d: %w", level, err)
		}

		levelStart := time.Now()
		data, summary, err := e.runLevel(ctx, level, frontier)
		if err != nil {
			return nil, err
		}
		summary.Elapsed = time.Since(levelStart)
		if data == nil {
			e.progress.LevelFinished(summary)
			e.logger.Info("No more categories to fetch. Ending.")
			result.StopReason = StopExhausted
			break
		}

		levels = append(levels, data)
		result.Levels = append(result.Levels, summary)
		e.progress.LevelFinished(summary)
		logger.LogLevelSummary(e.logger, level, string(summary.Source), summary.Rows, summary.Queried, len(summary.Skipped))

		if data.Empty() {
			frontier = nil
			continue
		}
		frontier, err = data.Unique(IDColumn)
		if err != nil {
			return nil, fmt.Errorf("level %d: derive next frontier: %w", level, err)
		}
	}

	result.Categories = dataset.Concat(levels...)
	result.Elapsed = time.Since(start)

	e.logger.InfoWithFields("Data fetching completed.", logger.Fields{
		"levels":      len(result.Levels),
		"categories":  result.Categories.Len(),
		"stop_reason": string(result.StopReason),
		"elapsed":     result.Elapsed,
	})
	return result, nil
}

// runLevel returns the level's data, or nil data when nothing was collected.
func (e *Engine) runLevel(ctx context.Context, level int, frontier []string) (*dataset.Table, LevelSummary, error) {
	summary := LevelSummary{Level: level}

	cached, err := e.store.Load(level)
	if err != nil {
		return nil, summary, fmt.Errorf("level %d: %w", level, err)
	}
	if cached != nil {
		e.logger.InfoWithFields(fmt.Sprintf("Found existing data for level %d, resuming...", level), logger.Fields{
			"depth": level,
			"file":  e.store.Filename(level),
			"rows":  cached.Len(),
		})
		summary.Source = SourceCached
		summary.Rows = cached.Len()
		return cached, summary, nil
	}

	summary.Source = SourceFetched
	e.progress.LevelStarted(level, len(frontier))
	e.logger.DebugWithFields("Fetching level", logger.Fields{
		"depth":    level,
		"frontier": len(frontier),
		"file":     e.store.Filename(level),
	})

	var collected []*dataset.Table
	for _, id := range frontier {
		children, err := e.fetcher.FetchChildren(ctx, id)
		summary.Queried++
		if err != nil {
			return nil, summary, fmt.Errorf("level %d: category %s: %w", level, id, err)
		}

		if children.Empty() || !children.HasColumn(IDColumn) {
			e.progress.CategoryDone(level, id, 0, true)
			e.logger.WarnWithFields(fmt.Sprintf("No data or 'id' column missing for category %s. Skipping.", id), logger.Fields{
				"depth":       level,
				"category_id": id,
			})
			summary.Skipped = append(summary.Skipped, id)
			continue
		}

		collected = append(collected, children)
		e.progress.CategoryDone(level, id, children.Len(), false)
	}

	if len(collected) == 0 {
		return nil, summary, nil
	}

	data := dataset.Concat(collected...)
	if err := e.store.Save(level, data); err != nil {
		return nil, summary, fmt.Errorf("level %d: %w", level, err)
	}
	summary.Rows = data.Len()
	return data, summary, nil
}
