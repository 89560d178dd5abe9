package traversal

import (
	"context"

	"fredcat/pkg/dataset"
)

// CategoryFetcher returns the direct children of a category. The fred
// client implements it; rate limiting is its concern.
type CategoryFetcher interface {
	FetchChildren(ctx context.Context, categoryID string) (*dataset.Table, error)
}

// LevelStore persists completed levels. Load returns (nil, nil) for a level
// that has no checkpoint.
type LevelStore interface {
	Load(level int) (*dataset.Table, error)
	Save(level int, t *dataset.Table) error
	Filename(level int) string
}

// Progress observes a run. All methods are called from the goroutine
// running Engine.Run. CategoryDone for a skipped category comes before the
// skip is logged.
type Progress interface {
	LevelStarted(level, pending int)
	CategoryDone(level int, categoryID string, rows int, skipped bool)
	LevelFinished(summary LevelSummary)
}

type nopProgress struct{}

func (nopProgress) LevelStarted(int, int)                {}
func (nopProgress) CategoryDone(int, string, int, bool) {}
func (nopProgress) LevelFinished(LevelSummary)           {}
