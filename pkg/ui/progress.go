package ui

import (
	"fmt"
	"io"
	"strings"
	"sync"
	"time"

	"github.com/dustin/go-humanize"

	"fredcat/pkg/traversal"
)

const (
	barFilled = "━"
	barEmpty  = "─"
	barWidth  = 20
)

// LevelProgress draws a single updating line per level while the crawler
// works through a frontier.
type LevelProgress struct {
	mu      sync.Mutex
	out     io.Writer
	quiet   bool
	now     func() time.Time
	level   int
	pending int
	done    int
	rows    int
	skipped int
	started time.Time
}

// NewLevelProgress writes to out, or ProgressOutput when out is nil. With
// quiet set only the per-level summary lines are printed.
func NewLevelProgress(out io.Writer, quiet bool) *LevelProgress {
	if out == nil {
		out = ProgressOutput
	}
	return &LevelProgress{out: out, quiet: quiet, now: time.Now}
}

var _ traversal.Progress = (*LevelProgress)(nil)

func (p *LevelProgress) LevelStarted(level, pending int) {
	p.mu.Lock()
	defer p.mu.Unlock()

	p.level = level
	p.pending = pending
	p.done, p.rows, p.skipped = 0, 0, 0
	p.started = p.now()
	p.draw()
}

func (p *LevelProgress) CategoryDone(level int, categoryID string, rows int, skipped bool) {
	p.mu.Lock()
	defer p.mu.Unlock()

	p.done++
	p.rows += rows
	if skipped {
		p.skipped++
	}
	p.draw()
	if skipped && !p.quiet {
		// the skip warning follows on its own line
		fmt.Fprint(p.out, "\n")
	}
}

func (p *LevelProgress) LevelFinished(s traversal.LevelSummary) {
	p.mu.Lock()
	defer p.mu.Unlock()

	if !p.quiet && s.Source == traversal.SourceFetched {
		fmt.Fprint(p.out, "\n")
	}

	switch {
	case s.Source == traversal.SourceCached:
		fmt.Fprintf(p.out, "%s level %d • %s rows %s\n",
			Dim("↺"), s.Level, humanize.Comma(int64(s.Rows)), Dim("(checkpoint)"))
	case s.Rows == 0:
		fmt.Fprintf(p.out, "%s level %d • no categories\n", Yellow("∅"), s.Level)
	default:
		line := fmt.Sprintf("%s level %d • %s rows from %s categories • %s",
			Green("✓"), s.Level,
			humanize.Comma(int64(s.Rows)),
			humanize.Comma(int64(s.Queried)),
			s.Elapsed.Round(time.Second))
		if n := len(s.Skipped); n > 0 {
			line += " • " + Yellow(fmt.Sprintf("%s skipped", humanize.Comma(int64(n))))
		}
		fmt.Fprintln(p.out, line)
	}
}

// draw must be called with mu held
func (p *LevelProgress) draw() {
	if p.quiet {
		return
	}
	fmt.Fprintf(p.out, "\r%s", p.line())
}

func (p *LevelProgress) line() string {
	filled := 0
	if p.pending > 0 {
		filled = p.done * barWidth / p.pending
	}
	bar := strings.Repeat(barFilled, filled) + strings.Repeat(barEmpty, barWidth-filled)

	line := fmt.Sprintf("%s [%s] %s/%s • %s rows",
		Cyan(fmt.Sprintf("level %d", p.level)),
		bar,
		humanize.Comma(int64(p.done)),
		humanize.Comma(int64(p.pending)),
		humanize.Comma(int64(p.rows)),
	)
	if eta := p.eta(); eta > 0 {
		line += " • eta " + eta.Round(time.Second).String()
	}
	if p.skipped > 0 {
		line += " • " + Yellow(fmt.Sprintf("%d skipped", p.skipped))
	}
	return line
}

func (p *LevelProgress) eta() time.Duration {
	if p.done == 0 || p.done >= p.pending {
		return 0
	}
	perCategory := p.now().Sub(p.started) / time.Duration(p.done)
	return perCategory * time.Duration(p.pending-p.done)
}
