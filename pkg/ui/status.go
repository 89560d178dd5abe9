package ui

import (
	"fmt"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/jedib0t/go-pretty/v6/table"

	"fredcat/pkg/checkpoint"
	"fredcat/pkg/traversal"
)

func newTable() table.Writer {
	tbl := table.NewWriter()
	tbl.SetStyle(table.StyleLight)
	tbl.Style().Options.SeparateRows = false
	tbl.Style().Options.DrawBorder = false
	return tbl
}

// RenderCheckpoints lists the level files found in the output directory.
func RenderCheckpoints(levels []checkpoint.LevelInfo, now time.Time) string {
	if len(levels) == 0 {
		return "No checkpoints found"
	}

	tbl := newTable()
	tbl.AppendHeader(table.Row{"Level", "File", "Rows", "Size", "Written"})

	var rows int
	var size int64
	for _, l := range levels {
		tbl.AppendRow(table.Row{
			l.Level,
			l.Filename,
			humanize.Comma(int64(l.Rows)),
			humanize.Bytes(uint64(l.Size)),
			humanize.RelTime(l.ModTime, now, "ago", "from now"),
		})
		rows += l.Rows
		size += l.Size
	}

	tbl.AppendFooter(table.Row{
		fmt.Sprintf("%d levels", len(levels)), "",
		humanize.Comma(int64(rows)),
		humanize.Bytes(uint64(size)),
		"",
	})
	return tbl.Render()
}

// RenderRun summarises a finished crawl, one row per level.
func RenderRun(result *traversal.Result) string {
	tbl := newTable()
	tbl.AppendHeader(table.Row{"Level", "Source", "Queried", "Skipped", "Rows"})

	for _, l := range result.Levels {
		queried := "-"
		if l.Source == traversal.SourceFetched {
			queried = humanize.Comma(int64(l.Queried))
		}
		tbl.AppendRow(table.Row{
			l.Level,
			string(l.Source),
			queried,
			len(l.Skipped),
			humanize.Comma(int64(l.Rows)),
		})
	}

	tbl.AppendFooter(table.Row{
		"Total", string(result.StopReason), "", "",
		humanize.Comma(int64(result.Categories.Len())),
	})
	return tbl.Render()
}
