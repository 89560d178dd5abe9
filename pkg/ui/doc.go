// Package ui holds the terminal presentation for the fredcat CLI: styled
// notices, the per-level progress line, the checkpoint and run tables, and
// desktop notifications. Nothing here is needed for a headless crawl.
package ui
