// Package traversal walks the FRED category tree breadth-first.
//
// Level 0 is the children of the root ids. Each later level is the children
// of every distinct id in the previous level. A level is written through a
// LevelStore as soon as it completes, and a level that already has a
// checkpoint is read back instead of fetched, so an interrupted run resumes
// at the first missing level.
//
// The walk stops after MaxDepth levels or at the first level that yields no
// categories. Ids repeated across levels are fetched again; the tree does
// not normally contain them.
package traversal
