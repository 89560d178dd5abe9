// Package checkpoint implements level-granularity resume for the category
// crawl.
//
// Each completed breadth-first level is written to its own file in the
// output directory (fetched_level_0.csv, fetched_level_1.csv, ...). On the
// next run a level whose file exists is read back instead of fetched, so an
// interrupted crawl only repeats the level it was working on.
//
// Files are written atomically through storage.Store, and a level file is
// only written once the whole level has been collected.
package checkpoint
