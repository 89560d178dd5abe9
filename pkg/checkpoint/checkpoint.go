package checkpoint

import (
	"fmt"
	"regexp"
	"sort"
	"strconv"
	"strings"
	"time"

	"fredcat/pkg/dataset"
	"fredcat/pkg/logger"
	"fredcat/pkg/storage"
)

// DefaultPattern names level files fetched_level_0, fetched_level_1, ...
const DefaultPattern = "fetched_level_%d"

// Manager maps traversal levels to files in a storage.Store. A level file,
// once written, is the checkpoint for that level.
type Manager struct {
	store   *storage.Store
	pattern string
	match   *regexp.Regexp
	logger  logger.Logger
}

// LevelInfo summarizes one checkpointed level.
type LevelInfo struct {
	Level    int
	Filename string
	Rows     int
	Size     int64
	ModTime  time.Time
}

// NewManager creates a checkpoint manager. pattern must contain exactly one
// %d; an empty pattern means DefaultPattern.
func NewManager(store *storage.Store, pattern string, log logger.Logger) (*Manager, error) {
	if pattern == "" {
		pattern = DefaultPattern
	}
	if strings.Count(pattern, "%d") != 1 {
		return nil, fmt.Errorf("checkpoint pattern %q must contain exactly one %%d", pattern)
	}
	if log == nil {
		log = logger.NewNopLogger()
	}

	parts := strings.SplitN(pattern, "%d", 2)
	expr := "^" + regexp.QuoteMeta(parts[0]) + `(\d+)` + regexp.QuoteMeta(parts[1]+store.Extension()) + "$"

	return &Manager{
		store:   store,
		pattern: pattern,
		match:   regexp.MustCompile(expr),
		logger:  log,
	}, nil
}

// Filename returns the checkpoint file name for level.
func (m *Manager) Filename(level int) string {
	return fmt.Sprintf(m.pattern, level) + m.store.Extension()
}

// Path returns the full checkpoint path for level.
func (m *Manager) Path(level int) string {
	return m.store.Path(m.Filename(level))
}

// Load returns the checkpointed table for level, or (nil, nil) when the
// level has not been completed yet.
func (m *Manager) Load(level int) (*dataset.Table, error) {
	t, err := m.store.Load(m.Filename(level))
	if err != nil {
		return nil, fmt.Errorf("load checkpoint for level %d: %w", level, err)
	}
	if t != nil {
		m.logger.DebugWithFields("Checkpoint loaded", logger.Fields{
			"depth": level,
			"rows":  t.Len(),
			"path":  m.Path(level),
		})
	}
	return t, nil
}

// Save writes the checkpoint for a completed level.
func (m *Manager) Save(level int, t *dataset.Table) error {
	if err := m.store.Save(t, m.Filename(level)); err != nil {
		return fmt.Errorf("save checkpoint for level %d: %w", level, err)
	}
	m.logger.DebugWithFields("Checkpoint saved", logger.Fields{
		"depth": level,
		"rows":  t.Len(),
		"path":  m.Path(level),
	})
	return nil
}

// Exists reports whether level has a checkpoint.
func (m *Manager) Exists(level int) bool {
	return m.store.Exists(m.Filename(level))
}

// Levels lists every checkpointed level in ascending order. Each file is
// read to count its rows.
func (m *Manager) Levels() ([]LevelInfo, error) {
	files, err := m.store.List()
	if err != nil {
		return nil, err
	}

	var levels []LevelInfo
	for _, f := range files {
		sub := m.match.FindStringSubmatch(f.Name)
		if sub == nil {
			continue
		}
		level, err := strconv.Atoi(sub[1])
		if err != nil {
			continue
		}

		t, err := m.store.Load(f.Name)
		if err != nil {
			return nil, fmt.Errorf("inspect checkpoint %s: %w", f.Name, err)
		}

		levels = append(levels, LevelInfo{
			Level:    level,
			Filename: f.Name,
			Rows:     t.Len(),
			Size:     f.Size,
			ModTime:  f.ModTime,
		})
	}

	sort.Slice(levels, func(i, j int) bool { return levels[i].Level < levels[j].Level })
	return levels, nil
}
