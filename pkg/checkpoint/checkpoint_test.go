package checkpoint

import (
	"os"
	"path/filepath"
	"testing"

	"fredcat/pkg/dataset"
	"fredcat/pkg/logger"
	"fredcat/pkg/storage"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newManager(t *testing.T, dir string, codec storage.Codec) *Manager {
	t.Helper()
	mgr, err := NewManager(storage.NewStore(dir, codec, nil), "", logger.NewTestLogger())
	require.NoError(t, err)
	return mgr
}

func levelTable(ids ...string) *dataset.Table {
	t := dataset.New("id", "name", "parent_id")
	for _, id := range ids {
		t.Rows = append(t.Rows, []string{id, "cat " + id, "0"})
	}
	return t
}

func TestFilename(t *testing.T) {
	csvMgr := newManager(t, t.TempDir(), storage.CSVCodec{})
	assert.Equal(t, "fetched_level_0.csv", csvMgr.Filename(0))
	assert.Equal(t, "fetched_level_9.csv", csvMgr.Filename(9))

	pqMgr := newManager(t, t.TempDir(), storage.ParquetCodec{})
	assert.Equal(t, "fetched_level_3.parquet", pqMgr.Filename(3))
}

func TestNewManagerRejectsBadPattern(t *testing.T) {
	store := storage.NewStore(t.TempDir(), storage.CSVCodec{}, nil)

	_, err := NewManager(store, "level", nil)
	assert.Error(t, err)

	_, err = NewManager(store, "level_%d_%d", nil)
	assert.Error(t, err)

	mgr, err := NewManager(store, "depth-%d", nil)
	require.NoError(t, err)
	assert.Equal(t, "depth-4.csv", mgr.Filename(4))
}

func TestLoadMissingLevel(t *testing.T) {
	mgr := newManager(t, t.TempDir(), storage.CSVCodec{})

	table, err := mgr.Load(0)
	assert.NoError(t, err)
	assert.Nil(t, table)
	assert.False(t, mgr.Exists(0))
}

func TestSaveAndLoadLevel(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "saved_categories")
	mgr := newManager(t, dir, storage.CSVCodec{})

	require.NoError(t, mgr.Save(1, levelTable("1", "2")))
	assert.True(t, mgr.Exists(1))
	assert.FileExists(t, filepath.Join(dir, "fetched_level_1.csv"))

	loaded, err := mgr.Load(1)
	require.NoError(t, err)
	assert.Equal(t, levelTable("1", "2"), loaded)
}

func TestLoadCorruptLevel(t *testing.T) {
	dir := t.TempDir()
	mgr := newManager(t, dir, storage.CSVCodec{})
	require.NoError(t, os.WriteFile(filepath.Join(dir, "fetched_level_2.csv"), []byte("id\n1,2\n"), 0644))

	_, err := mgr.Load(2)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "level 2")
}

func TestLevels(t *testing.T) {
	dir := t.TempDir()
	mgr := newManager(t, dir, storage.CSVCodec{})

	require.NoError(t, mgr.Save(10, levelTable("7")))
	require.NoError(t, mgr.Save(0, levelTable("1", "2", "3")))
	require.NoError(t, mgr.Save(2, levelTable("4", "5")))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "aggregate.csv"), []byte("id\n1\n"), 0644))

	levels, err := mgr.Levels()
	require.NoError(t, err)
	require.Len(t, levels, 3)

	assert.Equal(t, 0, levels[0].Level)
	assert.Equal(t, 3, levels[0].Rows)
	assert.Equal(t, "fetched_level_0.csv", levels[0].Filename)
	assert.Equal(t, 2, levels[1].Level)
	assert.Equal(t, 2, levels[1].Rows)
	assert.Equal(t, 10, levels[2].Level)
	assert.Positive(t, levels[2].Size)
}

func TestLevelsEmptyDirectory(t *testing.T) {
	mgr := newManager(t, filepath.Join(t.TempDir(), "missing"), storage.CSVCodec{})

	levels, err := mgr.Levels()
	assert.NoError(t, err)
	assert.Empty(t, levels)
}
