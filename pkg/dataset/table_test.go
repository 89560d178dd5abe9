package dataset

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func decodeRecords(t *testing.T, raw string) []map[string]json.RawMessage {
	t.Helper()
	var records []map[string]json.RawMessage
	require.NoError(t, json.Unmarshal([]byte(raw), &records))
	return records
}

func TestFromRecords(t *testing.T) {
	records := decodeRecords(t, `[
		{"notes": "n", "parent_id": 0, "name": "Money", "id": 32991},
		{"id": 10, "name": "Population", "parent_id": 0, "extra": null, "tags": ["a", "b"]}
	]`)

	table, err := FromRecords(records)
	require.NoError(t, err)

	assert.Equal(t, []string{"id", "name", "parent_id", "extra", "notes", "tags"}, table.Columns)
	assert.Equal(t, []string{"32991", "Money", "0", "", "n", ""}, table.Rows[0])
	assert.Equal(t, []string{"10", "Population", "0", "", "", `["a","b"]`}, table.Rows[1])
}

func TestFromRecordsEmpty(t *testing.T) {
	table, err := FromRecords(nil)
	require.NoError(t, err)
	assert.True(t, table.Empty())
	assert.False(t, table.HasColumn("id"))
}

func TestDropColumn(t *testing.T) {
	table := &Table{
		Columns: []string{"id", "notes", "name"},
		Rows:    [][]string{{"1", "x", "a"}, {"2", "y", "b"}},
	}

	table.DropColumn("notes")
	assert.Equal(t, []string{"id", "name"}, table.Columns)
	assert.Equal(t, [][]string{{"1", "a"}, {"2", "b"}}, table.Rows)

	table.DropColumn("missing")
	assert.Equal(t, []string{"id", "name"}, table.Columns)
}

func TestUnique(t *testing.T) {
	table := &Table{
		Columns: []string{"id"},
		Rows:    [][]string{{"3"}, {"1"}, {"3"}, {"2"}, {"1"}},
	}

	ids, err := table.Unique("id")
	require.NoError(t, err)
	assert.Equal(t, []string{"3", "1", "2"}, ids)

	_, err = table.Unique("name")
	assert.Error(t, err)
}

func TestConcat(t *testing.T) {
	a := &Table{Columns: []string{"id", "name"}, Rows: [][]string{{"1", "a"}}}
	b := &Table{Columns: []string{"id", "parent_id"}, Rows: [][]string{{"2", "1"}, {"1", "0"}}}

	out := Concat(a, nil, b)

	assert.Equal(t, []string{"id", "name", "parent_id"}, out.Columns)
	assert.Equal(t, [][]string{
		{"1", "a", ""},
		{"2", "", "1"},
		{"1", "", "0"},
	}, out.Rows)
	assert.Equal(t, 3, out.Len())
}

func TestConcatNothing(t *testing.T) {
	out := Concat()
	assert.True(t, out.Empty())
	assert.Empty(t, out.Columns)
}

func TestRecords(t *testing.T) {
	table := &Table{Columns: []string{"id", "name"}, Rows: [][]string{{"1", "a"}}}
	assert.Equal(t, []map[string]string{{"id": "1", "name": "a"}}, table.Records())
}
