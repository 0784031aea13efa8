package cmd

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/yuja201/S13P31B201-sub000/internal/generation"
)

func TestReadRequest(t *testing.T) {
	dir := t.TempDir()
	jsonPath := filepath.Join(dir, "req.json")
	require.NoError(t, os.WriteFile(jsonPath, []byte(`{"projectId": "p", "tables": [{"tableName": "users", "recordCnt": 2, "columns": [
		{"columnName": "status", "dataSource": "FIXED", "metaData": {"value": "on"}}]}]}`), 0644))
	yamlPath := filepath.Join(dir, "req.yml")
	require.NoError(t, os.WriteFile(yamlPath, []byte("projectId: p\ntables:\n  - tableName: users\n    recordCnt: 2\n    columns:\n      - columnName: status\n        dataSource: FIXED\n        metaData:\n          value: \"on\"\n"), 0644))

	for _, path := range []string{jsonPath, yamlPath} {
		req, err := readRequest(path)
		require.NoError(t, err, path)
		require.Len(t, req.Tables, 1)
		meta, ok := req.Tables[0].Columns[0].MetaData.(generation.FixedMeta)
		require.True(t, ok)
		assert.Equal(t, "on", *meta.Value)
	}

	_, err := readRequest(filepath.Join(dir, "missing.json"))
	assert.Error(t, err)
}

func TestDescribe(t *testing.T) {
	c := generation.ColumnConstraint{
		NotNull:          true,
		MaxLength:        10,
		NumericRange:     &generation.NumericRange{Min: 1, Max: 5},
		ReferencedTable:  "users",
		ReferencedColumn: "id",
	}
	assert.Equal(t, "not null len<=10 [1, 5] → users.id", describe(c))
}
