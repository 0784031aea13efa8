package generation

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"
)

const requestJSON = `{
	"projectId": "shop",
	"mode": "sql",
	"tables": [{
		"tableName": "users",
		"recordCnt": 10,
		"columns": [
			{"columnName": "email", "dataSource": "PROCEDURAL", "metaData": {"category": "email", "ensureUnique": true}},
			{"columnName": "bio", "dataSource": "REMOTE_MODEL", "metaData": {"model": "openai:gpt-4o", "prompt": "short", "temperature": 0.2}},
			{"columnName": "city", "dataSource": "FILE", "metaData": {"path": "cities.csv", "hasHeader": true, "columnIndex": 0}},
			{"columnName": "status", "dataSource": "fixed", "metaData": {"value": "active"}},
			{"columnName": "deleted_at", "dataSource": "FIXED", "metaData": {"value": null}},
			{"columnName": "team_id", "dataSource": "REFERENCE", "metaData": {"table": "teams", "column": "id"}}
		]
	}]
}`

func TestDecodeRequestJSON(t *testing.T) {
	var req GenerationRequest
	require.NoError(t, json.Unmarshal([]byte(requestJSON), &req))
	require.NoError(t, req.Validate())

	assert.Equal(t, "shop", req.ProjectID)
	assert.Equal(t, ModeSQL, req.Mode)
	cols := req.Tables[0].Columns
	require.Len(t, cols, 6)

	assert.Equal(t, ProceduralMeta{Category: "email", EnsureUnique: true}, cols[0].MetaData)

	remote, ok := cols[1].MetaData.(RemoteModelMeta)
	require.True(t, ok)
	require.NotNil(t, remote.Temperature)
	assert.Equal(t, 0.2, *remote.Temperature)

	file, ok := cols[2].MetaData.(FileMeta)
	require.True(t, ok)
	require.NotNil(t, file.ColumnIndex)
	assert.Equal(t, 0, *file.ColumnIndex)

	assert.Equal(t, SourceFixed, cols[3].DataSource, "data source is case-insensitive")
	assert.Equal(t, "active", *cols[3].MetaData.(FixedMeta).Value)
	assert.Nil(t, cols[4].MetaData.(FixedMeta).Value)

	assert.Equal(t, ReferenceMeta{Table: "teams", Column: "id"}, cols[5].MetaData)
}

func TestDecodeRejectsMismatchedMeta(t *testing.T) {
	var col ColumnConfig
	err := json.Unmarshal([]byte(`{"columnName": "c", "dataSource": "FIXED", "metaData": {"path": "a.csv"}}`), &col)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "does not match FIXED")

	err = json.Unmarshal([]byte(`{"columnName": "c", "dataSource": "MAGIC", "metaData": {}}`), &col)
	assert.Error(t, err)
}

func TestDecodeRequestYAML(t *testing.T) {
	doc := `
projectId: shop
tables:
  - tableName: users
    recordCnt: 5
    columns:
      - columnName: email
        dataSource: PROCEDURAL
        metaData:
          category: email
      - columnName: team_id
        dataSource: REFERENCE
        metaData:
          ensureUnique: true
`
	var req GenerationRequest
	require.NoError(t, yaml.Unmarshal([]byte(doc), &req))
	require.NoError(t, req.Validate())

	cols := req.Tables[0].Columns
	assert.Equal(t, ProceduralMeta{Category: "email"}, cols[0].MetaData)
	assert.Equal(t, ReferenceMeta{EnsureUnique: true}, cols[1].MetaData)

	bad := `
columnName: c
dataSource: PROCEDURAL
metaData:
  value: x
`
	var col ColumnConfig
	assert.Error(t, yaml.Unmarshal([]byte(bad), &col))
}

func TestRequestValidate(t *testing.T) {
	valid := GenerationRequest{Tables: []TableConfig{{
		TableName: "t",
		RecordCnt: 1,
		Columns:   []ColumnConfig{{ColumnName: "c", DataSource: SourceFixed, MetaData: FixedMeta{}}},
	}}}
	assert.NoError(t, valid.Validate())

	missing := valid
	missing.Tables = []TableConfig{{TableName: "t", Columns: []ColumnConfig{{ColumnName: "c", DataSource: SourceFixed}}}}
	assert.Error(t, missing.Validate())

	mismatch := valid
	mismatch.Tables = []TableConfig{{TableName: "t", Columns: []ColumnConfig{{ColumnName: "c", DataSource: SourceFile, MetaData: FixedMeta{}}}}}
	assert.Error(t, mismatch.Validate())

	negative := valid
	negative.Tables = []TableConfig{{TableName: "t", RecordCnt: -1}}
	assert.Error(t, negative.Validate())

	badMode := valid
	badMode.Mode = "csv"
	assert.Error(t, badMode.Validate())
}
