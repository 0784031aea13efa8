package generation

import (
	"encoding/json"
	"fmt"
	"strings"

	"gopkg.in/yaml.v3"
)

type DataSource string

const (
	SourceProcedural  DataSource = "PROCEDURAL"
	SourceRemoteModel DataSource = "REMOTE_MODEL"
	SourceFile        DataSource = "FILE"
	SourceFixed       DataSource = "FIXED"
	SourceReference   DataSource = "REFERENCE"
)

// Mode selects what a table job produces.
type Mode string

const (
	ModeSQL Mode = "sql" // statement files packaged into one archive
	ModeDB  Mode = "db"  // direct inserts into the project database
)

type GenerationRequest struct {
	ProjectID string        `json:"projectId" yaml:"projectId"`
	Tables    []TableConfig `json:"tables" yaml:"tables"`
	Mode      Mode          `json:"mode,omitempty" yaml:"mode,omitempty"`
}

type TableConfig struct {
	TableName string         `json:"tableName" yaml:"tableName"`
	RecordCnt int            `json:"recordCnt" yaml:"recordCnt"`
	Columns   []ColumnConfig `json:"columns" yaml:"columns"`
}

// ColumnConfig binds one column to a generation strategy. MetaData always
// holds the variant matching DataSource; decoding enforces it.
type ColumnConfig struct {
	ColumnName string     `json:"columnName" yaml:"columnName"`
	DataSource DataSource `json:"dataSource" yaml:"dataSource"`
	MetaData   Meta       `json:"metaData" yaml:"metaData"`
}

// Meta is the closed set of per-strategy settings.
type Meta interface {
	Source() DataSource
	sealed()
}

type ProceduralMeta struct {
	// Category names a faker catalog entry; empty means detect from the column.
	Category     string `json:"category,omitempty" yaml:"category,omitempty"`
	Locale       string `json:"locale,omitempty" yaml:"locale,omitempty"`
	EnsureUnique bool   `json:"ensureUnique,omitempty" yaml:"ensureUnique,omitempty"`
}

type RemoteModelMeta struct {
	Model        string   `json:"model,omitempty" yaml:"model,omitempty"`
	Prompt       string   `json:"prompt,omitempty" yaml:"prompt,omitempty"`
	Domain       string   `json:"domain,omitempty" yaml:"domain,omitempty"`
	Temperature  *float64 `json:"temperature,omitempty" yaml:"temperature,omitempty"`
	EnsureUnique bool     `json:"ensureUnique,omitempty" yaml:"ensureUnique,omitempty"`
}

type FileMeta struct {
	Path        string `json:"path" yaml:"path"`
	Format      string `json:"format,omitempty" yaml:"format,omitempty"` // csv, tsv, json; inferred from extension when empty
	Separator   string `json:"separator,omitempty" yaml:"separator,omitempty"`
	HasHeader   bool   `json:"hasHeader" yaml:"hasHeader"`
	ColumnName  string `json:"columnName,omitempty" yaml:"columnName,omitempty"`
	ColumnIndex *int   `json:"columnIndex,omitempty" yaml:"columnIndex,omitempty"`
	Encoding    string `json:"encoding,omitempty" yaml:"encoding,omitempty"`
}

// FixedMeta emits Value for every row; a nil Value means NULL.
type FixedMeta struct {
	Value *string `json:"value" yaml:"value"`
}

type ReferenceMeta struct {
	// Table and Column override the foreign key read from the schema.
	Table        string `json:"table,omitempty" yaml:"table,omitempty"`
	Column       string `json:"column,omitempty" yaml:"column,omitempty"`
	EnsureUnique bool   `json:"ensureUnique,omitempty" yaml:"ensureUnique,omitempty"`
}

func (ProceduralMeta) Source() DataSource  { return SourceProcedural }
func (RemoteModelMeta) Source() DataSource { return SourceRemoteModel }
func (FileMeta) Source() DataSource        { return SourceFile }
func (FixedMeta) Source() DataSource       { return SourceFixed }
func (ReferenceMeta) Source() DataSource   { return SourceReference }

func (ProceduralMeta) sealed()  {}
func (RemoteModelMeta) sealed() {}
func (FileMeta) sealed()        {}
func (FixedMeta) sealed()       {}
func (ReferenceMeta) sealed()   {}

func newMeta(source DataSource) (Meta, error) {
	switch source {
	case SourceProcedural:
		return &ProceduralMeta{}, nil
	case SourceRemoteModel:
		return &RemoteModelMeta{}, nil
	case SourceFile:
		return &FileMeta{}, nil
	case SourceFixed:
		return &FixedMeta{}, nil
	case SourceReference:
		return &ReferenceMeta{}, nil
	default:
		return nil, fmt.Errorf("unknown data source %q", source)
	}
}

// deref turns the pointer used for decoding back into a value variant.
func deref(m Meta) Meta {
	switch v := m.(type) {
	case *ProceduralMeta:
		return *v
	case *RemoteModelMeta:
		return *v
	case *FileMeta:
		return *v
	case *FixedMeta:
		return *v
	case *ReferenceMeta:
		return *v
	}
	return m
}

func (c *ColumnConfig) UnmarshalJSON(data []byte) error {
	var raw struct {
		ColumnName string          `json:"columnName"`
		DataSource DataSource      `json:"dataSource"`
		MetaData   json.RawMessage `json:"metaData"`
	}
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	source := DataSource(strings.ToUpper(string(raw.DataSource)))
	meta, err := newMeta(source)
	if err != nil {
		return fmt.Errorf("column %s: %w", raw.ColumnName, err)
	}
	if len(raw.MetaData) > 0 && string(raw.MetaData) != "null" {
		dec := json.NewDecoder(strings.NewReader(string(raw.MetaData)))
		dec.DisallowUnknownFields()
		if err := dec.Decode(meta); err != nil {
			return fmt.Errorf("column %s: metaData does not match %s: %w", raw.ColumnName, source, err)
		}
	}
	c.ColumnName = raw.ColumnName
	c.DataSource = source
	c.MetaData = deref(meta)
	return nil
}

func (c *ColumnConfig) UnmarshalYAML(node *yaml.Node) error {
	var raw struct {
		ColumnName string     `yaml:"columnName"`
		DataSource DataSource `yaml:"dataSource"`
		MetaData   yaml.Node  `yaml:"metaData"`
	}
	if err := node.Decode(&raw); err != nil {
		return err
	}
	source := DataSource(strings.ToUpper(string(raw.DataSource)))
	meta, err := newMeta(source)
	if err != nil {
		return fmt.Errorf("column %s: %w", raw.ColumnName, err)
	}
	if raw.MetaData.Kind != 0 && raw.MetaData.Tag != "!!null" {
		if err := decodeStrictYAML(&raw.MetaData, meta); err != nil {
			return fmt.Errorf("column %s: metaData does not match %s: %w", raw.ColumnName, source, err)
		}
	}
	c.ColumnName = raw.ColumnName
	c.DataSource = source
	c.MetaData = deref(meta)
	return nil
}

// decodeStrictYAML rejects keys the variant does not define.
func decodeStrictYAML(node *yaml.Node, out interface{}) error {
	b, err := yaml.Marshal(node)
	if err != nil {
		return err
	}
	dec := yaml.NewDecoder(strings.NewReader(string(b)))
	dec.KnownFields(true)
	return dec.Decode(out)
}

// Validate checks that every column carries the variant its source names.
// Requests built in code bypass the decoders, so the coordinator calls this.
func (r *GenerationRequest) Validate() error {
	for _, t := range r.Tables {
		if t.RecordCnt < 0 {
			return fmt.Errorf("table %s: recordCnt must not be negative", t.TableName)
		}
		for _, c := range t.Columns {
			if c.MetaData == nil {
				return fmt.Errorf("table %s column %s: missing metaData", t.TableName, c.ColumnName)
			}
			if c.MetaData.Source() != c.DataSource {
				return fmt.Errorf("table %s column %s: metaData is %s but dataSource is %s",
					t.TableName, c.ColumnName, c.MetaData.Source(), c.DataSource)
			}
		}
	}
	switch r.Mode {
	case "", ModeSQL, ModeDB:
	default:
		return fmt.Errorf("unknown mode %q", r.Mode)
	}
	return nil
}

// NumericRange is an inclusive bound.
type NumericRange struct {
	Min float64
	Max float64
}

// ColumnConstraint is resolved from schema metadata once per column per job
// and never modified afterwards.
type ColumnConstraint struct {
	NotNull          bool
	Unique           bool
	MaxLength        int
	NumericRange     *NumericRange
	Pattern          string
	EnumValues       []string
	ReferencedTable  string
	ReferencedColumn string

	SQLType       string
	AutoIncrement bool
}

type GenerationResult struct {
	TableName  string `json:"tableName"`
	OutputPath string `json:"outputPath,omitempty"`
	Inserted   bool   `json:"inserted,omitempty"`
	Rows       int64  `json:"rows"`
	Success    bool   `json:"success"`
	Error      string `json:"error,omitempty"`
}

type AggregateResult struct {
	SuccessCount         int                `json:"successCount"`
	FailCount            int                `json:"failCount"`
	Errors               []string           `json:"errors"`
	PackagedArtifactPath string             `json:"packagedArtifactPath,omitempty"`
	Results              []GenerationResult `json:"results"`
}
