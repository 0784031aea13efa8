package generation

import (
	"context"
	"database/sql"
	"fmt"
	"io"

	"github.com/yuja201/S13P31B201-sub000/internal/output"
	"github.com/yuja201/S13P31B201-sub000/internal/types"
)

// RowSink receives the rows of one table in order.
type RowSink interface {
	WriteRow(ctx context.Context, row []sql.NullString) error
	Finish(ctx context.Context) (output.SinkResult, error)
	Abort()
}

// SinkFactory opens the sink for a table once its column list is known.
type SinkFactory func(ctx context.Context, table string, columns []string) (RowSink, error)

// TableJob generates every row of one table.
type TableJob struct {
	Config     TableConfig
	Schema     types.SchemaTable
	Dispatcher *Dispatcher
	Sinks      SinkFactory
	Observer   Observer
	Logger     Logger
}

type columnStream struct {
	name       string
	constraint ColumnConstraint
	stream     Stream
}

func (j *TableJob) observer() Observer {
	if j.Observer == nil {
		return nopObserver{}
	}
	return j.Observer
}

// Run never panics on bad input; every failure is reported in the result.
func (j *TableJob) Run(ctx context.Context) GenerationResult {
	result := GenerationResult{TableName: j.Config.TableName}
	rows, out, err := j.run(ctx)
	result.Rows = rows
	if err != nil {
		result.Error = err.Error()
		return result
	}
	result.Success = true
	result.OutputPath = out.OutputPath
	result.Inserted = out.Inserted
	return result
}

func (j *TableJob) recordCount() (int, error) {
	count := j.Config.RecordCnt
	forced := false
	for _, col := range j.Config.Columns {
		meta, ok := col.MetaData.(FileMeta)
		if !ok {
			continue
		}
		cache := j.Dispatcher.Files
		if cache == nil {
			cache = DefaultFileCache
		}
		n, err := cache.RowCount(meta)
		if err != nil {
			return 0, fmt.Errorf("column %s: %w", col.ColumnName, err)
		}
		if !forced || n < count {
			count = n
		}
		forced = true
	}
	return count, nil
}

func (j *TableJob) run(ctx context.Context) (int64, output.SinkResult, error) {
	logf := logfOf(j.Logger)
	obs := j.observer()

	count, err := j.recordCount()
	if err != nil {
		return 0, output.SinkResult{}, err
	}
	if count != j.Config.RecordCnt {
		logf("%s: record count set to %d from file source", j.Config.TableName, count)
	}

	var streams []columnStream
	for _, col := range j.Config.Columns {
		c, gen, err := j.Dispatcher.Dispatch(col, j.Schema)
		if err != nil {
			return 0, output.SinkResult{}, err
		}
		if c.AutoIncrement {
			logf("%s.%s is auto-increment, skipping", j.Config.TableName, col.ColumnName)
			continue
		}
		streams = append(streams, columnStream{name: col.ColumnName, constraint: c, stream: gen.Generate(ctx, count, c)})
	}
	if len(streams) == 0 {
		return 0, output.SinkResult{}, fmt.Errorf("no columns to generate")
	}

	columns := make([]string, len(streams))
	for i, s := range streams {
		columns[i] = s.name
	}
	sink, err := j.Sinks(ctx, j.Config.TableName, columns)
	if err != nil {
		return 0, output.SinkResult{}, err
	}

	var written int64
	lastPct := -1
rows:
	for i := 0; i < count; i++ {
		row := make([]sql.NullString, len(streams))
		for k, s := range streams {
			v, err := s.stream.Next(ctx)
			if err == io.EOF {
				// Only reference sampling in unique mode stops early.
				logf("warning: %s.%s produced %d of %d values, table truncated to %d rows",
					j.Config.TableName, s.name, i, count, i)
				break rows
			}
			if err != nil {
				sink.Abort()
				return written, output.SinkResult{}, fmt.Errorf("column %s: %w", s.name, err)
			}
			if !v.Valid && s.constraint.NotNull {
				sink.Abort()
				return written, output.SinkResult{}, fmt.Errorf("column %s is NOT NULL but row %d has no value", s.name, i+1)
			}
			row[k] = v
		}
		if err := sink.WriteRow(ctx, row); err != nil {
			sink.Abort()
			return written, output.SinkResult{}, err
		}
		written++

		if pct := int(written * 100 / int64(count)); pct != lastPct {
			lastPct = pct
			obs.Notify(Event{Type: EventRowProgress, TableName: j.Config.TableName, Progress: pct})
		}
	}

	res, err := sink.Finish(ctx)
	if err != nil {
		return written, output.SinkResult{}, err
	}
	return written, res, nil
}
