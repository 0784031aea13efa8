package generation

import (
	"context"
	"fmt"
	"path/filepath"
	"runtime"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/yuja201/S13P31B201-sub000/internal/config"
	"github.com/yuja201/S13P31B201-sub000/internal/database"
	"github.com/yuja201/S13P31B201-sub000/internal/llm"
	"github.com/yuja201/S13P31B201-sub000/internal/output"
	"github.com/yuja201/S13P31B201-sub000/internal/schema"
	"github.com/yuja201/S13P31B201-sub000/internal/types"
	"golang.org/x/sync/errgroup"
)

// SchemaProvider returns the table metadata of a project.
type SchemaProvider func(project config.Project) ([]types.SchemaTable, error)

// Opener connects a database adapter.
type Opener func(ctx context.Context, provider, url string) (database.DatabaseAdapter, error)

// ArtifactPackager bundles per-table outputs into one archive.
type ArtifactPackager interface {
	Package(files []output.File) (string, error)
}

// Coordinator runs the tables of a request on a bounded worker pool.
type Coordinator struct {
	Config   *config.Config
	Schema   SchemaProvider
	Provider llm.Provider
	Observer Observer
	Logger   Logger
	Files    *FileCache
	Packager ArtifactPackager
	Open     Opener

	// Sinks overrides the sink chosen from the request mode.
	Sinks SinkFactory

	// Workers overrides generation.workers and the CPU-derived default.
	Workers int
}

// DefaultWorkers is half the CPU cores, at least one.
func DefaultWorkers() int {
	if n := runtime.NumCPU() / 2; n > 1 {
		return n
	}
	return 1
}

func (c *Coordinator) workers() int {
	if c.Workers > 0 {
		return c.Workers
	}
	if c.Config != nil && c.Config.Generation.Workers > 0 {
		return c.Config.Generation.Workers
	}
	return DefaultWorkers()
}

func (c *Coordinator) observer() Observer {
	if c.Observer == nil {
		return nopObserver{}
	}
	return c.Observer
}

func (c *Coordinator) open() Opener {
	if c.Open == nil {
		return database.Open
	}
	return c.Open
}

func loadProjectSchema(project config.Project) ([]types.SchemaTable, error) {
	return schema.LoadDir(project.SchemaDir)
}

// Run validates the request, generates every table and packages the
// results. Only request-level problems are returned as errors; table
// failures are reported in the AggregateResult.
func (c *Coordinator) Run(ctx context.Context, req GenerationRequest) (*AggregateResult, error) {
	if len(req.Tables) == 0 {
		return nil, ErrNoTables
	}
	if err := req.Validate(); err != nil {
		return nil, fmt.Errorf("invalid request: %w", err)
	}
	if c.Config == nil {
		return nil, fmt.Errorf("coordinator: Config is required")
	}

	project, ok := c.Config.Project(req.ProjectID)
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrProjectNotFound, req.ProjectID)
	}
	if !config.IsSupportedProvider(project.Provider) {
		return nil, fmt.Errorf("%w: %q", ErrUnknownDBMS, project.Provider)
	}
	url, err := project.DatabaseURL()
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrConnectionUnresolved, err)
	}

	provideSchema := c.Schema
	if provideSchema == nil {
		provideSchema = loadProjectSchema
	}
	tables, err := provideSchema(project)
	if err != nil {
		return nil, fmt.Errorf("failed to load schema for project %s: %w", project.ID, err)
	}
	byName := make(map[string]types.SchemaTable, len(tables))
	for _, t := range tables {
		byName[strings.ToLower(t.Name)] = t
	}

	sinks := c.Sinks
	if sinks == nil {
		sinks, err = c.defaultSinks(req.Mode, project, url)
		if err != nil {
			return nil, err
		}
	}

	dispatcher := &Dispatcher{
		Locale:       c.Config.Generation.Locale,
		Logger:       c.Logger,
		Provider:     c.Provider,
		DefaultModel: c.Config.Model.Default,
		BatchDelay:   c.Config.Model.BatchDelay,
		Sampler:      c.sampleSource(project.Provider, url),
		SampleSize:   c.Config.Generation.ReferenceSampleSize,
		Files:        c.Files,
	}

	obs := c.observer()
	logf := logfOf(c.Logger)
	workers := c.workers()
	logf("generating %d tables with %d workers", len(req.Tables), workers)

	results := make([]GenerationResult, len(req.Tables))
	var eg errgroup.Group
	eg.SetLimit(workers)
	for i, t := range req.Tables {
		eg.Go(func() error {
			results[i] = c.runTable(ctx, t, byName, dispatcher, sinks)
			if results[i].Success {
				obs.Notify(Event{Type: EventTableComplete, TableName: t.TableName})
			} else {
				obs.Notify(Event{Type: EventError, TableName: t.TableName, Message: tableError(results[i])})
			}
			// Failures stay in results so siblings keep running.
			return nil
		})
	}
	eg.Wait()

	agg := &AggregateResult{Errors: []string{}, Results: results}
	var files []output.File
	for _, r := range results {
		if !r.Success {
			agg.FailCount++
			agg.Errors = append(agg.Errors, tableError(r))
			continue
		}
		agg.SuccessCount++
		if r.OutputPath != "" {
			files = append(files, output.File{Name: filepath.Base(r.OutputPath), Path: r.OutputPath})
		}
	}

	if len(files) > 0 {
		packager := c.Packager
		if packager == nil {
			packager = output.NewPackager(c.Config.OutputDir)
		}
		path, err := packager.Package(files)
		if err != nil {
			agg.Errors = append(agg.Errors, fmt.Sprintf("packaging failed: %v", err))
		} else {
			agg.PackagedArtifactPath = path
		}
	}

	obs.Notify(Event{Type: EventAllComplete, SuccessCount: agg.SuccessCount, FailCount: agg.FailCount})
	return agg, nil
}

func tableError(r GenerationResult) string {
	return fmt.Sprintf("[%s] %s", r.TableName, r.Error)
}

func (c *Coordinator) runTable(ctx context.Context, t TableConfig, tables map[string]types.SchemaTable, d *Dispatcher, sinks SinkFactory) (result GenerationResult) {
	defer func() {
		if r := recover(); r != nil {
			result = GenerationResult{TableName: t.TableName, Error: fmt.Sprintf("panic: %v", r)}
		}
	}()

	st, ok := tables[strings.ToLower(t.TableName)]
	if !ok {
		return GenerationResult{TableName: t.TableName, Error: fmt.Sprintf("table %s not found in schema", t.TableName)}
	}
	job := &TableJob{
		Config:     t,
		Schema:     st,
		Dispatcher: d,
		Sinks:      sinks,
		Observer:   c.Observer,
		Logger:     c.Logger,
	}
	return job.Run(ctx)
}

func (c *Coordinator) connectTimeout() time.Duration {
	if c.Config.Database.Timeout > 0 {
		return c.Config.Database.Timeout
	}
	return 10 * time.Second
}

func (c *Coordinator) connect(ctx context.Context, provider, url string) (database.DatabaseAdapter, error) {
	ctx, cancel := context.WithTimeout(ctx, c.connectTimeout())
	defer cancel()

	adapter, err := c.open()(ctx, provider, url)
	if err != nil {
		return nil, err
	}
	if err := adapter.Ping(ctx); err != nil {
		adapter.Close()
		return nil, fmt.Errorf("failed to ping %s database: %w", provider, err)
	}
	return adapter, nil
}

// sampleSource opens a new connection for every sampling call.
func (c *Coordinator) sampleSource(provider, url string) SampleSource {
	return func(ctx context.Context) (Sampler, error) {
		return c.connect(ctx, provider, url)
	}
}

func (c *Coordinator) defaultSinks(mode Mode, project config.Project, url string) (SinkFactory, error) {
	batchSize := c.Config.Generation.SQLBatchSize

	switch mode {
	case ModeDB:
		return func(ctx context.Context, table string, columns []string) (RowSink, error) {
			adapter, err := c.connect(ctx, project.Provider, url)
			if err != nil {
				return nil, err
			}
			return &closingSink{InsertSink: output.NewInsertSink(adapter, table, columns, batchSize), db: adapter}, nil
		}, nil
	default:
		quoter, err := database.NewAdapter(project.Provider)
		if err != nil {
			return nil, fmt.Errorf("%w: %w", ErrUnknownDBMS, err)
		}
		runDir := filepath.Join(c.Config.OutputDir, time.Now().Format("20060102_150405")+"_"+uuid.NewString()[:8])
		return func(ctx context.Context, table string, columns []string) (RowSink, error) {
			return output.NewSQLFileWriter(runDir, table, columns, quoter, batchSize)
		}, nil
	}
}

// closingSink releases the table's connection once it is done.
type closingSink struct {
	*output.InsertSink
	db database.DatabaseAdapter
}

func (s *closingSink) Finish(ctx context.Context) (output.SinkResult, error) {
	defer s.db.Close()
	return s.InsertSink.Finish(ctx)
}

func (s *closingSink) Abort() {
	s.InsertSink.Abort()
	s.db.Close()
}
