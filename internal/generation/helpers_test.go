package generation

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/require"
	"github.com/yuja201/S13P31B201-sub000/internal/llm"
	"github.com/yuja201/S13P31B201-sub000/internal/output"
)

type captureLogger struct {
	mu   sync.Mutex
	msgs []string
}

func (l *captureLogger) Printf(format string, v ...any) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.msgs = append(l.msgs, fmt.Sprintf(format, v...))
}

func (l *captureLogger) contains(substr string) bool {
	l.mu.Lock()
	defer l.mu.Unlock()
	for _, m := range l.msgs {
		if strings.Contains(m, substr) {
			return true
		}
	}
	return false
}

// scriptedProvider replays responses in order and records requests.
type scriptedProvider struct {
	mu        sync.Mutex
	responses []string
	err       error
	requests  []llm.Request
}

func (p *scriptedProvider) Generate(_ context.Context, req llm.Request) (llm.Response, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.requests = append(p.requests, req)
	if p.err != nil {
		return llm.Response{}, p.err
	}
	if len(p.responses) == 0 {
		return llm.Response{Text: `{"values":[]}`}, nil
	}
	text := p.responses[0]
	if len(p.responses) > 1 {
		p.responses = p.responses[1:]
	}
	return llm.Response{Text: text}, nil
}

// countingProvider answers every request with exactly minItems values.
type countingProvider struct {
	mu    sync.Mutex
	calls int
	value func(i int) string
}

func (p *countingProvider) Generate(_ context.Context, req llm.Request) (llm.Response, error) {
	p.mu.Lock()
	p.calls++
	p.mu.Unlock()

	var doc struct {
		Properties struct {
			Values struct {
				MinItems int `json:"minItems"`
			} `json:"values"`
		} `json:"properties"`
	}
	if err := json.Unmarshal(req.Schema, &doc); err != nil {
		return llm.Response{}, err
	}
	values := make([]string, doc.Properties.Values.MinItems)
	for i := range values {
		values[i] = p.value(i)
	}
	b, _ := json.Marshal(map[string][]string{"values": values})
	return llm.Response{Text: string(b)}, nil
}

type fakeSampler struct {
	mu     sync.Mutex
	values []string
	opened int
	closed int
	calls  []string
}

func (s *fakeSampler) source() SampleSource {
	return func(ctx context.Context) (Sampler, error) {
		s.mu.Lock()
		s.opened++
		s.mu.Unlock()
		return s, nil
	}
}

func (s *fakeSampler) FetchUniqueSamples(ctx context.Context, table, column string, count int) ([]string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.calls = append(s.calls, fmt.Sprintf("unique %s.%s %d", table, column, count))
	if count > len(s.values) {
		count = len(s.values)
	}
	return distinct(s.values, count), nil
}

func (s *fakeSampler) FetchRandomSamples(ctx context.Context, table, column string, count int) ([]string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.calls = append(s.calls, fmt.Sprintf("random %s.%s %d", table, column, count))
	if count > len(s.values) {
		count = len(s.values)
	}
	return append([]string(nil), s.values[:count]...), nil
}

func (s *fakeSampler) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.closed++
	return nil
}

// memSink keeps rows in memory.
type memSink struct {
	table   string
	columns []string
	rows    [][]sql.NullString
	aborted bool
	onWrite func()
	onDone  func()
}

func (s *memSink) WriteRow(ctx context.Context, row []sql.NullString) error {
	if s.onWrite != nil {
		s.onWrite()
	}
	s.rows = append(s.rows, row)
	return nil
}

func (s *memSink) Finish(ctx context.Context) (output.SinkResult, error) {
	if s.onDone != nil {
		s.onDone()
	}
	return output.SinkResult{OutputPath: "mem://" + s.table, Rows: int64(len(s.rows))}, nil
}

func (s *memSink) Abort() {
	s.aborted = true
	if s.onDone != nil {
		s.onDone()
	}
}

type memSinks struct {
	mu    sync.Mutex
	sinks map[string]*memSink
}

func newMemSinks() *memSinks {
	return &memSinks{sinks: map[string]*memSink{}}
}

func (m *memSinks) factory(ctx context.Context, table string, columns []string) (RowSink, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	s := &memSink{table: table, columns: columns}
	m.sinks[table] = s
	return s, nil
}

func (m *memSinks) get(table string) *memSink {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.sinks[table]
}

func collectStrings(t *testing.T, s Stream) []string {
	t.Helper()
	values, err := Collect(context.Background(), s)
	require.NoError(t, err)
	out := make([]string, len(values))
	for i, v := range values {
		require.True(t, v.Valid, "value %d is NULL", i)
		out[i] = v.String
	}
	return out
}

func strPtr(s string) *string { return &s }

func intPtr(i int) *int { return &i }
