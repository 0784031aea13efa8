package generation

import (
	"context"
	"database/sql"
	"fmt"
	"io"
	"math"
	"strconv"
	"strings"
	"time"

	"github.com/yuja201/S13P31B201-sub000/internal/faker"
	"github.com/yuja201/S13P31B201-sub000/internal/llm"
	"golang.org/x/text/language/display"
)

const (
	remoteBatchSize    = 1000
	defaultTemperature = 0.7
	retryTemperatureUp = 0.3
)

// RemoteStats counts degraded paths taken while producing values.
type RemoteStats struct {
	Retries        int
	FallbackUsed   int
	UniqueAdjusted int
}

// RemoteModelGenerator asks a text-generation provider for values in
// batches, validates them and repairs what the model got wrong.
type RemoteModelGenerator struct {
	Table        string
	Column       string
	Meta         RemoteModelMeta
	Provider     llm.Provider
	DefaultModel string
	BatchDelay   time.Duration
	Locale       string
	Logger       Logger

	Stats RemoteStats

	patternWarned bool
}

func (r *RemoteModelGenerator) Generate(ctx context.Context, count int, c ColumnConstraint) Stream {
	if r.Provider == nil {
		return errStream{fmt.Errorf("column %s: no remote generation provider configured", r.Column)}
	}
	return &remoteStream{gen: r, count: count, constraint: c, fallback: faker.New(r.locale())}
}

func (r *RemoteModelGenerator) locale() string {
	if r.Locale == "" {
		return "ko"
	}
	return r.Locale
}

type remoteStream struct {
	gen        *RemoteModelGenerator
	count      int
	constraint ColumnConstraint
	fallback   *faker.Generator

	buf      []string
	produced int
	emitted  int
	batches  int
	err      error
}

func (s *remoteStream) Next(ctx context.Context) (sql.NullString, error) {
	if s.err != nil {
		return sql.NullString{}, s.err
	}
	if s.emitted >= s.count {
		return sql.NullString{}, io.EOF
	}
	if len(s.buf) == 0 {
		if s.batches > 0 && s.gen.BatchDelay > 0 {
			if err := sleep(ctx, s.gen.BatchDelay); err != nil {
				s.err = err
				return sql.NullString{}, err
			}
		}
		n := s.count - s.produced
		if n > remoteBatchSize {
			n = remoteBatchSize
		}
		batch, err := s.gen.batch(ctx, n, s.produced, s.constraint, s.fallback)
		if err != nil {
			s.err = err
			return sql.NullString{}, err
		}
		s.buf = batch
		s.produced += len(batch)
		s.batches++
	}
	v := s.buf[0]
	s.buf = s.buf[1:]
	s.emitted++
	return text(v), nil
}

func sleep(ctx context.Context, d time.Duration) error {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}

// batch always returns exactly n values satisfying c. Only schema
// construction errors are returned.
func (r *RemoteModelGenerator) batch(ctx context.Context, n, offset int, c ColumnConstraint, fb *faker.Generator) ([]string, error) {
	logf := logfOf(r.Logger)

	schema, err := newResponseSchema(n, c)
	if err != nil {
		return nil, fmt.Errorf("column %s: %w", r.Column, err)
	}
	if schema.patternErr != nil && !r.patternWarned {
		r.patternWarned = true
		logf("warning: %s.%s pattern %q is not supported, checking it in the prompt only: %v", r.Table, r.Column, c.Pattern, schema.patternErr)
	}

	temperature := defaultTemperature
	if r.Meta.Temperature != nil {
		temperature = *r.Meta.Temperature
	}
	model := r.Meta.Model
	if model == "" {
		model = r.DefaultModel
	}
	req := llm.Request{
		Model:       model,
		Prompt:      r.prompt(n, c, fb),
		Temperature: temperature,
		Schema:      schema.jsonDoc,
	}

	resp, err := r.Provider.Generate(ctx, req)
	if err != nil {
		logf("warning: %s.%s remote batch failed, using fallback values: %v", r.Table, r.Column, err)
		r.Stats.FallbackUsed += n
		return r.uniqueBatch(r.fallbacks(n, offset, c, fb), offset, c, fb), nil
	}

	values, verr := schema.Validate(resp.Text)
	if verr != nil {
		r.Stats.Retries++
		logf("%s.%s remote batch rejected, retrying: %v", r.Table, r.Column, verr)

		req.Temperature = math.Min(temperature+retryTemperatureUp, 1.0)
		resp, err = r.Provider.Generate(ctx, req)
		if err != nil {
			logf("warning: %s.%s remote retry failed, using fallback values: %v", r.Table, r.Column, err)
			r.Stats.FallbackUsed += n
			return r.uniqueBatch(r.fallbacks(n, offset, c, fb), offset, c, fb), nil
		}
		retried, rerr := schema.Validate(resp.Text)
		if rerr == nil || countAccepted(schema, retried) > countAccepted(schema, values) {
			values = retried
		}
	}

	if len(values) > n {
		values = values[:n]
	}
	for i, v := range values {
		if !schema.Accepts(v) {
			values[i] = r.fallbackValue(offset+i, c, fb)
			r.Stats.FallbackUsed++
		}
	}
	for len(values) < n {
		values = append(values, r.fallbackValue(offset+len(values), c, fb))
		r.Stats.FallbackUsed++
	}

	return r.uniqueBatch(values, offset, c, fb), nil
}

// uniqueBatch replaces duplicates. Range and enum columns get an unused
// in-domain value first; the token suffix is the last resort.
func (r *RemoteModelGenerator) uniqueBatch(values []string, offset int, c ColumnConstraint, fb *faker.Generator) []string {
	if !r.Meta.EnsureUnique && !c.Unique {
		return values
	}
	if c.NumericRange != nil || len(c.EnumValues) > 0 {
		seen := make(map[string]struct{}, len(values))
		for i, v := range values {
			if _, dup := seen[v]; dup {
				if repl, ok := r.unusedInDomain(offset+i, c, fb, seen); ok {
					values[i] = repl
					v = repl
					r.Stats.UniqueAdjusted++
				}
			}
			seen[v] = struct{}{}
		}
	}
	var changed int
	values, changed = enforceUnique(values, c.MaxLength)
	r.Stats.UniqueAdjusted += changed
	return values
}

func (r *RemoteModelGenerator) unusedInDomain(index int, c ColumnConstraint, fb *faker.Generator, seen map[string]struct{}) (string, bool) {
	if len(c.EnumValues) > 0 {
		for _, v := range c.EnumValues {
			if _, dup := seen[v]; !dup {
				return v, true
			}
		}
		return "", false
	}
	for attempt := 0; attempt < maxPerturbations; attempt++ {
		v := r.fallbackValue(index, c, fb)
		if _, dup := seen[v]; !dup && inRange(v, c.NumericRange) {
			return v, true
		}
	}
	return unusedInteger(c.NumericRange, seen)
}

func inRange(v string, rng *NumericRange) bool {
	f, err := strconv.ParseFloat(strings.TrimSpace(v), 64)
	return err == nil && f >= rng.Min && f <= rng.Max
}

func countAccepted(s *responseSchema, values []string) int {
	n := 0
	for _, v := range values {
		if s.Accepts(v) {
			n++
		}
	}
	return n
}

// fallbackCategory is the catalog entry used to repair values, or "" when
// the column has no known domain. Range columns always get a numeric one.
func (r *RemoteModelGenerator) fallbackCategory(c ColumnConstraint) string {
	if category, ok := faker.Lookup(r.Meta.Domain); ok && (c.NumericRange == nil || category.Numeric) {
		return r.Meta.Domain
	}
	if c.NumericRange != nil {
		name := faker.Detect(r.Column, c.SQLType)
		if category, ok := faker.Lookup(name); ok && category.Numeric {
			return name
		}
		if faker.DetectByType(c.SQLType) == "decimal" {
			return "decimal"
		}
		return "integer"
	}
	if len(c.EnumValues) > 0 {
		return faker.Detect(r.Column, c.SQLType)
	}
	return ""
}

func (r *RemoteModelGenerator) fallbackValue(index int, c ColumnConstraint, fb *faker.Generator) string {
	name := r.fallbackCategory(c)
	if name == "" {
		return placeholder(r.Column, index, c.MaxLength)
	}
	category, _ := faker.Lookup(name)
	return procedural(fb, category, c)
}

// fallbacks stands in for a whole failed batch. Columns with a range, an
// enum or a known domain get catalog values; the rest get placeholders.
func (r *RemoteModelGenerator) fallbacks(n, offset int, c ColumnConstraint, fb *faker.Generator) []string {
	out := make([]string, n)
	for i := range out {
		out[i] = r.fallbackValue(offset+i, c, fb)
	}
	return out
}

func placeholder(column string, index, maxLen int) string {
	return withSuffix(column, fmt.Sprintf("_%d", index+1), maxLen)
}

func (r *RemoteModelGenerator) prompt(n int, c ColumnConstraint, fb *faker.Generator) string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "Generate %d realistic values for the column %q of table %q.\n", n, r.Column, r.Table)
	if c.SQLType != "" {
		fmt.Fprintf(&sb, "SQL type: %s\n", c.SQLType)
	}

	if name := r.fallbackCategory(c); name != "" {
		category, _ := faker.Lookup(name)
		var rng *faker.Range
		if c.NumericRange != nil {
			rng = &faker.Range{Min: c.NumericRange.Min, Max: c.NumericRange.Max}
		}
		fmt.Fprintf(&sb, "Domain: %s (%s)\n", category.Title, category.Format)
		fmt.Fprintf(&sb, "Examples: %s\n", strings.Join(fb.Examples(name, 3, rng), ", "))
	}

	tag := faker.ResolveLocale(r.locale())
	fmt.Fprintf(&sb, "Language: %s\n", display.English.Tags().Name(tag))

	if rules := humanize(c, r.Meta.EnsureUnique); len(rules) > 0 {
		sb.WriteString("Constraints:\n")
		for _, rule := range rules {
			sb.WriteString("- " + rule + "\n")
		}
	}
	if r.Meta.Prompt != "" {
		sb.WriteString("Additional instructions: " + r.Meta.Prompt + "\n")
	}
	fmt.Fprintf(&sb, "Respond with JSON {\"values\": [...]} containing exactly %d strings.", n)
	return sb.String()
}

func humanize(c ColumnConstraint, unique bool) []string {
	var rules []string
	if c.MaxLength > 0 {
		rules = append(rules, fmt.Sprintf("at most %d characters", c.MaxLength))
	}
	if c.NumericRange != nil {
		rules = append(rules, fmt.Sprintf("a number between %v and %v", c.NumericRange.Min, c.NumericRange.Max))
	}
	if c.Pattern != "" {
		rules = append(rules, "must match the regular expression "+c.Pattern)
	}
	if len(c.EnumValues) > 0 {
		rules = append(rules, "one of: "+strings.Join(c.EnumValues, ", "))
	}
	if unique || c.Unique {
		rules = append(rules, "every value must be unique")
	}
	if c.NotNull {
		rules = append(rules, "no empty values")
	}
	return rules
}
