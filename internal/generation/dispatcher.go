package generation

import (
	"fmt"
	"math"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/yuja201/S13P31B201-sub000/internal/llm"
	"github.com/yuja201/S13P31B201-sub000/internal/types"
)

// Dispatcher builds a column's constraint and its generator. The zero value
// handles procedural, fixed and file sources; remote and reference sources
// need Provider and Sampler.
type Dispatcher struct {
	Locale       string
	Logger       Logger
	Provider     llm.Provider
	DefaultModel string
	BatchDelay   time.Duration
	Sampler      SampleSource
	SampleSize   int
	Files        *FileCache
}

func (d *Dispatcher) Dispatch(col ColumnConfig, table types.SchemaTable) (ColumnConstraint, Generator, error) {
	schemaCol, ok := table.Column(col.ColumnName)
	if !ok {
		return ColumnConstraint{}, nil, fmt.Errorf("column %s does not exist in table %s", col.ColumnName, table.Name)
	}
	c := ResolveConstraint(schemaCol, table)

	var gen Generator
	switch meta := col.MetaData.(type) {
	case ProceduralMeta:
		gen = &ProceduralGenerator{Column: col.ColumnName, Meta: meta, Locale: d.Locale, Logger: d.Logger}
	case RemoteModelMeta:
		gen = &RemoteModelGenerator{
			Table:        table.Name,
			Column:       col.ColumnName,
			Meta:         meta,
			Provider:     d.Provider,
			DefaultModel: d.DefaultModel,
			BatchDelay:   d.BatchDelay,
			Locale:       d.Locale,
			Logger:       d.Logger,
		}
	case FileMeta:
		gen = &FileGenerator{Column: col.ColumnName, Meta: meta, Cache: d.Files}
	case FixedMeta:
		gen = &FixedGenerator{Meta: meta}
	case ReferenceMeta:
		gen = &ReferenceGenerator{
			Table:      table.Name,
			Column:     col.ColumnName,
			Meta:       meta,
			Source:     d.Sampler,
			SampleSize: d.SampleSize,
			Logger:     d.Logger,
		}
	default:
		return c, nil, fmt.Errorf("column %s: unsupported metaData %T", col.ColumnName, col.MetaData)
	}
	return c, gen, nil
}

var (
	checkCompareRegex = regexp.MustCompile(`(?i)["` + "`" + `]?(\w+)["` + "`" + `]?\s*(>=|<=|>|<)\s*(-?\d+(?:\.\d+)?)`)
	checkBetweenRegex = regexp.MustCompile(`(?i)["` + "`" + `]?(\w+)["` + "`" + `]?\s+BETWEEN\s+(-?\d+(?:\.\d+)?)\s+AND\s+(-?\d+(?:\.\d+)?)`)
	checkInRegex      = regexp.MustCompile(`(?i)["` + "`" + `]?(\w+)["` + "`" + `]?\s+IN\s*\(([^)]*)\)`)
	checkPatternRegex = regexp.MustCompile(`(?i)["` + "`" + `]?(\w+)["` + "`" + `]?\s*(?:~\*?|\bREGEXP\b|\bRLIKE\b)\s*'((?:[^']|'')*)'`)
	regexpLikeRegex   = regexp.MustCompile(`(?i)REGEXP_LIKE\s*\(\s*["` + "`" + `]?(\w+)["` + "`" + `]?\s*,\s*'((?:[^']|'')*)'`)
	quotedValueRegex  = regexp.MustCompile(`'((?:[^']|'')*)'`)
)

// ResolveConstraint merges structural, declared and CHECK-derived limits.
// Numeric bounds only ever tighten.
func ResolveConstraint(col types.SchemaColumn, table types.SchemaTable) ColumnConstraint {
	c := ColumnConstraint{
		NotNull:       !col.Nullable || col.IsPrimary,
		Unique:        col.IsUnique || (col.IsPrimary && table.PrimaryKey == col.Name),
		SQLType:       col.Type,
		AutoIncrement: col.IsAutoIncrement,
	}

	base := baseType(col.Type)
	if col.Length > 0 && isCharType(base) {
		c.MaxLength = col.Length
	}
	structural := structuralRange(base, col)

	checks := columnChecks(col, table)
	checkRange := checkDerivedRange(col.Name, checks, isIntegerType(base), col.Scale)
	if col.Min != nil {
		checkRange.min = col.Min
	}
	if col.Max != nil {
		checkRange.max = col.Max
	}
	c.NumericRange = intersect(structural, checkRange)

	if len(col.EnumValues) > 0 {
		c.EnumValues = append([]string(nil), col.EnumValues...)
	} else if values := checkEnum(col.Name, checks); len(values) > 0 {
		c.EnumValues = values
	}
	c.Pattern = checkPattern(col.Name, checks)

	if fk, ok := table.ForeignKeyFor(col.Name); ok {
		c.ReferencedTable, c.ReferencedColumn = fk.RefTable, fk.RefColumn
	} else if col.ForeignKeyTable != "" {
		c.ReferencedTable, c.ReferencedColumn = col.ForeignKeyTable, col.ForeignKeyColumn
	}
	return c
}

func baseType(sqlType string) string {
	t := strings.ToUpper(strings.TrimSpace(sqlType))
	if idx := strings.Index(t, "("); idx > 0 {
		t = t[:idx]
	}
	t = strings.TrimSuffix(t, " UNSIGNED")
	return strings.TrimSpace(t)
}

func isCharType(base string) bool {
	switch base {
	case "VARCHAR", "CHAR", "CHARACTER", "CHARACTER VARYING", "NVARCHAR", "NCHAR", "VARCHAR2":
		return true
	}
	return false
}

type bounds struct {
	min, max *float64
}

func ptr(f float64) *float64 { return &f }

var signedIntRanges = map[string][2]float64{
	"TINYINT":   {-128, 127},
	"SMALLINT":  {-32768, 32767},
	"INT2":      {-32768, 32767},
	"MEDIUMINT": {-8388608, 8388607},
	"INT":       {-2147483648, 2147483647},
	"INTEGER":   {-2147483648, 2147483647},
	"INT4":      {-2147483648, 2147483647},
	"BIGINT":    {-9223372036854775808, 9223372036854775807},
	"INT8":      {-9223372036854775808, 9223372036854775807},
}

var unsignedIntMax = map[string]float64{
	"TINYINT":   255,
	"SMALLINT":  65535,
	"MEDIUMINT": 16777215,
	"INT":       4294967295,
	"INTEGER":   4294967295,
	"BIGINT":    18446744073709551615,
}

var serialMax = map[string]float64{
	"SMALLSERIAL": 32767,
	"SERIAL":      2147483647,
	"BIGSERIAL":   9223372036854775807,
}

func isIntegerType(base string) bool {
	_, signed := signedIntRanges[base]
	_, serial := serialMax[base]
	return signed || serial
}

func structuralRange(base string, col types.SchemaColumn) bounds {
	if max, ok := serialMax[base]; ok {
		return bounds{ptr(1), ptr(max)}
	}
	if r, ok := signedIntRanges[base]; ok {
		if col.Unsigned {
			return bounds{ptr(0), ptr(unsignedIntMax[base])}
		}
		return bounds{ptr(r[0]), ptr(r[1])}
	}
	switch base {
	case "DECIMAL", "NUMERIC", "DEC":
		if col.Precision > 0 {
			scale := col.Scale
			limit := math.Pow(10, float64(col.Precision-scale)) - math.Pow(10, -float64(scale))
			lo := -limit
			if col.Unsigned {
				lo = 0
			}
			return bounds{ptr(lo), ptr(limit)}
		}
	}
	return bounds{}
}

// columnChecks gathers the column CHECK and any table CHECK naming it.
func columnChecks(col types.SchemaColumn, table types.SchemaTable) []string {
	var checks []string
	if col.Check != "" {
		checks = append(checks, col.Check)
	}
	if len(table.Checks) == 0 {
		return checks
	}
	named := columnWord(col.Name)
	for _, check := range table.Checks {
		if named.MatchString(check) {
			checks = append(checks, check)
		}
	}
	return checks
}

// columnWord matches the column name as a whole word, in any case.
func columnWord(column string) *regexp.Regexp {
	return regexp.MustCompile(`(?i)\b` + regexp.QuoteMeta(column) + `\b`)
}

func checkDerivedRange(column string, checks []string, integer bool, scale int) bounds {
	step := 0.0
	switch {
	case integer:
		step = 1
	case scale > 0:
		step = math.Pow(10, -float64(scale))
	default:
		step = 1e-6
	}

	var b bounds
	tightenMin := func(v float64) {
		if b.min == nil || v > *b.min {
			b.min = ptr(v)
		}
	}
	tightenMax := func(v float64) {
		if b.max == nil || v < *b.max {
			b.max = ptr(v)
		}
	}

	for _, check := range checks {
		for _, m := range checkBetweenRegex.FindAllStringSubmatch(check, -1) {
			if !strings.EqualFold(m[1], column) {
				continue
			}
			lo, _ := strconv.ParseFloat(m[2], 64)
			hi, _ := strconv.ParseFloat(m[3], 64)
			tightenMin(lo)
			tightenMax(hi)
		}
		for _, m := range checkCompareRegex.FindAllStringSubmatch(check, -1) {
			if !strings.EqualFold(m[1], column) {
				continue
			}
			v, err := strconv.ParseFloat(m[3], 64)
			if err != nil {
				continue
			}
			switch m[2] {
			case ">=":
				tightenMin(v)
			case ">":
				tightenMin(v + step)
			case "<=":
				tightenMax(v)
			case "<":
				tightenMax(v - step)
			}
		}
	}
	return b
}

// intersect takes max-of-min and min-of-max. A range with no side set is nil.
func intersect(a, b bounds) *NumericRange {
	lo := pick(a.min, b.min, math.Max)
	hi := pick(a.max, b.max, math.Min)
	if lo == nil && hi == nil {
		return nil
	}
	r := &NumericRange{Min: -math.MaxFloat64, Max: math.MaxFloat64}
	if lo != nil {
		r.Min = *lo
	}
	if hi != nil {
		r.Max = *hi
	}
	return r
}

func pick(a, b *float64, f func(x, y float64) float64) *float64 {
	switch {
	case a == nil:
		return b
	case b == nil:
		return a
	default:
		return ptr(f(*a, *b))
	}
}

func checkEnum(column string, checks []string) []string {
	for _, check := range checks {
		for _, m := range checkInRegex.FindAllStringSubmatch(check, -1) {
			if !strings.EqualFold(m[1], column) {
				continue
			}
			var values []string
			for _, q := range quotedValueRegex.FindAllStringSubmatch(m[2], -1) {
				values = append(values, strings.ReplaceAll(q[1], "''", "'"))
			}
			if len(values) > 0 {
				return values
			}
		}
	}
	return nil
}

func checkPattern(column string, checks []string) string {
	for _, check := range checks {
		for _, re := range []*regexp.Regexp{checkPatternRegex, regexpLikeRegex} {
			for _, m := range re.FindAllStringSubmatch(check, -1) {
				if strings.EqualFold(m[1], column) {
					return strings.ReplaceAll(m[2], "''", "'")
				}
			}
		}
	}
	return ""
}
