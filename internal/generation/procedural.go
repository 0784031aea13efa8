package generation

import (
	"context"
	"database/sql"
	"fmt"
	"math"
	"runtime"
	"strconv"
	"time"

	"github.com/yuja201/S13P31B201-sub000/internal/faker"
)

const yieldEvery = 100000

// ProceduralGenerator draws values from the bundled faker catalog.
type ProceduralGenerator struct {
	Column string
	Meta   ProceduralMeta
	Locale string
	Logger Logger

	// Seed fixes the random source; zero seeds from the clock.
	Seed int64
}

func (p *ProceduralGenerator) Generate(ctx context.Context, count int, c ColumnConstraint) Stream {
	name := p.Meta.Category
	if name == "" {
		name = faker.Detect(p.Column, c.SQLType)
	}
	category, ok := faker.Lookup(name)
	if !ok {
		return errStream{fmt.Errorf("column %s: unknown procedural category %q", p.Column, name)}
	}

	locale := p.Meta.Locale
	if locale == "" {
		locale = p.Locale
	}
	g := faker.New(locale)
	if p.Seed != 0 {
		g = faker.NewWithSeed(locale, p.Seed)
	}

	logf := logfOf(p.Logger)
	unique := p.Meta.EnsureUnique || c.Unique
	budget := count*3 + 100
	seen := make(map[string]struct{})
	forced := 0

	return newFuncStream(count, func(ctx context.Context, i int) (sql.NullString, error) {
		if i > 0 && i%yieldEvery == 0 {
			runtime.Gosched()
		}

		v := procedural(g, category, c)
		if !unique {
			return text(v), nil
		}

		for {
			if _, dup := seen[v]; !dup {
				break
			}
			if budget <= 0 {
				v = forceProceduralUnique(v, category, c, seen)
				forced++
				if forced == 1 {
					logf("warning: column %s exhausted %d unique attempts, forcing unique values", p.Column, count*3+100)
				}
				break
			}
			budget--
			v = procedural(g, category, c)
		}
		seen[v] = struct{}{}
		return text(v), nil
	})
}

func procedural(g *faker.Generator, category faker.Category, c ColumnConstraint) string {
	if len(c.EnumValues) > 0 {
		return g.Pick(c.EnumValues)
	}
	if category.Numeric && c.NumericRange != nil {
		v, _ := g.Generate(category.Name, &faker.Range{Min: c.NumericRange.Min, Max: c.NumericRange.Max})
		return v
	}
	v, _ := g.Generate(category.Name, nil)
	if c.MaxLength > 0 {
		return faker.Truncate(v, c.MaxLength)
	}
	return v
}

// forceProceduralUnique keeps numeric columns numeric and in range; other
// columns get a timestamp suffix.
func forceProceduralUnique(v string, category faker.Category, c ColumnConstraint, seen map[string]struct{}) string {
	if category.Numeric {
		if n, ok := unusedInteger(c.NumericRange, seen); ok {
			return n
		}
	}
	candidate := v
	for attempt := 0; attempt < maxForcedAttempts; attempt++ {
		candidate = withSuffix(v, forcedSuffix(), c.MaxLength)
		if _, dup := seen[candidate]; !dup {
			break
		}
	}
	return candidate
}

const maxIntegerScan = 10000000

func unusedInteger(r *NumericRange, seen map[string]struct{}) (string, bool) {
	if r == nil {
		for {
			candidate := strconv.FormatInt(time.Now().UnixNano(), 10)
			if _, dup := seen[candidate]; !dup {
				return candidate, true
			}
		}
	}
	lo, hi := math.Ceil(r.Min), math.Floor(r.Max)
	if hi < lo || hi-lo > maxIntegerScan {
		return "", false
	}
	for n := lo; n <= hi; n++ {
		candidate := strconv.FormatFloat(n, 'f', -1, 64)
		if _, dup := seen[candidate]; !dup {
			return candidate, true
		}
	}
	return "", false
}
