package faker

import (
	"fmt"
	"math"
	"math/rand"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
	"golang.org/x/text/language"
)

// Range is an inclusive numeric bound handed to numeric categories.
type Range struct {
	Min float64
	Max float64
}

// Generator produces catalog values for one locale. It is not safe for
// concurrent use; each stream owns its own.
type Generator struct {
	rand    *rand.Rand
	locale  language.Tag
	data    *localeData
	counter int
	now     func() time.Time
}

func New(locale string) *Generator {
	return NewWithSeed(locale, time.Now().UnixNano())
}

func NewWithSeed(locale string, seed int64) *Generator {
	tag := ResolveLocale(locale)
	return &Generator{
		rand:   rand.New(rand.NewSource(seed)),
		locale: tag,
		data:   locales[tag],
		now:    time.Now,
	}
}

func (g *Generator) Locale() language.Tag {
	return g.locale
}

// Generate produces one value of the named category. Numeric categories
// honor r when it is non-nil; other categories ignore it.
func (g *Generator) Generate(category string, r *Range) (string, error) {
	c, ok := Lookup(category)
	if !ok {
		return "", fmt.Errorf("unknown category: %s", category)
	}
	return c.gen(g, r), nil
}

func (g *Generator) pick(values []string) string {
	return values[g.rand.Intn(len(values))]
}

// Pick returns a random element of values.
func (g *Generator) Pick(values []string) string {
	return g.pick(values)
}

func (g *Generator) digits(minLen, maxLen int) string {
	n := minLen
	if maxLen > minLen {
		n += g.rand.Intn(maxLen - minLen + 1)
	}
	var sb strings.Builder
	for i := 0; i < n; i++ {
		sb.WriteByte(byte('0' + g.rand.Intn(10)))
	}
	return sb.String()
}

func (g *Generator) intIn(r *Range, defMin, defMax int64) string {
	lo, hi := defMin, defMax
	if r != nil {
		if math.Ceil(r.Min) > math.Floor(r.Max) {
			return strconv.FormatFloat(r.Min, 'f', -1, 64)
		}
		wlo, whi := window(r, float64(defMin), float64(defMax))
		lo = toInt64(math.Ceil(wlo))
		hi = toInt64(math.Floor(whi))
		if lo > hi {
			lo = toInt64(math.Ceil(r.Min))
			hi = lo
		}
	}
	if hi == lo {
		return strconv.FormatInt(lo, 10)
	}
	span := uint64(hi - lo)
	if span >= math.MaxInt64 {
		return strconv.FormatInt(lo+g.rand.Int63(), 10)
	}
	return strconv.FormatInt(lo+g.rand.Int63n(int64(span)+1), 10)
}

// window narrows r to the category's natural range when they overlap, and
// otherwise to a window of the same width anchored at r's finite side.
func window(r *Range, defMin, defMax float64) (float64, float64) {
	lo, hi := math.Max(r.Min, defMin), math.Min(r.Max, defMax)
	if lo <= hi {
		return lo, hi
	}
	width := defMax - defMin
	switch {
	case r.Min > -1e300:
		lo, hi = r.Min, math.Min(r.Max, r.Min+width)
	case r.Max < 1e300:
		lo, hi = math.Max(r.Min, r.Max-width), r.Max
	default:
		lo, hi = r.Min, r.Max
	}
	return lo, hi
}

// toInt64 saturates instead of relying on overflowing float conversion.
func toInt64(f float64) int64 {
	if f >= math.MaxInt64 {
		return math.MaxInt64
	}
	if f <= math.MinInt64 {
		return math.MinInt64
	}
	return int64(f)
}

func (g *Generator) floatIn(r *Range, defMin, defMax float64, decimals int) string {
	lo, hi := defMin, defMax
	if r != nil {
		lo, hi = window(r, defMin, defMax)
	}
	v := lo + g.rand.Float64()*(hi-lo)
	p := math.Pow(10, float64(decimals))
	v = math.Round(v*p) / p
	if v < lo {
		v = lo
	}
	if v > hi {
		v = hi
	}
	return strconv.FormatFloat(v, 'f', -1, 64)
}

func (g *Generator) timestamp() time.Time {
	seconds := g.rand.Int63n(int64(3 * 365 * 24 * time.Hour / time.Second))
	return g.now().Add(-time.Duration(seconds) * time.Second)
}

func (g *Generator) name() string {
	return g.data.nameOrder(g.pick(g.data.firstNames), g.pick(g.data.lastNames))
}

func (g *Generator) username() string {
	g.counter++
	return fmt.Sprintf("%s%d", g.pick(english.words), g.counter*1000+g.rand.Intn(1000))
}

func (g *Generator) email() string {
	g.counter++
	return fmt.Sprintf("user%d_%d@%s", g.counter, g.rand.Intn(100000), g.pick(g.data.emailDomains))
}

func (g *Generator) uuid() string {
	return uuid.NewString()
}

// Truncate cuts s to at most n runes.
func Truncate(s string, n int) string {
	if n <= 0 {
		return s
	}
	count := 0
	for i := range s {
		if count == n {
			return s[:i]
		}
		count++
	}
	return s
}
