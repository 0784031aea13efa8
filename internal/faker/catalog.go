package faker

import (
	"fmt"
	"sort"
	"strconv"
	"strings"
)

// Category is one named entry of the bundled value taxonomy.
type Category struct {
	Name    string
	Title   string
	Format  string
	Numeric bool
	gen     func(g *Generator, r *Range) string
}

var catalog = map[string]Category{}

func register(c Category) {
	catalog[c.Name] = c
}

func Lookup(name string) (Category, bool) {
	c, ok := catalog[strings.ToLower(strings.TrimSpace(name))]
	return c, ok
}

// Categories returns the registered category names in sorted order.
func Categories() []string {
	names := make([]string, 0, len(catalog))
	for name := range catalog {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

func init() {
	register(Category{Name: "name", Title: "Full name", Format: "person name",
		gen: func(g *Generator, _ *Range) string { return g.name() }})
	register(Category{Name: "first_name", Title: "First name", Format: "given name",
		gen: func(g *Generator, _ *Range) string { return g.pick(g.data.firstNames) }})
	register(Category{Name: "last_name", Title: "Last name", Format: "family name",
		gen: func(g *Generator, _ *Range) string { return g.pick(g.data.lastNames) }})
	register(Category{Name: "username", Title: "Username", Format: "lowercase word followed by digits",
		gen: func(g *Generator, _ *Range) string { return g.username() }})
	register(Category{Name: "email", Title: "Email address", Format: "local-part@domain",
		gen: func(g *Generator, _ *Range) string { return g.email() }})
	register(Category{Name: "phone", Title: "Phone number", Format: "dash separated digits",
		gen: func(g *Generator, _ *Range) string { return g.data.phoneFmt(g) }})
	register(Category{Name: "address", Title: "Street address", Format: "street, city and number",
		gen: func(g *Generator, _ *Range) string {
			return g.data.addressFmt(g, g.pick(g.data.streets), g.pick(g.data.cities))
		}})
	register(Category{Name: "city", Title: "City", Format: "city name",
		gen: func(g *Generator, _ *Range) string { return g.pick(g.data.cities) }})
	register(Category{Name: "country", Title: "Country", Format: "country name",
		gen: func(g *Generator, _ *Range) string { return g.pick(g.data.countries) }})
	register(Category{Name: "zip_code", Title: "Postal code", Format: "five digits",
		gen: func(g *Generator, _ *Range) string { return g.digits(5, 5) }})
	register(Category{Name: "company", Title: "Company name", Format: "organization name",
		gen: func(g *Generator, _ *Range) string { return g.pick(g.data.companies) }})
	register(Category{Name: "job_title", Title: "Job title", Format: "position name",
		gen: func(g *Generator, _ *Range) string { return g.pick(g.data.jobTitles) }})
	register(Category{Name: "title", Title: "Title", Format: "short headline",
		gen: func(g *Generator, _ *Range) string { return g.pick(g.data.titles) }})
	register(Category{Name: "sentence", Title: "Sentence", Format: "one sentence of prose",
		gen: func(g *Generator, _ *Range) string { return g.pick(g.data.sentences) }})
	register(Category{Name: "paragraph", Title: "Paragraph", Format: "two or three sentences",
		gen: func(g *Generator, _ *Range) string {
			n := 2 + g.rand.Intn(2)
			parts := make([]string, n)
			for i := range parts {
				parts[i] = g.pick(g.data.sentences)
			}
			return strings.Join(parts, " ")
		}})
	register(Category{Name: "word", Title: "Word", Format: "single word",
		gen: func(g *Generator, _ *Range) string { return g.pick(g.data.words) }})
	register(Category{Name: "color", Title: "Color", Format: "color name",
		gen: func(g *Generator, _ *Range) string { return g.pick(g.data.colors) }})
	register(Category{Name: "url", Title: "URL", Format: "https URL",
		gen: func(g *Generator, _ *Range) string {
			return fmt.Sprintf("https://example.com/page/%d", g.rand.Intn(1000))
		}})
	register(Category{Name: "ip_address", Title: "IPv4 address", Format: "dotted quad",
		gen: func(g *Generator, _ *Range) string {
			return fmt.Sprintf("%d.%d.%d.%d", g.rand.Intn(223)+1, g.rand.Intn(256), g.rand.Intn(256), g.rand.Intn(254)+1)
		}})
	register(Category{Name: "uuid", Title: "UUID", Format: "RFC 4122 UUID",
		gen: func(g *Generator, _ *Range) string { return g.uuid() }})
	register(Category{Name: "date", Title: "Date", Format: "YYYY-MM-DD",
		gen: func(g *Generator, _ *Range) string { return g.timestamp().Format("2006-01-02") }})
	register(Category{Name: "datetime", Title: "Timestamp", Format: "YYYY-MM-DD HH:MM:SS",
		gen: func(g *Generator, _ *Range) string { return g.timestamp().Format("2006-01-02 15:04:05") }})
	register(Category{Name: "boolean", Title: "Boolean", Format: "true or false",
		gen: func(g *Generator, _ *Range) string { return strconv.FormatBool(g.rand.Intn(2) == 1) }})

	register(Category{Name: "integer", Title: "Integer", Format: "whole number", Numeric: true,
		gen: func(g *Generator, r *Range) string { return g.intIn(r, 1, 1000000) }})
	register(Category{Name: "decimal", Title: "Decimal number", Format: "number with two decimals", Numeric: true,
		gen: func(g *Generator, r *Range) string { return g.floatIn(r, 0, 10000, 2) }})
	register(Category{Name: "age", Title: "Age", Format: "whole number of years", Numeric: true,
		gen: func(g *Generator, r *Range) string { return g.intIn(r, 1, 99) }})
	register(Category{Name: "price", Title: "Price", Format: "amount with two decimals", Numeric: true,
		gen: func(g *Generator, r *Range) string { return g.floatIn(r, 100, 100000, 2) }})
	register(Category{Name: "quantity", Title: "Quantity", Format: "small whole number", Numeric: true,
		gen: func(g *Generator, r *Range) string { return g.intIn(r, 1, 100) }})
	register(Category{Name: "rating", Title: "Rating", Format: "score from 1 to 5", Numeric: true,
		gen: func(g *Generator, r *Range) string { return g.intIn(r, 1, 5) }})
}

// Examples returns n sample values of category for prompt guidance and
// fallbacks. Unknown categories yield nil.
func (g *Generator) Examples(category string, n int, r *Range) []string {
	c, ok := Lookup(category)
	if !ok {
		return nil
	}
	out := make([]string, n)
	for i := range out {
		out[i] = c.gen(g, r)
	}
	return out
}

// Detect picks a category from the column name, falling back to the SQL
// type. The result is always a registered category.
func Detect(columnName, sqlType string) string {
	colLower := strings.ToLower(columnName)

	switch {
	case strings.Contains(colLower, "email"):
		return "email"
	case strings.Contains(colLower, "first_name"):
		return "first_name"
	case strings.Contains(colLower, "last_name"):
		return "last_name"
	case strings.Contains(colLower, "username") || strings.Contains(colLower, "login"):
		return "username"
	case strings.Contains(colLower, "name") && strings.Contains(colLower, "company"):
		return "company"
	case strings.Contains(colLower, "name") && !strings.Contains(colLower, "file"):
		return "name"
	case strings.Contains(colLower, "title"):
		return "title"
	case strings.Contains(colLower, "description") || strings.Contains(colLower, "content"):
		return "sentence"
	case strings.Contains(colLower, "url") || strings.Contains(colLower, "link"):
		return "url"
	case strings.Contains(colLower, "phone"):
		return "phone"
	case strings.Contains(colLower, "address"):
		return "address"
	case strings.Contains(colLower, "city"):
		return "city"
	case strings.Contains(colLower, "country"):
		return "country"
	case strings.Contains(colLower, "zip") || strings.Contains(colLower, "postal"):
		return "zip_code"
	case strings.Contains(colLower, "color"):
		return "color"
	case colLower == "age":
		return "age"
	case strings.Contains(colLower, "price") || strings.Contains(colLower, "amount"):
		return "price"
	case strings.Contains(colLower, "quantity") || strings.Contains(colLower, "qty"):
		return "quantity"
	case strings.Contains(colLower, "rating") || strings.Contains(colLower, "score"):
		return "rating"
	}

	return DetectByType(sqlType)
}

// DetectByType picks a category from the SQL type alone.
func DetectByType(sqlType string) string {
	typeUpper := strings.ToUpper(sqlType)
	if idx := strings.Index(typeUpper, "("); idx > 0 {
		typeUpper = typeUpper[:idx]
	}

	switch {
	case strings.Contains(typeUpper, "INT") || strings.Contains(typeUpper, "SERIAL"):
		return "integer"
	case strings.Contains(typeUpper, "BOOL"):
		return "boolean"
	case strings.Contains(typeUpper, "TIMESTAMP") || strings.Contains(typeUpper, "DATETIME"):
		return "datetime"
	case strings.Contains(typeUpper, "DATE"):
		return "date"
	case strings.Contains(typeUpper, "DECIMAL") || strings.Contains(typeUpper, "NUMERIC") ||
		strings.Contains(typeUpper, "FLOAT") || strings.Contains(typeUpper, "DOUBLE") || strings.Contains(typeUpper, "REAL"):
		return "decimal"
	case strings.Contains(typeUpper, "UUID"):
		return "uuid"
	case strings.Contains(typeUpper, "TEXT"):
		return "sentence"
	default:
		return "word"
	}
}
