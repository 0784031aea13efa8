package schema

import (
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/yuja201/S13P31B201-sub000/internal/config"
	"github.com/yuja201/S13P31B201-sub000/internal/types"
)

// Parser turns CREATE TABLE / CREATE TYPE DDL into the structural metadata the
// generation engine consumes. It is the read-only schema provider; it never
// talks to a live database.
type Parser struct {
	enums map[string][]string
}

func NewParser() *Parser {
	return &Parser{enums: make(map[string][]string)}
}

// LoadDir parses every .sql file under dir (or dir itself when it is a file).
func LoadDir(dir string) ([]types.SchemaTable, error) {
	files, err := config.SchemaFiles(dir)
	if err != nil {
		return nil, err
	}

	var sb strings.Builder
	for _, file := range files {
		content, err := os.ReadFile(file)
		if err != nil {
			return nil, fmt.Errorf("failed to read schema file %s: %w", file, err)
		}
		sb.Write(content)
		sb.WriteString(";\n")
	}
	return NewParser().Parse(sb.String())
}

func (p *Parser) Parse(sql string) ([]types.SchemaTable, error) {
	statements := splitStatements(cleanSQL(sql))

	// Enum types first so tables declared before their enum still resolve.
	for _, stmt := range statements {
		if createTypeStmtRegex.MatchString(stmt) {
			name, values, err := parseCreateTypeStatement(stmt)
			if err != nil {
				return nil, err
			}
			p.enums[strings.ToLower(name)] = values
		}
	}

	var tables []types.SchemaTable
	for _, stmt := range statements {
		if !createTableStmtRegex.MatchString(stmt) {
			continue
		}
		table, err := p.parseCreateTableStatement(stmt)
		if err != nil {
			return nil, err
		}
		tables = append(tables, table)
	}
	return tables, nil
}

func cleanSQL(sql string) string {
	sql = commentRegex.ReplaceAllString(sql, "")
	return strings.TrimSpace(whitespaceRegex.ReplaceAllString(sql, " "))
}

func splitStatements(sql string) []string {
	statements := strings.Split(sql, ";")
	result := make([]string, 0, len(statements))
	for _, stmt := range statements {
		if stmt = strings.TrimSpace(stmt); stmt != "" {
			result = append(result, stmt)
		}
	}
	return result
}

func parseCreateTypeStatement(stmt string) (string, []string, error) {
	matches := enumRegex.FindStringSubmatch(stmt)
	if len(matches) < 4 {
		return "", nil, fmt.Errorf("could not parse CREATE TYPE statement: %s", stmt)
	}
	name := matches[1]
	if name == "" {
		name = matches[2]
	}
	return name, parseEnumValues(matches[3]), nil
}

func parseEnumValues(list string) []string {
	found := enumValueRegex.FindAllStringSubmatch(list, -1)
	values := make([]string, 0, len(found))
	for _, m := range found {
		values = append(values, strings.ReplaceAll(m[1], "''", "'"))
	}
	return values
}

func (p *Parser) parseCreateTableStatement(stmt string) (types.SchemaTable, error) {
	matches := tableRegex.FindStringSubmatch(stmt)
	if len(matches) < 2 {
		return types.SchemaTable{}, fmt.Errorf("could not extract table name from: %s", stmt)
	}

	tableName := firstNonEmpty(matches[1:])
	if tableName == "" {
		return types.SchemaTable{}, fmt.Errorf("could not extract table name")
	}

	start, end := strings.Index(stmt, "("), strings.LastIndex(stmt, ")")
	if start == -1 || end == -1 || end < start {
		return types.SchemaTable{}, fmt.Errorf("invalid CREATE TABLE syntax for %s", tableName)
	}

	table := types.SchemaTable{Name: tableName}
	for _, def := range splitColumnDefinitions(stmt[start+1 : end]) {
		if def = strings.TrimSpace(def); def == "" {
			continue
		}
		if isTableConstraint(def) {
			p.applyTableConstraint(&table, def)
			continue
		}
		column, err := p.parseColumnDefinition(def)
		if err != nil {
			return types.SchemaTable{}, fmt.Errorf("table %s: %w", tableName, err)
		}
		table.Columns = append(table.Columns, column)
	}

	for _, fk := range table.ForeignKeys {
		for i := range table.Columns {
			if table.Columns[i].Name == fk.Column {
				table.Columns[i].ForeignKeyTable = fk.RefTable
				table.Columns[i].ForeignKeyColumn = fk.RefColumn
				break
			}
		}
	}
	for i, col := range table.Columns {
		if col.IsPrimary {
			table.PrimaryKey = col.Name
			table.Columns[i].Nullable = false
		}
	}

	return table, nil
}

func firstNonEmpty(values []string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}

func splitColumnDefinitions(defs string) []string {
	var result []string
	var current strings.Builder
	parenLevel := 0
	inQuote := false

	for _, char := range defs {
		switch {
		case char == '\'':
			inQuote = !inQuote
			current.WriteRune(char)
		case inQuote:
			current.WriteRune(char)
		case char == '(':
			parenLevel++
			current.WriteRune(char)
		case char == ')':
			parenLevel--
			current.WriteRune(char)
		case char == ',' && parenLevel == 0:
			result = append(result, current.String())
			current.Reset()
		default:
			current.WriteRune(char)
		}
	}

	if current.Len() > 0 {
		result = append(result, current.String())
	}
	return result
}

func isTableConstraint(def string) bool {
	def = strings.TrimSpace(def)
	for _, prefix := range []string{"PRIMARY KEY", "FOREIGN KEY", "UNIQUE", "CHECK", "CONSTRAINT", "KEY", "INDEX"} {
		if hasKeywordPrefix(def, prefix) {
			return true
		}
	}
	return false
}

func (p *Parser) applyTableConstraint(table *types.SchemaTable, def string) {
	upper := strings.ToUpper(def)

	if m := fkRegex.FindStringSubmatch(def); m != nil {
		table.ForeignKeys = append(table.ForeignKeys, types.SchemaForeignKey{
			Column:    m[1],
			RefTable:  m[2],
			RefColumn: m[3],
		})
		return
	}
	if idx := strings.Index(upper, "CHECK"); idx >= 0 {
		if body, ok := balancedParens(def[idx+len("CHECK"):]); ok {
			table.Checks = append(table.Checks, body)
		}
		return
	}
	if m := pkListRegex.FindStringSubmatch(def); m != nil {
		cols := splitIdentifiers(m[1])
		// Only a single-column key marks the column itself as primary.
		if len(cols) == 1 {
			markColumn(table, cols[0], func(c *types.SchemaColumn) {
				c.IsPrimary = true
				c.IsUnique = true
			})
		}
		return
	}
	if m := uniqueListRegex.FindStringSubmatch(def); m != nil {
		if cols := splitIdentifiers(m[1]); len(cols) == 1 {
			markColumn(table, cols[0], func(c *types.SchemaColumn) { c.IsUnique = true })
		}
	}
}

func markColumn(table *types.SchemaTable, name string, fn func(*types.SchemaColumn)) {
	for i := range table.Columns {
		if strings.EqualFold(table.Columns[i].Name, name) {
			fn(&table.Columns[i])
			return
		}
	}
}

func splitIdentifiers(list string) []string {
	var out []string
	for _, part := range strings.Split(list, ",") {
		part = strings.Trim(strings.TrimSpace(part), "\"`'")
		if part != "" {
			out = append(out, part)
		}
	}
	return out
}

// balancedParens returns the content of the first parenthesized group in s.
func balancedParens(s string) (string, bool) {
	start := strings.Index(s, "(")
	if start < 0 {
		return "", false
	}
	depth := 0
	for i := start; i < len(s); i++ {
		switch s[i] {
		case '(':
			depth++
		case ')':
			depth--
			if depth == 0 {
				return strings.TrimSpace(s[start+1 : i]), true
			}
		}
	}
	return "", false
}

func (p *Parser) parseColumnDefinition(colDef string) (types.SchemaColumn, error) {
	spaceIdx := strings.IndexAny(colDef, " \t")
	if spaceIdx == -1 {
		return types.SchemaColumn{}, fmt.Errorf("invalid column definition: %s", colDef)
	}

	colName := strings.Trim(colDef[:spaceIdx], "\"`")
	rest := strings.TrimSpace(colDef[spaceIdx+1:])
	if rest == "" {
		return types.SchemaColumn{}, fmt.Errorf("invalid column definition (no type): %s", colDef)
	}

	typ, consumed := extractType(rest)
	column := types.SchemaColumn{
		Name:     colName,
		Nullable: true,
		Type:     typ,
	}

	p.parseTypeDetails(&column)
	parseColumnConstraints(&column, rest[consumed:])
	return column, nil
}

// extractType returns the declared type at the start of rest and how many
// bytes of rest it spans. A trailing UNSIGNED modifier belongs to the type.
func extractType(rest string) (string, int) {
	restUpper := strings.ToUpper(rest)
	end := -1
	for _, multi := range []string{
		"TIMESTAMP WITH TIME ZONE", "TIMESTAMP WITHOUT TIME ZONE",
		"DOUBLE PRECISION", "CHARACTER VARYING",
	} {
		if strings.HasPrefix(restUpper, multi) {
			end = len(multi)
			if strings.HasPrefix(rest[end:], "(") || strings.HasPrefix(rest[end:], " (") {
				if close := strings.Index(rest[end:], ")"); close >= 0 {
					end += close + 1
				}
			}
			break
		}
	}

	if end < 0 {
		parenDepth := 0
		inQuote := false
	scan:
		for i, ch := range rest {
			switch {
			case ch == '\'':
				inQuote = !inQuote
			case inQuote:
			case ch == '(':
				parenDepth++
			case ch == ')':
				parenDepth--
				if parenDepth == 0 {
					end = i + 1
					break scan
				}
			case parenDepth == 0 && (ch == ' ' || ch == '\t'):
				end = i
				break scan
			}
		}
		if end < 0 {
			end = len(rest)
		}
	}

	if tail := rest[end:]; hasKeywordPrefix(strings.TrimLeft(tail, " "), "UNSIGNED") {
		end += len(tail) - len(strings.TrimLeft(tail, " ")) + len("UNSIGNED")
	}
	return strings.TrimSpace(rest[:end]), end
}

// hasKeywordPrefix reports whether s starts with the keyword kw as a whole word.
func hasKeywordPrefix(s, kw string) bool {
	if len(s) < len(kw) || !strings.EqualFold(s[:len(kw)], kw) {
		return false
	}
	if len(s) == len(kw) {
		return true
	}
	next := s[len(kw)]
	return !(next == '_' || next >= '0' && next <= '9' || next >= 'a' && next <= 'z' || next >= 'A' && next <= 'Z')
}

func (p *Parser) parseTypeDetails(column *types.SchemaColumn) {
	upper := strings.ToUpper(column.Type)
	base := upper
	if idx := strings.Index(base, "("); idx > 0 {
		base = strings.TrimSpace(base[:idx])
	}
	base = strings.TrimSpace(strings.TrimSuffix(base, "UNSIGNED"))
	column.Unsigned = strings.Contains(upper, "UNSIGNED")

	switch base {
	case "SERIAL", "BIGSERIAL", "SMALLSERIAL":
		column.IsAutoIncrement = true
		column.Nullable = false
	case "ENUM":
		if args, ok := balancedParens(column.Type); ok {
			column.EnumValues = parseEnumValues(args)
		}
		return
	}

	if values, ok := p.enums[strings.ToLower(strings.Trim(column.Type, `"`))]; ok {
		column.EnumValues = values
		return
	}

	m := typeArgsRegex.FindStringSubmatch(column.Type)
	if m == nil {
		return
	}
	first, _ := strconv.Atoi(m[1])
	switch base {
	case "VARCHAR", "CHAR", "CHARACTER", "CHARACTER VARYING", "NVARCHAR", "NCHAR", "VARBINARY", "BINARY":
		column.Length = first
	case "DECIMAL", "NUMERIC", "DEC":
		column.Precision = first
		if m[2] != "" {
			column.Scale, _ = strconv.Atoi(m[2])
		}
	}
}

func parseColumnConstraints(column *types.SchemaColumn, tail string) {
	upper := strings.ToUpper(tail)

	if strings.Contains(upper, "NOT NULL") {
		column.Nullable = false
	}
	if strings.Contains(upper, "PRIMARY KEY") {
		column.IsPrimary = true
		column.IsUnique = true
		column.Nullable = false
	}
	if strings.Contains(upper, "UNIQUE") {
		column.IsUnique = true
	}
	for _, kw := range []string{"AUTO_INCREMENT", "AUTOINCREMENT", "GENERATED ALWAYS AS IDENTITY", "GENERATED BY DEFAULT AS IDENTITY", "IDENTITY"} {
		if strings.Contains(upper, kw) {
			column.IsAutoIncrement = true
			break
		}
	}

	if m := referencesRegex.FindStringSubmatch(tail); len(m) >= 3 {
		column.ForeignKeyTable = m[1]
		column.ForeignKeyColumn = m[2]
	}

	if idx := strings.Index(upper, "CHECK"); idx >= 0 {
		if body, ok := balancedParens(tail[idx+len("CHECK"):]); ok {
			column.Check = body
			if m := betweenRegex.FindStringSubmatch(body); m != nil && strings.EqualFold(m[1], column.Name) {
				lo, errLo := strconv.ParseFloat(m[2], 64)
				hi, errHi := strconv.ParseFloat(m[3], 64)
				if errLo == nil && errHi == nil {
					column.Min, column.Max = &lo, &hi
				}
			}
		}
	}

	if m := defaultRegex.FindStringSubmatch(tail); len(m) > 1 {
		column.Default = m[1]
	}
}
