package schema

import (
	"regexp"
)

// Pre-compiled at package initialization; every schema file goes through all of these.
var (
	tableRegex = regexp.MustCompile(`(?i)CREATE\s+TABLE\s+(?:IF\s+NOT\s+EXISTS\s+)?(?:"?(\w+)"?|(\w+)|` + "`" + `(\w+)` + "`" + `)\s*\(`)
	enumRegex  = regexp.MustCompile(`(?i)CREATE\s+TYPE\s+(?:"?(\w+)"?|(\w+))\s+AS\s+ENUM\s*\(\s*([^)]+)\s*\)`)

	createTableStmtRegex = regexp.MustCompile(`(?i)^\s*CREATE\s+TABLE`)
	createTypeStmtRegex  = regexp.MustCompile(`(?i)^\s*CREATE\s+TYPE\s+\w+\s+AS\s+ENUM`)

	fkRegex         = regexp.MustCompile(`(?i)FOREIGN\s+KEY\s*\(\s*["` + "`" + `]?(\w+)["` + "`" + `]?\s*\)\s*REFERENCES\s+["` + "`" + `]?(\w+)["` + "`" + `]?\s*\(\s*["` + "`" + `]?(\w+)["` + "`" + `]?\s*\)`)
	referencesRegex = regexp.MustCompile(`(?i)REFERENCES\s+["` + "`" + `]?(\w+)["` + "`" + `]?\s*\(\s*["` + "`" + `]?(\w+)["` + "`" + `]?\s*\)`)
	pkListRegex     = regexp.MustCompile(`(?i)PRIMARY\s+KEY\s*\(\s*([^)]+)\)`)
	uniqueListRegex = regexp.MustCompile(`(?i)UNIQUE(?:\s+KEY|\s+INDEX)?(?:\s+\w+)?\s*\(\s*([^)]+)\)`)
	defaultRegex    = regexp.MustCompile(`(?i)\bDEFAULT\s+('[^']*'|\([^)]*\)|[^,\s]+)`)
	betweenRegex    = regexp.MustCompile(`(?i)^\s*\(?\s*["` + "`" + `]?(\w+)["` + "`" + `]?\s+BETWEEN\s+(-?\d+(?:\.\d+)?)\s+AND\s+(-?\d+(?:\.\d+)?)\s*\)?\s*$`)
	typeArgsRegex   = regexp.MustCompile(`\(\s*(\d+)\s*(?:,\s*(\d+)\s*)?\)`)

	commentRegex    = regexp.MustCompile(`--.*|/\*[\s\S]*?\*/`)
	whitespaceRegex = regexp.MustCompile(`\s+`)
	enumValueRegex  = regexp.MustCompile(`'((?:[^']|'')*)'`)
)
