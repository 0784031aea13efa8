package generation

import (
	"encoding/json"
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"unicode/utf8"

	"cuelang.org/go/cue"
	"cuelang.org/go/cue/cuecontext"
)

// responseSchema validates a model response of the form {"values": [...]}.
// String constraints live in CUE; the numeric range is checked in Go since
// the values travel as strings.
type responseSchema struct {
	ctx     *cue.Context
	schema  cue.Value
	source  string
	jsonDoc json.RawMessage

	constraint ColumnConstraint
	pattern    *regexp.Regexp
	patternErr error
}

func newResponseSchema(count int, c ColumnConstraint) (*responseSchema, error) {
	s := &responseSchema{ctx: cuecontext.New(), constraint: c}

	if c.Pattern != "" {
		// Database regex dialects accept syntax RE2 lacks; such patterns
		// only reach the model through the prompt.
		re, err := regexp.Compile(c.Pattern)
		if err != nil {
			s.patternErr = err
		} else {
			s.pattern = re
		}
	}

	s.source = cueSource(count, c, s.pattern != nil)
	root := s.ctx.CompileString(s.source, cue.Filename("values.cue"))
	if err := root.Err(); err != nil {
		return nil, fmt.Errorf("compile response schema: %w", err)
	}
	s.schema = root.LookupPath(cue.ParsePath("#Response"))

	doc, err := jsonSchema(count, c, s.pattern != nil)
	if err != nil {
		return nil, err
	}
	s.jsonDoc = doc
	return s, nil
}

func quote(s string) string {
	b, _ := json.Marshal(s)
	return string(b)
}

func cueSource(count int, c ColumnConstraint, withPattern bool) string {
	var sb strings.Builder
	sb.WriteString("import \"list\"\n")
	if c.MaxLength > 0 {
		sb.WriteString("import \"strings\"\n")
	}

	parts := []string{"string"}
	if c.MaxLength > 0 {
		parts = append(parts, fmt.Sprintf("strings.MaxRunes(%d)", c.MaxLength))
	}
	if withPattern {
		parts = append(parts, "=~"+quote(c.Pattern))
	}
	if len(c.EnumValues) > 0 {
		options := make([]string, len(c.EnumValues))
		for i, v := range c.EnumValues {
			options[i] = quote(v)
		}
		parts = append(parts, "("+strings.Join(options, " | ")+")")
	}

	fmt.Fprintf(&sb, "#Value: %s\n", strings.Join(parts, " & "))
	fmt.Fprintf(&sb, "#Response: {\n\tvalues: [...#Value] & list.MinItems(%d) & list.MaxItems(%d)\n}\n", count, count)
	return sb.String()
}

func jsonSchema(count int, c ColumnConstraint, withPattern bool) (json.RawMessage, error) {
	item := map[string]interface{}{"type": "string"}
	if c.MaxLength > 0 {
		item["maxLength"] = c.MaxLength
	}
	if withPattern {
		item["pattern"] = c.Pattern
	}
	if len(c.EnumValues) > 0 {
		item["enum"] = c.EnumValues
	}
	doc := map[string]interface{}{
		"type": "object",
		"properties": map[string]interface{}{
			"values": map[string]interface{}{
				"type":     "array",
				"items":    item,
				"minItems": count,
				"maxItems": count,
			},
		},
		"required":             []string{"values"},
		"additionalProperties": false,
	}
	b, err := json.Marshal(doc)
	if err != nil {
		return nil, fmt.Errorf("encode json schema: %w", err)
	}
	return b, nil
}

// Validate checks the response text. Whatever values could be read are
// returned even when validation fails, coerced to text.
func (s *responseSchema) Validate(text string) ([]string, error) {
	text = stripFences(text)

	var decoded struct {
		Values []interface{} `json:"values"`
	}
	if err := json.Unmarshal([]byte(text), &decoded); err != nil {
		return nil, fmt.Errorf("response is not a values object: %w", err)
	}
	values := make([]string, 0, len(decoded.Values))
	for _, v := range decoded.Values {
		values = append(values, coerceText(v))
	}

	data := s.ctx.CompileString(text, cue.Filename("response.json"))
	if err := data.Err(); err != nil {
		return values, fmt.Errorf("response is not valid JSON: %w", err)
	}
	if err := s.schema.Unify(data).Validate(cue.Concrete(true)); err != nil {
		return values, fmt.Errorf("response violates schema: %w", err)
	}

	for i, v := range values {
		if !s.rangeOK(v) {
			return values, fmt.Errorf("value %d (%q) is outside [%v, %v]", i, v, s.constraint.NumericRange.Min, s.constraint.NumericRange.Max)
		}
	}
	return values, nil
}

func (s *responseSchema) rangeOK(v string) bool {
	r := s.constraint.NumericRange
	if r == nil {
		return true
	}
	f, err := strconv.ParseFloat(strings.TrimSpace(v), 64)
	if err != nil {
		return false
	}
	return f >= r.Min && f <= r.Max
}

// Accepts reports whether one value satisfies every constraint.
func (s *responseSchema) Accepts(v string) bool {
	c := s.constraint
	if c.MaxLength > 0 && utf8.RuneCountInString(v) > c.MaxLength {
		return false
	}
	if s.pattern != nil && !s.pattern.MatchString(v) {
		return false
	}
	if len(c.EnumValues) > 0 && !contains(c.EnumValues, v) {
		return false
	}
	return s.rangeOK(v)
}

func contains(values []string, v string) bool {
	for _, candidate := range values {
		if candidate == v {
			return true
		}
	}
	return false
}

func stripFences(text string) string {
	text = strings.TrimSpace(text)
	if !strings.HasPrefix(text, "```") {
		return text
	}
	text = strings.TrimPrefix(text, "```")
	if nl := strings.IndexByte(text, '\n'); nl >= 0 {
		text = text[nl+1:]
	}
	return strings.TrimSpace(strings.TrimSuffix(strings.TrimSpace(text), "```"))
}

func coerceText(v interface{}) string {
	switch t := v.(type) {
	case nil:
		return ""
	case string:
		return t
	case float64:
		return strconv.FormatFloat(t, 'f', -1, 64)
	case bool:
		return strconv.FormatBool(t)
	default:
		b, err := json.Marshal(t)
		if err != nil {
			return fmt.Sprintf("%v", t)
		}
		return string(b)
	}
}
