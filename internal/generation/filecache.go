package generation

import (
	"bytes"
	"encoding/csv"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"sync"
	"sync/atomic"

	"golang.org/x/text/encoding/htmlindex"
	"golang.org/x/text/transform"
)

// fileKey identifies one parse of one file. Two columns reading the same
// file with the same options share an entry.
type fileKey struct {
	path      string
	format    string
	separator rune
	hasHeader bool
	encoding  string
}

// ParsedFile is the header row plus records of a source file. It is shared
// between readers and must not be modified.
type ParsedFile struct {
	Headers []string
	Records [][]string
}

// FileCache memoizes parsed source files for the life of the process.
type FileCache struct {
	mu      sync.Mutex
	entries map[fileKey]*ParsedFile
	reads   atomic.Int64
}

func NewFileCache() *FileCache {
	return &FileCache{entries: make(map[fileKey]*ParsedFile)}
}

// DefaultFileCache is shared by every coordinator that does not set its own.
var DefaultFileCache = NewFileCache()

// Reads reports how many times a file was read from disk.
func (c *FileCache) Reads() int64 {
	return c.reads.Load()
}

func keyFor(meta FileMeta) (fileKey, error) {
	if strings.TrimSpace(meta.Path) == "" {
		return fileKey{}, fmt.Errorf("file path is required")
	}
	path, err := filepath.Abs(meta.Path)
	if err != nil {
		return fileKey{}, fmt.Errorf("resolve %s: %w", meta.Path, err)
	}

	format := strings.ToLower(strings.TrimSpace(meta.Format))
	if format == "" {
		switch strings.ToLower(filepath.Ext(path)) {
		case ".json":
			format = "json"
		case ".tsv", ".tab":
			format = "tsv"
		default:
			format = "csv"
		}
	}

	sep := ','
	switch format {
	case "tsv":
		sep = '\t'
	case "csv", "json":
	default:
		return fileKey{}, fmt.Errorf("unsupported file format %q", meta.Format)
	}
	if s := meta.Separator; s != "" && format != "json" {
		if s == `\t` {
			s = "\t"
		}
		r := []rune(s)
		if len(r) != 1 {
			return fileKey{}, fmt.Errorf("separator must be a single character, got %q", meta.Separator)
		}
		sep = r[0]
	}

	encoding := strings.ToLower(strings.TrimSpace(meta.Encoding))
	if encoding == "" {
		encoding = "utf-8"
	}

	return fileKey{path: path, format: format, separator: sep, hasHeader: meta.HasHeader, encoding: encoding}, nil
}

// Load returns the parsed file, reading it at most once per key. Failed
// parses are not cached so a later call retries.
func (c *FileCache) Load(meta FileMeta) (*ParsedFile, error) {
	key, err := keyFor(meta)
	if err != nil {
		return nil, err
	}

	c.mu.Lock()
	if f, ok := c.entries[key]; ok {
		c.mu.Unlock()
		return f, nil
	}
	c.mu.Unlock()

	f, err := c.parse(key)
	if err != nil {
		return nil, err
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	if existing, ok := c.entries[key]; ok {
		return existing, nil
	}
	c.entries[key] = f
	return f, nil
}

func (c *FileCache) parse(key fileKey) (*ParsedFile, error) {
	c.reads.Add(1)

	raw, err := readDecoded(key.path, key.encoding)
	if err != nil {
		return nil, err
	}

	var f *ParsedFile
	if key.format == "json" {
		f, err = parseJSONRecords(raw)
	} else {
		f, err = parseDelimited(raw, key.separator, key.hasHeader)
	}
	if err != nil {
		return nil, fmt.Errorf("parse %s: %w", key.path, err)
	}
	return f, nil
}

func readDecoded(path, encoding string) ([]byte, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", path, err)
	}
	defer file.Close()

	var r io.Reader = file
	if encoding != "utf-8" && encoding != "utf8" {
		enc, err := htmlindex.Get(encoding)
		if err != nil {
			return nil, fmt.Errorf("unsupported encoding %q: %w", encoding, err)
		}
		r = transform.NewReader(file, enc.NewDecoder())
	}

	b, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", path, err)
	}
	return bytes.TrimPrefix(b, []byte("\uFEFF")), nil
}

func parseDelimited(raw []byte, sep rune, hasHeader bool) (*ParsedFile, error) {
	cr := csv.NewReader(bytes.NewReader(raw))
	cr.Comma = sep
	cr.FieldsPerRecord = -1
	if sep == '\t' {
		cr.LazyQuotes = true
	}

	records, err := cr.ReadAll()
	if err != nil {
		return nil, err
	}

	f := &ParsedFile{}
	if hasHeader && len(records) > 0 {
		f.Headers = dedupeHeaders(records[0])
		records = records[1:]
	}
	f.Records = records

	width := len(f.Headers)
	for _, rec := range records {
		if len(rec) > width {
			width = len(rec)
		}
	}
	if !hasHeader {
		f.Headers = positionalHeaders(width)
	}
	for len(f.Headers) < width {
		f.Headers = append(f.Headers, "col"+strconv.Itoa(len(f.Headers)+1))
	}
	return f, nil
}

func positionalHeaders(n int) []string {
	headers := make([]string, n)
	for i := range headers {
		headers[i] = "col" + strconv.Itoa(i+1)
	}
	return headers
}

// dedupeHeaders suffixes repeated names with _2, _3, ...
func dedupeHeaders(row []string) []string {
	seen := make(map[string]int, len(row))
	out := make([]string, len(row))
	for i, h := range row {
		h = strings.TrimSpace(h)
		if _, dup := seen[h]; !dup {
			seen[h] = 1
			out[i] = h
			continue
		}
		n := seen[h]
		candidate := h
		for {
			n++
			candidate = h + "_" + strconv.Itoa(n)
			if _, taken := seen[candidate]; !taken {
				break
			}
		}
		seen[h] = n
		seen[candidate] = 1
		out[i] = candidate
	}
	return out
}

// parseJSONRecords reads an array of flat objects, keeping keys in first
// seen order.
func parseJSONRecords(raw []byte) (*ParsedFile, error) {
	var items []json.RawMessage
	if err := json.Unmarshal(raw, &items); err != nil {
		return nil, fmt.Errorf("expected an array of objects: %w", err)
	}

	index := map[string]int{}
	var headers []string
	objects := make([]map[string]json.RawMessage, 0, len(items))
	for i, item := range items {
		keys, values, err := decodeObject(item)
		if err != nil {
			return nil, fmt.Errorf("record %d: %w", i, err)
		}
		for _, k := range keys {
			if _, ok := index[k]; !ok {
				index[k] = len(headers)
				headers = append(headers, k)
			}
		}
		objects = append(objects, values)
	}

	records := make([][]string, len(objects))
	for i, obj := range objects {
		rec := make([]string, len(headers))
		for k, v := range obj {
			rec[index[k]] = rawText(v)
		}
		records[i] = rec
	}
	return &ParsedFile{Headers: headers, Records: records}, nil
}

func decodeObject(raw json.RawMessage) ([]string, map[string]json.RawMessage, error) {
	dec := json.NewDecoder(bytes.NewReader(raw))
	tok, err := dec.Token()
	if err != nil {
		return nil, nil, err
	}
	if d, ok := tok.(json.Delim); !ok || d != '{' {
		return nil, nil, fmt.Errorf("expected an object")
	}

	var keys []string
	values := map[string]json.RawMessage{}
	for dec.More() {
		tok, err := dec.Token()
		if err != nil {
			return nil, nil, err
		}
		key := tok.(string)
		var v json.RawMessage
		if err := dec.Decode(&v); err != nil {
			return nil, nil, err
		}
		if _, ok := values[key]; !ok {
			keys = append(keys, key)
		}
		values[key] = v
	}
	return keys, values, nil
}

// rawText coerces a JSON value to text: strings unquoted, null empty,
// everything else compact JSON.
func rawText(v json.RawMessage) string {
	trimmed := bytes.TrimSpace(v)
	if len(trimmed) == 0 || string(trimmed) == "null" {
		return ""
	}
	if trimmed[0] == '"' {
		var s string
		if err := json.Unmarshal(trimmed, &s); err == nil {
			return s
		}
	}
	var buf bytes.Buffer
	if err := json.Compact(&buf, trimmed); err != nil {
		return string(trimmed)
	}
	return buf.String()
}
