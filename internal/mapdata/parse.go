// Package mapdata is the import/export pipeline: two serialized formats
// (a JSON document and a line-delimited SQL-style script), one canonical
// in-memory shape, and a transactional reconciliation against the store.
package mapdata

import (
	"encoding/json"
	"fmt"
	"regexp"
	"strconv"
	"strings"
)

// Script table names, kept stable for compatibility with previously
// exported files.
const (
	markersTable     = "xf_map_markers"
	suggestionsTable = "xf_map_marker_suggestions"

	markersSection     = "-- Markers"
	suggestionsSection = "-- Marker Suggestions"
)

// FormatError reports a payload that cannot be understood at all (malformed
// JSON, missing top-level keys). Individual unparseable script lines are
// skipped instead.
type FormatError struct {
	Reason string
}

func (e *FormatError) Error() string {
	return "invalid import format: " + e.Reason
}

// Record is one flat imported row keyed by column name.
type Record map[string]any

// Data is the canonical import/export shape.
type Data struct {
	Markers     []Record `json:"markers"`
	Suggestions []Record `json:"suggestions"`
}

// ParseJSON decodes a JSON export. Both top-level keys must be present.
func ParseJSON(content []byte) (*Data, error) {
	var raw map[string]json.RawMessage
	if err := json.Unmarshal(content, &raw); err != nil {
		return nil, &FormatError{Reason: "malformed JSON: " + err.Error()}
	}
	markersRaw, ok := raw["markers"]
	if !ok {
		return nil, &FormatError{Reason: "missing markers key"}
	}
	suggestionsRaw, ok := raw["suggestions"]
	if !ok {
		return nil, &FormatError{Reason: "missing suggestions key"}
	}

	data := &Data{}
	if err := json.Unmarshal(markersRaw, &data.Markers); err != nil {
		return nil, &FormatError{Reason: "markers is not a list of records: " + err.Error()}
	}
	if err := json.Unmarshal(suggestionsRaw, &data.Suggestions); err != nil {
		return nil, &FormatError{Reason: "suggestions is not a list of records: " + err.Error()}
	}
	return data, nil
}

var insertRe = regexp.MustCompile(`INSERT INTO ([\w_]+) \((.*?)\) VALUES \((.*?)\);`)

// ParseScript scans a SQL-style export line by line. Section comments move
// the cursor between markers and suggestions; insert statements matching the
// current section's table are parsed, anything else is skipped.
func ParseScript(content string) *Data {
	data := &Data{
		Markers:     []Record{},
		Suggestions: []Record{},
	}

	currentTable := ""
	for _, line := range strings.Split(content, "\n") {
		line = strings.TrimSpace(line)

		if line == "" || strings.HasPrefix(line, "--") {
			if strings.HasPrefix(line, markersSection) {
				currentTable = "markers"
			} else if strings.HasPrefix(line, suggestionsSection) {
				currentTable = "suggestions"
			}
			continue
		}

		if !strings.HasPrefix(line, "INSERT INTO") {
			continue
		}
		switch {
		case currentTable == "markers" && strings.Contains(line, markersTable):
			if rec := parseInsert(line); rec != nil {
				data.Markers = append(data.Markers, rec)
			}
		case currentTable == "suggestions" && strings.Contains(line, suggestionsTable):
			if rec := parseInsert(line); rec != nil {
				data.Suggestions = append(data.Suggestions, rec)
			}
		}
	}

	return data
}

// parseInsert turns one insert statement into a record, or nil if the line
// does not match the expected pattern.
func parseInsert(line string) Record {
	m := insertRe.FindStringSubmatch(line)
	if m == nil {
		return nil
	}

	columns := strings.Split(m[2], ",")
	values := splitQuoted(m[3])
	if len(columns) != len(values) {
		return nil
	}

	rec := Record{}
	for i, col := range columns {
		rec[strings.TrimSpace(col)] = coerceValue(values[i])
	}
	return rec
}

type scanState int

const (
	outsideQuote scanState = iota
	inSingleQuote
	inDoubleQuote
)

// splitQuoted splits a value list on commas, honoring single- and
// double-quoted runs so embedded commas survive. Quote characters preceded
// by a backslash are content, not delimiters.
func splitQuoted(s string) []string {
	var parts []string
	var buf strings.Builder

	state := outsideQuote
	for i := 0; i < len(s); i++ {
		c := s[i]
		escaped := i > 0 && s[i-1] == '\\'

		switch state {
		case outsideQuote:
			if c == ',' {
				parts = append(parts, buf.String())
				buf.Reset()
				continue
			}
			if c == '\'' && !escaped {
				state = inSingleQuote
			} else if c == '"' && !escaped {
				state = inDoubleQuote
			}
		case inSingleQuote:
			if c == '\'' && !escaped {
				state = outsideQuote
			}
		case inDoubleQuote:
			if c == '"' && !escaped {
				state = outsideQuote
			}
		}
		buf.WriteByte(c)
	}
	parts = append(parts, buf.String())
	return parts
}

// coerceValue maps a raw token to its typed value: quoted strings are
// unquoted and unescaped, NULL becomes nil, numerics become int64 or float64
// (float when a decimal point is present), true/false become bools and
// anything else stays a raw string.
func coerceValue(raw string) any {
	v := strings.TrimSpace(raw)

	if len(v) >= 2 {
		if (v[0] == '\'' && v[len(v)-1] == '\'') || (v[0] == '"' && v[len(v)-1] == '"') {
			return unescape(v[1 : len(v)-1])
		}
	}

	if v == "NULL" {
		return nil
	}
	if !strings.Contains(v, ".") {
		if n, err := strconv.ParseInt(v, 10, 64); err == nil {
			return n
		}
	}
	if f, err := strconv.ParseFloat(v, 64); err == nil {
		return f
	}
	if v == "true" {
		return true
	}
	if v == "false" {
		return false
	}
	return v
}

// unescape resolves backslash sequences produced by the script exporter.
func unescape(s string) string {
	var buf strings.Builder
	for i := 0; i < len(s); i++ {
		c := s[i]
		if c != '\\' || i == len(s)-1 {
			buf.WriteByte(c)
			continue
		}
		i++
		switch s[i] {
		case 'n':
			buf.WriteByte('\n')
		case 't':
			buf.WriteByte('\t')
		case 'r':
			buf.WriteByte('\r')
		default:
			buf.WriteByte(s[i])
		}
	}
	return buf.String()
}

// escapeScriptString quotes a string for the script format, escaping
// backslashes and quotes.
func escapeScriptString(s string) string {
	r := strings.NewReplacer(
		`\`, `\\`,
		`'`, `\'`,
		`"`, `\"`,
		"\n", `\n`,
		"\r", `\r`,
		"\t", `\t`,
	)
	return "'" + r.Replace(s) + "'"
}

// renderScriptValue renders one typed value as a script literal.
func renderScriptValue(v any) string {
	switch t := v.(type) {
	case nil:
		return "NULL"
	case string:
		return escapeScriptString(t)
	case bool:
		if t {
			return "true"
		}
		return "false"
	case float64:
		return strconv.FormatFloat(t, 'f', -1, 64)
	default:
		return fmt.Sprintf("%v", t)
	}
}
