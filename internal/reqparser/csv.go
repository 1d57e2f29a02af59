package reqparser

import (
	"fmt"

	"github.com/tablegate/tablegate/internal/stringcodec"
)

// parseCSV scans body with a stateful quote-aware line/field splitter
// (no regex, no encoding/csv): a doubled "" inside a quoted field is an
// escaped quote; an unquoted `null` token is null; an unquoted empty
// field is absent. The first line is the header; header order maps
// columns to fields by name, so column order in the file need not match
// model order.
func parseCSV(body []byte, m Model, opts Options) (Result, error) {
	lines := splitCSVLines(string(body))
	if len(lines) == 0 {
		return Result{}, fmt.Errorf("reqparser: empty CSV body")
	}
	headerFields := splitCSVLine(lines[0])
	header := make([]string, len(headerFields))
	for i, hf := range headerFields {
		header[i] = hf.text
	}

	var result Result
	for li, line := range lines[1:] {
		if line == "" {
			continue
		}
		fieldsRaw := splitCSVLine(line)
		values := make(map[string]string, len(fieldsRaw))
		for ci, cf := range fieldsRaw {
			if ci >= len(header) {
				break
			}
			name := header[ci]
			f := m.FindFieldByName(name)
			if f == nil {
				continue
			}
			if cf.text == "" && !cf.quoted {
				continue // unquoted empty => absent, omit from values map
			}
			text, err := stringcodec.DecodeCSVField(cf.text, cf.quoted, f.Kind)
			if err != nil {
				return Result{}, fmt.Errorf("reqparser: row %d field %q: %w", li, name, err)
			}
			values[name] = text
		}

		row, anyPresent, err := buildRow(m, values, opts)
		if err != nil {
			return Result{}, fmt.Errorf("reqparser: row %d: %w", li, err)
		}
		if !anyPresent {
			result.Warnings = append(result.Warnings, Warning{RowIndex: li, Message: "row has no recognized fields, skipped"})
			continue
		}
		result.Rows = append(result.Rows, row)
	}
	return result, nil
}

// splitCSVLines splits on bare \n or \r\n, but not inside a quoted field.
func splitCSVLines(s string) []string {
	var lines []string
	inQuotes := false
	start := 0
	for i := 0; i < len(s); i++ {
		switch s[i] {
		case '"':
			inQuotes = !inQuotes
		case '\n':
			if !inQuotes {
				end := i
				if end > start && s[end-1] == '\r' {
					end--
				}
				lines = append(lines, s[start:end])
				start = i + 1
			}
		}
	}
	if start < len(s) {
		lines = append(lines, s[start:])
	}
	return lines
}

// csvField is one split-out CSV field, plus whether it was wrapped in
// quotes in the source line. quoted distinguishes a quoted "null" (the
// three-letter string) from an unquoted null (SQL NULL) — see
// stringcodec.DecodeCSVField.
type csvField struct {
	text   string
	quoted bool
}

// splitCSVLine splits one line on commas, honoring quoted fields with
// doubled-quote escaping.
func splitCSVLine(line string) []csvField {
	var fields []csvField
	var cur []byte
	inQuotes := false
	wasQuoted := false
	i := 0
	for i < len(line) {
		c := line[i]
		switch {
		case inQuotes:
			if c == '"' {
				if i+1 < len(line) && line[i+1] == '"' {
					cur = append(cur, '"')
					i++
				} else {
					inQuotes = false
				}
			} else {
				cur = append(cur, c)
			}
		case c == '"':
			inQuotes = true
			wasQuoted = true
		case c == ',':
			fields = append(fields, csvField{text: string(cur), quoted: wasQuoted})
			cur = nil
			wasQuoted = false
		default:
			cur = append(cur, c)
		}
		i++
	}
	fields = append(fields, csvField{text: string(cur), quoted: wasQuoted})
	return fields
}
