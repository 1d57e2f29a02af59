package reqparser

import (
	"fmt"
	"strings"

	"github.com/tablegate/tablegate/internal/datamodel"
	"github.com/tablegate/tablegate/internal/stringcodec"
)

// parseJSON accepts a single object or an array of objects. Property
// values are kept as their raw JSON text (quoted string, bare number,
// bare true/false/null, or a nested object/array stringified verbatim)
// so each one can be run through the target field's own
// stringcodec.Decode + DeserializeCell rather than a generic unmarshal.
func parseJSON(body []byte, m Model, opts Options) (Result, error) {
	objs, err := splitTopLevelJSONValues(strings.TrimSpace(string(body)))
	if err != nil {
		return Result{}, err
	}

	var result Result
	for i, obj := range objs {
		props, err := parseJSONObject(obj)
		if err != nil {
			return Result{}, fmt.Errorf("reqparser: row %d: %w", i, err)
		}

		values := make(map[string]string, len(props))
		for name, raw := range props {
			f := m.FindFieldByName(name)
			if f == nil {
				continue // unknown property: ignored, not an error
			}
			text, err := stringcodec.Decode(raw, f.Kind, jsonCT)
			if err != nil {
				return Result{}, fmt.Errorf("reqparser: row %d field %q: %w", i, name, err)
			}
			values[name] = text
		}

		row, anyPresent, err := buildRow(m, values, opts)
		if err != nil {
			return Result{}, fmt.Errorf("reqparser: row %d: %w", i, err)
		}
		if !anyPresent {
			result.Warnings = append(result.Warnings, Warning{RowIndex: i, Message: "row has no recognized fields, skipped"})
			continue
		}
		result.Rows = append(result.Rows, row)
	}
	return result, nil
}

// splitTopLevelJSONValues returns either the single object in s, or each
// element of the top-level array in s.
func splitTopLevelJSONValues(s string) ([]string, error) {
	if s == "" {
		return nil, fmt.Errorf("empty JSON body")
	}
	if s[0] == '[' {
		if s[len(s)-1] != ']' {
			return nil, fmt.Errorf("malformed JSON array")
		}
		inner := strings.TrimSpace(s[1 : len(s)-1])
		if inner == "" {
			return nil, nil
		}
		parts := splitTopLevelJSONCommas(inner)
		for i := range parts {
			parts[i] = strings.TrimSpace(parts[i])
		}
		return parts, nil
	}
	return []string{s}, nil
}

// splitTopLevelJSONCommas splits on commas outside of {}, [], and string
// literals — essential because property/array values may themselves
// contain commas.
func splitTopLevelJSONCommas(s string) []string {
	var parts []string
	depth := 0
	inString := false
	start := 0
	for i := 0; i < len(s); i++ {
		c := s[i]
		switch {
		case inString:
			if c == '\\' {
				i++
			} else if c == '"' {
				inString = false
			}
		case c == '"':
			inString = true
		case c == '{' || c == '[':
			depth++
		case c == '}' || c == ']':
			depth--
		case c == ',' && depth == 0:
			parts = append(parts, s[start:i])
			start = i + 1
		}
	}
	parts = append(parts, s[start:])
	return parts
}

// parseJSONObject returns a map of property name to its raw JSON value
// text (untouched, still JSON-encoded — e.g. a string value keeps its
// surrounding quotes).
func parseJSONObject(s string) (map[string]string, error) {
	s = strings.TrimSpace(s)
	if len(s) < 2 || s[0] != '{' || s[len(s)-1] != '}' {
		return nil, fmt.Errorf("expected a JSON object, got %q", truncate(s, 40))
	}
	inner := strings.TrimSpace(s[1 : len(s)-1])
	props := map[string]string{}
	if inner == "" {
		return props, nil
	}
	for _, pair := range splitTopLevelJSONCommas(inner) {
		name, value, err := splitJSONKeyValue(pair)
		if err != nil {
			return nil, err
		}
		props[name] = value
	}
	return props, nil
}

func splitJSONKeyValue(pair string) (string, string, error) {
	pair = strings.TrimSpace(pair)
	if len(pair) == 0 || pair[0] != '"' {
		return "", "", fmt.Errorf("expected quoted property name in %q", truncate(pair, 40))
	}
	end := 1
	for end < len(pair) && pair[end] != '"' {
		if pair[end] == '\\' {
			end++
		}
		end++
	}
	if end >= len(pair) {
		return "", "", fmt.Errorf("unterminated property name in %q", truncate(pair, 40))
	}
	nameRaw := pair[:end+1]
	name, err := stringcodec.Decode(nameRaw, stringKind, jsonCT)
	if err != nil {
		return "", "", err
	}
	rest := strings.TrimSpace(pair[end+1:])
	if len(rest) == 0 || rest[0] != ':' {
		return "", "", fmt.Errorf("expected ':' after property name %q", name)
	}
	value := strings.TrimSpace(rest[1:])
	return name, value, nil
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n] + "..."
}
