// Package oinoid implements the synthetic composite primary-key token
// ("OinoId"): a percent-encoded, separator-joined concatenation of a
// row's primary-key segments. It is reversible — splitting on the
// separator and percent-decoding each segment recovers the original
// key values — and is the first field emitted for every serialized row.
package oinoid

import (
	"fmt"
	"strings"
)

// FieldName is the reserved field name prepended to every serialized row.
const FieldName = "_OINOID_"

// DefaultSeparator is used when no separator is configured.
const DefaultSeparator = '_'

// Print joins segments (already in DataModel primary-key order) into one
// OinoId token, percent-encoding each segment and escaping any literal
// occurrence of sep within a segment.
func Print(segments []string, sep byte) string {
	encoded := make([]string, len(segments))
	for i, s := range segments {
		encoded[i] = percentEncode(s, sep)
	}
	return strings.Join(encoded, string(sep))
}

// Parse splits an OinoId token back into its percent-decoded segments.
// It returns an error if any segment fails to percent-decode.
func Parse(token string, sep byte) ([]string, error) {
	rawParts := strings.Split(token, string(sep))
	segments := make([]string, len(rawParts))
	for i, raw := range rawParts {
		decoded, err := percentDecode(raw)
		if err != nil {
			return nil, fmt.Errorf("oinoid: segment %d: %w", i, err)
		}
		segments[i] = decoded
	}
	return segments, nil
}

// percentEncode escapes '%' and the separator byte so Parse can always
// find segment boundaries unambiguously.
func percentEncode(s string, sep byte) string {
	var b strings.Builder
	for i := 0; i < len(s); i++ {
		c := s[i]
		if c == '%' || c == sep {
			fmt.Fprintf(&b, "%%%02x", c)
		} else {
			b.WriteByte(c)
		}
	}
	return b.String()
}

func percentDecode(s string) (string, error) {
	var b strings.Builder
	for i := 0; i < len(s); i++ {
		if s[i] != '%' {
			b.WriteByte(s[i])
			continue
		}
		if i+2 >= len(s) {
			return "", fmt.Errorf("truncated percent-escape in %q", s)
		}
		var v int
		if _, err := fmt.Sscanf(s[i+1:i+3], "%02x", &v); err != nil {
			return "", fmt.Errorf("invalid percent-escape in %q: %w", s, err)
		}
		b.WriteByte(byte(v))
		i += 2
	}
	return b.String(), nil
}
