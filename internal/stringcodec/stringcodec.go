// Package stringcodec implements the content-type-aware encode/decode
// primitives (C1 in the design) used by both the body parser and the
// response serializer: given a column's kind and a canonical textual
// cell value, produce or accept the wire-format fragment for one of the
// five supported content types.
//
// These are pure functions — no SQL, no database handle, no Field. The
// reqparser and rowset packages call into here; stringcodec never
// imports field.
package stringcodec

import (
	"fmt"
	"net/url"
	"strconv"
	"strings"

	"github.com/tablegate/tablegate/internal/contenttype"
	"github.com/tablegate/tablegate/internal/fieldkind"
)

// Null is the sentinel the canonical textual form uses for SQL NULL.
// Absent has no textual form — it is represented by the caller simply
// omitting the field, so it never reaches these functions.
const Null = "null"

// Encode renders a canonical textual cell value (already produced by
// Field.SerializeCell) as a wire-format fragment for ct. value == Null
// always encodes to the content type's null representation.
func Encode(value string, kind fieldkind.Kind, ct contenttype.ContentType) (string, error) {
	switch ct {
	case contenttype.JSON:
		return encodeJSON(value, kind)
	case contenttype.CSV:
		return encodeCSV(value, kind)
	case contenttype.URLEncode:
		return encodeURLEncode(value, kind)
	case contenttype.HTML:
		return encodeHTML(value, kind)
	case contenttype.FormData:
		// Multipart framing is the Parser's job; a form-data part body is
		// just the raw textual value (or base64 for blobs, handled by the
		// caller via Content-Transfer-Encoding).
		if value == Null {
			return "", nil
		}
		return value, nil
	default:
		return "", fmt.Errorf("stringcodec: unsupported content type %v", ct)
	}
}

// Decode parses a wire-format fragment for ct back into the canonical
// textual form consumed by Field.DeserializeCell. Returns Null for an
// explicit null token. Decode has no "absent" result: CSV's
// unquoted-empty and JSON's omitted-property conventions are handled by
// the callers, which leave such fields out of the row, and an empty raw
// value decodes to the empty string.
func Decode(raw string, kind fieldkind.Kind, ct contenttype.ContentType) (string, error) {
	switch ct {
	case contenttype.JSON:
		return decodeJSON(raw, kind)
	case contenttype.CSV:
		return decodeCSV(raw, kind)
	case contenttype.URLEncode:
		return decodeURLEncode(raw, kind)
	case contenttype.HTML:
		return "", fmt.Errorf("stringcodec: html is output-only and cannot be decoded")
	case contenttype.FormData:
		return raw, nil
	default:
		return "", fmt.Errorf("stringcodec: unsupported content type %v", ct)
	}
}

// ---------------------------------------------------------------------------
// JSON
// ---------------------------------------------------------------------------

func encodeJSON(value string, kind fieldkind.Kind) (string, error) {
	if value == Null {
		return "null", nil
	}
	switch kind {
	case fieldkind.Number, fieldkind.Boolean:
		// Unquoted: the canonical text is already a valid JSON number/bool
		// literal ("true"/"false"/"123"/"1.5").
		return value, nil
	default:
		return jsonQuote(value), nil
	}
}

func decodeJSON(raw string, kind fieldkind.Kind) (string, error) {
	if raw == "null" {
		return Null, nil
	}
	switch kind {
	case fieldkind.Number, fieldkind.Boolean:
		return raw, nil
	default:
		return jsonUnquote(raw)
	}
}

// jsonQuote double-quotes a string with standard JSON escapes.
func jsonQuote(s string) string {
	var b strings.Builder
	b.WriteByte('"')
	for _, r := range s {
		switch r {
		case '"':
			b.WriteString(`\"`)
		case '\\':
			b.WriteString(`\\`)
		case '\n':
			b.WriteString(`\n`)
		case '\r':
			b.WriteString(`\r`)
		case '\t':
			b.WriteString(`\t`)
		default:
			if r < 0x20 {
				b.WriteString(fmt.Sprintf(`\u%04x`, r))
			} else {
				b.WriteRune(r)
			}
		}
	}
	b.WriteByte('"')
	return b.String()
}

// jsonUnquote accepts a double-quoted JSON string literal (with the
// surrounding quotes) and returns the unescaped content.
func jsonUnquote(s string) (string, error) {
	if len(s) < 2 || s[0] != '"' || s[len(s)-1] != '"' {
		// Tolerate callers that already stripped quotes (e.g. form fields).
		return s, nil
	}
	inner := s[1 : len(s)-1]
	var b strings.Builder
	for i := 0; i < len(inner); i++ {
		c := inner[i]
		if c != '\\' || i+1 >= len(inner) {
			b.WriteByte(c)
			continue
		}
		i++
		switch inner[i] {
		case '"':
			b.WriteByte('"')
		case '\\':
			b.WriteByte('\\')
		case '/':
			b.WriteByte('/')
		case 'n':
			b.WriteByte('\n')
		case 'r':
			b.WriteByte('\r')
		case 't':
			b.WriteByte('\t')
		case 'u':
			if i+4 < len(inner) {
				n, err := strconv.ParseInt(inner[i+1:i+5], 16, 32)
				if err == nil {
					b.WriteRune(rune(n))
					i += 4
					continue
				}
			}
			return "", fmt.Errorf("stringcodec: invalid \\u escape in %q", s)
		default:
			b.WriteByte(inner[i])
		}
	}
	return b.String(), nil
}

// ---------------------------------------------------------------------------
// CSV
// ---------------------------------------------------------------------------

func encodeCSV(value string, _ fieldkind.Kind) (string, error) {
	if value == Null {
		return "null", nil
	}
	if !needsCSVQuoting(value) {
		return value, nil
	}
	return `"` + strings.ReplaceAll(value, `"`, `""`) + `"`, nil
}

func needsCSVQuoting(s string) bool {
	return strings.ContainsAny(s, ",\"\n\r") || s == ""
}

// decodeCSV accepts one already-split CSV field (quotes, if any, already
// stripped and doubled-quotes already collapsed by the scanner in the
// reqparser package) and returns the canonical textual form. It treats raw
// as unquoted, so a literal "null" always decodes to Null; callers that
// know whether the field was quoted should call DecodeCSVField instead.
func decodeCSV(raw string, _ fieldkind.Kind) (string, error) {
	return DecodeCSVField(raw, false, 0)
}

// DecodeCSVField is decodeCSV plus the one piece of context the generic
// Decode signature can't carry: whether the field was quoted in the
// source line. Only an *unquoted* "null" token means SQL NULL; a quoted
// "null" is the four-letter string. The reqparser CSV scanner tracks
// quoting per field and calls this directly instead of going through
// Decode.
func DecodeCSVField(raw string, quoted bool, _ fieldkind.Kind) (string, error) {
	if raw == "null" && !quoted {
		return Null, nil
	}
	return raw, nil
}

// ---------------------------------------------------------------------------
// URL-encoded
// ---------------------------------------------------------------------------

func encodeURLEncode(value string, _ fieldkind.Kind) (string, error) {
	if value == Null {
		return url.QueryEscape("null"), nil
	}
	return url.QueryEscape(value), nil
}

func decodeURLEncode(raw string, _ fieldkind.Kind) (string, error) {
	decoded, err := url.QueryUnescape(raw)
	if err != nil {
		return "", fmt.Errorf("stringcodec: invalid percent-encoding: %w", err)
	}
	if decoded == "null" {
		return Null, nil
	}
	return decoded, nil
}

// ---------------------------------------------------------------------------
// HTML (output only)
// ---------------------------------------------------------------------------

var htmlEscaper = strings.NewReplacer(
	"&", "&amp;",
	"<", "&lt;",
	">", "&gt;",
	`"`, "&quot;",
	"'", "&#39;",
)

func encodeHTML(value string, _ fieldkind.Kind) (string, error) {
	if value == Null {
		return "", nil
	}
	return htmlEscaper.Replace(value), nil
}
