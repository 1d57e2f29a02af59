// Package contenttype enumerates the wire content types the gateway
// accepts and emits, and maps them to/from HTTP Content-Type headers.
package contenttype

import "strings"

// ContentType is one of the five wire formats the gateway understands.
type ContentType int

const (
	JSON ContentType = iota
	CSV
	FormData
	URLEncode
	HTML
)

// String returns the canonical short name used in error messages and in
// the oinorequesttype/oinoresponsetype query parameter overrides.
func (c ContentType) String() string {
	switch c {
	case JSON:
		return "json"
	case CSV:
		return "csv"
	case FormData:
		return "formdata"
	case URLEncode:
		return "urlencode"
	case HTML:
		return "html"
	default:
		return "unknown"
	}
}

// MimeType returns the HTTP Content-Type header value for this content type.
func (c ContentType) MimeType() string {
	switch c {
	case JSON:
		return "application/json"
	case CSV:
		return "text/csv"
	case FormData:
		return "multipart/form-data"
	case URLEncode:
		return "application/x-www-form-urlencoded"
	case HTML:
		return "text/html"
	default:
		return "application/octet-stream"
	}
}

// FromMimeType resolves a Content-Type/Accept header value (ignoring any
// parameters such as "; boundary=...") to a ContentType. Returns false if
// the mime type is not recognized.
func FromMimeType(mime string) (ContentType, bool) {
	base := mime
	if idx := strings.IndexByte(base, ';'); idx >= 0 {
		base = base[:idx]
	}
	base = strings.TrimSpace(strings.ToLower(base))

	switch base {
	case "application/json", "application/vnd.api+json":
		return JSON, true
	case "text/csv":
		return CSV, true
	case "multipart/form-data":
		return FormData, true
	case "multipart/mixed":
		// Explicitly rejected per the parser contract: returned as FormData
		// with ok=false, which reqparser.RejectMultipartMixed tells apart
		// from an unknown type so the caller can produce a precise 400.
		return FormData, false
	case "application/x-www-form-urlencoded":
		return URLEncode, true
	case "text/html":
		return HTML, true
	default:
		return JSON, false
	}
}

// FromName resolves a short name (as used in the oinorequesttype and
// oinoresponsetype overrides) to a ContentType.
func FromName(name string) (ContentType, bool) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "json":
		return JSON, true
	case "csv":
		return CSV, true
	case "formdata":
		return FormData, true
	case "urlencode":
		return URLEncode, true
	case "html":
		return HTML, true
	default:
		return JSON, false
	}
}

// BoundaryFromMimeType extracts the multipart boundary token from a
// Content-Type header value, e.g. `multipart/form-data; boundary=XYZ`.
func BoundaryFromMimeType(mime string) string {
	parts := strings.Split(mime, ";")
	for _, p := range parts[1:] {
		p = strings.TrimSpace(p)
		if strings.HasPrefix(strings.ToLower(p), "boundary=") {
			v := p[len("boundary="):]
			v = strings.Trim(v, `"`)
			return v
		}
	}
	return ""
}
