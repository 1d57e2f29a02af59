package reqparser

import (
	"encoding/base64"
	"fmt"
	"strings"

	"github.com/tablegate/tablegate/internal/contenttype"
	"github.com/tablegate/tablegate/internal/datamodel"
)

// parseFormData frames body on opts.Boundary per RFC 7578. Each part's
// header is scanned for `name="..."`; `Content-Transfer-Encoding:
// BASE64` marks a part body as base64 rather than raw UTF-8. At most one
// row is produced — multipart bodies carry one record, not a batch — and
// none, with a warning, when no part names a known field.
func parseFormData(body []byte, m Model, opts Options) (Result, error) {
	if opts.Boundary == "" {
		return Result{}, fmt.Errorf("reqparser: multipart body requires a boundary")
	}
	delimiter := "--" + opts.Boundary
	raw := string(body)
	parts := strings.Split(raw, delimiter)

	values := make(map[string]string)
	for _, part := range parts {
		part = strings.Trim(part, "\r\n")
		if part == "" || part == "--" {
			continue
		}
		headerEnd := strings.Index(part, "\r\n\r\n")
		sep := "\r\n\r\n"
		if headerEnd < 0 {
			headerEnd = strings.Index(part, "\n\n")
			sep = "\n\n"
			if headerEnd < 0 {
				continue
			}
		}
		header := part[:headerEnd]
		content := part[headerEnd+len(sep):]
		content = strings.TrimSuffix(content, "\r\n")
		content = strings.TrimSuffix(content, "\n")

		name := extractFormName(header)
		if name == "" {
			continue
		}
		f := m.FindFieldByName(name)
		if f == nil {
			continue
		}

		if strings.Contains(strings.ToUpper(header), "CONTENT-TRANSFER-ENCODING: BASE64") {
			decoded, err := base64.StdEncoding.DecodeString(strings.TrimSpace(content))
			if err != nil {
				return Result{}, fmt.Errorf("reqparser: field %q: invalid base64 part: %w", name, err)
			}
			values[name] = string(decoded)
			continue
		}
		values[name] = content
	}

	row, anyPresent, err := buildRow(m, values, opts)
	if err != nil {
		return Result{}, err
	}
	if !anyPresent {
		return Result{Warnings: []Warning{{RowIndex: 0, Message: "row has no recognized fields, skipped"}}}, nil
	}
	return Result{Rows: []datamodel.Row{row}}, nil
}

func extractFormName(header string) string {
	idx := strings.Index(header, `name="`)
	if idx < 0 {
		return ""
	}
	rest := header[idx+len(`name="`):]
	end := strings.IndexByte(rest, '"')
	if end < 0 {
		return ""
	}
	return rest[:end]
}

// RejectMultipartMixed reports whether ct is the disallowed
// multipart/mixed variant, called by the HTTP adapter before it ever
// reaches Parse.
func RejectMultipartMixed(ct contenttype.ContentType, ok bool) error {
	if ct == contenttype.FormData && !ok {
		return fmt.Errorf("reqparser: multipart/mixed is not supported")
	}
	return nil
}
