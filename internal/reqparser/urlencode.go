package reqparser

import (
	"fmt"
	"net/url"
	"strings"

	"github.com/tablegate/tablegate/internal/contenttype"
	"github.com/tablegate/tablegate/internal/datamodel"
	"github.com/tablegate/tablegate/internal/stringcodec"
)

// parseURLEncoded splits body on '&' then '=', updating one field per
// pair. Produces at most one row; none, with a warning, when no pair
// names a known field.
func parseURLEncoded(body []byte, m Model, opts Options) (Result, error) {
	values := make(map[string]string)
	for _, pair := range strings.Split(string(body), "&") {
		if pair == "" {
			continue
		}
		key, val, found := strings.Cut(pair, "=")
		if !found {
			return Result{}, fmt.Errorf("reqparser: malformed urlencoded pair %q", pair)
		}
		name, err := url.QueryUnescape(key)
		if err != nil {
			return Result{}, fmt.Errorf("reqparser: malformed urlencoded key %q: %w", key, err)
		}
		f := m.FindFieldByName(name)
		if f == nil {
			continue
		}
		text, err := stringcodec.Decode(val, f.Kind, contenttype.URLEncode)
		if err != nil {
			return Result{}, fmt.Errorf("reqparser: field %q: %w", name, err)
		}
		values[name] = text
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
