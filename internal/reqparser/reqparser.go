// Package reqparser implements Parser (C7): decodes a request body of a
// given content type into rows keyed by a DataModel. JSON, CSV,
// multipart/form-data and urlencoded bodies are supported; html is
// output-only and rejected here.
package reqparser

import (
	"fmt"

	"github.com/tablegate/tablegate/internal/contenttype"
	"github.com/tablegate/tablegate/internal/datamodel"
	"github.com/tablegate/tablegate/internal/field"
	"github.com/tablegate/tablegate/internal/fieldkind"
	"github.com/tablegate/tablegate/internal/hashid"
	"github.com/tablegate/tablegate/internal/stringcodec"
)

// Model is the narrow capability reqparser needs from a DataModel.
type Model interface {
	Fields() []*field.Field
	FindFieldByName(name string) *field.Field
}

// Options configures Parse; Hashid is nil when key obfuscation is off.
type Options struct {
	Hashid    *hashid.Hashid
	Boundary  string // multipart boundary, required for FormData
	Separator byte
}

// Warning is a non-fatal parse issue attached to a particular row.
type Warning struct {
	RowIndex int
	Message  string
}

// Result is the parsed row set plus any warnings encountered along the
// way (e.g. an entirely-empty row was skipped).
type Result struct {
	Rows     []datamodel.Row
	Warnings []Warning
}

// Parse decodes body into rows guided by m.
func Parse(body []byte, ct contenttype.ContentType, m Model, opts Options) (Result, error) {
	switch ct {
	case contenttype.JSON:
		return parseJSON(body, m, opts)
	case contenttype.CSV:
		return parseCSV(body, m, opts)
	case contenttype.FormData:
		return parseFormData(body, m, opts)
	case contenttype.URLEncode:
		return parseURLEncoded(body, m, opts)
	case contenttype.HTML:
		return Result{}, fmt.Errorf("reqparser: html is output-only and cannot be parsed as input")
	default:
		return Result{}, fmt.Errorf("reqparser: unsupported content type %v", ct)
	}
}

// buildRow turns a name->text map (already content-type decoded to the
// canonical textual form) into a datamodel.Row, leaving any field absent
// from the map as field.AbsentCell.
func buildRow(m Model, values map[string]string, opts Options) (datamodel.Row, bool, error) {
	fields := m.Fields()
	row := make(datamodel.Row, len(fields))
	anyPresent := false

	for i, f := range fields {
		text, present := values[f.Name]
		if !present {
			row[i] = field.AbsentCell()
			continue
		}
		anyPresent = true
		if text == stringcodec.Null {
			row[i] = field.NullCell()
			continue
		}
		if opts.Hashid != nil && f.Kind == fieldkind.Number && (f.Flags.PrimaryKey || f.Flags.ForeignKey) {
			id, err := opts.Hashid.Decode(text, "")
			if err != nil {
				return nil, false, fmt.Errorf("reqparser: field %q: %w", f.Name, err)
			}
			row[i] = field.ValueCell(id)
			continue
		}
		c, err := f.DeserializeCell(text, field.StateValue)
		if err != nil {
			return nil, false, fmt.Errorf("reqparser: field %q: %w", f.Name, err)
		}
		row[i] = c
	}
	return row, anyPresent, nil
}
