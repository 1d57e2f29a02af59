package rowset

import (
	"context"
	"fmt"
	"strings"

	"github.com/tablegate/tablegate/internal/contenttype"
	"github.com/tablegate/tablegate/internal/datamodel"
	"github.com/tablegate/tablegate/internal/field"
	"github.com/tablegate/tablegate/internal/fieldkind"
	"github.com/tablegate/tablegate/internal/oinoid"
	"github.com/tablegate/tablegate/internal/stringcodec"
)

// WriteCSV serializes the row stream as RFC 4180 text: a header line
// (_OINOID_ first, then model order) followed by one line per row, each
// value quoted only when it needs it (comma, quote, line break, or empty).
func (ms *ModelSet) WriteCSV(ctx context.Context) (string, error) {
	var b strings.Builder

	headers := make([]string, 0, len(ms.model.Fields())+1)
	headers = append(headers, oinoid.FieldName)
	for _, f := range ms.model.Fields() {
		headers = append(headers, f.Name)
	}
	b.WriteString(strings.Join(headers, ","))
	b.WriteString("\r\n")

	for {
		has, err := ms.ds.Next(ctx)
		if err != nil {
			return "", err
		}
		if !has {
			break
		}
		row := ms.ds.GetRow()
		line, err := ms.rowToCSVLine(row)
		if err != nil {
			return "", err
		}
		b.WriteString(line)
		b.WriteString("\r\n")
	}
	return b.String(), nil
}

func (ms *ModelSet) rowToCSVLine(row datamodel.Row) (string, error) {
	pkSeed, err := pkSeedText(ms.model, row)
	if err != nil {
		return "", err
	}
	oinoID, err := ms.model.PrintOinoId(row, ms.applyHashid)
	if err != nil {
		return "", err
	}

	cells := make([]string, 0, len(ms.model.Fields())+1)
	encodedID, err := stringcodec.Encode(oinoID, fieldkind.String, contenttype.CSV)
	if err != nil {
		return "", err
	}
	cells = append(cells, encodedID)

	for i, f := range ms.model.Fields() {
		text, state, err := ms.cellText(f, row[i], pkSeed)
		if err != nil {
			return "", err
		}
		switch state {
		case field.StateAbsent:
			cells = append(cells, "")
			continue
		case field.StateNull:
			text = stringcodec.Null
		}
		encoded, err := stringcodec.Encode(text, encodingKind(ms.model, f), contenttype.CSV)
		if err != nil {
			return "", err
		}
		cells = append(cells, encoded)
	}
	return strings.Join(cells, ","), nil
}

// WriteFormData serializes exactly one row as multipart/form-data parts
// under a fixed boundary, for deterministic tests and single-record
// responses. Multi-row DataSets only emit their first row; the shape is
// not meaningful for a batch.
func (ms *ModelSet) WriteFormData(ctx context.Context, boundary string) (string, error) {
	has, err := ms.ds.Next(ctx)
	if err != nil {
		return "", err
	}
	if !has {
		return "--" + boundary + "--\r\n", nil
	}
	row := ms.ds.GetRow()
	pkSeed, err := pkSeedText(ms.model, row)
	if err != nil {
		return "", err
	}
	oinoID, err := ms.model.PrintOinoId(row, ms.applyHashid)
	if err != nil {
		return "", err
	}

	var b strings.Builder
	writePart := func(name, value string) {
		fmt.Fprintf(&b, "--%s\r\nContent-Disposition: form-data; name=%q\r\n\r\n%s\r\n", boundary, name, value)
	}
	writePart(oinoid.FieldName, oinoID)
	for i, f := range ms.model.Fields() {
		text, state, err2 := ms.cellText(f, row[i], pkSeed)
		if err2 != nil {
			return "", err2
		}
		if state != field.StateValue {
			continue
		}
		writePart(f.Name, text)
	}
	fmt.Fprintf(&b, "--%s--\r\n", boundary)
	return b.String(), nil
}

// WriteURLEncoded serializes exactly one row as `&`-joined `key=value`
// pairs. A second row, if present, only produces a warning to the
// caller (returned via the bool) since the format has no row framing.
func (ms *ModelSet) WriteURLEncoded(ctx context.Context) (encoded string, multipleRows bool, err error) {
	has, err := ms.ds.Next(ctx)
	if err != nil {
		return "", false, err
	}
	if !has {
		return "", false, nil
	}
	row := ms.ds.GetRow()
	pkSeed, err := pkSeedText(ms.model, row)
	if err != nil {
		return "", false, err
	}
	oinoID, err := ms.model.PrintOinoId(row, ms.applyHashid)
	if err != nil {
		return "", false, err
	}

	pairs := []string{oinoid.FieldName + "=" + urlEscape(oinoID)}
	for i, f := range ms.model.Fields() {
		text, state, cerr := ms.cellText(f, row[i], pkSeed)
		if cerr != nil {
			return "", false, cerr
		}
		if state != field.StateValue {
			continue
		}
		pairs = append(pairs, f.Name+"="+urlEscape(text))
	}

	more, err := ms.ds.Next(ctx)
	if err != nil {
		return "", false, err
	}
	return strings.Join(pairs, "&"), more, nil
}

func urlEscape(s string) string {
	escaped, _ := stringcodec.Encode(s, fieldkind.String, contenttype.URLEncode)
	return escaped
}
