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

// ModelSet binds a DataSet to the DataModel that produced it and
// serializes the row stream into any supported content type. The first
// emitted field for every row is always the synthetic OinoId.
type ModelSet struct {
	model       *datamodel.DataModel
	ds          DataSet
	applyHashid bool
}

// New binds ds to model. applyHashid controls whether numeric
// primary/foreign keys are hashid-encoded in the serialized output
// (independent of whether the model has Hashid configured at all — a
// model with no Hashid ignores this flag).
func New(model *datamodel.DataModel, ds DataSet, applyHashid bool) *ModelSet {
	return &ModelSet{model: model, ds: ds, applyHashid: applyHashid}
}

// cellText renders one cell's canonical textual form, substituting the
// Hashid token for numeric primary/foreign keys when enabled.
func (ms *ModelSet) cellText(f *field.Field, cell field.Cell, pkSeedText string) (string, field.CellState, error) {
	text, state, err := f.SerializeCell(cell)
	if err != nil || state != field.StateValue {
		return text, state, err
	}
	if ms.applyHashid && ms.model.HashidAppliesTo(f) {
		native, _ := cell.Native()
		id, convErr := toInt64(native)
		if convErr != nil {
			return "", 0, convErr
		}
		token, encErr := ms.model.Hashid().Encode(id, f.Name+" "+pkSeedText)
		if encErr != nil {
			return "", 0, encErr
		}
		return token, field.StateValue, nil
	}
	return text, state, nil
}

func toInt64(native interface{}) (int64, error) {
	switch v := native.(type) {
	case int64:
		return v, nil
	case int:
		return int64(v), nil
	case float64:
		return int64(v), nil
	default:
		return 0, fmt.Errorf("rowset: expected numeric key, got %T", native)
	}
}

// WriteJSON serializes every remaining row as `[ {"_OINOID_":"…",
// "col":val, …}, … ]`. Absent fields are omitted; null fields are kept
// as JSON null.
func (ms *ModelSet) WriteJSON(ctx context.Context) (string, error) {
	var b strings.Builder
	b.WriteByte('[')
	first := true
	for {
		has, err := ms.ds.Next(ctx)
		if err != nil {
			return "", err
		}
		if !has {
			break
		}
		if !first {
			b.WriteByte(',')
		}
		first = false

		row := ms.ds.GetRow()
		obj, err := ms.rowToJSONObject(row)
		if err != nil {
			return "", err
		}
		b.WriteString(obj)
	}
	b.WriteByte(']')
	return b.String(), nil
}

func (ms *ModelSet) rowToJSONObject(row datamodel.Row) (string, error) {
	pkSeed, err := pkSeedText(ms.model, row)
	if err != nil {
		return "", err
	}
	oinoID, err := ms.model.PrintOinoId(row, ms.applyHashid)
	if err != nil {
		return "", err
	}

	var b strings.Builder
	b.WriteByte('{')
	fmt.Fprintf(&b, "%q:%s", oinoid.FieldName, jsonString(oinoID))

	for i, f := range ms.model.Fields() {
		text, state, err := ms.cellText(f, row[i], pkSeed)
		if err != nil {
			return "", fmt.Errorf("rowset: field %q: %w", f.Name, err)
		}
		if state == field.StateAbsent {
			continue
		}
		if state == field.StateNull {
			text = stringcodec.Null
		}
		encoded, err := stringcodec.Encode(text, encodingKind(ms.model, f), contenttype.JSON)
		if err != nil {
			return "", err
		}
		b.WriteByte(',')
		fmt.Fprintf(&b, "%q:%s", f.Name, encoded)
	}
	b.WriteByte('}')
	return b.String(), nil
}

// encodingKind reports the kind stringcodec should encode with: a
// hashid-obfuscated key becomes a string token, not a JSON number.
func encodingKind(model *datamodel.DataModel, f *field.Field) fieldkind.Kind {
	if model.HashidAppliesTo(f) {
		return fieldkind.String
	}
	return f.Kind
}

func pkSeedText(model *datamodel.DataModel, row datamodel.Row) (string, error) {
	values, err := model.GetRowPrimaryKeyValues(row, false)
	if err != nil {
		return "", err
	}
	if len(values) == 0 {
		return "", nil
	}
	return values[0], nil
}

func jsonString(s string) string {
	encoded, _ := stringcodec.Encode(s, fieldkind.String, contenttype.JSON)
	return encoded
}
