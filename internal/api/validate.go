package api

import (
	"fmt"

	"github.com/tablegate/tablegate/internal/datamodel"
	"github.com/tablegate/tablegate/internal/field"
	"github.com/tablegate/tablegate/internal/fieldkind"
	"github.com/tablegate/tablegate/internal/oinoid"
)

// validateRow checks row against the model's field constraints and this
// Api's validation policy. ok is false when the row must be dropped from
// its batch; msgs explains each problem found (it is empty for a clean
// row), classified as an error when it drops the row and a warning
// otherwise (e.g. a lenient oversized value).
func (a *Api) validateRow(row datamodel.Row, isInsert bool) (ok bool, msgs []Message) {
	ok = true
	for i, f := range a.model.Fields() {
		cell := row[i]

		switch {
		case cell.IsAbsent():
			if isInsert && f.Flags.PrimaryKey && !f.Flags.AutoInc && a.cfg.FailOnInsertWithoutKey {
				ok = false
				msgs = append(msgs, errMsg("field %q: primary key value required on insert", f.Name))
			}
			continue

		case cell.IsNull():
			if f.Flags.NotNull {
				ok = false
				msgs = append(msgs, errMsg("field %q: null not allowed", f.Name))
			}
			continue
		}

		if !isInsert && f.Flags.AutoInc && a.cfg.FailOnUpdateOnAutoinc {
			ok = false
			msgs = append(msgs, errMsg("field %q: autoincrement field cannot be updated", f.Name))
			continue
		}

		if f.MaxLength > 0 && (f.Kind == fieldkind.String || f.Kind == fieldkind.Blob) {
			text, state, err := f.SerializeCell(cell)
			if err == nil && state == field.StateValue && len(text) > f.MaxLength {
				if a.cfg.FailOnOversizedValues {
					ok = false
					msgs = append(msgs, errMsg("field %q: value exceeds max length %d", f.Name, f.MaxLength))
				} else {
					msgs = append(msgs, warnMsg("field %q: value exceeds max length %d", f.Name, f.MaxLength))
				}
			}
		}
	}
	return ok, msgs
}

// fillRowPrimaryKey decodes idToken's OinoId segments into row's
// primary-key cells, used to round out a PUT body (whose fields rarely
// repeat the key already present in the URL) before it is echoed back.
func fillRowPrimaryKey(model *datamodel.DataModel, row datamodel.Row, idToken string) error {
	segments, err := oinoid.Parse(idToken, model.Separator())
	if err != nil {
		return fmt.Errorf("api: invalid id token: %w", err)
	}
	pkFields := model.PrimaryKeyFields()
	if len(segments) != len(pkFields) {
		return fmt.Errorf("api: id token has %d segments, want %d", len(segments), len(pkFields))
	}
	for i, f := range pkFields {
		idx := model.FindFieldIndexByName(f.Name)
		text := segments[i]
		if model.HashidAppliesTo(f) {
			id, decErr := model.Hashid().Decode(text, "")
			if decErr != nil {
				return fmt.Errorf("api: id segment %d: %w", i, decErr)
			}
			row[idx] = field.ValueCell(id)
			continue
		}
		c, decErr := f.DeserializeCell(text, field.StateValue)
		if decErr != nil {
			return fmt.Errorf("api: id segment %d: %w", i, decErr)
		}
		row[idx] = c
	}
	return nil
}
