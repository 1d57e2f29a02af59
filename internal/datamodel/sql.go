package datamodel

import (
	"fmt"
	"strings"

	"github.com/tablegate/tablegate/internal/dialect"
	"github.com/tablegate/tablegate/internal/field"
	"github.com/tablegate/tablegate/internal/oinoid"
	"github.com/tablegate/tablegate/internal/sqlparams"
)

// valueMarker fills unselected columns in an aggregated or projected
// result so every row keeps the same shape regardless of selection.
const valueMarker = "OINOVALUE"

// GetRowPrimaryKeyValues returns the row's primary-key cells serialized
// to text, in model order. When applyHashid is true and the model has
// Hashid enabled, numeric primary keys are hashid-encoded using
// cellSeed = fieldName + " " + the key's own plain-text value, so static
// mode produces the same token on every read of that row.
func (dm *DataModel) GetRowPrimaryKeyValues(row Row, applyHashid bool) ([]string, error) {
	pkFields := dm.PrimaryKeyFields()
	values := make([]string, len(pkFields))
	for i, f := range pkFields {
		idx := dm.FindFieldIndexByName(f.Name)
		text, state, err := f.SerializeCell(row[idx])
		if err != nil {
			return nil, err
		}
		if state != field.StateValue {
			return nil, fmt.Errorf("datamodel: primary key field %q has no value", f.Name)
		}
		if applyHashid && dm.hashidAppliesTo(f) {
			native, _ := row[idx].Native()
			id, err := toInt64(native)
			if err != nil {
				return nil, err
			}
			token, err := dm.hashid.Encode(id, f.Name+" "+text)
			if err != nil {
				return nil, err
			}
			values[i] = token
		} else {
			values[i] = text
		}
	}
	return values, nil
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
		return 0, fmt.Errorf("datamodel: expected numeric primary key, got %T", native)
	}
}

// PrintOinoId renders the row's OinoId token.
func (dm *DataModel) PrintOinoId(row Row, applyHashid bool) (string, error) {
	segments, err := dm.GetRowPrimaryKeyValues(row, applyHashid)
	if err != nil {
		return "", err
	}
	return oinoid.Print(segments, dm.separator), nil
}

// idCondition renders the WHERE fragment matching idToken's primary-key
// values. Returns "" with a nil error when idToken is empty (no id
// filter). Any malformed id is a 400-class error per spec: id values are
// a high-risk injection surface, so failures here must not fall through
// to partial SQL.
func (dm *DataModel) idCondition(idToken string) (string, error) {
	if idToken == "" {
		return "", nil
	}
	segments, err := oinoid.Parse(idToken, dm.separator)
	if err != nil {
		return "", fmt.Errorf("datamodel: invalid id token: %w", err)
	}
	pkFields := dm.PrimaryKeyFields()
	if len(segments) != len(pkFields) {
		return "", fmt.Errorf("datamodel: id token has %d segments, want %d", len(segments), len(pkFields))
	}

	parts := make([]string, len(pkFields))
	for i, f := range pkFields {
		var lit string
		var err error
		if dm.hashidAppliesTo(f) {
			id, decErr := dm.hashid.Decode(segments[i], "")
			if decErr != nil {
				return "", fmt.Errorf("datamodel: id segment %d: %w", i, decErr)
			}
			lit, err = f.PrintCellAsSQL(field.ValueCell(id))
		} else {
			lit, err = f.PrintTextAsSQL(segments[i], field.StateValue)
		}
		if err != nil {
			return "", fmt.Errorf("datamodel: id segment %d: %w", i, err)
		}
		if lit == "" {
			return "", fmt.Errorf("datamodel: id segment %d rejected by field %q", i, f.Name)
		}
		ident := dm.dialect.PrintIdentifierColumn(f.Name)
		parts[i] = ident + " = " + lit
	}
	return strings.Join(parts, " AND "), nil
}

// PrintSqlSelect assembles a full SELECT statement for idToken (may be
// empty) combined with the parsed query parameters.
func (dm *DataModel) PrintSqlSelect(idToken string, params sqlparams.Params) (string, error) {
	idWhere, err := dm.idCondition(idToken)
	if err != nil {
		return "", err
	}

	var filterWhere string
	if params.Filter != nil {
		filterWhere, err = params.Filter.ToSQL(dm)
		if err != nil {
			return "", err
		}
	}
	where := combineWhere(idWhere, filterWhere)

	columns, groupBy, err := dm.selectColumns(params)
	if err != nil {
		return "", err
	}

	orderSQL, err := params.Order.ToSQL(dm)
	if err != nil {
		return "", err
	}

	req := dialect.SelectSQL{
		Table:   dm.table,
		Columns: columns,
		Where:   where,
		GroupBy: groupBy,
		OrderBy: orderSQL,
	}
	if params.Limit.HasLimit {
		req.HasLimit = true
		req.Limit = params.Limit.N
		if offset, ok := params.Limit.Offset(); ok {
			req.HasOffset = true
			req.Offset = offset
		}
	}
	return dm.dialect.AssembleSelect(req), nil
}

// PrintSqlCount builds a `SELECT count(*)` over the same filter a
// PrintSqlSelect call would use, ignoring order/limit/aggregate/select —
// it answers "how many rows would this filter match in total".
func (dm *DataModel) PrintSqlCount(params sqlparams.Params) (string, error) {
	var filterWhere string
	if params.Filter != nil {
		var err error
		filterWhere, err = params.Filter.ToSQL(dm)
		if err != nil {
			return "", err
		}
	}
	req := dialect.SelectSQL{
		Table:   dm.table,
		Columns: []string{"count(*)"},
		Where:   filterWhere,
	}
	return dm.dialect.AssembleSelect(req), nil
}

func combineWhere(a, b string) string {
	switch {
	case a == "" && b == "":
		return ""
	case a == "":
		return b
	case b == "":
		return a
	default:
		return a + " AND " + b
	}
}

// selectColumns builds the SELECT column list and GROUP BY clause. When
// an aggregate is present, aggregated fields become `fn(col) as col` and
// every other selected field becomes a bare `col` that also lands in
// GROUP BY; fields outside the projection keep row shape uniform via a
// constant marker. Without an aggregate, unselected fields also get the
// marker so every row of every query against this model has the same
// column count and order.
func (dm *DataModel) selectColumns(params sqlparams.Params) (columns, groupBy []string, err error) {
	selected := params.Select.Resolve(dm)
	selectedSet := make(map[string]bool, len(selected))
	for _, name := range selected {
		selectedSet[name] = true
	}

	aggSet := params.Aggregate.FieldSet()
	aggByField := make(map[string]string, len(params.Aggregate))
	for _, a := range params.Aggregate {
		aggByField[a.Field] = a.Fn
	}
	hasAggregate := len(params.Aggregate) > 0

	columns = make([]string, 0, len(dm.fields))
	for _, f := range dm.fields {
		ident, qerr := dm.QuoteIdentifier(f.Name)
		if qerr != nil {
			return nil, nil, qerr
		}
		switch {
		case hasAggregate && aggSet[f.Name]:
			fn := aggByField[f.Name]
			columns = append(columns, fmt.Sprintf("%s(%s) as %s", fn, ident, ident))
		case hasAggregate && selectedSet[f.Name]:
			columns = append(columns, fmt.Sprintf("%s as %s", ident, ident))
			groupBy = append(groupBy, ident)
		case hasAggregate:
			columns = append(columns, fmt.Sprintf("min('%s') as %s", valueMarker, ident))
		case selectedSet[f.Name]:
			columns = append(columns, fmt.Sprintf("%s as %s", ident, ident))
		default:
			columns = append(columns, fmt.Sprintf("'%s' as %s", valueMarker, ident))
		}
	}
	return columns, groupBy, nil
}

// PrintSqlInsert emits `INSERT INTO tbl (col, ...) VALUES (lit, ...)`,
// skipping any field whose cell is absent.
func (dm *DataModel) PrintSqlInsert(row Row) (string, error) {
	var cols, lits []string
	for i, f := range dm.fields {
		if row[i].IsAbsent() {
			continue
		}
		lit, err := f.PrintCellAsSQL(row[i])
		if err != nil {
			return "", fmt.Errorf("datamodel: field %q: %w", f.Name, err)
		}
		if lit == "" {
			return "", fmt.Errorf("datamodel: field %q rejected its value", f.Name)
		}
		cols = append(cols, dm.dialect.PrintIdentifierColumn(f.Name))
		lits = append(lits, lit)
	}
	if len(cols) == 0 {
		return "", fmt.Errorf("datamodel: insert row has no values")
	}
	return fmt.Sprintf("INSERT INTO %s (%s) VALUES (%s)",
		dm.dialect.PrintIdentifierTable(dm.table),
		strings.Join(cols, ", "),
		strings.Join(lits, ", "),
	), nil
}

// PrintSqlUpdate emits `UPDATE tbl SET col=lit, ... WHERE id-condition`,
// skipping absent cells and primary-key fields (which are never
// rewritten by an UPDATE since they are the update's own identity).
func (dm *DataModel) PrintSqlUpdate(idToken string, row Row) (string, error) {
	where, err := dm.idCondition(idToken)
	if err != nil {
		return "", err
	}
	if where == "" {
		return "", fmt.Errorf("datamodel: update requires an id")
	}

	var sets []string
	for i, f := range dm.fields {
		if f.Flags.PrimaryKey || row[i].IsAbsent() {
			continue
		}
		lit, err := f.PrintCellAsSQL(row[i])
		if err != nil {
			return "", fmt.Errorf("datamodel: field %q: %w", f.Name, err)
		}
		if lit == "" {
			return "", fmt.Errorf("datamodel: field %q rejected its value", f.Name)
		}
		sets = append(sets, dm.dialect.PrintIdentifierColumn(f.Name)+" = "+lit)
	}
	if len(sets) == 0 {
		return "", fmt.Errorf("datamodel: update row has no settable values")
	}
	return fmt.Sprintf("UPDATE %s SET %s WHERE %s",
		dm.dialect.PrintIdentifierTable(dm.table),
		strings.Join(sets, ", "),
		where,
	), nil
}

// PrintSqlDelete emits `DELETE FROM tbl WHERE id-condition`.
func (dm *DataModel) PrintSqlDelete(idToken string) (string, error) {
	where, err := dm.idCondition(idToken)
	if err != nil {
		return "", err
	}
	if where == "" {
		return "", fmt.Errorf("datamodel: delete requires an id")
	}
	return fmt.Sprintf("DELETE FROM %s WHERE %s", dm.dialect.PrintIdentifierTable(dm.table), where), nil
}
