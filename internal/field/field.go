// Package field implements Field (C2): a typed column descriptor that
// converts between native Go values, the canonical textual form used by
// the content-type codecs, and SQL literals. A Field never mutates after
// construction and never hands a raw value to SQL except through
// PrintCellAsSQL, which is the only path a cell may take into a SQL
// string — see spec §4.2's injection-safety invariant.
package field

import (
	"encoding/base64"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/tablegate/tablegate/internal/fieldkind"
)

// LiteralPrinter is the narrow capability a Dialect exposes to a Field so
// the field package never imports the dialect package (which itself
// needs the Field type during introspection) — this breaks the cycle.
type LiteralPrinter interface {
	// PrintLiteral renders a non-absent cell as a SQL literal for a column
	// of the given kind/sqlType/maxLength. isNull selects the NULL path.
	// An empty return string (with nil error) signals adversarial input
	// that the caller must reject with 400, per spec §4.5/§4.6.
	PrintLiteral(kind fieldkind.Kind, sqlType string, maxLength int, isNull bool, native interface{}) (string, error)
}

// Flags bundles the boolean column attributes from introspection.
type Flags struct {
	PrimaryKey bool
	ForeignKey bool
	NotNull    bool
	AutoInc    bool
}

// Field is one column descriptor, owned for its entire lifetime by the
// DataModel that created it during introspection.
type Field struct {
	Name      string
	Kind      fieldkind.Kind
	SQLType   string // opaque, dialect-specific type tag (e.g. "varchar", "INTEGER")
	MaxLength int    // 0 = unbounded
	Flags     Flags

	dialect LiteralPrinter
}

// New constructs a Field. dialect must be non-nil for any field whose
// PrintCellAsSQL will be called (i.e. every field belonging to a live
// DataModel); it may be nil in tests that only exercise
// Serialize/Deserialize.
func New(name string, kind fieldkind.Kind, sqlType string, maxLength int, flags Flags, dialect LiteralPrinter) *Field {
	return &Field{
		Name:      name,
		Kind:      kind,
		SQLType:   sqlType,
		MaxLength: maxLength,
		Flags:     flags,
		dialect:   dialect,
	}
}

// BindDialect attaches the owning Dialect's literal printer, replacing
// the one given to New.
func (f *Field) BindDialect(dialect LiteralPrinter) { f.dialect = dialect }

// SerializeCell converts a cell into its canonical textual form for this
// field's kind. The returned CellState distinguishes null/absent from an
// actual textual value; the text return is only meaningful when state ==
// StateValue.
func (f *Field) SerializeCell(c Cell) (text string, state CellState, err error) {
	if c.IsAbsent() {
		return "", StateAbsent, nil
	}
	if c.IsNull() {
		return "", StateNull, nil
	}
	native, _ := c.Native()

	switch f.Kind {
	case fieldkind.Boolean:
		b, ok := native.(bool)
		if !ok {
			return "", 0, fmt.Errorf("field %q: expected bool, got %T", f.Name, native)
		}
		if b {
			return "true", StateValue, nil
		}
		return "false", StateValue, nil

	case fieldkind.Number:
		switch v := native.(type) {
		case int64:
			return strconv.FormatInt(v, 10), StateValue, nil
		case int:
			return strconv.Itoa(v), StateValue, nil
		case float64:
			return strconv.FormatFloat(v, 'f', -1, 64), StateValue, nil
		default:
			return "", 0, fmt.Errorf("field %q: expected numeric value, got %T", f.Name, native)
		}

	case fieldkind.Datetime:
		switch v := native.(type) {
		case time.Time:
			return v.UTC().Format(time.RFC3339Nano), StateValue, nil
		case string:
			return v, StateValue, nil
		default:
			return "", 0, fmt.Errorf("field %q: expected time.Time, got %T", f.Name, native)
		}

	case fieldkind.Blob:
		switch v := native.(type) {
		case []byte:
			return base64.StdEncoding.EncodeToString(v), StateValue, nil
		case string:
			return v, StateValue, nil
		default:
			return "", 0, fmt.Errorf("field %q: expected []byte, got %T", f.Name, native)
		}

	default: // String
		switch v := native.(type) {
		case string:
			return v, StateValue, nil
		case fmt.Stringer:
			return v.String(), StateValue, nil
		default:
			return fmt.Sprint(v), StateValue, nil
		}
	}
}

// DeserializeCell is the inverse of SerializeCell: given a canonical
// textual value (or an explicit state for null/absent), produce the
// native Go value for this field's kind.
func (f *Field) DeserializeCell(text string, state CellState) (Cell, error) {
	switch state {
	case StateAbsent:
		return AbsentCell(), nil
	case StateNull:
		return NullCell(), nil
	}

	switch f.Kind {
	case fieldkind.Boolean:
		switch strings.ToLower(strings.TrimSpace(text)) {
		case "true", "1", "yes":
			return ValueCell(true), nil
		case "false", "0", "no", "":
			return ValueCell(false), nil
		default:
			return Cell{}, fmt.Errorf("field %q: invalid boolean %q", f.Name, text)
		}

	case fieldkind.Number:
		if strings.Contains(text, ".") || strings.ContainsAny(text, "eE") {
			v, err := strconv.ParseFloat(text, 64)
			if err != nil {
				return Cell{}, fmt.Errorf("field %q: invalid number %q: %w", f.Name, text, err)
			}
			return ValueCell(v), nil
		}
		v, err := strconv.ParseInt(text, 10, 64)
		if err != nil {
			// Fall back to float for out-of-range integers.
			fv, ferr := strconv.ParseFloat(text, 64)
			if ferr != nil {
				return Cell{}, fmt.Errorf("field %q: invalid number %q: %w", f.Name, text, err)
			}
			return ValueCell(fv), nil
		}
		return ValueCell(v), nil

	case fieldkind.Datetime:
		t, err := parseDatetime(text)
		if err != nil {
			return Cell{}, fmt.Errorf("field %q: invalid datetime %q: %w", f.Name, text, err)
		}
		return ValueCell(t), nil

	case fieldkind.Blob:
		b, err := base64.StdEncoding.DecodeString(text)
		if err != nil {
			return Cell{}, fmt.Errorf("field %q: invalid base64 blob: %w", f.Name, err)
		}
		return ValueCell(b), nil

	default: // String
		return ValueCell(text), nil
	}
}

// parseDatetime accepts RFC3339(Nano) and a small set of common SQL
// datetime textual forms.
func parseDatetime(text string) (time.Time, error) {
	layouts := []string{
		time.RFC3339Nano,
		time.RFC3339,
		"2006-01-02 15:04:05.999999999",
		"2006-01-02 15:04:05",
		"2006-01-02T15:04:05",
		"2006-01-02",
	}
	var lastErr error
	for _, layout := range layouts {
		t, err := time.Parse(layout, text)
		if err == nil {
			return t, nil
		}
		lastErr = err
	}
	return time.Time{}, lastErr
}

// PrintCellAsSQL is the ONLY function by which a cell's value may reach a
// SQL string. It must not be called with an absent cell — the row
// assembler is responsible for filtering those out first; doing so
// anyway is a programmer bug and returns an error rather than emitting
// UNDEFINED into SQL.
func (f *Field) PrintCellAsSQL(c Cell) (string, error) {
	if c.IsAbsent() {
		return "", fmt.Errorf("field %q: PrintCellAsSQL called on an absent cell (programmer bug)", f.Name)
	}
	if f.dialect == nil {
		return "", fmt.Errorf("field %q: no dialect bound, cannot print SQL literal", f.Name)
	}
	native, _ := c.Native()
	literal, err := f.dialect.PrintLiteral(f.Kind, f.SQLType, f.MaxLength, c.IsNull(), native)
	if err != nil {
		return "", err
	}
	return literal, nil
}

// PrintTextAsSQL deserializes a canonical textual value for this field
// and prints it as a SQL literal in one step. Used by the id-condition
// and filter-value paths, where the sublanguage only ever has text.
func (f *Field) PrintTextAsSQL(text string, state CellState) (string, error) {
	c, err := f.DeserializeCell(text, state)
	if err != nil {
		return "", err
	}
	return f.PrintCellAsSQL(c)
}
