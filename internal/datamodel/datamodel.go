// Package datamodel implements DataModel (C5): the ordered field list
// for one table, created once from a successful Dialect.IntrospectTable
// call and immutable thereafter. It owns SQL assembly for all four verbs
// (SELECT/INSERT/UPDATE/DELETE), delegating engine-specific SELECT
// syntax to the Dialect and compiling the sqlparams sublanguage against
// itself as a sqlparams.Resolver.
package datamodel

import (
	"fmt"
	"strings"

	"github.com/tablegate/tablegate/internal/dialect"
	"github.com/tablegate/tablegate/internal/field"
	"github.com/tablegate/tablegate/internal/fieldkind"
	"github.com/tablegate/tablegate/internal/hashid"
	"github.com/tablegate/tablegate/internal/oinoid"
	"github.com/tablegate/tablegate/internal/sqlparams"
)

// Row is a positional array of cells, length == len(DataModel.fields).
type Row []field.Cell

// DataModel is the ordered field list plus name index for one table.
type DataModel struct {
	table     string
	fields    []*field.Field
	index     map[string]int
	dialect   dialect.Dialect
	separator byte
	hashid    *hashid.Hashid // nil disables key obfuscation
	excluded  []string
}

// Option configures New.
type Option func(*DataModel)

// WithSeparator overrides the default OinoId segment separator.
func WithSeparator(sep byte) Option {
	return func(dm *DataModel) { dm.separator = sep }
}

// WithHashid enables numeric-key obfuscation.
func WithHashid(h *hashid.Hashid) Option {
	return func(dm *DataModel) { dm.hashid = h }
}

// WithExcludedFields hides columns from the model entirely: an exact
// name is dropped outright, a name ending in "*" drops every column
// carrying that prefix. Only meaningful passed to FromColumns, since
// AddField bypasses the filter.
func WithExcludedFields(names []string) Option {
	return func(dm *DataModel) { dm.excluded = names }
}

func (dm *DataModel) isExcluded(name string) bool {
	for _, n := range dm.excluded {
		if strings.HasSuffix(n, "*") {
			if strings.HasPrefix(name, strings.TrimSuffix(n, "*")) {
				return true
			}
			continue
		}
		if n == name {
			return true
		}
	}
	return false
}

// New constructs an empty DataModel for table, fields added via AddField.
func New(table string, d dialect.Dialect, opts ...Option) *DataModel {
	dm := &DataModel{
		table:     table,
		index:     make(map[string]int),
		dialect:   d,
		separator: oinoid.DefaultSeparator,
	}
	for _, opt := range opts {
		opt(dm)
	}
	return dm
}

// FromColumns builds a DataModel directly from dialect introspection
// results, binding each Field's literal printer to d.
func FromColumns(table string, d dialect.Dialect, columns []dialect.ColumnInfo, opts ...Option) *DataModel {
	dm := New(table, d, opts...)
	for _, c := range columns {
		if dm.isExcluded(c.Name) {
			continue
		}
		f := field.New(c.Name, c.Kind, c.SQLType, c.MaxLength, field.Flags{
			PrimaryKey: c.PrimaryKey,
			ForeignKey: c.ForeignKey,
			NotNull:    c.NotNull,
			AutoInc:    c.AutoInc,
		}, d)
		dm.AddField(f)
	}
	return dm
}

// AddField appends f and updates the name index.
func (dm *DataModel) AddField(f *field.Field) {
	dm.index[f.Name] = len(dm.fields)
	dm.fields = append(dm.fields, f)
}

// Table returns the underlying table name.
func (dm *DataModel) Table() string { return dm.table }

// Fields returns all fields in model order. The slice must not be mutated.
func (dm *DataModel) Fields() []*field.Field { return dm.fields }

// FindFieldByName returns the field named name, or nil if absent.
func (dm *DataModel) FindFieldByName(name string) *field.Field {
	if i, ok := dm.index[name]; ok {
		return dm.fields[i]
	}
	return nil
}

// FindFieldIndexByName returns the positional index of name, or -1.
func (dm *DataModel) FindFieldIndexByName(name string) int {
	if i, ok := dm.index[name]; ok {
		return i
	}
	return -1
}

// FilterFields returns every field for which predicate is true.
func (dm *DataModel) FilterFields(predicate func(*field.Field) bool) []*field.Field {
	var out []*field.Field
	for _, f := range dm.fields {
		if predicate(f) {
			out = append(out, f)
		}
	}
	return out
}

// PrimaryKeyFields returns the model's primary-key fields in model order.
func (dm *DataModel) PrimaryKeyFields() []*field.Field {
	return dm.FilterFields(func(f *field.Field) bool { return f.Flags.PrimaryKey })
}

// --- sqlparams.Resolver -----------------------------------------------

func (dm *DataModel) HasField(name string) bool { _, ok := dm.index[name]; return ok }

func (dm *DataModel) QuoteIdentifier(name string) (string, error) {
	if !dm.HasField(name) {
		return "", fmt.Errorf("datamodel: unknown field %q", name)
	}
	return dm.dialect.PrintIdentifierColumn(name), nil
}

func (dm *DataModel) PrintLiteral(name, text string) (string, error) {
	f := dm.FindFieldByName(name)
	if f == nil {
		return "", fmt.Errorf("datamodel: unknown field %q", name)
	}
	if dm.hashidAppliesTo(f) {
		id, err := dm.hashid.Decode(text, "")
		if err != nil {
			return "", fmt.Errorf("datamodel: field %q: %w", name, err)
		}
		return f.PrintCellAsSQL(field.ValueCell(id))
	}
	return f.PrintTextAsSQL(text, field.StateValue)
}

func (dm *DataModel) PrimaryKeyNames() []string {
	var names []string
	for _, f := range dm.PrimaryKeyFields() {
		names = append(names, f.Name)
	}
	return names
}

func (dm *DataModel) FieldNames() []string {
	names := make([]string, len(dm.fields))
	for i, f := range dm.fields {
		names[i] = f.Name
	}
	return names
}

func (dm *DataModel) hashidAppliesTo(f *field.Field) bool {
	return dm.hashid != nil && f.Kind == fieldkind.Number && (f.Flags.PrimaryKey || f.Flags.ForeignKey)
}

// Hashid returns the model's key obfuscator, or nil if disabled.
func (dm *DataModel) Hashid() *hashid.Hashid { return dm.hashid }

// HashidAppliesTo reports whether f is a numeric primary/foreign key
// subject to Hashid encoding/decoding under this model's configuration.
func (dm *DataModel) HashidAppliesTo(f *field.Field) bool { return dm.hashidAppliesTo(f) }

// Separator returns the configured OinoId segment separator.
func (dm *DataModel) Separator() byte { return dm.separator }

// Dialect returns the owning engine dialect.
func (dm *DataModel) Dialect() dialect.Dialect { return dm.dialect }
