// Package dialect implements Dialect (C3): the per-engine capability set
// that lets the rest of the gateway stay engine-agnostic. Each supported
// engine (SQLite, PostgreSQL, MariaDB/MySQL, SQL Server) gets its own
// implementation rather than sharing a base class with overrides — the
// quoting, literal, and introspection rules diverge enough per engine
// that a shared inheritance hierarchy would just accumulate special
// cases. Only the "hold a *sql.DB, track connected/validated" plumbing
// is shared, via the embeddable conn type in conn.go.
package dialect

import (
	"context"
	"database/sql"

	"github.com/tablegate/tablegate/internal/fieldkind"
)

// ColumnInfo is one column as discovered by IntrospectTable, before it is
// wrapped into a field.Field by the datamodel package.
type ColumnInfo struct {
	Name       string
	SQLType    string
	MaxLength  int
	Kind       fieldkind.Kind
	PrimaryKey bool
	ForeignKey bool
	NotNull    bool
	AutoInc    bool
}

// SelectSQL carries the pre-rendered fragments AssembleSelect combines
// into one engine-correct statement. Fragments are empty when absent;
// HasLimit/HasOffset distinguish "0" from "not specified".
type SelectSQL struct {
	Table     string
	Columns   []string
	Where     string
	GroupBy   []string
	OrderBy   string
	Limit     int
	HasLimit  bool
	Offset    int
	HasOffset bool
}

// Dialect is the capability set every engine must provide. All of its
// methods are fail-closed: query/execute refuse to run before Validate
// has succeeded.
type Dialect interface {
	Engine() string

	Connect(ctx context.Context) error
	Validate(ctx context.Context) error
	Disconnect() error
	Connected() bool
	Validated() bool

	Query(ctx context.Context, query string) (*sql.Rows, error)
	Execute(ctx context.Context, query string) (sql.Result, error)

	IntrospectTable(ctx context.Context, table string) ([]ColumnInfo, error)

	PrintIdentifierTable(name string) string
	PrintIdentifierColumn(name string) string
	PrintString(text string) string
	// PrintLiteral satisfies field.LiteralPrinter structurally.
	PrintLiteral(kind fieldkind.Kind, sqlType string, maxLength int, isNull bool, native interface{}) (string, error)
	ParseResultCell(raw interface{}, sqlType string, kind fieldkind.Kind) (interface{}, error)

	AssembleSelect(req SelectSQL) string
}
