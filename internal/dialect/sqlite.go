package dialect

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	_ "modernc.org/sqlite"

	"github.com/tablegate/tablegate/internal/fieldkind"
)

// SQLite implements Dialect for the embedded modernc.org/sqlite driver.
// Introspection follows the teacher's PRAGMA-based approach
// (table_info/foreign_key_list), generalized here to the Field-kind
// vocabulary instead of a Go-type vocabulary.
type SQLite struct {
	conn
}

// NewSQLite builds a dialect for path (a file path, or ":memory:") under
// the pure-Go sqlite driver; Connect opens it.
func NewSQLite(path string) *SQLite {
	return &SQLite{conn: conn{
		driverName:    "sqlite",
		dsn:           path,
		validateQuery: "SELECT count(*) FROM pragma_table_info((SELECT name FROM sqlite_master WHERE type='table' LIMIT 1))",
	}}
}

func (d *SQLite) Engine() string { return "sqlite" }

func (d *SQLite) PrintIdentifierTable(name string) string  { return "[" + name + "]" }
func (d *SQLite) PrintIdentifierColumn(name string) string { return "[" + name + "]" }
func (d *SQLite) PrintString(text string) string           { return "'" + sqlStringEscape(text) + "'" }

func (d *SQLite) PrintLiteral(kind fieldkind.Kind, sqlType string, maxLength int, isNull bool, native interface{}) (string, error) {
	if isNull {
		return "NULL", nil
	}
	switch kind {
	case fieldkind.Number:
		return numberLiteral(native)
	case fieldkind.Boolean:
		return boolLiteral(native, "1", "0")
	case fieldkind.Blob:
		b, err := blobBytes(native)
		if err != nil {
			return "", err
		}
		return hexBlobLiteral("X'", "'", b), nil
	case fieldkind.Datetime:
		text, err := datetimeText(native, "2006-01-02 15:04:05.999999999")
		if err != nil {
			return "", err
		}
		return d.PrintString(text), nil
	case fieldkind.String:
		s, ok := native.(string)
		if !ok {
			return "", fmt.Errorf("dialect: sqlite: expected string, got %T", native)
		}
		if maxLength > 0 && len(s) > maxLength {
			return "", nil
		}
		return d.PrintString(s), nil
	default:
		return "", unsupportedKind("sqlite", kind)
	}
}

func (d *SQLite) ParseResultCell(raw interface{}, _ string, kind fieldkind.Kind) (interface{}, error) {
	switch kind {
	case fieldkind.Boolean:
		switch v := raw.(type) {
		case int64:
			return v != 0, nil
		case bool:
			return v, nil
		}
	}
	return raw, nil
}

func (d *SQLite) IntrospectTable(ctx context.Context, table string) ([]ColumnInfo, error) {
	rows, err := d.Query(ctx, fmt.Sprintf("SELECT name, type, \"notnull\", pk FROM pragma_table_info(%s)", d.PrintString(table)))
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	fkRows, err := d.Query(ctx, fmt.Sprintf("SELECT \"from\" FROM pragma_foreign_key_list(%s)", d.PrintString(table)))
	if err != nil {
		return nil, err
	}
	fkCols := map[string]bool{}
	for fkRows.Next() {
		var from string
		if err := fkRows.Scan(&from); err == nil {
			fkCols[from] = true
		}
	}
	fkRows.Close()

	var cols []ColumnInfo
	for rows.Next() {
		var name, sqlType string
		var notNull, pk int
		if err := rows.Scan(&name, &sqlType, &notNull, &pk); err != nil {
			return nil, fmt.Errorf("dialect: sqlite: introspect: %w", err)
		}
		kind, maxLen := mapSQLiteType(sqlType)
		cols = append(cols, ColumnInfo{
			Name:       name,
			SQLType:    sqlType,
			MaxLength:  maxLen,
			Kind:       kind,
			PrimaryKey: pk > 0,
			ForeignKey: fkCols[name],
			NotNull:    notNull != 0 || pk > 0,
			AutoInc:    pk > 0 && strings.EqualFold(sqlType, "INTEGER"),
		})
	}
	return cols, nil
}

func mapSQLiteType(sqlType string) (fieldkind.Kind, int) {
	t := strings.ToUpper(sqlType)
	base, args, _ := strings.Cut(t, "(")
	base = strings.TrimSpace(base)

	switch {
	case base == "INTEGER" || base == "REAL" || base == "DOUBLE" || base == "NUMERIC" || base == "DECIMAL":
		if base == "NUMERIC" || base == "DECIMAL" {
			if p, s, ok := parsePrecisionScale(args); ok {
				return fieldkind.String, p + s + 1
			}
		}
		return fieldkind.Number, 0
	case base == "TEXT" || strings.HasPrefix(base, "VARCHAR") || base == "CHAR":
		return fieldkind.String, parseLength(args)
	case base == "BLOB":
		return fieldkind.Blob, 0
	case base == "DATETIME" || base == "DATE":
		return fieldkind.Datetime, 0
	case base == "BOOLEAN" || base == "BOOL":
		return fieldkind.Boolean, 0
	default:
		return fieldkind.String, 0
	}
}

func parseLength(args string) int {
	args = strings.TrimSuffix(args, ")")
	n, err := strconv.Atoi(strings.TrimSpace(args))
	if err != nil {
		return 0
	}
	return n
}

func parsePrecisionScale(args string) (int, int, bool) {
	args = strings.TrimSuffix(args, ")")
	parts := strings.Split(args, ",")
	if len(parts) != 2 {
		return 0, 0, false
	}
	p, err1 := strconv.Atoi(strings.TrimSpace(parts[0]))
	s, err2 := strconv.Atoi(strings.TrimSpace(parts[1]))
	if err1 != nil || err2 != nil {
		return 0, 0, false
	}
	return p, s, true
}

func (d *SQLite) AssembleSelect(req SelectSQL) string {
	var b strings.Builder
	b.WriteString("SELECT ")
	b.WriteString(strings.Join(req.Columns, ", "))
	b.WriteString(" FROM ")
	b.WriteString(d.PrintIdentifierTable(req.Table))
	if req.Where != "" {
		b.WriteString(" WHERE ")
		b.WriteString(req.Where)
	}
	if len(req.GroupBy) > 0 {
		b.WriteString(" GROUP BY ")
		b.WriteString(strings.Join(req.GroupBy, ", "))
	}
	if req.OrderBy != "" {
		b.WriteString(" ORDER BY ")
		b.WriteString(req.OrderBy)
	}
	if req.HasLimit {
		fmt.Fprintf(&b, " LIMIT %d", req.Limit)
	}
	if req.HasOffset {
		fmt.Fprintf(&b, " OFFSET %d", req.Offset)
	}
	return b.String()
}
