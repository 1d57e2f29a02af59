package dialect

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	_ "github.com/jackc/pgx/v5/stdlib"

	"github.com/tablegate/tablegate/internal/fieldkind"
)

// Postgres implements Dialect over jackc/pgx's database/sql adapter.
// Introspection follows the teacher's information_schema.columns query
// (internal/connector/postgres/introspect.go), generalized to the
// Field-kind vocabulary.
type Postgres struct {
	conn
}

func NewPostgres(dsn string) *Postgres {
	return &Postgres{conn: conn{
		driverName:    "pgx",
		dsn:           dsn,
		validateQuery: "SELECT count(*) FROM information_schema.columns WHERE table_schema = 'public'",
	}}
}

func (d *Postgres) Engine() string { return "postgres" }

func (d *Postgres) PrintIdentifierTable(name string) string {
	return `"` + strings.ToLower(name) + `"`
}
func (d *Postgres) PrintIdentifierColumn(name string) string { return `"` + name + `"` }
func (d *Postgres) PrintString(text string) string           { return "'" + sqlStringEscape(text) + "'" }

func (d *Postgres) PrintLiteral(kind fieldkind.Kind, sqlType string, maxLength int, isNull bool, native interface{}) (string, error) {
	if isNull {
		return "NULL", nil
	}
	switch kind {
	case fieldkind.Number:
		return numberLiteral(native)
	case fieldkind.Boolean:
		return boolLiteral(native, "true", "false")
	case fieldkind.Blob:
		b, err := blobBytes(native)
		if err != nil {
			return "", err
		}
		return hexBlobLiteral("'\\x", "'", b), nil
	case fieldkind.Datetime:
		text, err := datetimeText(native, "2006-01-02 15:04:05.999999999")
		if err != nil {
			return "", err
		}
		return d.PrintString(text), nil
	case fieldkind.String:
		s, ok := native.(string)
		if !ok {
			return "", fmt.Errorf("dialect: postgres: expected string, got %T", native)
		}
		if maxLength > 0 && len(s) > maxLength {
			return "", nil
		}
		return d.PrintString(s), nil
	default:
		return "", unsupportedKind("postgres", kind)
	}
}

func (d *Postgres) ParseResultCell(raw interface{}, _ string, _ fieldkind.Kind) (interface{}, error) {
	return raw, nil
}

func (d *Postgres) IntrospectTable(ctx context.Context, table string) ([]ColumnInfo, error) {
	query := fmt.Sprintf(`
		SELECT c.column_name, c.data_type, COALESCE(c.character_maximum_length, 0),
		       COALESCE(c.numeric_precision, 0), COALESCE(c.numeric_scale, 0),
		       c.is_nullable,
		       EXISTS (
		         SELECT 1 FROM information_schema.key_column_usage k
		         JOIN information_schema.table_constraints tc
		           ON tc.constraint_name = k.constraint_name AND tc.constraint_type = 'PRIMARY KEY'
		         WHERE k.table_name = c.table_name AND k.column_name = c.column_name
		       ) AS is_pk,
		       EXISTS (
		         SELECT 1 FROM information_schema.key_column_usage k
		         JOIN information_schema.table_constraints tc
		           ON tc.constraint_name = k.constraint_name AND tc.constraint_type = 'FOREIGN KEY'
		         WHERE k.table_name = c.table_name AND k.column_name = c.column_name
		       ) AS is_fk
		FROM information_schema.columns c
		WHERE c.table_name = %s
		ORDER BY c.ordinal_position`, d.PrintString(table))

	rows, err := d.Query(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var cols []ColumnInfo
	for rows.Next() {
		var name, dataType, isNullable string
		var maxLen, precision, scale int
		var isPK, isFK bool
		if err := rows.Scan(&name, &dataType, &maxLen, &precision, &scale, &isNullable, &isPK, &isFK); err != nil {
			return nil, fmt.Errorf("dialect: postgres: introspect: %w", err)
		}
		kind, length := mapPostgresType(dataType, maxLen, precision, scale)
		cols = append(cols, ColumnInfo{
			Name:       name,
			SQLType:    dataType,
			MaxLength:  length,
			Kind:       kind,
			PrimaryKey: isPK,
			ForeignKey: isFK,
			NotNull:    isNullable == "NO",
			AutoInc:    false,
		})
	}
	return cols, nil
}

func mapPostgresType(dataType string, maxLen, precision, scale int) (fieldkind.Kind, int) {
	t := strings.ToLower(dataType)
	switch {
	case t == "integer" || t == "smallint" || t == "bigint" || t == "real" || t == "double precision":
		return fieldkind.Number, 0
	case t == "numeric" || t == "decimal":
		return fieldkind.String, precision + scale + 1
	case strings.HasPrefix(t, "character") || t == "varchar" || t == "text":
		return fieldkind.String, maxLen
	case t == "bytea":
		return fieldkind.Blob, 0
	case t == "date" || t == "timestamp" || t == "timestamp without time zone" || t == "timestamp with time zone":
		return fieldkind.Datetime, 0
	case t == "boolean":
		return fieldkind.Boolean, 0
	default:
		return fieldkind.String, 0
	}
}

func (d *Postgres) AssembleSelect(req SelectSQL) string {
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
		b.WriteString(" LIMIT " + strconv.Itoa(req.Limit))
	}
	if req.HasOffset {
		b.WriteString(" OFFSET " + strconv.Itoa(req.Offset))
	}
	return b.String()
}
