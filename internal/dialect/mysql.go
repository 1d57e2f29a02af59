package dialect

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	_ "github.com/go-sql-driver/mysql"

	"github.com/tablegate/tablegate/internal/fieldkind"
)

// MySQL implements Dialect for MariaDB and MySQL over go-sql-driver/mysql.
type MySQL struct {
	conn
	database string
}

func NewMySQL(dsn, database string) *MySQL {
	return &MySQL{
		conn: conn{
			driverName:    "mysql",
			dsn:           dsn,
			validateQuery: fmt.Sprintf("SELECT count(*) FROM information_schema.columns WHERE table_schema = '%s'", sqlStringEscape(database)),
		},
		database: database,
	}
}

func (d *MySQL) Engine() string { return "mysql" }

func (d *MySQL) PrintIdentifierTable(name string) string  { return "`" + name + "`" }
func (d *MySQL) PrintIdentifierColumn(name string) string { return "`" + name + "`" }
func (d *MySQL) PrintString(text string) string           { return "'" + sqlStringEscape(text) + "'" }

func (d *MySQL) PrintLiteral(kind fieldkind.Kind, sqlType string, maxLength int, isNull bool, native interface{}) (string, error) {
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
		return hexBlobLiteral("x'", "'", b), nil
	case fieldkind.Datetime:
		text, err := datetimeText(native, "2006-01-02 15:04:05.999999")
		if err != nil {
			return "", err
		}
		return d.PrintString(text), nil
	case fieldkind.String:
		s, ok := native.(string)
		if !ok {
			return "", fmt.Errorf("dialect: mysql: expected string, got %T", native)
		}
		if maxLength > 0 && len(s) > maxLength {
			return "", nil
		}
		return d.PrintString(s), nil
	default:
		return "", unsupportedKind("mysql", kind)
	}
}

func (d *MySQL) ParseResultCell(raw interface{}, _ string, kind fieldkind.Kind) (interface{}, error) {
	if kind == fieldkind.Boolean {
		switch v := raw.(type) {
		case []byte:
			return len(v) == 1 && v[0] != 0, nil
		case int64:
			return v != 0, nil
		}
	}
	return raw, nil
}

func (d *MySQL) IntrospectTable(ctx context.Context, table string) ([]ColumnInfo, error) {
	query := fmt.Sprintf(`
		SELECT column_name, data_type, COALESCE(character_maximum_length, 0),
		       COALESCE(numeric_precision, 0), COALESCE(numeric_scale, 0),
		       is_nullable, column_key, extra
		FROM information_schema.columns
		WHERE table_schema = %s AND table_name = %s
		ORDER BY ordinal_position`, d.PrintString(d.database), d.PrintString(table))

	rows, err := d.Query(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var cols []ColumnInfo
	for rows.Next() {
		var name, dataType, isNullable, columnKey, extra string
		var maxLen, precision, scale int
		if err := rows.Scan(&name, &dataType, &maxLen, &precision, &scale, &isNullable, &columnKey, &extra); err != nil {
			return nil, fmt.Errorf("dialect: mysql: introspect: %w", err)
		}
		kind, length := mapMySQLType(dataType, maxLen, precision, scale)
		cols = append(cols, ColumnInfo{
			Name:       name,
			SQLType:    dataType,
			MaxLength:  length,
			Kind:       kind,
			PrimaryKey: columnKey == "PRI",
			ForeignKey: columnKey == "MUL",
			NotNull:    isNullable == "NO",
			AutoInc:    strings.Contains(extra, "auto_increment"),
		})
	}
	return cols, nil
}

func mapMySQLType(dataType string, maxLen, precision, scale int) (fieldkind.Kind, int) {
	t := strings.ToLower(dataType)
	switch {
	case t == "int" || t == "smallint" || t == "tinyint" || t == "bigint" || t == "mediumint" || t == "float" || t == "double":
		return fieldkind.Number, 0
	case t == "decimal" || t == "numeric":
		return fieldkind.String, precision + scale + 1
	case t == "bit" && maxLen <= 1:
		return fieldkind.Boolean, 0
	case t == "char" || t == "varchar" || strings.HasSuffix(t, "text"):
		return fieldkind.String, maxLen
	case strings.HasSuffix(t, "blob") || t == "binary" || t == "varbinary":
		return fieldkind.Blob, 0
	case t == "date" || t == "datetime" || t == "timestamp":
		return fieldkind.Datetime, 0
	default:
		return fieldkind.String, 0
	}
}

func (d *MySQL) AssembleSelect(req SelectSQL) string {
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
