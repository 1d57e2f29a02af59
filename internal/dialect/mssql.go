package dialect

import (
	"context"
	"fmt"
	"strings"

	_ "github.com/microsoft/go-mssqldb"

	"github.com/tablegate/tablegate/internal/fieldkind"
)

// MSSQL implements Dialect for SQL Server over microsoft/go-mssqldb.
// AssembleSelect uses TOP/OFFSET..FETCH instead of LIMIT, the one place
// the gateway's generic column-list assembly isn't enough on its own.
type MSSQL struct {
	conn
}

func NewMSSQL(dsn string) *MSSQL {
	return &MSSQL{conn: conn{
		driverName:    "sqlserver",
		dsn:           dsn,
		validateQuery: "SELECT count(*) FROM INFORMATION_SCHEMA.COLUMNS",
	}}
}

func (d *MSSQL) Engine() string { return "mssql" }

func (d *MSSQL) PrintIdentifierTable(name string) string  { return "[" + name + "]" }
func (d *MSSQL) PrintIdentifierColumn(name string) string { return "[" + name + "]" }
func (d *MSSQL) PrintString(text string) string           { return "'" + sqlStringEscape(text) + "'" }

func (d *MSSQL) PrintLiteral(kind fieldkind.Kind, sqlType string, maxLength int, isNull bool, native interface{}) (string, error) {
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
		return hexBlobLiteral("0x", "", b), nil
	case fieldkind.Datetime:
		text, err := datetimeText(native, "2006-01-02T15:04:05.9999999")
		if err != nil {
			return "", err
		}
		return d.PrintString(text), nil
	case fieldkind.String:
		s, ok := native.(string)
		if !ok {
			return "", fmt.Errorf("dialect: mssql: expected string, got %T", native)
		}
		if maxLength > 0 && len(s) > maxLength {
			return "", nil
		}
		return "N" + d.PrintString(s), nil
	default:
		return "", unsupportedKind("mssql", kind)
	}
}

func (d *MSSQL) ParseResultCell(raw interface{}, _ string, _ fieldkind.Kind) (interface{}, error) {
	return raw, nil
}

func (d *MSSQL) IntrospectTable(ctx context.Context, table string) ([]ColumnInfo, error) {
	query := fmt.Sprintf(`
		SELECT c.COLUMN_NAME, c.DATA_TYPE, COALESCE(c.CHARACTER_MAXIMUM_LENGTH, 0),
		       COALESCE(c.NUMERIC_PRECISION, 0), COALESCE(c.NUMERIC_SCALE, 0),
		       c.IS_NULLABLE,
		       COLUMNPROPERTY(OBJECT_ID(c.TABLE_NAME), c.COLUMN_NAME, 'IsIdentity') AS is_identity,
		       CASE WHEN EXISTS (
		         SELECT 1 FROM INFORMATION_SCHEMA.KEY_COLUMN_USAGE k
		         JOIN INFORMATION_SCHEMA.TABLE_CONSTRAINTS tc
		           ON tc.CONSTRAINT_NAME = k.CONSTRAINT_NAME AND tc.CONSTRAINT_TYPE = 'PRIMARY KEY'
		         WHERE k.TABLE_NAME = c.TABLE_NAME AND k.COLUMN_NAME = c.COLUMN_NAME
		       ) THEN 1 ELSE 0 END AS is_pk
		FROM INFORMATION_SCHEMA.COLUMNS c
		WHERE c.TABLE_NAME = %s
		ORDER BY c.ORDINAL_POSITION`, d.PrintString(table))

	rows, err := d.Query(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var cols []ColumnInfo
	for rows.Next() {
		var name, dataType, isNullable string
		var maxLen, precision, scale, isIdentity, isPK int
		if err := rows.Scan(&name, &dataType, &maxLen, &precision, &scale, &isNullable, &isIdentity, &isPK); err != nil {
			return nil, fmt.Errorf("dialect: mssql: introspect: %w", err)
		}
		kind, length := mapMSSQLType(dataType, maxLen, precision, scale)
		cols = append(cols, ColumnInfo{
			Name:       name,
			SQLType:    dataType,
			MaxLength:  length,
			Kind:       kind,
			PrimaryKey: isPK != 0,
			NotNull:    isNullable == "NO",
			AutoInc:    isIdentity != 0,
		})
	}
	return cols, nil
}

func mapMSSQLType(dataType string, maxLen, precision, scale int) (fieldkind.Kind, int) {
	t := strings.ToLower(dataType)
	switch {
	case t == "int" || t == "smallint" || t == "tinyint" || t == "bigint" || t == "float" || t == "real":
		return fieldkind.Number, 0
	case t == "decimal" || t == "numeric":
		return fieldkind.String, precision + scale + 1
	case t == "bit":
		return fieldkind.Boolean, 0
	case t == "char" || t == "varchar" || t == "nchar" || t == "nvarchar":
		return fieldkind.String, maxLen
	case t == "binary" || t == "varbinary" || t == "image":
		return fieldkind.Blob, 0
	case t == "date" || t == "datetime" || t == "datetime2" || t == "smalldatetime":
		return fieldkind.Datetime, 0
	default:
		return fieldkind.String, 0
	}
}

func (d *MSSQL) AssembleSelect(req SelectSQL) string {
	var b strings.Builder
	b.WriteString("SELECT ")
	if req.HasLimit && !req.HasOffset {
		fmt.Fprintf(&b, "TOP %d ", req.Limit)
	}
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
	} else if req.HasOffset {
		// OFFSET..FETCH requires an ORDER BY. req.Columns entries are full
		// "<expr> as [col]" projections, not bare identifiers, so none of
		// them parse as an ORDER BY item; order by a constant instead, which
		// SQL Server accepts as a valid but unordered ordering.
		b.WriteString(" ORDER BY (SELECT NULL)")
	}
	if req.HasOffset {
		fmt.Fprintf(&b, " OFFSET %d ROWS", req.Offset)
		if req.HasLimit {
			fmt.Fprintf(&b, " FETCH NEXT %d ROWS ONLY", req.Limit)
		}
	}
	return b.String()
}
