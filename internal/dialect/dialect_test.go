package dialect

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tablegate/tablegate/internal/fieldkind"
)

func TestSQLitePrintLiteral(t *testing.T) {
	d := NewSQLite(":memory:")

	lit, err := d.PrintLiteral(fieldkind.String, "TEXT", 0, false, "O'Brien")
	require.NoError(t, err)
	assert.Equal(t, "'O''Brien'", lit)

	lit, err = d.PrintLiteral(fieldkind.Number, "INTEGER", 0, false, int64(42))
	require.NoError(t, err)
	assert.Equal(t, "42", lit)

	lit, err = d.PrintLiteral(fieldkind.Boolean, "BOOLEAN", 0, false, true)
	require.NoError(t, err)
	assert.Equal(t, "1", lit)

	lit, err = d.PrintLiteral(fieldkind.String, "TEXT", 0, true, nil)
	require.NoError(t, err)
	assert.Equal(t, "NULL", lit)
}

func TestSQLiteOversizedStringRejected(t *testing.T) {
	d := NewSQLite(":memory:")
	lit, err := d.PrintLiteral(fieldkind.String, "VARCHAR(3)", 3, false, "abcdef")
	require.NoError(t, err)
	assert.Equal(t, "", lit)
}

func TestMapSQLiteType(t *testing.T) {
	kind, _ := mapSQLiteType("INTEGER")
	assert.Equal(t, fieldkind.Number, kind)

	kind, length := mapSQLiteType("NUMERIC(10,2)")
	assert.Equal(t, fieldkind.String, kind)
	assert.Equal(t, 13, length)

	kind, _ = mapSQLiteType("BLOB")
	assert.Equal(t, fieldkind.Blob, kind)
}

func TestAssembleSelectSQLite(t *testing.T) {
	d := NewSQLite(":memory:")
	sql := d.AssembleSelect(SelectSQL{
		Table:    "employees",
		Columns:  []string{"[id]", "[name]"},
		Where:    "[id] > 1",
		OrderBy:  "[name] ASC",
		HasLimit: true,
		Limit:    10,
	})
	assert.Equal(t, "SELECT [id], [name] FROM [employees] WHERE [id] > 1 ORDER BY [name] ASC LIMIT 10", sql)
}

func TestAssembleSelectMSSQLUsesOffsetFetch(t *testing.T) {
	d := NewMSSQL("sqlserver://x")
	sql := d.AssembleSelect(SelectSQL{
		Table:     "employees",
		Columns:   []string{"[id]"},
		OrderBy:   "[id] ASC",
		HasLimit:  true,
		Limit:     10,
		HasOffset: true,
		Offset:    20,
	})
	assert.Contains(t, sql, "OFFSET 20 ROWS")
	assert.Contains(t, sql, "FETCH NEXT 10 ROWS ONLY")
}

func TestAssembleSelectMSSQLOrderlessOffsetFallsBackToConstant(t *testing.T) {
	d := NewMSSQL("sqlserver://x")
	sql := d.AssembleSelect(SelectSQL{
		Table:     "employees",
		Columns:   []string{"[id] as [id]", "[name] as [name]"},
		HasLimit:  true,
		Limit:     5,
		HasOffset: true,
		Offset:    10,
	})
	assert.Contains(t, sql, "ORDER BY (SELECT NULL)")
	assert.NotContains(t, sql, "[id] as [id] as")
	assert.Contains(t, sql, "OFFSET 10 ROWS")
	assert.Contains(t, sql, "FETCH NEXT 5 ROWS ONLY")
}
