package datamodel

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tablegate/tablegate/internal/dialect"
	"github.com/tablegate/tablegate/internal/field"
	"github.com/tablegate/tablegate/internal/fieldkind"
	"github.com/tablegate/tablegate/internal/sqlparams"
)

func employeesModel() *DataModel {
	d := dialect.NewSQLite(":memory:")
	dm := New("employees", d)
	dm.AddField(field.New("id", fieldkind.Number, "INTEGER", 0, field.Flags{PrimaryKey: true, AutoInc: true}, d))
	dm.AddField(field.New("name", fieldkind.String, "TEXT", 0, field.Flags{NotNull: true}, d))
	dm.AddField(field.New("salary", fieldkind.Number, "REAL", 0, field.Flags{}, d))
	return dm
}

func TestPrintSqlSelectNoParams(t *testing.T) {
	dm := employeesModel()
	sql, err := dm.PrintSqlSelect("", sqlparams.Params{})
	require.NoError(t, err)
	assert.Contains(t, sql, "SELECT")
	assert.Contains(t, sql, "FROM [employees]")
	assert.Contains(t, sql, `[id] as [id]`)
}

func TestPrintSqlSelectWithId(t *testing.T) {
	dm := employeesModel()
	sql, err := dm.PrintSqlSelect("42", sqlparams.Params{})
	require.NoError(t, err)
	assert.Contains(t, sql, "WHERE [id] = 42")
}

func TestPrintSqlSelectWithFilterAndOrder(t *testing.T) {
	dm := employeesModel()
	params, err := sqlparams.Parse("(salary)-gt(1000)", "name DESC", "10", "", "")
	require.NoError(t, err)
	sql, err := dm.PrintSqlSelect("", params)
	require.NoError(t, err)
	assert.Contains(t, sql, `[salary] > 1000`)
	assert.Contains(t, sql, "ORDER BY [name] DESC")
	assert.Contains(t, sql, "LIMIT 10")
}

func TestPrintSqlInsertSkipsAbsent(t *testing.T) {
	dm := employeesModel()
	row := Row{field.AbsentCell(), field.ValueCell("Ada"), field.AbsentCell()}
	sql, err := dm.PrintSqlInsert(row)
	require.NoError(t, err)
	assert.Equal(t, `INSERT INTO [employees] ([name]) VALUES ('Ada')`, sql)
}

func TestPrintSqlUpdateSkipsPrimaryKey(t *testing.T) {
	dm := employeesModel()
	row := Row{field.ValueCell(int64(42)), field.AbsentCell(), field.ValueCell(float64(9000))}
	sql, err := dm.PrintSqlUpdate("42", row)
	require.NoError(t, err)
	assert.Equal(t, `UPDATE [employees] SET [salary] = 9000 WHERE [id] = 42`, sql)
}

func TestPrintSqlUpdateRequiresId(t *testing.T) {
	dm := employeesModel()
	row := Row{field.ValueCell(int64(42)), field.AbsentCell(), field.ValueCell(float64(9000))}
	_, err := dm.PrintSqlUpdate("", row)
	assert.Error(t, err)
}

func TestPrintSqlDelete(t *testing.T) {
	dm := employeesModel()
	sql, err := dm.PrintSqlDelete("7")
	require.NoError(t, err)
	assert.Equal(t, `DELETE FROM [employees] WHERE [id] = 7`, sql)
}

func TestGetRowPrimaryKeyValues(t *testing.T) {
	dm := employeesModel()
	row := Row{field.ValueCell(int64(7)), field.ValueCell("Ada"), field.ValueCell(float64(1))}
	values, err := dm.GetRowPrimaryKeyValues(row, false)
	require.NoError(t, err)
	assert.Equal(t, []string{"7"}, values)
}

func TestIdConditionSegmentCountMismatch(t *testing.T) {
	dm := New("widgets", dialect.NewSQLite(":memory:"))
	dmd := dm.dialect
	dm.AddField(field.New("a", fieldkind.Number, "INTEGER", 0, field.Flags{PrimaryKey: true}, dmd))
	dm.AddField(field.New("b", fieldkind.Number, "INTEGER", 0, field.Flags{PrimaryKey: true}, dmd))
	_, err := dm.idCondition("1")
	assert.Error(t, err)
}
