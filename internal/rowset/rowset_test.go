package rowset

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tablegate/tablegate/internal/datamodel"
	"github.com/tablegate/tablegate/internal/dialect"
	"github.com/tablegate/tablegate/internal/field"
	"github.com/tablegate/tablegate/internal/fieldkind"
)

func testModel() *datamodel.DataModel {
	d := dialect.NewSQLite(":memory:")
	dm := datamodel.New("employees", d)
	dm.AddField(field.New("id", fieldkind.Number, "INTEGER", 0, field.Flags{PrimaryKey: true, AutoInc: true}, d))
	dm.AddField(field.New("name", fieldkind.String, "TEXT", 0, field.Flags{}, d))
	return dm
}

func TestWriteJSON(t *testing.T) {
	model := testModel()
	rows := []datamodel.Row{
		{field.ValueCell(int64(1)), field.ValueCell("Ada")},
		{field.ValueCell(int64(2)), field.NullCell()},
	}
	ms := New(model, NewMemoryDataSet(rows), false)
	out, err := ms.WriteJSON(context.Background())
	require.NoError(t, err)
	assert.Equal(t, `[{"_OINOID_":"1","id":1,"name":"Ada"},{"_OINOID_":"2","id":2,"name":null}]`, out)
}

func TestWriteCSV(t *testing.T) {
	model := testModel()
	rows := []datamodel.Row{
		{field.ValueCell(int64(1)), field.ValueCell("Ada")},
	}
	ms := New(model, NewMemoryDataSet(rows), false)
	out, err := ms.WriteCSV(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "_OINOID_,id,name\r\n1,1,Ada\r\n", out)
}

func TestWriteURLEncoded(t *testing.T) {
	model := testModel()
	rows := []datamodel.Row{
		{field.ValueCell(int64(1)), field.ValueCell("Ada Lovelace")},
	}
	ms := New(model, NewMemoryDataSet(rows), false)
	out, more, err := ms.WriteURLEncoded(context.Background())
	require.NoError(t, err)
	assert.False(t, more)
	assert.Equal(t, "_OINOID_=1&id=1&name=Ada+Lovelace", out)
}

func TestMemoryDataSetEmpty(t *testing.T) {
	ds := NewMemoryDataSet(nil)
	assert.True(t, ds.IsEmpty())
	has, err := ds.Next(context.Background())
	require.NoError(t, err)
	assert.False(t, has)
	assert.True(t, ds.IsEOF())
}
