package reqparser

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tablegate/tablegate/internal/contenttype"
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
	dm.AddField(field.New("active", fieldkind.Boolean, "BOOLEAN", 0, field.Flags{}, d))
	return dm
}

func TestParseJSONObject(t *testing.T) {
	body := []byte(`{"name":"Ada","active":true}`)
	res, err := Parse(body, contenttype.JSON, testModel(), Options{})
	require.NoError(t, err)
	require.Len(t, res.Rows, 1)

	row := res.Rows[0]
	assert.True(t, row[0].IsAbsent())
	name, _ := row[1].Native()
	assert.Equal(t, "Ada", name)
	active, _ := row[2].Native()
	assert.Equal(t, true, active)
}

func TestParseJSONArray(t *testing.T) {
	body := []byte(`[{"name":"Ada"},{"name":"Bob"}]`)
	res, err := Parse(body, contenttype.JSON, testModel(), Options{})
	require.NoError(t, err)
	require.Len(t, res.Rows, 2)
}

func TestParseJSONNullField(t *testing.T) {
	body := []byte(`{"name":null}`)
	res, err := Parse(body, contenttype.JSON, testModel(), Options{})
	require.NoError(t, err)
	require.Len(t, res.Rows, 1)
	assert.True(t, res.Rows[0][1].IsNull())
}

func TestParseCSV(t *testing.T) {
	body := []byte("name,active\nAda,true\nBob,false\n")
	res, err := Parse(body, contenttype.CSV, testModel(), Options{})
	require.NoError(t, err)
	require.Len(t, res.Rows, 2)
	name, _ := res.Rows[0][1].Native()
	assert.Equal(t, "Ada", name)
}

func TestParseCSVQuotedCommaAndEscapedQuote(t *testing.T) {
	body := []byte("name,active\n\"Smith, Ada\"\"X\"\"\",true\n")
	res, err := Parse(body, contenttype.CSV, testModel(), Options{})
	require.NoError(t, err)
	require.Len(t, res.Rows, 1)
	name, _ := res.Rows[0][1].Native()
	assert.Equal(t, `Smith, Ada"X"`, name)
}

func TestParseCSVUnquotedNullIsSQLNull(t *testing.T) {
	body := []byte("name,active\nnull,true\n")
	res, err := Parse(body, contenttype.CSV, testModel(), Options{})
	require.NoError(t, err)
	require.Len(t, res.Rows, 1)
	assert.True(t, res.Rows[0][1].IsNull())
}

func TestParseCSVQuotedNullIsLiteralString(t *testing.T) {
	body := []byte("name,active\n\"null\",true\n")
	res, err := Parse(body, contenttype.CSV, testModel(), Options{})
	require.NoError(t, err)
	require.Len(t, res.Rows, 1)
	assert.False(t, res.Rows[0][1].IsNull())
	name, _ := res.Rows[0][1].Native()
	assert.Equal(t, "null", name)
}

func TestParseCSVQuotedEmptyIsEmptyString(t *testing.T) {
	body := []byte("name,active\n\"\",true\n")
	res, err := Parse(body, contenttype.CSV, testModel(), Options{})
	require.NoError(t, err)
	require.Len(t, res.Rows, 1)
	assert.False(t, res.Rows[0][1].IsAbsent())
	name, _ := res.Rows[0][1].Native()
	assert.Equal(t, "", name)
}

func TestParseURLEncoded(t *testing.T) {
	body := []byte("name=Ada&active=true")
	res, err := Parse(body, contenttype.URLEncode, testModel(), Options{})
	require.NoError(t, err)
	require.Len(t, res.Rows, 1)
	name, _ := res.Rows[0][1].Native()
	assert.Equal(t, "Ada", name)
}

func TestParseFormData(t *testing.T) {
	boundary := "XYZ"
	body := []byte("--XYZ\r\nContent-Disposition: form-data; name=\"name\"\r\n\r\nAda\r\n--XYZ--\r\n")
	res, err := Parse(body, contenttype.FormData, testModel(), Options{Boundary: boundary})
	require.NoError(t, err)
	require.Len(t, res.Rows, 1)
	name, _ := res.Rows[0][1].Native()
	assert.Equal(t, "Ada", name)
}

func TestParseHTMLRejected(t *testing.T) {
	_, err := Parse([]byte("<p>x</p>"), contenttype.HTML, testModel(), Options{})
	assert.Error(t, err)
}

func TestEmptyRowSkippedWithWarning(t *testing.T) {
	body := []byte(`{"unknown_field":"x"}`)
	res, err := Parse(body, contenttype.JSON, testModel(), Options{})
	require.NoError(t, err)
	assert.Empty(t, res.Rows)
	require.Len(t, res.Warnings, 1)
}
