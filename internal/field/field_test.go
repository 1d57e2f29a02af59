package field

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tablegate/tablegate/internal/fieldkind"
)

type fakeDialect struct{}

func (fakeDialect) PrintLiteral(kind fieldkind.Kind, sqlType string, maxLength int, isNull bool, native interface{}) (string, error) {
	if isNull {
		return "NULL", nil
	}
	switch kind {
	case fieldkind.String:
		return "'" + native.(string) + "'", nil
	case fieldkind.Number:
		return "42", nil
	default:
		return "?", nil
	}
}

func TestSerializeDeserializeRoundtrip(t *testing.T) {
	f := New("name", fieldkind.String, "varchar", 0, Flags{}, fakeDialect{})

	text, state, err := f.SerializeCell(ValueCell("hello"))
	require.NoError(t, err)
	assert.Equal(t, StateValue, state)
	assert.Equal(t, "hello", text)

	c, err := f.DeserializeCell(text, state)
	require.NoError(t, err)
	v, ok := c.Native()
	require.True(t, ok)
	assert.Equal(t, "hello", v)
}

func TestSerializeAbsentAndNull(t *testing.T) {
	f := New("name", fieldkind.String, "varchar", 0, Flags{}, nil)

	_, state, err := f.SerializeCell(AbsentCell())
	require.NoError(t, err)
	assert.Equal(t, StateAbsent, state)

	_, state, err = f.SerializeCell(NullCell())
	require.NoError(t, err)
	assert.Equal(t, StateNull, state)
}

func TestNumberDeserialize(t *testing.T) {
	f := New("age", fieldkind.Number, "integer", 0, Flags{}, nil)

	c, err := f.DeserializeCell("42", StateValue)
	require.NoError(t, err)
	v, _ := c.Native()
	assert.Equal(t, int64(42), v)

	c, err = f.DeserializeCell("3.14", StateValue)
	require.NoError(t, err)
	v, _ = c.Native()
	assert.Equal(t, 3.14, v)
}

func TestBooleanDeserialize(t *testing.T) {
	f := New("active", fieldkind.Boolean, "bool", 0, Flags{}, nil)

	c, err := f.DeserializeCell("true", StateValue)
	require.NoError(t, err)
	v, _ := c.Native()
	assert.Equal(t, true, v)

	_, err = f.DeserializeCell("maybe", StateValue)
	assert.Error(t, err)
}

func TestDatetimeRoundtrip(t *testing.T) {
	f := New("created_at", fieldkind.Datetime, "timestamp", 0, Flags{}, nil)
	now := time.Date(2026, 7, 31, 12, 0, 0, 0, time.UTC)

	text, state, err := f.SerializeCell(ValueCell(now))
	require.NoError(t, err)
	require.Equal(t, StateValue, state)

	c, err := f.DeserializeCell(text, state)
	require.NoError(t, err)
	v, _ := c.Native()
	assert.True(t, now.Equal(v.(time.Time)))
}

func TestBlobRoundtrip(t *testing.T) {
	f := New("payload", fieldkind.Blob, "blob", 0, Flags{}, nil)

	text, state, err := f.SerializeCell(ValueCell([]byte("binary data")))
	require.NoError(t, err)

	c, err := f.DeserializeCell(text, state)
	require.NoError(t, err)
	v, _ := c.Native()
	assert.Equal(t, []byte("binary data"), v)
}

func TestPrintCellAsSQLRejectsAbsent(t *testing.T) {
	f := New("name", fieldkind.String, "varchar", 0, Flags{}, fakeDialect{})
	_, err := f.PrintCellAsSQL(AbsentCell())
	assert.Error(t, err)
}

func TestPrintCellAsSQLNull(t *testing.T) {
	f := New("name", fieldkind.String, "varchar", 0, Flags{}, fakeDialect{})
	out, err := f.PrintCellAsSQL(NullCell())
	require.NoError(t, err)
	assert.Equal(t, "NULL", out)
}

func TestPrintTextAsSQL(t *testing.T) {
	f := New("name", fieldkind.String, "varchar", 0, Flags{}, fakeDialect{})
	out, err := f.PrintTextAsSQL("hello", StateValue)
	require.NoError(t, err)
	assert.Equal(t, "'hello'", out)
}
