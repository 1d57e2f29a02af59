package stringcodec

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tablegate/tablegate/internal/contenttype"
	"github.com/tablegate/tablegate/internal/fieldkind"
)

func TestEncodeJSON(t *testing.T) {
	out, err := Encode("123.45", fieldkind.Number, contenttype.JSON)
	require.NoError(t, err)
	assert.Equal(t, "123.45", out)

	out, err = Encode(`hello "world"`, fieldkind.String, contenttype.JSON)
	require.NoError(t, err)
	assert.Equal(t, `"hello \"world\""`, out)

	out, err = Encode(Null, fieldkind.String, contenttype.JSON)
	require.NoError(t, err)
	assert.Equal(t, "null", out)

	out, err = Encode("true", fieldkind.Boolean, contenttype.JSON)
	require.NoError(t, err)
	assert.Equal(t, "true", out)
}

func TestDecodeJSON(t *testing.T) {
	out, err := Decode(`"hello \"world\""`, fieldkind.String, contenttype.JSON)
	require.NoError(t, err)
	assert.Equal(t, `hello "world"`, out)

	out, err = Decode("null", fieldkind.String, contenttype.JSON)
	require.NoError(t, err)
	assert.Equal(t, Null, out)
}

func TestEncodeCSV(t *testing.T) {
	out, err := Encode("plain", fieldkind.String, contenttype.CSV)
	require.NoError(t, err)
	assert.Equal(t, "plain", out)

	out, err = Encode(`has,comma and "quote"`, fieldkind.String, contenttype.CSV)
	require.NoError(t, err)
	assert.Equal(t, `"has,comma and ""quote"""`, out)

	out, err = Encode(Null, fieldkind.String, contenttype.CSV)
	require.NoError(t, err)
	assert.Equal(t, "null", out)
}

func TestEncodeURLEncode(t *testing.T) {
	out, err := Encode("a b&c", fieldkind.String, contenttype.URLEncode)
	require.NoError(t, err)
	assert.Equal(t, "a+b%26c", out)

	out, err = Decode("a+b%26c", fieldkind.String, contenttype.URLEncode)
	require.NoError(t, err)
	assert.Equal(t, "a b&c", out)
}

func TestEncodeHTML(t *testing.T) {
	out, err := Encode(`<a href="x">'&'</a>`, fieldkind.String, contenttype.HTML)
	require.NoError(t, err)
	assert.Equal(t, "&lt;a href=&quot;x&quot;&gt;&#39;&amp;&#39;&lt;/a&gt;", out)
}

func TestSplitByBrackets(t *testing.T) {
	parts := SplitByBrackets("(a)-and(b)", false, false, '(', ')')
	require.Len(t, parts, 2)
	assert.Equal(t, "a", parts[0].Text)
	assert.Equal(t, "b", parts[1].Text)

	withBetween := SplitByBrackets("(a)-and(b)", true, false, '(', ')')
	require.Len(t, withBetween, 3)
	assert.Equal(t, "a", withBetween[0].Text)
	assert.True(t, withBetween[0].Bracketed)
	assert.Equal(t, "-and", withBetween[1].Text)
	assert.False(t, withBetween[1].Bracketed)
	assert.Equal(t, "b", withBetween[2].Text)

	nested := SplitByBrackets("(a(b)c)", false, false, '(', ')')
	require.Len(t, nested, 1)
	assert.Equal(t, "a(b)c", nested[0].Text)

	trailing := SplitByBrackets("(a)-and(b", false, true, '(', ')')
	require.Len(t, trailing, 2)
	assert.Equal(t, "b", trailing[1].Text)
}

func TestSplitExcludingBrackets(t *testing.T) {
	parts := SplitExcludingBrackets("count(a,b),sum(c)", ',', '(', ')')
	require.Len(t, parts, 2)
	assert.Equal(t, "count(a,b)", parts[0])
	assert.Equal(t, "sum(c)", parts[1])
}
