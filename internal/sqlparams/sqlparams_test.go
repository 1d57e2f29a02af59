package sqlparams

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeResolver struct {
	fields []string
	pks    []string
}

func (f fakeResolver) HasField(name string) bool {
	for _, n := range f.fields {
		if n == name {
			return true
		}
	}
	return false
}

func (f fakeResolver) QuoteIdentifier(name string) (string, error) { return `"` + name + `"`, nil }

func (f fakeResolver) PrintLiteral(name, text string) (string, error) {
	return "'" + text + "'", nil
}

func (f fakeResolver) PrimaryKeyNames() []string { return f.pks }
func (f fakeResolver) FieldNames() []string      { return f.fields }

func resolver() fakeResolver {
	return fakeResolver{fields: []string{"id", "name", "salary"}, pks: []string{"id"}}
}

func TestParseComparisonFilter(t *testing.T) {
	filter, err := ParseFilter("(name)-eq(Bob)")
	require.NoError(t, err)
	sql, err := filter.ToSQL(resolver())
	require.NoError(t, err)
	assert.Equal(t, `"name" = 'Bob'`, sql)
}

func TestParseAndFilter(t *testing.T) {
	filter, err := ParseFilter("((name)-eq(Bob))-and((salary)-gt(1000))")
	require.NoError(t, err)
	sql, err := filter.ToSQL(resolver())
	require.NoError(t, err)
	assert.Equal(t, `("name" = 'Bob' AND "salary" > '1000')`, sql)
}

func TestParseNotFilter(t *testing.T) {
	filter, err := ParseFilter("-not((name)-eq(Bob))")
	require.NoError(t, err)
	sql, err := filter.ToSQL(resolver())
	require.NoError(t, err)
	assert.Equal(t, `NOT ("name" = 'Bob')`, sql)
}

func TestParseFilterUnknownField(t *testing.T) {
	filter, err := ParseFilter("(bogus)-eq(x)")
	require.NoError(t, err)
	_, err = filter.ToSQL(resolver())
	assert.Error(t, err)
}

func TestParseFilterMalformed(t *testing.T) {
	_, err := ParseFilter("not even close")
	assert.Error(t, err)
}

func TestParseOrder(t *testing.T) {
	order, err := ParseOrder("name DESC, salary")
	require.NoError(t, err)
	sql, err := order.ToSQL(resolver())
	require.NoError(t, err)
	assert.Equal(t, `"name" DESC, "salary" ASC`, sql)
}

func TestParseLimitWithPage(t *testing.T) {
	limit, err := ParseLimit("25 page 3")
	require.NoError(t, err)
	offset, ok := limit.Offset()
	require.True(t, ok)
	assert.Equal(t, 25, limit.N)
	assert.Equal(t, 25*(3-1)+1, offset)
}

func TestParseAggregate(t *testing.T) {
	agg, err := ParseAggregate("count(id),avg(salary)")
	require.NoError(t, err)
	require.Len(t, agg, 2)
	assert.Equal(t, "count", agg[0].Fn)
	assert.Equal(t, "id", agg[0].Field)
}

func TestSelectResolveForcesPrimaryKey(t *testing.T) {
	sel := ParseSelect("name")
	fields := sel.Resolve(resolver())
	assert.Equal(t, []string{"name", "id"}, fields)
}

func TestSelectResolveEmptyMeansAll(t *testing.T) {
	sel := ParseSelect("")
	fields := sel.Resolve(resolver())
	assert.Equal(t, []string{"id", "name", "salary"}, fields)
}

func ExampleParseFilter() {
	filter, _ := ParseFilter("(id)-ge(10)")
	sql, _ := filter.ToSQL(resolver())
	fmt.Println(sql)
	// Output: "id" >= '10'
}
