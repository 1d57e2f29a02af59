package api_test

import (
	"context"
	"database/sql"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tablegate/tablegate/internal/api"
	"github.com/tablegate/tablegate/internal/contenttype"
	"github.com/tablegate/tablegate/internal/datamodel"
	"github.com/tablegate/tablegate/internal/dialect"
)

// newTestModel creates a fresh on-disk SQLite database with one table,
// introspects it, and returns an Api bound to it. A file (rather than
// ":memory:") is used so the CREATE TABLE connection and the dialect's
// own pool see the same database.
func newTestModel(t *testing.T) (*api.Api, *dialect.SQLite) {
	t.Helper()
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "test.db")

	setup, err := sql.Open("sqlite", path)
	require.NoError(t, err)
	_, err = setup.Exec(`CREATE TABLE employees (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		name TEXT NOT NULL,
		salary REAL
	)`)
	require.NoError(t, err)
	require.NoError(t, setup.Close())

	d := dialect.NewSQLite(path)
	require.NoError(t, d.Connect(ctx))
	require.NoError(t, d.Validate(ctx))

	cols, err := d.IntrospectTable(ctx, "employees")
	require.NoError(t, err)
	model := datamodel.FromColumns("employees", d, cols)

	a := api.New(model, d, api.Config{TableName: "employees"})
	return a, d
}

func TestApiPostGetRoundtrip(t *testing.T) {
	a, _ := newTestModel(t)
	ctx := context.Background()

	post := a.Run(ctx, api.Request{
		Method:      "POST",
		Body:        []byte(`{"name":"Ada","salary":1000}`),
		ContentType: contenttype.JSON,
	})
	require.True(t, post.Success, "%+v", post.Messages)
	assert.Equal(t, 201, post.StatusCode)
	require.NotNil(t, post.ModelSet)

	json, err := post.ModelSet.WriteJSON(ctx)
	require.NoError(t, err)
	assert.Contains(t, json, `"name":"Ada"`)

	get := a.Run(ctx, api.Request{Method: "GET"})
	require.True(t, get.Success, "%+v", get.Messages)
	getJSON, err := get.ModelSet.WriteJSON(ctx)
	require.NoError(t, err)
	assert.Contains(t, getJSON, `"name":"Ada"`)
	assert.Contains(t, getJSON, `"_OINOID_":"1"`)
}

func TestApiPutUpdatesRow(t *testing.T) {
	a, _ := newTestModel(t)
	ctx := context.Background()

	post := a.Run(ctx, api.Request{
		Method:      "POST",
		Body:        []byte(`{"name":"Grace","salary":2000}`),
		ContentType: contenttype.JSON,
	})
	require.True(t, post.Success, "%+v", post.Messages)

	put := a.Run(ctx, api.Request{
		Method:      "PUT",
		RowID:       "1",
		Body:        []byte(`{"salary":3000}`),
		ContentType: contenttype.JSON,
	})
	require.True(t, put.Success, "%+v", put.Messages)
	assert.Equal(t, 200, put.StatusCode)

	get := a.Run(ctx, api.Request{Method: "GET", RowID: "1"})
	require.True(t, get.Success)
	getJSON, err := get.ModelSet.WriteJSON(ctx)
	require.NoError(t, err)
	assert.Contains(t, getJSON, `"salary":3000`)
}

func TestApiDeleteRemovesRow(t *testing.T) {
	a, _ := newTestModel(t)
	ctx := context.Background()

	post := a.Run(ctx, api.Request{
		Method:      "POST",
		Body:        []byte(`{"name":"Hedy","salary":1500}`),
		ContentType: contenttype.JSON,
	})
	require.True(t, post.Success, "%+v", post.Messages)

	del := a.Run(ctx, api.Request{Method: "DELETE", RowID: "1"})
	require.True(t, del.Success, "%+v", del.Messages)

	get := a.Run(ctx, api.Request{Method: "GET", RowID: "1"})
	require.True(t, get.Success)
	getJSON, err := get.ModelSet.WriteJSON(ctx)
	require.NoError(t, err)
	assert.Equal(t, "[]", getJSON)
}

func TestApiPostRejectsId(t *testing.T) {
	a, _ := newTestModel(t)
	res := a.Run(context.Background(), api.Request{
		Method:      "POST",
		RowID:       "1",
		Body:        []byte(`{"name":"x"}`),
		ContentType: contenttype.JSON,
	})
	assert.False(t, res.Success)
	assert.Equal(t, 400, res.StatusCode)
}

func TestApiNotNullViolationFails(t *testing.T) {
	a, _ := newTestModel(t)
	res := a.Run(context.Background(), api.Request{
		Method:      "POST",
		Body:        []byte(`{"name":null,"salary":1}`),
		ContentType: contenttype.JSON,
	})
	assert.False(t, res.Success)
	assert.Equal(t, 405, res.StatusCode)
}

func TestApiUnsupportedMethod(t *testing.T) {
	a, _ := newTestModel(t)
	res := a.Run(context.Background(), api.Request{Method: "PATCH"})
	assert.False(t, res.Success)
	assert.Equal(t, 405, res.StatusCode)
}

func TestApiBatchContinueReportsPerRowOutcome(t *testing.T) {
	a, _ := newTestModel(t)
	res := a.RunBatch(context.Background(), api.Request{
		Method:      "POST",
		Body:        []byte(`[{"name":"A","salary":1},{"name":null,"salary":2}]`),
		ContentType: contenttype.JSON,
	}, api.BatchContinue)
	require.True(t, res.Success, "%+v", res.Messages)
	require.NotNil(t, res.ModelSet)
	json, err := res.ModelSet.WriteJSON(context.Background())
	require.NoError(t, err)
	assert.Contains(t, json, `"name":"A"`)
	assert.NotContains(t, json, `"name":null`)
}

func TestApiGetIncludeCountReportsTotal(t *testing.T) {
	a, _ := newTestModel(t)
	ctx := context.Background()

	for _, name := range []string{"A", "B", "C"} {
		post := a.Run(ctx, api.Request{
			Method:      "POST",
			Body:        []byte(`{"name":"` + name + `","salary":1}`),
			ContentType: contenttype.JSON,
		})
		require.True(t, post.Success, "%+v", post.Messages)
	}

	get := a.Run(ctx, api.Request{Method: "GET", IncludeCount: true})
	require.True(t, get.Success, "%+v", get.Messages)
	assert.Equal(t, "3", get.Meta["total_count"])
	assert.NotEmpty(t, get.Meta["took_ms"])
}

func TestApiRunBatchUpdateMatchesRowsByOwnKey(t *testing.T) {
	a, _ := newTestModel(t)
	ctx := context.Background()

	for _, name := range []string{"A", "B"} {
		post := a.Run(ctx, api.Request{
			Method:      "POST",
			Body:        []byte(`{"name":"` + name + `","salary":1}`),
			ContentType: contenttype.JSON,
		})
		require.True(t, post.Success, "%+v", post.Messages)
	}

	res := a.RunBatchUpdate(ctx, api.Request{
		Method:      "PUT",
		Body:        []byte(`[{"id":1,"salary":100},{"id":2,"salary":200}]`),
		ContentType: contenttype.JSON,
	}, api.BatchHalt)
	require.True(t, res.Success, "%+v", res.Messages)

	get1 := a.Run(ctx, api.Request{Method: "GET", RowID: "1"})
	json1, err := get1.ModelSet.WriteJSON(ctx)
	require.NoError(t, err)
	assert.Contains(t, json1, `"salary":100`)

	get2 := a.Run(ctx, api.Request{Method: "GET", RowID: "2"})
	json2, err := get2.ModelSet.WriteJSON(ctx)
	require.NoError(t, err)
	assert.Contains(t, json2, `"salary":200`)
}

func TestApiRunBatchUpdateRejectsUrlId(t *testing.T) {
	a, _ := newTestModel(t)
	res := a.RunBatchUpdate(context.Background(), api.Request{
		Method: "PUT",
		RowID:  "1",
		Body:   []byte(`[{"id":1,"salary":1}]`),
	}, api.BatchHalt)
	assert.False(t, res.Success)
	assert.Equal(t, 400, res.StatusCode)
}
