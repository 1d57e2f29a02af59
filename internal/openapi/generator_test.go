package openapi_test

import (
	"context"
	"database/sql"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tablegate/tablegate/internal/datamodel"
	"github.com/tablegate/tablegate/internal/dialect"
	"github.com/tablegate/tablegate/internal/openapi"
)

func newTestResourceSpec(t *testing.T, name string) openapi.ResourceSpec {
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

	return openapi.ResourceSpec{Name: name, Model: model}
}

func TestGenerateSpecCoversFlatResourceRoutes(t *testing.T) {
	res := newTestResourceSpec(t, "employees")
	doc := openapi.GenerateSpec("test API", "http://localhost:8080/api/v1", []openapi.ResourceSpec{res})

	require.NotNil(t, doc.Paths)
	collection := doc.Paths.Find("/employees")
	require.NotNil(t, collection)
	assert.NotNil(t, collection.Get)
	assert.NotNil(t, collection.Post)
	assert.NotNil(t, collection.Put)

	item := doc.Paths.Find("/employees/{id}")
	require.NotNil(t, item)
	assert.NotNil(t, item.Get)
	assert.NotNil(t, item.Put)
	assert.NotNil(t, item.Delete)
}

func TestGenerateSpecBuildsComponentSchemas(t *testing.T) {
	res := newTestResourceSpec(t, "employees")
	doc := openapi.GenerateSpec("test API", "http://localhost:8080/api/v1", []openapi.ResourceSpec{res})

	schema, ok := doc.Components.Schemas["Employees"]
	require.True(t, ok, "expected a schema named Employees")
	_, hasName := schema.Value.Properties["name"]
	assert.True(t, hasName)

	createSchema, ok := doc.Components.Schemas["EmployeesCreate"]
	require.True(t, ok)
	_, hasID := createSchema.Value.Properties["id"]
	assert.False(t, hasID, "auto-increment primary key should be dropped from the create schema")
	assert.Contains(t, createSchema.Value.Required, "name")
}

func TestGenerateSpecOmitsUnmountedResources(t *testing.T) {
	doc := openapi.GenerateSpec("test API", "http://localhost:8080/api/v1", nil)
	assert.Nil(t, doc.Paths.Find("/employees"))
	_, ok := doc.Components.Schemas["ErrorResponse"]
	assert.True(t, ok)
}
