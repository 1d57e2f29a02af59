package openapi

import (
	"fmt"
	"strings"

	"github.com/getkin/kin-openapi/openapi3"

	"github.com/tablegate/tablegate/internal/datamodel"
)

// ResourceSpec names one mounted resource and the model behind it, the
// inputs GenerateSpec needs to describe it.
type ResourceSpec struct {
	Name  string
	Model *datamodel.DataModel
}

// GenerateSpec builds an OpenAPI 3.1 document for every resource the
// gateway currently serves under baseURL, matching the flat
// /{resource} and /{resource}/{id} routes internal/handler mounts.
func GenerateSpec(title, baseURL string, resources []ResourceSpec) *openapi3.T {
	doc := &openapi3.T{
		OpenAPI: "3.1.0",
		Info: &openapi3.Info{
			Title:       title,
			Description: "Schema-driven REST API generated from the live database.",
			Version:     "1.0.0",
		},
		Servers: openapi3.Servers{{URL: baseURL}},
	}

	components := openapi3.NewComponents()
	components.Schemas = openapi3.Schemas{}
	doc.Components = &components
	doc.Components.Schemas["ErrorResponse"] = errorResponseSchema()

	doc.Paths = openapi3.NewPaths()
	for _, res := range resources {
		addResourcePaths(doc, res)
	}
	return doc
}

func errorResponseSchema() *openapi3.SchemaRef {
	return &openapi3.SchemaRef{
		Value: &openapi3.Schema{
			Type: &openapi3.Types{"object"},
			Properties: openapi3.Schemas{
				"success":       &openapi3.SchemaRef{Value: &openapi3.Schema{Type: &openapi3.Types{"boolean"}}},
				"statusCode":    &openapi3.SchemaRef{Value: &openapi3.Schema{Type: &openapi3.Types{"integer"}, Format: "int32"}},
				"statusMessage": &openapi3.SchemaRef{Value: &openapi3.Schema{Type: &openapi3.Types{"string"}}},
				"messages": &openapi3.SchemaRef{Value: &openapi3.Schema{
					Type:  &openapi3.Types{"array"},
					Items: &openapi3.SchemaRef{Value: &openapi3.Schema{Type: &openapi3.Types{"string"}}},
				}},
			},
		},
	}
}

func addResourcePaths(doc *openapi3.T, res ResourceSpec) {
	schemaName := sanitizeSchemaName(res.Name)
	doc.Components.Schemas[schemaName] = columnsToSchema(res.Model)
	doc.Components.Schemas[schemaName+"Create"] = columnsToCreateSchema(res.Model)
	schemaRef := "#/components/schemas/" + schemaName
	createRef := "#/components/schemas/" + schemaName + "Create"

	collectionPath := "/" + res.Name
	itemPath := "/" + res.Name + "/{id}"
	tag := res.Name

	doc.Paths.Set(collectionPath, &openapi3.PathItem{
		Get:  listOperation(tag, res.Name, schemaRef),
		Post: createOperation(tag, res.Name, createRef, schemaRef),
		Put:  batchUpdateOperation(tag, res.Name, schemaRef),
	})
	doc.Paths.Set(itemPath, &openapi3.PathItem{
		Get:    getOperation(tag, res.Name, schemaRef),
		Put:    updateOperation(tag, res.Name, schemaRef),
		Delete: deleteOperation(tag, res.Name),
	})
}

func columnsToSchema(m *datamodel.DataModel) *openapi3.SchemaRef {
	props := openapi3.Schemas{}
	for _, f := range m.Fields() {
		mapping := MapFieldType(f.SQLType, f.Kind)
		s := &openapi3.Schema{Type: &openapi3.Types{mapping.Type}}
		if mapping.Format != "" {
			s.Format = mapping.Format
		}
		if f.MaxLength > 0 {
			ml := uint64(f.MaxLength)
			s.MaxLength = &ml
		}
		if f.Flags.AutoInc {
			s.ReadOnly = true
		}
		props[f.Name] = &openapi3.SchemaRef{Value: s}
	}
	return &openapi3.SchemaRef{Value: &openapi3.Schema{Type: &openapi3.Types{"object"}, Properties: props}}
}

// columnsToCreateSchema drops auto-increment columns and marks every
// NOT NULL, non-primary-key column required, since a create request
// supplies its own values for everything the database won't generate.
func columnsToCreateSchema(m *datamodel.DataModel) *openapi3.SchemaRef {
	props := openapi3.Schemas{}
	var required []string
	for _, f := range m.Fields() {
		if f.Flags.AutoInc {
			continue
		}
		mapping := MapFieldType(f.SQLType, f.Kind)
		s := &openapi3.Schema{Type: &openapi3.Types{mapping.Type}}
		if mapping.Format != "" {
			s.Format = mapping.Format
		}
		if f.MaxLength > 0 {
			ml := uint64(f.MaxLength)
			s.MaxLength = &ml
		}
		props[f.Name] = &openapi3.SchemaRef{Value: s}
		if f.Flags.NotNull && !f.Flags.PrimaryKey {
			required = append(required, f.Name)
		}
	}
	return &openapi3.SchemaRef{Value: &openapi3.Schema{Type: &openapi3.Types{"object"}, Properties: props, Required: required}}
}

func listOperation(tag, name, schemaRef string) *openapi3.Operation {
	params := openapi3.Parameters{
		queryParam("oinosqlfilter", "Filter expression, e.g. \"(age)-gt(21)\"."),
		queryParam("oinosqlorder", "Sort order, e.g. \"name ASC\"."),
		queryParam("oinosqllimit", "Maximum rows and optional page, e.g. \"20 page 3\"."),
		queryParam("oinosqlaggregate", "Aggregate expression, e.g. \"sum(amount)\"."),
		queryParam("oinosqlselect", "Comma-separated list of fields to return."),
		boolQueryParam("oinoincludecount", "Include the filter's total matching row count in the response."),
	}
	return &openapi3.Operation{
		Tags:        []string{tag},
		Summary:     fmt.Sprintf("List %s rows", name),
		OperationID: "list_" + name,
		Parameters:  params,
		Responses: newResponses("200", fmt.Sprintf("Rows from %s", name), &openapi3.SchemaRef{
			Value: &openapi3.Schema{Type: &openapi3.Types{"array"}, Items: openapi3.NewSchemaRef(schemaRef, nil)},
		}),
	}
}

func getOperation(tag, name, schemaRef string) *openapi3.Operation {
	return &openapi3.Operation{
		Tags:        []string{tag},
		Summary:     fmt.Sprintf("Get a %s row by id", name),
		OperationID: "get_" + name,
		Parameters:  []*openapi3.ParameterRef{idPathParam()},
		Responses:   newResponses("200", fmt.Sprintf("The matching %s row", name), openapi3.NewSchemaRef(schemaRef, nil)),
	}
}

func createOperation(tag, name, createRef, schemaRef string) *openapi3.Operation {
	return &openapi3.Operation{
		Tags:        []string{tag},
		Summary:     fmt.Sprintf("Insert %s row(s)", name),
		Description: "Accepts a single object or an array for a batch insert.",
		OperationID: "create_" + name,
		RequestBody: jsonBody(fmt.Sprintf("Row(s) to insert into %s", name), createRef),
		Responses:   newResponses("201", fmt.Sprintf("Inserted %s row(s)", name), openapi3.NewSchemaRef(schemaRef, nil)),
	}
}

func updateOperation(tag, name, schemaRef string) *openapi3.Operation {
	return &openapi3.Operation{
		Tags:        []string{tag},
		Summary:     fmt.Sprintf("Update a %s row by id", name),
		OperationID: "update_" + name,
		Parameters:  []*openapi3.ParameterRef{idPathParam()},
		RequestBody: jsonBody(fmt.Sprintf("Fields to update on the %s row", name), schemaRef),
		Responses:   newResponses("200", fmt.Sprintf("Updated %s row", name), openapi3.NewSchemaRef(schemaRef, nil)),
	}
}

func batchUpdateOperation(tag, name, schemaRef string) *openapi3.Operation {
	return &openapi3.Operation{
		Tags:        []string{tag},
		Summary:     fmt.Sprintf("Update %s row(s) by their own keys", name),
		Description: "Each row in the array body identifies itself by primary key; no id path segment is used.",
		OperationID: "batch_update_" + name,
		Parameters: openapi3.Parameters{
			boolQueryParam("continue", "Apply every row independently; a failed row doesn't stop the rest."),
			boolQueryParam("rollback", "Send every row as one concatenated statement; a row that fails validation rejects the whole batch before anything runs."),
		},
		RequestBody: jsonBody(fmt.Sprintf("Rows to update in %s", name), schemaRef),
		Responses:   newResponses("200", fmt.Sprintf("Updated %s rows", name), &openapi3.SchemaRef{Value: &openapi3.Schema{Type: &openapi3.Types{"array"}, Items: openapi3.NewSchemaRef(schemaRef, nil)}}),
	}
}

func deleteOperation(tag, name string) *openapi3.Operation {
	return &openapi3.Operation{
		Tags:        []string{tag},
		Summary:     fmt.Sprintf("Delete a %s row by id", name),
		OperationID: "delete_" + name,
		Parameters:  []*openapi3.ParameterRef{idPathParam()},
		Responses:   newResponses("200", "Deletion acknowledged", nil),
	}
}

func jsonBody(description, schemaRef string) *openapi3.RequestBodyRef {
	return &openapi3.RequestBodyRef{
		Value: &openapi3.RequestBody{
			Description: description,
			Required:    true,
			Content: openapi3.Content{
				"application/json": &openapi3.MediaType{
					Schema: &openapi3.SchemaRef{
						Value: &openapi3.Schema{
							OneOf: openapi3.SchemaRefs{
								openapi3.NewSchemaRef(schemaRef, nil),
								{Value: &openapi3.Schema{Type: &openapi3.Types{"array"}, Items: openapi3.NewSchemaRef(schemaRef, nil)}},
							},
						},
					},
				},
			},
		},
	}
}

func idPathParam() *openapi3.ParameterRef {
	p := openapi3.NewPathParameter("id")
	p.Description = "OinoId token identifying the row."
	p.Schema = &openapi3.SchemaRef{Value: openapi3.NewStringSchema()}
	return &openapi3.ParameterRef{Value: p}
}

func queryParam(name, description string) *openapi3.ParameterRef {
	return &openapi3.ParameterRef{Value: openapi3.NewQueryParameter(name).
		WithDescription(description).
		WithSchema(openapi3.NewStringSchema())}
}

func boolQueryParam(name, description string) *openapi3.ParameterRef {
	p := openapi3.NewQueryParameter(name)
	p.Description = description
	p.Schema = &openapi3.SchemaRef{Value: &openapi3.Schema{Type: &openapi3.Types{"boolean"}}}
	return &openapi3.ParameterRef{Value: p}
}

func newResponses(statusCode, description string, schema *openapi3.SchemaRef) *openapi3.Responses {
	responses := openapi3.NewResponses()
	desc := description
	content := openapi3.Content{}
	if schema != nil {
		content = openapi3.NewContentWithJSONSchemaRef(schema)
	}
	responses.Set(statusCode, &openapi3.ResponseRef{Value: &openapi3.Response{Description: &desc, Content: content}})

	errorRef := openapi3.NewSchemaRef("#/components/schemas/ErrorResponse", nil)
	for code, text := range map[string]string{
		"400": "Malformed request",
		"404": "Unknown resource",
		"405": "Row failed validation",
		"500": "Backend error",
	} {
		d := text
		responses.Set(code, &openapi3.ResponseRef{Value: &openapi3.Response{Description: &d, Content: openapi3.NewContentWithJSONSchemaRef(errorRef)}})
	}
	return responses
}

func sanitizeSchemaName(name string) string {
	s := capitalize(name)
	var b strings.Builder
	for _, r := range s {
		if (r >= 'a' && r <= 'z') || (r >= 'A' && r <= 'Z') || (r >= '0' && r <= '9') || r == '_' {
			b.WriteRune(r)
		} else {
			b.WriteRune('_')
		}
	}
	return b.String()
}

func capitalize(s string) string {
	if s == "" {
		return s
	}
	return strings.ToUpper(s[:1]) + s[1:]
}
