// Package openapi renders a live DataModel into an OpenAPI 3.1 document
// describing the REST surface the gateway actually serves for it.
package openapi

import (
	"strings"

	"github.com/tablegate/tablegate/internal/fieldkind"
)

// TypeMapping is an OpenAPI type/format pair.
type TypeMapping struct {
	Type   string
	Format string
}

// dbTypeToOpenAPI maps common SQL column type names to OpenAPI types,
// refining the coarser fieldkind.Kind mapping when the dialect's own
// type tag is recognized.
var dbTypeToOpenAPI = map[string]TypeMapping{
	"int":       {"integer", "int32"},
	"int2":      {"integer", "int32"},
	"int4":      {"integer", "int32"},
	"int8":      {"integer", "int64"},
	"integer":   {"integer", "int32"},
	"bigint":    {"integer", "int64"},
	"smallint":  {"integer", "int32"},
	"tinyint":   {"integer", "int32"},
	"serial":    {"integer", "int32"},
	"bigserial": {"integer", "int64"},

	"float":            {"number", "float"},
	"float4":           {"number", "float"},
	"float8":           {"number", "double"},
	"double":           {"number", "double"},
	"double precision": {"number", "double"},
	"decimal":          {"number", "double"},
	"numeric":          {"number", "double"},
	"real":             {"number", "float"},
	"money":            {"number", "double"},

	"varchar":           {"string", ""},
	"char":              {"string", ""},
	"character":         {"string", ""},
	"character varying": {"string", ""},
	"text":              {"string", ""},
	"nvarchar":          {"string", ""},
	"nchar":             {"string", ""},
	"ntext":             {"string", ""},

	"date":                        {"string", "date"},
	"datetime":                    {"string", "date-time"},
	"datetime2":                   {"string", "date-time"},
	"datetimeoffset":              {"string", "date-time"},
	"timestamp":                   {"string", "date-time"},
	"timestamptz":                 {"string", "date-time"},
	"timestamp with time zone":    {"string", "date-time"},
	"timestamp without time zone": {"string", "date-time"},
	"smalldatetime":               {"string", "date-time"},

	"boolean": {"boolean", ""},
	"bool":    {"boolean", ""},
	"bit":     {"boolean", ""},

	"bytea":     {"string", "byte"},
	"binary":    {"string", "byte"},
	"varbinary": {"string", "byte"},
	"blob":      {"string", "byte"},
	"image":     {"string", "byte"},

	"uuid":             {"string", "uuid"},
	"uniqueidentifier": {"string", "uuid"},

	"json":  {"object", ""},
	"jsonb": {"object", ""},
}

// kindFallback maps a field's logical Kind to an OpenAPI type when its
// SQLType tag isn't in dbTypeToOpenAPI (an unfamiliar dialect type).
var kindFallback = map[fieldkind.Kind]TypeMapping{
	fieldkind.Boolean:  {"boolean", ""},
	fieldkind.Number:   {"number", "double"},
	fieldkind.String:   {"string", ""},
	fieldkind.Blob:     {"string", "byte"},
	fieldkind.Datetime: {"string", "date-time"},
}

// MapFieldType converts a column's dialect-reported SQL type to an
// OpenAPI type mapping, falling back to the field's logical Kind and
// finally to a bare string when neither is recognized.
func MapFieldType(sqlType string, kind fieldkind.Kind) TypeMapping {
	normalized := strings.ToLower(strings.TrimSpace(sqlType))
	if idx := strings.IndexByte(normalized, '('); idx >= 0 {
		normalized = normalized[:idx]
	}
	normalized = strings.TrimSpace(strings.TrimSuffix(normalized, " unsigned"))
	normalized = strings.TrimSuffix(normalized, "[]")

	if m, ok := dbTypeToOpenAPI[normalized]; ok {
		return m
	}
	if m, ok := kindFallback[kind]; ok {
		return m
	}
	return TypeMapping{"string", ""}
}
