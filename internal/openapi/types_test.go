package openapi

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/tablegate/tablegate/internal/fieldkind"
)

func TestMapFieldTypeKnownSQLTypes(t *testing.T) {
	tests := []struct {
		sqlType    string
		wantType   string
		wantFormat string
	}{
		{"int", "integer", "int32"},
		{"bigint", "integer", "int64"},
		{"varchar(255)", "string", ""},
		{"numeric(10,2)", "number", "double"},
		{"timestamp with time zone", "string", "date-time"},
		{"boolean", "boolean", ""},
		{"uuid", "string", "uuid"},
		{"jsonb", "object", ""},
		{"int unsigned", "integer", "int32"},
		{"text[]", "string", ""},
	}
	for _, tt := range tests {
		got := MapFieldType(tt.sqlType, fieldkind.String)
		assert.Equal(t, tt.wantType, got.Type, "type for %q", tt.sqlType)
		assert.Equal(t, tt.wantFormat, got.Format, "format for %q", tt.sqlType)
	}
}

func TestMapFieldTypeFallsBackToKind(t *testing.T) {
	got := MapFieldType("some_vendor_specific_type", fieldkind.Number)
	assert.Equal(t, "number", got.Type)

	got = MapFieldType("", fieldkind.Boolean)
	assert.Equal(t, "boolean", got.Type)
}
