package sqlparams

import (
	"strings"

	"github.com/tablegate/tablegate/internal/stringcodec"
)

// Select is a comma-separated list of field names; empty means "all".
type Select []string

// ParseSelect parses an oinosqlselect expression.
func ParseSelect(s string) Select {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil
	}
	return Select(stringcodec.TrimmedNonEmpty(strings.Split(s, ",")))
}

// Resolve expands an empty Select into every model field, then forces in
// any primary-key field not already present (primary keys are always
// selected regardless of the requested projection).
func (sel Select) Resolve(r Resolver) []string {
	fields := []string(sel)
	if len(fields) == 0 {
		fields = append(fields, r.FieldNames()...)
	}
	present := make(map[string]bool, len(fields))
	for _, f := range fields {
		present[f] = true
	}
	for _, pk := range r.PrimaryKeyNames() {
		if !present[pk] {
			fields = append(fields, pk)
			present[pk] = true
		}
	}
	return fields
}
