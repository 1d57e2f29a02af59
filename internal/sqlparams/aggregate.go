package sqlparams

import (
	"fmt"
	"strings"

	"github.com/tablegate/tablegate/internal/stringcodec"
)

// AggregateItem is one `fn(field)` element of an oinosqlaggregate
// expression.
type AggregateItem struct {
	Fn    string
	Field string
}

// Aggregate is the full comma-separated list.
type Aggregate []AggregateItem

var aggregateFns = map[string]bool{
	"count": true, "sum": true, "avg": true, "min": true, "max": true,
}

// ParseAggregate parses "count(id),avg(salary)".
func ParseAggregate(s string) (Aggregate, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil, nil
	}
	rawItems := stringcodec.TrimmedNonEmpty(stringcodec.SplitExcludingBrackets(s, ',', '(', ')'))

	items := make(Aggregate, 0, len(rawItems))
	for _, raw := range rawItems {
		raw = strings.TrimSpace(raw)
		open := strings.IndexByte(raw, '(')
		if open < 0 || !strings.HasSuffix(raw, ")") {
			return nil, fmt.Errorf("sqlparams: malformed aggregate item %q", raw)
		}
		fn := strings.ToLower(strings.TrimSpace(raw[:open]))
		field := strings.TrimSpace(raw[open+1 : len(raw)-1])
		if !aggregateFns[fn] {
			return nil, fmt.Errorf("sqlparams: unknown aggregate function %q", fn)
		}
		if field == "" {
			return nil, fmt.Errorf("sqlparams: aggregate %q missing field", raw)
		}
		items = append(items, AggregateItem{Fn: fn, Field: field})
	}
	return items, nil
}

// FieldSet returns the set of field names the aggregate references, used
// by DataModel to decide which fields are "aggregated" vs "group-by".
func (a Aggregate) FieldSet() map[string]bool {
	set := make(map[string]bool, len(a))
	for _, item := range a {
		set[item.Field] = true
	}
	return set
}
