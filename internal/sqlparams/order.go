package sqlparams

import (
	"fmt"
	"strings"

	"github.com/tablegate/tablegate/internal/stringcodec"
)

// OrderItem is one comma-separated element of an oinosqlorder
// expression: a field name and whether it sorts descending.
type OrderItem struct {
	Field string
	Desc  bool
}

// Order is the full, comma-separated list.
type Order []OrderItem

// ParseOrder parses `field`, `field ASC|DESC`, or `field +|-` items.
func ParseOrder(s string) (Order, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil, nil
	}
	rawItems := stringcodec.TrimmedNonEmpty(stringcodec.SplitExcludingBrackets(s, ',', '(', ')'))

	items := make(Order, 0, len(rawItems))
	for _, raw := range rawItems {
		raw = strings.TrimSpace(raw)
		fields := strings.Fields(raw)
		switch len(fields) {
		case 1:
			name := fields[0]
			desc := false
			if strings.HasSuffix(name, "+") {
				name = strings.TrimSuffix(name, "+")
			} else if strings.HasSuffix(name, "-") {
				name = strings.TrimSuffix(name, "-")
				desc = true
			}
			items = append(items, OrderItem{Field: name, Desc: desc})
		case 2:
			desc, err := parseDirection(fields[1])
			if err != nil {
				return nil, fmt.Errorf("sqlparams: order item %q: %w", raw, err)
			}
			items = append(items, OrderItem{Field: fields[0], Desc: desc})
		default:
			return nil, fmt.Errorf("sqlparams: malformed order item %q", raw)
		}
	}
	return items, nil
}

func parseDirection(token string) (bool, error) {
	switch strings.ToUpper(token) {
	case "ASC", "+":
		return false, nil
	case "DESC", "-":
		return true, nil
	default:
		return false, fmt.Errorf("unknown sort direction %q", token)
	}
}

// ToSQL renders "col1 ASC, col2 DESC, ...".
func (o Order) ToSQL(r Resolver) (string, error) {
	if len(o) == 0 {
		return "", nil
	}
	parts := make([]string, len(o))
	for i, item := range o {
		if !r.HasField(item.Field) {
			return "", fmt.Errorf("sqlparams: order references unknown field %q", item.Field)
		}
		ident, err := r.QuoteIdentifier(item.Field)
		if err != nil {
			return "", err
		}
		dir := "ASC"
		if item.Desc {
			dir = "DESC"
		}
		parts[i] = ident + " " + dir
	}
	return strings.Join(parts, ", "), nil
}
