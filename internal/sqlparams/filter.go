package sqlparams

import (
	"fmt"
	"strings"

	"github.com/tablegate/tablegate/internal/stringcodec"
)

// Filter is the parsed tree of an oinosqlfilter expression. Three
// production rules, applied recursively: comparison, negation ("-not"),
// and conjunction ("-and"/"-or").
type Filter interface {
	ToSQL(r Resolver) (string, error)
}

// Comparison is `(field)-op(value)`, op one of lt/le/eq/ge/gt/like.
type Comparison struct {
	Field string
	Op    string
	Value string
}

var comparisonSQL = map[string]string{
	"lt":   "<",
	"le":   "<=",
	"eq":   "=",
	"ge":   ">=",
	"gt":   ">",
	"like": "LIKE",
}

func (c Comparison) ToSQL(r Resolver) (string, error) {
	if !r.HasField(c.Field) {
		return "", fmt.Errorf("sqlparams: filter references unknown field %q", c.Field)
	}
	opSQL, ok := comparisonSQL[c.Op]
	if !ok {
		return "", fmt.Errorf("sqlparams: unknown filter operator %q", c.Op)
	}
	ident, err := r.QuoteIdentifier(c.Field)
	if err != nil {
		return "", err
	}
	lit, err := r.PrintLiteral(c.Field, c.Value)
	if err != nil {
		return "", err
	}
	if lit == "" {
		return "", fmt.Errorf("sqlparams: filter value for %q could not be rendered as a literal", c.Field)
	}
	return ident + " " + opSQL + " " + lit, nil
}

// Not is `-not(filter)`.
type Not struct{ Inner Filter }

func (n Not) ToSQL(r Resolver) (string, error) {
	inner, err := n.Inner.ToSQL(r)
	if err != nil {
		return "", err
	}
	return "NOT (" + inner + ")", nil
}

// And/Or are `(left)-and(right)` / `(left)-or(right)`.
type And struct{ Left, Right Filter }
type Or struct{ Left, Right Filter }

func (a And) ToSQL(r Resolver) (string, error) { return combine(r, a.Left, a.Right, "AND") }
func (o Or) ToSQL(r Resolver) (string, error)   { return combine(r, o.Left, o.Right, "OR") }

func combine(r Resolver, left, right Filter, op string) (string, error) {
	l, err := left.ToSQL(r)
	if err != nil {
		return "", err
	}
	rr, err := right.ToSQL(r)
	if err != nil {
		return "", err
	}
	return "(" + l + " " + op + " " + rr + ")", nil
}

// ParseFilter parses an oinosqlfilter expression into a Filter tree.
func ParseFilter(s string) (Filter, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil, fmt.Errorf("sqlparams: empty filter expression")
	}

	if strings.HasPrefix(s, "-not(") && strings.HasSuffix(s, ")") {
		inner := s[len("-not(") : len(s)-1]
		if bracketsBalanced(inner) {
			innerFilter, err := ParseFilter(inner)
			if err != nil {
				return nil, err
			}
			return Not{Inner: innerFilter}, nil
		}
	}

	parts := stringcodec.SplitByBrackets(s, true, false, '(', ')')
	if len(parts) == 3 && parts[0].Bracketed && !parts[1].Bracketed && parts[2].Bracketed {
		left := parts[0].Text
		mid := strings.Trim(strings.TrimSpace(parts[1].Text), "-")
		right := parts[2].Text

		switch mid {
		case "and":
			l, err := ParseFilter(left)
			if err != nil {
				return nil, err
			}
			rr, err := ParseFilter(right)
			if err != nil {
				return nil, err
			}
			return And{Left: l, Right: rr}, nil
		case "or":
			l, err := ParseFilter(left)
			if err != nil {
				return nil, err
			}
			rr, err := ParseFilter(right)
			if err != nil {
				return nil, err
			}
			return Or{Left: l, Right: rr}, nil
		case "lt", "le", "eq", "ge", "gt", "like":
			return Comparison{Field: left, Op: mid, Value: right}, nil
		default:
			return nil, fmt.Errorf("sqlparams: unknown filter operator %q in %q", mid, s)
		}
	}

	return nil, fmt.Errorf("sqlparams: malformed filter expression %q", s)
}

func bracketsBalanced(s string) bool {
	depth := 0
	for i := 0; i < len(s); i++ {
		switch s[i] {
		case '(':
			depth++
		case ')':
			depth--
			if depth < 0 {
				return false
			}
		}
	}
	return depth == 0
}
