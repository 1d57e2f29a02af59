package sqlparams

// Params bundles the five sublanguage expressions recognized from query
// parameters (oinosqlfilter/order/limit/aggregate/select) for one
// request. Any field left at its zero value means "not specified".
type Params struct {
	Filter    Filter
	Order     Order
	Limit     Limit
	Aggregate Aggregate
	Select    Select
}

// Parse builds a Params from the raw query-string values; empty strings
// are treated as "not specified" for every sub-expression.
func Parse(filterExpr, orderExpr, limitExpr, aggregateExpr, selectExpr string) (Params, error) {
	var p Params
	var err error

	if filterExpr != "" {
		p.Filter, err = ParseFilter(filterExpr)
		if err != nil {
			return Params{}, err
		}
	}
	p.Order, err = ParseOrder(orderExpr)
	if err != nil {
		return Params{}, err
	}
	p.Limit, err = ParseLimit(limitExpr)
	if err != nil {
		return Params{}, err
	}
	p.Aggregate, err = ParseAggregate(aggregateExpr)
	if err != nil {
		return Params{}, err
	}
	p.Select = ParseSelect(selectExpr)
	return p, nil
}
