// Package sqlparams implements the query-parameter sublanguage (C6):
// Filter, Order, Limit, Aggregate, and Select expressions parsed out of
// HTTP query strings and compiled against a DataModel. Every parse
// produces a structured tree first; SQL text is only ever produced by
// walking that tree through a Resolver, which is the sole place a field
// name becomes a quoted identifier or a value becomes a SQL literal.
package sqlparams

// Resolver is the narrow capability ToSQL needs from a DataModel,
// defined here (not imported from datamodel) to avoid a field <->
// sqlparams <-> datamodel import cycle: datamodel imports sqlparams to
// drive PrintSqlSelect, so sqlparams cannot import datamodel back.
type Resolver interface {
	// HasField reports whether name is a known column.
	HasField(name string) bool
	// QuoteIdentifier returns the dialect-quoted column name.
	QuoteIdentifier(name string) (string, error)
	// PrintLiteral deserializes text against the named field's kind and
	// renders it as a SQL literal via the field's dialect. Returns ("",
	// nil) for adversarial input the field rejected (e.g. oversized
	// strings) — callers must treat that as a hard parse error.
	PrintLiteral(name string, text string) (string, error)
	// PrimaryKeyNames returns the model's primary-key fields in model
	// order, used by Select to force-include them.
	PrimaryKeyNames() []string
	// FieldNames returns every field in model order, used by Select
	// when the expression is empty ("all fields").
	FieldNames() []string
}
