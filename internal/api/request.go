package api

import (
	"github.com/tablegate/tablegate/internal/contenttype"
	"github.com/tablegate/tablegate/internal/rowset"
)

// Request is the router-independent description of one inbound call,
// populated by whatever adapter sits in front of the Api (internal/
// handler's chi routes, a CLI, a test harness).
type Request struct {
	Method string // "GET", "POST", "PUT", "DELETE"
	RowID  string // OinoId token; empty when the request has no id

	Body        []byte
	ContentType contenttype.ContentType
	Boundary    string // multipart boundary, required when ContentType == FormData

	Accept contenttype.ContentType // response content type, negotiated by the caller

	FilterExpr    string
	OrderExpr     string
	LimitExpr     string
	AggregateExpr string
	SelectExpr    string

	// IncludeCount asks a GET to report the filter's total matching row
	// count (ignoring the limit expression) via Result.Meta["total_count"].
	IncludeCount bool
}

// BatchMode controls how POST/PUT handle more than one row. Grounded on
// the teacher's ?continue=/?rollback= query parameters.
type BatchMode int

const (
	// BatchHalt stops at the first row that fails validation or
	// execution; rows attempted before the failure are still applied.
	BatchHalt BatchMode = iota
	// BatchContinue attempts every row independently and reports a
	// per-row outcome regardless of earlier failures.
	BatchContinue
	// BatchRollback concatenates every row's statement into one
	// engine-executed batch, so the whole request succeeds or fails as a
	// unit to the extent the dialect's driver honors that concatenation.
	BatchRollback
)

// Result is ApiResult: the uniform outcome of any Run call.
type Result struct {
	Success       bool
	StatusCode    int
	StatusMessage string
	Messages      []Message

	// ModelSet carries rows for a successful GET, or the echoed rows of
	// a successful POST/PUT. Nil for DELETE and for failed requests.
	ModelSet *rowset.ModelSet

	// Meta carries free-form response metadata the adapter may expose as
	// headers: "took_ms" on every successful GET, plus "total_count" when
	// that GET set Request.IncludeCount. Other verbs leave it nil.
	Meta map[string]string
}

// HeaderLines renders Messages as X-OINO-MESSAGE-N header values, in
// order, ready to be assigned consecutive header names by the adapter.
func (r Result) HeaderLines() []string {
	lines := make([]string, len(r.Messages))
	for i, m := range r.Messages {
		lines[i] = m.String()
	}
	return lines
}
