package api

import (
	"context"
	"strconv"
	"strings"
	"time"

	"github.com/tablegate/tablegate/internal/datamodel"
	"github.com/tablegate/tablegate/internal/reqparser"
	"github.com/tablegate/tablegate/internal/rowset"
	"github.com/tablegate/tablegate/internal/sqlparams"
)

// Run dispatches req to the handler for its method and returns a Result
// that never panics and never lets a Dialect error escape uncaptured.
func (a *Api) Run(ctx context.Context, req Request) Result {
	switch strings.ToUpper(req.Method) {
	case "GET":
		return a.runGet(ctx, req)
	case "POST":
		return a.runPost(ctx, req, BatchHalt)
	case "PUT":
		return a.runPut(ctx, req)
	case "DELETE":
		return a.runDelete(ctx, req)
	default:
		return errorResult(405, "method not allowed", errMsg("unsupported method %q", req.Method))
	}
}

// RunBatch is Run for POST/PUT requests that want an explicit batch
// mode instead of the request-shape default (halt). GET/DELETE ignore
// mode entirely since they are never batched.
func (a *Api) RunBatch(ctx context.Context, req Request, mode BatchMode) Result {
	switch strings.ToUpper(req.Method) {
	case "POST":
		return a.runPost(ctx, req, mode)
	case "PUT":
		return a.runPutBatch(ctx, req, mode)
	default:
		return a.Run(ctx, req)
	}
}

func errorResult(code int, msg string, msgs ...Message) Result {
	return Result{Success: false, StatusCode: code, StatusMessage: msg, Messages: msgs}
}

func (a *Api) parseParams(req Request) (sqlparams.Params, error) {
	return sqlparams.Parse(req.FilterExpr, req.OrderExpr, req.LimitExpr, req.AggregateExpr, req.SelectExpr)
}

func (a *Api) runGet(ctx context.Context, req Request) Result {
	start := time.Now()

	params, err := a.parseParams(req)
	if err != nil {
		return errorResult(400, "invalid query parameters", errMsg("%v", err))
	}

	sqlStr, err := a.model.PrintSqlSelect(req.RowID, params)
	if err != nil {
		return errorResult(400, "invalid request", errMsg("%v", err))
	}

	rows, err := a.dia.Query(ctx, sqlStr)
	if err != nil {
		return a.dbError("query failed", sqlStr, err)
	}

	ds, err := rowset.NewSQLDataSet(rows, a.model)
	if err != nil {
		rows.Close()
		return a.dbError("reading result set failed", sqlStr, err)
	}

	meta := map[string]string{}
	if req.IncludeCount {
		if n, err := a.countRows(ctx, params); err == nil {
			meta["total_count"] = strconv.FormatInt(n, 10)
		}
	}

	ms := rowset.New(a.model, ds, a.cfg.ApplyHashid)
	meta["took_ms"] = strconv.FormatInt(time.Since(start).Milliseconds(), 10)
	return Result{Success: true, StatusCode: 200, StatusMessage: "OK", ModelSet: ms, Meta: meta}
}

func (a *Api) countRows(ctx context.Context, params sqlparams.Params) (int64, error) {
	sqlStr, err := a.model.PrintSqlCount(params)
	if err != nil {
		return 0, err
	}
	rows, err := a.dia.Query(ctx, sqlStr)
	if err != nil {
		return 0, err
	}
	defer rows.Close()
	var n int64
	if rows.Next() {
		if err := rows.Scan(&n); err != nil {
			return 0, err
		}
	}
	return n, rows.Err()
}

// dbError classifies a Dialect failure as a 500-class backend error,
// attaching the emitted SQL as a debug message only when the Api is
// configured to surface it.
func (a *Api) dbError(fallback, sqlStr string, err error) Result {
	msgs := []Message{errMsg("%s: %v", fallback, err)}
	if a.cfg.DebugOnError {
		msgs = append(msgs, debugMsg("sql: %s", sqlStr))
	}
	return errorResult(500, fallback, msgs...)
}

func (a *Api) parseBody(req Request) (reqparser.Result, error) {
	opts := reqparser.Options{
		Boundary:  req.Boundary,
		Separator: a.model.Separator(),
	}
	if a.cfg.ApplyHashid {
		opts.Hashid = a.model.Hashid()
	}
	return reqparser.Parse(req.Body, req.ContentType, a.model, opts)
}

func (a *Api) runPost(ctx context.Context, req Request, mode BatchMode) Result {
	if req.RowID != "" {
		return errorResult(400, "POST does not accept an id", errMsg("unexpected id %q in POST request", req.RowID))
	}

	parsed, err := a.parseBody(req)
	if err != nil {
		return errorResult(400, "invalid request body", errMsg("%v", err))
	}
	if len(parsed.Rows) == 0 {
		return errorResult(400, "no rows to insert", errMsg("request body contained no parseable rows"))
	}

	var msgs []Message
	for _, w := range parsed.Warnings {
		msgs = append(msgs, warnMsg("row %d: %s", w.RowIndex, w.Message))
	}

	type attempt struct {
		row datamodel.Row
		sql string
	}
	var attempts []attempt
	var accepted []datamodel.Row

	for i, row := range parsed.Rows {
		ok, vmsgs := a.validateRow(row, true)
		for _, m := range vmsgs {
			msgs = append(msgs, prefixRow(i, m))
		}
		if !ok {
			if mode == BatchRollback {
				return Result{Success: false, StatusCode: 405, StatusMessage: "batch rejected: row failed validation", Messages: msgs}
			}
			if mode == BatchHalt {
				break
			}
			continue
		}
		sqlStr, err := a.model.PrintSqlInsert(row)
		if err != nil {
			msgs = append(msgs, errMsg("row %d: %v", i, err))
			if mode == BatchRollback {
				return Result{Success: false, StatusCode: 400, StatusMessage: "batch rejected: row could not be built", Messages: msgs}
			}
			if mode == BatchHalt {
				break
			}
			continue
		}
		attempts = append(attempts, attempt{row: row, sql: sqlStr})
		accepted = append(accepted, row)
	}

	if len(attempts) == 0 {
		return Result{Success: false, StatusCode: 405, StatusMessage: "no valid rows to insert", Messages: msgs}
	}

	if mode == BatchContinue {
		var ok []datamodel.Row
		for _, at := range attempts {
			if _, err := a.dia.Execute(ctx, at.sql); err != nil {
				msgs = append(msgs, errMsg("insert failed: %v", err))
				if a.cfg.DebugOnError {
					msgs = append(msgs, debugMsg("sql: %s", at.sql))
				}
				continue
			}
			ok = append(ok, at.row)
		}
		if len(ok) == 0 {
			return Result{Success: false, StatusCode: 500, StatusMessage: "all inserts failed", Messages: msgs}
		}
		ms := rowset.New(a.model, rowset.NewMemoryDataSet(ok), a.cfg.ApplyHashid)
		return Result{Success: true, StatusCode: 201, StatusMessage: "Created", Messages: msgs, ModelSet: ms}
	}

	stmts := make([]string, len(attempts))
	for i, at := range attempts {
		stmts[i] = at.sql
	}
	batchSQL := strings.Join(stmts, ";\n")
	if _, err := a.dia.Execute(ctx, batchSQL); err != nil {
		r := a.dbError("insert failed", batchSQL, err)
		r.Messages = append(msgs, r.Messages...)
		return r
	}

	ms := rowset.New(a.model, rowset.NewMemoryDataSet(accepted), a.cfg.ApplyHashid)
	return Result{Success: true, StatusCode: 201, StatusMessage: "Created", Messages: msgs, ModelSet: ms}
}

func (a *Api) runPut(ctx context.Context, req Request) Result {
	return a.runPutBatch(ctx, req, BatchHalt)
}

func (a *Api) runPutBatch(ctx context.Context, req Request, mode BatchMode) Result {
	if req.RowID == "" {
		return errorResult(400, "PUT requires an id", errMsg("missing id in PUT request"))
	}

	parsed, err := a.parseBody(req)
	if err != nil {
		return errorResult(400, "invalid request body", errMsg("%v", err))
	}
	if len(parsed.Rows) != 1 {
		return errorResult(400, "PUT requires exactly one row", errMsg("request body contained %d rows", len(parsed.Rows)))
	}
	row := parsed.Rows[0]

	var msgs []Message
	for _, w := range parsed.Warnings {
		msgs = append(msgs, warnMsg("%s", w.Message))
	}

	ok, vmsgs := a.validateRow(row, false)
	msgs = append(msgs, vmsgs...)
	if !ok {
		return Result{Success: false, StatusCode: 405, StatusMessage: "validation failed", Messages: msgs}
	}

	sqlStr, err := a.model.PrintSqlUpdate(req.RowID, row)
	if err != nil {
		return errorResult(400, "invalid request", errMsg("%v", err))
	}

	if _, err := a.dia.Execute(ctx, sqlStr); err != nil {
		r := a.dbError("update failed", sqlStr, err)
		r.Messages = append(msgs, r.Messages...)
		return r
	}

	if err := fillRowPrimaryKey(a.model, row, req.RowID); err != nil {
		msgs = append(msgs, warnMsg("could not echo primary key: %v", err))
	}
	ms := rowset.New(a.model, rowset.NewMemoryDataSet([]datamodel.Row{row}), a.cfg.ApplyHashid)
	return Result{Success: true, StatusCode: 200, StatusMessage: "OK", Messages: msgs, ModelSet: ms}
}

// RunBatchUpdate is PUT for a body that carries many rows at once, each
// identifying itself by its own primary-key field values rather than a
// single URL id. It mirrors runPost's halt/continue/rollback modes
// instead of runPutBatch's single-row, URL-id shape.
func (a *Api) RunBatchUpdate(ctx context.Context, req Request, mode BatchMode) Result {
	if req.RowID != "" {
		return errorResult(400, "batch update does not accept an id", errMsg("unexpected id %q", req.RowID))
	}

	parsed, err := a.parseBody(req)
	if err != nil {
		return errorResult(400, "invalid request body", errMsg("%v", err))
	}
	if len(parsed.Rows) == 0 {
		return errorResult(400, "no rows to update", errMsg("request body contained no parseable rows"))
	}

	var msgs []Message
	for _, w := range parsed.Warnings {
		msgs = append(msgs, warnMsg("row %d: %s", w.RowIndex, w.Message))
	}

	type attempt struct {
		row datamodel.Row
		sql string
	}
	var attempts []attempt
	var accepted []datamodel.Row

	for i, row := range parsed.Rows {
		idToken, err := a.model.PrintOinoId(row, a.cfg.ApplyHashid)
		if err != nil {
			msgs = append(msgs, prefixRow(i, errMsg("row has no usable primary key: %v", err)))
			if mode == BatchRollback {
				return Result{Success: false, StatusCode: 405, StatusMessage: "batch rejected: row missing key", Messages: msgs}
			}
			if mode == BatchHalt {
				break
			}
			continue
		}

		ok, vmsgs := a.validateRow(row, false)
		for _, m := range vmsgs {
			msgs = append(msgs, prefixRow(i, m))
		}
		if !ok {
			if mode == BatchRollback {
				return Result{Success: false, StatusCode: 405, StatusMessage: "batch rejected: row failed validation", Messages: msgs}
			}
			if mode == BatchHalt {
				break
			}
			continue
		}

		sqlStr, err := a.model.PrintSqlUpdate(idToken, row)
		if err != nil {
			msgs = append(msgs, prefixRow(i, errMsg("%v", err)))
			if mode == BatchRollback {
				return Result{Success: false, StatusCode: 400, StatusMessage: "batch rejected: row could not be built", Messages: msgs}
			}
			if mode == BatchHalt {
				break
			}
			continue
		}
		attempts = append(attempts, attempt{row: row, sql: sqlStr})
		accepted = append(accepted, row)
	}

	if len(attempts) == 0 {
		return Result{Success: false, StatusCode: 405, StatusMessage: "no valid rows to update", Messages: msgs}
	}

	if mode == BatchContinue {
		var ok []datamodel.Row
		for _, at := range attempts {
			if _, err := a.dia.Execute(ctx, at.sql); err != nil {
				msgs = append(msgs, errMsg("update failed: %v", err))
				if a.cfg.DebugOnError {
					msgs = append(msgs, debugMsg("sql: %s", at.sql))
				}
				continue
			}
			ok = append(ok, at.row)
		}
		if len(ok) == 0 {
			return Result{Success: false, StatusCode: 500, StatusMessage: "all updates failed", Messages: msgs}
		}
		ms := rowset.New(a.model, rowset.NewMemoryDataSet(ok), a.cfg.ApplyHashid)
		return Result{Success: true, StatusCode: 200, StatusMessage: "OK", Messages: msgs, ModelSet: ms}
	}

	stmts := make([]string, len(attempts))
	for i, at := range attempts {
		stmts[i] = at.sql
	}
	batchSQL := strings.Join(stmts, ";\n")
	if _, err := a.dia.Execute(ctx, batchSQL); err != nil {
		r := a.dbError("update failed", batchSQL, err)
		r.Messages = append(msgs, r.Messages...)
		return r
	}

	ms := rowset.New(a.model, rowset.NewMemoryDataSet(accepted), a.cfg.ApplyHashid)
	return Result{Success: true, StatusCode: 200, StatusMessage: "OK", Messages: msgs, ModelSet: ms}
}

func (a *Api) runDelete(ctx context.Context, req Request) Result {
	if req.RowID == "" {
		return errorResult(400, "DELETE requires an id", errMsg("missing id in DELETE request"))
	}

	sqlStr, err := a.model.PrintSqlDelete(req.RowID)
	if err != nil {
		return errorResult(400, "invalid request", errMsg("%v", err))
	}

	result, err := a.dia.Execute(ctx, sqlStr)
	if err != nil {
		return a.dbError("delete failed", sqlStr, err)
	}

	var msgs []Message
	if n, err := result.RowsAffected(); err == nil {
		msgs = append(msgs, infoMsg("%d row(s) deleted", n))
	}
	return Result{Success: true, StatusCode: 200, StatusMessage: "OK", Messages: msgs}
}

func prefixRow(i int, m Message) Message {
	m.Text = "row " + strconv.Itoa(i) + ": " + m.Text
	return m
}
