// Package rowset implements ModelSet / DataSet (C8): a cursor over rows
// bound to a DataModel, serialized to any of the gateway's supported
// content types.
package rowset

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/tablegate/tablegate/internal/datamodel"
	"github.com/tablegate/tablegate/internal/field"
)

// DataSet is a cursor over rows. Next may suspend (block on I/O) for
// drivers that stream; GetRow is only valid after Next has returned
// true.
type DataSet interface {
	IsEmpty() bool
	IsEOF() bool
	Next(ctx context.Context) (bool, error)
	GetRow() datamodel.Row
	Close() error
}

// memoryDataSet is a DataSet over already-materialized rows, used for
// POST/PUT result echoes and for tests.
type memoryDataSet struct {
	rows []datamodel.Row
	pos  int
	eof  bool
}

// NewMemoryDataSet wraps an in-memory row slice as a DataSet.
func NewMemoryDataSet(rows []datamodel.Row) DataSet {
	return &memoryDataSet{rows: rows, pos: -1, eof: len(rows) == 0}
}

func (ds *memoryDataSet) IsEmpty() bool { return len(ds.rows) == 0 }
func (ds *memoryDataSet) IsEOF() bool   { return ds.eof }

func (ds *memoryDataSet) Next(_ context.Context) (bool, error) {
	ds.pos++
	if ds.pos >= len(ds.rows) {
		ds.eof = true
		return false, nil
	}
	return true, nil
}

func (ds *memoryDataSet) GetRow() datamodel.Row { return ds.rows[ds.pos] }
func (ds *memoryDataSet) Close() error          { return nil }

// sqlDataSet streams rows straight from a *sql.Rows cursor, converting
// each driver value through the model's Dialect.ParseResultCell and the
// owning field's kind before handing it back as a datamodel.Row.
type sqlDataSet struct {
	rows  *sql.Rows
	model *datamodel.DataModel
	cols  []string
	eof   bool
	cur   datamodel.Row
}

// NewSQLDataSet wraps a live *sql.Rows cursor. cols is the column order
// the SELECT actually emitted (from rows.Columns()), used to map driver
// values back onto model fields by name.
func NewSQLDataSet(rows *sql.Rows, model *datamodel.DataModel) (DataSet, error) {
	cols, err := rows.Columns()
	if err != nil {
		return nil, fmt.Errorf("rowset: reading columns: %w", err)
	}
	return &sqlDataSet{rows: rows, model: model, cols: cols}, nil
}

func (ds *sqlDataSet) IsEmpty() bool { return false } // unknown until first Next
func (ds *sqlDataSet) IsEOF() bool   { return ds.eof }

func (ds *sqlDataSet) Next(ctx context.Context) (bool, error) {
	select {
	case <-ctx.Done():
		return false, ctx.Err()
	default:
	}
	if !ds.rows.Next() {
		ds.eof = true
		if err := ds.rows.Err(); err != nil {
			return false, fmt.Errorf("rowset: reading rows: %w", err)
		}
		return false, nil
	}

	raw := make([]interface{}, len(ds.cols))
	ptrs := make([]interface{}, len(ds.cols))
	for i := range raw {
		ptrs[i] = &raw[i]
	}
	if err := ds.rows.Scan(ptrs...); err != nil {
		return false, fmt.Errorf("rowset: scanning row: %w", err)
	}

	row := make(datamodel.Row, len(ds.model.Fields()))
	for i := range row {
		row[i] = field.AbsentCell()
	}
	d := ds.model.Dialect()
	for i, colName := range ds.cols {
		f := ds.model.FindFieldByName(colName)
		if f == nil {
			continue
		}
		idx := ds.model.FindFieldIndexByName(colName)
		if raw[i] == nil {
			row[idx] = field.NullCell()
			continue
		}
		parsed, err := d.ParseResultCell(raw[i], f.SQLType, f.Kind)
		if err != nil {
			return false, fmt.Errorf("rowset: field %q: %w", colName, err)
		}
		row[idx] = field.ValueCell(parsed)
	}
	ds.cur = row
	return true, nil
}

func (ds *sqlDataSet) GetRow() datamodel.Row { return ds.cur }
func (ds *sqlDataSet) Close() error          { return ds.rows.Close() }
