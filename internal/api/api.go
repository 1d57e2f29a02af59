// Package api implements Api (C9): request orchestration that ties
// Parser, DataModel, SqlParams, Dialect and ModelSet together into one
// router-independent entry point. internal/handler adapts chi's
// *http.Request to the Request type here and writes Result back; the
// gateway's core logic never imports net/http.
package api

import (
	"github.com/tablegate/tablegate/internal/datamodel"
	"github.com/tablegate/tablegate/internal/dialect"
)

// Config bundles the per-Api settings listed in the service/resource
// configuration. Zero value is the permissive default: every fail-on
// policy off, Hashid disabled, SQL never echoed in error messages.
type Config struct {
	TableName              string
	APIName                string
	FailOnOversizedValues  bool
	FailOnUpdateOnAutoinc  bool
	FailOnInsertWithoutKey bool
	UseDatesAsString       bool
	ApplyHashid            bool
	DebugOnError           bool
}

// Api binds one immutable DataModel/Dialect pair plus its validation
// policy. It holds no mutable state of its own and may be shared freely
// across concurrent requests; the Dialect's own connection pool is
// responsible for concurrency safety at the query/execute boundary.
type Api struct {
	model *datamodel.DataModel
	dia   dialect.Dialect
	cfg   Config
}

// New constructs an Api over an already-introspected model. The model's
// own Hashid (set via datamodel.WithHashid) governs SQL-level key
// decoding; cfg.ApplyHashid independently governs whether responses
// obfuscate those same keys.
func New(model *datamodel.DataModel, d dialect.Dialect, cfg Config) *Api {
	return &Api{model: model, dia: d, cfg: cfg}
}

// Model returns the bound DataModel.
func (a *Api) Model() *datamodel.DataModel { return a.model }
