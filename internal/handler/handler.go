// Package handler adapts chi's HTTP request/response pair to the
// router-independent api.Request/api.Result pair. Nothing under
// internal/api imports net/http; this package is the bridge to it.
package handler

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/tablegate/tablegate/internal/api"
	"github.com/tablegate/tablegate/internal/contenttype"
	"github.com/tablegate/tablegate/internal/gateway"
	"github.com/tablegate/tablegate/internal/reqparser"
)

// Handler serves every mounted resource's CRUD verbs through one
// generic route tree, dispatching on the {resource} URL param.
type Handler struct {
	registry *gateway.Registry
}

// New builds a Handler over registry.
func New(registry *gateway.Registry) *Handler {
	return &Handler{registry: registry}
}

// Mount installs GET/POST/PUT on /{resource} and GET/PUT/DELETE on
// /{resource}/{id} under r. Resources are resolved by name at request
// time, so resources registered after Mount runs are reachable
// immediately.
func (h *Handler) Mount(r chi.Router) {
	r.Get("/{resource}", h.serve)
	r.Post("/{resource}", h.serve)
	r.Put("/{resource}", h.serve) // batch update, rows self-identify by key
	r.Get("/{resource}/{id}", h.serve)
	r.Put("/{resource}/{id}", h.serve)
	r.Delete("/{resource}/{id}", h.serve)
}

func (h *Handler) serve(w http.ResponseWriter, r *http.Request) {
	resourceName := chi.URLParam(r, "resource")
	res, ok := h.registry.Resource(resourceName)
	if !ok {
		writeEnvelope(w, api.Result{
			Success: false, StatusCode: 404, StatusMessage: "unknown resource " + resourceName,
		})
		return
	}

	req, err := buildRequest(r)
	if err != nil {
		writeEnvelope(w, api.Result{
			Success: false, StatusCode: 400, StatusMessage: "malformed request: " + err.Error(),
		})
		return
	}

	var result api.Result
	if req.Method == http.MethodPut && req.RowID == "" {
		result = res.Api.RunBatchUpdate(r.Context(), req, batchModeOf(r))
	} else {
		result = res.Api.RunBatch(r.Context(), req, batchModeOf(r))
	}
	writeResult(w, r.Context(), req.Accept, result)
}

// batchModeOf reads the ?continue= / ?rollback= query parameters the
// teacher's handlers use to pick a multi-row write strategy. Neither
// present means the halt-on-first-failure default.
func batchModeOf(r *http.Request) api.BatchMode {
	q := r.URL.Query()
	switch {
	case q.Get("rollback") == "true":
		return api.BatchRollback
	case q.Get("continue") == "true":
		return api.BatchContinue
	default:
		return api.BatchHalt
	}
}

func buildRequest(r *http.Request) (api.Request, error) {
	body, err := io.ReadAll(r.Body)
	if err != nil {
		return api.Request{}, err
	}

	ct, ctOK := contenttype.FromMimeType(r.Header.Get("Content-Type"))
	if err := reqparser.RejectMultipartMixed(ct, ctOK); err != nil {
		return api.Request{}, err
	}
	if override := r.URL.Query().Get("oinorequesttype"); override != "" {
		if parsed, ok := contenttype.FromName(override); ok {
			ct = parsed
		}
	}

	accept, ok := contenttype.FromMimeType(r.Header.Get("Accept"))
	if !ok {
		accept = contenttype.JSON
	}
	if override := r.URL.Query().Get("oinoresponsetype"); override != "" {
		if parsed, ok := contenttype.FromName(override); ok {
			accept = parsed
		}
	}

	return api.Request{
		Method:        r.Method,
		RowID:         chi.URLParam(r, "id"),
		Body:          body,
		ContentType:   ct,
		Boundary:      contenttype.BoundaryFromMimeType(r.Header.Get("Content-Type")),
		Accept:        accept,
		FilterExpr:    r.URL.Query().Get("oinosqlfilter"),
		OrderExpr:     r.URL.Query().Get("oinosqlorder"),
		LimitExpr:     r.URL.Query().Get("oinosqllimit"),
		AggregateExpr: r.URL.Query().Get("oinosqlaggregate"),
		SelectExpr:    r.URL.Query().Get("oinosqlselect"),
		IncludeCount:  r.URL.Query().Get("oinoincludecount") == "true",
	}, nil
}

// writeResult serializes a successful result's ModelSet as CSV or
// urlencoded when one of those was negotiated and as JSON for any other
// accepted type (form-data and html included), with a Content-Type that
// names what was written. Failures and verbs that carry no ModelSet
// (DELETE) get the JSON ApiResult envelope instead.
func writeResult(w http.ResponseWriter, ctx context.Context, accept contenttype.ContentType, result api.Result) {
	if !result.Success || result.ModelSet == nil {
		writeEnvelope(w, result)
		return
	}
	if accept != contenttype.CSV && accept != contenttype.URLEncode {
		accept = contenttype.JSON
	}

	body, err := writeBody(ctx, accept, result)
	if err != nil {
		writeEnvelope(w, api.Result{
			Success: false, StatusCode: 500, StatusMessage: "response encoding failed: " + err.Error(),
		})
		return
	}

	setMessageHeaders(w, result)
	w.Header().Set("Content-Type", accept.MimeType())
	w.WriteHeader(result.StatusCode)
	io.WriteString(w, body)
}

func writeBody(ctx context.Context, accept contenttype.ContentType, result api.Result) (string, error) {
	switch accept {
	case contenttype.CSV:
		return result.ModelSet.WriteCSV(ctx)
	case contenttype.URLEncode:
		body, _, err := result.ModelSet.WriteURLEncoded(ctx)
		return body, err
	default:
		return result.ModelSet.WriteJSON(ctx)
	}
}

// apiResultEnvelope is the JSON body written for every non-data
// response: failures, and successes that carry no ModelSet (DELETE).
type apiResultEnvelope struct {
	Success       bool     `json:"success"`
	StatusCode    int      `json:"statusCode"`
	StatusMessage string   `json:"statusMessage"`
	Messages      []string `json:"messages,omitempty"`
}

func writeEnvelope(w http.ResponseWriter, result api.Result) {
	msgs := make([]string, len(result.Messages))
	for i, m := range result.Messages {
		msgs[i] = m.String()
	}
	setMessageHeaders(w, result)
	w.Header().Set("Content-Type", contenttype.JSON.MimeType())
	w.WriteHeader(result.StatusCode)
	json.NewEncoder(w).Encode(apiResultEnvelope{
		Success:       result.Success,
		StatusCode:    result.StatusCode,
		StatusMessage: result.StatusMessage,
		Messages:      msgs,
	})
}

func setMessageHeaders(w http.ResponseWriter, result api.Result) {
	for i, line := range result.HeaderLines() {
		w.Header().Add("X-OINO-MESSAGE-"+strconv.Itoa(i), line)
	}
	if v, ok := result.Meta["total_count"]; ok {
		w.Header().Set("X-Total-Count", v)
	}
	if v, ok := result.Meta["took_ms"]; ok {
		w.Header().Set("X-Took-Ms", v)
	}
}
