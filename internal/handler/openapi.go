package handler

import (
	"encoding/json"
	"net/http"

	"github.com/tablegate/tablegate/internal/gateway"
	"github.com/tablegate/tablegate/internal/openapi"
)

// OpenAPIHandler serves a generated OpenAPI 3.1 document describing
// every resource currently mounted in the registry.
type OpenAPIHandler struct {
	registry *gateway.Registry
	baseURL  string
}

// NewOpenAPIHandler builds an OpenAPIHandler. baseURL is advertised as
// the document's only server entry.
func NewOpenAPIHandler(registry *gateway.Registry, baseURL string) *OpenAPIHandler {
	return &OpenAPIHandler{registry: registry, baseURL: baseURL}
}

// ServeSpec writes the combined spec for every mounted resource.
// GET /api/v1/openapi.json
func (h *OpenAPIHandler) ServeSpec(w http.ResponseWriter, r *http.Request) {
	names := h.registry.ResourceNames()
	resources := make([]openapi.ResourceSpec, 0, len(names))
	for _, name := range names {
		res, ok := h.registry.Resource(name)
		if !ok {
			continue
		}
		resources = append(resources, openapi.ResourceSpec{Name: name, Model: res.Api.Model()})
	}

	doc := openapi.GenerateSpec("tablegate API", h.baseURL, resources)
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(doc)
}
