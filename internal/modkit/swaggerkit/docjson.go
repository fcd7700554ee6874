package swaggerkit

import (
	"encoding/json"
	"net/http"
	"strings"

	"allocvault/internal/services/api/docs"
)

// SpecMutator lets modules tweak the parsed document before it is served
type SpecMutator func(map[string]any)

var (
	mutators []SpecMutator

	// docReader is a seam for tests
	docReader = func() string { return docs.SwaggerInfo.ReadDoc() }
)

// Register adds a document mutator
func Register(m SpecMutator) {
	if m != nil {
		mutators = append(mutators, m)
	}
}

func serveDocJSON() http.HandlerFunc {
	return func(w http.ResponseWriter, _ *http.Request) {
		spec, err := Document()
		if err != nil {
			http.Error(w, "spec parse error", http.StatusInternalServerError)
			return
		}
		w.Header().Set("Content-Type", "application/json; charset=utf-8")
		w.Header().Set("Cache-Control", "no-store")
		_ = json.NewEncoder(w).Encode(spec)
	}
}

// Document parses the registered document and applies the shared error responses and mutators
func Document() (map[string]any, error) {
	var spec map[string]any
	if err := json.Unmarshal([]byte(docReader()), &spec); err != nil {
		return nil, err
	}
	ensureServers(spec, "/api/v1")
	ensureErrorSchema(spec)
	ensureBearerScheme(spec)
	addDefaultResponse(spec, "400", "Bad Request", map[string]any{
		"status_code": 400, "status": "Bad Request", "code": 7, "kind": "validation",
		"error": "zone must be 1-64 letters, digits, spaces, '-', '_' or '.'", "field": "zone",
	})
	addDefaultResponse(spec, "500", "Internal Server Error", map[string]any{
		"status_code": 500, "status": "Internal Server Error", "code": 1, "kind": "panic",
		"error": "panic recovered",
	})
	for _, m := range mutators {
		m(spec)
	}
	return spec, nil
}

// ensureServers lifts swagger 2 documents to OAS 3.0.3 with a servers block; the UI cannot render 3.1
func ensureServers(spec map[string]any, url string) {
	if _, ok := spec["swagger"]; ok {
		delete(spec, "swagger")
	}
	if v, _ := spec["openapi"].(string); v == "" || strings.HasPrefix(v, "3.1") {
		spec["openapi"] = "3.0.3"
	}
	if _, ok := spec["servers"]; !ok {
		spec["servers"] = []any{map[string]any{"url": url}}
	}
}

func components(spec map[string]any, key string) map[string]any {
	comps, ok := spec["components"].(map[string]any)
	if !ok {
		comps = map[string]any{}
		spec["components"] = comps
	}
	sub, ok := comps[key].(map[string]any)
	if !ok {
		sub = map[string]any{}
		comps[key] = sub
	}
	return sub
}

// ensureErrorSchema mirrors the runtime error envelope
func ensureErrorSchema(spec map[string]any) {
	schemas := components(spec, "schemas")
	if _, ok := schemas["ErrorResponse"]; ok {
		return
	}
	str := map[string]any{"type": "string"}
	schemas["ErrorResponse"] = map[string]any{
		"type": "object",
		"properties": map[string]any{
			"status_code": map[string]any{"type": "integer"},
			"status":      str,
			"code":        map[string]any{"type": "integer"},
			"kind":        str,
			"error":       str,
			"field":       str,
			"request_id":  str,
		},
		"required": []any{"status_code", "status"},
	}
}

func ensureBearerScheme(spec map[string]any) {
	schemes := components(spec, "securitySchemes")
	if _, ok := schemes["bearer"]; !ok {
		schemes["bearer"] = map[string]any{"type": "http", "scheme": "bearer"}
	}
}

// addDefaultResponse injects status into every operation that does not declare it
func addDefaultResponse(spec map[string]any, status, description string, example map[string]any) {
	paths, ok := spec["paths"].(map[string]any)
	if !ok {
		return
	}
	resp := map[string]any{
		"description": description,
		"content": map[string]any{
			"application/json": map[string]any{
				"schema":  map[string]any{"$ref": "#/components/schemas/ErrorResponse"},
				"example": example,
			},
		},
	}
	for _, p := range paths {
		node, ok := p.(map[string]any)
		if !ok {
			continue
		}
		for _, opAny := range node {
			op, ok := opAny.(map[string]any)
			if !ok {
				continue
			}
			responses, ok := op["responses"].(map[string]any)
			if !ok {
				responses = map[string]any{}
				op["responses"] = responses
			}
			if _, exists := responses[status]; !exists {
				responses[status] = resp
			}
		}
	}
}
