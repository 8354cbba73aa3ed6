package server

import (
	"net/http"

	"github.com/ThiagoRGoveia/treatment-records/internal/schema"
)

// SchemaService describes the record types known to a registry.
type SchemaService struct {
	Registry *schema.Registry
}

func NewSchemaService(registry *schema.Registry) *SchemaService {
	return &SchemaService{Registry: registry}
}

type FieldDescription struct {
	Name string `json:"name"`
	Type string `json:"type"`
}

func (h *SchemaService) ListTypes(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, map[string][]string{"types": h.Registry.Types()})
}

func (h *SchemaService) DescribeType(w http.ResponseWriter, r *http.Request) {
	name := r.PathValue("type")
	fields, err := h.Registry.Describe(name)
	if err != nil {
		http.Error(w, "Unknown record type: "+name, http.StatusNotFound)
		return
	}

	out := make([]FieldDescription, 0, len(fields))
	for _, f := range fields {
		out = append(out, FieldDescription{Name: f.Name, Type: f.Desc.String()})
	}
	writeJSON(w, out)
}
