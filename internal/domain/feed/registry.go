package feed

import (
	"fmt"
	"sort"

	"github.com/dms/backend/internal/domain/shared"
)

// Registry holds the known export schemas keyed by code
type Registry struct {
	schemas map[string]Schema
}

// NewRegistry creates a registry from the given schemas
func NewRegistry(schemas ...Schema) *Registry {
	r := &Registry{schemas: make(map[string]Schema, len(schemas))}
	for _, s := range schemas {
		r.schemas[s.Code()] = s
	}
	return r
}

// DefaultRegistry returns a registry with all built-in schemas
func DefaultRegistry() *Registry {
	return NewRegistry(NewMobileSchema(), NewAutoScoutSchema())
}

// Get returns the schema for the given code
func (r *Registry) Get(code string) (Schema, error) {
	s, ok := r.schemas[code]
	if !ok {
		return nil, shared.NewDomainError("UNKNOWN_SCHEMA", fmt.Sprintf("Unknown export schema: %s", code))
	}
	return s, nil
}

// Codes returns all registered schema codes in sorted order
func (r *Registry) Codes() []string {
	codes := make([]string, 0, len(r.schemas))
	for code := range r.schemas {
		codes = append(codes, code)
	}
	sort.Strings(codes)
	return codes
}
