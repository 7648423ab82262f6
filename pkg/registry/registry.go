package registry

import (
	"fmt"
	"sort"
	"sync"

	"github.com/aretw0/espalier/pkg/domain"
	"github.com/aretw0/espalier/pkg/schema"
)

// Registry manages the open set of node types known to a host. Types can be
// registered at any time, so hosts extend the palette without modifying the
// core document engine.
//
// Registry implements ports.ConnectionValidator: wired into a document via
// WithConnectionValidator, it enforces the schema's port compatibility rules.
type Registry struct {
	mu    sync.RWMutex
	types map[string]schema.NodeType
}

// New creates a new empty registry.
func New() *Registry {
	return &Registry{
		types: make(map[string]schema.NodeType),
	}
}

// FromCatalog creates a registry seeded with every type in the catalog.
func FromCatalog(c *schema.Catalog) *Registry {
	r := New()
	for _, nt := range c.Types {
		r.Register(nt)
	}
	return r
}

// Register adds a node type to the registry.
// If a type with the same id exists, it is overwritten.
func (r *Registry) Register(nt schema.NodeType) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.types[nt.ID] = nt
}

// Lookup returns the node type with the given id.
func (r *Registry) Lookup(id string) (schema.NodeType, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	nt, ok := r.types[id]
	return nt, ok
}

// Types returns all registered node types, sorted by id.
func (r *Registry) Types() []schema.NodeType {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]schema.NodeType, 0, len(r.types))
	for _, nt := range r.types {
		out = append(out, nt)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

// ValidateConnection implements ports.ConnectionValidator using the declared
// ports of both endpoint types. Nodes whose type is not registered are
// rejected: a connection cannot be validated against unknown metadata.
func (r *Registry) ValidateConnection(source domain.Node, sourcePortID string, target domain.Node, targetPortID string) error {
	r.mu.RLock()
	defer r.mu.RUnlock()

	src, ok := r.types[source.Type]
	if !ok {
		return fmt.Errorf("%w: unknown node type %q", domain.ErrIncompatiblePort, source.Type)
	}
	tgt, ok := r.types[target.Type]
	if !ok {
		return fmt.Errorf("%w: unknown node type %q", domain.ErrIncompatiblePort, target.Type)
	}

	return schema.CheckPorts(&src, sourcePortID, &tgt, targetPortID)
}
