package schema

import (
	"fmt"
	"os"
	"sort"

	"github.com/aretw0/espalier/pkg/domain"
	"gopkg.in/yaml.v3"
)

// Field describes one configuration entry of a node type: how the host
// should label, order, and validate it.
type Field struct {
	Key         string   `yaml:"key" json:"key"`
	DisplayName string   `yaml:"display_name,omitempty" json:"display_name,omitempty"`
	Type        string   `yaml:"type,omitempty" json:"type,omitempty"` // "string", "int", "float", "bool", "enum(a|b|c)"
	Order       int      `yaml:"order,omitempty" json:"order,omitempty"`
	Help        string   `yaml:"help,omitempty" json:"help,omitempty"`
	Default     string   `yaml:"default,omitempty" json:"default,omitempty"`
	Options     []string `yaml:"options,omitempty" json:"options,omitempty"`
}

// Port describes an attachment point declared by a node type.
// Kind is an optional compatibility tag; an empty kind matches anything.
type Port struct {
	ID          string               `yaml:"id" json:"id"`
	DisplayName string               `yaml:"display_name,omitempty" json:"display_name,omitempty"`
	Direction   domain.PortDirection `yaml:"direction" json:"direction"`
	Kind        string               `yaml:"kind,omitempty" json:"kind,omitempty"`
}

// NodeType is the schema metadata for one entry of the open node-type set.
type NodeType struct {
	ID          string  `yaml:"id" json:"id"`
	DisplayName string  `yaml:"display_name,omitempty" json:"display_name,omitempty"`
	Category    string  `yaml:"category,omitempty" json:"category,omitempty"`
	Help        string  `yaml:"help,omitempty" json:"help,omitempty"`
	Fields      []Field `yaml:"fields,omitempty" json:"fields,omitempty"`
	Ports       []Port  `yaml:"ports,omitempty" json:"ports,omitempty"`
}

// Port returns the declared port with the given id.
func (nt *NodeType) Port(id string) (Port, bool) {
	for _, p := range nt.Ports {
		if p.ID == id {
			return p, true
		}
	}
	return Port{}, false
}

// SortedFields returns the fields ordered by their Order value (stable for
// equal orders), the order an inspector panel should present them in.
func (nt *NodeType) SortedFields() []Field {
	out := make([]Field, len(nt.Fields))
	copy(out, nt.Fields)
	sort.SliceStable(out, func(i, j int) bool { return out[i].Order < out[j].Order })
	return out
}

// Catalog is a serializable collection of node types, typically authored as
// a YAML file shipped with the host application.
type Catalog struct {
	Types []NodeType `yaml:"types" json:"types"`
}

// Type returns the node type with the given id.
func (c *Catalog) Type(id string) (*NodeType, bool) {
	for i := range c.Types {
		if c.Types[i].ID == id {
			return &c.Types[i], true
		}
	}
	return nil, false
}

// ParseCatalog decodes a YAML catalog and verifies its internal consistency
// (unique type ids, parseable field types, valid port directions).
func ParseCatalog(data []byte) (*Catalog, error) {
	var c Catalog
	if err := yaml.Unmarshal(data, &c); err != nil {
		return nil, fmt.Errorf("failed to parse catalog: %w", err)
	}

	seen := make(map[string]bool)
	for _, nt := range c.Types {
		if nt.ID == "" {
			return nil, fmt.Errorf("catalog contains a node type with empty id")
		}
		if seen[nt.ID] {
			return nil, fmt.Errorf("duplicate node type id %q", nt.ID)
		}
		seen[nt.ID] = true

		for _, f := range nt.Fields {
			if _, err := ParseType(f.Type); err != nil {
				return nil, fmt.Errorf("type %q field %q: %w", nt.ID, f.Key, err)
			}
		}
		for _, p := range nt.Ports {
			if p.Direction != domain.PortSource && p.Direction != domain.PortTarget {
				return nil, fmt.Errorf("type %q port %q: direction must be %q or %q",
					nt.ID, p.ID, domain.PortSource, domain.PortTarget)
			}
		}
	}
	return &c, nil
}

// LoadCatalog reads and parses a YAML catalog file.
func LoadCatalog(path string) (*Catalog, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read catalog: %w", err)
	}
	return ParseCatalog(data)
}
