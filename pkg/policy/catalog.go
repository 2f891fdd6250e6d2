package policy

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// Catalog is an immutable-at-load mapping from policy name to descriptor.
// The name order of the backing file is preserved for List.
type Catalog struct {
	names  []string
	byName map[string]*Descriptor
}

// Load reads and validates a catalog file. The file is a YAML (or JSON)
// mapping from policy name to descriptor. Any malformed entry aborts the
// load with a LoadError naming the entry.
func Load(path string) (*Catalog, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, &LoadError{Reason: fmt.Sprintf("read %q", path), Cause: err}
	}
	cat, err := Parse(data)
	if err != nil {
		return nil, err
	}
	return cat, nil
}

// Parse builds a catalog from raw YAML bytes, preserving the mapping order
// of the document.
func Parse(data []byte) (*Catalog, error) {
	var doc yaml.Node
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, &LoadError{Reason: "parse catalog", Cause: err}
	}
	if doc.Kind == 0 || len(doc.Content) == 0 {
		return nil, &LoadError{Reason: "catalog is empty"}
	}

	root := doc.Content[0]
	if root.Kind != yaml.MappingNode {
		return nil, &LoadError{Reason: "catalog must be a mapping of policy name to descriptor"}
	}

	cat := &Catalog{byName: make(map[string]*Descriptor, len(root.Content)/2)}
	for i := 0; i+1 < len(root.Content); i += 2 {
		keyNode, valNode := root.Content[i], root.Content[i+1]

		name := keyNode.Value
		if name == "" {
			return nil, &LoadError{Reason: fmt.Sprintf("empty policy name at line %d", keyNode.Line)}
		}
		if _, dup := cat.byName[name]; dup {
			return nil, &LoadError{Entry: name, Reason: "duplicate policy name"}
		}

		var desc Descriptor
		if err := valNode.Decode(&desc); err != nil {
			return nil, &LoadError{Entry: name, Reason: "decode descriptor", Cause: err}
		}
		desc.Name = name
		if err := desc.Validate(); err != nil {
			return nil, err
		}

		cat.names = append(cat.names, name)
		cat.byName[name] = &desc
	}

	if len(cat.names) == 0 {
		return nil, &LoadError{Reason: "catalog is empty"}
	}
	return cat, nil
}

// Resolve returns the descriptor for name, or a NotFoundError.
func (c *Catalog) Resolve(name string) (*Descriptor, error) {
	d, ok := c.byName[name]
	if !ok {
		return nil, &NotFoundError{Name: name}
	}
	return d, nil
}

// List returns policy names in catalog order.
func (c *Catalog) List() []string {
	out := make([]string, len(c.names))
	copy(out, c.names)
	return out
}

// All returns descriptors in catalog order.
func (c *Catalog) All() []*Descriptor {
	out := make([]*Descriptor, 0, len(c.names))
	for _, name := range c.names {
		out = append(out, c.byName[name])
	}
	return out
}

// Len returns the number of policies in the catalog.
func (c *Catalog) Len() int {
	return len(c.names)
}
