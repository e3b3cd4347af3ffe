// Code specific to parsing YAML into node trees.
//
// yaml.v3 exposes documents as *yaml.Node graphs whose mapping nodes keep
// the order of the source, which is exactly what keyed nodes need.
package yaml

import (
	"fmt"

	"gopkg.in/yaml.v3"

	"github.com/gentype-io/gentype/deserialize/node"
)

// The parsing driver for YAML.
type Driver struct{}

// Parse parses a YAML document into a node tree.
func (Driver) Parse(buf []byte) (node.Value, error) {
	return Parse(buf)
}

var _ node.Driver = Driver{}

// Parse parses a YAML document into a node tree.
func Parse(buf []byte) (node.Value, error) {
	var root yaml.Node
	if err := yaml.Unmarshal(buf, &root); err != nil {
		return nil, fmt.Errorf("invalid YAML:\n\t * %w", err)
	}
	if root.Kind == 0 || len(root.Content) == 0 {
		return node.Null(), nil
	}
	return fromYAML(root.Content[0])
}

func fromYAML(n *yaml.Node) (node.Value, error) {
	switch n.Kind {
	case yaml.MappingNode:
		object := node.NewObject()
		for i := 0; i+1 < len(n.Content); i += 2 {
			keyNode, valueNode := n.Content[i], n.Content[i+1]
			var key string
			if err := keyNode.Decode(&key); err != nil {
				return nil, fmt.Errorf("invalid YAML mapping key at line %d:\n\t * %w", keyNode.Line, err)
			}
			value, err := fromYAML(valueNode)
			if err != nil {
				return nil, err
			}
			object.Set(key, value)
		}
		return object.AsValue(), nil
	case yaml.SequenceNode:
		list := make(node.List, 0, len(n.Content))
		for _, item := range n.Content {
			value, err := fromYAML(item)
			if err != nil {
				return nil, err
			}
			list = append(list, value)
		}
		return list, nil
	case yaml.ScalarNode:
		var scalar any
		if err := n.Decode(&scalar); err != nil {
			return nil, fmt.Errorf("invalid YAML scalar at line %d:\n\t * %w", n.Line, err)
		}
		return node.Of(normalizeScalar(scalar)), nil
	case yaml.AliasNode:
		return fromYAML(n.Alias)
	}
	return nil, fmt.Errorf("unsupported YAML node kind %d at line %d", n.Kind, n.Line)
}

// normalizeScalar aligns YAML's scalar types with the JSON driver's: both
// produce int64 for integral numbers.
func normalizeScalar(v any) any {
	if i, ok := v.(int); ok {
		return int64(i)
	}
	return v
}
