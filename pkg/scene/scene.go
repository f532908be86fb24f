// Package scene reads element trees from YAML.
//
// A scene names the assets to preload and a root node. Each node has a
// type, optional key, props and children; a bare string child is a text
// node. Slots hold element-valued props such as a Suspense fallback.
//
//	name: gallery
//	assets: [hero.png]
//	root:
//	  type: List
//	  props: {gap: 4}
//	  children:
//	    - type: sprite
//	      props: {src: hero.png}
//	    - Welcome
//
// Types found in the registry passed to [Scene.Element] become custom
// components; anything else is left as a host tag.
package scene

import (
	"bytes"
	"errors"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/go-drift/renderkit/pkg/core"
)

// TextTag is the tag used for bare string children.
const TextTag core.Tag = "text"

// Scene is a decoded scene file.
type Scene struct {
	Name   string   `yaml:"name,omitempty"`
	Assets []string `yaml:"assets,omitempty"`
	Root   *Node    `yaml:"root"`
}

// Node describes one element.
type Node struct {
	Type     string           `yaml:"type"`
	Key      any              `yaml:"key,omitempty"`
	Props    map[string]any   `yaml:"props,omitempty"`
	Slots    map[string]*Node `yaml:"slots,omitempty"`
	Children []*Node          `yaml:"children,omitempty"`
}

var nodeFields = map[string]bool{"type": true, "key": true, "props": true, "slots": true, "children": true}

// UnmarshalYAML accepts a plain string as a text node.
func (n *Node) UnmarshalYAML(value *yaml.Node) error {
	if value.Kind == yaml.ScalarNode {
		*n = Node{Type: string(TextTag), Props: map[string]any{"text": value.Value}}
		return nil
	}
	if value.Kind == yaml.MappingNode {
		for i := 0; i+1 < len(value.Content); i += 2 {
			if key := value.Content[i]; !nodeFields[key.Value] {
				return fmt.Errorf("line %d: unknown node field %q", key.Line, key.Value)
			}
		}
	}
	type plain Node
	var p plain
	if err := value.Decode(&p); err != nil {
		return err
	}
	*n = Node(p)
	return nil
}

// Parse decodes a scene. Unknown fields are rejected.
func Parse(data []byte) (*Scene, error) {
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	var s Scene
	if err := dec.Decode(&s); err != nil {
		return nil, fmt.Errorf("parse scene: %w", err)
	}
	if s.Root == nil {
		return nil, errors.New("parse scene: missing root")
	}
	return &s, nil
}

// Load reads and parses the scene at path.
func Load(path string) (*Scene, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read scene: %w", err)
	}
	s, err := Parse(data)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return s, nil
}

// Element builds the element tree, resolving types through registry.
func (s *Scene) Element(registry map[core.Tag]*core.ComponentType) (*core.Element, error) {
	return s.Root.element(registry, "root")
}

func (n *Node) element(registry map[core.Tag]*core.ComponentType, path string) (*core.Element, error) {
	if n == nil {
		return nil, fmt.Errorf("%s: empty node", path)
	}
	if n.Type == "" {
		return nil, fmt.Errorf("%s: missing type", path)
	}
	var typ core.Type = core.Tag(n.Type)
	if ctype, ok := registry[core.Tag(n.Type)]; ok {
		typ = ctype
	}

	props := make(core.Props, len(n.Props)+len(n.Slots)+1)
	for k, v := range n.Props {
		props[k] = normalize(v)
	}
	for name, slot := range n.Slots {
		el, err := slot.element(registry, path+"."+name)
		if err != nil {
			return nil, err
		}
		props[name] = el
	}
	if n.Key != nil {
		props[core.KeyProp] = n.Key
	}

	children := make([]*core.Element, 0, len(n.Children))
	for i, child := range n.Children {
		el, err := child.element(registry, fmt.Sprintf("%s.%s[%d]", path, n.Type, i))
		if err != nil {
			return nil, err
		}
		children = append(children, el)
	}
	return core.H(typ, props, children...), nil
}

// normalize turns YAML sequences of strings into []string, which is what
// list-valued props such as "urls" expect.
func normalize(v any) any {
	switch v := v.(type) {
	case []any:
		strs := make([]string, 0, len(v))
		for _, item := range v {
			s, ok := item.(string)
			if !ok {
				out := make([]any, len(v))
				for i, item := range v {
					out[i] = normalize(item)
				}
				return out
			}
			strs = append(strs, s)
		}
		return strs
	case map[string]any:
		out := make(map[string]any, len(v))
		for k, item := range v {
			out[k] = normalize(item)
		}
		return out
	}
	return v
}
