/*
Author: KleaSCM
Email: KleaSCM@gmail.com
File: inference.go
Description: Entity model for reconstructed Python hierarchies. Defines the entity
types (class, module, package, method, ...) and the Entity tree produced by the type
inference pass, together with traversal and lookup helpers used by reporting and export.
*/

package inference

import (
	"fmt"
	"strings"
)

// EntityType is the heuristic role of a reconstructed symbol
type EntityType int

const (
	EntityClass EntityType = iota
	EntityFunction
	EntityMethod
	EntityVariable
	EntityConstant
	EntityModule
	EntityPackage
	EntityImport
	EntityDocstring
	EntityComment
	EntityUnknown
	EntityRoot // synthetic root, never rendered
)

var entityTypeNames = map[EntityType]string{
	EntityClass:     "CLASS",
	EntityFunction:  "FUNCTION",
	EntityMethod:    "METHOD",
	EntityVariable:  "VARIABLE",
	EntityConstant:  "CONSTANT",
	EntityModule:    "MODULE",
	EntityPackage:   "PACKAGE",
	EntityImport:    "IMPORT",
	EntityDocstring: "DOCSTRING",
	EntityComment:   "COMMENT",
	EntityUnknown:   "UNKNOWN",
	EntityRoot:      "ROOT",
}

// AllEntityTypes lists the renderable entity types in declaration order
func AllEntityTypes() []EntityType {
	return []EntityType{
		EntityClass, EntityFunction, EntityMethod, EntityVariable, EntityConstant,
		EntityModule, EntityPackage, EntityImport, EntityDocstring, EntityComment,
		EntityUnknown,
	}
}

// String returns the upper-case name of the type
func (t EntityType) String() string {
	if name, ok := entityTypeNames[t]; ok {
		return name
	}
	return fmt.Sprintf("EntityType(%d)", int(t))
}

// MarshalText encodes the type by name for JSON and YAML output
func (t EntityType) MarshalText() ([]byte, error) {
	if _, ok := entityTypeNames[t]; !ok {
		return nil, fmt.Errorf("unknown entity type %d", int(t))
	}
	return []byte(t.String()), nil
}

// UnmarshalText decodes a type name, case-insensitively
func (t *EntityType) UnmarshalText(text []byte) error {
	parsed, err := ParseEntityType(string(text))
	if err != nil {
		return err
	}
	*t = parsed
	return nil
}

// ParseEntityType resolves a type name such as "method" or "CLASS"
func ParseEntityType(name string) (EntityType, error) {
	upper := strings.ToUpper(strings.TrimSpace(name))
	for t, n := range entityTypeNames {
		if n == upper {
			return t, nil
		}
	}
	return EntityUnknown, fmt.Errorf("unknown entity type: %q", name)
}

// Entity is a typed node of the reconstructed hierarchy.
// Parent is a non-owning back reference; the tree is owned through Children.
type Entity struct {
	Name      string     `json:"name" yaml:"name"`
	Type      EntityType `json:"type" yaml:"type"`
	Docstring string     `json:"docstring,omitempty" yaml:"docstring,omitempty"`
	Comments  []string   `json:"comments,omitempty" yaml:"comments,omitempty"`
	Parent    *Entity    `json:"-" yaml:"-"`
	Children  []*Entity  `json:"children,omitempty" yaml:"children,omitempty"`
}

// NewRoot creates the synthetic root entity
func NewRoot() *Entity {
	return &Entity{Name: "root", Type: EntityRoot}
}

// Relink restores the Parent pointers below e after decoding, since they are not serialized
func Relink(e *Entity) {
	if e == nil {
		return
	}
	for _, c := range e.Children {
		c.Parent = e
		Relink(c)
	}
}

// IsRoot reports whether e is the synthetic root
func (e *Entity) IsRoot() bool {
	return e.Parent == nil
}

// String renders the entity as "TYPE: name"
func (e *Entity) String() string {
	return fmt.Sprintf("%s: %s", e.Type, e.Name)
}

// Path returns the dotted path from the root to e, excluding the root
func (e *Entity) Path() string {
	var parts []string
	for cur := e; cur != nil && !cur.IsRoot(); cur = cur.Parent {
		parts = append(parts, cur.Name)
	}
	for i, j := 0, len(parts)-1; i < j; i, j = i+1, j-1 {
		parts[i], parts[j] = parts[j], parts[i]
	}
	return strings.Join(parts, ".")
}

// Depth returns the number of edges between the root and e
func (e *Entity) Depth() int {
	depth := 0
	for cur := e; cur != nil && !cur.IsRoot(); cur = cur.Parent {
		depth++
	}
	return depth
}

// Child returns the direct child with the given name
func (e *Entity) Child(name string) *Entity {
	for _, c := range e.Children {
		if c.Name == name {
			return c
		}
	}
	return nil
}

// Find resolves a dotted path relative to e
func (e *Entity) Find(path string) *Entity {
	cur := e
	for _, part := range strings.Split(path, ".") {
		if cur = cur.Child(part); cur == nil {
			return nil
		}
	}
	return cur
}

// Walk visits every descendant of e in pre-order with its depth relative to e
// (direct children have depth 1). Returning false from fn skips that subtree.
func (e *Entity) Walk(fn func(entity *Entity, depth int) bool) {
	var visit func(*Entity, int)
	visit = func(n *Entity, depth int) {
		for _, c := range n.Children {
			if fn(c, depth) {
				visit(c, depth+1)
			}
		}
	}
	visit(e, 1)
}

// Summary holds aggregate counts over an entity tree
type Summary struct {
	Entities int            `json:"entities" yaml:"entities"`
	MaxDepth int            `json:"max_depth" yaml:"max_depth"`
	ByType   map[string]int `json:"by_type" yaml:"by_type"`
}

// Summarize counts the descendants of root by type
func Summarize(root *Entity) Summary {
	s := Summary{ByType: make(map[string]int)}
	root.Walk(func(e *Entity, depth int) bool {
		s.Entities++
		s.ByType[e.Type.String()]++
		if depth > s.MaxDepth {
			s.MaxDepth = depth
		}
		return true
	})
	return s
}
