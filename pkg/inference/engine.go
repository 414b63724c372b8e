/*
Author: KleaSCM
Email: KleaSCM@gmail.com
File: engine.go
Description: Type inference over the path tree. A single breadth-first pass
materializes entities from trie nodes, assigns initial types from a name rule table,
propagates classification to ancestors when a method is found, forces children of
classes to methods and sorts siblings by name.
*/

package inference

import (
	"fmt"
	"sort"
	"strings"
)

// TypeRule maps keys containing any of Substrings to Type
type TypeRule struct {
	Substrings []string   `json:"substrings" yaml:"substrings"`
	Type       EntityType `json:"type" yaml:"type"`
}

// DefaultRules returns the built-in rule table: constructors mark methods
func DefaultRules() []TypeRule {
	return []TypeRule{
		{Substrings: []string{"__init__", "__new__"}, Type: EntityMethod},
	}
}

// ValidateRules rejects rules that could never match or would label a node as the root
func ValidateRules(rules []TypeRule) error {
	for i, r := range rules {
		if r.Type == EntityRoot {
			return fmt.Errorf("rule %d: %s is reserved for the synthetic root", i, r.Type)
		}
		if len(r.Substrings) == 0 {
			return fmt.Errorf("rule %d: no substrings", i)
		}
		for _, s := range r.Substrings {
			if s == "" {
				return fmt.Errorf("rule %d: empty substring", i)
			}
		}
	}
	return nil
}

// TypeInferenceEngine labels path tree nodes with entity types
type TypeInferenceEngine struct {
	rules []TypeRule
}

// NewTypeInferenceEngine creates an engine; nil rules selects DefaultRules
func NewTypeInferenceEngine(rules []TypeRule) *TypeInferenceEngine {
	if rules == nil {
		rules = DefaultRules()
	}
	return &TypeInferenceEngine{rules: rules}
}

// Rules returns the active rule table
func (e *TypeInferenceEngine) Rules() []TypeRule {
	return e.rules
}

// DetermineType returns the type of the first rule matching key, or EntityUnknown
func (e *TypeInferenceEngine) DetermineType(key string) EntityType {
	for _, r := range e.rules {
		for _, s := range r.Substrings {
			if strings.Contains(key, s) {
				return r.Type
			}
		}
	}
	return EntityUnknown
}

type pending struct {
	entity *Entity
	node   *TrieNode
}

// Infer walks tree breadth-first and returns the root of the typed entity tree.
// Every trie node is visited exactly once.
func (e *TypeInferenceEngine) Infer(tree *PathTree) *Entity {
	root := NewRoot()
	queue := []pending{{entity: root, node: tree.Root}}

	for len(queue) > 0 {
		item := queue[0]
		queue = queue[1:]
		parent := item.entity

		for _, key := range item.node.keys {
			child := &Entity{
				Name:   key,
				Type:   e.DetermineType(key),
				Parent: parent,
			}
			parent.Children = append(parent.Children, child)

			if child.Type == EntityMethod {
				propagateUp(parent)
			}

			queue = append(queue, pending{entity: child, node: item.node.children[key]})
		}

		// A class never reports non-method children
		if parent.Type == EntityClass {
			for _, c := range parent.Children {
				c.Type = EntityMethod
			}
		}

		sort.SliceStable(parent.Children, func(i, j int) bool {
			return parent.Children[i].Name < parent.Children[j].Name
		})
	}

	return root
}

// propagateUp marks the owner of a method as a class, its parent as a module and
// every further ancestor as a package, stopping before the root.
// It re-runs for each method found; the assignments are idempotent.
func propagateUp(owner *Entity) {
	if owner.IsRoot() {
		return
	}
	owner.Type = EntityClass

	ancestor := owner.Parent
	if ancestor.IsRoot() {
		return
	}
	ancestor.Type = EntityModule

	for ancestor = ancestor.Parent; !ancestor.IsRoot(); ancestor = ancestor.Parent {
		ancestor.Type = EntityPackage
	}
}
