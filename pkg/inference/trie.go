/*
Author: KleaSCM
Email: KleaSCM@gmail.com
File: trie.go
Description: Prefix tree over dotted symbol paths. Purely structural: each node maps a
path component to its child and remembers insertion order, which is the intrinsic
iteration order seen by the type inference pass.
*/

package inference

import "strings"

// TrieNode is a node of the path tree
type TrieNode struct {
	children map[string]*TrieNode
	keys     []string
}

// NewTrieNode creates an empty node
func NewTrieNode() *TrieNode {
	return &TrieNode{children: make(map[string]*TrieNode)}
}

// Child returns the child stored under key
func (n *TrieNode) Child(key string) (*TrieNode, bool) {
	c, ok := n.children[key]
	return c, ok
}

// Keys returns the child keys in insertion order
func (n *TrieNode) Keys() []string {
	return append([]string(nil), n.keys...)
}

// Len returns the number of direct children
func (n *TrieNode) Len() int {
	return len(n.keys)
}

// childOrCreate descends into key, creating the child if needed
func (n *TrieNode) childOrCreate(key string) *TrieNode {
	if c, ok := n.children[key]; ok {
		return c
	}
	c := NewTrieNode()
	n.children[key] = c
	n.keys = append(n.keys, key)
	return c
}

// PathTree is a prefix tree keyed by dotted path component
type PathTree struct {
	Root *TrieNode
}

// NewPathTree creates a tree holding only the root
func NewPathTree() *PathTree {
	return &PathTree{Root: NewTrieNode()}
}

// BuildPathTree inserts every path into a new tree
func BuildPathTree(paths []string) *PathTree {
	t := NewPathTree()
	for _, p := range paths {
		t.Insert(p)
	}
	return t
}

// Insert adds a dotted path. Inserting an existing path is a no-op.
func (t *PathTree) Insert(path string) {
	node := t.Root
	for _, key := range strings.Split(path, ".") {
		node = node.childOrCreate(key)
	}
}

// Size returns the number of nodes, excluding the root
func (t *PathTree) Size() int {
	count := 0
	stack := []*TrieNode{t.Root}
	for len(stack) > 0 {
		n := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		count += len(n.keys)
		for _, k := range n.keys {
			stack = append(stack, n.children[k])
		}
	}
	return count
}

// Depth returns the length of the longest root-to-leaf path in edges
func (t *PathTree) Depth() int {
	var depth func(*TrieNode) int
	depth = func(n *TrieNode) int {
		best := 0
		for _, k := range n.keys {
			if d := 1 + depth(n.children[k]); d > best {
				best = d
			}
		}
		return best
	}
	return depth(t.Root)
}
