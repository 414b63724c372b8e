/*
Author: KleaSCM
Email: KleaSCM@gmail.com
File: engine_test.go
Description: Tests for the path tree and the breadth-first type inference pass:
propagation to ancestors, the class-children override, sibling ordering, idempotence
and degenerate inputs.
*/

package inference

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func infer(paths ...string) *Entity {
	return NewTypeInferenceEngine(nil).Infer(BuildPathTree(paths))
}

func childNames(e *Entity) []string {
	names := make([]string, 0, len(e.Children))
	for _, c := range e.Children {
		names = append(names, c.Name)
	}
	return names
}

func TestPathTreeBuild(t *testing.T) {
	tree := BuildPathTree([]string{"a.b.c", "a.b.d", "x"})

	assert.Equal(t, []string{"a", "x"}, tree.Root.Keys())
	a, ok := tree.Root.Child("a")
	require.True(t, ok)
	b, ok := a.Child("b")
	require.True(t, ok)
	assert.Equal(t, []string{"c", "d"}, b.Keys())

	assert.Equal(t, 5, tree.Size())
	assert.Equal(t, 3, tree.Depth())
}

func TestPathTreeInsertIdempotent(t *testing.T) {
	tree := BuildPathTree([]string{"a.b.c"})
	before := tree.Size()

	tree.Insert("a.b.c")
	tree.Insert("a.b")
	assert.Equal(t, before, tree.Size())
}

func TestPathTreeKeepsInsertionOrder(t *testing.T) {
	tree := BuildPathTree([]string{"z.y", "m.n", "a.b"})
	assert.Equal(t, []string{"z", "m", "a"}, tree.Root.Keys())
}

func TestDetermineType(t *testing.T) {
	e := NewTypeInferenceEngine(nil)

	assert.Equal(t, EntityMethod, e.DetermineType("__init__"))
	assert.Equal(t, EntityMethod, e.DetermineType("__new__"))
	assert.Equal(t, EntityMethod, e.DetermineType("__pyx_pw___init__"))
	assert.Equal(t, EntityUnknown, e.DetermineType("method2"))
	assert.Equal(t, EntityUnknown, e.DetermineType("__call__"))
}

func TestDetermineTypeCustomRules(t *testing.T) {
	e := NewTypeInferenceEngine([]TypeRule{
		{Substrings: []string{"CONST_"}, Type: EntityConstant},
		{Substrings: []string{"__init__"}, Type: EntityMethod},
	})

	assert.Equal(t, EntityConstant, e.DetermineType("CONST_MAX"))
	assert.Equal(t, EntityMethod, e.DetermineType("__init__"))
	assert.Equal(t, EntityUnknown, e.DetermineType("__new__"))
}

func TestInferTypePropagation(t *testing.T) {
	root := infer("pkg.sub.Cls.__init__", "pkg.sub.Cls.method2")

	assert.Equal(t, EntityRoot, root.Type)
	assert.Equal(t, EntityPackage, root.Find("pkg").Type)
	assert.Equal(t, EntityModule, root.Find("pkg.sub").Type)
	assert.Equal(t, EntityClass, root.Find("pkg.sub.Cls").Type)
	assert.Equal(t, EntityMethod, root.Find("pkg.sub.Cls.__init__").Type)
	assert.Equal(t, EntityMethod, root.Find("pkg.sub.Cls.method2").Type)
}

func TestInferDeepPropagationMarksAllPackages(t *testing.T) {
	root := infer("top.mid.low.mod.Cls.__new__")

	assert.Equal(t, EntityPackage, root.Find("top").Type)
	assert.Equal(t, EntityPackage, root.Find("top.mid").Type)
	assert.Equal(t, EntityPackage, root.Find("top.mid.low").Type)
	assert.Equal(t, EntityModule, root.Find("top.mid.low.mod").Type)
	assert.Equal(t, EntityClass, root.Find("top.mid.low.mod.Cls").Type)
}

func TestInferTwoLevelPath(t *testing.T) {
	root := infer("a.b.__init__", "a.b.foo")

	a := root.Find("a")
	require.NotNil(t, a)
	// a is the method's grandparent and sits directly under the root
	assert.Equal(t, EntityModule, a.Type)

	b := root.Find("a.b")
	require.NotNil(t, b)
	assert.Equal(t, EntityClass, b.Type)
	assert.Equal(t, []string{"__init__", "foo"}, childNames(b))
	for _, c := range b.Children {
		assert.Equal(t, EntityMethod, c.Type)
	}
}

func TestInferTopLevelClass(t *testing.T) {
	root := infer("Widget.__init__", "Widget.render")

	w := root.Find("Widget")
	assert.Equal(t, EntityClass, w.Type)
	assert.Equal(t, EntityMethod, root.Find("Widget.render").Type)
	assert.Equal(t, EntityRoot, root.Type)
}

func TestInferMethodDirectlyUnderRoot(t *testing.T) {
	root := infer("__init__.py_helper", "other.thing")

	assert.Equal(t, EntityRoot, root.Type)
	init := root.Find("__init__")
	require.NotNil(t, init)
	assert.Equal(t, EntityMethod, init.Type)
	// the root is never a class, so its other children keep their own types
	assert.Equal(t, EntityUnknown, root.Find("other").Type)
}

func TestInferDeeperMethodWins(t *testing.T) {
	// a.B is a class first; discovering a method under a.B.c later turns
	// a.B into a module and a into a package
	root := infer("a.B.__init__", "a.B.c.__init__")

	assert.Equal(t, EntityPackage, root.Find("a").Type)
	assert.Equal(t, EntityModule, root.Find("a.B").Type)
	assert.Equal(t, EntityClass, root.Find("a.B.c").Type)
	assert.Equal(t, EntityMethod, root.Find("a.B.__init__").Type)
}

func TestInferUnknownWithoutMethods(t *testing.T) {
	root := infer("x.y.z")

	root.Walk(func(e *Entity, _ int) bool {
		assert.Equal(t, EntityUnknown, e.Type, e.Path())
		return true
	})
}

func TestInferSiblingOrdering(t *testing.T) {
	root := infer("m.zeta", "m.alpha", "m.Beta", "b.x", "a.y")

	assert.Equal(t, []string{"a", "b", "m"}, childNames(root))
	assert.Equal(t, []string{"Beta", "alpha", "zeta"}, childNames(root.Find("m")))

	root.Walk(func(e *Entity, _ int) bool {
		names := childNames(e)
		for i := 1; i < len(names); i++ {
			assert.LessOrEqual(t, names[i-1], names[i])
		}
		return true
	})
}

func TestInferIdempotent(t *testing.T) {
	paths := []string{"pkg.sub.Cls.__init__", "pkg.sub.Cls.run", "pkg.util.helper", "other.Base.__new__"}
	reversed := []string{paths[3], paths[2], paths[1], paths[0]}

	first := infer(paths...)
	second := infer(paths...)
	third := infer(reversed...)

	assert.Equal(t, first, second)
	assert.Equal(t, first, third)
}

func TestInferEmptyTree(t *testing.T) {
	root := NewTypeInferenceEngine(nil).Infer(NewPathTree())

	assert.Equal(t, EntityRoot, root.Type)
	assert.Empty(t, root.Children)
	assert.True(t, root.IsRoot())
}

func TestInferParentLinks(t *testing.T) {
	root := infer("pkg.sub.Cls.__init__", "pkg.other")

	root.Walk(func(e *Entity, depth int) bool {
		require.NotNil(t, e.Parent)
		assert.Contains(t, e.Parent.Children, e)
		assert.Equal(t, depth, e.Depth())
		return true
	})
	assert.Equal(t, "pkg.sub.Cls.__init__", root.Find("pkg.sub.Cls.__init__").Path())
}

func TestValidateRules(t *testing.T) {
	require.NoError(t, ValidateRules(DefaultRules()))

	assert.Error(t, ValidateRules([]TypeRule{{Substrings: []string{"x"}, Type: EntityRoot}}))
	assert.Error(t, ValidateRules([]TypeRule{{Type: EntityMethod}}))
	assert.Error(t, ValidateRules([]TypeRule{{Substrings: []string{""}, Type: EntityMethod}}))
}
