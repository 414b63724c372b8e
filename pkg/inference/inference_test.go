/*
Author: KleaSCM
Email: KleaSCM@gmail.com
File: inference_test.go
Description: Tests for the entity model: type names, text encoding, lookup helpers and
tree summaries.
*/

package inference

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEntityTypeNames(t *testing.T) {
	assert.Equal(t, "CLASS", EntityClass.String())
	assert.Equal(t, "METHOD", EntityMethod.String())
	assert.Equal(t, "UNKNOWN", EntityUnknown.String())
	assert.Equal(t, "EntityType(99)", EntityType(99).String())

	for _, typ := range AllEntityTypes() {
		parsed, err := ParseEntityType(typ.String())
		require.NoError(t, err)
		assert.Equal(t, typ, parsed)
	}

	parsed, err := ParseEntityType(" package ")
	require.NoError(t, err)
	assert.Equal(t, EntityPackage, parsed)

	_, err = ParseEntityType("struct")
	assert.Error(t, err)
}

func TestEntityJSONOmitsParent(t *testing.T) {
	root := infer("Cls.__init__")

	data, err := json.Marshal(root.Find("Cls"))
	require.NoError(t, err)
	assert.JSONEq(t, `{"name":"Cls","type":"CLASS","children":[{"name":"__init__","type":"METHOD"}]}`, string(data))
}

func TestRelinkAfterDecode(t *testing.T) {
	root := infer("pkg.sub.Cls.__init__")

	data, err := json.Marshal(root)
	require.NoError(t, err)

	var decoded Entity
	require.NoError(t, json.Unmarshal(data, &decoded))
	Relink(&decoded)

	ctor := decoded.Find("pkg.sub.Cls.__init__")
	require.NotNil(t, ctor)
	assert.Equal(t, "pkg.sub.Cls.__init__", ctor.Path())
	assert.Equal(t, EntityMethod, ctor.Type)
	assert.Same(t, &decoded, decoded.Children[0].Parent)
}

func TestEntityFind(t *testing.T) {
	root := infer("a.b.c")

	assert.NotNil(t, root.Find("a.b"))
	assert.Nil(t, root.Find("a.x"))
	assert.Nil(t, root.Find("b"))
	assert.Equal(t, "UNKNOWN: c", root.Find("a.b.c").String())
}

func TestEntityWalkSkipsSubtree(t *testing.T) {
	root := infer("a.b.c", "d.e")

	var visited []string
	root.Walk(func(e *Entity, _ int) bool {
		visited = append(visited, e.Path())
		return e.Name != "a"
	})
	assert.Equal(t, []string{"a", "d", "d.e"}, visited)
}

func TestSummarize(t *testing.T) {
	root := infer("pkg.sub.Cls.__init__", "pkg.sub.Cls.run")

	s := Summarize(root)
	assert.Equal(t, 5, s.Entities)
	assert.Equal(t, 4, s.MaxDepth)
	assert.Equal(t, map[string]int{"PACKAGE": 1, "MODULE": 1, "CLASS": 1, "METHOD": 2}, s.ByType)
}
