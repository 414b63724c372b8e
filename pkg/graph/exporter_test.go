/*
Author: KleaSCM
Email: KleaSCM@gmail.com
File: exporter_test.go
Description: Tests for the Neo4j exporter's row building and driver setup. Queries
against a live server are not exercised here.
*/

package graph

import (
	"context"
	"fmt"
	"strings"
	"testing"

	"github.com/kleascm/cyskel/pkg/core"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func sampleResult(t *testing.T) *core.Result {
	t.Helper()
	analyzer, err := core.NewAnalyzer(core.DefaultConfig(), nil)
	require.NoError(t, err)
	return analyzer.AnalyzeStrings("/bins/mod.so", []string{
		"pkg.sub.Cls.__init__",
		"pkg.sub.Cls.run",
		"libc.so.6",
	})
}

func TestBuildRows(t *testing.T) {
	result := sampleResult(t)
	rows := BuildRows(result)

	assert.Equal(t, "/bins/mod.so", rows.Binary["source"])
	assert.Equal(t, []string{}, rows.Binary["comments"])

	require.Len(t, rows.Entities, 5)
	first := rows.Entities[0]
	assert.Equal(t, "/bins/mod.so#pkg", first["key"])
	assert.Equal(t, "PACKAGE", first["type"])
	assert.Equal(t, 1, first["depth"])

	last := rows.Entities[4]
	assert.Equal(t, "pkg.sub.Cls.run", last["path"])
	assert.Equal(t, "METHOD", last["type"])
	assert.Equal(t, 4, last["depth"])

	assert.Equal(t, []map[string]any{{"child": "/bins/mod.so#pkg", "source": "/bins/mod.so"}}, rows.TopLevel)
	require.Len(t, rows.Edges, 4)
	assert.Equal(t, map[string]any{
		"parent": "/bins/mod.so#pkg.sub.Cls",
		"child":  "/bins/mod.so#pkg.sub.Cls.__init__",
	}, rows.Edges[2])

	assert.Equal(t, []map[string]any{{"name": "libc.so.6", "source": "/bins/mod.so"}}, rows.Libraries)
}

func TestBuildRowsEmptyResult(t *testing.T) {
	rows := BuildRows(&core.Result{Source: "empty.so"})

	assert.Empty(t, rows.Entities)
	assert.Empty(t, rows.TopLevel)
	assert.Empty(t, rows.Edges)
	assert.Empty(t, rows.Libraries)
	assert.Equal(t, []string{}, rows.Binary["source_files"])
}

func TestChunks(t *testing.T) {
	rows := make([]map[string]any, batchSize*2+1)
	for i := range rows {
		rows[i] = map[string]any{"key": fmt.Sprint(i)}
	}

	out := chunks(rows)
	require.Len(t, out, 3)
	assert.Len(t, out[0], batchSize)
	assert.Len(t, out[2], 1)
	assert.Empty(t, chunks(nil))
}

func TestSchemaMakesMergeKeysUnique(t *testing.T) {
	for _, key := range []string{"(n:Binary) REQUIRE n.source", "(n:PyEntity) REQUIRE n.key", "(n:SharedLibrary) REQUIRE n.name"} {
		found := false
		for _, q := range schema {
			if strings.Contains(q, key) {
				found = true
				assert.True(t, strings.HasPrefix(q, "CREATE CONSTRAINT"), q)
				assert.True(t, strings.HasSuffix(q, "IS UNIQUE"), q)
			}
		}
		assert.True(t, found, key)
	}
	for _, q := range schema {
		assert.Contains(t, q, "IF NOT EXISTS")
	}
}

func TestNewExporter(t *testing.T) {
	_, err := NewExporter(Config{}, nil)
	assert.Error(t, err)
	assert.False(t, Config{}.Enabled())

	_, err = NewExporter(Config{URI: "ftp://localhost"}, nil)
	assert.Error(t, err)

	exporter, err := NewExporter(Config{URI: "neo4j://localhost:7687", User: "neo4j", Password: "secret"}, nil)
	require.NoError(t, err)
	assert.NoError(t, exporter.Close(context.Background()))
}
