/*
Author: KleaSCM
Email: KleaSCM@gmail.com
File: exporter.go
Description: Neo4j exporter for reconstructed skeletons. Upserts one Binary node per
analyzed file, a PyEntity node per reconstructed entity linked by HAS_CHILD edges, and
the shared libraries the binary references, using batched UNWIND queries.
*/

package graph

import (
	"context"
	"fmt"

	"github.com/kleascm/cyskel/pkg/core"
	"github.com/kleascm/cyskel/pkg/inference"
	"github.com/neo4j/neo4j-go-driver/v5/neo4j"
	"github.com/sirupsen/logrus"
)

// batchSize bounds the rows sent in a single UNWIND statement
const batchSize = 500

// Config holds the Neo4j connection settings
type Config struct {
	URI      string `json:"uri" mapstructure:"uri"`           // Bolt URI, e.g. neo4j://localhost:7687
	User     string `json:"user" mapstructure:"user"`         // Basic auth user
	Password string `json:"-" mapstructure:"password"`        // Basic auth password
	Database string `json:"database" mapstructure:"database"` // Target database (empty = server default)
}

// Enabled reports whether an export target is configured
func (c Config) Enabled() bool {
	return c.URI != ""
}

// Exporter publishes results to Neo4j. It implements core.Exporter.
type Exporter struct {
	driver   neo4j.DriverWithContext
	database string
	logger   *logrus.Logger
}

// NewExporter creates a driver for config. No connection is made until first use.
func NewExporter(config Config, logger *logrus.Logger) (*Exporter, error) {
	if !config.Enabled() {
		return nil, fmt.Errorf("neo4j uri is not configured")
	}
	if logger == nil {
		logger = logrus.New()
	}

	driver, err := neo4j.NewDriverWithContext(config.URI, neo4j.BasicAuth(config.User, config.Password, ""))
	if err != nil {
		return nil, fmt.Errorf("failed to create neo4j driver: %w", err)
	}
	return &Exporter{driver: driver, database: config.Database, logger: logger}, nil
}

// VerifyConnectivity checks that the server is reachable with the configured credentials
func (e *Exporter) VerifyConnectivity(ctx context.Context) error {
	if err := e.driver.VerifyConnectivity(ctx); err != nil {
		return fmt.Errorf("neo4j unreachable: %w", err)
	}
	return nil
}

// Close releases the driver
func (e *Exporter) Close(ctx context.Context) error {
	return e.driver.Close(ctx)
}

// schema lists the constraints and indexes Export relies on. MERGE keys are unique
// constraints so concurrent batch workers cannot create duplicate nodes.
var schema = []string{
	"CREATE CONSTRAINT cyskel_binary_source_unique IF NOT EXISTS FOR (n:Binary) REQUIRE n.source IS UNIQUE",
	"CREATE CONSTRAINT cyskel_entity_key_unique IF NOT EXISTS FOR (n:PyEntity) REQUIRE n.key IS UNIQUE",
	"CREATE CONSTRAINT cyskel_library_name_unique IF NOT EXISTS FOR (n:SharedLibrary) REQUIRE n.name IS UNIQUE",
	"CREATE INDEX cyskel_entity_type IF NOT EXISTS FOR (n:PyEntity) ON (n.type)",
}

// CreateIndexes ensures the uniqueness constraints and lookup indexes used by Export exist
func (e *Exporter) CreateIndexes(ctx context.Context) error {
	for _, q := range schema {
		if err := e.run(ctx, q, nil); err != nil {
			return fmt.Errorf("failed to create schema: %w", err)
		}
	}
	return nil
}

// Export upserts the skeleton of result. Entities removed since an earlier export of
// the same source are detached first so the graph mirrors the latest run.
func (e *Exporter) Export(ctx context.Context, result *core.Result) error {
	rows := BuildRows(result)

	err := e.run(ctx,
		`MERGE (b:Binary {source: $binary.source})
		 SET b.digest = $binary.digest, b.run_id = $binary.run_id,
		     b.analyzed_at = $binary.analyzed_at, b.comments = $binary.comments,
		     b.source_files = $binary.source_files
		 WITH b
		 OPTIONAL MATCH (b)-[:DEFINES]->(:PyEntity)-[:HAS_CHILD*0..]->(old:PyEntity)
		 DETACH DELETE old`,
		map[string]any{"binary": rows.Binary},
	)
	if err != nil {
		return fmt.Errorf("failed to upsert binary: %w", err)
	}

	for _, chunk := range chunks(rows.Entities) {
		err := e.run(ctx,
			`UNWIND $batch AS row
			 MERGE (n:PyEntity {key: row.key})
			 SET n.name = row.name, n.path = row.path, n.type = row.type,
			     n.depth = row.depth, n.source = row.source`,
			map[string]any{"batch": chunk},
		)
		if err != nil {
			return fmt.Errorf("failed to upsert entities: %w", err)
		}
	}

	for _, chunk := range chunks(rows.TopLevel) {
		err := e.run(ctx,
			`UNWIND $batch AS row
			 MATCH (b:Binary {source: row.source}), (c:PyEntity {key: row.child})
			 MERGE (b)-[:DEFINES]->(c)`,
			map[string]any{"batch": chunk},
		)
		if err != nil {
			return fmt.Errorf("failed to link top-level entities: %w", err)
		}
	}

	for _, chunk := range chunks(rows.Edges) {
		err := e.run(ctx,
			`UNWIND $batch AS row
			 MATCH (p:PyEntity {key: row.parent}), (c:PyEntity {key: row.child})
			 MERGE (p)-[:HAS_CHILD]->(c)`,
			map[string]any{"batch": chunk},
		)
		if err != nil {
			return fmt.Errorf("failed to link entities: %w", err)
		}
	}

	if len(rows.Libraries) > 0 {
		err := e.run(ctx,
			`UNWIND $batch AS row
			 MERGE (l:SharedLibrary {name: row.name})
			 WITH l, row
			 MATCH (b:Binary {source: row.source})
			 MERGE (b)-[:LINKS]->(l)`,
			map[string]any{"batch": rows.Libraries},
		)
		if err != nil {
			return fmt.Errorf("failed to link shared libraries: %w", err)
		}
	}

	e.logger.WithFields(logrus.Fields{
		"file":      result.Source,
		"entities":  len(rows.Entities),
		"libraries": len(rows.Libraries),
	}).Debug("Skeleton exported to neo4j")
	return nil
}

// run executes a single Cypher statement
func (e *Exporter) run(ctx context.Context, cypher string, params map[string]any) error {
	var opts []neo4j.ExecuteQueryConfigurationOption
	if e.database != "" {
		opts = append(opts, neo4j.ExecuteQueryWithDatabase(e.database))
	}
	_, err := neo4j.ExecuteQuery(ctx, e.driver, cypher, params, neo4j.EagerResultTransformer, opts...)
	return err
}

// Rows are the query parameters derived from one result
type Rows struct {
	Binary    map[string]any
	Entities  []map[string]any
	TopLevel  []map[string]any // Binary DEFINES entity
	Edges     []map[string]any // entity HAS_CHILD entity
	Libraries []map[string]any
}

// BuildRows flattens result into query parameters. Entity keys combine the source
// path and the dotted entity path, so the same symbol in two binaries stays distinct.
func BuildRows(result *core.Result) Rows {
	rows := Rows{
		Binary: map[string]any{
			"source":       result.Source,
			"digest":       result.Digest,
			"run_id":       result.RunID,
			"analyzed_at":  result.AnalyzedAt.UTC().Format("2006-01-02T15:04:05Z07:00"),
			"comments":     nonNil(result.Comments),
			"source_files": nonNil(result.SourceFiles),
		},
	}

	if result.Root != nil {
		result.Root.Walk(func(ent *inference.Entity, depth int) bool {
			key := entityKey(result.Source, ent.Path())
			rows.Entities = append(rows.Entities, map[string]any{
				"key":    key,
				"name":   ent.Name,
				"path":   ent.Path(),
				"type":   ent.Type.String(),
				"depth":  depth,
				"source": result.Source,
			})

			if depth == 1 {
				rows.TopLevel = append(rows.TopLevel, map[string]any{
					"child":  key,
					"source": result.Source,
				})
			} else {
				rows.Edges = append(rows.Edges, map[string]any{
					"parent": entityKey(result.Source, ent.Parent.Path()),
					"child":  key,
				})
			}
			return true
		})
	}

	for _, lib := range result.SharedLibraries {
		rows.Libraries = append(rows.Libraries, map[string]any{
			"name":   lib,
			"source": result.Source,
		})
	}
	return rows
}

func entityKey(source, path string) string {
	return source + "#" + path
}

// nonNil avoids sending null for empty lists
func nonNil(items []string) []string {
	if items == nil {
		return []string{}
	}
	return items
}

func chunks(rows []map[string]any) [][]map[string]any {
	var out [][]map[string]any
	for start := 0; start < len(rows); start += batchSize {
		end := start + batchSize
		if end > len(rows) {
			end = len(rows)
		}
		out = append(out, rows[start:end])
	}
	return out
}
