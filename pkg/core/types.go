/*
Author: KleaSCM
Email: KleaSCM@gmail.com
File: types.go
Description: Core types for the cyskel analysis pipeline. Defines the per-file analysis
configuration, the analysis result handed to renderers, caches and exporters, the batch
statistics, and the interfaces the pipeline uses to talk to those collaborators.
*/

package core

import (
	"context"
	"errors"
	"fmt"
	"sync/atomic"
	"time"

	"github.com/kleascm/cyskel/pkg/extract"
	"github.com/kleascm/cyskel/pkg/inference"
	"github.com/kleascm/cyskel/pkg/symbols"
)

// ErrEmptyPath is returned when an analysis is requested without a file path
var ErrEmptyPath = errors.New("input path must not be empty")

// Config contains every tunable of a single-file analysis.
// It is treated as read-only once handed to an Analyzer and may be shared across goroutines.
type Config struct {
	Symbols symbols.Config       `json:"symbols" yaml:"symbols"` // Keyword tables for the string filters
	Collect extract.Options      `json:"extract" yaml:"extract"` // String collector thresholds
	Rules   []inference.TypeRule `json:"rules" yaml:"rules"`     // Name rules for initial entity types
	Report  ReportOptions        `json:"report" yaml:"report"`   // Rendering toggles
}

// ReportOptions holds output toggles carried alongside a result
type ReportOptions struct {
	ShowUnknown bool   `json:"show_unknown" yaml:"show_unknown"` // Render UNKNOWN entities
	IncludeRaw  bool   `json:"include_raw" yaml:"include_raw"`   // Append the full raw string set
	Format      string `json:"format" yaml:"format"`             // skel, json, yaml or html
}

// DefaultConfig returns the built-in analysis configuration
func DefaultConfig() Config {
	return Config{
		Symbols: symbols.DefaultConfig(),
		Collect: extract.DefaultOptions(),
		Rules:   inference.DefaultRules(),
		Report:  ReportOptions{Format: "skel"},
	}
}

// Validate checks the configuration before any file is touched
func (c Config) Validate() error {
	if err := c.Symbols.Validate(); err != nil {
		return fmt.Errorf("invalid symbol tables: %w", err)
	}
	if err := inference.ValidateRules(c.Rules); err != nil {
		return fmt.Errorf("invalid type rules: %w", err)
	}
	if c.Collect.MinLength < 0 {
		return fmt.Errorf("min_length must not be negative")
	}
	return nil
}

// StageStats records the size of the string set after each pipeline stage
type StageStats struct {
	Collected       int                 `json:"collected" yaml:"collected"`               // Unique strings from the collector
	AfterPrefilter  int                 `json:"after_prefilter" yaml:"after_prefilter"`   // After compiler artifact removal
	Filter          symbols.StageCounts `json:"filter" yaml:"filter"`                     // Symbol filter survivors per stage
	TrieNodes       int                 `json:"trie_nodes" yaml:"trie_nodes"`             // Path tree nodes excluding root
	TrieDepth       int                 `json:"trie_depth" yaml:"trie_depth"`             // Longest path in components
	Comments        int                 `json:"comments" yaml:"comments"`                 // Comment-like strings
	SharedLibraries int                 `json:"shared_libraries" yaml:"shared_libraries"` // Shared-library names
	SourceFiles     int                 `json:"source_files" yaml:"source_files"`         // Source filenames
}

// Result is the complete outcome of analyzing one binary.
// It is immutable once returned by the Analyzer.
type Result struct {
	RunID           string            `json:"run_id" yaml:"run_id"`
	Source          string            `json:"source" yaml:"source"`
	Digest          string            `json:"digest" yaml:"digest"`
	Size            int               `json:"size" yaml:"size"`
	AnalyzedAt      time.Time         `json:"analyzed_at" yaml:"analyzed_at"`
	Duration        time.Duration     `json:"duration" yaml:"duration"`
	Root            *inference.Entity `json:"root" yaml:"root"`
	Candidates      []string          `json:"candidates" yaml:"candidates"`
	Comments        []string          `json:"comments" yaml:"comments"`
	SharedLibraries []string          `json:"shared_libraries" yaml:"shared_libraries"`
	SourceFiles     []string          `json:"source_files" yaml:"source_files"`
	RawStrings      []string          `json:"raw_strings,omitempty" yaml:"raw_strings,omitempty"`
	Cached          bool              `json:"cached" yaml:"cached"`
	Stages          StageStats        `json:"stages" yaml:"stages"`
	Summary         inference.Summary `json:"summary" yaml:"summary"`
}

// BatchStats tracks a batch run.
// Counters are updated atomically by concurrent workers.
type BatchStats struct {
	Discovered int64         `json:"discovered"` // Eligible files found
	Analyzed   int64         `json:"analyzed"`   // Files analyzed successfully
	Cached     int64         `json:"cached"`     // Results served from the cache
	Failed     int64         `json:"failed"`     // Files that failed
	Entities   int64         `json:"entities"`   // Entities reconstructed across all files
	StartTime  time.Time     `json:"start_time"` // When the batch started
	Duration   time.Duration `json:"duration"`   // Total wall time
}

func (s *BatchStats) incDiscovered() { atomic.AddInt64(&s.Discovered, 1) }
func (s *BatchStats) incAnalyzed() { atomic.AddInt64(&s.Analyzed, 1) }
func (s *BatchStats) incCached() { atomic.AddInt64(&s.Cached, 1) }
func (s *BatchStats) incFailed() { atomic.AddInt64(&s.Failed, 1) }
func (s *BatchStats) addEntities(n int) { atomic.AddInt64(&s.Entities, int64(n)) }

// FileError pairs a failed file with its error
type FileError struct {
	Path string `json:"path"`
	Err  string `json:"error"`
}

// ResultCache stores results keyed by content digest and configuration fingerprint
type ResultCache interface {
	// Get returns a cached result, or ok=false on a miss
	Get(ctx context.Context, digest, fingerprint string) (*Result, bool, error)

	// Put stores a result
	Put(ctx context.Context, digest, fingerprint string, result *Result) error
}

// Renderer writes a result to its output format
type Renderer interface {
	// Render writes the report for result to path
	Render(result *Result, path string) error

	// Extension returns the report file suffix, including the dot
	Extension() string
}

// Exporter publishes results to an external store
type Exporter interface {
	// Export publishes a single result
	Export(ctx context.Context, result *Result) error
}
