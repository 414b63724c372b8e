/*
Author: KleaSCM
Email: KleaSCM@gmail.com
File: analyzer.go
Description: Single-file analysis pipeline. Reads a binary, collects its printable
strings, strips compiler artifacts, and runs the symbol filter, path tree and type
inference alongside the comment and filename classifiers to produce a Result.
*/

package core

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"os"
	"time"

	"github.com/google/uuid"
	"github.com/kleascm/cyskel/pkg/extract"
	"github.com/kleascm/cyskel/pkg/inference"
	"github.com/kleascm/cyskel/pkg/symbols"
	"github.com/sirupsen/logrus"
)

// Analyzer runs the reconstruction pipeline.
// All components are read-only after construction, so one Analyzer may serve many goroutines.
type Analyzer struct {
	config      Config
	fingerprint string
	logger      *logrus.Logger
	cache       ResultCache

	collector  *extract.Collector
	classifier *symbols.Classifier
	filter     *symbols.Filter
	comments   *symbols.CommentExtractor
	engine     *inference.TypeInferenceEngine
}

// NewAnalyzer validates config and wires the pipeline components
func NewAnalyzer(config Config, logger *logrus.Logger) (*Analyzer, error) {
	if err := config.Validate(); err != nil {
		return nil, err
	}
	if logger == nil {
		logger = logrus.New()
	}

	fingerprint, err := configFingerprint(config)
	if err != nil {
		return nil, err
	}

	return &Analyzer{
		config:      config,
		fingerprint: fingerprint,
		logger:      logger,
		collector:   extract.NewCollector(config.Collect),
		classifier:  symbols.NewClassifier(config.Symbols),
		filter:      symbols.NewFilter(config.Symbols),
		comments:    symbols.NewCommentExtractor(config.Symbols),
		engine:      inference.NewTypeInferenceEngine(config.Rules),
	}, nil
}

// SetCache enables result caching for AnalyzeFile
func (a *Analyzer) SetCache(cache ResultCache) {
	a.cache = cache
}

// Config returns the analyzer configuration
func (a *Analyzer) Config() Config {
	return a.config
}

// Fingerprint identifies the configuration that influences results.
// Report toggles are excluded since they only affect rendering.
func (a *Analyzer) Fingerprint() string {
	return a.fingerprint
}

// AnalyzeFile reads path fully and analyzes it, consulting the cache when one is set
func (a *Analyzer) AnalyzeFile(ctx context.Context, path string) (*Result, error) {
	if path == "" {
		return nil, ErrEmptyPath
	}

	buf, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", path, err)
	}

	digest := Digest(buf)
	if a.cache != nil {
		cached, ok, err := a.cache.Get(ctx, digest, a.fingerprint)
		if err != nil {
			a.logger.WithFields(logrus.Fields{"file": path, "error": err}).Warn("Cache lookup failed")
		} else if ok {
			cached.Source = path
			cached.RunID = uuid.NewString()
			cached.Cached = true
			a.logger.WithFields(logrus.Fields{"file": path, "digest": digest}).Debug("Result served from cache")
			return cached, nil
		}
	}

	result := a.AnalyzeBuffer(path, buf)

	if a.cache != nil {
		if err := a.cache.Put(ctx, digest, a.fingerprint, result); err != nil {
			a.logger.WithFields(logrus.Fields{"file": path, "error": err}).Warn("Cache store failed")
		}
	}

	return result, nil
}

// AnalyzeBuffer collects strings from buf and analyzes them
func (a *Analyzer) AnalyzeBuffer(source string, buf []byte) *Result {
	start := time.Now()

	raw := a.collector.Strings(buf)
	result := a.AnalyzeStrings(source, raw)

	result.Digest = Digest(buf)
	result.Size = len(buf)
	result.Duration = time.Since(start)
	return result
}

// AnalyzeStrings runs the pipeline on an already collected string set
func (a *Analyzer) AnalyzeStrings(source string, raw []string) *Result {
	start := time.Now()
	var stages StageStats

	stages.Collected = len(raw)
	strs := a.classifier.StripCompilerArtifacts(raw)
	stages.AfterPrefilter = len(strs)

	candidates, counts := a.filter.Apply(strs)
	stages.Filter = counts

	tree := inference.BuildPathTree(candidates)
	stages.TrieNodes = tree.Size()
	stages.TrieDepth = tree.Depth()

	root := a.engine.Infer(tree)

	comments := a.comments.Extract(strs)
	libraries := a.classifier.SharedLibraries(strs)
	sources := a.classifier.SourceFiles(strs)
	stages.Comments = len(comments)
	stages.SharedLibraries = len(libraries)
	stages.SourceFiles = len(sources)

	result := &Result{
		RunID:           uuid.NewString(),
		Source:          source,
		AnalyzedAt:      start,
		Root:            root,
		Candidates:      candidates,
		Comments:        comments,
		SharedLibraries: libraries,
		SourceFiles:     sources,
		RawStrings:      strs,
		Stages:          stages,
		Summary:         inference.Summarize(root),
		Duration:        time.Since(start),
	}

	a.logger.WithFields(logrus.Fields{
		"file":       source,
		"strings":    stages.Collected,
		"candidates": len(candidates),
		"entities":   result.Summary.Entities,
		"comments":   len(comments),
	}).Debug("Pipeline completed")

	return result
}

// Digest returns the hex SHA-256 of buf
func Digest(buf []byte) string {
	sum := sha256.Sum256(buf)
	return hex.EncodeToString(sum[:])
}

func configFingerprint(config Config) (string, error) {
	config.Report = ReportOptions{}
	data, err := json.Marshal(config)
	if err != nil {
		return "", fmt.Errorf("failed to fingerprint config: %w", err)
	}
	return Digest(data), nil
}
