/*
Author: KleaSCM
Email: KleaSCM@gmail.com
File: batch.go
Description: Batch runner for directory trees of compiled binaries. Discovers eligible
files, analyzes them with a bounded pool of concurrent workers, mirrors the source layout
into the output directory and collects per-file failures without stopping the run.
*/

package core

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"sort"
	"sync"
	"time"

	"github.com/sirupsen/logrus"
	"golang.org/x/sync/errgroup"
)

// BatchConfig controls a directory run
type BatchConfig struct {
	SourceDir string   `json:"source_dir"` // Directory searched for binaries
	TargetDir string   `json:"target_dir"` // Mirror root for reports (empty = beside each binary)
	Include   []string `json:"include"`    // Glob patterns of eligible files
	Exclude   []string `json:"exclude"`    // Glob patterns removed from the eligible set
	Workers   int      `json:"workers"`    // Concurrent files (0 = number of CPUs)
	FailFast  bool     `json:"fail_fast"`  // Stop at the first failing file
}

// BatchSummary is the outcome of a batch run
type BatchSummary struct {
	Stats    BatchStats  `json:"stats"`
	Reports  []string    `json:"reports"`
	Failures []FileError `json:"failures"`
}

// BatchRunner analyzes every eligible file below a directory
type BatchRunner struct {
	config    BatchConfig
	analyzer  *Analyzer
	renderer  Renderer
	exporter  Exporter
	reporters []Reporter
	logger    *logrus.Logger

	mu       sync.Mutex
	reports  []string
	failures []FileError
}

// NewBatchRunner creates a runner writing reports with renderer
func NewBatchRunner(config BatchConfig, analyzer *Analyzer, renderer Renderer, logger *logrus.Logger) *BatchRunner {
	if config.Workers <= 0 {
		config.Workers = runtime.NumCPU()
	}
	if logger == nil {
		logger = logrus.New()
	}
	return &BatchRunner{
		config:   config,
		analyzer: analyzer,
		renderer: renderer,
		logger:   logger,
	}
}

// AddReporter registers a progress hook
func (b *BatchRunner) AddReporter(r Reporter) {
	b.reporters = append(b.reporters, r)
}

// SetExporter publishes every result after its report is written
func (b *BatchRunner) SetExporter(e Exporter) {
	b.exporter = e
}

// ReportPath maps a source file to its report location
func (b *BatchRunner) ReportPath(source string) (string, error) {
	ext := b.renderer.Extension()
	if b.config.TargetDir == "" {
		return source + ext, nil
	}

	rel, err := filepath.Rel(b.config.SourceDir, source)
	if err != nil {
		return "", fmt.Errorf("failed to relativize %s: %w", source, err)
	}
	return filepath.Join(b.config.TargetDir, rel) + ext, nil
}

// Run scans the source directory and processes every eligible file.
// Individual failures are recorded in the summary; the returned error is non-nil
// only when scanning fails, the context is cancelled, or FailFast trips.
func (b *BatchRunner) Run(ctx context.Context) (*BatchSummary, error) {
	stats := &BatchStats{StartTime: time.Now()}
	b.reports, b.failures = nil, nil

	scanner, err := NewScanner(b.config.SourceDir, b.config.Include, b.config.Exclude)
	if err != nil {
		return nil, err
	}
	files, err := scanner.Scan(ctx)
	if err != nil {
		return nil, err
	}

	b.logger.WithFields(logrus.Fields{
		"source":  b.config.SourceDir,
		"target":  b.config.TargetDir,
		"files":   len(files),
		"workers": b.config.Workers,
	}).Info("Starting batch analysis")

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(b.config.Workers)

	for _, file := range files {
		file := file
		stats.incDiscovered()
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			if err := b.processFile(gctx, file, stats); err != nil {
				stats.incFailed()
				b.recordFailure(file, err)
				if b.config.FailFast {
					return err
				}
			}
			return nil
		})
	}

	runErr := g.Wait()
	stats.Duration = time.Since(stats.StartTime)

	sort.Strings(b.reports)
	sort.Slice(b.failures, func(i, j int) bool { return b.failures[i].Path < b.failures[j].Path })

	summary := &BatchSummary{
		Stats:    *stats,
		Reports:  b.reports,
		Failures: b.failures,
	}

	b.logger.WithFields(logrus.Fields{
		"analyzed": stats.Analyzed,
		"cached":   stats.Cached,
		"failed":   stats.Failed,
		"entities": stats.Entities,
		"duration": stats.Duration,
	}).Info("Batch analysis finished")

	if runErr != nil {
		return summary, runErr
	}
	return summary, ctx.Err()
}

// processFile analyzes, renders and exports a single file
func (b *BatchRunner) processFile(ctx context.Context, file string, stats *BatchStats) error {
	result, err := b.analyzer.AnalyzeFile(ctx, file)
	if err != nil {
		return err
	}

	reportPath, err := b.ReportPath(file)
	if err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(reportPath), 0755); err != nil {
		return fmt.Errorf("failed to create report directory: %w", err)
	}
	if err := b.renderer.Render(result, reportPath); err != nil {
		return fmt.Errorf("failed to write report %s: %w", reportPath, err)
	}

	if b.exporter != nil {
		if err := b.exporter.Export(ctx, result); err != nil {
			return fmt.Errorf("failed to export %s: %w", file, err)
		}
	}

	stats.incAnalyzed()
	if result.Cached {
		stats.incCached()
	}
	stats.addEntities(result.Summary.Entities)

	b.mu.Lock()
	b.reports = append(b.reports, reportPath)
	b.mu.Unlock()

	for _, r := range b.reporters {
		r.OnFileAnalyzed(result, reportPath)
	}
	return nil
}

func (b *BatchRunner) recordFailure(file string, err error) {
	b.mu.Lock()
	b.failures = append(b.failures, FileError{Path: file, Err: err.Error()})
	b.mu.Unlock()

	for _, r := range b.reporters {
		r.OnFileFailed(file, err)
	}
}
