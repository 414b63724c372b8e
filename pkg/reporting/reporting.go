/*
Author: KleaSCM
Email: KleaSCM@gmail.com
File: reporting.go
Description: Report renderers for reconstructed skeletons. Provides the renderer
factory, the shared rendering options and the helpers that flatten an entity tree into
indented report lines.
*/

package reporting

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/kleascm/cyskel/pkg/core"
	"github.com/kleascm/cyskel/pkg/inference"
)

// Supported report formats
const (
	FormatSkel = "skel"
	FormatJSON = "json"
	FormatYAML = "yaml"
	FormatHTML = "html"
)

// Formats lists every supported format
func Formats() []string {
	return []string{FormatSkel, FormatJSON, FormatYAML, FormatHTML}
}

// Options controls what a report contains
type Options struct {
	ShowUnknown bool // Render UNKNOWN entities
	IncludeRaw  bool // Append the full raw string set
}

// OptionsFrom converts the pipeline report toggles
func OptionsFrom(r core.ReportOptions) Options {
	return Options{ShowUnknown: r.ShowUnknown, IncludeRaw: r.IncludeRaw}
}

// Renderer writes results as reports, either to a stream or to a file
type Renderer interface {
	core.Renderer

	// Write renders result to w
	Write(w io.Writer, result *core.Result) error
}

// New returns the renderer for format
func New(format string, opts Options) (Renderer, error) {
	switch strings.ToLower(format) {
	case FormatSkel, "", "text":
		return NewTextRenderer(opts), nil
	case FormatJSON:
		return NewJSONRenderer(opts), nil
	case FormatYAML, "yml":
		return NewYAMLRenderer(opts), nil
	case FormatHTML:
		return NewHTMLRenderer(opts)
	default:
		return nil, fmt.Errorf("unsupported report format: %s", format)
	}
}

// renderFile creates path and streams the report into it, closing the file on every path
func renderFile(r Renderer, result *core.Result, path string) (err error) {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create report file: %w", err)
	}
	defer func() {
		if cerr := f.Close(); cerr != nil && err == nil {
			err = fmt.Errorf("failed to close report file: %w", cerr)
		}
	}()

	w := bufio.NewWriter(f)
	if err := r.Write(w, result); err != nil {
		return err
	}
	return w.Flush()
}

// Line is one rendered entity of the hierarchy
type Line struct {
	Name  string
	Type  string
	Path  string
	Depth int // 1 for direct children of the root
}

// Lines flattens the tree below root in pre-order. UNKNOWN entities are left out
// unless showUnknown is set; their descendants keep their own depth.
func Lines(root *inference.Entity, showUnknown bool) []Line {
	var lines []Line
	if root == nil {
		return lines
	}

	root.Walk(func(e *inference.Entity, depth int) bool {
		if e.Type == inference.EntityRoot {
			return true
		}
		if e.Type == inference.EntityUnknown && !showUnknown {
			return true
		}
		lines = append(lines, Line{
			Name:  e.Name,
			Type:  e.Type.String(),
			Path:  e.Path(),
			Depth: depth,
		})
		return true
	})
	return lines
}

// document is the shape emitted by the JSON and YAML renderers. The synthetic
// root is replaced by its children so it never reaches a report.
type document struct {
	RunID           string              `json:"run_id" yaml:"run_id"`
	Source          string              `json:"source" yaml:"source"`
	Digest          string              `json:"digest" yaml:"digest"`
	Size            int                 `json:"size" yaml:"size"`
	AnalyzedAt      time.Time           `json:"analyzed_at" yaml:"analyzed_at"`
	Duration        time.Duration       `json:"duration" yaml:"duration"`
	Entities        []*inference.Entity `json:"entities" yaml:"entities"`
	Candidates      []string            `json:"candidates" yaml:"candidates"`
	Comments        []string            `json:"comments" yaml:"comments"`
	SharedLibraries []string            `json:"shared_libraries" yaml:"shared_libraries"`
	SourceFiles     []string            `json:"source_files" yaml:"source_files"`
	RawStrings      []string            `json:"raw_strings,omitempty" yaml:"raw_strings,omitempty"`
	Cached          bool                `json:"cached" yaml:"cached"`
	Stages          core.StageStats     `json:"stages" yaml:"stages"`
	Summary         inference.Summary   `json:"summary" yaml:"summary"`
}

func structuredView(result *core.Result, opts Options) document {
	doc := document{
		RunID:           result.RunID,
		Source:          result.Source,
		Digest:          result.Digest,
		Size:            result.Size,
		AnalyzedAt:      result.AnalyzedAt,
		Duration:        result.Duration,
		Entities:        []*inference.Entity{},
		Candidates:      result.Candidates,
		Comments:        result.Comments,
		SharedLibraries: result.SharedLibraries,
		SourceFiles:     result.SourceFiles,
		Cached:          result.Cached,
		Stages:          result.Stages,
		Summary:         result.Summary,
	}
	if result.Root != nil && result.Root.Children != nil {
		doc.Entities = result.Root.Children
	}
	if opts.IncludeRaw {
		doc.RawStrings = result.RawStrings
	}
	return doc
}
