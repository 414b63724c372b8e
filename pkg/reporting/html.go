/*
Author: KleaSCM
Email: KleaSCM@gmail.com
File: html.go
Description: HTML report renderer. Presents a reconstructed skeleton as a standalone
page with summary cards, the indented class hierarchy and the side lists.
*/

package reporting

import (
	"fmt"
	"html/template"
	"io"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/kleascm/cyskel/pkg/core"
)

// HTMLRenderer writes standalone HTML reports
type HTMLRenderer struct {
	opts      Options
	templates *template.Template
}

// reportPage contains all data for one HTML report
type reportPage struct {
	Title           string
	Source          string
	RunID           string
	Digest          string
	GeneratedAt     time.Time
	Lines           []Line
	TypeCounts      []typeCount
	Candidates      int
	Comments        []string
	SharedLibraries []string
	SourceFiles     []string
	RawStrings      []string
	IncludeRaw      bool
}

type typeCount struct {
	Type  string
	Count int
}

// NewHTMLRenderer parses the report templates
func NewHTMLRenderer(opts Options) (*HTMLRenderer, error) {
	tmpl, err := template.New("report").Funcs(template.FuncMap{
		"indent": func(depth int) int { return (depth - 1) * 24 },
		"lower":  strings.ToLower,
	}).Parse(reportTemplate)
	if err != nil {
		return nil, fmt.Errorf("failed to parse report template: %w", err)
	}
	return &HTMLRenderer{opts: opts, templates: tmpl}, nil
}

// Extension returns ".html"
func (r *HTMLRenderer) Extension() string {
	return ".html"
}

// Render writes the report to path
func (r *HTMLRenderer) Render(result *core.Result, path string) error {
	return renderFile(r, result, path)
}

// Write renders the report to w
func (r *HTMLRenderer) Write(w io.Writer, result *core.Result) error {
	page := reportPage{
		Title:           filepath.Base(result.Source),
		Source:          result.Source,
		RunID:           result.RunID,
		Digest:          result.Digest,
		GeneratedAt:     result.AnalyzedAt,
		Lines:           Lines(result.Root, r.opts.ShowUnknown),
		Candidates:      len(result.Candidates),
		Comments:        result.Comments,
		SharedLibraries: result.SharedLibraries,
		SourceFiles:     result.SourceFiles,
		IncludeRaw:      r.opts.IncludeRaw,
	}
	if r.opts.IncludeRaw {
		page.RawStrings = result.RawStrings
	}

	for typ, n := range result.Summary.ByType {
		page.TypeCounts = append(page.TypeCounts, typeCount{Type: typ, Count: n})
	}
	sort.Slice(page.TypeCounts, func(i, j int) bool {
		return page.TypeCounts[i].Type < page.TypeCounts[j].Type
	})

	if err := r.templates.Execute(w, page); err != nil {
		return fmt.Errorf("failed to execute report template: %w", err)
	}
	return nil
}
