/*
Author: KleaSCM
Email: KleaSCM@gmail.com
File: text.go
Description: Plain-text skeleton renderer. Produces the .skel report: a header naming
the binary, the indented class hierarchy, then the comment, shared-library, source file
and optional raw string sections.
*/

package reporting

import (
	"fmt"
	"io"
	"strings"

	"github.com/kleascm/cyskel/pkg/core"
)

const indentUnit = "    "

// TextRenderer writes .skel reports
type TextRenderer struct {
	opts Options
}

// NewTextRenderer creates a text renderer
func NewTextRenderer(opts Options) *TextRenderer {
	return &TextRenderer{opts: opts}
}

// Extension returns ".skel"
func (r *TextRenderer) Extension() string {
	return ".skel"
}

// Render writes the report to path
func (r *TextRenderer) Render(result *core.Result, path string) error {
	return renderFile(r, result, path)
}

// Write renders the report to w
func (r *TextRenderer) Write(w io.Writer, result *core.Result) error {
	ew := &errWriter{w: w}

	ew.printf("# Skeleton of %s\n", result.Source)
	ew.printf("# run %s", result.RunID)
	if result.Digest != "" {
		ew.printf(" sha256 %s", result.Digest)
	}
	ew.printf("\n")

	ew.section("Hierarchy")
	for _, line := range Lines(result.Root, r.opts.ShowUnknown) {
		ew.printf("%s%s: %s\n", strings.Repeat(indentUnit, line.Depth-1), line.Type, line.Name)
	}

	ew.list("Comments", result.Comments)
	ew.list("Shared libraries", result.SharedLibraries)
	ew.list("Source files", result.SourceFiles)
	if r.opts.IncludeRaw {
		ew.list("Strings", result.RawStrings)
	}

	return ew.err
}

// errWriter keeps the first write error and skips later writes
type errWriter struct {
	w   io.Writer
	err error
}

func (ew *errWriter) printf(format string, args ...interface{}) {
	if ew.err != nil {
		return
	}
	_, ew.err = fmt.Fprintf(ew.w, format, args...)
}

func (ew *errWriter) section(title string) {
	ew.printf("\n## %s\n", title)
}

func (ew *errWriter) list(title string, items []string) {
	ew.section(title)
	for _, item := range items {
		// keep multi-line docstrings on one report line
		ew.printf("%s\n", strings.ReplaceAll(item, "\n", "\\n"))
	}
}
