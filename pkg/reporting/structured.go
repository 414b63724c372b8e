/*
Author: KleaSCM
Email: KleaSCM@gmail.com
File: structured.go
Description: Machine-readable renderers. Emit the full analysis result, including the
complete entity tree and pipeline statistics, as indented JSON or YAML.
*/

package reporting

import (
	"encoding/json"
	"fmt"
	"io"

	"github.com/kleascm/cyskel/pkg/core"
	"gopkg.in/yaml.v3"
)

// JSONRenderer writes results as JSON documents
type JSONRenderer struct {
	opts Options
}

// NewJSONRenderer creates a JSON renderer
func NewJSONRenderer(opts Options) *JSONRenderer {
	return &JSONRenderer{opts: opts}
}

// Extension returns ".json"
func (r *JSONRenderer) Extension() string {
	return ".json"
}

// Render writes the report to path
func (r *JSONRenderer) Render(result *core.Result, path string) error {
	return renderFile(r, result, path)
}

// Write renders the report to w
func (r *JSONRenderer) Write(w io.Writer, result *core.Result) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(structuredView(result, r.opts)); err != nil {
		return fmt.Errorf("failed to encode JSON report: %w", err)
	}
	return nil
}

// YAMLRenderer writes results as YAML documents
type YAMLRenderer struct {
	opts Options
}

// NewYAMLRenderer creates a YAML renderer
func NewYAMLRenderer(opts Options) *YAMLRenderer {
	return &YAMLRenderer{opts: opts}
}

// Extension returns ".yaml"
func (r *YAMLRenderer) Extension() string {
	return ".yaml"
}

// Render writes the report to path
func (r *YAMLRenderer) Render(result *core.Result, path string) error {
	return renderFile(r, result, path)
}

// Write renders the report to w
func (r *YAMLRenderer) Write(w io.Writer, result *core.Result) error {
	enc := yaml.NewEncoder(w)
	enc.SetIndent(2)
	if err := enc.Encode(structuredView(result, r.opts)); err != nil {
		return fmt.Errorf("failed to encode YAML report: %w", err)
	}
	return enc.Close()
}
