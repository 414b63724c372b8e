/*
Author: KleaSCM
Email: KleaSCM@gmail.com
File: config.go
Description: Heuristic keyword tables for symbol reconstruction. Holds the loader
artifact blocklist, comment markers, compiler-internal markers and the suffix tables used
to classify shared-library and source filenames. Tables are plain values passed into the
filters so callers and tests can substitute their own.
*/

package symbols

import (
	"fmt"
	"strings"
)

// Config holds every keyword table used by the string filters
type Config struct {
	LoaderBlocklist []string `json:"loader_blocklist" yaml:"loader_blocklist" mapstructure:"loader_blocklist"` // Shared-library loader markers rejected from symbol paths
	CommentMarkers  []string `json:"comment_markers" yaml:"comment_markers" mapstructure:"comment_markers"`    // Docstring parameter/return markers
	CompilerMarkers []string `json:"compiler_markers" yaml:"compiler_markers" mapstructure:"compiler_markers"` // Compiler-internal names dropped from the raw set
	LibrarySuffixes []string `json:"library_suffixes" yaml:"library_suffixes" mapstructure:"library_suffixes"` // Shared-library filename endings
	LibraryInfixes  []string `json:"library_infixes" yaml:"library_infixes" mapstructure:"library_infixes"`    // Shared-library version infixes (libfoo.so.1)
	SourceSuffixes  []string `json:"source_suffixes" yaml:"source_suffixes" mapstructure:"source_suffixes"`    // Python source and compiled-source endings
}

// DefaultConfig returns the tables tuned on real Cython builds
func DefaultConfig() Config {
	return Config{
		LoaderBlocklist: []string{"glibc", ".so."},
		CommentMarkers:  []string{":param", ":return", "@param", "@return"},
		CompilerMarkers: []string{
			"pyobject", "pytype", "pycode", "pytuple", "pydict", "pylist", "pyint",
			"pyfloat", "pyexc", "pymethod", "pybytes", "pyframe",
		},
		LibrarySuffixes: []string{".so"},
		LibraryInfixes:  []string{".so."},
		SourceSuffixes:  []string{".py", ".pyc", ".pyx", ".pxd"},
	}
}

// Validate rejects tables containing empty entries, which would match every string
func (c Config) Validate() error {
	tables := []struct {
		name    string
		entries []string
	}{
		{"loader_blocklist", c.LoaderBlocklist},
		{"comment_markers", c.CommentMarkers},
		{"compiler_markers", c.CompilerMarkers},
		{"library_suffixes", c.LibrarySuffixes},
		{"library_infixes", c.LibraryInfixes},
		{"source_suffixes", c.SourceSuffixes},
	}

	for _, table := range tables {
		for i, entry := range table.entries {
			if strings.TrimSpace(entry) == "" {
				return fmt.Errorf("%s[%d] must not be empty", table.name, i)
			}
		}
	}
	return nil
}

// lowered returns a lower-cased copy of a keyword table
func lowered(entries []string) []string {
	out := make([]string, len(entries))
	for i, e := range entries {
		out[i] = strings.ToLower(e)
	}
	return out
}

// containsAny reports whether the lower-cased s contains any of the lower-cased keywords
func containsAny(s string, keywords []string) bool {
	ls := strings.ToLower(s)
	for _, k := range keywords {
		if strings.Contains(ls, k) {
			return true
		}
	}
	return false
}

// hasAnySuffix reports whether the lower-cased s ends with any of the lower-cased suffixes
func hasAnySuffix(s string, suffixes []string) bool {
	ls := strings.ToLower(s)
	for _, suffix := range suffixes {
		if strings.HasSuffix(ls, suffix) {
			return true
		}
	}
	return false
}
