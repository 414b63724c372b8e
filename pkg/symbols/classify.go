/*
Author: KleaSCM
Email: KleaSCM@gmail.com
File: classify.go
Description: Independent substring classifiers over the raw string table: compiler
artifact removal, docstring/comment extraction, and the shared-library and source
filename side lists reported next to the reconstructed hierarchy.
*/

package symbols

// CommentExtractor selects docstring-like strings by marker
type CommentExtractor struct {
	markers []string
}

// NewCommentExtractor creates an extractor using the comment markers from cfg
func NewCommentExtractor(cfg Config) *CommentExtractor {
	return &CommentExtractor{markers: lowered(cfg.CommentMarkers)}
}

// Extract returns the strings containing any comment marker, case-insensitively,
// in input order
func (e *CommentExtractor) Extract(raw []string) []string {
	return keep(raw, func(s string) bool { return containsAny(s, e.markers) })
}

// Classifier produces the derived filename lists and strips compiler artifacts
type Classifier struct {
	compiler        []string
	librarySuffixes []string
	libraryInfixes  []string
	sourceSuffixes  []string
}

// NewClassifier creates a classifier from the tables in cfg
func NewClassifier(cfg Config) *Classifier {
	return &Classifier{
		compiler:        lowered(cfg.CompilerMarkers),
		librarySuffixes: lowered(cfg.LibrarySuffixes),
		libraryInfixes:  lowered(cfg.LibraryInfixes),
		sourceSuffixes:  lowered(cfg.SourceSuffixes),
	}
}

// StripCompilerArtifacts drops strings naming compiler-internal runtime objects
func (c *Classifier) StripCompilerArtifacts(raw []string) []string {
	return keep(raw, func(s string) bool { return !containsAny(s, c.compiler) })
}

// SharedLibraries returns strings that look like shared-library names
// (libfoo.so, libc.so.6)
func (c *Classifier) SharedLibraries(raw []string) []string {
	return keep(raw, func(s string) bool {
		return hasAnySuffix(s, c.librarySuffixes) || containsAny(s, c.libraryInfixes)
	})
}

// SourceFiles returns strings ending in a Python source or compiled-source suffix
func (c *Classifier) SourceFiles(raw []string) []string {
	return keep(raw, func(s string) bool { return hasAnySuffix(s, c.sourceSuffixes) })
}
