/*
Author: KleaSCM
Email: KleaSCM@gmail.com
File: scanner.go
Description: Directory discovery for batch runs. Walks a source tree and returns the
files whose slash-separated relative path matches an include glob and no exclude glob.
*/

package core

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"

	"github.com/gobwas/glob"
)

var (
	// ErrSourceNotDir indicates the batch source is not a directory
	ErrSourceNotDir = errors.New("source path is not a directory")

	// ErrInvalidPattern indicates a glob pattern could not be compiled
	ErrInvalidPattern = errors.New("invalid glob pattern")
)

// DefaultIncludePatterns selects Cython extension modules and ELF executables
var DefaultIncludePatterns = []string{"**.so", "**.elf"}

// Scanner finds eligible binaries below a root directory
type Scanner struct {
	root    string
	include []glob.Glob
	exclude []glob.Glob
}

// NewScanner compiles the include and exclude patterns
func NewScanner(root string, include, exclude []string) (*Scanner, error) {
	if root == "" {
		return nil, ErrEmptyPath
	}
	if len(include) == 0 {
		include = DefaultIncludePatterns
	}

	inc, err := compileGlobs(include)
	if err != nil {
		return nil, err
	}
	exc, err := compileGlobs(exclude)
	if err != nil {
		return nil, err
	}

	return &Scanner{root: root, include: inc, exclude: exc}, nil
}

func compileGlobs(patterns []string) ([]glob.Glob, error) {
	matchers := make([]glob.Glob, 0, len(patterns))
	for _, pattern := range patterns {
		matcher, err := glob.Compile(pattern, '/')
		if err != nil {
			return nil, fmt.Errorf("%w %q: %v", ErrInvalidPattern, pattern, err)
		}
		matchers = append(matchers, matcher)
	}
	return matchers, nil
}

// Match reports whether a slash-separated relative path is eligible
func (s *Scanner) Match(rel string) bool {
	for _, m := range s.exclude {
		if m.Match(rel) {
			return false
		}
	}
	for _, m := range s.include {
		if m.Match(rel) {
			return true
		}
	}
	return false
}

// Scan returns the eligible regular files below the root, sorted
func (s *Scanner) Scan(ctx context.Context) ([]string, error) {
	info, err := os.Stat(s.root)
	if err != nil {
		return nil, fmt.Errorf("failed to stat %s: %w", s.root, err)
	}
	if !info.IsDir() {
		return nil, fmt.Errorf("%w: %s", ErrSourceNotDir, s.root)
	}

	var files []string
	err = filepath.WalkDir(s.root, func(path string, d fs.DirEntry, walkErr error) error {
		if walkErr != nil {
			return walkErr
		}
		if err := ctx.Err(); err != nil {
			return err
		}
		if !d.Type().IsRegular() {
			return nil
		}

		rel, err := filepath.Rel(s.root, path)
		if err != nil {
			return err
		}
		if s.Match(filepath.ToSlash(rel)) {
			files = append(files, path)
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("failed to scan %s: %w", s.root, err)
	}

	sort.Strings(files)
	return files, nil
}
