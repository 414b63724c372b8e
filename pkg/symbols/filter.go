/*
Author: KleaSCM
Email: KleaSCM@gmail.com
File: filter.go
Description: Symbol path filter. Reduces the raw string table of a binary to the set of
maximal, well-formed dotted paths (package.module.Class.method) that are likely to mirror
original qualified names.
*/

package symbols

import (
	"sort"
	"strings"
	"unicode"
)

// StageCounts records how many strings survived each filter stage
type StageCounts struct {
	Input     int `json:"input" yaml:"input"`
	DotShape  int `json:"dot_shape" yaml:"dot_shape"`
	CharClass int `json:"char_class" yaml:"char_class"`
	Loader    int `json:"loader" yaml:"loader"`
	Version   int `json:"version" yaml:"version"`
	Maximal   int `json:"maximal" yaml:"maximal"`
}

// Filter turns raw strings into symbol path candidates
type Filter struct {
	blocklist []string
}

// NewFilter creates a filter using the loader blocklist from cfg
func NewFilter(cfg Config) *Filter {
	return &Filter{blocklist: lowered(cfg.LoaderBlocklist)}
}

// Candidates returns the maximal symbol path candidates of raw, sorted
func (f *Filter) Candidates(raw []string) []string {
	candidates, _ := f.Apply(raw)
	return candidates
}

// Apply runs every stage in order on the survivors of the previous one and
// returns the sorted candidates along with per-stage survivor counts.
// The input is deduplicated first; its order does not affect the result.
func (f *Filter) Apply(raw []string) ([]string, StageCounts) {
	var counts StageCounts

	survivors := dedupe(raw)
	counts.Input = len(survivors)

	survivors = keep(survivors, hasDotShape)
	counts.DotShape = len(survivors)

	survivors = keep(survivors, isSymbolCharset)
	counts.CharClass = len(survivors)

	survivors = keep(survivors, func(s string) bool { return !containsAny(s, f.blocklist) })
	counts.Loader = len(survivors)

	survivors = keep(survivors, func(s string) bool { return !isVersionString(s) })
	counts.Version = len(survivors)

	survivors = maximal(survivors)
	counts.Maximal = len(survivors)

	return survivors, counts
}

// hasDotShape keeps strings containing a dot that do not start with one
func hasDotShape(s string) bool {
	return strings.Contains(s, ".") && !strings.HasPrefix(s, ".")
}

// isSymbolCharset keeps strings made only of letters, digits, dots and underscores
func isSymbolCharset(s string) bool {
	for _, r := range s {
		if r != '.' && r != '_' && !unicode.IsLetter(r) && !unicode.IsNumber(r) {
			return false
		}
	}
	return true
}

// isVersionString matches version tags such as V1.2.3, v2 or 1.0.0
func isVersionString(s string) bool {
	if strings.HasPrefix(s, "v") || strings.HasPrefix(s, "V") {
		return true
	}
	for _, r := range s {
		if r != '.' && (r < '0' || r > '9') {
			return false
		}
	}
	return true
}

// maximal drops every candidate that is a substring of another, distinct candidate.
// This is O(n²) in the number of candidates. Sorting by length lets each
// candidate be compared only against strictly longer ones, since a distinct string
// of equal or shorter length can never contain it.
func maximal(candidates []string) []string {
	byLen := append([]string(nil), candidates...)
	sort.SliceStable(byLen, func(i, j int) bool {
		return len(byLen[i]) > len(byLen[j])
	})

	out := make([]string, 0, len(byLen))
	for i, s := range byLen {
		contained := false
		for _, t := range byLen[:i] {
			if len(t) > len(s) && strings.Contains(t, s) {
				contained = true
				break
			}
		}
		if !contained {
			out = append(out, s)
		}
	}

	sort.Strings(out)
	return out
}

func dedupe(raw []string) []string {
	seen := make(map[string]struct{}, len(raw))
	out := make([]string, 0, len(raw))
	for _, s := range raw {
		if _, ok := seen[s]; ok {
			continue
		}
		seen[s] = struct{}{}
		out = append(out, s)
	}
	return out
}

func keep(in []string, pred func(string) bool) []string {
	out := make([]string, 0, len(in))
	for _, s := range in {
		if pred(s) {
			out = append(out, s)
		}
	}
	return out
}
