/*
Author: KleaSCM
Email: KleaSCM@gmail.com
File: collector.go
Description: Printable string collector for compiled binaries. Scans a raw byte buffer
for UTF-8 and UTF-16LE printable runs, tags each run with its encoding, byte span and an
"interesting" verdict, and exposes the deduplicated text set consumed by the symbol
reconstruction pipeline.
*/

package extract

import (
	"sort"
	"unicode"
	"unicode/utf8"
)

// Encoding names the byte encoding a string was found in
type Encoding string

const (
	EncodingUTF8    Encoding = "utf-8"
	EncodingUTF16LE Encoding = "utf-16le"
)

// DefaultMinLength is the minimum run length (in characters) kept by default
const DefaultMinLength = 4

// Span is a half-open byte range [Start, End) inside the scanned buffer
type Span struct {
	Start int `json:"start"`
	End   int `json:"end"`
}

// Match is a single printable run found in a buffer
type Match struct {
	Text        string   `json:"text"`
	Encoding    Encoding `json:"encoding"`
	Span        Span     `json:"span"`
	Interesting bool     `json:"interesting"`
}

// Options controls string collection
type Options struct {
	MinLength       int  `json:"min_length"`       // Minimum number of characters per run
	OnlyInteresting bool `json:"only_interesting"` // Drop runs that look like noise
}

// DefaultOptions returns the collector defaults
func DefaultOptions() Options {
	return Options{
		MinLength:       DefaultMinLength,
		OnlyInteresting: false,
	}
}

// Collector extracts printable strings from byte buffers.
// A Collector holds no per-buffer state and is safe for concurrent use.
type Collector struct {
	opts Options
}

// NewCollector creates a collector, falling back to the default minimum length
// when opts.MinLength is not positive
func NewCollector(opts Options) *Collector {
	if opts.MinLength <= 0 {
		opts.MinLength = DefaultMinLength
	}
	return &Collector{opts: opts}
}

// Options returns the effective collector options
func (c *Collector) Options() Options {
	return c.opts
}

// Extract returns every qualifying run in buffer order, UTF-8 runs first
// followed by UTF-16LE runs
func (c *Collector) Extract(buf []byte) []Match {
	matches := c.scanUTF8(buf)
	matches = append(matches, c.scanUTF16LE(buf)...)

	if !c.opts.OnlyInteresting {
		return matches
	}

	kept := matches[:0]
	for _, m := range matches {
		if m.Interesting {
			kept = append(kept, m)
		}
	}
	return kept
}

// Strings returns the deduplicated text of all matches, sorted
func (c *Collector) Strings(buf []byte) []string {
	seen := make(map[string]struct{})
	for _, m := range c.Extract(buf) {
		seen[m.Text] = struct{}{}
	}

	out := make([]string, 0, len(seen))
	for s := range seen {
		out = append(out, s)
	}
	sort.Strings(out)
	return out
}

// scanUTF8 finds runs of printable UTF-8 runes
func (c *Collector) scanUTF8(buf []byte) []Match {
	var matches []Match
	start, runes := -1, 0

	flush := func(end int) {
		if start >= 0 && runes >= c.opts.MinLength {
			matches = append(matches, c.newMatch(string(buf[start:end]), EncodingUTF8, start, end))
		}
		start, runes = -1, 0
	}

	for i := 0; i < len(buf); {
		r, size := utf8.DecodeRune(buf[i:])
		if r == utf8.RuneError && size <= 1 || !isPrintable(r) {
			flush(i)
			i++
			continue
		}
		if start < 0 {
			start = i
		}
		runes++
		i += size
	}
	flush(len(buf))

	return matches
}

// scanUTF16LE finds runs of printable ASCII characters encoded as UTF-16LE,
// trying both byte alignments
func (c *Collector) scanUTF16LE(buf []byte) []Match {
	var matches []Match

	for align := 0; align < 2; align++ {
		start := -1
		var text []rune

		flush := func(end int) {
			if start >= 0 && len(text) >= c.opts.MinLength {
				matches = append(matches, c.newMatch(string(text), EncodingUTF16LE, start, end))
			}
			start, text = -1, text[:0]
		}

		i := align
		for ; i+1 < len(buf); i += 2 {
			lo, hi := buf[i], buf[i+1]
			if hi != 0 || lo >= utf8.RuneSelf || !isPrintable(rune(lo)) {
				flush(i)
				continue
			}
			if start < 0 {
				start = i
			}
			text = append(text, rune(lo))
		}
		flush(i)
	}

	sort.SliceStable(matches, func(i, j int) bool {
		return matches[i].Span.Start < matches[j].Span.Start
	})
	return matches
}

func (c *Collector) newMatch(text string, enc Encoding, start, end int) Match {
	return Match{
		Text:        text,
		Encoding:    enc,
		Span:        Span{Start: start, End: end},
		Interesting: isInteresting(text),
	}
}

func isPrintable(r rune) bool {
	return r == '\t' || unicode.IsPrint(r)
}

// isInteresting scores a run as likely human or compiler authored text:
// it must contain a letter, be dominated by word characters and common
// punctuation, and not be a long repetition of one character
func isInteresting(s string) bool {
	var letters, wordish, total, repeat, maxRepeat int
	var prev rune = -1

	for _, r := range s {
		total++
		switch {
		case unicode.IsLetter(r):
			letters++
			wordish++
		case unicode.IsDigit(r), r == ' ', r == '.', r == '_', r == ':', r == '/', r == '-', r == '@':
			wordish++
		}

		if r == prev {
			repeat++
		} else {
			repeat = 1
		}
		if repeat > maxRepeat {
			maxRepeat = repeat
		}
		prev = r
	}

	if total == 0 || letters == 0 {
		return false
	}
	if maxRepeat >= 4 && maxRepeat*2 >= total {
		return false
	}
	return float64(wordish)/float64(total) >= 0.8
}
