/*
Author: KleaSCM
Email: KleaSCM@gmail.com
File: collector_test.go
Description: Tests for the printable string collector. Covers UTF-8 and UTF-16LE run
detection, minimum length handling, byte spans and the interesting filter.
*/

package extract

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func utf16le(s string) []byte {
	out := make([]byte, 0, len(s)*2)
	for _, b := range []byte(s) {
		out = append(out, b, 0)
	}
	return out
}

func TestCollectorFindsUTF8Runs(t *testing.T) {
	buf := []byte("\x00\x01pkg.mod.Cls\x00\xffab\x00glibc.so.6\x02")

	c := NewCollector(DefaultOptions())
	matches := c.Extract(buf)
	require.Len(t, matches, 2)

	assert.Equal(t, "pkg.mod.Cls", matches[0].Text)
	assert.Equal(t, EncodingUTF8, matches[0].Encoding)
	assert.Equal(t, Span{Start: 2, End: 13}, matches[0].Span)
	assert.Equal(t, "glibc.so.6", matches[1].Text)
}

func TestCollectorFindsUTF16LERuns(t *testing.T) {
	buf := append([]byte{0xff, 0xfe}, utf16le("Widget.__init__")...)
	buf = append(buf, 0xff, 0xff)

	c := NewCollector(DefaultOptions())
	var wide []Match
	for _, m := range c.Extract(buf) {
		if m.Encoding == EncodingUTF16LE {
			wide = append(wide, m)
		}
	}
	require.Len(t, wide, 1)
	assert.Equal(t, "Widget.__init__", wide[0].Text)
	assert.Equal(t, 2, wide[0].Span.Start)
}

func TestCollectorMinLength(t *testing.T) {
	buf := []byte("abc\x00abcd\x00abcdefgh")

	assert.Equal(t, []string{"abcd", "abcdefgh"}, NewCollector(Options{MinLength: 4}).Strings(buf))
	assert.Equal(t, []string{"abcdefgh"}, NewCollector(Options{MinLength: 6}).Strings(buf))

	// Non-positive minimum falls back to the default
	c := NewCollector(Options{MinLength: 0})
	assert.Equal(t, DefaultMinLength, c.Options().MinLength)
}

func TestCollectorStringsDeduplicates(t *testing.T) {
	buf := []byte("same.name\x00same.name\x00other.name")

	strs := NewCollector(DefaultOptions()).Strings(buf)
	assert.Equal(t, []string{"other.name", "same.name"}, strs)
}

func TestCollectorOnlyInteresting(t *testing.T) {
	buf := []byte("module.Class.method\x00~~~~~~~~\x00#$%^&*()!")

	all := NewCollector(Options{MinLength: 4}).Strings(buf)
	assert.Len(t, all, 3)

	interesting := NewCollector(Options{MinLength: 4, OnlyInteresting: true}).Strings(buf)
	assert.Equal(t, []string{"module.Class.method"}, interesting)
}

func TestCollectorEmptyBuffer(t *testing.T) {
	c := NewCollector(DefaultOptions())
	assert.Empty(t, c.Extract(nil))
	assert.Empty(t, c.Strings([]byte{}))
}

func TestIsInteresting(t *testing.T) {
	tests := []struct {
		input string
		want  bool
	}{
		{"pkg.sub.Cls.__init__", true},
		{":param name: the name", true},
		{"12345678", false},
		{"aaaaaaaa", false},
		{"#$%^&*()", false},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			assert.Equal(t, tt.want, isInteresting(tt.input))
		})
	}
}
