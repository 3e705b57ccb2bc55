package ingestion_engine

import (
	"fmt"
	"strings"
	"unicode"
)

// DefaultSeparators lists split points from coarsest to finest.
// When none of them fits, the chunk is cut at the window edge.
var DefaultSeparators = []string{"\n\n", "\n", ". ", "! ", "? ", "; ", ", ", " "}

// ChunkerOptions configures a Chunker. Sizes are counted in characters (runes).
type ChunkerOptions struct {
	ChunkSize    int
	ChunkOverlap int
	Separators   []string
}

// Chunker splits text into bounded chunks where every chunk after the first
// starts with the last ChunkOverlap characters of its predecessor.
type Chunker struct {
	size       int
	overlap    int
	separators [][]rune
}

type span struct {
	start, end int
}

// NewChunker validates opts and builds a Chunker.
func NewChunker(opts ChunkerOptions) (*Chunker, error) {
	if opts.ChunkSize <= 0 || opts.ChunkOverlap < 0 || opts.ChunkOverlap >= opts.ChunkSize {
		return nil, fmt.Errorf("%w: size=%d overlap=%d", ErrInvalidChunkerOptions, opts.ChunkSize, opts.ChunkOverlap)
	}

	seps := opts.Separators
	if len(seps) == 0 {
		seps = DefaultSeparators
	}
	c := &Chunker{size: opts.ChunkSize, overlap: opts.ChunkOverlap}
	for _, s := range seps {
		if s == "" {
			continue
		}
		c.separators = append(c.separators, []rune(s))
	}
	return c, nil
}

// Split returns the chunks of text in document order. Surrounding whitespace is
// trimmed first; blank input yields no chunks.
func (c *Chunker) Split(text string) []string {
	runes := []rune(strings.TrimSpace(text))

	spans := c.spans(runes)
	out := make([]string, 0, len(spans))
	for _, s := range spans {
		part := runes[s.start:s.end]
		if isBlank(part) {
			continue
		}
		out = append(out, string(part))
	}
	return out
}

func (c *Chunker) spans(text []rune) []span {
	n := len(text)
	if n == 0 {
		return nil
	}

	var out []span
	start := 0
	for {
		end := start + c.size
		if end >= n {
			return append(out, span{start: start, end: n})
		}
		cut := c.cut(text, start, end)
		out = append(out, span{start: start, end: cut})
		start = cut - c.overlap
	}
}

// cut picks the end of the chunk that starts at start. The result lies in
// (start+overlap, end] so the following chunk always starts further along.
func (c *Chunker) cut(text []rune, start, end int) int {
	floor := start + c.overlap + 1
	window := text[start:end]
	for _, sep := range c.separators {
		i := lastIndex(window, sep)
		if i < 0 {
			continue
		}
		// The latest match is the best this separator can do.
		if at := start + i + len(sep); at >= floor {
			return at
		}
	}
	return end
}

func lastIndex(s, sep []rune) int {
	for i := len(s) - len(sep); i >= 0; i-- {
		match := true
		for j := range sep {
			if s[i+j] != sep[j] {
				match = false
				break
			}
		}
		if match {
			return i
		}
	}
	return -1
}

func isBlank(rs []rune) bool {
	for _, r := range rs {
		if !unicode.IsSpace(r) {
			return false
		}
	}
	return true
}
