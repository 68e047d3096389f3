// Package ingest loads product label documents, splits them into chunks
// and writes them to the vector store.
package ingest

import (
	"strings"
)

const (
	// DefaultChunkSize and DefaultChunkOverlap match how the knowledge
	// base was originally built, so re-ingestion produces comparable
	// chunks.
	DefaultChunkSize    = 1500
	DefaultChunkOverlap = 200
)

// Splitter cuts text into overlapping chunks, preferring paragraph and
// sentence boundaries over hard cuts.
type Splitter struct {
	ChunkSize int
	Overlap   int
}

func NewSplitter(size, overlap int) *Splitter {
	if size <= 0 {
		size = DefaultChunkSize
	}
	if overlap < 0 || overlap >= size {
		overlap = DefaultChunkOverlap
	}
	return &Splitter{ChunkSize: size, Overlap: overlap}
}

func (s *Splitter) Split(text string) []string {
	text = strings.TrimSpace(text)
	if text == "" {
		return nil
	}
	runes := []rune(text)
	if len(runes) <= s.ChunkSize {
		return []string{text}
	}

	var chunks []string
	start := 0
	for start < len(runes) {
		end := start + s.ChunkSize
		if end >= len(runes) {
			chunk := strings.TrimSpace(string(runes[start:]))
			if chunk != "" {
				chunks = append(chunks, chunk)
			}
			break
		}
		cut := s.cutPoint(runes, start, end)
		chunk := strings.TrimSpace(string(runes[start:cut]))
		if chunk != "" {
			chunks = append(chunks, chunk)
		}
		next := cut - s.Overlap
		if next <= start {
			next = cut
		}
		start = next
	}
	return chunks
}

// cutPoint looks backwards from end for a paragraph break, then a line
// break, then a sentence end. Falls back to a hard cut at end.
func (s *Splitter) cutPoint(runes []rune, start, end int) int {
	minCut := start + s.ChunkSize/2
	for i := end; i > minCut; i-- {
		if i+1 < len(runes) && runes[i] == '\n' && runes[i+1] == '\n' {
			return i
		}
	}
	for i := end; i > minCut; i-- {
		if runes[i] == '\n' {
			return i
		}
	}
	for i := end; i > minCut; i-- {
		if runes[i] == '.' || runes[i] == '!' || runes[i] == '?' {
			return i + 1
		}
	}
	return end
}
