// Package index is a small in-memory vector index used to answer one
// question over a handful of parsed documents.
package index

import (
	"context"
	"errors"
	"fmt"
	"math"
	"sort"
	"strings"
	"unicode/utf8"
)

// ErrEmptyIndex is returned when there is nothing to index or query.
var ErrEmptyIndex = errors.New("index has no content")

const qaSystemPrompt = "You are an expert Q&A system. Always answer the query using the provided context " +
	"information and not prior knowledge. Use plain markdown, with tables for structured data."

const qaPromptTemplate = `Context information is below.
---------------------
%s
---------------------
Given the context information and not prior knowledge, answer the query.
Query: %s
Answer: `

// Embedder turns texts into vectors.
type Embedder interface {
	EmbedTexts(ctx context.Context, texts []string) ([][]float32, error)
}

// Completer answers a prompt with a language model.
type Completer interface {
	Complete(ctx context.Context, systemPrompt, userPrompt string) (string, error)
}

// Hit is a chunk with its cosine similarity to the query.
type Hit struct {
	Text  string
	Score float64
}

// Index holds chunk texts and their embeddings.
type Index struct {
	embedder Embedder
	texts    []string
	vectors  [][]float32
}

// Build chunks docs to at most chunkSize bytes and embeds every chunk.
func Build(ctx context.Context, embedder Embedder, docs []string, chunkSize int) (*Index, error) {
	var chunks []string
	for _, doc := range docs {
		chunks = append(chunks, Chunk(doc, chunkSize)...)
	}
	if len(chunks) == 0 {
		return nil, ErrEmptyIndex
	}

	vectors, err := embedder.EmbedTexts(ctx, chunks)
	if err != nil {
		return nil, fmt.Errorf("embed chunks: %w", err)
	}
	if len(vectors) != len(chunks) {
		return nil, fmt.Errorf("expected %d embeddings, got %d", len(chunks), len(vectors))
	}

	return &Index{embedder: embedder, texts: chunks, vectors: vectors}, nil
}

// Len returns the number of indexed chunks.
func (ix *Index) Len() int {
	return len(ix.texts)
}

// Search returns the topK chunks most similar to query, best first.
func (ix *Index) Search(ctx context.Context, query string, topK int) ([]Hit, error) {
	if ix.Len() == 0 {
		return nil, ErrEmptyIndex
	}

	qv, err := ix.embedder.EmbedTexts(ctx, []string{query})
	if err != nil {
		return nil, fmt.Errorf("embed query: %w", err)
	}
	if len(qv) != 1 {
		return nil, fmt.Errorf("expected 1 query embedding, got %d", len(qv))
	}

	hits := make([]Hit, len(ix.texts))
	for i, v := range ix.vectors {
		hits[i] = Hit{Text: ix.texts[i], Score: Cosine(qv[0], v)}
	}
	sort.SliceStable(hits, func(i, j int) bool { return hits[i].Score > hits[j].Score })

	if topK > 0 && topK < len(hits) {
		hits = hits[:topK]
	}
	return hits, nil
}

// Query retrieves the topK chunks for question and asks the completer to
// answer it over them.
func (ix *Index) Query(ctx context.Context, completer Completer, question string, topK int) (string, error) {
	hits, err := ix.Search(ctx, question, topK)
	if err != nil {
		return "", err
	}

	parts := make([]string, len(hits))
	for i, h := range hits {
		parts[i] = h.Text
	}
	prompt := fmt.Sprintf(qaPromptTemplate, strings.Join(parts, "\n\n"), question)

	answer, err := completer.Complete(ctx, qaSystemPrompt, prompt)
	if err != nil {
		return "", fmt.Errorf("complete query: %w", err)
	}
	return answer, nil
}

// Cosine returns the cosine similarity of a and b, or 0 when either is a
// zero vector or their lengths differ.
func Cosine(a, b []float32) float64 {
	if len(a) != len(b) || len(a) == 0 {
		return 0
	}
	var dot, na, nb float64
	for i := range a {
		dot += float64(a[i]) * float64(b[i])
		na += float64(a[i]) * float64(a[i])
		nb += float64(b[i]) * float64(b[i])
	}
	if na == 0 || nb == 0 {
		return 0
	}
	return dot / (math.Sqrt(na) * math.Sqrt(nb))
}

// Chunk groups blank-line separated paragraphs into chunks of at most size
// bytes. A paragraph longer than size is split on line breaks, and a line
// longer than size is cut. Tables stay whole whenever they fit.
func Chunk(text string, size int) []string {
	text = strings.TrimSpace(strings.ReplaceAll(text, "\r\n", "\n"))
	if text == "" {
		return nil
	}
	if size <= 0 {
		return []string{text}
	}

	var pieces []string
	for _, para := range strings.Split(text, "\n\n") {
		para = strings.TrimSpace(para)
		if para == "" {
			continue
		}
		if len(para) <= size {
			pieces = append(pieces, para)
			continue
		}
		for _, line := range strings.Split(para, "\n") {
			for len(line) > size {
				cut := runeCut(line, size)
				pieces = append(pieces, line[:cut])
				line = line[cut:]
			}
			if line != "" {
				pieces = append(pieces, line)
			}
		}
	}

	var chunks []string
	var cur strings.Builder
	for _, p := range pieces {
		if cur.Len() > 0 && cur.Len()+2+len(p) > size {
			chunks = append(chunks, cur.String())
			cur.Reset()
		}
		if cur.Len() > 0 {
			cur.WriteString("\n\n")
		}
		cur.WriteString(p)
	}
	if cur.Len() > 0 {
		chunks = append(chunks, cur.String())
	}
	return chunks
}

// runeCut returns the largest index <= size that starts a rune, or the first
// rune boundary after size when a single rune is wider than size.
func runeCut(s string, size int) int {
	cut := size
	for cut > 0 && !utf8.RuneStart(s[cut]) {
		cut--
	}
	if cut > 0 {
		return cut
	}
	cut = size
	for cut < len(s) && !utf8.RuneStart(s[cut]) {
		cut++
	}
	return cut
}
