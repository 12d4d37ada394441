package index

import (
	"context"
	"errors"
	"strings"
	"testing"
	"unicode/utf8"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// keywordEmbedder maps every text to a 2-d vector: (mentions "total", mentions "supplier").
type keywordEmbedder struct {
	calls int
	err   error
}

func (e *keywordEmbedder) EmbedTexts(ctx context.Context, texts []string) ([][]float32, error) {
	e.calls++
	if e.err != nil {
		return nil, e.err
	}
	out := make([][]float32, len(texts))
	for i, t := range texts {
		t = strings.ToLower(t)
		var v [2]float32
		if strings.Contains(t, "total") {
			v[0] = 1
		}
		if strings.Contains(t, "supplier") {
			v[1] = 1
		}
		out[i] = v[:]
	}
	return out, nil
}

type recordingCompleter struct {
	prompt string
}

func (c *recordingCompleter) Complete(ctx context.Context, system, prompt string) (string, error) {
	c.prompt = prompt
	return "| Total |\n|---|\n| 10 |", nil
}

func TestChunk(t *testing.T) {
	tests := []struct {
		name string
		text string
		size int
		want []string
	}{
		{"empty", "  \n\n ", 10, nil},
		{"fits", "a\n\nb", 10, []string{"a\n\nb"}},
		{"split on paragraphs", "aaaa\n\nbbbb\n\ncccc", 10, []string{"aaaa\n\nbbbb", "cccc"}},
		{"long paragraph split on lines", "aaaa\nbbbb\ncccc", 10, []string{"aaaa\n\nbbbb", "cccc"}},
		{"long line cut", "abcdefghij", 4, []string{"abcd", "efgh", "ij"}},
		{"no limit", "a\n\nb", 0, []string{"a\n\nb"}},
		{"multibyte line cut on rune boundary", strings.Repeat("é", 10), 5, []string{"éé", "éé", "éé", "éé", "éé"}},
		{"rune wider than limit", "€€", 2, []string{"€", "€"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Chunk(tt.text, tt.size)
			assert.Equal(t, tt.want, got)
			for _, c := range got {
				assert.True(t, utf8.ValidString(c), "chunk %q", c)
			}
		})
	}
}

func TestCosine(t *testing.T) {
	assert.InDelta(t, 1.0, Cosine([]float32{1, 1}, []float32{2, 2}), 1e-9)
	assert.InDelta(t, 0.0, Cosine([]float32{1, 0}, []float32{0, 1}), 1e-9)
	assert.Equal(t, 0.0, Cosine([]float32{0, 0}, []float32{1, 1}))
	assert.Equal(t, 0.0, Cosine([]float32{1}, []float32{1, 1}))
}

func TestIndex_QueryUsesBestChunks(t *testing.T) {
	ctx := context.Background()
	emb := &keywordEmbedder{}

	docs := []string{
		"Supplier: Acme\n\nAddress: Main street",
		"| Item | Total |\n|---|---|\n| Apples | 10 |",
	}
	ix, err := Build(ctx, emb, docs, 100)
	require.NoError(t, err)
	assert.Equal(t, 2, ix.Len())

	hits, err := ix.Search(ctx, "all totals", 1)
	require.NoError(t, err)
	require.Len(t, hits, 1)
	assert.Contains(t, hits[0].Text, "Apples")

	c := &recordingCompleter{}
	answer, err := ix.Query(ctx, c, "Extract totals", 1)
	require.NoError(t, err)
	assert.Equal(t, "| Total |\n|---|\n| 10 |", answer)
	assert.Contains(t, c.prompt, "Apples")
	assert.Contains(t, c.prompt, "Query: Extract totals")
	assert.NotContains(t, c.prompt, "Acme")
}

func TestBuild_Errors(t *testing.T) {
	ctx := context.Background()

	_, err := Build(ctx, &keywordEmbedder{}, []string{"", "  "}, 100)
	assert.ErrorIs(t, err, ErrEmptyIndex)

	boom := errors.New("boom")
	_, err = Build(ctx, &keywordEmbedder{err: boom}, []string{"text"}, 100)
	assert.ErrorIs(t, err, boom)
}
