package pdfinfo

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/sbilibin2017/filekit/internal/pdfinfo/pdftest"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCounter_PageCount(t *testing.T) {
	dir := t.TempDir()
	c := NewCounter()

	for _, pages := range []int{1, 3} {
		path := pdftest.Write(t, dir, "doc.pdf", pages)

		got, err := c.PageCount(path)
		require.NoError(t, err)
		assert.Equal(t, pages, got)
	}
}

func TestCounter_NotAPDF(t *testing.T) {
	path := filepath.Join(t.TempDir(), "notes.txt")
	require.NoError(t, os.WriteFile(path, []byte("hello"), 0o644))

	_, err := NewCounter().PageCount(path)
	assert.Error(t, err)
}

func TestCounter_MissingFile(t *testing.T) {
	_, err := NewCounter().PageCount(filepath.Join(t.TempDir(), "missing.pdf"))
	assert.Error(t, err)
}
