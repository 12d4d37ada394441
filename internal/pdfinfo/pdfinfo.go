// Package pdfinfo reads document metadata from PDF files.
package pdfinfo

import (
	"fmt"

	"github.com/ledongthuc/pdf"
)

// Counter counts pages of PDF files on disk.
type Counter struct{}

// NewCounter creates a Counter.
func NewCounter() *Counter {
	return &Counter{}
}

// PageCount opens the PDF at path and returns its number of pages.
func (c *Counter) PageCount(path string) (int, error) {
	file, reader, err := pdf.Open(path)
	if err != nil {
		return 0, fmt.Errorf("open pdf: %w", err)
	}
	defer file.Close()

	return reader.NumPage(), nil
}
