package services

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/google/uuid"
	"github.com/sbilibin2017/filekit/internal/index"
	"github.com/sbilibin2017/filekit/internal/logger"
	"github.com/sbilibin2017/filekit/internal/models"
	"github.com/sbilibin2017/filekit/internal/tables"
)

//go:generate mockgen -source=scan.go -destination=scan_mock.go -package=services

// InvoiceInstruction tells the parser what to pull out of an invoice.
const InvoiceInstruction = "The provided file is an invoice containing supplier and program details, invoice numbers, " +
	"and itemized purchase data. Extract the following data in a structured format: " +
	"1. Supplier details: name, address, contact information. " +
	"2. Invoice details: invoice number, date, total amount, and program details (including program ID and description). " +
	"3. Itemized purchases: product name, brand, pack size, description, product ID, DID, UPC, quantities, total price, " +
	"FOB, DEL, program amount, and amount. " +
	"Organize the data as a structured table for itemized purchases and a summary for totals. " +
	"Ensure all monetary values are captured accurately. Mathematical equations are not present and should be ignored. " +
	"Use plain markdown to format the output, with tables for structured data."

// InvoiceQuery is asked over the indexed invoice text.
const InvoiceQuery = "Extract all itemized purchase data and totals as structured tables."

const (
	scanChunkSize = 1024
	scanTopK      = 2
)

// ScanStore stages uploads and keeps generated CSV files.
type ScanStore interface {
	NewStagingDir() (string, error)
	Save(dir, filename string, r io.Reader) (string, int64, error)
	SaveOutput(name string, r io.Reader) (string, error)
	Remove(path string) error
	RemoveAll(dir string) error
}

// PageCounter counts pages of a staged PDF.
type PageCounter interface {
	PageCount(path string) (int, error)
}

// DocumentParser turns a document into markdown.
type DocumentParser interface {
	Parse(ctx context.Context, path, instruction string) (string, error)
}

// Embedder turns texts into vectors.
type Embedder interface {
	EmbedTexts(ctx context.Context, texts []string) ([][]float32, error)
}

// Completer answers a prompt with a language model.
type Completer interface {
	Complete(ctx context.Context, systemPrompt, userPrompt string) (string, error)
}

// ScanService turns uploaded invoices into a CSV of their tables.
type ScanService struct {
	store       ScanStore
	pages       PageCounter
	parser      DocumentParser
	embedder    Embedder
	completer   Completer
	writer      FileWriter
	kafkaWriter KafkaWriter
}

// NewScanService creates a new ScanService. kafkaWriter may be nil.
func NewScanService(
	store ScanStore,
	pages PageCounter,
	parser DocumentParser,
	embedder Embedder,
	completer Completer,
	writer FileWriter,
	kafkaWriter KafkaWriter,
) *ScanService {
	return &ScanService{
		store:       store,
		pages:       pages,
		parser:      parser,
		embedder:    embedder,
		completer:   completer,
		writer:      writer,
		kafkaWriter: kafkaWriter,
	}
}

// Scan stages the uploads, parses them, asks for their tables, writes the
// combined table as CSV and records it for userID. The staging folder is
// always removed.
func (s *ScanService) Scan(ctx context.Context, userID int64, uploads []Upload) (*models.FileDB, error) {
	if len(uploads) == 0 {
		return nil, ErrNoFiles
	}

	dir, err := s.store.NewStagingDir()
	if err != nil {
		logger.Log.Errorw("failed to create staging folder", "error", err)
		return nil, err
	}
	defer func() {
		if err := s.store.RemoveAll(dir); err != nil {
			logger.Log.Warnw("failed to remove staging folder", "dir", dir, "error", err)
		}
	}()

	var (
		docs       []string
		totalPages int
	)
	for _, upload := range uploads {
		path, _, err := s.store.Save(dir, upload.Filename, upload.Content)
		if err != nil {
			logger.Log.Errorw("failed to stage upload", "filename", upload.Filename, "error", err)
			return nil, err
		}

		n, err := s.pages.PageCount(path)
		if err != nil {
			logger.Log.Errorw("failed to read page count", "path", path, "error", err)
			return nil, err
		}
		totalPages += n

		markdown, err := s.parser.Parse(ctx, path, InvoiceInstruction)
		if err != nil {
			return nil, fmt.Errorf("parse %s: %w", upload.Filename, err)
		}
		docs = append(docs, markdown)
	}

	answer, err := s.query(ctx, docs)
	if err != nil {
		return nil, err
	}

	table, err := tables.Extract(answer)
	if err != nil {
		logger.Log.Errorw("no tables in answer", "user_id", userID, "answer_len", len(answer))
		return nil, err
	}

	var buf bytes.Buffer
	if err := tables.WriteCSV(&buf, table); err != nil {
		return nil, err
	}

	name := fmt.Sprintf("output_invoice_data_%s.csv", strings.ReplaceAll(uuid.NewString(), "-", ""))
	path, err := s.store.SaveOutput(name, &buf)
	if err != nil {
		logger.Log.Errorw("failed to write csv", "name", name, "error", err)
		return nil, err
	}

	file := &models.FileDB{
		Name:       name,
		Path:       path,
		TotalPages: totalPages,
		UserID:     userID,
	}
	if err := s.writer.Save(ctx, file); err != nil {
		logger.Log.Errorw("failed to save file", "path", path, "user_id", userID, "error", err)
		if rmErr := s.store.Remove(path); rmErr != nil {
			logger.Log.Warnw("failed to remove unrecorded csv", "path", path, "error", rmErr)
		}
		return nil, err
	}

	logger.Log.Infow("csv created", "file_id", file.ID, "path", path, "rows", len(table.Rows), "total_pages", totalPages)
	publishFileEvent(ctx, s.kafkaWriter, newFileEvent(models.FileEventScanned, file))
	return file, nil
}

// query indexes the parsed documents and asks InvoiceQuery over them.
func (s *ScanService) query(ctx context.Context, docs []string) (string, error) {
	ix, err := index.Build(ctx, s.embedder, docs, scanChunkSize)
	if err != nil {
		logger.Log.Errorw("failed to build index", "documents", len(docs), "error", err)
		return "", err
	}

	answer, err := ix.Query(ctx, s.completer, InvoiceQuery, scanTopK)
	if err != nil {
		logger.Log.Errorw("failed to query index", "error", err)
		return "", err
	}
	return answer, nil
}
