package services

import (
	"context"
	"errors"
	"io"
	"path/filepath"
	"strings"

	"github.com/sbilibin2017/filekit/internal/logger"
	"github.com/sbilibin2017/filekit/internal/models"
)

//go:generate mockgen -source=template.go -destination=template_mock.go -package=services

// ErrNoFiles is returned when a batch carries no usable files.
var ErrNoFiles = errors.New("no files uploaded")

// Upload is one client supplied file.
type Upload struct {
	Filename string
	Content  io.Reader
}

// TemplateReader defines read-only operations for templates.
type TemplateReader interface {
	List(ctx context.Context, search string, page models.Page) ([]models.TemplateDB, int, error)
}

// TemplateWriter defines write operations for templates.
type TemplateWriter interface {
	Save(ctx context.Context, tpl *models.TemplateDB) error
}

// TemplateStore keeps template files on disk.
type TemplateStore interface {
	NewBatchDir() (string, error)
	Save(dir, filename string, r io.Reader) (string, int64, error)
	Remove(path string) error
}

// TemplateService stores template batches and lists them.
type TemplateService struct {
	reader TemplateReader
	writer TemplateWriter
	store  TemplateStore
}

// NewTemplateService creates a new TemplateService.
func NewTemplateService(reader TemplateReader, writer TemplateWriter, store TemplateStore) *TemplateService {
	return &TemplateService{
		reader: reader,
		writer: writer,
		store:  store,
	}
}

// Add writes every named upload into one batch folder and records it.
// On failure the files written so far are removed and the error is returned,
// so the caller's transaction can be rolled back.
func (s *TemplateService) Add(ctx context.Context, uploads []Upload) (saved []models.TemplateDB, err error) {
	if len(uploads) == 0 {
		return nil, ErrNoFiles
	}

	dir, err := s.store.NewBatchDir()
	if err != nil {
		logger.Log.Errorw("failed to create template folder", "error", err)
		return nil, err
	}

	var written []string
	defer func() {
		if err == nil {
			return
		}
		for _, path := range written {
			if rmErr := s.store.Remove(path); rmErr != nil {
				logger.Log.Warnw("failed to remove template after error", "path", path, "error", rmErr)
			}
		}
	}()

	for _, upload := range uploads {
		if upload.Filename == "" {
			continue
		}

		path, size, err := s.store.Save(dir, upload.Filename, upload.Content)
		if err != nil {
			logger.Log.Errorw("failed to store template", "filename", upload.Filename, "error", err)
			return nil, err
		}
		written = append(written, path)

		base := filepath.Base(path)
		ext := filepath.Ext(base)
		tpl := models.TemplateDB{
			Name: strings.TrimSuffix(base, ext),
			Type: strings.TrimPrefix(ext, "."),
			Size: size,
			Path: path,
		}
		if err := s.writer.Save(ctx, &tpl); err != nil {
			logger.Log.Errorw("failed to save template", "path", path, "error", err)
			return nil, err
		}
		saved = append(saved, tpl)
	}

	logger.Log.Infow("templates uploaded", "folder", dir, "count", len(saved))
	return saved, nil
}

// List returns one page of templates matching search and the size of the filtered set.
func (s *TemplateService) List(ctx context.Context, search string, page models.Page) ([]models.TemplateDB, int, error) {
	templates, total, err := s.reader.List(ctx, search, page)
	if err != nil {
		logger.Log.Errorw("failed to list templates", "search", search, "error", err)
		return nil, 0, err
	}
	return templates, total, nil
}
