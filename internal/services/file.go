package services

import (
	"context"
	"errors"
	"io"
	"os"

	"github.com/sbilibin2017/filekit/internal/logger"
	"github.com/sbilibin2017/filekit/internal/models"
)

//go:generate mockgen -source=file.go -destination=file_mock.go -package=services

var (
	// ErrFileNotFound is returned when no file row has the given id.
	ErrFileNotFound = errors.New("file not found")
	// ErrArtifactNotFound is returned when the row exists but its artifact is gone from disk.
	ErrArtifactNotFound = errors.New("file does not exist on the server")
)

// FileReader defines read-only operations for files.
type FileReader interface {
	GetByID(ctx context.Context, id int64) (*models.FileDB, error)
	List(ctx context.Context, userID *int64, page models.Page) ([]models.FileDB, int, error)
	ListWithOwner(ctx context.Context, page models.Page) ([]models.FileWithOwner, int, error)
}

// FileWriter defines write operations for files.
type FileWriter interface {
	Save(ctx context.Context, file *models.FileDB) error
	Delete(ctx context.Context, id int64) (bool, error)
}

// ArtifactStore gives access to generated artifacts on disk.
type ArtifactStore interface {
	Exists(path string) (bool, error)
	Open(path string) (*os.File, error)
	Remove(path string) error
}

// FileService lists, serves and deletes generated files.
type FileService struct {
	reader      FileReader
	writer      FileWriter
	store       ArtifactStore
	kafkaWriter KafkaWriter
}

// NewFileService creates a new FileService. kafkaWriter may be nil.
func NewFileService(reader FileReader, writer FileWriter, store ArtifactStore, kafkaWriter KafkaWriter) *FileService {
	return &FileService{
		reader:      reader,
		writer:      writer,
		store:       store,
		kafkaWriter: kafkaWriter,
	}
}

// GetFiles returns one page of files, restricted to userID when it is not nil.
func (s *FileService) GetFiles(ctx context.Context, userID *int64, page models.Page) ([]models.FileDB, int, error) {
	files, total, err := s.reader.List(ctx, userID, page)
	if err != nil {
		logger.Log.Errorw("failed to list files", "user_id", userID, "error", err)
		return nil, 0, err
	}
	return files, total, nil
}

// GetAllFiles returns one page of files with their owners' names.
func (s *FileService) GetAllFiles(ctx context.Context, page models.Page) ([]models.FileWithOwner, int, error) {
	files, total, err := s.reader.ListWithOwner(ctx, page)
	if err != nil {
		logger.Log.Errorw("failed to list files with owners", "error", err)
		return nil, 0, err
	}
	return files, total, nil
}

// Download returns the file row and an open reader over its artifact.
// The caller closes the reader.
func (s *FileService) Download(ctx context.Context, id int64) (*models.FileDB, io.ReadCloser, error) {
	file, err := s.find(ctx, id)
	if err != nil {
		return nil, nil, err
	}

	f, err := s.store.Open(file.Path)
	if errors.Is(err, os.ErrNotExist) {
		return nil, nil, ErrArtifactNotFound
	}
	if err != nil {
		logger.Log.Errorw("failed to open artifact", "file_id", id, "path", file.Path, "error", err)
		return nil, nil, err
	}
	return file, f, nil
}

// Delete removes the artifact and then the row.
func (s *FileService) Delete(ctx context.Context, id int64) error {
	file, err := s.find(ctx, id)
	if err != nil {
		return err
	}

	if err := s.store.Remove(file.Path); err != nil {
		logger.Log.Errorw("failed to remove artifact", "file_id", id, "path", file.Path, "error", err)
		return err
	}

	found, err := s.writer.Delete(ctx, id)
	if err != nil {
		logger.Log.Errorw("failed to delete file row", "file_id", id, "error", err)
		return err
	}
	if !found {
		return ErrFileNotFound
	}

	logger.Log.Infow("file deleted", "file_id", id, "path", file.Path)
	publishFileEvent(ctx, s.kafkaWriter, newFileEvent(models.FileEventDeleted, file))
	return nil
}

// find loads the row and checks that its artifact is still on disk.
func (s *FileService) find(ctx context.Context, id int64) (*models.FileDB, error) {
	file, err := s.reader.GetByID(ctx, id)
	if err != nil {
		logger.Log.Errorw("failed to get file", "file_id", id, "error", err)
		return nil, err
	}
	if file == nil {
		return nil, ErrFileNotFound
	}

	ok, err := s.store.Exists(file.Path)
	if err != nil {
		logger.Log.Errorw("failed to stat artifact", "file_id", id, "path", file.Path, "error", err)
		return nil, err
	}
	if !ok {
		logger.Log.Warnw("artifact missing on disk", "file_id", id, "path", file.Path)
		return nil, ErrArtifactNotFound
	}
	return file, nil
}
