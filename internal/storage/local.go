// Package storage keeps uploaded and generated artifacts on the local disk.
package storage

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
)

// BatchLayout names a template upload folder, one per batch, to the second.
const BatchLayout = "20060102_150405"

// ErrInvalidFilename is returned for names that do not reduce to a plain file name.
var ErrInvalidFilename = errors.New("invalid file name")

// LocalStore lays out three directories: per-request staging folders for
// uploads under processing, generated CSV outputs, and template batches.
type LocalStore struct {
	stagingDir string
	outputDir  string
	uploadsDir string
	now        func() time.Time
}

// NewLocalStore resolves the directories to absolute paths and creates them.
func NewLocalStore(stagingDir, outputDir, uploadsDir string) (*LocalStore, error) {
	s := &LocalStore{now: time.Now}
	for dst, dir := range map[*string]string{
		&s.stagingDir: stagingDir,
		&s.outputDir:  outputDir,
		&s.uploadsDir: uploadsDir,
	} {
		abs, err := filepath.Abs(dir)
		if err != nil {
			return nil, err
		}
		if err := os.MkdirAll(abs, 0o755); err != nil {
			return nil, fmt.Errorf("create %s: %w", abs, err)
		}
		*dst = abs
	}
	return s, nil
}

// NewStagingDir creates a fresh uniquely named folder for one request.
func (s *LocalStore) NewStagingDir() (string, error) {
	dir := filepath.Join(s.stagingDir, uuid.NewString())
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", err
	}
	return dir, nil
}

// NewBatchDir creates a template folder named after the current second. A
// batch never shares its folder: when the name is taken, "_1", "_2", ... is
// appended until one is free.
func (s *LocalStore) NewBatchDir() (string, error) {
	base := filepath.Join(s.uploadsDir, s.now().Format(BatchLayout))
	dir := base
	for i := 1; ; i++ {
		err := os.Mkdir(dir, 0o755)
		if err == nil {
			return dir, nil
		}
		if !errors.Is(err, os.ErrExist) {
			return "", err
		}
		dir = base + "_" + strconv.Itoa(i)
	}
}

// SaveOutput writes a generated artifact into the output directory.
func (s *LocalStore) SaveOutput(name string, r io.Reader) (string, error) {
	path, _, err := s.Save(s.outputDir, name, r)
	return path, err
}

// Save writes r to dir under the base name of filename and returns the
// written path and size.
func (s *LocalStore) Save(dir, filename string, r io.Reader) (string, int64, error) {
	name, err := CleanName(filename)
	if err != nil {
		return "", 0, err
	}

	path := filepath.Join(dir, name)
	f, err := os.Create(path)
	if err != nil {
		return "", 0, err
	}

	n, err := io.Copy(f, r)
	if cerr := f.Close(); err == nil {
		err = cerr
	}
	if err != nil {
		os.Remove(path)
		return "", 0, err
	}
	return path, n, nil
}

// Exists reports whether path names an existing regular file.
func (s *LocalStore) Exists(path string) (bool, error) {
	info, err := os.Stat(path)
	if errors.Is(err, os.ErrNotExist) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return info.Mode().IsRegular(), nil
}

// Open opens an artifact for reading.
func (s *LocalStore) Open(path string) (*os.File, error) {
	return os.Open(path)
}

// Remove deletes a single artifact.
func (s *LocalStore) Remove(path string) error {
	return os.Remove(path)
}

// RemoveAll deletes a folder and everything below it.
func (s *LocalStore) RemoveAll(dir string) error {
	return os.RemoveAll(dir)
}

// CleanName strips any directory part from a client supplied file name.
func CleanName(filename string) (string, error) {
	name := filepath.Base(strings.ReplaceAll(filename, "\\", "/"))
	if name == "." || name == "/" || name == ".." || strings.TrimSpace(name) == "" {
		return "", ErrInvalidFilename
	}
	return name, nil
}
