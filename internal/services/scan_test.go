package services_test

import (
	"bytes"
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/golang/mock/gomock"
	"github.com/sbilibin2017/filekit/internal/models"
	"github.com/sbilibin2017/filekit/internal/pdfinfo"
	"github.com/sbilibin2017/filekit/internal/pdfinfo/pdftest"
	"github.com/sbilibin2017/filekit/internal/services"
	"github.com/sbilibin2017/filekit/internal/storage"
	"github.com/sbilibin2017/filekit/internal/tables"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const invoiceAnswer = `Here are the items.

| Product | Qty | Amount |
|---------|-----|--------|
| Apples  | 2   | 4.00   |
| Pears   | 1   | 3.50   |

| Product | Qty | Amount |
|---------|-----|--------|
| Milk    | 6   | 9.00   |

Total is 16.50.`

type scanFixture struct {
	svc       *services.ScanService
	store     *storage.LocalStore
	root      string
	parser    *services.MockDocumentParser
	embedder  *services.MockEmbedder
	completer *services.MockCompleter
	writer    *services.MockFileWriter
	kafka     *services.MockKafkaWriter
}

func newScanFixture(t *testing.T, ctrl *gomock.Controller) *scanFixture {
	t.Helper()
	root := t.TempDir()
	store, err := storage.NewLocalStore(
		filepath.Join(root, "staging"),
		filepath.Join(root, "output"),
		filepath.Join(root, "uploads"),
	)
	require.NoError(t, err)

	f := &scanFixture{
		store:     store,
		root:      root,
		parser:    services.NewMockDocumentParser(ctrl),
		embedder:  services.NewMockEmbedder(ctrl),
		completer: services.NewMockCompleter(ctrl),
		writer:    services.NewMockFileWriter(ctrl),
		kafka:     services.NewMockKafkaWriter(ctrl),
	}
	f.svc = services.NewScanService(store, pdfinfo.NewCounter(), f.parser, f.embedder, f.completer, f.writer, f.kafka)
	return f
}

func (f *scanFixture) stagingEntries(t *testing.T) []os.DirEntry {
	t.Helper()
	entries, err := os.ReadDir(filepath.Join(f.root, "staging"))
	require.NoError(t, err)
	return entries
}

func embedByLength(_ context.Context, texts []string) ([][]float32, error) {
	out := make([][]float32, len(texts))
	for i, text := range texts {
		out[i] = []float32{1, float32(len(text) % 7)}
	}
	return out, nil
}

func pdfUpload(name string, pages int) services.Upload {
	return services.Upload{Filename: name, Content: bytes.NewReader(pdftest.Bytes(pages))}
}

func TestScanService_Scan(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	f := newScanFixture(t, ctrl)
	ctx := context.Background()

	f.parser.EXPECT().
		Parse(gomock.Any(), gomock.Any(), services.InvoiceInstruction).
		DoAndReturn(func(_ context.Context, path, _ string) (string, error) {
			assert.FileExists(t, path)
			return "# Invoice " + filepath.Base(path) + "\n\n| Product | Qty |\n|---|---|\n| Apples | 2 |", nil
		}).
		Times(2)
	f.embedder.EXPECT().EmbedTexts(gomock.Any(), gomock.Any()).DoAndReturn(embedByLength).Times(2)
	f.completer.EXPECT().
		Complete(gomock.Any(), gomock.Any(), gomock.Any()).
		DoAndReturn(func(_ context.Context, _, prompt string) (string, error) {
			assert.Contains(t, prompt, services.InvoiceQuery)
			return invoiceAnswer, nil
		})
	f.writer.EXPECT().
		Save(gomock.Any(), gomock.Any()).
		DoAndReturn(func(_ context.Context, file *models.FileDB) error {
			file.ID = 1
			return nil
		})
	f.kafka.EXPECT().WriteMessages(gomock.Any(), gomock.Any()).Return(nil)

	file, err := f.svc.Scan(ctx, 1, []services.Upload{pdfUpload("a.pdf", 1), pdfUpload("b.pdf", 2)})
	require.NoError(t, err)

	assert.Equal(t, int64(1), file.UserID)
	assert.Equal(t, 3, file.TotalPages)
	assert.Regexp(t, `^output_invoice_data_[0-9a-f]{32}\.csv$`, file.Name)
	assert.True(t, filepath.IsAbs(file.Path))
	assert.Equal(t, file.Name, filepath.Base(file.Path))

	data, err := os.ReadFile(file.Path)
	require.NoError(t, err)
	lines := strings.Split(strings.TrimSpace(string(data)), "\n")
	assert.Equal(t, []string{
		"Product,Qty,Amount",
		"Apples,2,4.00",
		"Pears,1,3.50",
		"Milk,6,9.00",
	}, lines)

	assert.Empty(t, f.stagingEntries(t))
}

func TestScanService_Scan_Failures(t *testing.T) {
	ctx := context.Background()

	t.Run("no files", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		f := newScanFixture(t, ctrl)

		_, err := f.svc.Scan(ctx, 1, nil)
		assert.ErrorIs(t, err, services.ErrNoFiles)
	})

	t.Run("not a pdf", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		f := newScanFixture(t, ctrl)

		_, err := f.svc.Scan(ctx, 1, []services.Upload{{Filename: "a.pdf", Content: strings.NewReader("plain text")}})
		assert.Error(t, err)
		assert.Empty(t, f.stagingEntries(t))
	})

	t.Run("parser error", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		f := newScanFixture(t, ctrl)
		f.parser.EXPECT().Parse(gomock.Any(), gomock.Any(), gomock.Any()).Return("", errors.New("quota exceeded"))

		_, err := f.svc.Scan(ctx, 1, []services.Upload{pdfUpload("a.pdf", 1)})
		assert.ErrorContains(t, err, "quota exceeded")
		assert.Empty(t, f.stagingEntries(t))
	})

	t.Run("answer without tables", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		f := newScanFixture(t, ctrl)
		f.parser.EXPECT().Parse(gomock.Any(), gomock.Any(), gomock.Any()).Return("some text", nil)
		f.embedder.EXPECT().EmbedTexts(gomock.Any(), gomock.Any()).DoAndReturn(embedByLength).Times(2)
		f.completer.EXPECT().Complete(gomock.Any(), gomock.Any(), gomock.Any()).Return("nothing tabular here", nil)

		_, err := f.svc.Scan(ctx, 1, []services.Upload{pdfUpload("a.pdf", 1)})
		assert.ErrorIs(t, err, tables.ErrNoTables)
		assert.Empty(t, f.stagingEntries(t))
	})

	t.Run("db error", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		f := newScanFixture(t, ctrl)
		f.parser.EXPECT().Parse(gomock.Any(), gomock.Any(), gomock.Any()).Return("text", nil)
		f.embedder.EXPECT().EmbedTexts(gomock.Any(), gomock.Any()).DoAndReturn(embedByLength).Times(2)
		f.completer.EXPECT().Complete(gomock.Any(), gomock.Any(), gomock.Any()).Return(invoiceAnswer, nil)
		f.writer.EXPECT().Save(gomock.Any(), gomock.Any()).Return(errors.New("fk violation"))

		_, err := f.svc.Scan(ctx, 99, []services.Upload{pdfUpload("a.pdf", 1)})
		assert.EqualError(t, err, "fk violation")
		assert.Empty(t, f.stagingEntries(t))

		outputs, err := os.ReadDir(filepath.Join(f.root, "output"))
		require.NoError(t, err)
		assert.Empty(t, outputs, "csv without a row must be removed")
	})
}
