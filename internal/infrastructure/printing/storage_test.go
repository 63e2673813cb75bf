package printing

import (
	"context"
	"io"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/dms/backend/internal/domain/printing"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestStorage(t *testing.T) *FileSystemStorage {
	t.Helper()
	storage, err := NewFileSystemStorage(&FileSystemStorageConfig{
		BasePath: t.TempDir(),
		BaseURL:  "/api/v1/documents",
	})
	require.NoError(t, err)
	return storage
}

func TestFileSystemStorage_StoreAndGet(t *testing.T) {
	storage := newTestStorage(t)
	ctx := context.Background()
	docID := uuid.New()

	result, err := storage.Store(ctx, &StoreRequest{
		DocType:    printing.DocTypeInvoice,
		DocumentID: docID,
		PDFData:    []byte("%PDF-1.4 test"),
	})
	require.NoError(t, err)
	assert.Equal(t, int64(13), result.Size)
	assert.Contains(t, result.Path, "invoice-"+docID.String()+".pdf")
	assert.Equal(t, "/api/v1/documents/"+filepath.ToSlash(result.Path), result.URL)

	reader, err := storage.Get(ctx, result.Path)
	require.NoError(t, err)
	defer reader.Close()

	data, err := io.ReadAll(reader)
	require.NoError(t, err)
	assert.Equal(t, []byte("%PDF-1.4 test"), data)
}

func TestFileSystemStorage_Store_Validation(t *testing.T) {
	storage := newTestStorage(t)
	ctx := context.Background()

	cases := []struct {
		name string
		req  *StoreRequest
	}{
		{"nil request", nil},
		{"invalid doc type", &StoreRequest{DocumentID: uuid.New(), PDFData: []byte("x")}},
		{"missing document id", &StoreRequest{DocType: printing.DocTypeContract, PDFData: []byte("x")}},
		{"empty data", &StoreRequest{DocType: printing.DocTypeContract, DocumentID: uuid.New()}},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := storage.Store(ctx, tc.req)
			require.Error(t, err)
			var renderErr *RenderError
			require.ErrorAs(t, err, &renderErr)
			assert.Equal(t, ErrCodeStorageFailed, renderErr.Code)
		})
	}
}

func TestFileSystemStorage_Delete(t *testing.T) {
	storage := newTestStorage(t)
	ctx := context.Background()

	result, err := storage.Store(ctx, &StoreRequest{
		DocType:    printing.DocTypeContract,
		DocumentID: uuid.New(),
		PDFData:    []byte("%PDF-1.4"),
	})
	require.NoError(t, err)

	require.NoError(t, storage.Delete(ctx, result.Path))

	_, err = storage.Get(ctx, result.Path)
	require.Error(t, err)

	// Deleting an already-deleted file is not an error
	require.NoError(t, storage.Delete(ctx, result.Path))
}

func TestFileSystemStorage_BlocksPathTraversal(t *testing.T) {
	storage := newTestStorage(t)
	ctx := context.Background()

	for _, path := range []string{
		"../outside.pdf",
		"2026/../../outside.pdf",
		"/etc/passwd",
	} {
		_, err := storage.Get(ctx, path)
		require.Error(t, err, "path %q should be rejected", path)

		err = storage.Delete(ctx, path)
		require.Error(t, err, "path %q should be rejected", path)
	}
}

func TestFileSystemStorage_CleanupOlderThan(t *testing.T) {
	storage := newTestStorage(t)
	ctx := context.Background()

	oldResult, err := storage.Store(ctx, &StoreRequest{
		DocType:    printing.DocTypeInvoice,
		DocumentID: uuid.New(),
		PDFData:    []byte("%PDF-old"),
	})
	require.NoError(t, err)

	newResult, err := storage.Store(ctx, &StoreRequest{
		DocType:    printing.DocTypeInvoice,
		DocumentID: uuid.New(),
		PDFData:    []byte("%PDF-new"),
	})
	require.NoError(t, err)

	oldPath := filepath.Join(storage.config.BasePath, oldResult.Path)
	past := time.Now().Add(-48 * time.Hour)
	require.NoError(t, os.Chtimes(oldPath, past, past))

	deleted, err := storage.CleanupOlderThan(ctx, 24*time.Hour)
	require.NoError(t, err)
	assert.Equal(t, 1, deleted)

	_, err = storage.Get(ctx, oldResult.Path)
	require.Error(t, err)

	reader, err := storage.Get(ctx, newResult.Path)
	require.NoError(t, err)
	reader.Close()
}
