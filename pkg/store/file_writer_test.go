package store

import (
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/ssargent/shelfdb/pkg/codec"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testBook(id string, quantity int) codec.Book {
	return codec.NewBook(id, "Title "+id, "Author "+id, "9780441013593",
		time.Date(2001, 2, 3, 0, 0, 0, 0, time.UTC), quantity)
}

func booksOf(books ...codec.Book) func() []codec.Book {
	return func() []codec.Book { return books }
}

func TestNewFileWriter_DirectoryCreation(t *testing.T) {
	tmpDir := t.TempDir()
	nestedDir := filepath.Join(tmpDir, "nested", "deep", "path")
	filePath := filepath.Join(nestedDir, "books.txt")

	writer, err := NewFileWriter(FileWriterConfig{FilePath: filePath})
	require.NoError(t, err)

	assert.DirExists(t, nestedDir)
	assert.NoFileExists(t, filePath, "file is created on first rewrite")
	assert.Equal(t, int64(0), writer.Size())
	assert.Equal(t, filePath, writer.Path())
}

func TestNewFileWriter_RequiresPath(t *testing.T) {
	_, err := NewFileWriter(FileWriterConfig{})
	assert.Error(t, err)
}

func TestFileWriter_Rewrite(t *testing.T) {
	filePath := filepath.Join(t.TempDir(), "books.txt")

	writer, err := NewFileWriter(FileWriterConfig{FilePath: filePath, BufferSize: 16})
	require.NoError(t, err)

	require.NoError(t, writer.Rewrite(booksOf(testBook("LIB-001", 1), testBook("LIB-002", 2))))

	data, err := os.ReadFile(filePath)
	require.NoError(t, err)
	assert.Equal(t,
		"LIB-001|Title LIB-001|Author LIB-001|9780441013593|2001-02-03|1\n"+
			"LIB-002|Title LIB-002|Author LIB-002|9780441013593|2001-02-03|2\n",
		string(data))
	assert.Equal(t, int64(len(data)), writer.Size())

	// A second rewrite replaces rather than appends.
	require.NoError(t, writer.Rewrite(booksOf(testBook("LIB-003", 3))))

	data, err = os.ReadFile(filePath)
	require.NoError(t, err)
	assert.Equal(t, "LIB-003|Title LIB-003|Author LIB-003|9780441013593|2001-02-03|3\n", string(data))

	// Empty collections produce an empty file.
	require.NoError(t, writer.Rewrite(booksOf()))
	data, err = os.ReadFile(filePath)
	require.NoError(t, err)
	assert.Empty(t, data)
	assert.Equal(t, int64(0), writer.Size())
}

func TestFileWriter_RewriteLeavesNoTempFiles(t *testing.T) {
	tmpDir := t.TempDir()
	filePath := filepath.Join(tmpDir, "books.txt")

	writer, err := NewFileWriter(FileWriterConfig{FilePath: filePath, NoSync: true})
	require.NoError(t, err)

	for i := 0; i < 5; i++ {
		require.NoError(t, writer.Rewrite(booksOf(testBook("LIB-001", i))))
	}

	entries, err := os.ReadDir(tmpDir)
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, "books.txt", entries[0].Name())
}

func TestFileWriter_RewriteFailureKeepsOldState(t *testing.T) {
	tmpDir := t.TempDir()
	filePath := filepath.Join(tmpDir, "books.txt")

	writer, err := NewFileWriter(FileWriterConfig{FilePath: filePath, NoSync: true})
	require.NoError(t, err)

	// A non-empty directory at the target path makes the rename fail.
	require.NoError(t, os.MkdirAll(filepath.Join(filePath, "blocker"), 0750))

	err = writer.Rewrite(booksOf(testBook("LIB-001", 1)))
	require.Error(t, err)
	assert.Equal(t, int64(0), writer.Size())

	entries, err := os.ReadDir(tmpDir)
	require.NoError(t, err)
	require.Len(t, entries, 1, "temp file must be removed after a failed rename")
	assert.Equal(t, "books.txt", entries[0].Name())
}

func TestFileWriter_ConcurrentRewrites(t *testing.T) {
	filePath := filepath.Join(t.TempDir(), "books.txt")

	writer, err := NewFileWriter(FileWriterConfig{FilePath: filePath, NoSync: true})
	require.NoError(t, err)

	const writers = 10
	var wg sync.WaitGroup
	for i := 0; i < writers; i++ {
		wg.Add(1)
		go func(n int) {
			defer wg.Done()
			books := make([]codec.Book, n+1)
			for j := range books {
				books[j] = testBook("LIB-001", j)
			}
			assert.NoError(t, writer.Rewrite(booksOf(books...)))
		}(i)
	}
	wg.Wait()

	// Whichever rewrite finished last, the file must be one complete rewrite.
	reader, err := NewFileReader(FileReaderConfig{FilePath: filePath})
	require.NoError(t, err)
	defer reader.Close()

	count := 0
	for book, err := range reader.Books() {
		assert.NoError(t, err)
		assert.Equal(t, count, book.Quantity)
		count++
	}
	assert.GreaterOrEqual(t, count, 1)
	assert.LessOrEqual(t, count, writers)
}
