package store

import (
	"bufio"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"github.com/segmentio/ksuid"
	"github.com/ssargent/shelfdb/pkg/codec"
)

const defaultBufferSize = 64 * 1024

// FileWriter replaces the data file wholesale. Each rewrite goes to a
// temporary sibling which is renamed over the target, so a reader never
// sees a half-written file.
type FileWriter struct {
	codec  *codec.LineCodec
	config FileWriterConfig
	mutex  sync.Mutex
	size   int64 // Size of the last complete file
}

// NewFileWriter creates a new file writer with the given configuration
func NewFileWriter(config FileWriterConfig) (*FileWriter, error) {
	if config.FilePath == "" {
		return nil, errors.New("file path is required")
	}
	if config.BufferSize <= 0 {
		config.BufferSize = defaultBufferSize
	}

	// Ensure directory exists
	if err := os.MkdirAll(filepath.Dir(config.FilePath), 0750); err != nil {
		return nil, fmt.Errorf("failed to create data directory: %w", err)
	}

	w := &FileWriter{
		codec:  codec.NewLineCodec(),
		config: config,
	}

	if info, err := os.Stat(config.FilePath); err == nil {
		w.size = info.Size()
	}

	return w, nil
}

// Rewrite replaces the file with one line per book returned by snapshot.
// snapshot is called while the writer lock is held, so concurrent rewrites
// never interleave and the last one to finish carries the newest state.
func (w *FileWriter) Rewrite(snapshot func() []codec.Book) error {
	w.mutex.Lock()
	defer w.mutex.Unlock()

	books := snapshot()

	tmpPath := fmt.Sprintf("%s.%s.tmp", w.config.FilePath, ksuid.New().String())
	file, err := os.OpenFile(tmpPath, os.O_CREATE|os.O_EXCL|os.O_WRONLY, 0600)
	if err != nil {
		return fmt.Errorf("failed to create temp file: %w", err)
	}

	size, err := w.writeAll(file, books)
	if err != nil {
		return errors.Join(err, file.Close(), os.Remove(tmpPath))
	}

	if err := file.Close(); err != nil {
		return errors.Join(fmt.Errorf("failed to close temp file: %w", err), os.Remove(tmpPath))
	}

	if err := os.Rename(tmpPath, w.config.FilePath); err != nil {
		return errors.Join(fmt.Errorf("failed to replace data file: %w", err), os.Remove(tmpPath))
	}

	w.size = size
	return nil
}

func (w *FileWriter) writeAll(file *os.File, books []codec.Book) (int64, error) {
	buf := bufio.NewWriterSize(file, w.config.BufferSize)

	var size int64
	for _, b := range books {
		n, err := buf.WriteString(w.codec.Encode(b))
		if err != nil {
			return 0, fmt.Errorf("failed to write book %s: %w", b.ID, err)
		}
		if err := buf.WriteByte('\n'); err != nil {
			return 0, fmt.Errorf("failed to write newline: %w", err)
		}
		size += int64(n) + 1
	}

	if err := buf.Flush(); err != nil {
		return 0, fmt.Errorf("failed to flush: %w", err)
	}

	if !w.config.NoSync {
		if err := file.Sync(); err != nil {
			return 0, fmt.Errorf("failed to sync: %w", err)
		}
	}

	return size, nil
}

// Size returns the size of the last file written
func (w *FileWriter) Size() int64 {
	w.mutex.Lock()
	defer w.mutex.Unlock()
	return w.size
}

// Path returns the file path
func (w *FileWriter) Path() string {
	return w.config.FilePath
}
