package store

import (
	"bufio"
	"errors"
	"io"
	"iter"
	"os"
	"strings"

	"github.com/ssargent/shelfdb/pkg/codec"
)

// FileReader provides sequential access to the books in a data file
type FileReader struct {
	file   *os.File
	reader *bufio.Reader
	codec  *codec.LineCodec
	line   int
	config FileReaderConfig
}

// NewFileReader opens the data file for reading. A missing file is reported
// as an error matching fs.ErrNotExist. Lines have no length limit.
func NewFileReader(config FileReaderConfig) (*FileReader, error) {
	file, err := os.Open(config.FilePath)
	if err != nil {
		return nil, err
	}

	return &FileReader{
		file:   file,
		reader: bufio.NewReader(file),
		codec:  codec.NewLineCodec(),
		config: config,
	}, nil
}

// ReadNext decodes the next line. It returns io.EOF at the end of the file,
// a *codec.DecodeError for a line that can be skipped, and any other error
// when the file itself can not be read further.
func (r *FileReader) ReadNext() (codec.Book, error) {
	text, err := r.reader.ReadString('\n')
	if err != nil {
		if !errors.Is(err, io.EOF) {
			return codec.Book{}, err
		}
		// A final line without a trailing newline still counts.
		if text == "" {
			return codec.Book{}, io.EOF
		}
	}
	r.line++

	text = strings.TrimSuffix(strings.TrimSuffix(text, "\n"), "\r")
	return r.codec.Decode(text)
}

// Line returns the number of lines read so far
func (r *FileReader) Line() int {
	return r.line
}

// Books iterates over every line of the file. Decode failures are yielded
// and iteration continues; any other error is yielded once and ends it.
func (r *FileReader) Books() iter.Seq2[codec.Book, error] {
	return func(yield func(codec.Book, error) bool) {
		for {
			book, err := r.ReadNext()
			if errors.Is(err, io.EOF) {
				return
			}
			if !yield(book, err) {
				return
			}
			if err != nil && !errors.Is(err, codec.ErrMalformedLine) {
				return
			}
		}
	}
}

// Close closes the file reader
func (r *FileReader) Close() error {
	return r.file.Close()
}
