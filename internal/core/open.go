package core

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/klauspost/compress/gzip"
	"github.com/klauspost/compress/zstd"
	"github.com/pierrec/lz4/v4"
)

// Compression is the container format of an input file, chosen by extension.
type Compression int

const (
	CompressionNone Compression = iota
	CompressionGzip
	CompressionZstd
	CompressionLZ4
)

// DetectCompression picks a decompressor from the file extension.
func DetectCompression(path string) Compression {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".gz", ".gzip":
		return CompressionGzip
	case ".zst", ".zstd":
		return CompressionZstd
	case ".lz4":
		return CompressionLZ4
	default:
		return CompressionNone
	}
}

// DecodedFile is a decompressed, UTF-8 sanitized view of a file.
type DecodedFile struct {
	io.Reader

	closers []func() error
}

// Close releases the decompressor and the file.
func (f *DecodedFile) Close() error {
	var first error
	for i := len(f.closers) - 1; i >= 0; i-- {
		if err := f.closers[i](); err != nil && first == nil {
			first = err
		}
	}
	return first
}

// OpenDecoded opens path, decompresses it according to its extension and wraps
// the stream with BOM stripping and UTF-8 sanitization. Failures are returned
// as *FileAccessError.
func OpenDecoded(path string) (*DecodedFile, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, &FileAccessError{Path: path, Err: err}
	}

	out := &DecodedFile{closers: []func() error{file.Close}}
	var src io.Reader = file

	switch DetectCompression(path) {
	case CompressionGzip:
		gz, err := gzip.NewReader(file)
		if err != nil {
			file.Close()
			return nil, &FileAccessError{Path: path, Err: fmt.Errorf("gzip: %w", err)}
		}
		out.closers = append(out.closers, gz.Close)
		src = gz
	case CompressionZstd:
		dec, err := zstd.NewReader(file)
		if err != nil {
			file.Close()
			return nil, &FileAccessError{Path: path, Err: fmt.Errorf("zstd: %w", err)}
		}
		out.closers = append(out.closers, func() error { dec.Close(); return nil })
		src = dec
	case CompressionLZ4:
		src = lz4.NewReader(file)
	}

	out.Reader = NewUTF8Reader(src)
	return out, nil
}
