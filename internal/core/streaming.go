package core

// streaming.go provides the readers every loader reads through.
//
//   - UTF-8 decoding: strips a leading BOM and replaces invalid sequences
//     with U+FFFD (golang.org/x/text)
//   - CountLines: a single pass over a stream counting record lines

import (
	"bytes"
	"io"

	"golang.org/x/text/encoding/unicode"
	"golang.org/x/text/transform"
)

// NewUTF8Reader returns a reader that drops a leading UTF-8 BOM and replaces
// invalid UTF-8 with the replacement character.
func NewUTF8Reader(r io.Reader) io.Reader {
	return transform.NewReader(r, unicode.UTF8BOM.NewDecoder())
}

// CountLines counts the lines in r: every newline byte ends one, and trailing
// bytes after the last newline form one more.
func CountLines(r io.Reader) (int, error) {
	buf := make([]byte, 64*1024)
	lines := 0
	var last byte = '\n'
	for {
		n, err := r.Read(buf)
		if n > 0 {
			lines += bytes.Count(buf[:n], []byte{'\n'})
			last = buf[n-1]
		}
		if err == io.EOF {
			break
		}
		if err != nil {
			return lines, err
		}
	}
	if last != '\n' {
		lines++
	}
	return lines, nil
}
