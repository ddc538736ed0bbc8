package core

import (
	"context"
	"fmt"
	"os"

	"github.com/apache/arrow-go/v18/arrow"
	"github.com/apache/arrow-go/v18/arrow/array"
	"github.com/apache/arrow-go/v18/arrow/memory"
	"github.com/apache/arrow-go/v18/parquet"
	"github.com/apache/arrow-go/v18/parquet/file"
	"github.com/apache/arrow-go/v18/parquet/pqarrow"
)

// LoadParquet reads a Parquet file into a Frame, keeping its Arrow types.
// Column chunks are concatenated so every column is one contiguous array.
func LoadParquet(path string, opts LoadOptions) (*Frame, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, &FileAccessError{Path: path, Err: err}
	}
	defer f.Close()

	pf, err := file.NewParquetReader(f, file.WithReadProps(&parquet.ReaderProperties{}))
	if err != nil {
		return nil, &ParseError{Path: path, Err: fmt.Errorf("parquet: %w", err)}
	}
	defer pf.Close()

	mem := memory.DefaultAllocator
	reader, err := pqarrow.NewFileReader(pf, pqarrow.ArrowReadProperties{}, mem)
	if err != nil {
		return nil, &ParseError{Path: path, Err: fmt.Errorf("parquet: %w", err)}
	}

	table, err := reader.ReadTable(context.Background())
	if err != nil {
		return nil, &ParseError{Path: path, Err: fmt.Errorf("parquet: %w", err)}
	}
	defer table.Release()

	rows := int(table.NumRows())
	if opts.MaxRows > 0 && opts.MaxRows < rows {
		rows = opts.MaxRows
	}

	cols := make([]*Column, 0, table.NumCols())
	release := func() {
		for _, c := range cols {
			c.Release()
		}
	}
	for i := 0; i < int(table.NumCols()); i++ {
		chunked := table.Column(i)
		arr, err := flatten(mem, chunked.DataType(), chunked.Data().Chunks())
		if err != nil {
			release()
			return nil, &ParseError{Path: path, Err: fmt.Errorf("column %q: %w", chunked.Name(), err)}
		}
		if arr.Len() > rows {
			sliced := array.NewSlice(arr, 0, int64(rows))
			arr.Release()
			arr = sliced
		}
		cols = append(cols, ownedColumn(chunked.Name(), arr))
	}

	frame, err := NewFrame(cols...)
	if err != nil {
		release()
		return nil, &ParseError{Path: path, Err: err}
	}
	return frame, nil
}

// ParquetRowCount reads the row count from a Parquet footer.
func ParquetRowCount(path string) (int64, error) {
	pf, err := file.OpenParquetFile(path, false)
	if err != nil {
		return 0, &ParseError{Path: path, Err: fmt.Errorf("parquet: %w", err)}
	}
	defer pf.Close()
	return pf.NumRows(), nil
}

// flatten returns a single array holding all chunks. The caller owns the
// result.
func flatten(mem memory.Allocator, dt arrow.DataType, chunks []arrow.Array) (arrow.Array, error) {
	switch len(chunks) {
	case 0:
		return array.MakeArrayOfNull(mem, dt, 0), nil
	case 1:
		chunks[0].Retain()
		return chunks[0], nil
	default:
		return array.Concatenate(chunks, mem)
	}
}
