package core

// sampler.go builds lightweight structural summaries of files without
// validating them. Only a bounded prefix is loaded; the row count comes from a
// separate byte scan (or the Parquet footer), so it is an estimate of the
// whole file rather than of the sample.

import (
	"os"
	"path/filepath"
	"strings"
)

// SampleMetadata summarizes one file. Any failure yields an entry carrying
// only the filename and the error text.
func SampleMetadata(path string, opts LoadOptions) FileMetadata {
	meta := FileMetadata{Filename: path}

	info, err := os.Stat(path)
	if err != nil {
		meta.Error = (&FileAccessError{Path: path, Err: err}).Error()
		return meta
	}

	opts.MaxRows = MetadataSampleRows
	frame, err := LoadFile(path, opts)
	if err != nil {
		meta.Error = err.Error()
		return meta
	}
	defer frame.Release()

	estimate, err := estimateRows(path)
	if err != nil {
		meta.Error = err.Error()
		return meta
	}

	meta.RowCountEstimate = estimate
	meta.FileSizeBytes = info.Size()
	meta.Columns = frame.Names()
	meta.InferredTypes = InferTypes(frame)
	meta.MissingValueCounts = &CountTable{}
	meta.SampleValues = &SampleTable{}
	for _, col := range frame.Columns() {
		missing := missingMask(col.Data())
		meta.MissingValueCounts.Set(col.Name(), missing.Count())
		meta.SampleValues.Set(col.Name(), previewValues(col, missing, MetadataSampleValues))
	}
	return meta
}

// previewValues renders the first n non-missing values of col in file order.
func previewValues(col *Column, missing Mask, n int) []string {
	arr := col.Data()
	out := make([]string, 0, n)
	for i := 0; i < arr.Len() && len(out) < n; i++ {
		if missing.Get(i) {
			continue
		}
		out = append(out, arr.ValueStr(i))
	}
	return out
}

// estimateRows counts data rows: the Parquet footer count, or the number of
// lines in the decoded stream minus the header.
func estimateRows(path string) (int, error) {
	if strings.EqualFold(filepath.Ext(path), ".parquet") {
		n, err := ParquetRowCount(path)
		return int(n), err
	}

	in, err := OpenDecoded(path)
	if err != nil {
		return 0, err
	}
	defer in.Close()

	lines, err := CountLines(in)
	if err != nil {
		return 0, &FileAccessError{Path: path, Err: err}
	}
	if lines == 0 {
		return 0, nil
	}
	return lines - 1, nil
}
