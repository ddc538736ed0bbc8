package core

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/goccy/go-json"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestSampleMetadata(t *testing.T) {
	dir := t.TempDir()
	path := writeFile(t, dir, "people.csv", "id,name,score\n1,ann,\n2,,1.5\n3,cy,2\n4,dee,x\n5,eve,3\n6,fay,4")

	meta := SampleMetadata(path, LoadOptions{})
	require.Empty(t, meta.Error)

	assert.Equal(t, path, meta.Filename)
	assert.Equal(t, 6, meta.RowCountEstimate)
	assert.Equal(t, []string{"id", "name", "score"}, meta.Columns)

	info, err := os.Stat(path)
	require.NoError(t, err)
	assert.Equal(t, info.Size(), meta.FileSizeBytes)

	assert.Equal(t, TypeInteger, meta.InferredTypes.Get("id"))
	assert.Equal(t, TypeNumericString, meta.InferredTypes.Get("score"))

	assert.Equal(t, 0, meta.MissingValueCounts.Get("id"))
	assert.Equal(t, 1, meta.MissingValueCounts.Get("name"))
	assert.Equal(t, 1, meta.MissingValueCounts.Get("score"))

	assert.Equal(t, []string{"1", "2", "3", "4", "5"}, meta.SampleValues.Get("id"))
	assert.Equal(t, []string{"ann", "cy", "dee", "eve", "fay"}, meta.SampleValues.Get("name"))
}

func TestSampleMetadataBoundsTheSample(t *testing.T) {
	var b strings.Builder
	b.WriteString("n\n")
	total := MetadataSampleRows + 250
	for i := 0; i < total; i++ {
		fmt.Fprintf(&b, "%d\n", i)
	}
	path := writeFile(t, t.TempDir(), "big.csv", b.String())

	meta := SampleMetadata(path, LoadOptions{})
	require.Empty(t, meta.Error)
	assert.Equal(t, total, meta.RowCountEstimate)
}

func TestSampleMetadataParquet(t *testing.T) {
	path := parquetFixture(t)

	meta := SampleMetadata(path, LoadOptions{})
	require.Empty(t, meta.Error)
	assert.Equal(t, 3, meta.RowCountEstimate)
	assert.Equal(t, 1, meta.MissingValueCounts.Get("id"))
	assert.Equal(t, 1, meta.MissingValueCounts.Get("name"))
	assert.Equal(t, []string{"1", "3"}, meta.SampleValues.Get("id"))
}

func TestSampleMetadataErrors(t *testing.T) {
	dir := t.TempDir()

	missing := SampleMetadata(filepath.Join(dir, "gone.csv"), LoadOptions{})
	assert.NotEmpty(t, missing.Error)

	empty := SampleMetadata(writeFile(t, dir, "empty.csv", ""), LoadOptions{})
	assert.Contains(t, empty.Error, "empty file")

	out, err := json.Marshal(empty)
	require.NoError(t, err)
	assert.JSONEq(t, fmt.Sprintf(`{"filename": %q, "error": %q}`, empty.Filename, empty.Error), string(out))
}
