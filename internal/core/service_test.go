package core

import (
	"context"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/goccy/go-json"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"
)

type fakeRecorder struct {
	mu         sync.Mutex
	outcomes   []string
	violations map[ErrorKind]int
	failures   int
}

func newFakeRecorder() *fakeRecorder {
	return &fakeRecorder{violations: make(map[ErrorKind]int)}
}

func (r *fakeRecorder) FileValidated(outcome string, _ time.Duration) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.outcomes = append(r.outcomes, outcome)
}

func (r *fakeRecorder) ViolationsFound(kind ErrorKind, n int) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.violations[kind] += n
}

func (r *fakeRecorder) ColumnFailed() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.failures++
}

const sampleCSV = "id,amount,joined,flag,note\n" +
	"1,\"1,000\",2023-01-01,yes,hello\n" +
	"2,\"2,000\",2023-02-15,no,   \n" +
	"3,abc,not-a-date,maybe,world\n" +
	"4,\"4,000\",2023-03-01,y,again\n" +
	"5,\"5,000\",2023-04-01,n,more\n"

func TestValidateFile(t *testing.T) {
	path := writeFile(t, t.TempDir(), "sample.csv", sampleCSV)
	rec := newFakeRecorder()
	v := NewValidator(zap.NewNop(), WithRecorder(rec))

	report, err := v.ValidateFile(context.Background(), path, nil)
	require.NoError(t, err)

	assert.Equal(t, path, report.FilePath)
	assert.Empty(t, report.Error)
	assert.Equal(t, 5, report.TotalRows)
	assert.Equal(t, 5, report.TotalColumns)

	types := report.ColumnTypes
	assert.Equal(t, []string{"id", "amount", "joined", "flag", "note"}, types.Keys())
	assert.Equal(t, TypeInteger, types.Get("id"))
	assert.Equal(t, TypeNumericString, types.Get("amount"))
	assert.Equal(t, TypeDateString, types.Get("joined"))
	assert.Equal(t, TypeText, types.Get("flag"))
	assert.Equal(t, TypeText, types.Get("note"))

	require.Equal(t, 3, report.InvalidCount)
	assert.Equal(t, report.InvalidCount, len(report.InvalidCells))
	assert.Equal(t, report.InvalidCount, report.Summary.ErrorCountsByKind.Total())

	amount := report.InvalidCells[0]
	assert.Equal(t, "amount", amount.Column)
	assert.Equal(t, 4, amount.Row)
	assert.Equal(t, KindTypeMismatch, amount.Kind)

	joined := report.InvalidCells[1]
	assert.Equal(t, "joined", joined.Column)
	assert.Equal(t, 4, joined.Row)
	assert.Equal(t, MsgInvalidDate, joined.Error)

	note := report.InvalidCells[2]
	assert.Equal(t, "note", note.Column)
	assert.Equal(t, 3, note.Row)
	assert.Equal(t, KindMissingValue, note.Kind)

	assert.Equal(t, []string{OutcomeInvalid}, rec.outcomes)
	assert.Equal(t, 1, rec.violations[KindTypeMismatch])
	assert.Equal(t, 1, rec.violations[KindParseFailure])
	assert.Equal(t, 1, rec.violations[KindMissingValue])
}

func TestValidateFileIsIdempotent(t *testing.T) {
	path := writeFile(t, t.TempDir(), "sample.csv", sampleCSV)
	v := NewValidator(nil)

	first, err := v.ValidateFile(context.Background(), path, nil)
	require.NoError(t, err)
	second, err := v.ValidateFile(context.Background(), path, nil)
	require.NoError(t, err)

	a, err := json.Marshal(first)
	require.NoError(t, err)
	b, err := json.Marshal(second)
	require.NoError(t, err)
	assert.Equal(t, string(a), string(b))
}

func TestValidateFileExpectedTypes(t *testing.T) {
	observed, logs := observer.New(zap.WarnLevel)
	path := writeFile(t, t.TempDir(), "sample.csv", sampleCSV)
	rec := newFakeRecorder()
	v := NewValidator(zap.New(observed), WithRecorder(rec))

	expected := map[string]SemanticType{
		"flag":    TypeBoolean,
		"id":      TypeBoolean,
		"missing": TypeInteger,
	}
	report, err := v.ValidateFile(context.Background(), path, expected)
	require.NoError(t, err)

	assert.Equal(t, TypeBoolean, report.ColumnTypes.Get("flag"))
	assert.Equal(t, TypeBoolean, report.ColumnTypes.Get("id"))
	assert.Equal(t, TypeNumericString, report.ColumnTypes.Get("amount"))
	_, listed := report.ColumnTypes.Lookup("missing")
	assert.False(t, listed)

	byColumn := report.Summary.ErrorCountsByColumn
	assert.Equal(t, 1, byColumn.Get("flag"))
	assert.Equal(t, 5, byColumn.Get("id"))
	assert.Equal(t, 1, rec.failures)

	for _, c := range report.InvalidCells {
		if c.Column == "id" {
			assert.Equal(t, KindParseFailure, c.Kind)
			assert.Contains(t, c.Error, MsgValidationError)
		}
	}

	assert.Equal(t, 1, logs.FilterMessage("expected types name columns not in file").Len())
	assert.Equal(t, 1, logs.FilterMessage("column check degraded").Len())
}

func TestValidateFileUnreadable(t *testing.T) {
	rec := newFakeRecorder()
	v := NewValidator(nil, WithRecorder(rec))
	path := filepath.Join(t.TempDir(), "nope.csv")

	report, err := v.ValidateFile(context.Background(), path, nil)
	require.NoError(t, err)
	assert.Equal(t, path, report.FilePath)
	assert.Contains(t, report.Error, "Failed to read CSV")
	assert.Equal(t, 0, report.InvalidCount)
	assert.False(t, report.Valid())
	assert.Equal(t, []string{OutcomeError}, rec.outcomes)

	out, err := json.Marshal(report)
	require.NoError(t, err)
	var decoded map[string]any
	require.NoError(t, json.Unmarshal(out, &decoded))
	assert.Equal(t, []any{}, decoded["invalid_cells"])
	assert.NotContains(t, decoded, "summary")
}

func TestValidateFrame(t *testing.T) {
	v := NewValidator(nil)

	_, err := v.ValidateFrame(context.Background(), nil, nil)
	assert.Error(t, err)

	f, err := NewFrame(
		NewStringColumn("flag", []string{"true", "nah"}, nil),
		NewInt64Column("n", []int64{1, 2}, nil),
	)
	require.NoError(t, err)
	defer f.Release()

	report, err := v.ValidateFrame(context.Background(), f, map[string]SemanticType{"flag": TypeBoolean})
	require.NoError(t, err)
	assert.Empty(t, report.FilePath)
	require.Equal(t, 1, report.InvalidCount)
	assert.Equal(t, 3, report.InvalidCells[0].Row)
	assert.Equal(t, MsgExpectedBool, report.Summary.MostCommonError)
}

func TestValidateFrameValid(t *testing.T) {
	f, err := NewFrame(NewInt64Column("n", []int64{1, 2}, nil))
	require.NoError(t, err)
	defer f.Release()

	report, err := NewValidator(nil).ValidateFrame(context.Background(), f, nil)
	require.NoError(t, err)
	assert.True(t, report.Valid())
	assert.Equal(t, StatusValid, report.Summary.Status)
}

func TestAnalyzeMetadata(t *testing.T) {
	dir := t.TempDir()
	good := writeFile(t, dir, "good.csv", "a,b\n1,x\n2,y\n")
	bad := filepath.Join(dir, "missing.csv")

	batch := NewValidator(nil).AnalyzeMetadata(context.Background(), []string{good, bad, good})
	require.Len(t, batch.Files, 3)
	assert.Empty(t, batch.Files[0].Error)
	assert.NotEmpty(t, batch.Files[1].Error)
	assert.Equal(t, bad, batch.Files[1].Filename)
	assert.Equal(t, 2, batch.Files[2].RowCountEstimate)
}

func TestLoggerFromContext(t *testing.T) {
	fallback := zap.NewNop()
	assert.Same(t, fallback, LoggerFromContext(context.Background(), fallback))

	scoped := zap.NewExample()
	ctx := ContextWithLogger(context.Background(), scoped)
	assert.Same(t, scoped, LoggerFromContext(ctx, fallback))
}
