package core

import (
	"context"
	"errors"
	"slices"
	"time"

	"go.uber.org/zap"
)

// Outcome labels passed to Recorder.FileValidated.
const (
	OutcomeValid   = "valid"
	OutcomeInvalid = "invalid"
	OutcomeError   = "error"
)

// Recorder receives validation measurements. Implementations must be safe
// for concurrent use; the HTTP server shares one across requests.
type Recorder interface {
	FileValidated(outcome string, elapsed time.Duration)
	ViolationsFound(kind ErrorKind, n int)
	ColumnFailed()
}

type nopRecorder struct{}

func (nopRecorder) FileValidated(string, time.Duration) {}
func (nopRecorder) ViolationsFound(ErrorKind, int)      {}
func (nopRecorder) ColumnFailed()                       {}

// Option configures a Validator.
type Option func(*Validator)

// WithRecorder sends measurements to r.
func WithRecorder(r Recorder) Option {
	return func(v *Validator) {
		if r != nil {
			v.recorder = r
		}
	}
}

// WithLoadOptions sets how files are read.
func WithLoadOptions(opts LoadOptions) Option {
	return func(v *Validator) { v.load = opts }
}

// Validator is the entry point for validating files and frames and for
// sampling file metadata. It holds no per-call state and may be shared.
type Validator struct {
	logger   *zap.Logger
	recorder Recorder
	load     LoadOptions
}

// NewValidator creates a Validator. A nil logger discards log output.
func NewValidator(logger *zap.Logger, opts ...Option) *Validator {
	if logger == nil {
		logger = zap.NewNop()
	}
	v := &Validator{
		logger:   logger,
		recorder: nopRecorder{},
	}
	for _, opt := range opts {
		opt(v)
	}
	return v
}

// LoadOptions returns the options used to read files.
func (v *Validator) LoadOptions() LoadOptions { return v.load }

// ValidateFile loads path and validates every column. Columns named in
// expected are checked against that type; the rest are inferred.
//
// A file that cannot be opened or parsed is not an error: the returned report
// has Error set and no violations.
func (v *Validator) ValidateFile(ctx context.Context, path string, expected map[string]SemanticType) (*ValidationReport, error) {
	start := time.Now()
	log := LoggerFromContext(ctx, v.logger).With(zap.String("file", path))

	frame, err := LoadFile(path, v.load)
	if err != nil {
		log.Warn("failed to read file", zap.Error(err))
		v.recorder.FileValidated(OutcomeError, time.Since(start))
		return FailedReport(path, err), nil
	}
	defer frame.Release()

	report := v.validate(log, frame, expected)
	report.FilePath = path
	v.finish(log, report, start)
	return report, nil
}

// ValidateFrame validates an in-memory frame. The frame is not released.
func (v *Validator) ValidateFrame(ctx context.Context, f *Frame, expected map[string]SemanticType) (*ValidationReport, error) {
	if f == nil {
		return nil, errors.New("validate frame: nil frame")
	}
	start := time.Now()
	log := LoggerFromContext(ctx, v.logger)

	report := v.validate(log, f, expected)
	v.finish(log, report, start)
	return report, nil
}

// AnalyzeMetadata samples each path in order. Every path yields exactly one
// entry; failures are recorded in that entry.
func (v *Validator) AnalyzeMetadata(ctx context.Context, paths []string) MetadataBatch {
	log := LoggerFromContext(ctx, v.logger)
	batch := MetadataBatch{Files: make([]FileMetadata, 0, len(paths))}
	for _, p := range paths {
		meta := SampleMetadata(p, v.load)
		if meta.Error != "" {
			log.Warn("failed to sample file", zap.String("file", p), zap.String("error", meta.Error))
		} else {
			log.Debug("sampled file",
				zap.String("file", p),
				zap.Int("rows", meta.RowCountEstimate),
				zap.Int("columns", len(meta.Columns)),
			)
		}
		batch.Files = append(batch.Files, meta)
	}
	return batch
}

func (v *Validator) validate(log *zap.Logger, f *Frame, expected map[string]SemanticType) *ValidationReport {
	v.warnUnknownColumns(log, f, expected)

	types := &TypeMap{}
	results := make([]ColumnResult, 0, f.NumCols())
	for _, col := range f.Columns() {
		t, ok := expected[col.Name()]
		if !ok {
			t = InferType(col)
		}
		types.Set(col.Name(), t)

		res := ValidateColumn(col, t)
		if res.Failure != nil {
			log.Warn("column check degraded",
				zap.String("column", col.Name()),
				zap.Stringer("type", t),
				zap.Error(res.Failure),
			)
			v.recorder.ColumnFailed()
		}
		results = append(results, res)
	}
	return Aggregate(f.NumRows(), f.NumCols(), types, results)
}

func (v *Validator) warnUnknownColumns(log *zap.Logger, f *Frame, expected map[string]SemanticType) {
	var unknown []string
	for name := range expected {
		if _, ok := f.Column(name); !ok {
			unknown = append(unknown, name)
		}
	}
	if len(unknown) == 0 {
		return
	}
	slices.Sort(unknown)
	log.Warn("expected types name columns not in file", zap.Strings("columns", unknown))
}

func (v *Validator) finish(log *zap.Logger, report *ValidationReport, start time.Time) {
	elapsed := time.Since(start)
	outcome := OutcomeValid
	if report.InvalidCount > 0 {
		outcome = OutcomeInvalid
	}

	counts := make(map[ErrorKind]int)
	for _, c := range report.InvalidCells {
		counts[c.Kind]++
	}
	for _, k := range []ErrorKind{KindMissingValue, KindTypeMismatch, KindParseFailure} {
		if counts[k] > 0 {
			v.recorder.ViolationsFound(k, counts[k])
		}
	}
	v.recorder.FileValidated(outcome, elapsed)

	log.Info("validation complete",
		zap.String("status", outcome),
		zap.Int("rows", report.TotalRows),
		zap.Int("columns", report.TotalColumns),
		zap.Int("invalid", report.InvalidCount),
		zap.Duration("elapsed", elapsed),
	)
}
