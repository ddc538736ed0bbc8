// Package core provides the type inference and cell validation engine.
//
// This package is the heart of csvprobe, containing all domain logic
// independent of any CLI or transport layer. It can be used by the HTTP
// server, the command line or tests without modification.
//
// # Architecture
//
// The package is organized around several key concepts:
//
//   - Frame: columns backed by Apache Arrow arrays, loaded from CSV
//     (optionally gzip/zstd/lz4 compressed) or Parquet.
//   - Type lattice: the closed set of [SemanticType] values and the fixed
//     thresholds used to infer them.
//   - Rule registry: one [TypeRule] per semantic type, registered at init and
//     looked up with [RuleFor].
//   - Validator: the entry point ([Validator.ValidateFile],
//     [Validator.ValidateFrame], [Validator.AnalyzeMetadata]).
//
// # Validation
//
// Each column is checked with whole-column operations that produce bitmap
// masks:
//
//  1. The missing mask marks nulls and whitespace-only strings
//  2. If the column's storage already guarantees the expected type, stop
//  3. Otherwise the rule's kernel marks cells that do not conform
//
// Violations are reported with spreadsheet row numbers (first data row is
// row 2). A kernel that cannot run on a column's storage does not abort the
// table: the column's cells are reported as "Validation error: <cause>".
//
// # Inference
//
// Native storage maps directly to a type. String columns are sampled (first
// 1000 non-missing values) and tested in order: date pattern (60%), numeric
// cast (80%), low cardinality (distinct/sample < 0.1 and distinct < 50).
//
// # Error Handling
//
// Technical errors are mapped to user-friendly messages using [MapError]:
//
//   - FILE001-FILE006: File errors (size, parsing, encoding, access)
//   - VAL001-VAL003: Request errors (unknown types, malformed payloads)
//   - UPL002-UPL006: Request lifecycle (busy, not found, cancelled, timeout, store)
//   - RATE001: Per-client rate limit
package core
