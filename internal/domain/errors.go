package domain

import (
	"errors"
	"fmt"
)

// Sentinel errors. Typed errors below unwrap to one of these so callers can
// match with errors.Is.
var (
	// ErrCorpusFormat indicates the corpus file is not a JSON array of objects.
	ErrCorpusFormat = errors.New("corpus format error")

	// ErrRecordSchema indicates a corpus record lacks a required field.
	ErrRecordSchema = errors.New("record schema error")

	// ErrProviderUnavailable indicates the embedding backend cannot be reached or loaded.
	ErrProviderUnavailable = errors.New("embedding provider unavailable")

	// ErrEmbeddingFailure indicates a specific text could not be embedded.
	ErrEmbeddingFailure = errors.New("embedding failure")

	// ErrDimensionMismatch indicates two vector spaces of different dimension met.
	ErrDimensionMismatch = errors.New("dimension mismatch")

	// ErrCorruptIndex indicates a persisted index cannot be read back.
	ErrCorruptIndex = errors.New("corrupt index")

	// ErrPersistence indicates the index could not be written.
	ErrPersistence = errors.New("persistence error")

	// ErrBuildFailed indicates index construction stopped part way.
	ErrBuildFailed = errors.New("build failed")

	// ErrEmptyIndex indicates a query against an index with no entries.
	ErrEmptyIndex = errors.New("index is empty")

	// ErrEmptyCorpus indicates there were no documents to index.
	ErrEmptyCorpus = errors.New("no documents to index")

	// ErrInvalidInput indicates malformed or invalid input.
	ErrInvalidInput = errors.New("invalid input")
)

// RecordSchemaError reports a record that cannot be projected to text.
type RecordSchemaError struct {
	Kind   string
	Index  int
	Field  string
	Reason string
}

func (e *RecordSchemaError) Error() string {
	reason := e.Reason
	if reason == "" {
		reason = "missing required field"
	}
	return fmt.Sprintf("%s record %d: %s %q", e.Kind, e.Index, reason, e.Field)
}

func (e *RecordSchemaError) Unwrap() error { return ErrRecordSchema }

// CorpusFormatError reports a corpus file that is not a JSON array of objects.
// Element is -1 when the problem is not tied to one element.
type CorpusFormatError struct {
	Path    string
	Element int
	Err     error
}

func (e *CorpusFormatError) Error() string {
	if e.Element >= 0 {
		return fmt.Sprintf("corpus %s: element %d: %v", e.Path, e.Element, e.Err)
	}
	return fmt.Sprintf("corpus %s: %v", e.Path, e.Err)
}

func (e *CorpusFormatError) Unwrap() []error { return []error{ErrCorpusFormat, e.Err} }

// DimensionMismatchError reports vectors whose length differs from the
// expected dimension.
type DimensionMismatchError struct {
	Want int
	Got  int
}

func (e *DimensionMismatchError) Error() string {
	return fmt.Sprintf("dimension mismatch: expected %d, got %d", e.Want, e.Got)
}

func (e *DimensionMismatchError) Unwrap() error { return ErrDimensionMismatch }

// CorruptIndexError reports a persisted index that failed to load.
type CorruptIndexError struct {
	Path   string
	Reason string
	Err    error
}

func (e *CorruptIndexError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("corrupt index %s: %s: %v", e.Path, e.Reason, e.Err)
	}
	return fmt.Sprintf("corrupt index %s: %s", e.Path, e.Reason)
}

func (e *CorruptIndexError) Unwrap() []error {
	if e.Err == nil {
		return []error{ErrCorruptIndex}
	}
	return []error{ErrCorruptIndex, e.Err}
}

// PersistenceError reports a failed write of the index.
type PersistenceError struct {
	Op   string
	Path string
	Err  error
}

func (e *PersistenceError) Error() string {
	return fmt.Sprintf("persist index %s: %s: %v", e.Path, e.Op, e.Err)
}

func (e *PersistenceError) Unwrap() []error { return []error{ErrPersistence, e.Err} }
