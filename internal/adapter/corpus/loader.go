// Package corpus turns a JSON corpus of structured records into Documents.
package corpus

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"sort"
	"strings"

	"github.com/bmatcuk/doublestar/v4"

	"vecspace/internal/domain"
	"vecspace/internal/port"
)

// Loader reads corpus files and projects their records with one Projection.
type Loader struct {
	projection port.Projection
}

// NewLoader creates a loader for the given record projection.
func NewLoader(projection port.Projection) *Loader {
	return &Loader{projection: projection}
}

// Kind returns the record kind this loader projects.
func (l *Loader) Kind() string {
	return l.projection.Kind()
}

// Load parses the corpus at path. path may be a doublestar glob, in which
// case every match is read in lexical order and the records concatenated.
func (l *Loader) Load(path string) ([]domain.Record, error) {
	files, err := resolve(path)
	if err != nil {
		return nil, err
	}

	var records []domain.Record
	for _, file := range files {
		recs, err := readFile(file)
		if err != nil {
			return nil, err
		}
		records = append(records, recs...)
	}
	return records, nil
}

// BuildDocuments projects records[0:limit] into Documents in source order.
// limit <= 0 means all records. On the first record that fails projection
// it returns no documents and a *domain.RecordSchemaError.
func (l *Loader) BuildDocuments(records []domain.Record, limit int) ([]domain.Document, error) {
	n := len(records)
	if limit > 0 && limit < n {
		n = limit
	}

	docs := make([]domain.Document, 0, n)
	for i := 0; i < n; i++ {
		text, err := l.projection.Text(i, records[i])
		if err != nil {
			return nil, err
		}
		docs = append(docs, domain.Document{Text: text, Metadata: records[i]})
	}
	return docs, nil
}

// resolve expands a glob pattern, or returns a plain path unchanged.
func resolve(pattern string) ([]string, error) {
	if !strings.ContainsAny(pattern, "*?[{") {
		return []string{pattern}, nil
	}
	all, err := doublestar.FilepathGlob(pattern)
	if err != nil {
		return nil, &domain.CorpusFormatError{Path: pattern, Element: -1, Err: err}
	}
	matches := make([]string, 0, len(all))
	for _, m := range all {
		if info, err := os.Stat(m); err == nil && !info.IsDir() {
			matches = append(matches, m)
		}
	}
	if len(matches) == 0 {
		return nil, &domain.CorpusFormatError{Path: pattern, Element: -1, Err: errors.New("no files match pattern")}
	}
	sort.Strings(matches)
	return matches, nil
}

func readFile(path string) ([]domain.Record, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read corpus: %w", err)
	}

	// UseNumber keeps integer IDs exact in record metadata.
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()
	var top any
	if err := dec.Decode(&top); err != nil {
		return nil, &domain.CorpusFormatError{Path: path, Element: -1, Err: err}
	}
	if _, err := dec.Token(); err != io.EOF {
		return nil, &domain.CorpusFormatError{Path: path, Element: -1, Err: errors.New("trailing data after top-level array")}
	}
	items, ok := top.([]any)
	if !ok {
		return nil, &domain.CorpusFormatError{Path: path, Element: -1, Err: errors.New("top level is not a JSON array")}
	}

	records := make([]domain.Record, len(items))
	for i, item := range items {
		obj, ok := item.(map[string]any)
		if !ok {
			return nil, &domain.CorpusFormatError{Path: path, Element: i, Err: errors.New("element is not a JSON object")}
		}
		records[i] = obj
	}
	return records, nil
}
