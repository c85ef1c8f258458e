// Package index holds the in-memory vector index: an ordered list of
// embedded documents supporting merge and exact cosine top-k search.
package index

import (
	"fmt"
	"math"
	"sort"
	"sync"

	"vecspace/internal/domain"
)

// Entry is one embedded document.
type Entry struct {
	Document domain.Document
	Vector   []float32
}

// Index is a brute-force cosine index. Entries keep insertion order, which
// is also the tie-break order for search.
type Index struct {
	mu        sync.RWMutex
	dimension int
	model     string
	entries   []Entry
	norms     []float64
}

// New creates an empty index of the given dimension. A zero dimension is
// fixed by the first merge.
func New(dimension int) *Index {
	return &Index{dimension: dimension}
}

// FromEmbeddings builds an index from parallel slices of documents and
// vectors. All vectors must share one non-zero dimension.
func FromEmbeddings(docs []domain.Document, vectors [][]float32) (*Index, error) {
	if len(docs) != len(vectors) {
		return nil, fmt.Errorf("%w: %d documents but %d vectors", domain.ErrEmbeddingFailure, len(docs), len(vectors))
	}
	idx := &Index{}
	if len(docs) == 0 {
		return idx, nil
	}
	dim := len(vectors[0])
	if dim == 0 {
		return nil, fmt.Errorf("%w: empty vector for document 0", domain.ErrEmbeddingFailure)
	}
	idx.dimension = dim
	idx.entries = make([]Entry, 0, len(docs))
	idx.norms = make([]float64, 0, len(docs))
	for i := range docs {
		if len(vectors[i]) != dim {
			return nil, &domain.DimensionMismatchError{Want: dim, Got: len(vectors[i])}
		}
		vec := append([]float32(nil), vectors[i]...)
		idx.entries = append(idx.entries, Entry{Document: docs[i], Vector: vec})
		idx.norms = append(idx.norms, magnitude(vec))
	}
	return idx, nil
}

// Len returns the number of entries.
func (i *Index) Len() int {
	i.mu.RLock()
	defer i.mu.RUnlock()
	return len(i.entries)
}

// Dimension returns the vector dimension, or 0 if not yet known.
func (i *Index) Dimension() int {
	i.mu.RLock()
	defer i.mu.RUnlock()
	return i.dimension
}

// Model returns the embedding model name recorded for this index.
func (i *Index) Model() string {
	i.mu.RLock()
	defer i.mu.RUnlock()
	return i.model
}

// SetModel records the embedding model name.
func (i *Index) SetModel(model string) {
	i.mu.Lock()
	defer i.mu.Unlock()
	i.model = model
}

// Info summarizes the index.
func (i *Index) Info() domain.IndexInfo {
	i.mu.RLock()
	defer i.mu.RUnlock()
	return domain.IndexInfo{Entries: len(i.entries), Dimension: i.dimension, Model: i.model}
}

// Entries returns a copy of the entries in insertion order. Vectors are
// copied too, so callers cannot disturb the cached norms.
func (i *Index) Entries() []Entry {
	i.mu.RLock()
	defer i.mu.RUnlock()
	out := make([]Entry, len(i.entries))
	for n, e := range i.entries {
		out[n] = Entry{Document: e.Document, Vector: append([]float32(nil), e.Vector...)}
	}
	return out
}

// Merge appends all entries of other after the existing ones. It fails with
// a DimensionMismatchError, leaving i unchanged, when the dimensions differ.
func (i *Index) Merge(other *Index) error {
	if other == nil {
		return nil
	}
	if other == i {
		return fmt.Errorf("%w: cannot merge an index into itself", domain.ErrInvalidInput)
	}
	other.mu.RLock()
	defer other.mu.RUnlock()
	i.mu.Lock()
	defer i.mu.Unlock()

	if len(other.entries) == 0 {
		return nil
	}
	if i.dimension == 0 && len(i.entries) == 0 {
		i.dimension = other.dimension
	}
	if other.dimension != i.dimension {
		return &domain.DimensionMismatchError{Want: i.dimension, Got: other.dimension}
	}
	i.entries = append(i.entries, other.entries...)
	i.norms = append(i.norms, other.norms...)
	return nil
}

// Search returns the k entries most similar to query by cosine similarity,
// nearest first. Equal scores keep insertion order.
func (i *Index) Search(query []float32, k int) ([]domain.ScoredDocument, error) {
	if k < 1 {
		return nil, fmt.Errorf("%w: k must be >= 1, got %d", domain.ErrInvalidInput, k)
	}
	i.mu.RLock()
	defer i.mu.RUnlock()

	if len(i.entries) == 0 {
		return nil, domain.ErrEmptyIndex
	}
	if len(query) != i.dimension {
		return nil, &domain.DimensionMismatchError{Want: i.dimension, Got: len(query)}
	}

	type scored struct {
		pos   int
		score float64
	}
	qm := magnitude(query)
	scores := make([]scored, len(i.entries))
	for pos, e := range i.entries {
		scores[pos] = scored{pos: pos, score: cosine(query, e.Vector, qm, i.norms[pos])}
	}

	sort.SliceStable(scores, func(a, b int) bool {
		return scores[a].score > scores[b].score
	})

	if k > len(scores) {
		k = len(scores)
	}
	results := make([]domain.ScoredDocument, k)
	for n := 0; n < k; n++ {
		results[n] = domain.ScoredDocument{
			Document: i.entries[scores[n].pos].Document,
			Score:    scores[n].score,
		}
	}
	return results, nil
}

func cosine(a, b []float32, na, nb float64) float64 {
	if na == 0 || nb == 0 {
		return 0
	}
	s := dot(a, b) / (na * nb)
	if math.IsNaN(s) {
		return 0
	}
	return s
}

func dot(a, b []float32) float64 {
	var s float64
	for i := range a {
		s += float64(a[i]) * float64(b[i])
	}
	return s
}

func magnitude(v []float32) float64 { return math.Sqrt(dot(v, v)) }
