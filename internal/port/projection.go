package port

import "vecspace/internal/domain"

// Projection turns one kind of corpus record into searchable text.
type Projection interface {
	// Kind names the record kind, e.g. "movie".
	Kind() string

	// RequiredFields lists the record fields Text reads.
	RequiredFields() []string

	// Text projects rec to text. index is the record position, used in errors.
	Text(index int, rec domain.Record) (string, error)
}
