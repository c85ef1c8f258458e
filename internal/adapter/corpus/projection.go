package corpus

import (
	"encoding/json"
	"fmt"
	"sort"
	"strconv"
	"strings"

	"vecspace/internal/domain"
	"vecspace/internal/port"
)

type field struct {
	name string
	list bool
}

// projection concatenates a fixed list of record fields, in order, separated
// by single spaces. List fields contribute their items space-joined.
type projection struct {
	kind   string
	fields []field
}

var _ port.Projection = (*projection)(nil)

var (
	// Movie reads records produced by the MovieSummaries ETL.
	Movie port.Projection = &projection{
		kind: "movie",
		fields: []field{
			{name: "title"},
			{name: "release_date"},
			{name: "summary"},
			{name: "movie_genres_list", list: true},
			{name: "movie_actor_list", list: true},
		},
	}

	// Book reads records produced by the BookSummaries ETL.
	Book port.Projection = &projection{
		kind: "book",
		fields: []field{
			{name: "title"},
			{name: "author"},
			{name: "publication_date"},
			{name: "description"},
			{name: "genres", list: true},
		},
	}

	projections = map[string]port.Projection{
		Movie.Kind(): Movie,
		Book.Kind():  Book,
	}
)

// ProjectionFor returns the projection registered for kind.
func ProjectionFor(kind string) (port.Projection, error) {
	p, ok := projections[kind]
	if !ok {
		return nil, fmt.Errorf("%w: unknown record kind %q (known: %s)", domain.ErrInvalidInput, kind, strings.Join(Kinds(), ", "))
	}
	return p, nil
}

// Kinds lists the registered record kinds in sorted order.
func Kinds() []string {
	kinds := make([]string, 0, len(projections))
	for k := range projections {
		kinds = append(kinds, k)
	}
	sort.Strings(kinds)
	return kinds
}

func (p *projection) Kind() string { return p.kind }

func (p *projection) RequiredFields() []string {
	names := make([]string, len(p.fields))
	for i, f := range p.fields {
		names[i] = f.name
	}
	return names
}

func (p *projection) Text(index int, rec domain.Record) (string, error) {
	parts := make([]string, 0, len(p.fields))
	for _, f := range p.fields {
		v, ok := rec[f.name]
		if !ok || v == nil {
			return "", &domain.RecordSchemaError{Kind: p.kind, Index: index, Field: f.name}
		}
		var (
			s   string
			err error
		)
		if f.list {
			s, err = joinList(v)
		} else {
			s, err = scalar(v)
		}
		if err != nil {
			return "", &domain.RecordSchemaError{Kind: p.kind, Index: index, Field: f.name, Reason: err.Error()}
		}
		parts = append(parts, s)
	}
	return strings.Join(parts, " "), nil
}

func scalar(v any) (string, error) {
	switch t := v.(type) {
	case string:
		return t, nil
	case json.Number:
		return t.String(), nil
	case float64:
		return strconv.FormatFloat(t, 'f', -1, 64), nil
	case bool:
		return strconv.FormatBool(t), nil
	default:
		return "", fmt.Errorf("expected a scalar value for field")
	}
}

func joinList(v any) (string, error) {
	items, ok := v.([]any)
	if !ok {
		return "", fmt.Errorf("expected a list for field")
	}
	out := make([]string, 0, len(items))
	for _, item := range items {
		s, err := scalar(item)
		if err != nil {
			return "", fmt.Errorf("expected a list of scalars for field")
		}
		out = append(out, s)
	}
	return strings.Join(out, " "), nil
}
