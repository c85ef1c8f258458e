package corpus

import (
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"vecspace/internal/domain"
)

const movieJSON = `[
  {
    "movie_id": "975900",
    "title": "Ghosts of Mars",
    "release_date": "2001-08-24",
    "supported_languages": ["English Language"],
    "movie_countries": ["United States of America"],
    "movie_genres_list": ["Thriller", "Science Fiction"],
    "movie_actor_list": ["Natasha Henstridge", "Ice Cube"],
    "summary": "Set in the second half of the 22nd century, the film depicts Mars."
  },
  {
    "movie_id": "3196793",
    "title": "Getting Away with Murder",
    "release_date": "2000-02-16",
    "movie_genres_list": ["Mystery"],
    "movie_actor_list": [],
    "summary": "Summary not available"
  }
]`

func writeFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0755))
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))
	return path
}

func TestLoader_LoadAndBuild(t *testing.T) {
	path := writeFile(t, t.TempDir(), "movie.json", movieJSON)
	l := NewLoader(Movie)

	records, err := l.Load(path)
	require.NoError(t, err)
	require.Len(t, records, 2)

	docs, err := l.BuildDocuments(records, 0)
	require.NoError(t, err)
	require.Len(t, docs, 2)

	assert.Equal(t,
		"Ghosts of Mars 2001-08-24 Set in the second half of the 22nd century, the film depicts Mars. Thriller Science Fiction Natasha Henstridge Ice Cube",
		docs[0].Text)
	assert.Equal(t, "Getting Away with Murder 2000-02-16 Summary not available Mystery ", docs[1].Text)
	assert.Equal(t, records[0], docs[0].Metadata)
	assert.Equal(t, "975900", docs[0].Metadata["movie_id"])
	assert.Equal(t, "movie", l.Kind())
}

func TestLoader_BuildDocumentsLimit(t *testing.T) {
	path := writeFile(t, t.TempDir(), "movie.json", movieJSON)
	l := NewLoader(Movie)
	records, err := l.Load(path)
	require.NoError(t, err)

	docs, err := l.BuildDocuments(records, 1)
	require.NoError(t, err)
	require.Len(t, docs, 1)
	assert.Equal(t, "Ghosts of Mars", docs[0].Metadata["title"])

	docs, err = l.BuildDocuments(records, 10)
	require.NoError(t, err)
	assert.Len(t, docs, 2)
}

func TestLoader_BuildDocumentsMissingField(t *testing.T) {
	records := []domain.Record{
		{"title": "A", "author": "x", "publication_date": "1937", "description": "d", "genres": []any{"Fantasy"}},
		{"title": "B", "author": "y", "publication_date": "1954", "description": "d", "genres": []any{}},
		{"title": "C", "publication_date": "1960", "description": "d", "genres": []any{}},
		{"title": "D", "author": "z", "publication_date": "1970", "description": "d", "genres": []any{}},
	}

	docs, err := NewLoader(Book).BuildDocuments(records, 0)
	require.Error(t, err)
	assert.Nil(t, docs)
	assert.ErrorIs(t, err, domain.ErrRecordSchema)

	var schemaErr *domain.RecordSchemaError
	require.True(t, errors.As(err, &schemaErr))
	assert.Equal(t, 2, schemaErr.Index)
	assert.Equal(t, "author", schemaErr.Field)
	assert.Equal(t, "book", schemaErr.Kind)
}

func TestLoader_BuildDocumentsLimitStopsBeforeBadRecord(t *testing.T) {
	records := []domain.Record{
		{"title": "A", "author": "x", "publication_date": "1937", "description": "d", "genres": []any{}},
		{"title": "B"},
	}
	docs, err := NewLoader(Book).BuildDocuments(records, 1)
	require.NoError(t, err)
	assert.Len(t, docs, 1)
}

func TestLoader_LoadFormatErrors(t *testing.T) {
	dir := t.TempDir()
	tests := []struct {
		name    string
		content string
		element int
	}{
		{"malformed", `[{"title": "A"`, -1},
		{"not array", `{"title": "A"}`, -1},
		{"non-object element", `[{"title": "A"}, 42]`, 1},
		{"null element", `[null]`, 0},
		{"trailing data", `[{"title": "A"}] [{"title": "B"}]`, -1},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			path := writeFile(t, dir, tc.name+".json", tc.content)
			_, err := NewLoader(Movie).Load(path)
			require.ErrorIs(t, err, domain.ErrCorpusFormat)

			var fmtErr *domain.CorpusFormatError
			require.True(t, errors.As(err, &fmtErr))
			assert.Equal(t, tc.element, fmtErr.Element)
		})
	}
}

func TestLoader_LargeIntegersSurvive(t *testing.T) {
	path := writeFile(t, t.TempDir(), "big.json", `[
  {"title": "Big", "release_date": 9007199254740993, "summary": "s",
   "movie_genres_list": [], "movie_actor_list": [], "movie_id": 9007199254740993}
]`)
	l := NewLoader(Movie)
	records, err := l.Load(path)
	require.NoError(t, err)

	docs, err := l.BuildDocuments(records, 0)
	require.NoError(t, err)
	require.Len(t, docs, 1)
	assert.Equal(t, json.Number("9007199254740993"), docs[0].Metadata["movie_id"])
	assert.Equal(t, "Big 9007199254740993 s  ", docs[0].Text)
}

func TestLoader_LoadMissingFile(t *testing.T) {
	_, err := NewLoader(Movie).Load(filepath.Join(t.TempDir(), "nope.json"))
	require.Error(t, err)
	assert.ErrorIs(t, err, os.ErrNotExist)
}

func TestLoader_LoadGlob(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "b/part2.json", `[{"title": "second"}]`)
	writeFile(t, dir, "a/part1.json", `[{"title": "first"}]`)
	writeFile(t, dir, "a/notes.txt", `ignored`)

	records, err := NewLoader(Movie).Load(filepath.Join(dir, "**", "*.json"))
	require.NoError(t, err)
	require.Len(t, records, 2)
	assert.Equal(t, "first", records[0]["title"])
	assert.Equal(t, "second", records[1]["title"])

	_, err = NewLoader(Movie).Load(filepath.Join(dir, "**", "*.csv"))
	assert.ErrorIs(t, err, domain.ErrCorpusFormat)
}
