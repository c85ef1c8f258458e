package cli

import (
	"os"
	"path/filepath"
	"testing"
	"time"
	"unicode/utf8"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"vecspace/config"
	"vecspace/internal/adapter/store"
)

func TestFormatDuration(t *testing.T) {
	tests := []struct {
		in   time.Duration
		want string
	}{
		{500 * time.Millisecond, "<1s"},
		{42 * time.Second, "42s"},
		{3*time.Minute + 5*time.Second, "3m5s"},
		{2*time.Hour + 7*time.Minute, "2h7m"},
	}
	for _, tc := range tests {
		assert.Equal(t, tc.want, formatDuration(tc.in))
	}
}

func TestTruncate(t *testing.T) {
	tests := []struct {
		in   string
		n    int
		want string
	}{
		{"short", 10, "short"},
		{"exactly", 7, "exactly"},
		{"abcdef", 3, "abc..."},
		{"Amélie à Montmartre", 5, "Améli..."},
		{"東京物語の夏", 2, "東京..."},
	}
	for _, tc := range tests {
		got := truncate(tc.in, tc.n)
		assert.Equal(t, tc.want, got)
		assert.True(t, utf8.ValidString(got), "invalid UTF-8 in %q", got)
	}
}

func TestApplyOverrides(t *testing.T) {
	c := config.DefaultConfig()
	require.NoError(t, applyOverrides(c, "book", 10, 50, 3))
	assert.Equal(t, "book", c.Corpus.Kind)
	assert.Equal(t, 10, c.Corpus.Limit)
	assert.Equal(t, 50, c.Index.BatchSize)
	assert.Equal(t, 3, c.Index.SeedSize)

	c = config.DefaultConfig()
	assert.Error(t, applyOverrides(c, "podcast", 0, 0, 0))
}

func TestRunAndQueryCommands(t *testing.T) {
	dir := t.TempDir()
	corpus := filepath.Join(dir, "books.json")
	require.NoError(t, os.WriteFile(corpus, []byte(`[
  {"title": "The Hobbit", "author": "J. R. R. Tolkien", "publication_date": "1937",
   "description": "Bilbo Baggins joins thirteen dwarves on a quest", "genres": ["Fantasy"]},
  {"title": "Dune", "author": "Frank Herbert", "publication_date": "1965",
   "description": "A desert planet and its spice", "genres": ["Science Fiction"]},
  {"title": "Emma", "author": "Jane Austen", "publication_date": "1815",
   "description": "A young woman meddles in matchmaking", "genres": []}
]`), 0644))

	rootCmd.SetArgs([]string{"run", corpus, "--dir", dir, "--kind", "book", "--quiet", "-q", "hobbit dwarves", "-k", "1", "--log-level", "error"})
	require.NoError(t, rootCmd.Execute())

	dest := filepath.Join(dir, ".vecspace", "book")
	info, err := store.NewBoltIndexStore().Inspect(dest)
	require.NoError(t, err)
	assert.Equal(t, 3, info.Count)
	assert.Equal(t, 384, info.Dimension)

	rootCmd.SetArgs([]string{"query", "--dir", dir, "--kind", "book", "-q", "spice planet", "--json", "--log-level", "error"})
	require.NoError(t, rootCmd.Execute())
}
