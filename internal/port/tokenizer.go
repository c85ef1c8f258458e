package port

// Tokenizer splits text into normalized terms.
type Tokenizer interface {
	Tokenize(text string) []string
}
