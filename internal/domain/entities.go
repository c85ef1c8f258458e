package domain

// Record is one raw corpus object as decoded from JSON.
type Record = map[string]any

// Document pairs searchable text with the source record it was built from.
// Metadata is the source record itself and is never modified.
type Document struct {
	Text     string         `json:"text"`
	Metadata map[string]any `json:"metadata"`
}

// ScoredDocument is a search hit.
type ScoredDocument struct {
	Document Document
	Score    float64
}

// IndexInfo describes a built or loaded index.
type IndexInfo struct {
	Entries   int    `json:"entries"`
	Dimension int    `json:"dimension"`
	Model     string `json:"model,omitempty"`
}
