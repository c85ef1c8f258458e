package port

import (
	"context"

	"vecspace/internal/index"
)

// IndexStore persists a whole index under a destination and reads it back.
type IndexStore interface {
	// Save writes idx to dest. A failed save leaves idx untouched.
	Save(ctx context.Context, idx *index.Index, dest string) error

	// Load reads the index stored at src. When wantDim is positive the stored
	// dimension must equal it.
	Load(ctx context.Context, src string, wantDim int) (*index.Index, error)
}
