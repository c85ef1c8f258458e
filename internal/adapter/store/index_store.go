package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"go.etcd.io/bbolt"

	"vecspace/internal/domain"
	"vecspace/internal/index"
	"vecspace/internal/logger"
	"vecspace/internal/port"
)

// IndexFileName is the bolt file written inside a destination directory.
const IndexFileName = "index.db"

var _ port.IndexStore = (*BoltIndexStore)(nil)

// BoltIndexStore persists a whole index as one BoltDB file. Documents are
// stored as JSON and vectors as little-endian float32 blobs, both keyed by
// insertion position.
type BoltIndexStore struct {
	configHash string
	timeout    time.Duration
	log        logger.Logger
}

// Option configures a BoltIndexStore.
type Option func(*BoltIndexStore)

// WithConfigHash records hash in saved indexes and compares it on load.
func WithConfigHash(hash string) Option {
	return func(s *BoltIndexStore) { s.configHash = hash }
}

// WithLogger sets the store logger.
func WithLogger(l logger.Logger) Option {
	return func(s *BoltIndexStore) { s.log = l }
}

// WithTimeout bounds how long opening the bolt file waits for its file lock.
func WithTimeout(d time.Duration) Option {
	return func(s *BoltIndexStore) { s.timeout = d }
}

// NewBoltIndexStore creates a new BoltDB-backed index store.
func NewBoltIndexStore(opts ...Option) *BoltIndexStore {
	s := &BoltIndexStore{
		timeout: time.Second,
		log:     logger.NewNop(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// IndexPath returns the bolt file path for a destination directory.
func IndexPath(dir string) string {
	return filepath.Join(dir, IndexFileName)
}

// Save writes idx to dest/index.db. The file is built under a temporary name
// and renamed into place, so a failed save keeps any previous index intact.
func (s *BoltIndexStore) Save(ctx context.Context, idx *index.Index, dest string) error {
	if idx == nil {
		return fmt.Errorf("%w: nil index", domain.ErrInvalidInput)
	}
	if idx.Len() == 0 {
		return fmt.Errorf("%w: refusing to save", domain.ErrEmptyIndex)
	}
	final := IndexPath(dest)
	if err := os.MkdirAll(dest, 0755); err != nil {
		return &domain.PersistenceError{Op: "create directory", Path: dest, Err: err}
	}

	tmp := final + ".tmp"
	if err := os.Remove(tmp); err != nil && !errors.Is(err, os.ErrNotExist) {
		return &domain.PersistenceError{Op: "remove stale temp file", Path: tmp, Err: err}
	}

	db, err := bbolt.Open(tmp, 0600, &bbolt.Options{Timeout: s.timeout})
	if err != nil {
		return &domain.PersistenceError{Op: "open", Path: tmp, Err: err}
	}

	entries := idx.Entries()
	info := SchemaInfo{
		Version:    CurrentSchemaVersion,
		Dimension:  idx.Dimension(),
		Count:      len(entries),
		Model:      idx.Model(),
		ConfigHash: s.configHash,
		CreatedAt:  time.Now(),
	}

	err = db.Update(func(tx *bbolt.Tx) error {
		docs, err := tx.CreateBucketIfNotExists(bucketDocs)
		if err != nil {
			return err
		}
		vectors, err := tx.CreateBucketIfNotExists(bucketVectors)
		if err != nil {
			return err
		}
		for i, e := range entries {
			if i%1000 == 0 {
				if err := ctx.Err(); err != nil {
					return err
				}
			}
			data, err := json.Marshal(e.Document)
			if err != nil {
				return fmt.Errorf("encode document %d: %w", i, err)
			}
			key := seqKey(i)
			if err := docs.Put(key, data); err != nil {
				return err
			}
			if err := vectors.Put(key, encodeVector(e.Vector)); err != nil {
				return err
			}
		}
		return writeSchemaInfo(tx, info)
	})
	closeErr := db.Close()
	if err == nil {
		err = closeErr
	}
	if err != nil {
		_ = os.Remove(tmp)
		return &domain.PersistenceError{Op: "write", Path: tmp, Err: err}
	}

	if err := os.Rename(tmp, final); err != nil {
		_ = os.Remove(tmp)
		return &domain.PersistenceError{Op: "commit", Path: final, Err: err}
	}

	s.log.Info("saved index", "path", final, "entries", info.Count, "dimension", info.Dimension)
	return nil
}

// Load reads src/index.db. Any structural problem, or a stored dimension
// different from a positive wantDim, yields a *domain.CorruptIndexError.
func (s *BoltIndexStore) Load(ctx context.Context, src string, wantDim int) (*index.Index, error) {
	path := IndexPath(src)
	if _, err := os.Stat(path); err != nil {
		return nil, &domain.CorruptIndexError{Path: path, Reason: "index file not readable", Err: err}
	}

	db, err := bbolt.Open(path, 0600, &bbolt.Options{ReadOnly: true, Timeout: s.timeout})
	if err != nil {
		return nil, &domain.CorruptIndexError{Path: path, Reason: "open", Err: err}
	}
	defer db.Close()

	var (
		info    SchemaInfo
		docs    []domain.Document
		vectors [][]float32
	)
	err = db.View(func(tx *bbolt.Tx) error {
		var err error
		if info, err = readSchemaInfo(tx); err != nil {
			return &domain.CorruptIndexError{Path: path, Reason: "metadata", Err: err}
		}
		if wantDim > 0 && info.Dimension != wantDim {
			return &domain.CorruptIndexError{
				Path:   path,
				Reason: "stored dimension does not match the configured embedding provider",
				Err:    &domain.DimensionMismatchError{Want: wantDim, Got: info.Dimension},
			}
		}

		docBucket := tx.Bucket(bucketDocs)
		vecBucket := tx.Bucket(bucketVectors)
		if docBucket == nil || vecBucket == nil {
			return &domain.CorruptIndexError{Path: path, Reason: "missing entry buckets"}
		}

		// The declared count is checked against the buckets before it sizes
		// anything.
		docN, vecN := docBucket.Stats().KeyN, vecBucket.Stats().KeyN
		if docN != info.Count || vecN != info.Count {
			return &domain.CorruptIndexError{
				Path:   path,
				Reason: fmt.Sprintf("declared %d entries, found %d documents and %d vectors", info.Count, docN, vecN),
			}
		}

		docs = make([]domain.Document, 0, docN)
		vectors = make([][]float32, 0, docN)
		c := docBucket.Cursor()
		for k, v := c.First(); k != nil; k, v = c.Next() {
			if len(docs)%1000 == 0 {
				if err := ctx.Err(); err != nil {
					return err
				}
			}
			doc, err := decodeDocument(v)
			if err != nil {
				return &domain.CorruptIndexError{Path: path, Reason: fmt.Sprintf("document %d", len(docs)), Err: err}
			}
			vec, err := decodeVector(vecBucket.Get(k))
			if err != nil {
				return &domain.CorruptIndexError{Path: path, Reason: fmt.Sprintf("vector %d", len(docs)), Err: err}
			}
			if len(vec) != info.Dimension {
				return &domain.CorruptIndexError{
					Path:   path,
					Reason: fmt.Sprintf("vector %d", len(docs)),
					Err:    &domain.DimensionMismatchError{Want: info.Dimension, Got: len(vec)},
				}
			}
			docs = append(docs, doc)
			vectors = append(vectors, vec)
		}
		if len(docs) != info.Count {
			return &domain.CorruptIndexError{
				Path:   path,
				Reason: fmt.Sprintf("declared %d entries, read %d documents", info.Count, len(docs)),
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	idx, err := index.FromEmbeddings(docs, vectors)
	if err != nil {
		return nil, &domain.CorruptIndexError{Path: path, Reason: "rebuild index", Err: err}
	}
	idx.SetModel(info.Model)

	if s.configHash != "" && info.ConfigHash != "" && info.ConfigHash != s.configHash {
		s.log.Warn("index was built with a different embedding configuration",
			"path", path, "stored_model", info.Model)
	}
	s.log.Info("loaded index", "path", path, "entries", info.Count, "dimension", info.Dimension)
	return idx, nil
}

// Inspect returns the stored metadata without loading any entries.
func (s *BoltIndexStore) Inspect(src string) (SchemaInfo, error) {
	path := IndexPath(src)
	if _, err := os.Stat(path); err != nil {
		return SchemaInfo{}, &domain.CorruptIndexError{Path: path, Reason: "index file not readable", Err: err}
	}
	db, err := bbolt.Open(path, 0600, &bbolt.Options{ReadOnly: true, Timeout: s.timeout})
	if err != nil {
		return SchemaInfo{}, &domain.CorruptIndexError{Path: path, Reason: "open", Err: err}
	}
	defer db.Close()

	var info SchemaInfo
	err = db.View(func(tx *bbolt.Tx) error {
		var err error
		info, err = readSchemaInfo(tx)
		return err
	})
	if err != nil {
		return SchemaInfo{}, &domain.CorruptIndexError{Path: path, Reason: "metadata", Err: err}
	}
	return info, nil
}
