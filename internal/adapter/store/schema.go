package store

import (
	"encoding/json"
	"fmt"
	"time"

	"go.etcd.io/bbolt"
)

// CurrentSchemaVersion is the current on-disk format version.
// Increment this when making breaking changes to the storage format.
const CurrentSchemaVersion = 1

var (
	bucketMeta    = []byte("meta")
	bucketDocs    = []byte("docs")
	bucketVectors = []byte("vectors")

	keySchemaVersion = []byte("schema_version")
	keyDimension     = []byte("dimension")
	keyCount         = []byte("count")
	keyModel         = []byte("model")
	keyConfigHash    = []byte("config_hash")
	keyCreatedAt     = []byte("created_at")
)

// SchemaInfo is the metadata stored alongside a persisted index.
type SchemaInfo struct {
	Version    int
	Dimension  int
	Count      int
	Model      string
	ConfigHash string
	CreatedAt  time.Time
}

func putInt(b *bbolt.Bucket, key []byte, v int) error {
	data, err := json.Marshal(v)
	if err != nil {
		return err
	}
	return b.Put(key, data)
}

func getInt(b *bbolt.Bucket, key []byte) (int, error) {
	data := b.Get(key)
	if data == nil {
		return 0, fmt.Errorf("missing %s", key)
	}
	var v int
	if err := json.Unmarshal(data, &v); err != nil {
		return 0, fmt.Errorf("decode %s: %w", key, err)
	}
	return v, nil
}

func writeSchemaInfo(tx *bbolt.Tx, info SchemaInfo) error {
	b, err := tx.CreateBucketIfNotExists(bucketMeta)
	if err != nil {
		return err
	}
	if err := putInt(b, keySchemaVersion, info.Version); err != nil {
		return err
	}
	if err := putInt(b, keyDimension, info.Dimension); err != nil {
		return err
	}
	if err := putInt(b, keyCount, info.Count); err != nil {
		return err
	}
	if err := b.Put(keyModel, []byte(info.Model)); err != nil {
		return err
	}
	if err := b.Put(keyConfigHash, []byte(info.ConfigHash)); err != nil {
		return err
	}
	return b.Put(keyCreatedAt, []byte(info.CreatedAt.UTC().Format(time.RFC3339)))
}

func readSchemaInfo(tx *bbolt.Tx) (SchemaInfo, error) {
	var info SchemaInfo
	b := tx.Bucket(bucketMeta)
	if b == nil {
		return info, fmt.Errorf("missing %s bucket", bucketMeta)
	}

	var err error
	if info.Version, err = getInt(b, keySchemaVersion); err != nil {
		return info, err
	}
	if info.Version != CurrentSchemaVersion {
		return info, fmt.Errorf("unsupported schema version v%d (this build reads v%d)", info.Version, CurrentSchemaVersion)
	}
	if info.Dimension, err = getInt(b, keyDimension); err != nil {
		return info, err
	}
	if info.Dimension <= 0 {
		return info, fmt.Errorf("invalid dimension %d", info.Dimension)
	}
	if info.Count, err = getInt(b, keyCount); err != nil {
		return info, err
	}
	if info.Count < 1 {
		return info, fmt.Errorf("invalid count %d", info.Count)
	}
	info.Model = string(b.Get(keyModel))
	info.ConfigHash = string(b.Get(keyConfigHash))
	if ts := b.Get(keyCreatedAt); ts != nil {
		info.CreatedAt, _ = time.Parse(time.RFC3339, string(ts))
	}
	return info, nil
}
