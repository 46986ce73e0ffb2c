package planetscale

import (
	"context"
	"database/sql"
	"encoding/json"

	appDb "github.com/navbryce/feed-be/db"
	"github.com/pkg/errors"
	"github.com/upper/db/v4"
)

type KVStore struct {
	sess db.Session
}

func getKVStore(sess db.Session) *KVStore {
	return &KVStore{sess}
}

type kvRow struct {
	Key      string         `db:"k"`
	Value    []byte         `db:"v"`
	Metadata sql.NullString `db:"metadata"`
	Version  uint64         `db:"version"`
}

func (kv *KVStore) Get(ctx context.Context, key string) ([]byte, error) {
	e, err := kv.GetEntry(ctx, key)
	if err != nil {
		return nil, err
	}
	return e.Value, nil
}

func (kv *KVStore) GetWithMetadata(ctx context.Context, key string) ([]byte, appDb.Metadata, error) {
	e, err := kv.GetEntry(ctx, key)
	if err != nil {
		return nil, nil, err
	}
	return e.Value, e.Metadata, nil
}

func (kv *KVStore) GetEntry(ctx context.Context, key string) (*appDb.Entry, error) {
	var row kvRow
	if err := kv.sess.SQL().
		Select("k", "v", "metadata", "version").
		From("kv_store").
		Where("k = ?", key).
		IteratorContext(ctx).
		One(&row); err != nil {
		if err == db.ErrNoMoreRows {
			return nil, appDb.ErrKeyNotFound
		}
		return nil, errors.Wrapf(err, "error reading key %v", key)
	}
	metadata, err := decodeMetadata(row.Metadata)
	if err != nil {
		return nil, err
	}
	return &appDb.Entry{
		Value:    row.Value,
		Metadata: metadata,
		Version:  appDb.Version(row.Version),
	}, nil
}

// Put writes unconditionally, still bumping the version so concurrent CAS writers notice.
func (kv *KVStore) Put(ctx context.Context, key string, value []byte, metadata appDb.Metadata) error {
	encoded, err := encodeMetadata(metadata)
	if err != nil {
		return err
	}
	_, err = kv.sess.SQL().ExecContext(ctx, `
INSERT INTO kv_store (k, v, metadata, version) VALUES (?, ?, ?, 1)
	ON DUPLICATE KEY UPDATE v = VALUES(v), metadata = VALUES(metadata), version = version + 1
`, key, value, encoded)
	return errors.Wrapf(err, "error writing key %v", key)
}

func (kv *KVStore) CompareAndSwap(ctx context.Context, key string, value []byte, metadata appDb.Metadata, expected appDb.Version) error {
	encoded, err := encodeMetadata(metadata)
	if err != nil {
		return err
	}
	if expected == appDb.NoVersion {
		_, err := kv.sess.SQL().
			InsertInto("kv_store").
			Columns("k", "v", "metadata", "version").
			Values(key, value, encoded, 1).
			ExecContext(ctx)
		if appDb.IsDupKeyErr(err) {
			return appDb.ErrVersionConflict
		}
		return errors.Wrapf(err, "error inserting key %v", key)
	}

	res, err := kv.sess.SQL().ExecContext(ctx, `
UPDATE kv_store
	SET v = ?, metadata = ?, version = version + 1
	WHERE k = ? AND version = ?
`, value, encoded, key, uint64(expected))
	if err != nil {
		return errors.Wrapf(err, "error swapping key %v", key)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return errors.Wrapf(err, "error swapping key %v", key)
	}
	if affected == 0 {
		return appDb.ErrVersionConflict
	}
	return nil
}

func encodeMetadata(metadata appDb.Metadata) (sql.NullString, error) {
	if metadata == nil {
		return sql.NullString{}, nil
	}
	encoded, err := json.Marshal(metadata)
	if err != nil {
		return sql.NullString{}, err
	}
	return sql.NullString{String: string(encoded), Valid: true}, nil
}

func decodeMetadata(raw sql.NullString) (appDb.Metadata, error) {
	if !raw.Valid {
		return nil, nil
	}
	var metadata appDb.Metadata
	if err := json.Unmarshal([]byte(raw.String), &metadata); err != nil {
		return nil, errors.Wrap(err, "error decoding metadata")
	}
	return metadata, nil
}
