package badger

import (
	"context"
	"encoding/json"

	"github.com/dgraph-io/badger/v4"
	appDb "github.com/navbryce/feed-be/db"
	"github.com/pkg/errors"
	"github.com/robfig/cron/v3"
	"github.com/sirupsen/logrus"
)

const gcDiscardRatio = 0.5

type StoreConfig struct {
	Path       string
	InMemory   bool
	GCSchedule string // cron spec; empty disables value-log GC
	Logger     *logrus.Logger
}

// Store keeps values and their metadata in badger. Metadata lives under a sibling key so a value
// read stays a single Get. Versions are badger commit timestamps of the value key.
type Store struct {
	db  *badger.DB
	gc  *cron.Cron
	log *logrus.Logger
}

func metaKey(key string) []byte {
	return []byte("meta\x00" + key)
}

func valueKey(key string) []byte {
	return []byte("val\x00" + key)
}

func NewStore(config StoreConfig) (*Store, error) {
	if config.Logger == nil {
		config.Logger = logrus.New()
	}

	opts := badger.DefaultOptions(config.Path)
	if config.InMemory {
		opts = badger.DefaultOptions("").WithInMemory(true)
	}
	opts.Logger = nil

	db, err := badger.Open(opts)
	if err != nil {
		return nil, errors.Wrap(err, "error opening badger")
	}

	store := &Store{db: db, log: config.Logger}
	if config.GCSchedule != "" && !config.InMemory {
		store.gc = cron.New()
		if _, err := store.gc.AddFunc(config.GCSchedule, store.runGC); err != nil {
			db.Close()
			return nil, errors.Wrapf(err, "invalid gc schedule %q", config.GCSchedule)
		}
		store.gc.Start()
	}
	return store, nil
}

func (s *Store) runGC() {
	for {
		err := s.db.RunValueLogGC(gcDiscardRatio)
		if err == badger.ErrNoRewrite {
			return
		}
		if err != nil {
			s.log.WithError(err).Warn("badger value log gc failed")
			return
		}
		s.log.Debug("badger value log gc rewrote a file")
	}
}

func (s *Store) Get(ctx context.Context, key string) ([]byte, error) {
	e, err := s.GetEntry(ctx, key)
	if err != nil {
		return nil, err
	}
	return e.Value, nil
}

func (s *Store) GetWithMetadata(ctx context.Context, key string) ([]byte, appDb.Metadata, error) {
	e, err := s.GetEntry(ctx, key)
	if err != nil {
		return nil, nil, err
	}
	return e.Value, e.Metadata, nil
}

func (s *Store) GetEntry(_ context.Context, key string) (*appDb.Entry, error) {
	var e appDb.Entry
	err := s.db.View(func(txn *badger.Txn) error {
		item, err := txn.Get(valueKey(key))
		if err != nil {
			return err
		}
		e.Version = appDb.Version(item.Version())
		if e.Value, err = item.ValueCopy(nil); err != nil {
			return err
		}
		e.Metadata, err = readMetadata(txn, key)
		return err
	})
	if err == badger.ErrKeyNotFound {
		return nil, appDb.ErrKeyNotFound
	}
	if err != nil {
		return nil, errors.Wrapf(err, "error reading key %v", key)
	}
	return &e, nil
}

func readMetadata(txn *badger.Txn, key string) (appDb.Metadata, error) {
	item, err := txn.Get(metaKey(key))
	if err == badger.ErrKeyNotFound {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	var metadata appDb.Metadata
	err = item.Value(func(val []byte) error {
		return json.Unmarshal(val, &metadata)
	})
	return metadata, err
}

func (s *Store) Put(_ context.Context, key string, value []byte, metadata appDb.Metadata) error {
	err := s.db.Update(func(txn *badger.Txn) error {
		return writeEntry(txn, key, value, metadata)
	})
	return errors.Wrapf(err, "error writing key %v", key)
}

func (s *Store) CompareAndSwap(_ context.Context, key string, value []byte, metadata appDb.Metadata, expected appDb.Version) error {
	err := s.db.Update(func(txn *badger.Txn) error {
		current := appDb.NoVersion
		item, err := txn.Get(valueKey(key))
		switch {
		case err == nil:
			current = appDb.Version(item.Version())
		case err != badger.ErrKeyNotFound:
			return err
		}
		if current != expected {
			return appDb.ErrVersionConflict
		}
		return writeEntry(txn, key, value, metadata)
	})
	// a concurrent commit between our read and our commit surfaces as badger.ErrConflict
	if err == badger.ErrConflict || err == appDb.ErrVersionConflict {
		return appDb.ErrVersionConflict
	}
	return errors.Wrapf(err, "error swapping key %v", key)
}

func writeEntry(txn *badger.Txn, key string, value []byte, metadata appDb.Metadata) error {
	if err := txn.Set(valueKey(key), value); err != nil {
		return err
	}
	if metadata == nil {
		return txn.Delete(metaKey(key))
	}
	encoded, err := json.Marshal(metadata)
	if err != nil {
		return err
	}
	return txn.Set(metaKey(key), encoded)
}

func (s *Store) Close() error {
	if s.gc != nil {
		<-s.gc.Stop().Done()
	}
	return s.db.Close()
}
