package planetscale

import (
	"context"
	"os"
	"testing"

	"github.com/google/uuid"
	"github.com/navbryce/feed-be/config"
	appDb "github.com/navbryce/feed-be/db"
	"github.com/navbryce/feed-be/db/dbtest"
	"github.com/stretchr/testify/require"
)

// PlanetScaleDB is usable wherever a store is expected, without extra accessors.
var _ appDb.KVStore = (*PlanetScaleDB)(nil)

// Needs a reachable MySQL; FEED_TEST_MYSQL_HOST, _USER, _PASS and _NAME describe it.
func TestKVStoreConformance(t *testing.T) {
	host := os.Getenv("FEED_TEST_MYSQL_HOST")
	if host == "" {
		t.Skip("FEED_TEST_MYSQL_HOST not set")
	}
	psdb, err := GetDatabase(config.MySQLConfig{
		User: os.Getenv("FEED_TEST_MYSQL_USER"),
		Pass: os.Getenv("FEED_TEST_MYSQL_PASS"),
		Host: host,
		Name: os.Getenv("FEED_TEST_MYSQL_NAME"),
	})
	require.NoError(t, err)
	defer psdb.Close()

	dbtest.RunConformance(t, func(t *testing.T) appDb.KVStore {
		return &prefixedStore{PlanetScaleDB: psdb, prefix: uuid.NewString() + "/"}
	})
}

// prefixedStore isolates subtests sharing one table.
type prefixedStore struct {
	*PlanetScaleDB
	prefix string
}

func (p *prefixedStore) Get(ctx context.Context, key string) ([]byte, error) {
	return p.PlanetScaleDB.Get(ctx, p.prefix+key)
}

func (p *prefixedStore) GetWithMetadata(ctx context.Context, key string) ([]byte, appDb.Metadata, error) {
	return p.PlanetScaleDB.GetWithMetadata(ctx, p.prefix+key)
}

func (p *prefixedStore) GetEntry(ctx context.Context, key string) (*appDb.Entry, error) {
	return p.PlanetScaleDB.GetEntry(ctx, p.prefix+key)
}

func (p *prefixedStore) Put(ctx context.Context, key string, value []byte, metadata appDb.Metadata) error {
	return p.PlanetScaleDB.Put(ctx, p.prefix+key, value, metadata)
}

func (p *prefixedStore) CompareAndSwap(ctx context.Context, key string, value []byte, metadata appDb.Metadata, expected appDb.Version) error {
	return p.PlanetScaleDB.CompareAndSwap(ctx, p.prefix+key, value, metadata, expected)
}

func (p *prefixedStore) Close() error {
	return nil
}
