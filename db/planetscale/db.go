package planetscale

import (
	"database/sql"
	"fmt"

	"github.com/navbryce/feed-be/config"
	"github.com/pkg/errors"
	"github.com/upper/db/v4"
	"github.com/upper/db/v4/adapter/mysql"
)

const createKVTable = `
CREATE TABLE IF NOT EXISTS kv_store (
	k        VARCHAR(255) NOT NULL PRIMARY KEY,
	v        LONGBLOB     NOT NULL,
	metadata JSON         NULL,
	version  BIGINT UNSIGNED NOT NULL
)`

type PlanetScaleDB struct {
	*KVStore
	sess db.Session
}

func GetDatabase(conf config.MySQLConfig) (*PlanetScaleDB, error) {
	sqlDB, err := sql.Open("mysql",
		fmt.Sprintf("%s:%s@tcp(%s)/%s?tls=true&parseTime=true",
			conf.User, conf.Pass, conf.Host, conf.Name))
	if err != nil {
		return nil, err
	}

	// TODO: Move to config
	sqlDB.SetMaxIdleConns(50)
	sqlDB.SetMaxOpenConns(50)
	sqlDB.SetConnMaxIdleTime(0)

	sess, err := mysql.New(sqlDB)
	if err != nil {
		return nil, err
	}

	if _, err := sess.SQL().Exec(createKVTable); err != nil {
		sess.Close()
		return nil, errors.Wrap(err, "error creating kv_store table")
	}

	return &PlanetScaleDB{
		KVStore: getKVStore(sess),
		sess:    sess,
	}, nil
}

func (psdb *PlanetScaleDB) Close() error {
	return psdb.sess.Close()
}
