package db

import (
	"errors"
	"strings"

	"github.com/go-sql-driver/mysql"
)

var (
	ErrKeyNotFound     = errors.New("key not found")
	ErrVersionConflict = errors.New("version conflict")
)

func IsNotFound(err error) bool {
	return errors.Is(err, ErrKeyNotFound)
}

func IsConflict(err error) bool {
	return errors.Is(err, ErrVersionConflict)
}

func IsDupKeyErr(err error) bool {
	var mysqlErr *mysql.MySQLError
	if !errors.As(err, &mysqlErr) {
		return false
	}
	return mysqlErr.Number == 1062 || strings.Contains(mysqlErr.Error(), "Duplicate")
}
