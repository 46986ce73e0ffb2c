package db

import (
	"fmt"
	"testing"

	"github.com/go-sql-driver/mysql"
	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
)

func TestIsDupKeyErr(t *testing.T) {
	dup := &mysql.MySQLError{Number: 1062, Message: "Duplicate entry 'posts' for key 'PRIMARY'"}
	assert.True(t, IsDupKeyErr(dup))
	assert.True(t, IsDupKeyErr(fmt.Errorf("insert: %w", dup)))
	assert.False(t, IsDupKeyErr(&mysql.MySQLError{Number: 1146, Message: "Table doesn't exist"}))
	assert.False(t, IsDupKeyErr(nil))
}

func TestSentinelsSurviveWrapping(t *testing.T) {
	assert.True(t, IsNotFound(errors.Wrap(ErrKeyNotFound, "reading posts")))
	assert.True(t, IsConflict(fmt.Errorf("swap: %w", ErrVersionConflict)))
	assert.False(t, IsConflict(ErrKeyNotFound))
}
