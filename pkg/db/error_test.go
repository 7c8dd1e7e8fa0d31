package db

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"gorm.io/gorm"
)

func TestIsDuplicateKeyErr(t *testing.T) {
	assert.False(t, IsDuplicateKeyErr(nil))
	assert.True(t, IsDuplicateKeyErr(gorm.ErrDuplicatedKey))
	assert.True(t, IsDuplicateKeyErr(errors.New(`duplicate key value violates unique constraint "users_username_key"`)))
	assert.True(t, IsDuplicateKeyErr(errors.New("Error 1062: Duplicate entry 'nena' for key 'username'")))
	assert.True(t, IsDuplicateKeyErr(errors.New("UNIQUE constraint failed: users.username")))
	assert.False(t, IsDuplicateKeyErr(errors.New("connection refused")))
}

func TestIsLockTimeoutErr(t *testing.T) {
	assert.False(t, IsLockTimeoutErr(nil))
	assert.True(t, IsLockTimeoutErr(errors.New("could not obtain lock on row in relation \"products\"")))
	assert.True(t, IsLockTimeoutErr(errors.New("canceling statement due to lock timeout")))
	assert.True(t, IsLockTimeoutErr(errors.New("Error 1205: Lock wait timeout exceeded; try restarting transaction")))
	assert.True(t, IsLockTimeoutErr(errors.New("database is locked")))
	assert.False(t, IsLockTimeoutErr(fmt.Errorf("record not found")))
}
