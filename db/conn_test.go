package db

import (
	"path/filepath"
	"testing"

	"bitwise74/user-api/internal/model"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func TestNewSQLiteMigrates(t *testing.T) {
	dsn := filepath.Join(t.TempDir(), "test.db") + "?_foreign_keys=on"

	d, err := New(&Opts{Driver: "sqlite", DSN: dsn, MaxOpenConns: 4})
	require.NoError(t, err)
	t.Cleanup(func() { Close(d) })

	assert.True(t, d.Migrator().HasTable(&model.User{}))
	assert.True(t, d.Migrator().HasTable(&model.Token{}))
	assert.True(t, d.Migrator().HasIndex(&model.User{}, "Username"))
	assert.True(t, d.Migrator().HasIndex(&model.User{}, "Email"))
}

func TestUniqueViolationIsTranslated(t *testing.T) {
	dsn := filepath.Join(t.TempDir(), "test.db") + "?_foreign_keys=on"

	d, err := New(&Opts{DSN: dsn})
	require.NoError(t, err)
	t.Cleanup(func() { Close(d) })

	require.NoError(t, d.Create(&model.User{Username: "alice", Email: "a@x.com", PasswordHash: "h"}).Error)

	err = d.Create(&model.User{Username: "alice", Email: "b@x.com", PasswordHash: "h"}).Error
	assert.ErrorIs(t, err, gorm.ErrDuplicatedKey)
}

func TestDialectorFor(t *testing.T) {
	_, err := dialectorFor("oracle", "x")
	assert.Error(t, err)

	_, err = dialectorFor("postgres", "")
	assert.Error(t, err)

	_, err = dialectorFor("mysql", "")
	assert.Error(t, err)

	d, err := dialectorFor("", "")
	require.NoError(t, err)
	assert.Equal(t, "sqlite", d.Name())
}

func TestNewRequiresOpts(t *testing.T) {
	_, err := New(nil)
	assert.Error(t, err)
}

func TestSQLiteDSNFlags(t *testing.T) {
	assert.Equal(t,
		"test.db?_foreign_keys=on&_busy_timeout=5000&_txlock=immediate",
		sqliteDSN("test.db"))

	assert.Equal(t,
		"test.db?_busy_timeout=100&_foreign_keys=on&_txlock=immediate",
		sqliteDSN("test.db?_busy_timeout=100"))

	assert.Equal(t, DefaultSQLiteDSN, sqliteDSN(DefaultSQLiteDSN))
}
