// Package db opens the connection pool shared by the record store and the
// token ledger
package db

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"bitwise74/user-api/internal/model"

	"gorm.io/driver/mysql"
	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

const DefaultSQLiteDSN = "database.db?_foreign_keys=on&_busy_timeout=5000&_txlock=immediate"

type Opts struct {
	Driver       string // sqlite, postgres or mysql
	DSN          string
	MaxOpenConns int
	Debug        bool
}

// New opens the database described by o and migrates the schema. The
// returned handle owns the pool and should be closed with Close when the
// process exits.
func New(o *Opts) (*gorm.DB, error) {
	if o == nil {
		return nil, errors.New("no database options provided")
	}

	dialector, err := dialectorFor(o.Driver, o.DSN)
	if err != nil {
		return nil, err
	}

	logLevel := logger.Warn
	if o.Debug {
		logLevel = logger.Info
	}

	db, err := gorm.Open(dialector, &gorm.Config{
		// Unique index violations come back as gorm.ErrDuplicatedKey
		TranslateError: true,
		Logger:         logger.Default.LogMode(logLevel),
		NowFunc: func() time.Time {
			return time.Now().UTC()
		},
	})
	if err != nil {
		return nil, fmt.Errorf("failed to open %s database, %w", o.Driver, err)
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, fmt.Errorf("failed to get connection pool, %w", err)
	}

	if o.MaxOpenConns > 0 {
		sqlDB.SetMaxOpenConns(o.MaxOpenConns)
		sqlDB.SetMaxIdleConns(o.MaxOpenConns)
	}

	err = db.AutoMigrate(&model.User{}, &model.Token{})
	if err != nil {
		return nil, fmt.Errorf("failed to automigrate tables, %w", err)
	}

	return db, nil
}

// Close releases the pool behind db
func Close(db *gorm.DB) error {
	sqlDB, err := db.DB()
	if err != nil {
		return err
	}

	return sqlDB.Close()
}

func dialectorFor(driver, dsn string) (gorm.Dialector, error) {
	switch driver {
	case "", "sqlite":
		if dsn == "" {
			dsn = DefaultSQLiteDSN
		}

		return sqlite.Open(sqliteDSN(dsn)), nil
	case "postgres":
		if dsn == "" {
			return nil, errors.New("no postgres dsn provided")
		}

		return postgres.Open(dsn), nil
	case "mysql":
		if dsn == "" {
			return nil, errors.New("no mysql dsn provided")
		}

		return mysql.Open(dsn), nil
	default:
		return nil, fmt.Errorf("unsupported database driver %q", driver)
	}
}

// sqliteDSN fills in the connection flags the stores rely on when dsn leaves
// them out. Read-then-write transactions must take the write lock at BEGIN,
// a deferred lock upgrade fails with SQLITE_BUSY without waiting.
func sqliteDSN(dsn string) string {
	for _, flag := range []string{"_foreign_keys=on", "_busy_timeout=5000", "_txlock=immediate"} {
		key, _, _ := strings.Cut(flag, "=")
		if strings.Contains(dsn, key+"=") {
			continue
		}

		if strings.Contains(dsn, "?") {
			dsn += "&" + flag
		} else {
			dsn += "?" + flag
		}
	}

	return dsn
}
