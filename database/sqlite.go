package database

import (
	"context"
	"database/sql"
	"fmt"
	"net/url"
	"strings"

	"github.com/mattn/go-sqlite3"
	"go.uber.org/zap"
)

// driverName is go-sqlite3 with the extra SQL functions below registered on
// every connection.
const driverName = "sqlite3_contacts"

// LowerFunc is a Unicode-aware lower(); the built-in one folds ASCII only.
const LowerFunc = "unicode_lower"

func init() {
	sql.Register(driverName, &sqlite3.SQLiteDriver{
		ConnectHook: func(conn *sqlite3.SQLiteConn) error {
			return conn.RegisterFunc(LowerFunc, strings.ToLower, true)
		},
	})
}

// busyTimeoutMS is how long a writer waits on a locked database before failing.
const busyTimeoutMS = 5000

// dsn builds the go-sqlite3 data source name for path. Pragmas are passed as
// DSN parameters so that every pooled connection gets them, not just the first.
func dsn(path string) string {
	params := url.Values{}
	params.Set("_foreign_keys", "on")
	params.Set("_busy_timeout", fmt.Sprint(busyTimeoutMS))
	return "file:" + path + "?" + params.Encode()
}

// OpenDB opens the SQLite database at path and checks the connection.
func OpenDB(ctx context.Context, path string) (*sql.DB, error) {
	db, err := sql.Open(driverName, dsn(path))
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	// Test the connection
	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	return db, nil
}

// InitializeDatabase opens the database connection and runs migrations.
// The caller owns the returned handle and must close it.
func InitializeDatabase(ctx context.Context, path string, log *zap.Logger) (*sql.DB, error) {
	db, err := OpenDB(ctx, path)
	if err != nil {
		return nil, err
	}

	if err := RunMigrations(ctx, db, log); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to run migrations: %w", err)
	}

	log.Info("database initialized", zap.String("path", path))
	return db, nil
}
