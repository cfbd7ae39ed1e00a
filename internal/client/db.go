package client

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"
)

// OpenFunc opens a database handle for a DSN. It exists so that callers can
// substitute a fake opener in tests.
type OpenFunc func(ctx context.Context, dsn string) (*sql.DB, error)

// DriverFor picks the sql driver from the DSN scheme. Anything that does not
// look like a MySQL DSN is treated as Postgres, which matches the DSN formats
// both drivers accept.
func DriverFor(dsn string) string {
	if strings.HasPrefix(strings.ToLower(dsn), "mysql") {
		return "mysql"
	}
	return "postgres"
}

// Open connects to the backend behind dsn and verifies it with a ping.
func Open(ctx context.Context, dsn string) (*sql.DB, error) {
	driver := DriverFor(dsn)

	db, err := sql.Open(driver, dsn)
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", driver, err)
	}
	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping %s: %w", driver, err)
	}

	db.SetMaxOpenConns(10)
	db.SetMaxIdleConns(5)
	db.SetConnMaxLifetime(5 * time.Minute)

	return db, nil
}

// Probe validates a DSN by connecting and immediately closing.
func Probe(ctx context.Context, dsn string) error {
	db, err := Open(ctx, dsn)
	if err != nil {
		return err
	}
	return db.Close()
}
