package storage

import (
	"context"
	"fmt"
	"time"

	"github.com/go-sql-driver/mysql"
	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/jmoiron/sqlx"
)

const (
	// DriverMySQL selects github.com/go-sql-driver/mysql.
	DriverMySQL = "mysql"
	// DriverPostgres selects the pgx stdlib driver.
	DriverPostgres = "pgx"
)

// Connect opens and pings a pooled connection for the given driver.
func Connect(ctx context.Context, driver, dsn string) (*sqlx.DB, error) {
	if dsn == "" {
		return nil, fmt.Errorf("database DSN is empty")
	}
	if driver != DriverMySQL && driver != DriverPostgres {
		return nil, fmt.Errorf("unsupported database driver %q", driver)
	}

	dsn, err := normalizeDSN(driver, dsn)
	if err != nil {
		return nil, err
	}

	db, err := sqlx.Open(driver, dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open database connection: %w", err)
	}

	db.SetMaxIdleConns(5)
	db.SetMaxOpenConns(20)
	db.SetConnMaxLifetime(60 * time.Minute)

	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	return db, nil
}

// normalizeDSN forces MySQL to return DATETIME columns as UTC time.Time values
// so createdat scans into sql.NullTime. Other drivers pass through unchanged.
func normalizeDSN(driver, dsn string) (string, error) {
	if driver != DriverMySQL {
		return dsn, nil
	}

	cfg, err := mysql.ParseDSN(dsn)
	if err != nil {
		return "", fmt.Errorf("invalid mysql DSN: %w", err)
	}
	cfg.ParseTime = true
	cfg.Loc = time.UTC

	return cfg.FormatDSN(), nil
}
