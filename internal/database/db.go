package database

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	_ "github.com/go-sql-driver/mysql"
)

// Open connects to MySQL and verifies the connection.
func Open(user, pass, host, port, name string) (*sql.DB, error) {
	auth := user
	if pass != "" {
		auth = fmt.Sprintf("%s:%s", user, pass)
	}
	// parseTime=true -> DATETIME -> time.Time | loc=UTC keeps times consistent
	dsn := fmt.Sprintf("%s@tcp(%s:%s)/%s?charset=utf8mb4&parseTime=true&loc=UTC",
		auth, host, port, name)

	db, err := sql.Open("mysql", dsn)
	if err != nil {
		return nil, err
	}

	// Pool settings
	db.SetMaxOpenConns(25)
	db.SetMaxIdleConns(25)
	db.SetConnMaxLifetime(30 * time.Minute)

	// Ping with timeout
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := db.PingContext(ctx); err != nil {
		return nil, err
	}
	return db, nil
}

// EnsureSchema creates the ledger tables when they do not exist.
// Event and ticket ids are assigned by the ledger's own monotonic
// sequences, so those tables carry no AUTO_INCREMENT.  owner_index.seq
// exists only to preserve append order when reloading the index.
func EnsureSchema(ctx context.Context, db *sql.DB) error {
	stmts := []string{
		`CREATE TABLE IF NOT EXISTS accounts (
			id            BIGINT UNSIGNED AUTO_INCREMENT PRIMARY KEY,
			username      VARCHAR(64) NOT NULL UNIQUE,
			password_hash VARCHAR(100) NOT NULL,
			created_at    DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP
		)`,
		`CREATE TABLE IF NOT EXISTS events (
			id            BIGINT UNSIGNED PRIMARY KEY,
			organizer     VARCHAR(64) NOT NULL,
			name          VARCHAR(255) NOT NULL,
			event_date    DATETIME NULL,
			price_cents   BIGINT UNSIGNED NOT NULL,
			capacity      INT UNSIGNED NOT NULL,
			sold          INT UNSIGNED NOT NULL DEFAULT 0,
			balance_cents BIGINT UNSIGNED NOT NULL DEFAULT 0,
			active        TINYINT(1) NOT NULL DEFAULT 1,
			created_at    DATETIME NOT NULL
		)`,
		`CREATE TABLE IF NOT EXISTS tickets (
			id           BIGINT UNSIGNED PRIMARY KEY,
			event_id     BIGINT UNSIGNED NOT NULL,
			owner        VARCHAR(64) NOT NULL,
			purchased_at DATETIME NOT NULL,
			KEY idx_tickets_event (event_id)
		)`,
		`CREATE TABLE IF NOT EXISTS owner_index (
			seq       BIGINT UNSIGNED AUTO_INCREMENT PRIMARY KEY,
			identity  VARCHAR(64) NOT NULL,
			ticket_id BIGINT UNSIGNED NOT NULL,
			KEY idx_owner_index_identity (identity)
		)`,
	}
	for _, q := range stmts {
		if _, err := db.ExecContext(ctx, q); err != nil {
			return fmt.Errorf("ensure schema: %w", err)
		}
	}
	return nil
}
