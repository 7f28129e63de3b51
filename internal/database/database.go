package database

import (
	"context"
	"database/sql"
	"fmt"
	"log"
	"strings"
	"time"

	_ "github.com/go-sql-driver/mysql"
)

// DB is the MySQL connection used for the refresh-token revocation store.
// User records and domain data live in MongoDB; only token bookkeeping,
// which benefits from TTL-style cleanup queries, sits here.
type DB struct {
	*sql.DB
}

// New opens a MySQL connection from a mysql:// DSN.
func New(dsn string) (*DB, error) {
	if !strings.HasPrefix(dsn, "mysql://") {
		return nil, fmt.Errorf("DATABASE_URL must be a mysql:// DSN")
	}
	dsn = strings.TrimPrefix(dsn, "mysql://")

	// user:pass@host:port/dbname -> user:pass@tcp(host:port)/dbname
	if parts := strings.SplitN(dsn, "@", 2); len(parts) == 2 {
		if slashIdx := strings.Index(parts[1], "/"); slashIdx > 0 {
			dsn = parts[0] + "@tcp(" + parts[1][:slashIdx] + ")" + parts[1][slashIdx:]
		}
	}

	db, err := sql.Open("mysql", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	db.SetMaxOpenConns(25)
	db.SetMaxIdleConns(10)
	db.SetConnMaxLifetime(5 * time.Minute)
	db.SetConnMaxIdleTime(1 * time.Minute)

	if err := db.Ping(); err != nil {
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	log.Println("✅ MySQL database connected")
	return &DB{db}, nil
}

// Initialize creates the refresh_tokens table if missing.
func (db *DB) Initialize() error {
	_, err := db.Exec(`
		CREATE TABLE IF NOT EXISTS refresh_tokens (
			token_id   VARCHAR(64) PRIMARY KEY,
			user_id    VARCHAR(64) NOT NULL,
			expires_at DATETIME NOT NULL,
			revoked_at DATETIME NULL,
			created_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP,
			INDEX idx_refresh_user (user_id),
			INDEX idx_refresh_expires (expires_at)
		)
	`)
	if err != nil {
		return fmt.Errorf("failed to create refresh_tokens table: %w", err)
	}
	log.Println("✅ Database initialized successfully")
	return nil
}

// StoreRefreshToken records an issued refresh token.
func (db *DB) StoreRefreshToken(ctx context.Context, tokenID, userID string, expiresAt time.Time) error {
	_, err := db.ExecContext(ctx,
		`INSERT INTO refresh_tokens (token_id, user_id, expires_at) VALUES (?, ?, ?)`,
		tokenID, userID, expiresAt)
	return err
}

// RevokeRefreshToken marks a token unusable. Revoking twice is a no-op.
func (db *DB) RevokeRefreshToken(ctx context.Context, tokenID string) error {
	_, err := db.ExecContext(ctx,
		`UPDATE refresh_tokens SET revoked_at = NOW() WHERE token_id = ? AND revoked_at IS NULL`,
		tokenID)
	return err
}

// RevokeAllForUser revokes every live token for a user (logout everywhere).
func (db *DB) RevokeAllForUser(ctx context.Context, userID string) error {
	_, err := db.ExecContext(ctx,
		`UPDATE refresh_tokens SET revoked_at = NOW() WHERE user_id = ? AND revoked_at IS NULL`,
		userID)
	return err
}

// IsRefreshTokenActive reports whether a token exists, is unexpired and
// unrevoked.
func (db *DB) IsRefreshTokenActive(ctx context.Context, tokenID string) (bool, error) {
	var count int
	err := db.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM refresh_tokens
		 WHERE token_id = ? AND revoked_at IS NULL AND expires_at > NOW()`,
		tokenID).Scan(&count)
	if err != nil {
		return false, err
	}
	return count > 0, nil
}

// CleanupExpiredTokens deletes rows past expiry, returning how many went.
func (db *DB) CleanupExpiredTokens(ctx context.Context) (int64, error) {
	res, err := db.ExecContext(ctx, `DELETE FROM refresh_tokens WHERE expires_at < NOW()`)
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}
