package database

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	_ "github.com/go-sql-driver/mysql"
)

// dsn assembles the MySQL connection string.
// parseTime=true -> DATETIME -> time.Time | loc=UTC keeps times consistent.
// clientFoundRows=true makes UPDATE report matched rows instead of changed
// rows; the repositories infer row existence from RowsAffected, and without
// it an update writing an unchanged value would look like a missing row.
func dsn(user, pass, host, port, name string) string {
	auth := user
	if pass != "" {
		auth = fmt.Sprintf("%s:%s", user, pass)
	}
	return fmt.Sprintf("%s@tcp(%s:%s)/%s?charset=utf8mb4&parseTime=true&loc=UTC&clientFoundRows=true",
		auth, host, port, name)
}

// Open connects to MySQL and verifies the connection.
func Open(user, pass, host, port, name string) (*sql.DB, error) {
	db, err := sql.Open("mysql", dsn(user, pass, host, port, name))
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

// schema holds the DDL for every table the service owns. Statements are
// idempotent so EnsureSchema can run on every startup.
var schema = []string{
	`CREATE TABLE IF NOT EXISTS users (
		id            CHAR(36) PRIMARY KEY,
		name          VARCHAR(255) NOT NULL,
		email         VARCHAR(255) NOT NULL UNIQUE,
		password_hash VARCHAR(255) NOT NULL,
		role          VARCHAR(16)  NOT NULL DEFAULT 'USER',
		is_verified   TINYINT(1)   NOT NULL DEFAULT 0,
		is_deleted    TINYINT(1)   NOT NULL DEFAULT 0,
		created_at    DATETIME     NOT NULL DEFAULT CURRENT_TIMESTAMP,
		updated_at    DATETIME     NOT NULL DEFAULT CURRENT_TIMESTAMP ON UPDATE CURRENT_TIMESTAMP
	)`,
	`CREATE TABLE IF NOT EXISTS sessions (
		id         CHAR(36) PRIMARY KEY,
		user_id    CHAR(36)     NOT NULL,
		role       VARCHAR(16)  NOT NULL,
		user_agent VARCHAR(512) NOT NULL DEFAULT '',
		created_at DATETIME     NOT NULL DEFAULT CURRENT_TIMESTAMP,
		updated_at DATETIME     NOT NULL DEFAULT CURRENT_TIMESTAMP,
		expires_at DATETIME     NOT NULL,
		INDEX idx_sessions_user (user_id)
	)`,
	`CREATE TABLE IF NOT EXISTS password_resets (
		id         CHAR(36) PRIMARY KEY,
		user_id    CHAR(36)     NOT NULL,
		token_hash VARCHAR(255) NOT NULL,
		expires_at DATETIME     NOT NULL,
		created_at DATETIME     NOT NULL DEFAULT CURRENT_TIMESTAMP,
		INDEX idx_password_resets_user (user_id)
	)`,
	`CREATE TABLE IF NOT EXISTS audit_logs (
		id            CHAR(36) PRIMARY KEY,
		user_id       CHAR(36)     NULL,
		session_id    CHAR(36)     NULL,
		action        VARCHAR(64)  NOT NULL,
		ip_address    VARCHAR(64)  NOT NULL DEFAULT '',
		user_agent    VARCHAR(512) NOT NULL DEFAULT '',
		device_info   JSON         NULL,
		status        VARCHAR(16)  NOT NULL,
		error_message VARCHAR(512) NULL,
		metadata      JSON         NULL,
		created_at    DATETIME     NOT NULL DEFAULT CURRENT_TIMESTAMP,
		INDEX idx_audit_user (user_id),
		INDEX idx_audit_ip_action (ip_address, action, created_at)
	)`,
}

// EnsureSchema creates the service tables when they do not exist yet.
func EnsureSchema(ctx context.Context, db *sql.DB) error {
	for _, stmt := range schema {
		if _, err := db.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("ensure schema: %w", err)
		}
	}
	return nil
}
