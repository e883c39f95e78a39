package db

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	_ "github.com/lib/pq" // postgres driver
)

func Connect(dsn string, timeout time.Duration) (*sql.DB, error) {
	db, err := sql.Open("postgres", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to create database handle: %w", err)
	}

	db.SetMaxOpenConns(25)
	db.SetMaxIdleConns(25)
	db.SetConnMaxLifetime(5 * time.Minute)

	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()

	if err = db.PingContext(ctx); err != nil {
		if closeErr := db.Close(); closeErr != nil {
			fmt.Printf("failed to close database handle after ping error: %v\n", closeErr)
		}
		return nil, fmt.Errorf("failed to ping database within %v: %w", timeout, err)
	}

	return db, nil
}

// Migrate creates the schema if it does not exist yet. Kept in-process so a
// fresh deployment boots without a separate migration step.
func Migrate(ctx context.Context, db *sql.DB) error {
	schema := `
	CREATE TABLE IF NOT EXISTS users (
		id            SERIAL PRIMARY KEY,
		username      TEXT NOT NULL,
		display_name  TEXT NOT NULL,
		email         TEXT NOT NULL,
		password_hash TEXT NOT NULL,
		avatar_key    TEXT,
		totp_secret   TEXT,
		twofa_enabled BOOLEAN NOT NULL DEFAULT FALSE,
		last_seen     TIMESTAMPTZ NOT NULL DEFAULT now(),
		created_at    TIMESTAMPTZ NOT NULL DEFAULT now(),
		CONSTRAINT users_username_key UNIQUE (username),
		CONSTRAINT users_email_key UNIQUE (email),
		CONSTRAINT users_display_name_key UNIQUE (display_name)
	);
	CREATE TABLE IF NOT EXISTS friends (
		id         SERIAL PRIMARY KEY,
		user_id    INTEGER NOT NULL REFERENCES users (id) ON DELETE CASCADE,
		friend_id  INTEGER NOT NULL REFERENCES users (id) ON DELETE CASCADE,
		created_at TIMESTAMPTZ NOT NULL DEFAULT now(),
		CONSTRAINT friends_pair_key UNIQUE (user_id, friend_id)
	);
	CREATE TABLE IF NOT EXISTS matches (
		id         SERIAL PRIMARY KEY,
		player1_id INTEGER NOT NULL REFERENCES users (id),
		player2_id INTEGER NOT NULL REFERENCES users (id),
		winner_id  INTEGER NOT NULL REFERENCES users (id),
		score      TEXT NOT NULL,
		date       TIMESTAMPTZ NOT NULL DEFAULT now()
	);`

	if _, err := db.ExecContext(ctx, schema); err != nil {
		return fmt.Errorf("failed to apply schema: %w", err)
	}
	return nil
}
