package db

import (
	"context"

	"github.com/jackc/pgx/v5/pgxpool"
)

// EnsureSchema creates the tables on first boot. There is no migration
// tooling here; every statement is idempotent.
func EnsureSchema(ctx context.Context, pool *pgxpool.Pool) error {
	stmts := []string{
		`CREATE TABLE IF NOT EXISTS users (
			id              TEXT PRIMARY KEY,
			email           TEXT NOT NULL UNIQUE,
			name            TEXT NOT NULL,
			image           TEXT NOT NULL DEFAULT '',
			role            TEXT NOT NULL DEFAULT 'none',
			credential_hash TEXT NOT NULL DEFAULT '',
			created_at      TIMESTAMPTZ NOT NULL,
			updated_at      TIMESTAMPTZ NOT NULL
		)`,
		`CREATE TABLE IF NOT EXISTS classes (
			id               TEXT PRIMARY KEY,
			name             TEXT NOT NULL,
			instructor_name  TEXT NOT NULL,
			instructor_email TEXT NOT NULL,
			image            TEXT NOT NULL DEFAULT '',
			price            DOUBLE PRECISION NOT NULL,
			available_seats  INT NOT NULL CHECK (available_seats >= 0),
			enrolled         INT NOT NULL DEFAULT 0 CHECK (enrolled >= 0),
			status           TEXT NOT NULL DEFAULT 'pending',
			feedback         TEXT,
			created_at       TIMESTAMPTZ NOT NULL,
			updated_at       TIMESTAMPTZ NOT NULL
		)`,
		`CREATE INDEX IF NOT EXISTS classes_status_idx ON classes (status)`,
		`CREATE INDEX IF NOT EXISTS classes_instructor_email_idx ON classes (instructor_email)`,
		`CREATE TABLE IF NOT EXISTS instructors (
			id       TEXT PRIMARY KEY,
			name     TEXT NOT NULL,
			email    TEXT NOT NULL UNIQUE,
			image    TEXT NOT NULL DEFAULT '',
			students INT NOT NULL DEFAULT 0
		)`,
		`CREATE TABLE IF NOT EXISTS selections (
			id         TEXT PRIMARY KEY,
			email      TEXT NOT NULL,
			class_id   TEXT NOT NULL,
			class_name TEXT NOT NULL DEFAULT '',
			image      TEXT NOT NULL DEFAULT '',
			price      DOUBLE PRECISION NOT NULL DEFAULT 0,
			created_at TIMESTAMPTZ NOT NULL
		)`,
		`CREATE INDEX IF NOT EXISTS selections_email_idx ON selections (email)`,
		`CREATE TABLE IF NOT EXISTS payments (
			id            TEXT PRIMARY KEY,
			email         TEXT NOT NULL,
			price         DOUBLE PRECISION NOT NULL,
			class_ids     TEXT[] NOT NULL,
			selection_ids TEXT[] NOT NULL,
			paid_at       TIMESTAMPTZ NOT NULL,
			created_at    TIMESTAMPTZ NOT NULL
		)`,
		`CREATE INDEX IF NOT EXISTS payments_email_paid_at_idx ON payments (email, paid_at DESC)`,
		`CREATE TABLE IF NOT EXISTS jobs (
			id              TEXT PRIMARY KEY,
			type            TEXT NOT NULL,
			payload         JSONB NOT NULL,
			status          TEXT NOT NULL,
			attempts        INT NOT NULL DEFAULT 0,
			max_attempts    INT NOT NULL DEFAULT 10,
			run_at          TIMESTAMPTZ NOT NULL,
			locked_at       TIMESTAMPTZ,
			locked_by       TEXT,
			last_error      TEXT,
			idempotency_key TEXT UNIQUE,
			created_at      TIMESTAMPTZ NOT NULL,
			updated_at      TIMESTAMPTZ NOT NULL
		)`,
		`CREATE INDEX IF NOT EXISTS jobs_claim_idx ON jobs (status, run_at)`,
	}

	for _, stmt := range stmts {
		_, err := pool.Exec(ctx, stmt)

		if err != nil {
			return err
		}
	}

	return nil
}
