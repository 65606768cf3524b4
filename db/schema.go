// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package db

import (
	"database/sql"
	"fmt"
	"strconv"
	"strings"
)

// Supported SQL dialects
const (
	DialectPostgres = "postgres"
	DialectSQLite   = "sqlite"
)

// CreateSchema creates all tables needed for the application.
// Safe to call multiple times - uses IF NOT EXISTS.
// The same DDL runs on Postgres and SQLite.
func CreateSchema(db *sql.DB) error {
	_, err := db.Exec(schema)
	if err != nil {
		return fmt.Errorf("failed to create schema: %w", err)
	}

	return nil
}

// Rebind rewrites ? placeholders into the form the dialect expects.
// Postgres wants $1, $2, ...; SQLite accepts ? as written.
func Rebind(dialect, query string) string {
	if dialect != DialectPostgres {
		return query
	}

	var b strings.Builder
	b.Grow(len(query) + 8)
	n := 0
	for i := 0; i < len(query); i++ {
		if query[i] == '?' {
			n++
			b.WriteByte('$')
			b.WriteString(strconv.Itoa(n))
			continue
		}
		b.WriteByte(query[i])
	}
	return b.String()
}

const schema = `
-- Outcomes (story graph nodes)
CREATE TABLE IF NOT EXISTS outcome (
    id BIGINT PRIMARY KEY,
    title TEXT NOT NULL,
    decision1_id BIGINT,
    decision2_id BIGINT,
    decision1_text TEXT,
    decision2_text TEXT,
    duration INTEGER NOT NULL DEFAULT 30 CHECK (duration >= 0),
    CHECK (decision1_id IS NULL OR decision1_text IS NOT NULL),
    CHECK (decision2_id IS NULL OR decision2_text IS NOT NULL)
);

-- Singleton story position
CREATE TABLE IF NOT EXISTS state (
    id INTEGER PRIMARY KEY CHECK (id = 1),
    current_outcome_id BIGINT REFERENCES outcome(id)
);

INSERT INTO state (id, current_outcome_id) VALUES (1, NULL)
ON CONFLICT (id) DO NOTHING;
`
