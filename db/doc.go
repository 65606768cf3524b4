// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package db handles database schema creation.

# Schema Creation

CreateSchema initializes all required tables:

	if err := db.CreateSchema(conn); err != nil {
		log.Fatal(err)
	}

Safe to call multiple times - uses IF NOT EXISTS for all tables and
ON CONFLICT DO NOTHING for the singleton state row. The same DDL is valid
for Postgres (lib/pq) and SQLite (modernc.org/sqlite).

# Tables

  - outcome: story nodes with two optional children and their labels
  - state: single row (id = 1) holding current_outcome_id

Child ids are not foreign keys: the graph may reference nodes that are
inserted later, and may contain cycles.

# Placeholders

Queries are written with ? placeholders and passed through Rebind:

	q := db.Rebind(db.DialectPostgres, "SELECT title FROM outcome WHERE id = ?")
	// SELECT title FROM outcome WHERE id = $1
*/
package db
