// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package outcomes

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/lib/pq"
	msqlite "modernc.org/sqlite"
	sqlite3lib "modernc.org/sqlite/lib"

	"github.com/danielhkuo/crossroads/db"
	"github.com/danielhkuo/crossroads/models"
)

const outcomeColumns = `id, title, decision1_id, decision2_id, decision1_text, decision2_text, duration`

// SQLStore persists outcomes in Postgres or SQLite.
type SQLStore struct {
	db      *sql.DB
	dialect string
}

// NewSQLStore wraps an open connection. The schema must already exist
// (see db.CreateSchema).
func NewSQLStore(conn *sql.DB, dialect string) (*SQLStore, error) {
	if conn == nil {
		return nil, errors.New("sql db is required")
	}
	switch dialect {
	case db.DialectPostgres, db.DialectSQLite:
	default:
		return nil, fmt.Errorf("unsupported sql dialect %q", dialect)
	}
	return &SQLStore{db: conn, dialect: dialect}, nil
}

func (s *SQLStore) q(query string) string {
	return db.Rebind(s.dialect, query)
}

func (s *SQLStore) GetCurrentOutcome(ctx context.Context) (models.Outcome, error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT o.id, o.title, o.decision1_id, o.decision2_id, o.decision1_text, o.decision2_text, o.duration
		FROM state s
		JOIN outcome o ON o.id = s.current_outcome_id
		WHERE s.id = 1
	`)
	o, err := scanOutcome(row)
	if err != nil {
		return models.Outcome{}, fmt.Errorf("get current outcome: %w", err)
	}
	return o, nil
}

func (s *SQLStore) GetOutcome(ctx context.Context, id int64) (models.Outcome, error) {
	row := s.db.QueryRowContext(ctx, s.q(`SELECT `+outcomeColumns+` FROM outcome WHERE id = ?`), id)
	o, err := scanOutcome(row)
	if err != nil {
		return models.Outcome{}, fmt.Errorf("get outcome %d: %w", id, err)
	}
	return o, nil
}

func (s *SQLStore) SetCurrentOutcome(ctx context.Context, id int64) error {
	res, err := s.db.ExecContext(ctx, s.q(`
		UPDATE state
		SET current_outcome_id = ?
		WHERE id = 1 AND EXISTS (SELECT 1 FROM outcome WHERE id = ?)
	`), id, id)
	if err != nil {
		return fmt.Errorf("set current outcome: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("set current outcome: %w", err)
	}
	if n == 0 {
		return fmt.Errorf("set current outcome %d: %w", id, ErrNotFound)
	}
	return nil
}

func (s *SQLStore) ListOutcomes(ctx context.Context) ([]models.Outcome, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT `+outcomeColumns+` FROM outcome ORDER BY id`)
	if err != nil {
		return nil, fmt.Errorf("list outcomes: %w", err)
	}
	defer rows.Close()

	list := []models.Outcome{}
	for rows.Next() {
		o, err := scanOutcome(rows)
		if err != nil {
			return nil, fmt.Errorf("list outcomes: %w", err)
		}
		list = append(list, o)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list outcomes: %w", err)
	}
	return list, nil
}

// PutOutcome inserts or replaces one outcome row.
func (s *SQLStore) PutOutcome(ctx context.Context, outcome models.Outcome) error {
	if err := outcome.Validate(); err != nil {
		return err
	}

	_, err := s.db.ExecContext(ctx, s.q(`
		INSERT INTO outcome (`+outcomeColumns+`)
		VALUES (?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT (id) DO UPDATE SET
			title = excluded.title,
			decision1_id = excluded.decision1_id,
			decision2_id = excluded.decision2_id,
			decision1_text = excluded.decision1_text,
			decision2_text = excluded.decision2_text,
			duration = excluded.duration
	`),
		outcome.ID,
		outcome.Title,
		nullInt(outcome.Decision1ID),
		nullInt(outcome.Decision2ID),
		nullString(outcome.Decision1Text),
		nullString(outcome.Decision2Text),
		outcome.Duration,
	)
	if err != nil {
		if isCheckViolation(err) {
			return fmt.Errorf("%w: %v", models.ErrInvalidOutcome, err)
		}
		return fmt.Errorf("put outcome %d: %w", outcome.ID, err)
	}
	return nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanOutcome(row rowScanner) (models.Outcome, error) {
	var (
		o      models.Outcome
		d1, d2 sql.NullInt64
		t1, t2 sql.NullString
	)
	err := row.Scan(&o.ID, &o.Title, &d1, &d2, &t1, &t2, &o.Duration)
	if errors.Is(err, sql.ErrNoRows) {
		return models.Outcome{}, ErrNotFound
	}
	if err != nil {
		return models.Outcome{}, err
	}
	if d1.Valid {
		o.Decision1ID = &d1.Int64
	}
	if d2.Valid {
		o.Decision2ID = &d2.Int64
	}
	if t1.Valid {
		o.Decision1Text = &t1.String
	}
	if t2.Valid {
		o.Decision2Text = &t2.String
	}
	return o, nil
}

func nullInt(v *int64) sql.NullInt64 {
	if v == nil {
		return sql.NullInt64{}
	}
	return sql.NullInt64{Int64: *v, Valid: true}
}

func nullString(v *string) sql.NullString {
	if v == nil {
		return sql.NullString{}
	}
	return sql.NullString{String: *v, Valid: true}
}

// isCheckViolation recognizes CHECK constraint failures from either driver.
func isCheckViolation(err error) bool {
	var pqErr *pq.Error
	if errors.As(err, &pqErr) {
		return pqErr.Code == "23514"
	}
	var sqliteErr *msqlite.Error
	if errors.As(err, &sqliteErr) {
		return sqliteErr.Code() == sqlite3lib.SQLITE_CONSTRAINT_CHECK
	}
	return false
}

var _ Store = (*SQLStore)(nil)
