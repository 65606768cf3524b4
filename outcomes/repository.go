// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

// Package outcomes stores the story graph and the current-outcome pointer.
//
// Three backends implement Store: SQLStore (Postgres or SQLite), RedisStore,
// and MemoryStore. The poll engine only depends on Repository.
package outcomes

import (
	"context"
	"errors"

	"github.com/danielhkuo/crossroads/models"
)

// ErrNotFound is returned when the pointer is unset or an outcome id is unknown.
var ErrNotFound = errors.New("outcome not found")

// Repository is the read/advance contract the poll engine consumes.
type Repository interface {
	GetCurrentOutcome(ctx context.Context) (models.Outcome, error)
	GetOutcome(ctx context.Context, id int64) (models.Outcome, error)
	SetCurrentOutcome(ctx context.Context, id int64) error
	ListOutcomes(ctx context.Context) ([]models.Outcome, error)
}

// Store is a Repository that can also write outcome rows.
type Store interface {
	Repository
	PutOutcome(ctx context.Context, outcome models.Outcome) error
}

func cloneOutcome(o models.Outcome) models.Outcome {
	o.Decision1ID = cloneInt(o.Decision1ID)
	o.Decision2ID = cloneInt(o.Decision2ID)
	o.Decision1Text = cloneString(o.Decision1Text)
	o.Decision2Text = cloneString(o.Decision2Text)
	return o
}

func cloneInt(v *int64) *int64 {
	if v == nil {
		return nil
	}
	c := *v
	return &c
}

func cloneString(v *string) *string {
	if v == nil {
		return nil
	}
	c := *v
	return &c
}
